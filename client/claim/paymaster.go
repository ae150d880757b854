// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package claim

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/boostxyz/boost-protocol-sub000/boost/contracts"
	"github.com/boostxyz/boost-protocol-sub000/boost/erc4337"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	defaultPaymasterVerificationGas = 100_000
	defaultPaymasterPostOpGas       = 50_000
	defaultSponsorValidity          = 10 * time.Minute
)

// Sponsor provides the paymasterAndData of a sponsored user operation.
type Sponsor interface {
	// StubPaymasterAndData is used while estimating gas. Its signature is a
	// placeholder of the final length.
	StubPaymasterAndData(ctx context.Context) ([]byte, error)
	// PaymasterAndData signs sponsorship of op, whose fields other than the
	// signatures are final. The paymaster gas limits op carries are kept.
	PaymasterAndData(ctx context.Context, op *erc4337.PackedUserOperation) ([]byte, error)
}

// PaymasterSponsor sponsors operations through a BoostPaymaster, signing with
// the paymaster's verifying signer key.
type PaymasterSponsor struct {
	paymaster *contracts.BoostPaymaster
	key       *ecdsa.PrivateKey
	validFor  time.Duration
	// VerificationGasLimit and PostOpGasLimit are the paymaster limits used
	// until the bundler estimates them.
	VerificationGasLimit *big.Int
	PostOpGasLimit       *big.Int
}

var _ Sponsor = (*PaymasterSponsor)(nil)

// NewPaymasterSponsor creates a PaymasterSponsor. Sponsorship is valid for
// validFor from signing, ten minutes if zero.
func NewPaymasterSponsor(paymaster *contracts.BoostPaymaster, key *ecdsa.PrivateKey, validFor time.Duration) *PaymasterSponsor {
	if validFor <= 0 {
		validFor = defaultSponsorValidity
	}
	return &PaymasterSponsor{
		paymaster:            paymaster,
		key:                  key,
		validFor:             validFor,
		VerificationGasLimit: big.NewInt(defaultPaymasterVerificationGas),
		PostOpGasLimit:       big.NewInt(defaultPaymasterPostOpGas),
	}
}

// Signer is the verifying signer address the paymaster must be configured
// with.
func (s *PaymasterSponsor) Signer() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *PaymasterSponsor) window() (validUntil, validAfter uint64) {
	now := time.Now()
	return uint64(now.Add(s.validFor).Unix()), uint64(now.Unix())
}

func (s *PaymasterSponsor) pack(verificationGas, postOpGas *big.Int, validUntil, validAfter uint64, sig []byte) ([]byte, error) {
	data, err := erc4337.VerifyingPaymasterData(validUntil, validAfter, sig)
	if err != nil {
		return nil, err
	}
	pm := &erc4337.PaymasterAndData{
		Paymaster:            s.paymaster.Address,
		VerificationGasLimit: verificationGas,
		PostOpGasLimit:       postOpGas,
		Data:                 data,
	}
	return pm.Pack()
}

// StubPaymasterAndData carries the default paymaster limits and a dummy
// signature.
func (s *PaymasterSponsor) StubPaymasterAndData(context.Context) ([]byte, error) {
	validUntil, validAfter := s.window()
	return s.pack(s.VerificationGasLimit, s.PostOpGasLimit, validUntil, validAfter, dummySignature)
}

// PaymasterAndData gets the sponsorship digest from the paymaster and signs
// it with an EIP-191 prefix, v in {27, 28}.
func (s *PaymasterSponsor) PaymasterAndData(ctx context.Context, op *erc4337.PackedUserOperation) ([]byte, error) {
	verificationGas, postOpGas := s.VerificationGasLimit, s.PostOpGasLimit
	if len(op.PaymasterAndData) > 0 {
		pm, err := erc4337.ParsePaymasterAndData(op.PaymasterAndData)
		if err != nil {
			return nil, err
		}
		if pm.Paymaster != s.paymaster.Address {
			return nil, fmt.Errorf("operation names paymaster %s, not %s", pm.Paymaster, s.paymaster.Address)
		}
		verificationGas, postOpGas = pm.VerificationGasLimit, pm.PostOpGasLimit
	}
	validUntil, validAfter := s.window()
	unsigned, err := s.pack(verificationGas, postOpGas, validUntil, validAfter, nil)
	if err != nil {
		return nil, err
	}
	hashOp := *op
	hashOp.PaymasterAndData = unsigned
	h, err := s.paymaster.GetHash(ctx, &hashOp, validUntil, validAfter)
	if err != nil {
		return nil, fmt.Errorf("error getting paymaster hash: %w", err)
	}
	sig, err := crypto.Sign(erc4337.EthSignedMessageHash(h[:]), s.key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return s.pack(verificationGas, postOpGas, validUntil, validAfter, sig)
}
