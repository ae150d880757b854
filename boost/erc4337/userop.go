// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package erc4337 implements EntryPoint v0.7 user operations and a client for
// ERC-4337 bundlers.
package erc4337

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PackedUserOperation is the EntryPoint v0.7 user operation as passed on
// chain. Field names follow the ABI tuple.
type PackedUserOperation struct {
	Sender             common.Address
	Nonce              *big.Int
	InitCode           []byte
	CallData           []byte
	AccountGasLimits   [32]byte
	PreVerificationGas *big.Int
	GasFees            [32]byte
	PaymasterAndData   []byte
	Signature          []byte
}

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// pack128 packs two uint128 values into a bytes32, hi in the high half.
func pack128(hi, lo *big.Int) ([32]byte, error) {
	var b [32]byte
	for _, v := range []*big.Int{hi, lo} {
		if v == nil || v.Sign() < 0 || v.Cmp(maxUint128) > 0 {
			return b, fmt.Errorf("value %v out of uint128 range", v)
		}
	}
	hi.FillBytes(b[:16])
	lo.FillBytes(b[16:])
	return b, nil
}

func unpack128(b [32]byte) (hi, lo *big.Int) {
	return new(big.Int).SetBytes(b[:16]), new(big.Int).SetBytes(b[16:])
}

// SetGasLimits packs the verification and call gas limits.
func (op *PackedUserOperation) SetGasLimits(verificationGasLimit, callGasLimit *big.Int) error {
	b, err := pack128(verificationGasLimit, callGasLimit)
	if err != nil {
		return fmt.Errorf("invalid gas limits: %w", err)
	}
	op.AccountGasLimits = b
	return nil
}

// GasLimits unpacks the verification and call gas limits.
func (op *PackedUserOperation) GasLimits() (verificationGasLimit, callGasLimit *big.Int) {
	return unpack128(op.AccountGasLimits)
}

// SetGasFees packs the max priority fee and max fee per gas.
func (op *PackedUserOperation) SetGasFees(maxPriorityFeePerGas, maxFeePerGas *big.Int) error {
	b, err := pack128(maxPriorityFeePerGas, maxFeePerGas)
	if err != nil {
		return fmt.Errorf("invalid gas fees: %w", err)
	}
	op.GasFees = b
	return nil
}

// Fees unpacks the max priority fee and max fee per gas.
func (op *PackedUserOperation) Fees() (maxPriorityFeePerGas, maxFeePerGas *big.Int) {
	return unpack128(op.GasFees)
}

var userOpHashArgs = func() abi.Arguments {
	address, _ := abi.NewType("address", "", nil)
	uint256, _ := abi.NewType("uint256", "", nil)
	bytes32, _ := abi.NewType("bytes32", "", nil)
	return abi.Arguments{
		{Name: "sender", Type: address},
		{Name: "nonce", Type: uint256},
		{Name: "hashInitCode", Type: bytes32},
		{Name: "hashCallData", Type: bytes32},
		{Name: "accountGasLimits", Type: bytes32},
		{Name: "preVerificationGas", Type: uint256},
		{Name: "gasFees", Type: bytes32},
		{Name: "hashPaymasterAndData", Type: bytes32},
	}
}()

// Hash is the user operation hash the account signs, bound to the
// EntryPoint and chain.
func (op *PackedUserOperation) Hash(entryPoint common.Address, chainID *big.Int) (common.Hash, error) {
	if op.Nonce == nil || op.PreVerificationGas == nil {
		return common.Hash{}, errors.New("nonce and pre-verification gas are required")
	}
	packed, err := userOpHashArgs.Pack(
		op.Sender,
		op.Nonce,
		crypto.Keccak256Hash(op.InitCode),
		crypto.Keccak256Hash(op.CallData),
		op.AccountGasLimits,
		op.PreVerificationGas,
		op.GasFees,
		crypto.Keccak256Hash(op.PaymasterAndData),
	)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(
		crypto.Keccak256(packed),
		common.LeftPadBytes(entryPoint.Bytes(), 32),
		common.LeftPadBytes(chainID.Bytes(), 32),
	), nil
}

// Sign signs the user operation hash with an EIP-191 personal message prefix
// and sets the signature, with v in {27, 28}.
func (op *PackedUserOperation) Sign(signer func(digest []byte) ([]byte, error), entryPoint common.Address, chainID *big.Int) error {
	h, err := op.Hash(entryPoint, chainID)
	if err != nil {
		return err
	}
	sig, err := signer(EthSignedMessageHash(h[:]))
	if err != nil {
		return err
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("signature has length %d", len(sig))
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	op.Signature = sig
	return nil
}

// EthSignedMessageHash is the EIP-191 hash of a 32-byte message.
func EthSignedMessageHash(msg []byte) []byte {
	return crypto.Keccak256([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(msg))), msg)
}

const (
	paymasterAddrLen    = common.AddressLength
	paymasterGasLen     = 16
	paymasterDataOffset = paymasterAddrLen + 2*paymasterGasLen
)

// PaymasterAndData is the unpacked paymasterAndData field.
type PaymasterAndData struct {
	Paymaster            common.Address
	VerificationGasLimit *big.Int
	PostOpGasLimit       *big.Int
	Data                 []byte
}

// Pack encodes the fields as paymaster || verificationGasLimit (16 bytes) ||
// postOpGasLimit (16 bytes) || data.
func (p *PaymasterAndData) Pack() ([]byte, error) {
	gas, err := pack128(p.VerificationGasLimit, p.PostOpGasLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid paymaster gas limits: %w", err)
	}
	b := make([]byte, 0, paymasterDataOffset+len(p.Data))
	b = append(b, p.Paymaster[:]...)
	b = append(b, gas[:]...)
	return append(b, p.Data...), nil
}

// ParsePaymasterAndData decodes a paymasterAndData field.
func ParsePaymasterAndData(b []byte) (*PaymasterAndData, error) {
	if len(b) < paymasterDataOffset {
		return nil, fmt.Errorf("paymasterAndData too short: %d bytes", len(b))
	}
	var gas [32]byte
	copy(gas[:], b[paymasterAddrLen:paymasterDataOffset])
	vgl, pgl := unpack128(gas)
	return &PaymasterAndData{
		Paymaster:            common.BytesToAddress(b[:paymasterAddrLen]),
		VerificationGasLimit: vgl,
		PostOpGasLimit:       pgl,
		Data:                 append([]byte(nil), b[paymasterDataOffset:]...),
	}, nil
}

var validityArgs = func() abi.Arguments {
	uint48, _ := abi.NewType("uint48", "", nil)
	return abi.Arguments{{Name: "validUntil", Type: uint48}, {Name: "validAfter", Type: uint48}}
}()

// VerifyingPaymasterData encodes the data of a signing paymaster:
// abi.encode(validUntil, validAfter) || signature.
func VerifyingPaymasterData(validUntil, validAfter uint64, signature []byte) ([]byte, error) {
	b, err := validityArgs.Pack(new(big.Int).SetUint64(validUntil), new(big.Int).SetUint64(validAfter))
	if err != nil {
		return nil, err
	}
	return append(b, signature...), nil
}
