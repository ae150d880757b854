// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"context"
	"math/big"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	signerEIP712Domain       = bindRead("eip712Domain", abis.SignerValidatorName)
	signerHashSignerData     = bindRead("hashSignerData", abis.SignerValidatorName)
	signerSigners            = bindRead("signers", abis.SignerValidatorName)
	signerValidatorCaller    = bindRead("validatorCaller", abis.SignerValidatorName)
	signerSetAuthorized      = bindWrite("setAuthorized", abis.SignerValidatorName)
	signerSetValidatorCaller = bindWrite("setValidatorCaller", abis.SignerValidatorName)
	signerValidate           = bindWrite("validate", abis.SignerValidatorName)
	signerSimValidate        = bindSimulate("validate", abis.SignerValidatorName)
)

// SignerValidator validates claims carrying an EIP-712 signature from an
// authorized signer.
type SignerValidator struct {
	*Contract
	ownable
	erc165
}

// NewSignerValidator binds the SignerValidator at addr.
func NewSignerValidator(addr common.Address, backend bind.ContractBackend) (*SignerValidator, error) {
	c, err := NewContract(abis.SignerValidatorName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &SignerValidator{Contract: c, ownable: ownable{owned{c}}, erc165: erc165{c}}, nil
}

// EIP712Domain is the signing domain.
func (v *SignerValidator) EIP712Domain(ctx context.Context) (*EIP712Domain, error) {
	d, err := Read[EIP712Domain](callOpts(ctx), v.Contract, signerEIP712Domain)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// HashSignerData is the EIP-712 digest an authorized signer signs to approve
// a claim.
func (v *SignerValidator) HashSignerData(ctx context.Context, boostID *big.Int, incentiveQuantity uint8, claimant common.Address, incentiveData []byte) ([32]byte, error) {
	return Read[[32]byte](callOpts(ctx), v.Contract, signerHashSignerData, boostID, incentiveQuantity, claimant, incentiveData)
}

// Signers checks whether signer is authorized.
func (v *SignerValidator) Signers(ctx context.Context, signer common.Address) (bool, error) {
	return Read[bool](callOpts(ctx), v.Contract, signerSigners, signer)
}

// ValidatorCaller is the only address allowed to call Validate, normally the
// BoostCore.
func (v *SignerValidator) ValidatorCaller(ctx context.Context) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), v.Contract, signerValidatorCaller)
}

// SetAuthorized sets the authorization of each signer.
func (v *SignerValidator) SetAuthorized(opts *bind.TransactOpts, signers []common.Address, authorized []bool) (*types.Transaction, error) {
	if err := checkLengths(len(signers), len(authorized)); err != nil {
		return nil, err
	}
	return Write(opts, v.Contract, signerSetAuthorized, signers, authorized)
}

// SetValidatorCaller changes the ValidatorCaller.
func (v *SignerValidator) SetValidatorCaller(opts *bind.TransactOpts, caller common.Address) (*types.Transaction, error) {
	return Write(opts, v.Contract, signerSetValidatorCaller, caller)
}

// Validate validates and consumes a claim.
func (v *SignerValidator) Validate(opts *bind.TransactOpts, boostID, incentiveID *big.Int, claimant common.Address, claimData []byte) (*types.Transaction, error) {
	return Write(opts, v.Contract, signerValidate, boostID, incentiveID, claimant, claimData)
}

// SimulateValidate simulates Validate. opts.From must be the ValidatorCaller.
func (v *SignerValidator) SimulateValidate(opts *SimOpts, boostID, incentiveID *big.Int, claimant common.Address, claimData []byte) (*Simulation[bool], error) {
	return Simulate[bool](opts, v.Contract, signerSimValidate, boostID, incentiveID, claimant, claimData)
}
