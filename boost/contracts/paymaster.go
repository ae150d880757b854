// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"context"
	"math/big"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/boostxyz/boost-protocol-sub000/boost/erc4337"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	paymasterGetHash                 = bindRead("getHash", abis.BoostPaymasterName)
	paymasterParseData               = bindRead("parsePaymasterAndData", abis.BoostPaymasterName)
	paymasterVerifyingSigner         = bindRead("verifyingSigner", abis.BoostPaymasterName)
	paymasterAddStake                = bindWrite("addStake", abis.BoostPaymasterName)
	paymasterDeposit                 = bindWrite("deposit", abis.BoostPaymasterName)
	paymasterPostOp                  = bindWrite("postOp", abis.BoostPaymasterName)
	paymasterUnlockStake             = bindWrite("unlockStake", abis.BoostPaymasterName)
	paymasterValidatePaymasterUserOp = bindWrite("validatePaymasterUserOp", abis.BoostPaymasterName)
	paymasterWithdrawStake           = bindWrite("withdrawStake", abis.BoostPaymasterName)
	paymasterWithdrawTo              = bindWrite("withdrawTo", abis.BoostPaymasterName)
)

// BoostPaymaster sponsors user operations approved by its verifying signer.
type BoostPaymaster struct {
	*Contract
	ownable
}

// NewBoostPaymaster binds the BoostPaymaster at addr.
func NewBoostPaymaster(addr common.Address, backend bind.ContractBackend) (*BoostPaymaster, error) {
	c, err := NewContract(abis.BoostPaymasterName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &BoostPaymaster{Contract: c, ownable: ownable{owned{c}}}, nil
}

// EntryPoint is the EntryPoint the paymaster serves.
func (p *BoostPaymaster) EntryPoint(ctx context.Context) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), p.Contract, entryPointFn)
}

// GetDeposit is the paymaster's deposit in the EntryPoint.
func (p *BoostPaymaster) GetDeposit(ctx context.Context) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), p.Contract, getDepositFn)
}

// GetHash is the digest the verifying signer signs to sponsor op between
// validAfter and validUntil, which are unix times.
func (p *BoostPaymaster) GetHash(ctx context.Context, op *erc4337.PackedUserOperation, validUntil, validAfter uint64) ([32]byte, error) {
	return Read[[32]byte](callOpts(ctx), p.Contract, paymasterGetHash, *op,
		new(big.Int).SetUint64(validUntil), new(big.Int).SetUint64(validAfter))
}

// ParsePaymasterAndData splits paymasterAndData as the contract does.
func (p *BoostPaymaster) ParsePaymasterAndData(ctx context.Context, paymasterAndData []byte) (*PaymasterData, error) {
	pd, err := Read[PaymasterData](callOpts(ctx), p.Contract, paymasterParseData, paymasterAndData)
	if err != nil {
		return nil, err
	}
	return &pd, nil
}

// VerifyingSigner is the account whose signature sponsors operations.
func (p *BoostPaymaster) VerifyingSigner(ctx context.Context) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), p.Contract, paymasterVerifyingSigner)
}

// AddStake stakes opts.Value in the EntryPoint.
func (p *BoostPaymaster) AddStake(opts *bind.TransactOpts, unstakeDelaySec uint32) (*types.Transaction, error) {
	return Write(opts, p.Contract, paymasterAddStake, unstakeDelaySec)
}

// Deposit deposits opts.Value into the EntryPoint for the paymaster.
func (p *BoostPaymaster) Deposit(opts *bind.TransactOpts) (*types.Transaction, error) {
	return Write(opts, p.Contract, paymasterDeposit)
}

// PostOp is called by the EntryPoint after an operation is executed.
func (p *BoostPaymaster) PostOp(opts *bind.TransactOpts, mode PostOpMode, context []byte, actualGasCost, actualUserOpFeePerGas *big.Int) (*types.Transaction, error) {
	return Write(opts, p.Contract, paymasterPostOp, uint8(mode), context, actualGasCost, actualUserOpFeePerGas)
}

// UnlockStake starts the unstake delay.
func (p *BoostPaymaster) UnlockStake(opts *bind.TransactOpts) (*types.Transaction, error) {
	return Write(opts, p.Contract, paymasterUnlockStake)
}

// ValidatePaymasterUserOp is called by the EntryPoint to approve sponsorship.
func (p *BoostPaymaster) ValidatePaymasterUserOp(opts *bind.TransactOpts, op *erc4337.PackedUserOperation, userOpHash [32]byte, maxCost *big.Int) (*types.Transaction, error) {
	return Write(opts, p.Contract, paymasterValidatePaymasterUserOp, *op, userOpHash, maxCost)
}

// WithdrawStake withdraws the unlocked stake.
func (p *BoostPaymaster) WithdrawStake(opts *bind.TransactOpts, to common.Address) (*types.Transaction, error) {
	return Write(opts, p.Contract, paymasterWithdrawStake, to)
}

// WithdrawTo withdraws amount of the paymaster's deposit.
func (p *BoostPaymaster) WithdrawTo(opts *bind.TransactOpts, to common.Address, amount *big.Int) (*types.Transaction, error) {
	return Write(opts, p.Contract, paymasterWithdrawTo, to, amount)
}
