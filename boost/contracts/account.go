// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/boostxyz/boost-protocol-sub000/boost/erc4337"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

var stakedContracts = []string{abis.BoostAccountName, abis.BoostPaymasterName}

var (
	entryPointFn = bindRead("entryPoint", stakedContracts...)
	getDepositFn = bindRead("getDeposit", stakedContracts...)

	accountGetNonce          = bindRead("getNonce", abis.BoostAccountName)
	accountAddDeposit        = bindWrite("addDeposit", abis.BoostAccountName)
	accountExecute           = bindWrite("execute", abis.BoostAccountName)
	accountExecuteBatch      = bindWrite("executeBatch", abis.BoostAccountName)
	accountValidateUserOp    = bindWrite("validateUserOp", abis.BoostAccountName)
	accountWithdrawDepositTo = bindWrite("withdrawDepositTo", abis.BoostAccountName)
	accountSimExecute        = bindSimulate("execute", abis.BoostAccountName)
	accountInitialized       = bindEvent("BoostAccountInitialized", abis.BoostAccountName)
)

// BoostAccountInitialized is emitted once when an account is set up.
type BoostAccountInitialized struct {
	EntryPoint common.Address
	Owner      common.Address
	Log
}

// BoostAccount is an ERC-4337 smart account whose owner signs user
// operations.
type BoostAccount struct {
	*Contract
	owned
}

// NewBoostAccount binds the BoostAccount at addr.
func NewBoostAccount(addr common.Address, backend bind.ContractBackend) (*BoostAccount, error) {
	c, err := NewContract(abis.BoostAccountName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &BoostAccount{Contract: c, owned: owned{c}}, nil
}

// EntryPoint is the EntryPoint the account trusts.
func (a *BoostAccount) EntryPoint(ctx context.Context) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), a.Contract, entryPointFn)
}

// GetDeposit is the account's deposit in the EntryPoint.
func (a *BoostAccount) GetDeposit(ctx context.Context) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), a.Contract, getDepositFn)
}

// GetNonce is the account's next EntryPoint nonce.
func (a *BoostAccount) GetNonce(ctx context.Context) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), a.Contract, accountGetNonce)
}

// AddDeposit deposits opts.Value into the EntryPoint for the account.
func (a *BoostAccount) AddDeposit(opts *bind.TransactOpts) (*types.Transaction, error) {
	return Write(opts, a.Contract, accountAddDeposit)
}

// Execute calls dest with value and data from the account.
func (a *BoostAccount) Execute(opts *bind.TransactOpts, dest common.Address, value *big.Int, data []byte) (*types.Transaction, error) {
	return Write(opts, a.Contract, accountExecute, dest, value, data)
}

// SimulateExecute simulates Execute from opts.From.
func (a *BoostAccount) SimulateExecute(opts *SimOpts, dest common.Address, value *big.Int, data []byte) (*Simulation[struct{}], error) {
	return Simulate[struct{}](opts, a.Contract, accountSimExecute, dest, value, data)
}

// ExecuteBatch performs several calls from the account.
func (a *BoostAccount) ExecuteBatch(opts *bind.TransactOpts, dest []common.Address, value []*big.Int, data [][]byte) (*types.Transaction, error) {
	if err := checkLengths(len(dest), len(value), len(data)); err != nil {
		return nil, err
	}
	return Write(opts, a.Contract, accountExecuteBatch, dest, value, data)
}

// ValidateUserOp is called by the EntryPoint to validate an operation.
func (a *BoostAccount) ValidateUserOp(opts *bind.TransactOpts, op *erc4337.PackedUserOperation, userOpHash [32]byte, missingAccountFunds *big.Int) (*types.Transaction, error) {
	return Write(opts, a.Contract, accountValidateUserOp, *op, userOpHash, missingAccountFunds)
}

// WithdrawDepositTo withdraws amount of the account's EntryPoint deposit.
func (a *BoostAccount) WithdrawDepositTo(opts *bind.TransactOpts, to common.Address, amount *big.Int) (*types.Transaction, error) {
	return Write(opts, a.Contract, accountWithdrawDepositTo, to, amount)
}

// WatchInitialized subscribes to BoostAccountInitialized events.
func (a *BoostAccount) WatchInitialized(opts *bind.WatchOpts, sink chan<- *BoostAccountInitialized, entryPoint, owner []common.Address) (event.Subscription, error) {
	return Watch[BoostAccountInitialized](opts, a.Contract, accountInitialized, sink, rule(entryPoint), rule(owner))
}

// FilterInitialized retrieves past BoostAccountInitialized events.
func (a *BoostAccount) FilterInitialized(opts *bind.FilterOpts, entryPoint, owner []common.Address) ([]*BoostAccountInitialized, error) {
	return Filter[BoostAccountInitialized](opts, a.Contract, accountInitialized, rule(entryPoint), rule(owner))
}

// ExecuteCallData is the account calldata for a single call, for use as a
// user operation's CallData.
func ExecuteCallData(dest common.Address, value *big.Int, data []byte) ([]byte, error) {
	return packCall(abis.BoostAccountName, accountExecute, dest, value, data)
}

// ExecuteBatchCallData is the account calldata for several calls.
func ExecuteBatchCallData(dest []common.Address, value []*big.Int, data [][]byte) ([]byte, error) {
	if err := checkLengths(len(dest), len(value), len(data)); err != nil {
		return nil, err
	}
	return packCall(abis.BoostAccountName, accountExecuteBatch, dest, value, data)
}

func packCall(contract string, m Method, args ...any) ([]byte, error) {
	a, err := abis.Get(contract)
	if err != nil {
		return nil, err
	}
	b, err := a.Pack(m.Name, args...)
	if err != nil {
		return nil, fmt.Errorf("error packing %s.%s: %w", contract, m.Name, err)
	}
	return b, nil
}
