// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

var budgetContracts = []string{abis.SimpleBudgetName, abis.VestingBudgetName}

var (
	budgetAvailable     = bindRead("available", budgetContracts...)
	budgetDistributed   = bindRead("distributed", budgetContracts...)
	budgetIsAuthorized  = bindRead("isAuthorized", budgetContracts...)
	budgetTotal         = bindRead("total", budgetContracts...)
	budgetAllocate      = bindWrite("allocate", budgetContracts...)
	budgetDisburse      = bindWrite("disburse", budgetContracts...)
	budgetDisburseBatch = bindWrite("disburseBatch", budgetContracts...)
	budgetReclaim       = bindWrite("reclaim", budgetContracts...)
	budgetReconcile     = bindWrite("reconcile", budgetContracts...)
	budgetSetAuthorized = bindWrite("setAuthorized", budgetContracts...)
	budgetSimAllocate   = bindSimulate("allocate", budgetContracts...)
	budgetSimDisburse   = bindSimulate("disburse", budgetContracts...)
	budgetSimReclaim    = bindSimulate("reclaim", budgetContracts...)
	budgetDistributedEv = bindEvent("Distributed", budgetContracts...)

	vestingCliff    = bindRead("cliff", abis.VestingBudgetName)
	vestingDuration = bindRead("duration", abis.VestingBudgetName)
	vestingEnd      = bindRead("end", abis.VestingBudgetName)
	vestingStart    = bindRead("start", abis.VestingBudgetName)
)

// Distributed is emitted when a budget pays out an asset.
type Distributed struct {
	Asset  common.Address
	To     common.Address
	Amount *big.Int
	Log
}

// budget is the surface shared by every budget contract.
type budget struct {
	*Contract
	ownable
	erc165
}

func newBudget(name string, addr common.Address, backend bind.ContractBackend) (*budget, error) {
	c, err := NewContract(name, addr, backend)
	if err != nil {
		return nil, err
	}
	return &budget{Contract: c, ownable: ownable{owned{c}}, erc165: erc165{c}}, nil
}

// Available is the amount of asset available for disbursal. The zero address
// is ETH.
func (b *budget) Available(ctx context.Context, asset common.Address) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), b.Contract, budgetAvailable, asset)
}

// Distributed is the amount of asset disbursed so far.
func (b *budget) Distributed(ctx context.Context, asset common.Address) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), b.Contract, budgetDistributed, asset)
}

// IsAuthorized checks whether account may disburse from the budget.
func (b *budget) IsAuthorized(ctx context.Context, account common.Address) (bool, error) {
	return Read[bool](callOpts(ctx), b.Contract, budgetIsAuthorized, account)
}

// Total is the total amount of asset allocated to the budget.
func (b *budget) Total(ctx context.Context, asset common.Address) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), b.Contract, budgetTotal, asset)
}

// Allocate allocates assets to the budget from encoded Transfer data.
func (b *budget) Allocate(opts *bind.TransactOpts, data []byte) (*types.Transaction, error) {
	return Write(opts, b.Contract, budgetAllocate, data)
}

// AllocateTransfer encodes t and allocates it.
func (b *budget) AllocateTransfer(opts *bind.TransactOpts, t *Transfer) (*types.Transaction, error) {
	data, err := EncodeTransfer(t)
	if err != nil {
		return nil, fmt.Errorf("error encoding transfer: %w", err)
	}
	return b.Allocate(opts, data)
}

// Disburse pays out assets from encoded Transfer data.
func (b *budget) Disburse(opts *bind.TransactOpts, data []byte) (*types.Transaction, error) {
	return Write(opts, b.Contract, budgetDisburse, data)
}

// DisburseTransfer encodes t and disburses it.
func (b *budget) DisburseTransfer(opts *bind.TransactOpts, t *Transfer) (*types.Transaction, error) {
	data, err := EncodeTransfer(t)
	if err != nil {
		return nil, fmt.Errorf("error encoding transfer: %w", err)
	}
	return b.Disburse(opts, data)
}

// DisburseBatch pays out several encoded Transfers in one transaction.
func (b *budget) DisburseBatch(opts *bind.TransactOpts, data [][]byte) (*types.Transaction, error) {
	return Write(opts, b.Contract, budgetDisburseBatch, data)
}

// Reclaim returns assets from the budget to the owner.
func (b *budget) Reclaim(opts *bind.TransactOpts, data []byte) (*types.Transaction, error) {
	return Write(opts, b.Contract, budgetReclaim, data)
}

// ReclaimTransfer encodes t and reclaims it.
func (b *budget) ReclaimTransfer(opts *bind.TransactOpts, t *Transfer) (*types.Transaction, error) {
	data, err := EncodeTransfer(t)
	if err != nil {
		return nil, fmt.Errorf("error encoding transfer: %w", err)
	}
	return b.Reclaim(opts, data)
}

// Reconcile reconciles the budget's accounting for encoded Transfer data.
func (b *budget) Reconcile(opts *bind.TransactOpts, data []byte) (*types.Transaction, error) {
	return Write(opts, b.Contract, budgetReconcile, data)
}

// SetAuthorized sets the disbursal authorization of each account.
func (b *budget) SetAuthorized(opts *bind.TransactOpts, accounts []common.Address, authorized []bool) (*types.Transaction, error) {
	if err := checkLengths(len(accounts), len(authorized)); err != nil {
		return nil, err
	}
	return Write(opts, b.Contract, budgetSetAuthorized, accounts, authorized)
}

// SimulateAllocate simulates Allocate, returning whether it succeeds.
func (b *budget) SimulateAllocate(opts *SimOpts, data []byte) (*Simulation[bool], error) {
	return Simulate[bool](opts, b.Contract, budgetSimAllocate, data)
}

// SimulateDisburse simulates Disburse.
func (b *budget) SimulateDisburse(opts *SimOpts, data []byte) (*Simulation[bool], error) {
	return Simulate[bool](opts, b.Contract, budgetSimDisburse, data)
}

// SimulateReclaim simulates Reclaim.
func (b *budget) SimulateReclaim(opts *SimOpts, data []byte) (*Simulation[bool], error) {
	return Simulate[bool](opts, b.Contract, budgetSimReclaim, data)
}

// WatchDistributed subscribes to Distributed events.
func (b *budget) WatchDistributed(opts *bind.WatchOpts, sink chan<- *Distributed, asset []common.Address) (event.Subscription, error) {
	return Watch[Distributed](opts, b.Contract, budgetDistributedEv, sink, rule(asset))
}

// FilterDistributed retrieves past Distributed events.
func (b *budget) FilterDistributed(opts *bind.FilterOpts, asset []common.Address) ([]*Distributed, error) {
	return Filter[Distributed](opts, b.Contract, budgetDistributedEv, rule(asset))
}

// SimpleBudget is a budget that disburses on demand of authorized accounts.
type SimpleBudget struct {
	*budget
}

// NewSimpleBudget binds the SimpleBudget at addr.
func NewSimpleBudget(addr common.Address, backend bind.ContractBackend) (*SimpleBudget, error) {
	b, err := newBudget(abis.SimpleBudgetName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &SimpleBudget{b}, nil
}

// VestingBudget is a budget whose allocation becomes available over time.
type VestingBudget struct {
	*budget
}

// NewVestingBudget binds the VestingBudget at addr.
func NewVestingBudget(addr common.Address, backend bind.ContractBackend) (*VestingBudget, error) {
	b, err := newBudget(abis.VestingBudgetName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &VestingBudget{b}, nil
}

// Cliff is the vesting cliff in seconds after Start.
func (v *VestingBudget) Cliff(ctx context.Context) (uint64, error) {
	return Read[uint64](callOpts(ctx), v.Contract, vestingCliff)
}

// Duration is the vesting duration in seconds.
func (v *VestingBudget) Duration(ctx context.Context) (uint64, error) {
	return Read[uint64](callOpts(ctx), v.Contract, vestingDuration)
}

// End is the vesting end as a unix timestamp.
func (v *VestingBudget) End(ctx context.Context) (uint64, error) {
	return Read[uint64](callOpts(ctx), v.Contract, vestingEnd)
}

// Start is the vesting start as a unix timestamp.
func (v *VestingBudget) Start(ctx context.Context) (uint64, error) {
	return Read[uint64](callOpts(ctx), v.Contract, vestingStart)
}
