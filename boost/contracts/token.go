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
	"github.com/ethereum/go-ethereum/event"
)

var (
	erc20Allowance    = bindRead("allowance", abis.ERC20Name)
	erc20BalanceOf    = bindRead("balanceOf", abis.ERC20Name)
	erc20Decimals     = bindRead("decimals", abis.ERC20Name)
	erc20Symbol       = bindRead("symbol", abis.ERC20Name)
	erc20TotalSupply  = bindRead("totalSupply", abis.ERC20Name)
	erc20Approve      = bindWrite("approve", abis.ERC20Name)
	erc20Transfer     = bindWrite("transfer", abis.ERC20Name)
	erc20TransferFrom = bindWrite("transferFrom", abis.ERC20Name)
	erc20TransferEv   = bindEvent("Transfer", abis.ERC20Name)
	erc20ApprovalEv   = bindEvent("Approval", abis.ERC20Name)

	erc1155BalanceOf         = bindRead("balanceOf", abis.ERC1155Name)
	erc1155IsApprovedForAll  = bindRead("isApprovedForAll", abis.ERC1155Name)
	erc1155SetApprovalForAll = bindWrite("setApprovalForAll", abis.ERC1155Name)
	erc1155ApprovalForAllEv  = bindEvent("ApprovalForAll", abis.ERC1155Name)
	erc1155TransferSingleEv  = bindEvent("TransferSingle", abis.ERC1155Name)
)

// ERC20Transfer is an ERC-20 Transfer event.
type ERC20Transfer struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Log
}

// ERC20Approval is an ERC-20 Approval event.
type ERC20Approval struct {
	Owner   common.Address
	Spender common.Address
	Value   *big.Int
	Log
}

// ERC20Token is the ERC-20 surface budgets and incentives move.
type ERC20Token struct {
	*Contract
}

// NewERC20Token binds the token at addr.
func NewERC20Token(addr common.Address, backend bind.ContractBackend) (*ERC20Token, error) {
	c, err := NewContract(abis.ERC20Name, addr, backend)
	if err != nil {
		return nil, err
	}
	return &ERC20Token{c}, nil
}

func (t *ERC20Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), t.Contract, erc20Allowance, owner, spender)
}

func (t *ERC20Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), t.Contract, erc20BalanceOf, account)
}

func (t *ERC20Token) Decimals(ctx context.Context) (uint8, error) {
	return Read[uint8](callOpts(ctx), t.Contract, erc20Decimals)
}

func (t *ERC20Token) Symbol(ctx context.Context) (string, error) {
	return Read[string](callOpts(ctx), t.Contract, erc20Symbol)
}

func (t *ERC20Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), t.Contract, erc20TotalSupply)
}

// Approve lets spender move amount, e.g. a budget during allocation.
func (t *ERC20Token) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return Write(opts, t.Contract, erc20Approve, spender, amount)
}

func (t *ERC20Token) Transfer(opts *bind.TransactOpts, to common.Address, amount *big.Int) (*types.Transaction, error) {
	return Write(opts, t.Contract, erc20Transfer, to, amount)
}

func (t *ERC20Token) TransferFrom(opts *bind.TransactOpts, from, to common.Address, amount *big.Int) (*types.Transaction, error) {
	return Write(opts, t.Contract, erc20TransferFrom, from, to, amount)
}

// WatchTransfer subscribes to Transfer events.
func (t *ERC20Token) WatchTransfer(opts *bind.WatchOpts, sink chan<- *ERC20Transfer, from, to []common.Address) (event.Subscription, error) {
	return Watch[ERC20Transfer](opts, t.Contract, erc20TransferEv, sink, rule(from), rule(to))
}

// FilterTransfer retrieves past Transfer events.
func (t *ERC20Token) FilterTransfer(opts *bind.FilterOpts, from, to []common.Address) ([]*ERC20Transfer, error) {
	return Filter[ERC20Transfer](opts, t.Contract, erc20TransferEv, rule(from), rule(to))
}

// WatchApproval subscribes to Approval events.
func (t *ERC20Token) WatchApproval(opts *bind.WatchOpts, sink chan<- *ERC20Approval, owner, spender []common.Address) (event.Subscription, error) {
	return Watch[ERC20Approval](opts, t.Contract, erc20ApprovalEv, sink, rule(owner), rule(spender))
}

// FilterApproval retrieves past Approval events.
func (t *ERC20Token) FilterApproval(opts *bind.FilterOpts, owner, spender []common.Address) ([]*ERC20Approval, error) {
	return Filter[ERC20Approval](opts, t.Contract, erc20ApprovalEv, rule(owner), rule(spender))
}

// ApprovalForAll is an ERC-1155 ApprovalForAll event.
type ApprovalForAll struct {
	Account  common.Address
	Operator common.Address
	Approved bool
	Log
}

// TransferSingle is an ERC-1155 TransferSingle event.
type TransferSingle struct {
	Operator common.Address
	From     common.Address
	To       common.Address
	Id       *big.Int
	Value    *big.Int
	Log
}

// ERC1155Token is the ERC-1155 surface budgets and incentives move.
type ERC1155Token struct {
	*Contract
}

// NewERC1155Token binds the token at addr.
func NewERC1155Token(addr common.Address, backend bind.ContractBackend) (*ERC1155Token, error) {
	c, err := NewContract(abis.ERC1155Name, addr, backend)
	if err != nil {
		return nil, err
	}
	return &ERC1155Token{c}, nil
}

func (t *ERC1155Token) BalanceOf(ctx context.Context, account common.Address, id *big.Int) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), t.Contract, erc1155BalanceOf, account, id)
}

func (t *ERC1155Token) IsApprovedForAll(ctx context.Context, account, operator common.Address) (bool, error) {
	return Read[bool](callOpts(ctx), t.Contract, erc1155IsApprovedForAll, account, operator)
}

// SetApprovalForAll lets operator move all of the sender's tokens, which a
// budget needs before allocation.
func (t *ERC1155Token) SetApprovalForAll(opts *bind.TransactOpts, operator common.Address, approved bool) (*types.Transaction, error) {
	return Write(opts, t.Contract, erc1155SetApprovalForAll, operator, approved)
}

// WatchApprovalForAll subscribes to ApprovalForAll events.
func (t *ERC1155Token) WatchApprovalForAll(opts *bind.WatchOpts, sink chan<- *ApprovalForAll, account, operator []common.Address) (event.Subscription, error) {
	return Watch[ApprovalForAll](opts, t.Contract, erc1155ApprovalForAllEv, sink, rule(account), rule(operator))
}

// FilterApprovalForAll retrieves past ApprovalForAll events.
func (t *ERC1155Token) FilterApprovalForAll(opts *bind.FilterOpts, account, operator []common.Address) ([]*ApprovalForAll, error) {
	return Filter[ApprovalForAll](opts, t.Contract, erc1155ApprovalForAllEv, rule(account), rule(operator))
}

// WatchTransferSingle subscribes to TransferSingle events.
func (t *ERC1155Token) WatchTransferSingle(opts *bind.WatchOpts, sink chan<- *TransferSingle, operator, from, to []common.Address) (event.Subscription, error) {
	return Watch[TransferSingle](opts, t.Contract, erc1155TransferSingleEv, sink, rule(operator), rule(from), rule(to))
}

// FilterTransferSingle retrieves past TransferSingle events.
func (t *ERC1155Token) FilterTransferSingle(opts *bind.FilterOpts, operator, from, to []common.Address) ([]*TransferSingle, error) {
	return Filter[TransferSingle](opts, t.Contract, erc1155TransferSingleEv, rule(operator), rule(from), rule(to))
}
