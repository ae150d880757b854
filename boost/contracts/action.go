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

var actionContracts = []string{abis.ContractActionName, abis.ERC721MintActionName}

var (
	actionValidator  = bindRead("VALIDATOR", actionContracts...)
	actionChainID    = bindRead("chainId", actionContracts...)
	actionPrepare    = bindRead("prepare", actionContracts...)
	actionSelector   = bindRead("selector", actionContracts...)
	actionTarget     = bindRead("target", actionContracts...)
	actionValue      = bindRead("value", actionContracts...)
	actionExecute    = bindWrite("execute", actionContracts...)
	actionSimExecute = bindSimulate("execute", actionContracts...)
	actionExecuted   = bindEvent("ActionExecuted", actionContracts...)
	actionValidated  = bindEvent("ActionValidated", actionContracts...)

	mintValidate    = bindWrite("validate", abis.ERC721MintActionName)
	mintSimValidate = bindSimulate("validate", abis.ERC721MintActionName)
	mintValidated   = bindRead("validated", abis.ERC721MintActionName)
)

// ActionExecuted is emitted when an action is executed.
type ActionExecuted struct {
	Executor common.Address
	Caller   common.Address
	Success  bool
	Data     []byte
	Log
}

// ActionValidated is emitted when a user's action is validated.
type ActionValidated struct {
	User        common.Address
	IsValidated bool
	Data        []byte
	Log
}

// action is the surface shared by every action contract: a call of selector
// on target with value, on chain ChainID.
type action struct {
	*Contract
	owned
	erc165
}

func newAction(name string, addr common.Address, backend bind.ContractBackend) (*action, error) {
	c, err := NewContract(name, addr, backend)
	if err != nil {
		return nil, err
	}
	return &action{Contract: c, owned: owned{c}, erc165: erc165{c}}, nil
}

// Validator is the action's validator.
func (a *action) Validator(ctx context.Context) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), a.Contract, actionValidator)
}

// ChainID is the chain the target lives on.
func (a *action) ChainID(ctx context.Context) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), a.Contract, actionChainID)
}

// Prepare returns the calldata to send to the target for data.
func (a *action) Prepare(ctx context.Context, data []byte) ([]byte, error) {
	return Read[[]byte](callOpts(ctx), a.Contract, actionPrepare, data)
}

// Selector is the target function selector.
func (a *action) Selector(ctx context.Context) ([4]byte, error) {
	return Read[[4]byte](callOpts(ctx), a.Contract, actionSelector)
}

// Target is the contract the action calls.
func (a *action) Target(ctx context.Context) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), a.Contract, actionTarget)
}

// Value is the ETH value sent with the call.
func (a *action) Value(ctx context.Context) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), a.Contract, actionValue)
}

// Execute executes the action.
func (a *action) Execute(opts *bind.TransactOpts, data []byte) (*types.Transaction, error) {
	return Write(opts, a.Contract, actionExecute, data)
}

// SimulateExecute simulates Execute, returning the call result.
func (a *action) SimulateExecute(opts *SimOpts, data []byte) (*Simulation[ExecuteResult], error) {
	return Simulate[ExecuteResult](opts, a.Contract, actionSimExecute, data)
}

// WatchActionExecuted subscribes to ActionExecuted events.
func (a *action) WatchActionExecuted(opts *bind.WatchOpts, sink chan<- *ActionExecuted, executor []common.Address) (event.Subscription, error) {
	return Watch[ActionExecuted](opts, a.Contract, actionExecuted, sink, rule(executor))
}

// FilterActionExecuted retrieves past ActionExecuted events.
func (a *action) FilterActionExecuted(opts *bind.FilterOpts, executor []common.Address) ([]*ActionExecuted, error) {
	return Filter[ActionExecuted](opts, a.Contract, actionExecuted, rule(executor))
}

// WatchActionValidated subscribes to ActionValidated events.
func (a *action) WatchActionValidated(opts *bind.WatchOpts, sink chan<- *ActionValidated, user []common.Address) (event.Subscription, error) {
	return Watch[ActionValidated](opts, a.Contract, actionValidated, sink, rule(user))
}

// FilterActionValidated retrieves past ActionValidated events.
func (a *action) FilterActionValidated(opts *bind.FilterOpts, user []common.Address) ([]*ActionValidated, error) {
	return Filter[ActionValidated](opts, a.Contract, actionValidated, rule(user))
}

// ContractAction calls a function on a target contract.
type ContractAction struct {
	*action
}

// NewContractAction binds the ContractAction at addr.
func NewContractAction(addr common.Address, backend bind.ContractBackend) (*ContractAction, error) {
	a, err := newAction(abis.ContractActionName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &ContractAction{a}, nil
}

// ERC721MintAction is a ContractAction that mints an ERC721 token and
// validates claims by token ownership.
type ERC721MintAction struct {
	*action
}

// NewERC721MintAction binds the ERC721MintAction at addr.
func NewERC721MintAction(addr common.Address, backend bind.ContractBackend) (*ERC721MintAction, error) {
	a, err := newAction(abis.ERC721MintActionName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &ERC721MintAction{a}, nil
}

// Validated checks whether tokenID has been used to validate a claim.
func (a *ERC721MintAction) Validated(ctx context.Context, tokenID *big.Int) (bool, error) {
	return Read[bool](callOpts(ctx), a.Contract, mintValidated, tokenID)
}

// Validate validates a claim.
func (a *ERC721MintAction) Validate(opts *bind.TransactOpts, boostID, incentiveID *big.Int, claimant common.Address, data []byte) (*types.Transaction, error) {
	return Write(opts, a.Contract, mintValidate, boostID, incentiveID, claimant, data)
}

// SimulateValidate simulates Validate.
func (a *ERC721MintAction) SimulateValidate(opts *SimOpts, boostID, incentiveID *big.Int, claimant common.Address, data []byte) (*Simulation[bool], error) {
	return Simulate[bool](opts, a.Contract, mintSimValidate, boostID, incentiveID, claimant, data)
}
