// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package contracts provides typed bindings to the Boost protocol contracts.
// Each wrapper method is bound to one function or event of one contract ABI
// and delegates to a generic read, write, simulate, watch or filter
// primitive.
package contracts

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrNoOutput is returned when a simulated function with outputs returns no
// data, usually because there is no contract at the address.
var ErrNoOutput = errors.New("no output from call")

// Contract is a deployed protocol contract: its ABI, its address and the
// backend used to reach it.
type Contract struct {
	Name    string
	Address common.Address
	ABI     *abi.ABI

	backend bind.ContractBackend
	bound   *bind.BoundContract
}

// NewContract binds the named contract ABI at addr.
func NewContract(name string, addr common.Address, backend bind.ContractBackend) (*Contract, error) {
	parsed, err := abis.Get(name)
	if err != nil {
		return nil, err
	}
	return &Contract{
		Name:    name,
		Address: addr,
		ABI:     parsed,
		backend: backend,
		bound:   bind.NewBoundContract(addr, *parsed, backend, backend, backend),
	}, nil
}

func (c *Contract) String() string {
	return fmt.Sprintf("%s(%s)", c.Name, c.Address)
}

// Call is an unbound eth_call of any function in the contract ABI. The
// outputs are returned as decoded by the ABI.
func (c *Contract) Call(opts *bind.CallOpts, method string, args ...any) ([]any, error) {
	var out []any
	if err := c.bound.Call(opts, &out, method, args...); err != nil {
		return nil, c.wrapRevert(err)
	}
	return out, nil
}

// SimulateCall is an unbound simulation of any function in the contract
// ABI. The decoded outputs and a gas estimate are returned.
func (c *Contract) SimulateCall(opts *SimOpts, method string, args ...any) ([]any, uint64, error) {
	m, found := c.ABI.Methods[method]
	if !found {
		return nil, 0, fmt.Errorf("%s has no function %q", c.Name, method)
	}
	out, msg, err := c.simulate(opts, &m, args)
	if err != nil {
		return nil, 0, err
	}
	gas, err := c.backend.EstimateGas(opts.context(), msg)
	if err != nil {
		return nil, 0, c.wrapRevert(err)
	}
	return out, gas, nil
}

func (c *Contract) simulate(opts *SimOpts, m *abi.Method, args []any) ([]any, ethereum.CallMsg, error) {
	input, err := c.ABI.Pack(m.Name, args...)
	if err != nil {
		return nil, ethereum.CallMsg{}, fmt.Errorf("error packing %s.%s: %w", c.Name, m.Name, err)
	}
	msg := ethereum.CallMsg{
		From:  opts.From,
		To:    &c.Address,
		Value: opts.Value,
		Data:  input,
	}
	output, err := c.backend.CallContract(opts.context(), msg, opts.BlockNumber)
	if err != nil {
		return nil, msg, c.wrapRevert(err)
	}
	if len(m.Outputs) == 0 {
		return nil, msg, nil
	}
	if len(output) == 0 {
		return nil, msg, ErrNoOutput
	}
	out, err := m.Outputs.Unpack(output)
	if err != nil {
		return nil, msg, fmt.Errorf("error unpacking %s.%s: %w", c.Name, m.Name, err)
	}
	return out, msg, nil
}

// DecodedLog is a log decoded against the contract ABI.
type DecodedLog struct {
	Contract string
	Event    string
	Args     map[string]any
	Log      types.Log
}

// DecodeLog decodes any log emitted by the contract.
func (c *Contract) DecodeLog(l types.Log) (*DecodedLog, error) {
	if len(l.Topics) == 0 {
		return nil, fmt.Errorf("anonymous log from %s", c)
	}
	ev, err := c.ABI.EventByID(l.Topics[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c, err)
	}
	args := make(map[string]any, len(ev.Inputs))
	if err := c.bound.UnpackLogIntoMap(args, ev.Name, l); err != nil {
		return nil, fmt.Errorf("error decoding %s %s log: %w", c, ev.Name, err)
	}
	return &DecodedLog{
		Contract: c.Name,
		Event:    ev.Name,
		Args:     args,
		Log:      l,
	}, nil
}

// SimOpts are the options for a simulated state-changing call.
type SimOpts struct {
	Context     context.Context
	From        common.Address
	Value       *big.Int
	BlockNumber *big.Int // nil for latest
}

func (o *SimOpts) context() context.Context {
	if o.Context == nil {
		return context.Background()
	}
	return o.Context
}

// Simulation is the result of a simulated call. Request is the message that
// was simulated, ready to be signed and sent unchanged.
type Simulation[T any] struct {
	Result  T
	Request ethereum.CallMsg
	Gas     uint64
}

func callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}
