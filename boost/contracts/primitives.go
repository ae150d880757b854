// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// Read performs an eth_call of a view or pure function. A function with a
// single output is converted to T. A function with several outputs is copied
// into T, which must be a struct with a field for each named output.
func Read[T any](opts *bind.CallOpts, c *Contract, m Method, args ...any) (T, error) {
	var zero T
	if m.Kind != KindRead {
		return zero, fmt.Errorf("%s is a %s binding, not read", m.Name, m.Kind)
	}
	if err := c.checkBinding(m.Name, KindRead); err != nil {
		return zero, err
	}
	var out []any
	if err := c.bound.Call(opts, &out, m.Name, args...); err != nil {
		return zero, c.wrapRevert(err)
	}
	return convertOutputs[T](c.ABI.Methods[m.Name], out)
}

// Write signs and sends a transaction calling a state-changing function.
func Write(opts *bind.TransactOpts, c *Contract, m Method, args ...any) (*types.Transaction, error) {
	if m.Kind != KindWrite {
		return nil, fmt.Errorf("%s is a %s binding, not write", m.Name, m.Kind)
	}
	if err := c.checkBinding(m.Name, KindWrite); err != nil {
		return nil, err
	}
	tx, err := c.bound.Transact(opts, m.Name, args...)
	if err != nil {
		return nil, c.wrapRevert(err)
	}
	return tx, nil
}

// Simulate runs a state-changing function as an eth_call from opts.From with
// opts.Value attached, and estimates the gas a transaction would use. Use
// struct{} for T when the function has no outputs.
func Simulate[T any](opts *SimOpts, c *Contract, m Method, args ...any) (*Simulation[T], error) {
	if m.Kind != KindSimulate {
		return nil, fmt.Errorf("%s is a %s binding, not simulate", m.Name, m.Kind)
	}
	if err := c.checkBinding(m.Name, KindSimulate); err != nil {
		return nil, err
	}
	method := c.ABI.Methods[m.Name]
	out, msg, err := c.simulate(opts, &method, args)
	if err != nil {
		return nil, err
	}
	res, err := convertOutputs[T](method, out)
	if err != nil {
		return nil, err
	}
	gas, err := c.backend.EstimateGas(opts.context(), msg)
	if err != nil {
		return nil, c.wrapRevert(err)
	}
	return &Simulation[T]{
		Result:  res,
		Request: msg,
		Gas:     gas,
	}, nil
}

// Log carries the raw log an event was decoded from. Every event type embeds
// it.
type Log struct {
	Raw types.Log `json:"-"`
}

func (l *Log) setRaw(raw types.Log) {
	l.Raw = raw
}

type rawSetter[E any] interface {
	*E
	setRaw(types.Log)
}

// Watch subscribes to an event, sending each decoded occurrence to sink.
// Query lists the accepted values of each indexed argument in order. A nil
// or empty rule matches anything.
func Watch[E any, PE rawSetter[E]](opts *bind.WatchOpts, c *Contract, ev Event, sink chan<- *E, query ...[]any) (event.Subscription, error) {
	if err := c.checkBinding(ev.Name, KindEvent); err != nil {
		return nil, err
	}
	logs, sub, err := c.bound.WatchLogs(opts, ev.Name, query...)
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				e := PE(new(E))
				if err := c.bound.UnpackLog(e, ev.Name, log); err != nil {
					return err
				}
				e.setRaw(log)

				select {
				case sink <- (*E)(e):
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// Filter retrieves and decodes past occurrences of an event.
func Filter[E any, PE rawSetter[E]](opts *bind.FilterOpts, c *Contract, ev Event, query ...[]any) ([]*E, error) {
	if err := c.checkBinding(ev.Name, KindEvent); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = new(bind.FilterOpts)
	}
	q, err := c.filterQuery(ev.Name, opts.Start, opts.End, query...)
	if err != nil {
		return nil, err
	}
	logs, err := c.backend.FilterLogs(ensureContext(opts), q)
	if err != nil {
		return nil, err
	}
	evs := make([]*E, 0, len(logs))
	for _, log := range logs {
		e := PE(new(E))
		if err := c.bound.UnpackLog(e, ev.Name, log); err != nil {
			return nil, err
		}
		e.setRaw(log)
		evs = append(evs, (*E)(e))
	}
	return evs, nil
}

// Parse decodes a single log of the event, such as one from a transaction
// receipt.
func Parse[E any, PE rawSetter[E]](c *Contract, ev Event, log types.Log) (*E, error) {
	if err := c.checkBinding(ev.Name, KindEvent); err != nil {
		return nil, err
	}
	if log.Address != c.Address {
		return nil, fmt.Errorf("log is from %s, not %s", log.Address, c)
	}
	if len(log.Topics) == 0 || log.Topics[0] != c.ABI.Events[ev.Name].ID {
		return nil, fmt.Errorf("log is not a %s event", ev.Name)
	}
	e := PE(new(E))
	if err := c.bound.UnpackLog(e, ev.Name, log); err != nil {
		return nil, err
	}
	e.setRaw(log)
	return (*E)(e), nil
}

func (c *Contract) filterQuery(name string, start uint64, end *uint64, query ...[]any) (ethereum.FilterQuery, error) {
	ev, found := c.ABI.Events[name]
	if !found {
		return ethereum.FilterQuery{}, fmt.Errorf("%s has no event %q", c.Name, name)
	}
	query = append([][]any{{ev.ID}}, query...)
	topics, err := abi.MakeTopics(query...)
	if err != nil {
		return ethereum.FilterQuery{}, err
	}
	q := ethereum.FilterQuery{
		Addresses: []common.Address{c.Address},
		Topics:    topics,
		FromBlock: new(big.Int).SetUint64(start),
	}
	if end != nil {
		q.ToBlock = new(big.Int).SetUint64(*end)
	}
	return q, nil
}

func ensureContext(opts *bind.FilterOpts) context.Context {
	if opts.Context == nil {
		return context.Background()
	}
	return opts.Context
}

// rule converts indexed argument values to a topic rule.
func rule[V any](vs []V) []any {
	r := make([]any, 0, len(vs))
	for _, v := range vs {
		r = append(r, v)
	}
	return r
}

// convertOutputs converts the decoded outputs of m to T. abi.ConvertType
// panics on a type mismatch, which is returned as an error instead.
func convertOutputs[T any](m abi.Method, out []any) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cannot convert %s outputs to %T: %v", m.Name, res, r)
		}
	}()
	switch len(out) {
	case 0:
		return res, nil
	case 1:
		return *abi.ConvertType(out[0], new(T)).(*T), nil
	}
	if err = m.Outputs.Copy(&res, out); err != nil {
		return res, fmt.Errorf("cannot copy %s outputs: %w", m.Name, err)
	}
	return res, nil
}
