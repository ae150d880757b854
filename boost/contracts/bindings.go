// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"errors"
	"fmt"
	"sort"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Kind is the kind of a wrapper binding.
type Kind uint8

const (
	KindRead Kind = iota
	KindWrite
	KindSimulate
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	case KindSimulate:
		return "simulate"
	case KindEvent:
		return "event"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Binding ties a wrapper to one ABI entry of one contract.
type Binding struct {
	Contract string
	Name     string
	Kind     Kind
}

func (b Binding) String() string {
	return fmt.Sprintf("%s %s.%s", b.Kind, b.Contract, b.Name)
}

// Method is a function descriptor. The same descriptor serves every contract
// it was bound for.
type Method struct {
	Name string
	Kind Kind
}

// Event is an event descriptor.
type Event struct {
	Name string
}

var bindingSet = make(map[Binding]struct{})

func register(name string, kind Kind, contracts []string) {
	for _, contract := range contracts {
		bindingSet[Binding{Contract: contract, Name: name, Kind: kind}] = struct{}{}
	}
}

func bindRead(name string, contracts ...string) Method {
	register(name, KindRead, contracts)
	return Method{Name: name, Kind: KindRead}
}

func bindWrite(name string, contracts ...string) Method {
	register(name, KindWrite, contracts)
	return Method{Name: name, Kind: KindWrite}
}

func bindSimulate(name string, contracts ...string) Method {
	register(name, KindSimulate, contracts)
	return Method{Name: name, Kind: KindSimulate}
}

func bindEvent(name string, contracts ...string) Event {
	register(name, KindEvent, contracts)
	return Event{Name: name}
}

func isBound(contract, name string, kind Kind) bool {
	_, found := bindingSet[Binding{Contract: contract, Name: name, Kind: kind}]
	return found
}

// checkBinding returns an error if the descriptor was not bound for the
// contract.
func (c *Contract) checkBinding(name string, kind Kind) error {
	if !isBound(c.Name, name, kind) {
		return fmt.Errorf("%s has no %s binding for %q", c.Name, kind, name)
	}
	return nil
}

// Bindings lists every registered wrapper binding, sorted.
func Bindings() []Binding {
	bs := make([]Binding, 0, len(bindingSet))
	for b := range bindingSet {
		bs = append(bs, b)
	}
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].Contract != bs[j].Contract {
			return bs[i].Contract < bs[j].Contract
		}
		if bs[i].Name != bs[j].Name {
			return bs[i].Name < bs[j].Name
		}
		return bs[i].Kind < bs[j].Kind
	})
	return bs
}

func isView(m abi.Method) bool {
	return m.StateMutability == "view" || m.StateMutability == "pure"
}

// VerifyBindings checks every binding against its contract ABI. A read must
// name a view or pure function, a write or simulate a state-changing one, and
// an event an ABI event. Every function of every ABI must have a read or
// write binding, and every event an event binding.
func VerifyBindings() error {
	var errs []error
	for _, b := range Bindings() {
		a, err := abis.Get(b.Contract)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b, err))
			continue
		}
		if b.Kind == KindEvent {
			if _, found := a.Events[b.Name]; !found {
				errs = append(errs, fmt.Errorf("%s: no such event", b))
			}
			continue
		}
		m, found := a.Methods[b.Name]
		if !found {
			errs = append(errs, fmt.Errorf("%s: no such function", b))
			continue
		}
		if (b.Kind == KindRead) != isView(m) {
			errs = append(errs, fmt.Errorf("%s: function is %s", b, m.StateMutability))
		}
	}

	for _, name := range abis.Names() {
		a, _ := abis.Get(name)
		for fn, m := range a.Methods {
			kind := KindWrite
			if isView(m) {
				kind = KindRead
			}
			if !isBound(name, fn, kind) {
				errs = append(errs, fmt.Errorf("%s.%s has no %s binding", name, fn, kind))
			}
		}
		for ev := range a.Events {
			if !isBound(name, ev, KindEvent) {
				errs = append(errs, fmt.Errorf("%s event %s has no binding", name, ev))
			}
		}
	}
	return errors.Join(errs...)
}
