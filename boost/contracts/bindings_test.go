package contracts

import (
	"strings"
	"testing"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
)

func TestVerifyBindings(t *testing.T) {
	if err := VerifyBindings(); err != nil {
		t.Fatalf("binding mismatch:\n%v", err)
	}
}

// Each wrapper binding names an entry in its contract's ABI with the same
// spelling, so the ABI and binding names can never drift apart.
func TestBindingNames(t *testing.T) {
	bs := Bindings()
	if len(bs) == 0 {
		t.Fatal("no bindings")
	}
	seen := make(map[string]bool)
	for _, b := range bs {
		seen[b.Contract] = true
		a, err := abis.Get(b.Contract)
		if err != nil {
			t.Fatalf("%s: %v", b, err)
		}
		switch b.Kind {
		case KindEvent:
			ev, found := a.Events[b.Name]
			if !found || ev.RawName != b.Name {
				t.Fatalf("%s: no matching event", b)
			}
		default:
			m, found := a.Methods[b.Name]
			if !found || m.RawName != b.Name {
				t.Fatalf("%s: no matching function", b)
			}
		}
	}
	for _, name := range abis.Names() {
		if !seen[name] {
			t.Fatalf("no bindings for %s", name)
		}
	}
}

func TestSimulateBindingsAreStateChanging(t *testing.T) {
	for _, b := range Bindings() {
		if b.Kind != KindSimulate {
			continue
		}
		a, _ := abis.Get(b.Contract)
		if isView(a.Methods[b.Name]) {
			t.Fatalf("%s simulates a %s function", b, a.Methods[b.Name].StateMutability)
		}
		if !isBound(b.Contract, b.Name, KindWrite) {
			t.Fatalf("%s has no matching write binding", b)
		}
	}
}

func TestProtocolErrorsDeclared(t *testing.T) {
	declared := make(map[string]bool)
	for _, name := range abis.Names() {
		a, _ := abis.Get(name)
		for errName := range a.Errors {
			declared[errName] = true
		}
	}
	for _, errName := range []string{"InsufficientFunds", "Unauthorized", "Reentrancy", "InvalidInstance", "ClaimFailed", "Replayed"} {
		if !declared[errName] {
			t.Fatalf("no contract declares %s", errName)
		}
		if _, found := errorKinds[errName]; !found {
			t.Fatalf("no error kind for %s", errName)
		}
	}
}

func TestBindingString(t *testing.T) {
	b := Binding{Contract: abis.BoostCoreName, Name: "getBoost", Kind: KindRead}
	if s := b.String(); !strings.Contains(s, "BoostCore.getBoost") || !strings.HasPrefix(s, "read") {
		t.Fatalf("wrong binding string %q", s)
	}
}
