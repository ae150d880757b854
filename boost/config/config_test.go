package config

import (
	"slices"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

const deploymentsINI = `
[base-sepolia]
BoostCore = 0x1111111111111111111111111111111111111111
BoostRegistry = 0x2222222222222222222222222222222222222222
SimpleBudget.treasury = 0x3333333333333333333333333333333333333333

[anvil]
BoostCore = not-an-address
`

func TestParseDeployments(t *testing.T) {
	deps, err := ParseDeployments([]byte(deploymentsINI), "base-sepolia")
	if err != nil {
		t.Fatalf("ParseDeployments error: %v", err)
	}
	if len(deps) != 3 {
		t.Fatalf("expected 3 deployments, got %d", len(deps))
	}
	if deps["BoostCore"] != common.HexToAddress("0x1111111111111111111111111111111111111111") {
		t.Fatalf("wrong BoostCore address %s", deps["BoostCore"])
	}
	if keys := deps.Keys(); !slices.Equal(keys, []string{"BoostCore", "BoostRegistry", "SimpleBudget.treasury"}) {
		t.Fatalf("wrong keys %v", keys)
	}
	if ContractName("SimpleBudget.treasury") != "SimpleBudget" {
		t.Fatalf("instance suffix not stripped")
	}

	if _, err = ParseDeployments([]byte(deploymentsINI), "anvil"); err == nil {
		t.Fatalf("no error for bad address")
	}
	if _, err = ParseDeployments([]byte(deploymentsINI), "base"); err == nil {
		t.Fatalf("no error for missing chain")
	}
}
