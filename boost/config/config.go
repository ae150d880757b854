// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package config reads the contract deployments file and resolves the paths
// and addresses in command configuration.
package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/ini.v1"
)

// Deployments are the protocol contract addresses for one chain, keyed by
// contract name, e.g. "BoostCore".
type Deployments map[string]common.Address

// Keys are the deployment keys in sorted order.
func (d Deployments) Keys() []string {
	return slices.Sorted(maps.Keys(d))
}

// ParseDeployments reads the section named for the chain from a deployments
// file path or []byte data. Keys are contract names and values are hex
// addresses. A key may carry an instance suffix after a dot, e.g.
// "SimpleBudget.treasury", to list more than one instance of a contract.
//
//	[base-sepolia]
//	BoostCore = 0x...
//	SimpleBudget.treasury = 0x...
func ParseDeployments(pathOrData any, chain string) (Deployments, error) {
	f, err := ini.Load(pathOrData)
	if err != nil {
		return nil, err
	}
	section, err := f.GetSection(chain)
	if err != nil {
		return nil, fmt.Errorf("no deployments for chain %q: %w", chain, err)
	}
	deps := make(Deployments, len(section.Keys()))
	for _, key := range section.Keys() {
		v := strings.TrimSpace(key.String())
		if !common.IsHexAddress(v) {
			return nil, fmt.Errorf("invalid address %q for %s", v, key.Name())
		}
		deps[key.Name()] = common.HexToAddress(v)
	}
	return deps, nil
}

// ContractName strips any instance suffix from a deployments key.
func ContractName(key string) string {
	name, _, _ := strings.Cut(key, ".")
	return name
}
