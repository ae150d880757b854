// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package boost

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Network flags passed to component constructors.
type Network uint8

const (
	Mainnet Network = iota
	Testnet
	Simnet
)

// String returns the string representation of a Network.
func (n Network) String() string {
	switch n {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	case Simnet:
		return "simnet"
	}
	return ""
}

// NetFromString returns the Network for the given network name.
func NetFromString(net string) (Network, error) {
	switch strings.ToLower(net) {
	case "mainnet":
		return Mainnet, nil
	case "testnet":
		return Testnet, nil
	case "simnet":
		return Simnet, nil
	}
	return 255, fmt.Errorf("unknown network %s", net)
}

// EntryPointV07 is the canonical ERC-4337 v0.7 EntryPoint, deployed at the same
// address on every supported chain.
var EntryPointV07 = common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032")

// ChainParams are the per-network chain parameters.
type ChainParams struct {
	Name       string
	ChainID    int64
	EntryPoint common.Address
	// BlockTime is the approximate block interval in seconds. Used to scale
	// polling and backfill windows.
	BlockTime uint64
}

// Chains are the chain parameters for each Network.
var Chains = map[Network]*ChainParams{
	Mainnet: {
		Name:       "base",
		ChainID:    8453,
		EntryPoint: EntryPointV07,
		BlockTime:  2,
	},
	Testnet: {
		Name:       "base-sepolia",
		ChainID:    84532,
		EntryPoint: EntryPointV07,
		BlockTime:  2,
	},
	Simnet: {
		Name:       "anvil",
		ChainID:    31337,
		EntryPoint: EntryPointV07,
		BlockTime:  1,
	},
}
