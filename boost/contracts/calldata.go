// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"fmt"
	"math/big"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// DecodedCall is transaction calldata decoded against a contract ABI.
type DecodedCall struct {
	Contract string
	Name     string
	Method   *abi.Method
	Args     []any
}

// ParseCallData decodes calldata for a call to the named contract.
func ParseCallData(contract string, data []byte) (*DecodedCall, error) {
	a, err := abis.Get(contract)
	if err != nil {
		return nil, err
	}
	return parseCallData(contract, a, data)
}

func parseCallData(contract string, a *abi.ABI, data []byte) (*DecodedCall, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("calldata too short: %d bytes", len(data))
	}
	m, err := a.MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("error unpacking %s.%s arguments: %w", contract, m.Name, err)
	}
	return &DecodedCall{
		Contract: contract,
		Name:     m.Name,
		Method:   m,
		Args:     args,
	}, nil
}

// IdentifyCallData decodes calldata against every known contract ABI. Shared
// selectors such as owner() match more than one contract.
func IdentifyCallData(data []byte) []*DecodedCall {
	var matches []*DecodedCall
	for _, name := range abis.Names() {
		a, _ := abis.Get(name)
		if dc, err := parseCallData(name, a, data); err == nil {
			matches = append(matches, dc)
		}
	}
	return matches
}

func parseArgs(contract, method string, data []byte, expArgs int) ([]any, error) {
	decoded, err := ParseCallData(contract, data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse call data: %w", err)
	}
	if decoded.Name != method {
		return nil, fmt.Errorf("expected %s function but got %s", method, decoded.Name)
	}
	if len(decoded.Args) != expArgs {
		return nil, fmt.Errorf("wrong number of arguments. wanted %d, got %d", expArgs, len(decoded.Args))
	}
	return decoded.Args, nil
}

// ParseCreateBoostData parses the calldata of a BoostCore.createBoost call.
func ParseCreateBoostData(data []byte) (*InitPayload, error) {
	args, err := parseArgs(abis.BoostCoreName, "createBoost", data, 1)
	if err != nil {
		return nil, err
	}
	payload, ok := args[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("expected arg of type []byte but got %T", args[0])
	}
	return DecodeInitPayload(payload)
}

// ClaimCall is a parsed BoostCore claimIncentive or claimIncentiveFor call.
// Claimant is the zero address for claimIncentive.
type ClaimCall struct {
	BoostID     *big.Int
	IncentiveID *big.Int
	Referrer    common.Address
	Data        []byte
	Claimant    common.Address
}

// ParseClaimIncentiveData parses the calldata of a BoostCore claimIncentive
// or claimIncentiveFor call.
func ParseClaimIncentiveData(data []byte) (*ClaimCall, error) {
	decoded, err := ParseCallData(abis.BoostCoreName, data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse call data: %w", err)
	}
	var expArgs int
	switch decoded.Name {
	case "claimIncentive":
		expArgs = 4
	case "claimIncentiveFor":
		expArgs = 5
	default:
		return nil, fmt.Errorf("expected a claim function but got %s", decoded.Name)
	}
	if len(decoded.Args) != expArgs {
		return nil, fmt.Errorf("wrong number of arguments. wanted %d, got %d", expArgs, len(decoded.Args))
	}
	args := decoded.Args
	cc := new(ClaimCall)
	var ok bool
	if cc.BoostID, ok = args[0].(*big.Int); !ok {
		return nil, fmt.Errorf("expected first arg of type *big.Int but got %T", args[0])
	}
	if cc.IncentiveID, ok = args[1].(*big.Int); !ok {
		return nil, fmt.Errorf("expected second arg of type *big.Int but got %T", args[1])
	}
	if cc.Referrer, ok = args[2].(common.Address); !ok {
		return nil, fmt.Errorf("expected third arg of type common.Address but got %T", args[2])
	}
	if cc.Data, ok = args[3].([]byte); !ok {
		return nil, fmt.Errorf("expected fourth arg of type []byte but got %T", args[3])
	}
	if expArgs == 5 {
		if cc.Claimant, ok = args[4].(common.Address); !ok {
			return nil, fmt.Errorf("expected fifth arg of type common.Address but got %T", args[4])
		}
	}
	return cc, nil
}
