// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	errorSelector = crypto.Keccak256([]byte("Error(string)"))[:4]
	panicSelector = crypto.Keccak256([]byte("Panic(uint256)"))[:4]
)

// errorKinds maps custom error names to the kind a RevertError unwraps to.
var errorKinds = map[string]boost.ErrorKind{
	"InsufficientFunds": boost.ErrInsufficientFunds,
	"Unauthorized":      boost.ErrUnauthorized,
	"Reentrancy":        boost.ErrReentrancy,
	"InvalidInstance":   boost.ErrInvalidInstance,
	"ClaimFailed":       boost.ErrClaimFailed,
	"Replayed":          boost.ErrReplayed,
	"NotClaimable":      boost.ErrNotClaimable,
	"LengthMismatch":    boost.ErrLengthMismatch,
	"NotRegistered":     boost.ErrNotRegistered,
	"AlreadyRegistered": boost.ErrAlreadyRegistered,
}

// RevertError is a contract revert decoded against the contract ABI. Name is
// the custom error name, or "Error" and "Panic" for the builtin reverts. An
// unrecognized selector leaves Name empty.
type RevertError struct {
	Contract string
	Name     string
	Args     map[string]any
	Data     []byte
}

// Error formats the revert as Contract: Name(arg=value, ...).
func (e *RevertError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: execution reverted with unknown data %s", e.Contract, hexutil.Encode(e.Data))
	}
	names := make([]string, 0, len(e.Args))
	for name := range e.Args {
		names = append(names, name)
	}
	sort.Strings(names)
	args := make([]string, 0, len(names))
	for _, name := range names {
		args = append(args, fmt.Sprintf("%s=%v", name, formatArg(e.Args[name])))
	}
	return fmt.Sprintf("%s: execution reverted: %s(%s)", e.Contract, e.Name, strings.Join(args, ", "))
}

// Unwrap returns the error kind, allowing errors.Is(err, boost.ErrUnauthorized).
func (e *RevertError) Unwrap() error {
	if kind, found := errorKinds[e.Name]; found {
		return kind
	}
	return boost.ErrReverted
}

func formatArg(v any) any {
	switch vt := v.(type) {
	case []byte:
		return hexutil.Encode(vt)
	case [4]byte:
		return hexutil.Encode(vt[:])
	case [32]byte:
		return hexutil.Encode(vt[:])
	}
	return v
}

// DecodeRevert decodes revert data against the ABI. Errors raised by a nested
// call into another protocol contract are not in the callee's ABI, so a
// selector the ABI does not know is looked up in every bundled ABI.
func DecodeRevert(a *abi.ABI, contract string, data []byte) *RevertError {
	re := &RevertError{
		Contract: contract,
		Data:     data,
		Args:     make(map[string]any),
	}
	if len(data) < 4 {
		return re
	}
	sel := data[:4]
	switch {
	case bytes.Equal(sel, errorSelector):
		reason, err := abi.UnpackRevert(data)
		if err == nil {
			re.Name = "Error"
			re.Args["reason"] = reason
		}
		return re
	case bytes.Equal(sel, panicSelector):
		if len(data) == 4+32 {
			re.Name = "Panic"
			re.Args["code"] = new(big.Int).SetBytes(data[4:])
		}
		return re
	}
	if a != nil && re.decodeCustom(a) {
		return re
	}
	for _, name := range abis.Names() {
		other, err := abis.Get(name)
		if err != nil || other == a {
			continue
		}
		if re.decodeCustom(other) {
			return re
		}
	}
	return re
}

// decodeCustom sets the name and arguments of a custom error defined in a.
func (e *RevertError) decodeCustom(a *abi.ABI) bool {
	sel := e.Data[:4]
	for name, abiErr := range a.Errors {
		if !bytes.Equal(abiErr.ID[:4], sel) {
			continue
		}
		args := make(map[string]any, len(abiErr.Inputs))
		if err := abiErr.Inputs.UnpackIntoMap(args, e.Data[4:]); err != nil {
			continue
		}
		e.Name = name
		e.Args = args
		return true
	}
	return false
}

// RevertData extracts revert data from an error returned by an RPC client.
func RevertData(err error) ([]byte, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return nil, false
	}
	switch data := dataErr.ErrorData().(type) {
	case string:
		b, err := hexutil.Decode(data)
		if err != nil {
			return nil, false
		}
		return b, true
	case []byte:
		return data, true
	}
	return nil, false
}

// wrapRevert replaces an error carrying revert data with a *RevertError.
func (c *Contract) wrapRevert(err error) error {
	data, ok := RevertData(err)
	if !ok {
		return err
	}
	return DecodeRevert(c.ABI, c.Name, data)
}
