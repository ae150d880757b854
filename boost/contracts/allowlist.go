// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"context"
	"fmt"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	allowListIsAllowed  = bindRead("isAllowed", abis.SimpleAllowListName, abis.SimpleDenyListName)
	allowListSetAllowed = bindWrite("setAllowed", abis.SimpleAllowListName)
	denyListSetDenied   = bindWrite("setDenied", abis.SimpleDenyListName)
)

// allowList is the surface shared by allow and deny lists.
type allowList struct {
	*Contract
	ownable
	erc165
}

func newAllowList(name string, addr common.Address, backend bind.ContractBackend) (*allowList, error) {
	c, err := NewContract(name, addr, backend)
	if err != nil {
		return nil, err
	}
	return &allowList{Contract: c, ownable: ownable{owned{c}}, erc165: erc165{c}}, nil
}

// IsAllowed checks whether user may participate.
func (a *allowList) IsAllowed(ctx context.Context, user common.Address, data []byte) (bool, error) {
	return Read[bool](callOpts(ctx), a.Contract, allowListIsAllowed, user, data)
}

// checkLengths errors unless all parallel argument arrays have the same
// length.
func checkLengths(lens ...int) error {
	for _, n := range lens[1:] {
		if n != lens[0] {
			return boost.NewError(boost.ErrLengthMismatch, fmt.Sprintf("argument array lengths %v", lens))
		}
	}
	return nil
}

// SimpleAllowList allows only listed users.
type SimpleAllowList struct {
	*allowList
}

// NewSimpleAllowList binds the SimpleAllowList at addr.
func NewSimpleAllowList(addr common.Address, backend bind.ContractBackend) (*SimpleAllowList, error) {
	a, err := newAllowList(abis.SimpleAllowListName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &SimpleAllowList{a}, nil
}

// SetAllowed sets the allowed status of each user.
func (a *SimpleAllowList) SetAllowed(opts *bind.TransactOpts, users []common.Address, allowed []bool) (*types.Transaction, error) {
	if err := checkLengths(len(users), len(allowed)); err != nil {
		return nil, err
	}
	return Write(opts, a.Contract, allowListSetAllowed, users, allowed)
}

// SimpleDenyList allows everyone but listed users.
type SimpleDenyList struct {
	*allowList
}

// NewSimpleDenyList binds the SimpleDenyList at addr.
func NewSimpleDenyList(addr common.Address, backend bind.ContractBackend) (*SimpleDenyList, error) {
	a, err := newAllowList(abis.SimpleDenyListName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &SimpleDenyList{a}, nil
}

// SetDenied sets the denied status of each user.
func (a *SimpleDenyList) SetDenied(opts *bind.TransactOpts, users []common.Address, denied []bool) (*types.Transaction, error) {
	if err := checkLengths(len(users), len(denied)); err != nil {
		return nil, err
	}
	return Write(opts, a.Contract, denyListSetDenied, users, denied)
}
