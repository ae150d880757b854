// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"context"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

var ownableContracts = []string{
	abis.BoostCoreName,
	abis.SimpleBudgetName,
	abis.VestingBudgetName,
	abis.SimpleAllowListName,
	abis.SimpleDenyListName,
	abis.SignerValidatorName,
	abis.BoostPaymasterName,
}

var (
	ownerFn = bindRead("owner", append([]string{
		abis.ERC20IncentiveName,
		abis.ERC1155IncentiveName,
		abis.PointsIncentiveName,
		abis.AllowListIncentiveName,
		abis.CGDAIncentiveName,
		abis.ContractActionName,
		abis.ERC721MintActionName,
		abis.BoostAccountName,
	}, ownableContracts...)...)
	transferOwnershipFn    = bindWrite("transferOwnership", ownableContracts...)
	ownershipTransferredEv = bindEvent("OwnershipTransferred", ownableContracts...)

	supportsInterfaceFn = bindRead("supportsInterface",
		abis.BoostRegistryName,
		abis.SimpleBudgetName,
		abis.VestingBudgetName,
		abis.ERC20IncentiveName,
		abis.ERC1155IncentiveName,
		abis.PointsIncentiveName,
		abis.AllowListIncentiveName,
		abis.CGDAIncentiveName,
		abis.SimpleAllowListName,
		abis.SimpleDenyListName,
		abis.SignerValidatorName,
		abis.ContractActionName,
		abis.ERC721MintActionName,
	)
)

// OwnershipTransferred is emitted when a contract's owner changes.
type OwnershipTransferred struct {
	OldOwner common.Address
	NewOwner common.Address
	Log
}

type owned struct {
	c *Contract
}

// Owner is the contract owner.
func (o owned) Owner(ctx context.Context) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), o.c, ownerFn)
}

type ownable struct {
	owned
}

// TransferOwnership hands the contract to newOwner.
func (o ownable) TransferOwnership(opts *bind.TransactOpts, newOwner common.Address) (*types.Transaction, error) {
	return Write(opts, o.c, transferOwnershipFn, newOwner)
}

// WatchOwnershipTransferred subscribes to OwnershipTransferred events.
func (o ownable) WatchOwnershipTransferred(opts *bind.WatchOpts, sink chan<- *OwnershipTransferred, oldOwner, newOwner []common.Address) (event.Subscription, error) {
	return Watch[OwnershipTransferred](opts, o.c, ownershipTransferredEv, sink, rule(oldOwner), rule(newOwner))
}

// FilterOwnershipTransferred retrieves past OwnershipTransferred events.
func (o ownable) FilterOwnershipTransferred(opts *bind.FilterOpts, oldOwner, newOwner []common.Address) ([]*OwnershipTransferred, error) {
	return Filter[OwnershipTransferred](opts, o.c, ownershipTransferredEv, rule(oldOwner), rule(newOwner))
}

type erc165 struct {
	c *Contract
}

// SupportsInterface checks for an ERC-165 interface ID.
func (e erc165) SupportsInterface(ctx context.Context, interfaceID [4]byte) (bool, error) {
	return Read[bool](callOpts(ctx), e.c, supportsInterfaceFn, interfaceID)
}
