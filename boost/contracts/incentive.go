// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"context"
	"math/big"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

var incentiveContracts = []string{
	abis.ERC20IncentiveName,
	abis.ERC1155IncentiveName,
	abis.PointsIncentiveName,
	abis.AllowListIncentiveName,
	abis.CGDAIncentiveName,
}

var (
	incentiveClaimed     = bindRead("claimed", incentiveContracts...)
	incentiveClaims      = bindRead("claims", incentiveContracts...)
	incentiveIsClaimable = bindRead("isClaimable", incentiveContracts...)
	incentivePreflight   = bindRead("preflight", incentiveContracts...)
	incentiveClaim       = bindWrite("claim", incentiveContracts...)
	incentiveClawback    = bindWrite("clawback", incentiveContracts...)
	incentiveSimClaim    = bindSimulate("claim", incentiveContracts...)
	incentiveSimClawback = bindSimulate("clawback", incentiveContracts...)
	incentiveClaimedEv   = bindEvent("Claimed", incentiveContracts...)

	incentiveAsset    = bindRead("asset", abis.ERC20IncentiveName, abis.ERC1155IncentiveName, abis.CGDAIncentiveName)
	incentiveLimit    = bindRead("limit", abis.ERC20IncentiveName, abis.ERC1155IncentiveName, abis.PointsIncentiveName, abis.AllowListIncentiveName)
	incentiveReward   = bindRead("reward", abis.ERC20IncentiveName, abis.PointsIncentiveName)
	incentiveStrategy = bindRead("strategy", abis.ERC20IncentiveName, abis.ERC1155IncentiveName)

	erc20IncentiveEntries    = bindRead("entries", abis.ERC20IncentiveName)
	erc20IncentiveDrawRaffle = bindWrite("drawRaffle", abis.ERC20IncentiveName)

	erc1155IncentiveExtraData = bindRead("extraData", abis.ERC1155IncentiveName)
	erc1155IncentiveTokenID   = bindRead("tokenId", abis.ERC1155IncentiveName)

	pointsIncentiveSelector = bindRead("selector", abis.PointsIncentiveName)
	pointsIncentiveVenue    = bindRead("venue", abis.PointsIncentiveName)

	allowListIncentiveAllowList = bindRead("allowList", abis.AllowListIncentiveName)

	cgdaIncentiveParams        = bindRead("cgdaParams", abis.CGDAIncentiveName)
	cgdaIncentiveCurrentReward = bindRead("currentReward", abis.CGDAIncentiveName)
	cgdaIncentiveTotalBudget   = bindRead("totalBudget", abis.CGDAIncentiveName)
)

// IncentiveClaimed is emitted by an incentive for each claim it pays.
type IncentiveClaimed struct {
	Recipient common.Address
	Data      []byte
	Log
}

// incentive is the surface shared by every incentive contract.
type incentive struct {
	*Contract
	owned
	erc165
}

func newIncentive(name string, addr common.Address, backend bind.ContractBackend) (*incentive, error) {
	c, err := NewContract(name, addr, backend)
	if err != nil {
		return nil, err
	}
	return &incentive{Contract: c, owned: owned{c}, erc165: erc165{c}}, nil
}

// Claimed checks whether account has claimed the incentive.
func (i *incentive) Claimed(ctx context.Context, account common.Address) (bool, error) {
	return Read[bool](callOpts(ctx), i.Contract, incentiveClaimed, account)
}

// Claims is the number of claims paid.
func (i *incentive) Claims(ctx context.Context) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), i.Contract, incentiveClaims)
}

// IsClaimable checks whether claimTarget could claim with data.
func (i *incentive) IsClaimable(ctx context.Context, claimTarget common.Address, data []byte) (bool, error) {
	return Read[bool](callOpts(ctx), i.Contract, incentiveIsClaimable, claimTarget, data)
}

// Preflight returns the budget Transfer data needed to fund the incentive
// initialized with data.
func (i *incentive) Preflight(ctx context.Context, data []byte) ([]byte, error) {
	return Read[[]byte](callOpts(ctx), i.Contract, incentivePreflight, data)
}

// Claim pays the incentive to claimTarget. Only BoostCore may call it.
func (i *incentive) Claim(opts *bind.TransactOpts, claimTarget common.Address, data []byte) (*types.Transaction, error) {
	return Write(opts, i.Contract, incentiveClaim, claimTarget, data)
}

// Clawback recovers unclaimed rewards.
func (i *incentive) Clawback(opts *bind.TransactOpts, data []byte) (*types.Transaction, error) {
	return Write(opts, i.Contract, incentiveClawback, data)
}

// SimulateClaim simulates Claim.
func (i *incentive) SimulateClaim(opts *SimOpts, claimTarget common.Address, data []byte) (*Simulation[bool], error) {
	return Simulate[bool](opts, i.Contract, incentiveSimClaim, claimTarget, data)
}

// SimulateClawback simulates Clawback.
func (i *incentive) SimulateClawback(opts *SimOpts, data []byte) (*Simulation[bool], error) {
	return Simulate[bool](opts, i.Contract, incentiveSimClawback, data)
}

// WatchClaimed subscribes to the incentive's Claimed events.
func (i *incentive) WatchClaimed(opts *bind.WatchOpts, sink chan<- *IncentiveClaimed, recipient []common.Address) (event.Subscription, error) {
	return Watch[IncentiveClaimed](opts, i.Contract, incentiveClaimedEv, sink, rule(recipient))
}

// FilterClaimed retrieves past Claimed events.
func (i *incentive) FilterClaimed(opts *bind.FilterOpts, recipient []common.Address) ([]*IncentiveClaimed, error) {
	return Filter[IncentiveClaimed](opts, i.Contract, incentiveClaimedEv, rule(recipient))
}

func (i *incentive) asset(ctx context.Context) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), i.Contract, incentiveAsset)
}

func (i *incentive) limit(ctx context.Context) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), i.Contract, incentiveLimit)
}

func (i *incentive) reward(ctx context.Context) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), i.Contract, incentiveReward)
}

func (i *incentive) strategy(ctx context.Context) (Strategy, error) {
	s, err := Read[uint8](callOpts(ctx), i.Contract, incentiveStrategy)
	return Strategy(s), err
}

// ERC20Incentive pays a fixed ERC20 reward, either to every claimant up to a
// limit or to raffle winners.
type ERC20Incentive struct {
	*incentive
}

// NewERC20Incentive binds the ERC20Incentive at addr.
func NewERC20Incentive(addr common.Address, backend bind.ContractBackend) (*ERC20Incentive, error) {
	i, err := newIncentive(abis.ERC20IncentiveName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &ERC20Incentive{i}, nil
}

func (i *ERC20Incentive) Asset(ctx context.Context) (common.Address, error) {
	return i.asset(ctx)
}

func (i *ERC20Incentive) Limit(ctx context.Context) (*big.Int, error) {
	return i.limit(ctx)
}

func (i *ERC20Incentive) Reward(ctx context.Context) (*big.Int, error) {
	return i.reward(ctx)
}

func (i *ERC20Incentive) Strategy(ctx context.Context) (Strategy, error) {
	return i.strategy(ctx)
}

// Entries is the raffle entrant at index.
func (i *ERC20Incentive) Entries(ctx context.Context, index *big.Int) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), i.Contract, erc20IncentiveEntries, index)
}

// DrawRaffle draws the winner of a raffle incentive.
func (i *ERC20Incentive) DrawRaffle(opts *bind.TransactOpts) (*types.Transaction, error) {
	return Write(opts, i.Contract, erc20IncentiveDrawRaffle)
}

// ERC1155Incentive pays ERC1155 tokens of one token ID.
type ERC1155Incentive struct {
	*incentive
}

// NewERC1155Incentive binds the ERC1155Incentive at addr.
func NewERC1155Incentive(addr common.Address, backend bind.ContractBackend) (*ERC1155Incentive, error) {
	i, err := newIncentive(abis.ERC1155IncentiveName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &ERC1155Incentive{i}, nil
}

func (i *ERC1155Incentive) Asset(ctx context.Context) (common.Address, error) {
	return i.asset(ctx)
}

func (i *ERC1155Incentive) Limit(ctx context.Context) (*big.Int, error) {
	return i.limit(ctx)
}

func (i *ERC1155Incentive) Strategy(ctx context.Context) (Strategy, error) {
	return i.strategy(ctx)
}

// ExtraData is passed along with each token transfer.
func (i *ERC1155Incentive) ExtraData(ctx context.Context) ([]byte, error) {
	return Read[[]byte](callOpts(ctx), i.Contract, erc1155IncentiveExtraData)
}

// TokenID is the ERC1155 token ID paid.
func (i *ERC1155Incentive) TokenID(ctx context.Context) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), i.Contract, erc1155IncentiveTokenID)
}

// PointsIncentive credits points by calling a function on a points venue.
type PointsIncentive struct {
	*incentive
}

// NewPointsIncentive binds the PointsIncentive at addr.
func NewPointsIncentive(addr common.Address, backend bind.ContractBackend) (*PointsIncentive, error) {
	i, err := newIncentive(abis.PointsIncentiveName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &PointsIncentive{i}, nil
}

func (i *PointsIncentive) Limit(ctx context.Context) (*big.Int, error) {
	return i.limit(ctx)
}

func (i *PointsIncentive) Reward(ctx context.Context) (*big.Int, error) {
	return i.reward(ctx)
}

// Selector is the venue function selector called on claim.
func (i *PointsIncentive) Selector(ctx context.Context) ([4]byte, error) {
	return Read[[4]byte](callOpts(ctx), i.Contract, pointsIncentiveSelector)
}

// Venue is the points contract.
func (i *PointsIncentive) Venue(ctx context.Context) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), i.Contract, pointsIncentiveVenue)
}

// AllowListIncentive adds claimants to an allow list.
type AllowListIncentive struct {
	*incentive
}

// NewAllowListIncentive binds the AllowListIncentive at addr.
func NewAllowListIncentive(addr common.Address, backend bind.ContractBackend) (*AllowListIncentive, error) {
	i, err := newIncentive(abis.AllowListIncentiveName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &AllowListIncentive{i}, nil
}

func (i *AllowListIncentive) Limit(ctx context.Context) (*big.Int, error) {
	return i.limit(ctx)
}

// AllowList is the allow list claimants are added to.
func (i *AllowListIncentive) AllowList(ctx context.Context) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), i.Contract, allowListIncentiveAllowList)
}

// CGDAIncentive pays an ERC20 reward priced by a continuous gradual dutch
// auction.
type CGDAIncentive struct {
	*incentive
}

// NewCGDAIncentive binds the CGDAIncentive at addr.
func NewCGDAIncentive(addr common.Address, backend bind.ContractBackend) (*CGDAIncentive, error) {
	i, err := newIncentive(abis.CGDAIncentiveName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &CGDAIncentive{i}, nil
}

func (i *CGDAIncentive) Asset(ctx context.Context) (common.Address, error) {
	return i.asset(ctx)
}

// CGDAParams are the auction parameters.
func (i *CGDAIncentive) CGDAParams(ctx context.Context) (*CGDAParameters, error) {
	p, err := Read[CGDAParameters](callOpts(ctx), i.Contract, cgdaIncentiveParams)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CurrentReward is the reward the next claim would pay.
func (i *CGDAIncentive) CurrentReward(ctx context.Context) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), i.Contract, cgdaIncentiveCurrentReward)
}

// TotalBudget is the total reward budget.
func (i *CGDAIncentive) TotalBudget(ctx context.Context) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), i.Contract, cgdaIncentiveTotalBudget)
}
