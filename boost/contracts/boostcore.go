// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

var (
	coreFeeDenominator         = bindRead("FEE_DENOMINATOR", abis.BoostCoreName)
	coreClaimFee               = bindRead("claimFee", abis.BoostCoreName)
	coreCreateBoostAuth        = bindRead("createBoostAuth", abis.BoostCoreName)
	coreGetBoost               = bindRead("getBoost", abis.BoostCoreName)
	coreGetBoostCount          = bindRead("getBoostCount", abis.BoostCoreName)
	coreProtocolFee            = bindRead("protocolFee", abis.BoostCoreName)
	coreProtocolFeeReceiver    = bindRead("protocolFeeReceiver", abis.BoostCoreName)
	coreReferralFee            = bindRead("referralFee", abis.BoostCoreName)
	coreRegistry               = bindRead("registry", abis.BoostCoreName)
	coreClaimIncentive         = bindWrite("claimIncentive", abis.BoostCoreName)
	coreClaimIncentiveFor      = bindWrite("claimIncentiveFor", abis.BoostCoreName)
	coreCreateBoost            = bindWrite("createBoost", abis.BoostCoreName)
	coreSetClaimFee            = bindWrite("setClaimFee", abis.BoostCoreName)
	coreSetCreateBoostAuth     = bindWrite("setCreateBoostAuth", abis.BoostCoreName)
	coreSetProtocolFee         = bindWrite("setProtocolFee", abis.BoostCoreName)
	coreSetProtocolFeeReceiver = bindWrite("setProtocolFeeReceiver", abis.BoostCoreName)
	coreSetReferralFee         = bindWrite("setReferralFee", abis.BoostCoreName)
	coreSimClaimIncentive      = bindSimulate("claimIncentive", abis.BoostCoreName)
	coreSimClaimIncentiveFor   = bindSimulate("claimIncentiveFor", abis.BoostCoreName)
	coreSimCreateBoost         = bindSimulate("createBoost", abis.BoostCoreName)
	coreBoostClaimed           = bindEvent("BoostClaimed", abis.BoostCoreName)
	coreBoostCreated           = bindEvent("BoostCreated", abis.BoostCoreName)
)

// BoostCore is the protocol entry point: it creates boosts and routes claims
// to their incentives.
type BoostCore struct {
	*Contract
	ownable
}

// NewBoostCore binds the BoostCore at addr.
func NewBoostCore(addr common.Address, backend bind.ContractBackend) (*BoostCore, error) {
	c, err := NewContract(abis.BoostCoreName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &BoostCore{Contract: c, ownable: ownable{owned{c}}}, nil
}

// BoostCreated is emitted for each new boost.
type BoostCreated struct {
	BoostIndex     *big.Int
	Owner          common.Address
	Action         common.Address
	IncentiveCount *big.Int
	Validator      common.Address
	AllowList      common.Address
	Budget         common.Address
	Log
}

// BoostClaimed is emitted for each successful incentive claim.
type BoostClaimed struct {
	BoostId     *big.Int
	IncentiveId *big.Int
	Claimant    common.Address
	Referrer    common.Address
	Data        []byte
	Log
}

// FeeDenominator is the denominator of the protocol and referral fees.
func (c *BoostCore) FeeDenominator(ctx context.Context) (uint64, error) {
	return Read[uint64](callOpts(ctx), c.Contract, coreFeeDenominator)
}

// ClaimFee is the ETH fee attached to each claim.
func (c *BoostCore) ClaimFee(ctx context.Context) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), c.Contract, coreClaimFee)
}

// CreateBoostAuth is the auth module gating createBoost.
func (c *BoostCore) CreateBoostAuth(ctx context.Context) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), c.Contract, coreCreateBoostAuth)
}

// GetBoost retrieves the boost at index.
func (c *BoostCore) GetBoost(ctx context.Context, index *big.Int) (*Boost, error) {
	b, err := Read[Boost](callOpts(ctx), c.Contract, coreGetBoost, index)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBoostCount is the number of boosts created.
func (c *BoostCore) GetBoostCount(ctx context.Context) (*big.Int, error) {
	return Read[*big.Int](callOpts(ctx), c.Contract, coreGetBoostCount)
}

// ProtocolFee is the default protocol fee.
func (c *BoostCore) ProtocolFee(ctx context.Context) (uint64, error) {
	return Read[uint64](callOpts(ctx), c.Contract, coreProtocolFee)
}

// ProtocolFeeReceiver receives protocol fees.
func (c *BoostCore) ProtocolFeeReceiver(ctx context.Context) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), c.Contract, coreProtocolFeeReceiver)
}

// ReferralFee is the default referral fee.
func (c *BoostCore) ReferralFee(ctx context.Context) (uint64, error) {
	return Read[uint64](callOpts(ctx), c.Contract, coreReferralFee)
}

// Registry is the BoostRegistry used to clone boost modules.
func (c *BoostCore) Registry(ctx context.Context) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), c.Contract, coreRegistry)
}

// ClaimIncentive claims an incentive of a boost for the sender.
func (c *BoostCore) ClaimIncentive(opts *bind.TransactOpts, boostID, incentiveID *big.Int, referrer common.Address, data []byte) (*types.Transaction, error) {
	return Write(opts, c.Contract, coreClaimIncentive, boostID, incentiveID, referrer, data)
}

// ClaimIncentiveFor claims an incentive of a boost on behalf of claimant.
func (c *BoostCore) ClaimIncentiveFor(opts *bind.TransactOpts, boostID, incentiveID *big.Int, referrer common.Address, data []byte, claimant common.Address) (*types.Transaction, error) {
	return Write(opts, c.Contract, coreClaimIncentiveFor, boostID, incentiveID, referrer, data, claimant)
}

// CreateBoost creates a boost from an encoded InitPayload.
func (c *BoostCore) CreateBoost(opts *bind.TransactOpts, data []byte) (*types.Transaction, error) {
	return Write(opts, c.Contract, coreCreateBoost, data)
}

// CreateBoostFromPayload encodes p and creates the boost.
func (c *BoostCore) CreateBoostFromPayload(opts *bind.TransactOpts, p *InitPayload) (*types.Transaction, error) {
	data, err := EncodeInitPayload(p)
	if err != nil {
		return nil, fmt.Errorf("error encoding init payload: %w", err)
	}
	return c.CreateBoost(opts, data)
}

func (c *BoostCore) SetClaimFee(opts *bind.TransactOpts, claimFee *big.Int) (*types.Transaction, error) {
	return Write(opts, c.Contract, coreSetClaimFee, claimFee)
}

func (c *BoostCore) SetCreateBoostAuth(opts *bind.TransactOpts, auth common.Address) (*types.Transaction, error) {
	return Write(opts, c.Contract, coreSetCreateBoostAuth, auth)
}

func (c *BoostCore) SetProtocolFee(opts *bind.TransactOpts, protocolFee uint64) (*types.Transaction, error) {
	return Write(opts, c.Contract, coreSetProtocolFee, protocolFee)
}

func (c *BoostCore) SetProtocolFeeReceiver(opts *bind.TransactOpts, receiver common.Address) (*types.Transaction, error) {
	return Write(opts, c.Contract, coreSetProtocolFeeReceiver, receiver)
}

func (c *BoostCore) SetReferralFee(opts *bind.TransactOpts, referralFee uint64) (*types.Transaction, error) {
	return Write(opts, c.Contract, coreSetReferralFee, referralFee)
}

// SimulateClaimIncentive simulates ClaimIncentive. Value must cover the
// claim fee.
func (c *BoostCore) SimulateClaimIncentive(opts *SimOpts, boostID, incentiveID *big.Int, referrer common.Address, data []byte) (*Simulation[struct{}], error) {
	return Simulate[struct{}](opts, c.Contract, coreSimClaimIncentive, boostID, incentiveID, referrer, data)
}

// SimulateClaimIncentiveFor simulates ClaimIncentiveFor.
func (c *BoostCore) SimulateClaimIncentiveFor(opts *SimOpts, boostID, incentiveID *big.Int, referrer common.Address, data []byte, claimant common.Address) (*Simulation[struct{}], error) {
	return Simulate[struct{}](opts, c.Contract, coreSimClaimIncentiveFor, boostID, incentiveID, referrer, data, claimant)
}

// SimulateCreateBoost simulates CreateBoost, returning the boost that would
// be created.
func (c *BoostCore) SimulateCreateBoost(opts *SimOpts, data []byte) (*Simulation[Boost], error) {
	return Simulate[Boost](opts, c.Contract, coreSimCreateBoost, data)
}

// WatchBoostCreated subscribes to BoostCreated events.
func (c *BoostCore) WatchBoostCreated(opts *bind.WatchOpts, sink chan<- *BoostCreated, boostIndex []*big.Int, owner, action []common.Address) (event.Subscription, error) {
	return Watch[BoostCreated](opts, c.Contract, coreBoostCreated, sink, rule(boostIndex), rule(owner), rule(action))
}

// FilterBoostCreated retrieves past BoostCreated events.
func (c *BoostCore) FilterBoostCreated(opts *bind.FilterOpts, boostIndex []*big.Int, owner, action []common.Address) ([]*BoostCreated, error) {
	return Filter[BoostCreated](opts, c.Contract, coreBoostCreated, rule(boostIndex), rule(owner), rule(action))
}

// WatchBoostClaimed subscribes to BoostClaimed events.
func (c *BoostCore) WatchBoostClaimed(opts *bind.WatchOpts, sink chan<- *BoostClaimed, boostID, incentiveID []*big.Int, claimant []common.Address) (event.Subscription, error) {
	return Watch[BoostClaimed](opts, c.Contract, coreBoostClaimed, sink, rule(boostID), rule(incentiveID), rule(claimant))
}

// FilterBoostClaimed retrieves past BoostClaimed events.
func (c *BoostCore) FilterBoostClaimed(opts *bind.FilterOpts, boostID, incentiveID []*big.Int, claimant []common.Address) ([]*BoostClaimed, error) {
	return Filter[BoostClaimed](opts, c.Contract, coreBoostClaimed, rule(boostID), rule(incentiveID), rule(claimant))
}

// ParseBoostClaimed decodes a BoostClaimed log.
func (c *BoostCore) ParseBoostClaimed(log types.Log) (*BoostClaimed, error) {
	return Parse[BoostClaimed](c.Contract, coreBoostClaimed, log)
}

// ClaimIncentiveCallData is the calldata of a claimIncentive call, for
// relaying through an account.
func ClaimIncentiveCallData(boostID, incentiveID *big.Int, referrer common.Address, data []byte) ([]byte, error) {
	return packCall(abis.BoostCoreName, coreClaimIncentive, boostID, incentiveID, referrer, data)
}
