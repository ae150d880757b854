// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Go mirrors of the protocol's ABI tuples. Field names follow the ABI
// component names so the ABI packer can match them.

// Boost is a boost as stored by BoostCore.
type Boost struct {
	Action          common.Address
	Validator       common.Address
	AllowList       common.Address
	Budget          common.Address
	Incentives      []common.Address
	ProtocolFee     uint64
	ReferralFee     uint64
	MaxParticipants *big.Int
	Owner           common.Address
}

// Target selects a module for a new boost: either a base implementation to
// clone and initialize with Parameters, or an existing instance.
type Target struct {
	IsBase     bool
	Instance   common.Address
	Parameters []byte
}

// InitPayload is the createBoost argument before encoding.
type InitPayload struct {
	Budget          common.Address
	Action          Target
	Validator       Target
	AllowList       Target
	Incentives      []Target
	ProtocolFee     uint64
	ReferralFee     uint64
	MaxParticipants *big.Int
	Owner           common.Address
}

// Clone is a BoostRegistry clone record.
type Clone struct {
	BaseType uint8
	Instance common.Address
	Deployer common.Address
	Name     string
}

// Transfer is a budget allocation, disbursal or reclaim request.
type Transfer struct {
	AssetType uint8
	Asset     common.Address
	Target    common.Address
	Data      []byte
}

// FungiblePayload is the Transfer data for ETH and ERC20 assets.
type FungiblePayload struct {
	Amount *big.Int
}

// ERC1155Payload is the Transfer data for ERC1155 assets.
type ERC1155Payload struct {
	TokenId *big.Int
	Amount  *big.Int
	Data    []byte
}

// SignerValidatorInputParams is the validator data SignerValidator checks.
type SignerValidatorInputParams struct {
	Signer            common.Address
	Signature         []byte
	IncentiveQuantity uint8
}

// BoostClaimData is the claim data passed to BoostCore.claimIncentive.
type BoostClaimData struct {
	ValidatorData []byte
	IncentiveData []byte
}

// CGDAParameters are the CGDA incentive's reward parameters.
type CGDAParameters struct {
	RewardDecay   *big.Int
	RewardBoost   *big.Int
	LastClaimTime *big.Int
	CurrentReward *big.Int
}

// EIP712Domain are the EIP-5267 domain fields of a SignerValidator.
type EIP712Domain struct {
	Fields            [1]byte
	Name              string
	Version           string
	ChainId           *big.Int
	VerifyingContract common.Address
	Salt              [32]byte
	Extensions        []*big.Int
}

// ExecuteResult is the output of an action's execute function.
type ExecuteResult struct {
	Success    bool
	ReturnData []byte
}

// PaymasterData is the decoded paymaster-specific part of paymasterAndData.
type PaymasterData struct {
	ValidUntil *big.Int
	ValidAfter *big.Int
	Signature  []byte
}

// PaymasterValidation is the output of validatePaymasterUserOp.
type PaymasterValidation struct {
	Context        []byte
	ValidationData *big.Int
}

// RegistryType is the BoostRegistry module type.
type RegistryType uint8

const (
	RegistryTypeAction RegistryType = iota
	RegistryTypeAllowList
	RegistryTypeBudget
	RegistryTypeIncentive
	RegistryTypeValidator
)

var registryTypeNames = map[RegistryType]string{
	RegistryTypeAction:    "ACTION",
	RegistryTypeAllowList: "ALLOW_LIST",
	RegistryTypeBudget:    "BUDGET",
	RegistryTypeIncentive: "INCENTIVE",
	RegistryTypeValidator: "VALIDATOR",
}

func (t RegistryType) String() string {
	if s, found := registryTypeNames[t]; found {
		return s
	}
	return "UNKNOWN"
}

// ParseRegistryType parses the String form of a RegistryType.
func ParseRegistryType(s string) (RegistryType, bool) {
	for t, name := range registryTypeNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}

// AssetType is the asset kind of a budget Transfer.
type AssetType uint8

const (
	AssetTypeETH AssetType = iota
	AssetTypeERC20
	AssetTypeERC1155
)

func (t AssetType) String() string {
	switch t {
	case AssetTypeETH:
		return "ETH"
	case AssetTypeERC20:
		return "ERC20"
	case AssetTypeERC1155:
		return "ERC1155"
	}
	return "UNKNOWN"
}

// Strategy is an ERC20 or ERC1155 incentive's distribution strategy.
type Strategy uint8

const (
	StrategyPool Strategy = iota
	StrategyRaffle
)

func (s Strategy) String() string {
	switch s {
	case StrategyPool:
		return "POOL"
	case StrategyRaffle:
		return "RAFFLE"
	}
	return "UNKNOWN"
}

// PostOpMode is the ERC-4337 paymaster postOp mode.
type PostOpMode uint8

const (
	OpSucceeded PostOpMode = iota
	OpReverted
	PostOpReverted
)
