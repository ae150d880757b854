// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package abis embeds the JSON ABI of every Boost protocol contract and
// exposes each as a parsed *abi.ABI.
package abis

import (
	"bytes"
	"embed"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed *.json
var files embed.FS

// Contract names. These are also the keys of deployments files.
const (
	BoostCoreName          = "BoostCore"
	BoostRegistryName      = "BoostRegistry"
	SimpleBudgetName       = "SimpleBudget"
	VestingBudgetName      = "VestingBudget"
	ERC20IncentiveName     = "ERC20Incentive"
	ERC1155IncentiveName   = "ERC1155Incentive"
	PointsIncentiveName    = "PointsIncentive"
	AllowListIncentiveName = "AllowListIncentive"
	CGDAIncentiveName      = "CGDAIncentive"
	SimpleAllowListName    = "SimpleAllowList"
	SimpleDenyListName     = "SimpleDenyList"
	SignerValidatorName    = "SignerValidator"
	ContractActionName     = "ContractAction"
	ERC721MintActionName   = "ERC721MintAction"
	BoostAccountName       = "BoostAccount"
	BoostPaymasterName     = "BoostPaymaster"
	ERC20Name              = "ERC20"
	ERC1155Name            = "ERC1155"
)

var fileNames = map[string]string{
	BoostCoreName:          "boostCore.json",
	BoostRegistryName:      "boostRegistry.json",
	SimpleBudgetName:       "simpleBudget.json",
	VestingBudgetName:      "vestingBudget.json",
	ERC20IncentiveName:     "erc20Incentive.json",
	ERC1155IncentiveName:   "erc1155Incentive.json",
	PointsIncentiveName:    "pointsIncentive.json",
	AllowListIncentiveName: "allowListIncentive.json",
	CGDAIncentiveName:      "cgdaIncentive.json",
	SimpleAllowListName:    "simpleAllowList.json",
	SimpleDenyListName:     "simpleDenyList.json",
	SignerValidatorName:    "signerValidator.json",
	ContractActionName:     "contractAction.json",
	ERC721MintActionName:   "erc721MintAction.json",
	BoostAccountName:       "boostAccount.json",
	BoostPaymasterName:     "boostPaymaster.json",
	ERC20Name:              "erc20.json",
	ERC1155Name:            "erc1155.json",
}

// Parsed ABIs.
var (
	BoostCore          = mustABI(BoostCoreName)
	BoostRegistry      = mustABI(BoostRegistryName)
	SimpleBudget       = mustABI(SimpleBudgetName)
	VestingBudget      = mustABI(VestingBudgetName)
	ERC20Incentive     = mustABI(ERC20IncentiveName)
	ERC1155Incentive   = mustABI(ERC1155IncentiveName)
	PointsIncentive    = mustABI(PointsIncentiveName)
	AllowListIncentive = mustABI(AllowListIncentiveName)
	CGDAIncentive      = mustABI(CGDAIncentiveName)
	SimpleAllowList    = mustABI(SimpleAllowListName)
	SimpleDenyList     = mustABI(SimpleDenyListName)
	SignerValidator    = mustABI(SignerValidatorName)
	ContractAction     = mustABI(ContractActionName)
	ERC721MintAction   = mustABI(ERC721MintActionName)
	BoostAccount       = mustABI(BoostAccountName)
	BoostPaymaster     = mustABI(BoostPaymasterName)
	ERC20              = mustABI(ERC20Name)
	ERC1155            = mustABI(ERC1155Name)
)

var registry = map[string]*abi.ABI{
	BoostCoreName:          BoostCore,
	BoostRegistryName:      BoostRegistry,
	SimpleBudgetName:       SimpleBudget,
	VestingBudgetName:      VestingBudget,
	ERC20IncentiveName:     ERC20Incentive,
	ERC1155IncentiveName:   ERC1155Incentive,
	PointsIncentiveName:    PointsIncentive,
	AllowListIncentiveName: AllowListIncentive,
	CGDAIncentiveName:      CGDAIncentive,
	SimpleAllowListName:    SimpleAllowList,
	SimpleDenyListName:     SimpleDenyList,
	SignerValidatorName:    SignerValidator,
	ContractActionName:     ContractAction,
	ERC721MintActionName:   ERC721MintAction,
	BoostAccountName:       BoostAccount,
	BoostPaymasterName:     BoostPaymaster,
	ERC20Name:              ERC20,
	ERC1155Name:            ERC1155,
}

func mustABI(name string) *abi.ABI {
	b, err := Raw(name)
	if err != nil {
		panic(err)
	}
	parsed, err := abi.JSON(bytes.NewReader(b))
	if err != nil {
		panic(fmt.Sprintf("error parsing %s ABI: %v", name, err))
	}
	return &parsed
}

// Raw returns the JSON ABI for the named contract.
func Raw(name string) ([]byte, error) {
	fileName, found := fileNames[name]
	if !found {
		return nil, fmt.Errorf("unknown contract %q", name)
	}
	return files.ReadFile(fileName)
}

// Get returns the parsed ABI for the named contract.
func Get(name string) (*abi.ABI, error) {
	a, found := registry[name]
	if !found {
		return nil, fmt.Errorf("unknown contract %q", name)
	}
	return a, nil
}

// Names lists the known contract names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
