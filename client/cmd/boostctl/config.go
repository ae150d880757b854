// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	bconfig "github.com/boostxyz/boost-protocol-sub000/boost/config"
	"github.com/decred/dcrd/dcrutil/v4"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename      = "boostctl.conf"
	defaultDeploymentsFilename = "deployments.conf"
	defaultRPCURL              = "http://127.0.0.1:8545"
)

var (
	appDir            = dcrutil.AppDataDir("boostctl", false)
	boostdAppDir      = dcrutil.AppDataDir("boostd", false)
	defaultConfigPath = filepath.Join(appDir, defaultConfigFilename)
)

// config is the boostctl options.
type config struct {
	ShowVersion  bool   `short:"V" long:"version" description:"Print the version and exit"`
	ListCommands bool   `short:"l" long:"listcommands" description:"List the commands and contract functions and exit"`
	Config       string `short:"C" long:"config" description:"Config file path"`
	Testnet      bool   `long:"testnet" description:"Use Base Sepolia (default Base mainnet)"`
	Simnet       bool   `long:"simnet" description:"Use a local anvil chain (default Base mainnet)"`
	RPCURL       string `short:"r" long:"rpc" description:"Ethereum JSON-RPC endpoint"`
	Deployments  string `long:"deployments" description:"Contract deployments file used to resolve contract names"`
	Address      string `short:"a" long:"address" description:"Contract address, overriding the deployments file"`
	Block        int64  `long:"block" description:"Block number for reads (default latest)"`
	Simulate     bool   `short:"s" long:"simulate" description:"Simulate a call and estimate its gas, even for view functions"`
	From         string `long:"from" description:"Sender address for simulations"`
	Value        string `long:"value" description:"Wei sent with simulations"`
	Spew         bool   `long:"spew" description:"Dump results with go-spew instead of JSON"`
	Verbose      bool   `short:"v" long:"verbose" description:"Debug logging to stderr"`
	KeyFile      string `short:"k" long:"keyfile" description:"File containing the hex sender key. Prompted for if not set."`
	SignerKey    string `long:"signerkeyfile" description:"File containing the hex key of the validator signer for claims"`
	Claimant     string `long:"claimant" description:"Claim on behalf of this address"`
	Referrer     string `long:"referrer" description:"Referrer address for claims"`
	Quantity     uint8  `long:"quantity" description:"Incentive quantity signed for claims"`
	IncentiveHex string `long:"incentivedata" description:"Hex incentive data for claims"`
	Bundler      string `long:"bundler" description:"ERC-4337 bundler endpoint. Claims are sent as user operations when set."`
	Account      string `long:"account" description:"Smart account address for user operation claims"`
	Paymaster    string `long:"paymaster" description:"BoostPaymaster address sponsoring user operation claims"`
	PaymasterKey string `long:"paymasterkeyfile" description:"File containing the hex key of the paymaster's verifying signer"`
}

// network parses the network flags.
func (cfg *config) network() (boost.Network, error) {
	if cfg.Testnet && cfg.Simnet {
		return 0, errors.New("both testnet and simnet flags specified")
	}
	switch {
	case cfg.Testnet:
		return boost.Testnet, nil
	case cfg.Simnet:
		return boost.Simnet, nil
	}
	return boost.Mainnet, nil
}

func fileExists(name string) bool {
	_, err := os.Stat(name)
	return !errors.Is(err, os.ErrNotExist)
}

// configure reads the config file, if there is one, and then the command
// line. It returns the remaining arguments. stop is true when a flag like
// --version was handled and there is nothing left to do.
func configure(args []string) (cfg *config, rest []string, stop bool, err error) {
	cfg = &config{Config: defaultConfigPath}
	// The config path must be known before the file is parsed, and the
	// informational flags skip the file entirely.
	if _, err := flags.NewParser(cfg, flags.HelpFlag).ParseArgs(args); err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			fmt.Printf("%v\nA parameter of - is read from the next line of standard input.\n", err)
			return nil, nil, true, nil
		}
		return nil, nil, false, err
	}
	switch {
	case cfg.ShowVersion:
		name := strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))
		fmt.Printf("%s version %s (%s %s/%s)\n", name, version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return nil, nil, true, nil
	case cfg.ListCommands:
		fmt.Println(listCommands())
		return nil, nil, true, nil
	}

	parser := flags.NewParser(cfg, flags.Default)
	if fileExists(cfg.Config) {
		if err := flags.NewIniParser(parser).ParseFile(cfg.Config); err != nil {
			return nil, nil, false, err
		}
	}
	if rest, err = parser.ParseArgs(args); err != nil {
		return nil, nil, false, err
	}

	// Without --deployments, use boostctl's own file, or the daemon's.
	if cfg.Deployments == "" {
		cfg.Deployments = filepath.Join(appDir, defaultDeploymentsFilename)
		if !fileExists(cfg.Deployments) {
			cfg.Deployments = filepath.Join(boostdAppDir, defaultDeploymentsFilename)
		}
	}
	cfg.Deployments = bconfig.ExpandPath(cfg.Deployments)
	cfg.KeyFile = bconfig.ExpandPath(cfg.KeyFile)
	cfg.SignerKey = bconfig.ExpandPath(cfg.SignerKey)
	if cfg.RPCURL == "" {
		cfg.RPCURL = defaultRPCURL
	}
	if cfg.Quantity == 0 {
		cfg.Quantity = 1
	}
	return cfg, rest, false, nil
}
