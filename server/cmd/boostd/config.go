// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/boostxyz/boost-protocol-sub000/boost/config"
	"github.com/decred/dcrd/dcrutil/v4"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename      = "boostd.conf"
	defaultLogFilename         = "boostd.log"
	defaultDeploymentsFilename = "deployments.conf"
	defaultDataDirname         = "data"
	defaultLogLevel            = "info"
	defaultLogDirname          = "logs"
	defaultMaxLogZips          = 16
	defaultRPCURL              = "http://127.0.0.1:8545"
	defaultAPIHost             = "127.0.0.1"
	defaultAPIPort             = "7240"
	defaultWindow              = 2000
	defaultPollInterval        = 10 * time.Second
	defaultMaxClients          = 1000
	defaultAPICertFilename     = "api.cert"
	defaultAPIKeyFilename      = "api.key"
)

var defaultAppDataDir = dcrutil.AppDataDir(appName, false)

// boostdConf is the validated daemon configuration.
type boostdConf struct {
	Network         boost.Network
	Chain           *boost.ChainParams
	DataDir         string
	LogDir          string
	RPCURL          string
	DeploymentsPath string
	StartBlock      uint64
	Window          uint64
	Confirmations   uint64
	PollInterval    time.Duration
	APIListen       string
	MaxClients      int
	RatePerSec      float64
	Burst           int
	APICert         string
	APIKey          string
	AltDNSNames     []string
	LogMaker        *boost.LoggerMaker
}

// flagsData is the command line and config file options.
type flagsData struct {
	AppDataDir  string `short:"A" long:"appdata" description:"Application directory. Relative paths below are resolved against it."`
	ConfigFile  string `short:"C" long:"configfile" description:"Config file path"`
	DataDir     string `short:"b" long:"datadir" description:"Database directory"`
	LogDir      string `long:"logdir" description:"Log file directory"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Log level, or level,SUBSYS=level,... Use show to list the subsystems."`
	LogUTC      bool   `long:"logutc" description:"Log UTC timestamps"`
	MaxLogZips  int    `long:"maxlogzips" description:"Compressed old logs to keep. 0 keeps every log."`
	ShowVersion bool   `short:"V" long:"version" description:"Print the version and exit"`

	Testnet bool `long:"testnet" description:"Use Base Sepolia (default Base mainnet)"`
	Simnet  bool `long:"simnet" description:"Use a local anvil chain (default Base mainnet)"`

	RPCURL          string        `long:"rpc" description:"Ethereum JSON-RPC endpoint. Use a ws:// endpoint for subscriptions."`
	DeploymentsPath string        `long:"deployments" description:"Path to the contract deployments file. Each chain is an INI section."`
	StartBlock      uint64        `long:"startblock" description:"First block to index when the database is empty"`
	Window          uint64        `long:"window" description:"Number of blocks per log query while backfilling"`
	Confirmations   uint64        `long:"confs" description:"Blocks the indexer trails the chain tip"`
	PollInterval    time.Duration `long:"pollinterval" description:"How often to advance the indexer while following the tip"`

	APIListen  string  `long:"apilisten" description:"API server listen address"`
	MaxClients int     `long:"maxclients" description:"Maximum number of websocket clients"`
	RatePerSec float64 `long:"ratelimit" description:"Per-IP API request rate limit, requests per second"`
	Burst      int     `long:"burst" description:"Per-IP API request burst size"`

	APITLS      bool     `long:"apitls" description:"Serve the API over TLS. A self-signed keypair is generated if the files don't exist."`
	APICert     string   `long:"apicert" description:"API TLS certificate file"`
	APIKey      string   `long:"apikey" description:"API TLS key file"`
	AltDNSNames []string `long:"altdnsnames" description:"Extra hostnames for a generated API certificate"`
}

// errShowVersion and errShowSubsystems are returned by loadConfig when the
// caller should print and exit.
var (
	errShowVersion    = errors.New("show version")
	errShowSubsystems = errors.New("show subsystems")
)

// network picks the network from the mutually exclusive network flags.
func (f *flagsData) network() (boost.Network, error) {
	switch {
	case f.Testnet && f.Simnet:
		return 0, errors.New("testnet and simnet flags are mutually exclusive")
	case f.Testnet:
		return boost.Testnet, nil
	case f.Simnet:
		return boost.Simnet, nil
	}
	return boost.Mainnet, nil
}

// underAppData resolves a relative path against the appdata directory, using
// def when path is empty.
func underAppData(appData, path, def string) string {
	if path == "" {
		path = def
	}
	path = config.ExpandPath(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(appData, path)
}

// loadConfig reads the config file and then the command line, which takes
// precedence, and sets up logging.
func loadConfig(args []string) (*boostdConf, error) {
	cfg := flagsData{
		AppDataDir:      defaultAppDataDir,
		MaxLogZips:      defaultMaxLogZips,
		DebugLevel:      defaultLogLevel,
		RPCURL:          defaultRPCURL,
		DeploymentsPath: defaultDeploymentsFilename,
		Window:          defaultWindow,
		PollInterval:    defaultPollInterval,
		MaxClients:      defaultMaxClients,
	}

	// A first pass finds the appdata directory and config file, and the
	// flags that exit early. Other errors are reported by the second pass.
	var pre flagsData
	if _, err := flags.NewParser(&pre, flags.HelpFlag).ParseArgs(args); err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			return nil, err
		}
	}
	switch {
	case pre.ShowVersion:
		return nil, errShowVersion
	case pre.DebugLevel == "show":
		return nil, errShowSubsystems
	}

	if pre.AppDataDir != "" {
		appData, err := filepath.Abs(config.ExpandPath(pre.AppDataDir))
		if err != nil {
			return nil, fmt.Errorf("error resolving appdata directory: %w", err)
		}
		cfg.AppDataDir = appData
	}
	// An explicit config file is required to exist.
	configFile := underAppData(cfg.AppDataDir, pre.ConfigFile, defaultConfigFilename)
	parser := flags.NewParser(&cfg, flags.Default&^flags.PrintErrors)
	_, err := os.Stat(configFile)
	switch {
	case err == nil:
		if err := flags.NewIniParser(parser).ParseFile(configFile); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	case pre.ConfigFile == "" && errors.Is(err, os.ErrNotExist):
		configFile = "none"
	default:
		return nil, err
	}
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	network, err := cfg.network()
	if err != nil {
		return nil, err
	}
	if cfg.RPCURL == "" {
		return nil, errors.New("no rpc endpoint")
	}
	if cfg.PollInterval < time.Second {
		return nil, fmt.Errorf("poll interval %s is too short", cfg.PollInterval)
	}
	apiListen, err := config.ListenAddr(cfg.APIListen, defaultAPIHost, defaultAPIPort)
	if err != nil {
		return nil, err
	}

	var apiCert, apiKey string
	if cfg.APITLS {
		apiCert = underAppData(cfg.AppDataDir, cfg.APICert, defaultAPICertFilename)
		apiKey = underAppData(cfg.AppDataDir, cfg.APIKey, defaultAPIKeyFilename)
	}

	// Data and logs are kept apart per network.
	dataDir := filepath.Join(underAppData(cfg.AppDataDir, cfg.DataDir, defaultDataDirname), network.String())
	logDir := filepath.Join(underAppData(cfg.AppDataDir, cfg.LogDir, defaultLogDirname), network.String())
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("error creating data directory: %w", err)
	}
	if err := initLogRotator(filepath.Join(logDir, defaultLogFilename), max(cfg.MaxLogZips, 0)); err != nil {
		return nil, err
	}
	logMaker, err := parseAndSetDebugLevels(cfg.DebugLevel, cfg.LogUTC)
	if err != nil {
		return nil, err
	}

	log.Infof("App data directory: %s", cfg.AppDataDir)
	log.Infof("Config file: %s", configFile)
	log.Infof("Data directory: %s", dataDir)
	log.Infof("Log directory: %s", logDir)

	return &boostdConf{
		Network:         network,
		Chain:           boost.Chains[network],
		DataDir:         dataDir,
		LogDir:          logDir,
		RPCURL:          cfg.RPCURL,
		DeploymentsPath: underAppData(cfg.AppDataDir, cfg.DeploymentsPath, defaultDeploymentsFilename),
		StartBlock:      cfg.StartBlock,
		Window:          cfg.Window,
		Confirmations:   cfg.Confirmations,
		PollInterval:    cfg.PollInterval,
		APIListen:       apiListen,
		MaxClients:      cfg.MaxClients,
		RatePerSec:      cfg.RatePerSec,
		Burst:           cfg.Burst,
		APICert:         apiCert,
		APIKey:          apiKey,
		AltDNSNames:     cfg.AltDNSNames,
		LogMaker:        logMaker,
	}, nil
}
