// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/boostxyz/boost-protocol-sub000/boost/config"
	"github.com/boostxyz/boost-protocol-sub000/boost/contracts"
	"github.com/boostxyz/boost-protocol-sub000/server/api"
	"github.com/boostxyz/boost-protocol-sub000/server/eventdb"
	"github.com/boostxyz/boost-protocol-sub000/server/indexer"
	"github.com/ethereum/go-ethereum/ethclient"
	flags "github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"
)

func mainCore(ctx context.Context, args []string) error {
	// Parse the configuration file, and setup logger.
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Display app version.
	log.Infof("%s version %v (Go version %s)", appName, Version, runtime.Version())
	log.Infof("%s starting for chain %s (%d)", appName, cfg.Chain.Name, cfg.Chain.ChainID)

	deployments, err := config.ParseDeployments(cfg.DeploymentsPath, cfg.Chain.Name)
	if err != nil {
		return fmt.Errorf("failed to load deployments %q: %w", cfg.DeploymentsPath, err)
	}
	log.Infof("Following %d contracts", len(deployments))

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("error connecting to %s: %w", cfg.RPCURL, err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("error retrieving chain ID: %w", err)
	}
	if !chainID.IsInt64() || chainID.Int64() != cfg.Chain.ChainID {
		return fmt.Errorf("endpoint is on chain %s, expected %d", chainID, cfg.Chain.ChainID)
	}

	db, err := eventdb.New(&eventdb.Config{
		Dir: cfg.DataDir,
		Log: subsystemLoggers[subsysDB],
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	dbWG, err := db.Connect(gctx)
	if err != nil {
		cancel()
		db.Close()
		return fmt.Errorf("error connecting database: %w", err)
	}
	// The database closes when the context is canceled.
	defer func() {
		cancel()
		dbWG.Wait()
	}()

	apiCfg := &api.Config{
		Addr:        cfg.APIListen,
		Store:       db,
		MaxClients:  cfg.MaxClients,
		RatePerSec:  cfg.RatePerSec,
		Burst:       cfg.Burst,
		TLSCert:     cfg.APICert,
		TLSKey:      cfg.APIKey,
		AltDNSNames: cfg.AltDNSNames,
		Log:         subsystemLoggers[subsysAPI],
	}
	// Live boost reads are only available with a BoostCore deployment.
	if addr, found := deployments[abis.BoostCoreName]; found {
		core, err := contracts.NewBoostCore(addr, client)
		if err != nil {
			return err
		}
		apiCfg.Core = core
	} else {
		log.Warnf("No %s deployment. Live boost reads are disabled.", abis.BoostCoreName)
	}

	var srv *api.Server
	idx, err := indexer.New(&indexer.Config{
		Backend:       client,
		ChainID:       uint64(cfg.Chain.ChainID),
		Contracts:     deployments,
		Store:         db,
		StartBlock:    cfg.StartBlock,
		Window:        cfg.Window,
		Confirmations: cfg.Confirmations,
		PollInterval:  cfg.PollInterval,
		Notify:        func(ev *eventdb.Event) { srv.Notify(ev) },
		Log:           subsystemLoggers[subsysIndexer],
	})
	if err != nil {
		return fmt.Errorf("error creating indexer: %w", err)
	}
	apiCfg.Indexer = idx

	if srv, err = api.New(apiCfg); err != nil {
		return fmt.Errorf("cannot set up API server: %w", err)
	}

	g.Go(func() error {
		idx.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})

	log.Infof("%s is running. Hit CTRL+C to quit...", appName)
	err = g.Wait()
	log.Info("Bye!")
	return err
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	killChan := make(chan os.Signal, 1)
	signal.Notify(killChan, os.Interrupt)
	go func() {
		<-killChan
		fmt.Println("Shutting down...")
		cancel()
	}()

	err := mainCore(ctx, os.Args[1:])
	var flagErr *flags.Error
	switch {
	case err == nil:
	case errors.Is(err, errShowVersion):
		fmt.Printf("%s version %s (Go version %s %s/%s)\n",
			appName, Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	case errors.Is(err, errShowSubsystems):
		fmt.Println("Supported subsystems", supportedSubsystems())
	case errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp:
		fmt.Println(err)
	default:
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
