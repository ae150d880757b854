// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package indexer follows the logs of the deployed protocol contracts into
// the event database. On start it backfills from the stored cursor in block
// windows, then follows new logs over subscriptions.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/boostxyz/boost-protocol-sub000/boost/config"
	"github.com/boostxyz/boost-protocol-sub000/boost/contracts"
	"github.com/boostxyz/boost-protocol-sub000/server/eventdb"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWindow        = 2000
	defaultConfirmations = 12
	defaultRetryDelay    = 10 * time.Second
	sinkBuffer           = 256
)

// Store is the event storage used by the Indexer.
type Store interface {
	Store(*eventdb.Event) error
	MarkRemoved(block uint64, logIndex uint) error
	LastBlock(chainID uint64) (uint64, error)
	SetLastBlock(chainID, block uint64) error
}

// Config is the Indexer configuration.
type Config struct {
	Backend bind.ContractBackend
	ChainID uint64
	// Contracts are the followed deployments, keyed by contract name with an
	// optional instance suffix.
	Contracts config.Deployments
	Store     Store
	// StartBlock is the first block indexed when there is no cursor.
	StartBlock uint64
	// Window is the number of blocks per backfill query.
	Window uint64
	// Confirmations is how far the cursor trails the chain tip while
	// following.
	Confirmations uint64
	// PollInterval is how often the cursor is advanced while following.
	PollInterval time.Duration
	// RetryDelay is the wait before restarting after an error.
	RetryDelay time.Duration
	// Notify, if set, receives each stored event, including removals.
	Notify func(*eventdb.Event)
	Log    boost.Logger
}

// Indexer follows protocol contract logs into a Store.
type Indexer struct {
	cfg       Config
	log       boost.Logger
	contracts []*contracts.Contract

	mtx    sync.RWMutex
	synced bool
	cursor uint64
}

// New creates an Indexer. Every deployment must name a known contract ABI.
func New(cfg *Config) (*Indexer, error) {
	if cfg.Backend == nil || cfg.Store == nil {
		return nil, errors.New("backend and store are required")
	}
	if len(cfg.Contracts) == 0 {
		return nil, errors.New("no contracts to follow")
	}
	c := *cfg
	if c.Log == nil {
		c.Log = boost.Disabled
	}
	if c.Window == 0 {
		c.Window = defaultWindow
	}
	if c.Confirmations == 0 {
		c.Confirmations = defaultConfirmations
	}
	if c.PollInterval == 0 {
		c.PollInterval = 30 * time.Second
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = defaultRetryDelay
	}

	keys := c.Contracts.Keys()
	followed := make([]*contracts.Contract, 0, len(keys))
	for _, k := range keys {
		ct, err := contracts.NewContract(config.ContractName(k), c.Contracts[k], c.Backend)
		if err != nil {
			return nil, fmt.Errorf("deployment %s: %w", k, err)
		}
		followed = append(followed, ct)
	}
	return &Indexer{
		cfg:       c,
		log:       c.Log,
		contracts: followed,
	}, nil
}

// Status is the indexer's progress.
type Status struct {
	ChainID uint64 `json:"chainID"`
	Synced  bool   `json:"synced"`
	Cursor  uint64 `json:"cursor"`
}

// Status reports whether the backfill has completed and the current cursor.
func (idx *Indexer) Status() *Status {
	idx.mtx.RLock()
	defer idx.mtx.RUnlock()
	return &Status{
		ChainID: idx.cfg.ChainID,
		Synced:  idx.synced,
		Cursor:  idx.cursor,
	}
}

func (idx *Indexer) setCursor(block uint64, synced bool) error {
	if err := idx.cfg.Store.SetLastBlock(idx.cfg.ChainID, block); err != nil {
		return fmt.Errorf("error saving cursor: %w", err)
	}
	idx.mtx.Lock()
	idx.cursor = block
	idx.synced = synced
	idx.mtx.Unlock()
	return nil
}

// Run indexes until the context is canceled, restarting from the stored
// cursor after errors.
func (idx *Indexer) Run(ctx context.Context) {
	for {
		err := idx.run(ctx)
		if ctx.Err() != nil {
			return
		}
		idx.mtx.Lock()
		idx.synced = false
		idx.mtx.Unlock()
		idx.log.Errorf("Indexer error: %v. Restarting in %s", err, idx.cfg.RetryDelay)
		select {
		case <-time.After(idx.cfg.RetryDelay):
		case <-ctx.Done():
			return
		}
	}
}

func (idx *Indexer) tip(ctx context.Context) (uint64, error) {
	hdr, err := idx.cfg.Backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error getting chain tip: %w", err)
	}
	return hdr.Number.Uint64(), nil
}

func (idx *Indexer) run(ctx context.Context) error {
	cursor, err := idx.cfg.Store.LastBlock(idx.cfg.ChainID)
	if err != nil {
		return fmt.Errorf("error reading cursor: %w", err)
	}
	if cursor == 0 && idx.cfg.StartBlock > 0 {
		cursor = idx.cfg.StartBlock - 1
	}
	tip, err := idx.tip(ctx)
	if err != nil {
		return err
	}
	if err := idx.backfill(ctx, cursor+1, tip); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range idx.contracts {
		sink := make(chan *contracts.DecodedLog, sinkBuffer)
		sub, err := c.WatchLogs(&bind.WatchOpts{Context: gctx}, sink)
		if err != nil {
			return fmt.Errorf("error subscribing to %s logs: %w", c, err)
		}
		g.Go(func() error {
			defer sub.Unsubscribe()
			for {
				select {
				case dl := <-sink:
					if err := idx.handle(dl); err != nil {
						return err
					}
				case err := <-sub.Err():
					if err == nil {
						err = fmt.Errorf("%s subscription closed", c)
					}
					return err
				case <-gctx.Done():
					return nil
				}
			}
		})
	}

	// Logs between the backfill and the subscriptions.
	g.Go(func() error {
		newTip, err := idx.tip(gctx)
		if err != nil {
			return err
		}
		if err := idx.backfill(gctx, tip+1, newTip); err != nil {
			return err
		}
		idx.log.Infof("Following %d contracts from block %d", len(idx.contracts), newTip)
		return idx.follow(gctx)
	})
	return g.Wait()
}

// backfill indexes the block range in windows, advancing the cursor after
// each window.
func (idx *Indexer) backfill(ctx context.Context, from, to uint64) error {
	if from > to {
		return nil
	}
	idx.log.Infof("Backfilling blocks %d to %d", from, to)
	for start := from; start <= to; start += idx.cfg.Window {
		end := min(start+idx.cfg.Window-1, to)
		var dls []*contracts.DecodedLog
		for _, c := range idx.contracts {
			cdls, err := c.FilterLogs(&bind.FilterOpts{Start: start, End: &end, Context: ctx})
			if err != nil {
				return fmt.Errorf("error filtering %s logs for blocks %d-%d: %w", c, start, end, err)
			}
			dls = append(dls, cdls...)
		}
		sort.Slice(dls, func(i, j int) bool {
			if dls[i].Log.BlockNumber != dls[j].Log.BlockNumber {
				return dls[i].Log.BlockNumber < dls[j].Log.BlockNumber
			}
			return dls[i].Log.Index < dls[j].Log.Index
		})
		for _, dl := range dls {
			if err := idx.handle(dl); err != nil {
				return err
			}
		}
		if err := idx.setCursor(end, false); err != nil {
			return err
		}
		idx.log.Debugf("Indexed %d events in blocks %d-%d", len(dls), start, end)
	}
	return nil
}

// follow advances the cursor to the confirmed tip periodically.
func (idx *Indexer) follow(ctx context.Context) error {
	advance := func() error {
		tip, err := idx.tip(ctx)
		if err != nil {
			return err
		}
		idx.mtx.RLock()
		cursor := idx.cursor
		idx.mtx.RUnlock()
		confirmed := cursor
		if tip > idx.cfg.Confirmations && tip-idx.cfg.Confirmations > cursor {
			confirmed = tip - idx.cfg.Confirmations
		}
		return idx.setCursor(confirmed, true)
	}
	if err := advance(); err != nil {
		return err
	}
	ticker := time.NewTicker(idx.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := advance(); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (idx *Indexer) handle(dl *contracts.DecodedLog) error {
	ev := eventdb.NewEvent(idx.cfg.ChainID, dl)
	if ev.Removed {
		idx.log.Infof("%s %s event at %d:%d removed by reorg", ev.Contract, ev.Name, ev.BlockNumber, ev.LogIndex)
		err := idx.cfg.Store.MarkRemoved(ev.BlockNumber, ev.LogIndex)
		if err != nil && !errors.Is(err, eventdb.ErrNotFound) {
			return fmt.Errorf("error marking event removed: %w", err)
		}
	} else {
		if err := idx.cfg.Store.Store(ev); err != nil {
			return err
		}
		idx.log.Tracef("Stored %s %s event at %d:%d", ev.Contract, ev.Name, ev.BlockNumber, ev.LogIndex)
	}
	if idx.cfg.Notify != nil {
		idx.cfg.Notify(ev)
	}
	return nil
}
