// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package eventdb stores decoded protocol events, indexed by event name, by
// emitting contract and by boost, along with the indexer's sync cursor.
package eventdb

import (
	"bytes"
	"context"
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/boostxyz/boost-protocol-sub000/boost/lexi"
	"github.com/ethereum/go-ethereum/common"
)

const (
	// DefaultLimit is the number of events Events returns when the Filter
	// sets no limit.
	DefaultLimit = 100
	// MaxLimit caps Filter.Limit.
	MaxLimit = 1000

	// ErrNotFound is returned when an event is not in the database.
	ErrNotFound = boost.ErrorKind("event not found")
)

// upgrades are the schema upgrades, applied in order on startup.
var upgrades = []func() error{}

// Config is the configuration for the event database.
type Config struct {
	// Dir is the data directory. The database is created in a subdirectory.
	Dir      string
	InMemory bool
	Log      boost.Logger
}

// DB is the event database.
type DB struct {
	*lexi.DB
	log      boost.Logger
	events   *lexi.Table
	nameIdx  *lexi.Index
	addrIdx  *lexi.Index
	boostIdx *lexi.Index
	cursors  *lexi.Table
}

// New opens the event database.
func New(cfg *Config) (*DB, error) {
	log := cfg.Log
	if log == nil {
		log = boost.Disabled
	}
	lcfg := &lexi.Config{InMemory: cfg.InMemory, Log: log}
	if !cfg.InMemory {
		if err := os.MkdirAll(cfg.Dir, 0700); err != nil {
			return nil, fmt.Errorf("error creating db dir: %w", err)
		}
		lcfg.Path = filepath.Join(cfg.Dir, "events.db")
	}
	ldb, err := lexi.New(lcfg)
	if err != nil {
		return nil, fmt.Errorf("error initializing db: %w", err)
	}
	db := &DB{DB: ldb, log: log}
	if err := db.init(); err != nil {
		ldb.Close()
		return nil, err
	}
	if err := ldb.Upgrade(upgrades); err != nil {
		ldb.Close()
		return nil, fmt.Errorf("error upgrading db: %w", err)
	}
	return db, nil
}

func (db *DB) init() (err error) {
	// Event keys are in chain order, so the table itself scans in chain
	// order. Every index entry ends with the event key for the same reason,
	// and to keep entries unique.
	if db.events, err = db.Table("events", lexi.AllowReplace()); err != nil {
		return fmt.Errorf("error initializing events table: %w", err)
	}
	if db.nameIdx, err = db.events.Index("name", func(k []byte, v encoding.BinaryMarshaler) ([]byte, error) {
		ev, err := asEvent(v)
		if err != nil {
			return nil, err
		}
		return append(namePrefix(ev.Name), k...), nil
	}); err != nil {
		return fmt.Errorf("error initializing name index: %w", err)
	}
	if db.addrIdx, err = db.events.Index("address", func(k []byte, v encoding.BinaryMarshaler) ([]byte, error) {
		ev, err := asEvent(v)
		if err != nil {
			return nil, err
		}
		return append(ev.Address.Bytes(), k...), nil
	}); err != nil {
		return fmt.Errorf("error initializing address index: %w", err)
	}
	if db.boostIdx, err = db.events.Index("boost", func(k []byte, v encoding.BinaryMarshaler) ([]byte, error) {
		ev, err := asEvent(v)
		if err != nil {
			return nil, err
		}
		idB, err := ev.boostIDBytes()
		if err != nil {
			return nil, err
		}
		if idB == nil {
			return append([]byte{0x00}, k...), nil
		}
		return append(boostPrefix(idB), k...), nil
	}); err != nil {
		return fmt.Errorf("error initializing boost index: %w", err)
	}

	if db.cursors, err = db.Table("cursors", lexi.AllowReplace()); err != nil {
		return fmt.Errorf("error initializing cursors table: %w", err)
	}
	return nil
}

func asEvent(v encoding.BinaryMarshaler) (*Event, error) {
	ev, is := v.(*Event)
	if !is {
		return nil, fmt.Errorf("wrong type %T", v)
	}
	return ev, nil
}

// namePrefix is terminated so that no name prefixes another.
func namePrefix(name string) []byte {
	return append([]byte(name), 0x00)
}

func boostPrefix(idB []byte) []byte {
	return append([]byte{0x01}, idB...)
}

// Connect runs the database until the context is canceled.
func (db *DB) Connect(ctx context.Context) (*sync.WaitGroup, error) {
	return db.DB.Connect(ctx)
}

// Store stores the event, replacing any event at the same block and log
// index.
func (db *DB) Store(ev *Event) error {
	if err := db.events.Put(ev.key(), ev); err != nil {
		return fmt.Errorf("error storing %s event at %d:%d: %w", ev.Name, ev.BlockNumber, ev.LogIndex, err)
	}
	return nil
}

// Event retrieves the event at the block and log index.
func (db *DB) Event(block uint64, logIndex uint) (*Event, error) {
	ev := new(Event)
	if err := db.events.Get(orderKey(block, logIndex), ev); err != nil {
		if errors.Is(err, lexi.ErrKeyNotFound) {
			return nil, boost.NewError(ErrNotFound, fmt.Sprintf("%d:%d", block, logIndex))
		}
		return nil, err
	}
	return ev, nil
}

// MarkRemoved flags the event at the block and log index as removed by a
// reorg. Removed events are kept, but Events skips them by default.
func (db *DB) MarkRemoved(block uint64, logIndex uint) error {
	ev, err := db.Event(block, logIndex)
	if err != nil {
		return err
	}
	if ev.Removed {
		return nil
	}
	ev.Removed = true
	return db.Store(ev)
}

// Filter selects events.
type Filter struct {
	Name    string
	Address *common.Address
	BoostID *big.Int
	// FromBlock is the lowest block included.
	FromBlock uint64
	// Limit is the maximum number of events returned. Zero means
	// DefaultLimit. Values above MaxLimit are capped.
	Limit int
	// Newest lists the newest events first.
	Newest         bool
	IncludeRemoved bool
}

func (f *Filter) match(ev *Event) bool {
	if ev.Removed && !f.IncludeRemoved {
		return false
	}
	if f.Name != "" && ev.Name != f.Name {
		return false
	}
	if f.Address != nil && ev.Address != *f.Address {
		return false
	}
	if f.BoostID != nil && ev.BoostID != f.BoostID.String() {
		return false
	}
	return true
}

// Events retrieves the events that pass the filter, in chain order.
func (db *DB) Events(f *Filter) ([]*Event, error) {
	if f == nil {
		f = new(Filter)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	} else if limit > MaxLimit {
		limit = MaxLimit
	}

	// Scan the most selective index, or the table itself.
	scan, prefix := db.events.Scan, []byte(nil)
	switch {
	case f.BoostID != nil:
		if f.BoostID.Sign() < 0 || f.BoostID.BitLen() > 256 {
			return nil, fmt.Errorf("invalid boost ID %s", f.BoostID)
		}
		scan, prefix = db.boostIdx.Scan, boostPrefix(f.BoostID.FillBytes(make([]byte, 32)))
	case f.Address != nil:
		scan, prefix = db.addrIdx.Scan, f.Address.Bytes()
	case f.Name != "":
		scan, prefix = db.nameIdx.Scan, namePrefix(f.Name)
	}

	var opts []lexi.ScanOption
	if f.Newest {
		opts = append(opts, lexi.Reverse())
	} else if f.FromBlock > 0 {
		opts = append(opts, lexi.From(append(bytes.Clone(prefix), orderKey(f.FromBlock, 0)...)))
	}

	evs := make([]*Event, 0, min(limit, DefaultLimit))
	return evs, scan(prefix, func(c *lexi.Cursor) error {
		ev := new(Event)
		if err := ev.UnmarshalBinary(c.Value()); err != nil {
			return fmt.Errorf("error decoding event %x: %w", c.Key(), err)
		}
		if ev.BlockNumber < f.FromBlock {
			if f.Newest {
				return lexi.ErrStop
			}
			return nil
		}
		if !f.match(ev) {
			return nil
		}
		evs = append(evs, ev)
		if len(evs) >= limit {
			return lexi.ErrStop
		}
		return nil
	}, opts...)
}

// BoostEvents retrieves up to limit events concerning the boost, in chain
// order.
func (db *DB) BoostEvents(boostID *big.Int, limit int) ([]*Event, error) {
	if boostID == nil {
		return nil, errors.New("no boost ID")
	}
	return db.Events(&Filter{BoostID: boostID, Limit: limit})
}

type blockHeight uint64

func (h blockHeight) MarshalBinary() ([]byte, error) {
	return binary.BigEndian.AppendUint64(nil, uint64(h)), nil
}

func (h *blockHeight) UnmarshalBinary(b []byte) error {
	if len(b) != 8 {
		return fmt.Errorf("bad block height length %d", len(b))
	}
	*h = blockHeight(binary.BigEndian.Uint64(b))
	return nil
}

// LastBlock is the last block indexed for the chain. Zero if the chain has
// not been indexed.
func (db *DB) LastBlock(chainID uint64) (uint64, error) {
	var h blockHeight
	if err := db.cursors.Get(chainID, &h); err != nil {
		if errors.Is(err, lexi.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return uint64(h), nil
}

// SetLastBlock records the last block indexed for the chain.
func (db *DB) SetLastBlock(chainID, block uint64) error {
	return db.cursors.Put(chainID, blockHeight(block))
}
