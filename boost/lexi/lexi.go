// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package lexi stores ordered tables with secondary indexes in badger.
//
// Rows are kept under their raw key, so a Table scans in key order. Each
// Index maps an entry computed from the row to the row's key, and scans in
// entry order. Every table and index owns a two-byte key prefix, registered
// by name so it is stable across restarts.
package lexi

import (
	"context"
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/dgraph-io/badger/v4"
)

const (
	// ErrKeyNotFound is returned when a key is not in a Table.
	ErrKeyNotFound = boost.ErrorKind("key not found")
	// ErrExists is returned from Put when the key is present and the Table
	// does not allow replacement.
	ErrExists = boost.ErrorKind("key exists")
	// ErrStop ends a Scan early without error.
	ErrStop = boost.ErrorKind("stop scan")
	// ErrIndexCollision is returned from Put when an index entry already
	// belongs to another row.
	ErrIndexCollision = boost.ErrorKind("index entry collision")
)

func notFound(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrKeyNotFound
	}
	return err
}

const prefixSize = 2

// prefix namespaces a table or index.
type prefix [prefixSize]byte

var (
	registryPrefix = prefix{0x00, 0x00} // name -> prefix
	metaPrefix     = prefix{0x00, 0x01}

	firstPrefix = prefix{0x01, 0x00}

	nextPrefixKey = metaKey("next-prefix")
	versionKey    = metaKey("version")
)

func (p prefix) key(k []byte) []byte {
	b := make([]byte, 0, prefixSize+len(k))
	b = append(b, p[:]...)
	return append(b, k...)
}

func metaKey(name string) []byte {
	return metaPrefix.key([]byte(name))
}

// Config is the DB configuration.
type Config struct {
	// Path is the database directory. Ignored if InMemory.
	Path     string
	InMemory bool
	Log      boost.Logger
}

// DB is a badger database holding Tables.
type DB struct {
	bdb *badger.DB
	log boost.Logger

	wg       sync.WaitGroup
	updateWG sync.WaitGroup
}

// New opens the database.
func New(cfg *Config) (*DB, error) {
	log := cfg.Log
	if log == nil {
		log = boost.Disabled
	}
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	bdb, err := badger.Open(opts.WithLogger(badgerLogger{log}))
	if err != nil {
		return nil, err
	}
	return &DB{bdb: bdb, log: log}, nil
}

// Close closes the database. Use Close only if Connect was never called.
func (db *DB) Close() error {
	return db.bdb.Close()
}

// Connect collects value log garbage periodically until the context is
// canceled, then closes the database. The WaitGroup is done after the
// database is closed.
func (db *DB) Connect(ctx context.Context) (*sync.WaitGroup, error) {
	db.wg.Add(1)
	go func() {
		defer db.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				db.collectGarbage()
			case <-ctx.Done():
				db.updateWG.Wait()
				if err := db.bdb.Close(); err != nil {
					db.log.Errorf("Error closing database: %v", err)
				}
				return
			}
		}
	}()
	return &db.wg, nil
}

func (db *DB) collectGarbage() {
	for {
		err := db.bdb.RunValueLogGC(0.5)
		switch {
		case err == nil:
			continue // rewrote a file, try another
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
		default:
			db.log.Errorf("Value log garbage collection error: %v", err)
		}
		return
	}
}

func (db *DB) view(f func(txn *badger.Txn) error) error {
	return db.bdb.View(f)
}

// update runs f in a read-write transaction, retrying with backoff when
// badger reports a conflict with a concurrent transaction.
func (db *DB) update(f func(txn *badger.Txn) error) (err error) {
	db.updateWG.Add(1)
	defer db.updateWG.Done()
	delay := 5 * time.Millisecond
	for range 10 {
		if err = db.bdb.Update(f); !errors.Is(err, badger.ErrConflict) {
			return err
		}
		time.Sleep(delay)
		delay *= 2
	}
	return err
}

// register returns the prefix for the name, assigning the next free prefix
// to a new name.
func (db *DB) register(name string) (p prefix, _ error) {
	nameKey := registryPrefix.key([]byte(name))
	return p, db.update(func(txn *badger.Txn) error {
		item, err := txn.Get(nameKey)
		if err == nil {
			return item.Value(func(b []byte) error {
				copy(p[:], b)
				return nil
			})
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("error reading prefix for %q: %w", name, err)
		}
		p = firstPrefix
		item, err = txn.Get(nextPrefixKey)
		switch {
		case err == nil:
			if err := item.Value(func(b []byte) error {
				copy(p[:], b)
				return nil
			}); err != nil {
				return err
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return fmt.Errorf("error reading next prefix: %w", err)
		}
		n := binary.BigEndian.Uint16(p[:])
		if n == 0xffff {
			return errors.New("out of prefixes")
		}
		var next prefix
		binary.BigEndian.PutUint16(next[:], n+1)
		if err := txn.Set(nextPrefixKey, next[:]); err != nil {
			return err
		}
		return txn.Set(nameKey, p[:])
	})
}

// Version is the schema version, the number of upgrades applied.
func (db *DB) Version() (v uint32, err error) {
	return v, db.view(func(txn *badger.Txn) error {
		item, err := txn.Get(versionKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(b []byte) error {
			if len(b) != 4 {
				return fmt.Errorf("bad version length %d", len(b))
			}
			v = binary.BigEndian.Uint32(b)
			return nil
		})
	})
}

// Upgrade runs the upgrades that have not been applied, in order, storing
// the version after each one. Call it after the Tables and Indexes are
// created and before any data is written.
func (db *DB) Upgrade(upgrades []func() error) error {
	v, err := db.Version()
	if err != nil {
		return err
	}
	if v > uint32(len(upgrades)) {
		return fmt.Errorf("database version %d is newer than the %d known upgrades", v, len(upgrades))
	}
	for ; v < uint32(len(upgrades)); v++ {
		if err := upgrades[v](); err != nil {
			return fmt.Errorf("upgrade %d failed: %w", v+1, err)
		}
		vB := binary.BigEndian.AppendUint32(nil, v+1)
		if err := db.update(func(txn *badger.Txn) error {
			return txn.Set(versionKey, vB)
		}); err != nil {
			return err
		}
		db.log.Infof("Upgraded database to version %d", v+1)
	}
	return nil
}

// encodeKey encodes a Table key. Integers are big-endian, so they sort
// numerically.
func encodeKey(k any) ([]byte, error) {
	var b []byte
	switch kt := k.(type) {
	case []byte:
		b = kt
	case string:
		b = []byte(kt)
	case uint32:
		b = binary.BigEndian.AppendUint32(nil, kt)
	case uint64:
		b = binary.BigEndian.AppendUint64(nil, kt)
	case encoding.BinaryMarshaler:
		var err error
		if b, err = kt.MarshalBinary(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported key type %T", k)
	}
	if len(b) == 0 {
		return nil, errors.New("empty key")
	}
	return b, nil
}
