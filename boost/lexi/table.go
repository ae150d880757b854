// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package lexi

import (
	"bytes"
	"encoding"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Table is a key-value store with ordered keys and any number of Indexes.
type Table struct {
	*DB
	name         string
	prefix       prefix
	allowReplace bool
	indexes      []*Index
}

// TableOption is an option for Table.
type TableOption func(*Table)

// AllowReplace lets Put overwrite an existing key. The replaced row's index
// entries are removed.
func AllowReplace() TableOption {
	return func(t *Table) {
		t.allowReplace = true
	}
}

// Table creates a Table, or opens the existing Table with the name.
func (db *DB) Table(name string, opts ...TableOption) (*Table, error) {
	p, err := db.register(name)
	if err != nil {
		return nil, err
	}
	t := &Table{DB: db, name: name, prefix: p}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Get decodes the value stored under k into v.
func (t *Table) Get(k any, v encoding.BinaryUnmarshaler) error {
	kB, err := encodeKey(k)
	if err != nil {
		return err
	}
	return t.view(func(txn *badger.Txn) error {
		r, err := t.getRow(txn, kB)
		if err != nil {
			return err
		}
		return v.UnmarshalBinary(r.v)
	})
}

// GetRaw returns the stored bytes of k.
func (t *Table) GetRaw(k any) (b []byte, err error) {
	kB, err := encodeKey(k)
	if err != nil {
		return nil, err
	}
	return b, t.view(func(txn *badger.Txn) error {
		r, err := t.getRow(txn, kB)
		if err == nil {
			b = r.v
		}
		return err
	})
}

// Has reports whether k is in the Table.
func (t *Table) Has(k any) (found bool, err error) {
	kB, err := encodeKey(k)
	if err != nil {
		return false, err
	}
	return found, t.view(func(txn *badger.Txn) error {
		_, err := txn.Get(t.prefix.key(kB))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		found = err == nil
		return err
	})
}

func (t *Table) getRow(txn *badger.Txn, k []byte) (*row, error) {
	item, err := txn.Get(t.prefix.key(k))
	if err != nil {
		return nil, notFound(err)
	}
	var r *row
	return r, item.Value(func(b []byte) error {
		r, err = decodeRow(b)
		return err
	})
}

// Put stores v under k and adds its index entries.
func (t *Table) Put(k any, v encoding.BinaryMarshaler) error {
	kB, err := encodeKey(k)
	if err != nil {
		return err
	}
	vB, err := v.MarshalBinary()
	if err != nil {
		return fmt.Errorf("error marshaling value: %w", err)
	}
	r := &row{v: vB, entries: make([][]byte, 0, len(t.indexes))}
	for _, idx := range t.indexes {
		entry, err := idx.f(kB, v)
		if err != nil {
			return fmt.Errorf("error computing %s index entry: %w", idx.name, err)
		}
		r.entries = append(r.entries, idx.prefix.key(entry))
	}
	rB, err := r.encode()
	if err != nil {
		return err
	}
	return t.update(func(txn *badger.Txn) error {
		old, err := t.getRow(txn, kB)
		switch {
		case err == nil:
			if !t.allowReplace {
				return ErrExists
			}
			if err := deleteEntries(txn, old); err != nil {
				return err
			}
		case !errors.Is(err, ErrKeyNotFound):
			return err
		}
		for _, entry := range r.entries {
			if err := putEntry(txn, entry, kB); err != nil {
				return err
			}
		}
		return txn.Set(t.prefix.key(kB), rB)
	})
}

func putEntry(txn *badger.Txn, entry, k []byte) error {
	item, err := txn.Get(entry)
	switch {
	case err == nil:
		owner, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if !bytes.Equal(owner, k) {
			return fmt.Errorf("%w: entry %x", ErrIndexCollision, entry)
		}
		return nil
	case !errors.Is(err, badger.ErrKeyNotFound):
		return err
	}
	return txn.Set(entry, k)
}

func deleteEntries(txn *badger.Txn, r *row) error {
	for _, entry := range r.entries {
		if err := txn.Delete(entry); err != nil {
			return fmt.Errorf("error deleting index entry: %w", err)
		}
	}
	return nil
}

// Delete removes k and its index entries. Deleting a missing key is not an
// error.
func (t *Table) Delete(k any) error {
	kB, err := encodeKey(k)
	if err != nil {
		return err
	}
	return t.update(func(txn *badger.Txn) error {
		return t.deleteRow(txn, kB)
	})
}

func (t *Table) deleteRow(txn *badger.Txn, k []byte) error {
	r, err := t.getRow(txn, k)
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := deleteEntries(txn, r); err != nil {
		return err
	}
	return txn.Delete(t.prefix.key(k))
}

// Scan calls f for every row whose key starts with keyPrefix, in key order.
func (t *Table) Scan(keyPrefix []byte, f func(*Cursor) error, opts ...ScanOption) error {
	return t.scan(t.prefix, keyPrefix, false, f, opts)
}

// Index is a secondary ordering of a Table's rows. Entries must be unique
// across rows. Append the row key to an entry when the indexed value can
// repeat.
type Index struct {
	*Table
	name   string
	prefix prefix
	f      func(k []byte, v encoding.BinaryMarshaler) ([]byte, error)
}

// Index creates an Index on the Table. f computes the index entry of a row
// from the encoded key and the value passed to Put. Indexes must be created
// before rows are written, and in the same order every time.
func (t *Table) Index(name string, f func(k []byte, v encoding.BinaryMarshaler) ([]byte, error)) (*Index, error) {
	p, err := t.register(t.name + "__idx__" + name)
	if err != nil {
		return nil, err
	}
	idx := &Index{Table: t, name: name, prefix: p, f: f}
	t.indexes = append(t.indexes, idx)
	return idx, nil
}

// Scan calls f for every row whose index entry starts with entryPrefix, in
// entry order.
func (idx *Index) Scan(entryPrefix []byte, f func(*Cursor) error, opts ...ScanOption) error {
	return idx.scan(idx.prefix, entryPrefix, true, f, opts)
}
