// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package lexi

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

type scanOpts struct {
	reverse   bool
	forUpdate bool
	from      []byte
}

// ScanOption is an option for Scan.
type ScanOption func(*scanOpts)

// Reverse scans from the last match to the first.
func Reverse() ScanOption {
	return func(o *scanOpts) {
		o.reverse = true
	}
}

// From starts a forward scan at the first entry not less than from, and a
// reverse scan at the last entry starting with or less than from. from
// includes the scan prefix.
func From(from []byte) ScanOption {
	return func(o *scanOpts) {
		o.from = from
	}
}

// ForUpdate scans in a read-write transaction, so that Cursor.Delete can be
// used.
func ForUpdate() ScanOption {
	return func(o *scanOpts) {
		o.forUpdate = true
	}
}

// Cursor is the current row of a Scan. Its methods are only valid inside
// the scan function.
type Cursor struct {
	t     *Table
	txn   *badger.Txn
	entry []byte
	key   []byte
	r     *row
}

// Key is the row's Table key.
func (c *Cursor) Key() []byte {
	return c.key
}

// Entry is the index entry, or the key in a Table scan.
func (c *Cursor) Entry() []byte {
	return c.entry
}

// Value is the row's stored bytes.
func (c *Cursor) Value() []byte {
	return c.r.v
}

// Delete removes the row from the Table. The Scan needs ForUpdate.
func (c *Cursor) Delete() error {
	if err := deleteEntries(c.txn, c.r); err != nil {
		return err
	}
	return c.txn.Delete(c.t.prefix.key(c.key))
}

func (t *Table) scan(p prefix, scanPrefix []byte, isIndex bool, f func(*Cursor) error, opts []ScanOption) error {
	var o scanOpts
	for _, opt := range opts {
		opt(&o)
	}
	full := p.key(scanPrefix)
	run := func(txn *badger.Txn) error {
		itOpts := badger.DefaultIteratorOptions
		itOpts.Prefix = full
		itOpts.Reverse = o.reverse
		// Deleting through the cursor changes the values, so iterate keys
		// only and read each row separately.
		itOpts.PrefetchValues = !isIndex && !o.forUpdate
		it := txn.NewIterator(itOpts)
		defer it.Close()

		start := full
		if o.from != nil {
			start = p.key(o.from)
		}
		if o.reverse {
			seekLast(it, start)
		} else {
			it.Seek(start)
		}
		for ; it.ValidForPrefix(full); it.Next() {
			item := it.Item()
			c := &Cursor{t: t, txn: txn, entry: item.KeyCopy(nil)[prefixSize:]}
			if isIndex {
				k, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				c.key = k
				if c.r, err = t.getRow(txn, k); err != nil {
					return fmt.Errorf("error reading row for index entry %x: %w", c.entry, err)
				}
			} else {
				c.key = c.entry
				if err := item.Value(func(b []byte) (err error) {
					c.r, err = decodeRow(b)
					return err
				}); err != nil {
					return err
				}
			}
			if err := f(c); err != nil {
				return err
			}
		}
		return nil
	}
	var err error
	if o.forUpdate {
		err = t.update(run)
	} else {
		err = t.view(run)
	}
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

// seekLast positions a reverse iterator at the last key starting with
// start, or the last key before start if there is none. A reverse Seek
// finds the last key <= its argument, so seek to the successor of every
// key with the start prefix.
func seekLast(it *badger.Iterator, start []byte) {
	if after := successor(start); after != nil {
		it.Seek(after)
		if it.Valid() && bytes.Equal(it.Item().Key(), after) {
			it.Next()
		}
		return
	}
	it.Rewind()
}

// successor is the smallest key greater than every key with prefix b, or
// nil if b is all 0xff.
func successor(b []byte) []byte {
	s := bytes.Clone(b)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] < 0xff {
			s[i]++
			return s[:i+1]
		}
	}
	return nil
}
