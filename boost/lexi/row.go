// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package lexi

import (
	"bytes"
	"fmt"

	"github.com/decred/dcrd/wire"
)

const (
	rowVersion = 0
	// maxRowField bounds a single decoded field.
	maxRowField = 1 << 26
)

// row is a stored value and the index entries it generated, which are
// removed when the row is replaced or deleted.
type row struct {
	entries [][]byte
	v       []byte
}

func (r *row) encode() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte(rowVersion)
	if err := wire.WriteVarInt(&b, 0, uint64(len(r.entries))); err != nil {
		return nil, err
	}
	for _, e := range r.entries {
		if err := wire.WriteVarBytes(&b, 0, e); err != nil {
			return nil, err
		}
	}
	if err := wire.WriteVarBytes(&b, 0, r.v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func decodeRow(b []byte) (*row, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("empty row")
	}
	if b[0] != rowVersion {
		return nil, fmt.Errorf("unknown row version %d", b[0])
	}
	rd := bytes.NewReader(b[1:])
	n, err := wire.ReadVarInt(rd, 0)
	if err != nil {
		return nil, fmt.Errorf("error reading entry count: %w", err)
	}
	if n > uint64(rd.Len()) {
		return nil, fmt.Errorf("entry count %d exceeds row size", n)
	}
	r := &row{entries: make([][]byte, n)}
	for i := range r.entries {
		if r.entries[i], err = wire.ReadVarBytes(rd, 0, maxRowField, "entry"); err != nil {
			return nil, err
		}
	}
	if r.v, err = wire.ReadVarBytes(rd, 0, maxRowField, "value"); err != nil {
		return nil, err
	}
	if rd.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes in row", rd.Len())
	}
	return r, nil
}
