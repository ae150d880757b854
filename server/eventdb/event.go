// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package eventdb

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/boostxyz/boost-protocol-sub000/boost/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Event is an indexed protocol event.
type Event struct {
	ChainID     uint64         `json:"chainID"`
	Contract    string         `json:"contract"`
	Address     common.Address `json:"address"`
	Name        string         `json:"name"`
	BlockNumber uint64         `json:"blockNumber"`
	BlockHash   common.Hash    `json:"blockHash"`
	TxHash      common.Hash    `json:"txHash"`
	LogIndex    uint           `json:"logIndex"`
	Removed     bool           `json:"removed"`
	// BoostID is the decimal ID of the boost the event concerns, if any.
	BoostID string         `json:"boostID,omitempty"`
	Args    map[string]any `json:"args"`
}

// boostIDArgs are the event arguments that carry a boost ID.
var boostIDArgs = []string{"boostId", "boostIndex"}

// NewEvent converts a decoded log. Argument values are made JSON-friendly:
// integers wider than 64 bits become decimal strings and byte arrays become
// hex.
func NewEvent(chainID uint64, dl *contracts.DecodedLog) *Event {
	ev := &Event{
		ChainID:     chainID,
		Contract:    dl.Contract,
		Address:     dl.Log.Address,
		Name:        dl.Event,
		BlockNumber: dl.Log.BlockNumber,
		BlockHash:   dl.Log.BlockHash,
		TxHash:      dl.Log.TxHash,
		LogIndex:    dl.Log.Index,
		Removed:     dl.Log.Removed,
		Args:        make(map[string]any, len(dl.Args)),
	}
	for k, v := range dl.Args {
		ev.Args[k] = jsonArg(v)
	}
	for _, k := range boostIDArgs {
		if id, is := dl.Args[k].(*big.Int); is {
			ev.BoostID = id.String()
			break
		}
	}
	return ev
}

func jsonArg(v any) any {
	switch vt := v.(type) {
	case *big.Int:
		return vt.String()
	case common.Address:
		return vt.Hex()
	case common.Hash:
		return vt.Hex()
	case [32]byte:
		return hexutil.Encode(vt[:])
	case []byte:
		return hexutil.Encode(vt)
	case bool, string, uint8, uint16, uint32, uint64, int8, int16, int32, int64:
		return vt
	}
	return fmt.Sprint(v)
}

// boostIDBytes is the 32-byte big-endian boost ID, or nil.
func (ev *Event) boostIDBytes() ([]byte, error) {
	if ev.BoostID == "" {
		return nil, nil
	}
	id, ok := new(big.Int).SetString(ev.BoostID, 10)
	if !ok || id.Sign() < 0 || id.BitLen() > 256 {
		return nil, fmt.Errorf("invalid boost ID %q", ev.BoostID)
	}
	return id.FillBytes(make([]byte, 32)), nil
}

const eventVersion = 0

// MarshalBinary encodes the Event for the database.
func (ev *Event) MarshalBinary() ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return append([]byte{eventVersion}, b...), nil
}

// UnmarshalBinary decodes an Event stored with MarshalBinary.
func (ev *Event) UnmarshalBinary(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("empty event blob")
	}
	if b[0] != eventVersion {
		return fmt.Errorf("unknown event version %d", b[0])
	}
	return json.Unmarshal(b[1:], ev)
}

// orderKey sorts events in chain order.
func orderKey(block uint64, logIndex uint) []byte {
	b := make([]byte, 12)
	binary.BigEndian.PutUint64(b, block)
	binary.BigEndian.PutUint32(b[8:], uint32(logIndex))
	return b
}

func (ev *Event) key() []byte {
	return orderKey(ev.BlockNumber, ev.LogIndex)
}
