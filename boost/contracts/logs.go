// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// allEventsQuery matches every event the contract ABI declares.
func (c *Contract) allEventsQuery(start uint64, end *uint64) (ethereum.FilterQuery, error) {
	if len(c.ABI.Events) == 0 {
		return ethereum.FilterQuery{}, fmt.Errorf("%s declares no events", c.Name)
	}
	ids := make([]common.Hash, 0, len(c.ABI.Events))
	for _, ev := range c.ABI.Events {
		ids = append(ids, ev.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Cmp(ids[j]) < 0 })
	q := ethereum.FilterQuery{
		Addresses: []common.Address{c.Address},
		Topics:    [][]common.Hash{ids},
		FromBlock: new(big.Int).SetUint64(start),
	}
	if end != nil {
		q.ToBlock = new(big.Int).SetUint64(*end)
	}
	return q, nil
}

// FilterLogs retrieves and decodes every past event of the contract in the
// block range, in chain order.
func (c *Contract) FilterLogs(opts *bind.FilterOpts) ([]*DecodedLog, error) {
	if opts == nil {
		opts = new(bind.FilterOpts)
	}
	q, err := c.allEventsQuery(opts.Start, opts.End)
	if err != nil {
		return nil, err
	}
	logs, err := c.backend.FilterLogs(ensureContext(opts), q)
	if err != nil {
		return nil, err
	}
	decoded := make([]*DecodedLog, 0, len(logs))
	for _, l := range logs {
		dl, err := c.DecodeLog(l)
		if err != nil {
			return nil, err
		}
		decoded = append(decoded, dl)
	}
	return decoded, nil
}

// WatchLogs subscribes to every event of the contract. Logs dropped by a
// reorg are delivered again with Log.Removed set.
func (c *Contract) WatchLogs(opts *bind.WatchOpts, sink chan<- *DecodedLog) (event.Subscription, error) {
	if opts == nil {
		opts = new(bind.WatchOpts)
	}
	var start uint64
	if opts.Start != nil {
		start = *opts.Start
	}
	q, err := c.allEventsQuery(start, nil)
	if err != nil {
		return nil, err
	}
	if opts.Start == nil {
		q.FromBlock = nil
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logs := make(chan types.Log, 128)
	sub, err := c.backend.SubscribeFilterLogs(ctx, q, logs)
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case l := <-logs:
				dl, err := c.DecodeLog(l)
				if err != nil {
					return err
				}
				select {
				case sink <- dl:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}
