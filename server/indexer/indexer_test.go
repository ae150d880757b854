package indexer

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/boostxyz/boost-protocol-sub000/boost/config"
	"github.com/boostxyz/boost-protocol-sub000/server/eventdb"
	"github.com/decred/slog"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

var (
	tCore      = common.HexToAddress("0xc0")
	tIncentive = common.HexToAddress("0x1c")
	tOwner     = common.HexToAddress("0x0e")
	tClaimant  = common.HexToAddress("0xca")
)

// tChain is a bind.ContractBackend serving logs for the indexer.
type tChain struct {
	mtx     sync.Mutex
	tip     uint64
	logs    []types.Log
	live    map[common.Address]chan types.Log
	filters int
}

func newTChain(tip uint64) *tChain {
	return &tChain{
		tip:  tip,
		live: make(map[common.Address]chan types.Log),
	}
}

func (c *tChain) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{1}, nil
}

func (c *tChain) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (c *tChain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 0, errors.New("not implemented")
}

func (c *tChain) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (c *tChain) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (c *tChain) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return &types.Header{Number: new(big.Int).SetUint64(c.tip)}, nil
}

func (c *tChain) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{1}, nil
}

func (c *tChain) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 0, nil
}

func (c *tChain) SendTransaction(context.Context, *types.Transaction) error {
	return errors.New("not implemented")
}

func (c *tChain) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.filters++
	var logs []types.Log
	for _, l := range c.logs {
		if l.Address != q.Addresses[0] {
			continue
		}
		if l.BlockNumber < q.FromBlock.Uint64() || (q.ToBlock != nil && l.BlockNumber > q.ToBlock.Uint64()) {
			continue
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (c *tChain) SubscribeFilterLogs(_ context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	c.mtx.Lock()
	live, found := c.live[q.Addresses[0]]
	if !found {
		live = make(chan types.Log, 8)
		c.live[q.Addresses[0]] = live
	}
	c.mtx.Unlock()
	return event.NewSubscription(func(quit <-chan struct{}) error {
		for {
			select {
			case l := <-live:
				select {
				case ch <- l:
				case <-quit:
					return nil
				}
			case <-quit:
				return nil
			}
		}
	}), nil
}

func (c *tChain) liveChan(addr common.Address) chan types.Log {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	live, found := c.live[addr]
	if !found {
		live = make(chan types.Log, 8)
		c.live[addr] = live
	}
	return live
}

func tLog(t *testing.T, a *abi.ABI, addr common.Address, block uint64, index uint, name string, args ...any) types.Log {
	t.Helper()
	ev := a.Events[name]
	topics := []common.Hash{ev.ID}
	var data []any
	for i, in := range ev.Inputs {
		if !in.Indexed {
			data = append(data, args[i])
			continue
		}
		ts, err := abi.MakeTopics([]any{args[i]})
		if err != nil {
			t.Fatalf("error making topic: %v", err)
		}
		topics = append(topics, ts[0][0])
	}
	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		t.Fatalf("error packing %s: %v", name, err)
	}
	return types.Log{
		Address:     addr,
		Topics:      topics,
		Data:        packed,
		BlockNumber: block,
		Index:       index,
	}
}

func TestNew(t *testing.T) {
	chain := newTChain(1)
	db, _ := eventdb.New(&eventdb.Config{InMemory: true})
	defer db.Close()
	if _, err := New(&Config{Backend: chain, Store: db}); err == nil {
		t.Fatal("no error without contracts")
	}
	if _, err := New(&Config{
		Backend:   chain,
		Store:     db,
		Contracts: config.Deployments{"NotAContract": tCore},
	}); err == nil {
		t.Fatal("no error for unknown contract")
	}
	idx, err := New(&Config{
		Backend: chain,
		Store:   db,
		Contracts: config.Deployments{
			"BoostCore":                tCore,
			"ERC20Incentive.usdc":      tIncentive,
			"ERC20Incentive.secondary": common.HexToAddress("0x2c"),
		},
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if len(idx.contracts) != 3 || idx.contracts[0].Name != abis.BoostCoreName || idx.contracts[1].Name != abis.ERC20IncentiveName {
		t.Fatalf("wrong contracts %v", idx.contracts)
	}
	if idx.cfg.Window != defaultWindow || idx.cfg.Confirmations != defaultConfirmations {
		t.Fatal("defaults not set")
	}
}

func TestRun(t *testing.T) {
	const chainID = 31337
	chain := newTChain(200)
	chain.logs = []types.Log{
		tLog(t, abis.BoostCore, tCore, 5, 0, "BoostCreated", big.NewInt(0), tOwner, common.HexToAddress("0xa1"),
			big.NewInt(1), common.HexToAddress("0xa2"), common.HexToAddress("0xa3"), common.HexToAddress("0xa4")),
		tLog(t, abis.ERC20Incentive, tIncentive, 150, 1, "Claimed", tClaimant, []byte{1}),
		tLog(t, abis.BoostCore, tCore, 150, 0, "BoostClaimed", big.NewInt(0), big.NewInt(0), tClaimant, common.Address{}, []byte{}),
		// Before the start block.
		tLog(t, abis.BoostCore, tCore, 2, 0, "OwnershipTransferred", common.Address{}, tOwner),
	}

	db, err := eventdb.New(&eventdb.Config{InMemory: true})
	if err != nil {
		t.Fatalf("eventdb.New error: %v", err)
	}
	defer db.Close()

	notes := make(chan *eventdb.Event, 16)
	idx, err := New(&Config{
		Backend:      chain,
		ChainID:      chainID,
		Contracts:    config.Deployments{"BoostCore": tCore, "ERC20Incentive": tIncentive},
		Store:        db,
		StartBlock:   3,
		Window:       100,
		PollInterval: time.Hour,
		Notify:       func(ev *eventdb.Event) { notes <- ev },
		Log:          boost.StdOutLogger("IDX", slog.LevelTrace),
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		idx.Run(ctx)
		close(done)
	}()

	next := func() *eventdb.Event {
		t.Helper()
		select {
		case ev := <-notes:
			return ev
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for event")
		}
		return nil
	}

	// Backfill delivers in chain order across contracts.
	exp := []struct {
		name  string
		block uint64
	}{{"BoostCreated", 5}, {"BoostClaimed", 150}, {"Claimed", 150}}
	for _, e := range exp {
		ev := next()
		if ev.Name != e.name || ev.BlockNumber != e.block || ev.ChainID != chainID {
			t.Fatalf("expected %s at %d, got %s at %d", e.name, e.block, ev.Name, ev.BlockNumber)
		}
	}

	// Two windows for each of the two contracts.
	chain.mtx.Lock()
	nFilters := chain.filters
	chain.mtx.Unlock()
	if nFilters != 4 {
		t.Fatalf("expected 4 filter queries, got %d", nFilters)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !idx.Status().Synced {
		if time.Now().After(deadline) {
			t.Fatal("indexer never synced")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if st := idx.Status(); st.Cursor != 200 {
		t.Fatalf("wrong cursor %d", st.Cursor)
	}
	if h, _ := db.LastBlock(chainID); h != 200 {
		t.Fatalf("wrong stored cursor %d", h)
	}

	// Live event, then its removal.
	l := tLog(t, abis.BoostCore, tCore, 210, 3, "BoostClaimed", big.NewInt(0), big.NewInt(0), tClaimant, tOwner, []byte{})
	chain.liveChan(tCore) <- l
	if ev := next(); ev.BlockNumber != 210 || ev.Removed {
		t.Fatalf("wrong live event %+v", ev)
	}
	l.Removed = true
	chain.liveChan(tCore) <- l
	if ev := next(); !ev.Removed {
		t.Fatal("removal not notified")
	}

	evs, err := db.Events(&eventdb.Filter{BoostID: big.NewInt(0), IncludeRemoved: true})
	if err != nil {
		t.Fatalf("Events error: %v", err)
	}
	if len(evs) != 3 || !evs[2].Removed || evs[0].Name != "BoostCreated" {
		t.Fatalf("wrong stored events %+v", evs)
	}
	if evs, _ := db.Events(&eventdb.Filter{Name: "OwnershipTransferred"}); len(evs) != 0 {
		t.Fatal("event before start block indexed")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}
