package contracts

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
)

var (
	tCtx      = context.Background()
	tAddr     = common.HexToAddress("0x1000000000000000000000000000000000000001")
	tOwner    = common.HexToAddress("0x2000000000000000000000000000000000000002")
	tClaimant = common.HexToAddress("0x3000000000000000000000000000000000000003")
	tChainID  = big.NewInt(31337)
)

// tRevertError mimics the JSON-RPC error for a reverted call.
type tRevertError struct {
	data []byte
}

func (e *tRevertError) Error() string  { return "execution reverted" }
func (e *tRevertError) ErrorCode() int { return 3 }
func (e *tRevertError) ErrorData() any { return hexutil.Encode(e.data) }

// tBackend is a bind.ContractBackend serving canned outputs for a single
// contract ABI.
type tBackend struct {
	mtx      sync.Mutex
	abi      *abi.ABI
	outputs  map[string][]any
	revert   []byte
	gas      uint64
	calls    []ethereum.CallMsg
	sent     []*types.Transaction
	logs     []types.Log
	filterQ  ethereum.FilterQuery
	watchQ   ethereum.FilterQuery
	code     []byte
	sendErr  error
	callErr  error
	estimate error
}

func newTBackend(a *abi.ABI) *tBackend {
	return &tBackend{
		abi:     a,
		outputs: make(map[string][]any),
		gas:     21_000,
		code:    []byte{0x60, 0x80},
	}
}

func (b *tBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return b.code, nil
}

func (b *tBackend) CodeAtHash(context.Context, common.Address, common.Hash) ([]byte, error) {
	return b.code, nil
}

func (b *tBackend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return b.code, nil
}

func (b *tBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.calls = append(b.calls, msg)
	if b.callErr != nil {
		return nil, b.callErr
	}
	if b.revert != nil {
		return nil, &tRevertError{b.revert}
	}
	m, err := b.abi.MethodById(msg.Data)
	if err != nil {
		return nil, err
	}
	return m.Outputs.Pack(b.outputs[m.Name]...)
}

func (b *tBackend) CallContractAtHash(ctx context.Context, msg ethereum.CallMsg, _ common.Hash) ([]byte, error) {
	return b.CallContract(ctx, msg, nil)
}

func (b *tBackend) PendingCallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return b.CallContract(ctx, msg, nil)
}

func (b *tBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	if b.estimate != nil {
		return 0, b.estimate
	}
	return b.gas, nil
}

func (b *tBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1e9), nil
}

func (b *tBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1e8), nil
}

func (b *tBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(100), BaseFee: big.NewInt(1e9)}, nil
}

func (b *tBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 0, nil
}

func (b *tBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if b.sendErr != nil {
		return b.sendErr
	}
	b.sent = append(b.sent, tx)
	return nil
}

func (b *tBackend) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.filterQ = q
	return b.logs, nil
}

func (b *tBackend) SubscribeFilterLogs(_ context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	b.mtx.Lock()
	b.watchQ = q
	logs := b.logs
	b.mtx.Unlock()
	return event.NewSubscription(func(quit <-chan struct{}) error {
		for _, l := range logs {
			select {
			case ch <- l:
			case <-quit:
				return nil
			}
		}
		<-quit
		return nil
	}), nil
}

func (b *tBackend) lastCall(t *testing.T) (*abi.Method, []any) {
	t.Helper()
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if len(b.calls) == 0 {
		t.Fatal("no calls")
	}
	data := b.calls[len(b.calls)-1].Data
	m, err := b.abi.MethodById(data)
	if err != nil {
		t.Fatalf("unknown selector: %v", err)
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("error unpacking call: %v", err)
	}
	return m, args
}

func (b *tBackend) lastSent(t *testing.T) (*abi.Method, []any, *types.Transaction) {
	t.Helper()
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if len(b.sent) == 0 {
		t.Fatal("no transactions sent")
	}
	tx := b.sent[len(b.sent)-1]
	m, err := b.abi.MethodById(tx.Data())
	if err != nil {
		t.Fatalf("unknown selector: %v", err)
	}
	args, err := m.Inputs.Unpack(tx.Data()[4:])
	if err != nil {
		t.Fatalf("error unpacking tx data: %v", err)
	}
	return m, args, tx
}

// customError encodes the revert data of a custom ABI error.
func customError(t *testing.T, a *abi.ABI, name string, args ...any) []byte {
	t.Helper()
	abiErr, found := a.Errors[name]
	if !found {
		t.Fatalf("no error %s", name)
	}
	packed, err := abiErr.Inputs.Pack(args...)
	if err != nil {
		t.Fatalf("error packing %s: %v", name, err)
	}
	id := abiErr.ID
	return append(id[:4:4], packed...)
}

// tLog builds a log of the named event with args in ABI order.
func tLog(t *testing.T, a *abi.ABI, addr common.Address, name string, args ...any) types.Log {
	t.Helper()
	ev, found := a.Events[name]
	if !found {
		t.Fatalf("no event %s", name)
	}
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
		t.Fatalf("error packing %s data: %v", name, err)
	}
	return types.Log{
		Address:     addr,
		Topics:      topics,
		Data:        packed,
		BlockNumber: 10,
		TxHash:      common.HexToHash("0xaa"),
		Index:       uint(len(topics)),
	}
}

func tTransactor(t *testing.T) (*bind.TransactOpts, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey error: %v", err)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	signer := types.LatestSignerForChainID(tChainID)
	return &bind.TransactOpts{
		Context:  tCtx,
		From:     from,
		GasPrice: big.NewInt(1e9),
		GasLimit: 500_000,
		Nonce:    big.NewInt(3),
		Signer:   func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != from {
				return nil, errors.New("not authorized to sign this account")
			}
			return types.SignTx(tx, signer, key)
		},
	}, key
}

func tBoost() Boost {
	return Boost{
		Action:          common.HexToAddress("0xa1"),
		Validator:       common.HexToAddress("0xa2"),
		AllowList:       common.HexToAddress("0xa3"),
		Budget:          common.HexToAddress("0xa4"),
		Incentives:      []common.Address{common.HexToAddress("0xa5"), common.HexToAddress("0xa6")},
		ProtocolFee:     1000,
		ReferralFee:     500,
		MaxParticipants: big.NewInt(100),
		Owner:           tOwner,
	}
}

func TestRead(t *testing.T) {
	be := newTBackend(abis.BoostCore)
	core, err := NewBoostCore(tAddr, be)
	if err != nil {
		t.Fatalf("NewBoostCore error: %v", err)
	}

	be.outputs["FEE_DENOMINATOR"] = []any{uint64(10_000)}
	feeDenom, err := core.FeeDenominator(tCtx)
	if err != nil {
		t.Fatalf("FeeDenominator error: %v", err)
	}
	if feeDenom != 10_000 {
		t.Fatalf("wrong fee denominator %d", feeDenom)
	}

	be.outputs["getBoostCount"] = []any{big.NewInt(4)}
	n, err := core.GetBoostCount(tCtx)
	if err != nil {
		t.Fatalf("GetBoostCount error: %v", err)
	}
	if n.Int64() != 4 {
		t.Fatalf("wrong boost count %d", n)
	}

	exp := tBoost()
	be.outputs["getBoost"] = []any{exp}
	b, err := core.GetBoost(tCtx, big.NewInt(2))
	if err != nil {
		t.Fatalf("GetBoost error: %v", err)
	}
	if b.Action != exp.Action || b.Owner != exp.Owner || len(b.Incentives) != 2 ||
		b.Incentives[1] != exp.Incentives[1] || b.ProtocolFee != 1000 || b.MaxParticipants.Int64() != 100 {
		t.Fatalf("wrong boost %+v", b)
	}
	m, args := be.lastCall(t)
	if m.Name != "getBoost" || args[0].(*big.Int).Int64() != 2 {
		t.Fatalf("wrong call %s %v", m.Name, args)
	}
	if to := be.calls[len(be.calls)-1].To; to == nil || *to != tAddr {
		t.Fatal("call not sent to contract address")
	}

	be.outputs["owner"] = []any{tOwner}
	owner, err := core.Owner(tCtx)
	if err != nil {
		t.Fatalf("Owner error: %v", err)
	}
	if owner != tOwner {
		t.Fatalf("wrong owner %s", owner)
	}

	// Wrong output type.
	if _, err := Read[string](callOpts(tCtx), core.Contract, coreGetBoostCount); err == nil {
		t.Fatal("no error for wrong output type")
	}
}

func TestMultiOutputRead(t *testing.T) {
	be := newTBackend(abis.CGDAIncentive)
	cgda, err := NewCGDAIncentive(tAddr, be)
	if err != nil {
		t.Fatalf("NewCGDAIncentive error: %v", err)
	}
	be.outputs["cgdaParams"] = []any{big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4)}
	p, err := cgda.CGDAParams(tCtx)
	if err != nil {
		t.Fatalf("CGDAParams error: %v", err)
	}
	if p.RewardDecay.Int64() != 1 || p.RewardBoost.Int64() != 2 || p.LastClaimTime.Int64() != 3 || p.CurrentReward.Int64() != 4 {
		t.Fatalf("wrong params %+v", p)
	}
}

func TestBindingMismatch(t *testing.T) {
	be := newTBackend(abis.BoostCore)
	core, _ := NewBoostCore(tAddr, be)
	// A budget descriptor is not bound for BoostCore.
	if _, err := Read[*big.Int](callOpts(tCtx), core.Contract, budgetAvailable, common.Address{}); err == nil {
		t.Fatal("no error for unbound descriptor")
	}
	// A write descriptor used for a read.
	if _, err := Read[struct{}](callOpts(tCtx), core.Contract, coreSetClaimFee, big.NewInt(1)); err == nil {
		t.Fatal("no error for write descriptor in Read")
	}
	opts, _ := tTransactor(t)
	if _, err := Write(opts, core.Contract, coreGetBoostCount); err == nil {
		t.Fatal("no error for read descriptor in Write")
	}
	if _, err := Simulate[struct{}](&SimOpts{}, core.Contract, coreClaimIncentive, big.NewInt(0), big.NewInt(0), common.Address{}, []byte{}); err == nil {
		t.Fatal("no error for write descriptor in Simulate")
	}
	if len(be.calls) != 0 {
		t.Fatal("calls made for mismatched bindings")
	}
}

func TestWrite(t *testing.T) {
	be := newTBackend(abis.BoostCore)
	core, _ := NewBoostCore(tAddr, be)
	opts, key := tTransactor(t)
	opts.Value = big.NewInt(5e14)

	data := []byte{0x01, 0x02}
	tx, err := core.ClaimIncentive(opts, big.NewInt(1), big.NewInt(0), tOwner, data)
	if err != nil {
		t.Fatalf("ClaimIncentive error: %v", err)
	}
	m, args, sent := be.lastSent(t)
	if sent.Hash() != tx.Hash() {
		t.Fatal("returned tx was not sent")
	}
	if m.Name != "claimIncentive" {
		t.Fatalf("wrong method %s", m.Name)
	}
	if args[0].(*big.Int).Int64() != 1 || args[2].(common.Address) != tOwner || string(args[3].([]byte)) != string(data) {
		t.Fatalf("wrong args %v", args)
	}
	if tx.Value().Cmp(opts.Value) != 0 || tx.Nonce() != 3 || *tx.To() != tAddr {
		t.Fatal("wrong tx fields")
	}
	from, err := types.Sender(types.LatestSignerForChainID(tChainID), tx)
	if err != nil {
		t.Fatalf("Sender error: %v", err)
	}
	if from != crypto.PubkeyToAddress(key.PublicKey) {
		t.Fatal("wrong signer")
	}

	p := &InitPayload{
		Budget:          common.HexToAddress("0xb1"),
		Action:          Target{IsBase: true, Instance: common.HexToAddress("0xb2"), Parameters: []byte{1}},
		Validator:       Target{Instance: common.HexToAddress("0xb3"), Parameters: []byte{}},
		AllowList:       Target{Instance: common.HexToAddress("0xb4"), Parameters: []byte{}},
		Incentives:      []Target{{IsBase: true, Instance: common.HexToAddress("0xb5"), Parameters: []byte{2}}},
		MaxParticipants: big.NewInt(10),
		Owner:           tOwner,
	}
	opts.Value = nil
	if _, err := core.CreateBoostFromPayload(opts, p); err != nil {
		t.Fatalf("CreateBoostFromPayload error: %v", err)
	}
	_, args, _ = be.lastSent(t)
	decoded, err := DecodeInitPayload(args[0].([]byte))
	if err != nil {
		t.Fatalf("DecodeInitPayload error: %v", err)
	}
	if decoded.Budget != p.Budget || len(decoded.Incentives) != 1 || decoded.Incentives[0].Instance != p.Incentives[0].Instance {
		t.Fatalf("wrong decoded payload %+v", decoded)
	}

	be.sendErr = errors.New("nonce too low")
	if _, err := core.SetClaimFee(opts, big.NewInt(1)); err == nil {
		t.Fatal("no error for send failure")
	}
}

func TestSimulate(t *testing.T) {
	be := newTBackend(abis.BoostCore)
	core, _ := NewBoostCore(tAddr, be)
	exp := tBoost()
	be.outputs["createBoost"] = []any{exp}
	be.gas = 321_000
	sim, err := core.SimulateCreateBoost(&SimOpts{From: tOwner}, []byte{0xff})
	if err != nil {
		t.Fatalf("SimulateCreateBoost error: %v", err)
	}
	if sim.Gas != 321_000 {
		t.Fatalf("wrong gas %d", sim.Gas)
	}
	if sim.Result.Budget != exp.Budget || sim.Result.ReferralFee != exp.ReferralFee {
		t.Fatalf("wrong simulated boost %+v", sim.Result)
	}
	if sim.Request.From != tOwner || sim.Request.To == nil || *sim.Request.To != tAddr {
		t.Fatal("wrong simulated request")
	}
	if len(be.sent) != 0 {
		t.Fatal("simulation sent a transaction")
	}

	claim, err := core.SimulateClaimIncentive(&SimOpts{From: tClaimant, Value: big.NewInt(1)}, big.NewInt(0), big.NewInt(0), common.Address{}, nil)
	if err != nil {
		t.Fatalf("SimulateClaimIncentive error: %v", err)
	}
	if claim.Request.Value.Int64() != 1 {
		t.Fatal("value not attached")
	}

	be.estimate = errors.New("gas required exceeds allowance")
	if _, err := core.SimulateCreateBoost(&SimOpts{From: tOwner}, []byte{0xff}); err == nil {
		t.Fatal("no error for failed estimate")
	}
}

func TestRevert(t *testing.T) {
	be := newTBackend(abis.BoostCore)
	core, _ := NewBoostCore(tAddr, be)

	be.revert = customError(t, abis.BoostCore, "Unauthorized")
	_, err := core.GetBoostCount(tCtx)
	if !errors.Is(err, boost.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var re *RevertError
	if !errors.As(err, &re) || re.Name != "Unauthorized" || re.Contract != abis.BoostCoreName {
		t.Fatalf("wrong revert error %v", err)
	}

	asset := common.HexToAddress("0xc1")
	be.revert = customError(t, abis.BoostCore, "InsufficientFunds", asset, big.NewInt(1), big.NewInt(2))
	_, err = core.SimulateClaimIncentive(&SimOpts{From: tClaimant}, big.NewInt(0), big.NewInt(0), common.Address{}, nil)
	if !errors.Is(err, boost.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	errors.As(err, &re)
	if re.Args["asset"].(common.Address) != asset || re.Args["required"].(*big.Int).Int64() != 2 {
		t.Fatalf("wrong revert args %v", re.Args)
	}

	be.revert = customError(t, abis.BoostCore, "ClaimFailed", tClaimant, []byte{0xde, 0xad})
	_, err = core.GetBoostCount(tCtx)
	if !errors.Is(err, boost.ErrClaimFailed) {
		t.Fatalf("expected ErrClaimFailed, got %v", err)
	}

	// Error(string)
	reason, _ := abi.NewType("string", "", nil)
	packed, _ := abi.Arguments{{Type: reason}}.Pack("not owner")
	be.revert = append(append([]byte{}, errorSelector...), packed...)
	_, err = core.GetBoostCount(tCtx)
	if !errors.Is(err, boost.ErrReverted) {
		t.Fatalf("expected ErrReverted, got %v", err)
	}
	errors.As(err, &re)
	if re.Name != "Error" || re.Args["reason"] != "not owner" {
		t.Fatalf("wrong string revert %v", re)
	}

	// Unknown selector.
	be.revert = []byte{1, 2, 3, 4}
	_, err = core.GetBoostCount(tCtx)
	errors.As(err, &re)
	if re.Name != "" || !errors.Is(err, boost.ErrReverted) {
		t.Fatalf("wrong unknown revert %v", err)
	}

	// Errors without revert data pass through.
	be.revert = nil
	be.callErr = errors.New("connection refused")
	_, err = core.GetBoostCount(tCtx)
	if errors.As(err, &re) {
		t.Fatal("plain error decoded as revert")
	}
}

func TestNestedRevert(t *testing.T) {
	be := newTBackend(abis.BoostCore)
	core, _ := NewBoostCore(tAddr, be)
	sim := func() error {
		_, err := core.SimulateClaimIncentive(&SimOpts{From: tClaimant}, big.NewInt(1), big.NewInt(0), common.Address{}, nil)
		return err
	}

	// The validator's Replayed bubbles up through claimIncentive.
	signer := common.HexToAddress("0x5151")
	hash := [32]byte{0x0a}
	be.revert = customError(t, abis.SignerValidator, "Replayed", signer, hash, []byte{0x01})
	err := sim()
	if !errors.Is(err, boost.ErrReplayed) {
		t.Fatalf("expected ErrReplayed, got %v", err)
	}
	var re *RevertError
	if !errors.As(err, &re) || re.Name != "Replayed" || re.Contract != abis.BoostCoreName {
		t.Fatalf("wrong revert error %v", err)
	}
	if re.Args["signer"].(common.Address) != signer || re.Args["hash"].([32]byte) != hash {
		t.Fatalf("wrong revert args %v", re.Args)
	}

	be.revert = customError(t, abis.ERC20Incentive, "NotClaimable")
	if err := sim(); !errors.Is(err, boost.ErrNotClaimable) {
		t.Fatalf("expected ErrNotClaimable, got %v", err)
	}

	re = DecodeRevert(abis.BoostCore, abis.BoostCoreName, customError(t, abis.SimpleBudget, "LengthMismatch"))
	if re.Name != "LengthMismatch" || !errors.Is(re, boost.ErrLengthMismatch) {
		t.Fatalf("budget error decoded as %q", re.Name)
	}
}

func TestDecodeRevertProtocolErrors(t *testing.T) {
	tests := []struct {
		contract string
		a        *abi.ABI
		name     string
		kind     error
	}{
		{abis.BoostCoreName, abis.BoostCore, "Reentrancy", boost.ErrReentrancy},
		{abis.BoostCoreName, abis.BoostCore, "InvalidInstance", boost.ErrInvalidInstance},
		{abis.SignerValidatorName, abis.SignerValidator, "Replayed", boost.ErrReplayed},
		{abis.SimpleBudgetName, abis.SimpleBudget, "LengthMismatch", boost.ErrLengthMismatch},
		{abis.ERC20IncentiveName, abis.ERC20Incentive, "NotClaimable", boost.ErrNotClaimable},
	}
	for _, tt := range tests {
		abiErr, found := tt.a.Errors[tt.name]
		if !found {
			t.Fatalf("%s has no error %s", tt.contract, tt.name)
		}
		args := make([]any, len(abiErr.Inputs))
		for i, in := range abiErr.Inputs {
			args[i] = zeroArg(in.Type)
		}
		data := customError(t, tt.a, tt.name, args...)
		re := DecodeRevert(tt.a, tt.contract, data)
		if re.Name != tt.name || !errors.Is(re, tt.kind) {
			t.Fatalf("%s.%s decoded as %q", tt.contract, tt.name, re.Name)
		}
	}
}

func zeroArg(typ abi.Type) any {
	rt := typ.GetType()
	if rt.Kind() == reflect.Ptr {
		return reflect.New(rt.Elem()).Interface()
	}
	return reflect.Zero(rt).Interface()
}

func TestDecodeLog(t *testing.T) {
	be := newTBackend(abis.BoostCore)
	core, _ := NewBoostCore(tAddr, be)
	l := tLog(t, abis.BoostCore, tAddr, "BoostClaimed", big.NewInt(7), big.NewInt(1), tClaimant, tOwner, []byte{9})
	dl, err := core.DecodeLog(l)
	if err != nil {
		t.Fatalf("DecodeLog error: %v", err)
	}
	if dl.Event != "BoostClaimed" || dl.Contract != abis.BoostCoreName {
		t.Fatalf("wrong decoded log %+v", dl)
	}
	if dl.Args["boostId"].(*big.Int).Int64() != 7 || dl.Args["claimant"].(common.Address) != tClaimant ||
		dl.Args["referrer"].(common.Address) != tOwner {
		t.Fatalf("wrong decoded args %v", dl.Args)
	}
	l.Topics[0] = common.HexToHash("0x01")
	if _, err := core.DecodeLog(l); err == nil {
		t.Fatal("no error for unknown event")
	}
	l.Topics = nil
	if _, err := core.DecodeLog(l); err == nil {
		t.Fatal("no error for anonymous log")
	}
}

func TestFilter(t *testing.T) {
	be := newTBackend(abis.BoostCore)
	core, _ := NewBoostCore(tAddr, be)
	be.logs = []types.Log{
		tLog(t, abis.BoostCore, tAddr, "BoostClaimed", big.NewInt(7), big.NewInt(1), tClaimant, tOwner, []byte{9}),
		tLog(t, abis.BoostCore, tAddr, "BoostClaimed", big.NewInt(8), big.NewInt(0), tClaimant, common.Address{}, []byte{}),
	}
	end := uint64(50)
	evs, err := core.FilterBoostClaimed(&bind.FilterOpts{Start: 5, End: &end}, nil, nil, []common.Address{tClaimant})
	if err != nil {
		t.Fatalf("FilterBoostClaimed error: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	ev := evs[0]
	if ev.BoostId.Int64() != 7 || ev.IncentiveId.Int64() != 1 || ev.Claimant != tClaimant || ev.Referrer != tOwner || len(ev.Data) != 1 {
		t.Fatalf("wrong event %+v", ev)
	}
	if ev.Raw.BlockNumber != 10 {
		t.Fatal("raw log not set")
	}
	q := be.filterQ
	if q.FromBlock.Uint64() != 5 || q.ToBlock.Uint64() != 50 {
		t.Fatalf("wrong block range %v-%v", q.FromBlock, q.ToBlock)
	}
	if len(q.Addresses) != 1 || q.Addresses[0] != tAddr {
		t.Fatal("wrong filter address")
	}
	if len(q.Topics) != 4 || q.Topics[0][0] != abis.BoostCore.Events["BoostClaimed"].ID {
		t.Fatalf("wrong topics %v", q.Topics)
	}
	if len(q.Topics[1]) != 0 || len(q.Topics[3]) != 1 || q.Topics[3][0] != common.BytesToHash(tClaimant[:]) {
		t.Fatalf("wrong topic rules %v", q.Topics)
	}
}

func TestWatch(t *testing.T) {
	be := newTBackend(abis.SimpleBudget)
	budget, err := NewSimpleBudget(tAddr, be)
	if err != nil {
		t.Fatalf("NewSimpleBudget error: %v", err)
	}
	asset := common.HexToAddress("0xc1")
	be.logs = []types.Log{
		tLog(t, abis.SimpleBudget, tAddr, "Distributed", asset, tClaimant, big.NewInt(1e18)),
	}
	sink := make(chan *Distributed, 1)
	sub, err := budget.WatchDistributed(&bind.WatchOpts{Context: tCtx}, sink, []common.Address{asset})
	if err != nil {
		t.Fatalf("WatchDistributed error: %v", err)
	}
	defer sub.Unsubscribe()
	select {
	case ev := <-sink:
		if ev.Asset != asset || ev.To != tClaimant || ev.Amount.Cmp(big.NewInt(1e18)) != 0 {
			t.Fatalf("wrong event %+v", ev)
		}
		if ev.Raw.Address != tAddr {
			t.Fatal("raw log not set")
		}
	case err := <-sub.Err():
		t.Fatalf("subscription error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	be.mtx.Lock()
	q := be.watchQ
	be.mtx.Unlock()
	if len(q.Topics) < 2 || len(q.Topics[1]) != 1 || q.Topics[1][0] != common.BytesToHash(asset[:]) {
		t.Fatalf("wrong watch topics %v", q.Topics)
	}
}

func TestWatchOwnershipTransferred(t *testing.T) {
	be := newTBackend(abis.BoostPaymaster)
	pm, err := NewBoostPaymaster(tAddr, be)
	if err != nil {
		t.Fatalf("NewBoostPaymaster error: %v", err)
	}
	be.logs = []types.Log{tLog(t, abis.BoostPaymaster, tAddr, "OwnershipTransferred", tOwner, tClaimant)}
	evs, err := pm.FilterOwnershipTransferred(nil, nil, nil)
	if err != nil {
		t.Fatalf("FilterOwnershipTransferred error: %v", err)
	}
	if len(evs) != 1 || evs[0].OldOwner != tOwner || evs[0].NewOwner != tClaimant {
		t.Fatalf("wrong events %+v", evs)
	}
}

func TestFilterLogs(t *testing.T) {
	be := newTBackend(abis.BoostCore)
	core, _ := NewBoostCore(tAddr, be)
	be.logs = []types.Log{
		tLog(t, abis.BoostCore, tAddr, "BoostClaimed", big.NewInt(7), big.NewInt(1), tClaimant, tOwner, []byte{9}),
		tLog(t, abis.BoostCore, tAddr, "OwnershipTransferred", tOwner, tClaimant),
	}
	end := uint64(20)
	dls, err := core.FilterLogs(&bind.FilterOpts{Start: 3, End: &end})
	if err != nil {
		t.Fatalf("FilterLogs error: %v", err)
	}
	if len(dls) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(dls))
	}
	if dls[0].Event != "BoostClaimed" || dls[0].Contract != abis.BoostCoreName {
		t.Fatalf("wrong first log %s.%s", dls[0].Contract, dls[0].Event)
	}
	if id, ok := dls[0].Args["boostId"].(*big.Int); !ok || id.Int64() != 7 {
		t.Fatalf("wrong boostId %v", dls[0].Args["boostId"])
	}
	if dls[1].Event != "OwnershipTransferred" || dls[1].Args["newOwner"] != tClaimant {
		t.Fatalf("wrong second log %+v", dls[1])
	}
	q := be.filterQ
	if len(q.Topics) != 1 || len(q.Topics[0]) != len(abis.BoostCore.Events) {
		t.Fatalf("wrong topics %v", q.Topics)
	}
	if q.FromBlock.Uint64() != 3 || q.ToBlock.Uint64() != 20 {
		t.Fatalf("wrong block range %v-%v", q.FromBlock, q.ToBlock)
	}

	// Contracts without events can't be followed.
	v, _ := NewContract(abis.ERC721MintActionName, tAddr, be)
	v.ABI = &abi.ABI{}
	if _, err := v.FilterLogs(nil); err == nil {
		t.Fatal("no error for contract without events")
	}
}

func TestWatchLogs(t *testing.T) {
	be := newTBackend(abis.SimpleBudget)
	budget, _ := NewSimpleBudget(tAddr, be)
	asset := common.HexToAddress("0xc1")
	removed := tLog(t, abis.SimpleBudget, tAddr, "Distributed", asset, tClaimant, big.NewInt(2))
	removed.Removed = true
	be.logs = []types.Log{
		tLog(t, abis.SimpleBudget, tAddr, "Distributed", asset, tClaimant, big.NewInt(1)),
		removed,
	}
	sink := make(chan *DecodedLog, 2)
	sub, err := budget.WatchLogs(&bind.WatchOpts{Context: tCtx}, sink)
	if err != nil {
		t.Fatalf("WatchLogs error: %v", err)
	}
	defer sub.Unsubscribe()
	for i := 0; i < 2; i++ {
		select {
		case dl := <-sink:
			if dl.Event != "Distributed" || dl.Args["asset"] != asset {
				t.Fatalf("wrong log %+v", dl)
			}
			if dl.Log.Removed != (i == 1) {
				t.Fatalf("wrong removed flag for log %d", i)
			}
		case err := <-sub.Err():
			t.Fatalf("subscription error: %v", err)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for log")
		}
	}
	be.mtx.Lock()
	q := be.watchQ
	be.mtx.Unlock()
	if q.FromBlock != nil {
		t.Fatalf("unexpected start block %v", q.FromBlock)
	}
}
