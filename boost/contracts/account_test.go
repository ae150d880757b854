package contracts

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/boostxyz/boost-protocol-sub000/boost/erc4337"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

func tUserOp() *erc4337.PackedUserOperation {
	op := &erc4337.PackedUserOperation{
		Sender:             tClaimant,
		Nonce:              big.NewInt(1),
		CallData:           []byte{0x01},
		PreVerificationGas: big.NewInt(50_000),
		Signature:          []byte{},
		InitCode:           []byte{},
		PaymasterAndData:   []byte{},
	}
	op.SetGasLimits(big.NewInt(100_000), big.NewInt(200_000))
	op.SetGasFees(big.NewInt(1), big.NewInt(2))
	return op
}

func TestPaymaster(t *testing.T) {
	be := newTBackend(abis.BoostPaymaster)
	pm, err := NewBoostPaymaster(tAddr, be)
	if err != nil {
		t.Fatalf("NewBoostPaymaster error: %v", err)
	}

	hash := [32]byte{0x11}
	be.outputs["getHash"] = []any{hash}
	op := tUserOp()
	h, err := pm.GetHash(tCtx, op, 2000, 1000)
	if err != nil {
		t.Fatalf("GetHash error: %v", err)
	}
	if h != hash {
		t.Fatalf("wrong hash %x", h)
	}
	m, args := be.lastCall(t)
	if m.Name != "getHash" || args[1].(*big.Int).Int64() != 2000 || args[2].(*big.Int).Int64() != 1000 {
		t.Fatalf("wrong getHash call %v", args)
	}

	sig := bytes.Repeat([]byte{0x22}, 65)
	be.outputs["parsePaymasterAndData"] = []any{big.NewInt(2000), big.NewInt(1000), sig}
	pd, err := pm.ParsePaymasterAndData(tCtx, []byte{0x33})
	if err != nil {
		t.Fatalf("ParsePaymasterAndData error: %v", err)
	}
	if pd.ValidUntil.Int64() != 2000 || pd.ValidAfter.Int64() != 1000 || !bytes.Equal(pd.Signature, sig) {
		t.Fatalf("wrong paymaster data %+v", pd)
	}

	signer := common.HexToAddress("0x44")
	be.outputs["verifyingSigner"] = []any{signer}
	if s, err := pm.VerifyingSigner(tCtx); err != nil || s != signer {
		t.Fatalf("VerifyingSigner = %s, %v", s, err)
	}

	opts, _ := tTransactor(t)
	opts.Value = big.NewInt(1e18)
	if _, err := pm.AddStake(opts, 86400); err != nil {
		t.Fatalf("AddStake error: %v", err)
	}
	m, args, tx := be.lastSent(t)
	if m.Name != "addStake" || args[0].(uint32) != 86400 || tx.Value().Cmp(opts.Value) != 0 {
		t.Fatalf("wrong addStake tx %v", args)
	}

	opts.Value = nil
	if _, err := pm.PostOp(opts, OpReverted, []byte{}, big.NewInt(1), big.NewInt(2)); err != nil {
		t.Fatalf("PostOp error: %v", err)
	}
	_, args, _ = be.lastSent(t)
	if args[0].(uint8) != uint8(OpReverted) {
		t.Fatalf("wrong postOp mode %v", args[0])
	}
}

func TestAccount(t *testing.T) {
	be := newTBackend(abis.BoostAccount)
	acct, err := NewBoostAccount(tAddr, be)
	if err != nil {
		t.Fatalf("NewBoostAccount error: %v", err)
	}
	be.outputs["entryPoint"] = []any{common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032")}
	ep, err := acct.EntryPoint(tCtx)
	if err != nil {
		t.Fatalf("EntryPoint error: %v", err)
	}
	if ep != common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032") {
		t.Fatalf("wrong entry point %s", ep)
	}
	be.outputs["getNonce"] = []any{big.NewInt(9)}
	if n, err := acct.GetNonce(tCtx); err != nil || n.Int64() != 9 {
		t.Fatalf("GetNonce = %v, %v", n, err)
	}

	opts, _ := tTransactor(t)
	op := tUserOp()
	if _, err := acct.ValidateUserOp(opts, op, [32]byte{1}, big.NewInt(0)); err != nil {
		t.Fatalf("ValidateUserOp error: %v", err)
	}
	m, args, _ := be.lastSent(t)
	if m.Name != "validateUserOp" {
		t.Fatalf("wrong method %s", m.Name)
	}
	sent := abi.ConvertType(args[0], new(erc4337.PackedUserOperation)).(*erc4337.PackedUserOperation)
	if sent.Sender != op.Sender || sent.AccountGasLimits != op.AccountGasLimits || sent.Nonce.Int64() != 1 {
		t.Fatalf("wrong user op %+v", sent)
	}

	if _, err := acct.ExecuteBatch(opts, []common.Address{tOwner}, []*big.Int{big.NewInt(1)}, nil); err == nil {
		t.Fatal("no error for mismatched batch")
	}
}

func TestERC20Token(t *testing.T) {
	be := newTBackend(abis.ERC20)
	tok, err := NewERC20Token(tAddr, be)
	if err != nil {
		t.Fatalf("NewERC20Token error: %v", err)
	}
	be.outputs["decimals"] = []any{uint8(6)}
	be.outputs["symbol"] = []any{"USDC"}
	if d, err := tok.Decimals(tCtx); err != nil || d != 6 {
		t.Fatalf("Decimals = %d, %v", d, err)
	}
	if s, err := tok.Symbol(tCtx); err != nil || s != "USDC" {
		t.Fatalf("Symbol = %q, %v", s, err)
	}
	be.logs = append(be.logs, tLog(t, abis.ERC20, tAddr, "Transfer", tOwner, tClaimant, big.NewInt(77)))
	evs, err := tok.FilterTransfer(nil, []common.Address{tOwner}, nil)
	if err != nil {
		t.Fatalf("FilterTransfer error: %v", err)
	}
	if len(evs) != 1 || evs[0].From != tOwner || evs[0].To != tClaimant || evs[0].Value.Int64() != 77 {
		t.Fatalf("wrong transfers %+v", evs)
	}

	be1155 := newTBackend(abis.ERC1155)
	tok1155, _ := NewERC1155Token(tAddr, be1155)
	be1155.logs = append(be1155.logs, tLog(t, abis.ERC1155, tAddr, "TransferSingle", tOwner, tOwner, tClaimant, big.NewInt(5), big.NewInt(2)))
	ts, err := tok1155.FilterTransferSingle(nil, nil, nil, []common.Address{tClaimant})
	if err != nil {
		t.Fatalf("FilterTransferSingle error: %v", err)
	}
	if len(ts) != 1 || ts[0].Id.Int64() != 5 || ts[0].Value.Int64() != 2 || ts[0].To != tClaimant {
		t.Fatalf("wrong transfer singles %+v", ts)
	}
}
