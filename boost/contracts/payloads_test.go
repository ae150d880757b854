package contracts

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/ethereum/go-ethereum/common"
)

func TestTransfers(t *testing.T) {
	asset := common.HexToAddress("0xd1")
	if _, err := NewFungibleTransfer(AssetTypeERC1155, asset, tOwner, big.NewInt(1)); err == nil {
		t.Fatal("no error for ERC1155 fungible transfer")
	}
	if _, err := NewFungibleTransfer(AssetTypeERC20, asset, tOwner, big.NewInt(0)); err == nil {
		t.Fatal("no error for zero amount")
	}
	if _, err := NewFungibleTransfer(AssetTypeETH, asset, tOwner, nil); err == nil {
		t.Fatal("no error for nil amount")
	}

	tr, err := NewFungibleTransfer(AssetTypeERC20, asset, tOwner, big.NewInt(5e18))
	if err != nil {
		t.Fatalf("NewFungibleTransfer error: %v", err)
	}
	b, err := EncodeTransfer(tr)
	if err != nil {
		t.Fatalf("EncodeTransfer error: %v", err)
	}
	reTr, err := DecodeTransfer(b)
	if err != nil {
		t.Fatalf("DecodeTransfer error: %v", err)
	}
	if AssetType(reTr.AssetType) != AssetTypeERC20 || reTr.Asset != asset || reTr.Target != tOwner {
		t.Fatalf("wrong transfer %+v", reTr)
	}
	fp, err := reTr.Fungible()
	if err != nil {
		t.Fatalf("Fungible error: %v", err)
	}
	if fp.Amount.Cmp(big.NewInt(5e18)) != 0 {
		t.Fatalf("wrong amount %s", fp.Amount)
	}
	if _, err := reTr.ERC1155(); err == nil {
		t.Fatal("no error decoding fungible transfer as ERC1155")
	}

	tr, err = NewERC1155Transfer(asset, tOwner, big.NewInt(42), big.NewInt(3), nil)
	if err != nil {
		t.Fatalf("NewERC1155Transfer error: %v", err)
	}
	p, err := tr.ERC1155()
	if err != nil {
		t.Fatalf("ERC1155 error: %v", err)
	}
	if p.TokenId.Int64() != 42 || p.Amount.Int64() != 3 || len(p.Data) != 0 {
		t.Fatalf("wrong ERC1155 payload %+v", p)
	}
	if _, err := tr.Fungible(); err == nil {
		t.Fatal("no error decoding ERC1155 transfer as fungible")
	}

	if _, err := DecodeTransfer([]byte{1, 2, 3}); err == nil {
		t.Fatal("no error for short transfer data")
	}
}

func TestSignerClaim(t *testing.T) {
	sig := bytes.Repeat([]byte{0xab}, 65)
	incentiveData := []byte{0x01}
	b, err := EncodeSignerClaim(tOwner, sig, 2, incentiveData)
	if err != nil {
		t.Fatalf("EncodeSignerClaim error: %v", err)
	}
	cd, err := DecodeClaimData(b)
	if err != nil {
		t.Fatalf("DecodeClaimData error: %v", err)
	}
	if !bytes.Equal(cd.IncentiveData, incentiveData) {
		t.Fatalf("wrong incentive data %x", cd.IncentiveData)
	}
	in, err := DecodeSignerValidatorInput(cd.ValidatorData)
	if err != nil {
		t.Fatalf("DecodeSignerValidatorInput error: %v", err)
	}
	if in.Signer != tOwner || !bytes.Equal(in.Signature, sig) || in.IncentiveQuantity != 2 {
		t.Fatalf("wrong validator input %+v", in)
	}

	b, err = EncodeClaimData(nil, nil)
	if err != nil {
		t.Fatalf("EncodeClaimData error: %v", err)
	}
	// Offsets for both bytes members plus two zero lengths.
	if len(b) != 32*5 {
		t.Fatalf("wrong empty claim data length %d", len(b))
	}
}

func TestInitPayload(t *testing.T) {
	p := &InitPayload{
		Budget:          common.HexToAddress("0xb1"),
		Action:          Target{IsBase: true, Instance: common.HexToAddress("0xb2"), Parameters: []byte{1, 2}},
		Validator:       Target{IsBase: true, Instance: common.HexToAddress("0xb3"), Parameters: []byte{}},
		AllowList:       Target{Instance: common.HexToAddress("0xb4"), Parameters: []byte{}},
		Incentives:      []Target{{Instance: common.HexToAddress("0xb5"), Parameters: []byte{3}}},
		ProtocolFee:     250,
		ReferralFee:     100,
		MaxParticipants: big.NewInt(1000),
		Owner:           tOwner,
	}
	b, err := EncodeInitPayload(p)
	if err != nil {
		t.Fatalf("EncodeInitPayload error: %v", err)
	}
	calldata, err := abis.BoostCore.Pack("createBoost", b)
	if err != nil {
		t.Fatalf("Pack error: %v", err)
	}
	re, err := ParseCreateBoostData(calldata)
	if err != nil {
		t.Fatalf("ParseCreateBoostData error: %v", err)
	}
	if re.Budget != p.Budget || !re.Action.IsBase || !bytes.Equal(re.Action.Parameters, []byte{1, 2}) ||
		re.AllowList.IsBase || len(re.Incentives) != 1 || re.ProtocolFee != 250 ||
		re.MaxParticipants.Int64() != 1000 || re.Owner != tOwner {
		t.Fatalf("wrong init payload %+v", re)
	}

	p.MaxParticipants = nil
	if _, err := EncodeInitPayload(p); err == nil {
		t.Fatal("no error for missing max participants")
	}
}

func TestParseClaimIncentiveData(t *testing.T) {
	data := []byte{0xca, 0xfe}
	calldata, err := abis.BoostCore.Pack("claimIncentiveFor", big.NewInt(3), big.NewInt(1), tOwner, data, tClaimant)
	if err != nil {
		t.Fatalf("Pack error: %v", err)
	}
	cc, err := ParseClaimIncentiveData(calldata)
	if err != nil {
		t.Fatalf("ParseClaimIncentiveData error: %v", err)
	}
	if cc.BoostID.Int64() != 3 || cc.IncentiveID.Int64() != 1 || cc.Referrer != tOwner ||
		!bytes.Equal(cc.Data, data) || cc.Claimant != tClaimant {
		t.Fatalf("wrong claim call %+v", cc)
	}

	calldata, _ = abis.BoostCore.Pack("claimIncentive", big.NewInt(3), big.NewInt(1), common.Address{}, data)
	cc, err = ParseClaimIncentiveData(calldata)
	if err != nil {
		t.Fatalf("ParseClaimIncentiveData error: %v", err)
	}
	if cc.Claimant != (common.Address{}) {
		t.Fatal("claimant set for claimIncentive")
	}

	calldata, _ = abis.BoostCore.Pack("getBoostCount")
	if _, err := ParseClaimIncentiveData(calldata); err == nil {
		t.Fatal("no error for non-claim calldata")
	}
	if _, err := ParseCreateBoostData(calldata); err == nil {
		t.Fatal("no error for non-createBoost calldata")
	}
}

func TestIdentifyCallData(t *testing.T) {
	calldata, _ := abis.BoostCore.Pack("owner")
	matches := IdentifyCallData(calldata)
	if len(matches) < 2 {
		t.Fatalf("expected owner() to match several contracts, got %d", len(matches))
	}
	for _, m := range matches {
		if m.Name != "owner" {
			t.Fatalf("wrong match %s.%s", m.Contract, m.Name)
		}
	}

	calldata, err := ExecuteCallData(tOwner, big.NewInt(1), []byte{0x12})
	if err != nil {
		t.Fatalf("ExecuteCallData error: %v", err)
	}
	dc, err := ParseCallData(abis.BoostAccountName, calldata)
	if err != nil {
		t.Fatalf("ParseCallData error: %v", err)
	}
	if dc.Name != "execute" || dc.Args[0].(common.Address) != tOwner {
		t.Fatalf("wrong decoded call %+v", dc)
	}
	if _, err := ExecuteBatchCallData([]common.Address{tOwner}, nil, nil); err == nil {
		t.Fatal("no error for mismatched batch lengths")
	}
	if _, err := ParseCallData(abis.BoostAccountName, []byte{1}); err == nil {
		t.Fatal("no error for short calldata")
	}
}
