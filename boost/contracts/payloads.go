// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var targetComponents = []abi.ArgumentMarshaling{
	{Name: "isBase", Type: "bool"},
	{Name: "instance", Type: "address"},
	{Name: "parameters", Type: "bytes"},
}

var (
	initPayloadArgs = mustArgs("tuple", []abi.ArgumentMarshaling{
		{Name: "budget", Type: "address"},
		{Name: "action", Type: "tuple", Components: targetComponents},
		{Name: "validator", Type: "tuple", Components: targetComponents},
		{Name: "allowList", Type: "tuple", Components: targetComponents},
		{Name: "incentives", Type: "tuple[]", Components: targetComponents},
		{Name: "protocolFee", Type: "uint64"},
		{Name: "referralFee", Type: "uint64"},
		{Name: "maxParticipants", Type: "uint256"},
		{Name: "owner", Type: "address"},
	})
	transferArgs = mustArgs("tuple", []abi.ArgumentMarshaling{
		{Name: "assetType", Type: "uint8"},
		{Name: "asset", Type: "address"},
		{Name: "target", Type: "address"},
		{Name: "data", Type: "bytes"},
	})
	fungiblePayloadArgs = mustArgs("tuple", []abi.ArgumentMarshaling{
		{Name: "amount", Type: "uint256"},
	})
	erc1155PayloadArgs = mustArgs("tuple", []abi.ArgumentMarshaling{
		{Name: "tokenId", Type: "uint256"},
		{Name: "amount", Type: "uint256"},
		{Name: "data", Type: "bytes"},
	})
	signerInputArgs = mustArgs("tuple", []abi.ArgumentMarshaling{
		{Name: "signer", Type: "address"},
		{Name: "signature", Type: "bytes"},
		{Name: "incentiveQuantity", Type: "uint8"},
	})
	claimDataArgs = mustArgs("tuple", []abi.ArgumentMarshaling{
		{Name: "validatorData", Type: "bytes"},
		{Name: "incentiveData", Type: "bytes"},
	})
)

func mustArgs(t string, components []abi.ArgumentMarshaling) abi.Arguments {
	typ, err := abi.NewType(t, "", components)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: typ}}
}

// encodeTuple abi-encodes v, a pointer to a struct mirroring the tuple.
func encodeTuple(args abi.Arguments, v any) ([]byte, error) {
	return args.Pack(v)
}

// decodeTuple decodes b into v, a pointer to a struct mirroring the tuple.
func decodeTuple(args abi.Arguments, b []byte, v any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cannot convert tuple: %v", r)
		}
	}()
	out, err := args.Unpack(b)
	if err != nil {
		return err
	}
	if len(out) != 1 {
		return fmt.Errorf("expected 1 value, got %d", len(out))
	}
	abi.ConvertType(out[0], v)
	return nil
}

// EncodeInitPayload encodes the createBoost argument.
func EncodeInitPayload(p *InitPayload) ([]byte, error) {
	if p.MaxParticipants == nil {
		return nil, errors.New("no max participants")
	}
	return encodeTuple(initPayloadArgs, p)
}

// DecodeInitPayload decodes a createBoost argument.
func DecodeInitPayload(b []byte) (*InitPayload, error) {
	p := new(InitPayload)
	if err := decodeTuple(initPayloadArgs, b, p); err != nil {
		return nil, fmt.Errorf("error decoding init payload: %w", err)
	}
	return p, nil
}

// EncodeTransfer encodes a budget Transfer.
func EncodeTransfer(t *Transfer) ([]byte, error) {
	return encodeTuple(transferArgs, t)
}

// DecodeTransfer decodes a budget Transfer.
func DecodeTransfer(b []byte) (*Transfer, error) {
	t := new(Transfer)
	if err := decodeTuple(transferArgs, b, t); err != nil {
		return nil, fmt.Errorf("error decoding transfer: %w", err)
	}
	return t, nil
}

// NewFungibleTransfer builds an ETH or ERC20 Transfer of amount.
func NewFungibleTransfer(assetType AssetType, asset, target common.Address, amount *big.Int) (*Transfer, error) {
	if assetType != AssetTypeETH && assetType != AssetTypeERC20 {
		return nil, fmt.Errorf("%s is not a fungible asset type", assetType)
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, errors.New("transfer amount must be positive")
	}
	data, err := encodeTuple(fungiblePayloadArgs, &FungiblePayload{Amount: amount})
	if err != nil {
		return nil, err
	}
	return &Transfer{
		AssetType: uint8(assetType),
		Asset:     asset,
		Target:    target,
		Data:      data,
	}, nil
}

// NewERC1155Transfer builds an ERC1155 Transfer of amount of tokenID.
func NewERC1155Transfer(asset, target common.Address, tokenID, amount *big.Int, data []byte) (*Transfer, error) {
	if tokenID == nil || amount == nil || amount.Sign() <= 0 {
		return nil, errors.New("token ID and a positive amount are required")
	}
	if data == nil {
		data = []byte{}
	}
	payload, err := encodeTuple(erc1155PayloadArgs, &ERC1155Payload{
		TokenId: tokenID,
		Amount:  amount,
		Data:    data,
	})
	if err != nil {
		return nil, err
	}
	return &Transfer{
		AssetType: uint8(AssetTypeERC1155),
		Asset:     asset,
		Target:    target,
		Data:      payload,
	}, nil
}

// Fungible decodes the Transfer data of an ETH or ERC20 Transfer.
func (t *Transfer) Fungible() (*FungiblePayload, error) {
	if AssetType(t.AssetType) == AssetTypeERC1155 {
		return nil, errors.New("not a fungible transfer")
	}
	p := new(FungiblePayload)
	if err := decodeTuple(fungiblePayloadArgs, t.Data, p); err != nil {
		return nil, fmt.Errorf("error decoding fungible payload: %w", err)
	}
	return p, nil
}

// ERC1155 decodes the Transfer data of an ERC1155 Transfer.
func (t *Transfer) ERC1155() (*ERC1155Payload, error) {
	if AssetType(t.AssetType) != AssetTypeERC1155 {
		return nil, errors.New("not an ERC1155 transfer")
	}
	p := new(ERC1155Payload)
	if err := decodeTuple(erc1155PayloadArgs, t.Data, p); err != nil {
		return nil, fmt.Errorf("error decoding ERC1155 payload: %w", err)
	}
	return p, nil
}

// EncodeClaimData encodes the claim data for BoostCore.claimIncentive.
func EncodeClaimData(validatorData, incentiveData []byte) ([]byte, error) {
	if validatorData == nil {
		validatorData = []byte{}
	}
	if incentiveData == nil {
		incentiveData = []byte{}
	}
	return encodeTuple(claimDataArgs, &BoostClaimData{
		ValidatorData: validatorData,
		IncentiveData: incentiveData,
	})
}

// DecodeClaimData decodes BoostCore.claimIncentive claim data.
func DecodeClaimData(b []byte) (*BoostClaimData, error) {
	d := new(BoostClaimData)
	if err := decodeTuple(claimDataArgs, b, d); err != nil {
		return nil, fmt.Errorf("error decoding claim data: %w", err)
	}
	return d, nil
}

// EncodeSignerClaim encodes claim data for a boost validated by a
// SignerValidator: the signer's signature over the claim wrapped with the
// incentive data.
func EncodeSignerClaim(signer common.Address, signature []byte, incentiveQuantity uint8, incentiveData []byte) ([]byte, error) {
	validatorData, err := encodeTuple(signerInputArgs, &SignerValidatorInputParams{
		Signer:            signer,
		Signature:         signature,
		IncentiveQuantity: incentiveQuantity,
	})
	if err != nil {
		return nil, err
	}
	return EncodeClaimData(validatorData, incentiveData)
}

// DecodeSignerValidatorInput decodes SignerValidator validator data.
func DecodeSignerValidatorInput(b []byte) (*SignerValidatorInputParams, error) {
	p := new(SignerValidatorInputParams)
	if err := decodeTuple(signerInputArgs, b, p); err != nil {
		return nil, fmt.Errorf("error decoding signer validator input: %w", err)
	}
	return p, nil
}
