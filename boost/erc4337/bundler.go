// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package erc4337

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// RPCUserOperation is the unpacked v0.7 JSON form of a user operation
// accepted by bundler RPC methods.
type RPCUserOperation struct {
	Sender                        common.Address  `json:"sender"`
	Nonce                         *hexutil.Big    `json:"nonce"`
	Factory                       *common.Address `json:"factory,omitempty"`
	FactoryData                   hexutil.Bytes   `json:"factoryData,omitempty"`
	CallData                      hexutil.Bytes   `json:"callData"`
	CallGasLimit                  *hexutil.Big    `json:"callGasLimit"`
	VerificationGasLimit          *hexutil.Big    `json:"verificationGasLimit"`
	PreVerificationGas            *hexutil.Big    `json:"preVerificationGas"`
	MaxFeePerGas                  *hexutil.Big    `json:"maxFeePerGas"`
	MaxPriorityFeePerGas          *hexutil.Big    `json:"maxPriorityFeePerGas"`
	Paymaster                     *common.Address `json:"paymaster,omitempty"`
	PaymasterVerificationGasLimit *hexutil.Big    `json:"paymasterVerificationGasLimit,omitempty"`
	PaymasterPostOpGasLimit       *hexutil.Big    `json:"paymasterPostOpGasLimit,omitempty"`
	PaymasterData                 hexutil.Bytes   `json:"paymasterData,omitempty"`
	Signature                     hexutil.Bytes   `json:"signature"`
}

// RPC converts the packed operation to its JSON form.
func (op *PackedUserOperation) RPC() (*RPCUserOperation, error) {
	vgl, cgl := op.GasLimits()
	prio, maxFee := op.Fees()
	r := &RPCUserOperation{
		Sender:               op.Sender,
		Nonce:                (*hexutil.Big)(op.Nonce),
		CallData:             op.CallData,
		CallGasLimit:         (*hexutil.Big)(cgl),
		VerificationGasLimit: (*hexutil.Big)(vgl),
		PreVerificationGas:   (*hexutil.Big)(op.PreVerificationGas),
		MaxFeePerGas:         (*hexutil.Big)(maxFee),
		MaxPriorityFeePerGas: (*hexutil.Big)(prio),
		Signature:            op.Signature,
	}
	if len(op.InitCode) > 0 {
		if len(op.InitCode) < common.AddressLength {
			return nil, fmt.Errorf("initCode too short: %d bytes", len(op.InitCode))
		}
		factory := common.BytesToAddress(op.InitCode[:common.AddressLength])
		r.Factory = &factory
		r.FactoryData = op.InitCode[common.AddressLength:]
	}
	if len(op.PaymasterAndData) > 0 {
		pm, err := ParsePaymasterAndData(op.PaymasterAndData)
		if err != nil {
			return nil, err
		}
		r.Paymaster = &pm.Paymaster
		r.PaymasterVerificationGasLimit = (*hexutil.Big)(pm.VerificationGasLimit)
		r.PaymasterPostOpGasLimit = (*hexutil.Big)(pm.PostOpGasLimit)
		r.PaymasterData = pm.Data
	}
	return r, nil
}

// GasEstimate holds a bundler's gas estimate for a user operation.
type GasEstimate struct {
	PreVerificationGas            *hexutil.Big `json:"preVerificationGas"`
	VerificationGasLimit          *hexutil.Big `json:"verificationGasLimit"`
	CallGasLimit                  *hexutil.Big `json:"callGasLimit"`
	PaymasterVerificationGasLimit *hexutil.Big `json:"paymasterVerificationGasLimit,omitempty"`
	PaymasterPostOpGasLimit       *hexutil.Big `json:"paymasterPostOpGasLimit,omitempty"`
}

func bigOrZero(b *hexutil.Big) *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return b.ToInt()
}

// TotalGas is the sum of the estimated limits.
func (e *GasEstimate) TotalGas() *big.Int {
	sum := new(big.Int)
	for _, b := range []*hexutil.Big{e.PreVerificationGas, e.VerificationGasLimit, e.CallGasLimit, e.PaymasterVerificationGasLimit, e.PaymasterPostOpGasLimit} {
		sum.Add(sum, bigOrZero(b))
	}
	return sum
}

// Apply sets the estimated limits on the operation. Paymaster limits are
// repacked into paymasterAndData, which must then be re-signed by the
// paymaster since its signature covers them.
func (e *GasEstimate) Apply(op *PackedUserOperation) error {
	op.PreVerificationGas = bigOrZero(e.PreVerificationGas)
	if err := op.SetGasLimits(bigOrZero(e.VerificationGasLimit), bigOrZero(e.CallGasLimit)); err != nil {
		return err
	}
	if len(op.PaymasterAndData) == 0 || (e.PaymasterVerificationGasLimit == nil && e.PaymasterPostOpGasLimit == nil) {
		return nil
	}
	pm, err := ParsePaymasterAndData(op.PaymasterAndData)
	if err != nil {
		return err
	}
	if e.PaymasterVerificationGasLimit != nil {
		pm.VerificationGasLimit = e.PaymasterVerificationGasLimit.ToInt()
	}
	if e.PaymasterPostOpGasLimit != nil {
		pm.PostOpGasLimit = e.PaymasterPostOpGasLimit.ToInt()
	}
	b, err := pm.Pack()
	if err != nil {
		return err
	}
	op.PaymasterAndData = b
	return nil
}

// Receipt is the result of eth_getUserOperationReceipt. A nil Receipt means
// the operation has not been included yet.
type Receipt struct {
	UserOpHash    common.Hash    `json:"userOpHash"`
	Sender        common.Address `json:"sender"`
	Nonce         *hexutil.Big   `json:"nonce"`
	ActualGasCost *hexutil.Big   `json:"actualGasCost"`
	ActualGasUsed *hexutil.Big   `json:"actualGasUsed"`
	Success       bool           `json:"success"`
	Reason        string         `json:"reason,omitempty"`
	Receipt       *types.Receipt `json:"receipt"`
}

// GasPrice is a bundler's fee suggestion.
type GasPrice struct {
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// Implementation identifies bundler software by the gas price RPC it
// supports.
type Implementation uint8

const (
	Rundler Implementation = iota
	Skandha
	Pimlico
)

func (i Implementation) String() string {
	switch i {
	case Rundler:
		return "rundler"
	case Skandha:
		return "skandha"
	case Pimlico:
		return "pimlico"
	}
	return fmt.Sprintf("unknown(%d)", uint8(i))
}

// RPCCaller is satisfied by *rpc.Client.
type RPCCaller interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

// BaseFeeFunc returns the current base fee of the chain.
type BaseFeeFunc func(ctx context.Context) (*big.Int, error)

// Bundler is a client for an ERC-4337 bundler serving a single EntryPoint.
type Bundler struct {
	rpc        RPCCaller
	entryPoint common.Address
	impl       Implementation
	getBaseFee BaseFeeFunc
	close      func()
}

// Dial connects to the bundler at endpoint. See NewBundler.
func Dial(ctx context.Context, endpoint string, entryPoint common.Address, getBaseFee BaseFeeFunc) (*Bundler, error) {
	c, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	b, err := NewBundler(ctx, c, entryPoint, getBaseFee)
	if err != nil {
		c.Close()
		return nil, err
	}
	b.close = c.Close
	return b, nil
}

// Close closes the connection of a Bundler created with Dial. It is a no-op
// for a Bundler created with NewBundler, whose caller owns the client.
func (b *Bundler) Close() {
	if b.close != nil {
		b.close()
	}
}

// NewBundler creates a Bundler. An error is returned if the bundler does not
// support the EntryPoint or is not a known implementation.
func NewBundler(ctx context.Context, c RPCCaller, entryPoint common.Address, getBaseFee BaseFeeFunc) (*Bundler, error) {
	b := &Bundler{
		rpc:        c,
		entryPoint: entryPoint,
		getBaseFee: getBaseFee,
	}
	entryPoints, err := b.SupportedEntryPoints(ctx)
	if err != nil {
		return nil, err
	}
	var found bool
	for _, ep := range entryPoints {
		if ep == entryPoint {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("entry point %s not supported; supported entry points: %v", entryPoint, entryPoints)
	}
	if b.impl, err = b.implementation(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// Implementation is the detected bundler software.
func (b *Bundler) Implementation() Implementation {
	return b.impl
}

// EntryPoint is the EntryPoint address operations are sent to.
func (b *Bundler) EntryPoint() common.Address {
	return b.entryPoint
}

// SupportedEntryPoints returns the entry points supported by the bundler.
func (b *Bundler) SupportedEntryPoints(ctx context.Context) ([]common.Address, error) {
	var res []common.Address
	if err := b.rpc.CallContext(ctx, &res, "eth_supportedEntryPoints"); err != nil {
		return nil, err
	}
	return res, nil
}

func (b *Bundler) implementation(ctx context.Context) (Implementation, error) {
	if _, err := b.rundlerGasPrice(ctx); err == nil {
		return Rundler, nil
	}
	if _, err := b.skandhaGasPrice(ctx); err == nil {
		return Skandha, nil
	}
	if _, err := b.pimlicoGasPrice(ctx); err == nil {
		return Pimlico, nil
	}
	return 0, errors.New("unknown bundler implementation. Supported implementations: rundler, skandha, pimlico")
}

// SendUserOp submits the operation and returns its hash.
func (b *Bundler) SendUserOp(ctx context.Context, op *PackedUserOperation) (common.Hash, error) {
	r, err := op.RPC()
	if err != nil {
		return common.Hash{}, err
	}
	var h common.Hash
	if err := b.rpc.CallContext(ctx, &h, "eth_sendUserOperation", r, b.entryPoint); err != nil {
		return common.Hash{}, err
	}
	return h, nil
}

// UserOpReceipt returns the receipt of an operation. The result is nil if
// the bundler does not know the operation yet.
func (b *Bundler) UserOpReceipt(ctx context.Context, userOpHash common.Hash) (*Receipt, error) {
	var res *Receipt
	if err := b.rpc.CallContext(ctx, &res, "eth_getUserOperationReceipt", userOpHash); err != nil {
		return nil, err
	}
	if res == nil || res.Receipt == nil {
		return nil, nil
	}
	return res, nil
}

// EstimateGas estimates the gas limits for the operation. The signature may
// be a dummy of the right length.
func (b *Bundler) EstimateGas(ctx context.Context, op *PackedUserOperation) (*GasEstimate, error) {
	r, err := op.RPC()
	if err != nil {
		return nil, err
	}
	var res GasEstimate
	if err := b.rpc.CallContext(ctx, &res, "eth_estimateUserOperationGas", r, b.entryPoint); err != nil {
		return nil, err
	}
	return &res, nil
}

// GasPrice returns the bundler's suggested fees.
func (b *Bundler) GasPrice(ctx context.Context) (*GasPrice, error) {
	switch b.impl {
	case Rundler:
		return b.rundlerGasPrice(ctx)
	case Skandha:
		return b.skandhaGasPrice(ctx)
	case Pimlico:
		return b.pimlicoGasPrice(ctx)
	}
	return nil, fmt.Errorf("unsupported bundler implementation: %s", b.impl)
}

// rundlerGasPrice computes the max fee as 2 * baseFee + priority fee since
// rundler only suggests the priority fee.
func (b *Bundler) rundlerGasPrice(ctx context.Context) (*GasPrice, error) {
	if b.getBaseFee == nil {
		return nil, errors.New("no base fee source")
	}
	baseFee, err := b.getBaseFee(ctx)
	if err != nil {
		return nil, err
	}
	var prio hexutil.Big
	if err := b.rpc.CallContext(ctx, &prio, "rundler_maxPriorityFeePerGas"); err != nil {
		return nil, err
	}
	maxFee := new(big.Int).Mul(baseFee, big.NewInt(2))
	return &GasPrice{
		MaxFeePerGas:         maxFee.Add(maxFee, prio.ToInt()),
		MaxPriorityFeePerGas: prio.ToInt(),
	}, nil
}

type gasPriceResult struct {
	MaxFeePerGas         *hexutil.Big `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big `json:"maxPriorityFeePerGas"`
}

func (r *gasPriceResult) gasPrice() *GasPrice {
	return &GasPrice{
		MaxFeePerGas:         bigOrZero(r.MaxFeePerGas),
		MaxPriorityFeePerGas: bigOrZero(r.MaxPriorityFeePerGas),
	}
}

func (b *Bundler) skandhaGasPrice(ctx context.Context) (*GasPrice, error) {
	var res gasPriceResult
	if err := b.rpc.CallContext(ctx, &res, "skandha_getGasPrice"); err != nil {
		return nil, err
	}
	return res.gasPrice(), nil
}

func (b *Bundler) pimlicoGasPrice(ctx context.Context) (*GasPrice, error) {
	var res struct {
		Fast gasPriceResult `json:"fast"`
	}
	if err := b.rpc.CallContext(ctx, &res, "pimlico_getUserOperationGasPrice"); err != nil {
		return nil, err
	}
	return res.Fast.gasPrice(), nil
}
