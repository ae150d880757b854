// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package claim signs and submits incentive claims against BoostCore.
package claim

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/boostxyz/boost-protocol-sub000/boost/contracts"
	"github.com/boostxyz/boost-protocol-sub000/boost/wait"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// DefaultReceiptTimeout is how long Claim waits for a receipt.
	DefaultReceiptTimeout = 5 * time.Minute

	// gasMarginPct is added to the simulated gas of a claim.
	gasMarginPct = 20
)

// Backend is the node connection a Client needs.
type Backend interface {
	bind.ContractBackend
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Request identifies the incentive being claimed.
type Request struct {
	BoostID           *big.Int
	IncentiveID       *big.Int
	IncentiveQuantity uint8
	// Claimant receives the incentive. The zero address claims for the
	// sender.
	Claimant      common.Address
	Referrer      common.Address
	IncentiveData []byte
}

func (r *Request) validate() error {
	if r.BoostID == nil || r.IncentiveID == nil {
		return errors.New("boost and incentive IDs are required")
	}
	if r.IncentiveQuantity == 0 {
		return errors.New("incentive quantity must be at least 1")
	}
	return nil
}

// Signer is an authorized SignerValidator signer.
type Signer struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewSigner wraps a signer key.
func NewSigner(key *ecdsa.PrivateKey) *Signer {
	return &Signer{
		key:  key,
		addr: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// Address is the signer's address, which the validator must authorize.
func (s *Signer) Address() common.Address {
	return s.addr
}

// Sign signs an EIP-712 digest, with v in {27, 28}.
func (s *Signer) Sign(digest [32]byte) ([]byte, error) {
	sig, err := crypto.Sign(digest[:], s.key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// SignClaim signs the claim of req.Claimant, which must be set, and returns
// the claim data for BoostCore.claimIncentive. The digest comes from the
// boost's validator so that it matches the validator's EIP-712 domain.
func (s *Signer) SignClaim(ctx context.Context, validator *contracts.SignerValidator, req *Request) ([]byte, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if req.Claimant == (common.Address{}) {
		return nil, errors.New("no claimant")
	}
	digest, err := validator.HashSignerData(ctx, req.BoostID, req.IncentiveQuantity, req.Claimant, req.IncentiveData)
	if err != nil {
		return nil, fmt.Errorf("error getting claim digest: %w", err)
	}
	sig, err := s.Sign(digest)
	if err != nil {
		return nil, fmt.Errorf("error signing claim: %w", err)
	}
	return contracts.EncodeSignerClaim(s.addr, sig, req.IncentiveQuantity, req.IncentiveData)
}

// Config is the Client configuration.
type Config struct {
	Backend   Backend
	BoostCore common.Address
	ChainID   *big.Int
	Key       *ecdsa.PrivateKey
	// Queue polls for receipts. It must be running.
	Queue          *wait.TaperingTickerQueue
	ReceiptTimeout time.Duration
	Log            boost.Logger
}

// Client submits claims from a single account.
type Client struct {
	backend        Backend
	core           *contracts.BoostCore
	chainID        *big.Int
	key            *ecdsa.PrivateKey
	addr           common.Address
	queue          *wait.TaperingTickerQueue
	receiptTimeout time.Duration
	log            boost.Logger
}

// New is the constructor for a Client.
func New(cfg *Config) (*Client, error) {
	if cfg.Backend == nil || cfg.Key == nil || cfg.Queue == nil {
		return nil, errors.New("backend, key and queue are required")
	}
	if cfg.ChainID == nil {
		return nil, errors.New("no chain ID")
	}
	core, err := contracts.NewBoostCore(cfg.BoostCore, cfg.Backend)
	if err != nil {
		return nil, err
	}
	timeout := cfg.ReceiptTimeout
	if timeout == 0 {
		timeout = DefaultReceiptTimeout
	}
	log := cfg.Log
	if log == nil {
		log = boost.Disabled
	}
	return &Client{
		backend:        cfg.Backend,
		core:           core,
		chainID:        cfg.ChainID,
		key:            cfg.Key,
		addr:           crypto.PubkeyToAddress(cfg.Key.PublicKey),
		queue:          cfg.Queue,
		receiptTimeout: timeout,
		log:            log,
	}, nil
}

// Address is the sending account.
func (c *Client) Address() common.Address {
	return c.addr
}

// BoostCore is the bound BoostCore.
func (c *Client) BoostCore() *contracts.BoostCore {
	return c.core
}

// Result is a confirmed claim.
type Result struct {
	TxHash  common.Hash
	Receipt *types.Receipt
	Claimed *contracts.BoostClaimed
}

// transactOpts signs with the client key. Nonce and fees are left to the
// backend.
func (c *Client) transactOpts(ctx context.Context, value *big.Int, gasLimit uint64) *bind.TransactOpts {
	signer := types.LatestSignerForChainID(c.chainID)
	return &bind.TransactOpts{
		Context:  ctx,
		From:     c.addr,
		Value:    value,
		GasLimit: gasLimit,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != c.addr {
				return nil, bind.ErrNotAuthorized
			}
			return types.SignTx(tx, signer, c.key)
		},
	}
}

func (c *Client) forSelf(req *Request) bool {
	return req.Claimant == (common.Address{}) || req.Claimant == c.addr
}

// Simulate runs the claim as an eth_call with the claim fee attached. A
// revert is returned as a decoded protocol error.
func (c *Client) Simulate(ctx context.Context, req *Request, claimData []byte) (*contracts.Simulation[struct{}], *big.Int, error) {
	if err := req.validate(); err != nil {
		return nil, nil, err
	}
	fee, err := c.core.ClaimFee(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error getting claim fee: %w", err)
	}
	opts := &contracts.SimOpts{
		Context: ctx,
		From:    c.addr,
		Value:   fee,
	}
	var sim *contracts.Simulation[struct{}]
	if c.forSelf(req) {
		sim, err = c.core.SimulateClaimIncentive(opts, req.BoostID, req.IncentiveID, req.Referrer, claimData)
	} else {
		sim, err = c.core.SimulateClaimIncentiveFor(opts, req.BoostID, req.IncentiveID, req.Referrer, claimData, req.Claimant)
	}
	if err != nil {
		return nil, nil, err
	}
	return sim, fee, nil
}

// Claim simulates the claim, sends it and waits for the receipt. A mined
// but failed transaction is an ErrClaimFailed.
func (c *Client) Claim(ctx context.Context, req *Request, claimData []byte) (*Result, error) {
	sim, fee, err := c.Simulate(ctx, req, claimData)
	if err != nil {
		return nil, fmt.Errorf("claim simulation failed: %w", err)
	}
	gasLimit := sim.Gas * (100 + gasMarginPct) / 100
	opts := c.transactOpts(ctx, fee, gasLimit)

	var tx *types.Transaction
	if c.forSelf(req) {
		tx, err = c.core.ClaimIncentive(opts, req.BoostID, req.IncentiveID, req.Referrer, claimData)
	} else {
		tx, err = c.core.ClaimIncentiveFor(opts, req.BoostID, req.IncentiveID, req.Referrer, claimData, req.Claimant)
	}
	if err != nil {
		return nil, fmt.Errorf("error sending claim: %w", err)
	}
	c.log.Infof("Sent claim of incentive %s of boost %s in %s", req.IncentiveID, req.BoostID, tx.Hash())

	r, err := c.waitReceipt(ctx, tx.Hash())
	if err != nil {
		return nil, err
	}
	res := &Result{TxHash: tx.Hash(), Receipt: r}
	if r.Status != types.ReceiptStatusSuccessful {
		return res, boost.NewError(boost.ErrClaimFailed, fmt.Sprintf("transaction %s failed in block %s", tx.Hash(), r.BlockNumber))
	}
	for _, l := range r.Logs {
		if ev, err := c.core.ParseBoostClaimed(*l); err == nil {
			res.Claimed = ev
			break
		}
	}
	if res.Claimed == nil {
		c.log.Warnf("No BoostClaimed event in receipt for %s", tx.Hash())
	}
	return res, nil
}

// SignAndClaim signs the claim with signer against the boost's validator and
// submits it.
func (c *Client) SignAndClaim(ctx context.Context, signer *Signer, req *Request) (*Result, error) {
	b, err := c.core.GetBoost(ctx, req.BoostID)
	if err != nil {
		return nil, fmt.Errorf("error getting boost %s: %w", req.BoostID, err)
	}
	validator, err := contracts.NewSignerValidator(b.Validator, c.backend)
	if err != nil {
		return nil, err
	}
	signed := *req
	if c.forSelf(req) {
		signed.Claimant = c.addr
	}
	claimData, err := signer.SignClaim(ctx, validator, &signed)
	if err != nil {
		return nil, err
	}
	return c.Claim(ctx, &signed, claimData)
}

func (c *Client) waitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	r, err := wait.Poll(ctx, c.queue, c.receiptTimeout, func(ctx context.Context) (*types.Receipt, bool, error) {
		r, err := c.backend.TransactionReceipt(ctx, txHash)
		if err != nil {
			if !errors.Is(err, ethereum.NotFound) {
				c.log.Errorf("Error getting receipt for %s: %v", txHash, err)
			}
			return nil, false, nil
		}
		return r, true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error waiting for receipt of %s: %w", txHash, err)
	}
	return r, nil
}
