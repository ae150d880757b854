// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package claim

import (
	"context"
	"fmt"
	"math/big"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/boostxyz/boost-protocol-sub000/boost/contracts"
	"github.com/boostxyz/boost-protocol-sub000/boost/erc4337"
	"github.com/boostxyz/boost-protocol-sub000/boost/wait"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// dummySignature is a well-formed ECDSA signature for gas estimation. The
// account rejects it without reverting.
var dummySignature = hexutil.MustDecode("0xfffffffffffffffffffffffffffffff0000000000000000000000000000000007aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1c")

// Bundler is the bundler API used to relay claims.
type Bundler interface {
	EntryPoint() common.Address
	EstimateGas(ctx context.Context, op *erc4337.PackedUserOperation) (*erc4337.GasEstimate, error)
	GasPrice(ctx context.Context) (*erc4337.GasPrice, error)
	SendUserOp(ctx context.Context, op *erc4337.PackedUserOperation) (common.Hash, error)
	UserOpReceipt(ctx context.Context, userOpHash common.Hash) (*erc4337.Receipt, error)
}

var _ Bundler = (*erc4337.Bundler)(nil)

// UserOpResult is a confirmed claim relayed as a user operation.
type UserOpResult struct {
	UserOpHash common.Hash
	Receipt    *erc4337.Receipt
	Claimed    *contracts.BoostClaimed
}

// BuildUserOp builds the unsigned user operation that has account call
// claimIncentive with the claim fee attached. The account is the claimant.
func (c *Client) BuildUserOp(ctx context.Context, account *contracts.BoostAccount, req *Request, claimData []byte) (*erc4337.PackedUserOperation, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if req.Claimant != (common.Address{}) && req.Claimant != account.Address {
		return nil, fmt.Errorf("claimant %s is not the account %s", req.Claimant, account.Address)
	}
	fee, err := c.core.ClaimFee(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting claim fee: %w", err)
	}
	inner, err := contracts.ClaimIncentiveCallData(req.BoostID, req.IncentiveID, req.Referrer, claimData)
	if err != nil {
		return nil, err
	}
	callData, err := contracts.ExecuteCallData(c.core.Address, fee, inner)
	if err != nil {
		return nil, err
	}
	nonce, err := account.GetNonce(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting account nonce: %w", err)
	}
	op := &erc4337.PackedUserOperation{
		Sender:             account.Address,
		Nonce:              nonce,
		CallData:           callData,
		PreVerificationGas: new(big.Int),
	}
	return op, nil
}

// ClaimUserOp relays the claim through account, which the client key must
// own, and waits for the bundler's receipt. A nil sponsor leaves the account
// paying for the operation.
func (c *Client) ClaimUserOp(ctx context.Context, bundler Bundler, account *contracts.BoostAccount, req *Request, claimData []byte, sponsor Sponsor) (*UserOpResult, error) {
	op, err := c.BuildUserOp(ctx, account, req, claimData)
	if err != nil {
		return nil, err
	}
	gp, err := bundler.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting bundler gas price: %w", err)
	}
	if err := op.SetGasFees(gp.MaxPriorityFeePerGas, gp.MaxFeePerGas); err != nil {
		return nil, err
	}
	if sponsor != nil {
		if op.PaymasterAndData, err = sponsor.StubPaymasterAndData(ctx); err != nil {
			return nil, err
		}
	}
	op.Signature = dummySignature
	est, err := bundler.EstimateGas(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("error estimating user operation gas: %w", err)
	}
	if err := est.Apply(op); err != nil {
		return nil, err
	}
	// The paymaster signs the final gas limits and fees, and the account
	// signs the paymaster's data.
	if sponsor != nil {
		if op.PaymasterAndData, err = sponsor.PaymasterAndData(ctx, op); err != nil {
			return nil, fmt.Errorf("error getting paymaster sponsorship: %w", err)
		}
	}
	signer := func(digest []byte) ([]byte, error) {
		return crypto.Sign(digest, c.key)
	}
	if err := op.Sign(signer, bundler.EntryPoint(), c.chainID); err != nil {
		return nil, fmt.Errorf("error signing user operation: %w", err)
	}
	h, err := bundler.SendUserOp(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("error sending user operation: %w", err)
	}
	c.log.Infof("Sent user operation %s claiming incentive %s of boost %s", h, req.IncentiveID, req.BoostID)

	r, err := wait.Poll(ctx, c.queue, c.receiptTimeout, func(ctx context.Context) (*erc4337.Receipt, bool, error) {
		r, err := bundler.UserOpReceipt(ctx, h)
		if err != nil {
			c.log.Errorf("Error getting user operation receipt for %s: %v", h, err)
			return nil, false, nil
		}
		return r, r != nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error waiting for user operation %s: %w", h, err)
	}
	res := &UserOpResult{UserOpHash: h, Receipt: r}
	if !r.Success {
		reason := r.Reason
		if reason == "" {
			reason = "no reason given"
		}
		return res, boost.NewError(boost.ErrClaimFailed, fmt.Sprintf("user operation %s failed: %s", h, reason))
	}
	for _, l := range r.Receipt.Logs {
		if ev, err := c.core.ParseBoostClaimed(*l); err == nil {
			res.Claimed = ev
			break
		}
	}
	if res.Claimed == nil {
		c.log.Warnf("No BoostClaimed event in receipt for user operation %s", h)
	}
	return res, nil
}
