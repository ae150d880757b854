// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package main

import (
	"bufio"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	bconfig "github.com/boostxyz/boost-protocol-sub000/boost/config"
	"github.com/boostxyz/boost-protocol-sub000/boost/contracts"
	"github.com/boostxyz/boost-protocol-sub000/boost/erc4337"
	"github.com/boostxyz/boost-protocol-sub000/boost/wait"
	"github.com/boostxyz/boost-protocol-sub000/client/claim"
	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/term"
)

const (
	showHelpMessage = "Specify -h to show available options"
	listCmdMessage  = "Specify -l to list available commands"
)

var version = semver{major: 0, minor: 1, patch: 0}

// semver holds boostctl's semver values.
type semver struct {
	major, minor, patch uint32
}

// String satisfies fmt.Stringer
func (s semver) String() string {
	return fmt.Sprintf("%d.%d.%d", s.major, s.minor, s.patch)
}

// Commands.
const (
	callCmd   = "call"
	decodeCmd = "decode"
	verifyCmd = "verify"
	abiCmd    = "abi"
	claimCmd  = "claim"
)

var commandUsage = map[string]string{
	callCmd:   "call <contract> <function> [args...]  Call, or with -s simulate, a contract function",
	decodeCmd: "decode [contract] <calldata>          Decode calldata, trying every known ABI if no contract is named",
	verifyCmd: "verify                                Check the bindings against the embedded ABIs",
	abiCmd:    "abi <contract>                        Print a contract ABI",
	claimCmd:  "claim <boostID> <incentiveID>         Sign and submit an incentive claim",
}

// listCommands lists the commands and every function of every known ABI.
func listCommands() string {
	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, cmd := range []string{callCmd, decodeCmd, verifyCmd, abiCmd, claimCmd} {
		sb.WriteString("  " + commandUsage[cmd] + "\n")
	}
	sb.WriteString("\nContract functions:\n")
	for _, name := range abis.Names() {
		a, err := abis.Get(name)
		if err != nil {
			continue
		}
		sb.WriteString("  " + name + "\n")
		sigs := make([]string, 0, len(a.Methods))
		for _, m := range a.Methods {
			sig := m.Sig
			if m.IsConstant() {
				sig += " view"
			}
			sigs = append(sigs, sig)
		}
		sort.Strings(sigs)
		for _, sig := range sigs {
			sb.WriteString("    " + sig + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	killChan := make(chan os.Signal, 1)
	signal.Notify(killChan, os.Interrupt)
	go func() {
		<-killChan
		cancel()
	}()

	err := run(ctx, os.Args[1:], os.Stdout)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, osArgs []string, out io.Writer) error {
	cfg, args, stop, err := configure(osArgs)
	if err != nil {
		return fmt.Errorf("unable to configure: %v", err)
	}

	if stop {
		return nil
	}

	if len(args) < 1 {
		return fmt.Errorf("no command specified\n%s", listCmdMessage)
	}

	// Support using '-' as an argument to allow the argument to be read
	// from a stdin pipe.
	params, err := readStdinParams(os.Stdin, args[1:])
	if err != nil {
		return err
	}

	switch cmd := args[0]; cmd {
	case verifyCmd:
		if err := contracts.VerifyBindings(); err != nil {
			return err
		}
		fmt.Fprintf(out, "%d bindings verified\n", len(contracts.Bindings()))
		return nil
	case abiCmd:
		if len(params) != 1 {
			return fmt.Errorf("usage: %s", commandUsage[abiCmd])
		}
		raw, err := abis.Raw(bconfig.ContractName(params[0]))
		if err != nil {
			return err
		}
		_, err = out.Write(append(raw, '\n'))
		return err
	case decodeCmd:
		return decode(cfg, params, out)
	case callCmd:
		return call(ctx, cfg, params, out)
	case claimCmd:
		return claimIncentive(ctx, cfg, params, out)
	default:
		return fmt.Errorf("unrecognized command %q\n%s", cmd, listCmdMessage)
	}
}

func readStdinParams(stdin io.Reader, args []string) ([]string, error) {
	bio := bufio.NewReader(stdin)
	params := make([]string, 0, len(args))
	for _, arg := range args {
		if arg != "-" {
			params = append(params, arg)
			continue
		}
		param, err := bio.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read data from stdin: %v", err)
		}
		if err == io.EOF && len(param) == 0 {
			return nil, errors.New("not enough lines provided on stdin")
		}
		params = append(params, strings.TrimRight(param, "\r\n"))
	}
	return params, nil
}

func printResult(out io.Writer, cfg *config, thing any) error {
	if cfg.Spew {
		spew.Fdump(out, thing)
		return nil
	}
	b, err := json.MarshalIndent(thing, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format result: %v", err)
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

type decodedCall struct {
	Contract string `json:"contract"`
	Function string `json:"function"`
	Args     any    `json:"args"`
}

func decode(cfg *config, params []string, out io.Writer) error {
	var calls []*contracts.DecodedCall
	switch len(params) {
	case 1:
		data, err := hexutil.Decode(params[0])
		if err != nil {
			return fmt.Errorf("invalid calldata: %w", err)
		}
		if calls = contracts.IdentifyCallData(data); len(calls) == 0 {
			return errors.New("calldata does not match any known function")
		}
	case 2:
		data, err := hexutil.Decode(params[1])
		if err != nil {
			return fmt.Errorf("invalid calldata: %w", err)
		}
		dc, err := contracts.ParseCallData(bconfig.ContractName(params[0]), data)
		if err != nil {
			return err
		}
		calls = []*contracts.DecodedCall{dc}
	default:
		return fmt.Errorf("usage: %s", commandUsage[decodeCmd])
	}
	if cfg.Spew {
		spew.Fdump(out, calls)
		return nil
	}
	res := make([]*decodedCall, 0, len(calls))
	for _, dc := range calls {
		named := make(map[string]any, len(dc.Args))
		for i, in := range dc.Method.Inputs {
			name := in.Name
			if name == "" {
				name = fmt.Sprintf("arg%d", i)
			}
			named[name] = jsonValue(dc.Args[i])
		}
		res = append(res, &decodedCall{Contract: dc.Contract, Function: dc.Name, Args: named})
	}
	return printResult(out, cfg, res)
}

// chainParams returns the chain parameters for the configured network.
func chainParams(cfg *config) (*boost.ChainParams, error) {
	net, err := cfg.network()
	if err != nil {
		return nil, err
	}
	return boost.Chains[net], nil
}

// resolveContract finds the address for a deployments key, e.g. "BoostCore"
// or "SimpleBudget.treasury". The --address flag wins.
func resolveContract(cfg *config, chain *boost.ChainParams, key string) (common.Address, error) {
	if cfg.Address != "" {
		if !common.IsHexAddress(cfg.Address) {
			return common.Address{}, fmt.Errorf("invalid address %q", cfg.Address)
		}
		return common.HexToAddress(cfg.Address), nil
	}
	if !fileExists(cfg.Deployments) {
		return common.Address{}, fmt.Errorf("no address for %s: set --address or --deployments", key)
	}
	deps, err := bconfig.ParseDeployments(cfg.Deployments, chain.Name)
	if err != nil {
		return common.Address{}, err
	}
	addr, found := deps[key]
	if !found {
		return common.Address{}, fmt.Errorf("no %s deployment for %s", key, chain.Name)
	}
	return addr, nil
}

// dial connects to the RPC endpoint and checks the chain ID.
func dial(ctx context.Context, cfg *config, chain *boost.ChainParams) (*ethclient.Client, *big.Int, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to %s: %w", cfg.RPCURL, err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("error retrieving chain ID: %w", err)
	}
	if chainID.Cmp(big.NewInt(chain.ChainID)) != 0 {
		client.Close()
		return nil, nil, fmt.Errorf("endpoint is on chain %s, expected %s (%d)", chainID, chain.Name, chain.ChainID)
	}
	return client, chainID, nil
}

func call(ctx context.Context, cfg *config, params []string, out io.Writer) error {
	if len(params) < 2 {
		return fmt.Errorf("usage: %s", commandUsage[callCmd])
	}
	key, method := params[0], params[1]
	name := bconfig.ContractName(key)
	a, err := abis.Get(name)
	if err != nil {
		return err
	}
	m, found := a.Methods[method]
	if !found {
		return fmt.Errorf("%s has no function %q\n%s", name, method, listCmdMessage)
	}
	args, err := parseArgs(&m, params[2:])
	if err != nil {
		return err
	}
	chain, err := chainParams(cfg)
	if err != nil {
		return err
	}
	addr, err := resolveContract(cfg, chain, key)
	if err != nil {
		return err
	}
	client, _, err := dial(ctx, cfg, chain)
	if err != nil {
		return err
	}
	defer client.Close()

	c, err := contracts.NewContract(name, addr, client)
	if err != nil {
		return err
	}
	var block *big.Int
	if cfg.Block > 0 {
		block = big.NewInt(cfg.Block)
	}

	if m.IsConstant() && !cfg.Simulate {
		res, err := c.Call(&bind.CallOpts{Context: ctx, BlockNumber: block}, method, args...)
		if err != nil {
			return err
		}
		var v any = res
		if len(res) == 1 {
			v = res[0]
		}
		if !cfg.Spew {
			v = jsonValue(v)
		}
		return printResult(out, cfg, v)
	}

	simOpts := &contracts.SimOpts{Context: ctx, BlockNumber: block}
	if cfg.From != "" {
		if !common.IsHexAddress(cfg.From) {
			return fmt.Errorf("invalid from address %q", cfg.From)
		}
		simOpts.From = common.HexToAddress(cfg.From)
	}
	if cfg.Value != "" {
		v, ok := new(big.Int).SetString(cfg.Value, 0)
		if !ok || v.Sign() < 0 {
			return fmt.Errorf("invalid value %q", cfg.Value)
		}
		simOpts.Value = v
	}
	res, gas, err := c.SimulateCall(simOpts, method, args...)
	if err != nil {
		return err
	}
	var v any = res
	if !cfg.Spew {
		v = jsonValue(res)
	}
	return printResult(out, cfg, map[string]any{
		"result": v,
		"gas":    gas,
	})
}

// readKey reads a hex private key from the file, or from the terminal if no
// file is given.
func readKey(path, prompt string) (*ecdsa.PrivateKey, error) {
	var keyHex string
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		keyHex = string(b)
	} else {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return nil, errors.New("no key file and stdin is not a terminal")
		}
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, err
		}
		keyHex = string(b)
	}
	keyHex = strings.TrimPrefix(strings.TrimSpace(keyHex), "0x")
	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return key, nil
}

func optionalAddress(s, what string) (common.Address, error) {
	if s == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid %s address %q", what, s)
	}
	return common.HexToAddress(s), nil
}

// claimRequest builds the claim request from the command parameters and
// flags.
func claimRequest(cfg *config, params []string) (*claim.Request, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("usage: %s", commandUsage[claimCmd])
	}
	boostID, ok := new(big.Int).SetString(params[0], 10)
	if !ok || boostID.Sign() < 0 {
		return nil, fmt.Errorf("invalid boost ID %q", params[0])
	}
	incentiveID, ok := new(big.Int).SetString(params[1], 10)
	if !ok || incentiveID.Sign() < 0 {
		return nil, fmt.Errorf("invalid incentive ID %q", params[1])
	}
	req := &claim.Request{
		BoostID:           boostID,
		IncentiveID:       incentiveID,
		IncentiveQuantity: cfg.Quantity,
	}
	var err error
	if req.Claimant, err = optionalAddress(cfg.Claimant, "claimant"); err != nil {
		return nil, err
	}
	if req.Referrer, err = optionalAddress(cfg.Referrer, "referrer"); err != nil {
		return nil, err
	}
	if cfg.IncentiveHex != "" {
		if req.IncentiveData, err = hexutil.Decode(cfg.IncentiveHex); err != nil {
			return nil, fmt.Errorf("invalid incentive data: %w", err)
		}
	}
	return req, nil
}

type claimResult struct {
	TxHash     string `json:"txHash,omitempty"`
	UserOpHash string `json:"userOpHash,omitempty"`
	Block      uint64 `json:"block"`
	Claimant   string `json:"claimant,omitempty"`
}

func claimIncentive(ctx context.Context, cfg *config, params []string, out io.Writer) error {
	req, err := claimRequest(cfg, params)
	if err != nil {
		return err
	}
	if cfg.SignerKey == "" {
		return errors.New("claims need the validator signer key (--signerkeyfile)")
	}
	chain, err := chainParams(cfg)
	if err != nil {
		return err
	}
	coreAddr, err := resolveContract(cfg, chain, abis.BoostCoreName)
	if err != nil {
		return err
	}
	signerKey, err := readKey(cfg.SignerKey, "")
	if err != nil {
		return err
	}
	key, err := readKey(cfg.KeyFile, "Sender key: ")
	if err != nil {
		return err
	}
	client, chainID, err := dial(ctx, cfg, chain)
	if err != nil {
		return err
	}
	defer client.Close()

	log := newLogger("CLAIM", cfg.Verbose)
	queue := wait.NewTaperingTickerQueue(time.Second, 15*time.Second, log)
	go queue.Run(ctx)

	c, err := claim.New(&claim.Config{
		Backend:   client,
		BoostCore: coreAddr,
		ChainID:   chainID,
		Key:       key,
		Queue:     queue,
		Log:       log,
	})
	if err != nil {
		return err
	}
	signer := claim.NewSigner(signerKey)

	if cfg.Bundler == "" {
		res, err := c.SignAndClaim(ctx, signer, req)
		if err != nil {
			return err
		}
		cr := &claimResult{TxHash: res.TxHash.Hex()}
		if res.Receipt != nil && res.Receipt.BlockNumber != nil {
			cr.Block = res.Receipt.BlockNumber.Uint64()
		}
		if res.Claimed != nil {
			cr.Claimant = res.Claimed.Claimant.Hex()
		}
		return printResult(out, cfg, cr)
	}

	if !common.IsHexAddress(cfg.Account) {
		return fmt.Errorf("user operation claims need a valid --account, got %q", cfg.Account)
	}
	account, err := contracts.NewBoostAccount(common.HexToAddress(cfg.Account), client)
	if err != nil {
		return err
	}
	var sponsor claim.Sponsor
	if cfg.Paymaster != "" {
		if !common.IsHexAddress(cfg.Paymaster) {
			return fmt.Errorf("invalid paymaster address %q", cfg.Paymaster)
		}
		if cfg.PaymasterKey == "" {
			return errors.New("a sponsored claim needs --paymasterkeyfile")
		}
		paymaster, err := contracts.NewBoostPaymaster(common.HexToAddress(cfg.Paymaster), client)
		if err != nil {
			return err
		}
		paymasterKey, err := readKey(cfg.PaymasterKey, "")
		if err != nil {
			return err
		}
		sponsor = claim.NewPaymasterSponsor(paymaster, paymasterKey, 0)
	}
	baseFee := func(ctx context.Context) (*big.Int, error) {
		hdr, err := client.HeaderByNumber(ctx, nil)
		if err != nil {
			return nil, err
		}
		if hdr.BaseFee == nil {
			return nil, errors.New("chain has no base fee")
		}
		return hdr.BaseFee, nil
	}
	bundler, err := erc4337.Dial(ctx, cfg.Bundler, chain.EntryPoint, baseFee)
	if err != nil {
		return fmt.Errorf("error connecting to bundler: %w", err)
	}
	defer bundler.Close()

	// The account is the claimant of a user operation claim.
	b, err := c.BoostCore().GetBoost(ctx, req.BoostID)
	if err != nil {
		return err
	}
	validator, err := contracts.NewSignerValidator(b.Validator, client)
	if err != nil {
		return err
	}
	req.Claimant = account.Address
	claimData, err := signer.SignClaim(ctx, validator, req)
	if err != nil {
		return err
	}
	res, err := c.ClaimUserOp(ctx, bundler, account, req, claimData, sponsor)
	if err != nil {
		return err
	}
	cr := &claimResult{UserOpHash: res.UserOpHash.Hex()}
	if res.Receipt != nil && res.Receipt.Receipt != nil {
		cr.TxHash = res.Receipt.Receipt.TxHash.Hex()
		if res.Receipt.Receipt.BlockNumber != nil {
			cr.Block = res.Receipt.Receipt.BlockNumber.Uint64()
		}
	}
	if res.Claimed != nil {
		cr.Claimant = res.Claimed.Claimant.Hex()
	}
	return printResult(out, cfg, cr)
}
