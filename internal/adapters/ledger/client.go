package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
)

// Backend is the subset of the JSON-RPC API the client needs. Both
// *ethclient.Client and the simulated backend's client satisfy it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (tx *types.Transaction, isPending bool, err error)
}

// Options tune confirmation polling
type Options struct {
	PollInterval        time.Duration
	ConfirmationTimeout time.Duration
}

const (
	defaultPollInterval        = 2 * time.Second
	defaultConfirmationTimeout = 2 * time.Minute

	// gas estimates get this percentage on top
	gasHeadroomPercent = 20
	replayTimeout      = 5 * time.Second
	indexingWait       = 10 * time.Second
)

// Client talks to an Ethereum JSON-RPC node. It connects on first use.
type Client struct {
	network *config.Network
	opts    Options
	log     *slog.Logger
	dial    func(ctx context.Context) (Backend, error)

	mu      sync.Mutex
	backend Backend
	chainID *big.Int
	nonces  *NonceManager
}

// NewClient creates a client for network. Nothing is dialed until the first call.
func NewClient(network *config.Network, opts Options, logger *slog.Logger) *Client {
	c := newClient(network, opts, logger)
	c.dial = func(ctx context.Context) (Backend, error) {
		if c.network == nil {
			return nil, fmt.Errorf("no network selected (use --network or set FLASHOPS_NETWORK)")
		}
		client, err := ethclient.DialContext(ctx, c.network.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to RPC: %w", err)
		}
		return client, nil
	}
	return c
}

// NewClientWithBackend creates a client over an existing backend
func NewClientWithBackend(backend Backend, network *config.Network, opts Options, logger *slog.Logger) *Client {
	c := newClient(network, opts, logger)
	c.dial = func(context.Context) (Backend, error) { return backend, nil }
	return c
}

// ProvideClient creates the ledger client from the runtime configuration
func ProvideClient(cfg *config.RuntimeConfig, logger *slog.Logger) *Client {
	return NewClient(cfg.Network, Options{
		PollInterval:        cfg.PollInterval,
		ConfirmationTimeout: cfg.ConfirmationTimeout,
	}, logger)
}

func newClient(network *config.Network, opts Options, logger *slog.Logger) *Client {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.ConfirmationTimeout <= 0 {
		opts.ConfirmationTimeout = defaultConfirmationTimeout
	}
	return &Client{
		network: network,
		opts:    opts,
		log:     logger.With("component", "ledger"),
	}
}

// connect dials once and verifies the chain id against the configured one
func (c *Client) connect(ctx context.Context) (Backend, *big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backend != nil {
		return c.backend, c.chainID, nil
	}

	backend, err := c.dial(ctx)
	if err != nil {
		return nil, nil, err
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if c.network != nil && c.network.ChainID != 0 && chainID.Uint64() != c.network.ChainID {
		return nil, nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", c.network.ChainID, chainID.Uint64())
	}

	c.backend = backend
	c.chainID = chainID
	c.nonces = NewNonceManager(backend)
	c.log.Debug("connected", "chain_id", chainID.Uint64())
	return backend, chainID, nil
}

// ChainID returns the chain id reported by the node
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	_, chainID, err := c.connect(ctx)
	if err != nil {
		return 0, err
	}
	return chainID.Uint64(), nil
}

// Submit signs and broadcasts req from account without waiting for inclusion.
// The request is copied; the caller's value is never mutated. When the node's
// answer is lost the pending handle is returned together with a
// *domain.BroadcastUnknownError.
func (c *Client) Submit(ctx context.Context, account *domain.Account, req *domain.TxRequest) (*domain.PendingTx, error) {
	backend, chainID, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	if account == nil || account.Signer == nil {
		return nil, &domain.RejectedError{Reason: "no signing account"}
	}
	if req == nil || req.To == (common.Address{}) {
		return nil, &domain.RejectedError{Reason: "missing destination address"}
	}

	r := req.Clone()
	r.From = account.Address
	if r.Value == nil {
		r.Value = new(big.Int)
	}
	if r.Value.Sign() < 0 {
		return nil, &domain.RejectedError{Reason: "negative value"}
	}

	lease, err := c.nonces.Lease(ctx, account.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nonce: %w", err)
	}
	committed, resync := false, false
	defer func() {
		if !committed {
			lease.Release(resync)
		}
	}()
	r.Nonce = lease.Nonce

	gas := r.GasLimit
	if gas == 0 {
		estimate, err := backend.EstimateGas(ctx, ethereum.CallMsg{
			From:  r.From,
			To:    &r.To,
			Value: r.Value,
			Data:  r.Data,
		})
		if err != nil {
			return nil, classifyEstimateError(err)
		}
		gas = estimate + estimate*gasHeadroomPercent/100
	}
	r.GasLimit = gas

	tx, maxPrice, err := c.buildTx(ctx, backend, chainID, r)
	if err != nil {
		return nil, err
	}

	balance, err := backend.BalanceAt(ctx, r.From, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}
	cost := new(big.Int).Mul(new(big.Int).SetUint64(gas), maxPrice)
	cost.Add(cost, r.Value)
	if balance.Cmp(cost) < 0 {
		return nil, &domain.RejectedError{
			Reason: fmt.Sprintf("insufficient funds: balance %s wei, need up to %s wei", balance, cost),
		}
	}

	signed, err := account.Signer.SignTx(tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	pending := &domain.PendingTx{
		Hash:        signed.Hash(),
		From:        r.From,
		Nonce:       r.Nonce,
		Request:     r,
		SubmittedAt: time.Now(),
	}

	if err := backend.SendTransaction(ctx, signed); err != nil {
		switch {
		case isAlreadyKnown(err):
			c.log.Debug("node already has transaction", "hash", pending.Hash.Hex())
		case ctx.Err() == nil && isNodeRefusal(err):
			resync = isNonceError(err)
			return nil, &domain.RejectedError{Reason: "node refused transaction", Err: err}
		default:
			lease.CommitUnconfirmed()
			committed = true
			if ctx.Err() != nil {
				err = fmt.Errorf("broadcast interrupted: %w", ctx.Err())
			}
			c.log.Warn("broadcast outcome unknown", "hash", pending.Hash.Hex(), "nonce", r.Nonce, "error", err)
			return pending, &domain.BroadcastUnknownError{TxHash: pending.Hash, Err: err}
		}
	}

	lease.Commit()
	committed = true

	c.log.Debug("submitted", "hash", pending.Hash.Hex(), "from", r.From.Hex(), "to", r.To.Hex(), "nonce", r.Nonce, "gas", gas)
	return pending, nil
}

// buildTx prices r as EIP-1559 when the chain has a base fee, legacy otherwise.
// It returns the highest per-gas price the tx may pay.
func (c *Client) buildTx(ctx context.Context, backend Backend, chainID *big.Int, r *domain.TxRequest) (*types.Transaction, *big.Int, error) {
	head, err := backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch latest header: %w", err)
	}

	to := r.To
	if head.BaseFee != nil {
		tip, err := backend.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to suggest gas tip: %w", err)
		}
		feeCap := new(big.Int).Mul(head.BaseFee, big.NewInt(2))
		feeCap.Add(feeCap, tip)
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     r.Nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       r.GasLimit,
			To:        &to,
			Value:     r.Value,
			Data:      r.Data,
		}), feeCap, nil
	}

	price, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to suggest gas price: %w", err)
	}
	return types.NewTx(&types.LegacyTx{
		Nonce:    r.Nonce,
		GasPrice: price,
		Gas:      r.GasLimit,
		To:       &to,
		Value:    r.Value,
		Data:     r.Data,
	}), price, nil
}

func classifyEstimateError(err error) error {
	switch {
	case isRevert(err):
		return &domain.RevertedError{Reason: revertReason(err)}
	case isInsufficientFunds(err):
		return &domain.RejectedError{Reason: "insufficient funds", Err: err}
	default:
		return &domain.RejectedError{Reason: "gas estimation failed", Err: err}
	}
}

// AwaitConfirmation polls until pending is included, the timeout elapses or
// ctx is cancelled. A mined revert returns the receipt together with a
// RevertedError. A timeout leaves the handle valid for another wait.
func (c *Client) AwaitConfirmation(ctx context.Context, pending *domain.PendingTx, timeout time.Duration) (*domain.Receipt, error) {
	backend, _, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = c.opts.ConfirmationTimeout
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()
	start := time.Now()

	for {
		r, err := backend.TransactionReceipt(waitCtx, pending.Hash)
		if err == nil && r != nil {
			return c.finalize(ctx, backend, pending, r)
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) && waitCtx.Err() == nil {
			c.log.Debug("receipt poll failed", "hash", pending.Hash.Hex(), "error", err)
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, fmt.Errorf("stopped waiting for %s: %w", pending.Hash.Hex(), ctx.Err())
			}
			return nil, &domain.TimeoutError{TxHash: pending.Hash, Waited: time.Since(start).Round(time.Millisecond)}
		case <-ticker.C:
		}
	}
}

func (c *Client) finalize(ctx context.Context, backend Backend, pending *domain.PendingTx, r *types.Receipt) (*domain.Receipt, error) {
	receipt := domain.ReceiptFromTypes(r)
	if receipt.Succeeded() {
		c.log.Debug("confirmed", "hash", pending.Hash.Hex(), "block", receipt.BlockNumber, "gas_used", receipt.GasUsed)
		return receipt, nil
	}

	reason := c.replayRevert(ctx, backend, pending, r)
	c.log.Debug("reverted", "hash", pending.Hash.Hex(), "block", receipt.BlockNumber, "reason", reason)
	return receipt, &domain.RevertedError{TxHash: pending.Hash, Reason: reason, Receipt: receipt}
}

// replayRevert re-executes the call against the parent block to recover the
// revert reason. Best effort: an empty string means no reason was found.
func (c *Client) replayRevert(ctx context.Context, backend Backend, pending *domain.PendingTx, r *types.Receipt) string {
	ctx, cancel := context.WithTimeout(ctx, replayTimeout)
	defer cancel()

	req := pending.Request
	if req == nil {
		tx, _, err := backend.TransactionByHash(ctx, pending.Hash)
		if err != nil || tx.To() == nil {
			return ""
		}
		req = &domain.TxRequest{From: pending.From, To: *tx.To(), Data: tx.Data(), Value: tx.Value(), GasLimit: tx.Gas()}
	}

	var block *big.Int
	if r.BlockNumber != nil && r.BlockNumber.Sign() > 0 {
		block = new(big.Int).Sub(r.BlockNumber, big.NewInt(1))
	}
	_, err := backend.CallContract(ctx, ethereum.CallMsg{
		From:  req.From,
		To:    &req.To,
		Gas:   req.GasLimit,
		Value: req.Value,
		Data:  req.Data,
	}, block)
	if err == nil {
		return ""
	}
	return revertReason(err)
}

// Query performs a side-effect free eth_call against the latest block
func (c *Client) Query(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	backend, _, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	out, err := backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		if isRevert(err) {
			return nil, &domain.RevertedError{Reason: revertReason(err)}
		}
		return nil, fmt.Errorf("eth_call to %s failed: %w", to.Hex(), err)
	}
	return out, nil
}

// NativeBalance returns the native currency balance of address
func (c *Client) NativeBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	backend, _, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := backend.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance of %s: %w", address.Hex(), err)
	}
	return balance, nil
}

// PendingByHash rebuilds a pending handle from a transaction hash so that
// a timed-out wait can be resumed from another process.
func (c *Client) PendingByHash(ctx context.Context, hash common.Hash) (*domain.PendingTx, error) {
	backend, chainID, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := c.transactionByHash(ctx, backend, hash)
	if err != nil {
		return nil, err
	}

	from, err := types.Sender(types.LatestSignerForChainID(chainID), tx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover sender of %s: %w", hash.Hex(), err)
	}
	pending := &domain.PendingTx{
		Hash:  hash,
		From:  from,
		Nonce: tx.Nonce(),
	}
	if tx.To() != nil {
		pending.Request = &domain.TxRequest{
			From:     from,
			To:       *tx.To(),
			Data:     tx.Data(),
			Value:    tx.Value(),
			GasLimit: tx.Gas(),
			Nonce:    tx.Nonce(),
		}
	}
	return pending, nil
}

// transactionByHash looks hash up, waiting a bounded time while the node is
// still building its transaction index. A node that is still indexing once
// that time is up reports the hash as not found.
func (c *Client) transactionByHash(ctx context.Context, backend Backend, hash common.Hash) (*types.Transaction, error) {
	deadline := time.Now().Add(indexingWait)
	for {
		tx, _, err := backend.TransactionByHash(ctx, hash)
		switch {
		case err == nil:
			return tx, nil
		case errors.Is(err, ethereum.NotFound):
			return nil, fmt.Errorf("transaction %s: %w", hash.Hex(), domain.ErrNotFound)
		case !isIndexing(err):
			return nil, fmt.Errorf("failed to fetch transaction %s: %w", hash.Hex(), err)
		case time.Now().After(deadline):
			return nil, fmt.Errorf("transaction %s (node is still indexing): %w", hash.Hex(), domain.ErrNotFound)
		}

		c.log.Debug("node is indexing transactions, retrying", "hash", hash.Hex())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.opts.PollInterval):
		}
	}
}
