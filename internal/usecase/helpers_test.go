package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/flashops/internal/adapters/contracts"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

var (
	wethAddr      = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	flashLoanAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	otherToken    = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	senderAddr    = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(params.Ether))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTx struct {
	pending *domain.PendingTx
	receipt *domain.Receipt
	mined   bool
}

// fakeLedger executes WETH and flash-loan calls in memory. Transactions are
// applied at submit time and become visible to AwaitConfirmation once mined.
type fakeLedger struct {
	mu sync.Mutex

	chainID uint64
	native  map[common.Address]*big.Int
	wrapped map[common.Address]*big.Int
	nonces  map[common.Address]uint64
	block   uint64
	txs     map[common.Hash]*fakeTx

	hold       bool // leave transactions unmined until mine()
	rejectCall int  // 1-based submit call to reject, 0 for none
	lostCall   int  // 1-based submit call whose acknowledgement is lost
	calls      int
	submitted  []*domain.TxRequest
	awaited    []common.Hash
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		chainID: 31337,
		native:  map[common.Address]*big.Int{senderAddr: ether(100)},
		wrapped: map[common.Address]*big.Int{},
		nonces:  map[common.Address]uint64{},
		block:   1,
		txs:     map[common.Hash]*fakeTx{},
	}
}

func balanceOf(m map[common.Address]*big.Int, a common.Address) *big.Int {
	if b, ok := m[a]; ok {
		return b
	}
	return new(big.Int)
}

func (l *fakeLedger) wrappedBalance(a common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(balanceOf(l.wrapped, a))
}

func (l *fakeLedger) submittedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.submitted)
}

func (l *fakeLedger) mine() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.block++
	for _, tx := range l.txs {
		if !tx.mined {
			tx.mined = true
			tx.receipt.BlockNumber = l.block
		}
	}
}

func (l *fakeLedger) ChainID(ctx context.Context) (uint64, error) {
	return l.chainID, nil
}

func (l *fakeLedger) Submit(ctx context.Context, account *domain.Account, req *domain.TxRequest) (*domain.PendingTx, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.rejectCall == l.calls {
		return nil, &domain.RejectedError{Reason: "nonce too low"}
	}

	r := req.Clone()
	r.From = account.Address
	if r.Value == nil {
		r.Value = new(big.Int)
	}
	if balanceOf(l.native, r.From).Cmp(r.Value) < 0 {
		return nil, &domain.RejectedError{Reason: "insufficient funds"}
	}

	logs, status, err := l.execute(r)
	if err != nil && r.GasLimit == 0 {
		// gas estimation catches the revert; nothing is broadcast
		return nil, err
	}

	r.Nonce = l.nonces[r.From]
	l.nonces[r.From]++
	hash := crypto.Keccak256Hash(r.From.Bytes(), new(big.Int).SetUint64(r.Nonce).Bytes())
	pending := &domain.PendingTx{Hash: hash, From: r.From, Nonce: r.Nonce, Request: r, SubmittedAt: time.Now()}

	for _, lg := range logs {
		lg.TxHash = hash
	}
	tx := &fakeTx{
		pending: pending,
		receipt: &domain.Receipt{
			TxHash:  hash,
			Status:  status,
			GasUsed: 21000 + uint64(len(r.Data))*16,
			Logs:    logs,
		},
	}
	if !l.hold {
		l.block++
		tx.mined = true
		tx.receipt.BlockNumber = l.block
	}
	l.txs[hash] = tx
	l.submitted = append(l.submitted, r)
	if l.lostCall == l.calls {
		return pending, &domain.BroadcastUnknownError{TxHash: hash, Err: fmt.Errorf("i/o timeout")}
	}
	return pending, nil
}

// execute applies r to the in-memory state. A revert leaves state untouched.
func (l *fakeLedger) execute(r *domain.TxRequest) ([]*types.Log, domain.ReceiptStatus, error) {
	revert := func(reason string) ([]*types.Log, domain.ReceiptStatus, error) {
		return nil, domain.ReceiptStatusReverted, &domain.RevertedError{Reason: reason}
	}
	if len(r.Data) < 4 {
		return revert("no calldata")
	}

	switch r.To {
	case wethAddr:
		method, err := contracts.WrappedTokenABI.MethodById(r.Data[:4])
		if err != nil {
			return revert("unknown selector")
		}
		args, err := method.Inputs.Unpack(r.Data[4:])
		if err != nil {
			return revert("bad calldata")
		}
		switch method.Name {
		case "deposit":
			l.native[r.From] = new(big.Int).Sub(balanceOf(l.native, r.From), r.Value)
			l.wrapped[r.From] = new(big.Int).Add(balanceOf(l.wrapped, r.From), r.Value)
			ev := contracts.WrappedTokenABI.Events["Deposit"]
			data, _ := ev.Inputs.NonIndexed().Pack(r.Value)
			return []*types.Log{{
				Address: wethAddr,
				Topics:  []common.Hash{ev.ID, common.BytesToHash(r.From.Bytes())},
				Data:    data,
			}}, domain.ReceiptStatusSuccess, nil
		case "transfer":
			to, amount := args[0].(common.Address), args[1].(*big.Int)
			if balanceOf(l.wrapped, r.From).Cmp(amount) < 0 {
				return revert("WETH: insufficient balance")
			}
			l.wrapped[r.From] = new(big.Int).Sub(balanceOf(l.wrapped, r.From), amount)
			l.wrapped[to] = new(big.Int).Add(balanceOf(l.wrapped, to), amount)
			ev := contracts.WrappedTokenABI.Events["Transfer"]
			data, _ := ev.Inputs.NonIndexed().Pack(amount)
			return []*types.Log{{
				Address: wethAddr,
				Topics:  []common.Hash{ev.ID, common.BytesToHash(r.From.Bytes()), common.BytesToHash(to.Bytes())},
				Data:    data,
			}}, domain.ReceiptStatusSuccess, nil
		}
		return revert("unsupported method " + method.Name)

	case flashLoanAddr:
		method, err := contracts.FlashLoanABI.MethodById(r.Data[:4])
		if err != nil || method.Name != "flashLoan" {
			return revert("unknown selector")
		}
		args, err := method.Inputs.Unpack(r.Data[4:])
		if err != nil {
			return revert("bad calldata")
		}
		asset := args[0].(common.Address)
		if asset == wethAddr && balanceOf(l.wrapped, flashLoanAddr).Sign() == 0 {
			return revert("FlashLoan: nothing to repay fees with")
		}
		return nil, domain.ReceiptStatusSuccess, nil
	}

	return revert(fmt.Sprintf("no code at %s", r.To.Hex()))
}

func (l *fakeLedger) AwaitConfirmation(ctx context.Context, pending *domain.PendingTx, timeout time.Duration) (*domain.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.awaited = append(l.awaited, pending.Hash)
	tx, ok := l.txs[pending.Hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !tx.mined {
		return nil, &domain.TimeoutError{TxHash: pending.Hash, Waited: timeout}
	}

	receipt := *tx.receipt
	if !receipt.Succeeded() {
		return &receipt, &domain.RevertedError{TxHash: pending.Hash, Receipt: &receipt}
	}
	return &receipt, nil
}

func (l *fakeLedger) Query(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if to != wethAddr {
		return nil, &domain.RevertedError{}
	}
	method, err := contracts.WrappedTokenABI.MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "balanceOf":
		args, err := method.Inputs.Unpack(data[4:])
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(balanceOf(l.wrapped, args[0].(common.Address)))
	case "symbol":
		return method.Outputs.Pack("WETH")
	case "decimals":
		return method.Outputs.Pack(uint8(18))
	}
	return nil, &domain.RevertedError{}
}

func (l *fakeLedger) NativeBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(balanceOf(l.native, address)), nil
}

func (l *fakeLedger) PendingByHash(ctx context.Context, hash common.Hash) (*domain.PendingTx, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tx, ok := l.txs[hash]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", hash.Hex(), domain.ErrNotFound)
	}
	p := *tx.pending
	return &p, nil
}

var _ usecase.LedgerClient = (*fakeLedger)(nil)

// memJournal is an in-memory OperationJournal
type memJournal struct {
	mu   sync.Mutex
	runs map[string]domain.RunRecord
}

func newMemJournal() *memJournal {
	return &memJournal{runs: map[string]domain.RunRecord{}}
}

func (j *memJournal) Load(ctx context.Context, id string) (*domain.RunRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	rec, ok := j.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	rec.Steps = append([]domain.StepRecord(nil), rec.Steps...)
	return &rec, nil
}

func (j *memJournal) Save(ctx context.Context, rec *domain.RunRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	c := *rec
	c.Steps = append([]domain.StepRecord(nil), rec.Steps...)
	j.runs[rec.ID] = c
	return nil
}

func (j *memJournal) List(ctx context.Context) ([]*domain.RunRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []*domain.RunRecord
	for _, rec := range j.runs {
		rec := rec
		out = append(out, &rec)
	}
	return out, nil
}

func (j *memJournal) Delete(ctx context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.runs, id)
	return nil
}

// recordingSink records progress events
type recordingSink struct {
	mu     sync.Mutex
	events []usecase.ProgressEvent
	infos  []string
}

func (s *recordingSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) Info(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infos = append(s.infos, message)
}

func (s *recordingSink) Error(message string) {}

func (s *recordingSink) stages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Stage
	}
	return out
}

// MockAccountProvider is a mock implementation of AccountProvider
type MockAccountProvider struct {
	mock.Mock
}

func (m *MockAccountProvider) Account(ctx context.Context, name string) (*domain.Account, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountProvider) List(ctx context.Context) ([]domain.SenderInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SenderInfo), args.Error(1)
}

// MockSelector is a mock implementation of InteractiveSelector
type MockSelector struct {
	mock.Mock
}

func (m *MockSelector) Confirm(ctx context.Context, prompt string) (bool, error) {
	args := m.Called(ctx, prompt)
	return args.Bool(0), args.Error(1)
}

func (m *MockSelector) SelectSender(ctx context.Context, senders []domain.SenderInfo, prompt string) (string, error) {
	args := m.Called(ctx, senders, prompt)
	return args.String(0), args.Error(1)
}

// harness wires every use case against the fake ledger
type harness struct {
	cfg          *config.RuntimeConfig
	ledger       *fakeLedger
	journal      *memJournal
	sink         *recordingSink
	accounts     *MockAccountProvider
	selector     *MockSelector
	registry     *contracts.Registry
	senders      *usecase.SenderResolver
	orchestrator *usecase.Orchestrator
}

func newHarness() *harness {
	cfg := &config.RuntimeConfig{
		SenderName:          "default",
		ConfirmationTimeout: time.Second,
		Network: &config.Network{
			Name:         "local",
			ChainID:      31337,
			WrappedToken: wethAddr,
			FlashLoan:    flashLoanAddr,
		},
	}
	h := &harness{
		cfg:      cfg,
		ledger:   newFakeLedger(),
		journal:  newMemJournal(),
		sink:     &recordingSink{},
		accounts: &MockAccountProvider{},
		selector: &MockSelector{},
		registry: contracts.NewRegistry(cfg),
	}
	h.accounts.On("Account", mock.Anything, mock.Anything).
		Return(&domain.Account{Name: "default", Address: senderAddr}, nil).Maybe()
	h.senders = usecase.NewSenderResolver(h.accounts, h.selector, cfg)
	h.orchestrator = usecase.NewOrchestrator(h.ledger, h.journal, h.sink, usecase.ProvideOrchestratorConfig(cfg), discardLogger())
	return h
}

func (h *harness) fund() *usecase.FundAndTransfer {
	return usecase.NewFundAndTransfer(h.cfg, h.registry, h.senders, h.orchestrator)
}

func (h *harness) flashLoan() *usecase.ExecuteFlashLoan {
	return usecase.NewExecuteFlashLoan(h.cfg, h.registry, h.senders, h.orchestrator)
}
