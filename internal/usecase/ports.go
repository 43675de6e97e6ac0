package usecase

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
)

// LedgerClient submits transactions and reads chain state. Submit returns a
// pending handle with a *domain.BroadcastUnknownError when the transaction
// may have reached the node.
type LedgerClient interface {
	ChainID(ctx context.Context) (uint64, error)
	Submit(ctx context.Context, account *domain.Account, req *domain.TxRequest) (*domain.PendingTx, error)
	AwaitConfirmation(ctx context.Context, pending *domain.PendingTx, timeout time.Duration) (*domain.Receipt, error)
	Query(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	NativeBalance(ctx context.Context, address common.Address) (*big.Int, error)
	PendingByHash(ctx context.Context, hash common.Hash) (*domain.PendingTx, error)
}

// ContractRegistry builds contract proxies for the active network
type ContractRegistry interface {
	WrappedToken() (domain.ContractProxy, error)
	FlashLoan() (domain.ContractProxy, error)
	Token(address common.Address) domain.ContractProxy
	Contract(ref string, abiPath string) (domain.ContractProxy, error)
	ResolveAddress(ref string) (common.Address, error)
	CoerceArgs(proxy domain.ContractProxy, method string, raw []string) ([]any, error)
}

// AccountProvider unlocks configured senders
type AccountProvider interface {
	Account(ctx context.Context, name string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.SenderInfo, error)
}

// OperationJournal persists run records so aborted runs can be inspected and resumed
type OperationJournal interface {
	Load(ctx context.Context, id string) (*domain.RunRecord, error)
	Save(ctx context.Context, rec *domain.RunRecord) error
	List(ctx context.Context) ([]*domain.RunRecord, error)
	Delete(ctx context.Context, id string) error
}

// NetworkResolver resolves network configurations
type NetworkResolver interface {
	GetNetworks(ctx context.Context) []string
	ResolveNetwork(ctx context.Context, networkName string) (*config.Network, error)
}

// ChainStatus is what a live RPC endpoint reports about itself
type ChainStatus struct {
	ChainID     uint64 `json:"chainId"`
	BlockNumber uint64 `json:"blockNumber"`
}

// ChainProbe checks that a network's RPC endpoint is reachable
type ChainProbe interface {
	Probe(ctx context.Context, network *config.Network) (*ChainStatus, error)
}

// InteractiveSelector asks the user to confirm or choose
type InteractiveSelector interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
	SelectSender(ctx context.Context, senders []domain.SenderInfo, prompt string) (string, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
