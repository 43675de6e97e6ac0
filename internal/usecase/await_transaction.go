package usecase

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/flashops/internal/domain"
)

// AwaitTransactionParams contains parameters for awaiting a transaction
type AwaitTransactionParams struct {
	Hash    common.Hash
	Timeout time.Duration // 0 uses the configured confirmation timeout
}

// AwaitTransaction waits again on a broadcast transaction, typically one
// whose earlier wait timed out. It never resubmits.
type AwaitTransaction struct {
	ledger   LedgerClient
	registry ContractRegistry
}

// NewAwaitTransaction creates a new AwaitTransaction use case
func NewAwaitTransaction(ledger LedgerClient, registry ContractRegistry) *AwaitTransaction {
	return &AwaitTransaction{ledger: ledger, registry: registry}
}

// Run waits for the receipt and decodes events from the known contracts
func (uc *AwaitTransaction) Run(ctx context.Context, params AwaitTransactionParams) (*domain.Receipt, error) {
	pending, err := uc.ledger.PendingByHash(ctx, params.Hash)
	if err != nil {
		return nil, err
	}

	receipt, err := uc.ledger.AwaitConfirmation(ctx, pending, params.Timeout)
	if receipt != nil {
		receipt.Events = uc.decodeEvents(receipt)
	}
	return receipt, err
}

func (uc *AwaitTransaction) decodeEvents(receipt *domain.Receipt) []domain.Event {
	var events []domain.Event
	if weth, err := uc.registry.WrappedToken(); err == nil {
		events = append(events, weth.DecodeEvents(receipt.Logs)...)
	}
	if fl, err := uc.registry.FlashLoan(); err == nil {
		events = append(events, fl.DecodeEvents(receipt.Logs)...)
	}
	return events
}
