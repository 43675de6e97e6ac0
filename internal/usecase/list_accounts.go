package usecase

import (
	"context"
	"log/slog"

	"github.com/trebuchet-org/flashops/internal/domain"
)

// ListAccountsParams contains parameters for listing accounts
type ListAccountsParams struct {
	WithBalances bool
}

// ListAccountsResult contains the configured senders
type ListAccountsResult struct {
	Accounts []domain.SenderInfo
}

// ListAccounts lists configured senders and optionally their native balances
type ListAccounts struct {
	accounts AccountProvider
	ledger   LedgerClient
	log      *slog.Logger
}

// NewListAccounts creates a new ListAccounts use case
func NewListAccounts(accounts AccountProvider, ledger LedgerClient, logger *slog.Logger) *ListAccounts {
	return &ListAccounts{accounts: accounts, ledger: ledger, log: logger}
}

// Run executes the use case
func (uc *ListAccounts) Run(ctx context.Context, params ListAccountsParams) (*ListAccountsResult, error) {
	infos, err := uc.accounts.List(ctx)
	if err != nil {
		return nil, err
	}

	if params.WithBalances {
		for i := range infos {
			balance, err := uc.ledger.NativeBalance(ctx, infos[i].Address)
			if err != nil {
				// balances are informational, keep listing
				uc.log.Warn("failed to fetch balance", "sender", infos[i].Name, "error", err)
				continue
			}
			infos[i].Balance = balance
		}
	}

	return &ListAccountsResult{Accounts: infos}, nil
}
