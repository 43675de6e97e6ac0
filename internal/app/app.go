package app

import (
	"log/slog"

	"github.com/trebuchet-org/flashops/internal/domain/config"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Logger *slog.Logger

	// Operations
	FundAndTransfer  *usecase.FundAndTransfer
	ExecuteFlashLoan *usecase.ExecuteFlashLoan
	WrapNative       *usecase.WrapNative
	RunPlan          *usecase.RunPlan

	// Queries
	QueryBalance     *usecase.QueryBalance
	AwaitTransaction *usecase.AwaitTransaction
	ListAccounts     *usecase.ListAccounts
	ListNetworks     *usecase.ListNetworks
	ListRuns         *usecase.ListRuns
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	logger *slog.Logger,
	fundAndTransfer *usecase.FundAndTransfer,
	executeFlashLoan *usecase.ExecuteFlashLoan,
	wrapNative *usecase.WrapNative,
	runPlan *usecase.RunPlan,
	queryBalance *usecase.QueryBalance,
	awaitTransaction *usecase.AwaitTransaction,
	listAccounts *usecase.ListAccounts,
	listNetworks *usecase.ListNetworks,
	listRuns *usecase.ListRuns,
) (*App, error) {
	return &App{
		Config:           cfg,
		Logger:           logger,
		FundAndTransfer:  fundAndTransfer,
		ExecuteFlashLoan: executeFlashLoan,
		WrapNative:       wrapNative,
		RunPlan:          runPlan,
		QueryBalance:     queryBalance,
		AwaitTransaction: awaitTransaction,
		ListAccounts:     listAccounts,
		ListNetworks:     listNetworks,
		ListRuns:         listRuns,
	}, nil
}
