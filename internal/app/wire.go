//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/flashops/internal/adapters"
	"github.com/trebuchet-org/flashops/internal/config"
	"github.com/trebuchet-org/flashops/internal/logging"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Shared services
		usecase.ProvideOrchestratorConfig,
		usecase.NewOrchestrator,
		usecase.NewSenderResolver,

		// Use cases
		usecase.NewFundAndTransfer,
		usecase.NewExecuteFlashLoan,
		usecase.NewWrapNative,
		usecase.NewRunPlan,
		usecase.NewQueryBalance,
		usecase.NewAwaitTransaction,
		usecase.NewListAccounts,
		usecase.NewListNetworks,
		usecase.NewListRuns,

		// App
		NewApp,
	)
	return nil, nil
}
