package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/flashops/internal/adapters/progress"
	"github.com/trebuchet-org/flashops/internal/app"
	"github.com/trebuchet-org/flashops/internal/config"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flashops",
		Short: "Flash-loan transaction orchestrator",
		Long: `flashops sequences the transactions around a flash loan: wrapping native
currency, funding the flash-loan contract and triggering the loan itself.

Every multi-step operation is journaled under .flashops/runs so an aborted
run can be inspected and resumed with --resume.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if skipsApp(cmd) {
				return nil
			}

			// Outside a project we run from flags and FLASHOPS_* env alone
			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				if projectRoot, err = os.Getwd(); err != nil {
					return err
				}
			}

			v := config.SetupViper(projectRoot, cmd)

			var sink usecase.ProgressSink = progress.NewNopSink()
			if !v.GetBool("json") {
				sink = progress.NewOperationProgress(cmd.ErrOrStderr(), v.GetBool("debug"))
			}

			appInstance, err := app.InitApp(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}
			cmd.SetContext(ctx)

			return nil
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("network", "n", "", "Network to use (e.g., local, sepolia)")
	flags.StringP("sender", "s", "", "Sender to sign with (defaults to 'default')")
	flags.String("private-key", "", "Hex private key to sign with, overriding the sender's key")
	flags.String("rpc-url", "", "RPC endpoint, overriding the network's rpc_url")
	flags.Bool("debug", false, "Enable debug output")
	flags.Bool("non-interactive", false, "Disable interactive prompts")
	flags.Bool("json", false, "Output in JSON format")
	flags.BoolP("yes", "y", false, "Broadcast to non-local networks without asking")
	flags.Duration("timeout", 0, "Overall command timeout (default 10m)")
	flags.String("confirmation-timeout", "", "How long to wait for each receipt (default 2m)")
	flags.String("poll-interval", "", "How often to poll for receipts (default 2s)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "query",
		Title: "Queries",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	for _, c := range []*cobra.Command{NewFundCmd(), NewFlashLoanCmd(), NewWrapCmd(), NewRunCmd()} {
		c.GroupID = "main"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{NewBalanceCmd(), NewAwaitCmd()} {
		c.GroupID = "query"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{NewAccountsCmd(), NewNetworksCmd(), NewRunsCmd()} {
		c.GroupID = "management"
		rootCmd.AddCommand(c)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func skipsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	return false
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
