package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/flashops/internal/cli/render"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

// NewAccountsCmd creates the accounts command
func NewAccountsCmd() *cobra.Command {
	var balances bool

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List configured senders",
		Long: `List the senders configured in flashops.toml. Keystores are not decrypted;
their address is read from the keystore file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListAccounts.Run(cmd.Context(), usecase.ListAccountsParams{WithBalances: balances})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), result.Accounts)
			}
			return render.NewAccountsRenderer(cmd.OutOrStdout()).Render(result)
		},
	}

	cmd.Flags().BoolVar(&balances, "balances", false, "Fetch each sender's native balance")

	return cmd
}

// networkView is the JSON form of a network status
type networkView struct {
	Name    string               `json:"name"`
	Current bool                 `json:"current"`
	Network *config.Network      `json:"network,omitempty"`
	Live    *usecase.ChainStatus `json:"live,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List networks from flashops.toml",
		Long: `List all networks configured in the [networks] section of flashops.toml.

With --check each network's RPC is contacted and its chain ID is compared
against the configured one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListNetworks.Run(cmd.Context(), usecase.ListNetworksParams{Probe: check})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				views := make([]networkView, 0, len(result.Networks))
				for _, n := range result.Networks {
					v := networkView{Name: n.Name, Current: n.Name == result.Current, Network: n.Network, Live: n.Live}
					if n.Error != nil {
						v.Error = n.Error.Error()
					}
					views = append(views, v)
				}
				return writeJSON(cmd.OutOrStdout(), views)
			}
			return render.NewNetworksRenderer(cmd.OutOrStdout()).RenderNetworksList(result)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Contact each RPC and verify its chain ID")

	return cmd
}

// NewRunsCmd creates the runs command with show and forget subcommands
func NewRunsCmd() *cobra.Command {
	var (
		operation string
		status    string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List journaled operation runs",
		Long: `List the runs recorded under .flashops/runs, newest first.

Failed runs keep the hash of every transaction they sent, so they can be
inspected with 'runs show' and continued with --resume.`,
		Example: `  flashops runs --status failed
  flashops runs show 3fa9c2
  flashops runs forget 3fa9c2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			switch domain.RunStatus(status) {
			case "", domain.RunStatusRunning, domain.RunStatusFailed, domain.RunStatusCompleted:
			default:
				return fmt.Errorf("invalid status %q (expected running, failed or completed)", status)
			}

			result, err := app.ListRuns.Run(cmd.Context(), usecase.ListRunsParams{
				Operation: operation,
				Status:    domain.RunStatus(status),
				Limit:     limit,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), result.Runs)
			}
			return render.NewRunsRenderer(cmd.OutOrStdout()).RenderList(result.Runs)
		},
	}

	cmd.Flags().StringVar(&operation, "operation", "", "Only runs of this operation")
	cmd.Flags().StringVar(&status, "status", "", "Only runs with this status (running, failed, completed)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many runs")

	cmd.AddCommand(newRunsShowCmd(), newRunsForgetCmd())

	return cmd
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run by id or id prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			run, err := app.ListRuns.Show(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), run)
			}
			return render.NewRunsRenderer(cmd.OutOrStdout()).RenderRun(run)
		},
	}
}

func newRunsForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <run-id>",
		Short: "Delete a run from the journal",
		Long: `Delete a run from the journal. The next invocation of the same operation
starts from the first step.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			if err := app.ListRuns.Forget(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf("Forgot run %s", args[0])))
			return nil
		},
	}
}
