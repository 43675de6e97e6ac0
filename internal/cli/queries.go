package cli

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/flashops/internal/cli/render"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

// NewBalanceCmd creates the balance command
func NewBalanceCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "balance [token]",
		Short: "Show a token or native balance",
		Long: `Show the balance of [token] held by --owner (default: the sender).

[token] is an address, the wrapped_token alias or "native" for the chain's
native currency. Without it the wrapped token is queried.`,
		Example: `  flashops balance
  flashops balance native
  flashops balance wrapped_token --owner flash_loan`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.QueryBalanceParams{Owner: owner}
			if len(args) == 1 {
				params.Token = args[0]
			}
			result, err := app.QueryBalance.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return render.NewBalanceRenderer(cmd.OutOrStdout()).Render(result)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Holder alias or address (default: the sender)")

	return cmd
}

// NewAwaitCmd creates the await command
func NewAwaitCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "await <tx-hash>",
		Short: "Wait for a transaction receipt",
		Long: `Poll the network until <tx-hash> is mined and print its receipt.

Use this on the pending hash reported by an aborted operation to learn
whether it eventually landed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			hash, err := parseHash(args[0])
			if err != nil {
				return err
			}

			receipt, err := app.AwaitTransaction.Run(cmd.Context(), usecase.AwaitTransactionParams{
				Hash:    hash,
				Timeout: wait,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), receipt)
			}
			return render.NewOperationRenderer(cmd.OutOrStdout(), explorerOf(app)).RenderReceipt(receipt)
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "How long to wait (default: the confirmation timeout)")

	return cmd
}

func parseHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid transaction hash %q: %w", s, err)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid transaction hash %q: expected %d bytes, got %d", s, common.HashLength, len(b))
	}
	return common.BytesToHash(b), nil
}
