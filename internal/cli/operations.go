package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/flashops/internal/cli/render"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

// NewFundCmd creates the fund command
func NewFundCmd() *cobra.Command {
	var (
		to     string
		resume bool
	)

	cmd := &cobra.Command{
		Use:   "fund <amount>",
		Short: "Wrap native currency and transfer it to the flash-loan contract",
		Long: `Wrap <amount> of native currency into the wrapped token, then transfer the
same amount to the flash-loan contract (or --to another address).

Amounts are in whole tokens with 18 decimals unless suffixed with wei, gwei
or ether. The two steps run in order; if the transfer fails the wrapped
funds stay with the sender and the run can be continued with --resume.`,
		Example: `  # Fund the configured flash-loan contract with 0.5 WETH
  flashops fund 0.5

  # Fund another contract on sepolia
  flashops fund 1ether --to 0x1234... --network sepolia

  # Continue an aborted run
  flashops fund 0.5 --resume`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			amount, err := domain.ParseAmount(args[0], domain.DefaultDecimals)
			if err != nil {
				return err
			}

			result, err := app.FundAndTransfer.Run(cmd.Context(), usecase.FundAndTransferParams{
				Amount:      amount,
				Destination: to,
				Resume:      resume,
			})
			return renderOperation(cmd, app, result, err)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Destination alias or address (default: the flash-loan contract)")
	cmd.Flags().BoolVar(&resume, "resume", false, "Continue the journaled run of this operation")

	return cmd
}

// NewFlashLoanCmd creates the flashloan command
func NewFlashLoanCmd() *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:     "flashloan [asset...]",
		Aliases: []string{"flash-loan"},
		Short:   "Invoke the flash-loan contract once per asset",
		Long: `Call the flash-loan entrypoint for each asset. Assets are addresses or the
wrapped_token alias; without arguments the wrapped token is borrowed.

Loans for different assets are independent and run concurrently. A failed
loan doesn't stop the others; every failure is reported at the end.`,
		Example: `  flashops flashloan
  flashops flashloan wrapped_token 0xA0b8...eB48 --network mainnet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, runErr := app.ExecuteFlashLoan.Run(cmd.Context(), usecase.ExecuteFlashLoanParams{
				Assets: args,
				Resume: resume,
			})
			if result == nil {
				return runErr
			}
			if app.Config.JSON {
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
				return runErr
			}
			if err := render.NewOperationRenderer(cmd.OutOrStdout(), explorerOf(app)).RenderFlashLoans(succeeded(result, runErr)); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Continue the journaled runs of these loans")

	return cmd
}

// succeeded keeps only the loans that ran to completion; failed ones are
// reported through runErr.
func succeeded(result *usecase.ExecuteFlashLoanResult, runErr error) *usecase.ExecuteFlashLoanResult {
	errs := []error{runErr}
	if joined, ok := runErr.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	failed := make(map[string]bool)
	for _, e := range errs {
		var aborted *domain.OperationAbortedError
		if errors.As(e, &aborted) {
			failed[aborted.RunID] = true
		}
	}

	out := &usecase.ExecuteFlashLoanResult{Assets: result.Assets, Results: make([]*usecase.OperationResult, len(result.Results))}
	for i, res := range result.Results {
		if res != nil && !failed[res.RunID] {
			out.Results[i] = res
		}
	}
	return out
}

// NewWrapCmd creates the wrap command
func NewWrapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wrap <amount>",
		Short: "Wrap native currency into the wrapped token",
		Example: `  flashops wrap 0.25
  flashops wrap 500gwei`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			amount, err := domain.ParseAmount(args[0], domain.DefaultDecimals)
			if err != nil {
				return err
			}

			result, err := app.WrapNative.Run(cmd.Context(), usecase.WrapNativeParams{Amount: amount})
			return renderOperation(cmd, app, result, err)
		},
	}

	return cmd
}

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var (
		dryRun bool
		resume bool
	)

	cmd := &cobra.Command{
		Use:   "run <plan.yaml>",
		Short: "Execute a YAML plan of contract calls",
		Long: `Run the steps of a plan file in order, stopping at the first failure.

A plan names its steps and, for each, the contract (alias or address), an
optional ABI file, the method and its arguments:

  name: seed-vault
  steps:
    - name: wrap
      contract: wrapped_token
      method: deposit
      value: "0.5"
      expect_event: Deposit
    - name: fund
      contract: wrapped_token
      method: transfer
      args: [flash_loan, "0.5"]`,
		Example: `  flashops run plans/seed.yaml --dry-run
  flashops run plans/seed.yaml --network sepolia --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			// an explicit --sender beats the plan's own sender
			sender, _ := cmd.Flags().GetString("sender")
			result, runErr := app.RunPlan.Run(cmd.Context(), usecase.RunPlanParams{
				PlanPath: args[0],
				Sender:   sender,
				DryRun:   dryRun,
				Resume:   resume,
			})
			if result == nil {
				return runErr
			}

			if dryRun {
				if app.Config.JSON {
					views, err := render.StepViews(result.Operation)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), map[string]any{"plan": result.Plan.Name, "steps": views})
				}
				return render.NewPlanRenderer(cmd.OutOrStdout(), app.Config.Debug).RenderDryRun(result)
			}
			return renderOperation(cmd, app, result.Result, runErr)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build and encode every step without sending")
	cmd.Flags().BoolVar(&resume, "resume", false, "Continue the journaled run of this plan")

	return cmd
}
