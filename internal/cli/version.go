package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/flashops/internal/config"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of flashops",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"version": config.Version,
					"commit":  config.Commit,
					"date":    config.Date,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "flashops version %s (commit %s, built %s)\n", config.Version, config.Commit, config.Date)
			return nil
		},
	}
}
