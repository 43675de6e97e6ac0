package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/flashops/internal/app"
	"github.com/trebuchet-org/flashops/internal/cli/render"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

// writeJSON prints v as indented JSON
func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = out.Write(append(data, '\n'))
	return err
}

func explorerOf(a *app.App) string {
	if a.Config.Network == nil {
		return ""
	}
	return a.Config.Network.ExplorerURL
}

// renderOperation prints a finished operation. runErr is returned unchanged so
// callers can render the completed prefix of a failed run before reporting it.
func renderOperation(cmd *cobra.Command, a *app.App, result *usecase.OperationResult, runErr error) error {
	if result == nil {
		return runErr
	}
	if a.Config.JSON {
		if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
		return runErr
	}
	if runErr != nil {
		// the error report lists the completed prefix
		return runErr
	}
	return render.NewOperationRenderer(cmd.OutOrStdout(), explorerOf(a)).RenderResult(result)
}
