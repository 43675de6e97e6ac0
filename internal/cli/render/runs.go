package render

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/flashops/internal/domain"
)

// RunsRenderer renders journaled operation runs
type RunsRenderer struct {
	out io.Writer
}

// NewRunsRenderer creates a new runs renderer
func NewRunsRenderer(out io.Writer) *RunsRenderer {
	return &RunsRenderer{out: out}
}

// RenderList renders one row per run, newest first
func (r *RunsRenderer) RenderList(runs []*domain.RunRecord) error {
	if len(runs) == 0 {
		fmt.Fprintln(r.out, "No runs recorded")
		return nil
	}

	t := newTable()
	t.AppendHeader(table.Row{"ID", "OPERATION", "NETWORK", "STATUS", "STEPS", "UPDATED"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			shortID(run.ID),
			run.Operation,
			run.Network,
			runStatus(run.Status),
			fmt.Sprintf("%d/%d", run.ConfirmedPrefix(), len(run.Steps)),
			faintStyle.Sprint(run.UpdatedAt.Local().Format(time.DateTime)),
		})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

// RenderRun renders the full record of a run
func (r *RunsRenderer) RenderRun(run *domain.RunRecord) error {
	fmt.Fprintln(r.out, sectionHeaderStyle.Sprintf("%s run %s", OperationTitle(run.Operation), run.ID))
	fmt.Fprintf(r.out, "  Network: %s (chain %d)\n", run.Network, run.ChainID)
	fmt.Fprintf(r.out, "  Sender:  %s\n", addressStyle.Sprint(run.Sender.Hex()))
	fmt.Fprintf(r.out, "  Status:  %s\n", runStatus(run.Status))
	fmt.Fprintf(r.out, "  Started: %s\n", run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(r.out, "  Updated: %s\n", run.UpdatedAt.Local().Format(time.DateTime))
	fmt.Fprintln(r.out)

	t := newTable()
	t.AppendHeader(table.Row{"#", "STEP", "CALL", "STATUS", "TX", "BLOCK"})
	for i, s := range run.Steps {
		tx, block := "", ""
		if s.TxHash != nil {
			tx = hashStyle.Sprint(s.TxHash.Hex())
		}
		if s.BlockNumber > 0 {
			block = fmt.Sprint(s.BlockNumber)
		}
		t.AppendRow(table.Row{i + 1, s.Name, fmt.Sprintf("%s.%s", shortAddress(s.Contract.Hex()), s.Method), stepStatus(s.Status), tx, block})
	}
	fmt.Fprintln(r.out, t.Render())

	for i, s := range run.Steps {
		if s.Error != "" {
			fmt.Fprintf(r.out, "  %s %s\n", failureStyle.Sprintf("step %d:", i+1), s.Error)
		}
	}
	return nil
}

func runStatus(s domain.RunStatus) string {
	switch s {
	case domain.RunStatusCompleted:
		return successStyle.Sprint(s)
	case domain.RunStatusFailed:
		return failureStyle.Sprint(s)
	default:
		return pendingStyle.Sprint(s)
	}
}

func stepStatus(s domain.StepStatus) string {
	switch s {
	case domain.StepStatusConfirmed:
		return successStyle.Sprint(s)
	case domain.StepStatusFailed:
		return failureStyle.Sprint(s)
	case domain.StepStatusSubmitted:
		return pendingStyle.Sprint(s)
	default:
		return faintStyle.Sprint(s)
	}
}

func shortAddress(hex string) string {
	if len(hex) < 10 {
		return hex
	}
	return hex[:6] + "…" + hex[len(hex)-4:]
}
