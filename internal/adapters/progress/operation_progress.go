package progress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

var (
	stepDone    = color.New(color.FgGreen)
	stepFailed  = color.New(color.FgRed)
	stepHeader  = color.New(color.FgWhite, color.Bold)
	stepDetail  = color.New(color.Faint)
	runResumed  = color.New(color.FgYellow)
	runFinished = color.New(color.FgGreen, color.Bold)
)

// OperationProgress renders orchestrator events as one line per step
// transition, with a spinner while a transaction is pending
type OperationProgress struct {
	spinner *SpinnerProgressReporter
	verbose bool
}

// NewOperationProgress creates a progress sink writing to out
func NewOperationProgress(out io.Writer, verbose bool) *OperationProgress {
	if out == nil {
		out = os.Stderr
	}
	return &OperationProgress{
		spinner: NewSpinnerProgressReporter(out),
		verbose: verbose,
	}
}

// OnProgress handles orchestrator progress events
func (p *OperationProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	switch event.Stage {
	case usecase.StageOperationStarted:
		p.spinner.Println(stepHeader, event.Message)

	case usecase.StageOperationResumed:
		p.spinner.Println(runResumed, event.Message)

	case usecase.StageStepSubmitted:
		if ev, ok := event.Metadata.(*usecase.StepEvent); ok && ev.Pending != nil && p.verbose {
			p.spinner.Println(stepDetail, fmt.Sprintf("      tx %s nonce %d", ev.Pending.Hash.Hex(), ev.Pending.Nonce))
		}
		p.spinner.OnProgress(ctx, event)

	case usecase.StageStepConfirmed:
		p.spinner.Stop()
		line := "  ✓ " + event.Message
		if ev, ok := event.Metadata.(*usecase.StepEvent); ok && ev.Receipt != nil {
			line += stepDetail.Sprintf(" (gas %d)", ev.Receipt.GasUsed)
		}
		p.spinner.Println(stepDone, line)

	case usecase.StageStepFailed:
		p.spinner.Stop()
		p.spinner.Println(stepFailed, "  ✗ "+event.Message)
		if ev, ok := event.Metadata.(*usecase.StepEvent); ok && ev.Err != nil {
			p.spinner.Println(stepDetail, "      "+failureDetail(ev.Err))
		}

	case usecase.StageOperationCompleted:
		p.spinner.Stop()
		p.spinner.Println(runFinished, "✓ "+event.Message)

	default:
		p.spinner.OnProgress(ctx, event)
	}
}

// Info forwards info messages to the spinner
func (p *OperationProgress) Info(message string) {
	p.spinner.Info(message)
}

// Error forwards error messages to the spinner
func (p *OperationProgress) Error(message string) {
	p.spinner.Error(message)
}

func failureDetail(err error) string {
	var reverted *domain.RevertedError
	if errors.As(err, &reverted) && reverted.Reason != "" {
		return "reverted: " + reverted.Reason
	}
	return err.Error()
}

// Ensure OperationProgress implements ProgressSink
var _ usecase.ProgressSink = (*OperationProgress)(nil)
