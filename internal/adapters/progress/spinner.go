package progress

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

// SpinnerProgressReporter shows a spinner while events ask for one and
// prints messages above it
type SpinnerProgressReporter struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	out     io.Writer
}

// NewSpinnerProgressReporter creates a new spinner-based progress reporter
func NewSpinnerProgressReporter(out io.Writer) *SpinnerProgressReporter {
	if out == nil {
		out = os.Stderr
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &SpinnerProgressReporter{
		spinner: s,
		out:     out,
	}
}

// OnProgress starts, updates or stops the spinner
func (r *SpinnerProgressReporter) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Spinner {
		r.spinner.Suffix = " " + event.Message
		if !r.spinner.Active() {
			r.spinner.Start()
		}
		return
	}
	r.stopLocked()
}

// Stop stops the spinner if it is running
func (r *SpinnerProgressReporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

// Println prints a line, pausing the spinner around it
func (r *SpinnerProgressReporter) Println(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}
	if c == nil {
		c = color.New(color.Reset)
	}
	c.Fprintln(r.out, message)
	if wasActive {
		r.spinner.Start()
	}
}

// Info prints an info message
func (r *SpinnerProgressReporter) Info(message string) {
	r.Println(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerProgressReporter) Error(message string) {
	r.Println(color.New(color.FgRed), message)
}

func (r *SpinnerProgressReporter) stopLocked() {
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// Ensure SpinnerProgressReporter implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerProgressReporter)(nil)
