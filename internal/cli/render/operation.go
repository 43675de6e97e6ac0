package render

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/flashops/internal/config"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

// OperationRenderer renders operation results and receipts
type OperationRenderer struct {
	out      io.Writer
	explorer string
}

// NewOperationRenderer creates a new operation renderer. explorer may be
// empty, in which case no links are printed.
func NewOperationRenderer(out io.Writer, explorer string) *OperationRenderer {
	return &OperationRenderer{
		out:      out,
		explorer: explorer,
	}
}

// RenderResult renders a completed operation
func (r *OperationRenderer) RenderResult(result *usecase.OperationResult) error {
	if result == nil {
		return nil
	}

	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s completed in %s",
		OperationTitle(result.Operation), result.Duration.Round(10*time.Millisecond))))
	fmt.Fprintf(r.out, "   run %s\n", faintStyle.Sprint(shortID(result.RunID)))
	if result.Resumed > 0 {
		fmt.Fprintf(r.out, "   %s\n", pendingStyle.Sprintf("%d step(s) taken from an earlier run", result.Resumed))
	}
	fmt.Fprintln(r.out)

	r.renderReceipts(result.Receipts)
	return nil
}

// RenderFlashLoans renders one section per asset. Results of failed loans
// may hold only their completed prefix.
func (r *OperationRenderer) RenderFlashLoans(result *usecase.ExecuteFlashLoanResult) error {
	if result == nil {
		return nil
	}
	for i, res := range result.Results {
		if res == nil {
			continue
		}
		fmt.Fprintln(r.out, sectionHeaderStyle.Sprintf("Asset %s", result.Assets[i].Hex()))
		if err := r.RenderResult(res); err != nil {
			return err
		}
	}
	return nil
}

// RenderReceipt renders a single receipt in detail
func (r *OperationRenderer) RenderReceipt(receipt *domain.Receipt) error {
	fmt.Fprintln(r.out, sectionHeaderStyle.Sprint("Transaction"))
	fmt.Fprintf(r.out, "  Hash:    %s\n", hashStyle.Sprint(receipt.TxHash.Hex()))
	fmt.Fprintf(r.out, "  Status:  %s\n", statusText(string(receipt.Status), receipt.Succeeded()))
	fmt.Fprintf(r.out, "  Block:   %d\n", receipt.BlockNumber)
	fmt.Fprintf(r.out, "  Gas:     %d\n", receipt.GasUsed)
	if fee := receipt.Fee(); fee != nil {
		fmt.Fprintf(r.out, "  Fee:     %s ETH\n", domain.FormatAmount(fee, domain.DefaultDecimals))
	}
	if link := config.TxURL(r.explorer, receipt.TxHash.Hex()); link != "" {
		fmt.Fprintf(r.out, "  Explorer: %s\n", faintStyle.Sprint(link))
	}
	if len(receipt.Events) > 0 {
		fmt.Fprintln(r.out, "  Events:")
		for _, ev := range receipt.Events {
			fmt.Fprintf(r.out, "    %s\n", FormatEvent(ev))
		}
	}
	return nil
}

func (r *OperationRenderer) renderReceipts(receipts []*domain.Receipt) {
	if len(receipts) == 0 {
		return
	}

	t := newTable()
	t.AppendHeader(table.Row{"#", "STEP", "TX", "BLOCK", "GAS", "STATUS"})
	for i, rc := range receipts {
		t.AppendRow(table.Row{
			i + 1,
			rc.Step,
			hashStyle.Sprint(rc.TxHash.Hex()),
			rc.BlockNumber,
			rc.GasUsed,
			statusText(string(rc.Status), rc.Succeeded()),
		})
	}
	fmt.Fprintln(r.out, t.Render())

	for _, rc := range receipts {
		for _, ev := range rc.Events {
			fmt.Fprintf(r.out, "  %s %s\n", faintStyle.Sprint(rc.Step+":"), FormatEvent(ev))
		}
	}
	if r.explorer != "" {
		for _, rc := range receipts {
			fmt.Fprintf(r.out, "  %s\n", faintStyle.Sprint(config.TxURL(r.explorer, rc.TxHash.Hex())))
		}
	}
}

// RenderError prints err. Aborted operations get the completed prefix, the
// pending transaction if one was left behind and how to resume.
func RenderError(out io.Writer, err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			RenderError(out, e)
		}
		return
	}

	var aborted *domain.OperationAbortedError
	if !errors.As(err, &aborted) {
		fmt.Fprintln(out, FormatError(err.Error()))
		return
	}

	fmt.Fprintln(out, FormatError(fmt.Sprintf("%s aborted at step %d (%s)",
		OperationTitle(aborted.Operation), aborted.FailingIndex+1, aborted.FailingStep)))
	fmt.Fprintf(out, "   cause: %v\n", aborted.Cause)
	if len(aborted.Completed) > 0 {
		fmt.Fprintf(out, "   %d step(s) completed and remain applied:\n", len(aborted.Completed))
		for _, rc := range aborted.Completed {
			fmt.Fprintf(out, "     ✓ %s %s\n", rc.Step, faintStyle.Sprint(rc.TxHash.Hex()))
		}
	}
	if hash, ok := aborted.PendingHash(); ok {
		fmt.Fprintf(out, "   pending tx %s may still land; check with: flashops await %s\n", hash.Hex(), hash.Hex())
	}
	if aborted.RunID != "" {
		fmt.Fprintf(out, "   rerun with --resume to continue run %s\n", shortID(aborted.RunID))
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
