package usecase

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"
)

// Progress stages emitted by the orchestrator
const (
	StageOperationStarted   = "operation_started"
	StageOperationResumed   = "operation_resumed"
	StageStepStarting       = "step_starting"
	StageStepSubmitted      = "step_submitted"
	StageStepConfirmed      = "step_confirmed"
	StageStepFailed         = "step_failed"
	StageOperationCompleted = "operation_completed"
)

// Operation is an ordered list of steps sent from one account
type Operation struct {
	Name    string
	Network string
	Account *domain.Account
	Steps   []*Step
}

// RunOptions control a single Run
type RunOptions struct {
	Resume bool // continue a previously aborted run from its journal
}

// OperationResult is the outcome of a fully successful run
type OperationResult struct {
	RunID     string            `json:"runId"`
	Operation string            `json:"operation"`
	Receipts  []*domain.Receipt `json:"receipts"`
	Resumed   int               `json:"resumed"` // leading steps taken from the journal instead of executed
	Duration  time.Duration     `json:"duration"`
}

// StepEvent is the metadata attached to step progress events
type StepEvent struct {
	Operation string
	RunID     string
	Index     int
	Total     int
	Step      *Step
	Pending   *domain.PendingTx
	Receipt   *domain.Receipt
	Err       error
}

// OrchestratorConfig carries the timing knobs the orchestrator needs
type OrchestratorConfig struct {
	ConfirmationTimeout time.Duration
	PollInterval        time.Duration
	MaxParallel         int // RunAll concurrency, 0 means unlimited
}

// ProvideOrchestratorConfig builds OrchestratorConfig from the runtime configuration
func ProvideOrchestratorConfig(cfg *config.RuntimeConfig) OrchestratorConfig {
	return OrchestratorConfig{
		ConfirmationTimeout: cfg.ConfirmationTimeout,
		PollInterval:        cfg.PollInterval,
	}
}

// Orchestrator runs operations step by step. Step k+1 is only encoded and
// submitted after step k's receipt passed its success check; the first
// failure aborts the operation without touching the completed prefix.
type Orchestrator struct {
	ledger   LedgerClient
	journal  OperationJournal
	progress ProgressSink
	executor *StepExecutor
	cfg      OrchestratorConfig
	log      *slog.Logger
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	ledger LedgerClient,
	journal OperationJournal,
	progress ProgressSink,
	cfg OrchestratorConfig,
	logger *slog.Logger,
) *Orchestrator {
	if progress == nil {
		progress = NopProgress{}
	}
	return &Orchestrator{
		ledger:   ledger,
		journal:  journal,
		progress: progress,
		executor: NewStepExecutor(ledger, cfg.ConfirmationTimeout),
		cfg:      cfg,
		log:      logger.With("component", "orchestrator"),
	}
}

// RunID fingerprints an operation so re-running it finds its journal entry
func RunID(op *Operation, chainID uint64) string {
	h := blake3.New()
	fmt.Fprintf(h, "%s\x00%d\x00", op.Name, chainID)
	if op.Account != nil {
		h.Write(op.Account.Address.Bytes())
	}
	for _, s := range op.Steps {
		fmt.Fprintf(h, "\x00%s\x00%s\x00%s\x00", s.Name, s.Contract.Address().Hex(), s.Method)
		if data, err := s.Contract.Encode(s.Method, s.Args...); err == nil {
			h.Write(data)
		} else {
			fmt.Fprintf(h, "%v", s.Args)
		}
		if s.Value != nil {
			h.Write(s.Value.Bytes())
		}
	}
	return hex.EncodeToString(h.Sum(nil)[:12])
}

// Run executes op. On failure it returns the receipts of the completed prefix
// in the result alongside a *domain.OperationAbortedError.
func (o *Orchestrator) Run(ctx context.Context, op *Operation, opts RunOptions) (*OperationResult, error) {
	if op.Account == nil {
		return nil, fmt.Errorf("operation %q has no sender account", op.Name)
	}
	if len(op.Steps) == 0 {
		return nil, fmt.Errorf("operation %q has no steps", op.Name)
	}

	chainID, err := o.ledger.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	runID := RunID(op, chainID)
	log := o.log.With("operation", op.Name, "run", runID)

	rec, err := o.prepareRecord(ctx, op, runID, chainID, opts, log)
	if err != nil {
		return nil, err
	}

	result := &OperationResult{RunID: runID, Operation: op.Name}
	total := len(op.Steps)

	first := 0
	if opts.Resume {
		first = rec.ConfirmedPrefix()
		for i := 0; i < first; i++ {
			result.Receipts = append(result.Receipts, receiptFromRecord(rec.Steps[i]))
		}
		result.Resumed = first
		o.progress.OnProgress(ctx, ProgressEvent{
			Stage:   StageOperationResumed,
			Current: first,
			Total:   total,
			Message: fmt.Sprintf("Resuming %s at step %d/%d", op.Name, first+1, total),
			Metadata: &StepEvent{
				Operation: op.Name, RunID: runID, Index: first, Total: total,
			},
		})
	} else {
		o.progress.OnProgress(ctx, ProgressEvent{
			Stage:    StageOperationStarted,
			Total:    total,
			Message:  fmt.Sprintf("Running %s (%d steps)", op.Name, total),
			Metadata: op,
		})
	}

	for i := first; i < total; i++ {
		step := op.Steps[i]
		ev := &StepEvent{Operation: op.Name, RunID: runID, Index: i, Total: total, Step: step}

		rec.CurrentStep = i
		o.progress.OnProgress(ctx, ProgressEvent{
			Stage:    StageStepStarting,
			Current:  i + 1,
			Total:    total,
			Message:  fmt.Sprintf("[%d/%d] %s", i+1, total, step.Name),
			Spinner:  true,
			Metadata: ev,
		})

		receipt, err := o.runStep(ctx, op, rec, i, ev, opts.Resume && i == first)
		if err != nil {
			ev.Receipt, ev.Err = receipt, err
			rec.Status = domain.RunStatusFailed
			rec.Steps[i].Status = domain.StepStatusFailed
			rec.Steps[i].Error = err.Error()
			o.save(ctx, rec, log)

			o.progress.OnProgress(ctx, ProgressEvent{
				Stage:    StageStepFailed,
				Current:  i + 1,
				Total:    total,
				Message:  fmt.Sprintf("[%d/%d] %s failed", i+1, total, step.Name),
				Metadata: ev,
			})
			log.Warn("operation aborted", "step", i+1, "name", step.Name, "completed", len(result.Receipts), "error", err)

			result.Duration = time.Since(start)
			return result, &domain.OperationAbortedError{
				Operation:    op.Name,
				RunID:        runID,
				Completed:    result.Receipts,
				FailingIndex: i,
				FailingStep:  step.Name,
				Cause:        err,
			}
		}

		ev.Receipt = receipt
		result.Receipts = append(result.Receipts, receipt)
		rec.Steps[i].Status = domain.StepStatusConfirmed
		rec.Steps[i].BlockNumber = receipt.BlockNumber
		rec.Steps[i].GasUsed = receipt.GasUsed
		rec.Steps[i].Error = ""
		o.save(ctx, rec, log)

		o.progress.OnProgress(ctx, ProgressEvent{
			Stage:    StageStepConfirmed,
			Current:  i + 1,
			Total:    total,
			Message:  fmt.Sprintf("[%d/%d] %s confirmed in block %d", i+1, total, step.Name, receipt.BlockNumber),
			Metadata: ev,
		})
	}

	rec.Status = domain.RunStatusCompleted
	rec.CurrentStep = total
	o.save(ctx, rec, log)

	result.Duration = time.Since(start)
	o.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageOperationCompleted,
		Current:  total,
		Total:    total,
		Message:  fmt.Sprintf("%s completed", op.Name),
		Metadata: result,
	})
	log.Info("operation completed", "steps", total, "duration", result.Duration)
	return result, nil
}

// runStep executes step i. When resuming a step whose transaction was
// already broadcast, the recorded hash is awaited instead of resubmitting.
func (o *Orchestrator) runStep(ctx context.Context, op *Operation, rec *domain.RunRecord, i int, ev *StepEvent, resuming bool) (*domain.Receipt, error) {
	step := op.Steps[i]
	sr := &rec.Steps[i]

	if resuming && sr.TxHash != nil {
		pending := &domain.PendingTx{Hash: *sr.TxHash, From: op.Account.Address}
		if sr.Nonce != nil {
			pending.Nonce = *sr.Nonce
		}
		ev.Pending = pending

		receipt, err := o.executor.Await(ctx, i, step, pending)
		switch {
		case err == nil:
			return receipt, nil
		case errors.Is(err, domain.ErrTimeout):
			return nil, fmt.Errorf("transaction %s from the previous run is still pending; refusing to resubmit: %w", pending.Hash.Hex(), err)
		case errors.Is(err, domain.ErrReverted):
			// the old attempt is final; submit a new one
			o.log.Info("previous attempt failed on-chain, resubmitting", "step", step.Name, "hash", pending.Hash.Hex())
		default:
			return receipt, err
		}
	}

	pending, err := o.executor.Submit(ctx, op.Account, i, step)
	if pending != nil {
		// journaled even when the send was not acknowledged so resume awaits it
		hash, nonce := pending.Hash, pending.Nonce
		sr.Status = domain.StepStatusSubmitted
		sr.TxHash = &hash
		sr.Nonce = &nonce
		sr.Error = ""
		o.save(ctx, rec, o.log)
		ev.Pending = pending
	}
	if err != nil {
		return nil, err
	}

	o.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageStepSubmitted,
		Current:  i + 1,
		Total:    len(op.Steps),
		Message:  fmt.Sprintf("[%d/%d] %s submitted %s", i+1, len(op.Steps), step.Name, pending.Hash.Hex()),
		Spinner:  true,
		Metadata: ev,
	})

	return o.executor.Await(ctx, i, step, pending)
}

func (o *Orchestrator) prepareRecord(ctx context.Context, op *Operation, runID string, chainID uint64, opts RunOptions, log *slog.Logger) (*domain.RunRecord, error) {
	prev, err := o.journal.Load(ctx, runID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Warn("failed to read run journal", "error", err)
		prev = nil
	}

	if opts.Resume {
		if prev == nil {
			return nil, fmt.Errorf("cannot resume %s: no journaled run %s", op.Name, runID)
		}
		if prev.Status == domain.RunStatusCompleted {
			return nil, fmt.Errorf("cannot resume %s: run %s already completed", op.Name, runID)
		}
		if len(prev.Steps) != len(op.Steps) {
			return nil, fmt.Errorf("cannot resume %s: journal has %d steps, operation has %d", op.Name, len(prev.Steps), len(op.Steps))
		}
		prev.Status = domain.RunStatusRunning
		prev.UpdatedAt = time.Now()
		return prev, nil
	}

	if prev != nil && prev.Status != domain.RunStatusCompleted {
		done := prev.ConfirmedPrefix()
		msg := fmt.Sprintf("A previous run of %s stopped after %d/%d steps; its completed steps stay applied. Use --resume to continue it instead.",
			op.Name, done, len(prev.Steps))
		log.Warn("previous run was aborted", "completed", done, "total", len(prev.Steps))
		o.progress.Info(msg)
	}

	now := time.Now()
	rec := &domain.RunRecord{
		ID:        runID,
		Operation: op.Name,
		Network:   op.Network,
		ChainID:   chainID,
		Sender:    op.Account.Address,
		Status:    domain.RunStatusRunning,
		StartedAt: now,
		UpdatedAt: now,
		Steps:     make([]domain.StepRecord, len(op.Steps)),
	}
	for i, s := range op.Steps {
		rec.Steps[i] = domain.StepRecord{
			Name:     s.Name,
			Contract: s.Contract.Address(),
			Method:   s.Method,
			Status:   domain.StepStatusPending,
		}
	}
	o.save(ctx, rec, log)
	return rec, nil
}

// save journals rec. Journal failures are logged, never fatal.
func (o *Orchestrator) save(ctx context.Context, rec *domain.RunRecord, log *slog.Logger) {
	rec.UpdatedAt = time.Now()
	if err := o.journal.Save(ctx, rec); err != nil {
		log.Warn("failed to save run journal", "error", err)
	}
}

func receiptFromRecord(sr domain.StepRecord) *domain.Receipt {
	r := &domain.Receipt{
		Step:        sr.Name,
		Status:      domain.ReceiptStatusSuccess,
		BlockNumber: sr.BlockNumber,
		GasUsed:     sr.GasUsed,
	}
	if sr.TxHash != nil {
		r.TxHash = *sr.TxHash
	}
	return r
}

// RunAll runs independent operations concurrently. Each operation stays
// sequential. Results line up with ops; failed operations leave their
// completed prefix in the result and contribute to the joined error.
func (o *Orchestrator) RunAll(ctx context.Context, ops []*Operation, opts RunOptions) ([]*OperationResult, error) {
	results := make([]*OperationResult, len(ops))
	errs := make([]error, len(ops))

	var g errgroup.Group
	if o.cfg.MaxParallel > 0 {
		g.SetLimit(o.cfg.MaxParallel)
	}
	for i, op := range ops {
		g.Go(func() error {
			results[i], errs[i] = o.Run(ctx, op, opts)
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}
