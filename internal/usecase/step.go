package usecase

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/trebuchet-org/flashops/internal/domain"
)

// SuccessPredicate decides whether a mined receipt counts as success.
// Receipts with a reverted status never reach it.
type SuccessPredicate func(receipt *domain.Receipt) error

// Step is one contract call in an Operation
type Step struct {
	Name      string
	Contract  domain.ContractProxy
	Method    string
	Args      []any
	Value     *big.Int
	GasLimit  uint64
	Timeout   time.Duration // 0 uses the orchestrator's confirmation timeout
	Succeeded SuccessPredicate
}

// Request encodes the step into a transaction request from sender
func (s *Step) Request(account *domain.Account) (*domain.TxRequest, error) {
	data, err := s.Contract.Encode(s.Method, s.Args...)
	if err != nil {
		return nil, err
	}
	req := &domain.TxRequest{
		To:       s.Contract.Address(),
		Data:     data,
		GasLimit: s.GasLimit,
	}
	if account != nil {
		req.From = account.Address
	}
	if s.Value != nil {
		req.Value = new(big.Int).Set(s.Value)
	}
	return req, nil
}

// ExpectEvent requires the receipt to carry at least one decoded event named name
func ExpectEvent(name string) SuccessPredicate {
	return func(receipt *domain.Receipt) error {
		for _, ev := range receipt.Events {
			if ev.Name == name {
				return nil
			}
		}
		return fmt.Errorf("expected %s event in receipt", name)
	}
}

// StepExecutor runs a single step: encode, submit, await, check
type StepExecutor struct {
	ledger  LedgerClient
	timeout time.Duration
}

// NewStepExecutor creates an executor that waits timeout for steps without their own
func NewStepExecutor(ledger LedgerClient, timeout time.Duration) *StepExecutor {
	return &StepExecutor{ledger: ledger, timeout: timeout}
}

// Execute submits the step and waits for its receipt. The receipt is returned
// whenever one was observed, the pending handle whenever the tx was broadcast.
// Failures are always *domain.StepFailedError.
func (e *StepExecutor) Execute(ctx context.Context, account *domain.Account, index int, step *Step) (*domain.Receipt, *domain.PendingTx, error) {
	pending, err := e.Submit(ctx, account, index, step)
	if err != nil {
		return nil, pending, err
	}
	receipt, err := e.Await(ctx, index, step, pending)
	return receipt, pending, err
}

// Submit encodes and broadcasts the step without waiting. A broadcast whose
// outcome is unknown returns the pending handle along with the error.
func (e *StepExecutor) Submit(ctx context.Context, account *domain.Account, index int, step *Step) (*domain.PendingTx, error) {
	req, err := step.Request(account)
	if err != nil {
		return nil, &domain.StepFailedError{Index: index, Step: step.Name, Err: err}
	}
	pending, err := e.ledger.Submit(ctx, account, req)
	if err != nil {
		return pending, &domain.StepFailedError{Index: index, Step: step.Name, Pending: pending, Err: err}
	}
	return pending, nil
}

// Await waits for a broadcast step and applies its success predicate
func (e *StepExecutor) Await(ctx context.Context, index int, step *Step, pending *domain.PendingTx) (*domain.Receipt, error) {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = e.timeout
	}

	receipt, err := e.ledger.AwaitConfirmation(ctx, pending, timeout)
	if receipt != nil {
		receipt.Step = step.Name
		receipt.Events = step.Contract.DecodeEvents(receipt.Logs)
	}
	if err != nil {
		return receipt, &domain.StepFailedError{Index: index, Step: step.Name, Pending: pending, Err: err}
	}

	if step.Succeeded != nil {
		if err := step.Succeeded(receipt); err != nil {
			return receipt, &domain.StepFailedError{Index: index, Step: step.Name, Pending: pending, Err: err}
		}
	}
	return receipt, nil
}
