package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidAmount is returned when an amount is malformed, zero or negative
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrRejectedByNetwork is returned when a request is malformed or underfunded
	ErrRejectedByNetwork = errors.New("rejected by network")

	// ErrBroadcastUnknown is returned when a send failed without a clear answer from the node
	ErrBroadcastUnknown = errors.New("broadcast outcome unknown")

	// ErrReverted is returned when execution failed on-chain
	ErrReverted = errors.New("execution reverted")

	// ErrTimeout is returned when inclusion was not observed before the deadline
	ErrTimeout = errors.New("confirmation timeout")

	// ErrAbiMismatch is returned when a call does not match the bound interface
	ErrAbiMismatch = errors.New("abi mismatch")

	// ErrStepFailed is returned when a transaction step did not succeed
	ErrStepFailed = errors.New("step failed")

	// ErrOperationAborted is returned when an operation stopped at a failing step
	ErrOperationAborted = errors.New("operation aborted")
)

// RejectedError reports a request the node refused to accept.
type RejectedError struct {
	Reason string
	Err    error
}

func (e *RejectedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rejected by network: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("rejected by network: %s", e.Reason)
}

func (e *RejectedError) Is(target error) bool { return target == ErrRejectedByNetwork }

func (e *RejectedError) Unwrap() error { return e.Err }

// BroadcastUnknownError reports a send whose outcome was never observed, such
// as a dropped connection. The node may have accepted the transaction, so it
// may still land; await TxHash before sending anything in its place.
type BroadcastUnknownError struct {
	TxHash common.Hash
	Err    error
}

func (e *BroadcastUnknownError) Error() string {
	return fmt.Sprintf("broadcast of %s not acknowledged, it may still land: %v", e.TxHash.Hex(), e.Err)
}

func (e *BroadcastUnknownError) Is(target error) bool { return target == ErrBroadcastUnknown }

func (e *BroadcastUnknownError) Unwrap() error { return e.Err }

// RevertedError reports an on-chain execution failure. Receipt is nil when
// the revert was detected while estimating gas, before anything was broadcast.
type RevertedError struct {
	TxHash  common.Hash
	Reason  string
	Receipt *Receipt
}

func (e *RevertedError) Error() string {
	var b strings.Builder
	b.WriteString("execution reverted")
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Receipt != nil {
		fmt.Fprintf(&b, " (tx %s, block %d, gas used %d)", e.TxHash.Hex(), e.Receipt.BlockNumber, e.Receipt.GasUsed)
	} else {
		b.WriteString(" (during gas estimation, not broadcast)")
	}
	return b.String()
}

func (e *RevertedError) Is(target error) bool { return target == ErrReverted }

// TimeoutError reports that a receipt did not show up in time. The transaction
// may still land; await the same hash again to find out.
type TimeoutError struct {
	TxHash common.Hash
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transaction %s not confirmed after %s", e.TxHash.Hex(), e.Waited)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// AbiMismatchError reports a call that the bound interface cannot encode.
type AbiMismatchError struct {
	Contract string
	Method   string
	Err      error
}

func (e *AbiMismatchError) Error() string {
	return fmt.Sprintf("abi mismatch: %s.%s: %v", e.Contract, e.Method, e.Err)
}

func (e *AbiMismatchError) Is(target error) bool { return target == ErrAbiMismatch }

func (e *AbiMismatchError) Unwrap() error { return e.Err }

// StepFailedError wraps the reason a single transaction step failed.
// Pending is set when the transaction was broadcast.
type StepFailedError struct {
	Index   int
	Step    string
	Pending *PendingTx
	Err     error
}

func (e *StepFailedError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Index+1, e.Step, e.Err)
}

func (e *StepFailedError) Is(target error) bool { return target == ErrStepFailed }

func (e *StepFailedError) Unwrap() error { return e.Err }

// OperationAbortedError reports the exact prefix of steps that completed
// before the failing one. Completed steps stay applied on-chain.
type OperationAbortedError struct {
	Operation    string
	RunID        string
	Completed    []*Receipt
	FailingIndex int
	FailingStep  string
	Cause        error
}

func (e *OperationAbortedError) Error() string {
	return fmt.Sprintf("operation %q aborted at step %d (%s) after %d completed step(s): %v",
		e.Operation, e.FailingIndex+1, e.FailingStep, len(e.Completed), e.Cause)
}

func (e *OperationAbortedError) Is(target error) bool { return target == ErrOperationAborted }

func (e *OperationAbortedError) Unwrap() error { return e.Cause }

// PendingHash returns the hash of the failing step's broadcast transaction, if any.
func (e *OperationAbortedError) PendingHash() (common.Hash, bool) {
	var stepErr *StepFailedError
	if errors.As(e.Cause, &stepErr) && stepErr.Pending != nil {
		return stepErr.Pending.Hash, true
	}
	return common.Hash{}, false
}

// UnknownNameErr is returned when a configured name doesn't resolve.
type UnknownNameErr struct {
	Kind        string
	Name        string
	Suggestions []string
}

func (e UnknownNameErr) Error() string {
	msg := fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(quoteAll(e.Suggestions), ", "))
	}
	return msg
}

func (e UnknownNameErr) Is(target error) bool { return target == ErrNotFound }

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "'" + n + "'"
	}
	return out
}
