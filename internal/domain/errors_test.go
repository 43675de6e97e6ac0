package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestRevertedError(t *testing.T) {
	hash := common.HexToHash("0x01")

	estimated := &RevertedError{Reason: "insufficient balance"}
	assert.Equal(t, "execution reverted: insufficient balance (during gas estimation, not broadcast)", estimated.Error())

	mined := &RevertedError{TxHash: hash, Receipt: &Receipt{BlockNumber: 7, GasUsed: 21000}}
	assert.Equal(t, fmt.Sprintf("execution reverted (tx %s, block 7, gas used 21000)", hash.Hex()), mined.Error())
	assert.True(t, errors.Is(mined, ErrReverted))
	assert.False(t, errors.Is(mined, ErrTimeout))
}

func TestErrorChains(t *testing.T) {
	pending := &PendingTx{Hash: common.HexToHash("0xbeef"), Nonce: 3}
	timeout := &TimeoutError{TxHash: pending.Hash, Waited: time.Minute}
	stepErr := &StepFailedError{Index: 1, Step: "transfer", Pending: pending, Err: timeout}
	aborted := &OperationAbortedError{
		Operation:    "fund-and-transfer",
		RunID:        "abc",
		Completed:    []*Receipt{{Step: "wrap"}},
		FailingIndex: 1,
		FailingStep:  "transfer",
		Cause:        stepErr,
	}

	assert.True(t, errors.Is(aborted, ErrOperationAborted))
	assert.True(t, errors.Is(aborted, ErrStepFailed))
	assert.True(t, errors.Is(aborted, ErrTimeout))
	assert.False(t, errors.Is(aborted, ErrReverted))
	assert.Contains(t, aborted.Error(), `operation "fund-and-transfer" aborted at step 2 (transfer) after 1 completed step(s)`)

	hash, ok := aborted.PendingHash()
	assert.True(t, ok)
	assert.Equal(t, pending.Hash, hash)

	var asTimeout *TimeoutError
	assert.True(t, errors.As(aborted, &asTimeout))
	assert.Equal(t, time.Minute, asTimeout.Waited)
}

func TestOperationAbortedError_NoPending(t *testing.T) {
	mismatch := &AbiMismatchError{Contract: "WETH", Method: "mint", Err: errors.New("method not found")}
	aborted := &OperationAbortedError{
		Operation: "plan",
		Cause:     &StepFailedError{Index: 0, Step: "mint", Err: mismatch},
	}

	_, ok := aborted.PendingHash()
	assert.False(t, ok)
	assert.True(t, errors.Is(aborted, ErrAbiMismatch))
	assert.Contains(t, aborted.Error(), "abi mismatch: WETH.mint: method not found")
}

func TestRejectedError(t *testing.T) {
	err := &RejectedError{Reason: "insufficient funds", Err: context.DeadlineExceeded}
	assert.True(t, errors.Is(err, ErrRejectedByNetwork))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "rejected by network: insufficient funds: context deadline exceeded", err.Error())
	assert.Equal(t, "rejected by network: nonce too low", (&RejectedError{Reason: "nonce too low"}).Error())
}

func TestUnknownNameErr(t *testing.T) {
	err := UnknownNameErr{Kind: "sender", Name: "deployr", Suggestions: []string{"deployer"}}
	assert.Equal(t, "sender 'deployr' not found (did you mean 'deployer'?)", err.Error())
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", err), ErrNotFound))
	assert.Equal(t, "network 'x' not found", UnknownNameErr{Kind: "network", Name: "x"}.Error())
}

func TestRunRecord_ConfirmedPrefix(t *testing.T) {
	rec := &RunRecord{Steps: []StepRecord{
		{Status: StepStatusConfirmed},
		{Status: StepStatusSubmitted},
		{Status: StepStatusConfirmed},
	}}
	assert.Equal(t, 1, rec.ConfirmedPrefix())

	rec.Steps[1].Status = StepStatusConfirmed
	assert.Equal(t, 3, rec.ConfirmedPrefix())
}
