package progress

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

func TestOperationProgress(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	p := NewOperationProgress(&buf, true)
	ctx := context.Background()

	p.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageOperationStarted, Message: "Running fund-and-transfer (2 steps)"})
	p.OnProgress(ctx, usecase.ProgressEvent{
		Stage:   usecase.StageStepSubmitted,
		Message: "[1/2] wrap submitted",
		Metadata: &usecase.StepEvent{
			Pending: &domain.PendingTx{Hash: common.HexToHash("0xabc"), Nonce: 7},
		},
	})
	p.OnProgress(ctx, usecase.ProgressEvent{
		Stage:    usecase.StageStepConfirmed,
		Message:  "[1/2] wrap confirmed in block 3",
		Metadata: &usecase.StepEvent{Receipt: &domain.Receipt{GasUsed: 45038}},
	})
	p.OnProgress(ctx, usecase.ProgressEvent{
		Stage:   usecase.StageStepFailed,
		Message: "[2/2] transfer failed",
		Metadata: &usecase.StepEvent{
			Err: &domain.StepFailedError{Err: &domain.RevertedError{Reason: "WETH: insufficient balance"}},
		},
	})
	p.Info("note")

	out := buf.String()
	assert.Contains(t, out, "Running fund-and-transfer (2 steps)")
	assert.Contains(t, out, "nonce 7")
	assert.Contains(t, out, "✓ [1/2] wrap confirmed in block 3 (gas 45038)")
	assert.Contains(t, out, "✗ [2/2] transfer failed")
	assert.Contains(t, out, "reverted: WETH: insufficient balance")
	assert.Contains(t, out, "note")
}

func TestFailureDetail(t *testing.T) {
	assert.Equal(t, "boom", failureDetail(errors.New("boom")))
	assert.Equal(t, "reverted: nope", failureDetail(&domain.RevertedError{Reason: "nope"}))
}
