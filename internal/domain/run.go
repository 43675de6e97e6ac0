package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RunStatus is the lifecycle state of a journaled operation run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCompleted RunStatus = "completed"
)

// StepStatus is the lifecycle state of one step within a run
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusSubmitted StepStatus = "submitted"
	StepStatusConfirmed StepStatus = "confirmed"
	StepStatusFailed    StepStatus = "failed"
)

// StepRecord is the journaled state of a step
type StepRecord struct {
	Name        string         `json:"name"`
	Contract    common.Address `json:"contract"`
	Method      string         `json:"method"`
	Status      StepStatus     `json:"status"`
	TxHash      *common.Hash   `json:"txHash,omitempty"`
	Nonce       *uint64        `json:"nonce,omitempty"`
	BlockNumber uint64         `json:"blockNumber,omitempty"`
	GasUsed     uint64         `json:"gasUsed,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// RunRecord is the journal entry of one operation run. The ID is a
// fingerprint of the operation, so re-running the same operation finds it.
type RunRecord struct {
	ID          string         `json:"id"`
	Operation   string         `json:"operation"`
	Network     string         `json:"network"`
	ChainID     uint64         `json:"chainId"`
	Sender      common.Address `json:"sender"`
	Status      RunStatus      `json:"status"`
	StartedAt   time.Time      `json:"startedAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	CurrentStep int            `json:"currentStep"`
	Steps       []StepRecord   `json:"steps"`
}

// ConfirmedPrefix returns how many leading steps are confirmed
func (r *RunRecord) ConfirmedPrefix() int {
	for i, s := range r.Steps {
		if s.Status != StepStatusConfirmed {
			return i
		}
	}
	return len(r.Steps)
}
