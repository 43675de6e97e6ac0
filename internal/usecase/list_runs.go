package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/trebuchet-org/flashops/internal/domain"
)

// ListRunsParams filters journaled runs
type ListRunsParams struct {
	Operation string
	Status    domain.RunStatus
	Limit     int
}

// ListRunsResult contains the matching runs, newest first
type ListRunsResult struct {
	Runs []*domain.RunRecord
}

// ListRuns reads the operation journal
type ListRuns struct {
	journal OperationJournal
}

// NewListRuns creates a new ListRuns use case
func NewListRuns(journal OperationJournal) *ListRuns {
	return &ListRuns{journal: journal}
}

// Run executes the use case
func (uc *ListRuns) Run(ctx context.Context, params ListRunsParams) (*ListRunsResult, error) {
	runs, err := uc.journal.List(ctx)
	if err != nil {
		return nil, err
	}

	runs = lo.Filter(runs, func(r *domain.RunRecord, _ int) bool {
		if params.Operation != "" && r.Operation != params.Operation {
			return false
		}
		return params.Status == "" || r.Status == params.Status
	})
	if params.Limit > 0 && len(runs) > params.Limit {
		runs = runs[:params.Limit]
	}
	return &ListRunsResult{Runs: runs}, nil
}

// Show returns one run by id or unique id prefix
func (uc *ListRuns) Show(ctx context.Context, id string) (*domain.RunRecord, error) {
	if rec, err := uc.journal.Load(ctx, id); err == nil {
		return rec, nil
	}

	runs, err := uc.journal.List(ctx)
	if err != nil {
		return nil, err
	}
	matches := lo.Filter(runs, func(r *domain.RunRecord, _ int) bool {
		return strings.HasPrefix(r.ID, id)
	})
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %s is ambiguous (%d matches)", id, len(matches))
	}
}

// Forget deletes a run from the journal
func (uc *ListRuns) Forget(ctx context.Context, id string) error {
	rec, err := uc.Show(ctx, id)
	if err != nil {
		return err
	}
	return uc.journal.Delete(ctx, rec.ID)
}
