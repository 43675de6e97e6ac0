package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

// RunJournalAdapter implements OperationJournal with one JSON file per run
type RunJournalAdapter struct {
	dir string
}

// NewRunJournalAdapter creates a journal under <data dir>/runs
func NewRunJournalAdapter(cfg *config.RuntimeConfig) *RunJournalAdapter {
	return &RunJournalAdapter{
		dir: filepath.Join(cfg.DataDir, "runs"),
	}
}

func (s *RunJournalAdapter) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Load reads a run record. Returns domain.ErrNotFound if it does not exist.
func (s *RunJournalAdapter) Load(_ context.Context, id string) (*domain.RunRecord, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read run journal: %w", err)
	}

	var rec domain.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse run journal %s: %w", id, err)
	}
	return &rec, nil
}

// Save writes the record atomically, creating the directory if needed.
func (s *RunJournalAdapter) Save(_ context.Context, rec *domain.RunRecord) error {
	if err := validateID(rec.ID); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create run journal directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run journal: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, rec.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write run journal: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write run journal: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write run journal: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(rec.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write run journal: %w", err)
	}
	return nil
}

// List returns every journaled run, most recently updated first
func (s *RunJournalAdapter) List(ctx context.Context) ([]*domain.RunRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read run journal directory: %w", err)
	}

	var runs []*domain.RunRecord
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		rec, err := s.Load(ctx, strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].UpdatedAt.After(runs[j].UpdatedAt)
	})
	return runs, nil
}

// Delete removes a run record. Missing records are not an error.
func (s *RunJournalAdapter) Delete(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	err := os.Remove(s.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete run journal: %w", err)
	}
	return nil
}

// validateID keeps ids to a single file name inside the runs directory
func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\.`) {
		return fmt.Errorf("invalid run id %q", id)
	}
	return nil
}

// Ensure RunJournalAdapter implements OperationJournal
var _ usecase.OperationJournal = (*RunJournalAdapter)(nil)
