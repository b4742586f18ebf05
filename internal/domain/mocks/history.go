package mocks

import (
	"context"

	"github.com/ersonp/etov/internal/domain/entities"
)

// RunHistory is a mock implementation of ports.RunHistory.
type RunHistory struct {
	Runs []entities.Run
	Err  error

	// Call tracking
	SaveRunCallCount int
}

// SaveRun stores a copy of the run, replacing one with the same ID.
func (m *RunHistory) SaveRun(ctx context.Context, run *entities.Run) error {
	m.SaveRunCallCount++
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Runs {
		if m.Runs[i].ID == run.ID {
			m.Runs[i] = *run
			return nil
		}
	}
	m.Runs = append(m.Runs, *run)
	return nil
}

// ListRuns returns runs newest first.
func (m *RunHistory) ListRuns(ctx context.Context, limit int) ([]entities.Run, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.Run
	for i := len(m.Runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.Runs[i])
	}
	return out, nil
}

// ListUnresolved returns the unresolved keys of a run.
func (m *RunHistory) ListUnresolved(ctx context.Context, runID string) ([]entities.UnresolvedKey, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Runs {
		if m.Runs[i].ID == runID {
			return m.Runs[i].Unresolved, nil
		}
	}
	return nil, nil
}
