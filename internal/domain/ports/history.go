package ports

import (
	"context"

	"github.com/ersonp/etov/internal/domain/entities"
)

// RunHistory persists the outcome of pipeline runs.
type RunHistory interface {
	// SaveRun inserts or updates a run and replaces its unresolved keys.
	SaveRun(ctx context.Context, run *entities.Run) error

	// ListRuns returns the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]entities.Run, error)

	// ListUnresolved returns the unresolved keys recorded for a run.
	ListUnresolved(ctx context.Context, runID string) ([]entities.UnresolvedKey, error)
}
