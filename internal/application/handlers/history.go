package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/ersonp/etov/internal/domain/entities"
	"github.com/ersonp/etov/internal/domain/ports"
)

// ErrHistoryDisabled is returned when no run history store is configured.
var ErrHistoryDisabled = errors.New("run history is disabled (set history.enabled in config)")

// DefaultHistoryLimit is the number of runs listed when no limit is given.
const DefaultHistoryLimit = 20

// HistoryHandler reads past runs.
type HistoryHandler struct {
	history ports.RunHistory
}

// NewHistoryHandler creates a new history handler. history may be nil.
func NewHistoryHandler(history ports.RunHistory) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List returns the most recent runs first.
func (h *HistoryHandler) List(ctx context.Context, limit int) ([]entities.Run, error) {
	if h.history == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	runs, err := h.history.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Unresolved returns the unresolved keys of a run.
func (h *HistoryHandler) Unresolved(ctx context.Context, runID string) ([]entities.UnresolvedKey, error) {
	if h.history == nil {
		return nil, ErrHistoryDisabled
	}
	if runID == "" {
		return nil, errors.New("run id is required")
	}

	keys, err := h.history.ListUnresolved(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("listing unresolved keys: %w", err)
	}
	return keys, nil
}
