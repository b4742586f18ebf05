// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/etov/internal/infrastructure/config"
)

// SchemaEnsurer prepares a store's schema.
type SchemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// HistoryOpener opens the run history store of a vault.
type HistoryOpener func(basePath string) (SchemaEnsurer, func() error, error)

// InitHandler handles vault initialization.
type InitHandler struct {
	openHistory HistoryOpener
}

// NewInitHandler creates a new init handler. openHistory may be nil.
func NewInitHandler(openHistory HistoryOpener) *InitHandler {
	return &InitHandler{openHistory: openHistory}
}

// InitOptions pre-fills the plain settings of the new config.
type InitOptions struct {
	Settings map[string]string // config set key -> value
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath  string
	HistoryPath string
	Config      *config.Config
}

// Handle writes the default config into basePath and prepares run history.
func (h *InitHandler) Handle(ctx context.Context, basePath string, opts InitOptions) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("etov already initialized in %s", basePath)
	}

	cfg := config.Default()
	for key, v := range opts.Settings {
		if err := cfg.Set(key, v); err != nil {
			return nil, err
		}
	}

	if len(opts.Settings) == 0 {
		if err := config.WriteDefault(basePath); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
	} else if err := config.Write(basePath, cfg); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	result := &InitResult{
		ConfigPath: config.ConfigFilePath(basePath),
		Config:     cfg,
	}

	if cfg.History.Enabled && h.openHistory != nil {
		store, closeFn, err := h.openHistory(basePath)
		if err != nil {
			return nil, fmt.Errorf("opening run history: %w", err)
		}
		defer closeFn()

		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("creating run history schema: %w", err)
		}
		result.HistoryPath = config.HistoryPath(basePath)
	}

	return result, nil
}
