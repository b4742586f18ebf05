package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ersonp/etov/internal/application/handlers"
	"github.com/ersonp/etov/internal/domain/ports"
	"github.com/ersonp/etov/internal/domain/services"
	"github.com/ersonp/etov/internal/infrastructure/config"
	"github.com/ersonp/etov/internal/infrastructure/logging"
	"github.com/ersonp/etov/internal/infrastructure/notestore/local"
	"github.com/ersonp/etov/internal/infrastructure/parsers"
	"github.com/ersonp/etov/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config         *config.Config
	Logger         *zap.Logger
	Source         services.Source
	OutputDir      string
	VaultRoot      string
	Labels         services.Labels
	IncludeAccords bool
	RunHandler     *handlers.RunHandler
	PreviewHandler *handlers.PreviewHandler
	HistoryHandler *handlers.HistoryHandler
}

// depsOption adjusts the loaded config before dependencies are built.
type depsOption func(*config.Config)

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(fn func(*Deps) error, opts ...depsOption) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ingestOpts, err := ingestOptions(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level := cfg.Log.Level
	if globalVerbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := local.NewStore(cwd)
	if err != nil {
		return fmt.Errorf("opening vault: %w", err)
	}

	var history ports.RunHistory
	if cfg.History.Enabled {
		repo, err := sqlite.NewRepository(config.HistoryPath(cwd))
		if err != nil {
			return fmt.Errorf("creating sqlite repository: %w", err)
		}
		defer repo.Close()

		if err := repo.EnsureSchema(context.Background()); err != nil {
			return fmt.Errorf("ensuring sqlite schema: %w", err)
		}
		history = repo
	}

	materializeOpts := materializeOptions(cfg)
	ingestService := services.NewIngestService(&parsers.AutoParser{Format: cfg.Source.Format}, logger, ingestOpts)
	materializer := services.NewMaterializer(store, logger, materializeOpts)

	deps := &Deps{
		Config: cfg,
		Logger: logger,
		Source: services.Source{
			Path:         cfg.Source.Path,
			KeywordSheet: cfg.Source.KeywordSheet,
			AccordSheet:  cfg.Source.AccordSheet,
		},
		OutputDir:      filepath.ToSlash(cfg.Output.Directory),
		VaultRoot:      store.Root(),
		Labels:         materializeOpts.Labels,
		IncludeAccords: materializeOpts.IncludeAccords,
		RunHandler:     handlers.NewRunHandler(ingestService, materializer, newTerminalStatus(os.Stderr), history, logger),
		PreviewHandler: handlers.NewPreviewHandler(ingestService, materializer),
		HistoryHandler: handlers.NewHistoryHandler(history),
	}

	return fn(deps)
}

// ingestOptions maps the config onto the ingest service and validates the
// column layouts.
func ingestOptions(cfg *config.Config) (services.IngestOptions, error) {
	opts := services.IngestOptions{
		KeywordColumns: services.KeywordColumns{
			Key:     cfg.Columns.Keyword.Key,
			Brand:   cfg.Columns.Keyword.Brand,
			Name:    cfg.Columns.Keyword.Name,
			Keyword: cfg.Columns.Keyword.Keyword,
		},
		AccordColumns: services.AccordColumns{
			Key:     cfg.Columns.Accord.Key,
			Name:    cfg.Columns.Accord.Name,
			Accords: cfg.Columns.Accord.Accords,
		},
		Merge:       services.MergeOptions{DropEmpty: cfg.Accords.DropEmpty},
		SkipAccords: cfg.Variant == config.VariantSimple,
	}

	if err := opts.KeywordColumns.Validate(); err != nil {
		return opts, err
	}
	if err := opts.AccordColumns.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// materializeOptions maps the config onto the materializer.
func materializeOptions(cfg *config.Config) services.MaterializeOptions {
	return services.MaterializeOptions{
		Layout:        services.Layout(cfg.Output.Layout),
		PerfumeFolder: cfg.Output.PerfumeFolder,
		AccordFolder:  cfg.Output.AccordFolder,
		Labels: services.Labels{
			Title:   cfg.Labels.Title,
			Brand:   cfg.Labels.Brand,
			Keyword: cfg.Labels.Keyword,
			Accord:  cfg.Labels.Accord,
		},
		IncludeAccords: cfg.Variant != config.VariantSimple,
		AccordPolicy:   services.AccordFilePolicy(cfg.Accords.FilePolicy),
	}
}
