package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/etov/internal/domain/entities"
	"github.com/ersonp/etov/internal/domain/ports"
	"github.com/ersonp/etov/internal/domain/services"
)

// Status texts shown while a run is in progress and after it ends.
const (
	StatusWorking = "[Etov Working🚀]"
	StatusDone    = "[Etov Done ✅]"
	StatusFailed  = "[Etov Failed ❌]"
)

// RunHandler executes the full spreadsheet-to-notes pipeline.
type RunHandler struct {
	ingest       *services.IngestService
	materializer *services.Materializer
	status       ports.StatusReporter
	history      ports.RunHistory
	logger       *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewRunHandler creates a new run handler. history may be nil.
func NewRunHandler(
	ingest *services.IngestService,
	materializer *services.Materializer,
	status ports.StatusReporter,
	history ports.RunHistory,
	logger *zap.Logger,
) *RunHandler {
	return &RunHandler{
		ingest:       ingest,
		materializer: materializer,
		status:       status,
		history:      history,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// RunOptions controls a single run.
type RunOptions struct {
	DryRun bool // Build the catalog without writing notes or history
}

// RunResult contains the outcome of a run.
type RunResult struct {
	Run         *entities.Run
	Ingest      *services.IngestResult
	Materialize *services.MaterializeResult
}

// Handle reads src, builds the catalog and writes it under outputDir.
func (h *RunHandler) Handle(ctx context.Context, src services.Source, outputDir string, opts RunOptions) (*RunResult, error) {
	h.status.SetStatus(StatusWorking)

	run := &entities.Run{
		ID:         h.newID(),
		SourcePath: src.Path,
		OutputDir:  outputDir,
		Status:     entities.RunStatusRunning,
		StartedAt:  h.now(),
	}
	logger := h.logger.With(zap.String("run_id", run.ID))
	logger.Info("run started",
		zap.String("source", src.Path),
		zap.String("output", outputDir),
		zap.Bool("dry_run", opts.DryRun),
	)

	result := &RunResult{Run: run}

	if !opts.DryRun {
		h.record(ctx, logger, run)
	}

	ingested, err := h.ingest.Ingest(ctx, src)
	if err != nil {
		return result, h.fail(ctx, logger, run, opts, err)
	}
	result.Ingest = ingested
	run.Perfumes = ingested.Catalog.Len()
	run.Accords = ingested.Accords.Len()
	run.Unresolved = ingested.Unresolved

	if opts.DryRun {
		run.Status = entities.RunStatusDone
		run.FinishedAt = h.now()
		h.status.SetStatus(StatusDone)
		logger.Info("dry run finished",
			zap.Int("perfumes", run.Perfumes),
			zap.Int("accords", run.Accords),
			zap.Int("unresolved", len(run.Unresolved)),
		)
		return result, nil
	}

	written, err := h.materializer.Materialize(ctx, ingested.Catalog, ingested.Accords, outputDir)
	result.Materialize = written
	if written != nil {
		run.FilesWritten = written.Written()
	}
	if err != nil {
		return result, h.fail(ctx, logger, run, opts, fmt.Errorf("writing notes: %w", err))
	}

	run.Status = entities.RunStatusDone
	run.FinishedAt = h.now()
	h.record(ctx, logger, run)
	h.status.SetStatus(StatusDone)

	logger.Info("run finished",
		zap.Int("perfumes", run.Perfumes),
		zap.Int("accords", run.Accords),
		zap.Int("created", written.Created),
		zap.Int("overwritten", written.Overwritten),
		zap.Int("skipped", written.Skipped),
		zap.Int("unresolved", len(run.Unresolved)),
		zap.Duration("duration", run.Duration()),
	)
	return result, nil
}

func (h *RunHandler) fail(ctx context.Context, logger *zap.Logger, run *entities.Run, opts RunOptions, err error) error {
	run.Status = entities.RunStatusFailed
	run.Error = err.Error()
	run.FinishedAt = h.now()

	logger.Error("run failed", zap.Error(err), zap.Int("files_written", run.FilesWritten))
	if !opts.DryRun {
		h.record(ctx, logger, run)
	}
	h.status.SetStatus(StatusFailed)
	return err
}

// record saves the run. History is auxiliary, so a failure is only logged.
func (h *RunHandler) record(ctx context.Context, logger *zap.Logger, run *entities.Run) {
	if h.history == nil {
		return
	}
	if err := h.history.SaveRun(ctx, run); err != nil {
		logger.Warn("recording run history", zap.Error(err))
	}
}
