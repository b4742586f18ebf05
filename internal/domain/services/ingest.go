// Package services contains domain business logic.
package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/etov/internal/domain/entities"
	"github.com/ersonp/etov/internal/domain/ports"
)

// Source names the workbook and the two sheets to read.
// The values are passed to the reader as given.
type Source struct {
	Path         string
	KeywordSheet string
	AccordSheet  string
}

// IngestOptions controls how the sheets are interpreted.
type IngestOptions struct {
	KeywordColumns KeywordColumns
	AccordColumns  AccordColumns
	Merge          MergeOptions
	// SkipAccords leaves the accord sheet unread.
	SkipAccords bool
}

// DefaultIngestOptions returns the standard column layouts.
func DefaultIngestOptions() IngestOptions {
	return IngestOptions{
		KeywordColumns: DefaultKeywordColumns(),
		AccordColumns:  DefaultAccordColumns(),
	}
}

// IngestResult is the in-memory graph built from one workbook.
type IngestResult struct {
	Catalog    *entities.Catalog
	Accords    *entities.AccordSet
	Unresolved []entities.UnresolvedKey
}

// IngestService reads a workbook and builds the perfume catalog.
type IngestService struct {
	reader ports.WorkbookReader
	logger *zap.Logger
	opts   IngestOptions
}

// NewIngestService creates a new ingest service.
func NewIngestService(reader ports.WorkbookReader, logger *zap.Logger, opts IngestOptions) *IngestService {
	return &IngestService{
		reader: reader,
		logger: logger,
		opts:   opts,
	}
}

// Ingest aggregates the keyword sheet, then merges the accord sheet into the
// result and collects the accord set. Each call starts from empty state.
func (s *IngestService) Ingest(ctx context.Context, src Source) (*IngestResult, error) {
	keywordRows, err := s.reader.ReadSheet(ctx, src.Path, src.KeywordSheet)
	if err != nil {
		return nil, fmt.Errorf("reading keyword sheet: %w", err)
	}
	s.logger.Info("read keyword sheet", zap.String("sheet", src.KeywordSheet), zap.Int("rows", len(keywordRows)))

	keywords, err := NormalizeKeywordRows(src.KeywordSheet, keywordRows, s.opts.KeywordColumns)
	if err != nil {
		return nil, fmt.Errorf("normalizing keyword sheet: %w", err)
	}

	catalog := NewAggregator(s.logger).Aggregate(keywords)
	s.logger.Info("aggregated perfumes", zap.Int("perfumes", catalog.Len()))

	result := &IngestResult{Catalog: catalog}

	if !s.opts.SkipAccords {
		unresolved, err := s.mergeAccords(ctx, src, catalog)
		if err != nil {
			return nil, err
		}
		result.Unresolved = unresolved
	}

	result.Accords = CollectAccords(catalog)
	s.logger.Info("collected accords",
		zap.Int("accords", result.Accords.Len()),
		zap.Int("unresolved", len(result.Unresolved)),
	)

	return result, nil
}

func (s *IngestService) mergeAccords(ctx context.Context, src Source, catalog *entities.Catalog) ([]entities.UnresolvedKey, error) {
	accordRows, err := s.reader.ReadSheet(ctx, src.Path, src.AccordSheet)
	if err != nil {
		return nil, fmt.Errorf("reading accord sheet: %w", err)
	}
	s.logger.Info("read accord sheet", zap.String("sheet", src.AccordSheet), zap.Int("rows", len(accordRows)))

	accords, err := NormalizeAccordRows(src.AccordSheet, accordRows, s.opts.AccordColumns)
	if err != nil {
		return nil, fmt.Errorf("normalizing accord sheet: %w", err)
	}

	return NewMerger(s.logger, s.opts.Merge).Merge(catalog, accords), nil
}
