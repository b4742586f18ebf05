package services

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/etov/internal/domain/entities"
)

// accordSeparator separates accords inside one accord-sheet cell.
const accordSeparator = ","

// MergeOptions controls how accord cells are applied.
type MergeOptions struct {
	// DropEmpty discards accords that are empty after trimming.
	DropEmpty bool
}

// Merger attaches accord-sheet values to perfumes of a catalog.
type Merger struct {
	logger *zap.Logger
	opts   MergeOptions
}

// NewMerger creates a new merger.
func NewMerger(logger *zap.Logger, opts MergeOptions) *Merger {
	return &Merger{
		logger: logger,
		opts:   opts,
	}
}

// Merge appends the accords of every row to the perfume with the same code.
// Rows whose code matches no perfume are returned and logged; they never
// mutate the catalog.
func (m *Merger) Merge(catalog *entities.Catalog, rows []AccordRow) []entities.UnresolvedKey {
	var unresolved []entities.UnresolvedKey

	for i := range rows {
		row := &rows[i]
		perfume, ok := catalog.Get(row.Code)
		if !ok {
			u := entities.UnresolvedKey{Key: row.Code, Name: row.Name, Row: row.Row}
			m.logger.Warn("no perfume for accord row",
				zap.String("key", u.Key),
				zap.String("name", u.Name),
				zap.Int("row", u.Row),
			)
			unresolved = append(unresolved, u)
			continue
		}
		if !row.HasAccords {
			continue
		}

		accords := SplitAccords(row.Accords)
		if m.opts.DropEmpty {
			accords = dropEmpty(accords)
		}
		perfume.AddAccords(accords...)
	}

	return unresolved
}

// SplitAccords splits a cell on commas and trims every part.
// Empty parts are kept.
func SplitAccords(cell string) []string {
	parts := strings.Split(cell, accordSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func dropEmpty(accords []string) []string {
	out := accords[:0]
	for _, a := range accords {
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}
