// Package parsers reads workbook sheets from xlsx, CSV and JSON sources.
package parsers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ersonp/etov/internal/domain/entities"
	"github.com/ersonp/etov/internal/domain/ports"
)

// ForFormat returns the appropriate reader for the given format.
// Supported formats: "xlsx", "csv", "json".
func ForFormat(format string) ports.WorkbookReader {
	switch strings.ToLower(format) {
	case "xlsx":
		return &XLSXParser{}
	case "csv":
		return &CSVParser{}
	case "json":
		return &JSONParser{}
	default:
		return nil
	}
}

// ForPath returns the appropriate reader for a workbook path: a directory is
// read as one CSV file per sheet, files are chosen by extension.
func ForPath(path string) ports.WorkbookReader {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return &CSVParser{}
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xlsm":
		return &XLSXParser{}
	case ".json":
		return &JSONParser{}
	default:
		return nil
	}
}

// AutoParser picks a reader from the path on every call, so a source path
// that changes between runs is handled. A non-empty Format forces the reader
// regardless of the path.
type AutoParser struct {
	Format string
}

// ReadSheet reads the sheet with the reader matching path.
func (p *AutoParser) ReadSheet(ctx context.Context, path, sheet string) ([]entities.Row, error) {
	reader := p.reader(path)
	if reader == nil {
		return nil, &entities.SourceAccessError{Path: path, Err: fmt.Errorf("unsupported workbook format")}
	}
	return reader.ReadSheet(ctx, path, sheet)
}

func (p *AutoParser) reader(path string) ports.WorkbookReader {
	if p.Format != "" {
		return ForFormat(p.Format)
	}
	return ForPath(path)
}

// rowFromStrings converts text cells to a Row. Empty cells become nil, the
// same as cells a reader never returned.
func rowFromStrings(record []string) entities.Row {
	row := make(entities.Row, len(record))
	for i, cell := range record {
		if cell == "" {
			continue
		}
		row[i] = cell
	}
	return row
}
