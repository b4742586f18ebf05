// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/ersonp/etov/internal/domain/entities"
)

// WorkbookReader is a mock implementation of ports.WorkbookReader.
type WorkbookReader struct {
	Sheets map[string][]entities.Row
	Err    error

	// Call tracking
	ReadCalls []string
}

// ReadSheet returns the configured rows for the sheet.
func (m *WorkbookReader) ReadSheet(ctx context.Context, path, sheet string) ([]entities.Row, error) {
	m.ReadCalls = append(m.ReadCalls, sheet)
	if m.Err != nil {
		return nil, m.Err
	}
	rows, ok := m.Sheets[sheet]
	if !ok {
		return nil, &entities.SourceAccessError{Path: path, Sheet: sheet, Err: entities.ErrSheetNotFound}
	}
	return rows, nil
}
