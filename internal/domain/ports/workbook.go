// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/etov/internal/domain/entities"
)

// WorkbookReader reads the rows of one sheet of a workbook.
type WorkbookReader interface {
	// ReadSheet returns every row of the sheet, header included.
	// A missing file or sheet yields a *entities.SourceAccessError.
	ReadSheet(ctx context.Context, path, sheet string) ([]entities.Row, error)
}
