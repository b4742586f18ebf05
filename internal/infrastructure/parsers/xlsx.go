package parsers

import (
	"context"

	"github.com/xuri/excelize/v2"

	"github.com/ersonp/etov/internal/domain/entities"
)

// XLSXParser reads sheets from an Excel workbook.
type XLSXParser struct{}

// ReadSheet returns the rows of the named sheet. Cells come back as their
// displayed text; trailing empty cells of a row are omitted.
func (p *XLSXParser) ReadSheet(ctx context.Context, path, sheet string) ([]entities.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &entities.SourceAccessError{Path: path, Err: err}
	}
	defer f.Close()

	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, &entities.SourceAccessError{Path: path, Sheet: sheet, Err: err}
	}
	if index < 0 {
		return nil, &entities.SourceAccessError{Path: path, Sheet: sheet, Err: entities.ErrSheetNotFound}
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, &entities.SourceAccessError{Path: path, Sheet: sheet, Err: err}
	}

	rows := make([]entities.Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, rowFromStrings(record))
	}
	return rows, nil
}
