package parsers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ersonp/etov/internal/domain/entities"
)

// CSVParser reads a workbook stored as a directory holding one
// <sheet>.csv file per sheet.
type CSVParser struct{}

// ReadSheet reads <path>/<sheet>.csv.
func (p *CSVParser) ReadSheet(ctx context.Context, path, sheet string) ([]entities.Row, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &entities.SourceAccessError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return nil, &entities.SourceAccessError{Path: path, Err: errors.New("csv workbook must be a directory")}
	}

	file, err := os.Open(filepath.Join(path, sheet+".csv"))
	if os.IsNotExist(err) {
		return nil, &entities.SourceAccessError{Path: path, Sheet: sheet, Err: entities.ErrSheetNotFound}
	}
	if err != nil {
		return nil, &entities.SourceAccessError{Path: path, Sheet: sheet, Err: err}
	}
	defer file.Close()

	rows, err := p.readRecords(csv.NewReader(file))
	if err != nil {
		return nil, &entities.SourceAccessError{Path: path, Sheet: sheet, Err: err}
	}
	return rows, nil
}

// readRecords reads all rows, header included. Rows may differ in length.
func (p *CSVParser) readRecords(reader *csv.Reader) ([]entities.Row, error) {
	reader.FieldsPerRecord = -1

	var rows []entities.Row
	lineNum := 0

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		rows = append(rows, rowFromStrings(record))
	}

	return rows, nil
}
