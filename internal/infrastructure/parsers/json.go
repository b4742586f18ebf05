package parsers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ersonp/etov/internal/domain/entities"
)

// JSONParser reads a workbook stored as a JSON object mapping sheet names to
// arrays of rows, e.g. {"Keywords": [["code", "brand"], ["A", "BrandX"]]}.
// Cells may be strings, numbers, booleans or null.
type JSONParser struct{}

// ReadSheet decodes the file and returns the named sheet.
func (p *JSONParser) ReadSheet(ctx context.Context, path, sheet string) ([]entities.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &entities.SourceAccessError{Path: path, Err: err}
	}
	defer file.Close()

	var workbook map[string][]entities.Row
	if err := json.NewDecoder(file).Decode(&workbook); err != nil {
		return nil, &entities.SourceAccessError{Path: path, Err: fmt.Errorf("parsing JSON: %w", err)}
	}

	rows, ok := workbook[sheet]
	if !ok {
		return nil, &entities.SourceAccessError{Path: path, Sheet: sheet, Err: entities.ErrSheetNotFound}
	}
	return rows, nil
}
