package services

import (
	"github.com/ersonp/etov/internal/domain/entities"
)

// KeywordRow is a normalized keyword-sheet row.
type KeywordRow struct {
	Row       int // 1-indexed sheet row
	Code      string
	BrandName string
	Name      string
	Keyword   string
}

// AccordRow is a normalized accord-sheet row.
type AccordRow struct {
	Row        int // 1-indexed sheet row
	Code       string
	Name       string
	Accords    string
	HasAccords bool // false when the accord cell is empty or past the end of the row
}

// NormalizeKeywordRows drops the header and blank rows and maps the rest
// onto the keyword columns. Only the key is required: a brand, name or
// keyword cell that is empty or past the end of the row reads as "".
func NormalizeKeywordRows(sheet string, rows []entities.Row, cols KeywordColumns) ([]KeywordRow, error) {
	out := make([]KeywordRow, 0, len(rows))
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if row.IsBlank() {
			continue
		}
		rowNum := i + 1

		code, err := requireKey(sheet, rowNum, row, cols.Key)
		if err != nil {
			return nil, err
		}

		out = append(out, KeywordRow{
			Row:       rowNum,
			Code:      code,
			BrandName: row.String(cols.Brand),
			Name:      row.String(cols.Name),
			Keyword:   row.String(cols.Keyword),
		})
	}
	return out, nil
}

// NormalizeAccordRows drops the header and blank rows and maps the rest onto
// the accord columns. Only the key column is required.
func NormalizeAccordRows(sheet string, rows []entities.Row, cols AccordColumns) ([]AccordRow, error) {
	out := make([]AccordRow, 0, len(rows))
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if row.IsBlank() {
			continue
		}
		rowNum := i + 1

		code, err := requireKey(sheet, rowNum, row, cols.Key)
		if err != nil {
			return nil, err
		}

		accords := row.String(cols.Accords)
		out = append(out, AccordRow{
			Row:        rowNum,
			Code:       code,
			Name:       row.String(cols.Name),
			Accords:    accords,
			HasAccords: accords != "",
		})
	}
	return out, nil
}

func requireKey(sheet string, rowNum int, row entities.Row, col int) (string, error) {
	key := row.String(col)
	if key == "" {
		return "", &entities.RowError{Sheet: sheet, Row: rowNum, Column: col, Field: "key", Message: "empty key"}
	}
	return key, nil
}
