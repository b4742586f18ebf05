package entities

import (
	"fmt"
	"strconv"
)

// Row is one spreadsheet row as returned by a workbook reader.
// Cells are strings, numbers, bools or nil; cells past the end are absent.
type Row []any

// Cell returns the cell at index and whether it exists in the row.
func (r Row) Cell(index int) (any, bool) {
	if index < 0 || index >= len(r) {
		return nil, false
	}
	return r[index], true
}

// String returns the cell at index coerced to a string.
// Absent and nil cells yield "".
func (r Row) String(index int) string {
	v, ok := r.Cell(index)
	if !ok {
		return ""
	}
	return CellString(v)
}

// IsBlank reports whether every cell is nil or an empty string.
func (r Row) IsBlank() bool {
	for _, cell := range r {
		if cell == nil {
			continue
		}
		if s, ok := cell.(string); ok && s == "" {
			continue
		}
		return false
	}
	return true
}

// CellString coerces a raw cell value to its string form.
// Floats use the shortest representation, so 1001.0 becomes "1001".
func CellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(c), 'f', -1, 32)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprint(c)
	}
}
