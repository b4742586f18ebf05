package services

import "fmt"

// KeywordColumns maps keyword-sheet fields to 0-indexed columns.
type KeywordColumns struct {
	Key     int
	Brand   int
	Name    int
	Keyword int
}

// AccordColumns maps accord-sheet fields to 0-indexed columns.
// Name is only used in diagnostics.
type AccordColumns struct {
	Key     int
	Name    int
	Accords int
}

// DefaultKeywordColumns returns the standard keyword-sheet layout.
func DefaultKeywordColumns() KeywordColumns {
	return KeywordColumns{Key: 0, Brand: 1, Name: 2, Keyword: 3}
}

// DefaultAccordColumns returns the standard accord-sheet layout.
func DefaultAccordColumns() AccordColumns {
	return AccordColumns{Key: 0, Name: 2, Accords: 3}
}

// Validate rejects negative or shared column indices.
func (c KeywordColumns) Validate() error {
	return validateColumns("keyword", []namedColumn{
		{"key", c.Key},
		{"brand", c.Brand},
		{"name", c.Name},
		{"keyword", c.Keyword},
	})
}

// Validate rejects negative or shared column indices.
func (c AccordColumns) Validate() error {
	return validateColumns("accord", []namedColumn{
		{"key", c.Key},
		{"name", c.Name},
		{"accords", c.Accords},
	})
}

type namedColumn struct {
	field string
	index int
}

func validateColumns(sheet string, cols []namedColumn) error {
	used := make(map[int]string, len(cols))
	for _, col := range cols {
		if col.index < 0 {
			return fmt.Errorf("%s columns: %s has negative index %d", sheet, col.field, col.index)
		}
		if other, ok := used[col.index]; ok {
			return fmt.Errorf("%s columns: %s and %s share index %d", sheet, other, col.field, col.index)
		}
		used[col.index] = col.field
	}
	return nil
}
