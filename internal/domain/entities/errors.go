package entities

import (
	"errors"
	"fmt"
)

// ErrSheetNotFound is wrapped by SourceAccessError when the workbook has no
// sheet with the requested name.
var ErrSheetNotFound = errors.New("sheet not found")

// SourceAccessError reports a workbook that could not be opened or read.
type SourceAccessError struct {
	Path  string
	Sheet string
	Err   error
}

func (e *SourceAccessError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("reading sheet %q of %s: %v", e.Sheet, e.Path, e.Err)
	}
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *SourceAccessError) Unwrap() error {
	return e.Err
}

// RowError reports a non-blank row that does not fit the configured columns.
type RowError struct {
	Sheet   string
	Row     int // 1-indexed sheet row
	Column  int // 0-indexed column
	Field   string
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("sheet %q row %d: %s (column %d): %s", e.Sheet, e.Row, e.Field, e.Column, e.Message)
}

// StoreWriteError reports a failed folder or file operation on the note store.
type StoreWriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}
