package ingest

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for file extensions with no reader or exporter.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseError reports a malformed input file. Line is 1-based and zero when
// the position is unknown.
type ParseError struct {
	File string
	Line int
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExportError reports a failure while writing rows.
type ExportError struct {
	Format   Format
	RowCount int
	Cause    error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s, row_count=%d]: %v", e.Format, e.RowCount, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ExportError) Unwrap() error {
	return e.Cause
}
