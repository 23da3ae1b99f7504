package ingest

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrTruncatedDocument = errors.New("truncated document")
	ErrExternalEntity    = errors.New("external entity markup rejected")
	ErrUnknownFormat     = errors.New("unknown input format")
	ErrMissingImdata     = errors.New("missing imdata envelope")
	ErrNoRecords         = errors.New("no records decoded")
)

// ParseError provides structured error information for ingestion failures.
type ParseError struct {
	Op     string // Operation that failed (e.g., "DecodeJSON", "LoadFile")
	Source string // File path or format name
	Offset int64  // Byte offset into the input (if known)
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("%s %s (offset %d): %v", e.Op, e.Source, e.Offset, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Source, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *ParseError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

func parseError(op, source string, cause error) error {
	return &ParseError{Op: op, Source: source, Cause: cause}
}

// IsRejectedMarkup returns true when the error indicates XXE-style markup.
func IsRejectedMarkup(err error) bool {
	return errors.Is(err, ErrExternalEntity)
}
