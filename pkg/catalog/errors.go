package catalog

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrDatasetExists   = errors.New("dataset already exists")
	ErrEmptyName       = errors.New("dataset name is empty")
	ErrCorruptIndex    = errors.New("corrupt catalog index")
	ErrCorruptBatch    = errors.New("corrupt record batch")
)

// StoreError provides structured error information for catalog failures.
type StoreError struct {
	Op      string // Operation that failed (e.g., "CreateDataset", "AppendBatch")
	Dataset string // Dataset id or name involved
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Dataset != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Dataset, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *StoreError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

func storeError(op, dataset string, cause error) error {
	return &StoreError{Op: op, Dataset: dataset, Cause: cause}
}
