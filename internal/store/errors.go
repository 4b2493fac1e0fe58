package store

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable is matched by every failure of the underlying backend.
var ErrStorageUnavailable = errors.New("storage unavailable")

// StoreError wraps a backend failure with the operation and collection involved.
type StoreError struct {
	// Op is the operation that failed (e.g., "Get", "Put").
	Op string

	// Collection is the collection being accessed, if any.
	Collection string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("store: %s %q failed: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("store: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports every StoreError as ErrStorageUnavailable.
func (e *StoreError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, collection string, err error) *StoreError {
	return &StoreError{
		Op:         op,
		Collection: collection,
		Err:        err,
	}
}

// wrapStoreError wraps err as a StoreError unless it already is one.
func wrapStoreError(op, collection string, err error) error {
	if err == nil {
		return nil
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}

	return NewStoreError(op, collection, err)
}
