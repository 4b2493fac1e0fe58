package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record in the collection has the requested id.
var ErrNotFound = errors.New("record not found")

// RepositoryError wraps errors with the operation, collection and record involved.
type RepositoryError struct {
	// Op is the operation that failed (e.g., "FetchOne", "Update").
	Op string

	// Collection is the collection the operation targeted.
	Collection string

	// ID is the record id, if the operation addressed a single record.
	ID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("repository: %s %s/%s failed: %v", e.Op, e.Collection, e.ID, e.Err)
	}
	return fmt.Sprintf("repository: %s %s failed: %v", e.Op, e.Collection, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func notFound(op, collection, id string) error {
	return &RepositoryError{Op: op, Collection: collection, ID: id, Err: ErrNotFound}
}
