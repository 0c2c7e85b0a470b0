package dao

import "errors"

// Common, reusable store errors. Sentinel variables let callers detect
// conditions via errors.Is instead of brittle string comparisons.

var (
	// ErrNotFound is returned when the requested task does not exist in the
	// underlying storage.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates that the supplied task id is empty or otherwise
	// invalid.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilTask is returned when the caller attempts to persist a nil task.
	ErrNilTask = errors.New("dao: nil task")
)
