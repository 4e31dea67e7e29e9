package domain

import "errors"

// Domain errors - every failure the core can report is one of these kinds
// Lower layers wrap them with fmt.Errorf("...: %w", ...) and callers check
// them with errors.Is, so the transport layer can map kinds to status codes
var (
	// ErrInvalidInput is returned by Shorten for an empty or malformed URL
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict means the candidate id is already taken by a different URL
	// The service retries with a new candidate; it never reaches the caller
	// unless wrapped inside ErrIDSpaceExhausted
	ErrConflict = errors.New("short id already in use")

	// ErrIDSpaceExhausted is returned when every allowed attempt collided
	ErrIDSpaceExhausted = errors.New("could not allocate a free short id")

	// ErrNotFound is returned when no mapping has the requested id
	ErrNotFound = errors.New("short id not found")

	// ErrStorage wraps I/O, corruption and connection failures of the store
	ErrStorage = errors.New("storage error")

	// ErrStorageInit wraps failures to open the store or create its schema
	ErrStorageInit = errors.New("storage initialization error")
)
