package domain

import "errors"

// Store error kinds. Callers classify with errors.Is; the store never
// retries or recovers, every failure is surfaced verbatim.
var (
	// ErrNotFound is returned by single-entity reads when the requested
	// thread or item does not exist. List reads and deletes never return
	// it; they substitute empty results or no-ops.
	ErrNotFound = errors.New("not found")

	// ErrUnsupported marks operations the store permanently refuses to
	// perform. Not retryable.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrInvalidArgument marks malformed request parameters, such as an
	// unrecognized sort order.
	ErrInvalidArgument = errors.New("invalid argument")
)
