package backend

import "errors"

var (
	// ErrNotConfigured indicates no base URL was provided.
	ErrNotConfigured = errors.New("backend not configured")

	// ErrUnavailable indicates the API server is unreachable.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("backend request timed out")

	// ErrStatus indicates the server answered with a non-retryable status.
	ErrStatus = errors.New("backend rejected request")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("backend retry attempts exhausted")
)
