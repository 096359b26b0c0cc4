package supervisor

import "errors"

// Sentinel errors for Supervisor operations.
var (
	// ErrRequestFailed indicates the Supervisor answered with result "error".
	ErrRequestFailed = errors.New("supervisor: request failed")

	// ErrUnexpectedStatus indicates a non-2xx HTTP status.
	ErrUnexpectedStatus = errors.New("supervisor: unexpected status")

	// ErrInvalidConfig indicates the client configuration is incomplete.
	ErrInvalidConfig = errors.New("supervisor: invalid config")
)
