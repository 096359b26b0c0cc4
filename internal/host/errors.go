package host

import "errors"

// Errors shared by collaborator implementations.
var (
	// ErrNotFound is returned when a domain or resource does not exist on the host.
	ErrNotFound = errors.New("host: not found")

	// ErrUnavailable is returned when a collaborator cannot be reached.
	ErrUnavailable = errors.New("host: unavailable")
)
