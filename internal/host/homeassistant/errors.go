package homeassistant

import "errors"

// Sentinel errors for Home Assistant operations.
var (
	// ErrAuthFailed indicates the access token was rejected.
	ErrAuthFailed = errors.New("homeassistant: authentication failed")

	// ErrCommandFailed indicates a WebSocket command returned success=false.
	ErrCommandFailed = errors.New("homeassistant: command failed")

	// ErrUnexpectedStatus indicates a REST call returned a non-2xx status.
	ErrUnexpectedStatus = errors.New("homeassistant: unexpected status")

	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("homeassistant: client closed")

	// ErrInvalidConfig indicates the client configuration is incomplete.
	ErrInvalidConfig = errors.New("homeassistant: invalid config")
)
