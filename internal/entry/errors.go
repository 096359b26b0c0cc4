package entry

import "errors"

// Domain errors for the entry package.
var (
	// ErrInvalidTime is returned when an update time is not a valid HH:MM.
	ErrInvalidTime = errors.New("entry: invalid update time")

	// ErrEntryNotFound is returned when an entry ID does not exist.
	ErrEntryNotFound = errors.New("entry: not found")

	// ErrEntryExists is returned when creating an entry with an ID that already exists.
	ErrEntryExists = errors.New("entry: already exists")

	// ErrAlreadyLoaded is returned when setting up an entry that is already loaded.
	ErrAlreadyLoaded = errors.New("entry: already loaded")

	// ErrNotLoaded is returned when unloading an entry that is not loaded.
	ErrNotLoaded = errors.New("entry: not loaded")

	// ErrServiceNotFound is returned when calling a command that is not registered.
	ErrServiceNotFound = errors.New("entry: service not found")

	// ErrNoRepository is returned by persistence operations on a Manager without a Repository.
	ErrNoRepository = errors.New("entry: no repository")
)
