package exporter

import "errors"

// Errors returned by the report generator.
var (
	// ErrMissingDependency is returned by New when a required collaborator is nil.
	ErrMissingDependency = errors.New("exporter: missing dependency")

	// ErrNoConfigDir is returned when neither the host nor the override supply a config directory.
	ErrNoConfigDir = errors.New("exporter: no config directory")
)
