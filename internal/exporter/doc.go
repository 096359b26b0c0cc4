// Package exporter generates the integration inventory report.
//
// A Generator collects host system metadata, enumerates add-ons (when a
// Supervisor is present) and integrations, and writes the result as CSV into
// the host configuration directory, replacing the previous report.
//
// # Failure handling
//
// Failures are isolated at three independent granularities:
//
//   - The supervised-mode block: any Supervisor query failure sets every
//     Supervisor-derived key to "Unknown".
//   - Individual runtime facts: a failure affects only that key.
//   - Individual domains: a resolution failure drops that integration.
//
// Only whole-phase failures (host configuration, entry list or custom
// component list unavailable) abort a run. An aborted run never touches the
// existing report file.
//
// # Output layout
//
//	System Information
//	Generated,2026-10-18 03:00:00
//	Home Assistant Version,2025.10.1
//	...
//
//	Add-on Name,Version
//	File editor,5.8.0
//
//	Integration Name,Version,Custom Integration
//	HACS,2.0.1,Yes
//	Philips Hue,2025.10.1,No
package exporter
