// Package history keeps a log of report exports.
//
// Every export, whether started at startup, by the daily timer or by the
// export_integrations command, is recorded as a Run in SQLite. The HTTP API
// serves the log at GET /api/v1/runs.
package history
