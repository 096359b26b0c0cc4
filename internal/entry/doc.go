// Package entry manages configured exporter instances.
//
// An Entry is one configured instance of the exporter with its own daily
// update time. The Manager owns the lifecycle of loaded entries:
//
//   - Setup builds a report generator for the entry, stores it in the
//     per-instance store, runs an initial export, starts the daily timer and
//     registers the export_integrations command.
//   - Unload stops the timer and removes the entry from the store. The
//     command is removed once no entry remains loaded.
//
// Entries are persisted through a Repository so they survive restarts.
//
// Concurrency: timers and the on-demand command are not mutually exclusive.
// Two exports running at once write the same file and the last one wins.
package entry
