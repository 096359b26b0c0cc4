// Package database provides SQLite connectivity for the exporter's local state.
//
// The database holds two things: the configured exporter entries and the
// history of report generation runs. Report content itself is never stored;
// the CSV on disk is the only copy.
//
// This package manages:
//   - Connection setup with WAL mode and busy timeout
//   - Forward-only schema migrations read from an fs.FS
//   - Health checks
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
