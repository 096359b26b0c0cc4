package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/integration-list-exporter/internal/entry"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// idPrefix marks run IDs.
const idPrefix = "run-"

// timestampLayout is fixed-width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// defaultLimit caps ListRecent when no limit is given.
const defaultLimit = 50

// Run is one recorded export.
type Run struct {
	ID           string    `json:"id"`
	EntryID      string    `json:"entry_id"`
	Trigger      string    `json:"trigger"`
	Status       string    `json:"status"`
	Path         string    `json:"path"`
	Integrations int       `json:"integrations"`
	Addons       int       `json:"addons"`
	Error        string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// FromEntryRun converts a finished export into a Run with a fresh ID.
func FromEntryRun(r entry.Run) Run {
	run := Run{
		ID:           idPrefix + uuid.New().String(),
		EntryID:      r.EntryID,
		Trigger:      string(r.Trigger),
		Status:       StatusSuccess,
		Path:         r.Result.Path,
		Integrations: r.Result.Integrations,
		Addons:       r.Result.Addons,
		StartedAt:    r.Result.StartedAt.UTC(),
		FinishedAt:   r.Result.StartedAt.Add(r.Result.Duration).UTC(),
	}
	if r.Result.Err != nil {
		run.Status = StatusFailed
		run.Error = r.Result.Err.Error()
	}
	return run
}

// Repository stores runs.
type Repository interface {
	Record(ctx context.Context, run *Run) error
	ListRecent(ctx context.Context, limit int) ([]Run, error)
	ListByEntry(ctx context.Context, entryID string, limit int) ([]Run, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const runColumns = `id, entry_id, trigger, status, path, integrations, addons, error, started_at, finished_at`

// Record inserts run. An empty ID is filled in.
func (r *SQLiteRepository) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = idPrefix + uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.EntryID, run.Trigger, run.Status, run.Path,
		run.Integrations, run.Addons, run.Error,
		run.StartedAt.UTC().Format(timestampLayout),
		run.FinishedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// ListRecent returns the most recent runs across all entries, newest first.
func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	return r.query(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`,
		clampLimit(limit))
}

// ListByEntry returns the most recent runs of one entry, newest first.
func (r *SQLiteRepository) ListByEntry(ctx context.Context, entryID string, limit int) ([]Run, error) {
	return r.query(ctx,
		`SELECT `+runColumns+` FROM runs WHERE entry_id = ? ORDER BY started_at DESC, id LIMIT ?`,
		entryID, clampLimit(limit))
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			run               Run
			started, finished string
		)
		if err := rows.Scan(&run.ID, &run.EntryID, &run.Trigger, &run.Status, &run.Path,
			&run.Integrations, &run.Addons, &run.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if run.StartedAt, err = time.Parse(timestampLayout, started); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		if run.FinishedAt, err = time.Parse(timestampLayout, finished); err != nil {
			return nil, fmt.Errorf("parsing finished_at: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}
