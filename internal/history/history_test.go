package history

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/integration-list-exporter/internal/entry"
	"github.com/nerrad567/integration-list-exporter/internal/exporter"
	"github.com/nerrad567/integration-list-exporter/internal/infrastructure/database"
	"github.com/nerrad567/integration-list-exporter/migrations"
)

func setupTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "history.db"),
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestFromEntryRun(t *testing.T) {
	started := time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC)

	ok := FromEntryRun(entry.Run{
		EntryID: "ent-a",
		Trigger: entry.TriggerTimer,
		Result: exporter.Result{
			Path:         "/config/integration_list.csv",
			Integrations: 42,
			Addons:       3,
			StartedAt:    started,
			Duration:     1500 * time.Millisecond,
		},
	})
	if !strings.HasPrefix(ok.ID, idPrefix) {
		t.Errorf("ID = %q, want run- prefix", ok.ID)
	}
	if ok.Status != StatusSuccess || ok.Trigger != "timer" || ok.Integrations != 42 || ok.Error != "" {
		t.Errorf("FromEntryRun(success) = %+v", ok)
	}
	if want := started.Add(1500 * time.Millisecond); !ok.FinishedAt.Equal(want) {
		t.Errorf("FinishedAt = %v, want %v", ok.FinishedAt, want)
	}

	failed := FromEntryRun(entry.Run{
		EntryID: "ent-a",
		Trigger: entry.TriggerCommand,
		Result:  exporter.Result{StartedAt: started, Err: errors.New("listing config entries: boom")},
	})
	if failed.Status != StatusFailed || failed.Error != "listing config entries: boom" {
		t.Errorf("FromEntryRun(failed) = %+v", failed)
	}
}

func TestSQLiteRepository_RecordAndList(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC)

	runs := []Run{
		{EntryID: "ent-a", Trigger: "startup", Status: StatusSuccess, StartedAt: base, FinishedAt: base.Add(time.Second)},
		{EntryID: "ent-b", Trigger: "timer", Status: StatusFailed, Error: "boom", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour)},
		{EntryID: "ent-a", Trigger: "command", Status: StatusSuccess, Integrations: 7, StartedAt: base.Add(2 * time.Hour), FinishedAt: base.Add(2 * time.Hour)},
	}
	for i := range runs {
		if err := repo.Record(ctx, &runs[i]); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if runs[i].ID == "" {
			t.Error("Record() left ID empty")
		}
	}

	recent, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(recent) != 2 || recent[0].Trigger != "command" || recent[1].Trigger != "timer" {
		t.Errorf("ListRecent(2) = %+v", recent)
	}
	if recent[0].Integrations != 7 || !recent[0].StartedAt.Equal(base.Add(2*time.Hour)) {
		t.Errorf("ListRecent()[0] = %+v", recent[0])
	}

	byEntry, err := repo.ListByEntry(ctx, "ent-a", 0)
	if err != nil {
		t.Fatalf("ListByEntry() error = %v", err)
	}
	if len(byEntry) != 2 || byEntry[0].Trigger != "command" || byEntry[1].Trigger != "startup" {
		t.Errorf("ListByEntry(ent-a) = %+v", byEntry)
	}

	none, err := repo.ListByEntry(ctx, "ent-missing", 10)
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("ListByEntry(missing) = %v, %v, want empty non-nil slice", none, err)
	}
}

type failingRepo struct{ Repository }

func (failingRepo) Record(context.Context, *Run) error { return errors.New("disk full") }

type captureLogger struct{ warned int }

func (l *captureLogger) Warn(string, ...any) { l.warned++ }

func TestRecorder(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	rec := NewRecorder(repo, nil)
	rec.ExportFinished(ctx, entry.Run{
		EntryID: "ent-a",
		Trigger: entry.TriggerStartup,
		Result:  exporter.Result{StartedAt: time.Now()},
	})

	runs, err := repo.ListByEntry(ctx, "ent-a", 10)
	if err != nil || len(runs) != 1 || runs[0].Trigger != "startup" {
		t.Errorf("recorded runs = %+v, %v", runs, err)
	}

	log := &captureLogger{}
	NewRecorder(failingRepo{}, log).ExportFinished(ctx, entry.Run{EntryID: "ent-a"})
	if log.warned != 1 {
		t.Errorf("warnings = %d, want 1", log.warned)
	}
}
