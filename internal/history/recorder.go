package history

import (
	"context"

	"github.com/nerrad567/integration-list-exporter/internal/entry"
)

// Logger is the logging interface used by the Recorder.
type Logger interface {
	Warn(msg string, args ...any)
}

// Recorder stores every finished export. It implements entry.Observer.
type Recorder struct {
	repo   Repository
	logger Logger
}

var _ entry.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder writing to repo.
func NewRecorder(repo Repository, logger Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// ExportFinished records run. Storage failures are logged, not returned.
func (r *Recorder) ExportFinished(ctx context.Context, run entry.Run) {
	rec := FromEntryRun(run)
	if err := r.repo.Record(context.WithoutCancel(ctx), &rec); err != nil && r.logger != nil {
		r.logger.Warn("failed to record export run", "entry_id", run.EntryID, "error", err)
	}
}
