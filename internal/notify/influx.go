package notify

import (
	"context"
	"time"

	"github.com/nerrad567/integration-list-exporter/internal/entry"
	"github.com/nerrad567/integration-list-exporter/internal/infrastructure/influxdb"
)

const influxWriteTimeout = 5 * time.Second

// PointWriter writes report points. *influxdb.Client satisfies it.
type PointWriter interface {
	WriteReport(ctx context.Context, r influxdb.ReportPoint) error
}

// InfluxRecorder writes every export as an inventory_report point.
type InfluxRecorder struct {
	w      PointWriter
	logger Logger
}

var _ entry.Observer = (*InfluxRecorder)(nil)

// NewInfluxRecorder creates a recorder writing through w.
func NewInfluxRecorder(w PointWriter, logger Logger) *InfluxRecorder {
	return &InfluxRecorder{w: w, logger: orNoop(logger)}
}

// ExportFinished writes run. The write outlives cancellation of ctx so a
// shutdown mid-export still records the run.
func (r *InfluxRecorder) ExportFinished(ctx context.Context, run entry.Run) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), influxWriteTimeout)
	defer cancel()

	err := r.w.WriteReport(writeCtx, influxdb.ReportPoint{
		EntryID:      run.EntryID,
		Trigger:      string(run.Trigger),
		Status:       status(run),
		Integrations: run.Result.Integrations,
		Addons:       run.Result.Addons,
		Duration:     run.Result.Duration,
		Time:         run.Result.StartedAt,
	})
	if err != nil {
		r.logger.Warn("failed to write report metrics", "entry_id", run.EntryID, "error", err)
	}
}
