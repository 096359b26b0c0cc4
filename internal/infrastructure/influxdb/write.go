package influxdb

import (
	"context"
	"fmt"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementReport is the measurement written for every generation run.
const MeasurementReport = "inventory_report"

// ReportPoint describes one generation run.
type ReportPoint struct {
	EntryID      string
	Trigger      string
	Status       string
	Integrations int
	Addons       int
	Duration     time.Duration
	Time         time.Time
}

// point converts r into line protocol form. Tags stay low cardinality:
// one series per entry, trigger and status.
func (r ReportPoint) point() *write.Point {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	return write.NewPoint(
		MeasurementReport,
		map[string]string{
			"entry_id": r.EntryID,
			"trigger":  r.Trigger,
			"status":   r.Status,
		},
		map[string]any{
			"integrations": r.Integrations,
			"addons":       r.Addons,
			"duration_ms":  r.Duration.Milliseconds(),
		},
		ts,
	)
}

// WriteReport writes one inventory_report point and waits for the server.
func (c *Client) WriteReport(ctx context.Context, r ReportPoint) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if err := c.writeAPI.WritePoint(ctx, r.point()); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
