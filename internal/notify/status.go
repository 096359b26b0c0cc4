package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nerrad567/integration-list-exporter/internal/entry"
	"github.com/nerrad567/integration-list-exporter/internal/infrastructure/mqtt"
)

// RetainedPublisher publishes retained messages. *mqtt.Client satisfies it.
type RetainedPublisher interface {
	PublishRetained(topic string, payload []byte) error
}

// ReportStatus is the JSON payload on the report status topic.
type ReportStatus struct {
	EntryID      string `json:"entry_id"`
	Trigger      string `json:"trigger"`
	Status       string `json:"status"`
	Path         string `json:"path,omitempty"`
	Integrations int    `json:"integrations"`
	Addons       int    `json:"addons"`
	DurationMS   int64  `json:"duration_ms"`
	Error        string `json:"error,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// StatusPublisher publishes the outcome of every export as a retained message,
// so a subscriber joining later still sees the latest run.
type StatusPublisher struct {
	pub    RetainedPublisher
	topic  string
	logger Logger
}

var _ entry.Observer = (*StatusPublisher)(nil)

// NewStatusPublisher creates a publisher on the report status topic.
func NewStatusPublisher(pub RetainedPublisher, logger Logger) *StatusPublisher {
	return &StatusPublisher{
		pub:    pub,
		topic:  mqtt.Topics{}.ReportStatus(),
		logger: orNoop(logger),
	}
}

// ExportFinished publishes run.
func (p *StatusPublisher) ExportFinished(_ context.Context, run entry.Run) {
	msg := ReportStatus{
		EntryID:      run.EntryID,
		Trigger:      string(run.Trigger),
		Status:       status(run),
		Integrations: run.Result.Integrations,
		Addons:       run.Result.Addons,
		DurationMS:   run.Result.Duration.Milliseconds(),
		Timestamp:    run.Result.StartedAt.Add(run.Result.Duration).UTC().Format(time.RFC3339),
	}
	if run.Result.OK() {
		msg.Path = run.Result.Path
	} else {
		msg.Error = run.Result.Err.Error()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		p.logger.Warn("failed to encode report status", "entry_id", run.EntryID, "error", err)
		return
	}
	if err := p.pub.PublishRetained(p.topic, payload); err != nil {
		p.logger.Warn("failed to publish report status", "entry_id", run.EntryID, "error", err)
	}
}
