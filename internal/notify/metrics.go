package notify

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/integration-list-exporter/internal/entry"
)

const metricsNamespace = "integrationexporter"

// Metrics exposes export outcomes to Prometheus.
//
// Each Metrics owns its registry so tests and multiple instances never
// collide on the global default registerer.
type Metrics struct {
	registry *prometheus.Registry

	runs               *prometheus.CounterVec
	duration           prometheus.Histogram
	integrations       *prometheus.GaugeVec
	addons             *prometheus.GaugeVec
	lastSuccessSeconds *prometheus.GaugeVec
}

var _ entry.Observer = (*Metrics)(nil)

// NewMetrics registers the exporter metrics plus the Go and process
// collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "runs_total",
				Help:      "Total number of report generations.",
			},
			[]string{"trigger", "status"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Report generation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		integrations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "last_integrations",
				Help:      "Integrations listed in the last successful report.",
			},
			[]string{"entry_id"},
		),
		addons: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "last_addons",
				Help:      "Add-ons listed in the last successful report.",
			},
			[]string{"entry_id"},
		),
		lastSuccessSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful report.",
			},
			[]string{"entry_id"},
		),
	}

	m.registry.MustRegister(
		m.runs, m.duration, m.integrations, m.addons, m.lastSuccessSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ExportFinished updates the metrics for run. Gauges only move on success so
// a failed run does not zero the last known inventory size.
func (m *Metrics) ExportFinished(_ context.Context, run entry.Run) {
	m.runs.WithLabelValues(string(run.Trigger), status(run)).Inc()
	m.duration.Observe(run.Result.Duration.Seconds())

	if !run.Result.OK() {
		return
	}
	m.integrations.WithLabelValues(run.EntryID).Set(float64(run.Result.Integrations))
	m.addons.WithLabelValues(run.EntryID).Set(float64(run.Result.Addons))
	finished := run.Result.StartedAt.Add(run.Result.Duration)
	m.lastSuccessSeconds.WithLabelValues(run.EntryID).Set(float64(finished.Unix()))
}

// Forget drops the per-entry series of a removed entry.
func (m *Metrics) Forget(entryID string) {
	m.integrations.DeleteLabelValues(entryID)
	m.addons.DeleteLabelValues(entryID)
	m.lastSuccessSeconds.DeleteLabelValues(entryID)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
