// Package notify fans export outcomes out to external systems and feeds
// external commands back in.
//
// Each type here implements entry.Observer for one sink:
//   - StatusPublisher: retained JSON status on MQTT
//   - InfluxRecorder: one inventory_report point per run
//   - Metrics: Prometheus counters and gauges served on /metrics
//
// CommandListener is the inbound side: it subscribes to MQTT command topics
// and calls the matching registered command.
//
// Sink failures are logged and never change the export outcome.
package notify
