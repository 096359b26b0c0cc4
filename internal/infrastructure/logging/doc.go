// Package logging provides structured logging for the Integration List Exporter.
//
// It wraps Go's standard log/slog package so every component logs with the
// same default fields (service, version) and level filtering.
//
// Configuration comes from the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("report written", "path", path, "integrations", 42)
//
// Never log access tokens. The Home Assistant and Supervisor tokens grant
// administrative access to the host.
package logging
