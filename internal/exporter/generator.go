package exporter

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nerrad567/integration-list-exporter/internal/host"
)

// DefaultFilename is the report file name inside the host config directory.
const DefaultFilename = "integration_list.csv"

// Logger defines the logging interface used by the Generator.
// Compatible with *logging.Logger and *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Deps holds the host collaborators a Generator reads from.
type Deps struct {
	Config  host.ConfigRegistry
	Loader  host.IntegrationLoader
	Custom  host.CustomComponentRegistry
	Runtime host.Runtime

	// Supervisor is nil in deployments without an add-on manager.
	Supervisor host.Supervisor
}

// Options tunes report generation.
type Options struct {
	// Filename defaults to DefaultFilename.
	Filename string

	// ConfigDir overrides the directory reported by the host.
	ConfigDir string

	// Now defaults to time.Now. Used for the Generated row.
	Now func() time.Time
}

// Result describes one generation attempt.
type Result struct {
	Path         string
	Integrations int
	Addons       int
	StartedAt    time.Time
	Duration     time.Duration
	Err          error
}

// OK reports whether the report was written.
func (r Result) OK() bool {
	return r.Err == nil
}

// Generator produces the inventory report.
//
// A Generator holds no state between runs apart from its collaborators, so
// concurrent calls are safe; overlapping writes to the same path race and the
// last writer wins.
type Generator struct {
	deps   Deps
	opts   Options
	logger Logger
}

// New creates a Generator.
// Config, Loader, Custom and Runtime are required; Supervisor is optional.
func New(deps Deps, opts Options, logger Logger) (*Generator, error) {
	switch {
	case deps.Config == nil:
		return nil, fmt.Errorf("%w: config registry", ErrMissingDependency)
	case deps.Loader == nil:
		return nil, fmt.Errorf("%w: integration loader", ErrMissingDependency)
	case deps.Custom == nil:
		return nil, fmt.Errorf("%w: custom component registry", ErrMissingDependency)
	case deps.Runtime == nil:
		return nil, fmt.Errorf("%w: runtime", ErrMissingDependency)
	}
	if opts.Filename == "" {
		opts.Filename = DefaultFilename
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Generator{deps: deps, opts: opts, logger: logger}, nil
}

// Generate builds and writes the report. It never returns an error: failures
// are logged and reported as false, leaving any previous report untouched.
func (g *Generator) Generate(ctx context.Context) bool {
	return g.GenerateReport(ctx).OK()
}

// GenerateReport is Generate with the full outcome.
func (g *Generator) GenerateReport(ctx context.Context) Result {
	res := Result{StartedAt: g.opts.Now()}
	start := time.Now()

	path, report, err := g.collect(ctx)
	res.Path = path
	if err == nil {
		var content []byte
		content, err = encodeReport(report, res.StartedAt)
		if err == nil {
			err = writeFile(ctx, path, content)
		}
	}
	res.Duration = time.Since(start)

	if err != nil {
		res.Err = err
		g.logger.Error("report generation failed", "path", path, "error", err)
		return res
	}

	res.Integrations = len(report.Integrations)
	res.Addons = len(report.Addons)
	g.logger.Info("report generated",
		"path", path,
		"integrations", res.Integrations,
		"addons", res.Addons,
		"duration", res.Duration,
	)
	return res
}

// Collect gathers the report without writing it.
func (g *Generator) Collect(ctx context.Context) (*Report, error) {
	_, report, err := g.collect(ctx)
	return report, err
}

func (g *Generator) collect(ctx context.Context) (string, *Report, error) {
	cfg, err := g.deps.Config.Config(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("reading host config: %w", err)
	}

	dir := g.opts.ConfigDir
	if dir == "" {
		dir = cfg.ConfigDir
	}
	if dir == "" {
		return "", nil, ErrNoConfigDir
	}
	path := filepath.Join(dir, g.opts.Filename)

	supervised := g.supervised(ctx)

	report := &Report{
		System: g.systemInfo(ctx, cfg, dir, supervised),
		Addons: g.addons(ctx, supervised),
	}

	report.Integrations, err = g.integrations(ctx, cfg)
	if err != nil {
		return path, nil, err
	}

	sortAddons(report.Addons)
	sortIntegrations(report.Integrations)
	return path, report, nil
}

// supervised reports whether a Supervisor is configured and answering.
func (g *Generator) supervised(ctx context.Context) bool {
	if g.deps.Supervisor == nil {
		return false
	}
	if err := g.deps.Supervisor.Ping(ctx); err != nil {
		g.logger.Debug("supervisor not reachable", "error", err)
		return false
	}
	return true
}
