package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/integration-list-exporter/internal/entry"
	"github.com/nerrad567/integration-list-exporter/internal/history"
	"github.com/nerrad567/integration-list-exporter/internal/infrastructure/config"
	"github.com/nerrad567/integration-list-exporter/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// EntryManager manages configured entries. *entry.Manager satisfies it.
type EntryManager interface {
	Entries() []entry.Entry
	Add(ctx context.Context, title, updateTime string) (entry.Entry, error)
	Remove(ctx context.Context, entryID string) error
}

// ServiceCaller invokes registered commands. *entry.Services satisfies it.
type ServiceCaller interface {
	Call(ctx context.Context, domain, name string) error
}

// HealthChecker reports whether a dependency is usable.
type HealthChecker func(ctx context.Context) error

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Entries  EntryManager
	Services ServiceCaller
	History  history.Repository

	// Metrics serves /metrics when set.
	Metrics http.Handler

	// Checks are reported by the health endpoint, keyed by dependency name.
	Checks map[string]HealthChecker

	// OnRemove runs after an entry was deleted.
	OnRemove func(entryID string)

	Version string
}

// Server is the HTTP API server.
type Server struct {
	cfg      config.APIConfig
	secCfg   config.SecurityConfig
	logger   *logging.Logger
	entries  EntryManager
	services ServiceCaller
	history  history.Repository
	metrics  http.Handler
	checks   map[string]HealthChecker
	onRemove func(string)
	version  string
	server   *http.Server
}

// New creates a server. It does not listen until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Entries == nil {
		return nil, fmt.Errorf("entry manager is required")
	}
	if deps.Services == nil {
		return nil, fmt.Errorf("service registry is required")
	}

	return &Server{
		cfg:      deps.Config,
		secCfg:   deps.Security,
		logger:   deps.Logger,
		entries:  deps.Entries,
		services: deps.Services,
		history:  deps.History,
		metrics:  deps.Metrics,
		checks:   deps.Checks,
		onRemove: deps.OnRemove,
		version:  deps.Version,
	}, nil
}

// Handler returns the router. Exposed for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start binds the listener and serves in the background. Binding happens
// synchronously so a port clash is reported to the caller.
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port)),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	s.logger.Info("API server listening", "address", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Close waits up to gracefulShutdownTimeout for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
