package homeassistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/nerrad567/integration-list-exporter/internal/host"
)

const defaultTimeout = 10 * time.Second

// Logger defines the logging interface used by the Client.
// It satisfies retryablehttp.LeveledLogger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config holds connection settings.
type Config struct {
	// URL is the base URL, e.g. "http://homeassistant.local:8123".
	URL string

	// Token is a long-lived access token.
	Token string

	// Timeout bounds each REST request and WebSocket command.
	Timeout time.Duration
}

// Client talks to one Home Assistant instance.
//
// Thread Safety:
//   - All methods are safe for concurrent use. WebSocket commands are
//     serialised over a single connection.
type Client struct {
	base    *url.URL
	token   string
	timeout time.Duration
	http    *retryablehttp.Client
	dialer  *websocket.Dialer
	logger  Logger

	mu     sync.Mutex
	ws     *websocket.Conn
	nextID int
	closed bool
}

var (
	_ host.ConfigRegistry          = (*Client)(nil)
	_ host.IntegrationLoader       = (*Client)(nil)
	_ host.CustomComponentRegistry = (*Client)(nil)
	_ host.Runtime                 = (*Client)(nil)
)

// New creates a Client. No connection is made until the first call.
func New(cfg Config, logger Logger) (*Client, error) {
	if cfg.URL == "" || cfg.Token == "" {
		return nil, fmt.Errorf("%w: url and token are required", ErrInvalidConfig)
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing url: %w", ErrInvalidConfig, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidConfig, base.Scheme)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = noopLogger{}
	}

	// Core answers from in-memory registries; a failed request is reported
	// as-is rather than retried, with the response passed through untouched.
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = retryablehttp.LeveledLogger(logger)

	return &Client{
		base:    base,
		token:   cfg.Token,
		timeout: cfg.Timeout,
		http:    rc,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.Timeout,
		},
		logger: logger,
	}, nil
}

// Close drops the WebSocket connection. Further calls fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.dropLocked()
}

// apiConfig mirrors the subset of GET /api/config the exporter reads.
type apiConfig struct {
	Version    string   `json:"version"`
	ConfigDir  string   `json:"config_dir"`
	Components []string `json:"components"`
}

// Config returns the host version, config directory and loaded components.
func (c *Client) Config(ctx context.Context) (host.Config, error) {
	var cfg apiConfig
	if err := c.get(ctx, "/api/config", &cfg); err != nil {
		return host.Config{}, err
	}

	// Platform registrations are listed as "<domain>.<platform>" next to
	// their base domains and do not resolve to an integration.
	domains := make([]string, 0, len(cfg.Components))
	for _, comp := range cfg.Components {
		if strings.Contains(comp, ".") {
			continue
		}
		domains = append(domains, comp)
	}

	return host.Config{
		Version:    cfg.Version,
		ConfigDir:  cfg.ConfigDir,
		Components: domains,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %w", host.ErrUnavailable, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrAuthFailed
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: GET %s: %d", ErrUnexpectedStatus, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
