package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/nerrad567/integration-list-exporter/internal/host"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultRetryMax = 2
	retryWaitMin    = 250 * time.Millisecond
	retryWaitMax    = 2 * time.Second
)

// Logger defines the logging interface used by the Client.
// It satisfies retryablehttp.LeveledLogger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds connection settings.
type Config struct {
	URL      string
	Token    string
	Timeout  time.Duration
	RetryMax int
}

// Client talks to the Supervisor.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Client struct {
	base  string
	token string
	http  *retryablehttp.Client
}

var _ host.Supervisor = (*Client)(nil)

// New creates a Client.
func New(cfg Config, logger Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = defaultRetryMax
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = retryWaitMin
	rc.RetryWaitMax = retryWaitMax
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = nil
	if logger != nil {
		rc.Logger = retryablehttp.LeveledLogger(logger)
	}

	return &Client{
		base:  strings.TrimRight(cfg.URL, "/"),
		token: cfg.Token,
		http:  rc,
	}, nil
}

// envelope is the wrapper around every Supervisor response.
type envelope struct {
	Result  string          `json:"result"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %w", host.ErrUnavailable, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && env.Message != "" {
			return fmt.Errorf("%w: GET %s: %d: %s", ErrUnexpectedStatus, path, resp.StatusCode, env.Message)
		}
		return fmt.Errorf("%w: GET %s: %d", ErrUnexpectedStatus, path, resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("decoding %s: %w", path, decodeErr)
	}
	if env.Result != "ok" {
		return fmt.Errorf("%w: GET %s: %s", ErrRequestFailed, path, env.Message)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding %s data: %w", path, err)
	}
	return nil
}

// Ping checks that the Supervisor is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/supervisor/ping", nil)
}

// Info returns the installation overview.
func (c *Client) Info(ctx context.Context) (host.SystemInfo, error) {
	var data struct {
		Arch            string `json:"arch"`
		Docker          string `json:"docker"`
		OperatingSystem string `json:"operating_system"`
	}
	if err := c.get(ctx, "/info", &data); err != nil {
		return host.SystemInfo{}, err
	}
	return host.SystemInfo(data), nil
}

// SupervisorInfo returns the Supervisor's version and update channel.
func (c *Client) SupervisorInfo(ctx context.Context) (host.SupervisorInfo, error) {
	var data struct {
		Version string `json:"version"`
		Channel string `json:"channel"`
	}
	if err := c.get(ctx, "/supervisor/info", &data); err != nil {
		return host.SupervisorInfo{}, err
	}
	return host.SupervisorInfo(data), nil
}

// HostInfo returns facts about the host machine. Disk sizes are in GB.
func (c *Client) HostInfo(ctx context.Context) (host.HostInfo, error) {
	var data struct {
		OperatingSystem string   `json:"operating_system"`
		Deployment      string   `json:"deployment"`
		Chassis         string   `json:"chassis"`
		AgentVersion    string   `json:"agent_version"`
		DiskTotal       *float64 `json:"disk_total"`
		DiskUsed        *float64 `json:"disk_used"`
		DiskFree        *float64 `json:"disk_free"`
	}
	if err := c.get(ctx, "/host/info", &data); err != nil {
		return host.HostInfo{}, err
	}
	return host.HostInfo(data), nil
}

// OSInfo returns the operating system image version and board.
func (c *Client) OSInfo(ctx context.Context) (host.OSInfo, error) {
	var data struct {
		Version string `json:"version"`
		Board   string `json:"board"`
	}
	if err := c.get(ctx, "/os/info", &data); err != nil {
		return host.OSInfo{}, err
	}
	return host.OSInfo(data), nil
}

// CoreInfo returns the core container's version and machine type.
func (c *Client) CoreInfo(ctx context.Context) (host.CoreInfo, error) {
	var data struct {
		Version string `json:"version"`
		Machine string `json:"machine"`
	}
	if err := c.get(ctx, "/core/info", &data); err != nil {
		return host.CoreInfo{}, err
	}
	return host.CoreInfo(data), nil
}

// Addons lists installed add-ons.
func (c *Client) Addons(ctx context.Context) ([]host.Addon, error) {
	var data struct {
		Addons []struct {
			Name    string `json:"name"`
			Slug    string `json:"slug"`
			Version string `json:"version"`
		} `json:"addons"`
	}
	if err := c.get(ctx, "/addons", &data); err != nil {
		return nil, err
	}

	addons := make([]host.Addon, 0, len(data.Addons))
	for _, a := range data.Addons {
		addons = append(addons, host.Addon(a))
	}
	return addons, nil
}
