package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/integration-list-exporter/internal/infrastructure/config"
)

// Default timeouts for InfluxDB operations.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultPingTimeout    = 5 * time.Second
	defaultWriteTimeout   = 5 * time.Second
)

// Client wraps the InfluxDB v2 client for writing one point per export run.
//
// Writes go through the blocking write API: the exporter produces a single
// point per run, so batching would only delay errors past the run that
// caused them.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking // bound to cfg.Org and cfg.Bucket
	cfg      config.InfluxDBConfig

	// connected is cleared by Close; there is no reconnect.
	connected bool
	mu        sync.RWMutex
}

// Connect creates a client and verifies the server answers a ping.
//
// Parameters:
//   - cfg: The influxdb section of the exporter config
//
// Returns:
//   - *Client: A client whose writes target cfg.Org/cfg.Bucket
//   - error: ErrDisabled when cfg.Enabled is false, ErrConnectionFailed when
//     the ping fails or the server reports itself unhealthy
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPRequestTimeout(uint(defaultWriteTimeout/time.Second)))

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	return &Client{
		client:    client,
		writeAPI:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		cfg:       cfg,
		connected: true,
	}, nil
}

// Close shuts down the underlying client. Safe to call more than once and on
// a zero Client. Writes after Close fail with ErrNotConnected.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return nil
	}
	c.connected = false
	c.client.Close()
	return nil
}

// HealthCheck pings the server, bounded by defaultPingTimeout.
//
// Returns:
//   - error: ErrNotConnected after Close, a wrapped ping error, or nil
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := c.client.Ping(checkCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check failed: server not healthy")
	}
	return nil
}

// IsConnected returns the last known connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
