package homeassistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/integration-list-exporter/internal/host"
)

// coreHealth is the "homeassistant" domain of system_health/info.
type coreHealth struct {
	PythonVersion string `json:"python_version"`
	RunAsRoot     *bool  `json:"run_as_root"`
	Virtualenv    *bool  `json:"virtualenv"`
}

type healthEvent struct {
	Type string `json:"type"`
	Data map[string]struct {
		Info json.RawMessage `json:"info"`
	} `json:"data"`
}

func (c *Client) coreHealth(ctx context.Context) (coreHealth, error) {
	raw, err := c.subscribeFirst(ctx, map[string]any{"type": "system_health/info"})
	if err != nil {
		return coreHealth{}, err
	}

	var ev healthEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return coreHealth{}, fmt.Errorf("decoding system health: %w", err)
	}
	domain, ok := ev.Data["homeassistant"]
	if !ok || len(domain.Info) == 0 {
		return coreHealth{}, fmt.Errorf("%w: system health has no homeassistant domain", host.ErrNotFound)
	}

	var h coreHealth
	if err := json.Unmarshal(domain.Info, &h); err != nil {
		return coreHealth{}, fmt.Errorf("decoding homeassistant health: %w", err)
	}
	return h, nil
}

// RuntimeVersion returns the core's Python version.
func (c *Client) RuntimeVersion(ctx context.Context) (string, error) {
	h, err := c.coreHealth(ctx)
	if err != nil {
		return "", err
	}
	if h.PythonVersion == "" {
		return "", fmt.Errorf("%w: python_version", host.ErrNotFound)
	}
	return h.PythonVersion, nil
}

// RunAsRoot reports whether the core runs as root.
func (c *Client) RunAsRoot(ctx context.Context) (bool, error) {
	h, err := c.coreHealth(ctx)
	if err != nil {
		return false, err
	}
	if h.RunAsRoot == nil {
		return false, fmt.Errorf("%w: run_as_root", host.ErrNotFound)
	}
	return *h.RunAsRoot, nil
}

// VirtualEnv reports whether the core runs inside a Python virtualenv.
func (c *Client) VirtualEnv(ctx context.Context) (bool, error) {
	h, err := c.coreHealth(ctx)
	if err != nil {
		return false, err
	}
	if h.Virtualenv == nil {
		return false, fmt.Errorf("%w: virtualenv", host.ErrNotFound)
	}
	return *h.Virtualenv, nil
}
