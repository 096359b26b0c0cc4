package homeassistant

import (
	"context"

	"github.com/nerrad567/integration-list-exporter/internal/host"
)

type configEntry struct {
	EntryID string `json:"entry_id"`
	Domain  string `json:"domain"`
	Title   string `json:"title"`
}

// ConfigEntries lists every configured integration instance.
func (c *Client) ConfigEntries(ctx context.Context) ([]host.ConfigEntry, error) {
	var raw []configEntry
	if err := c.command(ctx, map[string]any{"type": "config_entries/get"}, &raw); err != nil {
		return nil, err
	}

	entries := make([]host.ConfigEntry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, host.ConfigEntry(e))
	}
	return entries, nil
}

// Integration loads the manifest for domain.
// The WebSocket API exposes no version outside the manifest, so Version is
// left empty and callers read ManifestVersion.
func (c *Client) Integration(ctx context.Context, domain string) (host.Integration, error) {
	var manifest map[string]any
	cmd := map[string]any{"type": "manifest/get", "integration": domain}
	if err := c.command(ctx, cmd, &manifest); err != nil {
		return host.Integration{}, err
	}

	name, _ := manifest["name"].(string)
	return host.Integration{
		Domain:   domain,
		Name:     name,
		Manifest: manifest,
	}, nil
}

type manifestSummary struct {
	Domain    string `json:"domain"`
	IsBuiltIn *bool  `json:"is_built_in"`
}

// CustomDomains returns the domains of integrations not bundled with the core.
func (c *Client) CustomDomains(ctx context.Context) ([]string, error) {
	var list []manifestSummary
	if err := c.command(ctx, map[string]any{"type": "manifest/list"}, &list); err != nil {
		return nil, err
	}

	var domains []string
	for _, m := range list {
		if m.IsBuiltIn != nil && !*m.IsBuiltIn {
			domains = append(domains, m.Domain)
		}
	}
	return domains, nil
}
