package exporter

import (
	"context"
	"fmt"

	"github.com/nerrad567/integration-list-exporter/internal/host"
)

// integrations resolves every configured and loaded domain exactly once.
//
// Configured entries are walked first, then loaded components not yet seen.
// A domain that fails to resolve is dropped; only a failure to list custom
// domains or configured entries aborts the phase.
func (g *Generator) integrations(ctx context.Context, cfg host.Config) ([]IntegrationRecord, error) {
	customList, err := g.deps.Custom.CustomDomains(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing custom components: %w", err)
	}
	custom := make(map[string]struct{}, len(customList))
	for _, d := range customList {
		custom[d] = struct{}{}
	}

	entries, err := g.deps.Config.ConfigEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing config entries: %w", err)
	}

	seen := make(map[string]struct{})
	var records []IntegrationRecord

	add := func(domain, source string) {
		if _, ok := seen[domain]; ok {
			return
		}
		rec, err := g.resolve(ctx, domain, custom, cfg.Version)
		if err != nil {
			g.logger.Debug("could not load integration", "domain", domain, "source", source, "error", err)
			return
		}
		seen[domain] = struct{}{}
		records = append(records, rec)
	}

	for _, e := range entries {
		add(e.Domain, "config_entry")
	}
	for _, domain := range cfg.Components {
		add(domain, "component")
	}

	return records, nil
}

func (g *Generator) resolve(ctx context.Context, domain string, custom map[string]struct{}, hostVersion string) (IntegrationRecord, error) {
	integ, err := g.deps.Loader.Integration(ctx, domain)
	if err != nil {
		return IntegrationRecord{}, err
	}
	_, isCustom := custom[domain]

	name := integ.Name
	if name == "" {
		name = domain
	}

	return IntegrationRecord{
		Name:     name,
		Domain:   domain,
		Version:  resolveVersion(integ, isCustom, hostVersion),
		IsCustom: isCustom,
	}, nil
}

// resolveVersion picks the explicit version, then the manifest version, then
// the host version for bundled integrations, then N/A.
func resolveVersion(integ host.Integration, isCustom bool, hostVersion string) string {
	if integ.Version != "" {
		return integ.Version
	}
	if v := integ.ManifestVersion(); v != "" {
		return v
	}
	if !isCustom && hostVersion != "" {
		return hostVersion
	}
	return NotApplicable
}
