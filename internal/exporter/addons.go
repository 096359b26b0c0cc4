package exporter

import "context"

// addons lists installed add-ons. The section is empty outside supervised
// deployments or when the add-on list cannot be fetched.
func (g *Generator) addons(ctx context.Context, supervised bool) []AddonRecord {
	if !supervised {
		return nil
	}
	list, err := g.deps.Supervisor.Addons(ctx)
	if err != nil {
		g.logger.Debug("add-on list unavailable", "error", err)
		return nil
	}

	records := make([]AddonRecord, 0, len(list))
	for _, a := range list {
		records = append(records, AddonRecord{
			Name:    orUnknown(a.Name),
			Version: orUnknown(a.Version),
		})
	}
	return records
}
