package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

// Section headers and fixed rows.
const (
	sectionSystem      = "System Information"
	rowGenerated       = "Generated"
	timestampLayout    = "2006-01-02 15:04:05"
	noAddonsMessage    = "No add-ons installed or supervisor not available"
	customYes          = "Yes"
	customNo           = "No"
	headerAddonName    = "Add-on Name"
	headerVersion      = "Version"
	headerIntegration  = "Integration Name"
	headerCustomColumn = "Custom Integration"
)

// encodeReport renders r as CSV. Sections must already be sorted.
func encodeReport(r *Report, generated time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	rows := [][]string{
		{sectionSystem},
		{rowGenerated, generated.Format(timestampLayout)},
	}
	for _, k := range r.System.Keys() {
		v, _ := r.System.Get(k)
		rows = append(rows, []string{k, v})
	}

	rows = append(rows, []string{}, []string{headerAddonName, headerVersion})
	if len(r.Addons) == 0 {
		rows = append(rows, []string{noAddonsMessage, ""})
	}
	for _, a := range r.Addons {
		rows = append(rows, []string{a.Name, a.Version})
	}

	rows = append(rows, []string{}, []string{headerIntegration, headerVersion, headerCustomColumn})
	for _, i := range r.Integrations {
		custom := customNo
		if i.IsCustom {
			custom = customYes
		}
		rows = append(rows, []string{i.Name, i.Version, custom})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("encoding csv: %w", err)
	}
	return buf.Bytes(), nil
}
