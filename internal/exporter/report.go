package exporter

import (
	"sort"
	"strings"
)

// Sentinel values written in place of facts that are unavailable.
const (
	Unknown       = "Unknown"
	NotApplicable = "N/A"
)

// System information keys, in output order.
const (
	KeyHostVersion        = "Home Assistant Version"
	KeyRuntimeVersion     = "Python Version"
	KeyConfigDirectory    = "Config Directory"
	KeySupervisor         = "Supervisor"
	KeyDocker             = "Docker"
	KeyOSFamily           = "Operating System Family"
	KeyOSVersion          = "Operating System Version"
	KeyCPUArchitecture    = "CPU Architecture"
	KeyHostOS             = "Host Operating System"
	KeyUpdateChannel      = "Supervisor Update Channel"
	KeySupervisorVersion  = "Supervisor Version"
	KeyAgentVersion       = "Agent Version"
	KeyDockerVersion      = "Docker Version"
	KeyDiskTotal          = "Disk Total"
	KeyDiskUsed           = "Disk Used"
	KeyDiskHealthy        = "Disk Healthy"
	KeyBoard              = "Board"
	KeyUserRoot           = "User Root"
	KeyVirtualEnvironment = "Virtual Environment"
)

// supervisedKeys are the keys derived from the Supervisor block, in output order.
var supervisedKeys = []string{
	KeyDocker,
	KeyOSFamily,
	KeyOSVersion,
	KeyCPUArchitecture,
	KeyHostOS,
	KeyUpdateChannel,
	KeySupervisorVersion,
	KeyAgentVersion,
	KeyDockerVersion,
	KeyDiskTotal,
	KeyDiskUsed,
	KeyDiskHealthy,
	KeyBoard,
}

// SystemInfo is an insertion-ordered string map.
// Setting an existing key updates its value in place.
type SystemInfo struct {
	keys   []string
	values map[string]string
}

// NewSystemInfo returns an empty SystemInfo.
func NewSystemInfo() *SystemInfo {
	return &SystemInfo{values: make(map[string]string)}
}

// Set stores value under key.
func (s *SystemInfo) Set(key, value string) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Get returns the value for key and whether it is present.
func (s *SystemInfo) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (s *SystemInfo) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of keys.
func (s *SystemInfo) Len() int {
	return len(s.keys)
}

// AddonRecord is one add-on row.
type AddonRecord struct {
	Name    string
	Version string
}

// IntegrationRecord is one integration row. Domain is unique within a report.
type IntegrationRecord struct {
	Name     string
	Domain   string
	Version  string
	IsCustom bool
}

// Report is the in-memory form of the CSV file.
type Report struct {
	System       *SystemInfo
	Addons       []AddonRecord
	Integrations []IntegrationRecord
}

// sortAddons orders add-ons case-insensitively by name.
func sortAddons(addons []AddonRecord) {
	sort.SliceStable(addons, func(i, j int) bool {
		a, b := strings.ToLower(addons[i].Name), strings.ToLower(addons[j].Name)
		if a != b {
			return a < b
		}
		return addons[i].Version < addons[j].Version
	})
}

// sortIntegrations orders integrations case-insensitively by name.
// Ties fall back to domain so output is stable across runs.
func sortIntegrations(records []IntegrationRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := strings.ToLower(records[i].Name), strings.ToLower(records[j].Name)
		if a != b {
			return a < b
		}
		return records[i].Domain < records[j].Domain
	})
}
