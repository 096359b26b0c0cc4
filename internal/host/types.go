package host

import "context"

// Config is the host configuration as reported by the Configuration Registry.
type Config struct {
	// Version is the host platform version, e.g. "2025.10.1".
	Version string

	// ConfigDir is the configuration directory as the host sees it.
	ConfigDir string

	// Components lists the currently loaded component domains.
	Components []string
}

// ConfigEntry is one configured integration instance on the host.
type ConfigEntry struct {
	EntryID string
	Domain  string
	Title   string
}

// Integration describes a resolved integration.
type Integration struct {
	Domain string
	Name   string

	// Version is the integration's own version attribute, empty when unset.
	Version string

	// Manifest is the raw manifest as declared by the integration.
	Manifest map[string]any
}

// ManifestVersion returns the version declared in the manifest, or "".
func (i Integration) ManifestVersion() string {
	if i.Manifest == nil {
		return ""
	}
	v, _ := i.Manifest["version"].(string)
	return v
}

// Addon is one add-on as reported by the Supervisor.
// Empty fields mean the Supervisor did not report them.
type Addon struct {
	Name    string
	Slug    string
	Version string
}

// SupervisorInfo is the Supervisor's own version data.
type SupervisorInfo struct {
	Version string
	Channel string
}

// SystemInfo is the Supervisor's overview of the installation.
type SystemInfo struct {
	Arch            string
	Docker          string
	OperatingSystem string
}

// HostInfo describes the machine the Supervisor runs on.
// Disk sizes are in GB; nil means the Supervisor did not report the value.
type HostInfo struct {
	OperatingSystem string
	Deployment      string
	Chassis         string
	AgentVersion    string
	DiskTotal       *float64
	DiskUsed        *float64
	DiskFree        *float64
}

// OSInfo describes the host operating system image.
type OSInfo struct {
	Version string
	Board   string
}

// CoreInfo describes the core container managed by the Supervisor.
type CoreInfo struct {
	Version string
	Machine string
}

// ConfigRegistry supplies the host configuration and configured entries.
type ConfigRegistry interface {
	Config(ctx context.Context) (Config, error)
	ConfigEntries(ctx context.Context) ([]ConfigEntry, error)
}

// IntegrationLoader resolves a domain to its integration descriptor.
// It may fail for individual domains.
type IntegrationLoader interface {
	Integration(ctx context.Context, domain string) (Integration, error)
}

// CustomComponentRegistry supplies the domains not bundled with the host.
type CustomComponentRegistry interface {
	CustomDomains(ctx context.Context) ([]string, error)
}

// Runtime supplies facts about the process running the host platform.
// Each fact is fetched independently.
type Runtime interface {
	RuntimeVersion(ctx context.Context) (string, error)
	RunAsRoot(ctx context.Context) (bool, error)
	VirtualEnv(ctx context.Context) (bool, error)
}

// Supervisor is the add-on manager present in supervised deployments.
// Any call may fail; callers degrade to sentinel values.
type Supervisor interface {
	Ping(ctx context.Context) error
	Info(ctx context.Context) (SystemInfo, error)
	SupervisorInfo(ctx context.Context) (SupervisorInfo, error)
	HostInfo(ctx context.Context) (HostInfo, error)
	OSInfo(ctx context.Context) (OSInfo, error)
	CoreInfo(ctx context.Context) (CoreInfo, error)
	Addons(ctx context.Context) ([]Addon, error)
}
