package exporter

import (
	"context"
	"errors"

	"github.com/nerrad567/integration-list-exporter/internal/host"
)

var errBoom = errors.New("boom")

type fakeConfig struct {
	cfg        host.Config
	cfgErr     error
	entries    []host.ConfigEntry
	entriesErr error
}

func (f *fakeConfig) Config(context.Context) (host.Config, error) {
	return f.cfg, f.cfgErr
}

func (f *fakeConfig) ConfigEntries(context.Context) ([]host.ConfigEntry, error) {
	return f.entries, f.entriesErr
}

type fakeLoader struct {
	integrations map[string]host.Integration
	failing      map[string]bool
	calls        map[string]int
}

func (f *fakeLoader) Integration(_ context.Context, domain string) (host.Integration, error) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[domain]++
	if f.failing[domain] {
		return host.Integration{}, errBoom
	}
	integ, ok := f.integrations[domain]
	if !ok {
		return host.Integration{}, host.ErrNotFound
	}
	return integ, nil
}

type fakeCustom struct {
	domains []string
	err     error
}

func (f *fakeCustom) CustomDomains(context.Context) ([]string, error) {
	return f.domains, f.err
}

type fakeRuntime struct {
	version    string
	versionErr error
	root       bool
	rootErr    error
	venv       bool
	venvErr    error
}

func (f *fakeRuntime) RuntimeVersion(context.Context) (string, error) {
	return f.version, f.versionErr
}

func (f *fakeRuntime) RunAsRoot(context.Context) (bool, error) {
	return f.root, f.rootErr
}

func (f *fakeRuntime) VirtualEnv(context.Context) (bool, error) {
	return f.venv, f.venvErr
}

type fakeSupervisor struct {
	pingErr   error
	info      host.SystemInfo
	infoErr   error
	sup       host.SupervisorInfo
	supErr    error
	host      host.HostInfo
	hostErr   error
	os        host.OSInfo
	osErr     error
	core      host.CoreInfo
	coreErr   error
	addons    []host.Addon
	addonsErr error
}

func (f *fakeSupervisor) Ping(context.Context) error { return f.pingErr }

func (f *fakeSupervisor) Info(context.Context) (host.SystemInfo, error) { return f.info, f.infoErr }

func (f *fakeSupervisor) SupervisorInfo(context.Context) (host.SupervisorInfo, error) {
	return f.sup, f.supErr
}

func (f *fakeSupervisor) HostInfo(context.Context) (host.HostInfo, error) {
	return f.host, f.hostErr
}

func (f *fakeSupervisor) OSInfo(context.Context) (host.OSInfo, error) { return f.os, f.osErr }

func (f *fakeSupervisor) CoreInfo(context.Context) (host.CoreInfo, error) {
	return f.core, f.coreErr
}

func (f *fakeSupervisor) Addons(context.Context) ([]host.Addon, error) {
	return f.addons, f.addonsErr
}

func float(v float64) *float64 { return &v }

// healthySupervisor reports a fully populated supervised installation.
func healthySupervisor() *fakeSupervisor {
	return &fakeSupervisor{
		info: host.SystemInfo{Arch: "aarch64", Docker: "27.2.0"},
		sup:  host.SupervisorInfo{Version: "2025.10.0", Channel: "stable"},
		host: host.HostInfo{
			OperatingSystem: "Home Assistant OS 16.2",
			Deployment:      "production",
			AgentVersion:    "1.7.2",
			DiskTotal:       float(28.0),
			DiskUsed:        float(9.5),
			DiskFree:        float(18.5),
		},
		os:   host.OSInfo{Version: "16.2", Board: "rpi4-64"},
		core: host.CoreInfo{Version: "2025.10.1", Machine: "raspberrypi4-64"},
	}
}
