package exporter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/integration-list-exporter/internal/host"
)

// NotSupervisedHostOS is the Host Operating System value outside supervised deployments.
const NotSupervisedHostOS = "N/A (Container/Core)"

// healthyFreeRatio is the free-space share above which the disk counts as healthy.
const healthyFreeRatio = 0.10

func (g *Generator) systemInfo(ctx context.Context, cfg host.Config, dir string, supervised bool) *SystemInfo {
	info := NewSystemInfo()

	info.Set(KeyHostVersion, orUnknown(cfg.Version))

	runtimeVersion, err := g.deps.Runtime.RuntimeVersion(ctx)
	if err != nil {
		g.logger.Debug("runtime version unavailable", "error", err)
	}
	info.Set(KeyRuntimeVersion, orUnknown(runtimeVersion))

	info.Set(KeyConfigDirectory, dir)
	info.Set(KeySupervisor, boolString(supervised))

	if supervised {
		g.supervisedFacts(ctx, info)
	} else {
		setNotSupervised(info)
	}

	info.Set(KeyUserRoot, g.runtimeFlag(ctx, "run_as_root", g.deps.Runtime.RunAsRoot))
	info.Set(KeyVirtualEnvironment, g.runtimeFlag(ctx, "virtualenv", g.deps.Runtime.VirtualEnv))

	return info
}

// supervisedFacts fills the Supervisor block. All sub-queries must succeed;
// otherwise every key in the block is Unknown.
func (g *Generator) supervisedFacts(ctx context.Context, info *SystemInfo) {
	facts, err := g.querySupervisor(ctx)
	if err != nil {
		g.logger.Debug("supervisor facts unavailable", "error", err)
		for _, k := range supervisedKeys {
			info.Set(k, Unknown)
		}
		return
	}

	info.Set(KeyDocker, "True")
	info.Set(KeyOSFamily, orUnknown(facts.host.OperatingSystem))
	info.Set(KeyOSVersion, orUnknown(facts.os.Version))
	info.Set(KeyCPUArchitecture, orUnknown(facts.system.Arch))
	info.Set(KeyHostOS, orUnknown(facts.host.Deployment))
	info.Set(KeyUpdateChannel, orUnknown(facts.supervisor.Channel))
	info.Set(KeySupervisorVersion, orUnknown(facts.supervisor.Version))
	info.Set(KeyAgentVersion, orUnknown(facts.host.AgentVersion))
	info.Set(KeyDockerVersion, orUnknown(facts.system.Docker))
	info.Set(KeyDiskTotal, gigabytes(facts.host.DiskTotal))
	info.Set(KeyDiskUsed, gigabytes(facts.host.DiskUsed))
	info.Set(KeyDiskHealthy, diskHealthy(facts.host.DiskTotal, facts.host.DiskFree))
	info.Set(KeyBoard, orUnknown(facts.os.Board))
}

type supervisorFacts struct {
	system     host.SystemInfo
	supervisor host.SupervisorInfo
	host       host.HostInfo
	os         host.OSInfo
}

func (g *Generator) querySupervisor(ctx context.Context) (supervisorFacts, error) {
	var (
		f   supervisorFacts
		err error
	)
	sup := g.deps.Supervisor
	if f.host, err = sup.HostInfo(ctx); err != nil {
		return f, fmt.Errorf("host info: %w", err)
	}
	if f.supervisor, err = sup.SupervisorInfo(ctx); err != nil {
		return f, fmt.Errorf("supervisor info: %w", err)
	}
	if _, err = sup.CoreInfo(ctx); err != nil {
		return f, fmt.Errorf("core info: %w", err)
	}
	if f.os, err = sup.OSInfo(ctx); err != nil {
		return f, fmt.Errorf("os info: %w", err)
	}
	if f.system, err = sup.Info(ctx); err != nil {
		return f, fmt.Errorf("system info: %w", err)
	}
	return f, nil
}

func setNotSupervised(info *SystemInfo) {
	info.Set(KeyDocker, "False")
	info.Set(KeyOSFamily, Unknown)
	info.Set(KeyOSVersion, Unknown)
	info.Set(KeyCPUArchitecture, Unknown)
	info.Set(KeyHostOS, NotSupervisedHostOS)
	info.Set(KeyUpdateChannel, NotApplicable)
	info.Set(KeySupervisorVersion, NotApplicable)
	info.Set(KeyAgentVersion, NotApplicable)
	info.Set(KeyDockerVersion, Unknown)
	info.Set(KeyDiskTotal, Unknown)
	info.Set(KeyDiskUsed, Unknown)
	info.Set(KeyDiskHealthy, Unknown)
	info.Set(KeyBoard, NotApplicable)
}

func (g *Generator) runtimeFlag(ctx context.Context, name string, fetch func(context.Context) (bool, error)) string {
	v, err := fetch(ctx)
	if err != nil {
		g.logger.Debug("runtime fact unavailable", "fact", name, "error", err)
		return Unknown
	}
	return boolString(v)
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

func boolString(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// gigabytes renders v the way the Supervisor's float would print, keeping
// every significant digit and at least one decimal place. Zero is unknown.
func gigabytes(v *float64) string {
	if v == nil || *v == 0 {
		return Unknown
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s + " GB"
}

func diskHealthy(total, free *float64) string {
	if total == nil || free == nil || *total <= 0 || *free == 0 {
		return Unknown
	}
	return boolString(*free / *total > healthyFreeRatio)
}
