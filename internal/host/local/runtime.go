// Package local reads runtime facts about a Home Assistant core process
// running on the same machine as the exporter.
//
// It is used when the core's system health data is unavailable (for example
// with the system_health integration disabled) and the exporter shares a
// process namespace with the core, as in Core installs on a plain Linux host.
package local

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/nerrad567/integration-list-exporter/internal/host"
)

// Process is the subset of a gopsutil process the Runtime inspects.
type Process interface {
	NameWithContext(ctx context.Context) (string, error)
	CmdlineSliceWithContext(ctx context.Context) ([]string, error)
	ExeWithContext(ctx context.Context) (string, error)
	UidsWithContext(ctx context.Context) ([]int32, error)
}

// Lister enumerates running processes.
type Lister func(ctx context.Context) ([]Process, error)

// Runtime implements host.Runtime from the local process table.
type Runtime struct {
	list Lister
}

var _ host.Runtime = (*Runtime)(nil)

// New returns a Runtime backed by the system process table.
func New() *Runtime {
	return NewWithLister(systemProcesses)
}

// NewWithLister returns a Runtime backed by list. Used by tests.
func NewWithLister(list Lister) *Runtime {
	return &Runtime{list: list}
}

func systemProcesses(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Process, len(procs))
	for i, p := range procs {
		out[i] = p
	}
	return out, nil
}

// core finds the Python process running Home Assistant.
func (r *Runtime) core(ctx context.Context) (Process, error) {
	procs, err := r.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || !strings.HasPrefix(name, "python") && name != "hass" {
			continue
		}
		args, err := p.CmdlineSliceWithContext(ctx)
		if err != nil {
			continue
		}
		if isCoreCommand(args) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: home assistant process", host.ErrNotFound)
}

// isCoreCommand matches "python -m homeassistant ..." and the "hass" entry point.
func isCoreCommand(args []string) bool {
	for i, a := range args {
		if filepath.Base(a) == "hass" {
			return true
		}
		if a == "-m" && i+1 < len(args) && args[i+1] == "homeassistant" {
			return true
		}
	}
	return false
}

// RunAsRoot reports whether the core's effective uid is 0.
func (r *Runtime) RunAsRoot(ctx context.Context) (bool, error) {
	p, err := r.core(ctx)
	if err != nil {
		return false, err
	}
	uids, err := p.UidsWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("reading uids: %w", err)
	}
	// real, effective, saved, filesystem
	if len(uids) < 2 {
		return false, fmt.Errorf("%w: effective uid", host.ErrNotFound)
	}
	return uids[1] == 0, nil
}

// VirtualEnv reports whether the core's interpreter lives in a virtualenv.
func (r *Runtime) VirtualEnv(ctx context.Context) (bool, error) {
	p, err := r.core(ctx)
	if err != nil {
		return false, err
	}
	exe, err := p.ExeWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("reading executable: %w", err)
	}
	_, err = os.Stat(venvConfig(exe))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, err
	}
}

var interpreterVersion = regexp.MustCompile(`^python(\d+\.\d+)$`)

// RuntimeVersion returns the core interpreter's version. The full version is
// read from pyvenv.cfg when available, otherwise major.minor from the
// interpreter's file name.
func (r *Runtime) RuntimeVersion(ctx context.Context) (string, error) {
	p, err := r.core(ctx)
	if err != nil {
		return "", err
	}
	exe, err := p.ExeWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("reading executable: %w", err)
	}

	if v, err := readVenvVersion(venvConfig(exe)); err == nil && v != "" {
		return v, nil
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	if m := interpreterVersion.FindStringSubmatch(filepath.Base(exe)); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: interpreter version", host.ErrNotFound)
}

// venvConfig is <venv>/pyvenv.cfg for an interpreter at <venv>/bin/python.
func venvConfig(exe string) string {
	return filepath.Join(filepath.Dir(filepath.Dir(exe)), "pyvenv.cfg")
}

func readVenvVersion(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var version string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "version_info":
			return strings.TrimSpace(value), nil
		case "version":
			version = strings.TrimSpace(value)
		}
	}
	return version, sc.Err()
}
