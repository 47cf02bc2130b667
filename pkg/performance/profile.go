package performance

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
)

// ProfileConfig selects the pprof profiles captured around a run. Empty
// paths disable the matching profile.
type ProfileConfig struct {
	CPUFile string
	MemFile string
	// Dir receives one <name>.prof per entry of Extra (block, mutex, goroutine)
	Dir   string
	Extra []string
}

// Enabled reports whether any profile was requested
func (c ProfileConfig) Enabled() bool {
	return c.CPUFile != "" || c.MemFile != "" || len(c.Extra) > 0
}

// Profiler captures the profiles described by a ProfileConfig
type Profiler struct {
	cfg     ProfileConfig
	cpuFile *os.File
}

// ParseProfileTypes splits a comma separated list of extra profile names,
// dropping blanks and duplicates.
func ParseProfileTypes(s string) ([]string, error) {
	seen := make(map[string]bool)
	var types []string
	for _, t := range strings.Split(s, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		switch t {
		case "block", "mutex", "goroutine":
		default:
			return nil, fmt.Errorf("unknown profile type %q", t)
		}
		seen[t] = true
		types = append(types, t)
	}
	return types, nil
}

// StartProfiler begins CPU profiling if configured and arms the block and
// mutex samplers the extra profiles need.
func StartProfiler(cfg ProfileConfig) (*Profiler, error) {
	p := &Profiler{cfg: cfg}

	if cfg.CPUFile != "" {
		f, err := os.Create(cfg.CPUFile) //nolint:gosec // G304: path comes from the operator
		if err != nil {
			return nil, fmt.Errorf("failed to create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to start CPU profile: %w", err)
		}
		p.cpuFile = f
	}

	for _, t := range cfg.Extra {
		switch t {
		case "block":
			runtime.SetBlockProfileRate(1)
		case "mutex":
			runtime.SetMutexProfileFraction(1)
		}
	}
	return p, nil
}

// Stop ends CPU profiling and writes the heap and extra profiles. It returns
// the first error but attempts every profile.
func (p *Profiler) Stop() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		keep(p.cpuFile.Close())
		p.cpuFile = nil
	}

	if p.cfg.MemFile != "" {
		runtime.GC() // up-to-date statistics
		keep(writeProfile("heap", p.cfg.MemFile))
	}

	for _, t := range p.cfg.Extra {
		dir := p.cfg.Dir
		if dir == "" {
			dir = "."
		}
		keep(writeProfile(t, filepath.Join(dir, t+".prof")))
		switch t {
		case "block":
			runtime.SetBlockProfileRate(0)
		case "mutex":
			runtime.SetMutexProfileFraction(0)
		}
	}
	return firstErr
}

func writeProfile(name, path string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return fmt.Errorf("profile %s not available", name)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create profile directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // G304: path comes from the operator
	if err != nil {
		return fmt.Errorf("failed to create %s profile: %w", name, err)
	}
	if err := prof.WriteTo(f, 0); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s profile: %w", name, err)
	}
	return f.Close()
}
