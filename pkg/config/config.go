// Package config provides the configuration system for wordsmith.
//
// Values are resolved, highest precedence first, from command line flags,
// WORDSMITH_ environment variables, an optional YAML file and built-in
// defaults. The configuration is organized into logical sections:
//   - Transform: which stages run and their caps
//   - Length / Count: augmentation parameters
//   - Runtime: workers, buffering and the memory watchdog
//   - Logging: level and encoding
//   - Observability: metrics endpoint, tracing and the run summary
//
// Example usage:
//
//	loader := config.NewLoader()
//	_ = loader.BindFlag("runtime.max_threads", cmd.Flags().Lookup("max-threads"))
//	cfg, err := loader.Load("wordsmith.yaml")
//	if err != nil {
//	    return err
//	}
package config

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

// Sentinel validation errors.
var (
	ErrMissingInput       = errors.New("input file is required")
	ErrInvalidMode        = errors.New("mode must be none, length or count")
	ErrInvalidThreads     = errors.New("max threads must be positive")
	ErrInvalidCap         = errors.New("caps must be -1 (uncapped) or non-negative")
	ErrInvalidLength      = errors.New("length bounds must satisfy 0 <= min <= max")
	ErrInvalidCount       = errors.New("count budgets must not be negative")
	ErrInvalidPolicy      = errors.New("watchdog policy must be exit or cancel")
	ErrInvalidBufferSize  = errors.New("buffer size must be a positive byte size")
	ErrInvalidMultiplier  = errors.New("channel multiplier must be positive")
	ErrInvalidCompression = errors.New("compression must be none, gzip, zstd, s2 or lz4")
	ErrInvalidLevel       = errors.New("compression level must be fastest, default, better or best")
)

// Default configuration values.
const (
	DefaultChars             = "1234567890!@#$%^&*()-=_+[]{} "
	DefaultLengthMin         = 2
	DefaultLengthMax         = 16
	DefaultBufferSize        = "64KiB"
	DefaultChannelMultiplier = 4
	DefaultWatchdogInterval  = 500 * time.Millisecond
	// Uncapped disables a case or leet cap
	Uncapped = -1
)

// Config holds all configuration for a wordsmith run.
type Config struct {
	Input         string              `mapstructure:"input" yaml:"input"`
	Output        string              `mapstructure:"output" yaml:"output"`
	Mode          string              `mapstructure:"mode" yaml:"mode"`
	Transform     TransformConfig     `mapstructure:"transform" yaml:"transform"`
	Length        LengthConfig        `mapstructure:"length" yaml:"length"`
	Count         CountConfig         `mapstructure:"count" yaml:"count"`
	Runtime       RuntimeConfig       `mapstructure:"runtime" yaml:"runtime"`
	Compression   CompressionConfig   `mapstructure:"compression" yaml:"compression"`
	Logging       LoggingConfig       `mapstructure:"logging" yaml:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability" yaml:"observability"`
}

// TransformConfig selects the stages applied to every line.
type TransformConfig struct {
	Sanitize             bool   `mapstructure:"sanitize" yaml:"sanitize"`
	Case                 bool   `mapstructure:"case" yaml:"case"`
	CaseMaxChanges       int    `mapstructure:"case_max_changes" yaml:"case_max_changes"`
	Leet                 bool   `mapstructure:"leet" yaml:"leet"`
	LeetMaxSubstitutions int    `mapstructure:"leet_max_substitutions" yaml:"leet_max_substitutions"`
	Chars                string `mapstructure:"chars" yaml:"chars"`
}

// LengthConfig holds length mode parameters.
type LengthConfig struct {
	Min       int  `mapstructure:"min" yaml:"min"`
	Max       int  `mapstructure:"max" yaml:"max"`
	Append    bool `mapstructure:"append" yaml:"append"`
	Prepend   bool `mapstructure:"prepend" yaml:"prepend"`
	Insert    bool `mapstructure:"insert" yaml:"insert"`
	SkipDedup bool `mapstructure:"skip_dedup" yaml:"skip_dedup"`
}

// CountConfig holds count mode operation budgets.
type CountConfig struct {
	Append  int `mapstructure:"append" yaml:"append"`
	Prepend int `mapstructure:"prepend" yaml:"prepend"`
	Insert  int `mapstructure:"insert" yaml:"insert"`
}

// RuntimeConfig holds execution and resource settings.
type RuntimeConfig struct {
	MaxThreads        int           `mapstructure:"max_threads" yaml:"max_threads"`
	BufferSize        string        `mapstructure:"buffer_size" yaml:"buffer_size"`
	ChannelMultiplier int           `mapstructure:"channel_multiplier" yaml:"channel_multiplier"`
	MemoryCeilingMB   uint64        `mapstructure:"memory_ceiling_mb" yaml:"memory_ceiling_mb"`
	WatchdogPolicy    string        `mapstructure:"watchdog_policy" yaml:"watchdog_policy"`
	WatchdogInterval  time.Duration `mapstructure:"watchdog_interval" yaml:"watchdog_interval"`
}

// CompressionConfig holds output compression settings.
type CompressionConfig struct {
	Algorithm string `mapstructure:"algorithm" yaml:"algorithm"`
	Level     string `mapstructure:"level" yaml:"level"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ObservabilityConfig holds metrics, tracing and summary settings.
type ObservabilityConfig struct {
	MetricsAddr string          `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	Trace       bool            `mapstructure:"trace" yaml:"trace"`
	TraceFile   string          `mapstructure:"trace_file" yaml:"trace_file"`
	Summary     string          `mapstructure:"summary" yaml:"summary"`
	Profiling   ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig holds pprof capture settings.
type ProfilingConfig struct {
	CPUFile string `mapstructure:"cpu_file" yaml:"cpu_file"`
	MemFile string `mapstructure:"mem_file" yaml:"mem_file"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
	Types   string `mapstructure:"types" yaml:"types"`
}

// BufferBytes parses Runtime.BufferSize
func (c *Config) BufferBytes() (int, error) {
	n, err := humanize.ParseBytes(c.Runtime.BufferSize)
	if err != nil || n == 0 || n > 1<<30 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBufferSize, c.Runtime.BufferSize)
	}
	return int(n), nil //nolint:gosec // bounded above
}

// MemoryCeilingBytes converts Runtime.MemoryCeilingMB to bytes; 0 disables the watchdog.
func (c *Config) MemoryCeilingBytes() uint64 {
	return c.Runtime.MemoryCeilingMB * 1024 * 1024
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Input == "" {
		return ErrMissingInput
	}

	switch c.Mode {
	case "none", "":
	case "length":
		if c.Length.Min < 0 || c.Length.Min > c.Length.Max {
			return fmt.Errorf("%w: min %d, max %d", ErrInvalidLength, c.Length.Min, c.Length.Max)
		}
	case "count":
		if c.Count.Append < 0 || c.Count.Prepend < 0 || c.Count.Insert < 0 {
			return fmt.Errorf("%w: append %d, prepend %d, insert %d",
				ErrInvalidCount, c.Count.Append, c.Count.Prepend, c.Count.Insert)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}

	if c.Transform.CaseMaxChanges < Uncapped {
		return fmt.Errorf("%w: case_max_changes %d", ErrInvalidCap, c.Transform.CaseMaxChanges)
	}
	if c.Transform.LeetMaxSubstitutions < Uncapped {
		return fmt.Errorf("%w: leet_max_substitutions %d", ErrInvalidCap, c.Transform.LeetMaxSubstitutions)
	}

	if c.Runtime.MaxThreads <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreads, c.Runtime.MaxThreads)
	}
	if c.Runtime.ChannelMultiplier <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMultiplier, c.Runtime.ChannelMultiplier)
	}
	if _, err := c.BufferBytes(); err != nil {
		return err
	}
	switch c.Runtime.WatchdogPolicy {
	case "exit", "cancel":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPolicy, c.Runtime.WatchdogPolicy)
	}

	switch c.Compression.Algorithm {
	case "none", "gzip", "zstd", "s2", "lz4":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCompression, c.Compression.Algorithm)
	}
	switch c.Compression.Level {
	case "fastest", "default", "better", "best":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.Compression.Level)
	}

	return nil
}

func defaultThreads() int {
	return runtime.NumCPU()
}
