package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by the loader,
// e.g. WORDSMITH_RUNTIME_MAX_THREADS.
const EnvPrefix = "WORDSMITH"

// Loader resolves a Config from flags, environment, file and defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment lookup in place.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// BindFlag makes flag override key when the flag is set on the command line.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind for %s", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Set forces key to value, above every other source.
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// Load reads the optional YAML file at path and returns the validated
// configuration. ${VAR} references in the file are replaced with environment
// values before parsing.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the operator
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		l.v.SetConfigType(configType(path))
		if err := l.v.ReadConfig(bytes.NewReader([]byte(substituteEnvVars(string(data))))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Write encodes cfg as YAML
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

// Save writes cfg as YAML to filePath
func Save(filePath string, cfg *Config) error {
	var buf bytes.Buffer
	if err := Write(&buf, cfg); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, buf.Bytes(), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsValidation reports whether err came from Validate
func IsValidation(err error) bool {
	for _, sentinel := range []error{
		ErrMissingInput, ErrInvalidMode, ErrInvalidThreads, ErrInvalidCap,
		ErrInvalidLength, ErrInvalidCount, ErrInvalidPolicy, ErrInvalidBufferSize,
		ErrInvalidMultiplier, ErrInvalidCompression, ErrInvalidLevel,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input", "")
	v.SetDefault("output", "-")
	v.SetDefault("mode", "none")

	// Transform defaults.
	v.SetDefault("transform.sanitize", false)
	v.SetDefault("transform.case", false)
	v.SetDefault("transform.case_max_changes", Uncapped)
	v.SetDefault("transform.leet", false)
	v.SetDefault("transform.leet_max_substitutions", Uncapped)
	v.SetDefault("transform.chars", DefaultChars)

	// Augmentation defaults.
	v.SetDefault("length.min", DefaultLengthMin)
	v.SetDefault("length.max", DefaultLengthMax)
	v.SetDefault("length.append", false)
	v.SetDefault("length.prepend", false)
	v.SetDefault("length.insert", false)
	v.SetDefault("length.skip_dedup", false)
	v.SetDefault("count.append", 0)
	v.SetDefault("count.prepend", 0)
	v.SetDefault("count.insert", 0)

	// Runtime defaults.
	v.SetDefault("runtime.max_threads", defaultThreads())
	v.SetDefault("runtime.buffer_size", DefaultBufferSize)
	v.SetDefault("runtime.channel_multiplier", DefaultChannelMultiplier)
	v.SetDefault("runtime.memory_ceiling_mb", 0)
	v.SetDefault("runtime.watchdog_policy", "exit")
	v.SetDefault("runtime.watchdog_interval", DefaultWatchdogInterval)

	v.SetDefault("compression.algorithm", "none")
	v.SetDefault("compression.level", "default")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("observability.metrics_addr", "")
	v.SetDefault("observability.trace", false)
	v.SetDefault("observability.trace_file", "")
	v.SetDefault("observability.summary", "")
	v.SetDefault("observability.profiling.cpu_file", "")
	v.SetDefault("observability.profiling.mem_file", "")
	v.SetDefault("observability.profiling.dir", ".")
	v.SetDefault("observability.profiling.types", "")
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return "yaml"
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// A bare $ is left alone; charsets routinely contain one.
func substituteEnvVars(content string) string {
	var sb strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		sb.WriteString(content[:start])
		sb.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	sb.WriteString(content)
	return sb.String()
}
