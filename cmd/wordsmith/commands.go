package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ajitpratap0/wordsmith/pkg/config"
)

// binding ties a flag to the configuration key it overrides
type binding struct {
	key  string
	flag string
}

var rootBindings = []binding{
	{"input", "file"},
	{"output", "out-file"},
	{"transform.sanitize", "sanitize"},
	{"transform.case", "case"},
	{"transform.case_max_changes", "case-max-changes"},
	{"transform.leet", "leet"},
	{"transform.leet_max_substitutions", "leet-max-substitutions"},
	{"transform.chars", "chars"},
	{"runtime.max_threads", "max-threads"},
	{"runtime.buffer_size", "buffer-size"},
	{"runtime.memory_ceiling_mb", "memory-ceiling-mb"},
	{"runtime.watchdog_policy", "watchdog-policy"},
	{"compression.algorithm", "compression"},
	{"compression.level", "compression-level"},
	{"logging.level", "log-level"},
	{"logging.format", "log-format"},
	{"observability.metrics_addr", "metrics-addr"},
	{"observability.trace", "trace"},
	{"observability.trace_file", "trace-file"},
	{"observability.summary", "summary"},
	{"observability.profiling.cpu_file", "cpu-profile"},
	{"observability.profiling.mem_file", "mem-profile"},
	{"observability.profiling.dir", "profile-dir"},
	{"observability.profiling.types", "profile-types"},
}

var lengthBindings = []binding{
	{"length.min", "min"},
	{"length.max", "max"},
	{"length.append", "append"},
	{"length.prepend", "prepend"},
	{"length.insert", "insert"},
	{"length.skip_dedup", "skip-dedup"},
}

var countBindings = []binding{
	{"count.append", "append"},
	{"count.prepend", "prepend"},
	{"count.insert", "insert"},
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "wordsmith",
		Short: "wordsmith - wordlist expansion for password auditing",
		Long: `wordsmith expands every line of a wordlist through optional sanitizing,
case permutation, leet substitution and length or count augmentation, and
writes each result on its own line.

Example:
  wordsmith -f words.txt -c -l -o out.txt
  wordsmith length -f words.txt -a -M 10
  wordsmith count -f words.txt -a 2 -C 0123456789`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, configPath, "", rootBindings)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	flags.StringP("file", "f", "", "Input wordlist (required)")
	flags.StringP("out-file", "o", "-", "Output file, - for stdout")
	flags.BoolP("sanitize", "s", false, "Sanitize lines before expanding them")
	flags.BoolP("case", "c", false, "Generate case permutations")
	flags.Int("case-max-changes", config.Uncapped, "Maximum changed positions per case permutation, -1 for no cap")
	flags.BoolP("leet", "l", false, "Generate leet substitutions")
	flags.Int("leet-max-substitutions", config.Uncapped, "Maximum substituted positions per leet variant, -1 for no cap")
	flags.StringP("chars", "C", config.DefaultChars, "Characters used by length and count augmentation")
	flags.Int("max-threads", runtime.NumCPU(), "Number of worker threads")
	flags.String("buffer-size", config.DefaultBufferSize, "Worker buffer flush threshold (e.g. 64KiB, 1MiB)")
	flags.Uint64("memory-ceiling-mb", 0, "Resident memory ceiling in MiB, 0 disables the watchdog")
	flags.String("watchdog-policy", "exit", "Action on reaching the memory ceiling: exit or cancel")
	flags.String("compression", "none", "Output compression: none, gzip, zstd, s2 or lz4")
	flags.String("compression-level", "default", "Compression level: fastest, default, better or best")
	flags.StringP("log-level", "L", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "console", "Log encoding (console, json)")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
	flags.Bool("trace", false, "Export OpenTelemetry spans")
	flags.String("trace-file", "", "Write spans to this file instead of stderr")
	flags.String("summary", "", "Write a JSON run summary to this file, - for stderr")
	flags.String("cpu-profile", "", "Write a CPU profile to this file")
	flags.String("mem-profile", "", "Write a heap profile to this file when the run ends")
	flags.String("profile-dir", ".", "Directory for the extra profiles")
	flags.String("profile-types", "", "Extra profiles to capture: block, mutex, goroutine")

	root.AddCommand(newLengthCmd(&configPath), newCountCmd(&configPath), newVersionCmd())
	return root
}

func newLengthCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "length",
		Short: "Augment words up to a length window",
		Long: `Grow every word breadth-first by appending, prepending or inserting the
configured characters, emitting each result whose length lies in [min, max].`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, *configPath, "length", append(rootBindings, lengthBindings...))
		},
	}
	cmd.Flags().IntP("min", "m", config.DefaultLengthMin, "Minimum output length")
	cmd.Flags().IntP("max", "M", config.DefaultLengthMax, "Maximum output length")
	cmd.Flags().BoolP("append", "a", false, "Append characters")
	cmd.Flags().BoolP("prepend", "p", false, "Prepend characters")
	cmd.Flags().BoolP("insert", "i", false, "Insert characters at every position")
	cmd.Flags().Bool("skip-dedup", false, "Emit repeated results instead of tracking seen words")
	return cmd
}

func newCountCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Augment words with exact operation counts",
		Long: `Emit every word reachable by applying up to the given number of appends,
prepends and inserts of the configured characters, the unmodified word first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, *configPath, "count", append(rootBindings, countBindings...))
		},
	}
	cmd.Flags().IntP("append", "a", 0, "Number of appends")
	cmd.Flags().IntP("prepend", "p", 0, "Number of prepends")
	cmd.Flags().IntP("insert", "i", 0, "Number of inserts")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wordsmith v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadConfig resolves the configuration for cmd with its flags on top
func loadConfig(flags *pflag.FlagSet, configPath, mode string, bindings []binding) (*config.Config, error) {
	loader := config.NewLoader()
	for _, b := range bindings {
		if err := loader.BindFlag(b.key, flags.Lookup(b.flag)); err != nil {
			return nil, err
		}
	}
	if mode != "" {
		loader.Set("mode", mode)
	}
	return loader.Load(configPath)
}
