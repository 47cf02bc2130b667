package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/wordsmith/internal/pipeline"
	"github.com/ajitpratap0/wordsmith/pkg/compression"
	"github.com/ajitpratap0/wordsmith/pkg/config"
	wsjson "github.com/ajitpratap0/wordsmith/pkg/json"
	"github.com/ajitpratap0/wordsmith/pkg/logger"
	"github.com/ajitpratap0/wordsmith/pkg/metrics"
	"github.com/ajitpratap0/wordsmith/pkg/observability"
	"github.com/ajitpratap0/wordsmith/pkg/performance"
)

// report is the JSON run summary
type report struct {
	RunID     string                     `json:"run_id"`
	Version   string                     `json:"version"`
	Summary   *pipeline.Summary          `json:"summary"`
	Resources *performance.ResourceUsage `json:"resources,omitempty"`
	Error     string                     `json:"error,omitempty"`
	Config    *config.Config             `json:"config"`
}

func runCommand(cmd *cobra.Command, configPath, mode string, bindings []binding) error {
	cfg, err := loadConfig(cmd.Flags(), configPath, mode, bindings)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Encoding: cfg.Logging.Format}); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runID := uuid.NewString()
	ctx := context.WithValue(cmd.Context(), logger.RunIDKey, runID)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.WithContext(ctx).With(zap.String("component", "wordsmith-cli"))

	stageCtx := context.WithValue(ctx, logger.StageKey, "expand")
	runCfg, err := buildRunConfig(cfg, logger.WithContext(stageCtx))
	if err != nil {
		return err
	}
	if warning := extensionMismatch(runCfg.Output, runCfg.Compression.Algorithm); warning != "" {
		log.Warn(warning)
	}

	if cfg.Observability.Trace {
		shutdown, err := startTracing(cfg.Observability.TraceFile)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Warn("failed to flush spans", zap.Error(err))
			}
		}()
	}

	if cfg.Observability.MetricsAddr != "" {
		reg := metrics.NewRegistry()
		if err := runCfg.Metrics.Register(reg); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		srv, err := metrics.Serve(cfg.Observability.MetricsAddr, reg, log)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	profiling := cfg.Observability.Profiling
	extra, err := performance.ParseProfileTypes(profiling.Types)
	if err != nil {
		return err
	}
	profileCfg := performance.ProfileConfig{
		CPUFile: profiling.CPUFile,
		MemFile: profiling.MemFile,
		Dir:     profiling.Dir,
		Extra:   extra,
	}
	if profileCfg.Enabled() {
		profiler, err := performance.StartProfiler(profileCfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Warn("failed to write profiles", zap.Error(err))
			}
		}()
	}

	monitor, err := performance.NewResourceMonitor()
	if err != nil {
		log.Warn("resource reporting unavailable", zap.Error(err))
	}

	summary, runErr := pipeline.Run(ctx, runCfg)

	var usage *performance.ResourceUsage
	if monitor != nil {
		usage = monitor.Usage()
		log.Info("resource usage",
			zap.String("rss", humanize.IBytes(usage.MemoryRSS)),
			zap.Float64("cpu_percent", usage.CPUPercent),
			zap.Float64("ceiling_headroom", usage.CeilingHeadroom(cfg.MemoryCeilingBytes())))
	}

	if cfg.Observability.Summary != "" && summary != nil {
		r := report{RunID: runID, Version: version, Summary: summary, Resources: usage, Config: cfg}
		if runErr != nil {
			r.Error = runErr.Error()
		}
		if err := wsjson.WriteFile(cfg.Observability.Summary, r); err != nil {
			log.Warn("failed to write summary", zap.Error(err))
		}
	}
	return runErr
}

// buildRunConfig translates the resolved configuration into pipeline terms
func buildRunConfig(cfg *config.Config, log *zap.Logger) (pipeline.RunConfig, error) {
	mode, err := pipeline.ParseMode(cfg.Mode)
	if err != nil {
		return pipeline.RunConfig{}, err
	}
	policy, err := pipeline.ParsePolicy(cfg.Runtime.WatchdogPolicy)
	if err != nil {
		return pipeline.RunConfig{}, err
	}
	algo, err := compression.ParseAlgorithm(cfg.Compression.Algorithm)
	if err != nil {
		return pipeline.RunConfig{}, err
	}
	level, err := parseLevel(cfg.Compression.Level)
	if err != nil {
		return pipeline.RunConfig{}, err
	}
	bufferSize, err := cfg.BufferBytes()
	if err != nil {
		return pipeline.RunConfig{}, err
	}

	opts := pipeline.Options{
		Sanitize: cfg.Transform.Sanitize,
		Case:     cfg.Transform.Case,
		Leet:     cfg.Transform.Leet,
		Charset:  []rune(cfg.Transform.Chars),
		Mode:     mode,
		Length: pipeline.LengthParams{
			Min:       cfg.Length.Min,
			Max:       cfg.Length.Max,
			Append:    cfg.Length.Append,
			Prepend:   cfg.Length.Prepend,
			Insert:    cfg.Length.Insert,
			SkipDedup: cfg.Length.SkipDedup,
		},
		Count: pipeline.CountParams{
			Append:  cfg.Count.Append,
			Prepend: cfg.Count.Prepend,
			Insert:  cfg.Count.Insert,
		},
	}
	if n := cfg.Transform.CaseMaxChanges; n != config.Uncapped {
		opts.CaseMaxChanges = &n
	}
	if n := cfg.Transform.LeetMaxSubstitutions; n != config.Uncapped {
		opts.LeetMaxSubstitutions = &n
	}

	return pipeline.RunConfig{
		Input:       cfg.Input,
		Output:      cfg.Output,
		Compression: compression.Config{Algorithm: algo, Level: level},
		Options:     opts,
		Executor: pipeline.NewExecutor(pipeline.ExecutorConfig{
			Workers:           cfg.Runtime.MaxThreads,
			ChannelMultiplier: cfg.Runtime.ChannelMultiplier,
			BufferCapacity:    bufferSize,
		}),
		Watchdog: pipeline.WatchdogConfig{
			CeilingBytes: cfg.MemoryCeilingBytes(),
			Interval:     cfg.Runtime.WatchdogInterval,
			Policy:       policy,
		},
		Metrics: pipeline.NewMetrics(),
		Logger:  log,
	}, nil
}

// extensionMismatch describes an output path whose suffix does not match
// the compression algorithm, or returns "" when it does.
func extensionMismatch(output string, algo compression.Algorithm) string {
	if output == "" || output == "-" || algo == compression.None {
		return ""
	}
	if ext := algo.Extension(); !strings.HasSuffix(output, ext) {
		return fmt.Sprintf("output %s is %s compressed but lacks the %s suffix", output, algo, ext)
	}
	return ""
}

func parseLevel(s string) (compression.Level, error) {
	switch s {
	case "fastest":
		return compression.Fastest, nil
	case "", "default":
		return compression.Default, nil
	case "better":
		return compression.Better, nil
	case "best":
		return compression.Best, nil
	default:
		return 0, fmt.Errorf("unknown compression level %q", s)
	}
}

func startTracing(path string) (observability.ShutdownFunc, error) {
	var w io.Writer = os.Stderr
	var file *os.File
	if path != "" {
		f, err := os.Create(path) //nolint:gosec // G304: path comes from the operator
		if err != nil {
			return nil, fmt.Errorf("failed to create trace file: %w", err)
		}
		w, file = f, f
	}

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "wordsmith",
		ServiceVersion: version,
		Writer:         w,
		SamplingRate:   1,
	})
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, err
	}
	return func(ctx context.Context) error {
		err := shutdown(ctx)
		if file != nil {
			if closeErr := file.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}
		return err
	}, nil
}
