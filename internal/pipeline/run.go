package pipeline

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/wordsmith/pkg/compression"
	wserrors "github.com/ajitpratap0/wordsmith/pkg/errors"
	"github.com/ajitpratap0/wordsmith/pkg/mmap"
)

const tracerName = "github.com/ajitpratap0/wordsmith/internal/pipeline"

// RunConfig describes one run
type RunConfig struct {
	Input  string
	Output string // "" or "-" for stdout
	// Compression of the output; the zero value writes plain text.
	Compression compression.Config
	Options     Options
	// Executor defaults to NewExecutor(ExecutorConfig{}).
	Executor *Executor
	Watchdog WatchdogConfig
	// Metrics defaults to a private instance.
	Metrics *Metrics
	Logger  *zap.Logger
	// Tracer defaults to the global otel tracer provider.
	Tracer trace.Tracer
}

// Summary reports a finished run
type Summary struct {
	Input   string          `json:"input"`
	Output  string          `json:"output"`
	Mode    string          `json:"mode"`
	Workers int             `json:"workers"`
	Chunks  int             `json:"chunks"`
	Metrics MetricsSnapshot `json:"metrics"`
	Elapsed time.Duration   `json:"elapsed_ns"`
}

// Run expands every line of the input into the output. It returns once the
// writer has drained everything the workers produced. When the run fails the
// summary still reports what was processed before the failure.
func Run(ctx context.Context, cfg RunConfig) (*Summary, error) {
	start := time.Now()
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	if cfg.Executor == nil {
		cfg.Executor = NewExecutor(ExecutorConfig{})
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}
	logger := cfg.Logger.With(zap.String("component", "pipeline"))

	ctx, span := cfg.Tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("input", cfg.Input),
		attribute.String("mode", cfg.Options.Mode.String()),
		attribute.Int("workers", cfg.Executor.Workers()),
	))
	defer span.End()

	input, err := mmap.Open(cfg.Input)
	if err != nil {
		return nil, fail(span, wserrors.Wrap(err, wserrors.ErrorTypeIO, "failed to map input").WithDetail("path", cfg.Input))
	}
	defer input.Close()

	sink, err := compression.OpenSink(cfg.Output, &cfg.Compression)
	if err != nil {
		return nil, fail(span, wserrors.Wrap(err, wserrors.ErrorTypeIO, "failed to open output").WithDetail("path", cfg.Output))
	}

	watchdog, err := NewWatchdog(cfg.Watchdog, cfg.Logger)
	if err != nil {
		sink.Close()
		return nil, fail(span, err)
	}

	chunks := mmap.Chunks(input.Bytes(), cfg.Executor.chunkCount())
	summary := &Summary{
		Input:   cfg.Input,
		Output:  sink.Name(),
		Mode:    cfg.Options.Mode.String(),
		Workers: cfg.Executor.Workers(),
		Chunks:  len(chunks),
	}
	logger.Info("run started",
		zap.String("input", cfg.Input),
		zap.String("size", humanize.IBytes(uint64(input.Size()))),
		zap.String("output", sink.Name()),
		zap.String("compression", string(cfg.Compression.Algorithm)),
		zap.Int("workers", cfg.Executor.Workers()),
		zap.Int("chunks", len(chunks)),
		zap.Int("channel_capacity", cfg.Executor.ChannelCapacity()))

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	watchdog.Start(cancel)

	runErr := execute(runCtx, cfg, input, chunks, sink)

	watchdog.Stop()
	if closeErr := sink.Close(); closeErr != nil && runErr == nil {
		runErr = wserrors.Wrap(closeErr, wserrors.ErrorTypeIO, "failed to close output")
	}
	if tripErr := watchdog.Err(); tripErr != nil {
		runErr = tripErr
	} else if runErr != nil && ctx.Err() != nil {
		runErr = wserrors.Wrap(context.Cause(ctx), wserrors.ErrorTypeChannelClosed, "run cancelled")
	}

	summary.Metrics = cfg.Metrics.Snapshot()
	summary.Elapsed = time.Since(start)
	span.SetAttributes(
		attribute.Int64("lines", int64(summary.Metrics.Lines)),       //nolint:gosec // counters stay far below 2^63
		attribute.Int64("variants", int64(summary.Metrics.Variants)), //nolint:gosec // counters stay far below 2^63
	)

	fields := []zap.Field{
		zap.Uint64("lines", summary.Metrics.Lines),
		zap.Uint64("variants", summary.Metrics.Variants),
		zap.Uint64("invalid", summary.Metrics.Invalid),
		zap.String("written", humanize.IBytes(summary.Metrics.Bytes)),
		zap.Duration("elapsed", summary.Elapsed),
	}
	if runErr != nil {
		logger.Error("run failed", append(fields, zap.Error(runErr))...)
		return summary, fail(span, runErr)
	}
	logger.Info("run finished", fields...)
	return summary, nil
}

// execute runs the writer and the workers until every chunk is processed or
// the first fatal error.
func execute(ctx context.Context, cfg RunConfig, input *mmap.Reader, chunks [][]byte, sink *compression.Sink) error {
	exec := cfg.Executor
	out := make(chan []byte, exec.ChannelCapacity())
	orchestrator := NewOrchestrator(cfg.Options, cfg.Metrics)
	writer := NewWriter(out, sink, exec.Buffers(), cfg.Metrics, cfg.Logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writer.Run(gctx)
	})
	g.Go(func() error {
		defer close(out)

		workers := pool.New().
			WithContext(gctx).
			WithCancelOnError().
			WithFirstError().
			WithMaxGoroutines(exec.Workers())
		for i, chunk := range chunks {
			workers.Go(func(ctx context.Context) error {
				if ctx.Err() != nil {
					return stopped(ctx)
				}
				input.Prefetch(chunk)
				return processChunk(ctx, cfg.Tracer, orchestrator, exec, out, i, chunk)
			})
		}
		return workers.Wait()
	})

	return g.Wait()
}

func processChunk(ctx context.Context, tracer trace.Tracer, o *Orchestrator, exec *Executor, out chan<- []byte, index int, chunk []byte) error {
	ctx, span := tracer.Start(ctx, "pipeline.chunk", trace.WithAttributes(
		attribute.Int("chunk", index),
		attribute.Int("bytes", len(chunk)),
	))
	defer span.End()

	buf := NewWorkerBuffer(ctx, out, exec.Buffers())
	var err error
	mmap.Lines(chunk, func(line []byte) bool {
		if ctx.Err() != nil {
			err = stopped(ctx)
			return false
		}
		err = o.ProcessLine(line, buf)
		if err != nil && !wserrors.IsFatal(err) {
			err = nil
		}
		return err == nil
	})
	if closeErr := buf.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fail(span, err)
	}
	span.SetAttributes(attribute.Int("buffers", buf.Sent()))
	return nil
}

// stopped reports a chunk abandoned because the run was cancelled
func stopped(ctx context.Context) error {
	return wserrors.Wrap(context.Cause(ctx), wserrors.ErrorTypeChannelClosed, "chunk abandoned after cancellation")
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
