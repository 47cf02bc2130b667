package pipeline

import (
	"context"
	"io"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	wserrors "github.com/ajitpratap0/wordsmith/pkg/errors"
	"github.com/ajitpratap0/wordsmith/pkg/pool"
)

// Writer is the single consumer of the output channel. Buffers are written
// whole, in arrival order, so bytes from two workers never interleave.
type Writer struct {
	in      <-chan []byte
	dst     io.Writer
	buffers *pool.BufferPool
	metrics *Metrics
	logger  *zap.Logger
}

// NewWriter creates a writer draining in into dst
func NewWriter(in <-chan []byte, dst io.Writer, buffers *pool.BufferPool, metrics *Metrics, logger *zap.Logger) *Writer {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		in:      in,
		dst:     dst,
		buffers: buffers,
		metrics: metrics,
		logger:  logger.With(zap.String("component", "writer")),
	}
}

// Run drains the channel until it is closed. It keeps draining after ctx is
// cancelled so that whatever workers already handed over reaches the sink.
// A write error stops the writer immediately.
func (w *Writer) Run(ctx context.Context) error {
	var buffers int
	for buf := range w.in {
		n, err := w.dst.Write(buf)
		w.metrics.RecordBytes(uint64(n))
		w.buffers.Put(buf)
		if err != nil {
			w.logger.Error("write failed", zap.Error(err), zap.Int("buffers", buffers))
			return wserrors.Wrap(err, wserrors.ErrorTypeIO, "failed to write output")
		}
		buffers++
	}

	if f, ok := w.dst.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return wserrors.Wrap(err, wserrors.ErrorTypeIO, "failed to flush output")
		}
	}

	w.logger.Debug("writer drained",
		zap.Int("buffers", buffers),
		zap.String("written", humanize.IBytes(w.metrics.Snapshot().Bytes)),
		zap.Bool("cancelled", ctx.Err() != nil))
	return nil
}
