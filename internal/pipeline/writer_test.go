package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wserrors "github.com/ajitpratap0/wordsmith/pkg/errors"
	"github.com/ajitpratap0/wordsmith/pkg/pool"
)

func TestWriterDrainsInArrivalOrder(t *testing.T) {
	in := make(chan []byte, 3)
	in <- []byte("one\ntwo\n")
	in <- []byte("three\n")
	in <- []byte("four\n")
	close(in)

	var dst bytes.Buffer
	metrics := NewMetrics()
	w := NewWriter(in, &dst, pool.NewBufferPool(8), metrics, nil)
	require.NoError(t, w.Run(context.Background()))

	assert.Equal(t, "one\ntwo\nthree\nfour\n", dst.String())
	assert.EqualValues(t, dst.Len(), metrics.Snapshot().Bytes)
}

func TestWriterKeepsDrainingAfterCancel(t *testing.T) {
	in := make(chan []byte, 2)
	in <- []byte("kept\n")
	close(in)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var dst bytes.Buffer
	w := NewWriter(in, &dst, pool.NewBufferPool(8), nil, nil)
	require.NoError(t, w.Run(ctx))
	assert.Equal(t, "kept\n", dst.String())
}

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestWriterReportsWriteFailure(t *testing.T) {
	in := make(chan []byte, 1)
	in <- []byte("lost\n")
	close(in)

	diskFull := errors.New("no space left on device")
	w := NewWriter(in, failingWriter{diskFull}, pool.NewBufferPool(8), nil, nil)
	err := w.Run(context.Background())

	require.Error(t, err)
	assert.True(t, wserrors.IsType(err, wserrors.ErrorTypeIO))
	assert.ErrorIs(t, err, diskFull)
}
