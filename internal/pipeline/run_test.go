package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/ajitpratap0/wordsmith/pkg/compression"
	wserrors "github.com/ajitpratap0/wordsmith/pkg/errors"
	"github.com/ajitpratap0/wordsmith/pkg/testutil"
)

func TestRunCasePermutations(t *testing.T) {
	input := testutil.WriteWordlist(t, "Pass\n")
	output := filepath.Join(t.TempDir(), "out.txt")

	summary, err := Run(context.Background(), RunConfig{
		Input:    input,
		Output:   output,
		Options:  Options{Case: true},
		Executor: NewExecutor(ExecutorConfig{Workers: 2}),
		Logger:   testutil.TestLogger(t),
	})
	require.NoError(t, err)

	lines := testutil.ReadWords(t, output)
	assert.Len(t, lines, 16)
	for i := 1; i < len(lines); i++ {
		assert.NotEqual(t, lines[i-1], lines[i])
	}
	assert.EqualValues(t, 1, summary.Metrics.Lines)
	assert.EqualValues(t, 16, summary.Metrics.Variants)
	assert.EqualValues(t, 16*5, summary.Metrics.Bytes)
	assert.Equal(t, "none", summary.Mode)
}

func TestRunManyLinesAcrossWorkers(t *testing.T) {
	var sb strings.Builder
	var want []string
	for i := 0; i < 5000; i++ {
		word := fmt.Sprintf("w%04d", i)
		sb.WriteString(word + "\r\n")
		want = append(want, word, word+"!")
	}
	sb.WriteString("\xff\n")
	sort.Strings(want)

	input := testutil.WriteWordlist(t, sb.String())
	output := filepath.Join(t.TempDir(), "out.txt")

	summary, err := Run(context.Background(), RunConfig{
		Input:  input,
		Output: output,
		Options: Options{
			Charset: []rune("!"),
			Mode:    ModeCount,
			Count:   CountParams{Append: 1},
		},
		Executor: NewExecutor(ExecutorConfig{Workers: 4, BufferCapacity: 128}),
	})
	require.NoError(t, err)

	assert.Equal(t, want, testutil.ReadWords(t, output))
	assert.EqualValues(t, 5000, summary.Metrics.Lines)
	assert.EqualValues(t, 1, summary.Metrics.Invalid)
	assert.EqualValues(t, 10000, summary.Metrics.Variants)
	assert.Greater(t, summary.Chunks, 1)
}

func TestRunEmptyInput(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.txt")
	summary, err := Run(context.Background(), RunConfig{
		Input:  testutil.WriteWordlist(t, ""),
		Output: output,
	})
	require.NoError(t, err)
	assert.Zero(t, summary.Metrics.Lines)
	assert.Empty(t, testutil.ReadWords(t, output))
}

func TestRunCompressedOutput(t *testing.T) {
	input := testutil.WriteWordlist(t, "ab\ncd\n")
	output := filepath.Join(t.TempDir(), "out.txt.s2")

	_, err := Run(context.Background(), RunConfig{
		Input:       input,
		Output:      output,
		Compression: compression.Config{Algorithm: compression.S2, Level: compression.Default},
		Options:     Options{Case: true},
	})
	require.NoError(t, err)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	r, err := compression.NewReader(f, compression.S2)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, 8, strings.Count(string(data), "\n"))
}

func TestRunMissingInput(t *testing.T) {
	_, err := Run(context.Background(), RunConfig{
		Input:  filepath.Join(t.TempDir(), "missing.txt"),
		Output: filepath.Join(t.TempDir(), "out.txt"),
	})
	require.Error(t, err)
	assert.True(t, wserrors.IsType(err, wserrors.ErrorTypeIO))
}

func TestRunUncreatableOutput(t *testing.T) {
	_, err := Run(context.Background(), RunConfig{
		Input:  testutil.WriteWordlist(t, "a\n"),
		Output: filepath.Join(t.TempDir(), "missing", "out.txt"),
	})
	require.Error(t, err)
	assert.True(t, wserrors.IsType(err, wserrors.ErrorTypeIO))
}

func TestRunInvalidOptions(t *testing.T) {
	_, err := Run(context.Background(), RunConfig{
		Input:   testutil.WriteWordlist(t, "a\n"),
		Options: Options{Mode: ModeLength, Length: LengthParams{Min: 3, Max: 1}},
	})
	require.Error(t, err)
	assert.True(t, wserrors.IsType(err, wserrors.ErrorTypeConfig))
}

// endless is an input whose case permutations take far longer to write
// than any test runs, while each generator holds only its odometer.
var endless = strings.Repeat(strings.Repeat("x", 26)+"\n", 64)

func TestRunWatchdogCancel(t *testing.T) {
	input := testutil.WriteWordlist(t, endless)
	output := filepath.Join(t.TempDir(), "out.txt")
	metrics := NewMetrics()

	summary, err := Run(context.Background(), RunConfig{
		Input:   input,
		Output:  output,
		Options: Options{Case: true},
		Metrics: metrics,
		Watchdog: WatchdogConfig{
			CeilingBytes: 1,
			Interval:     5 * time.Millisecond,
			Policy:       PolicyCancel,
			Sampler: func() (uint64, error) {
				return metrics.Snapshot().Variants, nil
			},
		},
		Executor: NewExecutor(ExecutorConfig{Workers: 2, BufferCapacity: 1024}),
		Logger:   testutil.TestLogger(t),
	})
	require.Error(t, err)
	assert.True(t, wserrors.IsType(err, wserrors.ErrorTypeResourceExhaustion))
	require.NotNil(t, summary)
	assert.Greater(t, summary.Metrics.Variants, uint64(0))

	// what reached the writer was flushed whole
	data, readErr := os.ReadFile(output)
	require.NoError(t, readErr)
	assert.True(t, len(data) == 0 || data[len(data)-1] == '\n')
}

func TestRunParentCancelled(t *testing.T) {
	parent, stop := testutil.TestContext(t)
	defer stop()
	ctx, cancel := context.WithTimeout(parent, 50*time.Millisecond)
	defer cancel()

	_, err := Run(ctx, RunConfig{
		Input:    testutil.WriteWordlist(t, endless),
		Output:   filepath.Join(t.TempDir(), "out.txt"),
		Options:  Options{Case: true},
		Executor: NewExecutor(ExecutorConfig{Workers: 1, BufferCapacity: 1024}),
	})
	require.Error(t, err)
	assert.True(t, wserrors.IsType(err, wserrors.ErrorTypeChannelClosed))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunPreCancelledExpandsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	output := filepath.Join(t.TempDir(), "out.txt")
	summary, err := Run(ctx, RunConfig{
		Input:    testutil.WriteWordlist(t, strings.Repeat("ab\n", 200000)),
		Output:   output,
		Options:  Options{Case: true},
		Executor: NewExecutor(ExecutorConfig{Workers: 2}),
	})
	require.Error(t, err)
	assert.True(t, wserrors.IsType(err, wserrors.ErrorTypeChannelClosed))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Zero(t, summary.Metrics.Lines)
	assert.Zero(t, summary.Metrics.Variants)
	assert.Empty(t, testutil.ReadWords(t, output))
}

func TestProcessChunkStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	cause := errors.New("writer failed")
	cancel(cause)

	metrics := NewMetrics()
	out := make(chan []byte, 4)
	err := processChunk(ctx, otel.Tracer(tracerName), NewOrchestrator(Options{}, metrics),
		NewExecutor(ExecutorConfig{Workers: 1}), out, 0, []byte("a\nb\nc\n"))
	require.Error(t, err)
	assert.True(t, wserrors.IsType(err, wserrors.ErrorTypeChannelClosed))
	assert.ErrorIs(t, err, cause)
	assert.Zero(t, metrics.Snapshot().Lines)
	assert.Empty(t, out)
}

func TestExecutorDefaults(t *testing.T) {
	e := NewExecutor(ExecutorConfig{})
	assert.Greater(t, e.Workers(), 0)
	assert.Equal(t, DefaultBufferCapacity, e.BufferCapacity())
	assert.Equal(t, max(e.Workers()*DefaultChannelMultiplier, 2), e.ChannelCapacity())

	single := NewExecutor(ExecutorConfig{Workers: 1, ChannelMultiplier: 1})
	assert.Equal(t, 2, single.ChannelCapacity())
}
