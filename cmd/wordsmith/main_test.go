package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/wordsmith/internal/pipeline"
	"github.com/ajitpratap0/wordsmith/pkg/compression"
	"github.com/ajitpratap0/wordsmith/pkg/config"
	wserrors "github.com/ajitpratap0/wordsmith/pkg/errors"
	wsjson "github.com/ajitpratap0/wordsmith/pkg/json"
	"github.com/ajitpratap0/wordsmith/pkg/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func fixture(t *testing.T, content string) (input, output string) {
	t.Helper()
	input = testutil.WriteWordlist(t, content)
	return input, filepath.Join(filepath.Dir(input), "out.txt")
}

func TestRootCommandCase(t *testing.T) {
	input, output := fixture(t, "Pass\n")
	_, err := execute(t, "-f", input, "-o", output, "-c", "--log-level", "error")
	require.NoError(t, err)
	assert.Len(t, testutil.ReadWords(t, output), 16)
}

func TestLengthCommand(t *testing.T) {
	input, output := fixture(t, "a\n")
	_, err := execute(t, "length", "-f", input, "-o", output, "-C", "b", "-m", "1", "-M", "2", "-a", "-L", "error")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "ab"}, testutil.ReadWords(t, output))
}

func TestCountCommand(t *testing.T) {
	input, output := fixture(t, "a\n")
	_, err := execute(t, "count", "-f", input, "-o", output, "-C", "b", "-a", "1", "-p", "1", "-L", "error")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "ab", "ba", "bab", "bab"}, testutil.ReadWords(t, output))
}

func TestSummaryFile(t *testing.T) {
	input, output := fixture(t, "ab\n")
	summaryPath := filepath.Join(t.TempDir(), "summary.json")
	_, err := execute(t, "-f", input, "-o", output, "-l", "--summary", summaryPath, "-L", "error")
	require.NoError(t, err)

	data, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	var r struct {
		RunID   string           `json:"run_id"`
		Summary pipeline.Summary `json:"summary"`
	}
	require.NoError(t, wsjson.Unmarshal(data, &r))
	assert.NotEmpty(t, r.RunID)
	assert.EqualValues(t, 1, r.Summary.Metrics.Lines)
	assert.EqualValues(t, 6, r.Summary.Metrics.Variants) // ab 4b @b a8 48 @8
}

func TestProfileFlags(t *testing.T) {
	input, output := fixture(t, "ab\n")
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.prof")
	mem := filepath.Join(dir, "mem.prof")
	_, err := execute(t, "-f", input, "-o", output, "-c", "-L", "error",
		"--cpu-profile", cpu, "--mem-profile", mem,
		"--profile-dir", dir, "--profile-types", "goroutine")
	require.NoError(t, err)

	for _, path := range []string{cpu, mem, filepath.Join(dir, "goroutine.prof")} {
		assert.FileExists(t, path)
	}

	_, err = execute(t, "-f", input, "-o", output, "--profile-types", "cpu", "-L", "error")
	assert.Error(t, err)
}

func TestMissingInputFlag(t *testing.T) {
	_, err := execute(t, "-c")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingInput)
	assert.Equal(t, 1, exitCode(err))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wordsmith v"+version)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(wserrors.New(wserrors.ErrorTypeResourceExhaustion, "ceiling")))
	assert.Equal(t, 1, exitCode(wserrors.New(wserrors.ErrorTypeIO, "disk")))
}

func TestBuildRunConfig(t *testing.T) {
	loader := config.NewLoader()
	loader.Set("input", "in.txt")
	loader.Set("mode", "count")
	loader.Set("transform.case_max_changes", 2)
	loader.Set("count.insert", 1)
	loader.Set("compression.algorithm", "lz4")
	loader.Set("compression.level", "best")
	loader.Set("runtime.memory_ceiling_mb", 64)
	loader.Set("runtime.watchdog_policy", "cancel")
	cfg, err := loader.Load("")
	require.NoError(t, err)

	rc, err := buildRunConfig(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, pipeline.ModeCount, rc.Options.Mode)
	require.NotNil(t, rc.Options.CaseMaxChanges)
	assert.Equal(t, 2, *rc.Options.CaseMaxChanges)
	assert.Nil(t, rc.Options.LeetMaxSubstitutions)
	assert.Equal(t, 1, rc.Options.Count.Insert)
	assert.Equal(t, compression.Config{Algorithm: compression.LZ4, Level: compression.Best}, rc.Compression)
	assert.Equal(t, uint64(64<<20), rc.Watchdog.CeilingBytes)
	assert.Equal(t, pipeline.PolicyCancel, rc.Watchdog.Policy)
	assert.Equal(t, []rune(config.DefaultChars), rc.Options.Charset)
}

func TestExtensionMismatch(t *testing.T) {
	assert.Empty(t, extensionMismatch("out.txt", compression.None))
	assert.Empty(t, extensionMismatch("-", compression.Zstd))
	assert.Empty(t, extensionMismatch("", compression.Gzip))
	assert.Empty(t, extensionMismatch("out.txt.zst", compression.Zstd))
	assert.Contains(t, extensionMismatch("out.txt", compression.LZ4), ".lz4")
}
