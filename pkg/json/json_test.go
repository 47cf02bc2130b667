package json

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	Input    string        `json:"input"`
	Variants uint64        `json:"variants"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

func TestMarshalToWriterDoesNotEscape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MarshalToWriter(&buf, report{Input: "<a&b>.txt"}))
	assert.Contains(t, buf.String(), `"input": "<a&b>.txt"`)
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	in := report{Input: "words.txt", Variants: 16, Elapsed: 3 * time.Second}
	require.NoError(t, WriteFile(path, in))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out report
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestWriteFileBadPath(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "summary.json"), report{})
	assert.Error(t, err)
}
