// Package json wraps goccy/go-json for wordsmith's run reports.
package json

import (
	"fmt"
	"io"
	"os"

	gojson "github.com/goccy/go-json"
)

// Marshal is a drop-in replacement for json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalIndent is a drop-in replacement for json.MarshalIndent
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// MarshalToWriter encodes v to w as one indented JSON document
func MarshalToWriter(w io.Writer, v interface{}) error {
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteFile encodes v into the file at path, creating or truncating it.
// A path of "-" writes to stderr.
func WriteFile(path string, v interface{}) error {
	if path == "-" {
		return MarshalToWriter(os.Stderr, v)
	}
	f, err := os.Create(path) //nolint:gosec // G304: path comes from the operator
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := MarshalToWriter(f, v); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
