package compression

import (
	"fmt"
	"io"
	"os"
)

// Sink is the destination of a run's output. Close finalizes the compressed
// stream and then closes the underlying file, leaving stdout open.
type Sink struct {
	io.Writer
	enc  io.WriteCloser
	file *os.File
	name string
}

// OpenSink opens the output at path, creating or truncating it. An empty
// path or "-" selects stdout.
func OpenSink(path string, config *Config) (*Sink, error) {
	var (
		file *os.File
		name = path
	)
	if path == "" || path == "-" {
		name = "stdout"
	} else {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644) //nolint:gosec // G304: output path comes from the operator
		if err != nil {
			return nil, fmt.Errorf("failed to create output file: %w", err)
		}
		file = f
	}

	var dst io.Writer = os.Stdout
	if file != nil {
		dst = file
	}
	enc, err := NewWriter(dst, config)
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, err
	}

	return &Sink{Writer: enc, enc: enc, file: file, name: name}, nil
}

// Name returns the output path, or "stdout"
func (s *Sink) Name() string {
	return s.name
}

// Close flushes the encoder and closes the output file
func (s *Sink) Close() error {
	err := s.enc.Close()
	if s.file != nil {
		if closeErr := s.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		s.file = nil
	}
	return err
}
