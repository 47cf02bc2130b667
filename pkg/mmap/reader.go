// Package mmap provides read-only memory-mapped input for the wordsmith pipeline
package mmap

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

// Reader holds a read-only memory mapping of a whole file
type Reader struct {
	file     *os.File
	data     []byte
	fileSize int64
	pageSize int

	mu sync.RWMutex
}

// Open maps filename read-only. An empty file yields a Reader with no data.
func Open(filename string) (*Reader, error) {
	file, err := os.Open(filename) //nolint:gosec // G304: input path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if !stat.Mode().IsRegular() {
		file.Close()
		return nil, fmt.Errorf("%s is not a regular file", filename)
	}

	r := &Reader{
		file:     file,
		fileSize: stat.Size(),
		pageSize: os.Getpagesize(),
	}
	if r.fileSize == 0 {
		return r, nil
	}

	data, err := mmap(int(file.Fd()), 0, int(r.fileSize), protRead, mapShared)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to mmap file: %w", err)
	}
	// Advice is best effort; a refusal does not affect correctness.
	_ = madvise(data, madvSequential)

	r.data = data
	return r, nil
}

// Bytes returns the mapped contents. The slice is valid until Close.
func (r *Reader) Bytes() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

// Size returns the mapped file size in bytes
func (r *Reader) Size() int64 {
	return r.fileSize
}

// Prefetch advises the kernel that the pages backing chunk will be needed soon.
// chunk must be a sub-slice of Bytes.
func (r *Reader) Prefetch(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.data == nil {
		return
	}

	// madvise needs a page aligned start address
	start := cap(r.data) - cap(chunk)
	aligned := (start / r.pageSize) * r.pageSize
	end := start + len(chunk)
	if aligned < 0 || end > len(r.data) {
		return
	}
	_ = madvise(r.data[aligned:end], madvWillneed)
}

// Close unmaps the file and closes it
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error

	// Unmap the file
	if r.data != nil {
		err = munmap(r.data)
		r.data = nil
	}

	// Close the file
	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}

	return err
}

// Chunks splits data into at most n contiguous ranges of roughly equal size.
// Every range except possibly the last ends right after a '\n', so no line is
// split across two ranges.
func Chunks(data []byte, n int) [][]byte {
	if len(data) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}

	target := (len(data) + n - 1) / n
	chunks := make([][]byte, 0, n)
	for start := 0; start < len(data); {
		end := start + target
		if end >= len(data) {
			chunks = append(chunks, data[start:])
			break
		}
		if nl := bytes.IndexByte(data[end:], '\n'); nl >= 0 {
			end += nl + 1
		} else {
			end = len(data)
		}
		chunks = append(chunks, data[start:end])
		start = end
	}
	return chunks
}

// Lines calls fn for each '\n' delimited line of chunk, without the delimiter.
// A trailing newline terminates the last line rather than starting an empty
// one. Iteration stops early when fn returns false.
func Lines(chunk []byte, fn func(line []byte) bool) {
	for len(chunk) > 0 {
		nl := bytes.IndexByte(chunk, '\n')
		if nl < 0 {
			fn(chunk)
			return
		}
		if !fn(chunk[:nl]) {
			return
		}
		chunk = chunk[nl+1:]
	}
}
