package pipeline

import (
	"context"

	wserrors "github.com/ajitpratap0/wordsmith/pkg/errors"
	"github.com/ajitpratap0/wordsmith/pkg/pool"
)

// WorkerBuffer accumulates newline-terminated words for one worker. Once it
// holds at least the pool's capacity in bytes, ownership of the bytes moves
// into the output channel and a fresh buffer is taken from the pool.
//
// A WorkerBuffer is not safe for concurrent use.
type WorkerBuffer struct {
	ctx     context.Context
	out     chan<- []byte
	buffers *pool.BufferPool
	buf     []byte
	sent    int
	closed  bool
}

// NewWorkerBuffer creates a buffer that sends into out. Sends block while out
// is full and fail once ctx is done.
func NewWorkerBuffer(ctx context.Context, out chan<- []byte, buffers *pool.BufferPool) *WorkerBuffer {
	return &WorkerBuffer{
		ctx:     ctx,
		out:     out,
		buffers: buffers,
		buf:     buffers.Get(),
	}
}

// Push appends word and a newline, flushing when the buffer is full.
func (b *WorkerBuffer) Push(word string) error {
	if b.closed {
		return wserrors.New(wserrors.ErrorTypeInternal, "push on closed worker buffer")
	}
	b.buf = append(b.buf, word...)
	b.buf = append(b.buf, '\n')
	if len(b.buf) >= b.buffers.Capacity() {
		return b.flush()
	}
	return nil
}

// Len returns the number of bytes not yet handed to the writer
func (b *WorkerBuffer) Len() int {
	return len(b.buf)
}

// Sent returns how many buffers have been handed to the writer
func (b *WorkerBuffer) Sent() int {
	return b.sent
}

// Close hands any remaining bytes to the writer. It is safe to call more
// than once; later calls do nothing.
func (b *WorkerBuffer) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if len(b.buf) == 0 {
		b.buffers.Put(b.buf)
		b.buf = nil
		return nil
	}
	err := b.send(b.buf)
	b.buf = nil
	return err
}

func (b *WorkerBuffer) flush() error {
	full := b.buf
	b.buf = b.buffers.Get()
	return b.send(full)
}

func (b *WorkerBuffer) send(full []byte) error {
	if err := b.ctx.Err(); err != nil {
		b.buffers.Put(full)
		return channelClosed(b.ctx)
	}
	select {
	case b.out <- full:
		b.sent++
		return nil
	case <-b.ctx.Done():
		b.buffers.Put(full)
		return channelClosed(b.ctx)
	}
}

func channelClosed(ctx context.Context) error {
	return wserrors.Wrap(context.Cause(ctx), wserrors.ErrorTypeChannelClosed, "output channel closed with pending data")
}
