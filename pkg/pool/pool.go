// Package pool provides object pooling for wordsmith's output path.
// Worker buffers are recycled between the workers that fill them and the
// writer that drains them, which keeps allocation flat no matter how many
// variants a run produces.
//
// Example usage:
//
//	buffers := pool.NewBufferPool(64 * 1024)
//	buf := buffers.Get() // len 0, cap >= 64 KiB
//	buf = append(buf, "word\n"...)
//	buffers.Put(buf)
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool represents a generic object pool with type safety.
// It wraps sync.Pool with statistics tracking and an optional reset
// function. The pool is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		gets      int64
	}
}

// New creates a new typed pool with custom allocation and reset functions.
// The new function is called when the pool is empty and a new object is needed.
// The reset function, if non-nil, is called before an object goes back into
// the pool.
func New[T any](new func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{
		reset: reset,
	}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return new()
	}
	return p
}

// Get retrieves an object from the pool, creating one if the pool is empty.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	atomic.AddInt64(&p.stats.gets, 1)
	return p.pool.Get().(T)
}

// Put returns an object to the pool for reuse.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns current pool statistics.
//
// Returns:
//   - allocated: Total number of objects created by the pool
//   - inUse: Number of objects currently checked out from the pool
//   - hits: Number of Get calls served by a recycled object
//   - misses: Number of Get calls that had to allocate
func (p *Pool[T]) Stats() (allocated, inUse, hits, misses int64) {
	allocated = atomic.LoadInt64(&p.stats.allocated)
	gets := atomic.LoadInt64(&p.stats.gets)
	misses = min(allocated, gets)
	return allocated, atomic.LoadInt64(&p.stats.inUse), gets - misses, misses
}

// BufferPool recycles byte slices of a fixed minimum capacity.
// Slices are stored behind a pointer so that Put does not allocate.
type BufferPool struct {
	capacity int
	pool     *Pool[*[]byte]
}

// NewBufferPool creates a pool handing out empty slices with at least
// capacity bytes of room.
func NewBufferPool(capacity int) *BufferPool {
	if capacity < 1 {
		capacity = 1
	}
	return &BufferPool{
		capacity: capacity,
		pool: New(
			func() *[]byte {
				b := make([]byte, 0, capacity)
				return &b
			},
			func(b *[]byte) {
				*b = (*b)[:0]
			},
		),
	}
}

// Capacity returns the minimum capacity of buffers handed out by Get
func (p *BufferPool) Capacity() int {
	return p.capacity
}

// Get returns an empty buffer with at least Capacity bytes of room.
func (p *BufferPool) Get() []byte {
	b := p.pool.Get()
	buf := *b
	*b = nil
	bufHolders.Put(b)
	return buf[:0]
}

// Put returns buf to the pool. Buffers smaller than Capacity are left to
// the garbage collector.
func (p *BufferPool) Put(buf []byte) {
	if cap(buf) < p.capacity {
		return
	}
	b := bufHolders.Get().(*[]byte)
	*b = buf
	p.pool.Put(b)
}

// Stats reports the underlying pool statistics
func (p *BufferPool) Stats() (allocated, inUse, hits, misses int64) {
	return p.pool.Stats()
}

// bufHolders recycles the *[]byte headers that carry slices through the pool.
var bufHolders = sync.Pool{
	New: func() interface{} { return new([]byte) },
}
