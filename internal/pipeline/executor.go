package pipeline

import (
	"runtime"

	"github.com/ajitpratap0/wordsmith/pkg/pool"
)

const (
	// DefaultBufferCapacity is the flush threshold of a worker buffer
	DefaultBufferCapacity = 64 * 1024
	// DefaultChannelMultiplier scales the output channel with the worker count
	DefaultChannelMultiplier = 4
	// DefaultChunksPerWorker controls how finely the input is split. Lines
	// vary wildly in expansion cost, so workers need more than one chunk
	// each to stay balanced.
	DefaultChunksPerWorker = 8
	minChannelCapacity     = 2
)

// ExecutorConfig configures an Executor. Zero values select the defaults.
type ExecutorConfig struct {
	Workers           int
	ChannelMultiplier int
	BufferCapacity    int
	ChunksPerWorker   int
}

// Executor is the execution context of a run: how many workers process the
// input, how deep the output channel is and the buffers they share.
// Create one at startup and pass it to Run.
type Executor struct {
	workers         int
	multiplier      int
	chunksPerWorker int
	buffers         *pool.BufferPool
}

// NewExecutor applies defaults to config and creates the buffer pool
func NewExecutor(config ExecutorConfig) *Executor {
	if config.Workers < 1 {
		config.Workers = runtime.NumCPU()
	}
	if config.ChannelMultiplier < 1 {
		config.ChannelMultiplier = DefaultChannelMultiplier
	}
	if config.BufferCapacity < 1 {
		config.BufferCapacity = DefaultBufferCapacity
	}
	if config.ChunksPerWorker < 1 {
		config.ChunksPerWorker = DefaultChunksPerWorker
	}
	return &Executor{
		workers:         config.Workers,
		multiplier:      config.ChannelMultiplier,
		chunksPerWorker: config.ChunksPerWorker,
		buffers:         pool.NewBufferPool(config.BufferCapacity),
	}
}

// Workers returns the number of concurrent workers
func (e *Executor) Workers() int { return e.workers }

// ChannelCapacity returns the output channel capacity
func (e *Executor) ChannelCapacity() int {
	return max(e.workers*e.multiplier, minChannelCapacity)
}

// BufferCapacity returns the worker buffer flush threshold
func (e *Executor) BufferCapacity() int { return e.buffers.Capacity() }

// Buffers returns the pool shared by workers and the writer
func (e *Executor) Buffers() *pool.BufferPool { return e.buffers }

func (e *Executor) chunkCount() int {
	return e.workers * e.chunksPerWorker
}
