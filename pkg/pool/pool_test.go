package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolResetsOnPut(t *testing.T) {
	type counter struct{ n int }
	p := New(
		func() *counter { return &counter{} },
		func(c *counter) { c.n = 0 },
	)

	c := p.Get()
	c.n = 42
	p.Put(c)

	got := p.Get()
	assert.Equal(t, 0, got.n)

	allocated, inUse, hits, misses := p.Stats()
	assert.GreaterOrEqual(t, allocated, int64(1))
	assert.Equal(t, int64(1), inUse)
	assert.Equal(t, int64(2), hits+misses)
}

func TestBufferPoolGet(t *testing.T) {
	p := NewBufferPool(1024)
	assert.Equal(t, 1024, p.Capacity())

	buf := p.Get()
	assert.Len(t, buf, 0)
	assert.GreaterOrEqual(t, cap(buf), 1024)

	buf = append(buf, "alpha\n"...)
	p.Put(buf)

	again := p.Get()
	assert.Len(t, again, 0, "recycled buffers come back empty")
}

func TestBufferPoolDropsSmallBuffers(t *testing.T) {
	p := NewBufferPool(64)
	p.Put(make([]byte, 0, 8))
	for i := 0; i < 10; i++ {
		require.GreaterOrEqual(t, cap(p.Get()), 64)
	}
}

func TestBufferPoolConcurrent(t *testing.T) {
	p := NewBufferPool(256)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				buf := p.Get()
				buf = append(buf, byte(i))
				p.Put(buf)
			}
		}()
	}
	wg.Wait()

	_, inUse, _, _ := p.Stats()
	assert.Equal(t, int64(0), inUse)
}
