package generate

// frontier is an unbounded FIFO queue backed by a growable ring buffer.
type frontier[T any] struct {
	items []T
	head  int
	size  int
}

func newFrontier[T any](capacity int) *frontier[T] {
	if capacity < 4 {
		capacity = 4
	}
	return &frontier[T]{items: make([]T, capacity)}
}

func (f *frontier[T]) Len() int { return f.size }

func (f *frontier[T]) Push(v T) {
	if f.size == len(f.items) {
		f.grow()
	}
	f.items[(f.head+f.size)%len(f.items)] = v
	f.size++
}

func (f *frontier[T]) Pop() (T, bool) {
	var zero T
	if f.size == 0 {
		return zero, false
	}
	v := f.items[f.head]
	f.items[f.head] = zero
	f.head = (f.head + 1) % len(f.items)
	f.size--
	return v, true
}

func (f *frontier[T]) grow() {
	next := make([]T, len(f.items)*2)
	for i := 0; i < f.size; i++ {
		next[i] = f.items[(f.head+i)%len(f.items)]
	}
	f.items = next
	f.head = 0
}
