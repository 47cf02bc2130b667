package generate

// CountOptions configures a Count expansion with exact per-operation budgets.
type CountOptions struct {
	Charset []rune
	Append  int
	Prepend int
	Insert  int
}

type countCandidate struct {
	word     []rune
	appends  int
	prepends int
	inserts  int
}

// CountStream expands a seed breadth-first, spending one unit of an operation
// budget per edge. Every dequeued candidate is produced, including the seed.
// Strings reachable through different operation orders are produced once per
// order.
type CountStream struct {
	charset []rune
	queue   *frontier[countCandidate]
}

// Count returns a stream over every word obtained from seed by applying up to
// opts.Append appends, opts.Prepend prepends and opts.Insert inserts, in every
// order. The seed itself is the first result.
func Count(seed string, opts CountOptions) *CountStream {
	s := &CountStream{
		charset: opts.Charset,
		queue:   newFrontier[countCandidate](64),
	}
	s.queue.Push(countCandidate{
		word:     []rune(seed),
		appends:  max(opts.Append, 0),
		prepends: max(opts.Prepend, 0),
		inserts:  max(opts.Insert, 0),
	})
	return s
}

// Next implements Stream.
func (s *CountStream) Next() (string, bool) {
	c, ok := s.queue.Pop()
	if !ok {
		return "", false
	}

	if c.appends > 0 {
		for _, ch := range s.charset {
			s.queue.Push(countCandidate{withRune(c.word, len(c.word), ch), c.appends - 1, c.prepends, c.inserts})
		}
	}
	if c.prepends > 0 {
		for _, ch := range s.charset {
			s.queue.Push(countCandidate{withRune(c.word, 0, ch), c.appends, c.prepends - 1, c.inserts})
		}
	}
	if c.inserts > 0 {
		for _, ch := range s.charset {
			for pos := 0; pos <= len(c.word); pos++ {
				s.queue.Push(countCandidate{withRune(c.word, pos, ch), c.appends, c.prepends, c.inserts - 1})
			}
		}
	}
	return string(c.word), true
}
