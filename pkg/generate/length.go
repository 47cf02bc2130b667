package generate

// LengthOptions configures a Length expansion.
type LengthOptions struct {
	Charset []rune
	Min     int
	Max     int
	Append  bool
	Prepend bool
	Insert  bool
	// Dedup tracks every enqueued word so each string is expanded and
	// produced at most once.
	Dedup bool
}

// LengthStream expands a seed breadth-first by appending, prepending and
// inserting charset runes, never letting a candidate grow past Max runes.
type LengthStream struct {
	opts  LengthOptions
	queue *frontier[[]rune]
	seen  map[string]struct{}
}

// Length returns a stream over every word reachable from seed by repeated
// append/prepend/insert operations whose rune count stays within opts.Max.
// A candidate is produced only once it is dequeued, after its children have
// been pushed, and only when its length lies in [opts.Min, opts.Max].
func Length(seed string, opts LengthOptions) *LengthStream {
	s := &LengthStream{
		opts:  opts,
		queue: newFrontier[[]rune](64),
	}
	if opts.Dedup {
		s.seen = make(map[string]struct{})
	}

	word := []rune(seed)
	if len(word) <= opts.Max {
		if s.seen != nil {
			s.seen[seed] = struct{}{}
		}
		s.queue.Push(word)
	}
	return s
}

// Next implements Stream.
func (s *LengthStream) Next() (string, bool) {
	for {
		current, ok := s.queue.Pop()
		if !ok {
			return "", false
		}
		s.expand(current)
		if n := len(current); n >= s.opts.Min && n <= s.opts.Max {
			return string(current), true
		}
	}
}

func (s *LengthStream) expand(current []rune) {
	if len(current)+1 > s.opts.Max {
		return
	}
	for _, ch := range s.opts.Charset {
		if s.opts.Append {
			s.push(withRune(current, len(current), ch))
		}
		if s.opts.Prepend {
			s.push(withRune(current, 0, ch))
		}
		if s.opts.Insert {
			for pos := 0; pos <= len(current); pos++ {
				s.push(withRune(current, pos, ch))
			}
		}
	}
}

func (s *LengthStream) push(candidate []rune) {
	if len(candidate) > s.opts.Max {
		return
	}
	if s.seen != nil {
		key := string(candidate)
		if _, dup := s.seen[key]; dup {
			return
		}
		s.seen[key] = struct{}{}
	}
	s.queue.Push(candidate)
}

// withRune returns a copy of word with r inserted before index pos.
func withRune(word []rune, pos int, r rune) []rune {
	out := make([]rune, len(word)+1)
	copy(out, word[:pos])
	out[pos] = r
	copy(out[pos+1:], word[pos:])
	return out
}
