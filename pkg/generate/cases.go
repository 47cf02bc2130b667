package generate

import "unicode"

// CaseStream enumerates every letter-case rendering of a word.
//
// The enumeration is a binary odometer with one flag per rune: 1 renders the
// rune upper case, 0 lower case. The right-most flag increments first and
// carries leftward. Non-letters still occupy a flag; both of their orientations
// render identically.
type CaseStream struct {
	source []rune
	lower  []rune
	upper  []rune
	flags  []bool
	max    int
	done   bool
}

// Cases returns a stream over the 2^n case renderings of word, n being its rune
// count. With maxChanges >= 0 only renderings that differ from word in at most
// maxChanges positions are produced; every combination is still visited.
// An empty word yields exactly one result, the empty string.
func Cases(word string, maxChanges int) *CaseStream {
	source := []rune(word)
	s := &CaseStream{
		source: source,
		lower:  make([]rune, len(source)),
		upper:  make([]rune, len(source)),
		flags:  make([]bool, len(source)),
		max:    maxChanges,
	}
	for i, r := range source {
		s.lower[i] = unicode.ToLower(r)
		s.upper[i] = unicode.ToUpper(r)
	}
	return s
}

// Next implements Stream.
func (s *CaseStream) Next() (string, bool) {
	for !s.done {
		out := make([]rune, len(s.source))
		changes := 0
		for i, upper := range s.flags {
			if upper {
				out[i] = s.upper[i]
			} else {
				out[i] = s.lower[i]
			}
			if out[i] != s.source[i] {
				changes++
			}
		}
		s.advance()

		if s.max >= 0 && changes > s.max {
			continue
		}
		return string(out), true
	}
	return "", false
}

func (s *CaseStream) advance() {
	for pos := len(s.flags) - 1; pos >= 0; pos-- {
		if !s.flags[pos] {
			s.flags[pos] = true
			for reset := pos + 1; reset < len(s.flags); reset++ {
				s.flags[reset] = false
			}
			return
		}
	}
	// carried out of the left-most position, or there were no positions
	s.done = true
}
