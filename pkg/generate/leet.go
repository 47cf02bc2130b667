package generate

import "unicode"

// leetTable maps a lower-case letter to its substitution glyphs. The identity
// glyph is implicit.
var leetTable = map[rune][]rune{
	'a': {'4', '@'},
	'b': {'8'},
	'e': {'3'},
	'g': {'6', '9'},
	'h': {'#'},
	'i': {'1', '!'},
	'l': {'1'},
	'o': {'0'},
	'q': {'9'},
	's': {'5', '$'},
	't': {'7', '+'},
	'z': {'2'},
}

// LeetSubstitutions returns the substitution glyphs for r, looked up case
// insensitively. Runes without a table entry return nil.
func LeetSubstitutions(r rune) []rune {
	return leetTable[unicode.ToLower(r)]
}

// LeetStream enumerates every glyph substitution of a word using a mixed-radix
// odometer over per-position candidate lists.
type LeetStream struct {
	options [][]rune
	indices []int
	max     int
	done    bool
}

// Leet returns a stream over the Cartesian product of each rune's candidates.
// Candidate 0 is always the original rune, so the unmodified word is the first
// result. With maxSubstitutions >= 0 only combinations with at most that many
// non-identity choices are produced; the full product is still visited.
func Leet(word string, maxSubstitutions int) *LeetStream {
	source := []rune(word)
	options := make([][]rune, len(source))
	for i, r := range source {
		choices := []rune{r}
		for _, sub := range LeetSubstitutions(r) {
			if !containsRune(choices, sub) {
				choices = append(choices, sub)
			}
		}
		options[i] = choices
	}
	return &LeetStream{
		options: options,
		indices: make([]int, len(source)),
		max:     maxSubstitutions,
	}
}

// Next implements Stream.
func (s *LeetStream) Next() (string, bool) {
	for !s.done {
		out := make([]rune, len(s.options))
		substituted := 0
		for pos, idx := range s.indices {
			out[pos] = s.options[pos][idx]
			if idx != 0 {
				substituted++
			}
		}
		s.advance()

		if s.max >= 0 && substituted > s.max {
			continue
		}
		return string(out), true
	}
	return "", false
}

func (s *LeetStream) advance() {
	for pos := len(s.indices) - 1; pos >= 0; pos-- {
		s.indices[pos]++
		if s.indices[pos] < len(s.options[pos]) {
			for reset := pos + 1; reset < len(s.indices); reset++ {
				s.indices[reset] = 0
			}
			return
		}
		s.indices[pos] = 0
	}
	s.done = true
}

func containsRune(rs []rune, r rune) bool {
	for _, c := range rs {
		if c == r {
			return true
		}
	}
	return false
}
