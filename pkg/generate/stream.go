// Package generate provides the lazy combinatorial word generators used by the
// wordsmith pipeline.
//
// Every generator is a freshly constructed value that produces its results one
// at a time through Next. Nothing is materialized up front, so a consumer can
// stop early and the memory held by a generator is bounded by its own state
// (an odometer or a breadth-first frontier), not by the size of its output.
//
// # Generators
//
//   - Cases: every upper/lower rendering of a word, optionally capped by the
//     number of changed positions
//   - Leet: every glyph substitution of a word, optionally capped by the number
//     of substituted positions
//   - Length: breadth-first append/prepend/insert expansion bounded by length
//   - Count: breadth-first expansion with an exact operation budget
//
// # Basic Usage
//
//	s := generate.Cases("pass", generate.Uncapped)
//	for word, ok := s.Next(); ok; word, ok = s.Next() {
//	    fmt.Println(word)
//	}
//
//	// or with range-over-func
//	for word := range generate.All(generate.Leet("leet", 1)) {
//	    fmt.Println(word)
//	}
//
// Generators are not safe for concurrent use; construct one per goroutine.
package generate

import "iter"

// Uncapped disables the change/substitution cap of Cases and Leet.
const Uncapped = -1

// Stream is a lazily produced, finite sequence of words.
type Stream interface {
	// Next returns the next word. The boolean is false once the stream is
	// exhausted; further calls keep returning false.
	Next() (string, bool)
}

// SingleStream yields exactly one word.
type SingleStream struct {
	word string
	done bool
}

// Single returns a stream yielding word once. Disabled pipeline stages use it
// as their pass-through.
func Single(word string) *SingleStream {
	return &SingleStream{word: word}
}

// Next implements Stream.
func (s *SingleStream) Next() (string, bool) {
	if s.done {
		return "", false
	}
	s.done = true
	return s.word, true
}

// All adapts a Stream to a range-over-func sequence.
func All(s Stream) iter.Seq[string] {
	return func(yield func(string) bool) {
		for word, ok := s.Next(); ok; word, ok = s.Next() {
			if !yield(word) {
				return
			}
		}
	}
}

// Collect drains s into a slice.
func Collect(s Stream) []string {
	var out []string
	for word := range All(s) {
		out = append(out, word)
	}
	return out
}
