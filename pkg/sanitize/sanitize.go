// Package sanitize cleans raw wordlist lines into candidate words.
//
// Scraped wordlists carry metadata noise such as parenthesised annotations,
// bullets and punctuation. Sanitize turns one raw line into zero, one or two
// lower-cased candidates that fit the length window.
package sanitize

import (
	"strings"
	"unicode/utf8"
)

const (
	// MinLength is the shortest candidate kept, in runes.
	MinLength = 2
	// MaxLength is the longest candidate kept, in runes.
	MaxLength = 16
)

// stripped lists the runes removed from the stripped candidate.
const stripped = "•!@#$%^&*()-_=+[]{}|;:'\",.<>/?`~\\ \t "

// Sanitize returns the candidates derived from line:
//
//  1. the line with parenthesised text removed, ASCII lower-cased, punctuation
//     and blanks stripped, then trimmed
//  2. the same line before punctuation stripping, trimmed, when it differs
//     from the first candidate
//
// Each candidate is kept only when its length lies in [MinLength, MaxLength].
func Sanitize(line string) []string {
	var lowered strings.Builder
	lowered.Grow(len(line))

	depth := false
	for _, r := range line {
		switch {
		case r == '(':
			depth = true
		case r == ')':
			depth = false
		case !depth:
			lowered.WriteRune(toASCIILower(r))
		}
	}

	plain := strings.TrimSpace(lowered.String())
	clean := strings.TrimSpace(strings.Map(func(r rune) rune {
		if strings.ContainsRune(stripped, r) {
			return -1
		}
		return r
	}, plain))

	out := make([]string, 0, 2)
	if inWindow(clean) {
		out = append(out, clean)
	}
	if clean != plain && inWindow(plain) {
		out = append(out, plain)
	}
	return out
}

func inWindow(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= MinLength && n <= MaxLength
}

func toASCIILower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
