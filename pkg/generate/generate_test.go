package generate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toSet(words []string) map[string]int {
	set := make(map[string]int, len(words))
	for _, w := range words {
		set[w]++
	}
	return set
}

func diffPositions(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := 0
	for i := range ra {
		if ra[i] != rb[i] {
			n++
		}
	}
	return n
}

func TestSingle(t *testing.T) {
	assert.Equal(t, []string{"word"}, Collect(Single("word")))

	s := Single("")
	_, ok := s.Next()
	assert.True(t, ok)
	_, ok = s.Next()
	assert.False(t, ok)
}

func TestCasesUncapped(t *testing.T) {
	got := Collect(Cases("ab", Uncapped))
	assert.Equal(t, []string{"ab", "aB", "Ab", "AB"}, got)

	for _, word := range []string{"a", "pass", "Hello", "wordlist"} {
		got := Collect(Cases(word, Uncapped))
		n := len([]rune(word))
		require.Len(t, got, 1<<n, word)
		assert.Len(t, toSet(got), 1<<n, "all results distinct for %q", word)
		assert.Contains(t, got, strings.ToLower(word))
		assert.Contains(t, got, strings.ToUpper(word))
	}
}

func TestCasesCapped(t *testing.T) {
	got := Collect(Cases("abc", 1))
	assert.ElementsMatch(t, []string{"abc", "abC", "aBc", "Abc"}, got)
	assert.NotContains(t, got, "ABC")

	for _, w := range Collect(Cases("Password", 2)) {
		assert.LessOrEqual(t, diffPositions("Password", w), 2, w)
	}

	// changes are counted against the source, not the flag value
	got = Collect(Cases("Ab", 0))
	assert.Equal(t, []string{"Ab"}, got)
}

func TestCasesNonLetters(t *testing.T) {
	got := Collect(Cases("a1", Uncapped))
	assert.Equal(t, []string{"a1", "a1", "A1", "A1"}, got)
}

func TestCasesEmpty(t *testing.T) {
	assert.Equal(t, []string{""}, Collect(Cases("", Uncapped)))
	assert.Equal(t, []string{""}, Collect(Cases("", 0)))
}

func TestCasesEarlyStop(t *testing.T) {
	var got []string
	for w := range All(Cases(strings.Repeat("a", 40), Uncapped)) {
		got = append(got, w)
		if len(got) == 3 {
			break
		}
	}
	assert.Len(t, got, 3)
}

func TestLeetUncapped(t *testing.T) {
	got := Collect(Leet("leet", Uncapped))
	require.NotEmpty(t, got)
	assert.Equal(t, "leet", got[0])
	assert.Len(t, got, 2*2*2*3)
	assert.Len(t, toSet(got), len(got), "no duplicates")
	assert.Contains(t, got, "l337")
	assert.Contains(t, got, "1337")
	assert.Contains(t, got, "l33+")
}

func TestLeetCapped(t *testing.T) {
	got := Collect(Leet("leet", 1))
	assert.Contains(t, got, "leet")
	assert.Contains(t, got, "1eet")
	assert.NotContains(t, got, "l337")
	for _, w := range got {
		assert.LessOrEqual(t, diffPositions("leet", w), 1, w)
	}

	assert.Equal(t, []string{"leet"}, Collect(Leet("leet", 0)))
}

func TestLeetCaseInsensitiveTable(t *testing.T) {
	got := Collect(Leet("SA", Uncapped))
	assert.ElementsMatch(t, []string{"SA", "S4", "S@", "5A", "54", "5@", "$A", "$4", "$@"}, got)
}

func TestLeetNoEntries(t *testing.T) {
	assert.Equal(t, []string{"xyc"}, Collect(Leet("xyc", Uncapped)))
	assert.Equal(t, []string{"mnp"}, Collect(Leet("mnp", Uncapped)))
}

func TestLeetSingleEntry(t *testing.T) {
	assert.ElementsMatch(t, []string{"xyz", "xy2"}, Collect(Leet("xyz", Uncapped)))
}

func TestLeetEmpty(t *testing.T) {
	assert.Equal(t, []string{""}, Collect(Leet("", Uncapped)))
}

func TestLeetSubstitutions(t *testing.T) {
	assert.Equal(t, []rune{'4', '@'}, LeetSubstitutions('A'))
	assert.Nil(t, LeetSubstitutions('x'))
}

func TestLengthAppendDedup(t *testing.T) {
	got := Collect(Length("a", LengthOptions{
		Charset: []rune("b"),
		Min:     1,
		Max:     2,
		Append:  true,
		Dedup:   true,
	}))
	assert.Equal(t, []string{"a", "ab"}, got)
}

func TestLengthBoundsAndDedup(t *testing.T) {
	opts := LengthOptions{
		Charset: []rune("xy"),
		Min:     3,
		Max:     4,
		Append:  true,
		Prepend: true,
		Insert:  true,
		Dedup:   true,
	}
	got := Collect(Length("ab", opts))
	require.NotEmpty(t, got)
	for _, w := range got {
		n := len([]rune(w))
		assert.GreaterOrEqual(t, n, 3, w)
		assert.LessOrEqual(t, n, 4, w)
	}
	assert.Len(t, toSet(got), len(got), "dedup enabled")
	assert.Contains(t, got, "abx")
	assert.Contains(t, got, "yab")
	assert.Contains(t, got, "axb")
	assert.Contains(t, got, "xaby")
}

func TestLengthWithoutDedupRepeats(t *testing.T) {
	opts := LengthOptions{
		Charset: []rune("b"),
		Min:     0,
		Max:     2,
		Append:  true,
		Prepend: true,
	}
	got := Collect(Length("b", opts))
	assert.Equal(t, []string{"b", "bb", "bb"}, got)

	opts.Dedup = true
	assert.Equal(t, []string{"b", "bb"}, Collect(Length("b", opts)))
}

func TestLengthShorterNoLaterThanDescendants(t *testing.T) {
	got := Collect(Length("", LengthOptions{
		Charset: []rune("ab"),
		Min:     0,
		Max:     3,
		Append:  true,
		Dedup:   true,
	}))
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, len(got[i-1]), len(got[i]))
	}
	assert.Len(t, got, 1+2+4+8)
}

func TestLengthSeedTooLong(t *testing.T) {
	got := Collect(Length("abcdef", LengthOptions{Charset: []rune("x"), Min: 1, Max: 3, Append: true}))
	assert.Empty(t, got)
}

func TestLengthSeedBelowMin(t *testing.T) {
	got := Collect(Length("a", LengthOptions{Charset: []rune("x"), Min: 3, Max: 3, Append: true, Dedup: true}))
	assert.Equal(t, []string{"axx"}, got)
}

func TestLengthUnicode(t *testing.T) {
	got := Collect(Length("é", LengthOptions{Charset: []rune("ß"), Min: 2, Max: 2, Insert: true, Dedup: true}))
	assert.ElementsMatch(t, []string{"ßé", "éß"}, got)
}

func TestCountAppendPrepend(t *testing.T) {
	got := Collect(Count("a", CountOptions{Charset: []rune("b"), Append: 1, Prepend: 1}))
	require.NotEmpty(t, got)
	assert.Equal(t, "a", got[0])
	assert.Contains(t, got, "ab")
	assert.Contains(t, got, "ba")
	assert.Contains(t, got, "bab")
	// "bab" is reachable by append-then-prepend and prepend-then-append
	assert.Equal(t, 2, toSet(got)["bab"])
	assert.Len(t, got, 5)
}

func TestCountInsertPositions(t *testing.T) {
	got := Collect(Count("ab", CountOptions{Charset: []rune("x"), Insert: 1}))
	assert.Equal(t, []string{"ab", "xab", "axb", "abx"}, got)
}

func TestCountZeroBudget(t *testing.T) {
	assert.Equal(t, []string{"seed"}, Collect(Count("seed", CountOptions{Charset: []rune("xyz")})))
}

func TestCountSizeGrowsWithBudget(t *testing.T) {
	// one seed, |charset| one-append children, |charset|^2 two-append children
	got := Collect(Count("", CountOptions{Charset: []rune("abc"), Append: 2}))
	assert.Len(t, got, 1+3+9)
	for _, w := range got {
		assert.LessOrEqual(t, len(w), 2)
	}
}

func TestFrontierGrowth(t *testing.T) {
	f := newFrontier[int](1)
	for i := 0; i < 100; i++ {
		f.Push(i)
		if i%3 == 0 {
			v, ok := f.Pop()
			require.True(t, ok)
			assert.Equal(t, i/3, v)
		}
	}
	assert.Equal(t, 100-34, f.Len())
}
