package matching

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Tokenize case-folds s and splits it on every rune that is not a letter or
// digit. "WH-1000XM5" yields ["wh", "1000xm5"].
func Tokenize(s string) []string {
	// Casers carry state and must not be shared between goroutines.
	s = norm.NFC.String(cases.Fold().String(s))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// tokenSet returns the sorted distinct tokens.
func tokenSet(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	set := make([]string, len(tokens))
	copy(set, tokens)
	sort.Strings(set)

	out := set[:1]
	for _, t := range set[1:] {
		if t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}

// Ratio is the Levenshtein similarity of a and b scaled to 0..100:
// round(100 * (1 - distance / max(len(a), len(b)))), lengths in runes.
// Two empty strings are identical.
func Ratio(a, b string) int {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(dist)/float64(maxLen))))
}

// TokenSetRatio scores two names by their shared tokens, ignoring order and
// repetition. Let sect be the sorted common tokens and t1, t2 be sect followed
// by each side's remaining tokens; the score is the best Ratio among
// (sect, t1), (sect, t2) and (t1, t2). A name with no tokens scores 0.
func TokenSetRatio(a, b string) int {
	return tokenSetScore(tokenSet(Tokenize(a)), tokenSet(Tokenize(b)))
}

// tokenSetScore is TokenSetRatio over prepared (sorted, distinct) token sets.
func tokenSetScore(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var sect, diffA, diffB []string
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			sect = append(sect, a[i])
			i++
			j++
		case a[i] < b[j]:
			diffA = append(diffA, a[i])
			i++
		default:
			diffB = append(diffB, b[j])
			j++
		}
	}
	diffA = append(diffA, a[i:]...)
	diffB = append(diffB, b[j:]...)

	sectStr := strings.Join(sect, " ")
	t1 := joinNonEmpty(sectStr, strings.Join(diffA, " "))
	t2 := joinNonEmpty(sectStr, strings.Join(diffB, " "))

	best := Ratio(t1, t2)
	if sectStr != "" {
		best = max(best, Ratio(sectStr, t1), Ratio(sectStr, t2))
	}
	return best
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
