package dedup

import (
	"strings"
	"unicode"
)

// Normalize collapses whitespace, strips punctuation and lowercases a title
// so comparisons are stable across collaborators and runs.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func tokenSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		set[tok] = struct{}{}
	}
	return set
}

// Similarity returns the token-overlap (Jaccard) ratio between two titles
// after normalization. 1.0 means identical token sets, 0.0 means disjoint.
func Similarity(a, b string) float64 {
	sa := tokenSet(Normalize(a))
	sb := tokenSet(Normalize(b))
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	common := 0
	for tok := range sa {
		if _, ok := sb[tok]; ok {
			common++
		}
	}
	union := len(sa) + len(sb) - common
	return float64(common) / float64(union)
}
