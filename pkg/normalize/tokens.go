package normalize

import (
	"regexp"
	"slices"

	"github.com/agentstation/quorum/pkg/profile"
)

var wordPattern = regexp.MustCompile(`\p{Han}{2,}|[a-z0-9]{2,}`)

// TokenSet is an unordered set of tokens.
type TokenSet map[string]struct{}

// NewTokenSet returns a set holding tokens.
func NewTokenSet(tokens ...string) TokenSet {
	s := make(TokenSet, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// Union adds every token of other to s.
func (s TokenSet) Union(other TokenSet) {
	for t := range other {
		s[t] = struct{}{}
	}
}

// Shared counts tokens present in both sets.
func (s TokenSet) Shared(other TokenSet) int {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for t := range small {
		if _, ok := large[t]; ok {
			n++
		}
	}
	return n
}

// Sorted returns the tokens in lexicographic order.
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Tokens splits key under the given mode. In word mode, ideographic runs and
// ASCII alphanumeric runs of two or more characters are used when at least two
// are found; otherwise both modes fall back to overlapping bigrams. A
// single-character key is its own token. Only the empty key has no tokens.
func Tokens(key, mode string) TokenSet {
	if key == "" {
		return TokenSet{}
	}
	if mode != profile.TokensBigrams {
		if words := wordPattern.FindAllString(key, -1); len(words) >= 2 {
			return NewTokenSet(words...)
		}
	}
	return Bigrams(key)
}

// Bigrams returns the overlapping two-character windows of key.
func Bigrams(key string) TokenSet {
	runes := []rune(key)
	switch len(runes) {
	case 0:
		return TokenSet{}
	case 1:
		return NewTokenSet(key)
	}
	s := make(TokenSet, len(runes)-1)
	for i := 0; i+1 < len(runes); i++ {
		s[string(runes[i:i+2])] = struct{}{}
	}
	return s
}

// Jaccard is the bigram overlap of a and b: |A∩B| / |A∪B|.
func Jaccard(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ta, tb := Bigrams(a), Bigrams(b)
	inter := ta.Shared(tb)
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
