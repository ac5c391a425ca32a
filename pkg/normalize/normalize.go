// Package normalize canonicalizes free-text entity names into comparable keys
// and token sets.
//
// Two rule sets ship with the default profile: themes (investment directions)
// and items (funds). Both run the same pipeline; items add code stripping,
// marker vocabularies and alias patterns.
package normalize

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/errors"
	"github.com/agentstation/quorum/pkg/profile"
)

var dashOnly = regexp.MustCompile(`^[-—–－]+$`)

type alias struct {
	re   *regexp.Regexp
	name string
}

// Normalizer turns raw names into keys under one rule set.
type Normalizer struct {
	rules       profile.Rules
	punctuation map[rune]struct{}
	aliases     []alias
	variants    []*regexp.Regexp
}

// New compiles a normalizer from rules.
func New(rules profile.Rules) (*Normalizer, error) {
	n := &Normalizer{
		rules:       rules,
		punctuation: make(map[rune]struct{}),
	}
	for _, r := range rules.Punctuation {
		n.punctuation[r] = struct{}{}
	}
	for _, a := range rules.Aliases {
		re, err := regexp.Compile(a.Pattern)
		if err != nil {
			return nil, errors.NewValidationError("normalize.aliases", a.Pattern, err.Error())
		}
		n.aliases = append(n.aliases, alias{re: re, name: a.Name})
	}
	if rules.ShareClasses != "" {
		class := "[" + regexp.QuoteMeta(rules.ShareClasses) + "]$"
		n.variants = append(n.variants, regexp.MustCompile(class))
		if rules.FeederMarker != "" {
			n.variants = append(n.variants,
				regexp.MustCompile("(?:"+regexp.QuoteMeta(rules.FeederMarker)+")?"+class))
		}
	}
	return n, nil
}

// Themes returns the theme normalizer of p.
func Themes(p *profile.Profile) (*Normalizer, error) { return New(p.Normalize.Theme) }

// Items returns the item normalizer of p.
func Items(p *profile.Profile) (*Normalizer, error) { return New(p.Normalize.Item) }

// Key returns the canonical key of name. The pipeline is repeated until it
// stops changing the key, so Key(Key(x)) == Key(x).
func (n *Normalizer) Key(name string) string {
	key := name
	for i := 0; i < constants.MaxNormalizePasses; i++ {
		next := n.pass(key)
		if next == key {
			break
		}
		key = next
	}
	return key
}

func (n *Normalizer) pass(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(strings.TrimSpace(s))
	s = strings.NewReplacer("（", "(", "）", ")").Replace(s)
	if dashOnly.MatchString(s) {
		return ""
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if n.rules.CodeDigits > 0 {
		s = stripCodes(s, n.rules.CodeDigits)
	}
	for _, r := range n.rules.Replacements {
		s = strings.ReplaceAll(s, r.From, r.To)
	}
	for _, w := range n.rules.Boilerplate {
		s = strings.ReplaceAll(s, w, "")
	}
	if len(n.punctuation) > 0 {
		s = strings.Map(func(r rune) rune {
			if _, ok := n.punctuation[r]; ok {
				return -1
			}
			return r
		}, s)
	}
	for _, a := range n.aliases {
		if a.re.MatchString(s) {
			s = a.name
			break
		}
	}
	if dashOnly.MatchString(s) {
		return ""
	}
	return s
}

// stripCodes removes digit runs of exactly size digits. Longer or shorter
// runs are kept.
func stripCodes(s string, size int) string {
	runes := []rune(s)
	var b strings.Builder
	for i := 0; i < len(runes); {
		if !isDigit(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && isDigit(runes[j]) {
			j++
		}
		if j-i != size {
			b.WriteString(string(runes[i:j]))
		}
		i = j
	}
	return b.String()
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// Variants returns key plus the forms without a trailing share class or
// feeder marker, shortest first.
func (n *Normalizer) Variants(key string) []string {
	if key == "" {
		return nil
	}
	out := []string{key}
	for _, re := range n.variants {
		if v := re.ReplaceAllString(key, ""); v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, ByLength)
	return out
}

// ByLength orders strings by rune count, then lexicographically.
func ByLength(a, b string) int {
	la, lb := len([]rune(a)), len([]rune(b))
	if la != lb {
		return la - lb
	}
	return strings.Compare(a, b)
}

// LeadingIdeographs returns the leading run of ideographic characters of key,
// capped at maxLen, or "" when the run is shorter than minLen.
func LeadingIdeographs(key string, minLen, maxLen int) string {
	var lead []rune
	for _, r := range key {
		if !unicode.Is(unicode.Han, r) || len(lead) == maxLen {
			break
		}
		lead = append(lead, r)
	}
	if len(lead) < minLen || len(lead) == 0 {
		return ""
	}
	return string(lead)
}
