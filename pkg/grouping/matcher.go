package grouping

import (
	"strings"
	"unicode/utf8"

	"github.com/agentstation/quorum/pkg/normalize"
	"github.com/agentstation/quorum/pkg/profile"
)

// Matcher decides whether two normalized keys denote the same entity.
type Matcher struct {
	cfg profile.Match
}

// NewMatcher returns a matcher for the given similarity rules.
func NewMatcher(cfg profile.Match) *Matcher {
	return &Matcher{cfg: cfg}
}

// Items returns the item matcher of p.
func Items(p *profile.Profile) *Matcher { return NewMatcher(p.Similarity.Item) }

// Themes returns the theme matcher of p.
func Themes(p *profile.Profile) *Matcher { return NewMatcher(p.Similarity.Theme) }

func (m *Matcher) tokens(key string) normalize.TokenSet {
	return normalize.Tokens(key, m.cfg.Tokens)
}

// Similar reports whether keys a and b match: equal keys, containment when the
// shorter key is long enough, or enough shared tokens. With the brand guard on,
// keys whose leading ideographs both exist and differ never match.
func (m *Matcher) Similar(a, b string) bool {
	if m.direct(a, b) {
		return true
	}
	if a == "" || b == "" || m.guarded(a, b) {
		return false
	}
	return m.overlaps(m.tokens(a), m.tokens(b))
}

// Score ranks how close key is to main: 3 equal, 2 containment, 1 token
// overlap, 0 unrelated.
func (m *Matcher) Score(key, main string) int {
	switch {
	case key == "" || main == "":
		return 0
	case key == main:
		return 3
	case strings.Contains(key, main) || strings.Contains(main, key):
		return 2
	case m.tokens(key).Shared(m.tokens(main)) >= m.cfg.MinShared:
		return 1
	default:
		return 0
	}
}

// Matches reports whether key, with its tokens, belongs in g. Non-accumulating
// matchers compare against each member key; accumulating matchers compare
// tokens against the union of the group's tokens.
func (m *Matcher) Matches(g *Group, key string, tokens normalize.TokenSet) bool {
	if key == "" {
		return false
	}
	if !m.cfg.Accumulate {
		for _, k := range g.keys {
			if m.Similar(k, key) {
				return true
			}
		}
		return false
	}
	for _, k := range g.keys {
		if m.direct(k, key) {
			return true
		}
	}
	return m.overlaps(g.tokens, tokens)
}

func (m *Matcher) direct(a, b string) bool {
	if a == "" || b == "" || m.guarded(a, b) {
		return false
	}
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return min(utf8.RuneCountInString(a), utf8.RuneCountInString(b)) >= m.cfg.SubstringMin
	}
	return false
}

func (m *Matcher) guarded(a, b string) bool {
	if !m.cfg.BrandGuard {
		return false
	}
	la := normalize.LeadingIdeographs(a, m.cfg.BrandMin, m.cfg.BrandMax)
	lb := normalize.LeadingIdeographs(b, m.cfg.BrandMin, m.cfg.BrandMax)
	return la != "" && lb != "" && la != lb
}

func (m *Matcher) overlaps(a, b normalize.TokenSet) bool {
	shared := a.Shared(b)
	if shared < m.cfg.MinShared {
		return false
	}
	if m.cfg.MinJaccard <= 0 {
		return true
	}
	union := len(a) + len(b) - shared
	return union > 0 && float64(shared)/float64(union) >= m.cfg.MinJaccard
}
