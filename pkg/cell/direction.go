package cell

import (
	"strings"

	"github.com/agentstation/quorum/pkg/profile"
)

// Direction is the normalized class of a recommendation.
type Direction int

// Direction classes. None means no phrase was available to classify.
const (
	None Direction = iota
	Increase
	Decrease
	Unchanged
)

// Directions lists the usable classes in vote order.
var Directions = []Direction{Increase, Decrease, Unchanged}

// String returns the profile name of the direction.
func (d Direction) String() string {
	switch d {
	case Increase:
		return profile.Increase
	case Decrease:
		return profile.Decrease
	case Unchanged:
		return profile.Unchanged
	default:
		return "none"
	}
}

// Label renders the direction with the profile's short vote labels.
func (d Direction) Label(l profile.Labels) string {
	switch d {
	case Increase:
		return l.Increase
	case Decrease:
		return l.Decrease
	case Unchanged:
		return l.Unchanged
	default:
		return ""
	}
}

// Usable reports whether the direction counts as a vote.
func (d Direction) Usable() bool { return d != None }

// ParseDirection maps a profile direction name to a Direction.
func ParseDirection(name string) Direction {
	switch name {
	case profile.Increase:
		return Increase
	case profile.Decrease:
		return Decrease
	case profile.Unchanged:
		return Unchanged
	default:
		return None
	}
}

// Kind selects the context-specific keyword set.
type Kind int

// Entity kinds.
const (
	Category Kind = iota
	Item
)

// Classifier maps qualitative phrases to directions.
type Classifier struct {
	kw profile.Keywords
}

// NewClassifier returns a classifier over the given keyword sets.
func NewClassifier(kw profile.Keywords) *Classifier {
	return &Classifier{kw: kw}
}

// Classify returns the direction expressed by phrase. The maintain set wins
// over everything, then the kind-specific rules, then the generic fallback.
// An unmatched phrase is Unchanged; an absent phrase is None.
func (c *Classifier) Classify(phrase string, kind Kind) Direction {
	p := strings.TrimSpace(phrase)
	if p == "" {
		return None
	}
	for _, k := range c.kw.Maintain {
		if strings.Contains(p, k) {
			return Unchanged
		}
	}

	rules := c.kw.Category
	if kind == Item {
		rules = c.kw.Item
	}
	if d, ok := match(rules, p); ok {
		return d
	}
	if d, ok := match(c.kw.Fallback, p); ok {
		return d
	}
	return Unchanged
}

// Arrow returns the direction of the first arrow rule found in text.
func (c *Classifier) Arrow(text string) (Direction, bool) {
	return match(c.kw.Arrows, text)
}

func match(rules []profile.Rule, text string) (Direction, bool) {
	for _, r := range rules {
		if strings.Contains(text, r.Keyword) {
			return ParseDirection(r.Direction), true
		}
	}
	return None, false
}
