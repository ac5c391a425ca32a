// Package grouping clusters entity name variants that denote the same thing.
//
// Clustering is greedy single-linkage: members are processed in insertion
// order and each joins the first existing group it matches, else starts a new
// group. The result depends on insertion order; callers feed members in a
// fixed order to keep runs reproducible.
package grouping

import (
	"slices"

	"github.com/agentstation/quorum/pkg/normalize"
)

// Member is one observed name.
type Member struct {
	// Source is the canonical source label that reported the name.
	Source string
	// Name is the raw name as written.
	Name string
	// Key is the normalized key of Name.
	Key string
	// Order is the caller's stable ordering hint (e.g. first-seen position).
	Order int
}

// Group is a cluster of members believed to denote one entity.
type Group struct {
	Members []Member

	keys   []string
	tokens normalize.TokenSet
}

// Keys returns the distinct member keys in insertion order.
func (g *Group) Keys() []string { return g.keys }

func (g *Group) add(m Member, tokens normalize.TokenSet) {
	g.Members = append(g.Members, m)
	if !slices.Contains(g.keys, m.Key) {
		g.keys = append(g.keys, m.Key)
	}
	g.tokens.Union(tokens)
}

// MainName is the most frequent raw name; ties go to the shortest, then the
// lexicographically smallest.
func (g *Group) MainName() string {
	freq := make(map[string]int)
	for _, m := range g.Members {
		freq[m.Name]++
	}
	var best string
	first := true
	for name, n := range freq {
		if first {
			best, first = name, false
			continue
		}
		switch {
		case n > freq[best]:
			best = name
		case n == freq[best] && normalize.ByLength(name, best) < 0:
			best = name
		}
	}
	return best
}

// MergedNames returns the distinct raw names ordered by length, then
// lexicographically.
func (g *Group) MergedNames() []string {
	var names []string
	for _, m := range g.Members {
		if !slices.Contains(names, m.Name) {
			names = append(names, m.Name)
		}
	}
	slices.SortFunc(names, normalize.ByLength)
	return names
}

// Sources returns the distinct sources in first-seen order.
func (g *Group) Sources() []string {
	var out []string
	for _, m := range g.Members {
		if !slices.Contains(out, m.Source) {
			out = append(out, m.Source)
		}
	}
	return out
}

// BySource returns the members reported by source, in insertion order.
func (g *Group) BySource(source string) []Member {
	var out []Member
	for _, m := range g.Members {
		if m.Source == source {
			out = append(out, m)
		}
	}
	return out
}

// Order returns the smallest Order hint of the group's members.
func (g *Group) Order() int {
	lowest := g.Members[0].Order
	for _, m := range g.Members[1:] {
		lowest = min(lowest, m.Order)
	}
	return lowest
}

// Grouper accumulates members into groups.
type Grouper struct {
	matcher *Matcher
	groups  []*Group
}

// New returns an empty grouper using matcher.
func New(matcher *Matcher) *Grouper {
	return &Grouper{matcher: matcher}
}

// Add places m in the first matching group, or a new one, and returns it.
func (gr *Grouper) Add(m Member) *Group {
	tokens := gr.matcher.tokens(m.Key)
	for _, g := range gr.groups {
		if gr.matcher.Matches(g, m.Key, tokens) {
			g.add(m, tokens)
			return g
		}
	}
	g := &Group{tokens: normalize.TokenSet{}}
	g.add(m, tokens)
	gr.groups = append(gr.groups, g)
	return g
}

// Groups returns the groups in creation order.
func (gr *Grouper) Groups() []*Group {
	return gr.groups
}
