package plan

import (
	"slices"

	"github.com/agentstation/quorum/pkg/normalize"
)

// Method records how a report name was resolved.
type Method int

// Resolution methods, strongest first.
const (
	Unresolved Method = iota
	Exact
	Variant
	Similar
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case Exact:
		return "exact"
	case Variant:
		return "variant"
	case Similar:
		return "similar"
	default:
		return "unresolved"
	}
}

// Mapper resolves report item names to plan names.
type Mapper struct {
	norm       *normalize.Normalizer
	minJaccard float64

	items     []Item
	names     []string
	byName    map[string]Item
	keys      map[string]string
	byVariant map[string][]string
}

// NewMapper indexes items for resolution. minJaccard is the bigram overlap a
// fuzzy match must reach.
func NewMapper(items []Item, norm *normalize.Normalizer, minJaccard float64) *Mapper {
	m := &Mapper{
		norm:       norm,
		minJaccard: minJaccard,
		items:      items,
		byName:     make(map[string]Item),
		keys:       make(map[string]string),
		byVariant:  make(map[string][]string),
	}
	for _, it := range items {
		if it.Name == "" {
			continue
		}
		if _, dup := m.byName[it.Name]; dup {
			continue
		}
		m.names = append(m.names, it.Name)
		m.byName[it.Name] = it
		key := norm.Key(it.Name)
		m.keys[it.Name] = key
		for _, v := range norm.Variants(key) {
			m.byVariant[v] = append(m.byVariant[v], it.Name)
		}
	}
	return m
}

// Names returns the plan names in plan order.
func (m *Mapper) Names() []string { return m.names }

// Index returns the plan position of name, or -1.
func (m *Mapper) Index(name string) int { return slices.Index(m.names, name) }

// Resolve maps a report name to a plan item: an exact name first, then a
// shared key variant (shortest plan name wins), then the best bigram overlap
// at or above the threshold.
func (m *Mapper) Resolve(name string) (Item, Method, bool) {
	if name == "" {
		return Item{}, Unresolved, false
	}
	if it, ok := m.byName[name]; ok {
		return it, Exact, true
	}
	key := m.norm.Key(name)
	if key == "" {
		return Item{}, Unresolved, false
	}

	var hits []string
	for _, v := range m.norm.Variants(key) {
		for _, n := range m.byVariant[v] {
			if !slices.Contains(hits, n) {
				hits = append(hits, n)
			}
		}
	}
	if len(hits) > 0 {
		slices.SortFunc(hits, normalize.ByLength)
		return m.byName[hits[0]], Variant, true
	}

	best, score := "", 0.0
	for _, n := range m.names {
		if s := normalize.Jaccard(key, m.keys[n]); s > score {
			best, score = n, s
		}
	}
	if best != "" && score >= m.minJaccard {
		return m.byName[best], Similar, true
	}
	return Item{}, Unresolved, false
}
