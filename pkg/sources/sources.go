// Package sources canonicalizes report source labels and fixes their column
// order.
package sources

import (
	"slices"
	"strings"

	"github.com/agentstation/quorum/pkg/profile"
)

// Registry knows the canonical source names and their order.
type Registry struct {
	aliases []profile.SourceAlias
}

// New returns a registry over cfg. Alias order is column order.
func New(cfg profile.Sources) *Registry {
	return &Registry{aliases: cfg.Aliases}
}

// Canonicalize maps a raw label such as "deepseek-v3.2" to its display name.
// Labels matching no alias prefix are returned trimmed.
func (r *Registry) Canonicalize(raw string) string {
	s := strings.TrimSpace(raw)
	if i, ok := r.rank(s); ok {
		return r.aliases[i].Name
	}
	return s
}

func (r *Registry) rank(name string) (int, bool) {
	low := strings.ToLower(name)
	for i, a := range r.aliases {
		if strings.HasPrefix(low, strings.ToLower(a.Prefix)) {
			return i, true
		}
	}
	return len(r.aliases), false
}

// Compare orders names by alias position; unknown names follow, sorted
// lexicographically.
func (r *Registry) Compare(a, b string) int {
	ra, _ := r.rank(a)
	rb, _ := r.rank(b)
	if ra != rb {
		return ra - rb
	}
	return strings.Compare(a, b)
}

// Sort returns the distinct names in column order.
func (r *Registry) Sort(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, r.Compare)
	return out
}

// Dedupe groups the header columns at indices by canonical source name. It
// returns the canonical names in column order and, per name, the original
// column indices in header order.
func (r *Registry) Dedupe(header []string, indices []int) ([]string, map[string][]int) {
	columns := make(map[string][]int)
	var names []string
	for _, idx := range indices {
		if idx < 0 || idx >= len(header) {
			continue
		}
		name := r.Canonicalize(header[idx])
		if _, ok := columns[name]; !ok {
			names = append(names, name)
		}
		columns[name] = append(columns[name], idx)
	}
	return r.Sort(names), columns
}
