package plan

import (
	"slices"
	"strings"

	"github.com/agentstation/quorum/pkg/errors"
)

// Mapping is a report name resolved to a different plan name.
type Mapping struct {
	From   string
	To     string
	Method Method
}

// Findings is the gate result for one source document.
type Findings struct {
	Source string
	// Missing lists plan names the source did not cover, in plan order.
	Missing []string
	// Extra lists report names that resolve to no plan item, sorted.
	Extra []string
	// Mapped lists names resolved under a different spelling, sorted by
	// target then report name.
	Mapped []Mapping
}

// Clean reports whether the source matched the plan without drift.
func (f Findings) Clean() bool {
	return len(f.Missing) == 0 && len(f.Extra) == 0 && len(f.Mapped) == 0
}

// Listing is the item names one source reported, in document order.
type Listing struct {
	Source string
	Names  []string
}

// Gate checks report item lists against the plan.
type Gate struct {
	mapper *Mapper
}

// NewGate returns a gate resolving names with mapper.
func NewGate(mapper *Mapper) *Gate {
	return &Gate{mapper: mapper}
}

// Check returns the findings of every listing that drifted from the plan, in
// listing order.
func (g *Gate) Check(listings []Listing) []Findings {
	var out []Findings
	for _, l := range listings {
		if f := g.check(l); !f.Clean() {
			out = append(out, f)
		}
	}
	return out
}

func (g *Gate) check(l Listing) Findings {
	f := Findings{Source: l.Source}
	matched := make(map[string]bool)
	for _, name := range l.Names {
		if g.mapper.norm.Key(name) == "" {
			continue
		}
		it, method, ok := g.mapper.Resolve(name)
		switch {
		case !ok:
			if !slices.Contains(f.Extra, name) {
				f.Extra = append(f.Extra, name)
			}
		case method == Exact:
			matched[it.Name] = true
		default:
			matched[it.Name] = true
			f.Mapped = append(f.Mapped, Mapping{From: name, To: it.Name, Method: method})
		}
	}
	for _, n := range g.mapper.Names() {
		if !matched[n] {
			f.Missing = append(f.Missing, n)
		}
	}
	slices.Sort(f.Extra)
	slices.SortFunc(f.Mapped, func(a, b Mapping) int {
		if c := strings.Compare(a.To, b.To); c != 0 {
			return c
		}
		return strings.Compare(a.From, b.From)
	})
	return f
}

// Err returns a GateError when any findings carry missing items and force is
// false.
func Err(findings []Findings, force bool) error {
	if force {
		return nil
	}
	missing := make(map[string][]string)
	for _, f := range findings {
		if len(f.Missing) > 0 {
			missing[f.Source] = append(missing[f.Source], f.Missing...)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.NewGateError(missing)
}
