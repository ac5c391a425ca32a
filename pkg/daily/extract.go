package daily

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/agentstation/quorum/pkg/cell"
	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/profile"
	"github.com/agentstation/quorum/pkg/table"
)

// entry is one row read from a source document.
type entry struct {
	Name      string
	Candidate cell.Candidate
	// amount is the raw amount of an amount-unit row before conversion.
	amount *float64
}

// columns are the resolved indices of one layout in one table; -1 is absent.
type columns struct {
	key, value, before, delta, direction, basis int
	percent                                    bool
}

// extractor reads one section of a document through the section's layouts.
type extractor struct {
	section    profile.Section
	kind       cell.Kind
	classifier *cell.Classifier
	totals     []string
	markers    []string
}

func newExtractor(p *profile.Profile, s profile.Section, kind cell.Kind, c *cell.Classifier) *extractor {
	return &extractor{
		section:    s,
		kind:       kind,
		classifier: c,
		totals:     p.Sections.Totals,
		markers:    p.Sections.PercentMarkers,
	}
}

// extract returns the section rows of text. Heading layouts read the table
// under the section heading and the first layout that resolves wins.
// Otherwise every table of the document is offered to the document layouts
// and all hits are kept. The layout name is returned for logging.
func (x *extractor) extract(text, source string) ([]entry, string) {
	sec := table.FindAfterHeading(text, x.section.Heading)
	if sec.HasTable && !sec.Table.Empty() {
		for _, l := range x.section.Layouts {
			if l.Scope != profile.ScopeHeading {
				continue
			}
			if cols, ok := x.resolve(sec.Table, l); ok {
				return x.convert(x.rows(sec.Table, l, cols, source)), l.Name
			}
		}
	}

	var out []entry
	var used []string
	for _, t := range table.FindAll(text) {
		if t.Empty() {
			continue
		}
		for _, l := range x.section.Layouts {
			if l.Scope != profile.ScopeDocument {
				continue
			}
			if cols, ok := x.resolve(t, l); ok {
				out = append(out, x.rows(t, l, cols, source)...)
				if !slices.Contains(used, l.Name) {
					used = append(used, l.Name)
				}
				break
			}
		}
	}
	return x.convert(out), strings.Join(used, ",")
}

func (x *extractor) resolve(t table.Table, l profile.Layout) (columns, bool) {
	c := columns{key: t.FirstColumn(l.Key...)}
	if c.key < 0 {
		return c, false
	}
	roles := []struct {
		name  string
		rules []profile.ColumnRule
		idx   *int
	}{
		{profile.RoleValue, l.Value, &c.value},
		{profile.RoleBefore, l.Before, &c.before},
		{profile.RoleDelta, l.Delta, &c.delta},
		{profile.RoleDirection, l.Direction, &c.direction},
		{profile.RoleBasis, l.Basis, &c.basis},
	}
	for _, r := range roles {
		*r.idx = -1
		if len(r.rules) == 0 {
			continue
		}
		*r.idx = t.FirstColumn(r.rules...)
		if *r.idx < 0 && !slices.Contains(l.Optional, r.name) {
			return c, false
		}
	}

	switch l.Unit {
	case profile.UnitPercent:
		c.percent = true
	case profile.UnitAuto:
		h := t.HeaderAt(c.value)
		for _, m := range x.markers {
			if strings.Contains(h, m) {
				c.percent = true
				break
			}
		}
	}
	return c, true
}

func (x *extractor) rows(t table.Table, l profile.Layout, c columns, source string) []entry {
	var out []entry
	for _, row := range t.Rows {
		name := x.name(table.Cell(row, c.key))
		if strings.Trim(name, dashes) == "" || slices.Contains(x.totals, name) {
			continue
		}

		var (
			value  *float64
			phrase string
		)
		if c.direction >= 0 {
			phrase = x.directionText(table.Cell(row, c.direction), l.Arrows)
		}
		switch {
		case c.delta >= 0:
			before := cell.Number(table.Cell(row, c.before))
			delta := cell.Number(table.Cell(row, c.delta))
			if before == nil || delta == nil {
				continue
			}
			v := *before + *delta
			value = &v
			if phrase == "" {
				phrase = x.derived(*delta)
			}
		case c.value >= 0:
			value = cell.Number(table.Cell(row, c.value))
			if value != nil && phrase == "" && c.before >= 0 {
				if before := cell.Number(table.Cell(row, c.before)); before != nil {
					phrase = x.derived(*value - *before)
				}
			}
		default:
			if phrase == "" {
				continue
			}
		}
		if l.Scope == profile.ScopeDocument && value == nil && phrase == "" {
			continue
		}

		e := entry{Name: name}
		cand := cell.Candidate{
			Source:    source,
			Phrase:    phrase,
			Direction: x.classifier.Classify(phrase, x.kind),
		}
		switch {
		case value == nil || c.percent:
			cand.Magnitude = value
			cand.Display = cell.Format(value, phrase)
		default:
			e.amount = value
			cand.Display = formatAmount(*value, phrase)
		}
		e.Candidate = cand
		out = append(out, e)
	}
	return out
}

// directionText returns the phrase held by a direction cell. Arrow columns
// only yield the derived phrase of their arrow.
func (x *extractor) directionText(text string, arrows bool) string {
	if arrows {
		d, ok := x.classifier.Arrow(text)
		if !ok {
			return ""
		}
		return x.phraseOf(d)
	}
	s := cell.StripMarkup(text)
	if s == constants.Missing {
		return ""
	}
	return s
}

func (x *extractor) derived(delta float64) string {
	switch {
	case delta > epsilon:
		return x.phraseOf(cell.Increase)
	case delta < -epsilon:
		return x.phraseOf(cell.Decrease)
	default:
		return x.phraseOf(cell.Unchanged)
	}
}

func (x *extractor) phraseOf(d cell.Direction) string {
	switch d {
	case cell.Increase:
		return x.section.Derived.Increase
	case cell.Decrease:
		return x.section.Derived.Decrease
	default:
		return x.section.Derived.Hold
	}
}

// convert turns amount rows into shares of the document total. The total
// counts the first amount seen per name. Converted candidates are flagged
// Derived.
func (x *extractor) convert(entries []entry) []entry {
	var total float64
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.amount != nil && !seen[e.Name] {
			seen[e.Name] = true
			total += *e.amount
		}
	}
	if total <= 0 {
		return entries
	}
	for i := range entries {
		e := &entries[i]
		if e.amount == nil {
			continue
		}
		pct := *e.amount / total * 100
		e.Candidate.Magnitude = &pct
		e.Candidate.Display = cell.Format(&pct, e.Candidate.Phrase)
		e.Candidate.Derived = true
	}
	return entries
}

const (
	epsilon = 1e-9
	dashes  = "-—–－"
)

func formatAmount(v float64, phrase string) string {
	if phrase == "" {
		phrase = constants.Missing
	}
	return fmt.Sprintf("%g（%s）", v, phrase)
}

// name strips markup from a key cell. Category names also lose every
// whitespace rune.
func (x *extractor) name(s string) string {
	s = cell.StripMarkup(s)
	if x.kind != cell.Category {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
