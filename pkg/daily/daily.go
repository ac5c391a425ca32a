// Package daily reconciles one day's source reports into a single view with
// a consensus verdict per category, item and theme.
//
// Each source document is read section by section through the table layouts
// of the profile. Entities are then matched across sources (a closed
// vocabulary for categories, the plan or the item grouper for items, the
// theme grouper for themes), one candidate per source is selected and the
// selected candidates are classified. The result renders as one Markdown
// document; identical inputs always render byte-identical output.
package daily

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/quorum/pkg/cell"
	"github.com/agentstation/quorum/pkg/consensus"
	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/errors"
	"github.com/agentstation/quorum/pkg/grouping"
	"github.com/agentstation/quorum/pkg/logging"
	"github.com/agentstation/quorum/pkg/normalize"
	"github.com/agentstation/quorum/pkg/plan"
	"github.com/agentstation/quorum/pkg/profile"
	"github.com/agentstation/quorum/pkg/sources"
)

// Document is one source's raw report.
type Document struct {
	// Label is the raw source label, e.g. "deepseek-v3.2".
	Label string
	Text  string
}

// Input is one day's document set.
type Input struct {
	Date      time.Time
	Documents []Document
	// Plan is the authoritative item list. Nil skips the validation gate
	// and groups items by similarity.
	Plan []plan.Item
}

// Row is one reconciled category or item.
type Row struct {
	Name string
	// Cells holds one display string per source column.
	Cells  []string
	Result consensus.Result
	// Derived lists the sources whose magnitude was inferred from amounts.
	Derived []string
}

// Section is a reconciled table.
type Section struct {
	Rows []Row
}

// Agreed returns the rows with unanimous or mostly unanimous consensus.
func (s Section) Agreed() []Row {
	var out []Row
	for _, r := range s.Rows {
		if r.Result.Agreed() {
			out = append(out, r)
		}
	}
	return out
}

// ThemeRow is one reconciled theme group.
type ThemeRow struct {
	Name  string
	Cells []string
	Note  string
}

// Summary is the reconciled view of one day.
type Summary struct {
	Date time.Time
	// Sources are the canonical source columns in display order.
	Sources    []string
	Highlights string
	Categories Section
	Items      Section
	Themes     []ThemeRow
	// Findings are the validation gate results; empty without a plan.
	Findings []plan.Findings
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for structural misses and warnings.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithForce lets a run continue past missing plan items.
func WithForce(force bool) Option {
	return func(a *Aggregator) {
		a.force = force
	}
}

// Aggregator reconciles daily document sets under one profile.
type Aggregator struct {
	profile    *profile.Profile
	logger     *zerolog.Logger
	force      bool
	classifier *cell.Classifier
	sources    *sources.Registry
	themeNorm  *normalize.Normalizer
	itemNorm   *normalize.Normalizer

	categories *extractor
	items      *extractor
}

// New returns an aggregator for p.
func New(p *profile.Profile, opts ...Option) (*Aggregator, error) {
	themeNorm, err := normalize.Themes(p)
	if err != nil {
		return nil, err
	}
	itemNorm, err := normalize.Items(p)
	if err != nil {
		return nil, err
	}
	c := cell.NewClassifier(p.Keywords)
	a := &Aggregator{
		profile:    p,
		classifier: c,
		sources:    sources.New(p.Sources),
		themeNorm:  themeNorm,
		itemNorm:   itemNorm,
		categories: newExtractor(p, p.Sections.Categories, cell.Category, c),
		items:      newExtractor(p, p.Sections.Items, cell.Item, c),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.OrNop(a.logger)
	return a, nil
}

// parsed is everything read from one document.
type parsed struct {
	raw        string
	source     string
	categories []entry
	items      []entry
	themes     []themeEntry
	noNew      bool
	changes    []change
}

// parse reads every section of the documents, ordered by canonical source
// then raw label so that input order never affects the output.
func (a *Aggregator) parse(ctx context.Context, docs []Document) []parsed {
	sorted := slices.Clone(docs)
	slices.SortStableFunc(sorted, func(x, y Document) int {
		if c := a.sources.Compare(a.sources.Canonicalize(x.Label), a.sources.Canonicalize(y.Label)); c != 0 {
			return c
		}
		return cmp.Compare(x.Label, y.Label)
	})

	out := make([]parsed, 0, len(sorted))
	for _, d := range sorted {
		pd := parsed{raw: d.Label, source: a.sources.Canonicalize(d.Label)}
		dctx := logging.WithSource(ctx, d.Label)

		var layout string
		pd.categories, layout = a.categories.extract(d.Text, d.Label)
		logSection(logging.WithSection(dctx, "categories"), layout, len(pd.categories))
		pd.categories = a.canonicalCategories(pd.categories)

		pd.items, layout = a.items.extract(d.Text, d.Label)
		logSection(logging.WithSection(dctx, "items"), layout, len(pd.items))

		pd.themes, pd.noNew = a.extractThemes(logging.WithSection(dctx, "themes"), d.Text)
		pd.changes = a.parseChanges(d.Text, pd.source)
		out = append(out, pd)
	}
	return out
}

func logSection(ctx context.Context, layout string, n int) {
	log := logging.FromContext(ctx)
	if n == 0 {
		log.Debug().Msg("No rows found")
		return
	}
	log.Debug().Str("layout", layout).Int("rows", n).Msg("Section parsed")
}

// runContext returns ctx carrying the run logger: the caller's when ctx has
// one, else the aggregator's.
func (a *Aggregator) runContext(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, logging.FromContextOr(ctx, a.logger))
}

// Validate runs the validation gate alone. Without a plan it returns no
// findings. The error is a GateError when a source misses plan items.
func (a *Aggregator) Validate(ctx context.Context, in Input) ([]plan.Findings, error) {
	if len(in.Documents) == 0 {
		return nil, errors.ErrNoInputs
	}
	if len(in.Plan) == 0 {
		return nil, nil
	}
	return a.validate(a.parse(a.runContext(ctx), in.Documents), in.Plan)
}

func (a *Aggregator) validate(docs []parsed, items []plan.Item) ([]plan.Findings, error) {
	gate := plan.NewGate(a.mapper(items))
	listings := make([]plan.Listing, 0, len(docs))
	for _, d := range docs {
		l := plan.Listing{Source: d.raw}
		for _, e := range d.items {
			if !slices.Contains(l.Names, e.Name) {
				l.Names = append(l.Names, e.Name)
			}
		}
		listings = append(listings, l)
	}
	findings := gate.Check(listings)
	return findings, plan.Err(findings, false)
}

func (a *Aggregator) mapper(items []plan.Item) *plan.Mapper {
	return plan.NewMapper(items, a.itemNorm, a.profile.Plan.MinJaccard)
}

// Run reconciles one day. A GateError stops the run unless the aggregator
// was built with WithForce.
func (a *Aggregator) Run(ctx context.Context, in Input) (*Summary, error) {
	if len(in.Documents) == 0 {
		return nil, errors.ErrNoInputs
	}
	ctx = a.runContext(ctx)
	log := logging.FromContext(ctx)
	docs := a.parse(ctx, in.Documents)

	s := &Summary{Date: in.Date}
	if len(in.Plan) > 0 {
		findings, err := a.validate(docs, in.Plan)
		s.Findings = findings
		for _, f := range findings {
			if len(f.Extra) > 0 {
				log.Warn().Str("source", f.Source).Strs("extra", f.Extra).Msg("Report items not in plan are ignored")
			}
		}
		if err != nil {
			if !a.force {
				return nil, err
			}
			log.Warn().Err(err).Msg("Continuing past validation gate")
		}
	}

	var present []string
	for _, d := range docs {
		present = append(present, d.source)
	}
	s.Sources = a.sources.Sort(present)

	s.Highlights = a.digest(docs, len(s.Sources))
	s.Categories = a.categoryRows(docs, s.Sources)
	if len(in.Plan) > 0 {
		s.Items = a.planRows(docs, s.Sources, a.mapper(in.Plan))
	} else {
		s.Items = a.itemRows(docs, s.Sources)
	}
	s.Themes = a.themeRows(docs, s.Sources)
	return s, nil
}

// row selects one candidate per column and classifies the selection.
func (a *Aggregator) row(name string, columns []string, bySource map[string][]cell.Candidate) Row {
	r := Row{Name: name, Cells: make([]string, len(columns))}
	var selected []cell.Candidate
	for i, col := range columns {
		best, ok := consensus.Select(bySource[col])
		if !ok {
			r.Cells[i] = constants.Missing
			continue
		}
		r.Cells[i] = best.Display
		selected = append(selected, best)
		if best.Derived {
			r.Derived = append(r.Derived, col)
		}
	}
	r.Result = consensus.Classify(selected, a.profile.Labels)
	return r
}

// categoryRows matches categories by canonical name. Fixed-order categories
// come first, the rest follow lexicographically.
func (a *Aggregator) categoryRows(docs []parsed, columns []string) Section {
	byName := make(map[string]map[string][]cell.Candidate)
	var names []string
	for _, d := range docs {
		for _, e := range d.categories {
			if byName[e.Name] == nil {
				byName[e.Name] = make(map[string][]cell.Candidate)
				names = append(names, e.Name)
			}
			byName[e.Name][d.source] = append(byName[e.Name][d.source], e.Candidate)
		}
	}
	order := a.profile.Categories.Order
	slices.SortFunc(names, func(x, y string) int {
		ix, iy := slices.Index(order, x), slices.Index(order, y)
		switch {
		case ix >= 0 && iy >= 0:
			return ix - iy
		case ix >= 0:
			return -1
		case iy >= 0:
			return 1
		}
		return cmp.Compare(x, y)
	})

	var s Section
	for _, n := range names {
		s.Rows = append(s.Rows, a.row(n, columns, byName[n]))
	}
	return s
}

// canonicalCategories maps category names onto the closed vocabulary.
func (a *Aggregator) canonicalCategories(entries []entry) []entry {
	for i := range entries {
		entries[i].Name = a.category(entries[i].Name)
	}
	return entries
}

func (a *Aggregator) category(name string) string {
	if slices.Contains(a.profile.Categories.Order, name) {
		return name
	}
	if alias, ok := a.profile.Categories.Aliases[strings.ToLower(name)]; ok {
		return alias
	}
	return name
}

// planRows keys items by plan name. Names resolving to no plan item are
// dropped; rows follow plan order.
func (a *Aggregator) planRows(docs []parsed, columns []string, m *plan.Mapper) Section {
	byName := make(map[string]map[string][]cell.Candidate)
	for _, d := range docs {
		for _, e := range d.items {
			it, _, ok := m.Resolve(e.Name)
			if !ok {
				continue
			}
			if byName[it.Name] == nil {
				byName[it.Name] = make(map[string][]cell.Candidate)
			}
			byName[it.Name][d.source] = append(byName[it.Name][d.source], e.Candidate)
		}
	}
	var s Section
	for _, n := range m.Names() {
		if byName[n] != nil {
			s.Rows = append(s.Rows, a.row(n, columns, byName[n]))
		}
	}
	return s
}

// itemRows groups item names with the item matcher. Groups are ordered by the
// first position any member was seen at, then by their shortest name.
func (a *Aggregator) itemRows(docs []parsed, columns []string) Section {
	gr := grouping.New(grouping.Items(a.profile))
	cands := make(map[*grouping.Group]map[string][]cell.Candidate)
	seen := make(map[string]int)
	for _, d := range docs {
		for _, e := range d.items {
			if _, ok := seen[e.Name]; !ok {
				seen[e.Name] = len(seen)
			}
			g := gr.Add(grouping.Member{
				Source: d.source,
				Name:   e.Name,
				Key:    a.itemNorm.Key(e.Name),
				Order:  seen[e.Name],
			})
			if cands[g] == nil {
				cands[g] = make(map[string][]cell.Candidate)
			}
			cands[g][d.source] = append(cands[g][d.source], e.Candidate)
		}
	}

	groups := slices.Clone(gr.Groups())
	slices.SortStableFunc(groups, func(x, y *grouping.Group) int {
		if c := cmp.Compare(x.Order(), y.Order()); c != 0 {
			return c
		}
		return normalize.ByLength(x.MergedNames()[0], y.MergedNames()[0])
	})

	var s Section
	for _, g := range groups {
		s.Rows = append(s.Rows, a.row(g.MainName(), columns, cands[g]))
	}
	return s
}
