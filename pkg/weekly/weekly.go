// Package weekly derives per-entity signals from a window of daily reports.
//
// The weekly engine never reads the original source reports. It re-parses
// the wide tables of each generated daily report, recomputes one winning
// direction per entity and day, and condenses the series into a score, an
// action, a strength and an early-versus-late trend. Themes are regrouped
// from their raw daily mentions. Identical inputs render byte-identical
// output so historical weekly reports can be regenerated in place.
package weekly

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/quorum/pkg/cell"
	"github.com/agentstation/quorum/pkg/consensus"
	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/errors"
	"github.com/agentstation/quorum/pkg/logging"
	"github.com/agentstation/quorum/pkg/normalize"
	"github.com/agentstation/quorum/pkg/profile"
	"github.com/agentstation/quorum/pkg/sources"
	"github.com/agentstation/quorum/pkg/table"
)

// Day is one generated daily report.
type Day struct {
	Date time.Time
	Text string
}

// Input is a window of daily reports. Days outside [Start, End] are ignored.
type Input struct {
	Start time.Time
	End   time.Time
	Days  []Day
}

// Summary is the weekly view of one window.
type Summary struct {
	Start time.Time
	End   time.Time
	// Dates are the days with a daily report, ascending.
	Dates []time.Time
	// Missing are the window days without a daily report.
	Missing []time.Time

	Categories []Signal
	Items      []Signal
	// Strongest and Changed are the focus rankings over categories and items.
	Strongest []Signal
	Changed   []Signal

	ThemeSources []string
	Themes       []ThemeSignal
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for structural misses.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// Aggregator computes weekly signals under one profile.
type Aggregator struct {
	profile    *profile.Profile
	logger     *zerolog.Logger
	classifier *cell.Classifier
	sources    *sources.Registry
	themeNorm  *normalize.Normalizer
}

// New returns a weekly aggregator for p.
func New(p *profile.Profile, opts ...Option) (*Aggregator, error) {
	themeNorm, err := normalize.Themes(p)
	if err != nil {
		return nil, err
	}
	a := &Aggregator{
		profile:    p,
		classifier: cell.NewClassifier(p.Keywords),
		sources:    sources.New(p.Sources),
		themeNorm:  themeNorm,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.OrNop(a.logger)
	return a, nil
}

// series holds the per-day votes of every entity of one section.
type series struct {
	names []string
	votes map[string]map[int]Vote
}

func newSeries() *series {
	return &series{votes: make(map[string]map[int]Vote)}
}

func (s *series) set(name string, day int, v Vote) {
	if s.votes[name] == nil {
		s.votes[name] = make(map[int]Vote)
		s.names = append(s.names, name)
	}
	s.votes[name][day] = v
}

// Run computes the weekly summary of in. It fails with ErrNoInputs when no
// daily report falls inside the window.
func (a *Aggregator) Run(ctx context.Context, in Input) (*Summary, error) {
	ctx = logging.WithLogger(ctx, logging.FromContextOr(ctx, a.logger))
	days := make([]Day, 0, len(in.Days))
	for _, d := range in.Days {
		if d.Date.Before(in.Start) || d.Date.After(in.End) {
			logging.FromContext(ctx).Debug().Str("date", d.Date.Format(constants.DateLayout)).Msg("Daily report outside window ignored")
			continue
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return nil, errors.ErrNoInputs
	}
	slices.SortStableFunc(days, func(x, y Day) int { return x.Date.Compare(y.Date) })

	s := &Summary{Start: in.Start, End: in.End}
	for _, d := range days {
		s.Dates = append(s.Dates, d.Date)
	}
	s.Missing = MissingDates(in.Start, in.End, s.Dates)

	cats, items := newSeries(), newSeries()
	var mentions []mention
	themeSources := make(map[string]bool)
	for i, d := range days {
		dctx := logging.WithField(ctx, "date", d.Date.Format(constants.DateLayout))
		a.readSection(dctx, d.Text, a.profile.Sections.Categories, cell.Category, i, cats)
		a.readSection(dctx, d.Text, a.profile.Sections.Items, cell.Item, i, items)

		ms, srcs := a.readThemes(dctx, d, i)
		mentions = append(mentions, ms...)
		for _, src := range srcs {
			themeSources[src] = true
		}
	}

	order := a.profile.Categories.Order
	slices.SortFunc(cats.names, func(x, y string) int {
		ix, iy := slices.Index(order, x), slices.Index(order, y)
		if ix < 0 {
			ix = len(order)
		}
		if iy < 0 {
			iy = len(order)
		}
		if ix != iy {
			return ix - iy
		}
		return strings.Compare(x, y)
	})
	slices.Sort(items.names)

	s.Categories = a.signals(cats, cell.Category, len(days))
	s.Items = a.signals(items, cell.Item, len(days))
	s.Strongest, s.Changed = a.focus(append(slices.Clone(s.Categories), s.Items...))

	for src := range themeSources {
		s.ThemeSources = append(s.ThemeSources, src)
	}
	s.ThemeSources = a.sources.Sort(s.ThemeSources)
	s.Themes = a.themes(mentions, s.ThemeSources, s.Dates)
	return s, nil
}

// wide is a daily wide table with its source columns deduplicated.
type wide struct {
	table   table.Table
	key     int
	note    int
	sources []string
	columns map[string][]int
}

// readWide locates the wide table of a section in a daily report. ok is
// false when the section, the table or its key column is absent.
func (a *Aggregator) readWide(text string, ps profile.Section) (wide, bool) {
	sec := table.FindAfterHeading(text, ps.Heading)
	if !sec.HasTable {
		return wide{}, false
	}
	w := wide{table: sec.Table, key: -1, note: -1}
	tail := len(w.table.Header)
	for i, h := range w.table.Header {
		if w.key < 0 && strings.Contains(h, ps.KeyHeader) {
			w.key = i
		}
		if strings.Contains(h, a.profile.Labels.Note) && w.note < 0 {
			w.note = i
		}
		for _, t := range a.profile.Weekly.TailHeaders {
			if strings.Contains(h, t) {
				tail = min(tail, i)
			}
		}
	}
	if w.key < 0 {
		return wide{}, false
	}
	var indices []int
	for i := 0; i < tail; i++ {
		if i != w.key {
			indices = append(indices, i)
		}
	}
	w.sources, w.columns = a.sources.Dedupe(w.table.Header, indices)
	return w, true
}

// cell returns the representative cell of source in row, chosen among its
// duplicated columns by the candidate selector.
func (w wide) cell(row []string, source string) string {
	var cands []cell.Candidate
	for _, idx := range w.columns[source] {
		if idx < len(row) {
			cands = append(cands, cell.Candidate{
				Source:  strings.TrimSpace(w.table.Header[idx]),
				Display: strings.TrimSpace(row[idx]),
			})
		}
	}
	best, ok := consensus.Select(cands)
	if !ok {
		return constants.Missing
	}
	return best.Display
}

func (a *Aggregator) readSection(ctx context.Context, text string, ps profile.Section, kind cell.Kind, day int, s *series) {
	w, ok := a.readWide(text, ps)
	if !ok {
		logging.FromContext(logging.WithSection(ctx, ps.Heading)).Debug().Msg("No wide table found")
		return
	}
	for _, row := range w.table.Rows {
		name := strings.TrimSpace(table.Cell(row, w.key))
		if name == "" {
			continue
		}
		var counts consensus.Counts
		for _, src := range w.sources {
			v := cell.Parse(w.cell(row, src))
			counts.Add(a.classifier.Classify(v.Phrase, kind))
		}
		s.set(name, day, voteOf(counts))
	}
}
