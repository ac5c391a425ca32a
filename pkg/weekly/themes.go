package weekly

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agentstation/quorum/pkg/cell"
	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/grouping"
	"github.com/agentstation/quorum/pkg/logging"
	"github.com/agentstation/quorum/pkg/table"
)

// Theme note vocabulary.
const (
	noteMerged    = "合并："
	noteDaily     = "异同："
	noteAlternate = "%s 另提：%s %s"
	tagNew        = "本周新增"
	tagPersisted  = "持续"
	tagGone       = "消失"
	appearance    = "%d/%d天"
	datedCell     = "%s@%s"
)

// mention is one source's theme cell on one day.
type mention struct {
	topic   string
	key     string
	source  string
	display string
	day     int
	date    string
	note    string
}

// ThemeSignal is one theme regrouped across the window.
type ThemeSignal struct {
	Name string
	// Cells holds one "display@date" per theme source, or the missing marker.
	Cells      []string
	Appearance string
	First      string
	Last       string
	Note       string
}

// readThemes collects the raw theme cells of one daily report and the
// canonical sources of its theme table.
func (a *Aggregator) readThemes(ctx context.Context, d Day, day int) ([]mention, []string) {
	ps := a.profile.Sections.Themes
	w, ok := a.readWide(d.Text, ps)
	if !ok {
		logging.FromContext(logging.WithSection(ctx, ps.Heading)).Debug().Msg("No theme table found")
		return nil, nil
	}

	date := d.Date.Format(constants.DateLayout)
	var out []mention
	for _, row := range w.table.Rows {
		topic := strings.TrimSpace(table.Cell(row, w.key))
		if topic == "" {
			continue
		}
		note := strings.TrimSpace(table.Cell(row, w.note))
		if note == "" {
			note = constants.Missing
		}
		key := a.themeNorm.Key(topic)
		for _, src := range w.sources {
			v := cell.Parse(w.cell(row, src))
			if v.Missing() {
				continue
			}
			out = append(out, mention{
				topic:   topic,
				key:     key,
				source:  src,
				display: v.Display,
				day:     day,
				date:    date,
				note:    note,
			})
		}
	}
	return out, w.sources
}

// themes regroups mentions across days. Groups seen on more days come first,
// then by main name.
func (a *Aggregator) themes(mentions []mention, columns []string, dates []time.Time) []ThemeSignal {
	matcher := grouping.Themes(a.profile)
	gr := grouping.New(matcher)
	byGroup := make(map[*grouping.Group][]mention)
	for _, m := range mentions {
		g := gr.Add(grouping.Member{Source: m.source, Name: m.topic, Key: m.key, Order: m.day})
		byGroup[g] = append(byGroup[g], m)
	}

	type entry struct {
		group *grouping.Group
		main  string
		days  []string
	}
	entries := make([]entry, 0, len(gr.Groups()))
	for _, g := range gr.Groups() {
		var days []string
		for _, m := range byGroup[g] {
			if !slices.Contains(days, m.date) {
				days = append(days, m.date)
			}
		}
		slices.Sort(days)
		entries = append(entries, entry{group: g, main: g.MainName(), days: days})
	}
	slices.SortStableFunc(entries, func(x, y entry) int {
		if c := cmp.Compare(len(y.days), len(x.days)); c != 0 {
			return c
		}
		return strings.Compare(x.main, y.main)
	})

	firstDate, lastDate := dates[0].Format(constants.DateLayout), dates[len(dates)-1].Format(constants.DateLayout)
	out := make([]ThemeSignal, 0, len(entries))
	for _, e := range entries {
		ms := byGroup[e.group]
		mainKey := a.themeNorm.Key(e.main)
		ts := ThemeSignal{
			Name:       e.main,
			Cells:      make([]string, len(columns)),
			Appearance: fmt.Sprintf(appearance, len(e.days), len(dates)),
			First:      e.days[0],
			Last:       e.days[len(e.days)-1],
		}

		var notes, alternates []string
		for i, col := range columns {
			var own []mention
			for _, m := range ms {
				if m.source == col {
					own = append(own, m)
				}
			}
			if len(own) == 0 {
				ts.Cells[i] = constants.Missing
				continue
			}
			closer := func(x, y mention) int {
				if c := cmp.Compare(matcher.Score(x.key, mainKey), matcher.Score(y.key, mainKey)); c != 0 {
					return c
				}
				if c := cmp.Compare(utf8.RuneCountInString(x.display), utf8.RuneCountInString(y.display)); c != 0 {
					return c
				}
				return strings.Compare(x.topic, y.topic)
			}
			chosen := slices.MaxFunc(own, func(x, y mention) int {
				if c := cmp.Compare(x.day, y.day); c != 0 {
					return c
				}
				return closer(x, y)
			})
			ts.Cells[i] = fmt.Sprintf(datedCell, chosen.display, chosen.date)

			var same []mention
			for _, m := range own {
				if m.day == chosen.day && m.topic != chosen.topic {
					same = append(same, m)
				}
			}
			slices.SortStableFunc(same, closer)
			for _, m := range same {
				alternates = append(alternates,
					fmt.Sprintf(noteAlternate, col, m.topic, fmt.Sprintf(datedCell, m.display, m.date)))
			}
		}

		var merged, daily []string
		for _, m := range ms {
			if m.topic != e.main && !slices.Contains(merged, m.topic) {
				merged = append(merged, m.topic)
			}
			if m.note != constants.Missing && !slices.Contains(daily, m.note) {
				daily = append(daily, m.note)
			}
		}
		if len(merged) > 0 {
			slices.Sort(merged)
			notes = append(notes, noteMerged+strings.Join(append([]string{e.main}, merged...), constants.NameSeparator))
		}
		if len(daily) > 0 {
			slices.Sort(daily)
			notes = append(notes, noteDaily+strings.Join(daily, constants.NameSeparator))
		}
		notes = append(notes, alternates...)

		if ts.First != firstDate {
			notes = append(notes, tagNew)
		}
		if ts.Last == lastDate {
			notes = append(notes, tagPersisted)
		} else {
			notes = append(notes, tagGone)
		}
		ts.Note = strings.Join(notes, constants.NoteSeparator)
		out = append(out, ts)
	}
	return out
}
