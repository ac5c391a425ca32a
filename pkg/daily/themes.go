package daily

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/agentstation/quorum/pkg/cell"
	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/grouping"
	"github.com/agentstation/quorum/pkg/logging"
	"github.com/agentstation/quorum/pkg/profile"
	"github.com/agentstation/quorum/pkg/table"
)

// Theme note clauses.
const (
	noteMerged = "合并："
	noteAlso   = "%s 另提："
	noteOnly   = "仅 %s 提出"
	noteSilent = "未提及："
	noteNoNew  = "其中 %s 明确不新增"
)

// themeEntry is one proposed theme.
type themeEntry struct {
	Topic   string
	Key     string
	Display string
}

// extractThemes reads the theme proposals of text. noNew is true when the
// section says no new theme is proposed, in prose or as a placeholder row.
func (a *Aggregator) extractThemes(ctx context.Context, text string) (entries []themeEntry, noNew bool) {
	th := a.profile.Sections.Themes
	sec := table.FindAfterHeading(text, th.Heading)
	noNew = MentionsNoNew(a.profile.Keywords, sec.Trailing)
	if !sec.HasTable || sec.Table.Empty() {
		return nil, noNew
	}

	x := newExtractor(a.profile, th, cell.Item, a.classifier)
	var cols columns
	resolved := false
	for _, l := range th.Layouts {
		if cols, resolved = x.resolve(sec.Table, l); resolved {
			break
		}
	}
	if !resolved {
		logging.FromContext(ctx).Debug().Msg("No theme columns resolved")
		return nil, noNew
	}

	for _, row := range sec.Table.Rows {
		topic := cell.StripMarkup(table.Cell(row, cols.key))
		if topic == "" {
			continue
		}
		key := a.themeNorm.Key(topic)
		if key == "" || slices.Contains(a.profile.Keywords.NoNewTopics, topic) ||
			slices.Contains(a.profile.Keywords.NoNewTopics, key) {
			noNew = true
			continue
		}
		entries = append(entries, themeEntry{
			Topic:   topic,
			Key:     key,
			Display: ThemeDisplay(cell.Number(table.Cell(row, cols.value)), table.Cell(row, cols.basis)),
		})
	}
	return entries, noNew
}

// MentionsNoNew reports whether text carries a "no new themes" phrase.
func MentionsNoNew(kw profile.Keywords, text string) bool {
	for _, p := range kw.NoNew {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// ThemeDisplay renders a theme proposal as "pct（basis）", or the missing
// marker without a percentage.
func ThemeDisplay(pct *float64, basis string) string {
	if pct == nil {
		return constants.Missing
	}
	b := cell.StripMarkup(basis)
	if b == "" {
		b = constants.Missing
	}
	return cell.Percent(*pct) + "（" + b + "）"
}

// themeRows groups theme proposals across sources. Groups proposed by more
// sources come first; equal groups keep their creation order.
func (a *Aggregator) themeRows(docs []parsed, columns []string) []ThemeRow {
	matcher := grouping.Themes(a.profile)
	gr := grouping.New(matcher)
	bySource := make(map[*grouping.Group]map[string][]themeEntry)
	noNew := make(map[string]bool)
	for _, d := range docs {
		if d.noNew {
			noNew[d.source] = true
		}
		for _, t := range d.themes {
			g := gr.Add(grouping.Member{Source: d.source, Name: t.Topic, Key: t.Key})
			if bySource[g] == nil {
				bySource[g] = make(map[string][]themeEntry)
			}
			bySource[g][d.source] = append(bySource[g][d.source], t)
		}
	}

	groups := slices.Clone(gr.Groups())
	slices.SortStableFunc(groups, func(x, y *grouping.Group) int {
		return len(bySource[y]) - len(bySource[x])
	})

	rows := make([]ThemeRow, 0, len(groups))
	for _, g := range groups {
		main := g.MainName()
		mainKey := a.themeNorm.Key(main)
		row := ThemeRow{Name: main, Cells: make([]string, len(columns))}

		var notes []string
		if merged := g.MergedNames(); len(merged) > 1 {
			notes = append(notes, noteMerged+strings.Join(merged, constants.NameSeparator))
		}

		var proposers, silent, declined []string
		for i, col := range columns {
			es := bySource[g][col]
			if len(es) == 0 {
				row.Cells[i] = constants.Missing
				if noNew[col] {
					declined = append(declined, col)
				} else {
					silent = append(silent, col)
				}
				continue
			}
			proposers = append(proposers, col)
			best := closest(matcher, es, mainKey)
			row.Cells[i] = es[best].Display

			var others []string
			for j, e := range es {
				if j != best && !slices.Contains(others, e.Topic) {
					others = append(others, e.Topic)
				}
			}
			if len(others) > 0 {
				slices.Sort(others)
				notes = append(notes, fmt.Sprintf(noteAlso, col)+strings.Join(others, constants.NameSeparator))
			}
		}
		if len(proposers) == 1 {
			notes = append(notes, fmt.Sprintf(noteOnly, proposers[0]))
		}
		if len(silent) > 0 {
			notes = append(notes, noteSilent+strings.Join(silent, constants.NameSeparator))
		}
		if len(declined) > 0 {
			notes = append(notes, fmt.Sprintf(noteNoNew, strings.Join(declined, constants.NameSeparator)))
		}

		row.Note = constants.Missing
		if len(notes) > 0 {
			row.Note = strings.Join(notes, constants.NoteSeparator)
		}
		rows = append(rows, row)
	}
	return rows
}

// closest returns the index of the entry nearest to mainKey: an equal key,
// then containment, then anything. The first entry wins ties.
func closest(m *grouping.Matcher, es []themeEntry, mainKey string) int {
	best, bestDist := 0, 3
	for i, e := range es {
		if d := distance(m.Score(e.Key, mainKey)); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func distance(score int) int {
	switch score {
	case 3:
		return 0
	case 2:
		return 1
	default:
		return 2
	}
}
