package daily

import (
	"fmt"
	"strings"

	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/profile"
	"github.com/agentstation/quorum/pkg/report"
)

const (
	themeKeyHeader = "主题/方向"
	derivedNote    = "注：%s 仅给出金额，比例按该报告金额合计折算。"
)

// Render writes the summary as the daily Markdown report.
func (a *Aggregator) Render(s *Summary) (string, error) {
	p := a.profile
	doc := report.New().
		H1(p.Labels.Title + "（" + s.Date.Format(constants.DateLayout) + "）").
		Blank().
		H2(p.Sections.Highlights.Title).
		Text(s.Highlights).
		Blank()

	a.renderSection(doc, p.Sections.Categories, s.Sources, s.Categories)
	doc.Blank()
	a.renderSection(doc, p.Sections.Items, s.Sources, s.Items)
	doc.Blank()

	header := append(append([]string{themeKeyHeader}, s.Sources...), p.Labels.Note)
	rows := make([][]string, 0, len(s.Themes))
	for _, t := range s.Themes {
		rows = append(rows, append(append([]string{t.Name}, t.Cells...), t.Note))
	}
	doc.H2(p.Sections.Themes.Title).Table(header, rows)
	return doc.String()
}

func (a *Aggregator) renderSection(doc *report.Document, ps profile.Section, columns []string, s Section) {
	l := a.profile.Labels
	header := append(append([]string{ps.KeyHeader}, columns...), l.Agreement, l.Summary)

	doc.H2(ps.Title).Table(header, sectionRows(s.Rows))
	if derived := derivedSources(s.Rows, columns); len(derived) > 0 {
		doc.Blank().Text(fmt.Sprintf(derivedNote, strings.Join(derived, constants.ListSeparator)))
	}
	doc.Blank().H3(l.Agreed).Table(header, sectionRows(s.Agreed()))
}

func sectionRows(rows []Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, append(append([]string{r.Name}, r.Cells...), r.Result.Label, r.Result.Summary))
	}
	return out
}

// derivedSources lists, in column order, the sources with any derived cell.
func derivedSources(rows []Row, columns []string) []string {
	flagged := make(map[string]bool)
	for _, r := range rows {
		for _, src := range r.Derived {
			flagged[src] = true
		}
	}
	var out []string
	for _, c := range columns {
		if flagged[c] {
			out = append(out, c)
		}
	}
	return out
}
