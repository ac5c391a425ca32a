package weekly

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/report"
)

// Weekly report vocabulary.
const (
	title          = "每周投资总结（%s_to_%s）"
	coverageTitle  = "0. 数据覆盖"
	coverageDays   = "纳入统计日报：%d 份：%s"
	coverageGaps   = "缺失日期：%s"
	focusTitle     = "信号聚焦"
	strongestTitle = "信号最强 TOP%d"
	changedTitle   = "信号变化最大 TOP%d"
	focusKey       = "标的/大板块"
	dateSeparator  = ", "
)

var (
	signalHeaders = []string{
		"周内方向统计（按天）",
		"方向序列(↑↓-)",
		"本周动作建议（信号汇总）",
		"信号强度（全周）",
		"信号变化",
		"备注",
	}
	focusHeaders = []string{
		focusKey,
		"周内方向统计（按天）",
		"本周动作建议（信号汇总）",
		"信号强度（全周）",
		"信号变化",
	}
	themeTailHeaders = []string{"出现", "首次出现", "最近出现", "异同/趋势"}
)

// Render writes the summary as the weekly Markdown report.
func (a *Aggregator) Render(s *Summary) (string, error) {
	p := a.profile
	doc := report.New().
		H1(fmt.Sprintf(title, s.Start.Format(constants.DateLayout), s.End.Format(constants.DateLayout))).
		Blank().
		H2(coverageTitle).
		Bullets(
			fmt.Sprintf(coverageDays, len(s.Dates), joinDates(s.Dates)),
			fmt.Sprintf(coverageGaps, joinDates(s.Missing)),
		).
		Blank()

	doc.H2(p.Sections.Categories.WeeklyTitle).
		Table(append([]string{p.Sections.Categories.KeyHeader}, signalHeaders...), signalRows(s.Categories)).
		Blank()
	doc.H2(p.Sections.Items.WeeklyTitle).
		Table(append([]string{p.Sections.Items.KeyHeader}, signalHeaders...), signalRows(s.Items)).
		Blank()

	size := p.Weekly.FocusSize
	doc.H3(focusTitle).
		Blank().
		H4(fmt.Sprintf(strongestTitle, size)).
		Blank().
		Table(focusHeaders, focusRows(s.Strongest)).
		Blank().
		H4(fmt.Sprintf(changedTitle, size)).
		Blank().
		Table(focusHeaders, focusRows(s.Changed)).
		Blank()

	header := append(append([]string{p.Sections.Themes.KeyHeader}, s.ThemeSources...), themeTailHeaders...)
	rows := make([][]string, 0, len(s.Themes))
	for _, t := range s.Themes {
		row := append([]string{t.Name}, t.Cells...)
		rows = append(rows, append(row, t.Appearance, t.First, t.Last, t.Note))
	}
	doc.H2(p.Sections.Themes.WeeklyTitle).Table(header, rows)
	return doc.String()
}

func signalRows(signals []Signal) [][]string {
	out := make([][]string, 0, len(signals))
	for _, s := range signals {
		out = append(out, []string{s.Name, s.Counts, s.Arrows, s.Action, s.Strength, s.Trend, s.Remark})
	}
	return out
}

func focusRows(signals []Signal) [][]string {
	out := make([][]string, 0, len(signals))
	for _, s := range signals {
		out = append(out, []string{s.Name, s.Counts, s.Action, s.Strength, s.Trend})
	}
	return out
}

func joinDates(dates []time.Time) string {
	if len(dates) == 0 {
		return constants.Missing
	}
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.Format(constants.DateLayout)
	}
	return strings.Join(parts, dateSeparator)
}
