package output

import (
	"strconv"
	"strings"

	"github.com/agentstation/quorum/internal/history"
	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/plan"
)

// Runs is a history listing.
type Runs []history.Run

// Table implements Tabular.
func (r Runs) Table() Data {
	data := Data{Headers: []string{"Run", "Kind", "Window", "Sources", "Rows", "Changed", "Digest", "Path"}}
	for _, run := range r {
		window := run.Start.Format(constants.DateLayout)
		if !run.End.Equal(run.Start) {
			window += " → " + run.End.Format(constants.DateLayout)
		}
		data.Rows = append(data.Rows, []string{
			short(run.RunID, 8),
			run.Kind,
			window,
			strconv.Itoa(run.Sources),
			strconv.Itoa(run.Rows),
			strconv.FormatBool(run.Changed),
			short(run.Digest, 12),
			run.Path,
		})
	}
	return data
}

// Findings is a validation gate report.
type Findings []plan.Findings

// Table implements Tabular. Each finding is one row.
func (f Findings) Table() Data {
	data := Data{Headers: []string{"Source", "Finding", "Items"}}
	for _, src := range f {
		if len(src.Missing) > 0 {
			data.Rows = append(data.Rows, []string{src.Source, "missing", strings.Join(src.Missing, ", ")})
		}
		if len(src.Extra) > 0 {
			data.Rows = append(data.Rows, []string{src.Source, "extra", strings.Join(src.Extra, ", ")})
		}
		for _, m := range src.Mapped {
			data.Rows = append(data.Rows, []string{src.Source, "mapped (" + m.Method.String() + ")", m.From + " → " + m.To})
		}
	}
	return data
}

func short(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
