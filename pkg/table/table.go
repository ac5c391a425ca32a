// Package table locates and parses pipe-delimited Markdown tables.
//
// A missing heading, table or column is never an error here: callers get an
// empty result and decide what absence means for their section.
package table

import (
	"regexp"
	"strings"

	"github.com/agentstation/quorum/pkg/profile"
)

var separatorCell = regexp.MustCompile(`^:?-{3,}:?$`)

// Table is a parsed pipe table. Header is the first row; Rows holds the data
// rows with separator rows removed.
type Table struct {
	Header []string
	Rows   [][]string
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Section is what follows a heading marker in a document.
type Section struct {
	// Found is true when the marker occurs in the document.
	Found bool
	// Table is the first table under the heading, if any.
	Table Table
	// HasTable is true when a table with a header was found.
	HasTable bool
	// Trailing is the prose under the heading: the lines before the table and
	// the lines after it, up to the next heading.
	Trailing string
}

// FindAfterHeading returns the section under the first line containing marker.
// The scan for a table stops at a heading line met before any table line; the
// line right after the marker is exempt so a subtitle does not end the scan.
func FindAfterHeading(text, marker string) Section {
	lines := strings.Split(text, "\n")
	start := -1
	for i, ln := range lines {
		if strings.Contains(ln, marker) {
			start = i
			break
		}
	}
	if start < 0 {
		return Section{}
	}

	sec := Section{Found: true}
	post := lines[start+1:]
	var intro []string
	first := -1
	for j, ln := range post {
		s := strings.TrimSpace(ln)
		if isTableLine(s) {
			first = j
			break
		}
		if strings.HasPrefix(s, "#") && j > 0 {
			break
		}
		intro = append(intro, ln)
	}
	if first < 0 {
		sec.Trailing = strings.Join(intro, "\n")
		return sec
	}

	k := first
	var block []string
	for k < len(post) && strings.HasPrefix(strings.TrimSpace(post[k]), "|") {
		block = append(block, post[k])
		k++
	}
	var after []string
	for ; k < len(post); k++ {
		if strings.HasPrefix(strings.TrimSpace(post[k]), "#") {
			break
		}
		after = append(after, post[k])
	}
	sec.Trailing = strings.Join(append(intro, after...), "\n")
	sec.Table, sec.HasTable = Parse(block)
	return sec
}

// FindAll returns every table in text, in document order.
func FindAll(text string) []Table {
	var out []Table
	var block []string
	flush := func() {
		if t, ok := Parse(block); ok {
			out = append(out, t)
		}
		block = block[:0]
	}
	for _, ln := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(ln), "|") {
			block = append(block, ln)
			continue
		}
		if len(block) > 0 {
			flush()
		}
	}
	if len(block) > 0 {
		flush()
	}
	return out
}

// Parse splits table lines into cells. Lines not starting with a pipe and
// lines with fewer than two cells are skipped; separator rows are dropped.
// ok is false when no header row was found.
func Parse(lines []string) (Table, bool) {
	var rows [][]string
	for _, ln := range lines {
		s := strings.TrimSpace(ln)
		if !strings.HasPrefix(s, "|") {
			continue
		}
		parts := strings.Split(strings.Trim(s, "|"), "|")
		if len(parts) <= 1 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if IsSeparator(parts) {
			continue
		}
		rows = append(rows, parts)
	}
	if len(rows) == 0 {
		return Table{}, false
	}
	return Table{Header: rows[0], Rows: rows[1:]}, true
}

// IsSeparator reports whether every cell is a dash/colon alignment marker.
func IsSeparator(row []string) bool {
	if len(row) == 0 {
		return false
	}
	for _, c := range row {
		if !separatorCell.MatchString(strings.ReplaceAll(c, " ", "")) {
			return false
		}
	}
	return true
}

func isTableLine(s string) bool {
	return strings.HasPrefix(s, "|") && strings.Contains(s[1:], "|")
}

// Column returns the index of the first header containing every Include
// substring and no Exclude substring, or -1.
func (t Table) Column(rule profile.ColumnRule) int {
	for i, h := range t.Header {
		h = strings.TrimSpace(h)
		if matches(h, rule) {
			return i
		}
	}
	return -1
}

// FirstColumn tries rules in order and returns the first resolved index.
func (t Table) FirstColumn(rules ...profile.ColumnRule) int {
	for _, r := range rules {
		if i := t.Column(r); i >= 0 {
			return i
		}
	}
	return -1
}

// HeaderAt returns the header text at idx, or "" when idx is out of range.
func (t Table) HeaderAt(idx int) string {
	return Cell(t.Header, idx)
}

func matches(header string, rule profile.ColumnRule) bool {
	for _, ex := range rule.Exclude {
		if strings.Contains(header, ex) {
			return false
		}
	}
	for _, in := range rule.Include {
		if !strings.Contains(header, in) {
			return false
		}
	}
	if len(rule.AnyOf) == 0 {
		return true
	}
	for _, a := range rule.AnyOf {
		if strings.Contains(header, a) {
			return true
		}
	}
	return false
}

// Cell returns row[idx], or "" when idx is negative or past the row end.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
