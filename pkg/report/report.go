// Package report renders reconciled results as Markdown documents.
//
// Headings, prose and lists go through the nao1215/markdown builder. Tables
// are rendered here byte for byte: generated reports are parsed again by the
// weekly engine and regenerated in place, so cell text must survive a round
// trip without padding or reformatting.
package report

import (
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/quorum/pkg/constants"
)

// Document accumulates Markdown blocks, one line group per call.
type Document struct {
	md     *md.Markdown
	buffer *strings.Builder
}

// New returns an empty document.
func New() *Document {
	buffer := &strings.Builder{}
	return &Document{
		md:     md.NewMarkdown(buffer),
		buffer: buffer,
	}
}

// H1 adds a level 1 heading.
func (d *Document) H1(text string) *Document {
	d.md.H1(text)
	return d
}

// H2 adds a level 2 heading.
func (d *Document) H2(text string) *Document {
	d.md.H2(text)
	return d
}

// H3 adds a level 3 heading.
func (d *Document) H3(text string) *Document {
	d.md.H3(text)
	return d
}

// H4 adds a level 4 heading.
func (d *Document) H4(text string) *Document {
	d.md.H4(text)
	return d
}

// Text adds a block of text as is.
func (d *Document) Text(text string) *Document {
	d.md.PlainText(text)
	return d
}

// Blank adds an empty line.
func (d *Document) Blank() *Document {
	d.md.PlainText("")
	return d
}

// Bullets adds one "- " line per item.
func (d *Document) Bullets(items ...string) *Document {
	d.md.BulletList(items...)
	return d
}

// Table adds a pipe table.
func (d *Document) Table(header []string, rows [][]string) *Document {
	d.md.PlainText(Table(header, rows))
	return d
}

// String builds the document. Trailing whitespace is trimmed and exactly one
// newline ends the output.
func (d *Document) String() (string, error) {
	d.buffer.Reset()
	if err := d.md.Build(); err != nil {
		return "", err
	}
	return strings.TrimRight(d.buffer.String(), " \t\r\n") + "\n", nil
}

var cellEscaper = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "|", "／")

// Cell returns text as a single-line table cell. Empty cells render as the
// missing marker.
func Cell(text string) string {
	s := strings.TrimSpace(cellEscaper.Replace(text))
	if s == "" {
		return constants.Missing
	}
	return s
}

// Table renders header and rows as a pipe table with a plain separator row.
// Rows shorter than the header are padded with the missing marker.
func Table(header []string, rows [][]string) string {
	var b strings.Builder
	writeRow(&b, header, len(header))
	b.WriteString("\n|")
	for range header {
		b.WriteString("---|")
	}
	for _, r := range rows {
		b.WriteString("\n")
		writeRow(&b, r, len(header))
	}
	return b.String()
}

func writeRow(b *strings.Builder, row []string, width int) {
	cells := make([]string, max(width, len(row)))
	for i := range cells {
		if i < len(row) {
			cells[i] = Cell(row[i])
		} else {
			cells[i] = constants.Missing
		}
	}
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |")
}
