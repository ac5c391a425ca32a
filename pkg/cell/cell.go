// Package cell parses and formats the contents of a single table cell.
//
// A cell carries up to two facts: a numeric magnitude (usually a percentage)
// and a qualitative phrase in parentheses, e.g. "28.00%（增配）". Parse splits a
// raw cell into those parts and Format renders them back into the canonical
// display form used by every generated report.
package cell

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/agentstation/quorum/pkg/constants"
)

var (
	phrasePattern = regexp.MustCompile(`[（(]\s*([^）)]+?)\s*[）)]`)
	numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

	markup = strings.NewReplacer("**", "", "__", "", "*", "", "`", "")
)

// Value is the parsed form of one cell.
type Value struct {
	// Magnitude is the first signed number outside the phrase, if any.
	Magnitude *float64
	// Phrase is the first parenthesized group, trimmed. Empty means absent.
	Phrase string
	// Display is the canonical rendering of Magnitude and Phrase.
	Display string
}

// HasPhrase reports whether a qualitative phrase was found.
func (v Value) HasPhrase() bool { return v.Phrase != "" }

// Missing reports whether the cell carries neither a number nor a phrase.
func (v Value) Missing() bool { return v.Magnitude == nil && v.Phrase == "" }

// StripMarkup removes emphasis markers and surrounding whitespace.
func StripMarkup(s string) string {
	return strings.TrimSpace(markup.Replace(s))
}

// Parse splits a raw cell into magnitude, phrase and display.
func Parse(text string) Value {
	raw := StripMarkup(text)
	if raw == "" || raw == constants.Missing {
		return Value{Display: constants.Missing}
	}

	var phrase string
	outside := raw
	if loc := phrasePattern.FindStringSubmatchIndex(raw); loc != nil {
		phrase = strings.TrimSpace(raw[loc[2]:loc[3]])
		if phrase == constants.Missing {
			phrase = ""
		}
		outside = raw[:loc[0]] + " " + raw[loc[1]:]
	}

	mag := Number(outside)
	return Value{
		Magnitude: mag,
		Phrase:    phrase,
		Display:   Format(mag, phrase),
	}
}

// Number returns the first signed decimal in s. Thousands separators are
// ignored and full-width digits are folded to ASCII.
func Number(s string) *float64 {
	nums := Numbers(s, 1)
	if len(nums) == 0 {
		return nil
	}
	return &nums[0]
}

// Numbers returns up to limit signed decimals found in s, in order.
// A negative limit returns all of them.
func Numbers(s string, limit int) []float64 {
	s = width.Narrow.String(strings.ReplaceAll(s, ",", ""))
	var out []float64
	for _, m := range numberPattern.FindAllString(s, limit) {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Percent renders a magnitude with two decimals and a percent sign.
func Percent(f float64) string {
	return fmt.Sprintf("%.2f%%", f)
}

// Format renders a magnitude and phrase in display form:
// "12.50%（增配）", "12.50%（—）", "—（增配）" or "—".
func Format(mag *float64, phrase string) string {
	switch {
	case mag != nil && phrase != "":
		return Percent(*mag) + "（" + phrase + "）"
	case mag != nil:
		return Percent(*mag) + "（" + constants.Missing + "）"
	case phrase != "":
		return constants.Missing + "（" + phrase + "）"
	default:
		return constants.Missing
	}
}
