// Package consensus selects one candidate per source and turns the selected
// candidates into an agreement verdict.
package consensus

import (
	"fmt"
	"unicode/utf8"

	"github.com/agentstation/quorum/pkg/cell"
	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/profile"
)

// Select picks the representative of one source's competing candidates:
// non-missing first, then the longest display, then the source label that
// sorts last. ok is false only when cands is empty.
func Select(cands []cell.Candidate) (best cell.Candidate, ok bool) {
	if len(cands) == 0 {
		return cell.Candidate{}, false
	}
	pool := make([]cell.Candidate, 0, len(cands))
	for _, c := range cands {
		if !c.Missing() {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = cands
	}
	best = pool[0]
	for _, c := range pool[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best, true
}

func better(c, than cell.Candidate) bool {
	lc, lt := utf8.RuneCountInString(c.Display), utf8.RuneCountInString(than.Display)
	if lc != lt {
		return lc > lt
	}
	return c.Source > than.Source
}

// Level is the strength of agreement.
type Level int

// Agreement levels, weakest first.
const (
	Disagreement Level = iota
	Mostly
	Unanimous
)

// Counts tallies usable votes per direction.
type Counts struct {
	Increase  int
	Decrease  int
	Unchanged int
}

// Add records one vote.
func (c *Counts) Add(d cell.Direction) {
	switch d {
	case cell.Increase:
		c.Increase++
	case cell.Decrease:
		c.Decrease++
	case cell.Unchanged:
		c.Unchanged++
	}
}

// Of returns the votes for d.
func (c Counts) Of(d cell.Direction) int {
	switch d {
	case cell.Increase:
		return c.Increase
	case cell.Decrease:
		return c.Decrease
	case cell.Unchanged:
		return c.Unchanged
	default:
		return 0
	}
}

// Total is the number of usable votes.
func (c Counts) Total() int { return c.Increase + c.Decrease + c.Unchanged }

// Plurality returns the direction with the most votes. tie is true when
// several directions share the maximum; d is None when there are no votes.
func (c Counts) Plurality() (d cell.Direction, tie bool) {
	top := 0
	for _, dir := range cell.Directions {
		n := c.Of(dir)
		switch {
		case n == 0:
		case n > top:
			top, d, tie = n, dir, false
		case n == top:
			tie = true
		}
	}
	if tie {
		return cell.None, true
	}
	return d, false
}

// Result is the consensus over one entity's selected candidates.
type Result struct {
	Label   string
	Level   Level
	Winner  cell.Direction
	Tie     bool
	Counts  Counts
	Usable  int
	Min     *float64
	Max     *float64
	Summary string
}

// Agreed reports whether the row belongs in the agreement sub-table.
func (r Result) Agreed() bool { return r.Level >= Mostly }

// Classify computes the verdict over selected candidates, one per source.
// Candidates without a direction are neither votes nor part of the range.
func Classify(selected []cell.Candidate, l profile.Labels) Result {
	var r Result
	for _, c := range selected {
		if !c.Direction.Usable() {
			continue
		}
		r.Counts.Add(c.Direction)
		if c.Magnitude != nil {
			v := *c.Magnitude
			if r.Min == nil || v < *r.Min {
				r.Min = &v
			}
			if r.Max == nil || v > *r.Max {
				r.Max = &v
			}
		}
	}
	r.Usable = r.Counts.Total()

	if r.Usable == 0 {
		r.Label = verdict(l.Disagreement, l.NoBias)
		r.Summary = l.Insufficient + constants.NoteSeparator + l.Range + " " + constants.Missing
		return r
	}

	r.Winner, r.Tie = r.Counts.Plurality()
	bias := l.NoBias
	if !r.Tie {
		bias = l.BiasPrefix + r.Winner.Label(l)
	}

	ratio := float64(maxVotes(r.Counts)) / float64(r.Usable)
	switch {
	case r.Usable == 1:
		r.Level = Disagreement
	case ratio == 1:
		r.Level = Unanimous
	case ratio >= l.MostlyRatio:
		r.Level = Mostly
	default:
		r.Level = Disagreement
	}
	r.Label = verdict(levelLabel(r.Level, l), bias)

	summary := fmt.Sprintf("%d%s/%d%s/%d%s%s%s %s",
		r.Counts.Increase, l.Increase,
		r.Counts.Decrease, l.Decrease,
		r.Counts.Unchanged, l.Unchanged,
		constants.NoteSeparator, l.Range, r.rangeText())
	if r.Usable == 1 {
		summary = l.Insufficient + constants.NoteSeparator + summary
	}
	r.Summary = summary
	return r
}

func (r Result) rangeText() string {
	if r.Min == nil {
		return constants.Missing
	}
	return cell.Percent(*r.Min) + constants.RangeDash + cell.Percent(*r.Max)
}

func maxVotes(c Counts) int {
	return max(c.Increase, c.Decrease, c.Unchanged)
}

func levelLabel(lv Level, l profile.Labels) string {
	switch lv {
	case Unanimous:
		return l.Unanimous
	case Mostly:
		return l.Mostly
	default:
		return l.Disagreement
	}
}

func verdict(level, bias string) string {
	return level + "（" + bias + "）"
}
