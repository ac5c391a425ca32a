package cell

import "github.com/agentstation/quorum/pkg/constants"

// Candidate is one source's observation for one entity.
type Candidate struct {
	// Source is the raw source label; it breaks selection ties.
	Source    string
	Display   string
	Magnitude *float64
	Phrase    string
	Direction Direction
	// Derived marks a magnitude inferred from amounts rather than reported.
	Derived bool
}

// NewCandidate builds a candidate from a parsed value.
func NewCandidate(source string, v Value, d Direction) Candidate {
	return Candidate{
		Source:    source,
		Display:   v.Display,
		Magnitude: v.Magnitude,
		Phrase:    v.Phrase,
		Direction: d,
	}
}

// Missing reports whether the candidate renders as the missing marker.
func (c Candidate) Missing() bool {
	return c.Display == "" || c.Display == constants.Missing
}
