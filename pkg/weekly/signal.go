package weekly

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/agentstation/quorum/pkg/cell"
	"github.com/agentstation/quorum/pkg/consensus"
	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/profile"
)

// Vote is the winning direction of one entity on one day.
type Vote int

// Daily outcomes. VoteNone covers both an absent row and a row without any
// usable vote.
const (
	VoteNone Vote = iota
	VoteIncrease
	VoteDecrease
	VoteUnchanged
	VoteTie
)

func voteOf(c consensus.Counts) Vote {
	if c.Total() == 0 {
		return VoteNone
	}
	d, tie := c.Plurality()
	switch {
	case tie:
		return VoteTie
	case d == cell.Increase:
		return VoteIncrease
	case d == cell.Decrease:
		return VoteDecrease
	default:
		return VoteUnchanged
	}
}

// Trend and remark vocabulary.
const (
	trendReversal   = "反转：%s→%s"
	trendStronger   = "变强"
	trendWeaker     = "变弱"
	trendStable     = "稳定"
	noBiasDays      = "无偏"
	remarkMissing   = "该行在纳入日报中缺失 %d 天"
	remarkNoStart   = "周初数据缺失"
	remarkNoEnd     = "周末数据缺失"
	arrowIncrease   = "↑"
	arrowDecrease   = "↓"
	arrowOther      = "-"
	epsilon         = 1e-9
	reversalMetric  = 1.0
	percentOfScore  = 100
	countsSeparator = "/"
)

// Signal is the weekly condensation of one entity.
type Signal struct {
	Name string
	// Votes holds one vote per included day.
	Votes []Vote
	// Score is (increase days - decrease days) / usable days; nil without a
	// usable day.
	Score    *float64
	Action   string
	Strength string
	Trend    string
	// Change ranks the trend: 1 for a reversal, else the strength delta.
	Change *float64
	Remark string
	Counts string
	Arrows string
}

// Score returns the signal score of votes. Tie days are not usable.
func Score(votes []Vote) *float64 {
	var up, down, flat int
	for _, v := range votes {
		switch v {
		case VoteIncrease:
			up++
		case VoteDecrease:
			down++
		case VoteUnchanged:
			flat++
		}
	}
	total := up + down + flat
	if total == 0 {
		return nil
	}
	s := float64(up-down) / float64(total)
	return &s
}

// Split returns the early and late halves of votes. The late half takes the
// extra day of an odd count.
func Split(votes []Vote) (early, late []Vote) {
	half := len(votes) / 2
	return votes[:half], votes[half:]
}

func (a *Aggregator) actions(kind cell.Kind) profile.Actions {
	if kind == cell.Category {
		return a.profile.Weekly.Category
	}
	return a.profile.Weekly.Item
}

// action maps a score to its verdict: at or beyond the threshold in either
// direction, else hold.
func (a *Aggregator) action(score *float64, kind cell.Kind) string {
	if score == nil {
		return constants.Missing
	}
	th := a.profile.Weekly.ActionThreshold
	acts := a.actions(kind)
	switch {
	case *score >= th-epsilon:
		return acts.Increase
	case *score <= -th+epsilon:
		return acts.Decrease
	default:
		return a.profile.Weekly.Hold
	}
}

func strength(score *float64) string {
	if score == nil {
		return constants.Missing
	}
	return cell.Percent(math.Abs(*score) * percentOfScore)
}

// trend compares the early and late halves. A change between two different
// non-hold actions is a reversal regardless of magnitude.
func (a *Aggregator) trend(early, late *float64, kind cell.Kind) (string, *float64) {
	if early == nil || late == nil {
		return constants.Missing, nil
	}
	ea, la := a.action(early, kind), a.action(late, kind)
	hold := a.profile.Weekly.Hold
	if ea != la && ea != hold && la != hold {
		m := reversalMetric
		return fmt.Sprintf(trendReversal, ea, la), &m
	}
	delta := math.Abs(*late) - math.Abs(*early)
	m := math.Abs(delta)
	th := a.profile.Weekly.TrendThreshold
	switch {
	case delta >= th-epsilon:
		return trendStronger, &m
	case delta <= -th+epsilon:
		return trendWeaker, &m
	default:
		return trendStable, &m
	}
}

func (a *Aggregator) counts(votes []Vote) string {
	var up, down, flat, tie int
	for _, v := range votes {
		switch v {
		case VoteIncrease:
			up++
		case VoteDecrease:
			down++
		case VoteUnchanged:
			flat++
		case VoteTie:
			tie++
		}
	}
	l := a.profile.Labels
	parts := []string{
		fmt.Sprintf("%s%d天", l.Increase, up),
		fmt.Sprintf("%s%d天", l.Decrease, down),
		fmt.Sprintf("%s%d天", l.Unchanged, flat),
		fmt.Sprintf("%s%d天", noBiasDays, tie),
	}
	return strings.Join(parts, countsSeparator)
}

// Arrows renders votes as ↑ for increase, ↓ for decrease and - otherwise.
func Arrows(votes []Vote) string {
	if len(votes) == 0 {
		return constants.Missing
	}
	var b strings.Builder
	for _, v := range votes {
		switch v {
		case VoteIncrease:
			b.WriteString(arrowIncrease)
		case VoteDecrease:
			b.WriteString(arrowDecrease)
		default:
			b.WriteString(arrowOther)
		}
	}
	return b.String()
}

// signals condenses every entity of s over n included days.
func (a *Aggregator) signals(s *series, kind cell.Kind, n int) []Signal {
	out := make([]Signal, 0, len(s.names))
	for _, name := range s.names {
		byDay := s.votes[name]
		sig := Signal{Name: name, Votes: make([]Vote, n)}
		missing := 0
		for i := 0; i < n; i++ {
			v, ok := byDay[i]
			if !ok {
				missing++
			}
			sig.Votes[i] = v
		}

		sig.Score = Score(sig.Votes)
		sig.Action = a.action(sig.Score, kind)
		sig.Strength = strength(sig.Score)
		early, late := Split(sig.Votes)
		sig.Trend, sig.Change = a.trend(Score(early), Score(late), kind)
		sig.Counts = a.counts(sig.Votes)
		sig.Arrows = Arrows(sig.Votes)

		var remarks []string
		if missing > 0 {
			remarks = append(remarks, fmt.Sprintf(remarkMissing, missing))
		}
		if _, ok := byDay[0]; !ok {
			remarks = append(remarks, remarkNoStart)
		}
		if _, ok := byDay[n-1]; !ok {
			remarks = append(remarks, remarkNoEnd)
		}
		sig.Remark = constants.Missing
		if len(remarks) > 0 {
			sig.Remark = strings.Join(remarks, constants.NoteSeparator)
		}
		out = append(out, sig)
	}
	return out
}

// focus ranks candidates by full-week strength and by trend change. Absent
// values sort last; ties go to the name.
func (a *Aggregator) focus(candidates []Signal) (strongest, changed []Signal) {
	strongest = rank(candidates, a.profile.Weekly.FocusSize, func(s Signal) *float64 {
		if s.Score == nil {
			return nil
		}
		v := math.Abs(*s.Score)
		return &v
	})
	changed = rank(candidates, a.profile.Weekly.FocusSize, func(s Signal) *float64 { return s.Change })
	return strongest, changed
}

func rank(candidates []Signal, n int, value func(Signal) *float64) []Signal {
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(x, y Signal) int {
		vx, vy := value(x), value(y)
		switch {
		case vx == nil && vy != nil:
			return 1
		case vx != nil && vy == nil:
			return -1
		case vx != nil && vy != nil:
			if c := cmp.Compare(*vy, *vx); c != 0 {
				return c
			}
		}
		return strings.Compare(x.Name, y.Name)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
