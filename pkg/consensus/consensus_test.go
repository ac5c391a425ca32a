package consensus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/quorum/pkg/cell"
	"github.com/agentstation/quorum/pkg/consensus"
	"github.com/agentstation/quorum/pkg/profile"
)

func cand(source string, mag float64, d cell.Direction) cell.Candidate {
	m := mag
	return cell.Candidate{Source: source, Display: cell.Format(&m, "x"), Magnitude: &m, Direction: d}
}

func TestSelect(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, ok := consensus.Select(nil)
		assert.False(t, ok)
	})

	t.Run("non-missing beats missing", func(t *testing.T) {
		got, ok := consensus.Select([]cell.Candidate{
			{Source: "z", Display: "—"},
			{Source: "a", Display: "—（增配）"},
		})
		require.True(t, ok)
		assert.Equal(t, "a", got.Source)
	})

	t.Run("longest display", func(t *testing.T) {
		got, _ := consensus.Select([]cell.Candidate{
			{Source: "b", Display: "10.00%（增配）"},
			{Source: "a", Display: "10.00%（小幅增配）"},
		})
		assert.Equal(t, "a", got.Source)
	})

	t.Run("source sorting last breaks ties", func(t *testing.T) {
		got, _ := consensus.Select([]cell.Candidate{
			{Source: "deepseek-v3", Display: "10.00%（增配）"},
			{Source: "deepseek-r1", Display: "12.00%（增配）"},
		})
		assert.Equal(t, "deepseek-v3", got.Source)
	})

	t.Run("all missing picks last source", func(t *testing.T) {
		got, ok := consensus.Select([]cell.Candidate{
			{Source: "a", Display: "—"},
			{Source: "c", Display: "—"},
			{Source: "b", Display: "—"},
		})
		require.True(t, ok)
		assert.Equal(t, "c", got.Source)
	})

	t.Run("order independent", func(t *testing.T) {
		cs := []cell.Candidate{
			{Source: "a", Display: "1.00%（增配）"},
			{Source: "b", Display: "2.00%（增配）"},
			{Source: "c", Display: "—"},
		}
		first, _ := consensus.Select(cs)
		reversed, _ := consensus.Select([]cell.Candidate{cs[2], cs[1], cs[0]})
		assert.Equal(t, first, reversed)
	})
}

func TestClassify(t *testing.T) {
	labels := profile.Default().Labels

	tests := []struct {
		name    string
		in      []cell.Candidate
		label   string
		summary string
		level   consensus.Level
	}{
		{
			name:    "no usable votes",
			in:      []cell.Candidate{{Source: "a", Display: "—"}},
			label:   "分歧（无明显偏向）",
			summary: "数据不足；范围 —",
		},
		{
			name: "unanimous increase",
			in: []cell.Candidate{
				cand("a", 28, cell.Increase), cand("b", 30, cell.Increase), cand("c", 31, cell.Increase),
			},
			label:   "一致（偏增）",
			summary: "3增/0减/0不变；范围 28.00%–31.00%",
			level:   consensus.Unanimous,
		},
		{
			name: "two against one is disagreement",
			in: []cell.Candidate{
				cand("a", 5, cell.Increase), cand("b", 6, cell.Increase), cand("c", 3, cell.Decrease),
			},
			label:   "分歧（偏增）",
			summary: "2增/1减/0不变；范围 3.00%–6.00%",
		},
		{
			name: "three of four is mostly",
			in: []cell.Candidate{
				cand("a", 5, cell.Decrease), cand("b", 6, cell.Decrease),
				cand("c", 3, cell.Decrease), cand("d", 4, cell.Unchanged),
			},
			label:   "基本一致（偏减）",
			summary: "0增/3减/1不变；范围 3.00%–6.00%",
			level:   consensus.Mostly,
		},
		{
			name:    "tie has no bias",
			in:      []cell.Candidate{cand("a", 5, cell.Increase), cand("b", 6, cell.Decrease)},
			label:   "分歧（无明显偏向）",
			summary: "1增/1减/0不变；范围 5.00%–6.00%",
		},
		{
			name:    "single usable source",
			in:      []cell.Candidate{cand("a", 12, cell.Unchanged), {Source: "b", Display: "—"}},
			label:   "分歧（偏不变）",
			summary: "数据不足；0增/0减/1不变；范围 12.00%–12.00%",
		},
		{
			name: "directions without magnitudes",
			in: []cell.Candidate{
				{Source: "a", Display: "—（增持）", Direction: cell.Increase},
				{Source: "b", Display: "—（增持）", Direction: cell.Increase},
			},
			label:   "一致（偏增）",
			summary: "2增/0减/0不变；范围 —",
			level:   consensus.Unanimous,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := consensus.Classify(tt.in, labels)
			assert.Equal(t, tt.label, r.Label)
			assert.Equal(t, tt.summary, r.Summary)
			assert.Equal(t, tt.level, r.Level)
		})
	}
}

func TestMajorityVoteNeverDowngrades(t *testing.T) {
	labels := profile.Default().Labels
	base := [][]cell.Direction{
		{cell.Increase, cell.Increase},
		{cell.Increase, cell.Increase, cell.Increase, cell.Decrease},
		{cell.Decrease, cell.Decrease, cell.Decrease, cell.Decrease, cell.Unchanged},
		{cell.Unchanged, cell.Unchanged, cell.Unchanged, cell.Increase},
	}
	for _, dirs := range base {
		var cs []cell.Candidate
		for i, d := range dirs {
			cs = append(cs, cand(string(rune('a'+i)), float64(i), d))
		}
		before := consensus.Classify(cs, labels)
		require.True(t, before.Agreed(), "fixture should start agreed: %v", dirs)

		more := append(cs, cand("z", 1, before.Winner))
		after := consensus.Classify(more, labels)
		assert.GreaterOrEqual(t, int(after.Level), int(before.Level), "dirs %v", dirs)
	}
}

func TestPlurality(t *testing.T) {
	d, tie := consensus.Counts{Increase: 2, Decrease: 2, Unchanged: 3}.Plurality()
	assert.Equal(t, cell.Unchanged, d)
	assert.False(t, tie)

	d, tie = consensus.Counts{}.Plurality()
	assert.Equal(t, cell.None, d)
	assert.False(t, tie)

	_, tie = consensus.Counts{Increase: 1, Unchanged: 1}.Plurality()
	assert.True(t, tie)
}
