package grouping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/quorum/pkg/grouping"
	"github.com/agentstation/quorum/pkg/normalize"
	"github.com/agentstation/quorum/pkg/profile"
)

func TestItemSimilar(t *testing.T) {
	m := grouping.Items(profile.Default())

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal", "华安黄金", "华安黄金", true},
		{"share class variants", "易方达人工智能etf联接a", "易方达人工智能etf联接c", true},
		{"brand guard", "广发纳斯达克100", "华夏纳斯达克100", false},
		{"short containment rejected", "天弘光伏", "天弘光伏指数a", false},
		{"long containment accepted", "招商中证白酒", "招商中证白酒指数a", true},
		{"empty", "", "华安黄金", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Similar(tt.a, tt.b))
			assert.Equal(t, tt.want, m.Similar(tt.b, tt.a), "symmetric")
		})
	}
}

func TestScore(t *testing.T) {
	m := grouping.Themes(profile.Default())
	assert.Equal(t, 3, m.Score("半导体", "半导体"))
	assert.Equal(t, 2, m.Score("半导体设备", "半导体"))
	assert.Equal(t, 1, m.Score("人工智能芯片", "芯片人工智能"))
	assert.Equal(t, 0, m.Score("黄金", "医药"))
	assert.Equal(t, 0, m.Score("", "医药"))
}

func TestThemeGrouping(t *testing.T) {
	p := profile.Default()
	norm, err := normalize.Themes(p)
	require.NoError(t, err)
	gr := grouping.New(grouping.Themes(p))

	add := func(source, name string) *grouping.Group {
		return gr.Add(grouping.Member{Source: source, Name: name, Key: norm.Key(name)})
	}

	g1 := add("DeepSeek", "人工智能芯片ETF")
	g2 := add("Kimi", "芯片人工智能指数")
	g3 := add("Gemini", "黄金")
	g4 := add("Qwen", "芯片ETF")
	g5 := add("Qwen", "黄金主题")

	assert.Same(t, g1, g2, "token overlap joins the group")
	assert.NotSame(t, g1, g3)
	assert.Same(t, g1, g4, "containment of 芯片 joins the first group")
	assert.Same(t, g3, g5)
	require.Len(t, gr.Groups(), 2)

	assert.Equal(t, []string{"芯片ETF", "芯片人工智能指数", "人工智能芯片ETF"}, g1.MergedNames())
	assert.Equal(t, []string{"DeepSeek", "Kimi", "Qwen"}, g1.Sources())
	assert.Len(t, g1.BySource("Qwen"), 1)
}

func TestGreedyFirstMatch(t *testing.T) {
	m := grouping.NewMatcher(profile.Match{SubstringMin: 1, MinShared: 2, Tokens: profile.TokensWords})
	gr := grouping.New(m)

	a := gr.Add(grouping.Member{Name: "ab", Key: "ab"})
	b := gr.Add(grouping.Member{Name: "cd", Key: "cd"})
	// "abcd" contains both; it joins the first group created.
	c := gr.Add(grouping.Member{Name: "abcd", Key: "abcd"})

	assert.NotSame(t, a, b)
	assert.Same(t, a, c)
}

func TestMainName(t *testing.T) {
	g := groupOf(t, "纳指100", "纳斯达克100", "纳斯达克100", "纳指100A")
	assert.Equal(t, "纳斯达克100", g.MainName())

	tie := groupOf(t, "标普500指数", "标普500", "标普")
	assert.Equal(t, "标普", tie.MainName())
}

func TestOrder(t *testing.T) {
	gr := grouping.New(grouping.NewMatcher(profile.Match{SubstringMin: 1, MinShared: 1, Tokens: profile.TokensBigrams}))
	g := gr.Add(grouping.Member{Name: "x", Key: "x", Order: 5})
	gr.Add(grouping.Member{Name: "x", Key: "x", Order: 2})
	assert.Equal(t, 2, g.Order())
}

func groupOf(t *testing.T, names ...string) *grouping.Group {
	t.Helper()
	// a permissive matcher so every name lands in one group
	gr := grouping.New(grouping.NewMatcher(profile.Match{SubstringMin: 1, MinShared: 1, Tokens: profile.TokensBigrams}))
	var g *grouping.Group
	for _, n := range names {
		g = gr.Add(grouping.Member{Source: "s", Name: n, Key: "k"})
	}
	require.Len(t, gr.Groups(), 1)
	return g
}
