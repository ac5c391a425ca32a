package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/quorum/pkg/normalize"
	"github.com/agentstation/quorum/pkg/profile"
)

func normalizers(t *testing.T) (themes, items *normalize.Normalizer) {
	t.Helper()
	p := profile.Default()
	themes, err := normalize.Themes(p)
	require.NoError(t, err)
	items, err = normalize.Items(p)
	require.NoError(t, err)
	return themes, items
}

func TestThemeKey(t *testing.T) {
	themes, _ := normalizers(t)

	tests := []struct {
		in   string
		want string
	}{
		{"AI 芯片 ETF", "ai芯片"},
		{"AI芯片指数基金", "ai芯片"},
		{"AI Chips ETF", "aichips"},
		{"AI chip index fund", "aichip"},
		{"《半导体》主题", "半导体"},
		{"红利（低波）", "红利低波"},
		{"机器人、人工智能", "机器人人工智能"},
		{"—", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, themes.Key(tt.in))
		})
	}
}

func TestItemKey(t *testing.T) {
	_, items := normalizers(t)

	tests := []struct {
		in   string
		want string
	}{
		{"华安黄金ETF联接C", "华安黄金"},
		{"华安黄金易ETF", "华安黄金"},
		{"易方达中证人工智能主题ETF联接A（012733）", "易方达人工智能主题etf联接a"},
		{"广发中证全指医疗指数", "广发医疗指数"},
		{"汇添富创新药产业发起式", "汇添富创新药"},
		{"纳斯达克100", "纳斯达克100"},
		{"基金1234567", "基金1234567"},
		{"–", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, items.Key(tt.in))
		})
	}
}

func TestKeyIdempotent(t *testing.T) {
	themes, items := normalizers(t)
	names := []string{
		"AI 芯片 ETF", "中证申万中证", "华安黄金ETF联接C", "  Related Theme 赛道  ",
		"发起发起式", "（（半导体））", "创新药产业产业", "000001 中证 000002",
	}
	for _, n := range []*normalize.Normalizer{themes, items} {
		for _, name := range names {
			k := n.Key(name)
			assert.Equal(t, k, n.Key(k), "name %q", name)
		}
	}
}

func TestVariants(t *testing.T) {
	_, items := normalizers(t)
	assert.Equal(t, []string{"医疗etf", "医疗etf联接", "医疗etf联接c"}, items.Variants("医疗etf联接c"))
	assert.Equal(t, []string{"纳指"}, items.Variants("纳指"))
	assert.Nil(t, items.Variants(""))
}

func TestLeadingIdeographs(t *testing.T) {
	assert.Equal(t, "易方达人", normalize.LeadingIdeographs("易方达人工智能", 2, 4))
	assert.Equal(t, "广发", normalize.LeadingIdeographs("广发a", 2, 4))
	assert.Equal(t, "", normalize.LeadingIdeographs("纳a", 2, 4))
	assert.Equal(t, "", normalize.LeadingIdeographs("abc", 2, 4))
}

func TestTokens(t *testing.T) {
	t.Run("words", func(t *testing.T) {
		got := normalize.Tokens("ai芯片", profile.TokensWords)
		assert.Equal(t, []string{"ai", "芯片"}, got.Sorted())
	})
	t.Run("single word falls back to bigrams", func(t *testing.T) {
		got := normalize.Tokens("半导体", profile.TokensWords)
		assert.Equal(t, []string{"半导", "导体"}, got.Sorted())
	})
	t.Run("single character", func(t *testing.T) {
		assert.Equal(t, []string{"金"}, normalize.Tokens("金", profile.TokensWords).Sorted())
	})
	t.Run("bigram mode ignores words", func(t *testing.T) {
		got := normalize.Tokens("ai芯片", profile.TokensBigrams)
		assert.Equal(t, []string{"ai", "i芯", "芯片"}, got.Sorted())
	})
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, normalize.Tokens("", profile.TokensWords))
	})
}

func TestJaccard(t *testing.T) {
	assert.InDelta(t, 1.0, normalize.Jaccard("医疗指数", "医疗指数"), 1e-9)
	assert.InDelta(t, 0.0, normalize.Jaccard("", "医疗"), 1e-9)
	// 医疗 疗指 指数 vs 医疗 疗保 保健: 1 shared of 5
	assert.InDelta(t, 0.2, normalize.Jaccard("医疗指数", "医疗保健"), 1e-9)
}

func TestSharedAndUnion(t *testing.T) {
	a := normalize.NewTokenSet("a", "b", "c")
	b := normalize.NewTokenSet("b", "c", "d")
	assert.Equal(t, 2, a.Shared(b))
	a.Union(b)
	assert.Len(t, a, 4)
}
