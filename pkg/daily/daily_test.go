package daily_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/quorum/pkg/daily"
	"github.com/agentstation/quorum/pkg/errors"
	"github.com/agentstation/quorum/pkg/logging"
	"github.com/agentstation/quorum/pkg/plan"
	"github.com/agentstation/quorum/pkg/profile"
)

const deepseekDoc = `# DeepSeek 日报

## 定投增减要点
- 华安黄金ETF联接C：增持 8%→10% — 避险需求上升

## 大板块比例调整建议
| 大板块 | 建议% | 建议 |
|---|---|---|
| 债券 | 28 | 增配 |
| 中股 | 40 | 减配 |

## 定投计划逐项建议
| 标的 | 建议% | 建议 |
|---|---|---|
| 华安黄金ETF联接C | 10 | 增持 |
| 纳指100 | 5 | 维持 |

## 新的定投方向建议
| 主题/方向 | 比例 | 口径 |
|---|---|---|
| 半导体 | 5 | 占月定投 |
`

const kimiDoc = `# Kimi 日报

## 大板块比例调整建议
| 大板块 | 建议% | 建议 |
|---|---|---|
| 债券 | 30 | 增配 |
| 中股 | 35 | 减配 |

## 定投计划逐项建议
| 标的 | 建议% | 建议 |
|---|---|---|
| 华安黄金ETF联接C | 12 | 增持 |
| 纳指100 | 6 | 增持 |

## 新的定投方向建议
| 主题/方向 | 比例 | 口径 |
|---|---|---|
| 半导体ETF | 4 | 占月定投 |
`

const qwenDoc = `# Qwen 日报

## 大板块比例调整建议
| 大板块 | 建议% | 建议 |
|---|---|---|
| 债券 | 31 | 增配 |
| 中股 | 45 | 增配 |

## 定投计划逐项建议
| 标的 | 建议% | 建议 |
|---|---|---|
| 华安黄金ETF联接C | 8 | 减持 |

## 新的定投方向建议
本周期不新增。
`

var day = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func documents() []daily.Document {
	return []daily.Document{
		{Label: "deepseek-v3.2", Text: deepseekDoc},
		{Label: "kimi-k2", Text: kimiDoc},
		{Label: "qwen3-max", Text: qwenDoc},
	}
}

func newAggregator(t *testing.T, opts ...daily.Option) *daily.Aggregator {
	t.Helper()
	a, err := daily.New(profile.Default(), opts...)
	require.NoError(t, err)
	return a
}

func TestRun(t *testing.T) {
	a := newAggregator(t)
	s, err := a.Run(context.Background(), daily.Input{Date: day, Documents: documents()})
	require.NoError(t, err)

	assert.Equal(t, []string{"DeepSeek", "Kimi", "Qwen"}, s.Sources)
	assert.Empty(t, s.Findings)

	t.Run("unanimous category", func(t *testing.T) {
		require.Len(t, s.Categories.Rows, 2)
		bonds := s.Categories.Rows[0]
		assert.Equal(t, "债券", bonds.Name)
		assert.Equal(t, []string{"28.00%（增配）", "30.00%（增配）", "31.00%（增配）"}, bonds.Cells)
		assert.Equal(t, "一致（偏增）", bonds.Result.Label)
		assert.Equal(t, "3增/0减/0不变；范围 28.00%–31.00%", bonds.Result.Summary)
	})

	t.Run("two to one disagreement", func(t *testing.T) {
		stocks := s.Categories.Rows[1]
		assert.Equal(t, "中股", stocks.Name)
		assert.Equal(t, "分歧（偏减）", stocks.Result.Label)
		assert.Equal(t, "1增/2减/0不变；范围 35.00%–45.00%", stocks.Result.Summary)
	})

	t.Run("agreed rows", func(t *testing.T) {
		agreed := s.Categories.Agreed()
		require.Len(t, agreed, 1)
		assert.Equal(t, "债券", agreed[0].Name)
		assert.Empty(t, s.Items.Agreed())
	})

	t.Run("items in first-seen order", func(t *testing.T) {
		require.Len(t, s.Items.Rows, 2)
		assert.Equal(t, "华安黄金ETF联接C", s.Items.Rows[0].Name)
		assert.Equal(t, "纳指100", s.Items.Rows[1].Name)
		assert.Equal(t, []string{"5.00%（维持）", "6.00%（增持）", "—"}, s.Items.Rows[1].Cells)
		assert.Equal(t, "分歧（无明显偏向）", s.Items.Rows[1].Result.Label)
	})

	t.Run("theme merge note", func(t *testing.T) {
		require.Len(t, s.Themes, 1)
		th := s.Themes[0]
		assert.Equal(t, "半导体", th.Name)
		assert.Equal(t, []string{"5.00%（占月定投）", "4.00%（占月定投）", "—"}, th.Cells)
		assert.Equal(t, "合并：半导体 / 半导体ETF；其中 Qwen 明确不新增", th.Note)
	})

	t.Run("highlights", func(t *testing.T) {
		assert.Equal(t,
			"综合当日3份报告的“定投增减要点”，可以概括为：多份报告倾向把定投多放在华安黄金ETF联接C，常见理由包括：避险需求上升。",
			s.Highlights)
	})
}

func TestRender(t *testing.T) {
	a := newAggregator(t)
	s, err := a.Run(context.Background(), daily.Input{Date: day, Documents: documents()})
	require.NoError(t, err)
	got, err := a.Render(s)
	require.NoError(t, err)

	want := strings.Join([]string{
		"# 投资总结（2026-01-05）",
		"",
		"## 0. 定投增减要点综述（1000字以内）",
		"综合当日3份报告的“定投增减要点”，可以概括为：多份报告倾向把定投多放在华安黄金ETF联接C，常见理由包括：避险需求上升。",
		"",
		"## 1. 大板块比例调整建议（按大类横向对比）",
		"| 大板块 | DeepSeek | Kimi | Qwen | 一致性 | 分歧摘要 |",
		"|---|---|---|---|---|---|",
		"| 债券 | 28.00%（增配） | 30.00%（增配） | 31.00%（增配） | 一致（偏增） | 3增/0减/0不变；范围 28.00%–31.00% |",
		"| 中股 | 40.00%（减配） | 35.00%（减配） | 45.00%（增配） | 分歧（偏减） | 1增/2减/0不变；范围 35.00%–45.00% |",
		"",
		"### 一致建议",
		"| 大板块 | DeepSeek | Kimi | Qwen | 一致性 | 分歧摘要 |",
		"|---|---|---|---|---|---|",
		"| 债券 | 28.00%（增配） | 30.00%（增配） | 31.00%（增配） | 一致（偏增） | 3增/0减/0不变；范围 28.00%–31.00% |",
		"",
		"## 2. 定投计划逐项建议（按标的横向对比）",
		"| 标的 | DeepSeek | Kimi | Qwen | 一致性 | 分歧摘要 |",
		"|---|---|---|---|---|---|",
		"| 华安黄金ETF联接C | 10.00%（增持） | 12.00%（增持） | 8.00%（减持） | 分歧（偏增） | 2增/1减/0不变；范围 8.00%–12.00% |",
		"| 纳指100 | 5.00%（维持） | 6.00%（增持） | — | 分歧（无明显偏向） | 1增/0减/1不变；范围 5.00%–6.00% |",
		"",
		"### 一致建议",
		"| 标的 | DeepSeek | Kimi | Qwen | 一致性 | 分歧摘要 |",
		"|---|---|---|---|---|---|",
		"",
		"## 3. 新的定投方向建议（按主题横向对比）",
		"| 主题/方向 | DeepSeek | Kimi | Qwen | 异同 |",
		"|---|---|---|---|---|",
		"| 半导体 | 5.00%（占月定投） | 4.00%（占月定投） | — | 合并：半导体 / 半导体ETF；其中 Qwen 明确不新增 |",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderDeterministic(t *testing.T) {
	a := newAggregator(t)
	docs := documents()

	render := func(docs []daily.Document) string {
		s, err := a.Run(context.Background(), daily.Input{Date: day, Documents: docs})
		require.NoError(t, err)
		out, err := a.Render(s)
		require.NoError(t, err)
		return out
	}

	first := render(docs)
	assert.Equal(t, first, render(docs), "identical inputs render identically")

	reversed := []daily.Document{docs[2], docs[0], docs[1]}
	assert.Equal(t, first, render(reversed), "input order does not matter")
}

func TestGate(t *testing.T) {
	items := []plan.Item{{Name: "华安黄金ETF联接C"}, {Name: "纳指100"}}
	in := daily.Input{Date: day, Documents: documents(), Plan: items}

	t.Run("missing plan item stops the run", func(t *testing.T) {
		_, err := newAggregator(t).Run(context.Background(), in)
		require.Error(t, err)
		assert.True(t, errors.IsGateError(err))

		var ge *errors.GateError
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, map[string][]string{"qwen3-max": {"纳指100"}}, ge.Missing)
	})

	t.Run("validate reports the same findings", func(t *testing.T) {
		findings, err := newAggregator(t).Validate(context.Background(), in)
		assert.True(t, errors.IsGateError(err))
		require.Len(t, findings, 1)
		assert.Equal(t, "qwen3-max", findings[0].Source)
	})

	t.Run("force continues in plan order", func(t *testing.T) {
		logger := logging.NewTestLogger(t)
		a := newAggregator(t, daily.WithForce(true), daily.WithLogger(logger.Logger))
		s, err := a.Run(context.Background(), in)
		require.NoError(t, err)
		require.Len(t, s.Findings, 1)
		require.Len(t, s.Items.Rows, 2)
		assert.Equal(t, "华安黄金ETF联接C", s.Items.Rows[0].Name)
		assert.Equal(t, "纳指100", s.Items.Rows[1].Name)
		assert.True(t, logger.Contains("Continuing past validation gate"))
	})
}

func TestNoInputs(t *testing.T) {
	_, err := newAggregator(t).Run(context.Background(), daily.Input{Date: day})
	assert.ErrorIs(t, err, errors.ErrNoInputs)
}

func TestDigestFallback(t *testing.T) {
	s, err := newAggregator(t).Run(context.Background(), daily.Input{
		Date:      day,
		Documents: []daily.Document{{Label: "kimi-k2", Text: kimiDoc}},
	})
	require.NoError(t, err)
	assert.Equal(t, "当日各报告未提供可解析的“定投增减要点”，因此无法基于该部分做横向综述。", s.Highlights)

	bonds := s.Categories.Rows[0]
	assert.Equal(t, "分歧（偏增）", bonds.Result.Label)
	assert.Equal(t, "数据不足；1增/0减/0不变；范围 30.00%–30.00%", bonds.Result.Summary)
}

func TestAmountConversion(t *testing.T) {
	doc := `## 每周定投调整
| 大类 | 调整前周定投 | 调整后周定投 |
|---|---|---|
| 债券 | 200 | 300 |
| 美股 | 300 | 100 |
`
	s, err := newAggregator(t).Run(context.Background(), daily.Input{
		Date:      day,
		Documents: []daily.Document{{Label: "gpt-5.2", Text: doc}},
	})
	require.NoError(t, err)
	require.Len(t, s.Categories.Rows, 2)
	assert.Equal(t, []string{"75.00%（增配）"}, s.Categories.Rows[0].Cells)
	assert.Equal(t, []string{"25.00%（减配）"}, s.Categories.Rows[1].Cells)
	assert.Equal(t, []string{"GPT-5.2"}, s.Categories.Rows[0].Derived)

	out, err := newAggregator(t).Render(s)
	require.NoError(t, err)
	assert.Contains(t, out, "|\n\n注：GPT-5.2 仅给出金额，比例按该报告金额合计折算。\n")
}

const chipsDoc = `## 新的定投方向建议
| 主题/方向 | 比例 | 口径 |
|---|---|---|
| AI Chips ETF | 5 | 占月定投 |
| AI chip index fund | 3 | 占月定投 |
`

const dividendDoc = `## 新的定投方向建议
| 主题/方向 | 比例 | 口径 |
|---|---|---|
| 红利低波 | 4 | 占月定投 |
`

func TestThemeNotes(t *testing.T) {
	s, err := newAggregator(t).Run(context.Background(), daily.Input{
		Date: day,
		Documents: []daily.Document{
			{Label: "deepseek-v3.2", Text: chipsDoc},
			{Label: "kimi-k2", Text: dividendDoc},
		},
	})
	require.NoError(t, err)

	want := []daily.ThemeRow{
		{
			Name:  "AI Chips ETF",
			Cells: []string{"5.00%（占月定投）", "—"},
			Note:  "合并：AI Chips ETF / AI chip index fund；DeepSeek 另提：AI chip index fund；仅 DeepSeek 提出；未提及：Kimi",
		},
		{
			Name:  "红利低波",
			Cells: []string{"—", "4.00%（占月定投）"},
			Note:  "仅 Kimi 提出；未提及：DeepSeek",
		},
	}
	if diff := cmp.Diff(want, s.Themes); diff != "" {
		t.Errorf("themes mismatch (-want +got):\n%s", diff)
	}
}

func TestRunLogsFromContext(t *testing.T) {
	t.Run("context logger", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithRunID(logging.WithLogger(context.Background(), tl.Logger), "run-7")

		_, err := newAggregator(t).Run(ctx, daily.Input{Date: day, Documents: documents()})
		require.NoError(t, err)
		assert.True(t, tl.Contains(`"run_id":"run-7"`))
		assert.True(t, tl.Contains(`"source":"qwen3-max"`))
		assert.True(t, tl.Contains(`"section":"items"`))
	})

	t.Run("aggregator logger without context logger", func(t *testing.T) {
		tl := logging.NewTestLogger(t)

		_, err := newAggregator(t, daily.WithLogger(tl.Logger)).Run(context.Background(), daily.Input{Date: day, Documents: documents()})
		require.NoError(t, err)
		assert.True(t, tl.Contains(`"source":"kimi-k2"`))
		assert.False(t, tl.Contains(`"run_id"`))
	})
}
