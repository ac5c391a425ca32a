package profile

import "github.com/agentstation/quorum/pkg/constants"

// DefaultName is the name of the built-in profile.
const DefaultName = "default"

func inc(k string) Rule  { return Rule{Keyword: k, Direction: Increase} }
func dec(k string) Rule  { return Rule{Keyword: k, Direction: Decrease} }
func hold(k string) Rule { return Rule{Keyword: k, Direction: Unchanged} }

func col(include ...string) ColumnRule { return ColumnRule{Include: include} }

func colExcept(include string, exclude ...string) ColumnRule {
	return ColumnRule{Include: []string{include}, Exclude: exclude}
}

// Default returns the built-in profile for Chinese allocation reports.
// Every call returns a fresh value.
func Default() *Profile {
	return &Profile{
		Name: DefaultName,
		Keywords: Keywords{
			Maintain: []string{"维持", "不变", "保持"},
			Category: []Rule{
				inc("小幅增配"), dec("小幅减配"),
				inc("大幅增配"), dec("大幅减配"),
				inc("增配"), dec("减配"),
			},
			Item: []Rule{
				dec("暂停"), dec("清仓"),
				inc("增持"), dec("减持"),
			},
			Fallback: []Rule{
				inc("增"), dec("减"), dec("暂停"), dec("停止"),
			},
			Arrows:      []Rule{inc("↑"), dec("↓"), hold("→")},
			NoNew:       []string{"本周期不新增", "不新增", "无新增", "无需新增"},
			NoNewTopics: []string{"无", "—", "-", "（无）", "(无)"},
		},
		Sections: Sections{
			Categories: Section{
				Heading:     "大板块比例调整建议",
				Title:       "1. 大板块比例调整建议（按大类横向对比）",
				WeeklyTitle: "1. 大板块比例调整建议（周内趋势）",
				KeyHeader:   "大板块",
				Derived:     Derived{Increase: "增配", Decrease: "减配", Hold: "不变"},
				Layouts: []Layout{
					{
						Name:      "suggested-percent",
						Scope:     ScopeHeading,
						Unit:      UnitPercent,
						Key:       []ColumnRule{col("大板块")},
						Value:     []ColumnRule{col("建议%")},
						Direction: []ColumnRule{colExcept("建议", "建议%")},
					},
					{
						Name:      "before-after",
						Scope:     ScopeHeading,
						Unit:      UnitPercent,
						Key:       []ColumnRule{col("大类"), col("大板块")},
						Value:     []ColumnRule{col("调整后")},
						Before:    []ColumnRule{col("当前目标"), col("当前")},
						Direction: []ColumnRule{col("建议调整")},
						Optional:  []string{RoleBefore, RoleDirection},
						Arrows:    true,
					},
					{
						Name:   "weekly-amounts",
						Scope:  ScopeDocument,
						Unit:   UnitAmount,
						Key:    []ColumnRule{col("大类"), col("大板块")},
						Value:  []ColumnRule{col("调整后", "周定投"), col("调整后")},
						Before: []ColumnRule{col("调整前", "周定投")},
					},
				},
			},
			Items: Section{
				Heading:     "定投计划逐项建议",
				Title:       "2. 定投计划逐项建议（按标的横向对比）",
				WeeklyTitle: "2. 定投计划逐项建议（周内趋势）",
				KeyHeader:   "标的",
				Derived:     Derived{Increase: "增持", Decrease: "减持", Hold: "维持"},
				Layouts: []Layout{
					{
						Name:      "suggested-value",
						Scope:     ScopeHeading,
						Unit:      UnitAuto,
						Key:       []ColumnRule{col("标的")},
						Value:     []ColumnRule{col("建议%"), col("建议金额")},
						Direction: []ColumnRule{colExcept("建议", "建议%", "建议金额")},
					},
					{
						Name:   "current-plus-delta",
						Scope:  ScopeDocument,
						Unit:   UnitPercent,
						Key:    []ColumnRule{col("标的"), col("基金")},
						Before: []ColumnRule{col("当前占比"), col("当前", "占比"), col("当前比例")},
						Delta:  []ColumnRule{col("建议调整"), col("建议", "调整")},
					},
					{
						Name:  "weekly-amounts",
						Scope: ScopeDocument,
						Unit:  UnitAuto,
						Key:   []ColumnRule{col("标的"), col("基金")},
						Value: []ColumnRule{
							col("建议金额"), col("建议周定投"), col("建议定投额"), col("建议", "定投"),
							col("定投金额"), col("定投额"), col("调整后", "周定投"), col("调整后"),
						},
						Before: []ColumnRule{col("当前周定投"), col("当前", "定投")},
						Direction: []ColumnRule{{
							Include: []string{"建议"},
							AnyOf:   []string{"增持", "减持", "不变", "维持", "暂停", "停止", "增配", "减配"},
							Exclude: []string{"建议%", "金额", "周定投", "定投", "调整"},
						}},
						Optional: []string{RoleBefore, RoleDirection},
					},
					{
						Name:      "direction-only",
						Scope:     ScopeDocument,
						Unit:      UnitAuto,
						Key:       []ColumnRule{col("标的"), col("基金")},
						Direction: []ColumnRule{colExcept("建议", "建议%", "建议金额", "建议调整")},
					},
				},
			},
			Themes: Section{
				Heading:     "新的定投方向建议",
				Title:       "3. 新的定投方向建议（按主题横向对比）",
				WeeklyTitle: "3. 新的定投方向建议（周内趋势）",
				KeyHeader:   "主题/方向",
				Derived:     Derived{Increase: "新增", Decrease: "移除", Hold: "不变"},
				Layouts: []Layout{
					{
						Name:  "proposals",
						Scope: ScopeHeading,
						Unit:  UnitPercent,
						Key: []ColumnRule{
							col("主题/方向"), col("行业/主题"), col("行业"), col("主题"), col("方向"),
						},
						Value:    []ColumnRule{col("比例")},
						Basis:    []ColumnRule{col("口径")},
						Optional: []string{RoleBasis},
					},
				},
			},
			Highlights: Highlights{
				Heading:     "定投增减要点",
				Title:       "0. 定投增减要点综述（1000字以内）",
				TopN:        3,
				MixedN:      2,
				ReasonRunes: 40,
				MaxRunes:    1000,
				Keywords:    []string{"增持", "减持", "不变", "维持", "暂停", "停止"},
			},
			Totals:         []string{"合计", "总计"},
			PercentMarkers: []string{"%", "比例"},
		},
		Normalize: Normalize{
			Theme: Rules{
				Boilerplate: []string{
					"etf", "指数", "基金", "定投", "主题", "方向", "板块", "赛道", "相关", "概念",
					"index", "fund", "theme", "related",
				},
				Punctuation: "[]{}<>《》“”\"'`()·•、，。,;；/\\|",
			},
			Item: Rules{
				Replacements: []Replacement{{From: "创新药产业", To: "创新药"}},
				Boilerplate:  []string{"人民币", "中证申万", "中证全指", "中证", "申万", "全指", "发起式", "发起"},
				Punctuation:  "[]{}<>《》“”\"'`()",
				CodeDigits:   6,
				Aliases: []Alias{
					{Pattern: `^华安黄金(?:易)?etf(?:联接[abc]?)?$`, Name: "华安黄金"},
				},
				ShareClasses: "abc",
				FeederMarker: "联接",
			},
		},
		Similarity: Similarity{
			Theme: Match{
				SubstringMin: 1,
				MinShared:    2,
				Tokens:       TokensWords,
				Accumulate:   true,
			},
			Item: Match{
				BrandGuard:   true,
				BrandMin:     2,
				BrandMax:     4,
				SubstringMin: 6,
				MinShared:    10,
				MinJaccard:   0.60,
				Tokens:       TokensBigrams,
			},
		},
		Sources: Sources{
			Aliases: []SourceAlias{
				{Prefix: "deepseek", Name: "DeepSeek"},
				{Prefix: "gemini", Name: "Gemini"},
				{Prefix: "gpt", Name: "GPT-5.2"},
				{Prefix: "grok", Name: "Grok-4"},
				{Prefix: "glm", Name: "GLM-4.7"},
				{Prefix: "kimi", Name: "Kimi"},
				{Prefix: "minimax", Name: "MiniMax-M2.1"},
				{Prefix: "traeai", Name: "TraeAI"},
				{Prefix: "qwen", Name: "Qwen"},
			},
		},
		Categories: Categories{
			Order: []string{"债券", "中股", "期货", "美股"},
			Aliases: map[string]string{
				"债券类":  "债券",
				"债基":   "债券",
				"固收":   "债券",
				"a股":   "中股",
				"中国股票": "中股",
				"中国股市": "中股",
				"商品":   "期货",
				"商品期货": "期货",
				"美国股票": "美股",
				"美股类":  "美股",
			},
		},
		Labels: Labels{
			Increase:     "增",
			Decrease:     "减",
			Unchanged:    "不变",
			Unanimous:    "一致",
			Mostly:       "基本一致",
			Disagreement: "分歧",
			BiasPrefix:   "偏",
			NoBias:       "无明显偏向",
			Insufficient: "数据不足",
			Range:        "范围",
			Title:        "投资总结",
			Agreement:    "一致性",
			Summary:      "分歧摘要",
			Note:         "异同",
			Agreed:       "一致建议",
			MostlyRatio:  0.75,
		},
		Weekly: Weekly{
			ActionThreshold: 0.20,
			TrendThreshold:  0.20,
			Hold:            "维持",
			Category:        Actions{Increase: "增配", Decrease: "减配"},
			Item:            Actions{Increase: "增持", Decrease: "减持"},
			TailHeaders:     []string{"一致性", "分歧", "异同"},
			FocusSize:       constants.FocusListSize,
		},
		Plan: Plan{MinJaccard: 0.55},
	}
}
