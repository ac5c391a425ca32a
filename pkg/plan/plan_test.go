package plan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/quorum/pkg/errors"
	"github.com/agentstation/quorum/pkg/normalize"
	"github.com/agentstation/quorum/pkg/plan"
	"github.com/agentstation/quorum/pkg/profile"
)

var items = []plan.Item{
	{Name: "华安黄金ETF联接C", Code: "000217"},
	{Name: "易方达沪深300ETF联接A", Code: "110020"},
	{Name: "天弘中证光伏产业指数A", Code: "011102"},
}

func newMapper(t *testing.T) *plan.Mapper {
	t.Helper()
	norm, err := normalize.Items(profile.Default())
	require.NoError(t, err)
	return plan.NewMapper(items, norm, profile.Default().Plan.MinJaccard)
}

func TestParse(t *testing.T) {
	data := []byte(`{
  "investment_plan": [
    {"fund_name": " 华安黄金ETF联接C ", "fund_code": "000217"},
    "not an object",
    {"fund_name": "", "fund_code": ""},
    {"fund_code": "110020"}
  ]
}`)
	got, err := plan.Parse(data, "投资策略.json")
	require.NoError(t, err)
	assert.Equal(t, []plan.Item{
		{Name: "华安黄金ETF联接C", Code: "000217"},
		{Code: "110020"},
	}, got)
	assert.Equal(t, []string{"华安黄金ETF联接C"}, plan.Names(got))
}

func TestParseRejects(t *testing.T) {
	_, err := plan.Parse([]byte(`{"investment_plan": []}`), "empty.json")
	assert.True(t, errors.IsValidationError(err))

	_, err = plan.Parse([]byte(`{`), "broken.json")
	var perr *errors.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestLoad(t *testing.T) {
	_, err := plan.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.IsNotFound(err))

	path := filepath.Join(t.TempDir(), "投资策略.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"investment_plan":[{"fund_name":"A基金","fund_code":"1"}]}`), 0o600))
	got, err := plan.Load(path)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestResolve(t *testing.T) {
	m := newMapper(t)

	tests := []struct {
		name   string
		in     string
		want   string
		method plan.Method
	}{
		{"exact", "华安黄金ETF联接C", "华安黄金ETF联接C", plan.Exact},
		{"share class variant", "易方达沪深300ETF联接C", "易方达沪深300ETF联接A", plan.Variant},
		{"alias pattern", "华安黄金易ETF联接A", "华安黄金ETF联接C", plan.Variant},
		{"bigram overlap", "天弘光伏产业指数增强A", "天弘中证光伏产业指数A", plan.Similar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, method, ok := m.Resolve(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, it.Name)
			assert.Equal(t, tt.method, method)
		})
	}

	t.Run("unresolved", func(t *testing.T) {
		_, method, ok := m.Resolve("英伟达股票")
		assert.False(t, ok)
		assert.Equal(t, plan.Unresolved, method)
	})

	assert.Equal(t, 1, m.Index("易方达沪深300ETF联接A"))
	assert.Equal(t, -1, m.Index("英伟达股票"))
}

func TestGate(t *testing.T) {
	gate := plan.NewGate(newMapper(t))

	findings := gate.Check([]plan.Listing{
		{Source: "Kimi", Names: []string{"华安黄金ETF联接C", "易方达沪深300ETF联接A", "天弘中证光伏产业指数A"}},
		{Source: "DeepSeek", Names: []string{"华安黄金ETF联接C", "易方达沪深300ETF联接C", "英伟达股票", "—"}},
	})
	require.Len(t, findings, 1, "clean listings are not reported")

	f := findings[0]
	assert.Equal(t, "DeepSeek", f.Source)
	assert.Equal(t, []string{"天弘中证光伏产业指数A"}, f.Missing)
	assert.Equal(t, []string{"英伟达股票"}, f.Extra)
	assert.Equal(t, []plan.Mapping{
		{From: "易方达沪深300ETF联接C", To: "易方达沪深300ETF联接A", Method: plan.Variant},
	}, f.Mapped)

	err := plan.Err(findings, false)
	require.Error(t, err)
	assert.True(t, errors.IsGateError(err))
	var gerr *errors.GateError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, []string{"天弘中证光伏产业指数A"}, gerr.Missing["DeepSeek"])

	assert.NoError(t, plan.Err(findings, true), "force downgrades the stop")
}

func TestGateExtrasOnlyPass(t *testing.T) {
	gate := plan.NewGate(newMapper(t))
	findings := gate.Check([]plan.Listing{{
		Source: "Qwen",
		Names:  []string{"华安黄金ETF联接C", "易方达沪深300ETF联接A", "天弘中证光伏产业指数A", "英伟达股票"},
	}})
	require.Len(t, findings, 1)
	assert.Empty(t, findings[0].Missing)
	assert.NoError(t, plan.Err(findings, false))
}
