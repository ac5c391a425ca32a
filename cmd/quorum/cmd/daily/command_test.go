package daily

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/quorum/internal/appcontext"
	"github.com/agentstation/quorum/internal/cmd/alerts"
	"github.com/agentstation/quorum/internal/cmd/cmdutil"
	"github.com/agentstation/quorum/internal/inputs"
	"github.com/agentstation/quorum/pkg/errors"
)

const report = `## 定投计划逐项建议
| 标的 | 建议% | 建议 |
|---|---|---|
| 纳指100 | 5 | 增持 |
`

func newMock(t *testing.T, withPlan bool) (*appcontext.Mock, *[]*alerts.Alert, string) {
	t.Helper()
	root := t.TempDir()
	day := filepath.Join(root, "reports", "2026-01-05")
	require.NoError(t, os.MkdirAll(day, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(day, "2026-01-05_kimi-k2_投资建议.md"), []byte(report), 0o644))
	if withPlan {
		plan := `{"investment_plan":[{"fund_name":"纳指100"},{"fund_name":"沪深300"}]}`
		require.NoError(t, os.WriteFile(filepath.Join(day, "投资策略.json"), []byte(plan), 0o644))
	}

	var got []*alerts.Alert
	mock := &appcontext.Mock{
		FinderFunc: func() (*inputs.Finder, error) {
			return inputs.New(inputs.Config{
				ReportsDir: filepath.Join(root, "reports"),
				DailyDir:   filepath.Join(root, "daily"),
				WeeklyDir:  filepath.Join(root, "weekly"),
			}, nil)
		},
		AlertsFunc: func() alerts.Writer {
			return alerts.WriterFunc(func(a *alerts.Alert) error {
				got = append(got, a)
				return nil
			})
		},
		NowFunc: func() time.Time { return time.Date(2026, 1, 5, 9, 0, 0, 0, time.Local) },
	}
	return mock, &got, root
}

func TestRun(t *testing.T) {
	t.Run("writes summary", func(t *testing.T) {
		mock, got, root := newMock(t, false)
		err := Run(context.Background(), mock, &Flags{Day: &cmdutil.DayFlags{}})
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(root, "daily", "2026-01-05_最终投资总结.md"))
		require.NotEmpty(t, *got)
		assert.Equal(t, alerts.LevelSuccess, (*got)[len(*got)-1].Level)
	})

	t.Run("gate stops the run", func(t *testing.T) {
		mock, got, root := newMock(t, true)
		err := Run(context.Background(), mock, &Flags{Day: &cmdutil.DayFlags{Date: "2026-01-05"}})
		require.True(t, errors.IsGateError(err))
		require.Len(t, *got, 1)
		assert.Equal(t, alerts.LevelError, (*got)[0].Level)
		assert.Equal(t, []string{"沪深300"}, (*got)[0].Details)
		assert.NoFileExists(t, filepath.Join(root, "daily", "2026-01-05_最终投资总结.md"))
	})

	t.Run("validate only", func(t *testing.T) {
		mock, got, root := newMock(t, false)
		out := filepath.Join(root, "custom.md")
		err := Run(context.Background(), mock, &Flags{Day: &cmdutil.DayFlags{}, ValidateOnly: true, Out: out})
		require.NoError(t, err)
		assert.NoFileExists(t, out)
		assert.Contains(t, (*got)[len(*got)-1].Message, "Validation gate passed")
	})

	t.Run("bad date", func(t *testing.T) {
		mock, _, _ := newMock(t, false)
		err := Run(context.Background(), mock, &Flags{Day: &cmdutil.DayFlags{Date: "05/01/2026"}})
		var verr *errors.ValidationError
		require.ErrorAs(t, err, &verr)
	})
}
