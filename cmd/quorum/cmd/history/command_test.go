package history

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/quorum"
	"github.com/agentstation/quorum/internal/appcontext"
	"github.com/agentstation/quorum/internal/history"
	"github.com/agentstation/quorum/pkg/errors"
)

func TestHistoryCommand(t *testing.T) {
	store, err := history.Open(history.MemoryPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for _, content := range []string{"v1", "v2"} {
		_, err := store.Record(ctx, quorum.ReportEvent{
			Kind:    quorum.KindDaily,
			Start:   day,
			End:     day,
			Path:    "daily/2026-01-05_最终投资总结.md",
			Content: []byte(content),
			Sources: 2,
			Rows:    3,
		})
		require.NoError(t, err)
	}

	app := &appcontext.Mock{
		HistoryFunc: func() (*history.Store, error) { return store, nil },
		FormatFunc:  func() string { return "json" },
	}

	t.Run("latest run first", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewCommand(app)
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--limit", "1"})
		require.NoError(t, cmd.Execute())

		var runs []history.Run
		require.NoError(t, json.Unmarshal(out.Bytes(), &runs))
		require.Len(t, runs, 1)
		assert.Equal(t, "daily", runs[0].Kind)
		assert.True(t, runs[0].Changed)
		assert.Equal(t, 2, runs[0].Sources)
	})

	t.Run("invalid limit", func(t *testing.T) {
		cmd := NewCommand(app)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--limit", "0"})
		err := cmd.Execute()
		var verr *errors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "limit", verr.Field)
	})

	t.Run("ledger not configured", func(t *testing.T) {
		cmd := NewCommand(&appcontext.Mock{})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{})
		var cfgErr *errors.ConfigError
		require.ErrorAs(t, cmd.Execute(), &cfgErr)
	})
}
