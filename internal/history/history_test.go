package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/quorum"
	"github.com/agentstation/quorum/pkg/errors"
	"github.com/agentstation/quorum/pkg/logging"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	tl := logging.NewTestLogger(t)
	s, err := Open(MemoryPath, tl.Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func event(kind quorum.Kind, path, content string) quorum.ReportEvent {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	return quorum.ReportEvent{
		Kind:      kind,
		Start:     day,
		End:       day,
		Path:      path,
		Content:   []byte(content),
		Sources:   3,
		Rows:      12,
		CreatedAt: day.Add(20 * time.Hour),
	}
}

func TestRecord(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	first, err := s.Record(ctx, event(quorum.KindDaily, "a.md", "v1"))
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Len(t, first.RunID, 36)
	assert.Equal(t, "3bfc269594ef649228e9a74bab00f042efc91d5acc6fbee31a382e80d42388fe", first.Digest)

	tests := []struct {
		name    string
		content string
		changed bool
	}{
		{"same bytes", "v1", false},
		{"new bytes", "v2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := s.Record(ctx, event(quorum.KindDaily, "a.md", tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.changed, run.Changed)
			assert.NotEqual(t, first.RunID, run.RunID)
		})
	}
}

func TestRecordKeepsRunID(t *testing.T) {
	s := openStore(t)

	ev := event(quorum.KindWeekly, "w.md", "v1")
	ev.RunID = "6f1c1f4e-8a47-4f55-9a0e-2b7b6f7f1a10"
	run, err := s.Record(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, ev.RunID, run.RunID)
}

func TestLastAndList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.Last(ctx, quorum.KindWeekly)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	for _, ev := range []quorum.ReportEvent{
		event(quorum.KindDaily, "a.md", "a"),
		event(quorum.KindWeekly, "w.md", "w"),
		event(quorum.KindDaily, "b.md", "b"),
	} {
		_, err := s.Record(ctx, ev)
		require.NoError(t, err)
	}

	last, err := s.Last(ctx, quorum.KindDaily)
	require.NoError(t, err)
	assert.Equal(t, "b.md", last.Path)

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b.md", runs[0].Path)
	assert.Equal(t, "w.md", runs[1].Path)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestHook(t *testing.T) {
	s := openStore(t)
	hook := s.Hook(context.Background())
	hook(event(quorum.KindWeekly, "w.md", "w"))

	last, err := s.Last(context.Background(), quorum.KindWeekly)
	require.NoError(t, err)
	assert.Equal(t, 3, last.Sources)
	assert.Equal(t, 12, last.Rows)
}
