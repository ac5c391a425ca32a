package weekly_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/quorum/pkg/weekly"
)

func TestWindow(t *testing.T) {
	start, end := weekly.Window(date("2026-01-11"), 7)
	assert.Equal(t, date("2026-01-05"), start)
	assert.Equal(t, date("2026-01-11"), end)

	start, _ = weekly.Window(date("2026-01-11"), 0)
	assert.Equal(t, date("2026-01-11"), start)
}

func TestLatestWindow(t *testing.T) {
	dates := []time.Time{date("2026-01-03"), date("2026-01-09"), date("2026-01-07")}
	start, end := weekly.LatestWindow(dates, 7, date("2026-03-01"))
	assert.Equal(t, date("2026-01-03"), start)
	assert.Equal(t, date("2026-01-09"), end)

	start, end = weekly.LatestWindow(nil, 3, date("2026-03-01"))
	assert.Equal(t, date("2026-02-27"), start)
	assert.Equal(t, date("2026-03-01"), end)
}

func TestMissingDates(t *testing.T) {
	got := weekly.MissingDates(date("2026-01-05"), date("2026-01-08"),
		[]time.Time{date("2026-01-05"), date("2026-01-07")})
	assert.Equal(t, []time.Time{date("2026-01-06"), date("2026-01-08")}, got)
}

func TestFileName(t *testing.T) {
	name := weekly.FileName(date("2026-01-05"), date("2026-01-11"))
	assert.Equal(t, "2026-01-05_to_2026-01-11_每周投资总结.md", name)

	tests := []struct {
		name  string
		ok    bool
		start string
	}{
		{"2026-01-05_to_2026-01-11_每周投资总结.md", true, "2026-01-05"},
		{"2026-01-05~2026-01-11_每周投资总结.md", true, "2026-01-05"},
		{"2026-01-05_最终投资总结.md", false, ""},
		{"2026-13-05_to_2026-01-11_每周投资总结.md", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := weekly.ParseFileName(tt.name)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, date(tt.start), start)
				assert.Equal(t, date("2026-01-11"), end)
			}
		})
	}
}
