package quorum

import (
	"sync"
	"time"
)

// Kind names the report a run produced.
type Kind string

const (
	// KindDaily is a reconciled daily summary.
	KindDaily Kind = "daily"
	// KindWeekly is a weekly signal summary.
	KindWeekly Kind = "weekly"
)

// ReportEvent describes a report that was written to disk.
type ReportEvent struct {
	// RunID identifies the run in logs and in the run ledger.
	RunID string
	Kind  Kind
	Start time.Time
	// End equals Start for daily reports.
	End     time.Time
	Path    string
	Content []byte
	// Sources is the number of source columns in the report.
	Sources int
	// Rows is the number of category, item and theme rows.
	Rows      int
	CreatedAt time.Time
}

// ReportWrittenHook is called after a report is written.
type ReportWrittenHook func(event ReportEvent)

// hooks manages event callbacks for written reports
type hooks struct {
	mu              sync.RWMutex
	onReportWritten []ReportWrittenHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnReportWritten registers a callback for written reports
func (h *hooks) OnReportWritten(fn ReportWrittenHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReportWritten = append(h.onReportWritten, fn)
}

// triggerReportWritten calls every registered hook in registration order
func (h *hooks) triggerReportWritten(event ReportEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onReportWritten {
		fn(event)
	}
}
