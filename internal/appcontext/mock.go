package appcontext

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/quorum"
	"github.com/agentstation/quorum/internal/cmd/alerts"
	"github.com/agentstation/quorum/internal/history"
	"github.com/agentstation/quorum/internal/inputs"
	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/errors"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	EngineFunc  func(...quorum.Option) (quorum.Engine, error)
	FinderFunc  func() (*inputs.Finder, error)
	HistoryFunc func() (*history.Store, error)
	LoggerFunc  func() *zerolog.Logger
	AlertsFunc  func() alerts.Writer
	FormatFunc  func() string
	NowFunc     func() time.Time
	WindowFunc  func() int
	VersionFunc func() string
}

// Engine returns an engine using the mock function or a default engine.
func (m *Mock) Engine(opts ...quorum.Option) (quorum.Engine, error) {
	if m.EngineFunc != nil {
		return m.EngineFunc(opts...)
	}
	return quorum.New(append([]quorum.Option{quorum.WithLogger(m.Logger())}, opts...)...)
}

// Finder returns a finder using the mock function or an error.
func (m *Mock) Finder() (*inputs.Finder, error) {
	if m.FinderFunc != nil {
		return m.FinderFunc()
	}
	return nil, &errors.ConfigError{Component: "inputs", Message: "no finder configured"}
}

// History returns a ledger using the mock function or a ConfigError.
func (m *Mock) History() (*history.Store, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc()
	}
	return nil, &errors.ConfigError{Component: "history", Message: "history_db is not configured"}
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// Alerts returns a writer using the mock function or a discarding writer.
func (m *Mock) Alerts() alerts.Writer {
	if m.AlertsFunc != nil {
		return m.AlertsFunc()
	}
	return alerts.DiscardWriter
}

// OutputFormat returns the format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.FormatFunc != nil {
		return m.FormatFunc()
	}
	return "table"
}

// WindowDays returns the window using the mock function or the default.
func (m *Mock) WindowDays() int {
	if m.WindowFunc != nil {
		return m.WindowFunc()
	}
	return constants.DefaultWindowDays
}

// Now returns the time using the mock function or the current time.
func (m *Mock) Now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc()
	}
	return time.Now()
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
