// Package quorum provides the main entry point for the quorum report engine.
// It reconciles several independently written source reports of the same day
// into one consensus summary, and turns a window of those summaries into
// weekly trend and strength signals.
//
// The engine wraps the daily and weekly aggregators with atomic report
// writes, the validation gate and event hooks for written reports.
//
// Example usage:
//
//	engine, err := quorum.New(quorum.WithLogger(&logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine.OnReportWritten(func(e quorum.ReportEvent) {
//	    log.Printf("wrote %s report %s", e.Kind, e.Path)
//	})
//
//	result, err := engine.Daily(ctx, quorum.DailyInput{
//	    Date:      day,
//	    Documents: docs,
//	    Plan:      items,
//	}, "daily/2026-01-05_最终投资总结.md")
package quorum

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/quorum/pkg/daily"
	"github.com/agentstation/quorum/pkg/logging"
	"github.com/agentstation/quorum/pkg/plan"
	"github.com/agentstation/quorum/pkg/weekly"
)

type (
	// DailyInput is one day's document set.
	DailyInput = daily.Input
	// Document is one source's raw report.
	Document = daily.Document
	// WeeklyInput is a window of daily reports. A zero Start selects the
	// default window ending at End, or at the latest day when End is zero too.
	WeeklyInput = weekly.Input
	// Day is one generated daily report.
	Day = weekly.Day
)

// Result describes one engine run.
type Result struct {
	RunID string
	Kind  Kind
	// Path is empty when nothing was written.
	Path    string
	Content string
	// Findings are the validation gate findings of a daily run.
	Findings []plan.Findings
	// Daily and Weekly hold the summary of the run's kind.
	Daily  *daily.Summary
	Weekly *weekly.Summary
}

// Engine produces daily and weekly reports and notifies hooks of writes.
type Engine interface {

	// Reports runs the daily and weekly aggregators
	Reports

	// Hooks provides access to event callback registration
	Hooks
}

// Hooks provides event callback registration.
type Hooks interface {
	// OnReportWritten registers a callback for written reports
	OnReportWritten(fn ReportWrittenHook)
}

// Compile-time interface check to ensure proper implementation.
var _ Engine = (*client)(nil)

// client is the internal implementation of the Engine interface.
type client struct {

	// options are the configured options for the engine
	options *options
	logger  *zerolog.Logger

	daily  *daily.Aggregator
	weekly *weekly.Aggregator

	// hooks for written reports
	hooks *hooks
}

// New creates a new Engine with the given options.
func New(opts ...Option) (Engine, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = logging.Default()
	}

	d, err := daily.New(o.profile, daily.WithLogger(logger), daily.WithForce(o.force))
	if err != nil {
		return nil, err
	}
	w, err := weekly.New(o.profile, weekly.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Bool("force", o.force).
		Bool("validate_only", o.validateOnly).
		Int("window_days", o.windowDays).
		Msg("Engine created")

	return &client{
		options: o,
		logger:  logger,
		daily:   d,
		weekly:  w,
		hooks:   newHooks(),
	}, nil
}

// OnReportWritten registers a callback for written reports.
func (c *client) OnReportWritten(fn ReportWrittenHook) {
	c.hooks.OnReportWritten(fn)
}
