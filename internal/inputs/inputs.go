// Package inputs discovers the files a run reads: the source reports and plan
// of a day, and the daily summaries a weekly window aggregates.
//
// Layout (patterns are configurable):
//
//	<reports_dir>/<date>/<date>_<label>_投资建议.md
//	<reports_dir>/<date>/投资策略.json
//	<daily_dir>/<date>_最终投资总结.md
//	<weekly_dir>/<start>_to_<end>_每周投资总结.md
package inputs

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/quorum"
	"github.com/agentstation/quorum/internal/matcher"
	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/errors"
	"github.com/agentstation/quorum/pkg/logging"
	"github.com/agentstation/quorum/pkg/plan"
	"github.com/agentstation/quorum/pkg/weekly"
)

// Default filename patterns.
const (
	DefaultSourcePattern = "{date}_{label}_投资建议.md"
	DefaultPlanFile      = "投资策略.json"
	DefaultDailyPattern  = "{date}_最终投资总结.md"
)

// Config locates the input and output directories.
type Config struct {
	ReportsDir string
	DailyDir   string
	WeeklyDir  string

	// SourcePattern must capture a label; a captured date must equal the
	// day being read.
	SourcePattern string
	PlanFile      string
	// DailyPattern must capture a date.
	DailyPattern string
}

// Finder resolves dates to input files.
type Finder struct {
	cfg    Config
	source matcher.Matcher
	daily  matcher.Matcher
	logger *zerolog.Logger
}

// Compile-time interface check to ensure proper implementation.
var _ quorum.DayLoader = (*Finder)(nil)

// New compiles the configured patterns. Empty patterns take the defaults.
func New(cfg Config, logger *zerolog.Logger) (*Finder, error) {
	if cfg.SourcePattern == "" {
		cfg.SourcePattern = DefaultSourcePattern
	}
	if cfg.PlanFile == "" {
		cfg.PlanFile = DefaultPlanFile
	}
	if cfg.DailyPattern == "" {
		cfg.DailyPattern = DefaultDailyPattern
	}

	source, err := compile("source_pattern", cfg.SourcePattern, matcher.FieldLabel)
	if err != nil {
		return nil, err
	}
	daily, err := compile("daily_pattern", cfg.DailyPattern, matcher.FieldDate)
	if err != nil {
		return nil, err
	}
	return &Finder{cfg: cfg, source: source, daily: daily, logger: logging.OrNop(logger)}, nil
}

func compile(field, pattern, required string) (matcher.Matcher, error) {
	m, err := matcher.New(matcher.Auto, pattern)
	if err != nil {
		return nil, errors.NewValidationError(field, pattern, err.Error())
	}
	if m.Type() == matcher.Glob || !strings.Contains(pattern, required) {
		return nil, errors.NewValidationError(field, pattern, "must capture "+required)
	}
	return m, nil
}

// dayDir returns the directory of a day's source reports.
func (f *Finder) dayDir(date time.Time) string {
	return filepath.Join(f.cfg.ReportsDir, date.Format(constants.DateLayout))
}

// Documents reads the source reports of date, ordered by filename. A day
// without any source report is a NotFoundError.
func (f *Finder) Documents(date time.Time) ([]quorum.Document, error) {
	day := date.Format(constants.DateLayout)
	dir := f.dayDir(date)
	entries, err := os.ReadDir(dir)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.NewNotFoundError("source reports", dir)
	}
	if err != nil {
		return nil, errors.WrapIO("read", dir, err)
	}

	var docs []quorum.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fields, ok := f.source.Fields(entry.Name())
		if !ok {
			continue
		}
		if d, has := fields[matcher.FieldDate]; has && d != day {
			f.logger.Debug().Str("file", entry.Name()).Msg("Skipping report of another day")
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapIO("read", path, err)
		}
		docs = append(docs, quorum.Document{Label: fields[matcher.FieldLabel], Text: string(data)})
	}
	if len(docs) == 0 {
		return nil, errors.NewNotFoundError("source reports", dir)
	}
	f.logger.Debug().Str("date", day).Int("documents", len(docs)).Msg("Source reports found")
	return docs, nil
}

// Plan loads the plan of date. A day without a plan file returns nil, which
// skips the validation gate.
func (f *Finder) Plan(date time.Time) ([]plan.Item, error) {
	path := filepath.Join(f.dayDir(date), f.cfg.PlanFile)
	if _, err := os.Stat(path); stderrors.Is(err, fs.ErrNotExist) {
		f.logger.Warn().Str("path", path).Msg("No plan file, validation gate skipped")
		return nil, nil
	}
	return plan.Load(path)
}

// DailyInput reads the documents and plan of date.
func (f *Finder) DailyInput(date time.Time) (quorum.DailyInput, error) {
	docs, err := f.Documents(date)
	if err != nil {
		return quorum.DailyInput{}, err
	}
	items, err := f.Plan(date)
	if err != nil {
		return quorum.DailyInput{}, err
	}
	return quorum.DailyInput{Date: date, Documents: docs, Plan: items}, nil
}

// DailyPath returns the output path of the daily summary of date.
func (f *Finder) DailyPath(date time.Time) string {
	name := matcher.Expand(f.cfg.DailyPattern, map[string]string{
		matcher.FieldDate: date.Format(constants.DateLayout),
	})
	return filepath.Join(f.cfg.DailyDir, name)
}

// WeeklyPath returns the output path of the weekly summary of a window.
func (f *Finder) WeeklyPath(start, end time.Time) string {
	return filepath.Join(f.cfg.WeeklyDir, weekly.FileName(start, end))
}

// WeeklyDir returns the directory of weekly summaries.
func (f *Finder) WeeklyDir() string {
	return f.cfg.WeeklyDir
}

// DailyDates returns the dates of every daily summary, ascending. A missing
// directory has no dates.
func (f *Finder) DailyDates() ([]time.Time, error) {
	files, err := f.dailyFiles()
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(files))
	for _, df := range files {
		dates = append(dates, df.date)
	}
	return dates, nil
}

// Days implements quorum.DayLoader.
func (f *Finder) Days(ctx context.Context, start, end time.Time) ([]quorum.Day, error) {
	files, err := f.dailyFiles()
	if err != nil {
		return nil, err
	}
	var days []quorum.Day
	for _, df := range files {
		if df.date.Before(start) || df.date.After(end) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(df.path)
		if err != nil {
			return nil, errors.WrapIO("read", df.path, err)
		}
		days = append(days, quorum.Day{Date: df.date, Text: string(data)})
	}
	return days, nil
}

type dailyFile struct {
	date time.Time
	path string
}

func (f *Finder) dailyFiles() ([]dailyFile, error) {
	entries, err := os.ReadDir(f.cfg.DailyDir)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", f.cfg.DailyDir, err)
	}
	var out []dailyFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fields, ok := f.daily.Fields(entry.Name())
		if !ok {
			continue
		}
		date, err := time.Parse(constants.DateLayout, fields[matcher.FieldDate])
		if err != nil {
			f.logger.Debug().Str("file", entry.Name()).Msg("Skipping daily summary with invalid date")
			continue
		}
		out = append(out, dailyFile{date: date, path: filepath.Join(f.cfg.DailyDir, entry.Name())})
	}
	slices.SortStableFunc(out, func(a, b dailyFile) int { return a.date.Compare(b.date) })
	return out, nil
}
