package quorum

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/quorum/pkg/errors"
	"github.com/agentstation/quorum/pkg/logging"
	"github.com/agentstation/quorum/pkg/plan"
	"github.com/agentstation/quorum/pkg/weekly"
)

// Reports runs the daily and weekly aggregators.
type Reports interface {
	// Daily reconciles one day and writes the summary to outPath. An empty
	// outPath renders without writing. With WithValidateOnly the run stops
	// after the validation gate.
	Daily(ctx context.Context, in DailyInput, outPath string) (*Result, error)

	// Validate runs the validation gate alone.
	Validate(ctx context.Context, in DailyInput) ([]plan.Findings, error)

	// Weekly derives the signals of a window and writes them to outPath.
	Weekly(ctx context.Context, in WeeklyInput, outPath string) (*Result, error)

	// Rewrite regenerates every weekly report found in dir.
	Rewrite(ctx context.Context, dir string, loader DayLoader) ([]Result, error)
}

// DayLoader loads the daily reports of a window.
type DayLoader interface {
	Days(ctx context.Context, start, end time.Time) ([]Day, error)
}

// Daily implements Reports.
func (c *client) Daily(ctx context.Context, in DailyInput, outPath string) (*Result, error) {
	log := c.logger.With().Str("kind", string(KindDaily)).Time("date", in.Date).Logger()
	ctx = logging.WithRunID(logging.WithLogger(ctx, &log), uuid.NewString())
	log = *logging.FromContext(ctx)

	if c.options.validateOnly {
		findings, err := c.daily.Validate(ctx, in)
		res := &Result{RunID: logging.RunID(ctx), Kind: KindDaily, Findings: findings}
		if err != nil {
			return res, err
		}
		log.Info().Int("sources", len(findings)).Msg("Validation gate passed")
		return res, nil
	}

	s, err := c.daily.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	content, err := c.daily.Render(s)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: logging.RunID(ctx), Kind: KindDaily, Content: content, Findings: s.Findings, Daily: s}
	rows := len(s.Categories.Rows) + len(s.Items.Rows) + len(s.Themes)
	if err := c.write(res, outPath, in.Date, in.Date, len(s.Sources), rows); err != nil {
		return nil, err
	}
	log.Info().
		Int("sources", len(s.Sources)).
		Int("rows", rows).
		Str("path", res.Path).
		Msg("Daily summary generated")
	return res, nil
}

// Validate implements Reports.
func (c *client) Validate(ctx context.Context, in DailyInput) ([]plan.Findings, error) {
	return c.daily.Validate(ctx, in)
}

// Weekly implements Reports.
func (c *client) Weekly(ctx context.Context, in WeeklyInput, outPath string) (*Result, error) {
	in = c.window(in)
	log := c.logger.With().
		Str("kind", string(KindWeekly)).
		Time("start", in.Start).
		Time("end", in.End).
		Logger()
	ctx = logging.WithRunID(logging.WithLogger(ctx, &log), uuid.NewString())
	log = *logging.FromContext(ctx)

	s, err := c.weekly.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	content, err := c.weekly.Render(s)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: logging.RunID(ctx), Kind: KindWeekly, Content: content, Weekly: s}
	rows := len(s.Categories) + len(s.Items) + len(s.Themes)
	if err := c.write(res, outPath, s.Start, s.End, len(s.ThemeSources), rows); err != nil {
		return nil, err
	}
	log.Info().
		Int("days", len(s.Dates)).
		Int("missing", len(s.Missing)).
		Int("rows", rows).
		Str("path", res.Path).
		Msg("Weekly summary generated")
	return res, nil
}

// window fills in the default window of a weekly input.
func (c *client) window(in WeeklyInput) WeeklyInput {
	if !in.Start.IsZero() {
		return in
	}
	if !in.End.IsZero() {
		in.Start, in.End = weekly.Window(in.End, c.options.windowDays)
		return in
	}
	dates := make([]time.Time, 0, len(in.Days))
	for _, d := range in.Days {
		dates = append(dates, d.Date)
	}
	y, m, d := c.options.clock().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	in.Start, in.End = weekly.LatestWindow(dates, c.options.windowDays, today)
	return in
}

// Rewrite implements Reports. Windows without any daily report are skipped.
func (c *client) Rewrite(ctx context.Context, dir string, loader DayLoader) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("read", dir, err)
	}

	var results []Result
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		start, end, ok := weekly.ParseFileName(entry.Name())
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		days, err := loader.Days(ctx, start, end)
		if err != nil {
			return results, err
		}
		res, err := c.Weekly(ctx, WeeklyInput{Start: start, End: end, Days: days}, filepath.Join(dir, entry.Name()))
		if stderrors.Is(err, errors.ErrNoInputs) {
			c.logger.Warn().Str("file", entry.Name()).Msg("No daily reports in window, skipping")
			continue
		}
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

func (c *client) write(res *Result, path string, start, end time.Time, sources, rows int) error {
	if path == "" {
		return nil
	}
	content := []byte(res.Content)
	if err := writeReport(path, content); err != nil {
		return err
	}
	res.Path = path
	c.hooks.triggerReportWritten(ReportEvent{
		RunID:     res.RunID,
		Kind:      res.Kind,
		Start:     start,
		End:       end,
		Path:      path,
		Content:   content,
		Sources:   sources,
		Rows:      rows,
		CreatedAt: c.options.clock(),
	})
	return nil
}
