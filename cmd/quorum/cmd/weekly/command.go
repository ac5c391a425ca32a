// Package weekly provides the weekly signal command.
package weekly

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/quorum"
	"github.com/agentstation/quorum/internal/appcontext"
	"github.com/agentstation/quorum/internal/cmd/alerts"
	"github.com/agentstation/quorum/internal/cmd/cmdutil"
	"github.com/agentstation/quorum/pkg/constants"
)

// Flags holds the weekly command flags.
type Flags struct {
	Window          *cmdutil.WindowFlags
	RewriteExisting bool
	Out             string
}

// NewCommand creates the weekly command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "weekly",
		GroupID: "core",
		Short:   "Derive weekly signals from the daily summaries",
		Long: `Weekly reads the daily summaries of a date window and writes one report with
per-category and per-item signals (persistence, mean, strength, early/late
change) and the theme consensus per source.

Without --start/--end the window ends at the latest daily summary that is not
after today.`,
		Example: `  quorum weekly                                   # Latest window
  quorum weekly --end 2026-01-09                  # Seven days ending on a date
  quorum weekly --start 2026-01-05 --end 2026-01-09
  quorum weekly --rewrite-existing                # Regenerate every weekly report`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), app, flags)
		},
	}

	flags.Window = cmdutil.AddWindowFlags(cmd)
	cmd.Flags().BoolVar(&flags.RewriteExisting, "rewrite-existing", false, "regenerate every weekly report in the weekly directory")
	cmd.Flags().StringVar(&flags.Out, "out", "", "output path (default <weekly_dir>/<start>_to_<end>_每周投资总结.md)")
	cmd.MarkFlagsMutuallyExclusive("rewrite-existing", "out")

	return cmd
}

// Run executes the weekly command.
func Run(ctx context.Context, app appcontext.Interface, flags *Flags) error {
	finder, err := app.Finder()
	if err != nil {
		return err
	}
	engine, err := app.Engine()
	if err != nil {
		return err
	}
	w := app.Alerts()

	if flags.RewriteExisting {
		results, err := engine.Rewrite(ctx, finder.WeeklyDir(), finder)
		if err != nil {
			return err
		}
		for _, res := range results {
			if err := w.WriteAlert(alerts.NewInfo("Rewrote " + res.Path)); err != nil {
				return err
			}
		}
		return w.WriteAlert(alerts.NewSuccess(fmt.Sprintf("%d weekly report(s) regenerated", len(results))))
	}

	dates, err := finder.DailyDates()
	if err != nil {
		return err
	}
	start, end, err := flags.Window.Window(dates, app.WindowDays(), app.Now())
	if err != nil {
		return err
	}
	days, err := finder.Days(ctx, start, end)
	if err != nil {
		return err
	}

	out := flags.Out
	if out == "" {
		out = finder.WeeklyPath(start, end)
	}
	res, err := engine.Weekly(ctx, quorum.WeeklyInput{Start: start, End: end, Days: days}, out)
	if err != nil {
		return err
	}

	if len(res.Weekly.Missing) > 0 {
		missing := make([]string, 0, len(res.Weekly.Missing))
		for _, d := range res.Weekly.Missing {
			missing = append(missing, d.Format(constants.DateLayout))
		}
		_ = w.WriteAlert(alerts.NewWarning(fmt.Sprintf("%d day(s) without a daily summary", len(missing))).
			WithDetails(missing...))
	}
	return w.WriteAlert(alerts.NewSuccess("Weekly report written to " + res.Path))
}
