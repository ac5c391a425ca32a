// Package daily provides the daily summary command.
package daily

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/quorum"
	"github.com/agentstation/quorum/internal/appcontext"
	"github.com/agentstation/quorum/internal/cmd/alerts"
	"github.com/agentstation/quorum/internal/cmd/cmdutil"
	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/errors"
)

// Flags holds the daily command flags.
type Flags struct {
	Day          *cmdutil.DayFlags
	Force        bool
	ValidateOnly bool
	Out          string
}

// NewCommand creates the daily command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "daily",
		GroupID: "core",
		Short:   "Reconcile one day's source reports into a summary",
		Long: `Daily reads every source report of the day, checks the item lists against
the day's plan (the validation gate) and writes one reconciled summary with a
consensus verdict per category, item and theme.

A source that misses plan items stops the run with exit code 2 unless
--force is given.`,
		Example: `  quorum daily                              # Summarize today
  quorum daily --date 2026-01-05            # Summarize a given day
  quorum daily --validate-only              # Run the validation gate only
  quorum daily --force                      # Continue past the validation gate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), app, flags)
		},
	}

	flags.Day = cmdutil.AddDayFlags(cmd)
	cmd.Flags().BoolVar(&flags.Force, "force", false, "continue past the validation gate")
	cmd.Flags().BoolVar(&flags.ValidateOnly, "validate-only", false, "stop after the validation gate")
	cmd.Flags().StringVar(&flags.Out, "out", "", "output path (default <daily_dir>/<date>_最终投资总结.md)")

	return cmd
}

// Run executes the daily command.
func Run(ctx context.Context, app appcontext.Interface, flags *Flags) error {
	day, err := flags.Day.Day(app.Now())
	if err != nil {
		return err
	}
	finder, err := app.Finder()
	if err != nil {
		return err
	}
	in, err := finder.DailyInput(day)
	if err != nil {
		return err
	}
	engine, err := app.Engine(quorum.WithForce(flags.Force), quorum.WithValidateOnly(flags.ValidateOnly))
	if err != nil {
		return err
	}

	out := flags.Out
	if out == "" {
		out = finder.DailyPath(day)
	}
	res, err := engine.Daily(ctx, in, out)

	w := app.Alerts()
	var gate *errors.GateError
	switch {
	case stderrors.As(err, &gate):
		_ = alerts.WriteAll(w, alerts.FromMissing(gate.Missing)...)
		return err
	case err != nil:
		return err
	}

	_ = alerts.WriteAll(w, alerts.FromFindings(res.Findings)...)
	if flags.ValidateOnly {
		return w.WriteAlert(alerts.NewSuccess("Validation gate passed for " + day.Format(constants.DateLayout)))
	}
	return w.WriteAlert(alerts.NewSuccess(fmt.Sprintf("Daily summary written to %s", res.Path)))
}
