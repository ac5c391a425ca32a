// Package validate provides the validation gate command.
package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/quorum/internal/appcontext"
	"github.com/agentstation/quorum/internal/cmd/alerts"
	"github.com/agentstation/quorum/internal/cmd/cmdutil"
	"github.com/agentstation/quorum/internal/cmd/output"
	"github.com/agentstation/quorum/pkg/constants"
)

// NewCommand creates the validate command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var day *cmdutil.DayFlags

	cmd := &cobra.Command{
		Use:     "validate",
		GroupID: "management",
		Short:   "Check a day's source reports against the plan",
		Long: `Validate compares the item list of every source report of the day with the
day's plan. Names that only differ in spelling are mapped back to the plan;
missing plan items fail the check with exit code 2.

With --format json or yaml the findings are printed as data.`,
		Example: `  quorum validate                           # Check today
  quorum validate --date 2026-01-05 -o json # Findings as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := day.Day(app.Now())
			if err != nil {
				return err
			}
			finder, err := app.Finder()
			if err != nil {
				return err
			}
			in, err := finder.DailyInput(date)
			if err != nil {
				return err
			}
			engine, err := app.Engine()
			if err != nil {
				return err
			}
			findings, gateErr := engine.Validate(cmd.Context(), in)

			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			if format == output.FormatJSON || format == output.FormatYAML {
				if err := output.NewFormatter(format).Format(cmd.OutOrStdout(), output.Findings(findings)); err != nil {
					return err
				}
				return gateErr
			}

			w := app.Alerts()
			if err := alerts.WriteAll(w, alerts.FromFindings(findings)...); err != nil {
				return err
			}
			if gateErr != nil {
				return gateErr
			}
			msg := fmt.Sprintf("%d source report(s) match the plan for %s", len(in.Documents), date.Format(constants.DateLayout))
			if in.Plan == nil {
				msg = "No plan for " + date.Format(constants.DateLayout) + ", nothing to check"
			}
			return w.WriteAlert(alerts.NewSuccess(msg))
		},
	}

	day = cmdutil.AddDayFlags(cmd)
	return cmd
}
