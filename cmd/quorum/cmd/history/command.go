// Package history provides the run ledger listing command.
package history

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/quorum/internal/appcontext"
	"github.com/agentstation/quorum/internal/cmd/output"
	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/errors"
)

// NewCommand creates the history command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "history",
		GroupID: "management",
		Short:   "List recorded report runs",
		Long: `History lists the most recent report runs from the run ledger, newest
first. Each run records the window, the content digest and whether the
content changed since the previous run for the same file.

Requires history_db to be configured.`,
		Example: `  quorum history                            # Latest runs
  quorum history --limit 5 -o yaml          # Five runs as YAML`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 {
				return errors.NewValidationError("limit", limit, "must be at least 1")
			}
			store, err := app.History()
			if err != nil {
				return err
			}
			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			if format == "" {
				format = output.DetectFormat("")
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), output.Runs(runs))
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", constants.DefaultHistoryLimit, "maximum number of runs")
	return cmd
}
