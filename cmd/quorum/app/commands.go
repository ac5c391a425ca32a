package app

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/quorum/cmd/quorum/cmd/daily"
	"github.com/agentstation/quorum/cmd/quorum/cmd/history"
	"github.com/agentstation/quorum/cmd/quorum/cmd/validate"
	"github.com/agentstation/quorum/cmd/quorum/cmd/weekly"
)

// registerCommands adds all subcommands to the root command.
func (a *App) registerCommands(root *cobra.Command) {
	root.AddCommand(
		a.CreateDailyCommand(),
		a.CreateWeeklyCommand(),
		a.CreateValidateCommand(),
		a.CreateHistoryCommand(),
		a.CreateVersionCommand(),
	)
}

// CreateDailyCommand creates the daily command with app dependencies.
func (a *App) CreateDailyCommand() *cobra.Command {
	return daily.NewCommand(a)
}

// CreateWeeklyCommand creates the weekly command with app dependencies.
func (a *App) CreateWeeklyCommand() *cobra.Command {
	return weekly.NewCommand(a)
}

// CreateValidateCommand creates the validate command with app dependencies.
func (a *App) CreateValidateCommand() *cobra.Command {
	return validate.NewCommand(a)
}

// CreateHistoryCommand creates the history command with app dependencies.
func (a *App) CreateHistoryCommand() *cobra.Command {
	return history.NewCommand(a)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("quorum %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
				cmd.Printf("  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
