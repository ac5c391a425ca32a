// Package appcontext provides the shared application context interface
// used by all commands.
package appcontext

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/quorum"
	"github.com/agentstation/quorum/internal/cmd/alerts"
	"github.com/agentstation/quorum/internal/history"
	"github.com/agentstation/quorum/internal/inputs"
)

// Interface defines the application context interface that commands need.
// The App struct from cmd/quorum/app implements this interface.
//
// Commands should accept this interface rather than the concrete App type,
// allowing for easier testing with mock implementations.
type Interface interface {
	// Engine creates an engine from the configured profile and window with
	// extra per-command options. A configured run ledger is registered as a
	// report hook.
	Engine(opts ...quorum.Option) (quorum.Engine, error)

	// Finder returns the input discovery for the configured directories.
	Finder() (*inputs.Finder, error)

	// History returns the run ledger. It returns a ConfigError when no
	// ledger is configured.
	History() (*history.Store, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// Alerts returns the writer for user-facing status lines.
	Alerts() alerts.Writer

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// WindowDays returns the default weekly window length.
	WindowDays() int

	// Now returns the current time.
	Now() time.Time

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
