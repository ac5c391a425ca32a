// Package app provides the application context and dependency management
// for the quorum CLI. It centralizes configuration, logging and the lazily
// opened collaborators (profile, input discovery, run ledger).
package app

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agentstation/quorum"
	"github.com/agentstation/quorum/internal/appcontext"
	"github.com/agentstation/quorum/internal/cmd/alerts"
	"github.com/agentstation/quorum/internal/history"
	"github.com/agentstation/quorum/internal/inputs"
	"github.com/agentstation/quorum/pkg/errors"
	"github.com/agentstation/quorum/pkg/profile"
)

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// App represents the quorum application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Status output
	stdout io.Writer

	// Time source
	clock func() time.Time

	// Lazily loaded collaborators
	mu      sync.Mutex
	profile *profile.Profile
	history *history.Store
}

// New creates a new App instance with the given version information.
// The configuration file named by QUORUM_CONFIG is read here; --config is
// applied once flags are parsed.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		stdout:  os.Stdout,
		clock:   time.Now,
	}

	config, err := LoadConfig(os.Getenv(envPrefix + "_CONFIG"))
	if err != nil {
		return nil, &errors.ConfigError{Component: "config", Message: "failed to load", Err: err}
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// WindowDays returns the default weekly window length.
func (a *App) WindowDays() int {
	return a.config.WindowDays
}

// Now returns the current time.
func (a *App) Now() time.Time {
	return a.clock()
}

// Alerts returns a writer for status lines on stdout, colored on terminals.
func (a *App) Alerts() alerts.Writer {
	color := !a.config.NoColor && os.Getenv("NO_COLOR") == ""
	if f, ok := a.stdout.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		color = false
	}
	return alerts.NewWriterTo(a.stdout, color)
}

// Stdout returns the writer for command output.
func (a *App) Stdout() io.Writer {
	return a.stdout
}

// loadProfile returns the configured profile, loading it once.
func (a *App) loadProfile() (*profile.Profile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.profile != nil {
		return a.profile, nil
	}
	if a.config.Profile == "" {
		a.profile = profile.Default()
		return a.profile, nil
	}
	p, err := profile.Load(a.config.Profile)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("path", a.config.Profile).Msg("Profile loaded")
	a.profile = p
	return p, nil
}

// Engine creates an engine with the configured profile, logger and window.
func (a *App) Engine(opts ...quorum.Option) (quorum.Engine, error) {
	p, err := a.loadProfile()
	if err != nil {
		return nil, err
	}
	base := []quorum.Option{
		quorum.WithProfile(p),
		quorum.WithLogger(a.logger),
		quorum.WithWindowDays(a.config.WindowDays),
		quorum.WithClock(a.clock),
	}
	engine, err := quorum.New(append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	if a.config.HistoryDB != "" {
		store, err := a.History()
		if err != nil {
			return nil, err
		}
		engine.OnReportWritten(store.Hook(context.Background()))
	}
	return engine, nil
}

// Finder returns input discovery for the configured directories.
func (a *App) Finder() (*inputs.Finder, error) {
	return inputs.New(inputs.Config{
		ReportsDir:    a.config.ReportsDir,
		DailyDir:      a.config.DailyDir,
		WeeklyDir:     a.config.WeeklyDir,
		SourcePattern: a.config.SourcePattern,
		PlanFile:      a.config.PlanFile,
		DailyPattern:  a.config.DailyPattern,
	}, a.logger)
}

// History returns the run ledger, opening it once.
func (a *App) History() (*history.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.history != nil {
		return a.history, nil
	}
	if a.config.HistoryDB == "" {
		return nil, &errors.ConfigError{Component: "history", Message: "history_db is not configured"}
	}
	store, err := history.Open(a.config.HistoryDB, a.logger)
	if err != nil {
		return nil, err
	}
	a.history = store
	return store, nil
}

// Shutdown releases the run ledger.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.history == nil {
		return nil
	}
	err := a.history.Close()
	a.history = nil
	return err
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithStdout sets the writer for command output.
func WithStdout(w io.Writer) Option {
	return func(a *App) error {
		a.stdout = w
		return nil
	}
}

// WithClock sets the time source.
func WithClock(clock func() time.Time) Option {
	return func(a *App) error {
		a.clock = clock
		return nil
	}
}
