package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/quorum/pkg/constants"
)

// envPrefix prefixes every environment variable the config reads, e.g.
// QUORUM_REPORTS_DIR.
const envPrefix = "QUORUM"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Directories
	ReportsDir string
	DailyDir   string
	WeeklyDir  string

	// Filename patterns (empty means the default layout)
	SourcePattern string
	PlanFile      string
	DailyPattern  string

	// Engine configuration
	Profile    string
	HistoryDB  string
	WindowDays int

	// Logging configuration. LogLevel comes from --log-level only;
	// EnvLogLevel from log_level or LOG_LEVEL.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (QUORUM_*)
// 3. .env files
// 4. Config file (--config, ~/.quorum.yaml or ./.quorum.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("reports_dir", "reports")
	v.SetDefault("daily_dir", "daily")
	v.SetDefault("weekly_dir", "weekly")
	v.SetDefault("window_days", constants.DefaultWindowDays)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		// Search for config in standard locations
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".quorum")

		// Read config file (ignore error if not found)
		_ = v.ReadInConfig()
	}

	config := &Config{
		// Global flags (may be overridden by cobra flags later)
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color"),
		Format:  v.GetString("format"),

		// Config file
		ConfigFile: v.ConfigFileUsed(),

		// Directories
		ReportsDir: v.GetString("reports_dir"),
		DailyDir:   v.GetString("daily_dir"),
		WeeklyDir:  v.GetString("weekly_dir"),

		// Filename patterns
		SourcePattern: v.GetString("source_pattern"),
		PlanFile:      v.GetString("plan_file"),
		DailyPattern:  v.GetString("daily_pattern"),

		// Engine configuration
		Profile:    v.GetString("profile"),
		HistoryDB:  v.GetString("history_db"),
		WindowDays: v.GetInt("window_days"),

		// Logging configuration
		EnvLogLevel: firstNonEmpty(v.GetString("log_level"), os.Getenv("LOG_LEVEL")),
		LogFormat:   firstNonEmpty(v.GetString("log_format"), os.Getenv("LOG_FORMAT"), "auto"),
		LogOutput:   firstNonEmpty(v.GetString("log_output"), os.Getenv("LOG_OUTPUT"), "stderr"),
	}

	if config.WindowDays < 1 {
		config.WindowDays = constants.DefaultWindowDays
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
