package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfig verifies defaults are set without any source.
func TestLoadConfig(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "reports", config.ReportsDir)
	assert.Equal(t, "daily", config.DailyDir)
	assert.Equal(t, "weekly", config.WeeklyDir)
	assert.Equal(t, 7, config.WindowDays)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Equal(t, "stderr", config.LogOutput)
	assert.Empty(t, config.LogLevel)
}

// TestConfig_EnvironmentVariables verifies QUORUM_* loading.
func TestConfig_EnvironmentVariables(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("QUORUM_REPORTS_DIR", "/data/reports")
	t.Setenv("QUORUM_HISTORY_DB", "runs.db")
	t.Setenv("QUORUM_WINDOW_DAYS", "5")
	t.Setenv("QUORUM_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/data/reports", config.ReportsDir)
	assert.Equal(t, "runs.db", config.HistoryDB)
	assert.Equal(t, 5, config.WindowDays)
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "debug", config.EnvLogLevel)
	assert.Empty(t, config.LogLevel, "LOG_LEVEL must not act as the --log-level flag")
}

// TestConfig_File verifies an explicit config file.
func TestConfig_File(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "quorum.yaml")
	content := "reports_dir: in\ndaily_dir: out/daily\nwindow_days: 0\nsource_pattern: \"{date}-{label}.md\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, path, config.ConfigFile)
	assert.Equal(t, "in", config.ReportsDir)
	assert.Equal(t, "out/daily", config.DailyDir)
	assert.Equal(t, "weekly", config.WeeklyDir)
	assert.Equal(t, "{date}-{label}.md", config.SourcePattern)
	assert.Equal(t, 7, config.WindowDays, "window below one falls back to the default")
}

// TestConfig_MissingFile verifies an explicit file must exist.
func TestConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// TestConfig_UpdateFromFlags verifies flags take precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", EnvLogLevel: "warn"}
	config.UpdateFromFlags(true, false, true, "", "trace")

	assert.True(t, config.Verbose)
	assert.False(t, config.Quiet)
	assert.True(t, config.NoColor)
	assert.Equal(t, "yaml", config.Format, "empty flag keeps the configured format")
	assert.Equal(t, "trace", config.LogLevel)

	config.UpdateFromFlags(false, false, false, "json", "")
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "trace", config.LogLevel)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
