package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/quorum/pkg/logging"
)

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	t.Run("writes json to file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "quorum.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "debug",
			Format: "json",
			Output: path,
			Fields: map[string]any{"component": "daily"},
		})
		logger.Info().Str("date", "2026-01-05").Msg("aggregated")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"message":"aggregated"`)
		assert.Contains(t, string(content), `"component":"daily"`)
		assert.Contains(t, string(content), `"date":"2026-01-05"`)
	})

	t.Run("level filters events", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "quorum.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "warn", Format: "json", Output: path})
		logger.Info().Msg("hidden")
		logger.Warn().Msg("shown")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "hidden")
		assert.Contains(t, string(content), "shown")
	})

	t.Run("nil config falls back to defaults", func(t *testing.T) {
		assert.NotPanics(t, func() {
			logger := logging.NewLoggerFromConfig(nil)
			_ = logger
		})
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := logging.WithLogger(context.Background(), &logger)
	ctx = logging.WithRunID(ctx, "run-1")
	ctx = logging.WithSource(ctx, "Kimi")
	ctx = logging.WithSection(ctx, "items")

	logging.FromContext(ctx).Info().Msg("column not resolved")

	assert.Equal(t, "run-1", logging.RunID(ctx))
	assert.Contains(t, buf.String(), `"run_id":"run-1"`)
	assert.Contains(t, buf.String(), `"source":"Kimi"`)
	assert.Contains(t, buf.String(), `"section":"items"`)
}

func TestFromContextDefaults(t *testing.T) {
	assert.Equal(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is part of the contract
	assert.Equal(t, logging.Default(), logging.FromContext(nil))
	assert.Equal(t, "", logging.RunID(context.Background()))
}

func TestFromContextOr(t *testing.T) {
	fallback := zerolog.Nop()
	assert.Same(t, &fallback, logging.FromContextOr(context.Background(), &fallback))

	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	assert.Same(t, tl.Logger, logging.FromContextOr(ctx, &fallback))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, logging.OrNop(nil))

	tl := logging.NewTestLogger(t)
	assert.Same(t, tl.Logger, logging.OrNop(tl.Logger))

	tl.Warn().Msg("extra item dropped")
	assert.True(t, tl.Contains("extra item dropped"))
	assert.Len(t, tl.Lines(), 1)
}
