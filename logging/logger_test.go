package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_SetsDefault(t *testing.T) {
	InitLogger("info", "text")

	require.NotNil(t, Logger)
	assert.Equal(t, Logger, slog.Default())
}

func TestInitLogger_Levels(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		InitLogger(tt.level, "text")
		assert.True(t, Logger.Enabled(t.Context(), tt.enabled), "level %q should enable %v", tt.level, tt.enabled)
	}
}

func TestInitLogger_JSONFormat(t *testing.T) {
	InitLogger("info", "json")
	require.NotNil(t, Logger)
}

func TestWithError(t *testing.T) {
	InitLogger("info", "text")
	logger := WithError(assert.AnError)
	require.NotNil(t, logger)
}

func TestWithError_BeforeInit(t *testing.T) {
	old := Logger
	Logger = nil
	t.Cleanup(func() { Logger = old })

	logger := WithError(assert.AnError)
	require.NotNil(t, logger)
}
