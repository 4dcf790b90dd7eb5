package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "INFO", expected: slog.LevelInfo},
		{input: "warn", expected: slog.LevelWarn},
		{input: "Warning", expected: slog.LevelWarn},
		{input: " error ", expected: slog.LevelError},
		{input: "", expected: slog.LevelInfo},
		{input: "xyzzy", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestInitLogger_JSONCarriesService(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Level: "info", Format: "json", Service: "fraudscored", Output: &buf})
	require.NotNil(t, logger)

	logger.Info("prediction served", "label", "Fraud")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "prediction served", entry["msg"])
	assert.Equal(t, "fraudscored", entry["service"])
	assert.Equal(t, "Fraud", entry["label"])
}

func TestInitLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Level: "warn", Format: "text", Output: &buf})

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestInitLogger_SetsDefault(t *testing.T) {
	var buf bytes.Buffer
	InitLogger(LogConfig{Level: "debug", Format: "json", Output: &buf})

	slog.Debug("through default")
	assert.Contains(t, buf.String(), "through default")
}
