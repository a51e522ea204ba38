package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONToStderrAndFile(t *testing.T) {
	var stderr bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "codesage.jsonl")

	logger, cleanup, err := setup(&stderr, Options{Level: slog.LevelInfo, Format: "json", File: file})
	require.NoError(t, err)
	logger.Info("analyzed", "language", "Python")
	logger.Debug("hidden")
	cleanup()

	var rec map[string]any
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &rec))
	assert.Equal(t, "analyzed", rec["msg"])
	assert.Equal(t, "Python", rec["language"])

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, stderr.String(), string(data))
}

func TestSetup_Text(t *testing.T) {
	var stderr bytes.Buffer
	logger, cleanup, err := setup(&stderr, Options{Level: slog.LevelDebug, Format: "text"})
	require.NoError(t, err)
	defer cleanup()

	logger.Debug("hello", "k", "v")
	assert.Contains(t, stderr.String(), "msg=hello k=v")
}

func TestSetup_UnknownFormat(t *testing.T) {
	_, _, err := setup(&bytes.Buffer{}, Options{Format: "xml"})
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
