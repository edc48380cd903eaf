package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const testTimeFormat = "2006-01-02T15:04:05.000Z07:00"

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"json to stdout", Config{Level: "info", Format: "json", Output: "stdout", TimeFormat: testTimeFormat}},
		{"console to stderr", Config{Level: "debug", Format: "console", Output: "stderr", TimeFormat: testTimeFormat}},
		{"unknown level falls back", Config{Level: "noisy", Format: "json", Output: "stdout", TimeFormat: testTimeFormat}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(&tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, log)
			log.Info("startup")
		})
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	log, err := New(&Config{Level: "info", Format: "json", Output: path, TimeFormat: testTimeFormat})
	require.NoError(t, err)

	log.Info("document created", zap.String("number", "INV-001"))
	require.NoError(t, Sync(log))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "document created", entry["msg"])
	assert.Equal(t, "INV-001", entry["number"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestNewFiltersBelowConfiguredLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	log, err := New(&Config{Level: "warn", Format: "json", Output: path, TimeFormat: testTimeFormat})
	require.NoError(t, err)

	log.Info("suppressed")
	log.Warn("kept")
	require.NoError(t, Sync(log))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "suppressed")
	assert.Contains(t, string(raw), "kept")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"bogus", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("level "+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestNewWriterFallsBackOnBadPath(t *testing.T) {
	// A directory cannot be opened as a log file; the writer must
	// still be usable.
	w := newWriter(t.TempDir())
	require.NotNil(t, w)
	_, err := w.Write([]byte("fallback\n"))
	assert.NoError(t, err)
}
