package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dupfynd/internal/config"
	"dupfynd/internal/logging"
)

func TestNewJSONWritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.Info("scan complete", "groups", 3)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "scan complete", record["msg"])
	assert.Equal(t, "info", record["level"])
	assert.Equal(t, float64(3), record["groups"])
	assert.Contains(t, record, "ts")
}

func TestNewConsoleIsDefault(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Output: &buf})
	require.NoError(t, err)

	logger.Warn("file error", "path", "/music/a.mp3")
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "path=/music/a.mp3")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "xml"})
	assert.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Logging.Level = "debug"

	logger, err := logging.NewFromConfig(&cfg, &buf)
	require.NoError(t, err)
	logger.Debug("walk complete")
	assert.Contains(t, buf.String(), "walk complete")

	logger, err = logging.NewFromConfig(nil, &buf)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	assert.False(t, logger.Enabled(t.Context(), 12))
}
