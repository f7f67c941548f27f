package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dupfynd/internal/config"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, filepath.Join(tempHome, ".config", "dupfynd", "config.toml"), resolved)

	assert.Equal(t, []string{"content", "metadata"}, cfg.Scan.Signals)
	assert.Zero(t, cfg.Scan.Workers)
	assert.Zero(t, cfg.Scan.FileTimeout())
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "csv", cfg.Export.Format)
}

func TestLoadReadsFileAndNormalizes(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "dupfynd.toml")
	content := `
[scan]
signals = ["Metadata", " content ", "metadata"]
include = [".MP3", "flac"]
workers = 4
file_timeout_seconds = 30

[logging]
format = "JSON"
level = "Debug"

[export]
format = "Markdown"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, resolved, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, resolved)

	assert.Equal(t, []string{"metadata", "content"}, cfg.Scan.Signals)
	assert.Equal(t, []string{".mp3", "flac"}, cfg.Scan.Include)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, 30*time.Second, cfg.Scan.FileTimeout())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "markdown", cfg.Export.Format)
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DUPFYND_SCAN_WORKERS", "7")
	t.Setenv("DUPFYND_SCAN_SIGNALS", "content")
	t.Setenv("DUPFYND_SCAN_AUDIO_ONLY", "true")
	t.Setenv("DUPFYND_LOGGING_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scan]\nworkers = 2\n"), 0o644))

	cfg, _, _, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Scan.Workers)
	assert.Equal(t, []string{"content"}, cfg.Scan.Signals)
	assert.True(t, cfg.Scan.AudioOnly)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cases := map[string]string{
		"unknown signal": "[scan]\nsignals = [\"fuzzy\"]\n",
		"no signal":      "[scan]\nsignals = []\n",
		"bad level":      "[logging]\nlevel = \"loud\"\n",
		"bad format":     "[export]\nformat = \"xlsx\"\n",
		"unknown field":  "[scan]\nrecursive = true\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, _, _, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	require.NoError(t, config.CreateSample(path, false))
	assert.Error(t, config.CreateSample(path, false), "existing file must not be overwritten")
	require.NoError(t, config.CreateSample(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded config.Config
	require.NoError(t, toml.Unmarshal(data, &decoded))

	cfg, _, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, config.Default().Scan.Signals, cfg.Scan.Signals)
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Scan.Exclude = []string{".txt"}

	data, err := config.Encode(&cfg)
	require.NoError(t, err)

	var decoded config.Config
	require.NoError(t, toml.Unmarshal(data, &decoded))
	assert.Equal(t, cfg.Scan.Exclude, decoded.Scan.Exclude)
	assert.Equal(t, cfg.Logging, decoded.Logging)
}

func TestExpandPathHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := config.ExpandPath("~/music")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "music"), got)

	empty, err := config.ExpandPath("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
