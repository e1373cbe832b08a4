package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"explorer/internal/config"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_DATA_HOME"), "explorer", "explorer.db"), cfg.Store.DSN)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, int64(64<<20), cfg.MaxBodyBytes())
	assert.Equal(t, 32, cfg.Schema.CacheSize)
	assert.Equal(t, 40, cfg.History.MaxNodes)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "explorer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: memory
fetch:
  timeout: 5s
log:
  level: debug
`), 0o644))
	t.Setenv("EXPLORER_LOG_LEVEL", "warn")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Empty(t, cfg.Store.DSN)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_DefaultFileIsPickedUp(t *testing.T) {
	isolate(t)
	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "explorer")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("schema:\n  cache_size: 7\n"), 0o644))

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Schema.CacheSize)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)

	t.Setenv("EXPLORER_STORE_DRIVER", "oracle")
	_, err := config.Load("")
	assert.ErrorContains(t, err, "unknown store driver")

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestYAML(t *testing.T) {
	isolate(t)
	cfg, err := config.Load("")
	require.NoError(t, err)

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "timeout: 30s")
	assert.Contains(t, string(out), "driver: sqlite")
}

func TestNewLogger(t *testing.T) {
	_, err := config.NewLogger(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	_, err = config.NewLogger(config.LogConfig{Level: "info", Format: "console"})
	require.NoError(t, err)

	_, err = config.NewLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
	_, err = config.NewLogger(config.LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
