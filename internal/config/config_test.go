package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"PACER_BASE_URL", "PACER_API_TOKEN", "PACER_THEME", "PACER_CURRENCY", "PACER_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.False(t, Exists())
}

func TestSaveAndLoad(t *testing.T) {
	dir := isolate(t)

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://finance.example.com"
	cfg.Finance.LiquidAssets = "15000.00"
	cfg.Display.Currency = "EUR"
	require.NoError(t, Save(cfg))

	assert.Equal(t, filepath.Join(dir, "pacer", "config.toml"), Path())
	info, err := os.Stat(Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	require.NotNil(t, got.LiquidAssets())
	assert.Equal(t, 15000.0, *got.LiquidAssets())
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PACER_BASE_URL", "http://localhost:9999")
	t.Setenv("PACER_THEME", "tokyo-night")
	t.Setenv("PACER_CURRENCY", "gbp")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", cfg.API.BaseURL)
	assert.Equal(t, "tokyo-night", cfg.Appearance.Theme)
	assert.Equal(t, "GBP", cfg.Display.Currency)
}

func TestLoad_BadTOML(t *testing.T) {
	isolate(t)
	require.NoError(t, os.MkdirAll(Dir(), 0o700))
	require.NoError(t, os.WriteFile(Path(), []byte("[api\nbase_url = "), 0o600))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestIntervals(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, 60*time.Second, cfg.RefreshInterval())

	cfg.TUI.RefreshIntervalSec = 1
	cfg.Daemon.IntervalSec = 5
	cfg.API.TimeoutSec = 0
	assert.Equal(t, 10*time.Second, cfg.RefreshInterval())
	assert.Equal(t, 30*time.Second, cfg.PollInterval())
	assert.Equal(t, 10*time.Second, cfg.Timeout())

	assert.Nil(t, cfg.LiquidAssets())
	cfg.Finance.LiquidAssets = "lots"
	assert.Nil(t, cfg.LiquidAssets())
}
