package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := load(viper.New(), t.TempDir())
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Storage.Backend, cfg.Storage.Backend)
	assert.Equal(t, 100, cfg.Cache.FeedCap)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TagsTTL)
	assert.Equal(t, 2, cfg.Settings.GridColumns)
	assert.Equal(t, int64(500<<20), cfg.Settings.MaxCacheSize)
	assert.Equal(t, "https://api.jikan.moe/v4", cfg.Sources.JikanURL)
	assert.Empty(t, cfg.Viewer.Command)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
storage:
  backend: sqlite
  path: /tmp/akiba.sqlite
cache:
  feed_cap: 40
  tags_ttl: 1h
settings:
  grid_columns: 1
sources:
  timeout: 5s
viewer:
  command: feh
  args: ["--scale-down"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := load(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/akiba.sqlite", cfg.Storage.Path)
	assert.Equal(t, 40, cfg.Cache.FeedCap)
	assert.Equal(t, time.Hour, cfg.Cache.TagsTTL)
	assert.Equal(t, 1, cfg.Settings.GridColumns)
	assert.Equal(t, 5*time.Second, cfg.Sources.Timeout)
	assert.Equal(t, "feh", cfg.Viewer.Command)
	assert.Equal(t, []string{"--scale-down"}, cfg.Viewer.Args)
	// Untouched keys keep defaults
	assert.Equal(t, "127.0.0.1:7878", cfg.Server.Addr)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("AKIBA_STORAGE_BACKEND", "memory")
	t.Setenv("AKIBA_SERVER_ADDR", ":9000")

	cfg, err := load(viper.New(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Settings.GridColumns = 1
	cfg.Cache.TagsTTL = 90 * time.Minute

	require.NoError(t, saveTo(cfg, dir))

	loaded, err := load(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Settings.GridColumns)
	assert.Equal(t, 90*time.Minute, loaded.Cache.TagsTTL)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x", "y"), ExpandPath("~/x/y"))
	assert.Equal(t, "/abs", ExpandPath("/abs"))
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultConfig().DefaultSettings()
	assert.Equal(t, 2, s.GridColumns)
	assert.Equal(t, int64(500<<20), s.MaxCacheSize)
}
