package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "irw.db", cfg.Snapshot.Path)
	assert.Equal(t, 4.0, cfg.Fetch.RatePerSecond)
	assert.Equal(t, 2, cfg.Fetch.Burst)
	assert.False(t, cfg.Fetch.Dedup)
	assert.False(t, cfg.Listing.VersionedJoinKey)
	assert.False(t, cfg.Log.JSON)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "irw.toml")
	content := `
[snapshot]
path = "/data/irw_snapshot.db"

[fetch]
rate_per_second = 10.0
dedup = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/irw_snapshot.db", cfg.Snapshot.Path)
	assert.Equal(t, 10.0, cfg.Fetch.RatePerSecond)
	assert.True(t, cfg.Fetch.Dedup)
	assert.Equal(t, 2, cfg.Fetch.Burst, "unset keys keep defaults")
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadCachesResult(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}
