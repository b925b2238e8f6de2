package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"WBS_CONFIG", "WBS_DB", "WBS_PRESETS", "WBS_LOG", "WBS_API_URL", "WBS_API_TOKEN",
		"WBS_API_TIMEOUT_MS", "WBS_API_MAX_RETRIES", "WBS_CACHE_TTL_SEC",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()

	cfg, err := Load(home)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".wbs", "wbs.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(home, ".wbs", "presets.toml"), cfg.PresetsPath)
	assert.False(t, cfg.LogEnabled)
	assert.False(t, cfg.Backend.Enabled())
	assert.Equal(t, 10000, cfg.Backend.TimeoutMs)
	assert.Equal(t, 2, cfg.Backend.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Backend.CacheTTL)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	dir := filepath.Join(home, ".wbs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	body := `
db = "/tmp/other.db"

[log]
enabled = true

[api]
url = "https://pm.example.com"
token = "from-file"
timeout_ms = 2500
cache_ttl_sec = 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644))

	cfg, err := Load(home)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.True(t, cfg.LogEnabled)
	assert.Equal(t, "https://pm.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "from-file", cfg.Backend.Token)
	assert.Equal(t, 2500, cfg.Backend.TimeoutMs)
	assert.Equal(t, 5*time.Second, cfg.Backend.CacheTTL)
	assert.Equal(t, filepath.Join(dir, "config.toml"), cfg.ConfigFile)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	file := filepath.Join(home, "custom.toml")
	require.NoError(t, os.WriteFile(file, []byte("[api]\nurl = \"https://file\"\nmax_retries = 4\n"), 0o644))

	t.Setenv("WBS_CONFIG", file)
	t.Setenv("WBS_API_URL", "https://env")
	t.Setenv("WBS_DB", ":memory:")
	t.Setenv("WBS_LOG", "true")

	cfg, err := Load(home)
	require.NoError(t, err)

	assert.Equal(t, "https://env", cfg.Backend.BaseURL)
	assert.Equal(t, 4, cfg.Backend.MaxRetries, "file value kept where env is unset")
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.True(t, cfg.LogEnabled)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("WBS_API_MAX_RETRIES", "-1")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.max_retries")
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	file := filepath.Join(home, "broken.toml")
	require.NoError(t, os.WriteFile(file, []byte("[api\nurl ="), 0o644))
	t.Setenv("WBS_CONFIG", file)

	_, err := Load(home)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.toml")
}
