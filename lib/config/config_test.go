package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "/_w", cfg.CallbackPath)
	assert.Equal(t, "*/15 * * * *", cfg.Refresh)
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hxwidget.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9000"
timezone: Europe/Paris
feeds:
  - url: https://example.com/team.ics
    name: Team
    color: "#3a87ad"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "info", cfg.LogLevel)
	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, FeedConfig{URL: "https://example.com/team.ics", Name: "Team", Color: "#3a87ad"}, cfg.Feeds[0])
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unterminated"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load("")
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hxwidget.yaml")
	cfg := DefaultConfig()
	cfg.Key = "secret"
	cfg.CORSOrigins = []string{"https://app.example.com"}
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestApplyEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("HXWIDGET_LISTEN=:7000\nHXWIDGET_LOG_LEVEL=debug\n"), 0o600))
	t.Setenv(EnvKey, "from-process")
	// Restored after the test; unset so the file values apply.
	t.Setenv(EnvListen, "")
	t.Setenv(EnvLogLevel, "")
	require.NoError(t, os.Unsetenv(EnvListen))
	require.NoError(t, os.Unsetenv(EnvLogLevel))

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(envFile, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "from-process", cfg.Key)
	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestKeyBytes(t *testing.T) {
	cfg := DefaultConfig()
	assert.Nil(t, cfg.KeyBytes())

	cfg.Key = "00112233445566778899aabbccddeeff"
	assert.Len(t, cfg.KeyBytes(), 16)

	cfg.Key = "not hex at all"
	assert.Equal(t, []byte("not hex at all"), cfg.KeyBytes())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Timezone = "Mars/Olympus"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Feeds = []FeedConfig{{Name: "no url"}}
	assert.Error(t, cfg.Validate())
}
