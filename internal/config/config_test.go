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

// isolateEnv points HOME at a temp dir and blanks the credential variables.
func isolateEnv(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"USERNAME", "PASSWORD", "NGM_USERNAME", "NGM_PASSWORD", "NGM_CACHE_PATH", "NGM_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolateEnv(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".ngnycmetro", "tokens.json"), cfg.CachePath)
	assert.Equal(t, DefaultOpowerBaseURL, cfg.OpowerBaseURL)
	assert.Equal(t, DefaultAuthBaseURL, cfg.AuthBaseURL)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, DefaultAuthTimeout, cfg.AuthTimeout)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, DefaultServerAddr, cfg.ServerAddr)
	assert.Empty(t, cfg.LogLevel)
	assert.Empty(t, cfg.Username)
	assert.Empty(t, cfg.Password)
	assert.Empty(t, cfg.File)
}

func TestLoadReadsBareCredentialVariables(t *testing.T) {
	isolateEnv(t)
	t.Setenv("USERNAME", "user@example.com")
	t.Setenv("PASSWORD", "hunter2")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", cfg.Username)
	assert.Equal(t, "hunter2", cfg.Password)
}

func TestLoadPrefixedVariablesWin(t *testing.T) {
	isolateEnv(t)
	t.Setenv("USERNAME", "bare@example.com")
	t.Setenv("NGM_USERNAME", "prefixed@example.com")
	t.Setenv("NGM_QUERY_TIMEZONE", "UTC")
	t.Setenv("NGM_HTTP_TIMEOUT", "15s")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "prefixed@example.com", cfg.Username)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}

func TestLoadReadsDefaultConfigFile(t *testing.T) {
	home := isolateEnv(t)

	dir := filepath.Join(home, ".ngnycmetro")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
username = "file@example.com"

[cache]
path = "~/elsewhere/tokens.json"

[server]
addr = "127.0.0.1:9000"
`), 0o600))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "file@example.com", cfg.Username)
	assert.Equal(t, filepath.Join(home, "elsewhere", "tokens.json"), cfg.CachePath)
	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddr)
	assert.Equal(t, filepath.Join(dir, "config.toml"), cfg.File)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	home := isolateEnv(t)

	_, err := Load(viper.New(), filepath.Join(home, "missing.toml"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "read config file")
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	isolateEnv(t)
	t.Setenv("NGM_QUERY_TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load(viper.New(), "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "load time zone")
}

func TestLoadRejectsNewerSchemaVersion(t *testing.T) {
	home := isolateEnv(t)

	path := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 99\n"), 0o600))

	_, err := Load(viper.New(), path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported config schema version 99")
}

func TestConfigLocation(t *testing.T) {
	t.Parallel()

	loc, err := Config{}.Location()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, loc.String())

	loc, err = Config{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
