package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at an empty directory so no real config file leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("EFFICIENCY_CONFIG", "")
	return home
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.StateBackend)
	assert.Equal(t, filepath.Join(home, ".efficiency", "efficiency.db"), cfg.DBPath)
	assert.Equal(t, 10000, cfg.HTTPTimeoutMs)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.False(t, cfg.LogCalls)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"api_url: https://ledger.example.com/api",
		"api_token: file-token",
		"state_backend: file",
		"max_retries: 3",
	}, "\n")), 0o600))
	t.Setenv("EFFICIENCY_CONFIG", path)
	t.Setenv("EFFICIENCY_API_TOKEN", "env-token")
	t.Setenv("EFFICIENCY_HTTP_TIMEOUT_MS", "2500")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://ledger.example.com/api", cfg.APIURL)
	assert.Equal(t, "env-token", cfg.APIToken, "env wins over file")
	assert.Equal(t, BackendFile, cfg.StateBackend)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2500, cfg.HTTPTimeoutMs)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_urll: typo\n"), 0o600))
	t.Setenv("EFFICIENCY_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_urll")
}

func TestLoad_ExplicitMissingFileIsError(t *testing.T) {
	isolate(t)
	t.Setenv("EFFICIENCY_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidEnvIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("EFFICIENCY_HTTP_TIMEOUT_MS", "soon")
	t.Setenv("EFFICIENCY_MAX_RETRIES", "-2")
	t.Setenv("EFFICIENCY_STATE_BACKEND", "redis")
	t.Setenv("EFFICIENCY_REFRESH_MS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.HTTPTimeoutMs)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, BackendSQLite, cfg.StateBackend)
	assert.Equal(t, 1000, cfg.RefreshMs)
}

func TestValidate_BadBackendFromFile(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Decode(strings.NewReader("state_backend: etcd\n")))
	assert.Error(t, cfg.Validate())
}

func TestDecode_EmptyDocumentKeepsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Decode(strings.NewReader("")))
	assert.Equal(t, DefaultConfig(), cfg)
}
