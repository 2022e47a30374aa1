package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/adminportal/internal/tokenstore"
)

// isolate points HOME at an empty directory so a developer's own
// ~/.adminportal/config.yaml never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://localhost:8080", cfg.Server)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, tokenstore.BackendFile, cfg.Storage.Backend)
	assert.True(t, cfg.Auth.RevokeOnLogout)
	assert.False(t, cfg.Session.ClearOnInitError)
	require.NoError(t, cfg.Validate())
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "portal.yaml")
	content := `server: https://api.example.com/
timeout: 3s
log:
  level: debug
  format: json
storage:
  backend: sqlite
  path: /tmp/portal.db
auth:
  revoke_on_logout: false
session:
  clear_on_init_error: true
ui:
  listen: 0.0.0.0:8443
  secure_cookie: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.Server)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, tokenstore.BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/portal.db", cfg.Storage.Path)
	assert.False(t, cfg.Auth.RevokeOnLogout)
	assert.True(t, cfg.Session.ClearOnInitError)
	assert.Equal(t, "0.0.0.0:8443", cfg.UI.Listen)
	assert.True(t, cfg.UI.SecureCookie)
}

func TestLoadDefaultLocation(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".adminportal")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: http://backend:9000\n"), 0o600))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000", cfg.Server)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestPrecedence(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "portal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: http://from-file:1\nlog:\n  level: warn\n"), 0o600))

	t.Setenv("ADMINPORTAL_SERVER", "http://from-env:2")
	t.Setenv("ADMINPORTAL_LOG_LEVEL", "error")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server", "", "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--server", "http://from-flag:3"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag:3", cfg.Server, "a changed flag wins over env and file")
	assert.Equal(t, "error", cfg.Log.Level, "env wins over file when the flag is unset")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative server", func(c *Config) { c.Server = "localhost:8080" }},
		{"ftp server", func(c *Config) { c.Server = "ftp://host" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestStoragePath(t *testing.T) {
	home := isolate(t)

	cfg := Default()
	p, err := cfg.StoragePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".adminportal", "credentials.json"), p)

	cfg.Storage.Backend = tokenstore.BackendSQLite
	p, err = cfg.StoragePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".adminportal", "portal.db"), p)

	cfg.Storage.Path = "/custom/place.db"
	p, err = cfg.StoragePath()
	require.NoError(t, err)
	assert.Equal(t, "/custom/place.db", p)

	cfg = Default()
	cfg.Storage.Backend = tokenstore.BackendMemory
	p, err = cfg.StoragePath()
	require.NoError(t, err)
	assert.Empty(t, p)
}
