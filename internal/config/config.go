// Package config loads adminportal settings.
//
// Sources, lowest precedence first: built-in defaults, an optional YAML file
// (--config, or ~/.adminportal/config.yaml when present), environment
// variables prefixed ADMINPORTAL_ (dots become underscores, e.g.
// ADMINPORTAL_LOG_LEVEL), and command-line flags bound by the cli package.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/me/adminportal/internal/tokenstore"
)

const (
	envPrefix          = "ADMINPORTAL"
	dirName            = ".adminportal"
	configName         = "config"
	credentialsFile    = "credentials.json"
	databaseFile       = "portal.db"
	defaultServer      = "http://localhost:8080"
	defaultListen      = "127.0.0.1:3000"
	defaultHTTPTimeout = 15 * time.Second
)

// Config holds every runtime setting of the console.
type Config struct {
	Server  string        // Backend base URL
	Timeout time.Duration // Per-request HTTP timeout
	Log     LogConfig
	Storage StorageConfig
	Auth    AuthConfig
	Session SessionConfig
	UI      UIConfig
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// StorageConfig selects where the session token is persisted.
type StorageConfig struct {
	Backend string // file, sqlite, memory
	Path    string // empty selects the backend's file under ~/.adminportal
}

// AuthConfig controls interaction with the backend auth endpoints.
type AuthConfig struct {
	// RevokeOnLogout calls POST /auth/logout after the local session is cleared.
	RevokeOnLogout bool
}

// SessionConfig controls session restoration.
type SessionConfig struct {
	// ClearOnInitError drops a persisted token when the identity check fails
	// for a reason other than 401 (network error, 5xx).
	ClearOnInitError bool
}

// UIConfig configures the local web console.
type UIConfig struct {
	Listen string
	// SecureCookie marks the browser session cookie Secure. Enable it when
	// the web console is served over TLS.
	SecureCookie bool
}

// Default returns sensible defaults.
func Default() Config {
	return Config{
		Server:  defaultServer,
		Timeout: defaultHTTPTimeout,
		Log:     LogConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{Backend: tokenstore.BackendFile},
		Auth:    AuthConfig{RevokeOnLogout: true},
		UI:      UIConfig{Listen: defaultListen},
	}
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"server":     "server",
	"timeout":    "timeout",
	"log-level":  "log.level",
	"log-format": "log.format",
	"storage":    "storage.backend",
	"store-path": "storage.path",
	"listen":     "ui.listen",
}

// Load builds a Config from defaults, the YAML file at path (or the default
// location), the environment and flags. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if err := readFile(v, path); err != nil {
		return Config{}, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg := Config{
		Server:  strings.TrimRight(v.GetString("server"), "/"),
		Timeout: v.GetDuration("timeout"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(v.GetString("storage.backend")),
			Path:    v.GetString("storage.path"),
		},
		Auth:    AuthConfig{RevokeOnLogout: v.GetBool("auth.revoke_on_logout")},
		Session: SessionConfig{ClearOnInitError: v.GetBool("session.clear_on_init_error")},
		UI: UIConfig{
			Listen:       v.GetString("ui.listen"),
			SecureCookie: v.GetBool("ui.secure_cookie"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server", d.Server)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("auth.revoke_on_logout", d.Auth.RevokeOnLogout)
	v.SetDefault("session.clear_on_init_error", d.Session.ClearOnInitError)
	v.SetDefault("ui.listen", d.UI.Listen)
	v.SetDefault("ui.secure_cookie", d.UI.SecureCookie)
}

// readFile loads an explicit config file, or the default one when it exists.
func readFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	dir, err := Dir()
	if err != nil {
		// No home directory: defaults, env and flags still apply.
		return nil
	}
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Validate checks the settings that would otherwise fail late.
func (c Config) Validate() error {
	u, err := url.Parse(c.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL %q: must be http(s)://host[:port]", c.Server)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Storage.Backend {
	case tokenstore.BackendFile, tokenstore.BackendSQLite, tokenstore.BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q (file, sqlite, memory)", c.Storage.Backend)
	}
	return nil
}

// StoragePath returns the configured token storage path, or the backend's
// default file under ~/.adminportal. The memory backend has no path.
func (c Config) StoragePath() (string, error) {
	if c.Storage.Path != "" || c.Storage.Backend == tokenstore.BackendMemory {
		return c.Storage.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if c.Storage.Backend == tokenstore.BackendSQLite {
		return filepath.Join(dir, databaseFile), nil
	}
	return filepath.Join(dir, credentialsFile), nil
}

// Dir returns ~/.adminportal.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}
