// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the server configuration loaded from Viper.
type Config struct {
	// ListenAddr is the host:port the HTTP server binds to.
	ListenAddr string
	// DatabasePath is the SQLite database file path.
	DatabasePath string
	// AuthSecret signs JWTs. Required.
	AuthSecret string
	// TokenTTL is how long issued tokens stay valid.
	TokenTTL time.Duration
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is console or json.
	LogFormat string
}

// Load reads the server configuration from Viper and environment
// variables, applying defaults. Precedence:
// 1. Viper configuration (from config file or TALLY_ env vars)
// 2. Default values
func Load() (*Config, error) {
	viper.SetDefault("server.listen_addr", ":8080")
	viper.SetDefault("database.path", "~/.local/share/tally/tally.db")
	viper.SetDefault("auth.token_ttl", "24h")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")

	cfg := &Config{
		ListenAddr:   viper.GetString("server.listen_addr"),
		DatabasePath: ExpandPath(viper.GetString("database.path")),
		AuthSecret:   viper.GetString("auth.secret"),
		TokenTTL:     viper.GetDuration("auth.token_ttl"),
		LogLevel:     viper.GetString("log.level"),
		LogFormat:    viper.GetString("log.format"),
	}

	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("auth.secret is required (set TALLY_AUTH_SECRET or auth.secret in the config file)")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("auth.token_ttl must be positive, got %s", cfg.TokenTTL)
	}

	return cfg, nil
}

// ExpandPath resolves a leading ~ and any $VAR references in a path, so
// the database.path default of ~/.local/share/tally/tally.db works as
// written in config files and env vars.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}
	return os.ExpandEnv(path)
}
