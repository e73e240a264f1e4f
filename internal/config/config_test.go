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

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain", input: "/var/lib/tally.db", want: "/var/lib/tally.db"},
		{name: "tilde slash", input: "~/data/tally.db", want: filepath.Join(home, "data", "tally.db")},
		{name: "bare tilde", input: "~", want: home},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestLoad(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// Missing secret is an error.
	_, err := Load()
	require.Error(t, err)

	viper.Set("auth.secret", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "info", cfg.LogLevel)

	viper.Set("server.listen_addr", ":9999")
	viper.Set("auth.token_ttl", "2h")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
}
