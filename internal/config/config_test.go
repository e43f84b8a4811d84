package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadClient_Defaults(t *testing.T) {
	cfg, err := LoadClient(New(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultClient(), *cfg)
	assert.Equal(t, 0, cfg.MaxAttempts)
}

func TestLoadClient_Env(t *testing.T) {
	t.Setenv("CROPAID_SERVER", "https://api.example.com")
	t.Setenv("CROPAID_MAX_ATTEMPTS", "5")
	t.Setenv("CROPAID_PROBE_INTERVAL", "1m")
	t.Setenv("CROPAID_GUEST", "true")

	cfg, err := LoadClient(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Server)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, time.Minute, cfg.ProbeInterval)
	assert.True(t, cfg.Guest)
}

func TestLoadClient_FileAndOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cropaid.yaml")
	content := "server: http://farm.local:9000\nlog_level: debug\nfallback: /tmp/captures.jsonl\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	v := New()
	v.Set("log_level", "error")

	cfg, err := LoadClient(v, path)
	require.NoError(t, err)

	assert.Equal(t, "http://farm.local:9000", cfg.Server)
	assert.Equal(t, "/tmp/captures.jsonl", cfg.Fallback)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadClient_MissingFile(t *testing.T) {
	_, err := LoadClient(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestClient_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Client)
	}{
		{name: "bad scheme", modify: func(c *Client) { c.Server = "ftp://host" }},
		{name: "no host", modify: func(c *Client) { c.Server = "localhost" }},
		{name: "empty db", modify: func(c *Client) { c.DB = "" }},
		{name: "zero interval", modify: func(c *Client) { c.ProbeInterval = 0 }},
		{name: "zero timeout", modify: func(c *Client) { c.ProbeTimeout = 0 }},
		{name: "negative attempts", modify: func(c *Client) { c.MaxAttempts = -1 }},
		{name: "bad level", modify: func(c *Client) { c.LogLevel = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultClient()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadServer(t *testing.T) {
	t.Run("secret required", func(t *testing.T) {
		_, err := LoadServer(New(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt_secret")
	})

	t.Run("from env", func(t *testing.T) {
		t.Setenv("CROPAID_JWT_SECRET", testSecret)
		t.Setenv("CROPAID_TOKEN_TTL", "1h")
		t.Setenv("CROPAID_ADDR", ":9090")

		cfg, err := LoadServer(New(), "")
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, time.Hour, cfg.TokenTTL)
		assert.Equal(t, DefaultServer().RefreshTTL, cfg.RefreshTTL)
	})
}

func TestServer_Validate(t *testing.T) {
	cfg := DefaultServer()
	cfg.JWTSecret = testSecret
	require.NoError(t, cfg.Validate())

	cfg.RateLimit = 0
	cfg.TokenTTL = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit")
	assert.Contains(t, err.Error(), "token_ttl")
}

func TestLogging(t *testing.T) {
	c := DefaultClient()
	c.LogFile = "client.log"
	assert.Equal(t, "client.log", c.Logging().File)
	assert.Equal(t, "warn", c.Logging().Level)

	s := DefaultServer()
	assert.Equal(t, "info", s.Logging().Level)
}
