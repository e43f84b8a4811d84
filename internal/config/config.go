// Package config loads client and server settings from defaults, an optional
// YAML file, CROPAID_* environment variables and command-line flags, in
// increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/iudanet/cropaid/internal/logging"
)

// EnvPrefix is prepended to every environment variable, e.g. CROPAID_SERVER
const EnvPrefix = "CROPAID"

// minSecretLen минимальная длина секрета для HS256
const minSecretLen = 32

// Client holds settings of the cropaid CLI
type Client struct {
	Server        string        `mapstructure:"server"`
	DB            string        `mapstructure:"db"`
	Fallback      string        `mapstructure:"fallback"`
	LogFile       string        `mapstructure:"log_file"`
	LogLevel      string        `mapstructure:"log_level"`
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	Guest         bool          `mapstructure:"guest"`
}

// Server holds settings of the reference backend
type Server struct {
	Addr       string        `mapstructure:"addr"`
	DB         string        `mapstructure:"db"`
	JWTSecret  string        `mapstructure:"jwt_secret"`
	LogFile    string        `mapstructure:"log_file"`
	LogLevel   string        `mapstructure:"log_level"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
	RateLimit  int           `mapstructure:"rate_limit"`
}

// DefaultClient returns the client configuration used when nothing is set
func DefaultClient() Client {
	return Client{
		Server:        "http://localhost:8080",
		DB:            "cropaid.db",
		Fallback:      "cropaid-captures.jsonl",
		LogLevel:      "warn",
		ProbeInterval: 15 * time.Second,
		ProbeTimeout:  5 * time.Second,
	}
}

// DefaultServer returns the server configuration used when nothing is set
func DefaultServer() Server {
	return Server{
		Addr:       ":8080",
		DB:         "cropaid-server.db",
		LogLevel:   "info",
		TokenTTL:   15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
		RateLimit:  10,
	}
}

// New creates a viper instance wired to the CROPAID_ environment
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// SetClientDefaults registers defaults so that Unmarshal sees every key,
// including the ones only provided through the environment.
func SetClientDefaults(v *viper.Viper) {
	d := DefaultClient()
	v.SetDefault("server", d.Server)
	v.SetDefault("db", d.DB)
	v.SetDefault("fallback", d.Fallback)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("probe_interval", d.ProbeInterval)
	v.SetDefault("probe_timeout", d.ProbeTimeout)
	v.SetDefault("max_attempts", d.MaxAttempts)
	v.SetDefault("guest", d.Guest)
}

// SetServerDefaults registers server defaults
func SetServerDefaults(v *viper.Viper) {
	d := DefaultServer()
	v.SetDefault("addr", d.Addr)
	v.SetDefault("db", d.DB)
	v.SetDefault("jwt_secret", d.JWTSecret)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("token_ttl", d.TokenTTL)
	v.SetDefault("refresh_ttl", d.RefreshTTL)
	v.SetDefault("rate_limit", d.RateLimit)
}

// readFile loads the YAML file if one was given
func readFile(v *viper.Viper, file string) error {
	if file == "" {
		return nil
	}
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", file, err)
	}
	return nil
}

// LoadClient reads the client configuration. Flags must already be bound
// to v with BindPFlag.
func LoadClient(v *viper.Viper, file string) (*Client, error) {
	SetClientDefaults(v)
	if err := readFile(v, file); err != nil {
		return nil, err
	}

	var cfg Client
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode client config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadServer reads the server configuration
func LoadServer(v *viper.Viper, file string) (*Server, error) {
	SetServerDefaults(v)
	if err := readFile(v, file); err != nil {
		return nil, err
	}

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode server config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the client configuration
func (c *Client) Validate() error {
	var errs []error

	u, err := url.Parse(c.Server)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("server must be an http(s) URL, got %q", c.Server))
	}
	if c.DB == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if c.ProbeInterval <= 0 {
		errs = append(errs, errors.New("probe_interval must be positive"))
	}
	if c.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("probe_timeout must be positive"))
	}
	if c.MaxAttempts < 0 {
		errs = append(errs, errors.New("max_attempts must not be negative"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid client config: %w", errors.Join(errs...))
	}
	return nil
}

// Validate checks the server configuration
func (s *Server) Validate() error {
	var errs []error

	if s.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if s.DB == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if len(s.JWTSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("jwt_secret must be at least %d characters", minSecretLen))
	}
	if s.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if s.RefreshTTL <= 0 {
		errs = append(errs, errors.New("refresh_ttl must be positive"))
	}
	if s.RateLimit <= 0 {
		errs = append(errs, errors.New("rate_limit must be positive"))
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid server config: %w", errors.Join(errs...))
	}
	return nil
}

// Logging returns logger options for the client
func (c *Client) Logging() logging.Options {
	return logging.Options{Level: c.LogLevel, File: c.LogFile, MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28}
}

// Logging returns logger options for the server
func (s *Server) Logging() logging.Options {
	return logging.Options{Level: s.LogLevel, File: s.LogFile, MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 28}
}
