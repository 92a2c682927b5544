package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	defaultBaseURL = "https://api.music.apple.com/v1"
	defaultTimeout = 30 * time.Second
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Client      ClientConfig      `toml:"client"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Tasks       TasksConfig       `toml:"tasks"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	AppleMusic AppleMusicConfig `toml:"apple_music"`
}

// AppleMusicConfig contains the MusicKit signing identity or a pre-issued developer token.
//
// When DeveloperToken is set it takes precedence over the signing key.
type AppleMusicConfig struct {
	TeamID         string `toml:"team_id"`
	KeyID          string `toml:"key_id"`
	PrivateKeyPath string `toml:"private_key_path"`
	DeveloperToken string `toml:"developer_token"`
}

// HasSigningKey reports whether enough of the signing identity is present to build a token generator.
func (c AppleMusicConfig) HasSigningKey() bool {
	return c.TeamID != "" && c.KeyID != "" && c.PrivateKeyPath != ""
}

// ClientConfig contains catalog API client settings.
type ClientConfig struct {
	BaseURL    string `toml:"base_url"`
	Timeout    string `toml:"timeout"`
	Storefront string `toml:"storefront"`
	Language   string `toml:"language"`
}

// TimeoutDuration parses Timeout, falling back to 30s when unset or malformed.
func (c ClientConfig) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return defaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return defaultTimeout
	}
	return d
}

// BaseURLOrDefault returns BaseURL, or the public catalog endpoint when unset.
func (c ClientConfig) BaseURLOrDefault() string {
	if c.BaseURL == "" {
		return defaultBaseURL
	}
	return c.BaseURL
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local token server.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TasksConfig contains defaults for batch lookups.
type TasksConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
