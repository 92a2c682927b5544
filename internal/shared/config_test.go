package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./amx.db" {
			t.Errorf("expected database path ./amx.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Client.BaseURLOrDefault() != "https://api.music.apple.com/v1" {
			t.Errorf("expected default base URL, got %s", config.Client.BaseURLOrDefault())
		}

		if config.Client.Storefront != "us" {
			t.Errorf("expected storefront us, got %s", config.Client.Storefront)
		}

		if config.Credentials.AppleMusic.HasSigningKey() {
			t.Error("expected default config to have no signing key")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials.apple_music]
team_id = "TEAM123456"
key_id = "KEY1234567"
private_key_path = "/keys/AuthKey_KEY1234567.p8"

[client]
base_url = "http://localhost:9999/v1"
timeout = "5s"
storefront = "gb"

[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080
allowed_origins = ["https://example.com"]

[tasks]
workers = 3
rate_limit = 2.5
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if !config.Credentials.AppleMusic.HasSigningKey() {
			t.Error("expected signing key to be configured")
		}
		if config.Client.TimeoutDuration() != 5*time.Second {
			t.Errorf("expected timeout 5s, got %v", config.Client.TimeoutDuration())
		}
		if config.Client.BaseURLOrDefault() != "http://localhost:9999/v1" {
			t.Errorf("expected custom base URL, got %s", config.Client.BaseURLOrDefault())
		}
		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}
		if len(config.Server.AllowedOrigins) != 1 {
			t.Errorf("expected one allowed origin, got %v", config.Server.AllowedOrigins)
		}
		if config.Tasks.Workers != 3 || config.Tasks.RateLimit != 2.5 {
			t.Errorf("unexpected tasks config: %+v", config.Tasks)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[client\nbase_url ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("TimeoutDuration Fallback", func(t *testing.T) {
		for _, raw := range []string{"", "soon", "-1s"} {
			c := ClientConfig{Timeout: raw}
			if c.TimeoutDuration() != 30*time.Second {
				t.Errorf("expected 30s fallback for %q, got %v", raw, c.TimeoutDuration())
			}
		}
	})
}
