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

		if config.Database.Path != "./mcontrol.db" {
			t.Errorf("expected database path ./mcontrol.db, got %s", config.Database.Path)
		}

		if config.OAuth.AuthURL != "https://accounts.google.com/o/oauth2/v2/auth" {
			t.Errorf("unexpected auth URL %s", config.OAuth.AuthURL)
		}

		if len(config.OAuth.Scopes) != 3 || config.OAuth.Scopes[0] != "openid" {
			t.Errorf("expected scopes [openid email profile], got %v", config.OAuth.Scopes)
		}

		if config.OAuth.Timeout.Duration != 5*time.Minute {
			t.Errorf("expected oauth timeout 5m, got %s", config.OAuth.Timeout)
		}

		if config.Listener.Timeout.Duration != 5*time.Minute {
			t.Errorf("expected listener timeout 5m, got %s", config.Listener.Timeout)
		}

		if config.Listener.AttemptsPerMinute != 6 || config.Listener.Burst != 3 {
			t.Errorf("unexpected rate limits %d/%d", config.Listener.AttemptsPerMinute, config.Listener.Burst)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Setenv(ClientIDEnv, "")
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[oauth]
client_id = "test_client_id"
timeout = "90s"

[listener]
timeout = "30s"

[database]
path = "/custom/path.db"

[log]
level = "debug"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.OAuth.ClientID != "test_client_id" {
			t.Errorf("expected client_id test_client_id, got %s", config.OAuth.ClientID)
		}
		if config.OAuth.Timeout.Duration != 90*time.Second {
			t.Errorf("expected oauth timeout 90s, got %s", config.OAuth.Timeout)
		}
		if config.Listener.Timeout.Duration != 30*time.Second {
			t.Errorf("expected listener timeout 30s, got %s", config.Listener.Timeout)
		}
		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.OAuth.AuthURL != DefaultConfig().OAuth.AuthURL {
			t.Errorf("missing values should keep defaults, got auth_url %q", config.OAuth.AuthURL)
		}
	})

	t.Run("LoadConfig Invalid Duration", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[oauth]\ntimeout = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected error for invalid duration")
		}
	})

	t.Run("Client ID From Environment", func(t *testing.T) {
		t.Setenv(ClientIDEnv, "env-client")

		config, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.OAuth.ClientID != "env-client" {
			t.Errorf("expected client id from environment, got %q", config.OAuth.ClientID)
		}
	})

	t.Run("SaveConfig Round Trip", func(t *testing.T) {
		t.Setenv(ClientIDEnv, "")
		configPath := filepath.Join(t.TempDir(), "config.toml")

		config := DefaultConfig()
		config.OAuth.ClientID = "saved"
		config.Listener.Timeout = Duration{2 * time.Minute}

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.OAuth.ClientID != "saved" || loaded.Listener.Timeout.Duration != 2*time.Minute {
			t.Errorf("saved values not loaded back: %+v", loaded)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "empty auth url", mutate: func(c *Config) { c.OAuth.AuthURL = "" }},
			{name: "no scopes", mutate: func(c *Config) { c.OAuth.Scopes = nil }},
			{name: "negative listener timeout", mutate: func(c *Config) { c.Listener.Timeout = Duration{-time.Second} }},
			{name: "negative burst", mutate: func(c *Config) { c.Listener.Burst = -1 }},
			{name: "empty database path", mutate: func(c *Config) { c.Database.Path = "" }},
			{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "loud" }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}
