package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// ClientIDEnv overrides [OAuthConfig.ClientID] when set.
const ClientIDEnv = "MCONTROL_GOOGLE_CLIENT_ID"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	OAuth    OAuthConfig    `toml:"oauth"`
	Listener ListenerConfig `toml:"listener"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// OAuthConfig contains the provider settings used to build the authorization URL.
type OAuthConfig struct {
	ClientID   string   `toml:"client_id"`
	AuthURL    string   `toml:"auth_url"`
	TokenURL   string   `toml:"token_url"`
	Scopes     []string `toml:"scopes"`
	AccessType string   `toml:"access_type"`
	Prompt     string   `toml:"prompt"`
	Timeout    Duration `toml:"timeout"`
}

// ListenerConfig contains loopback listener settings.
type ListenerConfig struct {
	Timeout           Duration `toml:"timeout"`
	AttemptsPerMinute int      `toml:"attempts_per_minute"`
	Burst             int      `toml:"burst"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a [time.Duration] read from and written to TOML as a string such as "5m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalidConfig, text)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their defaults, and [ClientIDEnv] is applied last.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
	return config, nil
}

// LoadOrDefault loads the config at path when it exists and falls back to [DefaultConfig] otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		config := DefaultConfig()
		config.applyEnv()
		return config, nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// SaveConfig writes the configuration to path as TOML.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
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

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.OAuth.AuthURL) == "":
		return fmt.Errorf("%w: oauth.auth_url is empty", ErrInvalidConfig)
	case len(c.OAuth.Scopes) == 0:
		return fmt.Errorf("%w: oauth.scopes is empty", ErrInvalidConfig)
	case c.OAuth.Timeout.Duration < 0:
		return fmt.Errorf("%w: oauth.timeout is negative", ErrInvalidConfig)
	case c.Listener.Timeout.Duration < 0:
		return fmt.Errorf("%w: listener.timeout is negative", ErrInvalidConfig)
	case c.Listener.AttemptsPerMinute < 0 || c.Listener.Burst < 0:
		return fmt.Errorf("%w: listener rate limits must not be negative", ErrInvalidConfig)
	case c.Database.Path == "":
		return fmt.Errorf("%w: database.path is empty", ErrInvalidConfig)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	if id := strings.TrimSpace(os.Getenv(ClientIDEnv)); id != "" {
		c.OAuth.ClientID = id
	}
}
