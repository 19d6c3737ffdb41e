// ABOUTME: Configuration management for xbm with YAML config loading.
// ABOUTME: Resolves the config directory, state and token paths, sync tuning, and telemetry settings.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	appName       = "xbm"
	stateFileName = "bookmark_state.json"
	tokenFileName = "oauth2_tokens.json"
	envFileName   = ".env"
)

// Config stores xbm configuration loaded from ~/.config/xbm/config.yaml.
// Zero values mean "use the built-in default".
type Config struct {
	APIBaseURL   string          `yaml:"api_base_url,omitempty"`
	CallbackPort int             `yaml:"callback_port,omitempty"`
	LogLevel     string          `yaml:"log_level,omitempty"`
	StatePath    string          `yaml:"state_path,omitempty"`
	Sync         SyncConfig      `yaml:"sync,omitempty"`
	Telemetry    TelemetryConfig `yaml:"telemetry,omitempty"`
}

// SyncConfig tunes the bookmark sync engine.
type SyncConfig struct {
	MaxPages      int `yaml:"max_pages,omitempty"`
	RetentionDays int `yaml:"retention_days,omitempty"`
}

// TelemetryConfig holds optional OTLP export settings.
type TelemetryConfig struct {
	OTLPEndpoint string            `yaml:"otlp_endpoint,omitempty"`
	Insecure     bool              `yaml:"insecure,omitempty"`
	ServiceName  string            `yaml:"service_name,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"`
}

// HasTelemetry returns true if an OTLP collector is configured.
func (c *Config) HasTelemetry() bool {
	return c.Telemetry.OTLPEndpoint != ""
}

// SlogLevel maps log_level to a slog level, defaulting to warn.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// GetStatePath returns the bookmark index file path, defaulting to
// bookmark_state.json in the config directory.
func (c *Config) GetStatePath() (string, error) {
	if c.StatePath != "" {
		return ExpandPath(c.StatePath)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, stateFileName), nil
}

// Dir returns the xbm config directory.
func Dir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, appName), nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// TokenPath returns the OAuth token file path.
func TokenPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tokenFileName), nil
}

// EnvPath returns the credentials .env file path.
func EnvPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, envFileName), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Load reads config from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
