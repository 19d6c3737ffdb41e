// ABOUTME: Tests for xbm configuration loading and path resolution.
// ABOUTME: Covers YAML parsing, defaults, path expansion, and log level mapping.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"tilde only", "~", home},
		{"tilde slash", "~/foo/bar", filepath.Join(home, "foo", "bar")},
		{"absolute", "/tmp/foo", "/tmp/foo"},
		{"relative", "foo/bar", "foo/bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			if err != nil {
				t.Fatalf("ExpandPath(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.APIBaseURL != "" {
		t.Errorf("expected empty api_base_url, got %q", cfg.APIBaseURL)
	}
	if cfg.Sync.MaxPages != 0 || cfg.Sync.RetentionDays != 0 {
		t.Errorf("expected zero sync settings, got %+v", cfg.Sync)
	}
	if cfg.HasTelemetry() {
		t.Error("expected HasTelemetry() to be false for default config")
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "xbm")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configData := `api_base_url: "http://127.0.0.1:9999/2"
callback_port: 9000
log_level: debug
state_path: "~/bookmarks/state.json"
sync:
  max_pages: 5
  retention_days: 30
telemetry:
  otlp_endpoint: "localhost:4317"
  insecure: true
`
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configData), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.APIBaseURL != "http://127.0.0.1:9999/2" {
		t.Errorf("api_base_url = %q", cfg.APIBaseURL)
	}
	if cfg.CallbackPort != 9000 {
		t.Errorf("callback_port = %d, want 9000", cfg.CallbackPort)
	}
	if cfg.Sync.MaxPages != 5 || cfg.Sync.RetentionDays != 30 {
		t.Errorf("sync = %+v, want max_pages 5 retention_days 30", cfg.Sync)
	}
	if !cfg.HasTelemetry() || !cfg.Telemetry.Insecure {
		t.Errorf("telemetry = %+v", cfg.Telemetry)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, "bookmarks", "state.json")
	if got, err := cfg.GetStatePath(); err != nil {
		t.Fatalf("GetStatePath() error: %v", err)
	} else if got != want {
		t.Errorf("GetStatePath() = %q, want %q", got, want)
	}
}

func TestLoadMalformedConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "xbm")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("sync: [unclosed"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg := &Config{
		CallbackPort: 8800,
		Sync:         SyncConfig{MaxPages: 7},
	}

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	path, _ := GetConfigPath()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %o, want 600", info.Mode().Perm())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.CallbackPort != 8800 {
		t.Errorf("expected callback_port 8800, got %d", loaded.CallbackPort)
	}
	if loaded.Sync.MaxPages != 7 {
		t.Errorf("expected max_pages 7, got %d", loaded.Sync.MaxPages)
	}
}

func TestDefaultPaths(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	base := filepath.Join(tmpDir, "xbm")

	cfg := &Config{}
	statePath, err := cfg.GetStatePath()
	if err != nil {
		t.Fatalf("GetStatePath() error: %v", err)
	}
	if statePath != filepath.Join(base, "bookmark_state.json") {
		t.Errorf("GetStatePath() = %q", statePath)
	}

	tokenPath, err := TokenPath()
	if err != nil {
		t.Fatalf("TokenPath() error: %v", err)
	}
	if tokenPath != filepath.Join(base, "oauth2_tokens.json") {
		t.Errorf("TokenPath() = %q", tokenPath)
	}

	envPath, err := EnvPath()
	if err != nil {
		t.Fatalf("EnvPath() error: %v", err)
	}
	if envPath != filepath.Join(base, ".env") {
		t.Errorf("EnvPath() = %q", envPath)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelWarn},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.input}
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
