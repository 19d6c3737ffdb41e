// ABOUTME: Tests for client credential loading from .env files.
// ABOUTME: Covers precedence, missing values, permission warnings, and saving.
package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearCredentialEnv unsets the credential variables for the test and
// restores them afterwards.
func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{envClientID, envClientSecret} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func writeEnv(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("write env: %v", err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("chmod env: %v", err)
	}
}

func TestLoadCredentialsFromConfigDir(t *testing.T) {
	clearCredentialEnv(t)
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Chdir(t.TempDir())

	writeEnv(t, filepath.Join(tmpDir, "xbm", ".env"), "X_CLIENT_ID=abc\nX_CLIENT_SECRET=shh\n", 0600)

	var warn bytes.Buffer
	creds, err := LoadCredentials(&warn)
	if err != nil {
		t.Fatalf("LoadCredentials() error: %v", err)
	}
	if creds.ClientID != "abc" || creds.ClientSecret != "shh" {
		t.Errorf("creds = %+v", creds)
	}
	if warn.Len() != 0 {
		t.Errorf("unexpected warning: %q", warn.String())
	}
}

func TestLoadCredentialsConfigDirWinsOverCwd(t *testing.T) {
	clearCredentialEnv(t)
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	cwd := t.TempDir()
	t.Chdir(cwd)

	writeEnv(t, filepath.Join(tmpDir, "xbm", ".env"), "X_CLIENT_ID=from-config\n", 0600)
	writeEnv(t, filepath.Join(cwd, ".env"), "X_CLIENT_ID=from-cwd\nX_CLIENT_SECRET=cwd-secret\n", 0600)

	creds, err := LoadCredentials(&bytes.Buffer{})
	if err != nil {
		t.Fatalf("LoadCredentials() error: %v", err)
	}
	if creds.ClientID != "from-config" {
		t.Errorf("ClientID = %q, want from-config", creds.ClientID)
	}
	if creds.ClientSecret != "cwd-secret" {
		t.Errorf("ClientSecret = %q, want cwd-secret", creds.ClientSecret)
	}
}

func TestLoadCredentialsEnvironmentWins(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Chdir(t.TempDir())
	t.Setenv(envClientID, "from-env")
	t.Setenv(envClientSecret, "env-secret")

	writeEnv(t, filepath.Join(tmpDir, "xbm", ".env"), "X_CLIENT_ID=from-file\n", 0600)

	creds, err := LoadCredentials(&bytes.Buffer{})
	if err != nil {
		t.Fatalf("LoadCredentials() error: %v", err)
	}
	if creds.ClientID != "from-env" {
		t.Errorf("ClientID = %q, want from-env", creds.ClientID)
	}
}

func TestLoadCredentialsMissing(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := LoadCredentials(&bytes.Buffer{})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestLoadCredentialsWarnsOnReadableFile(t *testing.T) {
	clearCredentialEnv(t)
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Chdir(t.TempDir())

	path := filepath.Join(tmpDir, "xbm", ".env")
	writeEnv(t, path, "X_CLIENT_ID=abc\nX_CLIENT_SECRET=shh\n", 0644)

	var warn bytes.Buffer
	if _, err := LoadCredentials(&warn); err != nil {
		t.Fatalf("LoadCredentials() error: %v", err)
	}
	if !strings.Contains(warn.String(), "Run: chmod 600 "+path) {
		t.Errorf("warning missing chmod hint: %q", warn.String())
	}
}

func TestCheckPermissions(t *testing.T) {
	tests := []struct {
		name string
		mode os.FileMode
		want string
	}{
		{"owner only", 0600, ""},
		{"group readable", 0640, "group-readable"},
		{"world readable", 0604, "world-readable"},
		{"both prefers world", 0644, "world-readable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			CheckPermissions("/x/.env", tt.mode, &buf)
			if tt.want == "" {
				if buf.Len() != 0 {
					t.Errorf("unexpected warning: %q", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("warning %q does not mention %q", buf.String(), tt.want)
			}
		})
	}
}

func TestSaveCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xbm", ".env")
	writeEnv(t, path, "OTHER=keep\nX_CLIENT_ID=old\n", 0644)

	if err := SaveCredentials(path, Credentials{ClientID: "new-id", ClientSecret: "new-secret"}); err != nil {
		t.Fatalf("SaveCredentials() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %o, want 600", info.Mode().Perm())
	}

	data, _ := os.ReadFile(path)
	content := string(data)
	for _, want := range []string{`OTHER="keep"`, `X_CLIENT_ID="new-id"`, `X_CLIENT_SECRET="new-secret"`} {
		if !strings.Contains(content, want) {
			t.Errorf("saved .env missing %s:\n%s", want, content)
		}
	}
}
