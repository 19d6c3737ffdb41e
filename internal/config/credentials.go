// ABOUTME: X app client credentials loaded from the environment and .env files.
// ABOUTME: Warns when a .env file is readable by group or others; writes it back with 0600.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/2389-research/xbm/internal/storage"
)

const (
	envClientID     = "X_CLIENT_ID"
	envClientSecret = "X_CLIENT_SECRET"
)

// ErrMissingCredentials is returned when the client id or secret is unset.
var ErrMissingCredentials = errors.New("missing X_CLIENT_ID or X_CLIENT_SECRET, run: xbm setup")

// Credentials identify the X developer app.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// LoadCredentials reads X_CLIENT_ID and X_CLIENT_SECRET, first loading
// ~/.config/xbm/.env and then ./.env. Variables already set in the
// environment win. Permission warnings are written to warn.
func LoadCredentials(warn io.Writer) (Credentials, error) {
	var files []string
	if p, err := EnvPath(); err == nil {
		files = append(files, p)
	}
	files = append(files, envFileName)

	for _, path := range files {
		loadEnvFile(path, warn)
	}

	creds := Credentials{
		ClientID:     os.Getenv(envClientID),
		ClientSecret: os.Getenv(envClientSecret),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return creds, ErrMissingCredentials
	}
	return creds, nil
}

func loadEnvFile(path string, warn io.Writer) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	CheckPermissions(path, info.Mode(), warn)
	_ = godotenv.Load(path)
}

// CheckPermissions writes a warning to w if mode lets group or others read path.
func CheckPermissions(path string, mode os.FileMode, w io.Writer) {
	var who string
	switch {
	case mode&0o004 != 0:
		who = "world-readable"
	case mode&0o040 != 0:
		who = "group-readable"
	default:
		return
	}
	_, _ = fmt.Fprintf(w, "WARNING: %s is %s!\n   Run: chmod 600 %s\n   This protects your API credentials from other users.\n", path, who, path)
}

// SaveCredentials writes creds to the .env file at path with 0600 permissions,
// preserving any other variables already in the file.
func SaveCredentials(path string, creds Credentials) error {
	values := map[string]string{}
	if existing, err := godotenv.Read(path); err == nil {
		values = existing
	}
	values[envClientID] = creds.ClientID
	values[envClientSecret] = creds.ClientSecret

	content, err := godotenv.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	return storage.AtomicWriteFile(path, []byte(content+"\n"), 0o600)
}
