// ABOUTME: On-disk OAuth token file and a token source that refreshes and re-saves it.
// ABOUTME: Tokens are written atomically with owner-only permissions.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/2389-research/xbm/internal/storage"
)

// tokenFile is the JSON layout of oauth2_tokens.json.
type tokenFile struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresAt    float64 `json:"expires_at"`
	Scope        string  `json:"scope"`
}

// TokenStore reads and writes the OAuth token file.
type TokenStore struct {
	path string
}

// NewTokenStore creates a store backed by the file at path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Path returns the backing file path.
func (s *TokenStore) Path() string {
	return s.path
}

// Load returns the saved token. A missing or invalid file yields ErrNotLoggedIn.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("%w: reading token file: %v", ErrNotLoggedIn, err)
	}

	var f tokenFile
	if err := json.Unmarshal(data, &f); err != nil || f.AccessToken == "" {
		return nil, fmt.Errorf("%w: token file is invalid", ErrNotLoggedIn)
	}

	tok := &oauth2.Token{
		AccessToken:  f.AccessToken,
		RefreshToken: f.RefreshToken,
		TokenType:    "Bearer",
	}
	if f.ExpiresAt > 0 {
		sec, frac := math.Modf(f.ExpiresAt)
		tok.Expiry = time.Unix(int64(sec), int64(frac*1e9))
	}
	return tok.WithExtra(map[string]any{"scope": f.Scope}), nil
}

// Save atomically replaces the token file with tok.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	f := tokenFile{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Scope:        Scope(tok),
	}
	if f.Scope == "" {
		f.Scope = strings.Join(Scopes, " ")
	}
	if !tok.Expiry.IsZero() {
		f.ExpiresAt = float64(tok.Expiry.UnixNano()) / 1e9
	}

	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}
	return storage.AtomicWriteFile(s.path, data, 0o600)
}

// Delete removes the token file. A missing file is not an error.
func (s *TokenStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// Expired reports whether tok needs a refresh at now.
func Expired(tok *oauth2.Token, now time.Time) bool {
	if tok.AccessToken == "" {
		return true
	}
	if tok.Expiry.IsZero() {
		return false
	}
	return !now.Add(refreshBuffer).Before(tok.Expiry)
}

// persistingSource refreshes through conf and saves every new token pair.
type persistingSource struct {
	ctx   context.Context
	conf  *oauth2.Config
	store *TokenStore
	now   func() time.Time

	mu      sync.Mutex
	current *oauth2.Token
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !Expired(s.current, s.now()) {
		return s.current, nil
	}
	if s.current.RefreshToken == "" {
		return nil, fmt.Errorf("%w: access token expired and no refresh token is stored", ErrNotLoggedIn)
	}

	fresh, err := s.conf.TokenSource(s.ctx, &oauth2.Token{RefreshToken: s.current.RefreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed, your refresh token may have expired (run: xbm auth login): %w", err)
	}
	if Scope(fresh) == "" {
		fresh = fresh.WithExtra(map[string]any{"scope": Scope(s.current)})
	}
	if err := s.store.Save(fresh); err != nil {
		return nil, fmt.Errorf("saving refreshed tokens: %w", err)
	}
	s.current = fresh
	return fresh, nil
}
