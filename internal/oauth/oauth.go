// ABOUTME: OAuth 2.0 Authorization Code flow with PKCE against the X authorization server.
// ABOUTME: Handles login via a local callback, refreshing token sources, and logout with revocation.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	AuthorizeURL = "https://x.com/i/oauth2/authorize"
	TokenURL     = "https://api.x.com/2/oauth2/token"
	RevokeURL    = "https://api.x.com/2/oauth2/revoke"

	// DefaultPort is the local callback port registered with the X app.
	DefaultPort = 8739

	// DefaultCallbackTimeout bounds how long Login waits for the browser redirect.
	DefaultCallbackTimeout = 120 * time.Second

	requestTimeout = 30 * time.Second
	refreshBuffer  = 60 * time.Second
)

// Scopes requested at login. offline.access is required for refresh tokens.
var Scopes = []string{"tweet.read", "users.read", "bookmark.read", "bookmark.write", "offline.access"}

var (
	ErrNotLoggedIn         = errors.New("not logged in with OAuth 2.0, run: xbm auth login")
	ErrStateMismatch       = errors.New("state mismatch, possible CSRF attempt; authorization aborted")
	ErrCallbackTimeout     = errors.New("authorization timed out waiting for the browser callback")
	ErrAuthorizationDenied = errors.New("authorization denied")
)

// Config holds the X app credentials and endpoint overrides.
type Config struct {
	ClientID     string
	ClientSecret string
	Port         int

	// Endpoint overrides; empty values use the X defaults.
	AuthURL   string
	TokenURL  string
	RevokeURL string
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.AuthURL == "" {
		c.AuthURL = AuthorizeURL
	}
	if c.TokenURL == "" {
		c.TokenURL = TokenURL
	}
	if c.RevokeURL == "" {
		c.RevokeURL = RevokeURL
	}
	return c
}

// Authenticator runs the login flow and produces authenticated HTTP clients.
type Authenticator struct {
	cfg             Config
	store           *TokenStore
	http            *http.Client
	openBrowser     func(string) error
	out             io.Writer
	now             func() time.Time
	callbackTimeout time.Duration
	log             *slog.Logger
}

// Option configures optional Authenticator behaviour.
type Option func(*Authenticator)

// WithHTTPClient sets the client used for token exchange and revocation.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Authenticator) {
		a.http = c
	}
}

// WithBrowserOpener replaces the platform browser launcher.
func WithBrowserOpener(open func(string) error) Option {
	return func(a *Authenticator) {
		a.openBrowser = open
	}
}

// WithOutput sets where login instructions are printed.
func WithOutput(w io.Writer) Option {
	return func(a *Authenticator) {
		a.out = w
	}
}

// WithClock sets the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.now = now
	}
}

// WithCallbackTimeout overrides DefaultCallbackTimeout.
func WithCallbackTimeout(d time.Duration) Option {
	return func(a *Authenticator) {
		a.callbackTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Authenticator) {
		a.log = l
	}
}

// NewAuthenticator creates an Authenticator persisting tokens in store.
func NewAuthenticator(cfg Config, store *TokenStore, opts ...Option) *Authenticator {
	a := &Authenticator{
		cfg:             cfg.withDefaults(),
		store:           store,
		http:            &http.Client{Timeout: requestTimeout},
		openBrowser:     OpenBrowser,
		out:             io.Discard,
		now:             time.Now,
		callbackTimeout: DefaultCallbackTimeout,
		log:             slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Authenticator) oauth2Config(port int) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   a.cfg.AuthURL,
			TokenURL:  a.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		RedirectURL: fmt.Sprintf("http://127.0.0.1:%d/callback", port),
		Scopes:      Scopes,
	}
}

// exchangeContext makes x/oauth2 use the authenticator's HTTP client.
func (a *Authenticator) exchangeContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.http)
}

// Login opens the browser to the X consent page, waits for the redirect on
// the local callback port, exchanges the code, and saves the tokens.
func (a *Authenticator) Login(ctx context.Context) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", a.cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listening for OAuth callback on port %d: %w", a.cfg.Port, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	conf := a.oauth2Config(port)

	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()
	authURL := conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	_, _ = fmt.Fprintf(a.out, "Opening browser for authorization...\nIf the browser doesn't open, visit:\n%s\n", authURL)
	if err := a.openBrowser(authURL); err != nil {
		a.log.Debug("could not open browser", "error", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, a.callbackTimeout)
	defer cancel()
	code, err := waitForCallback(waitCtx, ln, state)
	if err != nil {
		return nil, err
	}

	tok, err := conf.Exchange(a.exchangeContext(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	if err := a.store.Save(tok); err != nil {
		return nil, fmt.Errorf("saving tokens: %w", err)
	}
	return tok, nil
}

// TokenSource returns a source that refreshes the stored token when it is
// within a minute of expiry and saves every refreshed pair.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	return &persistingSource{
		ctx:     a.exchangeContext(ctx),
		conf:    a.oauth2Config(a.cfg.Port),
		store:   a.store,
		now:     a.now,
		current: tok,
	}, nil
}

// Client returns an HTTP client that authenticates requests with the stored
// token, refreshing it as needed.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	ts, err := a.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	c := oauth2.NewClient(ctx, ts)
	c.Timeout = requestTimeout
	return c, nil
}

// Logout revokes the stored tokens on a best-effort basis and deletes the
// local token file.
func (a *Authenticator) Logout(ctx context.Context) error {
	if tok, err := a.store.Load(); err == nil {
		for _, t := range []struct{ hint, value string }{
			{"access_token", tok.AccessToken},
			{"refresh_token", tok.RefreshToken},
		} {
			if t.value == "" {
				continue
			}
			if err := a.Revoke(ctx, t.value, t.hint); err != nil {
				a.log.Debug("token revocation failed", "type", t.hint, "error", err)
			}
		}
	}
	return a.store.Delete()
}

// Revoke asks the authorization server to invalidate token.
func (a *Authenticator) Revoke(ctx context.Context, token, hint string) error {
	form := url.Values{}
	form.Set("token", token)
	if hint != "" {
		form.Set("token_type_hint", hint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.RevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(url.QueryEscape(a.cfg.ClientID), url.QueryEscape(a.cfg.ClientSecret))

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("revoke endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Scope returns the granted scope string recorded on tok, if any.
func Scope(tok *oauth2.Token) string {
	if s, ok := tok.Extra("scope").(string); ok {
		return s
	}
	return ""
}
