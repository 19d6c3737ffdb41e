// ABOUTME: CLI commands for OAuth 2.0 authentication.
// ABOUTME: Provides login (browser PKCE flow), status, and logout with token revocation.
package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/2389-research/xbm/internal/config"
	"github.com/2389-research/xbm/internal/oauth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "OAuth 2.0 authentication",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize with OAuth 2.0 (opens browser)",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check OAuth 2.0 login status",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke OAuth 2.0 tokens and delete the local token file",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

var loginPort int

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)

	authLoginCmd.Flags().IntVar(&loginPort, "port", 0, fmt.Sprintf("Callback port (default %d, or callback_port from config)", oauth.DefaultPort))
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	port := loginPort
	if port == 0 {
		port = callbackPort()
	}

	auth, err := newAuthenticator(cmd, port)
	if err != nil {
		return err
	}
	tok, err := auth.Login(cmd.Context())
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	out := cmd.ErrOrStderr()
	_, _ = fmt.Fprintln(out, "Logged in successfully.")
	if scope := oauth.Scope(tok); scope != "" {
		_, _ = fmt.Fprintf(out, "Scopes: %s\n", scope)
	}
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	store, err := tokenStore()
	if err != nil {
		return err
	}
	tok, err := store.Load()
	if err != nil {
		if errors.Is(err, oauth.ErrNotLoggedIn) {
			return errors.New("not logged in (no OAuth 2.0 tokens found)")
		}
		return err
	}

	out := cmd.ErrOrStderr()
	if oauth.Expired(tok, time.Now()) {
		_, _ = fmt.Fprintln(out, "Logged in, but access token is expired. It will refresh automatically on next use.")
	} else {
		_, _ = fmt.Fprintln(out, "Logged in (OAuth 2.0 tokens valid).")
	}
	_, _ = fmt.Fprintf(out, "Scopes: %s\n", oauth.Scope(tok))
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	out := cmd.ErrOrStderr()
	store, err := tokenStore()
	if err != nil {
		return err
	}
	if _, err := store.Load(); err != nil {
		_, _ = fmt.Fprintln(out, "Not logged in.")
		return nil
	}

	auth, err := newAuthenticator(cmd, callbackPort())
	if err != nil {
		// Without credentials nothing can be revoked; still drop the local tokens.
		globalLogger.Debug("skipping token revocation", "error", err)
		if err := store.Delete(); err != nil {
			return fmt.Errorf("failed to delete tokens: %w", err)
		}
		_, _ = fmt.Fprintln(out, "Logged out (local tokens deleted).")
		return nil
	}

	if err := auth.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("failed to delete tokens: %w", err)
	}
	_, _ = fmt.Fprintln(out, "Logged out (tokens revoked and deleted).")
	return nil
}

func tokenStore() (*oauth.TokenStore, error) {
	path, err := config.TokenPath()
	if err != nil {
		return nil, err
	}
	return oauth.NewTokenStore(path), nil
}
