// ABOUTME: Root Cobra command and global flags for the xbm CLI.
// ABOUTME: Loads config, sets up logging and telemetry, and builds the API client on demand.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/2389-research/xbm/internal/bookmarks"
	"github.com/2389-research/xbm/internal/config"
	"github.com/2389-research/xbm/internal/format"
	"github.com/2389-research/xbm/internal/oauth"
	"github.com/2389-research/xbm/internal/storage"
	"github.com/2389-research/xbm/internal/telemetry"
	"github.com/2389-research/xbm/internal/xapi"
)

var globalConfig *config.Config
var globalLogger = slog.New(slog.DiscardHandler)
var globalShutdown telemetry.ShutdownFunc

// Global flags
var (
	flagJSON     bool
	flagPlain    bool
	flagMarkdown bool
	flagVerbose  bool
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:   "xbm",
	Short: "Manage your X bookmarks from the terminal",
	Long: `xbm lists, adds, and removes X (Twitter) bookmarks.

It keeps a small local index of when each bookmark was first seen so that
--since and --until can answer date-range queries the X API cannot.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg

		shutdown, err := telemetry.Setup(cmd.Context(), telemetry.Config{
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			Insecure:     cfg.Telemetry.Insecure,
			ServiceName:  cfg.Telemetry.ServiceName,
			Headers:      cfg.Telemetry.Headers,
		})
		if err != nil {
			return fmt.Errorf("failed to set up telemetry: %w", err)
		}
		globalShutdown = shutdown

		level := cfg.SlogLevel()
		if flagDebug {
			level = slog.LevelDebug
		}
		var handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		if cfg.HasTelemetry() {
			handler = telemetry.NewHandler(handler, "xbm")
		}
		globalLogger = slog.New(handler)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagJSON, "json", "j", false, "JSON output")
	pf.BoolVarP(&flagPlain, "plain", "p", false, "TSV output for piping")
	pf.BoolVarP(&flagMarkdown, "markdown", "m", false, "Markdown output")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose output (metrics, timestamps, metadata)")
	pf.BoolVar(&flagDebug, "debug", false, "Log debug details to stderr")
}

// shutdownTelemetry flushes telemetry. It runs after the command returns,
// including when the command failed.
func shutdownTelemetry() {
	if globalShutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := globalShutdown(ctx); err != nil {
		globalLogger.Warn("telemetry shutdown failed", "error", err)
	}
	globalShutdown = nil
}

func newPrinter(cmd *cobra.Command) *format.Printer {
	mode := format.ModeFromFlags(flagJSON, flagPlain, flagMarkdown)
	return format.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode, flagVerbose)
}

func callbackPort() int {
	if globalConfig != nil && globalConfig.CallbackPort > 0 {
		return globalConfig.CallbackPort
	}
	return oauth.DefaultPort
}

// newAuthenticator loads client credentials and the token store.
func newAuthenticator(cmd *cobra.Command, port int) (*oauth.Authenticator, error) {
	creds, err := config.LoadCredentials(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	tokenPath, err := config.TokenPath()
	if err != nil {
		return nil, err
	}
	return oauth.NewAuthenticator(
		oauth.Config{ClientID: creds.ClientID, ClientSecret: creds.ClientSecret, Port: port},
		oauth.NewTokenStore(tokenPath),
		oauth.WithOutput(cmd.ErrOrStderr()),
		oauth.WithLogger(globalLogger),
	), nil
}

// newAPIClient returns an X API client authenticated with the stored token.
func newAPIClient(cmd *cobra.Command) (*xapi.Client, error) {
	auth, err := newAuthenticator(cmd, callbackPort())
	if err != nil {
		return nil, err
	}
	httpClient, err := auth.Client(cmd.Context())
	if err != nil {
		return nil, err
	}
	return xapi.New(httpClient,
		xapi.WithBaseURL(globalConfig.APIBaseURL),
		xapi.WithLogger(globalLogger),
	), nil
}

// newIndexStore opens the first-seen index at the configured path.
func newIndexStore() (*storage.IndexStore, error) {
	path, err := globalConfig.GetStatePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state path: %w", err)
	}
	return storage.NewIndexStore(path, storage.WithRetentionDays(globalConfig.Sync.RetentionDays)), nil
}

func newSyncer(client *xapi.Client) *bookmarks.Syncer {
	return bookmarks.NewSyncer(client,
		bookmarks.WithMaxPages(globalConfig.Sync.MaxPages),
		bookmarks.WithLogger(globalLogger),
	)
}
