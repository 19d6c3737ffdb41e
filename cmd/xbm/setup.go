// ABOUTME: Cobra command for interactive X app credential setup.
// ABOUTME: Launches a bubbletea TUI wizard and saves credentials to the config directory.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/xbm/internal/config"
	"github.com/2389-research/xbm/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Register your X developer app credentials",
	Long: `Interactive wizard to store X_CLIENT_ID and X_CLIENT_SECRET in
~/.config/xbm/.env and choose the OAuth callback port.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg := globalConfig
	if cfg == nil {
		cfg = &config.Config{}
	}

	// Pre-fill from whatever is already configured; missing values are fine here.
	creds, _ := config.LoadCredentials(cmd.ErrOrStderr())
	model := tui.NewSetupModel(creds.ClientID, creds.ClientSecret, cfg.CallbackPort)

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.SetupModel)
	if !final.ShouldSave() {
		fmt.Println("Setup cancelled.")
		return nil
	}

	clientID, clientSecret, port := final.Result()
	envPath, err := config.EnvPath()
	if err != nil {
		return err
	}
	if err := config.SaveCredentials(envPath, config.Credentials{ClientID: clientID, ClientSecret: clientSecret}); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	if port > 0 && port != cfg.CallbackPort {
		cfg.CallbackPort = port
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}

	// The saved file wins over stale values on the next run.
	_ = os.Unsetenv("X_CLIENT_ID")
	_ = os.Unsetenv("X_CLIENT_SECRET")

	fmt.Printf("Credentials saved to %s\n", envPath)
	fmt.Printf("Register http://127.0.0.1:%d/callback as a callback URL, then run: xbm auth login\n", callbackPort())
	return nil
}
