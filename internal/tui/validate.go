// ABOUTME: Offline validation of X app credentials and the OAuth callback port.
// ABOUTME: Checks credential shape and that 127.0.0.1:<port> can be bound for the redirect listener.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
)

const minCredentialLen = 10

var credentialPattern = regexp.MustCompile(`^[A-Za-z0-9_\-:.~]+$`)

// ValidateSetup checks that the client id and secret look like X OAuth 2.0
// credentials and that the callback port is free on the loopback interface.
func ValidateSetup(ctx context.Context, clientID, clientSecret string, port int) error {
	if err := validateCredential("client ID", clientID); err != nil {
		return err
	}
	if err := validateCredential("client secret", clientSecret); err != nil {
		return err
	}
	return checkPort(ctx, port)
}

func validateCredential(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	if len(value) < minCredentialLen {
		return fmt.Errorf("%s looks too short (%d characters)", name, len(value))
	}
	if !credentialPattern.MatchString(value) {
		return fmt.Errorf("%s contains unexpected characters; paste it exactly as shown in the developer portal", name)
	}
	return nil
}

func checkPort(ctx context.Context, port int) error {
	if port < 1 || port > 65535 {
		return errors.New("callback port must be between 1 and 65535")
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("callback port %d is not available: %w", port, err)
	}
	_ = ln.Close()
	return nil
}
