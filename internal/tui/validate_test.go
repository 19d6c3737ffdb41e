// ABOUTME: Tests for credential shape and callback port validation.
// ABOUTME: Binds real loopback listeners to verify busy-port detection.
package tui

import (
	"context"
	"net"
	"strings"
	"testing"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}

func TestValidateSetup_Success(t *testing.T) {
	err := ValidateSetup(context.Background(), "M1M5R3BMVy13QmpScXkzTUt5OE46MTpjaQ", "s3cr3t-Value_with.dots", freePort(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateSetup_BadCredentials(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
		want   string
	}{
		{"empty id", "", "long-enough-secret", "client ID is required"},
		{"short id", "abc", "long-enough-secret", "client ID looks too short"},
		{"space in id", "client id with spaces", "long-enough-secret", "client ID contains unexpected characters"},
		{"empty secret", "long-enough-client", "", "client secret is required"},
		{"quoted secret", "long-enough-client", `"quoted-secret"`, "client secret contains unexpected characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSetup(context.Background(), tt.id, tt.secret, freePort(t))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestValidateSetup_PortOutOfRange(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		err := ValidateSetup(context.Background(), "long-enough-client", "long-enough-secret", port)
		if err == nil || !strings.Contains(err.Error(), "between 1 and 65535") {
			t.Errorf("port %d: expected range error, got %v", port, err)
		}
	}
}

func TestValidateSetup_PortBusy(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = ln.Close() }()
	port := ln.Addr().(*net.TCPAddr).Port

	err = ValidateSetup(context.Background(), "long-enough-client", "long-enough-secret", port)
	if err == nil {
		t.Fatal("expected error for a port that is already bound")
	}
	if !strings.Contains(err.Error(), "not available") {
		t.Errorf("unexpected error: %v", err)
	}
}
