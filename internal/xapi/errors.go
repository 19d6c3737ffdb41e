// ABOUTME: Error types returned by the X API client.
// ABOUTME: Separates rate limiting from other request failures and redacts token-like text.
package xapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrRateLimited matches any *RateLimitError.
	ErrRateLimited = errors.New("rate limited")

	// ErrRequestFailed matches any *APIError.
	ErrRequestFailed = errors.New("request failed")
)

const (
	maxMessageLen  = 200
	genericMessage = "Request failed. Please check your credentials and try again."
)

var secretLike = regexp.MustCompile(`\b[A-Za-z0-9]{32,}\b`)

// RateLimitError is returned for HTTP 429 responses.
type RateLimitError struct {
	// Reset is the raw x-rate-limit-reset header (unix seconds), if present.
	Reset string
}

func (e *RateLimitError) Error() string {
	reset := e.Reset
	if reset == "" {
		reset = "unknown"
	}
	return fmt.Sprintf("rate limited, resets at %s", reset)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// APIError is returned for every failed request other than rate limiting.
// StatusCode is zero when no HTTP response was received.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return fmt.Sprintf("X API request failed: %s: %v", e.Message, e.Err)
		}
		return "X API request failed: " + e.Message
	}
	return fmt.Sprintf("X API returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRequestFailed}
	}
	return []error{ErrRequestFailed, e.Err}
}

// problemMessage extracts a user-safe message from an error response body.
func problemMessage(body []byte) string {
	var envelope struct {
		Errors []struct {
			Detail  string `json:"detail"`
			Message string `json:"message"`
		} `json:"errors"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return genericMessage
	}

	var parts []string
	for _, e := range envelope.Errors {
		msg := e.Detail
		if msg == "" {
			msg = e.Message
		}
		parts = append(parts, sanitize(msg))
	}
	if len(parts) == 0 && envelope.Detail != "" {
		parts = append(parts, sanitize(envelope.Detail))
	}
	if len(parts) == 0 {
		return genericMessage
	}
	return strings.Join(parts, "; ")
}

// sanitize redacts long alphanumeric runs and caps the message length.
func sanitize(msg string) string {
	msg = secretLike.ReplaceAllString(msg, "[REDACTED]")
	if r := []rune(msg); len(r) > maxMessageLen {
		msg = string(r[:maxMessageLen])
	}
	return msg
}
