// ABOUTME: One-shot local HTTP listener that receives the OAuth authorization redirect.
// ABOUTME: Validates state, reports provider errors, and shuts down after the first callback.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"time"
)

type callbackResult struct {
	code string
	err  error
}

// waitForCallback serves ln until a /callback request arrives or ctx ends,
// returning the authorization code.
func waitForCallback(ctx context.Context, ln net.Listener, state string) (string, error) {
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		res := parseCallback(r, state)
		if res.err != nil {
			respond(w, http.StatusBadRequest, res.err.Error())
		} else {
			respond(w, http.StatusOK, "Authorization successful! You can close this tab and return to the terminal.")
		}
		select {
		case results <- res:
		default:
		}
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusBadRequest, "Invalid path. Expected /callback.")
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	select {
	case res := <-results:
		return res.code, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrCallbackTimeout
		}
		return "", ctx.Err()
	}
}

func parseCallback(r *http.Request, state string) callbackResult {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		if desc := q.Get("error_description"); desc != "" {
			e += ": " + desc
		}
		return callbackResult{err: fmt.Errorf("%w: %s", ErrAuthorizationDenied, e)}
	}

	code, got := q.Get("code"), q.Get("state")
	if code == "" || got == "" {
		return callbackResult{err: errors.New("missing code or state parameter")}
	}
	if got != state {
		return callbackResult{err: ErrStateMismatch}
	}
	return callbackResult{code: code}
}

func respond(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, "<html><body><h2>%s</h2></body></html>", html.EscapeString(message))
}
