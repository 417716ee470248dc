// Package cliauth drives the CLI side of the browser-delegated login
// handshake: start a session, send the user to the browser, poll until the
// storefront completes the session, and hand back the minted token. The
// caller persists the token; on interrupt or timeout nothing is persisted
// and the pending session is left to expire server-side.
package cliauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/oonkoo/oonkoo-registry/internal/auth"
	"github.com/oonkoo/oonkoo-registry/internal/registry"
)

const (
	// DefaultPollInterval is how often the CLI checks the pending session.
	DefaultPollInterval = 2 * time.Second
	// DefaultTimeout bounds the whole login; it matches the server-side
	// session TTL so the CLI gives up at the same time the session expires.
	DefaultTimeout = 5 * time.Minute
)

// ErrAuthTimeout means the user did not finish browser sign-in in time.
var ErrAuthTimeout = errors.New("login timed out; run the command again to retry")

// Client is the subset of the registry client the handshake needs.
type Client interface {
	StartCLISession(ctx context.Context) (*registry.CLISessionStart, error)
	PollCLISession(ctx context.Context, sessionID string) (*registry.CLISessionPoll, error)
}

// Options tunes a Login run. Zero values select the defaults.
type Options struct {
	PollInterval time.Duration
	Timeout      time.Duration
	// OpenBrowser launches the verify URL; nil uses the platform opener.
	// A failed open is not fatal because the URL is always printed.
	OpenBrowser func(url string) error
	// Out receives user-facing progress messages.
	Out io.Writer
}

// Login runs the browser handshake and returns the minted CLI token. The
// context cancels the wait (Ctrl-C); the configured timeout maps to
// ErrAuthTimeout.
func Login(ctx context.Context, client Client, opts Options) (string, error) {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	open := opts.OpenBrowser
	if open == nil {
		open = openBrowser
	}

	start, err := client.StartCLISession(ctx)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(out, "Opening browser to complete sign-in:\n\n  %s\n\n", start.VerifyURL)
	if err := open(start.VerifyURL); err != nil {
		fmt.Fprintf(out, "Could not open a browser; visit the URL above manually.\n")
	}
	fmt.Fprintf(out, "Waiting for sign-in to complete...\n")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", ErrAuthTimeout
			}
			return "", ctx.Err()
		case <-ticker.C:
			poll, err := client.PollCLISession(ctx, start.SessionID)
			if err != nil {
				var apiErr *registry.APIError
				if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
					// The session expired server-side before completion.
					return "", ErrAuthTimeout
				}
				if errors.Is(err, context.DeadlineExceeded) {
					return "", ErrAuthTimeout
				}
				return "", err
			}
			if poll.Status == "complete" {
				return poll.Token, nil
			}
		}
	}
}

// ValidateAPIKey checks an API key's shape offline so a typo is caught before
// anything is persisted. No network, no storage.
func ValidateAPIKey(key string) error {
	if auth.Classify(key) != auth.TokenAPIKey {
		return fmt.Errorf("not a valid OonkoO API key (expected %s… format)", auth.APIKeyPrefix)
	}
	return nil
}

// openBrowser launches the default browser for the current platform.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
