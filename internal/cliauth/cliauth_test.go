package cliauth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/oonkoo/oonkoo-registry/internal/registry"
)

// fakeClient completes the handshake after a configurable number of polls.
type fakeClient struct {
	completeAfter int
	polls         int
	pollErr       error
}

func (f *fakeClient) StartCLISession(context.Context) (*registry.CLISessionStart, error) {
	return &registry.CLISessionStart{
		SessionID: "abc123",
		VerifyURL: "https://oonkoo.example/cli-auth?session=abc123",
		ExpiresIn: 300,
	}, nil
}

func (f *fakeClient) PollCLISession(context.Context, string) (*registry.CLISessionPoll, error) {
	f.polls++
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	if f.polls >= f.completeAfter {
		return &registry.CLISessionPoll{Status: "complete", Token: "cli_minted"}, nil
	}
	return &registry.CLISessionPoll{Status: "pending"}, nil
}

func fastOptions(out *strings.Builder) Options {
	return Options{
		PollInterval: time.Millisecond,
		Timeout:      time.Second,
		OpenBrowser:  func(string) error { return nil },
		Out:          out,
	}
}

func TestLogin_CompletesAfterPolls(t *testing.T) {
	client := &fakeClient{completeAfter: 3}
	var out strings.Builder

	token, err := Login(context.Background(), client, fastOptions(&out))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "cli_minted" {
		t.Errorf("token = %q", token)
	}
	if client.polls != 3 {
		t.Errorf("polls = %d, want 3", client.polls)
	}
	if !strings.Contains(out.String(), "https://oonkoo.example/cli-auth?session=abc123") {
		t.Error("verify URL not shown to the user")
	}
}

func TestLogin_Timeout(t *testing.T) {
	client := &fakeClient{completeAfter: 1 << 30} // never completes
	var out strings.Builder
	opts := fastOptions(&out)
	opts.Timeout = 20 * time.Millisecond

	_, err := Login(context.Background(), client, opts)
	if !errors.Is(err, ErrAuthTimeout) {
		t.Errorf("error = %v, want ErrAuthTimeout", err)
	}
}

func TestLogin_CancelledByUser(t *testing.T) {
	client := &fakeClient{completeAfter: 1 << 30}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	var out strings.Builder
	_, err := Login(ctx, client, fastOptions(&out))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestLogin_ExpiredSessionIsTimeout(t *testing.T) {
	client := &fakeClient{pollErr: &registry.APIError{Status: 404, Message: "session not found or expired"}}
	var out strings.Builder

	_, err := Login(context.Background(), client, fastOptions(&out))
	if !errors.Is(err, ErrAuthTimeout) {
		t.Errorf("error = %v, want ErrAuthTimeout", err)
	}
}

func TestLogin_BrowserFailureIsNotFatal(t *testing.T) {
	client := &fakeClient{completeAfter: 1}
	var out strings.Builder
	opts := fastOptions(&out)
	opts.OpenBrowser = func(string) error { return errors.New("no display") }

	token, err := Login(context.Background(), client, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "cli_minted" {
		t.Errorf("token = %q", token)
	}
	if !strings.Contains(out.String(), "manually") {
		t.Error("expected fallback hint when the browser cannot open")
	}
}

func TestValidateAPIKey(t *testing.T) {
	valid := "oonkoo_" + strings.Repeat("ab12", 16)
	if err := ValidateAPIKey(valid); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}

	for _, bad := range []string{
		"",
		"oonkoo_short",
		"cli_" + strings.Repeat("ab12", 16), // CLI token, not an API key
		strings.Repeat("ab12", 16),
	} {
		if err := ValidateAPIKey(bad); err == nil {
			t.Errorf("ValidateAPIKey(%q) = nil, want error", bad)
		}
	}
}
