// Package registry is the CLI's HTTP client for the component registry.
// The client performs no caching and no retries: a component add is a short
// interactive operation, and a registry outage should surface immediately
// rather than after a retry storm.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oonkoo/oonkoo-registry/internal/db/models"
)

// DefaultBaseURL is the production registry endpoint.
const DefaultBaseURL = "https://registry.oonkoo.com"

// ErrRegistryUnavailable indicates a network failure or a server-side (5xx)
// error. Callers map it to its own exit code so users can tell "the registry
// is down" apart from "your request was wrong".
var ErrRegistryUnavailable = errors.New("registry unavailable")

// APIError is a non-5xx error response from the registry.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("registry error (HTTP %d): %s", e.Status, e.Message)
}

// Client talks to the registry's HTTP API.
type Client struct {
	baseURL string
	token   string // optional bearer credential
	httpc   *http.Client
}

// New creates a registry client. An empty baseURL uses the production
// registry; an empty token makes anonymous requests.
func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// IndexFilter narrows a FetchIndex call. Zero values mean "no filter".
type IndexFilter struct {
	Query    string
	Type     string
	Tier     string
	Category string
	Tags     []string
	Sort     string
	Page     int
	Limit    int
}

// PageMeta describes one page of index results.
type PageMeta struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	Total    int  `json:"total"`
	HasMore  bool `json:"hasMore"`
}

// Identity is the account a verified token belongs to.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	HasPro bool   `json:"hasPro"`
}

// CLISessionStart is the response to starting a browser login handshake.
type CLISessionStart struct {
	SessionID string `json:"sessionId"`
	VerifyURL string `json:"verifyUrl"`
	ExpiresIn int    `json:"expiresIn"` // seconds
}

// CLISessionPoll is one poll of a pending handshake.
type CLISessionPoll struct {
	Status string `json:"status"` // pending | complete
	Token  string `json:"token"`  // set once, when status is complete
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		// Context cancellation is the caller's doing, not an outage.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d", ErrRegistryUnavailable, resp.StatusCode)
	}
	return resp, nil
}

// decodeError turns a non-2xx response into an *APIError.
func decodeError(resp *http.Response) error {
	defer resp.Body.Close()
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Error == "" {
		payload.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: payload.Error}
}

// FetchIndex retrieves one page of the published component index.
func (c *Client) FetchIndex(ctx context.Context, filter IndexFilter) ([]models.Component, PageMeta, error) {
	query := url.Values{}
	set := func(key, value string) {
		if value != "" {
			query.Set(key, value)
		}
	}
	set("q", filter.Query)
	set("type", filter.Type)
	set("tier", filter.Tier)
	set("category", filter.Category)
	set("sort", filter.Sort)
	if len(filter.Tags) > 0 {
		query.Set("tags", strings.Join(filter.Tags, ","))
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	resp, err := c.do(ctx, http.MethodGet, "/registry", query, nil)
	if err != nil {
		return nil, PageMeta{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, PageMeta{}, decodeError(resp)
	}
	defer resp.Body.Close()

	var payload struct {
		Components []models.Component `json:"components"`
		Meta       PageMeta           `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, PageMeta{}, fmt.Errorf("failed to decode index: %w", err)
	}
	return payload.Components, payload.Meta, nil
}

// FetchComponent retrieves one full component descriptor including files.
// Returns (nil, nil) when the slug does not exist.
func (c *Client) FetchComponent(ctx context.Context, slug string) (*models.Component, error) {
	resp, err := c.do(ctx, http.MethodGet, "/registry/"+url.PathEscape(slug), nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	defer resp.Body.Close()

	var component models.Component
	if err := json.NewDecoder(resp.Body).Decode(&component); err != nil {
		return nil, fmt.Errorf("failed to decode component %s: %w", slug, err)
	}
	return &component, nil
}

// VerifyToken asks the registry who the client's bearer token belongs to.
func (c *Client) VerifyToken(ctx context.Context) (*Identity, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/verify", nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	defer resp.Body.Close()

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity: %w", err)
	}
	return &identity, nil
}

// StartCLISession begins the browser login handshake.
func (c *Client) StartCLISession(ctx context.Context) (*CLISessionStart, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/cli/start", nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	defer resp.Body.Close()

	var start CLISessionStart
	if err := json.NewDecoder(resp.Body).Decode(&start); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &start, nil
}

// PollCLISession checks a pending handshake. The token in a complete response
// is returned by the server exactly once.
func (c *Client) PollCLISession(ctx context.Context, sessionID string) (*CLISessionPoll, error) {
	query := url.Values{"session_id": {sessionID}}
	resp, err := c.do(ctx, http.MethodGet, "/auth/cli/poll", query, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	defer resp.Body.Close()

	var poll CLISessionPoll
	if err := json.NewDecoder(resp.Body).Decode(&poll); err != nil {
		return nil, fmt.Errorf("failed to decode poll response: %w", err)
	}
	return &poll, nil
}
