// Package credential obtains short-lived realtime session credentials from a
// trusted broker, and implements that broker.
//
// The client never holds a long-lived secret. Every session start fetches a
// fresh credential; nothing is cached or retried here.
package credential

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/tailored-agentic-units/concierge/observability"
)

const (
	defaultURL  = "http://localhost:8787"
	defaultPath = "/api/session"
)

// Event types emitted by the client. Secret values never appear in Data.
const (
	EventAcquireStart    observability.EventType = "credential.acquire.start"
	EventAcquireComplete observability.EventType = "credential.acquire.complete"
	EventAcquireError    observability.EventType = "credential.acquire.error"
	EventIssue           observability.EventType = "credential.issue"
	EventIssueError      observability.EventType = "credential.issue.error"
)

// Credential is an opaque, single-use session token. Its expiry is enforced
// by the issuer and not inspected here.
type Credential struct {
	Value string
}

// String redacts the token so a Credential is safe to print.
func (c Credential) String() string {
	if c.Value == "" {
		return "credential(empty)"
	}
	return "credential(redacted)"
}

// Config locates the broker.
type Config struct {
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// DefaultConfig points at a broker on localhost.
func DefaultConfig() Config {
	return Config{URL: defaultURL, Path: defaultPath}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.URL != "" {
		c.URL = source.URL
	}
	if source.Path != "" {
		c.Path = source.Path
	}
}

// Endpoint joins URL and Path.
func (c Config) Endpoint() string {
	path := c.Path
	if path == "" {
		path = defaultPath
	}
	return strings.TrimRight(c.URL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObserver sets the event observer.
func WithObserver(o observability.Observer) Option {
	return func(c *Client) { c.observer = o }
}

// Client requests credentials from the broker.
type Client struct {
	endpoint string
	http     *http.Client
	observer observability.Observer
}

// NewClient creates a Client for the configured broker.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		endpoint: cfg.Endpoint(),
		http:     http.DefaultClient,
		observer: observability.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Acquire performs one POST to the broker and extracts the secret from either
// {"value": ...} or {"client_secret": {"value": ...}}.
func (c *Client) Acquire(ctx context.Context) (Credential, error) {
	observability.Emit(ctx, c.observer, EventAcquireStart, observability.LevelVerbose, "credential.Acquire",
		map[string]any{"endpoint": c.endpoint})

	cred, err := c.acquire(ctx)
	if err != nil {
		data := map[string]any{"endpoint": c.endpoint, "error": err.Error()}
		var ce *Error
		if errors.As(err, &ce) {
			data["reason"] = string(ce.Reason)
			data["status"] = ce.Status
		}
		observability.Emit(ctx, c.observer, EventAcquireError, observability.LevelWarning, "credential.Acquire", data)
		return Credential{}, err
	}

	observability.Emit(ctx, c.observer, EventAcquireComplete, observability.LevelInfo, "credential.Acquire",
		map[string]any{"endpoint": c.endpoint})
	return cred, nil
}

func (c *Client) acquire(ctx context.Context) (Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader("{}"))
	if err != nil {
		return Credential{}, &Error{Reason: ReasonTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Credential{}, &Error{Reason: ReasonTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credential{}, &Error{Reason: ReasonTransport, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Credential{}, &Error{Reason: ReasonRejected, Status: resp.StatusCode, Body: string(body)}
	}

	value, err := secretValue(body)
	if err != nil {
		return Credential{}, &Error{Reason: ReasonMalformed, Status: resp.StatusCode, Err: err}
	}
	if value == "" {
		return Credential{}, &Error{Reason: ReasonMalformed, Status: resp.StatusCode}
	}
	return Credential{Value: value}, nil
}

// secretValue tries the flat shape first, then the nested one. An empty
// string means neither was present.
func secretValue(body []byte) (string, error) {
	var doc struct {
		Value        string `json:"value"`
		ClientSecret *struct {
			Value string `json:"value"`
		} `json:"client_secret"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", err
	}
	if doc.Value != "" {
		return doc.Value, nil
	}
	if doc.ClientSecret != nil {
		return doc.ClientSecret.Value, nil
	}
	return "", nil
}
