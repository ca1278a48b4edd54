package credential

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tailored-agentic-units/concierge/observability"
)

const (
	// DefaultUpstreamURL is the OpenAI endpoint that mints client secrets.
	DefaultUpstreamURL = "https://api.openai.com/v1/realtime/client_secrets"
	// DefaultModel is the realtime model requested for new sessions.
	DefaultModel = "gpt-realtime"
)

// ErrMissingAPIKey is returned when a broker is configured without a key.
var ErrMissingAPIKey = errors.New("broker api key is empty")

// HandlerConfig configures the broker. APIKey is the long-lived upstream
// secret; it never leaves the broker process.
type HandlerConfig struct {
	APIKey      string
	Model       string
	UpstreamURL string
	HTTPClient  *http.Client
	Observer    observability.Observer
}

type issuer struct {
	apiKey   string
	model    string
	upstream string
	http     *http.Client
	observer observability.Observer
}

func newIssuer(cfg HandlerConfig) (*issuer, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	iss := &issuer{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		upstream: cfg.UpstreamURL,
		http:     cfg.HTTPClient,
		observer: cfg.Observer,
	}
	if iss.model == "" {
		iss.model = DefaultModel
	}
	if iss.upstream == "" {
		iss.upstream = DefaultUpstreamURL
	}
	if iss.http == nil {
		iss.http = http.DefaultClient
	}
	if iss.observer == nil {
		iss.observer = observability.Discard
	}
	return iss, nil
}

// issue asks the upstream for a client secret. It returns the upstream status
// and raw body, or an error when no response was received.
func (iss *issuer) issue(ctx context.Context) (int, []byte, error) {
	reqBody, err := json.Marshal(map[string]any{
		"session": map[string]any{
			"type":  "realtime",
			"model": iss.model,
		},
	})
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, iss.upstream, bytes.NewReader(reqBody))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+iss.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := iss.http.Do(req)
	if err != nil {
		observability.Emit(ctx, iss.observer, EventIssueError, observability.LevelError, "credential.issue",
			map[string]any{"error": err.Error()})
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.Emit(ctx, iss.observer, EventIssueError, observability.LevelError, "credential.issue",
			map[string]any{"error": err.Error(), "status": resp.StatusCode})
		return 0, nil, fmt.Errorf("read upstream body: %w", err)
	}

	level := observability.LevelInfo
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		level = observability.LevelWarning
	}
	observability.Emit(ctx, iss.observer, EventIssue, level, "credential.issue",
		map[string]any{"status": resp.StatusCode, "model": iss.model})

	return resp.StatusCode, body, nil
}

// NewHandler returns the broker's HTTP endpoint. POST requests are exchanged
// for an upstream client secret: upstream failures are relayed with their
// status and body untouched, and a transport failure becomes a 500.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	iss, err := newIssuer(cfg)
	if err != nil {
		return nil, err
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		status, body, err := iss.issue(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "Failed to create ephemeral key")
			return
		}

		if status < 200 || status > 299 {
			w.WriteHeader(status)
			w.Write(body)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}), nil
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
