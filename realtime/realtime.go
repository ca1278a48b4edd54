// Package realtime defines the contract between the concierge and a realtime
// speech agent, and provides an OpenAI Realtime implementation over
// websockets.
//
// A Conn exposes the agent's conversation history as an ordered list of
// items. Items are appended at the tail and updated in place as the server
// finalizes them; existing items are never reordered or removed.
package realtime

import (
	"context"

	"github.com/tailored-agentic-units/concierge/credential"
	"github.com/tailored-agentic-units/concierge/observability"
)

// Status is the lifecycle state of a history item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusIncomplete Status = "incomplete"
	StatusCompleted  Status = "completed"
)

// Kind identifies the modality of a content block.
type Kind string

const (
	KindOutputAudio Kind = "output_audio"
	KindOutputText  Kind = "output_text"
	KindInputText   Kind = "input_text"
	KindInputAudio  Kind = "input_audio"
)

// Roles reported by the server.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Content is one block of a history item. Transcript is set for audio
// blocks once the server has produced it; Text is set for text blocks.
type Content struct {
	Kind       Kind   `json:"kind"`
	Transcript string `json:"transcript,omitempty"`
	Text       string `json:"text,omitempty"`
}

// Event is one item of the agent's conversation history.
type Event struct {
	ID      string    `json:"id"`
	Role    string    `json:"role,omitempty"`
	Status  Status    `json:"status,omitempty"`
	Content []Content `json:"content,omitempty"`
}

// Clone returns a deep copy of e.
func (e Event) Clone() Event {
	if e.Content != nil {
		e.Content = append([]Content(nil), e.Content...)
	}
	return e
}

// SpokenTranscript returns the first non-empty transcript of an
// output_audio block.
func (e Event) SpokenTranscript() (string, bool) {
	for _, c := range e.Content {
		if c.Kind == KindOutputAudio && c.Transcript != "" {
			return c.Transcript, true
		}
	}
	return "", false
}

// Agent is the agent definition sent when a connection is opened.
type Agent struct {
	Name         string
	Instructions string
}

// Transport opens realtime connections.
type Transport interface {
	// Connect authenticates with cred and configures the agent. It returns
	// once the server has acknowledged the session.
	Connect(ctx context.Context, cred credential.Credential, agent Agent) (Conn, error)
}

// Conn is a live realtime connection.
type Conn interface {
	// History returns a snapshot of the conversation items in order.
	History() []Event
	// Last returns the newest conversation item without copying the rest.
	Last() (Event, bool)
	// SendMessage submits a user text message and requests a response.
	SendMessage(ctx context.Context, text string) error
	// SetMuted controls whether captured audio is forwarded.
	SetMuted(muted bool)
	Muted() bool
	// AppendAudio forwards a chunk of captured PCM audio. Chunks are
	// dropped while muted.
	AppendAudio(pcm []byte) error
	// Done is closed when the connection ends for any reason.
	Done() <-chan struct{}
	// Err returns the fatal error that ended the connection, or nil.
	Err() error
	// Close releases the connection. It is safe to call more than once.
	Close() error
}

// Event types emitted by transports.
const (
	EventConnect      observability.EventType = "realtime.connect"
	EventHandshake    observability.EventType = "realtime.handshake"
	EventItem         observability.EventType = "realtime.item"
	EventServerError  observability.EventType = "realtime.error"
	EventSend         observability.EventType = "realtime.send"
	EventDisconnected observability.EventType = "realtime.disconnected"
)
