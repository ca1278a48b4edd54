package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tailored-agentic-units/concierge/credential"
	"github.com/tailored-agentic-units/concierge/observability"
)

// OpenAIOption configures an OpenAI transport.
type OpenAIOption func(*OpenAI)

// WithDialer replaces websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) OpenAIOption {
	return func(o *OpenAI) { o.dialer = d }
}

// WithObserver sets the event observer.
func WithObserver(obs observability.Observer) OpenAIOption {
	return func(o *OpenAI) { o.observer = obs }
}

// WithHandshakeTimeout bounds dialing plus session acknowledgement when the
// Connect context has no deadline.
func WithHandshakeTimeout(d time.Duration) OpenAIOption {
	return func(o *OpenAI) { o.handshakeTimeout = d }
}

// OpenAI connects to the OpenAI Realtime API over a websocket.
type OpenAI struct {
	cfg              Config
	dialer           *websocket.Dialer
	observer         observability.Observer
	handshakeTimeout time.Duration
}

// NewOpenAI creates a transport for cfg. Zero fields fall back to
// DefaultConfig.
func NewOpenAI(cfg Config, opts ...OpenAIOption) *OpenAI {
	merged := DefaultConfig()
	merged.Merge(&cfg)

	o := &OpenAI{
		cfg:              merged,
		dialer:           websocket.DefaultDialer,
		observer:         observability.Discard,
		handshakeTimeout: defaultHandshakeTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *OpenAI) endpoint() (string, error) {
	u, err := url.Parse(o.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parse realtime url: %w", err)
	}
	q := u.Query()
	q.Set("model", o.cfg.Model)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect dials the server, sends the session configuration and waits for
// the session to be acknowledged. An error frame received before the
// acknowledgement fails the handshake.
func (o *OpenAI) Connect(ctx context.Context, cred credential.Credential, agent Agent) (Conn, error) {
	if cred.Value == "" {
		return nil, ErrMissingCredential
	}

	wsURL, err := o.endpoint()
	if err != nil {
		return nil, err
	}

	observability.Emit(ctx, o.observer, EventConnect, observability.LevelVerbose, "realtime.Connect",
		map[string]any{"model": o.cfg.Model, "agent": agent.Name})

	dialCtx := ctx
	if _, ok := ctx.Deadline(); !ok && o.handshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, o.handshakeTimeout)
		defer cancel()
	}

	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+cred.Value)

	ws, resp, err := o.dialer.DialContext(dialCtx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: dial status %d: %w", ErrHandshake, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("%w: dial: %w", ErrHandshake, err)
	}

	c := &openAIConn{
		ws:       ws,
		history:  NewHistory(),
		observer: o.observer,
		done:     make(chan struct{}),
	}

	if err := c.writeJSON(o.sessionUpdate(agent)); err != nil {
		ws.Close()
		return nil, fmt.Errorf("%w: send session.update: %w", ErrHandshake, err)
	}

	if deadline, ok := dialCtx.Deadline(); ok {
		ws.SetReadDeadline(deadline)
	}
	if err := c.awaitSession(); err != nil {
		ws.Close()
		observability.Emit(ctx, o.observer, EventHandshake, observability.LevelWarning, "realtime.Connect",
			map[string]any{"error": err.Error()})
		return nil, err
	}
	ws.SetReadDeadline(time.Time{})

	observability.Emit(ctx, o.observer, EventHandshake, observability.LevelInfo, "realtime.Connect",
		map[string]any{"model": o.cfg.Model, "agent": agent.Name})

	go c.readLoop()
	return c, nil
}

func (o *OpenAI) sessionUpdate(agent Agent) map[string]any {
	session := map[string]any{
		"type":         "realtime",
		"model":        o.cfg.Model,
		"instructions": agent.Instructions,
		"audio": map[string]any{
			"input": map[string]any{
				"transcription":  map[string]any{"model": "whisper-1"},
				"turn_detection": map[string]any{"type": "server_vad"},
			},
		},
	}
	if o.cfg.Voice != "" {
		session["audio"].(map[string]any)["output"] = map[string]any{"voice": o.cfg.Voice}
	}
	return map[string]any{
		"type":     "session.update",
		"event_id": newEventID(),
		"session":  session,
	}
}

type wireContent struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript,omitempty"`
	Text       string `json:"text,omitempty"`
}

type wireItem struct {
	ID      string        `json:"id"`
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Status  string        `json:"status"`
	Content []wireContent `json:"content"`
}

func (w wireItem) event() Event {
	e := Event{ID: w.ID, Role: w.Role, Status: Status(w.Status)}
	for _, c := range w.Content {
		e.Content = append(e.Content, Content{Kind: Kind(c.Type), Transcript: c.Transcript, Text: c.Text})
	}
	return e
}

type serverFrame struct {
	Type         string       `json:"type"`
	Item         *wireItem    `json:"item"`
	ItemID       string       `json:"item_id"`
	ContentIndex int          `json:"content_index"`
	Transcript   string       `json:"transcript"`
	Error        *ServerError `json:"error"`
}

type openAIConn struct {
	ws       *websocket.Conn
	history  *History
	observer observability.Observer

	writeMu   sync.Mutex
	muted     atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}

	errMu sync.Mutex
	err   error
}

func (c *openAIConn) awaitSession() error {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return fmt.Errorf("%w: read: %w", ErrHandshake, err)
		}

		var f serverFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("%w: decode frame: %w", ErrHandshake, err)
		}

		switch f.Type {
		case "session.created", "session.updated":
			return nil
		case "error":
			if f.Error == nil {
				f.Error = &ServerError{Message: "unknown error"}
			}
			return fmt.Errorf("%w: %w", ErrHandshake, f.Error)
		default:
			c.apply(f)
		}
	}
}

func (c *openAIConn) readLoop() {
	defer close(c.done)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if c.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.emit(EventDisconnected, observability.LevelInfo, nil)
				return
			}
			c.setErr(err)
			c.emit(EventDisconnected, observability.LevelError, map[string]any{"error": err.Error()})
			return
		}

		var f serverFrame
		if err := json.Unmarshal(data, &f); err != nil {
			c.emit(EventServerError, observability.LevelWarning, map[string]any{"error": "undecodable frame: " + err.Error()})
			continue
		}
		c.apply(f)
	}
}

func (c *openAIConn) apply(f serverFrame) {
	switch f.Type {
	case "conversation.item.added", "conversation.item.created", "conversation.item.done",
		"response.output_item.added", "response.output_item.done":
		if f.Item == nil {
			return
		}
		e := f.Item.event()
		c.history.Upsert(e)
		c.emit(EventItem, observability.LevelVerbose, map[string]any{
			"frame":  f.Type,
			"id":     e.ID,
			"role":   e.Role,
			"status": string(e.Status),
		})
	case "response.output_audio_transcript.done", "response.audio_transcript.done":
		c.history.SetTranscript(f.ItemID, f.ContentIndex, KindOutputAudio, f.Transcript)
	case "conversation.item.input_audio_transcription.completed":
		c.history.SetTranscript(f.ItemID, f.ContentIndex, KindInputAudio, f.Transcript)
	case "error":
		data := map[string]any{}
		if f.Error != nil {
			data["code"] = f.Error.Code
			data["message"] = f.Error.Message
		}
		c.emit(EventServerError, observability.LevelWarning, data)
	}
}

func (c *openAIConn) emit(typ observability.EventType, level observability.Level, data map[string]any) {
	observability.Emit(context.Background(), c.observer, typ, level, "realtime.openai", data)
}

func (c *openAIConn) History() []Event {
	return c.history.Snapshot()
}

func (c *openAIConn) Last() (Event, bool) {
	return c.history.Last()
}

func (c *openAIConn) SendMessage(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	item := map[string]any{
		"type":     "conversation.item.create",
		"event_id": newEventID(),
		"item": map[string]any{
			"type": "message",
			"role": RoleUser,
			"content": []map[string]any{
				{"type": string(KindInputText), "text": text},
			},
		},
	}
	if err := c.writeJSON(item); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if err := c.writeJSON(map[string]any{"type": "response.create", "event_id": newEventID()}); err != nil {
		return fmt.Errorf("request response: %w", err)
	}

	c.emit(EventSend, observability.LevelVerbose, map[string]any{"chars": len(text)})
	return nil
}

func (c *openAIConn) SetMuted(muted bool) {
	c.muted.Store(muted)
}

func (c *openAIConn) Muted() bool {
	return c.muted.Load()
}

func (c *openAIConn) AppendAudio(pcm []byte) error {
	if c.muted.Load() || len(pcm) == 0 {
		return nil
	}
	return c.writeJSON(map[string]any{
		"type":  "input_audio_buffer.append",
		"audio": base64.StdEncoding.EncodeToString(pcm),
	})
}

func (c *openAIConn) Done() <-chan struct{} {
	return c.done
}

func (c *openAIConn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *openAIConn) setErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

func (c *openAIConn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.writeMu.Lock()
		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(2*time.Second))
		c.writeMu.Unlock()
		c.ws.Close()
	})
	<-c.done
	return nil
}

func (c *openAIConn) writeJSON(v any) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteJSON(v); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return ErrClosed
		}
		return err
	}
	return nil
}

func newEventID() string {
	return "evt_" + uuid.NewString()
}
