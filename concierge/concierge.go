// Package concierge manages the lifecycle of a realtime menu-assistant
// session: it acquires a credential, grounds the agent in a catalog
// payload, keeps exactly one session active, reconciles the agent's spoken
// replies into a transcript and forwards typed messages.
//
// The concierge initializes from configuration via New. Functional options
// override any subsystem for testing.
//
//	c, err := concierge.New(&cfg)
//	err = c.StartSession(ctx, payload)
//	err = c.SendText(ctx, "Do you have vegan dishes?")
package concierge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/concierge/catalog"
	"github.com/tailored-agentic-units/concierge/credential"
	"github.com/tailored-agentic-units/concierge/observability"
	"github.com/tailored-agentic-units/concierge/realtime"
	"github.com/tailored-agentic-units/concierge/session"
	"github.com/tailored-agentic-units/concierge/store"
)

// State is a lifecycle state of the concierge or of one Handle.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateActive
	StateTerminated
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// CredentialSource issues one credential per session start.
type CredentialSource interface {
	Acquire(ctx context.Context) (credential.Credential, error)
}

// Option configures a Concierge after config-driven initialization.
type Option func(*Concierge)

// WithCredentials overrides the config-created credential client.
func WithCredentials(src CredentialSource) Option {
	return func(c *Concierge) { c.creds = src }
}

// WithTransport overrides the config-created OpenAI transport.
func WithTransport(t realtime.Transport) Option {
	return func(c *Concierge) { c.transport = t }
}

// WithTranscript overrides the in-memory transcript.
func WithTranscript(t session.Transcript) Option {
	return func(c *Concierge) { c.transcript = t }
}

// WithStore overrides the config-created payload store.
func WithStore(s store.Store) Option {
	return func(c *Concierge) { c.store = s }
}

// WithObserver overrides the observer named in the config.
func WithObserver(o observability.Observer) Option {
	return func(c *Concierge) { c.observer = o }
}

// Handle is one realtime session. A Handle that has reached Terminated or
// Error is never revived.
type Handle struct {
	id         string
	startedAt  time.Time
	conn       realtime.Conn
	reconciler *Reconciler
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	mu    sync.Mutex
	state State
}

// ID returns the handle's UUIDv7.
func (h *Handle) ID() string { return h.id }

// StartedAt returns when the handle became active.
func (h *Handle) StartedAt() time.Time { return h.startedAt }

func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Handle) Muted() bool { return h.conn.Muted() }

// History returns a snapshot of the remote conversation.
func (h *Handle) History() []realtime.Event { return h.conn.History() }

// Reconciler returns the transcript reconciler bound to this handle.
func (h *Handle) Reconciler() *Reconciler { return h.reconciler }

// release moves the handle to a terminal state, cancels its loops and
// closes the connection. It does not wait for the loops to exit.
func (h *Handle) release(final State) {
	h.mu.Lock()
	h.state = final
	h.mu.Unlock()
	h.cancel()
	h.conn.Close()
}

// Concierge owns the single active session.
type Concierge struct {
	cfg        Config
	creds      CredentialSource
	transport  realtime.Transport
	transcript session.Transcript
	store      store.Store
	observer   observability.Observer

	mu      sync.Mutex
	state   State
	current *Handle
	attempt uint64
	lastErr error
}

// New creates a Concierge from configuration. The credential client,
// realtime transport and payload store are built from their config
// sections unless overridden by options. An unknown observer name is an
// error unless WithObserver supplies one.
func New(cfg *Config, opts ...Option) (*Concierge, error) {
	c := &Concierge{
		cfg:        *cfg,
		transcript: session.NewTranscript(),
	}
	if c.cfg.PollInterval <= 0 {
		c.cfg.PollInterval = Duration(defaultPollInterval)
	}
	if c.cfg.Observer == "" {
		c.cfg.Observer = defaultObserver
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.observer == nil {
		observer, err := observability.GetObserver(c.cfg.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		c.observer = observer
	}

	if c.creds == nil {
		c.creds = credential.NewClient(cfg.Credential, credential.WithObserver(c.observer))
	}
	if c.transport == nil {
		c.transport = realtime.NewOpenAI(cfg.Realtime, realtime.WithObserver(c.observer))
	}
	if c.store == nil {
		s, err := store.New(&cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("failed to create payload store: %w", err)
		}
		c.store = s
	}

	return c, nil
}

// Transcript returns the transcript shared by all sessions of c.
func (c *Concierge) Transcript() session.Transcript {
	return c.transcript
}

// Store returns the payload store, or nil when persistence is disabled.
func (c *Concierge) Store() store.Store {
	return c.store
}

func (c *Concierge) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error that moved the concierge into Error, or nil.
func (c *Concierge) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Handle returns the active handle, or nil.
func (c *Concierge) Handle() *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// StartSession acquires a credential, connects an agent grounded in
// payload and makes the new session the only active one. Any previous
// session is terminated once the new one is established. Failures leave
// the concierge in Error with the cause available from Err; they are not
// retried. A start overtaken by a later StartSession or by Shutdown
// returns ErrSuperseded.
func (c *Concierge) StartSession(ctx context.Context, payload catalog.Payload) error {
	c.mu.Lock()
	c.attempt++
	attempt := c.attempt
	c.state = StateConnecting
	c.lastErr = nil
	c.mu.Unlock()

	observability.Emit(ctx, c.observer, EventSessionStart, observability.LevelInfo, "concierge.StartSession",
		map[string]any{"attempt": attempt, "items": payload.Len()})

	cred, err := c.creds.Acquire(ctx)
	if err != nil {
		return c.fail(ctx, attempt, err)
	}

	instructions, err := Instructions(c.cfg, payload)
	if err != nil {
		return c.fail(ctx, attempt, err)
	}

	conn, err := c.transport.Connect(ctx, cred, realtime.Agent{
		Name:         c.cfg.AgentName,
		Instructions: instructions,
	})
	if err != nil {
		return c.fail(ctx, attempt, &ConnectionError{Phase: PhaseHandshake, Err: err})
	}

	c.mu.Lock()
	if attempt != c.attempt {
		c.mu.Unlock()
		conn.Close()
		observability.Emit(ctx, c.observer, EventSessionSuperseded, observability.LevelInfo, "concierge.StartSession",
			map[string]any{"attempt": attempt})
		return ErrSuperseded
	}

	previous := c.current
	if previous != nil {
		previous.release(StateTerminated)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		id:        uuid.Must(uuid.NewV7()).String(),
		startedAt: time.Now(),
		conn:      conn,
		cancel:    cancel,
		state:     StateActive,
	}
	h.reconciler = &Reconciler{owner: c, handle: h, interval: time.Duration(c.cfg.PollInterval)}
	conn.SetMuted(c.cfg.MuteOnStart)

	c.current = h
	c.state = StateActive

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		h.reconciler.run(loopCtx)
	}()
	go func() {
		defer h.wg.Done()
		c.watch(loopCtx, h)
	}()
	c.mu.Unlock()

	if previous != nil {
		previous.wg.Wait()
		observability.Emit(ctx, c.observer, EventSessionSuperseded, observability.LevelInfo, "concierge.StartSession",
			map[string]any{"handle": previous.id, "by": h.id})
	}

	observability.Emit(ctx, c.observer, EventSessionActive, observability.LevelInfo, "concierge.StartSession",
		map[string]any{"handle": h.id, "muted": c.cfg.MuteOnStart})
	return nil
}

// fail records err as the outcome of attempt. A failed start also releases
// whatever session was active, so Error never coexists with a live handle.
func (c *Concierge) fail(ctx context.Context, attempt uint64, err error) error {
	c.mu.Lock()
	if attempt != c.attempt {
		c.mu.Unlock()
		return ErrSuperseded
	}

	previous := c.current
	c.current = nil
	if previous != nil {
		previous.release(StateTerminated)
	}
	c.state = StateError
	c.lastErr = err
	c.mu.Unlock()

	if previous != nil {
		previous.wg.Wait()
	}

	observability.Emit(ctx, c.observer, EventSessionError, observability.LevelError, "concierge.StartSession",
		map[string]any{"attempt": attempt, "error": err.Error()})
	return err
}

// watch ends the handle when its connection ends on its own. The concierge
// moves to Error unless a restart is already connecting, in which case the
// pending start decides the next state.
func (c *Concierge) watch(ctx context.Context, h *Handle) {
	select {
	case <-ctx.Done():
		return
	case <-h.conn.Done():
	}

	c.mu.Lock()
	if c.current != h || h.State() != StateActive {
		c.mu.Unlock()
		return
	}

	cause := h.conn.Err()
	if cause == nil {
		cause = ErrConnectionClosed
	}
	connErr := &ConnectionError{Phase: PhaseSession, Err: cause}

	c.current = nil
	if c.state == StateActive {
		c.state = StateError
		c.lastErr = connErr
	}
	h.release(StateError)
	c.mu.Unlock()

	observability.Emit(context.Background(), c.observer, EventSessionError, observability.LevelError, "concierge.watch",
		map[string]any{"handle": h.id, "error": connErr.Error()})
}

// live returns the current handle while it is Active, or nil. The manager
// may be Connecting at the same time when a restart is in progress. c.mu
// must be held.
func (c *Concierge) live() *Handle {
	if c.current == nil || c.current.State() != StateActive {
		return nil
	}
	return c.current
}

// SetMuted sets the current session's mute flag. Without an active session
// it does nothing.
func (c *Concierge) SetMuted(muted bool) {
	c.mu.Lock()
	h := c.live()
	if h == nil {
		c.mu.Unlock()
		return
	}
	h.conn.SetMuted(muted)
	c.mu.Unlock()

	observability.Emit(context.Background(), c.observer, EventMute, observability.LevelVerbose, "concierge.SetMuted",
		map[string]any{"handle": h.id, "muted": muted})
}

// Shutdown terminates the active session, or abandons a start that is
// still connecting. It is idempotent and does nothing in Idle, Terminated
// or Error.
func (c *Concierge) Shutdown() {
	c.mu.Lock()
	pending := c.state == StateConnecting
	switch c.state {
	case StateActive:
	case StateConnecting:
		c.attempt++
	default:
		c.mu.Unlock()
		return
	}

	h := c.current
	c.current = nil
	c.state = StateTerminated
	if h != nil {
		h.release(StateTerminated)
	}
	c.mu.Unlock()

	data := map[string]any{"pending": pending}
	if h != nil {
		h.wg.Wait()
		data["handle"] = h.id
	}
	observability.Emit(context.Background(), c.observer, EventSessionShutdown, observability.LevelInfo,
		"concierge.Shutdown", data)
}
