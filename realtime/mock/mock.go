// Package mock provides an in-memory realtime.Transport for tests.
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/tailored-agentic-units/concierge/credential"
	"github.com/tailored-agentic-units/concierge/realtime"
)

// ConnectCall records one Connect invocation.
type ConnectCall struct {
	Credential credential.Credential
	Agent      realtime.Agent
}

// Transport hands out Conns. Handshakes can be failed with FailHandshake or
// held open with Hold.
type Transport struct {
	mu         sync.Mutex
	calls      []ConnectCall
	conns      []*Conn
	connectErr error
	gate       chan struct{}
}

// NewTransport creates a Transport that accepts every handshake.
func NewTransport() *Transport {
	return &Transport{}
}

// FailHandshake makes subsequent Connect calls return err. Pass nil to
// accept handshakes again.
func (t *Transport) FailHandshake(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connectErr = err
}

// Hold makes the next Connect call block until the returned release
// function is called or the call's context ends. Later calls are not held.
func (t *Transport) Hold() (release func()) {
	gate := make(chan struct{})
	t.mu.Lock()
	t.gate = gate
	t.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Connect records the call and returns a new Conn.
func (t *Transport) Connect(ctx context.Context, cred credential.Credential, agent realtime.Agent) (realtime.Conn, error) {
	t.mu.Lock()
	t.calls = append(t.calls, ConnectCall{Credential: cred, Agent: agent})
	gate := t.gate
	t.gate = nil
	t.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.connectErr != nil {
		return nil, t.connectErr
	}
	c := NewConn()
	t.conns = append(t.conns, c)
	return c, nil
}

// Calls returns the recorded Connect invocations.
func (t *Transport) Calls() []ConnectCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]ConnectCall(nil), t.calls...)
}

// Conns returns every Conn handed out, oldest first.
func (t *Transport) Conns() []*Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Conn(nil), t.conns...)
}

// Last returns the most recent Conn, or nil.
func (t *Transport) Last() *Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.conns) == 0 {
		return nil
	}
	return t.conns[len(t.conns)-1]
}

// Conn is a scripted realtime.Conn.
type Conn struct {
	history *realtime.History

	mu        sync.Mutex
	sent      []string
	audio     int
	snapshots int
	muted     bool
	closed    bool
	sendErr   error
	err       error
	done      chan struct{}
	once      sync.Once
}

// NewConn creates an open Conn with an empty history.
func NewConn() *Conn {
	return &Conn{
		history: realtime.NewHistory(),
		done:    make(chan struct{}),
	}
}

// Upsert appends or updates a history item as the server would.
func (c *Conn) Upsert(e realtime.Event) {
	c.history.Upsert(e)
}

// FailSend makes subsequent SendMessage calls return err.
func (c *Conn) FailSend(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

// Fail ends the connection with a fatal error.
func (c *Conn) Fail(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
	c.once.Do(func() { close(c.done) })
}

// Sent returns the messages passed to SendMessage.
func (c *Conn) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

// AudioChunks returns how many audio chunks were forwarded.
func (c *Conn) AudioChunks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.audio
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// HistoryCalls returns how many full history snapshots were taken.
func (c *Conn) HistoryCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshots
}

func (c *Conn) History() []realtime.Event {
	c.mu.Lock()
	c.snapshots++
	c.mu.Unlock()
	return c.history.Snapshot()
}

func (c *Conn) Last() (realtime.Event, bool) {
	return c.history.Last()
}

func (c *Conn) SendMessage(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return realtime.ErrClosed
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, text)
	return nil
}

func (c *Conn) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = muted
}

func (c *Conn) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

func (c *Conn) AppendAudio(pcm []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return realtime.ErrClosed
	}
	if !c.muted && len(pcm) > 0 {
		c.audio++
	}
	return nil
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Conn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.once.Do(func() { close(c.done) })
	return nil
}

// ErrScripted is a convenience error for injected failures.
var ErrScripted = errors.New("scripted failure")
