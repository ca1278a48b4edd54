package concierge_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tailored-agentic-units/concierge/catalog"
	"github.com/tailored-agentic-units/concierge/concierge"
	"github.com/tailored-agentic-units/concierge/credential"
	"github.com/tailored-agentic-units/concierge/observability"
	"github.com/tailored-agentic-units/concierge/realtime"
	"github.com/tailored-agentic-units/concierge/realtime/mock"
	"github.com/tailored-agentic-units/concierge/session"
)

// --- Test helpers ---

type staticCreds struct {
	value string
	err   error
	calls atomic.Int32
}

func (s *staticCreds) Acquire(ctx context.Context) (credential.Credential, error) {
	s.calls.Add(1)
	if s.err != nil {
		return credential.Credential{}, s.err
	}
	return credential.Credential{Value: s.value}, nil
}

func testConfig() concierge.Config {
	cfg := concierge.DefaultConfig()
	cfg.Observer = "noop"
	cfg.PollInterval = concierge.Duration(time.Hour)
	return cfg
}

func testPayload(t *testing.T) catalog.Payload {
	t.Helper()
	rows := []catalog.Row{
		{"CategoryTitleEn": "Soups", "ItemNameEn": "Tomato Soup", "ItemPrice": 6},
		{"CategoryTitleEn": "Mains", "ItemNameEn": "Risotto", "ItemPrice": 14},
	}
	p, err := catalog.BuildContext(catalog.FromSlice(rows), "Open until 22:00.")
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	return p
}

func newConcierge(t *testing.T, opts ...concierge.Option) (*concierge.Concierge, *mock.Transport) {
	t.Helper()
	transport := mock.NewTransport()
	cfg := testConfig()
	base := []concierge.Option{
		concierge.WithTransport(transport),
		concierge.WithCredentials(&staticCreds{value: "ek_test"}),
	}
	c, err := concierge.New(&cfg, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(c.Shutdown)
	return c, transport
}

func start(t *testing.T, c *concierge.Concierge) *concierge.Handle {
	t.Helper()
	if err := c.StartSession(context.Background(), testPayload(t)); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	h := c.Handle()
	if h == nil {
		t.Fatal("no handle after StartSession")
	}
	return h
}

func agentReply(id, transcript string, status realtime.Status) realtime.Event {
	return realtime.Event{
		ID:     id,
		Role:   realtime.RoleAssistant,
		Status: status,
		Content: []realtime.Content{
			{Kind: realtime.KindOutputAudio, Transcript: transcript},
		},
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func texts(entries []session.Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, string(e.Role)+":"+e.Text)
	}
	return out
}

// --- Lifecycle ---

func TestNew_Defaults(t *testing.T) {
	cfg := testConfig()
	c, err := concierge.New(&cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if c.State() != concierge.StateIdle {
		t.Errorf("got state %s, want idle", c.State())
	}
	if c.Handle() != nil {
		t.Error("new concierge should have no handle")
	}
	if c.Store() != nil {
		t.Error("store should be disabled by default")
	}
	if c.Transcript() == nil || c.Transcript().Len() != 0 {
		t.Error("new concierge should have an empty transcript")
	}
}

func TestNew_Observer(t *testing.T) {
	cfg := testConfig()
	cfg.Observer = "logfile"
	if _, err := concierge.New(&cfg); err == nil || !strings.Contains(err.Error(), "unknown observer: logfile") {
		t.Errorf("got %v, want unknown observer error", err)
	}

	if _, err := concierge.New(&cfg, concierge.WithObserver(observability.NewRecorder())); err != nil {
		t.Errorf("WithObserver should override the configured name, got %v", err)
	}

	cfg.Observer = ""
	if _, err := concierge.New(&cfg); err != nil {
		t.Errorf("empty observer name should use the default, got %v", err)
	}
}

func TestStartSession_Active(t *testing.T) {
	rec := observability.NewRecorder()
	c, transport := newConcierge(t, concierge.WithObserver(rec))

	h := start(t, c)

	if c.State() != concierge.StateActive || h.State() != concierge.StateActive {
		t.Fatalf("got state %s/%s, want active", c.State(), h.State())
	}
	if h.ID() == "" || h.StartedAt().IsZero() {
		t.Error("handle should carry an ID and start time")
	}
	if c.Err() != nil {
		t.Errorf("got Err %v, want nil", c.Err())
	}

	calls := transport.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d connects, want 1", len(calls))
	}
	if calls[0].Credential.Value != "ek_test" {
		t.Errorf("got credential %q", calls[0].Credential.Value)
	}
	if calls[0].Agent.Name != "Assistant" {
		t.Errorf("got agent name %q", calls[0].Agent.Name)
	}
	for _, want := range []string{"Tomato Soup", "Open until 22:00.", "euro"} {
		if !strings.Contains(calls[0].Agent.Instructions, want) {
			t.Errorf("instructions missing %q", want)
		}
	}

	if rec.Count(concierge.EventSessionStart) != 1 || rec.Count(concierge.EventSessionActive) != 1 {
		t.Errorf("event types = %v", rec.Types())
	}
}

func TestStartSession_SingleActiveSession(t *testing.T) {
	c, transport := newConcierge(t)

	first := start(t, c)
	second := start(t, c)

	if first.ID() == second.ID() {
		t.Fatal("second start should create a new handle")
	}
	if first.State() != concierge.StateTerminated {
		t.Errorf("got first handle state %s, want terminated", first.State())
	}
	if second.State() != concierge.StateActive || c.Handle() != second {
		t.Errorf("second handle should be the active one")
	}

	conns := transport.Conns()
	if len(conns) != 2 {
		t.Fatalf("got %d conns, want 2", len(conns))
	}
	if !conns[0].Closed() {
		t.Error("superseded connection should be closed")
	}
	if conns[1].Closed() {
		t.Error("active connection should stay open")
	}

	conns[0].Upsert(agentReply("stale", "From the old session.", realtime.StatusCompleted))
	if first.Reconciler().Tick() {
		t.Error("superseded reconciler must not render")
	}
	if c.Transcript().Len() != 0 {
		t.Errorf("got %d entries, want 0", c.Transcript().Len())
	}
}

func TestStartSession_SupersededWhileConnecting(t *testing.T) {
	c, transport := newConcierge(t)

	payload := testPayload(t)
	release := transport.Hold()
	firstErr := make(chan error, 1)
	go func() {
		firstErr <- c.StartSession(context.Background(), payload)
	}()
	waitFor(t, "first connect", func() bool { return len(transport.Calls()) == 1 })

	second := start(t, c)
	release()

	if err := <-firstErr; !errors.Is(err, concierge.ErrSuperseded) {
		t.Fatalf("got %v, want ErrSuperseded", err)
	}
	if c.Handle() != second || c.State() != concierge.StateActive {
		t.Error("later start should own the active session")
	}

	conns := transport.Conns()
	if len(conns) != 2 {
		t.Fatalf("got %d conns, want 2", len(conns))
	}
	// the held connect finished last
	if !conns[1].Closed() {
		t.Error("superseded start should close its own connection")
	}
}

func TestRestart_PreviousSessionStaysLive(t *testing.T) {
	c, transport := newConcierge(t)
	first := start(t, c)

	payload := testPayload(t)
	release := transport.Hold()
	result := make(chan error, 1)
	go func() {
		result <- c.StartSession(context.Background(), payload)
	}()
	waitFor(t, "second connect", func() bool { return len(transport.Calls()) == 2 })

	if c.State() != concierge.StateConnecting {
		t.Fatalf("got state %s, want connecting", c.State())
	}
	if first.State() != concierge.StateActive || c.Handle() != first {
		t.Fatal("previous session should stay current until the new one is established")
	}

	old := transport.Conns()[0]
	old.Upsert(agentReply("late", "The soup is vegan.", realtime.StatusCompleted))
	if !first.Reconciler().Tick() {
		t.Error("previous session should keep rendering replies")
	}
	if err := c.SendText(context.Background(), "And the bread?"); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	if sent := old.Sent(); len(sent) != 1 || sent[0] != "And the bread?" {
		t.Errorf("got sent %v on the previous session", sent)
	}
	c.SetMuted(true)
	if !first.Muted() {
		t.Error("mute should apply to the previous session")
	}

	release()
	if err := <-result; err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if first.State() != concierge.StateTerminated {
		t.Errorf("got first handle state %s, want terminated", first.State())
	}
	want := []string{"agent:The soup is vegan.", "user:And the bread?"}
	if got := texts(c.Transcript().Entries()); !slices.Equal(got, want) {
		t.Errorf("got entries %v, want %v", got, want)
	}
}

func TestRestart_PreviousSessionDropsWhileConnecting(t *testing.T) {
	c, transport := newConcierge(t)
	first := start(t, c)

	payload := testPayload(t)
	release := transport.Hold()
	result := make(chan error, 1)
	go func() {
		result <- c.StartSession(context.Background(), payload)
	}()
	waitFor(t, "second connect", func() bool { return len(transport.Calls()) == 2 })

	transport.Conns()[0].Fail(mock.ErrScripted)
	waitFor(t, "previous handle error", func() bool { return first.State() == concierge.StateError })

	if c.State() != concierge.StateConnecting || c.Err() != nil {
		t.Errorf("got state %s, err %v; the pending start should decide", c.State(), c.Err())
	}
	if c.Handle() != nil {
		t.Error("dropped handle should be released")
	}

	release()
	if err := <-result; err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if c.State() != concierge.StateActive || c.Handle() == nil {
		t.Errorf("got state %s, want active", c.State())
	}
}

func TestStartSession_CredentialRejected(t *testing.T) {
	broker := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"invalid_key"}`)
	}))
	defer broker.Close()

	transport := mock.NewTransport()
	cfg := testConfig()
	cfg.Credential.URL = broker.URL
	c, err := concierge.New(&cfg, concierge.WithTransport(transport))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = c.StartSession(context.Background(), testPayload(t))

	var ce *credential.Error
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want *credential.Error", err)
	}
	if ce.Status != http.StatusUnauthorized || ce.Body != `{"error":"invalid_key"}` {
		t.Errorf("got status %d body %q", ce.Status, ce.Body)
	}
	if c.State() != concierge.StateError {
		t.Errorf("got state %s, want error", c.State())
	}
	if !errors.As(c.Err(), &ce) {
		t.Errorf("Err should preserve the credential error, got %v", c.Err())
	}
	if c.Handle() != nil {
		t.Error("no handle should exist after a credential failure")
	}
	if len(transport.Calls()) != 0 {
		t.Error("transport must not be contacted without a credential")
	}
}

func TestStartSession_HandshakeFailure(t *testing.T) {
	c, transport := newConcierge(t)
	transport.FailHandshake(mock.ErrScripted)

	err := c.StartSession(context.Background(), testPayload(t))

	var connErr *concierge.ConnectionError
	if !errors.As(err, &connErr) || connErr.Phase != concierge.PhaseHandshake {
		t.Fatalf("got %v, want handshake ConnectionError", err)
	}
	if !errors.Is(err, mock.ErrScripted) {
		t.Errorf("ConnectionError should wrap the transport error")
	}
	if c.State() != concierge.StateError || c.Handle() != nil {
		t.Errorf("got state %s, want error without handle", c.State())
	}
}

func TestStartSession_FailureTerminatesPrevious(t *testing.T) {
	c, transport := newConcierge(t)
	first := start(t, c)

	transport.FailHandshake(mock.ErrScripted)
	if err := c.StartSession(context.Background(), testPayload(t)); err == nil {
		t.Fatal("expected handshake failure")
	}

	if first.State() != concierge.StateTerminated {
		t.Errorf("got previous handle state %s, want terminated", first.State())
	}
	if !transport.Conns()[0].Closed() {
		t.Error("previous connection should be closed")
	}
	if c.State() != concierge.StateError || c.Handle() != nil {
		t.Errorf("got state %s, want error without handle", c.State())
	}
}

func TestStartSession_RestartAfterError(t *testing.T) {
	c, transport := newConcierge(t)
	transport.FailHandshake(mock.ErrScripted)
	c.StartSession(context.Background(), testPayload(t))

	transport.FailHandshake(nil)
	h := start(t, c)

	if c.State() != concierge.StateActive || h.State() != concierge.StateActive {
		t.Errorf("got state %s, want active", c.State())
	}
	if c.Err() != nil {
		t.Errorf("got Err %v, want nil after successful restart", c.Err())
	}
}

func TestFatalConnectionError(t *testing.T) {
	c, transport := newConcierge(t)
	h := start(t, c)

	transport.Last().Fail(mock.ErrScripted)

	waitFor(t, "error state", func() bool { return c.State() == concierge.StateError })

	var connErr *concierge.ConnectionError
	if !errors.As(c.Err(), &connErr) || connErr.Phase != concierge.PhaseSession {
		t.Fatalf("got %v, want session ConnectionError", c.Err())
	}
	if !errors.Is(c.Err(), mock.ErrScripted) {
		t.Error("ConnectionError should wrap the transport error")
	}
	if h.State() != concierge.StateError {
		t.Errorf("got handle state %s, want error", h.State())
	}
	if c.Handle() != nil {
		t.Error("failed handle should be released")
	}

	if err := c.SendText(context.Background(), "hello?"); err != nil {
		t.Errorf("send after fatal error should be a no-op, got %v", err)
	}
	if c.Transcript().Len() != 0 {
		t.Error("send after fatal error should not touch the transcript")
	}
	if len(transport.Calls()) != 1 {
		t.Error("fatal errors must not be retried automatically")
	}
}

func TestShutdown(t *testing.T) {
	c, transport := newConcierge(t)

	c.Shutdown()
	if c.State() != concierge.StateIdle {
		t.Errorf("Shutdown in idle should be a no-op, got %s", c.State())
	}

	h := start(t, c)
	c.Shutdown()
	c.Shutdown()

	if c.State() != concierge.StateTerminated || h.State() != concierge.StateTerminated {
		t.Errorf("got state %s/%s, want terminated", c.State(), h.State())
	}
	if !transport.Last().Closed() {
		t.Error("connection should be closed")
	}
	if c.Handle() != nil {
		t.Error("no handle should remain after shutdown")
	}
}

func TestShutdown_WhileConnecting(t *testing.T) {
	c, transport := newConcierge(t)

	payload := testPayload(t)
	release := transport.Hold()
	result := make(chan error, 1)
	go func() {
		result <- c.StartSession(context.Background(), payload)
	}()
	waitFor(t, "connect", func() bool { return len(transport.Calls()) == 1 })

	c.Shutdown()
	release()

	if err := <-result; !errors.Is(err, concierge.ErrSuperseded) {
		t.Fatalf("got %v, want ErrSuperseded", err)
	}
	if c.State() != concierge.StateTerminated || c.Handle() != nil {
		t.Errorf("got state %s, want terminated without handle", c.State())
	}
	if !transport.Last().Closed() {
		t.Error("abandoned connection should be closed")
	}
}

func TestShutdown_DuringRestart(t *testing.T) {
	c, transport := newConcierge(t)
	first := start(t, c)

	payload := testPayload(t)
	release := transport.Hold()
	result := make(chan error, 1)
	go func() {
		result <- c.StartSession(context.Background(), payload)
	}()
	waitFor(t, "connect", func() bool { return len(transport.Calls()) == 2 })

	c.Shutdown()
	release()

	if err := <-result; !errors.Is(err, concierge.ErrSuperseded) {
		t.Fatalf("got %v, want ErrSuperseded", err)
	}
	if first.State() != concierge.StateTerminated {
		t.Errorf("got first handle state %s, want terminated", first.State())
	}
	if !transport.Conns()[0].Closed() {
		t.Error("previous connection should be closed")
	}
	if c.State() != concierge.StateTerminated || c.Handle() != nil {
		t.Errorf("got state %s, want terminated without handle", c.State())
	}
}

// --- Mute ---

func TestSetMuted(t *testing.T) {
	c, transport := newConcierge(t)

	c.SetMuted(true)
	if c.State() != concierge.StateIdle {
		t.Error("mute without session should be a no-op")
	}

	h := start(t, c)
	if h.Muted() {
		t.Error("session should start unmuted by default")
	}

	c.SetMuted(true)
	if !transport.Last().Muted() || !h.Muted() {
		t.Error("SetMuted(true) should mute the active connection")
	}
	c.SetMuted(false)
	if h.Muted() {
		t.Error("SetMuted(false) should unmute")
	}

	c.Shutdown()
	c.SetMuted(true)
	if transport.Last().Muted() {
		t.Error("mute after shutdown should be a no-op")
	}
}

func TestMuteOnStart(t *testing.T) {
	transport := mock.NewTransport()
	cfg := testConfig()
	cfg.MuteOnStart = true
	c, _ := concierge.New(&cfg, concierge.WithTransport(transport), concierge.WithCredentials(&staticCreds{value: "ek"}))
	defer c.Shutdown()

	h := start(t, c)
	if !h.Muted() {
		t.Error("session should start muted when configured")
	}
}

// --- Reconciler ---

func TestReconciler_PendingThenCompleted(t *testing.T) {
	c, transport := newConcierge(t)
	h := start(t, c)
	conn := transport.Last()
	r := h.Reconciler()

	if r.Tick() {
		t.Error("empty history should not render")
	}

	conn.Upsert(agentReply("item_1", "", realtime.StatusInProgress))
	if r.Tick() {
		t.Error("in-progress item should not render")
	}

	conn.Upsert(agentReply("item_1", "We have tomato soup.", realtime.StatusCompleted))
	if !r.Tick() {
		t.Fatal("completed item should render")
	}
	if r.Tick() {
		t.Error("the same item must render only once")
	}

	entries := c.Transcript().Entries()
	if len(entries) != 1 || entries[0].Role != session.RoleAgent || entries[0].Text != "We have tomato soup." {
		t.Errorf("got entries %v", texts(entries))
	}
}

func TestReconciler_SkipsNonRenderableTail(t *testing.T) {
	tests := []struct {
		name  string
		event realtime.Event
	}{
		{"completed without transcript", agentReply("a", "", realtime.StatusCompleted)},
		{"incomplete", agentReply("a", "cut off", realtime.StatusIncomplete)},
		{"pending", agentReply("a", "soon", realtime.StatusPending)},
		{"user text", realtime.Event{ID: "u", Role: realtime.RoleUser, Status: realtime.StatusCompleted,
			Content: []realtime.Content{{Kind: realtime.KindInputText, Text: "hi"}}}},
		{"text reply", realtime.Event{ID: "t", Role: realtime.RoleAssistant, Status: realtime.StatusCompleted,
			Content: []realtime.Content{{Kind: realtime.KindOutputText, Text: "typed"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, transport := newConcierge(t)
			h := start(t, c)
			transport.Last().Upsert(tt.event)

			if h.Reconciler().Tick() {
				t.Error("tail should not render")
			}
			if c.Transcript().Len() != 0 {
				t.Errorf("got %d entries, want 0", c.Transcript().Len())
			}
		})
	}
}

func TestReconciler_OnlyInspectsTail(t *testing.T) {
	c, transport := newConcierge(t)
	h := start(t, c)
	conn := transport.Last()

	conn.Upsert(agentReply("a", "first", realtime.StatusCompleted))
	conn.Upsert(agentReply("b", "second", realtime.StatusCompleted))

	h.Reconciler().Tick()
	h.Reconciler().Tick()

	if got := texts(c.Transcript().Entries()); len(got) != 1 || got[0] != "agent:second" {
		t.Errorf("got entries %v, want only the tail", got)
	}
	if n := conn.HistoryCalls(); n != 0 {
		t.Errorf("ticks took %d full history snapshots, want 0", n)
	}
}

func TestReconciler_Loop(t *testing.T) {
	transport := mock.NewTransport()
	cfg := testConfig()
	cfg.PollInterval = concierge.Duration(5 * time.Millisecond)
	c, _ := concierge.New(&cfg, concierge.WithTransport(transport), concierge.WithCredentials(&staticCreds{value: "ek"}))
	defer c.Shutdown()

	start(t, c)
	transport.Last().Upsert(agentReply("a", "Tomato soup is 6 euro.", realtime.StatusCompleted))

	waitFor(t, "agent entry", func() bool { return c.Transcript().Len() == 1 })

	start(t, c)
	transport.Conns()[0].Upsert(agentReply("b", "stale", realtime.StatusCompleted))
	time.Sleep(30 * time.Millisecond)

	if c.Transcript().Len() != 1 {
		t.Errorf("superseded loop rendered: %v", texts(c.Transcript().Entries()))
	}
}

// --- Dispatcher ---

func TestSendText_OrderingWithReply(t *testing.T) {
	c, transport := newConcierge(t)
	h := start(t, c)
	conn := transport.Last()

	if err := c.SendText(context.Background(), "  Is the soup vegan?  "); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	conn.Upsert(agentReply("r1", "Yes, it is vegan.", realtime.StatusCompleted))
	h.Reconciler().Tick()

	want := []string{"user:Is the soup vegan?", "agent:Yes, it is vegan."}
	if got := texts(c.Transcript().Entries()); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %v, want %v", got, want)
	}
	if sent := conn.Sent(); len(sent) != 1 || sent[0] != "Is the soup vegan?" {
		t.Errorf("got sent %v", sent)
	}
}

func TestSendText_NoOps(t *testing.T) {
	c, transport := newConcierge(t)

	if err := c.SendText(context.Background(), "hello"); err != nil {
		t.Errorf("send without session: got %v, want nil", err)
	}
	if c.Transcript().Len() != 0 {
		t.Error("send without session should not touch the transcript")
	}

	start(t, c)
	for _, blank := range []string{"", "   ", "\t\n"} {
		if err := c.SendText(context.Background(), blank); err != nil {
			t.Errorf("blank send %q: got %v, want nil", blank, err)
		}
	}
	if c.Transcript().Len() != 0 || len(transport.Last().Sent()) != 0 {
		t.Error("blank sends should do nothing")
	}
}

func TestSendText_TransportFailure(t *testing.T) {
	c, transport := newConcierge(t)
	start(t, c)
	transport.Last().FailSend(mock.ErrScripted)

	err := c.SendText(context.Background(), "hello")
	if !errors.Is(err, mock.ErrScripted) {
		t.Fatalf("got %v, want wrapped send error", err)
	}
	if c.Transcript().Len() != 1 {
		t.Error("the user entry should be kept after a send failure")
	}
	if c.State() != concierge.StateActive {
		t.Errorf("a send failure should not end the session, got %s", c.State())
	}
}

func TestAppendAudio(t *testing.T) {
	c, transport := newConcierge(t)

	if err := c.AppendAudio([]byte{1, 2}); err != nil {
		t.Fatalf("audio without a session should be dropped, got %v", err)
	}

	start(t, c)
	conn := transport.Last()

	c.AppendAudio([]byte{1, 2})
	c.SetMuted(true)
	c.AppendAudio([]byte{3, 4})
	c.SetMuted(false)
	c.AppendAudio([]byte{5, 6})

	if got := conn.AudioChunks(); got != 2 {
		t.Errorf("got %d forwarded chunks, want 2", got)
	}

	conn.Close()
	if err := c.AppendAudio([]byte{7, 8}); err != nil {
		t.Errorf("audio after the connection closed should be dropped, got %v", err)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state concierge.State
		want  string
	}{
		{concierge.StateIdle, "idle"},
		{concierge.StateConnecting, "connecting"},
		{concierge.StateActive, "active"},
		{concierge.StateTerminated, "terminated"},
		{concierge.StateError, "error"},
		{concierge.State(42), "state(42)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
