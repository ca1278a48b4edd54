package concierge

import (
	"context"
	"time"

	"github.com/tailored-agentic-units/concierge/observability"
	"github.com/tailored-agentic-units/concierge/realtime"
	"github.com/tailored-agentic-units/concierge/session"
)

// Reconciler copies the agent's finished spoken replies from a handle's
// remote history into the transcript. It looks only at the newest history
// item and renders each item at most once.
type Reconciler struct {
	owner    *Concierge
	handle   *Handle
	interval time.Duration
	cursor   string
}

func (r *Reconciler) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Tick performs one reconciliation pass and reports whether an entry was
// appended. It does nothing once the handle is no longer the current one or
// has left Active. A handle being replaced by a restart stays current, and
// keeps rendering, until the new session is established.
func (r *Reconciler) Tick() bool {
	c := r.owner

	c.mu.Lock()
	if c.current != r.handle || r.handle.State() != StateActive {
		c.mu.Unlock()
		return false
	}

	last, ok := r.handle.conn.Last()
	if !ok {
		c.mu.Unlock()
		return false
	}

	text, ok := renderable(last, r.cursor)
	if !ok {
		c.mu.Unlock()
		return false
	}

	entry := c.transcript.Append(session.RoleAgent, text)
	r.cursor = last.ID
	c.mu.Unlock()

	observability.Emit(context.Background(), c.observer, EventTranscriptAppend, observability.LevelVerbose,
		"concierge.Reconciler", map[string]any{"handle": r.handle.id, "item": last.ID, "entry": entry.ID})
	return true
}

func renderable(e realtime.Event, cursor string) (string, bool) {
	if e.Status != realtime.StatusCompleted || e.ID == cursor {
		return "", false
	}
	return e.SpokenTranscript()
}
