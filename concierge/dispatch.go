package concierge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/concierge/observability"
	"github.com/tailored-agentic-units/concierge/realtime"
	"github.com/tailored-agentic-units/concierge/session"
)

// SendText records a typed message in the transcript and forwards it to
// the current session. Blank text, or no active session, is ignored. During
// a restart the session being replaced still receives messages. A transport
// failure is returned; the transcript entry is kept.
func (c *Concierge) SendText(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	c.mu.Lock()
	h := c.live()
	if h == nil {
		c.mu.Unlock()
		return nil
	}
	entry := c.transcript.Append(session.RoleUser, trimmed)
	c.mu.Unlock()

	if err := h.conn.SendMessage(ctx, trimmed); err != nil {
		observability.Emit(ctx, c.observer, EventSendError, observability.LevelWarning, "concierge.SendText",
			map[string]any{"handle": h.id, "entry": entry.ID, "error": err.Error()})
		return fmt.Errorf("failed to send message: %w", err)
	}

	observability.Emit(ctx, c.observer, EventSend, observability.LevelVerbose, "concierge.SendText",
		map[string]any{"handle": h.id, "entry": entry.ID, "chars": len(trimmed)})
	return nil
}

// AppendAudio forwards a chunk of 16-bit PCM audio to the current session.
// Without an active session, or when the session ends while the chunk is in
// flight, the chunk is dropped. A muted session drops it in the transport.
func (c *Concierge) AppendAudio(pcm []byte) error {
	c.mu.Lock()
	h := c.live()
	c.mu.Unlock()
	if h == nil {
		return nil
	}
	if err := h.conn.AppendAudio(pcm); err != nil && !errors.Is(err, realtime.ErrClosed) {
		return fmt.Errorf("failed to send audio: %w", err)
	}
	return nil
}
