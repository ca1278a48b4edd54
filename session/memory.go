package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryTranscript struct {
	id      string
	entries []Entry
	mu      sync.RWMutex
}

// NewTranscript creates a Transcript backed by an in-memory slice.
// The transcript and each entry are assigned UUIDv7 identifiers.
func NewTranscript() Transcript {
	return &memoryTranscript{
		id: uuid.Must(uuid.NewV7()).String(),
	}
}

func (t *memoryTranscript) ID() string {
	return t.id
}

func (t *memoryTranscript) Append(role Role, text string) Entry {
	e := Entry{
		ID:   uuid.Must(uuid.NewV7()).String(),
		Role: role,
		Text: text,
		At:   time.Now(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, e)
	return e
}

func (t *memoryTranscript) Entries() []Entry {
	return t.Since(0)
}

func (t *memoryTranscript) Since(n int) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n >= len(t.entries) {
		return nil
	}
	copied := make([]Entry, len(t.entries)-n)
	copy(copied, t.entries[n:])
	return copied
}

func (t *memoryTranscript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
