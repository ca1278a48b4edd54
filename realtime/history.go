package realtime

import "sync"

// History is an ordered conversation log keyed by item ID. Unknown IDs are
// appended at the tail; known IDs are merged in place. It is safe for
// concurrent use.
type History struct {
	mu    sync.RWMutex
	items []Event
	index map[string]int
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{index: make(map[string]int)}
}

// Upsert appends e or merges it into the existing item with the same ID.
// Empty fields in e never clear values already recorded. Items without an
// ID are ignored.
func (h *History) Upsert(e Event) {
	if e.ID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	i, ok := h.index[e.ID]
	if !ok {
		h.index[e.ID] = len(h.items)
		h.items = append(h.items, e.Clone())
		return
	}

	cur := &h.items[i]
	if e.Role != "" {
		cur.Role = e.Role
	}
	if e.Status != "" {
		cur.Status = e.Status
	}
	for j, c := range e.Content {
		if j >= len(cur.Content) {
			cur.Content = append(cur.Content, c)
			continue
		}
		prev := cur.Content[j]
		if c.Kind != "" {
			prev.Kind = c.Kind
		}
		if c.Transcript != "" {
			prev.Transcript = c.Transcript
		}
		if c.Text != "" {
			prev.Text = c.Text
		}
		cur.Content[j] = prev
	}
}

// SetTranscript records the final transcript of one content block. It
// reports false when the item is unknown.
func (h *History) SetTranscript(id string, contentIndex int, kind Kind, transcript string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	i, ok := h.index[id]
	if !ok || contentIndex < 0 {
		return false
	}

	cur := &h.items[i]
	for len(cur.Content) <= contentIndex {
		cur.Content = append(cur.Content, Content{Kind: kind})
	}
	cur.Content[contentIndex].Transcript = transcript
	return true
}

// Snapshot returns a deep copy of the items in order.
func (h *History) Snapshot() []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Event, len(h.items))
	for i, e := range h.items {
		out[i] = e.Clone()
	}
	return out
}

// Last returns the tail item.
func (h *History) Last() (Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.items) == 0 {
		return Event{}, false
	}
	return h.items[len(h.items)-1].Clone(), true
}
