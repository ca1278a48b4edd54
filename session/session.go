// Package session holds the conversation transcript shown to the operator.
package session

import "time"

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Entry is one rendered line of the conversation.
type Entry struct {
	ID   string    `json:"id"`
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Transcript is an append-only, ordered sequence of entries. Entries are
// never reordered or removed. Implementations must be safe for concurrent
// use.
type Transcript interface {
	// ID returns the unique transcript identifier.
	ID() string
	// Append adds an entry at the end and returns it.
	Append(role Role, text string) Entry
	// Entries returns a defensive copy of all entries in order.
	Entries() []Entry
	// Since returns the entries after the first n.
	Since(n int) []Entry
	// Len returns the number of entries.
	Len() int
}
