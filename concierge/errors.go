package concierge

import (
	"errors"
	"fmt"
)

var (
	// ErrSuperseded is returned by a StartSession that was overtaken by a
	// later StartSession or by Shutdown before it could become active.
	ErrSuperseded = errors.New("session start superseded")
	// ErrConnectionClosed is recorded when the server ends an active
	// session without reporting an error.
	ErrConnectionClosed = errors.New("connection closed by server")
)

// Phase identifies where a connection failed.
type Phase string

const (
	PhaseHandshake Phase = "handshake"
	PhaseSession   Phase = "session"
)

// ConnectionError reports a realtime transport failure during the handshake
// or while a session was active. It is never retried automatically.
type ConnectionError struct {
	Phase Phase
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("realtime %s failed: %v", e.Phase, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
