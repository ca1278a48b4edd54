package realtime

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when sending on a closed connection.
	ErrClosed = errors.New("realtime connection closed")
	// ErrHandshake wraps every failure to establish a session.
	ErrHandshake = errors.New("realtime handshake failed")
	// ErrMissingCredential is returned by Connect for an empty credential.
	ErrMissingCredential = errors.New("realtime credential is empty")
)

// ServerError is an error frame reported by the server.
type ServerError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
}

func (e *ServerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("realtime server error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("realtime server error: %s", e.Message)
}
