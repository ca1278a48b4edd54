// Package store persists built catalog payloads so an operator can restart a
// session, or start one on another day, without uploading the files again.
// It is deliberately not a conversation store: only payloads are kept.
package store

import (
	"context"

	"github.com/tailored-agentic-units/concierge/catalog"
)

// Store saves and loads payloads by key. Implementations perform I/O on each
// call and do not cache.
type Store interface {
	// List returns every stored key in sorted order.
	List(ctx context.Context) ([]string, error)
	// Load returns the payload saved under key, or ErrKeyNotFound.
	Load(ctx context.Context, key string) (catalog.Payload, error)
	// Save writes the payload under key, overwriting any previous value.
	Save(ctx context.Context, key string, payload catalog.Payload) error
	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
