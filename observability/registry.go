package observability

import (
	"fmt"
	"log/slog"
	"sync"
)

// registry maps the observer names used in configuration files to
// observers. "noop" and "slog" are always present; the CLI re-registers
// "slog" once it has built its logger.
var registry = struct {
	sync.RWMutex
	byName map[string]Observer
}{
	byName: map[string]Observer{
		"noop": Discard,
		"slog": NewSlogObserver(slog.Default()),
	},
}

// GetObserver looks up an observer by its configured name.
func GetObserver(name string) (Observer, error) {
	registry.RLock()
	obs, ok := registry.byName[name]
	registry.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown observer: %s", name)
	}
	return obs, nil
}

// RegisterObserver binds name to observer, replacing any previous binding.
func RegisterObserver(name string, observer Observer) {
	registry.Lock()
	registry.byName[name] = observer
	registry.Unlock()
}
