package observability

import "context"

// MultiObserver fans events out to several observers in registration order.
// The chat surface uses it to feed both the log file and the status line.
type MultiObserver []Observer

// NewMultiObserver drops nil entries and returns the rest as one Observer.
func NewMultiObserver(observers ...Observer) MultiObserver {
	filtered := make(MultiObserver, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			filtered = append(filtered, obs)
		}
	}
	return filtered
}

func (m MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m {
		obs.OnEvent(ctx, event)
	}
}
