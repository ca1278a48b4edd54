package observability

import "context"

// ObserverFunc lets a plain function serve as an Observer.
type ObserverFunc func(ctx context.Context, event Event)

func (f ObserverFunc) OnEvent(ctx context.Context, event Event) { f(ctx, event) }

// Discard drops every event. Configuration selects it by the name "noop";
// packages use it as their observer until one is supplied.
var Discard Observer = ObserverFunc(func(context.Context, Event) {})
