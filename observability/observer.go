// Package observability carries structured events out of the concierge
// subsystems. Producers emit Events; an Observer decides where they go
// (slog, a test recorder, nowhere). Level values follow the OpenTelemetry
// SeverityNumber ranges so events can be forwarded to a collector unchanged.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is an event severity on the OTel SeverityNumber scale (1-24).
type Level int

const (
	LevelVerbose Level = 5
	LevelInfo    Level = 9
	LevelWarning Level = 13
	LevelError   Level = 17
)

// bands splits the scale into its named ranges of four numbers each.
// Anything above the last band is FATAL.
var bands = [...]struct {
	upper Level
	text  string
	slog  slog.Level
}{
	{4, "TRACE", slog.LevelDebug},
	{8, "DEBUG", slog.LevelDebug},
	{12, "INFO", slog.LevelInfo},
	{16, "WARN", slog.LevelWarn},
	{20, "ERROR", slog.LevelError},
}

func (l Level) band() int {
	for i, b := range bands {
		if l <= b.upper {
			return i
		}
	}
	return -1
}

// String returns the severity text, e.g. "WARN" for LevelWarning.
func (l Level) String() string {
	if i := l.band(); i >= 0 {
		return bands[i].text
	}
	return "FATAL"
}

// SlogLevel is the slog level a SlogObserver logs the event at.
func (l Level) SlogLevel() slog.Level {
	if i := l.band(); i >= 0 {
		return bands[i].slog
	}
	return slog.LevelError
}

// EventType identifies the kind of event. Each package declares its own
// constants ("concierge.session.start", "realtime.error", ...).
type EventType string

// Event is a single observation. Data keys become slog attributes.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives events from subsystems.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Emit stamps and delivers an event. A nil observer drops it.
func Emit(ctx context.Context, obs Observer, typ EventType, level Level, source string, data map[string]any) {
	if obs == nil {
		return
	}
	obs.OnEvent(ctx, Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}
