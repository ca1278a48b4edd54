package concierge

import "github.com/tailored-agentic-units/concierge/observability"

// Concierge event types emitted across the session lifecycle.
const (
	EventSessionStart      observability.EventType = "concierge.session.start"
	EventSessionActive     observability.EventType = "concierge.session.active"
	EventSessionSuperseded observability.EventType = "concierge.session.superseded"
	EventSessionShutdown   observability.EventType = "concierge.session.shutdown"
	EventSessionError      observability.EventType = "concierge.session.error"
	EventMute              observability.EventType = "concierge.mute"
	EventTranscriptAppend  observability.EventType = "concierge.transcript.append"
	EventSend              observability.EventType = "concierge.send"
	EventSendError         observability.EventType = "concierge.send.error"
)
