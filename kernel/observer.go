package kernel

import "github.com/tailored-agentic-units/gichat/observability"

// Relay event types.
const (
	EventStart    observability.EventType = "relay.start"
	EventComplete observability.EventType = "relay.complete"
	EventError    observability.EventType = "relay.error"
	EventBusy     observability.EventType = "relay.busy"
)
