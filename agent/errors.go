package agent

import "errors"

// Sentinel errors for agent creation and the registry.
var (
	ErrNoProvider     = errors.New("agent provider not configured")
	ErrNoModel        = errors.New("agent model not configured")
	ErrAgentNotFound  = errors.New("agent not found")
	ErrAgentExists    = errors.New("agent already registered")
	ErrEmptyAgentName = errors.New("agent name is empty")
)
