package providers

import "github.com/tailored-agentic-units/gichat/core/protocol"

// ChatData contains everything a provider needs to issue one streaming
// chat completion request.
type ChatData struct {
	Model       string
	Messages    []protocol.Message
	Temperature float64
	MaxTokens   int
}
