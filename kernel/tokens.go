package kernel

import (
	"sync"

	"github.com/tailored-agentic-units/gichat/core/protocol"
	"github.com/tiktoken-go/tokenizer"
)

// Per-message framing overhead added by chat-format requests.
const tokensPerMessage = 4

var (
	encoderOnce sync.Once
	encoder     tokenizer.Codec
)

// EstimateTokens approximates the prompt size of messages with the
// cl100k_base encoding. It returns 0 when the encoding is unavailable.
func EstimateTokens(messages []protocol.Message) int {
	encoderOnce.Do(func() {
		enc, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			encoder = enc
		}
	})
	if encoder == nil {
		return 0
	}

	total := 0
	for _, msg := range messages {
		ids, _, _ := encoder.Encode(msg.Content)
		total += len(ids) + tokensPerMessage
	}
	return total
}
