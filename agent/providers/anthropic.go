package providers

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tailored-agentic-units/gichat/core/config"
	"github.com/tailored-agentic-units/gichat/core/protocol"
	"github.com/tailored-agentic-units/gichat/core/response"
)

// The Messages API requires an explicit output budget.
const anthropicDefaultMaxTokens = 4096

// Anthropic streams chat completions through the official Anthropic Go SDK.
type Anthropic struct {
	client anthropic.Client
}

// NewAnthropic creates an Anthropic provider with SDK retries disabled.
func NewAnthropic(baseURL, apiKey string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, config.ProviderAnthropic)
	}
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/"
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)

	return &Anthropic{client: client}, nil
}

func (p *Anthropic) Name() string {
	return config.ProviderAnthropic
}

func (p *Anthropic) Stream(ctx context.Context, data *ChatData) (response.Stream, error) {
	messages, system := toAnthropicMessages(data.Messages)

	maxTokens := data.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(data.Model),
		Messages:    messages,
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(data.Temperature),
	}
	if len(system) > 0 {
		params.System = system
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	return newSDKStream(stream, anthropicEventText), nil
}

func anthropicEventText(event anthropic.MessageStreamEventUnion) string {
	delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
	if !ok {
		return ""
	}
	if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok {
		return text.Text
	}
	return ""
}

// toAnthropicMessages splits system turns out into the separate system
// parameter the Messages API expects.
func toAnthropicMessages(messages []protocol.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var system []anthropic.TextBlockParam
	result := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case protocol.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case protocol.RoleAssistant:
			result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return result, system
}
