package providers

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tailored-agentic-units/gichat/core/config"
	"github.com/tailored-agentic-units/gichat/core/protocol"
	"github.com/tailored-agentic-units/gichat/core/response"
)

// OpenAI streams chat completions through the official OpenAI Go SDK.
// Any OpenAI-compatible endpoint works by overriding the base URL.
type OpenAI struct {
	client openai.Client
}

// NewOpenAI creates an OpenAI provider. The SDK's automatic retries are
// disabled: a failed attempt goes straight to the caller.
func NewOpenAI(baseURL, apiKey string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, config.ProviderOpenAI)
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1/"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)

	return &OpenAI{client: client}, nil
}

func (p *OpenAI) Name() string {
	return config.ProviderOpenAI
}

func (p *OpenAI) Stream(ctx context.Context, data *ChatData) (response.Stream, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(data.Model),
		Messages:    toOpenAIMessages(data.Messages),
		Temperature: openai.Float(data.Temperature),
	}
	if data.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(data.MaxTokens))
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	return newSDKStream(stream, openAIChunkText), nil
}

func openAIChunkText(chunk openai.ChatCompletionChunk) string {
	if len(chunk.Choices) == 0 {
		return ""
	}
	return chunk.Choices[0].Delta.Content
}

func toOpenAIMessages(messages []protocol.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case protocol.RoleSystem:
			result[i] = openai.SystemMessage(msg.Content)
		case protocol.RoleAssistant:
			result[i] = openai.AssistantMessage(msg.Content)
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}
	return result
}
