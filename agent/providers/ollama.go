package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
	"github.com/tailored-agentic-units/gichat/core/config"
	"github.com/tailored-agentic-units/gichat/core/protocol"
	"github.com/tailored-agentic-units/gichat/core/response"
)

// Ollama streams chat completions from a local Ollama server.
type Ollama struct {
	client *api.Client
}

// NewOllama creates an Ollama provider. No credential is needed.
func NewOllama(baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &Ollama{
		client: api.NewClient(parsed, http.DefaultClient),
	}, nil
}

func (p *Ollama) Name() string {
	return config.ProviderOllama
}

func (p *Ollama) Stream(ctx context.Context, data *ChatData) (response.Stream, error) {
	stream := true
	options := map[string]any{"temperature": data.Temperature}
	if data.MaxTokens > 0 {
		options["num_predict"] = data.MaxTokens
	}

	req := &api.ChatRequest{
		Model:    data.Model,
		Messages: toOllamaMessages(data.Messages),
		Stream:   &stream,
		Options:  options,
	}

	return newPushStream(ctx, func(ctx context.Context, emit func(string) error) error {
		return p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			return emit(resp.Message.Content)
		})
	}), nil
}

func toOllamaMessages(messages []protocol.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return result
}
