// Package providers implements streaming chat completion against the
// supported backends, each through its official Go client.
package providers

import (
	"context"
	"fmt"

	"github.com/tailored-agentic-units/gichat/core/config"
	"github.com/tailored-agentic-units/gichat/core/response"
)

// Provider issues streaming chat completion requests to one backend.
type Provider interface {
	// Name returns the provider identifier used in configuration.
	Name() string
	// Stream starts a streaming completion for data.
	Stream(ctx context.Context, data *ChatData) (response.Stream, error)
}

// New creates the provider registered under name.
func New(name, baseURL, apiKey string) (Provider, error) {
	switch name {
	case config.ProviderOpenAI:
		return NewOpenAI(baseURL, apiKey)
	case config.ProviderAnthropic:
		return NewAnthropic(baseURL, apiKey)
	case config.ProviderOllama:
		return NewOllama(baseURL)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
}
