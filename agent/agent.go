// Package agent exposes the completion capability: submit an ordered list of
// role-tagged messages, receive a lazy stream of text fragments.
//
// Agents are created from config.AgentConfig by New, or lazily through a
// Registry so the underlying SDK client is built once per process and reused.
//
//	a, err := agent.New(&cfg)
//	stream, err := a.Stream(ctx, messages)
//	for stream.Next() {
//	    fmt.Print(stream.Current())
//	}
package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/gichat/agent/providers"
	"github.com/tailored-agentic-units/gichat/core/config"
	"github.com/tailored-agentic-units/gichat/core/protocol"
	"github.com/tailored-agentic-units/gichat/core/response"
)

// Agent is a configured completion backend bound to a fixed model and
// sampling temperature. Implementations must be safe for concurrent use.
type Agent interface {
	// ID returns the unique agent instance identifier.
	ID() string
	// Provider returns the backend name (openai, anthropic, ollama).
	Provider() string
	// Model returns the fixed model identifier sent with every request.
	Model() string
	// Stream submits messages with streaming enabled and returns the
	// fragment stream. Transport failures may surface either here or
	// through the stream's Err.
	Stream(ctx context.Context, messages []protocol.Message) (response.Stream, error)
}

type agent struct {
	id          string
	provider    providers.Provider
	model       string
	temperature float64
	maxTokens   int
}

// New creates an Agent from configuration. The provider credential must
// already be resolved into cfg.Provider.APIKey for providers that need one.
func New(cfg *config.AgentConfig) (Agent, error) {
	if cfg.Provider == nil || cfg.Provider.Name == "" {
		return nil, ErrNoProvider
	}
	if cfg.Model == nil || cfg.Model.Name == "" {
		return nil, ErrNoModel
	}

	p, err := providers.New(cfg.Provider.Name, cfg.Provider.BaseURL, cfg.Provider.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	return &agent{
		id:          uuid.Must(uuid.NewV7()).String(),
		provider:    p,
		model:       cfg.Model.Name,
		temperature: cfg.Model.TemperatureOrDefault(),
		maxTokens:   cfg.Model.MaxTokens,
	}, nil
}

func (a *agent) ID() string {
	return a.id
}

func (a *agent) Provider() string {
	return a.provider.Name()
}

func (a *agent) Model() string {
	return a.model
}

func (a *agent) Stream(ctx context.Context, messages []protocol.Message) (response.Stream, error) {
	return a.provider.Stream(ctx, &providers.ChatData{
		Model:       a.model,
		Messages:    messages,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
}
