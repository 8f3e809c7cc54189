// Package kernel implements the completion relay: it prepends the fixed
// instruction to a session's history, streams the answer from the agent,
// and records exactly one assistant turn per accepted question.
//
// The kernel initializes from configuration via New. Functional options
// allow test overrides of the agent, observer, and instruction.
//
//	k, err := kernel.New(&cfg)
//	ex, err := k.Submit(ctx, sess, "Conduite à tenir devant une ascite ?")
//	for ex.Next() {
//	    render(ex.Display())
//	}
//	result := ex.Commit()
package kernel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tailored-agentic-units/gichat/agent"
	"github.com/tailored-agentic-units/gichat/core/config"
	"github.com/tailored-agentic-units/gichat/core/protocol"
	"github.com/tailored-agentic-units/gichat/core/response"
	"github.com/tailored-agentic-units/gichat/observability"
	"github.com/tailored-agentic-units/gichat/prompt"
	"github.com/tailored-agentic-units/gichat/session"
)

// DefaultAgent is the registry name of the configured agent.
const DefaultAgent = "default"

// Option configures a Kernel after config-driven initialization.
type Option func(*Kernel)

// WithAgent overrides the config-created agent. Credential resolution is
// skipped when an agent is supplied.
func WithAgent(a agent.Agent) Option {
	return func(k *Kernel) { k.agent = a }
}

// WithObserver overrides the config-selected observer.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) { k.observer = o }
}

// WithInstruction overrides the instruction turn.
func WithInstruction(msg protocol.Message) Option {
	return func(k *Kernel) { k.instruction = msg }
}

// Kernel relays questions to the completion agent. It holds no conversation
// state of its own beyond the per-session in-flight guard.
type Kernel struct {
	agent       agent.Agent
	registry    *agent.Registry
	observer    observability.Observer
	instruction protocol.Message

	inflight sync.Map

	tokensOnce        sync.Once
	instructionTokens int
}

// New creates a Kernel from configuration. The provider credential is
// resolved here, so a missing key fails at startup rather than on the first
// question. The agent itself is created lazily on first use and reused for
// the life of the process.
func New(cfg *Config, opts ...Option) (*Kernel, error) {
	k := &Kernel{registry: agent.NewRegistry()}

	for _, opt := range opts {
		opt(k)
	}

	if k.observer == nil {
		obs, err := observability.GetObserver(cfg.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to create observer: %w", err)
		}
		k.observer = obs
	}

	if k.instruction.Content == "" {
		msg, err := prompt.Load(cfg.InstructionPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load instruction: %w", err)
		}
		k.instruction = msg
	}

	if k.agent == nil {
		agentCfg := cfg.Agent
		if agentCfg.Provider == nil {
			return nil, agent.ErrNoProvider
		}
		provider := *agentCfg.Provider

		key, err := config.ResolveAPIKey(&provider, cfg.SecretsPath)
		if err != nil {
			return nil, err
		}
		provider.APIKey = key
		agentCfg.Provider = &provider

		if err := k.registry.Register(DefaultAgent, agentCfg); err != nil {
			return nil, fmt.Errorf("failed to register agent: %w", err)
		}
	}

	return k, nil
}

// Instruction returns the system turn prepended to every request.
func (k *Kernel) Instruction() protocol.Message {
	return k.instruction
}

// Agents describes the completion agents the kernel relays to. Listing
// never instantiates an agent.
func (k *Kernel) Agents() []agent.AgentInfo {
	if k.agent != nil {
		return []agent.AgentInfo{{
			Name:     DefaultAgent,
			Provider: k.agent.Provider(),
			Model:    k.agent.Model(),
		}}
	}
	return k.registry.List()
}

// Agent returns the completion agent, creating it on first call.
func (k *Kernel) Agent() (agent.Agent, error) {
	if k.agent != nil {
		return k.agent, nil
	}
	return k.registry.Get(DefaultAgent)
}

// Messages returns the request payload for history: the instruction turn
// followed by every history turn in order.
func (k *Kernel) Messages(history []protocol.Message) []protocol.Message {
	messages := make([]protocol.Message, 0, len(history)+1)
	messages = append(messages, k.instruction)
	messages = append(messages, history...)
	return messages
}

// Complete starts a streaming completion over history. Failures to start
// the call are reported through the returned Completion, never as a
// separate error, so every caller handles one outcome path.
func (k *Kernel) Complete(ctx context.Context, history []protocol.Message) *Completion {
	c := &Completion{ctx: ctx, started: time.Now()}

	a, err := k.Agent()
	if err != nil {
		c.fail(err)
		return c
	}
	c.agent = a

	stream, err := a.Stream(ctx, k.Messages(history))
	if err != nil {
		c.fail(fmt.Errorf("agent call failed: %w", err))
		return c
	}

	c.stream = stream
	return c
}

// Submit accepts a question for sess. Blank questions return
// ErrEmptyQuestion and a session with an exchange in flight returns
// ErrBusy; neither changes the session. Otherwise the trimmed question is
// appended as a user turn and the completion starts. The caller must call
// Commit on the returned Exchange.
func (k *Kernel) Submit(ctx context.Context, sess session.Session, question string) (*Exchange, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	if _, busy := k.inflight.LoadOrStore(sess.ID(), struct{}{}); busy {
		k.emit(ctx, EventBusy, observability.LevelWarning, "kernel.Submit", map[string]any{
			"session": sess.ID(),
		})
		return nil, ErrBusy
	}

	sess.AddMessage(protocol.NewMessage(protocol.RoleUser, question))
	generation := sess.Generation()
	history := sess.Messages()

	completion := k.Complete(ctx, history)

	data := map[string]any{
		"session":       sess.ID(),
		"messages":      len(history) + 1,
		"prompt_tokens": k.promptTokens(history),
	}
	if a := completion.agent; a != nil {
		data["agent"] = a.ID()
		data["provider"] = a.Provider()
		data["model"] = a.Model()
	}
	k.emit(ctx, EventStart, observability.LevelInfo, "kernel.Submit", data)

	return &Exchange{
		Completion: completion,
		kernel:     k,
		session:    sess,
		generation: generation,
	}, nil
}

// Ask submits question and waits for the full answer. The returned Result
// carries the stored assistant content and, on failure, the error detail.
func (k *Kernel) Ask(ctx context.Context, sess session.Session, question string) (response.Result, error) {
	ex, err := k.Submit(ctx, sess, question)
	if err != nil {
		return response.Result{}, err
	}
	defer ex.Close()

	for ex.Next() {
	}
	return ex.Commit(), nil
}

// Busy reports whether sess has an exchange in flight.
func (k *Kernel) Busy(sess session.Session) bool {
	_, busy := k.inflight.Load(sess.ID())
	return busy
}

// promptTokens estimates the request size for history. The instruction is
// encoded once per Kernel.
func (k *Kernel) promptTokens(history []protocol.Message) int {
	k.tokensOnce.Do(func() {
		k.instructionTokens = EstimateTokens([]protocol.Message{k.instruction})
	})
	return k.instructionTokens + EstimateTokens(history)
}

func (k *Kernel) release(sess session.Session) {
	k.inflight.Delete(sess.ID())
}

func (k *Kernel) emit(ctx context.Context, t observability.EventType, level observability.Level, source string, data map[string]any) {
	k.observer.OnEvent(context.WithoutCancel(ctx), observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}

func cancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
