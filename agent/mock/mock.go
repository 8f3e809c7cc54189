// Package mock provides a scripted agent.Agent for tests.
package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/gichat/core/protocol"
	"github.com/tailored-agentic-units/gichat/core/response"
)

// Agent replays scripted fragments. Set Err to fail the stream after the
// fragments, StartErr to fail the call outright, or Gate to hold each
// fragment until a value is received. A cancelled context fails the stream
// only while fragments remain.
type Agent struct {
	Fragments []string
	Err       error
	StartErr  error
	Gate      chan struct{}

	// StreamFunc replaces the scripted behavior when set.
	StreamFunc func(ctx context.Context, messages []protocol.Message) (response.Stream, error)

	mu    sync.Mutex
	calls [][]protocol.Message
}

// NewAgent creates a mock agent that streams fragments in order.
func NewAgent(fragments ...string) *Agent {
	return &Agent{Fragments: fragments}
}

func (m *Agent) ID() string       { return "mock" }
func (m *Agent) Provider() string { return "mock" }
func (m *Agent) Model() string    { return "mock-model" }

func (m *Agent) Stream(ctx context.Context, messages []protocol.Message) (response.Stream, error) {
	m.mu.Lock()
	m.calls = append(m.calls, slices.Clone(messages))
	m.mu.Unlock()

	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, messages)
	}
	if m.StartErr != nil {
		return nil, m.StartErr
	}

	return &stream{
		ctx:       ctx,
		fragments: slices.Clone(m.Fragments),
		final:     m.Err,
		gate:      m.Gate,
	}, nil
}

// Calls returns the message lists received by Stream, in call order.
func (m *Agent) Calls() [][]protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

type stream struct {
	ctx       context.Context
	fragments []string
	final     error
	gate      chan struct{}

	current string
	err     error
	closed  bool
}

func (s *stream) Next() bool {
	if s.err != nil || s.closed {
		return false
	}
	if len(s.fragments) == 0 {
		s.err = s.final
		return false
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return false
	}

	if s.gate != nil {
		select {
		case <-s.gate:
		case <-s.ctx.Done():
			s.err = s.ctx.Err()
			return false
		}
	}

	s.current, s.fragments = s.fragments[0], s.fragments[1:]
	return true
}

func (s *stream) Current() string { return s.current }
func (s *stream) Err() error      { return s.err }

func (s *stream) Close() error {
	s.closed = true
	return nil
}
