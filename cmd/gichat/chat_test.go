package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/gichat/agent/mock"
	"github.com/tailored-agentic-units/gichat/kernel"
	"github.com/tailored-agentic-units/gichat/observability"
	"github.com/tailored-agentic-units/gichat/prompt"
	"github.com/tailored-agentic-units/gichat/session"
)

func newTestKernel(t *testing.T, a *mock.Agent) *kernel.Kernel {
	t.Helper()
	cfg := kernel.DefaultConfig()
	k, err := kernel.New(&cfg, kernel.WithAgent(a), kernel.WithObserver(observability.NoOpObserver{}))
	if err != nil {
		t.Fatalf("kernel.New failed: %v", err)
	}
	return k
}

func TestRepl(t *testing.T) {
	k := newTestKernel(t, mock.NewAgent("Hel", "lo"))
	sess := session.NewMemorySession()

	in := strings.NewReader("Bonjour\n\n/history\n/clear\n/quit\nignored\n")
	var out bytes.Buffer

	if err := repl(context.Background(), k, sess, in, &out); err != nil {
		t.Fatalf("repl failed: %v", err)
	}

	if !strings.Contains(out.String(), "Hello") {
		t.Errorf("answer not printed:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Bonjour") {
		t.Errorf("history not printed:\n%s", out.String())
	}
	if sess.Len() != 0 {
		t.Errorf("got %d turns after /clear, want 0", sess.Len())
	}
}

func TestRepl_Failure(t *testing.T) {
	k := newTestKernel(t, &mock.Agent{StartErr: errors.New("unauthorized")})
	sess := session.NewMemorySession()

	var out bytes.Buffer
	if err := repl(context.Background(), k, sess, strings.NewReader("question\n"), &out); err != nil {
		t.Fatalf("repl failed: %v", err)
	}

	if !strings.Contains(out.String(), "unauthorized") {
		t.Errorf("failure detail not printed:\n%s", out.String())
	}
	msgs := sess.Messages()
	if len(msgs) != 2 || msgs[1].Content != prompt.Apology {
		t.Errorf("got %+v, want user + apology", msgs)
	}
}

func TestOptions_Load(t *testing.T) {
	opts := options{provider: "ollama", model: "llama3.1:8b", temperature: 0}

	cfg, err := opts.load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Agent.Provider.Name != "ollama" || cfg.Agent.Model.Name != "llama3.1:8b" {
		t.Errorf("got %+v %+v", cfg.Agent.Provider, cfg.Agent.Model)
	}
	if got := cfg.Agent.Model.TemperatureOrDefault(); got != 0 {
		t.Errorf("got temperature %v, want explicit 0", got)
	}

	defaults, err := (&options{temperature: -1}).load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if defaults.Agent.Model.Name != "gpt-4o" || defaults.Agent.Model.TemperatureOrDefault() != 0.3 {
		t.Errorf("defaults changed: %+v", defaults.Agent.Model)
	}
}
