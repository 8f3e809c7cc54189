package kernel

import (
	"sync"

	"github.com/tailored-agentic-units/gichat/core/protocol"
	"github.com/tailored-agentic-units/gichat/core/response"
	"github.com/tailored-agentic-units/gichat/observability"
	"github.com/tailored-agentic-units/gichat/prompt"
	"github.com/tailored-agentic-units/gichat/session"
)

// Exchange is one accepted question and its streaming answer. Commit
// appends exactly one assistant turn, unless the session was cleared while
// the exchange was in flight.
type Exchange struct {
	*Completion

	kernel     *Kernel
	session    session.Session
	generation uint64

	once   sync.Once
	result response.Result
}

// Commit finishes the exchange and stores the assistant turn: the full
// answer on success, prompt.Apology on failure or cancellation. The
// returned Result's Content is that text. Nothing is stored when the
// session was cleared while the exchange was in flight. Commit is
// idempotent and releases the session for the next question.
func (e *Exchange) Commit() response.Result {
	e.once.Do(func() {
		result := e.Completion.Result()
		if !result.OK() {
			result.Content = prompt.Apology
		}

		cleared := e.session.Generation() != e.generation
		data := map[string]any{
			"session":   e.session.ID(),
			"fragments": e.Fragments(),
			"duration":  e.Elapsed().String(),
		}
		if cleared {
			data["cleared"] = true
		}

		if result.OK() {
			data["length"] = len(result.Content)
			e.kernel.emit(e.ctx, EventComplete, observability.LevelInfo, "kernel.Commit", data)
		} else {
			level := observability.LevelError
			if cancelled(result.Err) {
				level = observability.LevelWarning
			}
			data["error"] = result.Err.Error()
			e.kernel.emit(e.ctx, EventError, level, "kernel.Commit", data)
		}

		if !cleared {
			e.session.AddMessage(protocol.NewMessage(protocol.RoleAssistant, result.Content))
		}
		e.kernel.release(e.session)
		e.result = result
	})
	return e.result
}
