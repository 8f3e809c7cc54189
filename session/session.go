// Package session holds the per-browser conversation history: an ordered,
// append-only list of user and assistant turns that lives only in memory.
package session

import (
	"github.com/tailored-agentic-units/gichat/core/protocol"
)

// Session holds an ordered sequence of conversation turns. Implementations
// must be safe for concurrent use.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// AddMessage appends a turn to the end of the history. Turns with a
	// non-conversational role are dropped.
	AddMessage(msg protocol.Message)
	// Messages returns a copy of the history in insertion order.
	Messages() []protocol.Message
	// Len returns the number of stored turns.
	Len() int
	// Clear empties the history.
	Clear()
	// Generation counts Clear calls.
	Generation() uint64
}
