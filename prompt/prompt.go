// Package prompt holds the fixed texts the relay and the shells share: the
// instruction turn sent ahead of every conversation, the apology stored when
// a completion fails, and the cursor shown while an answer streams.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/tailored-agentic-units/gichat/core/protocol"
)

//go:embed instruction.md
var instruction string

const (
	// Apology is stored as the assistant turn of a failed exchange.
	Apology = "Désolé, une erreur s'est produite. Veuillez réessayer."

	// Cursor is appended to partial answers while they stream. It never
	// reaches stored content.
	Cursor = "▌"
)

// Instruction returns the built-in system instruction.
func Instruction() protocol.Message {
	return protocol.NewMessage(protocol.RoleSystem, Text())
}

// Text returns the built-in instruction text without surrounding whitespace.
func Text() string {
	return strings.TrimSpace(instruction)
}

// Load reads an operator-supplied instruction from path. An empty path
// returns the built-in instruction.
func Load(path string) (protocol.Message, error) {
	if path == "" {
		return Instruction(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return protocol.Message{}, fmt.Errorf("failed to read instruction: %w", err)
	}

	msg := protocol.NewMessage(protocol.RoleSystem, strings.TrimSpace(string(data)))
	if err := msg.Validate(); err != nil {
		return protocol.Message{}, fmt.Errorf("instruction %s: %w", path, err)
	}
	return msg, nil
}
