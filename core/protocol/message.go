// Package protocol defines the conversation types shared by the session store,
// the completion relay, and the completion providers.
package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Sentinel errors returned by Message.Validate.
var (
	ErrInvalidRole  = errors.New("invalid message role")
	ErrEmptyContent = errors.New("message content is empty")
)

// IsConversational reports whether messages with this role may be stored in
// a session. The system role is reserved for the instruction turn.
func (r Role) IsConversational() bool {
	return r == RoleUser || r == RoleAssistant
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleSystem || r.IsConversational()
}

// Message is one turn of a conversation. Messages are values and are never
// edited once appended to a session.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a Message with the given role and content.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.RoleUser, "Conduite à tenir devant une ascite ?")
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// Validate checks role/content well-formedness. Assistant turns may be empty
// because a completion can legitimately produce no text.
func (m Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
	}
	if m.Role != RoleAssistant && strings.TrimSpace(m.Content) == "" {
		return fmt.Errorf("%w: role %s", ErrEmptyContent, m.Role)
	}
	return nil
}
