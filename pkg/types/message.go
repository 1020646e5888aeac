// Package types provides shared leaf types used across the omni packages.
package types

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message typed by the human operator.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by an AI provider.
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a conversation. Messages are immutable once
// appended to a conversation; they are never edited or reordered.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Provider  string    `json:"provider,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserMessage creates a user message stamped with the current time.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// NewAssistantMessage creates an assistant message attributed to a provider.
func NewAssistantMessage(content, provider string) Message {
	return Message{Role: RoleAssistant, Content: content, Provider: provider, Timestamp: time.Now()}
}
