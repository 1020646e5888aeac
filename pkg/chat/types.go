// Package chat owns conversation lifecycle: creation, message appends,
// lookup, deletion and renaming. Metadata lives in the chat index store;
// message bodies live in append-only markdown transcripts.
package chat

import (
	"time"

	"github.com/entrhq/omni/pkg/types"
)

// Chat is a fully loaded conversation, messages included.
type Chat struct {
	ID           string
	Name         string
	Provider     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
	Project      string
	Messages     []types.Message
}

// IndexRecord is the subset of conversation metadata kept in the index for
// listing without opening the transcript file.
type IndexRecord struct {
	ChatID       string    `json:"chat_id"`
	Name         string    `json:"name"`
	FilePath     string    `json:"file_path"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Provider     string    `json:"provider"`
	MessageCount int       `json:"message_count"`
	Project      string    `json:"project,omitempty"`
}

// Context returns the messages in the provider wire shape: ordered
// role/content pairs with per-message provider attribution.
func (c *Chat) Context() []types.Message {
	out := make([]types.Message, len(c.Messages))
	copy(out, c.Messages)
	return out
}
