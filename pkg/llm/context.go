package llm

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/entrhq/omni/pkg/types"
)

// DefaultContextTokens is the history token budget applied before a send.
const DefaultContextTokens = 32000

// ContextTrimmer drops the oldest messages from a history until it fits a
// token budget. Counting uses the cl100k_base encoding; when the encoding
// cannot be loaded a bytes/4 estimate is used instead.
type ContextTrimmer struct {
	maxTokens int
	encoding  *tiktoken.Tiktoken
}

// NewContextTrimmer builds a trimmer with the given token budget.
func NewContextTrimmer(maxTokens int) *ContextTrimmer {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &ContextTrimmer{maxTokens: maxTokens, encoding: enc}
}

// Count returns the token count of one message's content.
func (t *ContextTrimmer) Count(content string) int {
	if t.encoding != nil {
		return len(t.encoding.Encode(content, nil, nil))
	}
	return len(content)/4 + 1
}

// Trim returns the longest suffix of history that fits the budget. Messages
// are only ever dropped from the front; order is preserved and the newest
// message is always kept even when it alone exceeds the budget.
func (t *ContextTrimmer) Trim(history []types.Message) []types.Message {
	if len(history) == 0 {
		return history
	}
	total := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		total += t.Count(history[i].Content)
		if total > t.maxTokens && start < len(history) {
			break
		}
		start = i
	}
	return history[start:]
}
