package main

import (
	"fmt"
	"strings"

	"github.com/entrhq/omni/pkg/chat"
	"github.com/entrhq/omni/pkg/summary"
	"github.com/entrhq/omni/pkg/types"
)

// ShortSummaryInstructions asks for a compact digest.
const ShortSummaryInstructions = `Summarize the following conversation in 3-5 sentences. Capture the main topic, the key decisions or answers, and anything left open. Write plain prose, no headings.`

// LongSummaryInstructions asks for a structured digest that can replace the
// transcript.
const LongSummaryInstructions = `Write a detailed summary of the following conversation. Preserve its structure: the questions asked, the answers given, code or commands that mattered, and decisions made. Use markdown headings and bullet points. Someone reading only this summary should be able to continue the work.`

// summaryPrompt frames the transcript with the instructions for the kind.
func summaryPrompt(kind, conversation string) string {
	instructions := ShortSummaryInstructions
	if kind == summary.KindLong {
		instructions = LongSummaryInstructions
	}
	return fmt.Sprintf("%s\n\n---\n\n%s", instructions, conversation)
}

// conversationText flattens a chat into labeled turns for summarization.
func conversationText(c *chat.Chat) string {
	var sb strings.Builder
	for _, m := range c.Messages {
		label := "User"
		if m.Role == types.RoleAssistant {
			label = "Assistant"
			if m.Provider != "" {
				label = "Assistant (" + m.Provider + ")"
			}
		}
		fmt.Fprintf(&sb, "%s: %s\n\n", label, m.Content)
	}
	return strings.TrimSpace(sb.String())
}
