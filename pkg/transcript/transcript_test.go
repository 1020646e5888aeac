package transcript

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/omni/pkg/types"
)

func TestHeaderRoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	h := Header{
		ChatID:       "a1b2c3d4",
		Name:         "implement-oauth-authentication",
		Provider:     "claude",
		CreatedAt:    created,
		UpdatedAt:    created.Add(time.Hour),
		MessageCount: 4,
		Project:      "my-webapp",
	}

	encoded := EncodeHeader(h)
	assert.True(t, strings.HasPrefix(encoded, "---\n"))
	assert.Contains(t, encoded, "chat_id: a1b2c3d4")
	assert.Contains(t, encoded, "# Chat: implement-oauth-authentication")

	parsed := ParseHeader([]byte(encoded))
	require.Equal(t, h.ChatID, parsed.ChatID)
	assert.Equal(t, h.Name, parsed.Name)
	assert.Equal(t, h.Provider, parsed.Provider)
	assert.Equal(t, h.MessageCount, parsed.MessageCount)
	assert.Equal(t, h.Project, parsed.Project)
	assert.True(t, h.CreatedAt.Equal(parsed.CreatedAt))
}

func TestHeaderNullProject(t *testing.T) {
	encoded := EncodeHeader(Header{ChatID: "deadbeef", Name: "x", Provider: "claude"})
	assert.Contains(t, encoded, "project: null")

	parsed := ParseHeader([]byte(encoded))
	assert.Equal(t, "deadbeef", parsed.ChatID)
	assert.Empty(t, parsed.Project)
}

func TestMessageRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		msg  types.Message
	}{
		{
			name: "user message",
			msg:  types.Message{Role: types.RoleUser, Content: "How do I implement OAuth?", Timestamp: ts},
		},
		{
			name: "assistant message with provider",
			msg:  types.Message{Role: types.RoleAssistant, Content: "Use the authorization code flow.", Provider: "claude", Timestamp: ts},
		},
		{
			name: "multiline content",
			msg:  types.Message{Role: types.RoleAssistant, Content: "Step 1.\n\nStep 2.\n```go\nfunc main() {}\n```", Provider: "gemini", Timestamp: ts},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodeMessage(1, tt.msg)
			decoded := Decode([]byte(encoded))
			require.Len(t, decoded, 1)
			assert.Equal(t, tt.msg.Role, decoded[0].Role)
			assert.Equal(t, tt.msg.Content, decoded[0].Content)
			if tt.msg.Role == types.RoleAssistant {
				assert.Equal(t, tt.msg.Provider, decoded[0].Provider)
			} else {
				assert.Empty(t, decoded[0].Provider)
			}
		})
	}
}

func TestDecodeFullTranscript(t *testing.T) {
	ts := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	var sb strings.Builder
	sb.WriteString(EncodeHeader(Header{ChatID: "a1b2c3d4", Name: "oauth", Provider: "claude", CreatedAt: ts, UpdatedAt: ts}))
	for i := 1; i <= 6; i++ {
		role := types.RoleUser
		provider := ""
		if i%2 == 0 {
			role = types.RoleAssistant
			provider = "claude"
		}
		msg := types.Message{Role: role, Content: fmt.Sprintf("message %d", i), Provider: provider, Timestamp: ts}
		sb.WriteString(EncodeMessage(i, msg))
	}

	decoded := Decode([]byte(sb.String()))
	require.Len(t, decoded, 6)
	for i, m := range decoded {
		assert.Equal(t, fmt.Sprintf("message %d", i+1), m.Content)
		if i%2 == 1 {
			assert.Equal(t, types.RoleAssistant, m.Role)
			assert.Equal(t, "claude", m.Provider)
		} else {
			assert.Equal(t, types.RoleUser, m.Role)
		}
	}
}

func TestDecodeTolerant(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty input", ""},
		{"no sections", "just some markdown\n\nwith paragraphs\n"},
		{"header only", EncodeHeader(Header{ChatID: "x", Name: "y"})},
		{"garbage section markers", "## Message x - Wizard (nope)\nhello\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Decode([]byte(tt.raw)))
		})
	}
}

func TestSummaryDocument(t *testing.T) {
	created := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	h := SummaryHeader{
		SummaryID:      "f00dcafe",
		Name:           "oauth-research",
		OriginalChatID: "a1b2c3d4",
		Kind:           "long",
		Provider:       "claude",
		CreatedAt:      created,
		WordCount:      3,
	}
	body := "We compared auth flows."
	doc := EncodeSummaryDocument(h, body)

	assert.Contains(t, doc, "summary_id: f00dcafe")
	assert.Contains(t, doc, "# Summary: oauth-research")
	assert.Contains(t, doc, "**Type:** Long")
	assert.Contains(t, doc, "**Original Chat:** a1b2c3d4")

	parsed := ParseSummaryHeader([]byte(doc))
	assert.Equal(t, h.SummaryID, parsed.SummaryID)
	assert.Equal(t, h.Kind, parsed.Kind)
	assert.Equal(t, h.WordCount, parsed.WordCount)

	// The body starts at the title line; the attribution block and the
	// free-form content follow.
	extracted := ExtractSummaryBody([]byte(doc))
	assert.True(t, strings.HasPrefix(extracted, "# Summary: oauth-research"))
	assert.Contains(t, extracted, "**Original Chat:** a1b2c3d4")
	assert.Contains(t, extracted, body)
}

func TestExtractSummaryBodyWithoutHeader(t *testing.T) {
	raw := "plain text, no header at all"
	assert.Equal(t, raw, ExtractSummaryBody([]byte(raw)))
}
