package transcript

import (
	"fmt"
	"strings"
	"time"
)

// SummaryHeader is the front-matter metadata block of a summary document.
type SummaryHeader struct {
	SummaryID      string    `yaml:"summary_id"`
	Name           string    `yaml:"name"`
	OriginalChatID string    `yaml:"original_chat_id"`
	Kind           string    `yaml:"type"`
	Provider       string    `yaml:"provider"`
	CreatedAt      time.Time `yaml:"created_at"`
	Project        string    `yaml:"project"`
	WordCount      int       `yaml:"word_count"`
}

// EncodeSummaryDocument renders a complete summary document: header block,
// title, attribution lines, a separator, then the free-form summary body.
// Summary documents are written once and never mutated.
func EncodeSummaryDocument(h SummaryHeader, content string) string {
	var sb strings.Builder
	sb.WriteString(delimiter + "\n")
	fmt.Fprintf(&sb, "summary_id: %s\n", h.SummaryID)
	fmt.Fprintf(&sb, "name: %s\n", h.Name)
	fmt.Fprintf(&sb, "original_chat_id: %s\n", h.OriginalChatID)
	fmt.Fprintf(&sb, "type: %s\n", h.Kind)
	fmt.Fprintf(&sb, "provider: %s\n", h.Provider)
	fmt.Fprintf(&sb, "created_at: %s\n", h.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "project: %s\n", orNull(h.Project))
	fmt.Fprintf(&sb, "word_count: %d\n", h.WordCount)
	sb.WriteString(delimiter + "\n\n")
	fmt.Fprintf(&sb, "# Summary: %s\n\n", h.Name)
	fmt.Fprintf(&sb, "**Type:** %s  \n", capitalize(h.Kind))
	fmt.Fprintf(&sb, "**Generated:** %s  \n", h.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&sb, "**Original Chat:** %s  \n\n", h.OriginalChatID)
	sb.WriteString(delimiter + "\n\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	return sb.String()
}

// ParseSummaryHeader recovers summary metadata from a document. Malformed
// front-matter yields a zero header, never an error.
func ParseSummaryHeader(raw []byte) SummaryHeader {
	var h SummaryHeader
	block, ok := frontMatter(string(raw))
	if !ok {
		return h
	}
	_ = parseYAML(block, &h)
	return h
}

// ExtractSummaryBody returns everything after the second header-delimiter
// occurrence, trimmed. If the document has no recognizable header the whole
// text is returned as the body.
func ExtractSummaryBody(raw []byte) string {
	s := string(raw)
	parts := strings.Split(s, delimiter+"\n")
	if len(parts) < 3 {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(strings.Join(parts[2:], delimiter+"\n"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
