// Package transcript encodes and decodes the on-disk markdown format for
// conversation transcripts and summary documents. Files carry a YAML
// front-matter header block followed by a title line and, for
// conversations, numbered message sections that are only ever appended.
package transcript

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Header is the front-matter metadata block of a conversation transcript.
type Header struct {
	ChatID       string    `yaml:"chat_id"`
	Name         string    `yaml:"name"`
	Provider     string    `yaml:"provider"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
	MessageCount int       `yaml:"message_count"`
	Project      string    `yaml:"project"`
}

// EncodeHeader renders the fixed-schema header block and title line written
// once when a conversation file is created.
func EncodeHeader(h Header) string {
	var sb strings.Builder
	sb.WriteString(delimiter + "\n")
	fmt.Fprintf(&sb, "chat_id: %s\n", h.ChatID)
	fmt.Fprintf(&sb, "name: %s\n", h.Name)
	fmt.Fprintf(&sb, "provider: %s\n", h.Provider)
	fmt.Fprintf(&sb, "created_at: %s\n", h.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "updated_at: %s\n", h.UpdatedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "message_count: %d\n", h.MessageCount)
	fmt.Fprintf(&sb, "project: %s\n", orNull(h.Project))
	sb.WriteString(delimiter + "\n\n")
	fmt.Fprintf(&sb, "# Chat: %s\n\n", h.Name)
	return sb.String()
}

// ParseHeader recovers header metadata from a transcript. The index store is
// the source of truth for metadata; this exists so an entity remains
// re-derivable from its file alone. A missing or malformed front-matter
// block yields a zero Header and no error.
func ParseHeader(raw []byte) Header {
	var h Header
	block, ok := frontMatter(string(raw))
	if !ok {
		return h
	}
	_ = yaml.Unmarshal([]byte(block), &h)
	return h
}

// frontMatter returns the text between the opening and closing delimiters.
func frontMatter(s string) (string, bool) {
	if !strings.HasPrefix(s, delimiter) {
		return "", false
	}
	rest := s[len(delimiter):]
	idx := strings.Index(rest, "\n"+delimiter)
	if idx == -1 {
		return "", false
	}
	return rest[:idx], true
}

func parseYAML(block string, out any) error {
	return yaml.Unmarshal([]byte(block), out)
}

func orNull(s string) string {
	if s == "" {
		return "null"
	}
	return s
}
