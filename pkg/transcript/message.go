package transcript

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/omni/pkg/types"
)

// sectionTimeLayout is the timestamp format used in message section headers.
const sectionTimeLayout = "2006-01-02 15:04:05"

const sectionPrefix = "## Message "

// EncodeMessage renders one message as a numbered section. The block is
// appended verbatim to the transcript file; existing content is never
// rewritten, so each append is O(1) in the size of the conversation.
func EncodeMessage(n int, m types.Message) string {
	ts := m.Timestamp.Format(sectionTimeLayout)
	var sb strings.Builder
	if m.Role == types.RoleAssistant {
		fmt.Fprintf(&sb, "%s%d - Assistant (%s) (%s)\n", sectionPrefix, n, m.Provider, ts)
	} else {
		fmt.Fprintf(&sb, "%s%d - User (%s)\n", sectionPrefix, n, ts)
	}
	sb.WriteString(m.Content)
	sb.WriteString("\n\n")
	return sb.String()
}

// Decode recovers the message sequence from raw transcript content. It scans
// for section header lines and takes everything up to the next section (or
// end of input) as the body, trimmed of surrounding whitespace. Content that
// matches no section decodes to zero messages rather than an error; a
// truncated trailing block still yields every complete section before it.
func Decode(raw []byte) []types.Message {
	var (
		messages []types.Message
		current  *types.Message
		body     []string
	)
	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(strings.Join(body, "\n"))
		messages = append(messages, *current)
		current = nil
		body = nil
	}

	sc := bufio.NewScanner(strings.NewReader(string(raw)))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if m, ok := parseSectionHeader(line); ok {
			flush()
			current = &m
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()
	return messages
}

// parseSectionHeader matches "## Message <n> - User (<ts>)" and
// "## Message <n> - Assistant (<provider>) (<ts>)". The provider label is
// only recorded for assistant turns; user turns are always the operator.
func parseSectionHeader(line string) (types.Message, bool) {
	var msg types.Message
	rest, ok := strings.CutPrefix(line, sectionPrefix)
	if !ok {
		return msg, false
	}
	num, rest, ok := strings.Cut(rest, " - ")
	if !ok || !isDigits(num) {
		return msg, false
	}
	role, rest, ok := strings.Cut(rest, " ")
	if !ok {
		return msg, false
	}
	switch role {
	case "User":
		msg.Role = types.RoleUser
	case "Assistant":
		msg.Role = types.RoleAssistant
	default:
		return msg, false
	}
	groups := parenGroups(rest)
	if len(groups) == 0 {
		return msg, false
	}
	if msg.Role == types.RoleAssistant && len(groups) >= 2 {
		msg.Provider = groups[0]
	}
	if ts, err := time.ParseInLocation(sectionTimeLayout, groups[len(groups)-1], time.Local); err == nil {
		msg.Timestamp = ts
	}
	return msg, true
}

// parenGroups extracts the contents of each (...) group in s.
func parenGroups(s string) []string {
	var groups []string
	for {
		open := strings.IndexByte(s, '(')
		if open == -1 {
			return groups
		}
		close := strings.IndexByte(s[open:], ')')
		if close == -1 {
			return groups
		}
		groups = append(groups, s[open+1:open+close])
		s = s[open+close+1:]
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
