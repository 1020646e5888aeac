package picker

import (
	"fmt"
	"strings"

	"github.com/entrhq/omni/pkg/hierarchy"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Conversations"))
	sb.WriteString("\n\n")

	nodes := m.machine.Nodes()
	if len(nodes) == 0 {
		sb.WriteString(metaStyle.Render("Nothing here yet. Start a chat to see it listed."))
		sb.WriteString("\n")
		return sb.String()
	}

	for i, n := range nodes {
		sb.WriteString(m.renderNode(n, i == m.machine.Cursor()))
		sb.WriteString("\n")
	}

	switch m.machine.Mode() {
	case ModeConfirmingDelete:
		t := m.machine.Target()
		sb.WriteString("\n")
		sb.WriteString(warnStyle.Render(fmt.Sprintf("Delete %s %q?", t.Kind, t.Name)))
		sb.WriteString(helpStyle.Render("  y confirm · n cancel · D widen to group"))
		sb.WriteString("\n")
	case ModeRenaming:
		t := m.machine.Target()
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Rename %s %q:\n", t.Kind, t.Name))
		sb.WriteString(m.input.View())
		sb.WriteString("\n")
		sb.WriteString(helpStyle.Render("enter save · esc cancel"))
		sb.WriteString("\n")
	case ModeViewingSummary:
		if m.summaryBody != "" {
			sb.WriteString("\n")
			sb.WriteString(boxStyle.Render(m.summaryBody))
			sb.WriteString("\n")
			sb.WriteString(helpStyle.Render("esc back"))
			sb.WriteString("\n")
		}
	default:
		sb.WriteString("\n")
		sb.WriteString(helpStyle.Render("↑/↓ move · enter open · d delete · r rename · D/R group · esc quit"))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderNode(n hierarchy.Node, selected bool) string {
	indent := strings.Repeat("  ", n.Depth)
	switch n.Kind {
	case hierarchy.KindNamespace:
		return indent + namespaceStyle.Render("◆ "+n.Name)
	case hierarchy.KindProject:
		label := "▸ " + n.Name
		if n.Project != nil && n.Project.ChatCount() > 0 {
			label += metaStyle.Render(fmt.Sprintf(" (%d)", n.Project.ChatCount()))
		}
		return indent + projectStyle.Render(label)
	case hierarchy.KindSummary:
		meta := metaStyle.Render(" · summary")
		if selected {
			return indent + selectedStyle.Render("> "+n.Name) + meta
		}
		return indent + "  " + leafStyle.Render(n.Name) + meta
	default:
		var meta string
		if n.Conversation != nil {
			meta = metaStyle.Render(fmt.Sprintf(" · %d msgs · %s", n.Conversation.MessageCount, n.Conversation.Provider))
		}
		if selected {
			return indent + selectedStyle.Render("> "+n.Name) + meta
		}
		return indent + "  " + leafStyle.Render(n.Name) + meta
	}
}
