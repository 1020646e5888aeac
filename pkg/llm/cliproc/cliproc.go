// Package cliproc implements llm.Provider over locally installed AI CLIs.
// Each provider shells out to its binary with the prompt on the command
// line and reads the full response from stdout; history is flattened into
// the prompt since the CLIs are stateless between invocations.
package cliproc

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/entrhq/omni/pkg/types"
)

// Provider runs one AI CLI binary.
type Provider struct {
	name   string
	binary string
	args   []string
}

// NewClaude returns a provider backed by the claude CLI.
func NewClaude() *Provider {
	return &Provider{name: "claude", binary: "claude", args: []string{"-p"}}
}

// NewCodex returns a provider backed by the codex CLI.
func NewCodex() *Provider {
	return &Provider{name: "codex", binary: "codex", args: []string{"exec"}}
}

// NewGemini returns a provider backed by the gemini CLI.
func NewGemini() *Provider {
	return &Provider{name: "gemini", binary: "gemini", args: []string{"-p"}}
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return p.name }

// Installed reports whether the binary is on PATH.
func (p *Provider) Installed() bool {
	_, err := exec.LookPath(p.binary)
	return err == nil
}

// Send runs the CLI with the flattened prompt and returns trimmed stdout.
func (p *Provider) Send(ctx context.Context, prompt string, history []types.Message) (string, error) {
	args := append(append([]string{}, p.args...), flatten(prompt, history))
	cmd := exec.CommandContext(ctx, p.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("cliproc: %s: %w", p.name, ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("cliproc: %s: %s", p.name, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// flatten renders prior turns above the prompt so a stateless CLI sees the
// conversation.
func flatten(prompt string, history []types.Message) string {
	if len(history) == 0 {
		return prompt
	}
	var sb strings.Builder
	sb.WriteString("Previous conversation:\n\n")
	for _, m := range history {
		label := "User"
		if m.Role == types.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&sb, "%s: %s\n\n", label, m.Content)
	}
	sb.WriteString("Current message:\n\n")
	sb.WriteString(prompt)
	return sb.String()
}
