// Package llm abstracts the response-generation backends a conversation can
// talk to. A backend is anything that can turn a prompt plus prior context
// into text: a local AI CLI (claude, codex, gemini) or an OpenAI-compatible
// API. The manager owns provider selection and the consult-and-merge flow.
package llm

import (
	"context"

	"github.com/entrhq/omni/pkg/types"
)

// Provider is a single response-generation backend.
type Provider interface {
	// Name returns the backend label stamped on messages it produces.
	Name() string

	// Installed reports whether the backend is usable on this machine
	// (binary on PATH, credentials present). Cheap; called at startup and
	// when switching.
	Installed() bool

	// Send submits a prompt with prior conversation context and blocks
	// until the full response text is available. There is no partial or
	// streaming contract; cancellation is via ctx.
	Send(ctx context.Context, prompt string, history []types.Message) (string, error)
}
