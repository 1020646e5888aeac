package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/omni/pkg/logging"
	"github.com/entrhq/omni/pkg/types"
)

var (
	// ErrUnknownProvider is returned when no registered provider matches.
	ErrUnknownProvider = errors.New("llm: unknown provider")
	// ErrUnavailable is returned when a provider is registered but not
	// usable on this machine.
	ErrUnavailable = errors.New("llm: provider not available")
	// ErrNoProviders is returned when no registered provider is installed.
	ErrNoProviders = errors.New("llm: no providers available")
)

// DefaultOrder is the provider preference used to pick the initial active
// backend.
var DefaultOrder = []string{"claude", "codex", "gemini"}

// Manager holds the registered providers and the active selection.
type Manager struct {
	providers map[string]Provider
	order     []string
	active    string
	trimmer   *ContextTrimmer
	log       *logging.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger routes provider events to the given session logger.
func WithLogger(l *logging.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// WithContextTrimmer overrides the token-budget trimmer applied to history
// before each send.
func WithContextTrimmer(t *ContextTrimmer) ManagerOption {
	return func(m *Manager) { m.trimmer = t }
}

// NewManager registers the given providers and activates the first
// installed one in registration order. It fails only when none is usable.
func NewManager(providers []Provider, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		providers: make(map[string]Provider, len(providers)),
		trimmer:   NewContextTrimmer(DefaultContextTokens),
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, p := range providers {
		if _, dup := m.providers[p.Name()]; dup {
			continue
		}
		m.providers[p.Name()] = p
		m.order = append(m.order, p.Name())
	}
	for _, name := range m.order {
		if m.providers[name].Installed() {
			m.active = name
			break
		}
	}
	if m.active == "" {
		return nil, ErrNoProviders
	}
	m.log.Infof("active provider: %s", m.active)
	return m, nil
}

// Active returns the name of the current backend.
func (m *Manager) Active() string { return m.active }

// Names returns the registered provider names in registration order.
func (m *Manager) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Available returns the names of providers that are installed.
func (m *Manager) Available() []string {
	var out []string
	for _, name := range m.order {
		if m.providers[name].Installed() {
			out = append(out, name)
		}
	}
	return out
}

// Switch changes the active backend.
func (m *Manager) Switch(name string) error {
	p, ok := m.providers[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if !p.Installed() {
		return fmt.Errorf("%w: %q", ErrUnavailable, name)
	}
	m.active = name
	m.log.Infof("switched provider to %s", name)
	return nil
}

// Send submits the prompt to the active backend with history trimmed to
// the context token budget.
func (m *Manager) Send(ctx context.Context, prompt string, history []types.Message) (string, error) {
	return m.sendTo(ctx, m.active, prompt, history)
}

func (m *Manager) sendTo(ctx context.Context, name, prompt string, history []types.Message) (string, error) {
	p, ok := m.providers[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if !p.Installed() {
		return "", fmt.Errorf("%w: %q", ErrUnavailable, name)
	}
	trimmed := m.trimmer.Trim(history)
	if dropped := len(history) - len(trimmed); dropped > 0 {
		m.log.Debugf("trimmed %d oldest messages to fit context budget", dropped)
	}
	return p.Send(ctx, prompt, trimmed)
}

// Consultation is the outcome of asking two backends the same question and
// merging their answers with the primary.
type Consultation struct {
	Primary   string
	Secondary string
	Merged    string
}

// Consult asks the active backend and one other backend the same prompt,
// then has the active backend merge the two answers. Three sends total; the
// merge uses the primary backend.
func (m *Manager) Consult(ctx context.Context, prompt, other string, history []types.Message) (Consultation, error) {
	var c Consultation

	primary, err := m.sendTo(ctx, m.active, prompt, history)
	if err != nil {
		return c, fmt.Errorf("llm: consult primary %s: %w", m.active, err)
	}
	c.Primary = primary

	secondary, err := m.sendTo(ctx, other, prompt, history)
	if err != nil {
		return c, fmt.Errorf("llm: consult secondary %s: %w", other, err)
	}
	c.Secondary = secondary

	merged, err := m.sendTo(ctx, m.active, mergePrompt(prompt, m.active, primary, other, secondary), nil)
	if err != nil {
		return c, fmt.Errorf("llm: consult merge: %w", err)
	}
	c.Merged = merged
	return c, nil
}

// mergePrompt frames the two answers for the primary backend to reconcile.
func mergePrompt(question, nameA, answerA, nameB, answerB string) string {
	var sb strings.Builder
	sb.WriteString("Two assistants answered the same question. Merge their answers into one response, keeping the strongest points of each and resolving disagreements explicitly.\n\n")
	fmt.Fprintf(&sb, "Question:\n%s\n\n", question)
	fmt.Fprintf(&sb, "Answer from %s:\n%s\n\n", nameA, answerA)
	fmt.Fprintf(&sb, "Answer from %s:\n%s\n", nameB, answerB)
	return sb.String()
}
