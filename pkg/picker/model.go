package picker

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/omni/pkg/hierarchy"
)

// SummaryLoader fetches a summary's body for in-place viewing.
type SummaryLoader func(id string) (string, error)

// Model adapts the picker state machine to bubbletea. Navigation and the
// summary view run inside one program; every other emitted result quits the
// program for the caller to execute, which then re-invokes the picker with
// refreshed state.
type Model struct {
	machine *Machine
	input   textinput.Model

	loadSummary SummaryLoader
	summaryBody string

	result   *Result
	quitting bool
	width    int
}

// ModelOption configures the picker model.
type ModelOption func(*Model)

// WithSummaryLoader enables in-place summary viewing.
func WithSummaryLoader(load SummaryLoader) ModelOption {
	return func(m *Model) { m.loadSummary = load }
}

// New builds a picker over the composed node sequence.
func New(nodes []hierarchy.Node, opts ...ModelOption) Model {
	input := textinput.New()
	input.Placeholder = "new name"
	input.CharLimit = 80
	input.Width = 40

	m := Model{machine: NewMachine(nodes), input: input}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Result returns the emitted result once the program has quit.
func (m Model) Result() (Result, bool) {
	if m.result == nil {
		return Result{}, false
	}
	return *m.result, true
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.emit(m.machine.Apply(Event{Type: EventCancel}))
	}

	switch m.machine.Mode() {
	case ModeRenaming:
		switch msg.Type {
		case tea.KeyEnter:
			return m.emit(m.machine.Apply(Event{Type: EventSubmitName, Name: m.input.Value()}))
		case tea.KeyEsc:
			m.machine.Apply(Event{Type: EventDismiss})
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case ModeConfirmingDelete:
		switch msg.String() {
		case "y", "enter":
			return m.emit(m.machine.Apply(Event{Type: EventSelect}))
		case "D":
			m.machine.Apply(Event{Type: EventDeleteGroup})
		case "n", "esc", "q":
			m.machine.Apply(Event{Type: EventDismiss})
		}
		return m, nil

	case ModeViewingSummary:
		switch msg.String() {
		case "esc", "q", "enter":
			m.summaryBody = ""
			m.machine.Apply(Event{Type: EventDismiss})
		}
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		m.machine.Apply(Event{Type: EventUp})
	case "down", "j":
		m.machine.Apply(Event{Type: EventDown})
	case "enter":
		return m.emit(m.machine.Apply(Event{Type: EventSelect}))
	case "d":
		m.machine.Apply(Event{Type: EventDelete})
	case "D":
		m.machine.Apply(Event{Type: EventDeleteGroup})
	case "r":
		return m.beginRename(Event{Type: EventRename}), nil
	case "R":
		return m.beginRename(Event{Type: EventRenameGroup}), nil
	case "esc", "q":
		return m.emit(m.machine.Apply(Event{Type: EventCancel}))
	}
	return m, nil
}

// beginRename enters renaming mode with the input prefilled from the
// target's current name.
func (m Model) beginRename(e Event) Model {
	m.machine.Apply(e)
	if m.machine.Mode() == ModeRenaming {
		m.input.SetValue(m.machine.Target().Name)
		m.input.CursorEnd()
		m.input.Focus()
	}
	return m
}

// emit routes a machine result: a view with a loader is shown in place and
// browsing continues afterwards; everything else stops the program and
// hands the result to the caller.
func (m Model) emit(r Result, ok bool) (tea.Model, tea.Cmd) {
	if !ok {
		return m, nil
	}
	if r.Kind == ResultView && m.loadSummary != nil {
		body, err := m.loadSummary(r.Node.ID)
		if err != nil {
			body = "unable to load summary: " + err.Error()
		}
		m.summaryBody = body
		return m, nil
	}
	m.result = &r
	m.quitting = true
	return m, tea.Quit
}
