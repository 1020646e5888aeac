// Package picker is the interactive browser over the composed hierarchy:
// a keyboard-driven list with a cursor over the selectable leaves and a
// small set of actions (resume, view, delete, rename) emitted back to the
// caller. The core is an explicit state machine, independent of any
// terminal library; the bubbletea adapter in model.go feeds it events.
package picker

import "github.com/entrhq/omni/pkg/hierarchy"

// Mode is the machine's top-level state.
type Mode int

const (
	ModeBrowsing Mode = iota
	ModeConfirmingDelete
	ModeRenaming
	ModeViewingSummary
)

// EventType enumerates the inputs the machine understands.
type EventType int

const (
	EventUp EventType = iota
	EventDown
	EventSelect
	EventDelete      // target the leaf under the cursor
	EventDeleteGroup // target the enclosing project; again to escalate to its namespace
	EventRename
	EventRenameGroup
	EventSubmitName // carries the captured name while renaming
	EventDismiss    // back out of a sub-mode
	EventCancel
)

// Event is one input. Name is only meaningful for EventSubmitName.
type Event struct {
	Type EventType
	Name string
}

// ResultKind classifies an emitted result.
type ResultKind int

const (
	ResultResume ResultKind = iota
	ResultView
	ResultDelete
	ResultRename
	ResultCancel
)

// Result is the machine's output for the caller to execute. Delete and
// rename results are tagged with the exact node they apply to; the caller
// performs the mutation (after its own confirmation for deletes) and
// re-invokes the picker against refreshed state.
type Result struct {
	Kind    ResultKind
	Node    hierarchy.Node
	NewName string
}

// Terminal reports whether the picker loop ends with this result.
func (r Result) Terminal() bool {
	return r.Kind == ResultResume || r.Kind == ResultCancel
}

// Machine is the selector state: a node sequence, a cursor restricted to
// selectable nodes, the current mode and the pending action target.
type Machine struct {
	nodes  []hierarchy.Node
	cursor int
	mode   Mode
	target hierarchy.Node
}

// NewMachine builds a machine over the node sequence with the cursor on the
// first selectable node, or -1 when there is none.
func NewMachine(nodes []hierarchy.Node) *Machine {
	m := &Machine{nodes: nodes, cursor: -1}
	for i, n := range nodes {
		if n.Selectable() {
			m.cursor = i
			break
		}
	}
	return m
}

// Nodes returns the underlying sequence.
func (m *Machine) Nodes() []hierarchy.Node { return m.nodes }

// Cursor returns the cursor index into the node sequence, -1 when nothing
// is selectable.
func (m *Machine) Cursor() int { return m.cursor }

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// Target returns the node a pending delete or rename applies to.
func (m *Machine) Target() hierarchy.Node { return m.target }

// Current returns the node under the cursor.
func (m *Machine) Current() (hierarchy.Node, bool) {
	if m.cursor < 0 || m.cursor >= len(m.nodes) {
		return hierarchy.Node{}, false
	}
	return m.nodes[m.cursor], true
}

// Apply advances the machine by one event and returns the emitted result,
// if any. Cursor movement clamps at the first and last selectable node; it
// never wraps and never rests on a grouping header.
func (m *Machine) Apply(e Event) (Result, bool) {
	switch m.mode {
	case ModeBrowsing:
		return m.applyBrowsing(e)
	case ModeConfirmingDelete:
		return m.applyConfirming(e)
	case ModeRenaming:
		return m.applyRenaming(e)
	case ModeViewingSummary:
		if e.Type == EventDismiss || e.Type == EventCancel || e.Type == EventSelect {
			m.mode = ModeBrowsing
		}
		return Result{}, false
	}
	return Result{}, false
}

func (m *Machine) applyBrowsing(e Event) (Result, bool) {
	switch e.Type {
	case EventUp:
		m.move(-1)
	case EventDown:
		m.move(1)
	case EventSelect:
		n, ok := m.Current()
		if !ok {
			return Result{}, false
		}
		if n.Kind == hierarchy.KindConversation {
			return Result{Kind: ResultResume, Node: n}, true
		}
		m.mode = ModeViewingSummary
		return Result{Kind: ResultView, Node: n}, true
	case EventDelete:
		if n, ok := m.Current(); ok {
			m.mode = ModeConfirmingDelete
			m.target = n
		}
	case EventDeleteGroup:
		if g, ok := m.enclosingGroup(); ok {
			m.mode = ModeConfirmingDelete
			m.target = g
		}
	case EventRename:
		if n, ok := m.Current(); ok {
			m.mode = ModeRenaming
			m.target = n
		}
	case EventRenameGroup:
		if g, ok := m.enclosingGroup(); ok {
			m.mode = ModeRenaming
			m.target = g
		}
	case EventCancel:
		return Result{Kind: ResultCancel}, true
	}
	return Result{}, false
}

func (m *Machine) applyConfirming(e Event) (Result, bool) {
	switch e.Type {
	case EventSelect:
		m.mode = ModeBrowsing
		return Result{Kind: ResultDelete, Node: m.target}, true
	case EventDeleteGroup:
		// A second group-delete on a project escalates to its namespace.
		if m.target.Kind == hierarchy.KindProject && m.target.Project.Namespace != "" {
			if ns, ok := m.findNamespace(m.target.Project.Namespace); ok {
				m.target = ns
			}
		}
	case EventDismiss, EventCancel:
		m.mode = ModeBrowsing
	}
	return Result{}, false
}

func (m *Machine) applyRenaming(e Event) (Result, bool) {
	switch e.Type {
	case EventSubmitName:
		m.mode = ModeBrowsing
		if e.Name == "" {
			return Result{}, false
		}
		return Result{Kind: ResultRename, Node: m.target, NewName: e.Name}, true
	case EventDismiss, EventCancel:
		m.mode = ModeBrowsing
	}
	return Result{}, false
}

// move advances the cursor to the nearest selectable node in the given
// direction, staying put when none exists.
func (m *Machine) move(dir int) {
	if m.cursor < 0 {
		return
	}
	for i := m.cursor + dir; i >= 0 && i < len(m.nodes); i += dir {
		if m.nodes[i].Selectable() {
			m.cursor = i
			return
		}
	}
}

// enclosingGroup finds the nearest grouping header above the cursor node:
// the owning project, or the namespace for a directly nested project.
func (m *Machine) enclosingGroup() (hierarchy.Node, bool) {
	n, ok := m.Current()
	if !ok || n.Depth == 0 {
		return hierarchy.Node{}, false
	}
	for i := m.cursor - 1; i >= 0; i-- {
		c := m.nodes[i]
		if !c.Selectable() && c.Depth < n.Depth {
			return c, true
		}
	}
	return hierarchy.Node{}, false
}

func (m *Machine) findNamespace(id string) (hierarchy.Node, bool) {
	for _, n := range m.nodes {
		if n.Kind == hierarchy.KindNamespace && n.ID == id {
			return n, true
		}
	}
	return hierarchy.Node{}, false
}
