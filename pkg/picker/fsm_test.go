package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/omni/pkg/hierarchy"
	"github.com/entrhq/omni/pkg/project"
)

// testNodes builds a small composed sequence by hand:
//
//	namespace work
//	  project alpha (namespace=work)
//	    conversation c1
//	    summary s1
//	conversation c2 (standalone)
func testNodes() []hierarchy.Node {
	alpha := &project.Record{ID: "alpha", Name: "Alpha", Namespace: "ns1"}
	return []hierarchy.Node{
		{Kind: hierarchy.KindNamespace, ID: "ns1", Name: "work", Depth: 0},
		{Kind: hierarchy.KindProject, ID: "alpha", Name: "Alpha", Depth: 1, Project: alpha},
		{Kind: hierarchy.KindConversation, ID: "c1", Name: "chat-one", Depth: 2},
		{Kind: hierarchy.KindSummary, ID: "s1", Name: "old-chat", Depth: 2},
		{Kind: hierarchy.KindConversation, ID: "c2", Name: "chat-two", Depth: 0},
	}
}

func TestCursorStartsOnFirstSelectable(t *testing.T) {
	m := NewMachine(testNodes())
	n, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "c1", n.ID)
}

func TestCursorNeverLandsOnHeaders(t *testing.T) {
	m := NewMachine(testNodes())
	for i := 0; i < 10; i++ {
		m.Apply(Event{Type: EventDown})
		n, ok := m.Current()
		require.True(t, ok)
		assert.True(t, n.Selectable(), "cursor on %s", n.Kind)
	}
	for i := 0; i < 10; i++ {
		m.Apply(Event{Type: EventUp})
		n, ok := m.Current()
		require.True(t, ok)
		assert.True(t, n.Selectable(), "cursor on %s", n.Kind)
	}
}

func TestCursorClampsAtEnds(t *testing.T) {
	m := NewMachine(testNodes())

	// Up at the first selectable is a no-op.
	m.Apply(Event{Type: EventUp})
	n, _ := m.Current()
	assert.Equal(t, "c1", n.ID)

	// Walk to the end; down at the last selectable is a no-op.
	m.Apply(Event{Type: EventDown})
	m.Apply(Event{Type: EventDown})
	n, _ = m.Current()
	assert.Equal(t, "c2", n.ID)
	m.Apply(Event{Type: EventDown})
	n, _ = m.Current()
	assert.Equal(t, "c2", n.ID)
}

func TestNoSelectableNodes(t *testing.T) {
	m := NewMachine([]hierarchy.Node{
		{Kind: hierarchy.KindNamespace, ID: "ns1", Name: "empty"},
	})
	_, ok := m.Current()
	assert.False(t, ok)

	m.Apply(Event{Type: EventDown})
	_, ok = m.Current()
	assert.False(t, ok)

	// Select with no cursor emits nothing; cancel still works.
	_, emitted := m.Apply(Event{Type: EventSelect})
	assert.False(t, emitted)
	r, emitted := m.Apply(Event{Type: EventCancel})
	require.True(t, emitted)
	assert.Equal(t, ResultCancel, r.Kind)
}

func TestSelectConversationResumes(t *testing.T) {
	m := NewMachine(testNodes())
	r, emitted := m.Apply(Event{Type: EventSelect})
	require.True(t, emitted)
	assert.Equal(t, ResultResume, r.Kind)
	assert.Equal(t, "c1", r.Node.ID)
	assert.True(t, r.Terminal())
}

func TestSelectSummaryViewsWithoutTerminating(t *testing.T) {
	m := NewMachine(testNodes())
	m.Apply(Event{Type: EventDown}) // onto s1

	r, emitted := m.Apply(Event{Type: EventSelect})
	require.True(t, emitted)
	assert.Equal(t, ResultView, r.Kind)
	assert.Equal(t, "s1", r.Node.ID)
	assert.False(t, r.Terminal())
	assert.Equal(t, ModeViewingSummary, m.Mode())

	m.Apply(Event{Type: EventDismiss})
	assert.Equal(t, ModeBrowsing, m.Mode())
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m := NewMachine(testNodes())

	m.Apply(Event{Type: EventDelete})
	assert.Equal(t, ModeConfirmingDelete, m.Mode())
	assert.Equal(t, "c1", m.Target().ID)

	// Backing out emits nothing.
	_, emitted := m.Apply(Event{Type: EventDismiss})
	assert.False(t, emitted)
	assert.Equal(t, ModeBrowsing, m.Mode())

	// Confirming emits a non-terminal delete tagged with the node.
	m.Apply(Event{Type: EventDelete})
	r, emitted := m.Apply(Event{Type: EventSelect})
	require.True(t, emitted)
	assert.Equal(t, ResultDelete, r.Kind)
	assert.Equal(t, hierarchy.KindConversation, r.Node.Kind)
	assert.Equal(t, "c1", r.Node.ID)
	assert.False(t, r.Terminal())
}

func TestDeleteGroupTargetsProjectThenNamespace(t *testing.T) {
	m := NewMachine(testNodes())

	m.Apply(Event{Type: EventDeleteGroup})
	assert.Equal(t, ModeConfirmingDelete, m.Mode())
	assert.Equal(t, hierarchy.KindProject, m.Target().Kind)
	assert.Equal(t, "alpha", m.Target().ID)

	// Escalate to the project's namespace.
	m.Apply(Event{Type: EventDeleteGroup})
	assert.Equal(t, hierarchy.KindNamespace, m.Target().Kind)
	assert.Equal(t, "ns1", m.Target().ID)

	r, emitted := m.Apply(Event{Type: EventSelect})
	require.True(t, emitted)
	assert.Equal(t, ResultDelete, r.Kind)
	assert.Equal(t, "ns1", r.Node.ID)
}

func TestDeleteGroupOnStandaloneLeafIsNoop(t *testing.T) {
	m := NewMachine(testNodes())
	m.Apply(Event{Type: EventDown})
	m.Apply(Event{Type: EventDown}) // c2, depth 0

	m.Apply(Event{Type: EventDeleteGroup})
	assert.Equal(t, ModeBrowsing, m.Mode())
}

func TestRenameFlow(t *testing.T) {
	m := NewMachine(testNodes())

	m.Apply(Event{Type: EventRename})
	assert.Equal(t, ModeRenaming, m.Mode())

	r, emitted := m.Apply(Event{Type: EventSubmitName, Name: "renamed-chat"})
	require.True(t, emitted)
	assert.Equal(t, ResultRename, r.Kind)
	assert.Equal(t, "c1", r.Node.ID)
	assert.Equal(t, "renamed-chat", r.NewName)
	assert.Equal(t, ModeBrowsing, m.Mode())
}

func TestRenameEmptyNameEmitsNothing(t *testing.T) {
	m := NewMachine(testNodes())
	m.Apply(Event{Type: EventRename})
	_, emitted := m.Apply(Event{Type: EventSubmitName, Name: ""})
	assert.False(t, emitted)
	assert.Equal(t, ModeBrowsing, m.Mode())
}

func TestCancelTerminates(t *testing.T) {
	m := NewMachine(testNodes())
	r, emitted := m.Apply(Event{Type: EventCancel})
	require.True(t, emitted)
	assert.Equal(t, ResultCancel, r.Kind)
	assert.True(t, r.Terminal())
}
