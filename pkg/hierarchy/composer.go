// Package hierarchy composes the four entity listings into one ordered,
// nested node sequence: namespace → project → {conversations, summaries},
// with standalone groups appended at the end. The composer reads manager
// state and never mutates it.
package hierarchy

import (
	"sort"
	"time"

	"github.com/entrhq/omni/pkg/chat"
	"github.com/entrhq/omni/pkg/namespace"
	"github.com/entrhq/omni/pkg/project"
	"github.com/entrhq/omni/pkg/summary"
)

// Kind identifies a node's entity type.
type Kind int

const (
	KindNamespace Kind = iota
	KindProject
	KindConversation
	KindSummary
)

// String returns the lower-case kind label used in prompts and logs.
func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindProject:
		return "project"
	case KindConversation:
		return "conversation"
	case KindSummary:
		return "summary"
	}
	return "unknown"
}

// Node is one entry of the composed sequence. Namespace and project nodes
// are grouping headers; conversation and summary nodes are selectable
// leaves. Exactly one of the record fields is set, matching Kind.
type Node struct {
	Kind  Kind
	ID    string
	Name  string
	Depth int

	Namespace    *namespace.Record
	Project      *project.Record
	Conversation *chat.IndexRecord
	Summary      *summary.IndexRecord
}

// Selectable reports whether the cursor may rest on this node.
func (n Node) Selectable() bool {
	return n.Kind == KindConversation || n.Kind == KindSummary
}

// Compose builds the full node sequence from current manager state. The
// output is deterministic for identical input: namespaces order by name,
// projects within a group by id, conversations by updated_at descending and
// summaries by created_at descending. Grouping follows each entity's own
// back-reference field, so a one-sided link still places the entity.
func Compose(namespaces *namespace.Manager, projects *project.Manager, chats *chat.Manager, summaries *summary.Manager) []Node {
	return ComposeRecords(namespaces.List(), projects.List(), chats.List(), summaries.List(""))
}

// ComposeRecords builds the node sequence from explicit listings, letting
// callers narrow the input first (keyword-scoped browsing). A back-reference
// to a parent absent from the listings groups the entity as standalone
// rather than dropping it.
func ComposeRecords(nsRecs []namespace.Record, projRecs []project.Record, chatRecs []chat.IndexRecord, sumRecs []summary.IndexRecord) []Node {
	knownProjects := map[string]bool{}
	for _, rec := range projRecs {
		knownProjects[rec.ID] = true
	}
	knownNamespaces := map[string]bool{}
	for _, rec := range nsRecs {
		knownNamespaces[rec.ID] = true
	}

	chatsByProject := map[string][]chat.IndexRecord{}
	for _, rec := range chatRecs {
		key := rec.Project
		if !knownProjects[key] {
			key = ""
		}
		chatsByProject[key] = append(chatsByProject[key], rec)
	}
	summariesByProject := map[string][]summary.IndexRecord{}
	for _, rec := range sumRecs {
		key := rec.Project
		if !knownProjects[key] {
			key = ""
		}
		summariesByProject[key] = append(summariesByProject[key], rec)
	}
	projectsByNamespace := map[string][]project.Record{}
	for _, rec := range projRecs {
		key := rec.Namespace
		if !knownNamespaces[key] {
			key = ""
		}
		projectsByNamespace[key] = append(projectsByNamespace[key], rec)
	}
	for _, group := range projectsByNamespace {
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	}

	var nodes []Node
	appendProject := func(p project.Record, depth int) {
		nodes = append(nodes, Node{Kind: KindProject, ID: p.ID, Name: p.Name, Depth: depth, Project: &p})
		for _, c := range sortChats(chatsByProject[p.ID]) {
			c := c
			nodes = append(nodes, Node{Kind: KindConversation, ID: c.ChatID, Name: c.Name, Depth: depth + 1, Conversation: &c})
		}
		for _, s := range sortSummaries(summariesByProject[p.ID]) {
			s := s
			nodes = append(nodes, Node{Kind: KindSummary, ID: s.SummaryID, Name: s.Name, Depth: depth + 1, Summary: &s})
		}
	}

	for _, ns := range sortNamespaces(nsRecs) {
		ns := ns
		nodes = append(nodes, Node{Kind: KindNamespace, ID: ns.ID, Name: ns.Name, Depth: 0, Namespace: &ns})
		for _, p := range projectsByNamespace[ns.ID] {
			appendProject(p, 1)
		}
	}

	for _, p := range projectsByNamespace[""] {
		appendProject(p, 0)
	}
	for _, c := range sortChats(chatsByProject[""]) {
		c := c
		nodes = append(nodes, Node{Kind: KindConversation, ID: c.ChatID, Name: c.Name, Depth: 0, Conversation: &c})
	}
	for _, s := range sortSummaries(summariesByProject[""]) {
		s := s
		nodes = append(nodes, Node{Kind: KindSummary, ID: s.SummaryID, Name: s.Name, Depth: 0, Summary: &s})
	}
	return nodes
}

func sortNamespaces(recs []namespace.Record) []namespace.Record {
	out := make([]namespace.Record, len(recs))
	copy(out, recs)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func sortChats(recs []chat.IndexRecord) []chat.IndexRecord {
	out := make([]chat.IndexRecord, len(recs))
	copy(out, recs)
	sort.Slice(out, func(i, j int) bool {
		return laterFirst(out[i].UpdatedAt, out[j].UpdatedAt, out[i].ChatID, out[j].ChatID)
	})
	return out
}

func sortSummaries(recs []summary.IndexRecord) []summary.IndexRecord {
	out := make([]summary.IndexRecord, len(recs))
	copy(out, recs)
	sort.Slice(out, func(i, j int) bool {
		return laterFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].SummaryID, out[j].SummaryID)
	})
	return out
}

// laterFirst orders by timestamp descending with the id as a stable
// tiebreak, keeping the sequence a total order.
func laterFirst(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA < idB
	}
	return a.After(b)
}
