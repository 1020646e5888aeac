// Package organizer maintains the cross-entity links that no single manager
// owns: project↔conversation and namespace↔project membership, and the
// archival flow that converts a conversation into a summary. Each manager
// only ever touches its own side of a link; the organizer updates both
// sides together so callers cannot leave them disagreeing.
package organizer

import (
	"errors"
	"fmt"

	"github.com/entrhq/omni/pkg/chat"
	"github.com/entrhq/omni/pkg/logging"
	"github.com/entrhq/omni/pkg/namespace"
	"github.com/entrhq/omni/pkg/project"
	"github.com/entrhq/omni/pkg/summary"
)

// ErrNotFound is returned when a link endpoint cannot be resolved.
var ErrNotFound = errors.New("organizer: entity not found")

// Organizer coordinates the four entity managers.
type Organizer struct {
	chats      *chat.Manager
	projects   *project.Manager
	namespaces *namespace.Manager
	summaries  *summary.Manager
	log        *logging.Logger
}

// Option configures an Organizer.
type Option func(*Organizer)

// WithLogger routes link and archival events to the given session logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Organizer) { o.log = l }
}

// New wires the organizer over the four managers.
func New(chats *chat.Manager, projects *project.Manager, namespaces *namespace.Manager, summaries *summary.Manager, opts ...Option) *Organizer {
	o := &Organizer{
		chats:      chats,
		projects:   projects,
		namespaces: namespaces,
		summaries:  summaries,
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AssignChat links a conversation to a project, updating both the
// conversation's back-reference and the project's member list. Moving a
// conversation between projects unlinks the old project first.
func (o *Organizer) AssignChat(chatRef, projectRef string) error {
	c, ok := o.chats.Get(chatRef)
	if !ok {
		return fmt.Errorf("%w: conversation %q", ErrNotFound, chatRef)
	}
	p, ok := o.projects.Get(projectRef)
	if !ok {
		return fmt.Errorf("%w: project %q", ErrNotFound, projectRef)
	}

	if c.Project != "" && c.Project != p.ID {
		if _, err := o.projects.RemoveChat(c.Project, c.ChatID); err != nil {
			return err
		}
	}
	if _, err := o.chats.SetProject(c.ChatID, p.ID); err != nil {
		return err
	}
	if _, err := o.projects.AddChat(p.ID, c.ChatID); err != nil {
		return err
	}
	o.log.Infof("assigned chat %s to project %s", c.ChatID, p.ID)
	return nil
}

// UnassignChat clears a conversation's project link on both sides.
func (o *Organizer) UnassignChat(chatRef string) error {
	c, ok := o.chats.Get(chatRef)
	if !ok {
		return fmt.Errorf("%w: conversation %q", ErrNotFound, chatRef)
	}
	if c.Project == "" {
		return nil
	}
	if _, err := o.projects.RemoveChat(c.Project, c.ChatID); err != nil {
		return err
	}
	if _, err := o.chats.SetProject(c.ChatID, ""); err != nil {
		return err
	}
	return nil
}

// AssignProject links a project to a namespace on both sides. Moving a
// project between namespaces unlinks the old namespace first.
func (o *Organizer) AssignProject(projectRef, namespaceRef string) error {
	p, ok := o.projects.Get(projectRef)
	if !ok {
		return fmt.Errorf("%w: project %q", ErrNotFound, projectRef)
	}
	ns, ok := o.namespaces.Get(namespaceRef)
	if !ok {
		return fmt.Errorf("%w: namespace %q", ErrNotFound, namespaceRef)
	}

	if p.Namespace != "" && p.Namespace != ns.ID {
		if _, err := o.namespaces.RemoveProject(p.Namespace, p.ID); err != nil {
			return err
		}
	}
	if _, err := o.projects.SetNamespace(p.ID, ns.ID); err != nil {
		return err
	}
	if _, err := o.namespaces.AddProject(ns.ID, p.ID); err != nil {
		return err
	}
	o.log.Infof("assigned project %s to namespace %s", p.ID, ns.ID)
	return nil
}

// UnassignProject clears a project's namespace link on both sides.
func (o *Organizer) UnassignProject(projectRef string) error {
	p, ok := o.projects.Get(projectRef)
	if !ok {
		return fmt.Errorf("%w: project %q", ErrNotFound, projectRef)
	}
	if p.Namespace == "" {
		return nil
	}
	if _, err := o.namespaces.RemoveProject(p.Namespace, p.ID); err != nil {
		return err
	}
	if _, err := o.projects.SetNamespace(p.ID, ""); err != nil {
		return err
	}
	return nil
}

// Archive converts a conversation into a summary: the summary document is
// written first, and only once it is durably indexed is the original
// conversation removed. The summary inherits the conversation's name,
// project link and backend label. On the project side the conversation id
// is dropped from the member list; the summary remains reachable through
// its own project reference.
func (o *Organizer) Archive(chatRef, content, kind string) (summary.IndexRecord, error) {
	c, ok := o.chats.Get(chatRef)
	if !ok {
		return summary.IndexRecord{}, fmt.Errorf("%w: conversation %q", ErrNotFound, chatRef)
	}

	rec, err := o.summaries.Create(c.Name, content, c.ChatID, kind, c.Provider, c.Project)
	if err != nil {
		return summary.IndexRecord{}, err
	}

	if c.Project != "" {
		if _, err := o.projects.RemoveChat(c.Project, c.ChatID); err != nil {
			return rec, err
		}
	}
	if _, err := o.chats.Delete(c.ChatID); err != nil {
		return rec, err
	}
	o.log.Infof("archived chat %s as summary %s (%s)", c.ChatID, rec.SummaryID, kind)
	return rec, nil
}

// DeleteProject removes a project and unlinks it everywhere: member
// conversations and summaries revert to standalone, and the namespace's
// member list drops it. Transcripts and summary documents are never deleted
// here.
func (o *Organizer) DeleteProject(projectRef string) (bool, error) {
	p, ok := o.projects.Get(projectRef)
	if !ok {
		return false, nil
	}
	for _, chatID := range p.ChatIDs {
		if _, err := o.chats.SetProject(chatID, ""); err != nil {
			return false, err
		}
	}
	for _, rec := range o.summaries.List(p.ID) {
		if _, err := o.summaries.SetProject(rec.SummaryID, ""); err != nil {
			return false, err
		}
	}
	if p.Namespace != "" {
		if _, err := o.namespaces.RemoveProject(p.Namespace, p.ID); err != nil {
			return false, err
		}
	}
	return o.projects.Delete(p.ID)
}

// DeleteNamespace removes a namespace and clears the namespace reference on
// member projects, which become standalone.
func (o *Organizer) DeleteNamespace(namespaceRef string) (bool, error) {
	ns, ok := o.namespaces.Get(namespaceRef)
	if !ok {
		return false, nil
	}
	for _, projectID := range ns.ProjectIDs {
		if _, err := o.projects.SetNamespace(projectID, ""); err != nil {
			return false, err
		}
	}
	return o.namespaces.Delete(ns.ID)
}
