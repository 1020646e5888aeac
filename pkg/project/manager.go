// Package project groups related conversations under a named project,
// optionally inside a namespace. Project metadata lives in its own index
// store; member transcripts live under the project's directory.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/entrhq/omni/pkg/index"
	"github.com/entrhq/omni/pkg/logging"
)

// ErrAlreadyExists is returned when a project with the same slug exists.
var ErrAlreadyExists = errors.New("project: project already exists")

// Record is a project's index record. The member list is the project-side
// half of the project↔conversation link; the conversation's project field
// is the other half, maintained together by pkg/organizer.
type Record struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Namespace   string    `json:"namespace,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ChatIDs     []string  `json:"chat_ids"`
}

// ChatCount returns the derived member count used by list stats.
func (r Record) ChatCount() int { return len(r.ChatIDs) }

// Manager owns project metadata under a base path.
type Manager struct {
	basePath    string
	projectsDir string
	store       *index.Store[Record]
	log         *logging.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger routes manager lifecycle events to the given session logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager opens the project store rooted at basePath.
func NewManager(basePath string, opts ...Option) (*Manager, error) {
	projectsDir := filepath.Join(basePath, "projects")
	if err := os.MkdirAll(projectsDir, 0o750); err != nil {
		return nil, fmt.Errorf("project: init directory %s: %w", projectsDir, err)
	}
	m := &Manager{
		basePath:    basePath,
		projectsDir: projectsDir,
		store:       index.Open[Record](filepath.Join(basePath, "projects.json")),
		log:         logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Slug derives a project id from its name: lower-cased, punctuation
// stripped, whitespace collapsed to single hyphens.
func Slug(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' || r == '_' {
			return unicode.ToLower(r)
		}
		return -1
	}, name)
	return strings.Join(strings.Fields(cleaned), "-")
}

// Create registers a new project and its chats directory. The slugged name
// is the project id and must be unique.
func (m *Manager) Create(name, description, namespaceRef string) (Record, error) {
	if strings.TrimSpace(name) == "" {
		return Record{}, fmt.Errorf("project: name cannot be empty")
	}
	id := Slug(name)
	if m.store.Contains(id) {
		return Record{}, fmt.Errorf("%w: %q", ErrAlreadyExists, name)
	}

	now := time.Now()
	rec := Record{
		ID:          id,
		Name:        name,
		Description: description,
		Namespace:   namespaceRef,
		CreatedAt:   now,
		UpdatedAt:   now,
		ChatIDs:     []string{},
	}

	chatsDir := filepath.Join(m.projectsDir, id, "chats")
	if err := os.MkdirAll(chatsDir, 0o750); err != nil {
		return Record{}, fmt.Errorf("project: init directory %s: %w", chatsDir, err)
	}

	if err := m.store.Put(id, rec); err != nil {
		return Record{}, err
	}
	m.log.Infof("created project %s", id)
	return rec, nil
}

// List returns all projects, most recently updated first.
func (m *Manager) List() []Record {
	all := m.store.All()
	out := make([]Record, 0, len(all))
	for _, rec := range all {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Get resolves a project by exact id, then case-insensitive name.
func (m *Manager) Get(idOrName string) (Record, bool) {
	if rec, ok := m.store.Get(idOrName); ok {
		return rec, true
	}
	for _, rec := range m.List() {
		if strings.EqualFold(rec.Name, idOrName) {
			return rec, true
		}
	}
	return Record{}, false
}

// AddChat adds a conversation id to the project's member set. Adding a
// member that is already present is a no-op. Only the project side of the
// link is touched here.
func (m *Manager) AddChat(idOrName, chatID string) (bool, error) {
	rec, ok := m.Get(idOrName)
	if !ok {
		return false, nil
	}
	if slices.Contains(rec.ChatIDs, chatID) {
		return true, nil
	}
	rec.ChatIDs = append(rec.ChatIDs, chatID)
	rec.UpdatedAt = time.Now()
	if err := m.store.Put(rec.ID, rec); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveChat removes a conversation id from the project's member set.
func (m *Manager) RemoveChat(idOrName, chatID string) (bool, error) {
	rec, ok := m.Get(idOrName)
	if !ok {
		return false, nil
	}
	i := slices.Index(rec.ChatIDs, chatID)
	if i == -1 {
		return false, nil
	}
	rec.ChatIDs = slices.Delete(rec.ChatIDs, i, i+1)
	rec.UpdatedAt = time.Now()
	if err := m.store.Put(rec.ID, rec); err != nil {
		return false, err
	}
	return true, nil
}

// SetNamespace updates the project's namespace back-reference. An empty
// value clears it.
func (m *Manager) SetNamespace(projectID, namespaceID string) (bool, error) {
	rec, ok := m.store.Get(projectID)
	if !ok {
		return false, nil
	}
	rec.Namespace = namespaceID
	rec.UpdatedAt = time.Now()
	if err := m.store.Put(rec.ID, rec); err != nil {
		return false, err
	}
	return true, nil
}

// Rename updates a project's display name. The slug id is fixed at
// creation, so member references stay valid.
func (m *Manager) Rename(idOrName, newName string) (bool, error) {
	rec, ok := m.Get(idOrName)
	if !ok {
		return false, nil
	}
	rec.Name = newName
	rec.UpdatedAt = time.Now()
	if err := m.store.Put(rec.ID, rec); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the project's metadata only. Member conversations and
// their transcripts are never cascaded; the project directory is removed
// only when already empty.
func (m *Manager) Delete(idOrName string) (bool, error) {
	rec, ok := m.Get(idOrName)
	if !ok {
		return false, nil
	}
	if err := m.store.Delete(rec.ID); err != nil {
		return false, err
	}
	removeEmptyTree(filepath.Join(m.projectsDir, rec.ID))
	m.log.Infof("deleted project %s", rec.ID)
	return true, nil
}

// removeEmptyTree best-effort removes a directory tree that contains no
// files, leaving anything with content untouched.
func removeEmptyTree(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			removeEmptyTree(filepath.Join(dir, e.Name()))
		}
	}
	_ = os.Remove(dir)
}
