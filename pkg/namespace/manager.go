// Package namespace groups projects under a named namespace.
package namespace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/entrhq/omni/pkg/ident"
	"github.com/entrhq/omni/pkg/index"
	"github.com/entrhq/omni/pkg/logging"
)

var (
	// ErrAlreadyExists is returned when a namespace name is taken.
	ErrAlreadyExists = errors.New("namespace: namespace already exists")
	// ErrIDCollision is returned when a freshly generated identifier is
	// already present in the index. This is a fatal integrity error.
	ErrIDCollision = errors.New("namespace: identifier collision")
)

// Record is a namespace's index record. ProjectIDs is the namespace-side
// half of the namespace↔project link.
type Record struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ProjectIDs  []string  `json:"project_ids"`
}

// ProjectCount returns the derived member count used by list stats.
func (r Record) ProjectCount() int { return len(r.ProjectIDs) }

// Manager owns namespace metadata under a base path.
type Manager struct {
	basePath      string
	namespacesDir string
	store         *index.Store[Record]
	log           *logging.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger routes manager lifecycle events to the given session logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager opens the namespace store rooted at basePath.
func NewManager(basePath string, opts ...Option) (*Manager, error) {
	namespacesDir := filepath.Join(basePath, "namespaces")
	if err := os.MkdirAll(namespacesDir, 0o750); err != nil {
		return nil, fmt.Errorf("namespace: init directory %s: %w", namespacesDir, err)
	}
	m := &Manager{
		basePath:      basePath,
		namespacesDir: namespacesDir,
		store:         index.Open[Record](filepath.Join(basePath, "namespace_index.json")),
		log:           logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Create registers a new namespace. Names are unique across the store.
func (m *Manager) Create(name, description string) (Record, error) {
	for _, rec := range m.store.All() {
		if rec.Name == name {
			return Record{}, fmt.Errorf("%w: %q", ErrAlreadyExists, name)
		}
	}

	id := ident.New()
	if m.store.Contains(id) {
		return Record{}, fmt.Errorf("%w: %s", ErrIDCollision, id)
	}

	now := time.Now()
	rec := Record{
		ID:          id,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		ProjectIDs:  []string{},
	}
	if err := m.store.Put(id, rec); err != nil {
		return Record{}, err
	}
	if err := os.MkdirAll(filepath.Join(m.namespacesDir, name), 0o750); err != nil {
		return Record{}, fmt.Errorf("namespace: init directory for %q: %w", name, err)
	}
	m.log.Infof("created namespace %s (%s)", id, name)
	return rec, nil
}

// List returns all namespaces, ordered by name for deterministic output.
func (m *Manager) List() []Record {
	all := m.store.All()
	out := make([]Record, 0, len(all))
	for _, rec := range all {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Get resolves a namespace by exact id, then exact name.
func (m *Manager) Get(idOrName string) (Record, bool) {
	if rec, ok := m.store.Get(idOrName); ok {
		return rec, true
	}
	for _, rec := range m.List() {
		if rec.Name == idOrName {
			return rec, true
		}
	}
	return Record{}, false
}

// AddProject adds a project id to the namespace's member set. Adding a
// member that is already present is a no-op.
func (m *Manager) AddProject(idOrName, projectID string) (bool, error) {
	rec, ok := m.Get(idOrName)
	if !ok {
		return false, nil
	}
	if slices.Contains(rec.ProjectIDs, projectID) {
		return true, nil
	}
	rec.ProjectIDs = append(rec.ProjectIDs, projectID)
	rec.UpdatedAt = time.Now()
	if err := m.store.Put(rec.ID, rec); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveProject removes a project id from the namespace's member set.
func (m *Manager) RemoveProject(idOrName, projectID string) (bool, error) {
	rec, ok := m.Get(idOrName)
	if !ok {
		return false, nil
	}
	i := slices.Index(rec.ProjectIDs, projectID)
	if i == -1 {
		return false, nil
	}
	rec.ProjectIDs = slices.Delete(rec.ProjectIDs, i, i+1)
	rec.UpdatedAt = time.Now()
	if err := m.store.Put(rec.ID, rec); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the namespace's metadata only; member projects are never
// cascaded. Its directory is removed only when already empty.
func (m *Manager) Delete(idOrName string) (bool, error) {
	rec, ok := m.Get(idOrName)
	if !ok {
		return false, nil
	}
	if err := m.store.Delete(rec.ID); err != nil {
		return false, err
	}
	_ = os.Remove(filepath.Join(m.namespacesDir, rec.Name))
	m.log.Infof("deleted namespace %s (%s)", rec.ID, rec.Name)
	return true, nil
}

// Rename changes a namespace's name and moves its directory. If the
// directory rename fails the index change is rolled back and the error is
// surfaced; the operation must not leave the two disagreeing.
func (m *Manager) Rename(idOrName, newName string) (bool, error) {
	rec, ok := m.Get(idOrName)
	if !ok {
		return false, nil
	}
	for _, other := range m.store.All() {
		if other.Name == newName && other.ID != rec.ID {
			return false, fmt.Errorf("%w: %q", ErrAlreadyExists, newName)
		}
	}

	oldName := rec.Name
	rec.Name = newName
	rec.UpdatedAt = time.Now()
	if err := m.store.Put(rec.ID, rec); err != nil {
		return false, err
	}

	oldDir := filepath.Join(m.namespacesDir, oldName)
	newDir := filepath.Join(m.namespacesDir, newName)
	if _, err := os.Stat(oldDir); err == nil {
		if err := os.Rename(oldDir, newDir); err != nil {
			rec.Name = oldName
			if rbErr := m.store.Put(rec.ID, rec); rbErr != nil {
				return false, fmt.Errorf("namespace: rename directory: %v (rollback failed: %w)", err, rbErr)
			}
			return false, fmt.Errorf("namespace: rename directory: %w", err)
		}
	}
	return true, nil
}
