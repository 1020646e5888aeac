// Package summary stores condensed write-once documents derived from
// conversations. Each summary keeps a back-reference to its original
// conversation; the document body is never mutated after creation.
package summary

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/entrhq/omni/pkg/ident"
	"github.com/entrhq/omni/pkg/index"
	"github.com/entrhq/omni/pkg/logging"
	"github.com/entrhq/omni/pkg/transcript"
)

var (
	// ErrNotFound is returned when no summary matches an id or name.
	ErrNotFound = errors.New("summary: summary not found")
	// ErrIDCollision is returned when a freshly generated identifier is
	// already present in the index. This is a fatal integrity error.
	ErrIDCollision = errors.New("summary: identifier collision")
)

// Summary kinds. Short is a few sentences; long preserves the
// conversation's structure and key detail.
const (
	KindShort = "short"
	KindLong  = "long"
)

// IndexRecord is a summary's index entry.
type IndexRecord struct {
	SummaryID      string    `json:"summary_id"`
	Name           string    `json:"name"`
	OriginalChatID string    `json:"original_chat_id"`
	Kind           string    `json:"type"`
	FilePath       string    `json:"file_path"`
	CreatedAt      time.Time `json:"created_at"`
	Provider       string    `json:"provider"`
	Project        string    `json:"project,omitempty"`
	WordCount      int       `json:"word_count"`
}

// Manager owns summary storage under a base path.
type Manager struct {
	basePath     string
	summariesDir string
	store        *index.Store[IndexRecord]
	log          *logging.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger routes manager lifecycle events to the given session logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager opens the summary store rooted at basePath.
func NewManager(basePath string, opts ...Option) (*Manager, error) {
	summariesDir := filepath.Join(basePath, "summaries")
	if err := os.MkdirAll(summariesDir, 0o750); err != nil {
		return nil, fmt.Errorf("summary: init directory %s: %w", summariesDir, err)
	}
	m := &Manager{
		basePath:     basePath,
		summariesDir: summariesDir,
		store:        index.Open[IndexRecord](filepath.Join(basePath, "summary_index.json")),
		log:          logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// filePath derives the document location. Project summaries live under the
// project's own summaries subdirectory.
func (m *Manager) filePath(createdAt time.Time, name, project string) (string, error) {
	filename := fmt.Sprintf("%s_%s_summary.md", createdAt.Format("20060102-150405"), name)
	if project != "" {
		dir := filepath.Join(m.basePath, "projects", project, "summaries")
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("summary: init project directory %s: %w", dir, err)
		}
		return filepath.Join(dir, filename), nil
	}
	return filepath.Join(m.summariesDir, filename), nil
}

// Create writes a new summary document and registers it in the index. The
// word count is derived from the body: whitespace-separated tokens.
func (m *Manager) Create(name, content, originalChatID, kind, provider, project string) (IndexRecord, error) {
	id := ident.New()
	if m.store.Contains(id) {
		return IndexRecord{}, fmt.Errorf("%w: %s", ErrIDCollision, id)
	}
	if kind == "" {
		kind = KindShort
	}

	now := time.Now()
	wordCount := len(strings.Fields(content))

	path, err := m.filePath(now, name, project)
	if err != nil {
		return IndexRecord{}, err
	}
	doc := transcript.EncodeSummaryDocument(transcript.SummaryHeader{
		SummaryID:      id,
		Name:           name,
		OriginalChatID: originalChatID,
		Kind:           kind,
		Provider:       provider,
		CreatedAt:      now,
		Project:        project,
		WordCount:      wordCount,
	}, content)
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		return IndexRecord{}, fmt.Errorf("summary: write document %s: %w", path, err)
	}

	rec := IndexRecord{
		SummaryID:      id,
		Name:           name,
		OriginalChatID: originalChatID,
		Kind:           kind,
		FilePath:       path,
		CreatedAt:      now,
		Provider:       provider,
		Project:        project,
		WordCount:      wordCount,
	}
	if err := m.store.Put(id, rec); err != nil {
		return IndexRecord{}, err
	}
	m.log.Infof("created %s summary %s (%s)", kind, id, name)
	return rec, nil
}

// List returns summaries newest first. A non-empty project restricts the
// result to that project's summaries.
func (m *Manager) List(project string) []IndexRecord {
	all := m.store.All()
	out := make([]IndexRecord, 0, len(all))
	for id, rec := range all {
		if rec.SummaryID == "" {
			rec.SummaryID = id
		}
		if project != "" && rec.Project != project {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].SummaryID < out[j].SummaryID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ForChat returns summaries derived from the given conversation, newest
// first.
func (m *Manager) ForChat(chatID string) []IndexRecord {
	var out []IndexRecord
	for _, rec := range m.List("") {
		if rec.OriginalChatID == chatID {
			out = append(out, rec)
		}
	}
	return out
}

// Get resolves a summary by exact id, then exact name.
func (m *Manager) Get(idOrName string) (IndexRecord, bool) {
	if rec, ok := m.store.Get(idOrName); ok {
		if rec.SummaryID == "" {
			rec.SummaryID = idOrName
		}
		return rec, true
	}
	for _, rec := range m.List("") {
		if rec.Name == idOrName {
			return rec, true
		}
	}
	return IndexRecord{}, false
}

// SetProject updates the summary's project back-reference. The document on
// disk keeps its original header; the index is the source of truth for the
// link. pkg/organizer keeps both sides in step.
func (m *Manager) SetProject(id, project string) (bool, error) {
	rec, ok := m.store.Get(id)
	if !ok {
		return false, nil
	}
	rec.Project = project
	if err := m.store.Put(id, rec); err != nil {
		return false, err
	}
	return true, nil
}

// LoadBody reads a summary document and returns its body, the text after
// the attribution block.
func (m *Manager) LoadBody(idOrName string) (string, error) {
	rec, ok := m.Get(idOrName)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, idOrName)
	}
	raw, err := os.ReadFile(rec.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.log.Warnf("stale index entry %s: document %s missing", rec.SummaryID, rec.FilePath)
			return "", fmt.Errorf("%w: %s", ErrNotFound, idOrName)
		}
		return "", fmt.Errorf("summary: read document %s: %w", rec.FilePath, err)
	}
	return transcript.ExtractSummaryBody(raw), nil
}

// Delete removes a summary's document file and index entry together. It
// reports false when no summary matches.
func (m *Manager) Delete(idOrName string) (bool, error) {
	rec, ok := m.Get(idOrName)
	if !ok {
		return false, nil
	}
	if err := os.Remove(rec.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("summary: remove document %s: %w", rec.FilePath, err)
	}
	if err := m.store.Delete(rec.SummaryID); err != nil {
		return false, err
	}
	m.log.Infof("deleted summary %s (%s)", rec.SummaryID, rec.Name)
	return true, nil
}
