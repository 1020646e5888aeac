package chat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/entrhq/omni/pkg/ident"
	"github.com/entrhq/omni/pkg/index"
	"github.com/entrhq/omni/pkg/logging"
	"github.com/entrhq/omni/pkg/transcript"
	"github.com/entrhq/omni/pkg/types"
)

var (
	// ErrNotFound is returned when no conversation matches an id or name,
	// or when an index entry's backing transcript file is missing.
	ErrNotFound = errors.New("chat: conversation not found")
	// ErrIDCollision is returned when a freshly generated identifier is
	// already present in the index. This is a fatal integrity error.
	ErrIDCollision = errors.New("chat: identifier collision")
)

// Manager owns conversation storage under a base path.
type Manager struct {
	basePath        string
	chatsDir        string
	store           *index.Store[IndexRecord]
	log             *logging.Logger
	defaultProvider string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger routes manager lifecycle events to the given session logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithDefaultProvider sets the provider label stamped on new conversations.
func WithDefaultProvider(p string) Option {
	return func(m *Manager) { m.defaultProvider = p }
}

// NewManager opens the chat store rooted at basePath, creating the
// transcript directory and loading the index.
func NewManager(basePath string, opts ...Option) (*Manager, error) {
	chatsDir := filepath.Join(basePath, "chats", "permanent")
	if err := os.MkdirAll(chatsDir, 0o750); err != nil {
		return nil, fmt.Errorf("chat: init directory %s: %w", chatsDir, err)
	}
	m := &Manager{
		basePath: basePath,
		chatsDir: chatsDir,
		store:    index.Open[IndexRecord](filepath.Join(basePath, "index.json")),
		log:      logging.Discard(),

		defaultProvider: "claude",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// filePath derives the transcript location for a conversation. Project
// members live under the project's own chats subdirectory.
func (m *Manager) filePath(createdAt time.Time, name, project string) (string, error) {
	filename := fmt.Sprintf("%s_%s.md", createdAt.Format("20060102-150405"), name)
	if project != "" {
		dir := filepath.Join(m.basePath, "projects", project, "chats")
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("chat: init project directory %s: %w", dir, err)
		}
		return filepath.Join(dir, filename), nil
	}
	return filepath.Join(m.chatsDir, filename), nil
}

// Create starts a new conversation and writes its transcript header
// immediately. If name is empty it is derived from firstMessage, falling
// back to "chat-<id>" when neither is given.
func (m *Manager) Create(name, firstMessage, project string) (*Chat, error) {
	id := ident.New()
	if m.store.Contains(id) {
		return nil, fmt.Errorf("%w: %s", ErrIDCollision, id)
	}

	if name == "" && firstMessage != "" {
		name = DeriveName(firstMessage)
	}
	if name == "" {
		name = "chat-" + id
	}

	now := time.Now()
	c := &Chat{
		ID:        id,
		Name:      name,
		Provider:  m.defaultProvider,
		CreatedAt: now,
		UpdatedAt: now,
		Project:   project,
	}

	path, err := m.filePath(now, name, project)
	if err != nil {
		return nil, err
	}
	header := transcript.EncodeHeader(transcript.Header{
		ChatID:    c.ID,
		Name:      c.Name,
		Provider:  c.Provider,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Project:   c.Project,
	})
	if err := os.WriteFile(path, []byte(header), 0o600); err != nil {
		return nil, fmt.Errorf("chat: write transcript %s: %w", path, err)
	}

	rec := IndexRecord{
		ChatID:    c.ID,
		Name:      c.Name,
		FilePath:  path,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Provider:  c.Provider,
		Project:   c.Project,
	}
	if err := m.store.Put(id, rec); err != nil {
		return nil, err
	}
	m.log.Infof("created chat %s (%s)", c.ID, c.Name)
	return c, nil
}

// AppendMessage appends one message to the conversation's transcript and
// brings the index record up to date. The transcript is never rewritten in
// place; each append writes exactly one encoded block.
func (m *Manager) AppendMessage(c *Chat, role types.Role, content, provider string) (types.Message, error) {
	rec, ok := m.store.Get(c.ID)
	if !ok {
		return types.Message{}, fmt.Errorf("%w: %s", ErrNotFound, c.ID)
	}

	if provider == "" {
		provider = c.Provider
	}
	now := time.Now()
	msg := types.Message{Role: role, Content: content, Provider: provider, Timestamp: now}

	c.MessageCount++
	c.UpdatedAt = now

	f, err := os.OpenFile(rec.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return types.Message{}, fmt.Errorf("chat: open transcript %s: %w", rec.FilePath, err)
	}
	_, werr := f.WriteString(transcript.EncodeMessage(c.MessageCount, msg))
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return types.Message{}, fmt.Errorf("chat: append transcript %s: %w", rec.FilePath, werr)
	}

	rec.UpdatedAt = now
	rec.MessageCount = c.MessageCount
	if err := m.store.Put(c.ID, rec); err != nil {
		return types.Message{}, err
	}

	c.Messages = append(c.Messages, msg)
	return msg, nil
}

// List returns index records for every conversation, most recently updated
// first.
func (m *Manager) List() []IndexRecord {
	all := m.store.All()
	out := make([]IndexRecord, 0, len(all))
	for id, rec := range all {
		if rec.ChatID == "" {
			rec.ChatID = id
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ChatID < out[j].ChatID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Get resolves a conversation's index record by exact id, then exact name.
func (m *Manager) Get(idOrName string) (IndexRecord, bool) {
	if rec, ok := m.store.Get(idOrName); ok {
		if rec.ChatID == "" {
			rec.ChatID = idOrName
		}
		return rec, true
	}
	for _, rec := range m.List() {
		if rec.Name == idOrName {
			return rec, true
		}
	}
	return IndexRecord{}, false
}

// Load resolves a conversation by id or name and reconstructs its messages
// from the transcript file. A missing backing file is reported as not found
// even when the index entry exists; an unparseable transcript loads with
// zero messages.
func (m *Manager) Load(idOrName string) (*Chat, error) {
	rec, ok := m.Get(idOrName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrName)
	}
	raw, err := os.ReadFile(rec.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.log.Warnf("stale index entry %s: transcript %s missing", rec.ChatID, rec.FilePath)
			return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrName)
		}
		return nil, fmt.Errorf("chat: read transcript %s: %w", rec.FilePath, err)
	}

	messages := transcript.Decode(raw)
	for i := range messages {
		if messages[i].Role == types.RoleAssistant && messages[i].Provider == "" {
			messages[i].Provider = rec.Provider
		}
	}

	return &Chat{
		ID:           rec.ChatID,
		Name:         rec.Name,
		Provider:     rec.Provider,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
		MessageCount: rec.MessageCount,
		Project:      rec.Project,
		Messages:     messages,
	}, nil
}

// Delete removes a conversation's transcript file and index entry together.
// It reports false when no conversation matches.
func (m *Manager) Delete(idOrName string) (bool, error) {
	rec, ok := m.Get(idOrName)
	if !ok {
		return false, nil
	}
	if err := os.Remove(rec.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("chat: remove transcript %s: %w", rec.FilePath, err)
	}
	if err := m.store.Delete(rec.ChatID); err != nil {
		return false, err
	}
	m.log.Infof("deleted chat %s (%s)", rec.ChatID, rec.Name)
	return true, nil
}

// Rename updates a conversation's display name. The transcript file keeps
// its original path; the index record is the source of truth for the name.
func (m *Manager) Rename(id, newName string) (bool, error) {
	rec, ok := m.store.Get(id)
	if !ok {
		return false, nil
	}
	rec.Name = newName
	rec.UpdatedAt = time.Now()
	if err := m.store.Put(id, rec); err != nil {
		return false, err
	}
	return true, nil
}

// SetProject updates the conversation's project back-reference. The project
// manager owns the other side of the link; pkg/organizer keeps both in step.
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

// SearchResult is one conversation matched by Find, with up to three of the
// transcript lines that contained the term.
type SearchResult struct {
	Record  IndexRecord
	Matches []string
}

const maxSearchMatches = 3

// Find linearly scans every transcript file for the term,
// case-insensitively. This is an explicit simplicity choice over a search
// index: stores are small and scans are cheap.
func (m *Manager) Find(term string) []SearchResult {
	term = strings.ToLower(term)
	var results []SearchResult
	for _, rec := range m.List() {
		raw, err := os.ReadFile(rec.FilePath)
		if err != nil {
			continue
		}
		if !strings.Contains(strings.ToLower(string(raw)), term) {
			continue
		}
		var matches []string
		for _, line := range strings.Split(string(raw), "\n") {
			if strings.Contains(strings.ToLower(line), term) {
				matches = append(matches, strings.TrimSpace(line))
				if len(matches) == maxSearchMatches {
					break
				}
			}
		}
		results = append(results, SearchResult{Record: rec, Matches: matches})
	}
	return results
}

// FilterRecords keeps records whose name or provider matches the keyword.
// Keywords may be glob patterns ("oauth*"); otherwise a case-insensitive
// substring match applies.
func FilterRecords(records []IndexRecord, keyword string) []IndexRecord {
	keyword = strings.ToLower(keyword)
	var pattern glob.Glob
	if g, err := glob.Compile(keyword); err == nil {
		pattern = g
	}
	matches := func(s string) bool {
		s = strings.ToLower(s)
		if pattern != nil && pattern.Match(s) {
			return true
		}
		return strings.Contains(s, keyword)
	}
	var out []IndexRecord
	for _, rec := range records {
		if matches(rec.Name) || matches(rec.Provider) {
			out = append(out, rec)
		}
	}
	return out
}
