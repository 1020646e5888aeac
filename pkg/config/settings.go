// Package config persists user settings as a JSON file under the storage
// root.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Settings are the user-tunable knobs. Zero values fall back to defaults at
// load time, so an older config file keeps working after new fields appear.
type Settings struct {
	// StoragePath is the root directory for all indexes and transcripts.
	StoragePath string `json:"storage_path,omitempty"`
	// DefaultProvider is the backend label for new conversations.
	DefaultProvider string `json:"default_provider,omitempty"`
	// OpenAIModel selects the model for the API-backed provider.
	OpenAIModel string `json:"openai_model,omitempty"`
	// DefaultSummaryKind is used when /summary is called without a kind.
	DefaultSummaryKind string `json:"default_summary_kind,omitempty"`
	// ContextTokens caps the history tokens sent with each prompt.
	ContextTokens int `json:"context_tokens,omitempty"`
	// RenderMarkdown toggles styled terminal rendering of responses.
	RenderMarkdown *bool `json:"render_markdown,omitempty"`
}

// DefaultStoragePath returns ~/.omni.
func DefaultStoragePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".omni"), nil
}

// Store loads and saves Settings at a fixed path.
type Store struct {
	path     string
	settings Settings
}

// NewStore opens the settings file, defaulting to <storage>/config.json
// under the default storage path when path is empty. A missing or
// unreadable file yields defaults, never an error.
func NewStore(path string) (*Store, error) {
	if path == "" {
		base, err := DefaultStoragePath()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(base, "config.json")
	}
	s := &Store{path: path}
	s.load()
	return s, nil
}

func (s *Store) load() {
	s.settings = Settings{}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	_ = json.Unmarshal(b, &s.settings)
}

// Settings returns the current settings with defaults applied.
func (s *Store) Settings() Settings {
	out := s.settings
	if out.StoragePath == "" {
		if base, err := DefaultStoragePath(); err == nil {
			out.StoragePath = base
		}
	}
	if out.DefaultProvider == "" {
		out.DefaultProvider = "claude"
	}
	if out.OpenAIModel == "" {
		out.OpenAIModel = "gpt-4o"
	}
	if out.DefaultSummaryKind == "" {
		out.DefaultSummaryKind = "short"
	}
	if out.ContextTokens <= 0 {
		out.ContextTokens = 32000
	}
	return out
}

// Update applies fn to the stored settings and saves the result.
func (s *Store) Update(fn func(*Settings)) error {
	fn(&s.settings)
	return s.save()
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// save writes the settings atomically via a temp file.
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	b, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode settings: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("config: write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("config: atomic rename: %w", err)
	}
	return nil
}
