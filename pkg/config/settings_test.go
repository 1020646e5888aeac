package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsWhenFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store, err := NewStore(path)
	require.NoError(t, err)

	s := store.Settings()
	assert.Equal(t, "claude", s.DefaultProvider)
	assert.Equal(t, "gpt-4o", s.OpenAIModel)
	assert.Equal(t, "short", s.DefaultSummaryKind)
	assert.Equal(t, 32000, s.ContextTokens)
	assert.NotEmpty(t, s.StoragePath)
}

func TestUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store, err := NewStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Update(func(s *Settings) {
		s.DefaultProvider = "gemini"
		s.ContextTokens = 8000
	}))

	reopened, err := NewStore(path)
	require.NoError(t, err)
	s := reopened.Settings()
	assert.Equal(t, "gemini", s.DefaultProvider)
	assert.Equal(t, 8000, s.ContextTokens)
}

func TestCorruptFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	store, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, "claude", store.Settings().DefaultProvider)
}

func TestPartialFileKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"default_provider":"codex"}`), 0o600))

	store, err := NewStore(path)
	require.NoError(t, err)
	s := store.Settings()
	assert.Equal(t, "codex", s.DefaultProvider)
	assert.Equal(t, "gpt-4o", s.OpenAIModel)
}
