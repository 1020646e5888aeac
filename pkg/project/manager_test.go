package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"My WebApp", "my-webapp"},
		{"Data  Pipeline  v2", "data-pipeline-v2"},
		{"weird!@#chars", "weirdchars"},
		{"already-slugged", "already-slugged"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.name))
		})
	}
}

func TestCreate(t *testing.T) {
	base := t.TempDir()
	m, err := NewManager(base)
	require.NoError(t, err)

	rec, err := m.Create("My WebApp", "frontend work", "")
	require.NoError(t, err)
	assert.Equal(t, "my-webapp", rec.ID)
	assert.Equal(t, "My WebApp", rec.Name)

	info, err := os.Stat(filepath.Join(base, "projects", "my-webapp", "chats"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Same slug is a conflict regardless of display-name casing.
	_, err = m.Create("My WebApp", "", "")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestGetByIDAndName(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	_, err = m.Create("My WebApp", "", "")
	require.NoError(t, err)

	byID, ok := m.Get("my-webapp")
	require.True(t, ok)
	byName, ok2 := m.Get("my webapp")
	require.True(t, ok2)
	assert.Equal(t, byID.ID, byName.ID)

	_, ok = m.Get("nonexistent")
	assert.False(t, ok)
}

func TestMembershipIsIdempotent(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	_, err = m.Create("My WebApp", "", "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		found, err := m.AddChat("my-webapp", "a1b2c3d4")
		require.NoError(t, err)
		assert.True(t, found)
	}
	rec, _ := m.Get("my-webapp")
	assert.Equal(t, 1, rec.ChatCount())

	removed, err := m.RemoveChat("my-webapp", "a1b2c3d4")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = m.RemoveChat("my-webapp", "a1b2c3d4")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDeleteKeepsMemberFiles(t *testing.T) {
	base := t.TempDir()
	m, err := NewManager(base)
	require.NoError(t, err)
	_, err = m.Create("My WebApp", "", "")
	require.NoError(t, err)

	// Simulate a transcript living under the project.
	transcript := filepath.Join(base, "projects", "my-webapp", "chats", "20250101-000000_x.md")
	require.NoError(t, os.WriteFile(transcript, []byte("---\n"), 0o600))

	found, err := m.Delete("my-webapp")
	require.NoError(t, err)
	assert.True(t, found)

	_, ok := m.Get("my-webapp")
	assert.False(t, ok)
	_, statErr := os.Stat(transcript)
	assert.NoError(t, statErr)
}

func TestRenameKeepsSlug(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	_, err = m.Create("My WebApp", "", "")
	require.NoError(t, err)

	found, err := m.Rename("my-webapp", "Our WebApp")
	require.NoError(t, err)
	assert.True(t, found)

	rec, ok := m.Get("my-webapp")
	require.True(t, ok)
	assert.Equal(t, "Our WebApp", rec.Name)
}
