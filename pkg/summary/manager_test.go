package summary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComputesWordCount(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	content := "We compared   three auth flows\nand picked PKCE."
	rec, err := m.Create("oauth-research", content, "a1b2c3d4", KindShort, "claude", "")
	require.NoError(t, err)

	assert.Equal(t, len(strings.Fields(content)), rec.WordCount)
	assert.Equal(t, KindShort, rec.Kind)
	assert.Equal(t, "a1b2c3d4", rec.OriginalChatID)
	assert.True(t, strings.HasSuffix(rec.FilePath, "_summary.md"))
}

func TestLoadBodyRoundTrip(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	content := "## Findings\n\nPKCE won.\n\n## Open questions\n\nToken rotation."
	rec, err := m.Create("oauth-research", content, "a1b2c3d4", KindLong, "claude", "")
	require.NoError(t, err)

	body, err := m.LoadBody(rec.SummaryID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body, "# Summary: oauth-research"))
	assert.Contains(t, body, content)

	// Name resolution works too.
	byName, err := m.LoadBody("oauth-research")
	require.NoError(t, err)
	assert.Equal(t, body, byName)
}

func TestListFiltersByProject(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	_, err = m.Create("standalone", "one two", "c1", KindShort, "claude", "")
	require.NoError(t, err)
	_, err = m.Create("scoped", "three four", "c2", KindShort, "claude", "my-webapp")
	require.NoError(t, err)

	all := m.List("")
	assert.Len(t, all, 2)

	scoped := m.List("my-webapp")
	require.Len(t, scoped, 1)
	assert.Equal(t, "scoped", scoped[0].Name)
	assert.Contains(t, scoped[0].FilePath, filepath.Join("projects", "my-webapp", "summaries"))
}

func TestForChat(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	_, err = m.Create("a", "x", "chat-one", KindShort, "claude", "")
	require.NoError(t, err)
	_, err = m.Create("b", "y", "chat-two", KindShort, "claude", "")
	require.NoError(t, err)

	recs := m.ForChat("chat-one")
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].Name)
}

func TestDelete(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	rec, err := m.Create("doomed", "x y z", "c1", KindShort, "claude", "")
	require.NoError(t, err)

	found, err := m.Delete(rec.SummaryID)
	require.NoError(t, err)
	assert.True(t, found)

	_, statErr := os.Stat(rec.FilePath)
	assert.True(t, os.IsNotExist(statErr))
	_, ok := m.Get(rec.SummaryID)
	assert.False(t, ok)

	found, err = m.Delete("missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUnknownKindDefaultsToShort(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	rec, err := m.Create("x", "content", "c1", "", "claude", "")
	require.NoError(t, err)
	assert.Equal(t, KindShort, rec.Kind)
}
