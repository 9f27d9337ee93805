package tui

import (
	"archive/zip"
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruminaider/plm/internal/cache"
	"github.com/ruminaider/plm/internal/paths"
	"github.com/ruminaider/plm/internal/targets"
	"github.com/ruminaider/plm/internal/vfs"
)

func buildZip(t *testing.T, prefix string, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(prefix + name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	root := t.TempDir()
	fs := vfs.NewMock()
	c := cache.New(fs, root)

	archive := buildZip(t, "repo-main/", map[string]string{"plugin.json": `{"name":"foo","version":"1.0.0"}`})
	_, err := c.StoreFromArchive("", "owner--foo", archive, "")
	require.NoError(t, err)

	targetReg := targets.NewRegistry(fs, paths.TargetsFile())
	return New(fs, c, targetReg, t.TempDir())
}

func TestNewLoadsCachedPlugins(t *testing.T) {
	m := newTestModel(t)
	require.Len(t, m.items, 1)
	assert.Equal(t, "owner--foo", m.items[0].name)
	assert.Equal(t, "1.0.0", m.items[0].version)
	assert.Empty(t, m.items[0].enabled)
}

func TestCursorMovementClampsAtBounds(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(Model)
	assert.Equal(t, 0, m.cursor)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)
	assert.Equal(t, 0, m.cursor)
}

func TestQuitKeyReturnsQuitCommand(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	msg := cmd()
	_, ok := msg.(tea.QuitMsg)
	assert.True(t, ok)
}

func TestFilterNarrowsVisibleItems(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m = updated.(Model)
	assert.True(t, m.filtering)

	for _, r := range "zzz" {
		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}
	assert.Empty(t, m.visible())

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	assert.False(t, m.filtering)
	assert.Len(t, m.visible(), 1)
}

func TestViewRendersPluginLine(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	assert.Contains(t, out, "owner--foo")
	assert.Contains(t, out, "managed")
}
