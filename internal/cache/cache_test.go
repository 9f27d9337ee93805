package cache_test

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruminaider/plm/internal/cache"
	"github.com/ruminaider/plm/internal/vfs"
)

// newCache builds a Cache backed by the in-memory Mock FS, rooted at a
// real (empty) temp directory. pathguard.Scope validates destinations
// against the real filesystem even when the actual reads/writes run
// against Mock, so the root itself must exist on disk; its contents are
// never touched, since Mock never actually writes through to it.
func newCache(t *testing.T) (*vfs.Mock, *cache.Cache, string) {
	t.Helper()
	root := t.TempDir()
	fs := vfs.NewMock()
	return fs, cache.New(fs, root), root
}

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

func TestPluginPath(t *testing.T) {
	_, c, root := newCache(t)
	assert.Equal(t, filepath.Join(root, "github", "owner--repo"), c.PluginPath("", "owner--repo"))
	assert.Equal(t, filepath.Join(root, "acme", "owner--repo"), c.PluginPath("acme", "owner--repo"))
}

func TestStoreFromArchiveStripsOuterPrefix(t *testing.T) {
	fs, c, root := newCache(t)

	archive := buildZip(t, "repo-main/", map[string]string{
		"plugin.json":        `{"name":"x","version":"1.0.0"}`,
		"skills/s1/SKILL.md": "# s1",
	})

	dir, err := c.StoreFromArchive("", "owner--repo", archive, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "github", "owner--repo"), dir)

	assert.True(t, fs.Exists(filepath.Join(dir, "plugin.json")))
	assert.True(t, fs.Exists(filepath.Join(dir, "skills", "s1", "SKILL.md")))
	assert.True(t, fs.Exists(filepath.Join(dir, ".plm-meta.json")))
}

func TestStoreFromArchiveWithSubdirExtractsOnlyThatSubtree(t *testing.T) {
	fs, c, _ := newCache(t)

	archive := buildZip(t, "repo-main/", map[string]string{
		"plugins/foo/plugin.json": `{"name":"foo","version":"1.0.0"}`,
		"plugins/foo-bar/decoy":   "should not be extracted",
		"README.md":               "ignored, outside subdir",
	})

	dir, err := c.StoreFromArchive("", "foo", archive, "plugins/foo")
	require.NoError(t, err)

	assert.True(t, fs.Exists(filepath.Join(dir, "plugin.json")))
	assert.False(t, fs.Exists(filepath.Join(dir, "decoy")), "a sibling dir sharing the subdir's prefix must not be extracted")
	assert.False(t, fs.Exists(filepath.Join(dir, "README.md")))
}

func TestStoreFromArchiveMissingSubdirIsInvalidSource(t *testing.T) {
	_, c, _ := newCache(t)

	archive := buildZip(t, "repo-main/", map[string]string{
		"plugin.json": `{"name":"x","version":"1.0.0"}`,
	})

	_, err := c.StoreFromArchive("", "owner--repo", archive, "nested/missing")
	require.Error(t, err)
}

func TestStoreFromArchiveRejectsBadSubdir(t *testing.T) {
	_, c, _ := newCache(t)
	archive := buildZip(t, "repo-main/", map[string]string{"a": "b"})

	cases := []string{"../escape", "./here", "/absolute", "a\\b"}
	for _, sd := range cases {
		_, err := c.StoreFromArchive("", "x", archive, sd)
		assert.Error(t, err, sd)
	}
}

func TestIsCachedAndRemove(t *testing.T) {
	_, c, _ := newCache(t)
	archive := buildZip(t, "repo-main/", map[string]string{"plugin.json": `{"name":"x","version":"1.0.0"}`})

	assert.False(t, c.IsCached("", "owner--repo"))
	_, err := c.StoreFromArchive("", "owner--repo", archive, "")
	require.NoError(t, err)
	assert.True(t, c.IsCached("", "owner--repo"))

	require.NoError(t, c.Remove("", "owner--repo"))
	assert.False(t, c.IsCached("", "owner--repo"))
}

func TestBackupRestoreAtomicUpdate(t *testing.T) {
	fs, c, _ := newCache(t)

	v1 := buildZip(t, "repo-main/", map[string]string{"plugin.json": `{"name":"x","version":"1.0.0"}`})
	_, err := c.StoreFromArchive("", "owner--repo", v1, "")
	require.NoError(t, err)

	require.NoError(t, c.Backup("", "owner--repo"))
	assert.False(t, c.IsCached("", "owner--repo"))

	v2 := buildZip(t, "repo-main/", map[string]string{"plugin.json": `{"name":"x","version":"2.0.0"}`})
	dir, err := c.AtomicUpdate("", "owner--repo", v2)
	require.NoError(t, err)

	content, err := fs.ReadToString(filepath.Join(dir, "plugin.json"))
	require.NoError(t, err)
	assert.Contains(t, content, "2.0.0")

	require.NoError(t, c.RemoveBackup("", "owner--repo"))
}

func TestList(t *testing.T) {
	_, c, _ := newCache(t)

	archive := buildZip(t, "repo-main/", map[string]string{"plugin.json": `{"name":"x","version":"1.0.0"}`})
	_, err := c.StoreFromArchive("", "owner--repo", archive, "")
	require.NoError(t, err)
	_, err = c.StoreFromArchive("acme-market", "owner2--repo2", archive, "")
	require.NoError(t, err)

	entries, err := c.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "", entries[0].Marketplace)
	assert.Equal(t, "owner--repo", entries[0].Name)
	assert.Equal(t, "acme-market", entries[1].Marketplace)
}

func TestLoadManifest(t *testing.T) {
	_, c, _ := newCache(t)
	archive := buildZip(t, "repo-main/", map[string]string{"plugin.json": `{"name":"x","version":"1.0.0"}`})
	_, err := c.StoreFromArchive("", "owner--repo", archive, "")
	require.NoError(t, err)

	m, err := c.LoadManifest("", "owner--repo")
	require.NoError(t, err)
	assert.Equal(t, "x", m.Name)
	assert.Equal(t, "1.0.0", m.Version)
}

// buildOrderedZip builds a zip whose entries are written in exactly the
// given order, unlike buildZip's map (whose range order is unspecified) -
// needed to force a later entry to fail extraction after an earlier one
// has already been written.
func buildOrderedZip(t *testing.T, prefix string, names []string, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(prefix + name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestStoreFromArchiveRemovesPartialExtractionOnFailure(t *testing.T) {
	fs, c, root := newCache(t)

	archive := buildOrderedZip(t, "repo-main/", []string{
		"plugin.json",
		"../../../escape",
	}, `{"name":"x","version":"1.0.0"}`)

	_, err := c.StoreFromArchive("", "owner--repo", archive, "")
	require.Error(t, err)

	pluginDir := filepath.Join(root, "github", "owner--repo")
	assert.False(t, c.IsCached("", "owner--repo"))
	assert.False(t, fs.Exists(pluginDir), "pluginDir should be removed after a failed extraction")
}

func TestAtomicUpdateRemovesPartialExtractionOnFailureSoRestoreCanSucceed(t *testing.T) {
	fs, c, root := newCache(t)

	v1 := buildZip(t, "repo-main/", map[string]string{"plugin.json": `{"name":"x","version":"1.0.0"}`})
	_, err := c.StoreFromArchive("", "owner--repo", v1, "")
	require.NoError(t, err)
	require.NoError(t, c.Backup("", "owner--repo"))

	badArchive := buildOrderedZip(t, "repo-main/", []string{
		"plugin.json",
		"../../../escape",
	}, `{"name":"x","version":"2.0.0"}`)

	_, err = c.AtomicUpdate("", "owner--repo", badArchive)
	require.Error(t, err)

	pluginDir := filepath.Join(root, "github", "owner--repo")
	assert.False(t, fs.Exists(pluginDir), "pluginDir should be removed after a failed atomic update")

	// With the slot empty, Restore's rename-back no longer hits ENOTEMPTY.
	require.NoError(t, c.Restore("", "owner--repo"))
	content, err := fs.ReadToString(filepath.Join(pluginDir, "plugin.json"))
	require.NoError(t, err)
	assert.Contains(t, content, "1.0.0")
}
