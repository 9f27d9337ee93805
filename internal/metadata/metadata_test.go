package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruminaider/plm/internal/manifest"
	"github.com/ruminaider/plm/internal/metadata"
	"github.com/ruminaider/plm/internal/vfs"
)

func TestSaveAndLoad(t *testing.T) {
	fs := vfs.NewMock()
	dir := "/cache/github/owner--repo"
	fs.AddDir(dir)

	s := metadata.Sidecar{
		InstalledAt: "2026-01-15T10:30:00Z",
		SourceRepo:  "owner/repo",
		GitRef:      "main",
		CommitSha:   "abc123",
	}
	s.SetStatus("codex", metadata.StatusEnabled)

	require.NoError(t, metadata.Save(fs, dir, s))

	loaded, ok, err := metadata.Load(fs, dir)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2026-01-15T10:30:00Z", loaded.InstalledAt)
	assert.Equal(t, "owner/repo", loaded.SourceRepo)
	assert.True(t, loaded.IsEnabled("codex"))
	assert.Equal(t, []string{"codex"}, loaded.EnabledTargets())

	assert.False(t, fs.Exists(dir+"/.plm-meta.json.tmp"), "temp file must not survive a successful save")
}

func TestLoadMissingIsAbsentNotError(t *testing.T) {
	fs := vfs.NewMock()
	fs.AddDir("/cache/github/owner--repo")

	_, ok, err := metadata.Load(fs, "/cache/github/owner--repo")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadCorruptIsAbsentNotError(t *testing.T) {
	fs := vfs.NewMock()
	fs.AddFile("/cache/github/owner--repo/.plm-meta.json", "{ not json")

	_, ok, err := metadata.Load(fs, "/cache/github/owner--repo")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnknownFieldsPreservedAcrossRoundTrip(t *testing.T) {
	fs := vfs.NewMock()
	dir := "/cache/github/owner--repo"
	fs.AddFile(dir+"/.plm-meta.json", `{"installedAt":"2026-01-01T00:00:00Z","futureField":"keep-me"}`)

	s, ok, err := metadata.Load(fs, dir)
	require.NoError(t, err)
	require.True(t, ok)

	s.GitRef = "develop"
	require.NoError(t, metadata.Save(fs, dir, s))

	raw, err := fs.ReadToString(dir + "/.plm-meta.json")
	require.NoError(t, err)
	assert.Contains(t, raw, "futureField")
	assert.Contains(t, raw, "keep-me")
	assert.Contains(t, raw, "develop")
}

func TestResolveInstalledAtPrefersSidecarThenManifestThenEmpty(t *testing.T) {
	fs := vfs.NewMock()
	dir := "/cache/github/owner--repo"

	m := &manifest.Manifest{Name: "x", Version: "1.0.0", InstalledAt: "2025-06-01T00:00:00Z"}

	t.Run("no sidecar falls back to manifest", func(t *testing.T) {
		fs.AddDir(dir)
		got, err := metadata.ResolveInstalledAt(fs, dir, m)
		require.NoError(t, err)
		assert.Equal(t, "2025-06-01T00:00:00Z", got)
	})

	t.Run("sidecar takes priority", func(t *testing.T) {
		s := metadata.Sidecar{InstalledAt: "2026-01-15T10:30:00Z"}
		require.NoError(t, metadata.Save(fs, dir, s))

		got, err := metadata.ResolveInstalledAt(fs, dir, m)
		require.NoError(t, err)
		assert.Equal(t, "2026-01-15T10:30:00Z", got)
	})

	t.Run("neither present yields empty", func(t *testing.T) {
		fs2 := vfs.NewMock()
		fs2.AddDir(dir)
		got, err := metadata.ResolveInstalledAt(fs2, dir, &manifest.Manifest{Name: "x", Version: "1.0.0"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
