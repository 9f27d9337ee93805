package marketplace_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruminaider/plm/internal/marketplace"
	"github.com/ruminaider/plm/internal/repo"
	"github.com/ruminaider/plm/internal/vfs"
)

const sampleIndex = `{
  "name": "acme-marketplace",
  "owner": {"name": "Acme", "email": "acme@example.com"},
  "plugins": [
    {"name": "p1", "source": "./plugins/p1", "description": "first", "version": "1.0.0"},
    {"name": "p2", "source": {"source": "github", "repo": "acme/p2"}, "version": "2.1.0"}
  ]
}`

func TestParseManifest(t *testing.T) {
	m, err := marketplace.ParseManifest([]byte(sampleIndex))
	require.NoError(t, err)
	assert.Equal(t, "acme-marketplace", m.Name)
	require.NotNil(t, m.Owner)
	assert.Equal(t, "Acme", m.Owner.Name)
	require.Len(t, m.Plugins, 2)

	p1, ok := m.Find("p1")
	require.True(t, ok)
	assert.Equal(t, marketplace.SourceLocal, p1.Source.Kind)
	assert.Equal(t, "plugins/p1", p1.Source.Path)

	p2, ok := m.Find("p2")
	require.True(t, ok)
	assert.Equal(t, marketplace.SourceGitHub, p2.Source.Kind)
	assert.Equal(t, "acme/p2", p2.Source.Repo)
}

func TestParseManifestMissingNameIsInvalid(t *testing.T) {
	_, err := marketplace.ParseManifest([]byte(`{"plugins":[]}`))
	require.Error(t, err)
}

func TestParseManifestRejectsBadLocalSourcePath(t *testing.T) {
	_, err := marketplace.ParseManifest([]byte(`{"name":"x","plugins":[{"name":"p","source":"../escape"}]}`))
	require.Error(t, err)
}

func TestPluginSourceRoundTripsThroughJSON(t *testing.T) {
	m, err := marketplace.ParseManifest([]byte(sampleIndex))
	require.NoError(t, err)

	encoded, err := json.Marshal(m)
	require.NoError(t, err)

	decoded, err := marketplace.ParseManifest(encoded)
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
}

func TestRegistryStoreGetRemoveList(t *testing.T) {
	fs := vfs.NewMock()
	reg := marketplace.NewRegistry(fs, "/cache/marketplaces")

	_, ok, err := reg.Get("acme")
	require.NoError(t, err)
	assert.False(t, ok)

	entry := marketplace.CacheEntry{Name: "acme", Source: "github:acme/market", Plugins: []marketplace.Plugin{{Name: "p1", Version: "1.0.0"}}}
	require.NoError(t, reg.Store(entry))

	got, ok, err := reg.Get("acme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry.Plugins, got.Plugins)

	names, err := reg.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, names)

	require.NoError(t, reg.Remove("acme"))
	_, ok, err = reg.Get("acme")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistryFindPlugin(t *testing.T) {
	fs := vfs.NewMock()
	reg := marketplace.NewRegistry(fs, "/cache/marketplaces")

	require.NoError(t, reg.Store(marketplace.CacheEntry{
		Name:    "acme",
		Plugins: []marketplace.Plugin{{Name: "p1", Version: "1.0.0"}},
	}))
	require.NoError(t, reg.Store(marketplace.CacheEntry{
		Name:    "other",
		Plugins: []marketplace.Plugin{{Name: "p2", Version: "2.0.0"}},
	}))

	mkt, plugin, ok, err := reg.FindPlugin("p2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "other", mkt)
	assert.Equal(t, "2.0.0", plugin.Version)

	_, _, ok, err = reg.FindPlugin("nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
}

type fakeHostClient struct {
	files map[string]string
}

func (f fakeHostClient) GetDefaultBranch(ctx context.Context, r repo.Repo) (string, error) {
	return "main", nil
}
func (f fakeHostClient) GetCommitSHA(ctx context.Context, r repo.Repo, ref string) (string, error) {
	return "sha", nil
}
func (f fakeHostClient) DownloadArchive(ctx context.Context, r repo.Repo) ([]byte, error) {
	return nil, nil
}
func (f fakeHostClient) DownloadArchiveWithSHA(ctx context.Context, r repo.Repo) ([]byte, string, string, error) {
	return nil, "", "", nil
}
func (f fakeHostClient) FetchFile(ctx context.Context, r repo.Repo, path string) (string, error) {
	content, ok := f.files[path]
	if !ok {
		return "", assert.AnError
	}
	return content, nil
}

func TestFetcherFetchUsesClaudePluginPath(t *testing.T) {
	client := fakeHostClient{files: map[string]string{
		".claude-plugin/marketplace.json": sampleIndex,
	}}
	fetcher := marketplace.NewFetcher(client)

	m, err := fetcher.Fetch(context.Background(), repo.Repo{Owner: "acme", Name: "market"}, "")
	require.NoError(t, err)
	assert.Equal(t, "acme-marketplace", m.Name)
}

func TestFetcherFetchHonorsSourceSubdir(t *testing.T) {
	client := fakeHostClient{files: map[string]string{
		"nested/dir/.claude-plugin/marketplace.json": sampleIndex,
	}}
	fetcher := marketplace.NewFetcher(client)

	m, err := fetcher.Fetch(context.Background(), repo.Repo{Owner: "acme", Name: "market"}, "nested/dir")
	require.NoError(t, err)
	assert.Equal(t, "acme-marketplace", m.Name)
}

func TestFetcherFetchAsEntryRecordsProvenance(t *testing.T) {
	client := fakeHostClient{files: map[string]string{
		".claude-plugin/marketplace.json": sampleIndex,
	}}
	fetcher := marketplace.NewFetcher(client)

	entry, err := fetcher.FetchAsEntry(context.Background(), repo.Repo{Owner: "acme", Name: "market"}, "acme-market", "")
	require.NoError(t, err)
	assert.Equal(t, "acme-market", entry.Name)
	assert.Equal(t, "github:acme/market", entry.Source)
	assert.NotEmpty(t, entry.FetchedAt)
	assert.Len(t, entry.Plugins, 2)
}

func TestHasUpdate(t *testing.T) {
	cases := []struct {
		installed, available string
		want                  bool
	}{
		{"1.0.0", "1.0.0", false},
		{"1.0.0", "1.1.0", true},
		{"1.1.0", "1.0.0", false},
		{"abc", "abc", false},
		{"abc", "def", true}, // non-semver fallback
	}
	for _, c := range cases {
		assert.Equal(t, c.want, marketplace.HasUpdate(c.installed, c.available), "%s -> %s", c.installed, c.available)
	}
}
