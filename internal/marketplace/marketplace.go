// Package marketplace implements the marketplace-index collaborator
// (spec.md §6): fetching and decoding a marketplace repository's
// `.claude-plugin/marketplace.json`, caching the result locally, and
// comparing plugin versions to decide whether an update is available.
//
// Grounded on the original implementation's marketplace/registry.rs
// (MarketplaceCache's on-disk JSON-per-marketplace-name layout under
// ~/.plm/cache/marketplaces/) and marketplace/fetcher.rs (the
// `.claude-plugin/marketplace.json`, optionally subdir-prefixed, fetch
// path). The untagged PluginSource union and version-comparison design
// are new: the original always decoded JSON with serde and never
// compared versions as semver.
package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver"

	"github.com/ruminaider/plm/internal/errs"
	"github.com/ruminaider/plm/internal/host"
	"github.com/ruminaider/plm/internal/repo"
	"github.com/ruminaider/plm/internal/vfs"
)

// Owner is a marketplace index's optional maintainer record.
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// SourceKind distinguishes a plugin entry's two source shapes.
type SourceKind string

const (
	SourceLocal  SourceKind = "local"
	SourceGitHub SourceKind = "github"
)

// PluginSource is the untagged `"./path"` | `{"source":"github","repo":...}`
// union from spec.md §6's marketplace-index schema.
type PluginSource struct {
	Kind SourceKind
	Path string // relative subdir within the marketplace repo, Kind == SourceLocal
	Repo string // "owner/name", Kind == SourceGitHub
}

// UnmarshalJSON decodes either a bare string (a local relative path,
// normalized and validated with repo.ParseSourcePath) or an object naming
// an external source.
func (s *PluginSource) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		normalized, err := repo.ParseSourcePath(asString)
		if err != nil {
			return err
		}
		*s = PluginSource{Kind: SourceLocal, Path: normalized}
		return nil
	}

	var asObject struct {
		Source string `json:"source"`
		Repo   string `json:"repo"`
	}
	if err := json.Unmarshal(data, &asObject); err != nil {
		return errs.New(errs.InvalidManifest, "marketplace.PluginSource.UnmarshalJSON",
			fmt.Errorf("plugin source must be a path string or an external-source object: %w", err))
	}
	if asObject.Source != "github" {
		return errs.New(errs.InvalidManifest, "marketplace.PluginSource.UnmarshalJSON",
			fmt.Errorf("unsupported external plugin source %q", asObject.Source))
	}
	if asObject.Repo == "" {
		return errs.New(errs.InvalidManifest, "marketplace.PluginSource.UnmarshalJSON",
			fmt.Errorf("external plugin source missing repo"))
	}
	*s = PluginSource{Kind: SourceGitHub, Repo: asObject.Repo}
	return nil
}

// MarshalJSON re-emits the shape UnmarshalJSON accepts.
func (s PluginSource) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case SourceGitHub:
		return json.Marshal(struct {
			Source string `json:"source"`
			Repo   string `json:"repo"`
		}{Source: "github", Repo: s.Repo})
	default:
		return json.Marshal("./" + s.Path)
	}
}

// Plugin is one marketplace-index plugin entry.
type Plugin struct {
	Name        string       `json:"name"`
	Source      PluginSource `json:"source"`
	Description string       `json:"description,omitempty"`
	Version     string       `json:"version,omitempty"`
}

// Manifest is the decoded `.claude-plugin/marketplace.json` contents.
type Manifest struct {
	Name    string   `json:"name"`
	Owner   *Owner   `json:"owner,omitempty"`
	Plugins []Plugin `json:"plugins"`
}

// ParseManifest decodes a marketplace.json document.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, errs.New(errs.Parse, "marketplace.ParseManifest", err)
	}
	if strings.TrimSpace(m.Name) == "" {
		return Manifest{}, errs.New(errs.InvalidManifest, "marketplace.ParseManifest",
			fmt.Errorf("marketplace.json missing required field \"name\""))
	}
	return m, nil
}

// Find returns the plugin named name, if present.
func (m Manifest) Find(name string) (Plugin, bool) {
	for _, p := range m.Plugins {
		if p.Name == name {
			return p, true
		}
	}
	return Plugin{}, false
}

// indexPath returns marketplace.json's path within a marketplace repo,
// optionally rooted under subdir.
func indexPath(subdir string) string {
	if subdir == "" {
		return ".claude-plugin/marketplace.json"
	}
	return path.Join(subdir, ".claude-plugin/marketplace.json")
}

// Fetcher retrieves a marketplace-index manifest over a host.Client.
type Fetcher struct {
	client host.Client
}

// NewFetcher returns a Fetcher backed by client.
func NewFetcher(client host.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch downloads and decodes r's marketplace.json, optionally nested
// under subdir.
func (f *Fetcher) Fetch(ctx context.Context, r repo.Repo, subdir string) (Manifest, error) {
	content, err := f.client.FetchFile(ctx, r, indexPath(subdir))
	if err != nil {
		return Manifest{}, err
	}
	return ParseManifest([]byte(content))
}

// FetchAsEntry fetches r's marketplace.json and wraps it as a CacheEntry
// ready for Registry.Store, recording name and r as the entry's identity
// and provenance.
func (f *Fetcher) FetchAsEntry(ctx context.Context, r repo.Repo, name, subdir string) (CacheEntry, error) {
	m, err := f.Fetch(ctx, r, subdir)
	if err != nil {
		return CacheEntry{}, err
	}
	return CacheEntry{
		Name:      name,
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
		Source:    fmt.Sprintf("github:%s/%s", r.Owner, r.Name),
		Owner:     m.Owner,
		Plugins:   m.Plugins,
	}, nil
}

// CacheEntry is one marketplace's on-disk cached manifest (spec.md §4.F
// treats a marketplace as one more user-global cache entry, keyed by
// name rather than (marketplace, plugin)).
type CacheEntry struct {
	Name      string   `json:"name"`
	FetchedAt string   `json:"fetchedAt"`
	Source    string   `json:"source"`
	Owner     *Owner   `json:"owner,omitempty"`
	Plugins   []Plugin `json:"plugins"`
}

// Registry manages the on-disk cache of fetched marketplace manifests,
// one JSON file per marketplace name under cacheDir.
type Registry struct {
	fs       vfs.FS
	cacheDir string
}

// NewRegistry returns a Registry rooted at cacheDir. The directory is
// created lazily on first write.
func NewRegistry(fs vfs.FS, cacheDir string) *Registry {
	return &Registry{fs: fs, cacheDir: cacheDir}
}

func (r *Registry) cachePath(name string) string {
	return path.Join(r.cacheDir, name+".json")
}

// Get reads a marketplace's cached manifest. A missing entry returns
// (CacheEntry{}, false, nil).
func (r *Registry) Get(name string) (CacheEntry, bool, error) {
	p := r.cachePath(name)
	if !r.fs.Exists(p) {
		return CacheEntry{}, false, nil
	}
	content, err := r.fs.ReadToString(p)
	if err != nil {
		return CacheEntry{}, false, err
	}
	var entry CacheEntry
	if err := json.Unmarshal([]byte(content), &entry); err != nil {
		return CacheEntry{}, false, errs.New(errs.Parse, "marketplace.Registry.Get", err)
	}
	return entry, true, nil
}

// Store writes entry to its cache slot, creating cacheDir if needed.
func (r *Registry) Store(entry CacheEntry) error {
	if err := r.fs.CreateDirAll(r.cacheDir); err != nil {
		return err
	}
	content, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return errs.New(errs.IO, "marketplace.Registry.Store", err)
	}
	return r.fs.Write(r.cachePath(entry.Name), content)
}

// Remove deletes a marketplace's cache entry. Absent entries are not an
// error.
func (r *Registry) Remove(name string) error {
	return r.fs.RemoveFile(r.cachePath(name))
}

// List returns every cached marketplace's name, sorted.
func (r *Registry) List() ([]string, error) {
	if !r.fs.Exists(r.cacheDir) || !r.fs.IsDir(r.cacheDir) {
		return nil, nil
	}
	entries, err := r.fs.ReadDir(r.cacheDir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		base := path.Base(e.Path)
		if name, ok := strings.CutSuffix(base, ".json"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// FindPlugin searches every cached marketplace for a plugin named
// pluginName, returning the first (marketplace name, entry) match.
func (r *Registry) FindPlugin(pluginName string) (string, Plugin, bool, error) {
	names, err := r.List()
	if err != nil {
		return "", Plugin{}, false, err
	}
	for _, name := range names {
		entry, ok, err := r.Get(name)
		if err != nil {
			return "", Plugin{}, false, err
		}
		if !ok {
			continue
		}
		for _, p := range entry.Plugins {
			if p.Name == pluginName {
				return name, p, true, nil
			}
		}
	}
	return "", Plugin{}, false, nil
}

// HasUpdate reports whether available is newer than installed. Both are
// parsed as semver when possible; if either fails to parse, the plugins
// are compared with a plain string-inequality fallback (spec.md §6's
// marketplace plugin "version" field has no required format).
func HasUpdate(installed, available string) bool {
	if installed == available {
		return false
	}
	iv, ierr := semver.NewVersion(installed)
	av, aerr := semver.NewVersion(available)
	if ierr == nil && aerr == nil {
		return av.GreaterThan(iv)
	}
	return installed != available
}
