// Package cache implements the plugin cache manager (spec.md §4.E): a
// root directory of `<marketplace>/<plugin>/` archive payloads plus
// sidecar metadata, with atomic extraction and update semantics.
//
// Grounded on the original implementation's plugin/cache.rs
// (store_from_archive's prefix-stripping extraction,
// plugin_path/is_cached/list/load_manifest) and plugin/update.rs's
// backup/restore/atomic_update/remove_backup call sequence (those
// methods' bodies were not present in the retrieved source, so their
// shape here follows the call-site contract: backup moves the entry
// aside, atomic_update re-extracts into the vacated slot, restore
// undoes a failed update, and remove_backup is invoked by the caller
// only after success).
package cache

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ruminaider/plm/internal/errs"
	"github.com/ruminaider/plm/internal/manifest"
	"github.com/ruminaider/plm/internal/metadata"
	"github.com/ruminaider/plm/internal/pathguard"
	"github.com/ruminaider/plm/internal/vfs"
)

// DirectMarketplace is the literal on-disk marketplace directory used for
// plugins installed directly from a GitHub repository rather than through
// a curated marketplace index.
const DirectMarketplace = "github"

// Entry identifies one cached plugin. Marketplace is empty for plugins
// installed directly (the "github" directory is normalized to "").
type Entry struct {
	Marketplace string
	Name        string
}

// Cache manages the plugin cache root.
type Cache struct {
	fs   vfs.FS
	root string
}

// New returns a cache manager rooted at root. The root directory is
// created lazily on first write, not here.
func New(fs vfs.FS, root string) *Cache {
	return &Cache{fs: fs, root: root}
}

func marketplaceDir(marketplace string) string {
	if marketplace == "" {
		return DirectMarketplace
	}
	return marketplace
}

// PluginPath is a pure path composition: <root>/<marketplace-or-github>/<name>.
func (c *Cache) PluginPath(marketplace, name string) string {
	return filepath.Join(c.root, marketplaceDir(marketplace), name)
}

func (c *Cache) backupPath(marketplace, name string) string {
	return c.PluginPath(marketplace, name) + ".bak"
}

// IsCached reports whether a plugin directory already exists.
func (c *Cache) IsCached(marketplace, name string) bool {
	p := c.PluginPath(marketplace, name)
	return c.fs.Exists(p) && c.fs.IsDir(p)
}

// StoreFromArchive extracts a zip archive into the cache, stripping the
// host's top-level "<repo>-<ref>/" directory prefix and, when subdir is
// non-empty, extracting only the entries nested under it (also stripped).
// Any prior contents at the destination are removed first. A sidecar
// recording the install timestamp is written on success.
func (c *Cache) StoreFromArchive(marketplace, name string, archive []byte, subdir string) (string, error) {
	if subdir != "" {
		if err := validateSubdir(subdir); err != nil {
			return "", err
		}
	}

	pluginDir := c.PluginPath(marketplace, name)
	if err := c.guard(pluginDir); err != nil {
		return "", err
	}

	if c.fs.Exists(pluginDir) {
		if err := c.fs.RemoveDirAll(pluginDir); err != nil {
			return "", err
		}
	}

	extracted, err := c.extract(pluginDir, archive, subdir)
	if err != nil {
		_ = c.fs.RemoveDirAll(pluginDir)
		return "", err
	}
	if subdir != "" && extracted == 0 {
		_ = c.fs.RemoveDirAll(pluginDir)
		return "", errs.New(errs.InvalidSource, "cache.StoreFromArchive",
			errSourcePathNotFound{subdir: subdir})
	}

	sidecar := metadata.Sidecar{InstalledAt: time.Now().UTC().Format(time.RFC3339)}
	if err := metadata.Save(c.fs, pluginDir, sidecar); err != nil {
		return "", err
	}

	return pluginDir, nil
}

// extract unpacks archive into pluginDir, stripping the zipball's outer
// "<repo>-<ref>/" prefix and, when subdir is non-empty, restricting
// extraction to entries under "<subdir>/" (stripping that too). Backslash
// separators in entry names are normalized to forward slashes before any
// prefix comparison. Returns the number of entries written.
func (c *Cache) extract(pluginDir string, archive []byte, subdir string) (int, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return 0, errs.New(errs.ZipExtraction, "cache.extract", err)
	}
	if len(zr.File) == 0 {
		return 0, nil
	}

	outerPrefix := ""
	if first := strings.ReplaceAll(zr.File[0].Name, "\\", "/"); first != "" {
		if idx := strings.Index(first, "/"); idx >= 0 {
			outerPrefix = first[:idx+1]
		}
	}

	subdirPrefix := ""
	if subdir != "" {
		subdirPrefix = subdir + "/"
	}

	written := 0
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		rel := strings.TrimPrefix(name, outerPrefix)
		if rel == "" {
			continue
		}

		if subdirPrefix != "" {
			if !strings.HasPrefix(rel, subdirPrefix) {
				continue
			}
			rel = strings.TrimPrefix(rel, subdirPrefix)
			if rel == "" {
				continue
			}
		}

		target := filepath.Join(pluginDir, rel)
		if err := c.guard(target); err != nil {
			return written, err
		}

		if f.FileInfo().IsDir() || strings.HasSuffix(name, "/") {
			if err := c.fs.CreateDirAll(target); err != nil {
				return written, err
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return written, errs.New(errs.ZipExtraction, "cache.extract", err)
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return written, errs.New(errs.ZipExtraction, "cache.extract", err)
		}
		if err := c.fs.Write(target, content); err != nil {
			return written, err
		}
		written++
	}

	return written, nil
}

func (c *Cache) guard(target string) error {
	if _, err := pathguard.Scope(target, c.root); err != nil {
		return errs.New(errs.Validation, "cache.guard", err)
	}
	return nil
}

// Backup renames a cache entry aside to "<name>.bak".
func (c *Cache) Backup(marketplace, name string) error {
	return c.fs.Rename(c.PluginPath(marketplace, name), c.backupPath(marketplace, name))
}

// Restore renames a backed-up entry back into place, undoing Backup.
func (c *Cache) Restore(marketplace, name string) error {
	return c.fs.Rename(c.backupPath(marketplace, name), c.PluginPath(marketplace, name))
}

// RemoveBackup discards a cache entry's backup. Callers invoke this only
// after confirming the replacement that prompted Backup succeeded.
func (c *Cache) RemoveBackup(marketplace, name string) error {
	return c.fs.RemoveDirAll(c.backupPath(marketplace, name))
}

// AtomicUpdate extracts archive into marketplace/name's cache slot. The
// caller is expected to have already called Backup to vacate that slot;
// on any extraction error here, the partially-written pluginDir is removed
// so the slot is empty again and the caller's subsequent Restore (renaming
// the backup back into place) does not fail with ENOTEMPTY.
func (c *Cache) AtomicUpdate(marketplace, name string, archive []byte) (string, error) {
	pluginDir := c.PluginPath(marketplace, name)
	if err := c.guard(pluginDir); err != nil {
		return "", err
	}
	if _, err := c.extract(pluginDir, archive, ""); err != nil {
		_ = c.fs.RemoveDirAll(pluginDir)
		return "", err
	}
	return pluginDir, nil
}

// Remove deletes a cache entry. Absent entries are not an error.
func (c *Cache) Remove(marketplace, name string) error {
	return c.fs.RemoveDirAll(c.PluginPath(marketplace, name))
}

// List performs a two-level scan of the cache root, returning every
// cached plugin. Entries under the literal "github" directory are
// normalized to an empty Marketplace.
func (c *Cache) List() ([]Entry, error) {
	if !c.fs.Exists(c.root) || !c.fs.IsDir(c.root) {
		return nil, nil
	}

	marketplaces, err := c.fs.ReadDir(c.root)
	if err != nil {
		return nil, err
	}

	var out []Entry
	for _, mkt := range marketplaces {
		if !mkt.IsDir() {
			continue
		}
		mktName := baseName(mkt.Path)

		plugins, err := c.fs.ReadDir(mkt.Path)
		if err != nil {
			return nil, err
		}
		for _, p := range plugins {
			if !p.IsDir() {
				continue
			}
			if strings.HasSuffix(p.Path, ".bak") {
				continue
			}
			entryMarketplace := mktName
			if entryMarketplace == DirectMarketplace {
				entryMarketplace = ""
			}
			out = append(out, Entry{Marketplace: entryMarketplace, Name: baseName(p.Path)})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Marketplace != out[j].Marketplace {
			return out[i].Marketplace < out[j].Marketplace
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// LoadManifest reads and decodes a cached plugin's plugin.json, checking
// both the plain and ".claude-plugin/"-prefixed locations.
func (c *Cache) LoadManifest(marketplace, name string) (manifest.Manifest, error) {
	pluginDir := c.PluginPath(marketplace, name)
	for _, candidate := range []string{
		filepath.Join(pluginDir, "plugin.json"),
		filepath.Join(pluginDir, ".claude-plugin", "plugin.json"),
	} {
		if c.fs.Exists(candidate) && !c.fs.IsDir(candidate) {
			content, err := c.fs.ReadToString(candidate)
			if err != nil {
				return manifest.Manifest{}, err
			}
			return manifest.Parse([]byte(content))
		}
	}
	return manifest.Manifest{}, errs.New(errs.InvalidManifest, "cache.LoadManifest", errManifestNotFound{pluginDir: pluginDir})
}

func baseName(p string) string {
	p = strings.TrimRight(p, "/")
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// validateSubdir enforces spec.md §4.E's optional_subdir contract: a
// relative, already-normalized POSIX path with no "..", ".", or
// backslash components.
func validateSubdir(subdir string) error {
	if strings.Contains(subdir, "\\") {
		return errs.New(errs.InvalidSource, "cache.validateSubdir", errBadSubdir{subdir: subdir, reason: "must not contain backslashes"})
	}
	if strings.HasPrefix(subdir, "/") {
		return errs.New(errs.InvalidSource, "cache.validateSubdir", errBadSubdir{subdir: subdir, reason: "must be relative"})
	}
	for _, seg := range strings.Split(subdir, "/") {
		switch seg {
		case "":
			return errs.New(errs.InvalidSource, "cache.validateSubdir", errBadSubdir{subdir: subdir, reason: "must not contain empty segments"})
		case ".", "..":
			return errs.New(errs.InvalidSource, "cache.validateSubdir", errBadSubdir{subdir: subdir, reason: "must already be normalized"})
		}
	}
	return nil
}

type errSourcePathNotFound struct{ subdir string }

func (e errSourcePathNotFound) Error() string {
	return "source_path not found: " + e.subdir
}

type errBadSubdir struct {
	subdir string
	reason string
}

func (e errBadSubdir) Error() string {
	return "invalid source_path " + e.subdir + ": " + e.reason
}

type errManifestNotFound struct{ pluginDir string }

func (e errManifestNotFound) Error() string {
	return "plugin.json not found under " + e.pluginDir
}
