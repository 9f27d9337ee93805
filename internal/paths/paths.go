// Package paths resolves plm's on-disk layout under the user's home
// directory, mirroring the original implementation's home-relative
// constructors (target/registry.rs's "~/.plm/targets.json",
// marketplace/registry.rs's "~/.plm/cache/marketplaces/", and
// plugin/cache.rs's "~/.plm/cache/plugins/").
package paths

import (
	"os"
	"path/filepath"
)

func home() string {
	h, _ := os.UserHomeDir()
	return h
}

// RootDir returns ~/.plm, the dotdir every other path here is rooted
// under.
func RootDir() string {
	return filepath.Join(home(), ".plm")
}

// CacheDir returns ~/.plm/cache, the root internal/cache.Cache and
// internal/marketplace.Registry are constructed against.
func CacheDir() string {
	return filepath.Join(RootDir(), "cache")
}

// PluginCacheDir returns ~/.plm/cache/plugins, the root internal/cache
// stores extracted plugin archives under.
func PluginCacheDir() string {
	return filepath.Join(CacheDir(), "plugins")
}

// MarketplaceCacheDir returns ~/.plm/cache/marketplaces, the root
// internal/marketplace caches fetched marketplace manifests under.
func MarketplaceCacheDir() string {
	return filepath.Join(CacheDir(), "marketplaces")
}

// TargetsFile returns ~/.plm/targets.json, the target registry's
// persistence file (spec.md §4.D).
func TargetsFile() string {
	return filepath.Join(RootDir(), "targets.json")
}

// ConfigFile returns ~/.plm/config.yaml, plm's own CLI configuration
// (GitHub token override, default targets, etc.).
func ConfigFile() string {
	return filepath.Join(RootDir(), "config.yaml")
}
