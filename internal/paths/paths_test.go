package paths_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ruminaider/plm/internal/paths"
)

func TestRootDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	assert.True(t, strings.HasPrefix(paths.RootDir(), home))
	assert.True(t, strings.HasSuffix(paths.RootDir(), ".plm"))
}

func TestCacheDir(t *testing.T) {
	assert.True(t, strings.HasSuffix(paths.CacheDir(), filepathJoin(".plm", "cache")))
}

func TestPluginCacheDir(t *testing.T) {
	assert.True(t, strings.HasSuffix(paths.PluginCacheDir(), filepathJoin("cache", "plugins")))
}

func TestMarketplaceCacheDir(t *testing.T) {
	assert.True(t, strings.HasSuffix(paths.MarketplaceCacheDir(), filepathJoin("cache", "marketplaces")))
}

func TestTargetsFile(t *testing.T) {
	assert.True(t, strings.HasSuffix(paths.TargetsFile(), filepathJoin(".plm", "targets.json")))
}

func TestConfigFile(t *testing.T) {
	assert.True(t, strings.HasSuffix(paths.ConfigFile(), filepathJoin(".plm", "config.yaml")))
}

func filepathJoin(parts ...string) string {
	return strings.Join(parts, string(os.PathSeparator))
}
