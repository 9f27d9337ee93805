package placement

import (
	"path/filepath"

	"github.com/ruminaider/plm/internal/vfs"
)

// PruneEmptyAncestors walks upward from componentPath through
// <plugin>/, <marketplace>/, <kind-dir>/, removing each level if and
// only if it has become empty, stopping at (and never removing) base.
func PruneEmptyAncestors(fs vfs.FS, componentPath, base string) error {
	dir := filepath.Dir(componentPath)
	for i := 0; i < 3; i++ {
		if dir == base || dir == "." || dir == string(filepath.Separator) {
			return nil
		}
		entries, err := fs.ReadDir(dir)
		if err != nil {
			// Directory may already be gone, or not a directory; nothing
			// further to prune.
			return nil
		}
		if len(entries) > 0 {
			return nil
		}
		if err := fs.RemoveDirAll(dir); err != nil {
			return err
		}
		dir = filepath.Dir(dir)
	}
	return nil
}
