// Package pathguard validates that a path resolves underneath a declared
// root before any filesystem mutation touches it. Every destination the
// applier or cache manager writes to is checked here first.
package pathguard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ruminaider/plm/internal/errs"
)

// Scoped is a path that has been validated to resolve under Root.
type Scoped struct {
	Path string
	Root string
}

// Scope validates that path, once logically normalized, resolves under
// root. It accepts both existing and not-yet-created paths: for a path
// whose full form doesn't exist yet, it walks up to the nearest existing
// ancestor, validates that ancestor, then reattaches the remaining literal
// tail. Any dangling symlink found on an existing ancestor is treated as a
// violation (fail-closed), matching the fs abstraction's symlink-aware
// read_dir semantics.
func Scope(path, root string) (Scoped, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Scoped{}, errs.New(errs.Validation, "pathguard.Scope", fmt.Errorf("resolving root: %w", err))
	}
	absRoot = filepath.Clean(absRoot)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Scoped{}, errs.New(errs.Validation, "pathguard.Scope", fmt.Errorf("resolving path: %w", err))
	}
	absPath = filepath.Clean(absPath)

	if !withinPrefix(absPath, absRoot) {
		return Scoped{}, errs.New(errs.Validation, "pathguard.Scope",
			fmt.Errorf("path %q escapes root %q", path, root))
	}

	resolved, tail, err := nearestExistingAncestor(absPath)
	if err != nil {
		return Scoped{}, errs.New(errs.Validation, "pathguard.Scope", err)
	}
	if resolved != "" {
		if !withinPrefix(resolved, absRoot) && resolved != absRoot {
			return Scoped{}, errs.New(errs.Validation, "pathguard.Scope",
				fmt.Errorf("path %q resolves outside root %q", path, root))
		}
		if len(tail) > 0 {
			absPath = filepath.Join(append([]string{resolved}, tail...)...)
		} else {
			absPath = resolved
		}
	}

	return Scoped{Path: absPath, Root: absRoot}, nil
}

// withinPrefix reports whether p is root or a descendant of root, purely
// lexically (both must already be absolute and Clean).
func withinPrefix(p, root string) bool {
	if p == root {
		return true
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// nearestExistingAncestor walks from absPath upward until it finds an
// ancestor that exists on disk (following symlinks via os.Stat), returning
// the resolved (symlink-evaluated) form of that ancestor plus the literal
// path components below it that don't exist yet. A dangling symlink
// anywhere along the walk is reported as an error.
func nearestExistingAncestor(absPath string) (resolved string, tail []string, err error) {
	cur := absPath
	var tailParts []string
	for {
		info, statErr := os.Lstat(cur)
		if statErr == nil {
			if info.Mode()&os.ModeSymlink != 0 {
				target, evalErr := filepath.EvalSymlinks(cur)
				if evalErr != nil {
					return "", nil, fmt.Errorf("dangling symlink at %q: %w", cur, evalErr)
				}
				return target, tailParts, nil
			}
			return cur, tailParts, nil
		}
		if !os.IsNotExist(statErr) {
			return "", nil, fmt.Errorf("stat %q: %w", cur, statErr)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached filesystem root without finding anything that exists.
			return "", tailParts, nil
		}
		tailParts = append([]string{filepath.Base(cur)}, tailParts...)
		cur = parent
	}
}
