// Package placement implements the target placement engine (spec.md
// §4.F): a pure (component, origin, scope, project root) -> location
// mapping per target, plus the inverse scan of already-placed components.
package placement

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ruminaider/plm/internal/repo"
	"github.com/ruminaider/plm/internal/vfs"
)

// Kind is the closed component-kind enumeration (spec.md §3).
type Kind int

const (
	Skill Kind = iota
	Agent
	Command
	Instruction
	Hook
)

func (k Kind) String() string {
	switch k {
	case Skill:
		return "skill"
	case Agent:
		return "agent"
	case Command:
		return "command"
	case Instruction:
		return "instruction"
	case Hook:
		return "hook"
	default:
		return "unknown"
	}
}

// Scope is Personal (user-global) or Project (project-root-local).
type Scope int

const (
	Personal Scope = iota
	Project
)

func (s Scope) String() string {
	if s == Project {
		return "project"
	}
	return "personal"
}

// Component identifies a single named component of a given kind.
type Component struct {
	Kind Kind
	Name string
}

// Context is the full input to a placement decision.
type Context struct {
	Component   Component
	Origin      repo.Origin
	Scope       Scope
	ProjectRoot string
}

// Location is a placement decision: a path and whether that path is a
// directory (Skill) or a file (everything else).
type Location struct {
	Path  string
	IsDir bool
}

// Target is one supported AI assistant's on-disk layout.
type Target interface {
	// Name is the stable machine identifier ("codex", "copilot").
	Name() string
	// DisplayName is the human-readable name.
	DisplayName() string
	// Supports reports whether this target handles the given kind at all.
	Supports(kind Kind) bool
	// Placement returns the location for ctx, or (Location{}, false) if
	// the (kind, scope) combination is unsupported.
	Placement(ctx Context) (Location, bool)
	// Root returns this target's write boundary for scope: its personal
	// dotdir under the user's home, or projectRoot itself for Project
	// scope. Every Location this target produces for scope falls under
	// Root; callers use it to path-guard a placement destination.
	Root(scope Scope, projectRoot string) string
	// ListPlaced returns the fully-qualified names of components of kind
	// currently present under scope within projectRoot.
	ListPlaced(fs vfs.FS, kind Kind, scope Scope, projectRoot string) ([]string, error)
}

// All returns every concrete target this repo ships.
func All() []Target {
	return []Target{NewCodex(), NewCopilot()}
}

// Parse resolves a target by its stable name.
func Parse(name string) (Target, bool) {
	for _, t := range All() {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

func userGlobalBase(dotdir string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, dotdir)
}

// baseDir resolves a target's root for the given scope: the user-global
// dotdir for Personal, or <projectRoot>/<projectDotdir> for Project.
func baseDir(scope Scope, projectRoot, dotdir, projectDotdir string) string {
	if scope == Personal {
		return userGlobalBase(dotdir)
	}
	return filepath.Join(projectRoot, projectDotdir)
}

// fqName builds the "<marketplace>/<plugin>/<component>" fully-qualified
// name used for plugin-namespaced components (spec.md §3).
func fqName(origin repo.Origin, name string) string {
	return origin.Marketplace + "/" + origin.Plugin + "/" + name
}

// scanThreeLevel walks <base>/<marketplace>/<plugin>/<entry> and returns
// fully-qualified names, applying accept to decide whether an entry counts
// as a placed component of the expected shape (grounded on the original
// implementation's target/scanner.rs 3-level walk).
func scanThreeLevel(fs vfs.FS, base string, accept func(entryPath string, isDir bool) (name string, ok bool)) ([]string, error) {
	if !fs.Exists(base) || !fs.IsDir(base) {
		return nil, nil
	}
	marketplaces, err := fs.ReadDir(base)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, mkt := range marketplaces {
		if !mkt.IsDir() {
			continue
		}
		plugins, err := fs.ReadDir(mkt.Path)
		if err != nil {
			return nil, err
		}
		for _, plugin := range plugins {
			if !plugin.IsDir() {
				continue
			}
			entries, err := fs.ReadDir(plugin.Path)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				name, ok := accept(e.Path, e.IsDir())
				if !ok {
					continue
				}
				out = append(out, baseName(mkt.Path)+"/"+baseName(plugin.Path)+"/"+name)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// matchSuffix accepts entryPath as a placed component if its filename ends
// with suffix, returning the name with the suffix stripped.
func matchSuffix(entryPath, suffix string) (string, bool) {
	name := baseName(entryPath)
	if !strings.HasSuffix(name, suffix) {
		return "", false
	}
	return strings.TrimSuffix(name, suffix), true
}

func baseName(p string) string {
	p = strings.TrimRight(p, "/")
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}
