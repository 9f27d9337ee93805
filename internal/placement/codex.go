package placement

import (
	"path/filepath"

	"github.com/ruminaider/plm/internal/vfs"
)

const codexDotdir = ".codex"

// Codex targets a global root of ~/.codex and a project-local root of
// <project>/.codex. Skill and Agent are supported in both scopes;
// Instruction only; Command and Hook are unsupported entirely.
type Codex struct{}

func NewCodex() *Codex { return &Codex{} }

func (Codex) Name() string        { return "codex" }
func (Codex) DisplayName() string { return "Codex" }

func (Codex) Supports(kind Kind) bool {
	switch kind {
	case Skill, Agent, Instruction:
		return true
	default:
		return false
	}
}

func (c Codex) base(scope Scope, projectRoot string) string {
	return baseDir(scope, projectRoot, codexDotdir, codexDotdir)
}

// Root returns projectRoot for Project scope (Codex's Instruction placement
// writes AGENTS.md at the project root itself, outside .codex) and the
// personal .codex dotdir for Personal scope.
func (c Codex) Root(scope Scope, projectRoot string) string {
	if scope == Project {
		return projectRoot
	}
	return c.base(Personal, projectRoot)
}

func (c Codex) Placement(ctx Context) (Location, bool) {
	base := c.base(ctx.Scope, ctx.ProjectRoot)
	switch ctx.Component.Kind {
	case Skill:
		return Location{
			Path:  filepath.Join(base, "skills", ctx.Origin.Marketplace, ctx.Origin.Plugin, ctx.Component.Name),
			IsDir: true,
		}, true
	case Agent:
		return Location{
			Path: filepath.Join(base, "agents", ctx.Origin.Marketplace, ctx.Origin.Plugin, ctx.Component.Name+".agent.md"),
		}, true
	case Instruction:
		if ctx.Scope == Project {
			return Location{Path: filepath.Join(ctx.ProjectRoot, "AGENTS.md")}, true
		}
		return Location{Path: filepath.Join(base, "AGENTS.md")}, true
	default:
		return Location{}, false
	}
}

func (c Codex) ListPlaced(fs vfs.FS, kind Kind, scope Scope, projectRoot string) ([]string, error) {
	base := c.base(scope, projectRoot)
	switch kind {
	case Instruction:
		var path string
		if scope == Project {
			path = filepath.Join(projectRoot, "AGENTS.md")
		} else {
			path = filepath.Join(base, "AGENTS.md")
		}
		if fs.Exists(path) && !fs.IsDir(path) {
			return []string{"AGENTS.md"}, nil
		}
		return nil, nil
	case Skill:
		return scanThreeLevel(fs, filepath.Join(base, "skills"), func(entryPath string, isDir bool) (string, bool) {
			if !isDir {
				return "", false
			}
			if !fs.Exists(filepath.Join(entryPath, skillManifestName)) {
				return "", false
			}
			return baseName(entryPath), true
		})
	case Agent:
		return scanThreeLevel(fs, filepath.Join(base, "agents"), func(entryPath string, isDir bool) (string, bool) {
			if isDir {
				return "", false
			}
			return matchSuffix(entryPath, agentFileSuffix)
		})
	default:
		return nil, nil
	}
}

const (
	skillManifestName = "SKILL.md"
	agentFileSuffix   = ".agent.md"
)
