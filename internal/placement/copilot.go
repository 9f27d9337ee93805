package placement

import (
	"path/filepath"

	"github.com/ruminaider/plm/internal/vfs"
)

const (
	copilotDotdir        = ".copilot"
	copilotProjectDotdir = ".github"
	promptFileSuffix     = ".prompt.md"
)

// Copilot targets a global root of ~/.copilot and a project-local root of
// <project>/.github. Skill and Command are project-scope only; Agent is
// both scopes; Instruction is project-scope only; Hook is unsupported.
type Copilot struct{}

func NewCopilot() *Copilot { return &Copilot{} }

func (Copilot) Name() string        { return "copilot" }
func (Copilot) DisplayName() string { return "GitHub Copilot" }

func (Copilot) Supports(kind Kind) bool {
	switch kind {
	case Skill, Agent, Command, Instruction:
		return true
	default:
		return false
	}
}

func (c Copilot) base(scope Scope, projectRoot string) string {
	return baseDir(scope, projectRoot, copilotDotdir, copilotProjectDotdir)
}

// Root returns projectRoot for Project scope (Copilot's instructions file
// lives at <project>/.github/copilot-instructions.md, under .github but
// bounding by the wider project root is still correct and simpler) and the
// personal .copilot dotdir for Personal scope.
func (c Copilot) Root(scope Scope, projectRoot string) string {
	if scope == Project {
		return projectRoot
	}
	return c.base(Personal, projectRoot)
}

func (c Copilot) Placement(ctx Context) (Location, bool) {
	base := c.base(ctx.Scope, ctx.ProjectRoot)
	switch ctx.Component.Kind {
	case Skill:
		if ctx.Scope != Project {
			return Location{}, false
		}
		return Location{
			Path:  filepath.Join(base, "skills", ctx.Origin.Marketplace, ctx.Origin.Plugin, ctx.Component.Name),
			IsDir: true,
		}, true
	case Agent:
		return Location{
			Path: filepath.Join(base, "agents", ctx.Origin.Marketplace, ctx.Origin.Plugin, ctx.Component.Name+".agent.md"),
		}, true
	case Command:
		if ctx.Scope != Project {
			return Location{}, false
		}
		return Location{
			Path: filepath.Join(base, "prompts", ctx.Origin.Marketplace, ctx.Origin.Plugin, ctx.Component.Name+promptFileSuffix),
		}, true
	case Instruction:
		if ctx.Scope != Project {
			return Location{}, false
		}
		return Location{Path: filepath.Join(ctx.ProjectRoot, ".github", "copilot-instructions.md")}, true
	default:
		return Location{}, false
	}
}

func (c Copilot) ListPlaced(fs vfs.FS, kind Kind, scope Scope, projectRoot string) ([]string, error) {
	base := c.base(scope, projectRoot)
	switch kind {
	case Instruction:
		if scope != Project {
			return nil, nil
		}
		path := filepath.Join(projectRoot, ".github", "copilot-instructions.md")
		if fs.Exists(path) && !fs.IsDir(path) {
			return []string{"copilot-instructions.md"}, nil
		}
		return nil, nil
	case Skill:
		if scope != Project {
			return nil, nil
		}
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
	case Command:
		if scope != Project {
			return nil, nil
		}
		return scanThreeLevel(fs, filepath.Join(base, "prompts"), func(entryPath string, isDir bool) (string, bool) {
			if isDir {
				return "", false
			}
			return matchSuffix(entryPath, promptFileSuffix)
		})
	default:
		return nil, nil
	}
}
