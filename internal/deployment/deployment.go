// Package deployment bridges internal/scanner's component-name lists into
// the concrete on-disk internal/planner.SourceComponent values
// PlanEnable/PlanDisable need: a plugin's plugin.json names a
// subdirectory (or file) per component kind, but the planner requires the
// exact resolved path and whether it is a directory.
//
// Grounded on the original implementation's CachedPlugin.components()
// (plugin/cached_plugin.rs), which performs the identical
// scan-then-resolve-path step as a single method; this package splits
// that into scanner.Scan (already existing) plus Resolve here so neither
// internal/scanner nor internal/planner needs to import the other.
package deployment

import (
	"path"

	"github.com/ruminaider/plm/internal/manifest"
	"github.com/ruminaider/plm/internal/placement"
	"github.com/ruminaider/plm/internal/planner"
	"github.com/ruminaider/plm/internal/scanner"
	"github.com/ruminaider/plm/internal/vfs"
)

const (
	agentSuffix    = ".agent.md"
	promptSuffix   = ".prompt.md"
	markdownSuffix = ".md"
)

// Resolve scans pluginRoot per m and resolves every discovered component
// name back to its concrete source path, producing the
// []planner.SourceComponent PlanEnable/PlanDisable consume.
func Resolve(fs vfs.FS, pluginRoot string, m manifest.Manifest) ([]planner.SourceComponent, error) {
	scanned, err := scanner.Scan(fs, pluginRoot, m)
	if err != nil {
		return nil, err
	}

	var out []planner.SourceComponent

	skillsDir := m.SkillsDir(pluginRoot)
	for _, name := range scanned.Skills {
		out = append(out, planner.SourceComponent{
			Component:  placement.Component{Kind: placement.Skill, Name: name},
			SourcePath: path.Join(skillsDir, name),
			IsDir:      true,
		})
	}

	agentsDir := m.AgentsDir(pluginRoot)
	for _, name := range scanned.Agents {
		out = append(out, planner.SourceComponent{
			Component:  placement.Component{Kind: placement.Agent, Name: name},
			SourcePath: resolveNamedFile(fs, agentsDir, name, agentSuffix),
			IsDir:      false,
		})
	}

	commandsDir := m.CommandsDir(pluginRoot)
	for _, name := range scanned.Commands {
		out = append(out, planner.SourceComponent{
			Component:  placement.Component{Kind: placement.Command, Name: name},
			SourcePath: resolveNamedFile(fs, commandsDir, name, promptSuffix),
			IsDir:      false,
		})
	}

	for _, name := range scanned.Instructions {
		out = append(out, planner.SourceComponent{
			Component:  placement.Component{Kind: placement.Instruction, Name: name},
			SourcePath: resolveInstructionPath(fs, m, pluginRoot, name),
			IsDir:      false,
		})
	}

	hooksDir := m.HooksDir(pluginRoot)
	for _, name := range scanned.Hooks {
		p, ok := resolveHookPath(fs, hooksDir, name)
		if !ok {
			continue
		}
		out = append(out, planner.SourceComponent{
			Component:  placement.Component{Kind: placement.Hook, Name: name},
			SourcePath: p,
			IsDir:      false,
		})
	}

	return out, nil
}

// resolveNamedFile mirrors CachedPlugin::resolve_agent_path /
// resolve_command_path: a single-file root is used as-is (scanner already
// names it by stem), else the kind-specific suffix wins over the generic
// ".md" fallback.
func resolveNamedFile(fs vfs.FS, dir, name, kindSuffix string) string {
	if fs.Exists(dir) && !fs.IsDir(dir) {
		return dir
	}
	withSuffix := path.Join(dir, name+kindSuffix)
	if fs.Exists(withSuffix) {
		return withSuffix
	}
	return path.Join(dir, name+markdownSuffix)
}

// resolveInstructionPath mirrors CachedPlugin::resolve_instruction_path's
// three-way rule.
func resolveInstructionPath(fs vfs.FS, m manifest.Manifest, pluginRoot, name string) string {
	if name == "AGENTS" {
		return path.Join(pluginRoot, "AGENTS.md")
	}
	if m.HasInstructions() {
		p := m.InstructionsPath(pluginRoot)
		if fs.Exists(p) && !fs.IsDir(p) {
			return p
		}
		if fs.Exists(p) && fs.IsDir(p) {
			return path.Join(p, name+markdownSuffix)
		}
	}
	return path.Join(m.InstructionsDir(pluginRoot), name+markdownSuffix)
}

// resolveHookPath mirrors CachedPlugin::resolve_hook_path: scan hooksDir
// for the file whose stem matches name.
func resolveHookPath(fs vfs.FS, hooksDir, name string) (string, bool) {
	if !fs.Exists(hooksDir) || !fs.IsDir(hooksDir) {
		return "", false
	}
	entries, err := fs.ReadDir(hooksDir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsFile() {
			continue
		}
		base := path.Base(e.Path)
		stem := base
		if idx := lastDot(base); idx > 0 {
			stem = base[:idx]
		}
		if stem == name {
			return e.Path, true
		}
	}
	return "", false
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
