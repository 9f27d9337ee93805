// Package scanner discovers component names inside a cached plugin
// directory per spec.md §4.D, honoring manifest subdirectory overrides.
package scanner

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ruminaider/plm/internal/manifest"
	"github.com/ruminaider/plm/internal/vfs"
)

const (
	skillManifestFile = "SKILL.md"
	agentSuffix       = ".agent.md"
	promptSuffix      = ".prompt.md"
	markdownSuffix    = ".md"
)

// Result carries the five component-kind name lists a scan over a plugin
// root produces. Read-dir order is unspecified by the filesystem
// abstraction, so every list here is sorted for caller-comparability.
type Result struct {
	Skills       []string
	Agents       []string
	Commands     []string
	Instructions []string
	Hooks        []string
}

// Scan walks pluginRoot according to manifest m and returns the five
// component-kind name lists. Non-existent roots yield empty lists, not
// errors; file contents are never parsed.
func Scan(fs vfs.FS, pluginRoot string, m manifest.Manifest) (Result, error) {
	skills, err := scanSkills(fs, m.SkillsDir(pluginRoot))
	if err != nil {
		return Result{}, err
	}
	agents, err := scanAgentsOrCommands(fs, m.AgentsDir(pluginRoot), agentSuffix)
	if err != nil {
		return Result{}, err
	}
	commands, err := scanAgentsOrCommands(fs, m.CommandsDir(pluginRoot), promptSuffix)
	if err != nil {
		return Result{}, err
	}
	instructions, err := scanInstructions(fs, m, pluginRoot)
	if err != nil {
		return Result{}, err
	}
	hooks, err := scanHooks(fs, m.HooksDir(pluginRoot))
	if err != nil {
		return Result{}, err
	}
	return Result{
		Skills:       skills,
		Agents:       agents,
		Commands:     commands,
		Instructions: instructions,
		Hooks:        hooks,
	}, nil
}

// scanSkills returns direct subdirectories of root that contain a SKILL.md.
func scanSkills(fs vfs.FS, root string) ([]string, error) {
	if !fs.Exists(root) || !fs.IsDir(root) {
		return nil, nil
	}
	entries, err := fs.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := baseName(e.Path)
		if fs.Exists(joinPath(e.Path, skillManifestFile)) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// scanAgentsOrCommands handles both Agent and Command rules: if root is
// itself a file, one entry named after its stem; else files directly in
// root matching "*<kindSuffix>" (suffix stripped) or "*.md" (suffix
// stripped), with the kind-specific suffix taking precedence over the
// generic ".md" match for the same base name.
func scanAgentsOrCommands(fs vfs.FS, root string, kindSuffix string) ([]string, error) {
	if !fs.Exists(root) {
		return nil, nil
	}
	if !fs.IsDir(root) {
		return []string{stemOf(baseName(root))}, nil
	}
	entries, err := fs.ReadDir(root)
	if err != nil {
		return nil, err
	}

	byBase := map[string]string{} // base name (without any suffix) -> matched suffix
	for _, e := range entries {
		if !e.IsFile() {
			continue
		}
		name := baseName(e.Path)
		if ok, err := doublestar.Match("*"+kindSuffix, name); err == nil && ok {
			base := strings.TrimSuffix(name, kindSuffix)
			byBase[base] = kindSuffix
			continue
		}
		if ok, err := doublestar.Match("*"+markdownSuffix, name); err == nil && ok {
			base := strings.TrimSuffix(name, markdownSuffix)
			if _, hasKindMatch := byBase[base]; !hasKindMatch {
				byBase[base] = markdownSuffix
			}
		}
	}
	var names []string
	for base := range byBase {
		names = append(names, base)
	}
	sort.Strings(names)
	return names, nil
}

// scanInstructions implements §4.D's three-way Instruction rule: explicit
// file override, explicit directory override, or the default directory
// plus a synthetic "AGENTS" entry when <plugin>/AGENTS.md exists.
func scanInstructions(fs vfs.FS, m manifest.Manifest, pluginRoot string) ([]string, error) {
	if m.HasInstructions() {
		p := m.InstructionsPath(pluginRoot)
		if fs.Exists(p) && !fs.IsDir(p) {
			return []string{stemOf(baseName(p))}, nil
		}
		dir := m.InstructionsDir(pluginRoot)
		if fs.Exists(dir) && fs.IsDir(dir) {
			return listMarkdownStems(fs, dir)
		}
		return nil, nil
	}

	names, err := listMarkdownStems(fs, m.InstructionsDir(pluginRoot))
	if err != nil {
		return nil, err
	}
	if fs.Exists(joinPath(pluginRoot, "AGENTS.md")) {
		names = append(names, "AGENTS")
	}
	sort.Strings(names)
	return names, nil
}

func listMarkdownStems(fs vfs.FS, dir string) ([]string, error) {
	if !fs.Exists(dir) || !fs.IsDir(dir) {
		return nil, nil
	}
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsFile() {
			continue
		}
		name := baseName(e.Path)
		if ok, _ := doublestar.Match("*"+markdownSuffix, name); ok {
			names = append(names, strings.TrimSuffix(name, markdownSuffix))
		}
	}
	sort.Strings(names)
	return names, nil
}

// scanHooks returns every file in root, named by its filename with the
// final extension stripped (no extension -> whole filename).
func scanHooks(fs vfs.FS, root string) ([]string, error) {
	if !fs.Exists(root) || !fs.IsDir(root) {
		return nil, nil
	}
	entries, err := fs.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsFile() {
			continue
		}
		names = append(names, stemOf(baseName(e.Path)))
	}
	sort.Strings(names)
	return names, nil
}

func baseName(p string) string {
	p = strings.TrimRight(p, "/")
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

func joinPath(a, b string) string { return strings.TrimRight(a, "/") + "/" + b }

// stemOf strips the final extension, if any.
func stemOf(name string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return name[:idx]
	}
	return name
}
