// Package manifest decodes and resolves a plugin's plugin.json (spec.md §4.C).
package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/ruminaider/plm/internal/errs"
)

// Default per-kind subdirectory names (or file, for Instruction), used when
// the manifest names no override.
const (
	DefaultSkillsDir       = "skills"
	DefaultAgentsDir       = "agents"
	DefaultCommandsDir     = "commands"
	DefaultInstructionsDir = "instructions"
	DefaultInstructionFile = "instructions.md"
	DefaultHooksDir        = "hooks"
)

// Author is the optional author object in plugin.json.
type Author struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Manifest is the typed view of a plugin's plugin.json. Required: Name,
// Version. Everything else is optional, including per-kind subdirectory
// overrides. Manifests are upstream-owned: the system never rewrites
// plugin.json (spec.md §3 "Manifest immutability").
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	Author      *Author  `json:"author,omitempty"`
	Homepage    string   `json:"homepage,omitempty"`
	Repository  string   `json:"repository,omitempty"`
	License     string   `json:"license,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`

	Skills       string `json:"skills,omitempty"`
	Agents       string `json:"agents,omitempty"`
	Commands     string `json:"commands,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	Hooks        string `json:"hooks,omitempty"`

	// InstalledAt is a legacy field some upstream manifests still carry;
	// the sidecar is now authoritative (internal/metadata), but readers
	// fall back to this when the sidecar lacks the field.
	InstalledAt string `json:"installedAt,omitempty"`
}

// Parse decodes plugin.json content. Name and Version are required.
func Parse(content []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(content, &m); err != nil {
		return Manifest{}, errs.New(errs.Parse, "manifest.Parse", fmt.Errorf("decoding plugin.json: %w", err))
	}
	if m.Name == "" || m.Version == "" {
		return Manifest{}, errs.New(errs.InvalidManifest, "manifest.Parse",
			fmt.Errorf("plugin.json must declare both name and version"))
	}
	return m, nil
}

func (m Manifest) HasSkills() bool       { return m.Skills != "" }
func (m Manifest) HasAgents() bool       { return m.Agents != "" }
func (m Manifest) HasCommands() bool     { return m.Commands != "" }
func (m Manifest) HasInstructions() bool { return m.Instructions != "" }
func (m Manifest) HasHooks() bool        { return m.Hooks != "" }

func joinOr(base, override, fallback string) string {
	if override != "" {
		return filepath.Join(base, override)
	}
	return filepath.Join(base, fallback)
}

// SkillsDir resolves the directory skills are scanned under.
func (m Manifest) SkillsDir(base string) string { return joinOr(base, m.Skills, DefaultSkillsDir) }

// AgentsDir resolves the directory (or file) agents are scanned under.
func (m Manifest) AgentsDir(base string) string { return joinOr(base, m.Agents, DefaultAgentsDir) }

// CommandsDir resolves the directory commands are scanned under.
func (m Manifest) CommandsDir(base string) string {
	return joinOr(base, m.Commands, DefaultCommandsDir)
}

// InstructionsPath resolves the single-file instructions location: the
// manifest's instructions override when set, else DefaultInstructionFile.
func (m Manifest) InstructionsPath(base string) string {
	return joinOr(base, m.Instructions, DefaultInstructionFile)
}

// InstructionsDir resolves the instructions directory: the manifest's
// instructions override when set, else DefaultInstructionsDir.
func (m Manifest) InstructionsDir(base string) string {
	return joinOr(base, m.Instructions, DefaultInstructionsDir)
}

// HooksDir resolves the directory hooks are scanned under.
func (m Manifest) HooksDir(base string) string { return joinOr(base, m.Hooks, DefaultHooksDir) }
