// Package targets persists the set of AI-assistant targets a user has
// registered for deployment, at ~/.plm/targets.json.
//
// Grounded on the original implementation's target/registry.rs
// TargetRegistry: a load/modify/normalize/save cycle over a JSON document
// defaulting to every known target, normalized (sorted, deduplicated) on
// every read and write so the file never drifts into an inconsistent
// order. The Rust state machine (Idle/Loaded/Modified) is flattened here
// into plain load-then-save calls; Go's lack of shared mutable state
// across calls makes the state tracking unnecessary.
package targets

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ruminaider/plm/internal/errs"
	"github.com/ruminaider/plm/internal/placement"
	"github.com/ruminaider/plm/internal/vfs"
)

type config struct {
	Targets []string `json:"targets"`
}

func defaultConfig() config {
	return config{Targets: []string{"codex", "copilot"}}
}

func normalize(cfg *config) {
	sort.Strings(cfg.Targets)
	cfg.Targets = dedup(cfg.Targets)
}

func dedup(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// AddResult distinguishes Add's two non-error outcomes.
type AddResult int

const (
	Added AddResult = iota
	AlreadyExists
)

// RemoveResult distinguishes Remove's two non-error outcomes.
type RemoveResult int

const (
	Removed RemoveResult = iota
	NotFound
)

// Registry manages the on-disk targets.json file.
type Registry struct {
	fs   vfs.FS
	path string
}

// NewRegistry returns a Registry persisting to path.
func NewRegistry(fs vfs.FS, path string) *Registry {
	return &Registry{fs: fs, path: path}
}

func (r *Registry) load() (config, error) {
	if !r.fs.Exists(r.path) {
		cfg := defaultConfig()
		normalize(&cfg)
		return cfg, nil
	}
	content, err := r.fs.ReadToString(r.path)
	if err != nil {
		return config{}, errs.New(errs.IO, "targets.load", err)
	}
	var cfg config
	if err := json.Unmarshal([]byte(content), &cfg); err != nil {
		return config{}, errs.New(errs.Parse, "targets.load", err)
	}
	normalize(&cfg)
	return cfg, nil
}

func (r *Registry) save(cfg config) error {
	normalize(&cfg)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errs.New(errs.Parse, "targets.save", err)
	}
	tmp := r.path + ".tmp"
	if err := r.fs.Write(tmp, data); err != nil {
		return errs.New(errs.IO, "targets.save", err)
	}
	if err := r.fs.Rename(tmp, r.path); err != nil {
		_ = r.fs.RemoveFile(tmp)
		return errs.New(errs.IO, "targets.save", err)
	}
	return nil
}

// List returns the registered target names, sorted.
func (r *Registry) List() ([]string, error) {
	cfg, err := r.load()
	if err != nil {
		return nil, err
	}
	return cfg.Targets, nil
}

// Resolve is List, mapped to the corresponding placement.Target
// instances. A name that no longer resolves to a known target (a
// hand-edited file) is silently skipped rather than failing the whole
// call.
func (r *Registry) Resolve() ([]placement.Target, error) {
	names, err := r.List()
	if err != nil {
		return nil, err
	}
	out := make([]placement.Target, 0, len(names))
	for _, name := range names {
		if t, ok := placement.Parse(name); ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Add registers name, which must be a known target. Adding an
// already-registered target is reported, not an error.
func (r *Registry) Add(name string) (AddResult, error) {
	if _, ok := placement.Parse(name); !ok {
		return 0, errs.New(errs.Validation, "targets.Add", fmt.Errorf("unknown target %q", name))
	}
	cfg, err := r.load()
	if err != nil {
		return 0, err
	}
	for _, t := range cfg.Targets {
		if t == name {
			return AlreadyExists, nil
		}
	}
	cfg.Targets = append(cfg.Targets, name)
	if err := r.save(cfg); err != nil {
		return 0, err
	}
	return Added, nil
}

// Remove unregisters name. Removing a name that isn't registered is
// reported, not an error.
func (r *Registry) Remove(name string) (RemoveResult, error) {
	cfg, err := r.load()
	if err != nil {
		return 0, err
	}
	kept := cfg.Targets[:0]
	found := false
	for _, t := range cfg.Targets {
		if t == name {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return NotFound, nil
	}
	cfg.Targets = kept
	if err := r.save(cfg); err != nil {
		return 0, err
	}
	return Removed, nil
}
