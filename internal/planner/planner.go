// Package planner implements the action-to-operations mapping (spec.md
// §4.I): given an enable/disable request and the already-scanned
// component/placement facts, it produces an ordered list of low-level
// file operations. The planner does no I/O itself — every fact it needs
// (which components a plugin has, which components are currently placed)
// is gathered by the caller via internal/scanner and
// internal/placement.Target.ListPlaced, so that given identical inputs
// this package always yields identical output.
//
// Grounded on the original implementation's plan-building step in
// plugin/update.rs and target/mod.rs's enable/disable dispatch, adapted
// into a pure data-to-data mapping idiomatic for a Go package with no
// hidden filesystem access.
package planner

import (
	"sort"

	"github.com/ruminaider/plm/internal/placement"
	"github.com/ruminaider/plm/internal/repo"
)

// OpKind is the closed set of low-level file operations a plan emits.
type OpKind int

const (
	CopyFile OpKind = iota
	CopyDir
	RemoveFile
	RemoveDir
)

func (k OpKind) String() string {
	switch k {
	case CopyFile:
		return "copy_file"
	case CopyDir:
		return "copy_dir"
	case RemoveFile:
		return "remove_file"
	case RemoveDir:
		return "remove_dir"
	default:
		return "unknown"
	}
}

// ScopedPath is a destination path paired with the root it must resolve
// under. The planner computes this pairing purely from
// internal/placement's Location/Root; internal/applier is responsible for
// re-validating it with internal/pathguard immediately before any write.
type ScopedPath struct {
	Path string
	Root string
}

// FileOperation is one unit of work in a plan.
type FileOperation struct {
	Kind      OpKind
	Source    string // populated for Copy*, empty for Remove*
	Dest      ScopedPath
	Target    string // target's stable name, e.g. "codex"
	Scope     placement.Scope
	Component placement.Component
}

// Skip records a (target, component) pair a plan could not act on because
// the target does not support that component kind in that scope. Skips
// are not errors: spec.md §4.I requires these be reported as
// "unsupported" at the plan level, distinct from execution failures.
type Skip struct {
	Target    string
	Scope     placement.Scope
	Component placement.Component
}

// Plan is the planner's full output for one action.
type Plan struct {
	Operations  []FileOperation
	Unsupported []Skip
}

// SourceComponent is one of a plugin's components together with the
// on-disk path the scanner resolved it to inside the plugin's cache
// directory. IsDir mirrors placement.Location.IsDir: true only for Skill.
type SourceComponent struct {
	Component  placement.Component
	SourcePath string
	IsDir      bool
}

// EnableInput is PlanEnable's input: a plugin identity, the targets to
// enable it on (in a given scope), and its cache-resident components.
type EnableInput struct {
	Origin      repo.Origin
	Targets     []placement.Target
	Scope       placement.Scope
	ProjectRoot string
	Components  []SourceComponent
}

// PlanEnable builds one CopyFile/CopyDir operation per (target,
// component) pair the target supports, and one Skip for every pair it
// does not. Targets and Components are iterated in the order given, but
// the result is additionally stable-sorted by (target, kind, name) so
// that reordering the input slices never changes the plan.
func PlanEnable(in EnableInput) Plan {
	var plan Plan
	for _, target := range in.Targets {
		for _, sc := range in.Components {
			ctx := placement.Context{
				Component:   sc.Component,
				Origin:      in.Origin,
				Scope:       in.Scope,
				ProjectRoot: in.ProjectRoot,
			}
			loc, ok := target.Placement(ctx)
			if !ok {
				plan.Unsupported = append(plan.Unsupported, Skip{
					Target: target.Name(), Scope: in.Scope, Component: sc.Component,
				})
				continue
			}

			op := FileOperation{
				Source:    sc.SourcePath,
				Dest:      ScopedPath{Path: loc.Path, Root: target.Root(in.Scope, in.ProjectRoot)},
				Target:    target.Name(),
				Scope:     in.Scope,
				Component: sc.Component,
			}
			if loc.IsDir {
				op.Kind = CopyDir
			} else {
				op.Kind = CopyFile
			}
			plan.Operations = append(plan.Operations, op)
		}
	}

	sortOperations(plan.Operations)
	sortSkips(plan.Unsupported)
	return plan
}

// PlacedComponent is one component the caller has already confirmed is
// currently placed for a target, via Target.ListPlaced.
type PlacedComponent struct {
	Target    string
	Scope     placement.Scope
	Component placement.Component
}

// DisableInput is PlanDisable's (and PlanUninstall's) input: every
// currently-placed component for a plugin, optionally filtered to a
// subset of target names.
type DisableInput struct {
	Origin       repo.Origin
	ProjectRoot  string
	Placed       []PlacedComponent
	TargetFilter []string // empty means every target in Placed
}

// PlanDisable builds one RemoveFile/RemoveDir operation per placed
// component, restricted to TargetFilter when non-empty. It recomputes
// each component's Location via the target's own (pure) Placement
// method rather than trusting a caller-supplied path, so a plan can never
// diverge from what Placement would compute for the same inputs.
func PlanDisable(in DisableInput) Plan {
	var plan Plan
	allowed := toSet(in.TargetFilter)

	for _, p := range in.Placed {
		if len(allowed) > 0 && !allowed[p.Target] {
			continue
		}
		target, ok := placement.Parse(p.Target)
		if !ok {
			continue
		}
		loc, ok := target.Placement(placement.Context{
			Component:   p.Component,
			Origin:      in.Origin,
			Scope:       p.Scope,
			ProjectRoot: in.ProjectRoot,
		})
		if !ok {
			plan.Unsupported = append(plan.Unsupported, Skip{
				Target: p.Target, Scope: p.Scope, Component: p.Component,
			})
			continue
		}

		op := FileOperation{
			Dest:      ScopedPath{Path: loc.Path, Root: target.Root(p.Scope, in.ProjectRoot)},
			Target:    p.Target,
			Scope:     p.Scope,
			Component: p.Component,
		}
		if loc.IsDir {
			op.Kind = RemoveDir
		} else {
			op.Kind = RemoveFile
		}
		plan.Operations = append(plan.Operations, op)
	}

	sortOperations(plan.Operations)
	sortSkips(plan.Unsupported)
	return plan
}

// PlanUninstall is disable-on-every-target: it is spec.md §4.I's
// "equivalent to disable-on-all-targets" rule, expressed by simply
// omitting TargetFilter. Cache removal is not part of this plan; the
// applier issues it separately once every disable operation succeeds.
func PlanUninstall(in DisableInput) Plan {
	in.TargetFilter = nil
	return PlanDisable(in)
}

func toSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

func sortOperations(ops []FileOperation) {
	sort.SliceStable(ops, func(i, j int) bool {
		a, b := ops[i], ops[j]
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		if a.Component.Kind != b.Component.Kind {
			return a.Component.Kind < b.Component.Kind
		}
		return a.Component.Name < b.Component.Name
	})
}

func sortSkips(skips []Skip) {
	sort.SliceStable(skips, func(i, j int) bool {
		a, b := skips[i], skips[j]
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		if a.Component.Kind != b.Component.Kind {
			return a.Component.Kind < b.Component.Kind
		}
		return a.Component.Name < b.Component.Name
	})
}
