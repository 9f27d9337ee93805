// Package syncdiff implements the sync differ (spec.md §4.L): comparing
// what two targets have placed for the same project and classifying
// every component into to-create/to-update/to-delete/skipped/unsupported,
// either as a dry-run report or as an executed copy/remove pass.
//
// Grounded on the original implementation's sync.rs (sync_with_fs's
// HashMap-based diff, needs_update's mtime-then-hash comparison,
// execute_sync's create/update/delete passes where one failure is
// recorded without aborting the rest) and sync/source.rs +
// sync/destination.rs (parse_component_name's "marketplace/plugin/name"
// identity format with three literal instruction-file exceptions). The
// original's separate SyncSource/SyncDestination types are merged here
// into one Endpoint, since their behavior differs only in Destination
// additionally exposing Supports — a distinction Go's single shared type
// with one extra method captures without duplicating the placed-scan and
// path-resolution logic twice.
package syncdiff

import (
	"fmt"
	"sort"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/ruminaider/plm/internal/errs"
	"github.com/ruminaider/plm/internal/placement"
	"github.com/ruminaider/plm/internal/repo"
	"github.com/ruminaider/plm/internal/vfs"
)

// Identity uniquely addresses a placed component across both endpoints of
// a sync.
type Identity struct {
	Kind  placement.Kind
	Name  string
	Scope placement.Scope
}

// Placed is a component one endpoint has at a concrete path.
type Placed struct {
	Identity Identity
	Path     string
}

// Options restricts a sync's scope, mirroring spec.md §4.L's
// SyncOptions{dry_run, component_type?, scope?}.
type Options struct {
	DryRun bool
	Kind   *placement.Kind
	Scope  *placement.Scope
}

func (o Options) kinds() []placement.Kind {
	if o.Kind != nil {
		return []placement.Kind{*o.Kind}
	}
	return []placement.Kind{placement.Skill, placement.Agent, placement.Command, placement.Instruction, placement.Hook}
}

func (o Options) scopes() []placement.Scope {
	if o.Scope != nil {
		return []placement.Scope{*o.Scope}
	}
	return []placement.Scope{placement.Personal, placement.Project}
}

// Endpoint is one side of a sync: a target and the project root its
// scoped placements resolve under.
type Endpoint struct {
	Target      placement.Target
	ProjectRoot string
}

// NewEndpoint returns an Endpoint for target rooted at projectRoot.
func NewEndpoint(target placement.Target, projectRoot string) *Endpoint {
	return &Endpoint{Target: target, ProjectRoot: projectRoot}
}

// literalInstructionNames are ListPlaced's Instruction-kind results that
// are not plugin-namespaced "marketplace/plugin/name" triples but a
// single well-known filename.
var literalInstructionNames = map[string]bool{
	"AGENTS.md":               true,
	"copilot-instructions.md": true,
	"GEMINI.md":               true,
}

// parseComponentName splits a ListPlaced name into its origin and bare
// component name, special-casing the literal per-target instruction
// filenames that carry no marketplace/plugin prefix.
func parseComponentName(name string) (repo.Origin, string, error) {
	if literalInstructionNames[name] {
		return repo.Origin{}, name, nil
	}

	parts := splitThree(name)
	if parts == nil {
		return repo.Origin{}, "", errs.New(errs.Validation, "syncdiff.parseComponentName",
			fmt.Errorf("invalid component name %q: expected \"marketplace/plugin/component\"", name))
	}
	return repo.Origin{Marketplace: parts[0], Plugin: parts[1]}, parts[2], nil
}

func splitThree(name string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(name); i++ {
		if name[i] == '/' {
			parts = append(parts, name[start:i])
			start = i + 1
		}
	}
	parts = append(parts, name[start:])
	if len(parts) != 3 {
		return nil
	}
	return parts
}

// PlacedComponents scans every (kind, scope) pair options selects and
// returns every placed component, erroring on a duplicate identity
// within this one endpoint.
func (e *Endpoint) PlacedComponents(fs vfs.FS, opts Options) ([]Placed, error) {
	seen := map[Identity]bool{}
	var out []Placed

	for _, kind := range opts.kinds() {
		if !e.Target.Supports(kind) {
			continue
		}
		for _, scope := range opts.scopes() {
			names, err := e.Target.ListPlaced(fs, kind, scope, e.ProjectRoot)
			if err != nil {
				return nil, err
			}
			for _, name := range names {
				identity := Identity{Kind: kind, Name: name, Scope: scope}
				if seen[identity] {
					return nil, errs.New(errs.Validation, "syncdiff.PlacedComponents",
						fmt.Errorf("duplicate component identity: %+v", identity))
				}
				seen[identity] = true

				path, ok, err := e.resolve(identity)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				out = append(out, Placed{Identity: identity, Path: path})
			}
		}
	}
	return out, nil
}

// Supports reports whether this endpoint's target can hold identity at
// all (the (kind, scope) combination resolves to a location for at least
// one representative component name).
func (e *Endpoint) Supports(identity Identity) bool {
	_, ok, err := e.resolve(Identity{Kind: identity.Kind, Name: probeNameFor(identity), Scope: identity.Scope})
	return err == nil && ok
}

// probeNameFor returns a syntactically valid ListPlaced-style name for
// identity's kind, usable to test (kind, scope) support without
// depending on a real placed component existing.
func probeNameFor(identity Identity) string {
	if identity.Kind == placement.Instruction && literalInstructionNames[identity.Name] {
		return identity.Name
	}
	return "probe-marketplace/probe-plugin/probe"
}

// PathFor resolves identity's concrete path under this endpoint, independent of
// whether anything is actually placed there yet — used to compute a
// create/update destination.
func (e *Endpoint) PathFor(identity Identity) (string, bool, error) {
	return e.resolve(identity)
}

func (e *Endpoint) resolve(identity Identity) (string, bool, error) {
	origin, componentName, err := parseComponentName(identity.Name)
	if err != nil {
		return "", false, err
	}
	loc, ok := e.Target.Placement(placement.Context{
		Component:   placement.Component{Kind: identity.Kind, Name: componentName},
		Origin:      origin,
		Scope:       identity.Scope,
		ProjectRoot: e.ProjectRoot,
	})
	if !ok {
		return "", false, nil
	}
	return loc.Path, true, nil
}

// Result is a sync's full classification (dry-run) or outcome (executed).
type Result struct {
	ToCreate    []Placed
	ToUpdate    []Placed
	ToDelete    []Placed
	Skipped     []Placed
	Unsupported []Placed

	Created []Placed
	Updated []Placed
	Deleted []Placed
	Failed  []Failure
}

// Failure pairs a component and the action attempted on it with why it
// failed.
type Failure struct {
	Component Placed
	Action    string
	Reason    string
}

// Sync computes the diff between source and dest and, unless
// opts.DryRun, executes it: creates/updates copy source's component to
// dest's resolved path, deletes remove dest's component. One component's
// failure is recorded and does not abort the rest.
func Sync(fs vfs.FS, source, dest *Endpoint, opts Options) (Result, error) {
	srcComponents, err := source.PlacedComponents(fs, opts)
	if err != nil {
		return Result{}, err
	}
	destComponents, err := dest.PlacedComponents(fs, opts)
	if err != nil {
		return Result{}, err
	}

	srcByIdentity := map[Identity]Placed{}
	for _, c := range srcComponents {
		srcByIdentity[c.Identity] = c
	}
	destByIdentity := map[Identity]Placed{}
	for _, c := range destComponents {
		destByIdentity[c.Identity] = c
	}

	var result Result
	for _, src := range srcComponents {
		if !dest.Supports(src.Identity) {
			result.Unsupported = append(result.Unsupported, src)
			continue
		}
		destComponent, ok := destByIdentity[src.Identity]
		if !ok {
			result.ToCreate = append(result.ToCreate, src)
			continue
		}
		changed, err := needsUpdate(fs, src.Path, destComponent.Path)
		if err != nil {
			return Result{}, err
		}
		if changed {
			result.ToUpdate = append(result.ToUpdate, src)
		} else {
			result.Skipped = append(result.Skipped, src)
		}
	}

	for _, dst := range destComponents {
		if _, ok := srcByIdentity[dst.Identity]; !ok {
			result.ToDelete = append(result.ToDelete, dst)
		}
	}

	sortPlaced(result.ToCreate)
	sortPlaced(result.ToUpdate)
	sortPlaced(result.ToDelete)
	sortPlaced(result.Skipped)
	sortPlaced(result.Unsupported)

	if opts.DryRun {
		return result, nil
	}

	return execute(fs, source, dest, result)
}

// needsUpdate reports whether src must be (re)copied to dest: either
// path missing means a fresh copy is needed; otherwise mtime is checked
// first (cheap), falling back to a content hash comparison since an
// older-or-equal mtime does not guarantee identical content.
func needsUpdate(fs vfs.FS, srcPath, destPath string) (bool, error) {
	if !fs.Exists(srcPath) || !fs.Exists(destPath) {
		return true, nil
	}
	srcMtime, err := fs.Mtime(srcPath)
	if err != nil {
		return false, err
	}
	destMtime, err := fs.Mtime(destPath)
	if err != nil {
		return false, err
	}
	if srcMtime.After(destMtime) {
		return true, nil
	}
	srcHash, err := fs.ContentHash(srcPath)
	if err != nil {
		return false, err
	}
	destHash, err := fs.ContentHash(destPath)
	if err != nil {
		return false, err
	}
	return srcHash != destHash, nil
}

func execute(fs vfs.FS, source, dest *Endpoint, plan Result) (Result, error) {
	result := Result{Unsupported: plan.Unsupported, Skipped: plan.Skipped}

	for _, c := range plan.ToCreate {
		if err := copyComponent(fs, source, dest, c); err != nil {
			result.Failed = append(result.Failed, Failure{Component: c, Action: "create", Reason: err.Error()})
			continue
		}
		result.Created = append(result.Created, c)
	}

	for _, c := range plan.ToUpdate {
		if err := copyComponent(fs, source, dest, c); err != nil {
			result.Failed = append(result.Failed, Failure{Component: c, Action: "update", Reason: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, c)
	}

	for _, c := range plan.ToDelete {
		if fs.Exists(c.Path) {
			if err := fs.Remove(c.Path); err != nil {
				result.Failed = append(result.Failed, Failure{Component: c, Action: "delete", Reason: err.Error()})
				continue
			}
		}
		result.Deleted = append(result.Deleted, c)
	}

	return result, nil
}

func copyComponent(fs vfs.FS, source, dest *Endpoint, c Placed) error {
	destPath, ok, err := dest.PathFor(c.Identity)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("cannot resolve destination path for %s on %s", c.Identity.Name, dest.Target.Name())
	}
	if fs.IsDir(c.Path) {
		return fs.CopyDir(c.Path, destPath)
	}
	return fs.CopyFile(c.Path, destPath)
}

func sortPlaced(components []Placed) {
	sort.Slice(components, func(i, j int) bool {
		a, b := components[i].Identity, components[j].Identity
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Scope != b.Scope {
			return a.Scope < b.Scope
		}
		return a.Name < b.Name
	})
}

// UnifiedDiff renders a unified diff between a to-update component's
// current source and destination content, for dry-run reporting.
func UnifiedDiff(path, oldContent, newContent string) string {
	edits := myers.ComputeEdits(span.URIFromPath(path), oldContent, newContent)
	return fmt.Sprint(gotextdiff.ToUnified(path, path, oldContent, edits))
}
