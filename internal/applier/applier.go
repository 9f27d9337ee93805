// Package applier executes a planner.Plan (spec.md §4.J): every
// destination is re-validated with internal/pathguard immediately before
// the matching internal/vfs operation runs, results are aggregated
// per target, and empty ancestor directories left behind by a removal are
// pruned.
//
// Grounded on the original implementation's component/deployment.rs
// per-target result aggregation and its "some targets may fail without
// aborting the whole operation" behavior.
package applier

import (
	"github.com/ruminaider/plm/internal/convert"
	"github.com/ruminaider/plm/internal/errs"
	"github.com/ruminaider/plm/internal/pathguard"
	"github.com/ruminaider/plm/internal/placement"
	"github.com/ruminaider/plm/internal/planner"
	"github.com/ruminaider/plm/internal/vfs"
)

// OpError pairs a failed operation with the error that caused it.
type OpError struct {
	Op  planner.FileOperation
	Err error
}

// TargetResult aggregates one target's outcome across every operation the
// plan assigned to it.
type TargetResult struct {
	Target    string
	Succeeded int
	Errors    []OpError
}

// OK reports whether target had at least one success and no failures.
func (r TargetResult) OK() bool { return r.Succeeded > 0 && len(r.Errors) == 0 }

// Result is Apply's full outcome.
type Result struct {
	ByTarget    map[string]*TargetResult
	Unsupported []planner.Skip
}

func (r *Result) target(name string) *TargetResult {
	if r.ByTarget == nil {
		r.ByTarget = map[string]*TargetResult{}
	}
	tr, ok := r.ByTarget[name]
	if !ok {
		tr = &TargetResult{Target: name}
		r.ByTarget[name] = tr
	}
	return tr
}

// Success reports overall success: every target that had at least one
// operation attempted succeeded in full. A plan with no operations at all
// (for example, every pair was unsupported) is a success with zero
// targets; Message distinguishes that case.
func (r Result) Success() bool {
	if len(r.ByTarget) == 0 {
		return true
	}
	for _, tr := range r.ByTarget {
		if !tr.OK() {
			return false
		}
	}
	return true
}

// Message summarizes the result for display, distinguishing "nothing ran
// because every pair was unsupported" from a genuine execution failure.
func (r Result) Message() string {
	if len(r.ByTarget) == 0 {
		if len(r.Unsupported) > 0 {
			return "no components were placed or removed: none of the selected targets support this plugin's component kinds"
		}
		return "no components were placed or removed: nothing to do"
	}
	if r.Success() {
		return "completed successfully for every target"
	}
	return "completed with errors on at least one target"
}

// Apply executes every operation in plan against fs, in order, continuing
// past a failed operation so one bad target never blocks the rest.
func Apply(fs vfs.FS, plan planner.Plan) Result {
	result := Result{Unsupported: plan.Unsupported}

	for _, op := range plan.Operations {
		tr := result.target(op.Target)
		if err := execute(fs, op); err != nil {
			tr.Errors = append(tr.Errors, OpError{Op: op, Err: err})
			continue
		}
		tr.Succeeded++

		if op.Kind == planner.RemoveFile || op.Kind == planner.RemoveDir {
			_ = placement.PruneEmptyAncestors(fs, op.Dest.Path, op.Dest.Root)
		}
	}

	return result
}

func execute(fs vfs.FS, op planner.FileOperation) error {
	scoped, err := pathguard.Scope(op.Dest.Path, op.Dest.Root)
	if err != nil {
		return err
	}

	switch op.Kind {
	case planner.CopyFile:
		if destFormat, component, ok := convertFormatFor(op); ok {
			if _, err := convert.ConvertAndWrite(fs, component, op.Source, scoped.Path, convert.ClaudeCode, destFormat); err != nil {
				return errs.New(errs.Deployment, "applier.CopyFile", err)
			}
			break
		}
		if err := fs.CopyFile(op.Source, scoped.Path); err != nil {
			return errs.New(errs.Deployment, "applier.CopyFile", err)
		}
	case planner.CopyDir:
		if err := fs.CopyDir(op.Source, scoped.Path); err != nil {
			return errs.New(errs.Deployment, "applier.CopyDir", err)
		}
	case planner.RemoveFile:
		if err := fs.RemoveFile(scoped.Path); err != nil {
			return errs.New(errs.Deployment, "applier.RemoveFile", err)
		}
	case planner.RemoveDir:
		if err := fs.RemoveDirAll(scoped.Path); err != nil {
			return errs.New(errs.Deployment, "applier.RemoveDir", err)
		}
	}
	return nil
}

// convertFormatFor reports the dialect conversion a CopyFile operation
// needs: plugins are authored in Claude Code's own Command/Agent
// frontmatter dialect (spec.md §4.G), so deploying one to a non-Claude
// Code target rewrites its frontmatter and body placeholders into that
// target's dialect rather than copying the file byte-for-byte. Skill
// (always a directory, handled by CopyDir), Instruction, and Hook carry
// no dialect of their own and are always a plain copy.
func convertFormatFor(op planner.FileOperation) (convert.Format, convert.Component, bool) {
	var component convert.Component
	switch op.Component.Kind {
	case placement.Command:
		component = convert.CommandComponent
	case placement.Agent:
		component = convert.AgentComponent
	default:
		return 0, 0, false
	}

	switch op.Target {
	case "codex":
		return convert.Codex, component, true
	case "copilot":
		return convert.Copilot, component, true
	default:
		return 0, 0, false
	}
}
