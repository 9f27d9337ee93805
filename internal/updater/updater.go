// Package updater implements the update orchestrator (spec.md §4.K): for
// a direct-GitHub-installed plugin, check whether the repository has
// moved past the commit recorded in its sidecar and, if so, back up its
// cache entry, download and extract the new archive, redeploy it to
// every target it was previously enabled on, and record the new git
// ref/commit — rolling back the cache on any failure before the
// replacement lands.
//
// Grounded on the original implementation's plugin/update.rs:
// update_plugin (single-plugin path), update_all_plugins plus
// check_updates_batch (batch path, one shared host client, a plugin
// whose repository can't be resolved is silently skipped rather than
// reported as a failure), and do_update's
// backup/download/atomic_update/redeploy/restore-on-failure sequence.
// Only direct-install plugins whose repository can be determined (a
// recorded source repository or an owner--name plugin name, this port's
// substitute for the original's PluginMeta::is_github()) are ever
// updated: Update reports any other direct-install plugin Skipped, and
// UpdateAll leaves marketplace-installed plugins out of the batch.
package updater

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ruminaider/plm/internal/applier"
	"github.com/ruminaider/plm/internal/cache"
	"github.com/ruminaider/plm/internal/deployment"
	"github.com/ruminaider/plm/internal/errs"
	"github.com/ruminaider/plm/internal/host"
	"github.com/ruminaider/plm/internal/logging"
	"github.com/ruminaider/plm/internal/metadata"
	"github.com/ruminaider/plm/internal/placement"
	"github.com/ruminaider/plm/internal/planner"
	"github.com/ruminaider/plm/internal/repo"
	"github.com/ruminaider/plm/internal/vfs"
)

// Status is one plugin's update outcome.
type Status int

const (
	Updated Status = iota
	AlreadyUpToDate
	Failed
	Skipped
)

func (s Status) String() string {
	switch s {
	case Updated:
		return "updated"
	case AlreadyUpToDate:
		return "already_up_to_date"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result is one plugin's update attempt, mirroring the original's
// UpdateResult (marketplace is always the literal "github": update only
// ever targets direct repository installs).
type Result struct {
	PluginName      string
	Marketplace     string
	Status          Status
	Error           string
	FromSHA         string
	ToSHA           string
	DeployedTargets []string
	FailedTargets   []string
}

func updatedResult(name, fromSHA, toSHA string, deployed, failed []string) Result {
	return Result{PluginName: name, Marketplace: "github", Status: Updated, FromSHA: fromSHA, ToSHA: toSHA, DeployedTargets: deployed, FailedTargets: failed}
}

func upToDateResult(name string) Result {
	return Result{PluginName: name, Marketplace: "github", Status: AlreadyUpToDate}
}

func failedResult(name, reason string) Result {
	return Result{PluginName: name, Marketplace: "github", Status: Failed, Error: reason}
}

func skippedResult(name, reason string) Result {
	return Result{PluginName: name, Marketplace: "github", Status: Skipped, Error: reason}
}

// Updater orchestrates plugin updates against a cache root and a
// project's deployed targets.
type Updater struct {
	fs          vfs.FS
	cache       *cache.Cache
	projectRoot string
	// NewClient builds the host client used for a batch of update
	// operations. Exposed so tests can substitute a fake; defaults to a
	// GitHubClient resolving a token from the environment/gh CLI.
	NewClient func() host.Client
}

// New returns an Updater rooted at the given cache and project directory.
func New(fs vfs.FS, cacheRoot, projectRoot string) *Updater {
	return &Updater{
		fs:          fs,
		cache:       cache.New(fs, cacheRoot),
		projectRoot: projectRoot,
		NewClient:   func() host.Client { return host.NewGitHubClient("") },
	}
}

// restoreRepo resolves the repository to check for updates: the
// sidecar's recorded source repo, falling back to splitting pluginName
// on "--" (the "owner--repo" slug repo.FromGitHub assigns direct
// installs), matching the original's restore_repo.
func restoreRepo(sidecar metadata.Sidecar, pluginName string) (repo.Repo, error) {
	if sidecar.SourceRepo != "" {
		owner, name, ok := strings.Cut(sidecar.SourceRepo, "/")
		if !ok || owner == "" || name == "" {
			return repo.Repo{}, errs.New(errs.InvalidRepoFormat, "updater.restoreRepo",
				fmt.Errorf("sidecar sourceRepo %q is not in owner/name form", sidecar.SourceRepo))
		}
		return repo.Repo{Owner: owner, Name: name, GitRef: sidecar.GitRef}, nil
	}

	parts := strings.Split(pluginName, "--")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return repo.Repo{}, errs.New(errs.InvalidRepoFormat, "updater.restoreRepo",
			fmt.Errorf("cannot determine repository from plugin name %q", pluginName))
	}
	return repo.Repo{Owner: parts[0], Name: parts[1], GitRef: sidecar.GitRef}, nil
}

// isGitHubManaged reports whether a plugin's sidecar carries enough
// provenance to be update-checked: this port's equivalent of the
// original's PluginMeta::is_github().
func isGitHubManaged(sidecar metadata.Sidecar, pluginName string) bool {
	if sidecar.SourceRepo != "" {
		return true
	}
	owner, name, ok := strings.Cut(pluginName, "--")
	return ok && owner != "" && name != ""
}

// Update checks a single direct-GitHub-installed plugin for an update and
// applies it. targetFilter, if non-empty, restricts redeployment to that
// one target name.
func (u *Updater) Update(ctx context.Context, pluginName, targetFilter string) Result {
	if !u.cache.IsCached("", pluginName) {
		return failedResult(pluginName, fmt.Sprintf("plugin %q not found in cache", pluginName))
	}

	sidecar, _, err := metadata.Load(u.fs, u.cache.PluginPath("", pluginName))
	if err != nil {
		sidecar = metadata.Sidecar{}
	}

	if !isGitHubManaged(sidecar, pluginName) {
		return skippedResult(pluginName, "not a GitHub plugin")
	}

	r, err := restoreRepo(sidecar, pluginName)
	if err != nil {
		return failedResult(pluginName, err.Error())
	}
	gitRef := r.RefOrDefault()
	currentSHA := sidecar.CommitSha

	client := u.NewClient()
	var latestSHA string
	if err := host.WithRetry(func() error {
		sha, err := client.GetCommitSHA(ctx, r, gitRef)
		if err != nil {
			return err
		}
		latestSHA = sha
		return nil
	}); err != nil {
		return failedResult(pluginName, fmt.Sprintf("failed to resolve latest commit: %v", err))
	}

	if currentSHA != "" && currentSHA == latestSHA {
		return upToDateResult(pluginName)
	}

	return u.doUpdate(ctx, client, pluginName, r, gitRef, currentSHA, latestSHA, sidecar, targetFilter)
}

func (u *Updater) doUpdate(ctx context.Context, client host.Client, pluginName string, r repo.Repo, gitRef, currentSHA, latestSHA string, sidecar metadata.Sidecar, targetFilter string) Result {
	if err := u.cache.Backup("", pluginName); err != nil {
		return failedResult(pluginName, fmt.Sprintf("failed to back up cache entry: %v", err))
	}

	var archive []byte
	if err := host.WithRetry(func() error {
		a, err := client.DownloadArchive(ctx, r)
		if err != nil {
			return err
		}
		archive = a
		return nil
	}); err != nil {
		reason := fmt.Sprintf("failed to download update: %v", err)
		if restoreErr := u.cache.Restore("", pluginName); restoreErr != nil {
			logging.L().Error("failed to restore cache entry after a failed update download",
				zap.String("plugin", pluginName), zap.Error(restoreErr))
			reason = fmt.Sprintf("%s (cache restore also failed: %v; cache entry for %s may be corrupt)", reason, restoreErr, pluginName)
		}
		return failedResult(pluginName, reason)
	}

	if _, err := u.cache.AtomicUpdate("", pluginName, archive); err != nil {
		reason := fmt.Sprintf("failed to extract update: %v", err)
		if restoreErr := u.cache.Restore("", pluginName); restoreErr != nil {
			logging.L().Error("failed to restore cache entry after a failed update extraction",
				zap.String("plugin", pluginName), zap.Error(restoreErr))
			reason = fmt.Sprintf("%s (cache restore also failed: %v; cache entry for %s may be corrupt)", reason, restoreErr, pluginName)
		}
		return failedResult(pluginName, reason)
	}

	enabled := sidecar.EnabledTargets()
	if targetFilter != "" {
		filtered := enabled[:0:0]
		for _, t := range enabled {
			if t == targetFilter {
				filtered = append(filtered, t)
			}
		}
		enabled = filtered
	}

	deployed, failed := u.redeployToTargets(pluginName, enabled)

	newSidecar := sidecar
	newSidecar.StatusByTarget = make(map[string]string, len(sidecar.StatusByTarget))
	for t, s := range sidecar.StatusByTarget {
		newSidecar.StatusByTarget[t] = s
	}
	newSidecar.GitRef = gitRef
	newSidecar.CommitSha = latestSHA
	for _, t := range failed {
		newSidecar.SetStatus(t, metadata.StatusDisabled)
	}
	_ = metadata.Save(u.fs, u.cache.PluginPath("", pluginName), newSidecar)

	_ = u.cache.RemoveBackup("", pluginName)

	return updatedResult(pluginName, currentSHA, latestSHA, deployed, failed)
}

// redeployToTargets re-enables pluginName on each named target,
// resolving its cached components via internal/deployment and applying
// the resulting plan. Targets are attempted independently; one target's
// failure does not block the rest.
func (u *Updater) redeployToTargets(pluginName string, targets []string) (deployed, failed []string) {
	manifest, err := u.cache.LoadManifest("", pluginName)
	if err != nil {
		return nil, append(failed, targets...)
	}

	pluginDir := u.cache.PluginPath("", pluginName)
	components, err := deployment.Resolve(u.fs, pluginDir, manifest)
	if err != nil {
		return nil, append(failed, targets...)
	}

	origin := repo.FromCachedPlugin("", pluginName)

	for _, name := range targets {
		target, ok := placement.Parse(name)
		if !ok {
			failed = append(failed, name)
			continue
		}

		plan := planner.PlanEnable(planner.EnableInput{
			Origin:      origin,
			Targets:     []placement.Target{target},
			Scope:       placement.Project,
			ProjectRoot: u.projectRoot,
			Components:  components,
		})
		result := applier.Apply(u.fs, plan)
		if result.Success() {
			deployed = append(deployed, name)
		} else {
			failed = append(failed, name)
		}
	}
	return deployed, failed
}

// UpdateAll checks every direct-GitHub-installed cached plugin for an
// update and applies the ones that have moved, using one shared host
// client for every SHA lookup (the original's "複数プラグインの更新チェック" —
// checking multiple plugins' updates — efficiency note). A plugin that is
// not GitHub-managed, whose repository cannot be resolved, or whose
// latest-SHA lookup fails is silently omitted from the batch rather than
// reported as failed, matching the original's
// check_updates_batch; a plugin that does report Failed during its own
// do_update does not abort the rest of the batch.
func (u *Updater) UpdateAll(ctx context.Context, targetFilter string) []Result {
	entries, err := u.cache.List()
	if err != nil {
		return []Result{failedResult("*", fmt.Sprintf("failed to list cache: %v", err))}
	}

	type candidate struct {
		name    string
		sidecar metadata.Sidecar
		repo    repo.Repo
		gitRef  string
	}

	var candidates []candidate
	for _, e := range entries {
		if e.Marketplace != "" {
			continue
		}
		sidecar, _, err := metadata.Load(u.fs, u.cache.PluginPath("", e.Name))
		if err != nil {
			sidecar = metadata.Sidecar{}
		}
		candidates = append(candidates, candidate{name: e.Name, sidecar: sidecar})
	}

	client := u.NewClient()
	latestByName := map[string]string{}
	checked := map[string]bool{}
	for i := range candidates {
		c := &candidates[i]
		if !isGitHubManaged(c.sidecar, c.name) {
			continue
		}
		r, err := restoreRepo(c.sidecar, c.name)
		if err != nil {
			continue
		}
		c.repo = r
		c.gitRef = r.RefOrDefault()

		var latestSHA string
		if err := host.WithRetry(func() error {
			sha, err := client.GetCommitSHA(ctx, r, c.gitRef)
			if err != nil {
				return err
			}
			latestSHA = sha
			return nil
		}); err != nil {
			continue
		}
		checked[c.name] = true

		if c.sidecar.CommitSha == "" || c.sidecar.CommitSha != latestSHA {
			latestByName[c.name] = latestSHA
		}
	}

	var results []Result
	for _, c := range candidates {
		if !checked[c.name] {
			continue
		}
		latestSHA, needsUpdate := latestByName[c.name]
		if !needsUpdate {
			results = append(results, upToDateResult(c.name))
			continue
		}
		results = append(results, u.doUpdate(ctx, client, c.name, c.repo, c.gitRef, c.sidecar.CommitSha, latestSHA, c.sidecar, targetFilter))
	}
	return results
}
