package host

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	gogithttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/ruminaider/plm/internal/errs"
	"github.com/ruminaider/plm/internal/repo"
)

// GitClient is a Client implementation that speaks the plain git
// protocol via go-git instead of a host's REST API. It is the fallback
// used for hosts a REST integration doesn't cover (GitLab, Bitbucket,
// self-hosted remotes), grounded on the same PlainClone/auth-token
// pattern as the example catalog git provider.
type GitClient struct {
	// Token, if set, authenticates as an HTTPS basic-auth password
	// (username is ignored by every host this targets).
	Token string
}

// NewGitClient returns a GitClient, optionally authenticated with token.
func NewGitClient(token string) *GitClient {
	return &GitClient{Token: token}
}

func (c *GitClient) auth() *gogithttp.BasicAuth {
	if c.Token == "" {
		return nil
	}
	return &gogithttp.BasicAuth{Username: "git", Password: c.Token}
}

func cloneURL(r repo.Repo) string {
	host := "github.com"
	switch r.Host {
	case repo.GitLab:
		host = "gitlab.com"
	case repo.Bitbucket:
		host = "bitbucket.org"
	}
	return fmt.Sprintf("https://%s/%s/%s.git", host, r.Owner, r.Name)
}

// GetDefaultBranch lists the remote's advertised refs and returns the
// branch HEAD symbolically points at.
func (c *GitClient) GetDefaultBranch(ctx context.Context, r repo.Repo) (string, error) {
	remote := gogit.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{cloneURL(r)},
	})

	refs, err := remote.List(&gogit.ListOptions{Auth: c.auth()})
	if err != nil {
		return "", errs.New(errs.Network, "host.GitClient.GetDefaultBranch", err)
	}

	for _, ref := range refs {
		if ref.Name() == plumbing.HEAD && ref.Type() == plumbing.SymbolicReference {
			return ref.Target().Short(), nil
		}
	}
	return "", errs.New(errs.RepoAPI, "host.GitClient.GetDefaultBranch",
		fmt.Errorf("remote did not advertise a symbolic HEAD for %s", r.FullName()))
}

// GetCommitSHA resolves ref (a branch, tag, or full SHA) to its commit
// hash by listing the remote's advertised refs.
func (c *GitClient) GetCommitSHA(ctx context.Context, r repo.Repo, ref string) (string, error) {
	remote := gogit.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{cloneURL(r)},
	})

	refs, err := remote.List(&gogit.ListOptions{Auth: c.auth()})
	if err != nil {
		return "", errs.New(errs.Network, "host.GitClient.GetCommitSHA", err)
	}

	for _, candidate := range []string{ref, "refs/heads/" + ref, "refs/tags/" + ref} {
		for _, r := range refs {
			if r.Name().String() == candidate {
				return r.Hash().String(), nil
			}
		}
	}
	if plumbing.IsHash(ref) {
		return ref, nil
	}
	return "", errs.New(errs.RepoAPI, "host.GitClient.GetCommitSHA",
		fmt.Errorf("ref %q not found on remote", ref))
}

// DownloadArchive clones r at its ref (or the default branch) into a
// scratch directory and zips the resulting worktree, excluding .git.
func (c *GitClient) DownloadArchive(ctx context.Context, r repo.Repo) ([]byte, error) {
	archive, _, _, err := c.cloneAndArchive(ctx, r)
	return archive, err
}

// DownloadArchiveWithSHA is DownloadArchive plus the resolved ref and the
// commit SHA checked out.
func (c *GitClient) DownloadArchiveWithSHA(ctx context.Context, r repo.Repo) ([]byte, string, string, error) {
	return c.cloneAndArchive(ctx, r)
}

func (c *GitClient) cloneAndArchive(ctx context.Context, r repo.Repo) ([]byte, string, string, error) {
	dir, err := os.MkdirTemp("", "plm-host-clone-*")
	if err != nil {
		return nil, "", "", errs.New(errs.IO, "host.GitClient.cloneAndArchive", err)
	}
	defer os.RemoveAll(dir)

	opts := &gogit.CloneOptions{URL: cloneURL(r), Auth: c.auth(), SingleBranch: true, Depth: 1}
	if r.GitRef != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(r.GitRef)
	}

	repository, err := gogit.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return nil, "", "", errs.New(errs.Network, "host.GitClient.cloneAndArchive", err)
	}

	head, err := repository.Head()
	if err != nil {
		return nil, "", "", errs.New(errs.RepoAPI, "host.GitClient.cloneAndArchive", err)
	}

	ref := r.GitRef
	if ref == "" {
		ref = head.Name().Short()
	}

	archive, err := zipDir(dir)
	if err != nil {
		return nil, "", "", err
	}
	return archive, ref, head.Hash().String(), nil
}

// FetchFile clones r (shallow, at ref) into a scratch directory and
// returns path's contents.
func (c *GitClient) FetchFile(ctx context.Context, r repo.Repo, path string) (string, error) {
	dir, err := os.MkdirTemp("", "plm-host-fetchfile-*")
	if err != nil {
		return "", errs.New(errs.IO, "host.GitClient.FetchFile", err)
	}
	defer os.RemoveAll(dir)

	opts := &gogit.CloneOptions{URL: cloneURL(r), Auth: c.auth(), SingleBranch: true, Depth: 1}
	if r.GitRef != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(r.GitRef)
	}
	if _, err := gogit.PlainCloneContext(ctx, dir, false, opts); err != nil {
		return "", errs.New(errs.Network, "host.GitClient.FetchFile", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, path))
	if err != nil {
		return "", errs.New(errs.InvalidSource, "host.GitClient.FetchFile", err)
	}
	return string(content), nil
}

// zipDir archives dir's contents (excluding .git) into a zip file rooted
// at a single "<base>/" prefix, matching the shape a host's REST zipball
// endpoint returns so cache.StoreFromArchive's prefix-stripping applies
// uniformly regardless of which Client produced the archive.
func zipDir(dir string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	base := filepath.Base(dir) + "/"
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if rel == ".git" || strings.HasPrefix(rel, ".git"+string(filepath.Separator)) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		name := base + filepath.ToSlash(rel)
		if info.IsDir() {
			_, err := zw.Create(name + "/")
			return err
		}

		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		return nil, errs.New(errs.IO, "host.zipDir", err)
	}
	if err := zw.Close(); err != nil {
		return nil, errs.New(errs.IO, "host.zipDir", err)
	}
	return buf.Bytes(), nil
}
