// Package repo holds plugin-identity and origin value types (spec.md §3)
// plus the repository-reference parser used by `plm install`.
package repo

import (
	"fmt"
	"strings"

	"github.com/ruminaider/plm/internal/errs"
)

// DirectMarketplace is the sentinel marketplace slug used when a plugin is
// installed straight from a repository rather than through a marketplace.
const DirectMarketplace = "github"

// Identity addresses a plugin by (marketplace, name). Marketplace is empty
// for a direct repository install, in which case Name encodes the
// repository as "owner--repo".
type Identity struct {
	Marketplace string
	Name        string
}

// Origin is the (marketplace, plugin) pair inserted into every
// placed-component path to prevent collisions between plugins.
type Origin struct {
	Marketplace string
	Plugin      string
}

// FromMarketplace builds an Origin for a plugin installed via a marketplace.
func FromMarketplace(marketplace, plugin string) Origin {
	return Origin{Marketplace: marketplace, Plugin: plugin}
}

// FromGitHub builds an Origin for a plugin installed directly from a
// GitHub-hosted repository: marketplace is the literal "github" and the
// plugin slug substitutes the owner/repo separator with a double hyphen.
func FromGitHub(owner, name string) Origin {
	return Origin{Marketplace: DirectMarketplace, Plugin: owner + "--" + name}
}

// FromCachedPlugin normalizes a cache entry's (marketplace, name) into an
// Origin; an absent marketplace defaults to "github".
func FromCachedPlugin(marketplace, name string) Origin {
	if marketplace == "" {
		marketplace = DirectMarketplace
	}
	return Origin{Marketplace: marketplace, Plugin: name}
}

// Host identifies the repository-hosting provider.
type Host int

const (
	GitHub Host = iota
	GitLab
	Bitbucket
)

// Repo is a parsed repository reference: host, owner, name, and an
// optional git ref (branch, tag, or commit SHA).
type Repo struct {
	Host   Host
	Owner  string
	Name   string
	GitRef string // empty means unset
}

// FullName returns "owner/name".
func (r Repo) FullName() string { return r.Owner + "/" + r.Name }

// RefOrDefault returns GitRef, or "HEAD" if unset.
func (r Repo) RefOrDefault() string {
	if r.GitRef == "" {
		return "HEAD"
	}
	return r.GitRef
}

// ParseRepo parses a repository reference supplied to `plm install`.
// Supported forms: "owner/repo", "owner/repo@ref", a full HTTP(S) URL, an
// ssh:// URL, or an SCP-style "git@host:owner/repo".
func ParseRepo(input string) (Repo, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Repo{}, errs.New(errs.InvalidRepoFormat, "repo.ParseRepo", fmt.Errorf("empty repository reference"))
	}

	hostHint, rawPath, err := detectAndStrip(input)
	if err != nil {
		return Repo{}, err
	}

	path, gitRef, err := splitRef(rawPath)
	if err != nil {
		return Repo{}, err
	}

	host := GitHub
	if hostHint != nil {
		host = *hostHint
	}

	switch host {
	case GitLab:
		return Repo{}, errs.New(errs.InvalidRepoFormat, "repo.ParseRepo", fmt.Errorf("GitLab is not yet supported"))
	case Bitbucket:
		return Repo{}, errs.New(errs.InvalidRepoFormat, "repo.ParseRepo", fmt.Errorf("Bitbucket is not yet supported"))
	}

	owner, name, err := parseOwnerRepoPath(path)
	if err != nil {
		return Repo{}, err
	}

	return Repo{Host: host, Owner: owner, Name: name, GitRef: gitRef}, nil
}

func parseOwnerRepoPath(path string) (owner, name string, err error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errs.New(errs.InvalidRepoFormat, "repo.parseOwnerRepoPath",
			fmt.Errorf("expected owner/repo, got %q", path))
	}
	return parts[0], parts[1], nil
}

// detectAndStrip classifies input's locator kind (HTTP URL, SSH URL, SCP,
// or shorthand) and returns the inferred host (nil for shorthand, resolved
// from the owner/repo path later) plus the remaining owner/repo(.git)?(@ref)?
// path.
func detectAndStrip(input string) (*Host, string, error) {
	if scheme, rest, ok := strings.Cut(input, "://"); ok {
		switch scheme {
		case "http", "https":
			return parseHTTPURL(input)
		case "ssh":
			return parseSSHURL(rest)
		default:
			return nil, "", errs.New(errs.InvalidRepoFormat, "repo.detectAndStrip",
				fmt.Errorf("unsupported scheme: %s", scheme))
		}
	}
	if strings.HasPrefix(input, "git@") && strings.Contains(input, ":") {
		return parseSCPURL(input)
	}
	return nil, input, nil
}

func parseHTTPURL(input string) (*Host, string, error) {
	rest := strings.TrimPrefix(strings.TrimPrefix(input, "https://"), "http://")
	host, path, ok := strings.Cut(rest, "/")
	if !ok {
		return nil, "", errs.New(errs.InvalidRepoFormat, "repo.parseHTTPURL", fmt.Errorf("%s", input))
	}
	hk, ok := hostKindFromHost(host)
	if !ok {
		return nil, "", errs.New(errs.InvalidRepoFormat, "repo.parseHTTPURL", fmt.Errorf("unknown host: %s", host))
	}
	return &hk, strings.TrimLeft(path, "/"), nil
}

func parseSSHURL(rest string) (*Host, string, error) {
	hostPart, path, ok := strings.Cut(rest, "/")
	if !ok {
		return nil, "", errs.New(errs.InvalidRepoFormat, "repo.parseSSHURL", fmt.Errorf("ssh://%s", rest))
	}
	host := hostPart
	if idx := strings.LastIndex(hostPart, "@"); idx >= 0 {
		host = hostPart[idx+1:]
	}
	hk, ok := hostKindFromHost(host)
	if !ok {
		return nil, "", errs.New(errs.InvalidRepoFormat, "repo.parseSSHURL", fmt.Errorf("unknown host: %s", host))
	}
	return &hk, strings.TrimLeft(path, "/"), nil
}

func parseSCPURL(input string) (*Host, string, error) {
	rest := strings.TrimPrefix(input, "git@")
	host, path, ok := strings.Cut(rest, ":")
	if !ok {
		return nil, "", errs.New(errs.InvalidRepoFormat, "repo.parseSCPURL", fmt.Errorf("%s", input))
	}
	hk, ok := hostKindFromHost(host)
	if !ok {
		return nil, "", errs.New(errs.InvalidRepoFormat, "repo.parseSCPURL", fmt.Errorf("unknown host: %s", host))
	}
	return &hk, path, nil
}

func hostKindFromHost(host string) (Host, bool) {
	host, _, _ = strings.Cut(host, ":") // strip port
	switch strings.ToLower(host) {
	case "github.com", "www.github.com":
		return GitHub, true
	case "gitlab.com", "www.gitlab.com":
		return GitLab, true
	case "bitbucket.org", "www.bitbucket.org":
		return Bitbucket, true
	default:
		return 0, false
	}
}

func splitRef(path string) (string, string, error) {
	path = strings.TrimSuffix(path, ".git")
	left, right, ok := strings.Cut(path, "@")
	if !ok {
		return path, "", nil
	}
	if right == "" {
		return "", "", errs.New(errs.InvalidRepoFormat, "repo.splitRef", fmt.Errorf("empty ref after @: %s", path))
	}
	return left, right, nil
}
