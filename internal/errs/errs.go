// Package errs defines the error taxonomy shared across the core engine.
//
// Every layer boundary wraps underlying errors with fmt.Errorf("...: %w", err)
// exactly like the rest of this codebase; this package only adds a closed
// Kind enumeration so callers (and the CLI's error prettifier) can branch on
// *what kind* of failure occurred without parsing message strings.
package errs

import "fmt"

// Kind classifies a failure. Closed set, mirrors the taxonomy used
// throughout the engine: Network, RepoAPI, InvalidRepoFormat,
// PluginNotFound, MarketplaceNotFound, InvalidManifest, InvalidSource, IO,
// Parse, ZipExtraction, Cache, Validation, UnsupportedConversion,
// AmbiguousPlugin, TUI, Cancelled, Deployment.
type Kind string

const (
	Network               Kind = "network"
	RepoAPI               Kind = "repo_api"
	InvalidRepoFormat     Kind = "invalid_repo_format"
	PluginNotFound        Kind = "plugin_not_found"
	MarketplaceNotFound   Kind = "marketplace_not_found"
	InvalidManifest       Kind = "invalid_manifest"
	InvalidSource         Kind = "invalid_source"
	IO                    Kind = "io"
	Parse                 Kind = "parse"
	ZipExtraction         Kind = "zip_extraction"
	Cache                 Kind = "cache"
	Validation            Kind = "validation"
	UnsupportedConversion Kind = "unsupported_conversion"
	AmbiguousPlugin       Kind = "ambiguous_plugin"
	TUI                   Kind = "tui"
	Cancelled             Kind = "cancelled"
	Deployment            Kind = "deployment"
)

// info carries the cause and remediation text for a Kind, grounded on the
// NET/API/IO/CFG/PLG/MKT/TUI/VAL/INT code catalog of the original
// implementation this was distilled from.
type info struct {
	cause       string
	remediation string
	retryable   bool
}

var catalog = map[Kind]info{
	Network: {
		cause:       "unable to reach the remote host",
		remediation: "check your internet connection and try again",
		retryable:   true,
	},
	RepoAPI: {
		cause:       "the repository host returned an error response",
		remediation: "wait and retry; consider authenticating with GITHUB_TOKEN",
		retryable:   false,
	},
	InvalidRepoFormat: {
		cause:       "the repository reference could not be parsed",
		remediation: "use owner/name, a full URL, or an scp-style git@host:owner/name reference",
	},
	PluginNotFound: {
		cause:       "no plugin matched the given name",
		remediation: "check `plm list` for installed plugins and their marketplace",
	},
	MarketplaceNotFound: {
		cause:       "no marketplace matched the given name or source",
		remediation: "run `plm marketplace add <source>` first",
	},
	InvalidManifest: {
		cause:       "the plugin manifest is missing required fields or malformed",
		remediation: "the upstream plugin.json must declare name and version",
	},
	InvalidSource: {
		cause:       "the source path is not a valid relative, normalized POSIX path",
		remediation: "use a relative subdirectory without '..' or backslashes",
	},
	IO: {
		cause:       "a filesystem operation failed",
		remediation: "check permissions and available disk space",
	},
	Parse: {
		cause:       "a JSON or YAML document could not be decoded",
		remediation: "validate the document's syntax",
	},
	ZipExtraction: {
		cause:       "the archive could not be extracted",
		remediation: "the archive may be corrupt or empty; try re-downloading",
	},
	Cache: {
		cause:       "the plugin cache is in an unexpected state",
		remediation: "run `plm install` again to repair the cache entry",
	},
	Validation: {
		cause:       "a path escaped its declared root or resolved through a dangling symlink",
		remediation: "this is refused for safety; check the offending path",
	},
	UnsupportedConversion: {
		cause:       "no conversion exists between the requested dialects",
		remediation: "only ClaudeCode -> Copilot and ClaudeCode -> Codex are supported",
	},
	AmbiguousPlugin: {
		cause:       "more than one installed plugin matches the given name",
		remediation: "qualify the name with its marketplace, e.g. name@marketplace",
	},
	TUI: {
		cause:       "the terminal interface failed to initialize or render",
		remediation: "retry in a standard terminal, or use the non-interactive flags",
	},
	Cancelled: {
		cause:       "the operation was cancelled before completion",
		remediation: "",
	},
	Deployment: {
		cause:       "one or more targets failed during placement",
		remediation: "see the per-target error list for details",
	},
}

// Error is a structured failure carrying a Kind plus the wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, catalog[e.Kind].cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error for op, wrapping err under kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Cause returns the one-line description of what a Kind generally means.
func Cause(k Kind) string { return catalog[k].cause }

// Remediation returns the suggested fix for a Kind.
func Remediation(k Kind) string { return catalog[k].remediation }

// Retryable reports whether errors of this kind are worth retrying
// (network errors only, which include 5xx responses; repo-API 4xx,
// parse and validation errors are not).
func Retryable(k Kind) bool { return catalog[k].retryable }

// KindOf walks err's Unwrap chain looking for an *Error and returns its Kind.
// Returns "" if no *Error is found in the chain.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ""
}
