// Package metadata implements the per-plugin sidecar store (spec.md
// §4.H): `.plm-meta.json` install provenance and per-target enable
// state, written atomically and read tolerantly.
//
// Grounded on the original implementation's plugin/meta.rs
// (resolve_installed_at fallback chain, atomic temp+persist write,
// tolerant corrupt-file reads) generalized to also carry source repo,
// git ref/SHA, and per-target enable status per spec.md's sidecar
// schema (§6).
package metadata

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ruminaider/plm/internal/errs"
	"github.com/ruminaider/plm/internal/logging"
	"github.com/ruminaider/plm/internal/manifest"
	"github.com/ruminaider/plm/internal/vfs"
)

// FileName is the sidecar's filename within a plugin's cache directory.
const FileName = ".plm-meta.json"

const (
	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
)

// Sidecar is the decoded `.plm-meta.json` contents. All fields are
// optional; missing fields decode as zero values. Unknown fields present
// in an existing sidecar are preserved across a Save/Load round trip.
type Sidecar struct {
	InstalledAt    string            `json:"-"`
	SourceRepo     string            `json:"-"`
	GitRef         string            `json:"-"`
	CommitSha      string            `json:"-"`
	StatusByTarget map[string]string `json:"-"`

	extra map[string]json.RawMessage
}

// knownFields lists the sidecar's modeled JSON keys; anything else decoded
// from an existing file is stashed in Sidecar.extra and re-emitted as-is.
var knownFields = []string{"installedAt", "sourceRepo", "gitRef", "commitSha", "statusByTarget"}

// UnmarshalJSON decodes known sidecar fields and stashes anything else in
// extra so a later Save does not silently drop fields a newer or older
// version of this tool introduced.
func (s *Sidecar) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["installedAt"]; ok {
		_ = json.Unmarshal(v, &s.InstalledAt)
	}
	if v, ok := raw["sourceRepo"]; ok {
		_ = json.Unmarshal(v, &s.SourceRepo)
	}
	if v, ok := raw["gitRef"]; ok {
		_ = json.Unmarshal(v, &s.GitRef)
	}
	if v, ok := raw["commitSha"]; ok {
		_ = json.Unmarshal(v, &s.CommitSha)
	}
	if v, ok := raw["statusByTarget"]; ok {
		_ = json.Unmarshal(v, &s.StatusByTarget)
	}

	s.extra = map[string]json.RawMessage{}
	for k, v := range raw {
		if !isKnownField(k) {
			s.extra[k] = v
		}
	}
	return nil
}

// MarshalJSON re-embeds any unknown fields captured at load time alongside
// the current known-field values.
func (s Sidecar) MarshalJSON() ([]byte, error) {
	out := map[string]json.RawMessage{}
	for k, v := range s.extra {
		out[k] = v
	}

	if s.InstalledAt != "" {
		b, _ := json.Marshal(s.InstalledAt)
		out["installedAt"] = b
	}
	if s.SourceRepo != "" {
		b, _ := json.Marshal(s.SourceRepo)
		out["sourceRepo"] = b
	}
	if s.GitRef != "" {
		b, _ := json.Marshal(s.GitRef)
		out["gitRef"] = b
	}
	if s.CommitSha != "" {
		b, _ := json.Marshal(s.CommitSha)
		out["commitSha"] = b
	}
	if len(s.StatusByTarget) > 0 {
		b, _ := json.Marshal(s.StatusByTarget)
		out["statusByTarget"] = b
	}

	return json.Marshal(out)
}

func isKnownField(k string) bool {
	for _, kn := range knownFields {
		if kn == k {
			return true
		}
	}
	return false
}

// SetStatus records target's enable state.
func (s *Sidecar) SetStatus(target, status string) {
	if s.StatusByTarget == nil {
		s.StatusByTarget = map[string]string{}
	}
	s.StatusByTarget[target] = status
}

// IsEnabled reports whether target's last recorded status is "enabled".
func (s Sidecar) IsEnabled(target string) bool {
	return s.StatusByTarget[target] == StatusEnabled
}

// EnabledTargets returns the sorted list of targets currently marked
// enabled.
func (s Sidecar) EnabledTargets() []string {
	var out []string
	for t, status := range s.StatusByTarget {
		if status == StatusEnabled {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func sidecarPath(pluginDir string) string {
	return filepath.Join(pluginDir, FileName)
}

// Load reads and decodes a plugin's sidecar. A missing file returns
// (Sidecar{}, false, nil). A corrupt file is logged and also treated as
// absent, per spec.md §4.H, rather than surfaced as an error.
func Load(fs vfs.FS, pluginDir string) (Sidecar, bool, error) {
	path := sidecarPath(pluginDir)
	if !fs.Exists(path) {
		return Sidecar{}, false, nil
	}
	content, err := fs.ReadToString(path)
	if err != nil {
		return Sidecar{}, false, err
	}

	var s Sidecar
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		logging.L().Warn("sidecar is corrupt, treating as absent",
			zap.String("path", path), zap.Error(err))
		return Sidecar{}, false, nil
	}
	return s, true, nil
}

// Save atomically writes the sidecar: a same-directory temp file, then a
// rename into place. If the destination already exists and the rename
// fails for that reason, it is removed and the rename retried once.
func Save(fs vfs.FS, pluginDir string, s Sidecar) error {
	content, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errs.New(errs.IO, "metadata.Save", err)
	}

	path := sidecarPath(pluginDir)
	tmpPath := path + ".tmp"
	if err := fs.Write(tmpPath, content); err != nil {
		return err
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		_ = fs.RemoveFile(path)
		if err := fs.Rename(tmpPath, path); err != nil {
			_ = fs.RemoveFile(tmpPath)
			return err
		}
	}
	return nil
}

// ResolveInstalledAt prefers the sidecar's installedAt, falling back to
// plugin.json's legacy field, falling back to an empty string.
func ResolveInstalledAt(fs vfs.FS, pluginDir string, m *manifest.Manifest) (string, error) {
	sidecar, ok, err := Load(fs, pluginDir)
	if err != nil {
		return "", err
	}
	if ok {
		if v := strings.TrimSpace(sidecar.InstalledAt); v != "" {
			return v, nil
		}
	}
	if m != nil {
		return strings.TrimSpace(m.InstalledAt), nil
	}
	return "", nil
}

