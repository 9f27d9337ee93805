package deployment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruminaider/plm/internal/deployment"
	"github.com/ruminaider/plm/internal/manifest"
	"github.com/ruminaider/plm/internal/placement"
	"github.com/ruminaider/plm/internal/vfs"
)

func writeFile(t *testing.T, fs *vfs.Mock, p, content string) {
	t.Helper()
	require.NoError(t, fs.Write(p, []byte(content)))
}

func TestResolveResolvesEveryKind(t *testing.T) {
	fs := vfs.NewMock()
	root := "/cache/github/acme--widgets"

	writeFile(t, fs, root+"/skills/greeter/SKILL.md", "# greeter")
	writeFile(t, fs, root+"/agents/reviewer.agent.md", "# reviewer")
	writeFile(t, fs, root+"/commands/deploy.prompt.md", "# deploy")
	writeFile(t, fs, root+"/instructions/setup.md", "# setup")
	writeFile(t, fs, root+"/AGENTS.md", "# agents")
	writeFile(t, fs, root+"/hooks/pretooluse.sh", "#!/bin/sh")

	m := manifest.Manifest{Name: "widgets", Version: "1.0.0"}

	components, err := deployment.Resolve(fs, root, m)
	require.NoError(t, err)

	byName := map[string]struct {
		kind  placement.Kind
		path  string
		isDir bool
	}{}
	for _, c := range components {
		byName[c.Component.Name] = struct {
			kind  placement.Kind
			path  string
			isDir bool
		}{c.Component.Kind, c.SourcePath, c.IsDir}
	}

	g, ok := byName["greeter"]
	require.True(t, ok)
	assert.Equal(t, placement.Skill, g.kind)
	assert.True(t, g.isDir)
	assert.Equal(t, root+"/skills/greeter", g.path)

	r, ok := byName["reviewer"]
	require.True(t, ok)
	assert.Equal(t, placement.Agent, r.kind)
	assert.False(t, r.isDir)
	assert.Equal(t, root+"/agents/reviewer.agent.md", r.path)

	d, ok := byName["deploy"]
	require.True(t, ok)
	assert.Equal(t, placement.Command, d.kind)
	assert.Equal(t, root+"/commands/deploy.prompt.md", d.path)

	s, ok := byName["setup"]
	require.True(t, ok)
	assert.Equal(t, placement.Instruction, s.kind)
	assert.Equal(t, root+"/instructions/setup.md", s.path)

	a, ok := byName["AGENTS"]
	require.True(t, ok)
	assert.Equal(t, placement.Instruction, a.kind)
	assert.Equal(t, root+"/AGENTS.md", a.path)

	h, ok := byName["pretooluse"]
	require.True(t, ok)
	assert.Equal(t, placement.Hook, h.kind)
	assert.Equal(t, root+"/hooks/pretooluse.sh", h.path)
}

func TestResolveFallsBackToPlainMarkdownWhenKindSuffixAbsent(t *testing.T) {
	fs := vfs.NewMock()
	root := "/cache/github/acme--widgets"
	writeFile(t, fs, root+"/agents/reviewer.md", "# reviewer")

	m := manifest.Manifest{Name: "widgets", Version: "1.0.0"}
	components, err := deployment.Resolve(fs, root, m)
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Equal(t, root+"/agents/reviewer.md", components[0].SourcePath)
}

func TestResolveHandlesSingleFileAgentsRoot(t *testing.T) {
	fs := vfs.NewMock()
	root := "/cache/github/acme--widgets"
	m := manifest.Manifest{Name: "widgets", Version: "1.0.0", Agents: "AGENT.md"}
	writeFile(t, fs, root+"/AGENT.md", "# agent")

	components, err := deployment.Resolve(fs, root, m)
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Equal(t, placement.Agent, components[0].Component.Kind)
	assert.Equal(t, root+"/AGENT.md", components[0].SourcePath)
}
