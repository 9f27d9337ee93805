package targets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruminaider/plm/internal/targets"
	"github.com/ruminaider/plm/internal/vfs"
)

func TestListDefaultsToBothTargetsWhenFileAbsent(t *testing.T) {
	fs := vfs.NewMock()
	reg := targets.NewRegistry(fs, "/home/u/.plm/targets.json")

	names, err := reg.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"codex", "copilot"}, names)
}

func TestAddRejectsUnknownTarget(t *testing.T) {
	fs := vfs.NewMock()
	reg := targets.NewRegistry(fs, "/home/u/.plm/targets.json")

	_, err := reg.Add("nonexistent")
	assert.Error(t, err)
}

func TestAddAndRemoveRoundTrip(t *testing.T) {
	fs := vfs.NewMock()
	reg := targets.NewRegistry(fs, "/home/u/.plm/targets.json")

	result, err := reg.Add("codex")
	require.NoError(t, err)
	assert.Equal(t, targets.AlreadyExists, result)

	_, err = reg.Remove("codex")
	require.NoError(t, err)

	names, err := reg.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"copilot"}, names)

	removeResult, err := reg.Remove("codex")
	require.NoError(t, err)
	assert.Equal(t, targets.NotFound, removeResult)

	addResult, err := reg.Add("codex")
	require.NoError(t, err)
	assert.Equal(t, targets.Added, addResult)

	names, err = reg.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"codex", "copilot"}, names)
}

func TestResolveMapsNamesToPlacementTargets(t *testing.T) {
	fs := vfs.NewMock()
	reg := targets.NewRegistry(fs, "/home/u/.plm/targets.json")

	resolved, err := reg.Resolve()
	require.NoError(t, err)
	require.Len(t, resolved, 2)
}
