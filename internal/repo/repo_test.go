package repo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruminaider/plm/internal/repo"
)

func TestParseRepo(t *testing.T) {
	t.Run("shorthand", func(t *testing.T) {
		r, err := repo.ParseRepo("owner/repo")
		require.NoError(t, err)
		assert.Equal(t, "owner", r.Owner)
		assert.Equal(t, "repo", r.Name)
		assert.Equal(t, repo.GitHub, r.Host)
		assert.Equal(t, "HEAD", r.RefOrDefault())
	})

	t.Run("shorthand with ref", func(t *testing.T) {
		r, err := repo.ParseRepo("owner/repo@v1.0.0")
		require.NoError(t, err)
		assert.Equal(t, "v1.0.0", r.GitRef)
		assert.Equal(t, "v1.0.0", r.RefOrDefault())
	})

	t.Run("https url", func(t *testing.T) {
		r, err := repo.ParseRepo("https://github.com/owner/repo")
		require.NoError(t, err)
		assert.Equal(t, "owner", r.Owner)
		assert.Equal(t, "repo", r.Name)
	})

	t.Run("https url with .git suffix", func(t *testing.T) {
		r, err := repo.ParseRepo("https://github.com/owner/repo.git")
		require.NoError(t, err)
		assert.Equal(t, "repo", r.Name)
	})

	t.Run("scp style", func(t *testing.T) {
		r, err := repo.ParseRepo("git@github.com:owner/repo")
		require.NoError(t, err)
		assert.Equal(t, "owner", r.Owner)
		assert.Equal(t, "repo", r.Name)
		assert.Equal(t, repo.GitHub, r.Host)
	})

	t.Run("ssh url", func(t *testing.T) {
		r, err := repo.ParseRepo("ssh://git@github.com/owner/repo")
		require.NoError(t, err)
		assert.Equal(t, "owner", r.Owner)
		assert.Equal(t, "repo", r.Name)
	})

	t.Run("empty input rejected", func(t *testing.T) {
		_, err := repo.ParseRepo("   ")
		require.Error(t, err)
	})

	t.Run("unknown host rejected", func(t *testing.T) {
		_, err := repo.ParseRepo("https://example.com/owner/repo")
		require.Error(t, err)
	})

	t.Run("full name", func(t *testing.T) {
		r, err := repo.ParseRepo("owner/repo")
		require.NoError(t, err)
		assert.Equal(t, "owner/repo", r.FullName())
	})
}

func TestParseSourcePath(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "leading dot slash", in: "./plugins/foo", want: "plugins/foo"},
		{name: "internal dot", in: "plugins/./foo", want: "plugins/foo"},
		{name: "trailing slash", in: "plugins/foo/", want: "plugins/foo"},
		{name: "backslash", in: `plugins\foo`, want: "plugins/foo"},
		{name: "empty", in: "", wantErr: true},
		{name: "dot only", in: ".", wantErr: true},
		{name: "parent dir", in: "../plugins/foo", wantErr: true},
		{name: "absolute", in: "/plugins/foo", wantErr: true},
		{name: "drive letter with separator", in: "C:/plugins/foo", wantErr: true},
		{name: "drive letter without separator", in: "a:plugins/foo", wantErr: true},
		{name: "unc path", in: `\\server\share`, wantErr: true},
		{name: "complex", in: "./plugins/./foo/bar/", want: "plugins/foo/bar"},
		{name: "single component", in: "plugins", want: "plugins"},
		{name: "deep path", in: "a/b/c/d/e", want: "a/b/c/d/e"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.ParseSourcePath(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("boundary: plugins/foo must not match plugins/foo-bar", func(t *testing.T) {
		a, err := repo.ParseSourcePath("plugins/foo")
		require.NoError(t, err)
		b, err := repo.ParseSourcePath("plugins/foo-bar")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
		assert.False(t, isPrefixBoundary(b, a))
	})
}

func isPrefixBoundary(full, prefix string) bool {
	if len(full) <= len(prefix) || full[:len(prefix)] != prefix {
		return false
	}
	return full[len(prefix)] == '/'
}
