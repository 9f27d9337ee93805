package vfs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruminaider/plm/internal/vfs"
)

func TestReal(t *testing.T) {
	fs := vfs.NewReal()
	dir := t.TempDir()

	t.Run("write then read", func(t *testing.T) {
		p := filepath.Join(dir, "a", "b.txt")
		require.NoError(t, fs.Write(p, []byte("hello")))
		got, err := fs.ReadToString(p)
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	})

	t.Run("copy file", func(t *testing.T) {
		src := filepath.Join(dir, "src.txt")
		dst := filepath.Join(dir, "nested", "dst.txt")
		require.NoError(t, fs.Write(src, []byte("x")))
		require.NoError(t, fs.CopyFile(src, dst))
		got, err := fs.ReadToString(dst)
		require.NoError(t, err)
		assert.Equal(t, "x", got)
	})

	t.Run("copy dir rejects descendant destination", func(t *testing.T) {
		src := filepath.Join(dir, "srcdir")
		require.NoError(t, fs.CreateDirAll(src))
		err := fs.CopyDir(src, filepath.Join(src, "child"))
		require.Error(t, err)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		p := filepath.Join(dir, "gone.txt")
		require.NoError(t, fs.Remove(p))
		require.NoError(t, fs.Remove(p))
	})

	t.Run("remove_file on directory fails", func(t *testing.T) {
		d := filepath.Join(dir, "adir")
		require.NoError(t, fs.CreateDirAll(d))
		err := fs.RemoveFile(d)
		require.Error(t, err)
	})

	t.Run("content hash stable across reads", func(t *testing.T) {
		p := filepath.Join(dir, "hashed.txt")
		require.NoError(t, fs.Write(p, []byte("stable content")))
		h1, err := fs.ContentHash(p)
		require.NoError(t, err)
		h2, err := fs.ContentHash(p)
		require.NoError(t, err)
		assert.Equal(t, h1, h2)
	})
}

func TestMock(t *testing.T) {
	t.Run("copy dir merges tree", func(t *testing.T) {
		m := vfs.NewMock()
		m.AddDir("/src")
		m.AddFile("/src/a.txt", "A")
		m.AddFile("/src/sub/b.txt", "B")

		require.NoError(t, m.CopyDir("/src", "/dst"))
		got, err := m.ReadToString("/dst/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "A", got)
		got, err = m.ReadToString("/dst/sub/b.txt")
		require.NoError(t, err)
		assert.Equal(t, "B", got)
	})

	t.Run("copy dir rejects descendant destination", func(t *testing.T) {
		m := vfs.NewMock()
		m.AddDir("/src")
		err := m.CopyDir("/src", "/src/child")
		require.Error(t, err)
	})

	t.Run("remove file on directory fails", func(t *testing.T) {
		m := vfs.NewMock()
		m.AddDir("/d")
		err := m.RemoveFile("/d")
		require.Error(t, err)
	})

	t.Run("read dir lists direct children only", func(t *testing.T) {
		m := vfs.NewMock()
		m.AddDir("/root")
		m.AddFile("/root/a.txt", "a")
		m.AddFile("/root/sub/b.txt", "b")

		entries, err := m.ReadDir("/root")
		require.NoError(t, err)
		require.Len(t, entries, 2)
	})

	t.Run("exists and is_dir follow adds", func(t *testing.T) {
		m := vfs.NewMock()
		m.AddDir("/d")
		m.AddFile("/d/f.txt", "x")
		assert.True(t, m.Exists("/d/f.txt"))
		assert.True(t, m.IsDir("/d"))
		assert.False(t, m.IsDir("/d/f.txt"))
	})
}
