package vfs

import (
	"hash/fnv"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ruminaider/plm/internal/errs"
)

type mockEntry struct {
	content []byte
	mtime   time.Time
	ftype   FileType
}

// Mock is an in-memory FS double keyed by a flat path->entry map, mirroring
// the original implementation's MockFs test double.
type Mock struct {
	mu      sync.RWMutex
	entries map[string]mockEntry
	clock   time.Time
}

func NewMock() *Mock {
	return &Mock{entries: make(map[string]mockEntry), clock: time.Unix(1700000000, 0)}
}

func (m *Mock) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func clean(path string) string { return filepath.ToSlash(filepath.Clean(path)) }

// AddFile seeds a text file.
func (m *Mock) AddFile(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[clean(path)] = mockEntry{content: []byte(content), mtime: m.tick(), ftype: File}
}

// AddFileBytes seeds a binary file.
func (m *Mock) AddFileBytes(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[clean(path)] = mockEntry{content: content, mtime: m.tick(), ftype: File}
}

// AddDir seeds an (otherwise empty) directory marker.
func (m *Mock) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[clean(path)] = mockEntry{mtime: m.tick(), ftype: Dir}
}

// AddSymlink seeds a symlink marker.
func (m *Mock) AddSymlink(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[clean(path)] = mockEntry{mtime: m.tick(), ftype: Symlink}
}

func (m *Mock) CopyFile(src, dst string) error {
	src, dst = clean(src), clean(dst)
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[src]
	if !ok {
		return errs.New(errs.IO, "vfs.Mock.CopyFile", notFound(src))
	}
	m.entries[dst] = mockEntry{content: append([]byte(nil), e.content...), mtime: m.tick(), ftype: File}
	return nil
}

func (m *Mock) CopyDir(src, dst string) error {
	src, dst = clean(src), clean(dst)
	if dst == src || strings.HasPrefix(dst, src+"/") {
		return errs.New(errs.IO, "vfs.Mock.CopyDir",
			notFound("cannot copy directory into itself or its subdirectory"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	type pending struct {
		path  string
		entry mockEntry
	}
	var toAdd []pending
	prefix := src + "/"
	for path, e := range m.entries {
		if path == src {
			toAdd = append(toAdd, pending{dst, mockEntry{content: e.content, ftype: e.ftype}})
			continue
		}
		if strings.HasPrefix(path, prefix) {
			rel := strings.TrimPrefix(path, src)
			toAdd = append(toAdd, pending{dst + rel, mockEntry{content: e.content, ftype: e.ftype}})
		}
	}
	for _, p := range toAdd {
		p.entry.mtime = m.tick()
		m.entries[p.path] = p.entry
	}
	return nil
}

func (m *Mock) Remove(path string) error {
	path = clean(path)
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := path + "/"
	for k := range m.entries {
		if k == path || strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *Mock) RemoveFile(path string) error {
	path = clean(path)
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[path]
	if !ok {
		return nil
	}
	if e.ftype == Dir {
		return errs.New(errs.IO, "vfs.Mock.RemoveFile", notFound(path+" is a directory"))
	}
	delete(m.entries, path)
	return nil
}

func (m *Mock) RemoveDirAll(path string) error { return m.Remove(path) }

func (m *Mock) Rename(src, dst string) error {
	src, dst = clean(src), clean(dst)
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := src + "/"
	moved := false
	for k, e := range m.entries {
		if k == src {
			m.entries[dst] = e
			delete(m.entries, k)
			moved = true
			continue
		}
		if strings.HasPrefix(k, prefix) {
			newKey := dst + strings.TrimPrefix(k, src)
			m.entries[newKey] = e
			delete(m.entries, k)
			moved = true
		}
	}
	if !moved {
		return errs.New(errs.IO, "vfs.Mock.Rename", notFound(src))
	}
	return nil
}

func (m *Mock) Exists(path string) bool {
	path = clean(path)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.entries[path]; ok {
		return true
	}
	return m.hasDescendantLocked(path)
}

func (m *Mock) IsDir(path string) bool {
	path = clean(path)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[path]; ok {
		return e.ftype == Dir
	}
	// A directory with no explicit marker still "exists" as a directory
	// if any entry is nested under it (an implied intermediate directory).
	return m.hasDescendantLocked(path)
}

// hasDescendantLocked reports whether any entry's key is nested under
// path, i.e. path is an implied intermediate directory even though it was
// never explicitly added. Caller must hold m.mu.
func (m *Mock) hasDescendantLocked(path string) bool {
	prefix := path + "/"
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

func (m *Mock) CreateDirAll(path string) error {
	m.AddDir(path)
	return nil
}

func (m *Mock) Mtime(path string) (time.Time, error) {
	path = clean(path)
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[path]
	if !ok {
		return time.Time{}, errs.New(errs.IO, "vfs.Mock.Mtime", notFound(path))
	}
	return e.mtime, nil
}

func (m *Mock) ContentHash(path string) (uint64, error) {
	path = clean(path)
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[path]
	if !ok {
		return 0, errs.New(errs.IO, "vfs.Mock.ContentHash", notFound(path))
	}
	h := fnv.New64a()
	h.Write(e.content)
	return h.Sum64(), nil
}

func (m *Mock) ReadToString(path string) (string, error) {
	path = clean(path)
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[path]
	if !ok {
		return "", errs.New(errs.IO, "vfs.Mock.ReadToString", notFound(path))
	}
	return string(e.content), nil
}

func (m *Mock) Write(path string, content []byte) error {
	path = clean(path)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[path] = mockEntry{content: append([]byte(nil), content...), mtime: m.tick(), ftype: File}
	return nil
}

func (m *Mock) ReadDir(path string) ([]DirEntry, error) {
	path = clean(path)
	m.mu.RLock()
	defer m.mu.RUnlock()

	if e, ok := m.entries[path]; ok && e.ftype != Dir {
		return nil, errs.New(errs.IO, "vfs.Mock.ReadDir", notFound(path+" is not a directory"))
	}

	prefix := path + "/"
	seen := map[string]FileType{}
	for k, e := range m.entries {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rel := strings.TrimPrefix(k, prefix)
		if rel == "" {
			continue
		}
		name := strings.SplitN(rel, "/", 2)[0]
		if strings.Contains(rel, "/") {
			seen[name] = Dir
			continue
		}
		if _, already := seen[name]; !already {
			seen[name] = e.ftype
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]DirEntry, 0, len(names))
	for _, name := range names {
		out = append(out, DirEntry{Path: path + "/" + name, Type: seen[name]})
	}
	return out, nil
}

type notFound string

func (n notFound) Error() string { return string(n) }
