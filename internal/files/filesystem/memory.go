package filesystem

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sync"
	"time"
)

type memoryFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return 0o644 }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return false }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// MemoryFileSystem is an in-memory FileSystemProvider for tests.
// Relative paths are resolved against root; separators are normalized to "/".
type MemoryFileSystem struct {
	root  string
	mu    sync.RWMutex
	files map[string][]byte
	times map[string]time.Time
}

func NewMemoryFileSystem(root string) *MemoryFileSystem {
	return &MemoryFileSystem{
		root:  path.Clean(filepath.ToSlash(root)),
		files: make(map[string][]byte),
		times: make(map[string]time.Time),
	}
}

// AddFile creates or replaces a file.
func (m *MemoryFileSystem) AddFile(name, content string) {
	key := m.key(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = []byte(content)
	m.times[key] = time.Now()
}

// RemoveFile deletes a file; removing a missing file is a no-op.
func (m *MemoryFileSystem) RemoveFile(name string) {
	key := m.key(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	delete(m.times, key)
}

func (m *MemoryFileSystem) Open(name string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[m.key(name)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryFileSystem) Stat(name string) (FileInfo, error) {
	key := m.key(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[key]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return &memoryFileInfo{name: path.Base(key), size: int64(len(data)), modTime: m.times[key]}, nil
}

func (m *MemoryFileSystem) key(name string) string {
	name = filepath.ToSlash(name)
	if !path.IsAbs(name) {
		name = path.Join(m.root, name)
	}
	return path.Clean(name)
}
