package vfs

import (
	"bytes"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// normalizePath normalizes a path for consistent storage/lookup
// It removes leading slashes and cleans the path
func normalizePath(name string) string {
	name = filepath.Clean(name)
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, string(filepath.Separator))
	if name == "" {
		name = "."
	}
	return name
}

// MemFS is a simple in-memory filesystem for testing
type MemFS struct {
	files map[string]*memEntry
	mu    sync.RWMutex
}

// NewMemFS creates a new in-memory filesystem
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string]*memEntry),
	}
}

type memEntry struct {
	name    string
	data    []byte
	modTime time.Time
}

// Open opens a file for reading. Later writes to the same name do not affect
// the returned handle.
func (mfs *MemFS) Open(name string) (File, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	name = normalizePath(name)
	entry, exists := mfs.files[name]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	return &memFile{
		mfs:     mfs,
		name:    name,
		reader:  bytes.NewReader(entry.data),
		size:    int64(len(entry.data)),
		modTime: entry.modTime,
	}, nil
}

// Create creates or truncates a file. Written data becomes visible to
// Open when the handle is closed.
func (mfs *MemFS) Create(name string) (File, error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = normalizePath(name)
	if name == "." {
		return nil, &fs.PathError{Op: "create", Path: name, Err: fs.ErrInvalid}
	}
	mfs.files[name] = &memEntry{name: name, modTime: time.Now()}

	return &memFile{
		mfs:      mfs,
		name:     name,
		writable: true,
		modTime:  time.Now(),
	}, nil
}

// Stat describes a file.
func (mfs *MemFS) Stat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	name = normalizePath(name)
	entry, exists := mfs.files[name]
	if !exists {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}

	return &memFileInfo{
		name:    filepath.Base(entry.name),
		size:    int64(len(entry.data)),
		modTime: entry.modTime,
	}, nil
}

// WriteString stores content under name, replacing any existing file.
func (mfs *MemFS) WriteString(name, content string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = normalizePath(name)
	mfs.files[name] = &memEntry{name: name, data: []byte(content), modTime: time.Now()}
}

// ReadString returns the content stored under name.
func (mfs *MemFS) ReadString(name string) (string, bool) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	entry, exists := mfs.files[normalizePath(name)]
	if !exists {
		return "", false
	}
	return string(entry.data), true
}

type memFile struct {
	mfs      *MemFS
	name     string
	reader   *bytes.Reader
	buf      bytes.Buffer
	writable bool
	size     int64
	modTime  time.Time
	closed   bool
	mu       sync.Mutex
}

func (mf *memFile) Read(p []byte) (n int, err error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if mf.closed {
		return 0, fs.ErrClosed
	}
	if mf.reader == nil {
		return 0, io.EOF
	}
	return mf.reader.Read(p)
}

func (mf *memFile) Write(p []byte) (n int, err error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if mf.closed {
		return 0, fs.ErrClosed
	}
	if !mf.writable {
		return 0, &fs.PathError{Op: "write", Path: mf.name, Err: fs.ErrPermission}
	}

	n, err = mf.buf.Write(p)
	mf.size = int64(mf.buf.Len())
	mf.modTime = time.Now()
	return n, err
}

func (mf *memFile) Close() error {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if mf.closed {
		return nil
	}
	mf.closed = true

	if mf.writable {
		mf.mfs.mu.Lock()
		mf.mfs.files[mf.name] = &memEntry{
			name:    mf.name,
			data:    append([]byte(nil), mf.buf.Bytes()...),
			modTime: mf.modTime,
		}
		mf.mfs.mu.Unlock()
	}
	return nil
}

func (mf *memFile) Stat() (fs.FileInfo, error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	return &memFileInfo{
		name:    filepath.Base(mf.name),
		size:    mf.size,
		modTime: mf.modTime,
	}, nil
}

// memFileInfo implements fs.FileInfo
type memFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (fi *memFileInfo) Name() string       { return fi.name }
func (fi *memFileInfo) Size() int64        { return fi.size }
func (fi *memFileInfo) Mode() fs.FileMode  { return 0o644 }
func (fi *memFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *memFileInfo) IsDir() bool        { return false }
func (fi *memFileInfo) Sys() any           { return nil }
