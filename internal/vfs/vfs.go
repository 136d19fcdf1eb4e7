// Package vfs is the small file system surface the vpnurl command reads
// input from and writes output to. OS returns the real file system; NewMemFS
// returns an in-memory one for tests.
package vfs

import (
	"io"
	"io/fs"
	"os"
)

// FileSystem interface used by the command's input provider and output sink
type FileSystem interface {
	Open(name string) (File, error)
	Create(name string) (File, error)
	Stat(name string) (fs.FileInfo, error)
}

// File is an open file
type File interface {
	io.Reader
	io.Writer
	io.Closer
	Stat() (fs.FileInfo, error)
}

// OS returns the host file system.
func OS() FileSystem { return osFS{} }

type osFS struct{}

func (osFS) Open(name string) (File, error)        { return os.Open(name) }
func (osFS) Create(name string) (File, error)      { return os.Create(name) }
func (osFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

// ReadFile reads the whole named file.
func ReadFile(fsys FileSystem, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// WriteFile creates or truncates the named file and writes data to it.
func WriteFile(fsys FileSystem, name string, data []byte) error {
	f, err := fsys.Create(name)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
