package filesystem

import (
	"io"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo.
type FileInfo = fs.FileInfo

// FileSystemProvider opens source files by path.
type FileSystemProvider interface {
	// Open returns a reader for the file at path. The caller closes it.
	Open(path string) (io.ReadCloser, error)

	// Stat returns file information for the given path.
	Stat(path string) (FileInfo, error)
}
