package fsutil

import "io"

// File is an open document. PDF parsing needs random access, text
// loaders only read sequentially.
type File interface {
	io.Reader
	io.ReaderAt
	io.Closer
}

// FileStore provides an interface for file system operations
type FileStore interface {
	// Open opens a file for reading and reports its size
	Open(path string) (File, int64, error)

	// ListFiles walks root recursively and returns regular file paths
	// relative to root, sorted lexically
	ListFiles(root string) ([]string, error)

	// GetFileStats returns the total count and size of files in a directory
	GetFileStats(path string) (count int, size int64, err error)
}
