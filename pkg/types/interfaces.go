package types

import (
	"io"
	"io/fs"
)

// File is an open file as returned by FS.Open. ELF parsing needs random
// access, so plain readers are not enough.
type File interface {
	io.Reader
	io.ReaderAt
	io.Closer
}

// FS is the filesystem interface required for relocation operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	Open(name string) (File, error)

	// Readable reports whether name exists and the current user may read it.
	Readable(name string) bool

	// Chmod changes the permission bits of name.
	Chmod(name string, mode fs.FileMode) error

	// WalkDir walks the tree rooted at root in lexical order, without
	// following symlinks.
	WalkDir(root string, fn fs.WalkDirFunc) error
}
