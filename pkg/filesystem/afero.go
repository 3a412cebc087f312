package filesystem

import (
	"io/fs"
	"os"

	"github.com/crimsonvanitas/brew/pkg/types"
	"github.com/spf13/afero"
)

// aferoFS implements types.FS using afero
type aferoFS struct {
	fs afero.Fs
}

// NewAferoFS creates a new afero filesystem implementation
func NewAferoFS(fs afero.Fs) types.FS {
	return &aferoFS{fs: fs}
}

func (a *aferoFS) Stat(name string) (fs.FileInfo, error) {
	return a.fs.Stat(name)
}

func (a *aferoFS) Lstat(name string) (fs.FileInfo, error) {
	// Afero's Lstat is only available on some backends.
	// For MemMapFs, Stat is sufficient.
	if lstater, ok := a.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(name)
		return info, err
	}
	return a.fs.Stat(name)
}

func (a *aferoFS) Open(name string) (types.File, error) {
	return a.fs.Open(name)
}

// Readable approximates access(2) with the owner read bit, which is what
// the in-memory backends track.
func (a *aferoFS) Readable(name string) bool {
	info, err := a.fs.Stat(name)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0400 != 0
}

func (a *aferoFS) Chmod(name string, mode fs.FileMode) error {
	return a.fs.Chmod(name, mode)
}

func (a *aferoFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	return afero.Walk(a.fs, root, func(path string, info os.FileInfo, err error) error {
		var entry fs.DirEntry
		if info != nil {
			entry = fs.FileInfoToDirEntry(info)
		}
		return fn(path, entry, err)
	})
}
