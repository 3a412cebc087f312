package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/crimsonvanitas/brew/pkg/types"
	"golang.org/x/sys/unix"
)

// osFS implements types.FS using the OS filesystem
type osFS struct{}

// NewOS creates a new OS filesystem implementation
func NewOS() types.FS {
	return &osFS{}
}

func (o *osFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (o *osFS) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

func (o *osFS) Open(name string) (types.File, error) {
	return os.Open(name)
}

// Readable uses access(2) so that ACLs and the effective uid are honoured,
// the same check a dynamic loader path would pass.
func (o *osFS) Readable(name string) bool {
	return unix.Access(name, unix.R_OK) == nil
}

func (o *osFS) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(name, mode)
}

func (o *osFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}
