// Package discover enumerates the relocation candidates below an installed
// package root: regular files that look like shared libraries by name or
// executables by permission. Symlinks and directories are never yielded.
package discover

import (
	"errors"
	"io/fs"
	"iter"
	"syscall"

	"github.com/crimsonvanitas/brew/pkg/classify"
	"github.com/crimsonvanitas/brew/pkg/types"
)

var errStop = errors.New("stop walking")

// Walk lazily yields candidates in lexical order. Entries that cannot be
// read are yielded with their error and the walk continues.
func Walk(fsys types.FS, root string) iter.Seq2[types.Candidate, error] {
	return func(yield func(types.Candidate, error) bool) {
		err := fsys.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(types.Candidate{Path: path}, err) {
					return errStop
				}
				return nil
			}
			// directories, symlinks, devices, sockets
			if !d.Type().IsRegular() {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				if !yield(types.Candidate{Path: path}, err) {
					return errStop
				}
				return nil
			}

			c := types.Candidate{
				Path: path,
				Mode: info.Mode(),
				Role: classify.RoleOf(d.Name(), info.Mode()),
			}
			if c.Role == types.RoleOther {
				return nil
			}
			c.ID, c.HasID = FileID(info)

			if !yield(c, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield(types.Candidate{Path: root}, err)
		}
	}
}

// FileID extracts the device and inode numbers from info when the
// underlying filesystem provides them.
func FileID(info fs.FileInfo) (types.FileID, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok || st == nil {
		return types.FileID{}, false
	}
	return types.FileID{Dev: uint64(st.Dev), Ino: uint64(st.Ino)}, true
}
