package relocate

import (
	"io/fs"

	"github.com/crimsonvanitas/brew/pkg/errors"
	"github.com/crimsonvanitas/brew/pkg/logging"
	"github.com/crimsonvanitas/brew/pkg/types"
)

const (
	ownerWrite fs.FileMode = 0o200
	modeBits               = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky
)

// EnsureWritable runs fn with the owner write bit set on path. mode is the
// file's current mode; it is restored on every exit path, including a panic
// in fn. A failed restore is reported as PERMISSION_RESTORE and takes
// precedence over fn's own error.
func EnsureWritable(fsys types.FS, path string, mode fs.FileMode, fn func() error) (err error) {
	if mode&ownerWrite != 0 {
		return fn()
	}

	original := mode & modeBits
	if cerr := fsys.Chmod(path, original|ownerWrite); cerr != nil {
		return errors.Wrapf(cerr, errors.ErrNotWritable, "cannot make %s writable", path).
			WithDetail("path", path)
	}

	defer func() {
		rerr := fsys.Chmod(path, original)
		if rerr == nil {
			return
		}
		restoreErr := errors.Wrapf(rerr, errors.ErrPermissionRestore, "cannot restore mode %v of %s", original, path).
			WithDetail("path", path).
			WithDetail("mode", original.String())
		if err != nil {
			restoreErr = restoreErr.WithDetail("cause", err.Error())
		}
		logger := logging.GetLogger("relocate")
		logger.Error().Err(rerr).Str("path", path).Msg("Permission restore failed")
		err = restoreErr
	}()

	return fn()
}
