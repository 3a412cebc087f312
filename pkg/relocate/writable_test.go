package relocate

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimsonvanitas/brew/pkg/errors"
	"github.com/crimsonvanitas/brew/pkg/filesystem"
)

func modeOf(t *testing.T, mem afero.Fs, path string) fs.FileMode {
	t.Helper()
	info, err := mem.Stat(path)
	require.NoError(t, err)
	return info.Mode().Perm()
}

func TestEnsureWritable(t *testing.T) {
	mem := afero.NewMemMapFs()
	fsys := filesystem.NewAferoFS(mem)
	require.NoError(t, afero.WriteFile(mem, "/keg/bin/tool", []byte("x"), 0555))
	require.NoError(t, mem.Chmod("/keg/bin/tool", 0555))

	t.Run("grants owner write inside the scope", func(t *testing.T) {
		err := EnsureWritable(fsys, "/keg/bin/tool", 0555, func() error {
			assert.Equal(t, fs.FileMode(0755), modeOf(t, mem, "/keg/bin/tool"))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, fs.FileMode(0555), modeOf(t, mem, "/keg/bin/tool"))
	})

	t.Run("restores after failure", func(t *testing.T) {
		boom := errors.New(errors.ErrPatchTooLong, "too long")
		err := EnsureWritable(fsys, "/keg/bin/tool", 0555, func() error { return boom })
		assert.Same(t, boom, err)
		assert.Equal(t, fs.FileMode(0555), modeOf(t, mem, "/keg/bin/tool"))
	})

	t.Run("restores after panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = EnsureWritable(fsys, "/keg/bin/tool", 0555, func() error { panic("interrupted") })
		})
		assert.Equal(t, fs.FileMode(0555), modeOf(t, mem, "/keg/bin/tool"))
	})

	t.Run("already writable files are not touched", func(t *testing.T) {
		fsys := &chmodFS{FS: fsys, failOn: 1}
		called := false
		err := EnsureWritable(fsys, "/keg/bin/tool", 0755, func() error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
		assert.Zero(t, fsys.calls)
	})

	t.Run("restore failure wins over the callback error", func(t *testing.T) {
		fsys := &chmodFS{FS: fsys, failOn: 2}
		err := EnsureWritable(fsys, "/keg/bin/tool", 0555, func() error {
			return stderrors.New("write failed")
		})
		assert.True(t, errors.IsErrorCode(err, errors.ErrPermissionRestore))
		assert.Equal(t, "write failed", errors.GetErrorDetails(err)["cause"])
	})
}
