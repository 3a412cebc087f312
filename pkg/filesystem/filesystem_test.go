package filesystem

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOS(t *testing.T) {
	fsys := NewOS()
	assert.NotNil(t, fsys)

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "lib", "libz.so.1")
	require.NoError(t, os.MkdirAll(filepath.Dir(testFile), 0755))
	require.NoError(t, os.WriteFile(testFile, []byte("hello world"), 0644))

	info, err := fsys.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, "libz.so.1", info.Name())

	f, err := fsys.Open(testFile)
	require.NoError(t, err)
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "hello world", string(content))

	assert.True(t, fsys.Readable(testFile))
	assert.False(t, fsys.Readable(filepath.Join(tmpDir, "missing")))

	require.NoError(t, fsys.Chmod(testFile, 0444))
	info, err = fsys.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0444), info.Mode().Perm())
}

func TestOSLstatDoesNotFollowSymlinks(t *testing.T) {
	fsys := NewOS()
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "libz.so.1.3")
	link := filepath.Join(tmpDir, "libz.so")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))
	require.NoError(t, os.Symlink(target, link))

	info, err := fsys.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&fs.ModeSymlink)
}

func TestOSWalkDir(t *testing.T) {
	fsys := NewOS()
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "bin", "tool"), []byte("x"), 0755))

	var seen []string
	err := fsys.WalkDir(tmpDir, func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		rel, _ := filepath.Rel(tmpDir, path)
		seen = append(seen, rel)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{".", "bin", filepath.Join("bin", "tool")}, seen)
}

func TestAferoFS(t *testing.T) {
	mem := afero.NewMemMapFs()
	fsys := NewAferoFS(mem)

	require.NoError(t, mem.MkdirAll("/keg/lib", 0755))
	require.NoError(t, afero.WriteFile(mem, "/keg/lib/ld.so", []byte("loader"), 0755))
	require.NoError(t, afero.WriteFile(mem, "/keg/lib/secret", []byte("x"), 0200))

	t.Run("readable", func(t *testing.T) {
		assert.True(t, fsys.Readable("/keg/lib/ld.so"))
		assert.False(t, fsys.Readable("/keg/lib/secret"))
		assert.False(t, fsys.Readable("/keg/lib"))
		assert.False(t, fsys.Readable("/keg/lib/missing"))
	})

	t.Run("open and read at", func(t *testing.T) {
		f, err := fsys.Open("/keg/lib/ld.so")
		require.NoError(t, err)
		defer f.Close()

		buf := make([]byte, 3)
		_, err = f.ReadAt(buf, 3)
		require.NoError(t, err)
		assert.Equal(t, "der", string(buf))
	})

	t.Run("chmod", func(t *testing.T) {
		require.NoError(t, fsys.Chmod("/keg/lib/secret", 0600))
		assert.True(t, fsys.Readable("/keg/lib/secret"))
	})

	t.Run("walk", func(t *testing.T) {
		var files []string
		err := fsys.WalkDir("/keg", func(path string, d fs.DirEntry, err error) error {
			require.NoError(t, err)
			if !d.IsDir() {
				files = append(files, path)
			}
			return nil
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"/keg/lib/ld.so", "/keg/lib/secret"}, files)
	})
}
