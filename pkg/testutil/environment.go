// pkg/testutil/environment.go
// DEPENDENCIES: afero for the memory environment
// PURPOSE: Build keg directory trees for relocation tests

package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/crimsonvanitas/brew/pkg/filesystem"
	"github.com/crimsonvanitas/brew/pkg/types"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in temp directory
)

// MemoryKegRoot is the keg root of every memory environment.
const MemoryKegRoot = "/keg"

// KegEnvironment is an installed keg for tests.
//
// In a memory environment files live in Mem and their dynamic sections are
// registered with Accessor, so no ELF parsing is involved past
// classification. In an isolated environment files are real ELF images and
// callers pair FS with the real accessor.
type KegEnvironment struct {
	Root string
	FS   types.FS
	Type EnvType

	// Memory only
	Mem      afero.Fs
	Accessor *FakeAccessor

	t testing.TB
}

// NewKegEnvironment creates a new test environment
func NewKegEnvironment(t testing.TB, envType EnvType) *KegEnvironment {
	t.Helper()

	env := &KegEnvironment{t: t, Type: envType}
	switch envType {
	case EnvMemoryOnly:
		env.Root = MemoryKegRoot
		env.Mem = afero.NewMemMapFs()
		env.FS = filesystem.NewAferoFS(env.Mem)
		env.Accessor = NewFakeAccessor()
		require.NoError(t, env.Mem.MkdirAll(env.Root, 0755))
	case EnvIsolated:
		env.Root = filepath.Join(t.TempDir(), "Cellar", "keg", "1.0")
		env.FS = filesystem.NewOS()
		require.NoError(t, os.MkdirAll(env.Root, 0755))
	}
	return env
}

// Path returns the absolute path of rel inside the keg.
func (env *KegEnvironment) Path(rel string) string {
	return filepath.Join(env.Root, rel)
}

// Package returns the keg as a package called name.
func (env *KegEnvironment) Package(name string) types.Package {
	return types.Package{Name: name, Root: env.Root}
}

// AddELF writes the image described by spec at rel with exactly perm.
func (env *KegEnvironment) AddELF(rel string, perm fs.FileMode, spec ELFSpec) string {
	env.t.Helper()
	path := env.Path(rel)

	if env.Type == EnvIsolated {
		return WriteELF(env.t, path, spec, perm)
	}

	env.AddFile(rel, perm, BuildELF(spec))
	if !spec.Static {
		env.Accessor.Sections[path] = SectionOf(spec)
	}
	return path
}

// AddFile writes content at rel with exactly perm.
func (env *KegEnvironment) AddFile(rel string, perm fs.FileMode, content []byte) string {
	env.t.Helper()
	path := env.Path(rel)

	if env.Type == EnvIsolated {
		require.NoError(env.t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(env.t, os.WriteFile(path, content, perm))
		require.NoError(env.t, os.Chmod(path, perm))
		return path
	}

	require.NoError(env.t, afero.WriteFile(env.Mem, path, content, perm))
	require.NoError(env.t, env.Mem.Chmod(path, perm))
	return path
}

// Mode returns the permission bits of rel.
func (env *KegEnvironment) Mode(rel string) fs.FileMode {
	env.t.Helper()
	info, err := env.FS.Stat(env.Path(rel))
	require.NoError(env.t, err)
	return info.Mode().Perm()
}

// SectionOf returns the dynamic section an image built from spec carries.
func SectionOf(spec ELFSpec) *types.DynamicSection {
	dyn := &types.DynamicSection{
		RPath:   copyPtr(spec.RPath),
		RunPath: copyPtr(spec.RunPath),
		Needed:  append([]string(nil), spec.Needed...),
	}
	if spec.Interpreter != "" {
		interp := spec.Interpreter
		dyn.Interpreter = &interp
	}
	if spec.SOName != "" {
		soname := spec.SOName
		dyn.SOName = &soname
	}
	return dyn
}

func copyPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
