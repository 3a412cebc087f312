// TEST TYPE: Unit Test
// DEPENDENCIES: afero in-memory filesystem
// PURPOSE: Verify RPATH and interpreter decisions and package exclusions
package policy

import (
	"testing"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimsonvanitas/brew/pkg/filesystem"
	"github.com/crimsonvanitas/brew/pkg/types"
)

type staticRuntime string

func (s staticRuntime) RuntimeLibDir() string { return string(s) }

const runtimeDir = "/opt/gcc/lib/gcc/current"

var (
	mapping = types.Mapping{Old: "/old", New: "/new"}
	zlib    = types.Package{Name: "zlib", Root: "/new/Cellar/zlib/1.3"}
)

func newEngine(t *testing.T, files ...string) *Engine {
	t.Helper()
	mem := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(mem, f, []byte("loader"), 0755))
	}
	return New(filesystem.NewAferoFS(mem), staticRuntime(runtimeDir), Options{})
}

func TestRPath(t *testing.T) {
	tests := []struct {
		name  string
		pkg   types.Package
		rpath *string
		want  *string
	}{
		{
			name: "absent stays absent",
			pkg:  zlib,
		},
		{
			name:  "compiler runtime injected ahead of versioned gcc entry",
			pkg:   zlib,
			rpath: lo.ToPtr("/old/lib/gcc/12"),
			want:  lo.ToPtr("/opt/gcc/lib/gcc/current:/new/lib/gcc/12:/new/lib"),
		},
		{
			name:  "unrelated entries dropped and own lib not duplicated",
			pkg:   zlib,
			rpath: lo.ToPtr("/old/lib:/other/unrelated"),
			want:  lo.ToPtr("/new/lib"),
		},
		{
			name:  "loader-relative entries preserved in place",
			pkg:   zlib,
			rpath: lo.ToPtr("$ORIGIN/../lib:/old/opt/openssl/lib"),
			want:  lo.ToPtr("$ORIGIN/../lib:/new/opt/openssl/lib:/new/lib"),
		},
		{
			name:  "duplicate entries collapse",
			pkg:   zlib,
			rpath: lo.ToPtr("/old/lib:/new/lib:/old/lib"),
			want:  lo.ToPtr("/new/lib"),
		},
		{
			name:  "gcc itself gets no runtime injection",
			pkg:   types.Package{Name: "gcc", Root: "/new/Cellar/gcc/12.3.0"},
			rpath: lo.ToPtr("/old/lib/gcc/12"),
			want:  lo.ToPtr("/new/lib/gcc/12:/new/lib"),
		},
		{
			name:  "versioned gcc gets no runtime injection",
			pkg:   types.Package{Name: "gcc@11", Root: "/new/Cellar/gcc@11/11.4.0"},
			rpath: lo.ToPtr("/old/lib/gcc/11"),
			want:  lo.ToPtr("/new/lib/gcc/11:/new/lib"),
		},
		{
			name:  "empty rpath becomes own lib",
			pkg:   zlib,
			rpath: lo.ToPtr(""),
			want:  lo.ToPtr("/new/lib"),
		},
	}

	e := newEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.RPath(tt.rpath, mapping, tt.pkg)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRPathDoesNotDuplicateInjectedRuntime(t *testing.T) {
	e := New(nil, staticRuntime("/new/opt/gcc/lib/gcc/current"), Options{})
	got := e.RPath(lo.ToPtr("/old/opt/gcc/lib/gcc/current:/old/lib/gcc/12"), mapping, zlib)
	assert.Equal(t, "/new/opt/gcc/lib/gcc/current:/new/lib/gcc/12:/new/lib", *got)
}

func TestRPathMovesExistingRuntimeToFront(t *testing.T) {
	e := New(nil, staticRuntime("/new/opt/gcc/lib/gcc/current"), Options{})
	got := e.RPath(lo.ToPtr("/old/lib/gcc/12:/old/opt/gcc/lib/gcc/current"), mapping, zlib)
	assert.Equal(t, "/new/opt/gcc/lib/gcc/current:/new/lib/gcc/12:/new/lib", *got)

	again := e.RPath(got, mapping, zlib)
	assert.Equal(t, *got, *again)
}

func TestRPathIsIdempotent(t *testing.T) {
	e := newEngine(t)
	inputs := []string{
		"/old/lib/gcc/12",
		"/old/lib:/other/unrelated",
		"$ORIGIN:/old/opt/icu4c/lib",
		"/old/lib/gcc/12:$ORIGIN/../lib:/old/lib/gcc/12",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			once := e.RPath(&in, mapping, zlib)
			twice := e.RPath(once, mapping, zlib)
			assert.Equal(t, *once, *twice)
		})
	}
}

func TestRPathSubstitutesFirstOccurrenceOnly(t *testing.T) {
	e := newEngine(t)
	got := e.RPath(lo.ToPtr("/old/share/old/lib"), mapping, zlib)
	assert.Equal(t, "/new/share/old/lib:/new/lib", *got)
}

func TestInterpreter(t *testing.T) {
	t.Run("absent stays absent", func(t *testing.T) {
		assert.Nil(t, newEngine(t).Interpreter(nil, mapping))
	})

	t.Run("prefix substitution", func(t *testing.T) {
		got := newEngine(t).Interpreter(lo.ToPtr("/old/lib/ld-linux-x86-64.so.2"), mapping)
		assert.Equal(t, "/new/lib/ld-linux-x86-64.so.2", *got)
	})

	t.Run("substitutes anywhere in the string", func(t *testing.T) {
		got := newEngine(t).Interpreter(lo.ToPtr("/chroot/old/lib/ld.so.1"), mapping)
		assert.Equal(t, "/chroot/new/lib/ld.so.1", *got)
	})

	t.Run("unrelated interpreter is left as is", func(t *testing.T) {
		got := newEngine(t).Interpreter(lo.ToPtr("/lib64/ld-linux-x86-64.so.2"), mapping)
		assert.Equal(t, "/lib64/ld-linux-x86-64.so.2", *got)
	})

	t.Run("readable loader in new prefix wins", func(t *testing.T) {
		e := newEngine(t, "/new/lib/ld.so")
		got := e.Interpreter(lo.ToPtr("/lib64/ld-linux-x86-64.so.2"), mapping)
		assert.Equal(t, "/new/lib/ld.so", *got)
	})

	t.Run("unreadable loader is ignored", func(t *testing.T) {
		mem := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(mem, "/new/lib/ld.so", []byte("loader"), 0o000))
		e := New(filesystem.NewAferoFS(mem), staticRuntime(runtimeDir), Options{})
		got := e.Interpreter(lo.ToPtr("/old/lib/ld.so"), mapping)
		assert.Equal(t, "/new/lib/ld.so", *got)

		got = e.Interpreter(lo.ToPtr("/lib/ld-musl.so"), mapping)
		assert.Equal(t, "/lib/ld-musl.so", *got)
	})

	t.Run("configured loader name", func(t *testing.T) {
		mem := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(mem, "/new/lib/ld-linux.so.2", []byte("loader"), 0755))
		e := New(filesystem.NewAferoFS(mem), nil, Options{LoaderName: "ld-linux.so.2"})
		got := e.Interpreter(lo.ToPtr("/lib/ld-linux.so.2"), mapping)
		assert.Equal(t, "/new/lib/ld-linux.so.2", *got)
	})
}

func TestCompute(t *testing.T) {
	e := newEngine(t)
	file := types.ElfFile{
		Candidate:   types.Candidate{Path: "/new/Cellar/zlib/1.3/lib/libz.so.1"},
		Kind:        types.KindDynamicELF,
		RPath:       lo.ToPtr("/old/lib"),
		Interpreter: nil,
	}

	rpath, interp := e.Compute(file, mapping, zlib)
	assert.Equal(t, "/new/lib", *rpath)
	assert.Nil(t, interp)
}

func TestHardSkip(t *testing.T) {
	e := New(nil, nil, Options{SkipPackages: []string{"valgrind"}})

	tests := []struct {
		name string
		skip bool
	}{
		{"glibc", true},
		{"glibc@2.35", true},
		{"glibc@2", true},
		{"patchelf", true},
		{"valgrind", true},
		{"glibc-utils", false},
		{"patchelf@0.18", false},
		{"zlib", false},
		{"gcc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, skip := e.HardSkip(types.Package{Name: tt.name, Root: "/x"})
			assert.Equal(t, tt.skip, skip)
			if tt.skip {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestSubstituteFirst(t *testing.T) {
	assert.Equal(t, "/b/a", SubstituteFirst("/a/a", "/a", "/b"))
	assert.Equal(t, "x/b/y", SubstituteFirst("x/a/y", "/a", "/b"))
	assert.Equal(t, "/a", SubstituteFirst("/a", "", "/b"))
	assert.Equal(t, "/c", SubstituteFirst("/c", "/a", "/b"))
}
