// Package policy decides the new RPATH and interpreter of a relocated ELF
// file. It is pure decision logic: it never writes, and the only filesystem
// question it asks is whether the new prefix ships its own dynamic loader.
//
// The two fields use different substitution contracts:
//
//   - RPATH entries are substituted on their first occurrence of the old
//     prefix and then kept only if they start with the new prefix or the
//     loader-relative token.
//   - The interpreter is substituted on its first occurrence of the old
//     prefix anywhere in the string, with no filtering.
package policy

import (
	"path/filepath"
	"strings"

	"github.com/grafana/regexp"
	"github.com/samber/lo"

	"github.com/crimsonvanitas/brew/pkg/logging"
	"github.com/crimsonvanitas/brew/pkg/types"
)

const (
	// DefaultLoaderToken is the loader-relative RPATH token
	DefaultLoaderToken = "$ORIGIN"
	// DefaultLoaderName is the dynamic loader a relocated prefix may ship in its lib directory
	DefaultLoaderName = "ld.so"
)

var (
	glibcPackage = regexp.MustCompile(`^glibc(@\d[\d.]*)?$`)
	gccPackage   = regexp.MustCompile(`^gcc(@\d[\d.]*)?$`)
	gccLibDir    = regexp.MustCompile(`lib/gcc/\d+$`)
)

// RuntimeLibDirs provides the directory holding the current compiler's
// runtime libraries.
type RuntimeLibDirs interface {
	RuntimeLibDir() string
}

// Options tunes the Engine.
type Options struct {
	LoaderToken string
	LoaderName  string

	// SkipPackages are package names left alone in addition to the
	// built-in exclusions.
	SkipPackages []string
}

// Engine computes relocated dynamic-section values.
type Engine struct {
	fs        types.FS
	toolchain RuntimeLibDirs
	opts      Options
}

// New creates an Engine.
func New(fsys types.FS, toolchain RuntimeLibDirs, opts Options) *Engine {
	if opts.LoaderToken == "" {
		opts.LoaderToken = DefaultLoaderToken
	}
	if opts.LoaderName == "" {
		opts.LoaderName = DefaultLoaderName
	}
	return &Engine{fs: fsys, toolchain: toolchain, opts: opts}
}

// HardSkip reports whether pkg must not be relocated at all, and why.
func (e *Engine) HardSkip(pkg types.Package) (string, bool) {
	switch {
	case glibcPackage.MatchString(pkg.Name):
		return "patching the dynamic loader of glibc breaks it", true
	case pkg.Name == "patchelf":
		return "patchelf cannot patch its own running binary", true
	case lo.Contains(e.opts.SkipPackages, pkg.Name):
		return "excluded by configuration", true
	}
	return "", false
}

// Compute returns the new RPATH and interpreter for file. A nil result
// means the field is absent; callers compare results with the current
// values to decide whether anything changed.
func (e *Engine) Compute(file types.ElfFile, m types.Mapping, pkg types.Package) (newRPath, newInterp *string) {
	newRPath = e.RPath(file.RPath, m, pkg)
	newInterp = e.Interpreter(file.Interpreter, m)

	logger := logging.GetLogger("policy")
	logger.Trace().
		Str("file", file.Path).
		Interface("rpath", newRPath).
		Interface("interpreter", newInterp).
		Msg("Computed relocation")
	return newRPath, newInterp
}

// RPath computes the relocated search path. It never invents a search path
// for a file that had none.
func (e *Engine) RPath(rpath *string, m types.Mapping, pkg types.Package) *string {
	if rpath == nil {
		return nil
	}

	entries := lo.Map(strings.Split(*rpath, ":"), func(entry string, _ int) string {
		return SubstituteFirst(entry, m.Old, m.New)
	})
	entries = lo.Filter(entries, func(entry string, _ int) bool {
		return strings.HasPrefix(entry, m.New) || strings.HasPrefix(entry, e.opts.LoaderToken)
	})
	entries = lo.Uniq(entries)

	ownLib := filepath.Join(m.New, "lib")
	if !lo.Contains(entries, ownLib) {
		entries = append(entries, ownLib)
	}

	if e.toolchain != nil && !gccPackage.MatchString(pkg.Name) && lo.SomeBy(entries, gccLibDir.MatchString) {
		runtime := e.toolchain.RuntimeLibDir()
		entries = append([]string{runtime}, lo.Without(entries, runtime)...)
	}

	return lo.ToPtr(strings.Join(entries, ":"))
}

// Interpreter computes the relocated program interpreter, preferring a
// loader shipped in the new prefix when one is readable.
func (e *Engine) Interpreter(interp *string, m types.Mapping) *string {
	if interp == nil {
		return nil
	}
	loader := filepath.Join(m.New, "lib", e.opts.LoaderName)
	if e.fs != nil && e.fs.Readable(loader) {
		return &loader
	}
	return lo.ToPtr(SubstituteFirst(*interp, m.Old, m.New))
}

// SubstituteFirst replaces the first occurrence of old in s with repl.
func SubstituteFirst(s, old, repl string) string {
	if old == "" {
		return s
	}
	return strings.Replace(s, old, repl, 1)
}
