// Package inspect answers read-only questions about the shared libraries a
// package's ELF files are linked against.
package inspect

import (
	"context"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/crimsonvanitas/brew/pkg/classify"
	"github.com/crimsonvanitas/brew/pkg/discover"
	"github.com/crimsonvanitas/brew/pkg/elfpatch"
	"github.com/crimsonvanitas/brew/pkg/errors"
	"github.com/crimsonvanitas/brew/pkg/logging"
	"github.com/crimsonvanitas/brew/pkg/types"
)

// runtimePatterns maps a DT_NEEDED substring to the C++ runtime it implies.
var runtimePatterns = []struct {
	needle string
	lib    types.RuntimeLibrary
}{
	{"libc++.so", types.LibCxx},
	{"libstdc++.so", types.LibStdCxx},
}

// Inspector reads linkage information without modifying anything.
type Inspector struct {
	fs       types.FS
	accessor elfpatch.Accessor
}

// New creates an Inspector.
func New(fsys types.FS, accessor elfpatch.Accessor) *Inspector {
	return &Inspector{fs: fsys, accessor: accessor}
}

// LinkedLibraries returns the DT_NEEDED names of the ELF file at path.
func (i *Inspector) LinkedLibraries(path string) ([]string, error) {
	dyn, err := i.accessor.Read(path)
	if err != nil {
		return nil, err
	}
	return dyn.Needed, nil
}

// RuntimeLibrariesOf reports the C++ runtimes implied by a list of linked
// library names.
func RuntimeLibrariesOf(needed []string) types.RuntimeSet {
	set := types.RuntimeSet{}
	for _, name := range needed {
		for _, p := range runtimePatterns {
			if strings.Contains(name, p.needle) {
				set.Add(p.lib)
			}
		}
	}
	return set
}

// DetectRuntimeLibraries returns the union of C++ runtimes linked by the
// dynamic ELF files of pkg. With skipExecutables only shared libraries are
// considered. Unreadable files are skipped and reported in the returned
// error alongside the partial result.
func (i *Inspector) DetectRuntimeLibraries(ctx context.Context, pkg types.Package, skipExecutables bool) (types.RuntimeSet, error) {
	if err := pkg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.GetLogger("inspect").With().Str("package", pkg.Name).Logger()
	result := types.RuntimeSet{}
	var failures *multierror.Error

	for c, err := range classify.Dedupe(discover.Walk(i.fs, pkg.Root)) {
		if cerr := ctx.Err(); cerr != nil {
			return result, errors.Wrapf(cerr, errors.ErrCancelled, "inspection of %s cancelled", pkg.Name)
		}
		if err != nil {
			failures = multierror.Append(failures, err)
			continue
		}
		if skipExecutables && c.Role == types.RoleExecutable {
			continue
		}

		kind, err := classify.Classify(i.fs, c.Path)
		if err != nil {
			failures = multierror.Append(failures, err)
			continue
		}
		if kind != types.KindDynamicELF {
			continue
		}

		needed, err := i.LinkedLibraries(c.Path)
		if err != nil {
			failures = multierror.Append(failures, err)
			continue
		}
		for lib := range RuntimeLibrariesOf(needed) {
			logger.Debug().Str("file", c.Path).Str("runtime", string(lib)).Msg("Found C++ runtime")
			result.Add(lib)
		}
	}

	return result, failures.ErrorOrNil()
}
