// Package relocate drives the relocation of one installed package: it
// enumerates the package's ELF files, asks the policy engine for new
// dynamic-section values and writes them through the accessor.
//
// Files are processed strictly one at a time. A failure on one file is
// recorded and the next file is processed; only a failed permission
// restore stops the package.
package relocate

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/crimsonvanitas/brew/pkg/classify"
	"github.com/crimsonvanitas/brew/pkg/discover"
	"github.com/crimsonvanitas/brew/pkg/elfpatch"
	"github.com/crimsonvanitas/brew/pkg/errors"
	"github.com/crimsonvanitas/brew/pkg/logging"
	"github.com/crimsonvanitas/brew/pkg/policy"
	"github.com/crimsonvanitas/brew/pkg/types"
)

// Options tunes the Driver.
type Options struct {
	// DryRun computes and reports changes without writing anything.
	DryRun bool
}

// Driver relocates packages.
type Driver struct {
	fs       types.FS
	accessor elfpatch.Accessor
	engine   *policy.Engine
	opts     Options
}

// New creates a Driver.
func New(fsys types.FS, accessor elfpatch.Accessor, engine *policy.Engine, opts Options) *Driver {
	return &Driver{
		fs:       fsys,
		accessor: accessor,
		engine:   engine,
		opts:     opts,
	}
}

// Relocate rewrites every dynamic ELF file below pkg.Root according to m.
//
// The returned summary is never nil once the inputs are valid. The error
// aggregates file-level failures; it carries PERMISSION_RESTORE when a file
// was left with an unexpected mode and CANCELLED when ctx ended the run.
func (d *Driver) Relocate(ctx context.Context, pkg types.Package, m types.Mapping) (*types.Summary, error) {
	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if info, err := d.fs.Stat(pkg.Root); err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidPackage, "package root %s is not a directory", pkg.Root).
			WithDetail("package", pkg.Name)
	}

	logger := logging.GetLogger("relocate").With().
		Str("package", pkg.Name).
		Str("old", m.Old).
		Str("new", m.New).
		Bool("dry_run", d.opts.DryRun).
		Logger()
	defer logging.LogOperationStart(logger, "relocate")()

	summary := types.NewSummary(pkg, m)
	summary.DryRun = d.opts.DryRun

	if reason, skip := d.engine.HardSkip(pkg); skip {
		logger.Info().Str("reason", reason).Msg("Package intentionally skipped")
		summary.SkippedByPolicy = reason
		return summary, nil
	}
	if m.IsIdentity() {
		logger.Info().Msg("Prefixes are identical, nothing to relocate")
		summary.Identity = true
		return summary, nil
	}

	var failures *multierror.Error
	fail := func(path string, err error) {
		logger.Warn().Err(err).Str("file", path).Msg("File not relocated")
		summary.AddFailure(path, err)
		failures = multierror.Append(failures, err)
	}

	for c, err := range classify.Dedupe(discover.Walk(d.fs, pkg.Root)) {
		if cerr := ctx.Err(); cerr != nil {
			logger.Warn().Msg("Relocation cancelled")
			return summary, errors.Wrapf(cerr, errors.ErrCancelled, "relocation of %s cancelled", pkg.Name).
				WithDetail("package", pkg.Name)
		}
		if err != nil {
			if errors.GetErrorCode(err) == errors.ErrUnknown {
				err = errors.Wrapf(err, errors.ErrUnreadableFile, "cannot read %s", c.Path).WithDetail("path", c.Path)
			}
			fail(c.Path, err)
			continue
		}

		kind, err := classify.Classify(d.fs, c.Path)
		if err != nil {
			fail(c.Path, err)
			continue
		}
		if kind != types.KindDynamicELF {
			logger.Trace().Str("file", c.Path).Stringer("kind", kind).Msg("Ignoring file")
			summary.Ignored = append(summary.Ignored, c.Path)
			continue
		}

		if err := d.relocateFile(logger, summary, c, pkg, m); err != nil {
			if errors.IsErrorCode(err, errors.ErrPermissionRestore) {
				summary.AddFailure(c.Path, err)
				return summary, multierror.Append(failures, err).ErrorOrNil()
			}
			fail(c.Path, err)
		}
	}

	logger.Info().
		Int("relocated", len(summary.Relocated)).
		Int("unchanged", len(summary.Unchanged)).
		Int("ignored", len(summary.Ignored)).
		Int("failed", len(summary.Failed)).
		Msg("Package relocated")
	return summary, failures.ErrorOrNil()
}

func (d *Driver) relocateFile(logger zerolog.Logger, summary *types.Summary, c types.Candidate, pkg types.Package, m types.Mapping) error {
	work := func() error {
		dyn, err := d.accessor.Read(c.Path)
		if err != nil {
			return err
		}
		file := types.NewElfFile(c, types.KindDynamicELF, dyn)
		newRPath, newInterp := d.engine.Compute(file, m, pkg)

		rpath := changed(file.RPath, newRPath)
		interp := changed(file.Interpreter, newInterp)
		if rpath == nil && interp == nil {
			summary.Unchanged = append(summary.Unchanged, c.Path)
			return nil
		}

		if !d.opts.DryRun {
			if err := d.accessor.Patch(c.Path, rpath, interp); err != nil {
				return err
			}
		}

		change := types.FileChange{Path: c.Path}
		if rpath != nil {
			change.OldRPath, change.NewRPath = file.RPath, rpath
		}
		if interp != nil {
			change.OldInterpreter, change.NewInterpreter = file.Interpreter, interp
		}
		summary.Relocated = append(summary.Relocated, change)
		logger.Debug().Str("file", c.Path).Interface("rpath", rpath).Interface("interpreter", interp).Msg("Relocated file")
		return nil
	}

	if d.opts.DryRun {
		return work()
	}
	return EnsureWritable(d.fs, c.Path, c.Mode, work)
}

// changed returns next when it differs from current, nil otherwise.
func changed(current, next *string) *string {
	if next == nil {
		return nil
	}
	if current != nil && *current == *next {
		return nil
	}
	return next
}
