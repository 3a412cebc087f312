package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crimsonvanitas/brew/internal/version"
	"github.com/crimsonvanitas/brew/pkg/config"
	"github.com/crimsonvanitas/brew/pkg/elfpatch"
	"github.com/crimsonvanitas/brew/pkg/errors"
	"github.com/crimsonvanitas/brew/pkg/filesystem"
	"github.com/crimsonvanitas/brew/pkg/inspect"
	"github.com/crimsonvanitas/brew/pkg/logging"
	"github.com/crimsonvanitas/brew/pkg/policy"
	"github.com/crimsonvanitas/brew/pkg/relocate"
	"github.com/crimsonvanitas/brew/pkg/report"
	"github.com/crimsonvanitas/brew/pkg/toolchain"
	"github.com/crimsonvanitas/brew/pkg/types"
)

// outputFlag maps the --output flag onto its config key.
var outputFlag = map[string]string{"output": "output.format"}

func newToolchain(cfg *config.Config) *toolchain.Toolchain {
	return toolchain.New(toolchain.Options{
		Prefix:           cfg.Prefix,
		PreferredFormula: cfg.Toolchain.GCCFormula,
		PreferredVersion: cfg.Toolchain.PreferredGCCVersion,
		Command:          cfg.Toolchain.GCCCommand,
		SimulateMacOS:    cfg.Toolchain.SimulateMacOS,
	})
}

func newRenderer(cmd *cobra.Command, cfg *config.Config) (report.Renderer, error) {
	out := os.Stdout
	f, err := report.Resolve(cfg.Output.Format, cfg.Output.Color, out)
	if err != nil {
		return nil, err
	}
	return report.New(cmd.OutOrStdout(), f)
}

func absRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidPackage, MsgErrRootAbs, root)
	}
	return abs, nil
}

func newRelocateCmd(opts *globalOptions) *cobra.Command {
	var (
		name, root, oldPrefix, newPrefix string
		dryRun                           bool
	)

	cmd := &cobra.Command{
		Use:     "relocate",
		Short:   MsgRelocateShort,
		Long:    MsgRelocateLong,
		Example: MsgRelocateExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd, outputFlag)
			if err != nil {
				return err
			}
			if newPrefix == "" {
				newPrefix = cfg.Prefix
			}
			kegRoot, err := absRoot(root)
			if err != nil {
				return err
			}

			logger := logging.GetLogger("cli.relocate")
			logger.Info().
				Str("package", name).
				Str("root", kegRoot).
				Str("old", oldPrefix).
				Str("new", newPrefix).
				Bool("dry_run", dryRun).
				Msg("Relocating keg")

			fsys := filesystem.NewOS()
			engine := policy.New(fsys, newToolchain(cfg), policy.Options{
				LoaderToken:  cfg.Relocation.LoaderToken,
				LoaderName:   cfg.Relocation.LoaderName,
				SkipPackages: cfg.Relocation.SkipPackages,
			})
			driver := relocate.New(fsys, elfpatch.New(), engine, relocate.Options{DryRun: dryRun})

			renderer, err := newRenderer(cmd, cfg)
			if err != nil {
				return err
			}

			summary, relocErr := driver.Relocate(cmd.Context(), types.Package{Name: name, Root: kegRoot}, types.Mapping{Old: oldPrefix, New: newPrefix})
			if summary != nil {
				if err := renderer.Summary(summary); err != nil {
					return err
				}
			}
			if relocErr != nil && summary != nil && summary.HasFailures() && errors.IsFileLevel(relocErr) {
				return errors.Newf(errors.GetErrorCode(relocErr), MsgErrFilesFail, len(summary.Failed))
			}
			return relocErr
		},
	}

	cmd.Flags().StringVar(&name, "name", "", MsgFlagName)
	cmd.Flags().StringVar(&root, "root", "", MsgFlagRoot)
	cmd.Flags().StringVar(&oldPrefix, "old-prefix", "", MsgFlagOldPrefix)
	cmd.Flags().StringVar(&newPrefix, "new-prefix", "", MsgFlagNewPrefix)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	cmd.Flags().String("output", "", MsgFlagOutput)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("root")
	_ = cmd.MarkFlagRequired("old-prefix")

	return cmd
}

func newInspectCmd(opts *globalOptions) *cobra.Command {
	var (
		name, root      string
		skipExecutables bool
	)

	cmd := &cobra.Command{
		Use:     "inspect",
		Short:   MsgInspectShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd, outputFlag)
			if err != nil {
				return err
			}
			kegRoot, err := absRoot(root)
			if err != nil {
				return err
			}
			renderer, err := newRenderer(cmd, cfg)
			if err != nil {
				return err
			}

			inspector := inspect.New(filesystem.NewOS(), elfpatch.New())
			set, inspectErr := inspector.DetectRuntimeLibraries(cmd.Context(), types.Package{Name: name, Root: kegRoot}, skipExecutables)
			if set != nil {
				if err := renderer.Runtimes(report.NewRuntimeReport(name, set)); err != nil {
					return err
				}
			}
			return inspectErr
		},
	}

	cmd.Flags().StringVar(&name, "name", "", MsgFlagName)
	cmd.Flags().StringVar(&root, "root", "", MsgFlagRoot)
	cmd.Flags().BoolVar(&skipExecutables, "skip-executables", false, MsgFlagSkipExecutables)
	cmd.Flags().String("output", "", MsgFlagOutput)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("root")

	return cmd
}

func newDepsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deps",
		Short:   MsgDepsShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd, outputFlag)
			if err != nil {
				return err
			}
			sel, err := newToolchain(cfg).Select(cmd.Context())
			if err != nil {
				return err
			}
			renderer, err := newRenderer(cmd, cfg)
			if err != nil {
				return err
			}
			return renderer.Dependencies(sel)
		},
	}
	cmd.Flags().String("output", "", MsgFlagOutput)
	return cmd
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd, nil)
			if err != nil {
				return err
			}
			out, err := config.Dump(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Long:    MsgVersionLong,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}
