// Package cli implements the kegreloc command line.
package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/crimsonvanitas/brew/internal/version"
	"github.com/crimsonvanitas/brew/pkg/config"
	"github.com/crimsonvanitas/brew/pkg/errors"
	"github.com/crimsonvanitas/brew/pkg/logging"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	verbosity  int
	configFile string
	color      string
}

// load builds the effective configuration, applying flags that were set
// explicitly on cmd as the top layer.
func (g *globalOptions) load(cmd *cobra.Command, flagKeys map[string]string) (*config.Config, error) {
	overrides := map[string]interface{}{}
	if cmd.Flags().Changed("color") {
		overrides["output.color"] = g.color
	}
	for flag, key := range flagKeys {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		value, err := cmd.Flags().GetString(flag)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "flag %s", flag)
		}
		overrides[key] = value
	}
	return config.LoadConfiguration(config.LoadOptions{File: g.configFile, Overrides: overrides})
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	initTemplateFormatting(opts)

	rootCmd := &cobra.Command{
		Use:     "kegreloc",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&opts.color, "color", "auto", MsgFlagColor)

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newRelocateCmd(opts))
	rootCmd.AddCommand(newInspectCmd(opts))
	rootCmd.AddCommand(newDepsCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
