package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort     = "Relocate the ELF files of installed kegs"
	MsgRelocateShort = "Rewrite RPATH and interpreter of a keg's ELF files"
	MsgInspectShort  = "Report the C++ runtime a keg links against"
	MsgDepsShort     = "Print the dependencies relocated bottles need"
	MsgConfigShort   = "Print the effective configuration"
	MsgVersionShort  = "Print version information"
	MsgVersionLong   = "Print detailed version information including commit hash and build date"

	// Flags
	MsgFlagVerbose         = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig          = "Config file (default $XDG_CONFIG_HOME/kegreloc/config.toml)"
	MsgFlagColor           = "Colorize output: auto, always or never"
	MsgFlagOutput          = "Output format: text, json or yaml"
	MsgFlagName            = "Package name, e.g. zlib or gcc@12"
	MsgFlagRoot            = "Installed keg directory"
	MsgFlagOldPrefix       = "Prefix the keg was built for"
	MsgFlagNewPrefix       = "Prefix the keg is installed under (default: configured prefix)"
	MsgFlagDryRun          = "Show what would change without writing anything"
	MsgFlagSkipExecutables = "Only inspect shared libraries"

	// Version output
	MsgVersionFormat = "kegreloc version %s\n  commit: %s\n  built:  %s\n"

	// Errors
	MsgErrNoCommand  = "no command specified"
	MsgErrRootAbs    = "cannot resolve keg root %s"
	MsgErrFilesFail  = "%d file(s) could not be relocated"
)

var (
	//go:embed msgs/relocate-long.txt
	msgRelocateLongRaw string
	MsgRelocateLong    = strings.TrimSpace(msgRelocateLongRaw)

	//go:embed msgs/relocate-example.txt
	msgRelocateExampleRaw string
	MsgRelocateExample    = strings.TrimSpace(msgRelocateExampleRaw)

	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
