// Package config loads the kegreloc configuration.
//
// Values are layered, later layers winning:
//
//  1. defaults embedded in the binary (embedded/defaults.toml)
//  2. the user config file, $XDG_CONFIG_HOME/kegreloc/config.toml unless
//     another file is given
//  3. KEGRELOC_* environment variables, e.g. KEGRELOC_TOOLCHAIN_GCC_COMMAND
//  4. command line flags
package config
