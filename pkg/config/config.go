package config

import (
	"slices"

	"github.com/crimsonvanitas/brew/pkg/errors"
)

// Config is the effective configuration.
type Config struct {
	// Prefix is the package manager prefix the compiler runtime lives under
	Prefix     string     `koanf:"prefix" toml:"prefix"`
	Relocation Relocation `koanf:"relocation" toml:"relocation"`
	Toolchain  Toolchain  `koanf:"toolchain" toml:"toolchain"`
	Output     Output     `koanf:"output" toml:"output"`
}

// Relocation holds the policy knobs.
type Relocation struct {
	LoaderToken  string   `koanf:"loader_token" toml:"loader_token"`
	LoaderName   string   `koanf:"loader_name" toml:"loader_name"`
	SkipPackages []string `koanf:"skip_packages" toml:"skip_packages"`
}

// Toolchain describes the preferred compiler.
type Toolchain struct {
	GCCFormula          string `koanf:"gcc_formula" toml:"gcc_formula"`
	PreferredGCCVersion int    `koanf:"preferred_gcc_version" toml:"preferred_gcc_version"`
	GCCCommand          string `koanf:"gcc_command" toml:"gcc_command"`
	SimulateMacOS       bool   `koanf:"simulate_macos" toml:"simulate_macos"`
}

// Output controls how results are printed.
type Output struct {
	Format string `koanf:"format" toml:"format"`
	Color  string `koanf:"color" toml:"color"`
}

var (
	formats = []string{"text", "json", "yaml"}
	colors  = []string{"auto", "always", "never"}
)

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Prefix == "" {
		return errors.New(errors.ErrConfigParse, "prefix must not be empty")
	}
	if c.Relocation.LoaderName == "" {
		return errors.New(errors.ErrConfigParse, "relocation.loader_name must not be empty")
	}
	if c.Toolchain.PreferredGCCVersion <= 0 {
		return errors.Newf(errors.ErrConfigParse, "toolchain.preferred_gcc_version must be positive, got %d", c.Toolchain.PreferredGCCVersion)
	}
	if !slices.Contains(formats, c.Output.Format) {
		return errors.Newf(errors.ErrConfigParse, "output.format must be one of %v, got %q", formats, c.Output.Format)
	}
	if !slices.Contains(colors, c.Output.Color) {
		return errors.Newf(errors.ErrConfigParse, "output.color must be one of %v, got %q", colors, c.Output.Color)
	}
	return nil
}
