// TEST TYPE: Unit Test
// DEPENDENCIES: temporary XDG config directory, environment
// PURPOSE: Verify configuration layering and validation

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimsonvanitas/brew/pkg/errors"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeUserConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "kegreloc", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigurationDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfiguration(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "/home/linuxbrew/.linuxbrew", cfg.Prefix)
	assert.Equal(t, "$ORIGIN", cfg.Relocation.LoaderToken)
	assert.Equal(t, "ld.so", cfg.Relocation.LoaderName)
	assert.Empty(t, cfg.Relocation.SkipPackages)
	assert.Equal(t, "gcc", cfg.Toolchain.GCCFormula)
	assert.Equal(t, 12, cfg.Toolchain.PreferredGCCVersion)
	assert.Equal(t, "gcc", cfg.Toolchain.GCCCommand)
	assert.False(t, cfg.Toolchain.SimulateMacOS)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)
}

func TestLoadConfigurationLayers(t *testing.T) {
	dir := isolate(t)
	writeUserConfig(t, dir, `
prefix = "/opt/brew"

[toolchain]
preferred_gcc_version = 13
gcc_command = "gcc-13"
`)
	t.Setenv("KEGRELOC_TOOLCHAIN_GCC_COMMAND", "gcc-14")
	t.Setenv("KEGRELOC_RELOCATION_SKIP_PACKAGES", "valgrind,llvm")
	t.Setenv("KEGRELOC_UNKNOWN_KEY", "ignored")

	cfg, err := LoadConfiguration(LoadOptions{
		Overrides: map[string]interface{}{"output.format": "json"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/opt/brew", cfg.Prefix, "file overrides defaults")
	assert.Equal(t, 13, cfg.Toolchain.PreferredGCCVersion)
	assert.Equal(t, "gcc-14", cfg.Toolchain.GCCCommand, "environment overrides file")
	assert.Equal(t, []string{"valgrind", "llvm"}, cfg.Relocation.SkipPackages)
	assert.Equal(t, "json", cfg.Output.Format, "flags override everything")
}

func TestLoadConfigurationExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[relocation]\nloader_name = \"ld-linux-x86-64.so.2\"\n"), 0644))

	cfg, err := LoadConfiguration(LoadOptions{File: path})
	require.NoError(t, err)
	assert.Equal(t, "ld-linux-x86-64.so.2", cfg.Relocation.LoaderName)

	_, err = LoadConfiguration(LoadOptions{File: filepath.Join(dir, "missing.toml")})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestLoadConfigurationInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"broken toml", "prefix = \n"},
		{"unknown format", "[output]\nformat = \"xml\"\n"},
		{"unknown color", "[output]\ncolor = \"sometimes\"\n"},
		{"bad gcc version", "[toolchain]\npreferred_gcc_version = 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			writeUserConfig(t, dir, tt.content)

			_, err := LoadConfiguration(LoadOptions{})
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse), "got %v", err)
		})
	}
}

func TestDump(t *testing.T) {
	isolate(t)
	cfg, err := LoadConfiguration(LoadOptions{})
	require.NoError(t, err)

	out, err := Dump(cfg)
	require.NoError(t, err)
	assert.Regexp(t, `prefix = ['"]/home/linuxbrew/\.linuxbrew['"]`, string(out))
	assert.Contains(t, string(out), "[toolchain]")
	assert.Contains(t, string(out), "preferred_gcc_version = 12")
}
