// Package toolchain answers the questions relocation asks about the
// compiler toolchain: where the currently selected GCC keeps its runtime
// libraries, which GCC is installed on the host, and whether relocated
// bottles therefore need a GCC dependency.
package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/crimsonvanitas/brew/pkg/errors"
	"github.com/crimsonvanitas/brew/pkg/logging"
)

// Runner executes a command and returns its standard output.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	logger := logging.GetLogger("toolchain")
	logger.Debug().
		Str("command", name).
		Strs("args", args).
		Msg("Executing command")
	return exec.CommandContext(ctx, name, args...).Output()
}

// ExecRunner returns a Runner backed by os/exec.
func ExecRunner() Runner {
	return execRunner{}
}

// Options configures a Toolchain.
type Options struct {
	// Prefix is the package manager prefix, e.g. /home/linuxbrew/.linuxbrew
	Prefix string
	// PreferredFormula is the GCC formula bottles are built with
	PreferredFormula string
	// PreferredVersion is the major version of PreferredFormula
	PreferredVersion int
	// Command is the host compiler queried for its version
	Command string
	// SimulateMacOS disables every Linux-only dependency
	SimulateMacOS bool
	Runner        Runner
}

// Toolchain is the compiler toolchain collaborator.
type Toolchain struct {
	opts Options
}

// New creates a Toolchain. It does not run anything.
func New(opts Options) *Toolchain {
	if opts.PreferredFormula == "" {
		opts.PreferredFormula = "gcc"
	}
	if opts.Command == "" {
		opts.Command = "gcc"
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner()
	}
	return &Toolchain{opts: opts}
}

// RuntimeLibDir is the version-agnostic directory holding the runtime
// libraries of the currently linked GCC.
func (t *Toolchain) RuntimeLibDir() string {
	return filepath.Join(t.opts.Prefix, "opt", "gcc", "lib", "gcc", "current")
}

// InstalledVersion returns the major version of the host compiler, or false
// when there is none or its version cannot be parsed.
func (t *Toolchain) InstalledVersion(ctx context.Context) (int, bool) {
	out, err := t.opts.Runner.Output(ctx, t.opts.Command, "-dumpversion")
	if err != nil {
		logger := logging.GetLogger("toolchain")
		logger.Debug().Err(err).Str("command", t.opts.Command).Msg("No host compiler")
		return 0, false
	}
	return parseMajor(string(out))
}

func parseMajor(version string) (int, bool) {
	version = strings.TrimSpace(version)
	major, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(major)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Selection is the toolchain state computed once per run and passed around
// explicitly.
type Selection struct {
	HostVersion        int      `json:"host_version,omitempty" yaml:"host_version,omitempty"`
	HasHostCompiler    bool     `json:"has_host_compiler" yaml:"has_host_compiler"`
	PreferredFormula   string   `json:"preferred_formula" yaml:"preferred_formula"`
	PreferredVersion   int      `json:"preferred_version" yaml:"preferred_version"`
	RuntimeLibDir      string   `json:"runtime_lib_dir" yaml:"runtime_lib_dir"`
	BottleDependencies []string `json:"bottle_dependencies" yaml:"bottle_dependencies"`
}

// Select probes the host compiler and decides the bottle dependencies:
// bottles need the preferred GCC formula whenever the host compiler is
// missing or older than it.
func (t *Toolchain) Select(ctx context.Context) (*Selection, error) {
	if t.opts.PreferredVersion <= 0 {
		return nil, errors.Newf(errors.ErrToolchain, "invalid preferred %s version %d", t.opts.PreferredFormula, t.opts.PreferredVersion)
	}

	sel := &Selection{
		PreferredFormula:   t.opts.PreferredFormula,
		PreferredVersion:   t.opts.PreferredVersion,
		RuntimeLibDir:      t.RuntimeLibDir(),
		BottleDependencies: []string{},
	}
	sel.HostVersion, sel.HasHostCompiler = t.InstalledVersion(ctx)

	if !t.opts.SimulateMacOS && (!sel.HasHostCompiler || sel.HostVersion < t.opts.PreferredVersion) {
		sel.BottleDependencies = append(sel.BottleDependencies, t.opts.PreferredFormula)
	}

	logger := logging.GetLogger("toolchain")
	logger.Debug().
		Int("host", sel.HostVersion).
		Int("preferred", sel.PreferredVersion).
		Strs("dependencies", sel.BottleDependencies).
		Msg("Toolchain selected")
	return sel, nil
}

func (s *Selection) String() string {
	return fmt.Sprintf("%s %d (host %d)", s.PreferredFormula, s.PreferredVersion, s.HostVersion)
}
