package report

import (
	"io"

	"github.com/crimsonvanitas/brew/pkg/errors"
	"github.com/crimsonvanitas/brew/pkg/toolchain"
	"github.com/crimsonvanitas/brew/pkg/types"
)

// RuntimeReport is the result of inspecting a package's C++ runtimes.
type RuntimeReport struct {
	Package  string                 `json:"package" yaml:"package"`
	Runtimes []types.RuntimeLibrary `json:"runtimes" yaml:"runtimes"`
}

// NewRuntimeReport builds a RuntimeReport with runtimes in stable order.
func NewRuntimeReport(pkg string, set types.RuntimeSet) RuntimeReport {
	return RuntimeReport{Package: pkg, Runtimes: set.Sorted()}
}

// Renderer writes results in one format.
type Renderer interface {
	Summary(s *types.Summary) error
	Runtimes(r RuntimeReport) error
	Dependencies(sel *toolchain.Selection) error
}

// New creates a renderer for f. FormatAuto must be resolved first.
func New(w io.Writer, f Format) (Renderer, error) {
	switch f {
	case FormatTerminal:
		return newText(w, true), nil
	case FormatText:
		return newText(w, false), nil
	case FormatJSON:
		return newJSON(w), nil
	case FormatYAML:
		return newYAML(w), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "no renderer for format %s", f)
	}
}
