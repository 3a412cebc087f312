package report

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/crimsonvanitas/brew/pkg/toolchain"
	"github.com/crimsonvanitas/brew/pkg/types"
)

type yamlRenderer struct {
	w io.Writer
}

func newYAML(w io.Writer) *yamlRenderer {
	return &yamlRenderer{w: w}
}

func (r *yamlRenderer) encode(v interface{}) error {
	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (r *yamlRenderer) Summary(s *types.Summary) error { return r.encode(s) }

func (r *yamlRenderer) Runtimes(rep RuntimeReport) error { return r.encode(rep) }

func (r *yamlRenderer) Dependencies(sel *toolchain.Selection) error { return r.encode(sel) }
