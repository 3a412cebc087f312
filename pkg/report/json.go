package report

import (
	"encoding/json"
	"io"

	"github.com/crimsonvanitas/brew/pkg/toolchain"
	"github.com/crimsonvanitas/brew/pkg/types"
)

type jsonRenderer struct {
	encoder *json.Encoder
}

func newJSON(w io.Writer) *jsonRenderer {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return &jsonRenderer{encoder: encoder}
}

func (r *jsonRenderer) Summary(s *types.Summary) error { return r.encoder.Encode(s) }

func (r *jsonRenderer) Runtimes(rep RuntimeReport) error { return r.encoder.Encode(rep) }

func (r *jsonRenderer) Dependencies(sel *toolchain.Selection) error { return r.encoder.Encode(sel) }
