package types

import (
	"path/filepath"

	"github.com/crimsonvanitas/brew/pkg/errors"
)

// Mapping is a prefix substitution applied to embedded paths.
type Mapping struct {
	Old string `json:"old" yaml:"old"`
	New string `json:"new" yaml:"new"`
}

// Validate checks that both prefixes are absolute and non-empty.
// Equal prefixes are valid.
func (m Mapping) Validate() error {
	if m.Old == "" || m.New == "" {
		return errors.New(errors.ErrInvalidMapping, "prefixes must not be empty")
	}
	if !filepath.IsAbs(m.Old) || !filepath.IsAbs(m.New) {
		return errors.Newf(errors.ErrInvalidMapping, "prefixes must be absolute: %q -> %q", m.Old, m.New)
	}
	return nil
}

// IsIdentity reports whether applying the mapping can change nothing.
func (m Mapping) IsIdentity() bool {
	return m.Old == m.New
}
