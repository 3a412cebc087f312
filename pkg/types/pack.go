package types

import (
	"path/filepath"

	"github.com/crimsonvanitas/brew/pkg/errors"
)

// Package represents an installed keg: a named directory tree whose ELF
// files are relocated together.
type Package struct {
	// Name is the formula name, optionally versioned ("gcc@12")
	Name string

	// Root is the absolute path to the installed keg
	Root string
}

// Validate checks that the package can be processed
func (p Package) Validate() error {
	if p.Name == "" {
		return errors.New(errors.ErrInvalidPackage, "package name is empty")
	}
	if p.Root == "" || !filepath.IsAbs(p.Root) {
		return errors.Newf(errors.ErrInvalidPackage, "package root must be an absolute path, got %q", p.Root).
			WithDetail("package", p.Name)
	}
	return nil
}
