// Package classify decides what a candidate file is: whether it is an ELF
// file at all, whether it is dynamically linked, and which role its name and
// permissions give it. It also removes hard-linked duplicates from a stream
// of candidates.
package classify

import (
	"bytes"
	"debug/elf"
	"io"
	"io/fs"

	"github.com/grafana/regexp"

	"github.com/crimsonvanitas/brew/pkg/errors"
	"github.com/crimsonvanitas/brew/pkg/types"
)

var sharedLibraryName = regexp.MustCompile(`\.so(\.[^/]*)?$`)

// Classify inspects the contents of path. The decision is made from the ELF
// magic and program headers, never from the file name.
func Classify(fsys types.FS, path string) (types.Kind, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return types.KindNotELF, errors.Wrapf(err, errors.ErrUnreadableFile, "cannot open %s", path).
			WithDetail("path", path)
	}
	defer f.Close()

	var magic [4]byte
	if _, err := f.ReadAt(magic[:], 0); err != nil {
		if err == io.EOF {
			// Shorter than the magic: cannot be ELF.
			return types.KindNotELF, nil
		}
		return types.KindNotELF, errors.Wrapf(err, errors.ErrUnreadableFile, "cannot read %s", path).
			WithDetail("path", path)
	}
	if !bytes.Equal(magic[:], []byte(elf.ELFMAG)) {
		return types.KindNotELF, nil
	}

	ef, err := elf.NewFile(f)
	if err != nil {
		return types.KindNotELF, errors.Wrapf(err, errors.ErrMalformedELF, "cannot parse %s", path).
			WithDetail("path", path)
	}
	for _, p := range ef.Progs {
		if p.Type == elf.PT_DYNAMIC {
			return types.KindDynamicELF, nil
		}
	}
	return types.KindStaticELF, nil
}

// RoleOf classifies a file from its name and permission bits alone.
func RoleOf(name string, mode fs.FileMode) types.Role {
	if sharedLibraryName.MatchString(name) {
		return types.RoleSharedLibrary
	}
	if mode.IsRegular() && mode.Perm()&0111 != 0 {
		return types.RoleExecutable
	}
	return types.RoleOther
}
