package elfpatch

import (
	"debug/elf"
	stderrors "errors"
	"io"
	"os"

	"github.com/crimsonvanitas/brew/pkg/errors"
	"github.com/crimsonvanitas/brew/pkg/logging"
	"github.com/crimsonvanitas/brew/pkg/types"
)

// Accessor is the read/write view over an ELF file's dynamic-linking
// metadata.
type Accessor interface {
	// Read returns the dynamic section of the file at path. Static ELF
	// files yield an empty section, not an error.
	Read(path string) (*types.DynamicSection, error)

	// Patch rewrites the search path and/or interpreter in place. A nil
	// value leaves the field unchanged.
	Patch(path string, rpath, interpreter *string) error
}

type accessor struct{}

// New returns the Accessor operating on the OS filesystem.
func New() Accessor {
	return accessor{}
}

func (accessor) Read(path string) (*types.DynamicSection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrUnreadableFile, "cannot open %s", path).WithDetail("path", path)
	}
	defer f.Close()

	dyn, err := ReadFrom(f)
	if err != nil {
		return nil, annotate(err, path)
	}
	return dyn, nil
}

// ReadFrom decodes the dynamic section from any random-access reader.
func ReadFrom(r io.ReaderAt) (*types.DynamicSection, error) {
	l, err := parseLayout(r)
	if err != nil {
		return nil, err
	}

	dyn := &types.DynamicSection{}
	if l.hasInterp {
		interp := l.interp
		dyn.Interpreter = &interp
	}
	if !l.hasDynamic {
		return dyn, nil
	}

	if dyn.RPath, err = l.first(elf.DT_RPATH); err != nil {
		return nil, err
	}
	if dyn.RunPath, err = l.first(elf.DT_RUNPATH); err != nil {
		return nil, err
	}
	if dyn.SOName, err = l.first(elf.DT_SONAME); err != nil {
		return nil, err
	}
	if dyn.Needed, err = l.strings(elf.DT_NEEDED); err != nil {
		return nil, err
	}
	return dyn, nil
}

// ReadRPath returns the raw colon-joined search path of the file, preferring
// DT_RUNPATH over DT_RPATH, or nil when there is none.
func ReadRPath(a Accessor, path string) (*string, error) {
	dyn, err := a.Read(path)
	if err != nil {
		return nil, err
	}
	return dyn.SearchPath(), nil
}

// ReadInterpreter returns the PT_INTERP path, or nil for files without one.
func ReadInterpreter(a Accessor, path string) (*string, error) {
	dyn, err := a.Read(path)
	if err != nil {
		return nil, err
	}
	return dyn.Interpreter, nil
}

// write is one pending in-place modification.
type write struct {
	off  int64
	data []byte
}

func (accessor) Patch(path string, rpath, interpreter *string) error {
	if rpath == nil && interpreter == nil {
		return nil
	}

	logger := logging.GetLogger("elfpatch")

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		code := errors.ErrNotWritable
		if os.IsNotExist(err) {
			code = errors.ErrUnreadableFile
		}
		return errors.Wrapf(err, code, "cannot open %s for writing", path).WithDetail("path", path)
	}

	writes, err := plan(f, rpath, interpreter)
	if err != nil {
		_ = f.Close()
		return annotate(err, path)
	}

	for _, w := range writes {
		if _, err := f.WriteAt(w.data, w.off); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, errors.ErrNotWritable, "cannot write %s", path).WithDetail("path", path)
		}
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrNotWritable, "cannot close %s", path).WithDetail("path", path)
	}

	logger.Debug().
		Str("path", path).
		Int("writes", len(writes)).
		Msg("Patched dynamic section")
	return nil
}

// plan validates every requested change against the original layout and
// returns the byte writes to perform. Nothing is written unless every field
// fits.
func plan(r io.ReaderAt, rpath, interpreter *string) ([]write, error) {
	l, err := parseLayout(r)
	if err != nil {
		return nil, err
	}

	var writes []write

	if rpath != nil {
		ws, err := planRPath(l, *rpath)
		if err != nil {
			return nil, err
		}
		writes = append(writes, ws...)
	}

	if interpreter != nil {
		w, err := planInterpreter(l, *interpreter)
		if err != nil {
			return nil, err
		}
		writes = append(writes, w)
	}

	return writes, nil
}

func planRPath(l *layout, value string) ([]write, error) {
	var writes []write
	done := map[uint64]bool{}

	for _, e := range l.entries {
		if e.tag != elf.DT_RPATH && e.tag != elf.DT_RUNPATH {
			continue
		}
		if done[e.val] {
			continue
		}
		done[e.val] = true

		old, err := l.str(e.val)
		if err != nil {
			return nil, err
		}
		if len(value) > len(old) {
			return nil, errors.Newf(errors.ErrPatchTooLong,
				"%s needs %d bytes, only %d available", e.tag, len(value), len(old)).
				WithDetail("capacity", len(old)).
				WithDetail("value", value)
		}
		if err := checkShared(l, e, len(old)); err != nil {
			return nil, err
		}

		data := make([]byte, len(old))
		copy(data, value)
		writes = append(writes, write{off: l.strtabOff + int64(e.val), data: data})
	}

	if len(writes) == 0 {
		// Adding a tag would mean growing the dynamic table.
		return nil, errors.New(errors.ErrPatchTooLong, "file has no DT_RPATH or DT_RUNPATH entry to rewrite").
			WithDetail("capacity", 0)
	}
	return writes, nil
}

// checkShared refuses to rewrite a string whose bytes overlap another
// dynamic string, which linkers produce when merging string tails. The
// overlap goes both ways: another string may start inside the search path,
// or the search path may be the tail of a longer string.
func checkShared(l *layout, target dynEntry, length int) error {
	start, end := target.val, target.val+uint64(length)
	for _, e := range l.entries {
		if !isStringTag(e.tag) || e.tag == elf.DT_RPATH || e.tag == elf.DT_RUNPATH {
			continue
		}
		other, err := l.str(e.val)
		if err != nil {
			return err
		}
		if e.val < end && start < e.val+uint64(len(other)) {
			return errors.Newf(errors.ErrMalformedELF, "%s string shares storage with %s", target.tag, e.tag)
		}
	}
	return nil
}

func planInterpreter(l *layout, value string) (write, error) {
	if !l.hasInterp {
		return write{}, errors.New(errors.ErrPatchTooLong, "file has no PT_INTERP segment").
			WithDetail("capacity", 0)
	}
	capacity := int(l.interpSize) - 1
	if len(value) > capacity {
		return write{}, errors.Newf(errors.ErrPatchTooLong,
			"interpreter needs %d bytes, only %d available", len(value), capacity).
			WithDetail("capacity", capacity).
			WithDetail("value", value)
	}
	data := make([]byte, l.interpSize)
	copy(data, value)
	return write{off: l.interpOff, data: data}, nil
}

// annotate attaches the file path to coded errors coming from the parser.
func annotate(err error, path string) error {
	var relocErr *errors.RelocError
	if stderrors.As(err, &relocErr) {
		relocErr.WithDetail("path", path)
		return relocErr
	}
	return errors.Wrapf(err, errors.ErrMalformedELF, "cannot parse %s", path).WithDetail("path", path)
}
