package elfpatch

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/crimsonvanitas/brew/pkg/errors"
)

// dynEntry is one decoded Elf32_Dyn / Elf64_Dyn record.
type dynEntry struct {
	tag elf.DynTag
	val uint64
}

// layout records where the patchable strings of one file live.
type layout struct {
	class elf.Class
	order binary.ByteOrder

	hasInterp  bool
	interpOff  int64
	interpSize int64 // p_filesz, including the terminating NUL
	interp     string

	hasDynamic bool
	entries    []dynEntry
	strtabOff  int64
	strtab     []byte
}

// isELF reports whether r starts with the ELF magic.
func isELF(r io.ReaderAt) bool {
	var magic [4]byte
	if _, err := r.ReadAt(magic[:], 0); err != nil {
		return false
	}
	return bytes.Equal(magic[:], []byte(elf.ELFMAG))
}

// parseLayout decodes the program headers, the interpreter and the dynamic
// table of the ELF image behind r.
func parseLayout(r io.ReaderAt) (*layout, error) {
	if !isELF(r) {
		return nil, errors.New(errors.ErrNotELF, "missing ELF magic")
	}

	f, err := elf.NewFile(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMalformedELF, "cannot parse ELF header")
	}

	l := &layout{class: f.Class, order: f.ByteOrder}

	var dynProg *elf.Prog
	for _, p := range f.Progs {
		switch p.Type {
		case elf.PT_INTERP:
			if l.hasInterp {
				continue
			}
			if p.Filesz == 0 {
				return nil, errors.New(errors.ErrMalformedELF, "empty PT_INTERP segment")
			}
			buf, err := readRange(r, p.Off, p.Filesz)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrMalformedELF, "cannot read PT_INTERP")
			}
			l.hasInterp = true
			l.interpOff = int64(p.Off)
			l.interpSize = int64(p.Filesz)
			l.interp = cstring(buf)
		case elf.PT_DYNAMIC:
			if dynProg == nil {
				dynProg = p
			}
		}
	}

	if dynProg == nil {
		return l, nil
	}
	l.hasDynamic = true

	if l.entries, err = readDynamic(r, dynProg, f.Class, f.ByteOrder); err != nil {
		return nil, err
	}

	strtabAddr, hasStrtab := l.lookup(elf.DT_STRTAB)
	strtabSize, hasStrsz := l.lookup(elf.DT_STRSZ)
	if !hasStrtab || !hasStrsz {
		// A dynamic segment without a string table cannot carry any of
		// the strings this package deals with.
		if l.hasStrings() {
			return nil, errors.New(errors.ErrMalformedELF, "dynamic strings without DT_STRTAB/DT_STRSZ")
		}
		return l, nil
	}

	off, ok := vaddrToOffset(f.Progs, strtabAddr, strtabSize)
	if !ok {
		return nil, errors.Newf(errors.ErrMalformedELF, "DT_STRTAB 0x%x is not covered by a PT_LOAD segment", strtabAddr)
	}
	l.strtabOff = off
	if l.strtab, err = readRange(r, uint64(off), strtabSize); err != nil {
		return nil, errors.Wrap(err, errors.ErrMalformedELF, "cannot read dynamic string table")
	}

	return l, nil
}

func readDynamic(r io.ReaderAt, p *elf.Prog, class elf.Class, order binary.ByteOrder) ([]dynEntry, error) {
	size := 16
	if class == elf.ELFCLASS32 {
		size = 8
	}

	buf, err := readRange(r, p.Off, p.Filesz)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMalformedELF, "cannot read PT_DYNAMIC")
	}

	var entries []dynEntry
	for len(buf) >= size {
		var e dynEntry
		if class == elf.ELFCLASS32 {
			e.tag = elf.DynTag(int32(order.Uint32(buf[0:4])))
			e.val = uint64(order.Uint32(buf[4:8]))
		} else {
			e.tag = elf.DynTag(int64(order.Uint64(buf[0:8])))
			e.val = order.Uint64(buf[8:16])
		}
		if e.tag == elf.DT_NULL {
			break
		}
		entries = append(entries, e)
		buf = buf[size:]
	}
	return entries, nil
}

// readRange reads exactly n bytes at off. The buffer grows with the data
// actually present, so header sizes larger than the file fail instead of
// allocating.
func readRange(r io.ReaderAt, off, n uint64) ([]byte, error) {
	if off > math.MaxInt64 || n > math.MaxInt64-off {
		return nil, fmt.Errorf("range %d+%d overflows", off, n)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(io.NewSectionReader(r, int64(off), int64(n))); err != nil {
		return nil, err
	}
	if uint64(buf.Len()) != n {
		return nil, fmt.Errorf("range %d+%d extends past end of file: %w", off, n, io.ErrUnexpectedEOF)
	}
	return buf.Bytes(), nil
}

// vaddrToOffset maps a virtual address range onto the file through the
// PT_LOAD segment that contains it.
func vaddrToOffset(progs []*elf.Prog, addr, size uint64) (int64, bool) {
	for _, p := range progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		if addr < p.Vaddr || size > p.Filesz || addr-p.Vaddr > p.Filesz-size {
			continue
		}
		off := p.Off + (addr - p.Vaddr)
		if off < p.Off || off > math.MaxInt64 {
			continue
		}
		return int64(off), true
	}
	return 0, false
}

func (l *layout) lookup(tag elf.DynTag) (uint64, bool) {
	for _, e := range l.entries {
		if e.tag == tag {
			return e.val, true
		}
	}
	return 0, false
}

func (l *layout) hasStrings() bool {
	for _, e := range l.entries {
		if isStringTag(e.tag) {
			return true
		}
	}
	return false
}

func isStringTag(tag elf.DynTag) bool {
	switch tag {
	case elf.DT_NEEDED, elf.DT_SONAME, elf.DT_RPATH, elf.DT_RUNPATH:
		return true
	}
	return false
}

// str returns the NUL terminated string at off in the dynamic string table.
func (l *layout) str(off uint64) (string, error) {
	if off >= uint64(len(l.strtab)) {
		return "", errors.Newf(errors.ErrMalformedELF, "string offset %d outside string table of %d bytes", off, len(l.strtab))
	}
	rest := l.strtab[off:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", errors.Newf(errors.ErrMalformedELF, "unterminated string at offset %d", off)
	}
	return string(rest[:end]), nil
}

func (l *layout) strings(tag elf.DynTag) ([]string, error) {
	var out []string
	for _, e := range l.entries {
		if e.tag != tag {
			continue
		}
		s, err := l.str(e.val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (l *layout) first(tag elf.DynTag) (*string, error) {
	all, err := l.strings(tag)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[0], nil
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
