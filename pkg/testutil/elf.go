package testutil

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ELFSpec describes a minimal ELF image.
type ELFSpec struct {
	// Class defaults to ELFCLASS64
	Class     elf.Class
	BigEndian bool
	// Type defaults to ET_DYN
	Type elf.Type

	// Static omits PT_DYNAMIC entirely
	Static bool

	// Interpreter adds a PT_INTERP segment when non-empty
	Interpreter string

	RPath   *string
	RunPath *string
	SOName  string
	Needed  []string
}

const imageBase = 0x400000

type dynRec struct {
	tag elf.DynTag
	val uint64
}

// BuildELF renders spec into an ELF image. There are no section headers;
// everything is reachable from the program headers.
func BuildELF(spec ELFSpec) []byte {
	is64 := spec.Class != elf.ELFCLASS32
	var order binary.ByteOrder = binary.LittleEndian
	if spec.BigEndian {
		order = binary.BigEndian
	}
	typ := spec.Type
	if typ == elf.ET_NONE {
		typ = elf.ET_DYN
	}

	ehsize, phentsize, dynentsize := 64, 56, 16
	if !is64 {
		ehsize, phentsize, dynentsize = 52, 32, 8
	}

	nph := 1
	if spec.Interpreter != "" {
		nph++
	}
	if !spec.Static {
		nph++
	}

	off := ehsize + nph*phentsize

	interpOff := off
	interp := append([]byte(spec.Interpreter), 0)
	if spec.Interpreter != "" {
		off += len(interp)
	}

	var (
		strtab    = []byte{0}
		records   []dynRec
		strtabOff int
		dynOff    int
		dynSize   int
	)
	addStr := func(s string) uint64 {
		o := len(strtab)
		strtab = append(strtab, s...)
		strtab = append(strtab, 0)
		return uint64(o)
	}

	if !spec.Static {
		for _, n := range spec.Needed {
			records = append(records, dynRec{elf.DT_NEEDED, addStr(n)})
		}
		if spec.SOName != "" {
			records = append(records, dynRec{elf.DT_SONAME, addStr(spec.SOName)})
		}
		if spec.RPath != nil {
			records = append(records, dynRec{elf.DT_RPATH, addStr(*spec.RPath)})
		}
		if spec.RunPath != nil {
			records = append(records, dynRec{elf.DT_RUNPATH, addStr(*spec.RunPath)})
		}

		strtabOff = off
		off += len(strtab)
		off = (off + 7) &^ 7

		dynOff = off
		records = append(records,
			dynRec{elf.DT_STRTAB, uint64(imageBase + strtabOff)},
			dynRec{elf.DT_STRSZ, uint64(len(strtab))},
			dynRec{elf.DT_NULL, 0},
		)
		dynSize = len(records) * dynentsize
		off += dynSize
	}
	total := off

	var buf bytes.Buffer
	var ident [elf.EI_NIDENT]byte
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	if spec.BigEndian {
		ident[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	}

	type prog struct {
		typ                elf.ProgType
		off, vaddr, filesz uint64
	}
	progs := []prog{{elf.PT_LOAD, 0, imageBase, uint64(total)}}
	if spec.Interpreter != "" {
		progs = append(progs, prog{elf.PT_INTERP, uint64(interpOff), uint64(imageBase + interpOff), uint64(len(interp))})
	}
	if !spec.Static {
		progs = append(progs, prog{elf.PT_DYNAMIC, uint64(dynOff), uint64(imageBase + dynOff), uint64(dynSize)})
	}

	if is64 {
		ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
		mustWrite(&buf, order, elf.Header64{
			Ident:     ident,
			Type:      uint16(typ),
			Machine:   uint16(elf.EM_X86_64),
			Version:   uint32(elf.EV_CURRENT),
			Entry:     imageBase,
			Phoff:     uint64(ehsize),
			Ehsize:    uint16(ehsize),
			Phentsize: uint16(phentsize),
			Phnum:     uint16(nph),
			Shentsize: 64,
		})
		for _, p := range progs {
			mustWrite(&buf, order, elf.Prog64{
				Type:   uint32(p.typ),
				Flags:  uint32(elf.PF_R),
				Off:    p.off,
				Vaddr:  p.vaddr,
				Paddr:  p.vaddr,
				Filesz: p.filesz,
				Memsz:  p.filesz,
				Align:  1,
			})
		}
	} else {
		ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
		mustWrite(&buf, order, elf.Header32{
			Ident:     ident,
			Type:      uint16(typ),
			Machine:   uint16(elf.EM_386),
			Version:   uint32(elf.EV_CURRENT),
			Entry:     imageBase,
			Phoff:     uint32(ehsize),
			Ehsize:    uint16(ehsize),
			Phentsize: uint16(phentsize),
			Phnum:     uint16(nph),
			Shentsize: 40,
		})
		for _, p := range progs {
			mustWrite(&buf, order, elf.Prog32{
				Type:   uint32(p.typ),
				Off:    uint32(p.off),
				Vaddr:  uint32(p.vaddr),
				Paddr:  uint32(p.vaddr),
				Filesz: uint32(p.filesz),
				Memsz:  uint32(p.filesz),
				Flags:  uint32(elf.PF_R),
				Align:  1,
			})
		}
	}

	if spec.Interpreter != "" {
		buf.Write(interp)
	}
	if !spec.Static {
		buf.Write(strtab)
		for buf.Len() < dynOff {
			buf.WriteByte(0)
		}
		for _, r := range records {
			if is64 {
				mustWrite(&buf, order, elf.Dyn64{Tag: int64(r.tag), Val: r.val})
			} else {
				mustWrite(&buf, order, elf.Dyn32{Tag: int32(r.tag), Val: uint32(r.val)})
			}
		}
	}

	return buf.Bytes()
}

func mustWrite(buf *bytes.Buffer, order binary.ByteOrder, v any) {
	if err := binary.Write(buf, order, v); err != nil {
		panic(err)
	}
}

// WriteELF writes the image described by spec to path, creating parent
// directories, and returns path.
func WriteELF(t testing.TB, path string, spec ELFSpec, perm fs.FileMode) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, BuildELF(spec), perm))
	// WriteFile honours umask; tests rely on exact modes.
	require.NoError(t, os.Chmod(path, perm))
	return path
}
