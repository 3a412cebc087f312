package types

import "io/fs"

// Kind is the result of inspecting a file's contents.
type Kind int

const (
	// KindNotELF is any file without the ELF magic
	KindNotELF Kind = iota
	// KindStaticELF is an ELF file without a dynamic segment
	KindStaticELF
	// KindDynamicELF is an ELF file with a dynamic segment
	KindDynamicELF
)

func (k Kind) String() string {
	switch k {
	case KindNotELF:
		return "not-elf"
	case KindStaticELF:
		return "static-elf"
	case KindDynamicELF:
		return "dynamic-elf"
	default:
		return "unknown"
	}
}

// Role is the cheap classification decided once during discovery, from the
// file name and permission bits only.
type Role int

const (
	RoleOther Role = iota
	RoleSharedLibrary
	RoleExecutable
)

func (r Role) String() string {
	switch r {
	case RoleSharedLibrary:
		return "shared-library"
	case RoleExecutable:
		return "executable"
	default:
		return "other"
	}
}

// FileID identifies the underlying inode of a path.
type FileID struct {
	Dev uint64
	Ino uint64
}

// Candidate is a regular file yielded by discovery.
type Candidate struct {
	Path string
	Mode fs.FileMode
	Role Role

	// ID is only meaningful when HasID is set; filesystems without inode
	// data leave it empty.
	ID    FileID
	HasID bool
}

// DynamicSection is the dynamic-linking view of one ELF file. Nil string
// pointers mean the field is absent.
type DynamicSection struct {
	RPath       *string
	RunPath     *string
	Interpreter *string
	SOName      *string
	Needed      []string
}

// SearchPath returns the effective library search path: DT_RUNPATH when
// present, DT_RPATH otherwise.
func (d *DynamicSection) SearchPath() *string {
	if d == nil {
		return nil
	}
	if d.RunPath != nil {
		return d.RunPath
	}
	return d.RPath
}

// ElfFile is one dynamic ELF file of a package together with its current
// dynamic-section values.
type ElfFile struct {
	Candidate
	Kind        Kind
	RPath       *string
	Interpreter *string
	Needed      []string
}

// NewElfFile builds an ElfFile from a candidate and its dynamic section.
func NewElfFile(c Candidate, kind Kind, dyn *DynamicSection) ElfFile {
	f := ElfFile{Candidate: c, Kind: kind}
	if dyn != nil {
		f.RPath = dyn.SearchPath()
		f.Interpreter = dyn.Interpreter
		f.Needed = dyn.Needed
	}
	return f
}
