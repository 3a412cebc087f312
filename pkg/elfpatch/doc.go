// Package elfpatch reads and rewrites the dynamic-linking strings of an ELF
// file in place: the library search path (DT_RPATH / DT_RUNPATH) and the
// program interpreter (PT_INTERP).
//
// Everything is located through program headers, never section headers, so
// stripped binaries are handled the same way the dynamic loader sees them.
// Rewrites never move or grow anything: a new value must fit in the bytes
// the original string occupied, and the unused tail is zero filled.
package elfpatch
