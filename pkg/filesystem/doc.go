// Package filesystem provides filesystem implementations for kegreloc.
//
// This package contains implementations of the types.FS interface:
// the OS filesystem used for real relocations and an afero-backed
// filesystem used by tests.
package filesystem
