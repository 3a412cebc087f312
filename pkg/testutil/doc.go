// Package testutil provides helpers for testing relocation components.
//
// Key components:
//   - BuildELF / WriteELF: minimal ELF32/ELF64 images with PT_INTERP,
//     PT_DYNAMIC and PT_LOAD segments, so patching runs against real bytes
//   - FakeAccessor: an in-memory elfpatch.Accessor that counts reads and
//     records every patch call
//   - KegEnvironment: a keg directory tree, either in memory (afero plus
//     FakeAccessor) or isolated under t.TempDir()
//
// All test data is defined inline.
package testutil
