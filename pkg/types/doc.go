// Package types defines the values shared by the relocation components:
// the installed package being processed, the prefix mapping, the
// classification of candidate files, the dynamic-section view of an ELF
// file and the per-package summary. It also declares the FS interface the
// components use to reach the filesystem.
package types
