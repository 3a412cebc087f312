package types

import (
	"sort"

	"github.com/samber/lo"
)

// RuntimeLibrary is a C++ standard library implementation.
type RuntimeLibrary string

const (
	LibCxx    RuntimeLibrary = "libcxx"
	LibStdCxx RuntimeLibrary = "libstdcxx"
)

// RuntimeSet is an unordered set of runtime libraries.
type RuntimeSet map[RuntimeLibrary]struct{}

// Add inserts lib into the set
func (s RuntimeSet) Add(lib RuntimeLibrary) {
	s[lib] = struct{}{}
}

// Has reports whether lib is in the set
func (s RuntimeSet) Has(lib RuntimeLibrary) bool {
	_, ok := s[lib]
	return ok
}

// Sorted returns the members in a stable order for display.
func (s RuntimeSet) Sorted() []RuntimeLibrary {
	libs := lo.Keys(s)
	sort.Slice(libs, func(i, j int) bool { return libs[i] < libs[j] })
	return libs
}
