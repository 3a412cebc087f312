// Package report renders relocation results for people and for machines.
//
// Human output is plain or styled text; machine output is JSON or YAML of
// the same values the library returns, so scripts can rely on field names
// staying stable.
package report
