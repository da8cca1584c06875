// Package stream implements the input adapter spec.md §4.5 and §6
// describe: buffered chunked reading with a small stash carrying
// split records across chunk boundaries, and three record formats
// (binary little-endian u32 payload, NUST text, DARPA text) that each
// produce (uid, weight=1) records for the HH engine.
package stream

import "strings"

// Format identifies which record parser a file should be read with.
type Format int

const (
	Binary Format = iota
	NUST
	DARPA
)

// DetectFormat infers the record format from substrings in path, matching
// original_source/src/precision_hh.c's strstr(filename, ...) dispatch
// chain (spec.md §6 CLI surface: "format inferred from substring").
func DetectFormat(path string) (Format, bool) {
	switch {
	case strings.Contains(path, "NUST"):
		return NUST, true
	case strings.Contains(path, "DARPA"):
		return DARPA, true
	case strings.Contains(path, "Zipfian"), strings.Contains(path, "Weighted"):
		return Binary, true
	default:
		return Binary, false
	}
}
