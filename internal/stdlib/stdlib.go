// Package stdlib holds moxy's embedded standard library: the
// virtual-path -> source-text table spec.md §4.1 and §6 call the
// "standard-library resolver," queried by the preprocessor whenever an
// `#include "x.mxy"` cannot be found on disk relative to the including
// file.
//
// original_source/src/mxystdlib.h shipped this as a single C header
// string; this rewrite ships real .mxy source files instead, embedded at
// build time with the standard library's embed package (no third-party
// dependency models static file tables more directly than embed.FS).
package stdlib

import (
	"embed"
	"io/fs"
)

//go:embed lib/*.mxy
var libFS embed.FS

// virtualPrefix replaces the embed.FS directory "lib/" to form each entry's virtual include path, e.g. lib/io.mxy ->
// std/io.mxy.
const virtualPrefix = "std/"

var table map[string]string

func init() {
	table = make(map[string]string)
	entries, err := fs.ReadDir(libFS, "lib")
	if err != nil {
		panic("stdlib: embedded lib directory missing: " + err.Error())
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := fs.ReadFile(libFS, "lib/"+e.Name())
		if err != nil {
			panic("stdlib: embedded file unreadable: " + err.Error())
		}
		table[virtualPrefix+e.Name()] = string(data)
	}
}

// Lookup returns the source text registered for a virtual path
// (e.g. "std/io.mxy") and whether it exists.
func Lookup(virtualPath string) (string, bool) {
	src, ok := table[virtualPath]
	return src, ok
}

// Paths returns every virtual path the embedded standard library
// provides, sorted by nothing in particular — callers that need a stable
// order should sort it themselves.
func Paths() []string {
	paths := make([]string, 0, len(table))
	for p := range table {
		paths = append(paths, p)
	}
	return paths
}
