// Package config carries the translator's file-extension conventions and
// its two process-wide feature flags.
//
// original_source/src/mxyconf.h held these as C #defines; the source
// globals (async_enabled / arc_enabled) lived as static ints in the C
// codegen unit. Per spec.md §9's "Process-wide state" redesign note, this
// rewrite never holds them as package-level mutable state: every
// translation threads its own Flags value explicitly (see
// internal/codegen.Context). config only owns the immutable naming
// conventions and the optional project-file loader.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceFileExt is the recognized moxy source suffix.
const SourceFileExt = ".mxy"

// HasSourceExt reports whether path ends in the moxy source suffix,
// mirroring the teacher's config.HasSourceExt helper for its own ".lang"
// family of extensions.
func HasSourceExt(path string) bool {
	return strings.HasSuffix(path, SourceFileExt)
}

// TrimSourceExt removes a trailing .mxy suffix, if present.
func TrimSourceExt(name string) string {
	if strings.HasSuffix(name, SourceFileExt) {
		return name[:len(name)-len(SourceFileExt)]
	}
	return name
}

// Flags are the two process-wide feature flags of spec.md §4/§6: accepting
// Future<T>/await requires Async; emitting ARC-managed containers requires
// ARC. Both default off.
type Flags struct {
	Async bool
	ARC   bool
}

// Project is the optional moxy.yaml project file: a place to set the
// feature flags without CLI flags, in the style the teacher reaches for
// YAML-driven tool configuration. StdlibPaths is parsed and kept here, but
// include resolution does not consult it.
type Project struct {
	Async       bool     `yaml:"async"`
	ARC         bool     `yaml:"arc"`
	StdlibPaths []string `yaml:"stdlib_paths"`
}

// Flags extracts the two feature flags from a loaded project file.
func (p *Project) Flags() Flags {
	if p == nil {
		return Flags{}
	}
	return Flags{Async: p.Async, ARC: p.ARC}
}

// LoadProject reads and parses a moxy.yaml project file. A missing file is
// not an error — callers get a zero-value *Project, i.e. both flags off
// and no extra search paths, which is the spec.md §6 default.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Project{}, nil
	}
	if err != nil {
		return nil, err
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
