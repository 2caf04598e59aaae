// Package preprocess implements spec.md §4.1: resolving
// `#include "x.mxy"` by textual inlining, capturing non-include directives
// and C #include lines for later emission, and registering `@type`
// pragmas so the parser accepts user type names.
//
// It is a pure textual transform parameterized by a base directory,
// grounded on original_source/src/main.c's preprocessing pass and on the
// relative-then-fallback include resolution idiom of
// funvibe-funxy/internal/utils/path_utils.go (ResolveImportPath,
// GetModuleDir).
package preprocess

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moxy-lang/moxy/internal/diag"
	"github.com/moxy-lang/moxy/internal/stdlib"
)

// Result is everything the preprocessor hands to the lexer/parser/codegen:
// the fully spliced source text plus the side tables spec.md §4.1 and
// §4.4.2 describe.
type Result struct {
	Source         string
	UserIncludes   []string // deduplicated, declaration order
	UserDirectives []string // non-include '#' lines, declaration order
	KnownTypes     map[string]bool
}

// Process reads path and recursively inlines its .mxy includes. baseDir
// resolution is always relative to the including file's own directory,
// per spec.md §4.1.
func Process(path string) (*Result, error) {
	r := &Result{KnownTypes: map[string]bool{}}
	seenIncludes := map[string]bool{}
	var out strings.Builder

	var visit func(path string, source string) error
	visit = func(path, source string) error {
		dir := filepath.Dir(path)
		lines := strings.Split(source, "\n")
		for _, line := range lines {
			trimmed := strings.TrimLeft(line, " \t")
			if strings.HasPrefix(trimmed, "@type") {
				for _, name := range parseTypePragma(trimmed) {
					r.KnownTypes[name] = true
				}
				continue
			}
			if !strings.HasPrefix(trimmed, "#") {
				out.WriteString(line)
				out.WriteByte('\n')
				continue
			}
			directive := strings.TrimLeft(trimmed[1:], " \t")
			switch {
			case strings.HasPrefix(directive, "include"):
				target, quoted, angled := parseInclude(directive)
				if target == "" {
					return &diag.Error{Category: diag.Resolution, Message: fmt.Sprintf("malformed #include: %q", line)}
				}
				if quoted && strings.HasSuffix(target, ".mxy") {
					childPath, childSrc, err := resolveMxyInclude(dir, target)
					if err != nil {
						return err
					}
					if err := visit(childPath, childSrc); err != nil {
						return err
					}
					continue
				}
				// Non-.mxy include: record verbatim for later emission.
				rec := "#include " + target
				if angled {
					rec = "#include <" + target + ">"
				} else if quoted {
					rec = "#include \"" + target + "\""
				}
				if !seenIncludes[rec] {
					seenIncludes[rec] = true
					r.UserIncludes = append(r.UserIncludes, rec)
				}
			case strings.HasPrefix(directive, "@type"):
				for _, name := range parseTypePragma(directive) {
					r.KnownTypes[name] = true
				}
			default:
				r.UserDirectives = append(r.UserDirectives, "#"+directive)
			}
		}
		return nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &diag.Error{Category: diag.Resolution, Message: fmt.Sprintf("cannot find '%s'", path)}
	}
	if err := visit(path, string(src)); err != nil {
		return nil, err
	}
	r.Source = out.String()
	return r, nil
}

// resolveMxyInclude resolves a `.mxy` include relative to dir first, then
// falls back to the embedded standard-library table on a disk miss
// (spec.md §4.1).
func resolveMxyInclude(dir, target string) (string, string, error) {
	candidate := filepath.Join(dir, target)
	if data, err := os.ReadFile(candidate); err == nil {
		body := string(data)
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		return candidate, body, nil
	}
	if body, ok := stdlib.Lookup(target); ok {
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		return target, body, nil
	}
	return "", "", &diag.Error{Category: diag.Resolution, Message: fmt.Sprintf("cannot find '%s'", target)}
}

// parseInclude extracts the target text out of `include "x"` or
// `include <x>`, reporting whether it was delimited (quoted is true for
// both the `"x"` and the `<x>` form) and whether it was angle-bracketed.
func parseInclude(directive string) (target string, quoted bool, angled bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(directive, "include"))
	if len(rest) >= 2 && rest[0] == '"' {
		if end := strings.IndexByte(rest[1:], '"'); end >= 0 {
			return rest[1 : end+1], true, false
		}
	}
	if len(rest) >= 2 && rest[0] == '<' {
		if end := strings.IndexByte(rest, '>'); end > 0 {
			return rest[1:end], true, true
		}
	}
	return "", false, false
}

// parseTypePragma splits `@type name1, name2, ...;` into names.
func parseTypePragma(directive string) []string {
	rest := strings.TrimPrefix(directive, "@type")
	rest = strings.TrimSuffix(strings.TrimSpace(rest), ";")
	var names []string
	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}
