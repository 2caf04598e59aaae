// Package types implements the moxy type-string DSL described in spec.md
// §3: atomic types, list types (T[]), result types (Result<T>), map types
// (map[K,V]), future types (Future<T>), with arbitrary C compositions
// (const char*, struct Foo*, function pointers) preserved verbatim.
//
// Every type string normalizes to a canonical form used both as an
// instantiation key and to derive a mangled C identifier.
package types

import "strings"

// Kind classifies a parsed Type.
type Kind int

const (
	Atomic Kind = iota // int, string, const char*, struct Foo*, ...
	List               // T[]
	ResultT            // Result<T>
	MapT               // map[K,V]
	FutureT            // Future<T>
)

// Type is a parsed node of the type DSL. Atomic types carry their raw text
// verbatim in Raw; composite types carry their element types parsed
// recursively so that nesting like map[string,int[]] works.
type Type struct {
	Kind Kind
	Raw  string // atomic text, verbatim (e.g. "const char*")
	Elem *Type  // List, FutureT
	Key  *Type  // MapT
	Val  *Type  // MapT
	Ok   *Type  // ResultT
}

// Parse reads a type string per the grammar in spec.md §3. It never
// fails: anything it cannot structurally recognize becomes an Atomic type
// holding the trimmed input verbatim, which is exactly how the DSL is
// meant to preserve free-form C compositions.
func Parse(s string) *Type {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasSuffix(s, "[]"):
		return &Type{Kind: List, Elem: Parse(s[:len(s)-2])}
	case strings.HasPrefix(s, "Result<") && strings.HasSuffix(s, ">"):
		return &Type{Kind: ResultT, Ok: Parse(s[len("Result<") : len(s)-1])}
	case strings.HasPrefix(s, "Future<") && strings.HasSuffix(s, ">"):
		return &Type{Kind: FutureT, Elem: Parse(s[len("Future<") : len(s)-1])}
	case strings.HasPrefix(s, "map[") && strings.HasSuffix(s, "]"):
		inner := s[len("map[") : len(s)-1]
		k, v := splitMapArgs(inner)
		return &Type{Kind: MapT, Key: Parse(k), Val: Parse(v)}
	default:
		return &Type{Kind: Atomic, Raw: s}
	}
}

// splitMapArgs splits "K,V" on the top-level comma, respecting nested
// map[...]/<...>/[...] so that map[string,int[]] and
// map[string,map[int,string]] both split correctly.
func splitMapArgs(s string) (string, string) {
	depth := 0
	for i, r := range s {
		switch r {
		case '[', '<':
			depth++
		case ']', '>':
			depth--
		case ',':
			if depth == 0 {
				return s[:i], s[i+1:]
			}
		}
	}
	return s, ""
}

// Canonical returns the normalized textual form of t, matching what Parse
// would reproduce: it is the instantiation key used to deduplicate
// generic containers (spec.md §3 invariant 1).
func (t *Type) Canonical() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case List:
		return t.Elem.Canonical() + "[]"
	case ResultT:
		return "Result<" + t.Ok.Canonical() + ">"
	case FutureT:
		return "Future<" + t.Elem.Canonical() + ">"
	case MapT:
		return "map[" + t.Key.Canonical() + "," + t.Val.Canonical() + "]"
	default:
		return t.Raw
	}
}

// mangleAtom maps an atomic type's canonical text to the fragment used in
// mangled C identifiers. "string" mangles to the identifier "string" even
// though it maps to "const char*" at terminal (variable-declaration)
// positions — spec.md §6, "Generated C conventions".
func mangleAtom(raw string) string {
	if raw == "string" {
		return "string"
	}
	// Collapse anything that isn't alnum/underscore so free-form C
	// compositions (const char*, struct Foo*) still produce a legal
	// C identifier fragment.
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '*':
			b.WriteString("ptr")
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Mangle derives the C identifier fragment for t (list_int, map_string_int,
// Result_int, Future_void) per spec.md §6.
func (t *Type) Mangle() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case List:
		return "list_" + t.Elem.Mangle()
	case ResultT:
		return "Result_" + t.Ok.Mangle()
	case FutureT:
		return "Future_" + t.Elem.Mangle()
	case MapT:
		return "map_" + t.Key.Mangle() + "_" + t.Val.Mangle()
	default:
		return mangleAtom(t.Raw)
	}
}

// CType returns the C type used at a terminal (variable-declaration)
// position: the mangled struct typedef name for containers, or the raw
// verbatim C text for atomics (with "string" mapped to "const char*").
func (t *Type) CType() string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case List, ResultT, MapT, FutureT:
		return t.Mangle()
	default:
		if t.Raw == "string" {
			return "const char*"
		}
		return t.Raw
	}
}

func (t *Type) IsList() bool    { return t != nil && t.Kind == List }
func (t *Type) IsResult() bool  { return t != nil && t.Kind == ResultT }
func (t *Type) IsMap() bool     { return t != nil && t.Kind == MapT }
func (t *Type) IsFuture() bool  { return t != nil && t.Kind == FutureT }
func (t *Type) IsContainer() bool {
	return t.IsList() || t.IsMap()
}

// IsARCEligible reports whether t is a container kind that participates in
// ARC tracking when the ARC feature flag is enabled (spec.md §4.4.9: lists
// and maps, not Result or Future).
func (t *Type) IsARCEligible() bool { return t.IsContainer() }
