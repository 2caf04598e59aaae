// Package codegen implements spec.md §4.4: the AST-to-C11 code generator.
// It walks the final Program in passes — collect instantiations and
// lambdas, then emit includes/directives/enums/containers/raw/lambdas/
// forward-decls/globals/bodies in the fixed order §4.4.2 specifies.
//
// original_source/src/codegen.c drives every lowering rule from four
// static globals (out, syms, enums, type_insts) and two static counters.
// Per spec.md §9's "Process-wide state" redesign note, this rewrite
// replaces all of that with one explicit Context threaded through every
// emit function — nothing here is package-level mutable state, so two
// translations can run without clobbering each other (even though §5 still
// only promises one in flight at a time).
package codegen

import (
	"fmt"
	"strings"

	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/config"
	"github.com/moxy-lang/moxy/internal/preprocess"
	"github.com/moxy-lang/moxy/internal/types"
)

// arcLocal is one ARC-managed local registered in a scope: its name and
// its container type, needed at release time to pick the right
// `<mangled>_release` function.
type arcLocal struct {
	name string
	typ  *types.Type
}

// scope is one entry in the combined symbol-table/ARC-scope stack
// (spec.md §3: both are pushed/popped at the same lexical boundaries —
// function, block, loop body, match arm, if/else branch — so this
// implementation merges them into a single stack instead of keeping two
// separately-indexed ones).
type scope struct {
	symbols  map[string]string // name -> canonical type string
	arc      []arcLocal        // registration order; release walks it in reverse
	released bool              // set once a return directly inside this scope has cleaned it
}

// Context carries every piece of process-wide state spec.md §5 lists, as
// explicit fields instead of globals: the two feature flags, the
// instantiation set, the enum registry, the lambda list, the symbol/ARC
// scope stack, the await/for-in counters, and the user include/directive
// lists collected by the preprocessor.
type Context struct {
	Flags config.Flags

	instOrder []string
	instSet   map[string]*types.Type

	enumOrder []string
	enums     map[string]*ast.EnumDecl

	lambdas []*ast.Lambda

	funcReturns map[string]string // function name -> canonical return type string

	scopes []*scope

	awaitCounter int
	forinCounter int

	userIncludes   []string
	userDirectives []string

	// asyncRetType is non-nil while emitting an async function's thread
	// body: it redirects ReturnStmt emission to the pthread-thread return
	// convention of spec.md §4.4.8 instead of the plain C one.
	asyncRetType *types.Type

	indent int
}

// NewContext builds a fresh Context for one translation. Every field
// starts empty: spec.md §5 requires all process-wide state to reset at
// the entry to each top-level translation request.
func NewContext(flags config.Flags, pre *preprocess.Result) *Context {
	return &Context{
		Flags:          flags,
		instSet:        map[string]*types.Type{},
		enums:          map[string]*ast.EnumDecl{},
		funcReturns:    map[string]string{},
		userIncludes:   pre.UserIncludes,
		userDirectives: pre.UserDirectives,
	}
}

// registerInstantiation records t in the deduplicated instantiation set
// (spec.md §3 invariant 1), keyed by canonical type string.
func (c *Context) registerInstantiation(t *types.Type) {
	if t == nil || !(t.IsList() || t.IsMap() || t.IsResult() || t.IsFuture()) {
		return
	}
	key := t.Canonical()
	if _, ok := c.instSet[key]; ok {
		return
	}
	c.instSet[key] = t
	c.instOrder = append(c.instOrder, key)
	// A container nested inside another (map[string,int[]], Result<list_T>)
	// also needs its own template.
	switch t.Kind {
	case types.List:
		c.registerInstantiation(t.Elem)
	case types.MapT:
		c.registerInstantiation(t.Key)
		c.registerInstantiation(t.Val)
	case types.ResultT:
		c.registerInstantiation(t.Ok)
	case types.FutureT:
		c.registerInstantiation(t.Elem)
	}
}

func (c *Context) registerEnum(e *ast.EnumDecl) {
	if _, ok := c.enums[e.Name]; ok {
		return
	}
	c.enums[e.Name] = e
	c.enumOrder = append(c.enumOrder, e.Name)
}

func (c *Context) nextLambdaID() int {
	return len(c.lambdas)
}

func (c *Context) registerLambda(l *ast.Lambda) {
	l.Id = c.nextLambdaID()
	c.lambdas = append(c.lambdas, l)
}

func (c *Context) nextAwaitTemp() string {
	n := c.awaitCounter
	c.awaitCounter++
	return fmt.Sprintf("_aw%d", n)
}

func (c *Context) nextForInTemp() string {
	n := c.forinCounter
	c.forinCounter++
	return fmt.Sprintf("_fi%d", n)
}

// ---- symbol table / ARC scope stack ------------------------------------

func (c *Context) pushScope() {
	c.scopes = append(c.scopes, &scope{symbols: map[string]string{}})
}

// popScope emits (unless the scope was already cleaned by a return) a
// release for every ARC local registered in the top scope, in reverse
// registration order, then pops it — spec.md §4.4.9.
func (c *Context) popScope(w *strings.Builder) {
	top := c.scopes[len(c.scopes)-1]
	if !top.released {
		c.emitReleases(w, top, "")
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// emitReleases releases every ARC local in s except exclude, in reverse
// registration order. ARC containers are always declared as pointers
// (Context.declType), so the local itself — not its address — is the
// value the generated `_release` function expects.
func (c *Context) emitReleases(w *strings.Builder, s *scope, exclude string) {
	for i := len(s.arc) - 1; i >= 0; i-- {
		loc := s.arc[i]
		if loc.name == exclude {
			continue
		}
		fmt.Fprintf(w, "%s%s_release(%s);\n", c.indentStr(), loc.typ.Mangle(), loc.name)
	}
}

// bindSymbol records name's type string in the innermost scope (last-write
// wins on lookup, per spec.md §3).
func (c *Context) bindSymbol(name, typ string) {
	c.scopes[len(c.scopes)-1].symbols[name] = typ
}

// bindARCLocal both records the symbol and — when t is ARC-eligible under
// the current flags — registers it for scope-exit release.
func (c *Context) bindARCLocal(name string, t *types.Type) {
	c.bindSymbol(name, t.Canonical())
	if c.Flags.ARC && t.IsARCEligible() {
		top := c.scopes[len(c.scopes)-1]
		top.arc = append(top.arc, arcLocal{name: name, typ: t})
	}
}

// lookupSymbol scans the scope stack from innermost to outermost.
func (c *Context) lookupSymbol(name string) (*types.Type, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if raw, ok := c.scopes[i].symbols[name]; ok {
			return types.Parse(raw), true
		}
	}
	return nil, false
}

// emitReturnCleanup releases every still-live ARC local across the whole
// active scope stack, excluding returnedIdent wherever it was declared
// (ownership transfers to the caller), then marks the innermost scope
// released: the rest of that scope is unreachable after the return, while
// the enclosing scopes keep their natural popScope releases for the paths
// that do not take this return (spec.md §4.4.9).
func (c *Context) emitReturnCleanup(w *strings.Builder, returnedIdent string) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		s := c.scopes[i]
		if s.released {
			continue
		}
		c.emitReleases(w, s, returnedIdent)
	}
	c.scopes[len(c.scopes)-1].released = true
}

// ---- indentation --------------------------------------------------------

// declType is the C type used when *declaring* a variable of type t: the
// same as t.CType() unless ARC is enabled and t is an ARC-eligible
// container, in which case the declaration is a pointer — spec.md §4.4.4:
// "the struct is always allocated on the heap" under ARC.
func (c *Context) declType(t *types.Type) string {
	if c.Flags.ARC && t.IsARCEligible() {
		return t.CType() + " *"
	}
	return t.CType()
}

func (c *Context) indentStr() string { return strings.Repeat("    ", c.indent) }
func (c *Context) pushIndent()       { c.indent++ }
func (c *Context) popIndent()        { c.indent-- }
