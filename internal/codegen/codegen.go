package codegen

import (
	"strings"

	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/config"
	"github.com/moxy-lang/moxy/internal/preprocess"
	"github.com/moxy-lang/moxy/internal/types"
)

// Generate lowers a parsed Program to a complete C11 translation unit,
// wiring the fixed emission order of spec.md §4.4.2: user includes, auto
// includes, user directives, enum declarations, container templates, raw
// top-level declarations in source order, hoisted lambda functions,
// forward declarations, global variable definitions, then function
// bodies.
func Generate(prog *ast.Program, pre *preprocess.Result, flags config.Flags) (string, error) {
	ctx := NewContext(flags, pre)
	collect(ctx, prog)

	var raws []*ast.Raw
	var globals []*ast.VarDecl
	var funcs []*ast.FuncDecl
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.Raw:
			raws = append(raws, n)
		case *ast.VarDecl:
			globals = append(globals, n)
		case *ast.FuncDecl:
			funcs = append(funcs, n)
		}
	}

	var out strings.Builder
	emitIncludes(&out, ctx)
	emitUserDirectives(&out, ctx)
	emitEnums(&out, ctx)
	emitContainers(&out, ctx)

	for _, r := range raws {
		out.WriteString(r.Text)
		out.WriteString("\n")
	}
	if len(raws) > 0 {
		out.WriteString("\n")
	}

	// The global scope stays pushed for the rest of generation so every
	// function body's symbol lookups can fall through to it.
	ctx.pushScope()
	for _, g := range globals {
		ctx.bindSymbol(g.Name, types.Parse(g.Type).Canonical())
	}

	emitLambdas(ctx, &out)
	emitForwardDecls(&out, ctx, funcs)

	for _, g := range globals {
		emitGlobalVarDecl(&out, ctx, g)
	}
	if len(globals) > 0 {
		out.WriteString("\n")
	}

	for _, f := range funcs {
		emitFuncDecl(ctx, &out, f)
	}

	return out.String(), nil
}

// emitIncludes writes the user's own #include lines, then the fixed auto-
// include set spec.md §4.4.2 mandates: stdlib.h/stdio.h/stdbool.h always,
// string.h iff a list or map was instantiated, pthread.h iff a Future was.
func emitIncludes(w *strings.Builder, ctx *Context) {
	for _, inc := range ctx.userIncludes {
		w.WriteString(inc)
		w.WriteString("\n")
	}
	w.WriteString("#include <stdlib.h>\n#include <stdio.h>\n#include <stdbool.h>\n")

	hasListOrMap := false
	hasFuture := false
	for _, key := range ctx.instOrder {
		t := ctx.instSet[key]
		if t.IsList() || t.IsMap() {
			hasListOrMap = true
		}
		if t.IsFuture() {
			hasFuture = true
		}
	}
	if hasListOrMap {
		w.WriteString("#include <string.h>\n")
	}
	if hasFuture {
		w.WriteString("#include <pthread.h>\n")
	}
	w.WriteString("\n")
}

func emitUserDirectives(w *strings.Builder, ctx *Context) {
	for _, d := range ctx.userDirectives {
		w.WriteString(d)
		w.WriteString("\n")
	}
	if len(ctx.userDirectives) > 0 {
		w.WriteString("\n")
	}
}

// emitForwardDecls prototypes every non-main function ahead of the global
// variable section, so bodies can call each other regardless of source
// order (spec.md §4.4.2 step 8). An async function's prototype is its
// launcher's signature — the thread function and args struct are
// implementation detail, not part of its public shape.
func emitForwardDecls(w *strings.Builder, ctx *Context, funcs []*ast.FuncDecl) {
	any := false
	for _, f := range funcs {
		if f.IsMain {
			continue
		}
		any = true
		retType := types.Parse(f.ReturnType)
		w.WriteString(retType.CType())
		w.WriteString(" ")
		w.WriteString(f.Name)
		w.WriteString("(")
		w.WriteString(paramListStr(ctx, f.Params))
		w.WriteString(");\n")
	}
	if any {
		w.WriteString("\n")
	}
}
