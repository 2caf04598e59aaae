package codegen

import (
	"fmt"
	"strings"

	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/types"
)

// emitStmt renders one statement at the current indent (spec.md §4.4.6-9).
func emitStmt(ctx *Context, w *strings.Builder, s ast.Stmt) {
	switch n := s.(type) {
	case nil:
		return
	case *ast.BlockStmt:
		w.WriteString(ctx.indentStr())
		emitBlock(ctx, w, n)
	case *ast.VarDecl:
		emitVarDecl(ctx, w, n)
	case *ast.PrintStmt:
		emitPrint(ctx, w, n)
	case *ast.AssertStmt:
		emitAssert(ctx, w, n)
	case *ast.MatchStmt:
		emitMatch(ctx, w, n)
	case *ast.IfStmt:
		emitIf(ctx, w, n)
	case *ast.WhileStmt:
		emitWhile(ctx, w, n)
	case *ast.ForStmt:
		emitFor(ctx, w, n)
	case *ast.ForInStmt:
		emitForIn(ctx, w, n)
	case *ast.ReturnStmt:
		emitReturn(ctx, w, n)
	case *ast.AssignStmt:
		emitAssign(ctx, w, n)
	case *ast.ExprStmt:
		emitExprStmt(ctx, w, n)
	case *ast.Raw:
		fmt.Fprintf(w, "%s%s\n", ctx.indentStr(), n.Text)
	}
}

// emitBlock writes a brace-delimited statement list, pushing a fresh
// symbol/ARC scope for it and releasing whatever is still live on the way
// out (spec.md §3, §4.4.9). Callers are expected to have already written
// whatever precedes the opening brace (`if (...) `, a function signature,
// ...).
func emitBlock(ctx *Context, w *strings.Builder, blk *ast.BlockStmt) {
	w.WriteString("{\n")
	ctx.pushIndent()
	ctx.pushScope()
	for _, st := range blk.Stmts {
		emitStmt(ctx, w, st)
	}
	ctx.popScope(w)
	ctx.popIndent()
	fmt.Fprintf(w, "%s}\n", ctx.indentStr())
}

// containerInitRHS renders a VarDecl/global initializer, special-casing a
// list literal assigned to a list-typed declaration into the `_make` call
// scenario.md §8's scenario 1 expects: `list_int v = list_int_make((int[])
// {1, 2, 3}, 3);`.
func containerInitRHS(ctx *Context, declT *types.Type, init ast.Expr) string {
	if declT.IsList() {
		if lit, ok := init.(*ast.ListLit); ok {
			compound := emitListLit(ctx, lit, declT)
			return fmt.Sprintf("%s_make(%s, %d)", declT.Mangle(), compound, len(lit.Items))
		}
	}
	return emitExpr(ctx, init)
}

// resultInitText renders `Ok(v)`/`Err(v)` at a Result<T>-typed
// declaration's initializer, the one place spec.md §4.4.5 gives them
// concrete meaning (Open Question 2).
func resultInitText(ctx *Context, declT *types.Type, init ast.Expr) (string, bool) {
	if !declT.IsResult() {
		return "", false
	}
	if okE, ok := init.(*ast.OkExpr); ok {
		return fmt.Sprintf("{ .tag = %s_Ok, .ok = %s }", declT.Mangle(), emitExpr(ctx, okE.Inner)), true
	}
	if errE, ok := init.(*ast.ErrExpr); ok {
		return fmt.Sprintf("{ .tag = %s_Err, .err = %s }", declT.Mangle(), emitExpr(ctx, errE.Inner)), true
	}
	return "", false
}

func emitVarDecl(ctx *Context, w *strings.Builder, n *ast.VarDecl) {
	indent := ctx.indentStr()
	declT := types.Parse(n.Type)

	if aw, ok := n.Init.(*ast.AwaitExpr); ok {
		emitAwaitVarDecl(ctx, w, ctx.declType(declT), n.Name, aw.Inner)
		return
	}
	if rhs, ok := resultInitText(ctx, declT, n.Init); ok {
		fmt.Fprintf(w, "%s%s %s = %s;\n", indent, declT.CType(), n.Name, rhs)
		ctx.bindSymbol(n.Name, declT.Canonical())
		return
	}

	rhs := containerInitRHS(ctx, declT, n.Init)
	decl := ctx.declType(declT) + " "
	if ctx.Flags.ARC && declT.IsARCEligible() {
		decl = declT.CType() + " *"
	}
	fmt.Fprintf(w, "%s%s%s = %s;\n", indent, decl, n.Name, rhs)
	ctx.bindARCLocal(n.Name, declT)
}

// emitGlobalVarDecl is the top-level counterpart of emitVarDecl: no ARC
// scope tracking applies (a global lives for the program's whole run).
func emitGlobalVarDecl(w *strings.Builder, ctx *Context, n *ast.VarDecl) {
	declT := types.Parse(n.Type)
	if rhs, ok := resultInitText(ctx, declT, n.Init); ok {
		fmt.Fprintf(w, "%s %s = %s;\n", declT.CType(), n.Name, rhs)
		return
	}
	rhs := containerInitRHS(ctx, declT, n.Init)
	fmt.Fprintf(w, "%s %s = %s;\n", ctx.declType(declT), n.Name, rhs)
}

// emitAwaitVarDecl expands `T x = await e;` per spec.md §4.4.8 / §8
// scenario 4: declare the Future, join it, then unpack the joined result
// per element type (void: nothing to bind; string: the payload pointer
// is the result itself; everything else: a malloc'd box, dereferenced and
// freed).
func emitAwaitVarDecl(ctx *Context, w *strings.Builder, declaredType, name string, inner ast.Expr) {
	indent := ctx.indentStr()
	futType := inferType(ctx, inner)
	tmp := ctx.nextAwaitTemp()
	fmt.Fprintf(w, "%s%s %s = %s;\n", indent, futType.CType(), tmp, emitExpr(ctx, inner))

	innerT := futType.Elem
	switch innerT.Canonical() {
	case "void":
		fmt.Fprintf(w, "%spthread_join(%s.thread, NULL);\n", indent, tmp)
	case "string":
		ret := tmp + "_ret"
		fmt.Fprintf(w, "%svoid *%s;\n", indent, ret)
		fmt.Fprintf(w, "%spthread_join(%s.thread, &%s);\n", indent, tmp, ret)
		fmt.Fprintf(w, "%s%s %s = (const char *)%s;\n", indent, declaredType, name, ret)
	default:
		ret := tmp + "_ret"
		fmt.Fprintf(w, "%svoid *%s;\n", indent, ret)
		fmt.Fprintf(w, "%spthread_join(%s.thread, &%s);\n", indent, tmp, ret)
		fmt.Fprintf(w, "%s%s %s = *(%s *)%s;\n", indent, declaredType, name, innerT.CType(), ret)
		fmt.Fprintf(w, "%sfree(%s);\n", indent, ret)
	}
	ctx.bindSymbol(name, innerT.Canonical())
}

// emitAwaitBare expands a bare `await e;` statement: joins and discards
// whatever the future produced.
func emitAwaitBare(ctx *Context, w *strings.Builder, inner ast.Expr) {
	indent := ctx.indentStr()
	futType := inferType(ctx, inner)
	tmp := ctx.nextAwaitTemp()
	fmt.Fprintf(w, "%s%s %s = %s;\n", indent, futType.CType(), tmp, emitExpr(ctx, inner))

	innerT := futType.Elem
	if innerT.Canonical() == "void" {
		fmt.Fprintf(w, "%spthread_join(%s.thread, NULL);\n", indent, tmp)
		return
	}
	ret := tmp + "_ret"
	fmt.Fprintf(w, "%svoid *%s;\n", indent, ret)
	fmt.Fprintf(w, "%spthread_join(%s.thread, &%s);\n", indent, tmp, ret)
	if innerT.Canonical() != "string" {
		fmt.Fprintf(w, "%sfree(%s);\n", indent, ret)
	}
}

func printFormat(t *types.Type) string {
	switch t.Canonical() {
	case "int", "long", "short", "bool":
		return "%d"
	case "float", "double":
		return "%f"
	case "string":
		return "%s"
	case "char":
		return "%c"
	}
	return "%d"
}

func emitPrint(ctx *Context, w *strings.Builder, n *ast.PrintStmt) {
	t := inferType(ctx, n.Arg)
	fmt.Fprintf(w, "%sprintf(\"%s\\n\", %s);\n", ctx.indentStr(), printFormat(t), emitExpr(ctx, n.Arg))
}

// emitAssert lowers `assert(expr);` to a runtime check carrying the source
// line that produced it, in the spirit of the standard library's own
// <assert.h> macro.
func emitAssert(ctx *Context, w *strings.Builder, n *ast.AssertStmt) {
	fmt.Fprintf(w, "%sif (!(%s)) { fprintf(stderr, \"assertion failed at line %d\\n\"); exit(1); }\n",
		ctx.indentStr(), emitExpr(ctx, n.Arg), n.Line)
}

// emitIf flattens an if / else-if / ... / else chain into a single loop so
// each arm's condition and block print at the same indent.
func emitIf(ctx *Context, w *strings.Builder, n *ast.IfStmt) {
	indent := ctx.indentStr()
	cur := n
	first := true
	for {
		if first {
			fmt.Fprintf(w, "%sif (%s) ", indent, emitExpr(ctx, cur.Cond))
			first = false
		} else {
			fmt.Fprintf(w, "%selse if (%s) ", indent, emitExpr(ctx, cur.Cond))
		}
		emitBlock(ctx, w, cur.Then)

		switch e := cur.Else.(type) {
		case nil:
			return
		case *ast.IfStmt:
			cur = e
			continue
		case *ast.BlockStmt:
			fmt.Fprintf(w, "%selse ", indent)
			emitBlock(ctx, w, e)
			return
		default:
			return
		}
	}
}

func emitWhile(ctx *Context, w *strings.Builder, n *ast.WhileStmt) {
	fmt.Fprintf(w, "%swhile (%s) ", ctx.indentStr(), emitExpr(ctx, n.Cond))
	emitBlock(ctx, w, n.Body)
}

// emitSimpleStmtInline renders a for-header clause (init or step) without
// a trailing semicolon/newline.
func emitSimpleStmtInline(ctx *Context, s ast.Stmt) string {
	switch n := s.(type) {
	case nil:
		return ""
	case *ast.VarDecl:
		declT := types.Parse(n.Type)
		return fmt.Sprintf("%s %s = %s", ctx.declType(declT), n.Name, emitExpr(ctx, n.Init))
	case *ast.AssignStmt:
		return fmt.Sprintf("%s %s %s", emitExpr(ctx, n.Target), n.Op, emitExpr(ctx, n.Value))
	case *ast.ExprStmt:
		return emitExpr(ctx, n.X)
	}
	return ""
}

func emitFor(ctx *Context, w *strings.Builder, n *ast.ForStmt) {
	indent := ctx.indentStr()
	ctx.pushScope()

	var initStr string
	if vd, ok := n.Init.(*ast.VarDecl); ok {
		declT := types.Parse(vd.Type)
		initStr = fmt.Sprintf("%s %s = %s", ctx.declType(declT), vd.Name, emitExpr(ctx, vd.Init))
		ctx.bindSymbol(vd.Name, declT.Canonical())
	} else {
		initStr = emitSimpleStmtInline(ctx, n.Init)
	}

	condStr := ""
	if n.Cond != nil {
		condStr = emitExpr(ctx, n.Cond)
	}
	stepStr := emitSimpleStmtInline(ctx, n.Step)

	fmt.Fprintf(w, "%sfor (%s; %s; %s) ", indent, initStr, condStr, stepStr)
	emitBlock(ctx, w, n.Body)
	ctx.popScope(w)
}

func sepForType(ctx *Context, t *types.Type) string {
	if ctx.Flags.ARC && t.IsARCEligible() {
		return "->"
	}
	return "."
}

// emitForIn lowers the three `for ... in ...` forms of spec.md §4.4.7:
// a range becomes a canonical counted loop over the bound itself; a
// list/map becomes a synthetic index variable walking `.data`/`.entries`.
func emitForIn(ctx *Context, w *strings.Builder, n *ast.ForInStmt) {
	indent := ctx.indentStr()

	if n.Range != nil {
		from := emitExpr(ctx, n.Range.From)
		to := emitExpr(ctx, n.Range.To)
		fmt.Fprintf(w, "%sfor (int %s = %s; %s < %s; %s++) ", indent, n.VarA, from, n.VarA, to, n.VarA)
		ctx.pushScope()
		ctx.bindSymbol(n.VarA, "int")
		emitBlockStmts(ctx, w, n.Body)
		ctx.popScope(w)
		return
	}

	iterType := inferType(ctx, n.Iter)
	iterExpr := emitExpr(ctx, n.Iter)
	sep := sepForType(ctx, iterType)
	tmp := ctx.nextForInTemp()

	fmt.Fprintf(w, "%sfor (int %s = 0; %s < %s%slen; %s++) {\n", indent, tmp, tmp, iterExpr, sep, tmp)
	ctx.pushIndent()
	ctx.pushScope()

	if iterType.IsMap() {
		fmt.Fprintf(w, "%s%s %s = %s%sentries[%s].key;\n", ctx.indentStr(), iterType.Key.CType(), n.VarA, iterExpr, sep, tmp)
		ctx.bindSymbol(n.VarA, iterType.Key.Canonical())
		if n.VarB != "" {
			fmt.Fprintf(w, "%s%s %s = %s%sentries[%s].val;\n", ctx.indentStr(), iterType.Val.CType(), n.VarB, iterExpr, sep, tmp)
			ctx.bindSymbol(n.VarB, iterType.Val.Canonical())
		}
	} else {
		elemT := iterType.Elem
		if elemT == nil {
			elemT = unknownType()
		}
		fmt.Fprintf(w, "%s%s %s = %s%sdata[%s];\n", ctx.indentStr(), elemT.CType(), n.VarA, iterExpr, sep, tmp)
		ctx.bindSymbol(n.VarA, elemT.Canonical())
	}

	for _, st := range n.Body.Stmts {
		emitStmt(ctx, w, st)
	}
	ctx.popScope(w)
	ctx.popIndent()
	fmt.Fprintf(w, "%s}\n", ctx.indentStr())
}

// emitBlockStmts runs a block's statements under the caller's already-
// pushed scope, writing its own braces (used by the range form of for-in,
// whose loop variable lives in the for-header's scope rather than a
// nested one).
func emitBlockStmts(ctx *Context, w *strings.Builder, blk *ast.BlockStmt) {
	w.WriteString("{\n")
	ctx.pushIndent()
	for _, st := range blk.Stmts {
		emitStmt(ctx, w, st)
	}
	ctx.popIndent()
	fmt.Fprintf(w, "%s}\n", ctx.indentStr())
}

func emitReturn(ctx *Context, w *strings.Builder, n *ast.ReturnStmt) {
	if ctx.asyncRetType != nil {
		emitAsyncReturn(ctx, w, n)
		return
	}
	indent := ctx.indentStr()
	returnedIdent := ""
	if id, ok := n.Value.(*ast.Ident); ok {
		returnedIdent = id.Name
	}
	if ctx.Flags.ARC {
		ctx.emitReturnCleanup(w, returnedIdent)
	}
	if n.Value == nil {
		fmt.Fprintf(w, "%sreturn;\n", indent)
		return
	}
	fmt.Fprintf(w, "%sreturn %s;\n", indent, emitExpr(ctx, n.Value))
}

// emitAsyncReturn is the thread-body return form spec.md §4.4.8 describes:
// void returns NULL, string returns the payload pointer directly (no
// intermediate box), everything else is malloc'd and returned as void*.
func emitAsyncReturn(ctx *Context, w *strings.Builder, n *ast.ReturnStmt) {
	indent := ctx.indentStr()
	returnedIdent := ""
	if id, ok := n.Value.(*ast.Ident); ok {
		returnedIdent = id.Name
	}
	if ctx.Flags.ARC {
		ctx.emitReturnCleanup(w, returnedIdent)
	}
	rt := ctx.asyncRetType
	switch rt.Canonical() {
	case "void":
		fmt.Fprintf(w, "%sreturn NULL;\n", indent)
	case "string":
		fmt.Fprintf(w, "%sreturn (void *)%s;\n", indent, emitExpr(ctx, n.Value))
	default:
		cType := rt.CType()
		fmt.Fprintf(w, "%s%s *r = malloc(sizeof(%s));\n", indent, cType, cType)
		fmt.Fprintf(w, "%s*r = %s;\n", indent, emitExpr(ctx, n.Value))
		fmt.Fprintf(w, "%sreturn r;\n", indent)
	}
}

// emitAssign lowers assignment, applying spec.md §4.4.9's ARC reassignment
// rule to a plain `target = value`: release the old value first, and if
// the new value is itself an ARC identifier, retain it after the copy.
func emitAssign(ctx *Context, w *strings.Builder, n *ast.AssignStmt) {
	indent := ctx.indentStr()
	if ctx.Flags.ARC && n.Op == "=" {
		if id, ok := n.Target.(*ast.Ident); ok {
			if t, ok := ctx.lookupSymbol(id.Name); ok && t.IsARCEligible() {
				fmt.Fprintf(w, "%s%s_release(%s);\n", indent, t.Mangle(), id.Name)
				fmt.Fprintf(w, "%s%s = %s;\n", indent, id.Name, emitExpr(ctx, n.Value))
				if rhsID, ok := n.Value.(*ast.Ident); ok {
					if rt, ok := ctx.lookupSymbol(rhsID.Name); ok && rt.IsARCEligible() {
						fmt.Fprintf(w, "%s%s_retain(%s);\n", indent, rt.Mangle(), id.Name)
					}
				}
				return
			}
		}
	}
	fmt.Fprintf(w, "%s%s %s %s;\n", indent, emitExpr(ctx, n.Target), n.Op, emitExpr(ctx, n.Value))
}

func emitExprStmt(ctx *Context, w *strings.Builder, n *ast.ExprStmt) {
	if aw, ok := n.X.(*ast.AwaitExpr); ok {
		emitAwaitBare(ctx, w, aw.Inner)
		return
	}
	fmt.Fprintf(w, "%s%s;\n", ctx.indentStr(), emitExpr(ctx, n.X))
}

// ---- match ---------------------------------------------------------------

type matchKind int

const (
	matchUnknown matchKind = iota
	matchSimple
	matchTagged
	matchResult
)

// classifyMatch implements the match/Result tie-break DESIGN.md records
// for Open Question 3: the target's own symbol type wins outright; only
// when the target's type is unknown does the first arm's pattern decide.
func classifyMatch(ctx *Context, n *ast.MatchStmt) (kind matchKind, enumName string, targetType *types.Type) {
	if t, ok := ctx.lookupSymbol(n.Target); ok {
		targetType = t
		if t.IsResult() {
			return matchResult, "", t
		}
		if e, ok := ctx.enums[t.Canonical()]; ok {
			if e.IsTagged() {
				return matchTagged, e.Name, t
			}
			return matchSimple, e.Name, t
		}
	}
	if len(n.Arms) > 0 {
		first := n.Arms[0].Pattern
		if first.EnumName != "" {
			if e, ok := ctx.enums[first.EnumName]; ok {
				if e.IsTagged() {
					return matchTagged, e.Name, targetType
				}
				return matchSimple, e.Name, targetType
			}
		} else if first.Variant == "Ok" || first.Variant == "Err" {
			return matchResult, "", targetType
		}
	}
	return matchUnknown, "", targetType
}

func caseLabelFor(kind matchKind, enumName string, targetType *types.Type, p ast.Pattern) string {
	switch kind {
	case matchResult:
		mangled := "Result"
		if targetType != nil && targetType.IsResult() {
			mangled = targetType.Mangle()
		}
		if p.Variant == "Ok" {
			return mangled + "_Ok"
		}
		return mangled + "_Err"
	default:
		name := enumName
		if name == "" {
			name = p.EnumName
		}
		return name + "_" + p.Variant
	}
}

func emitArmBinding(ctx *Context, w *strings.Builder, kind matchKind, enumName string, targetType *types.Type, targetName string, p ast.Pattern) {
	indent := ctx.indentStr()
	switch kind {
	case matchTagged:
		e, ok := ctx.enums[enumName]
		if !ok {
			return
		}
		v := findVariant(e, p.Variant)
		if v == nil || len(v.Fields) == 0 {
			return
		}
		f := v.Fields[0]
		ft := types.Parse(f.Type)
		fmt.Fprintf(w, "%s%s %s = %s.%s.%s;\n", indent, ft.CType(), p.Binding, targetName, p.Variant, f.Name)
		ctx.bindSymbol(p.Binding, ft.Canonical())
	case matchResult:
		if p.Variant == "Ok" {
			okT := unknownType()
			if targetType != nil && targetType.Ok != nil {
				okT = targetType.Ok
			}
			fmt.Fprintf(w, "%s%s %s = %s.ok;\n", indent, ctx.declType(okT), p.Binding, targetName)
			ctx.bindSymbol(p.Binding, okT.Canonical())
		} else {
			fmt.Fprintf(w, "%sconst char* %s = %s.err;\n", indent, p.Binding, targetName)
			ctx.bindSymbol(p.Binding, "string")
		}
	}
}

// emitMatch lowers `match target { ... }` to a `switch` on the target (a
// simple enum) or `target.tag` (a tagged enum or Result<T>), spec.md
// §4.4.6.
func emitMatch(ctx *Context, w *strings.Builder, n *ast.MatchStmt) {
	indent := ctx.indentStr()
	kind, enumName, targetType := classifyMatch(ctx, n)

	switchExpr := n.Target
	if kind == matchTagged || kind == matchResult {
		switchExpr = n.Target + ".tag"
	}

	fmt.Fprintf(w, "%sswitch (%s) {\n", indent, switchExpr)
	ctx.pushIndent()
	for _, arm := range n.Arms {
		label := caseLabelFor(kind, enumName, targetType, arm.Pattern)
		fmt.Fprintf(w, "%scase %s: {\n", ctx.indentStr(), label)
		ctx.pushIndent()
		ctx.pushScope()
		if arm.Pattern.Binding != "" {
			emitArmBinding(ctx, w, kind, enumName, targetType, n.Target, arm.Pattern)
		}
		emitStmt(ctx, w, arm.Body)
		ctx.popScope(w)
		fmt.Fprintf(w, "%sbreak;\n", ctx.indentStr())
		ctx.popIndent()
		fmt.Fprintf(w, "%s}\n", ctx.indentStr())
	}
	ctx.popIndent()
	fmt.Fprintf(w, "%s}\n", indent)
}
