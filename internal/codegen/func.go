package codegen

import (
	"fmt"
	"strings"

	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/types"
)

// paramListStr renders a parameter list as C, `void` for an empty one.
func paramListStr(ctx *Context, params []ast.Param) string {
	if len(params) == 0 {
		return "void"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s %s", ctx.declType(types.Parse(p.Type)), p.Name)
	}
	return strings.Join(parts, ", ")
}

// emitFuncDecl emits one top-level function: async ones dispatch to the
// three-artifact pthread lowering of spec.md §4.4.8; `main` is special-
// cased to the C entry-point convention regardless of its declared return
// type (spec.md §8 scenario 1: `void main()` becomes `int main(void) { ...
// return 0; }`).
func emitFuncDecl(ctx *Context, w *strings.Builder, n *ast.FuncDecl) {
	if n.IsAsync {
		emitAsyncFunc(ctx, w, n)
		return
	}

	cRet := "void"
	if n.IsMain {
		cRet = "int"
	} else {
		cRet = types.Parse(n.ReturnType).CType()
	}
	params := "void"
	if !n.IsMain {
		params = paramListStr(ctx, n.Params)
	}
	fmt.Fprintf(w, "%s %s(%s) {\n", cRet, n.Name, params)
	ctx.pushIndent()
	ctx.pushScope()

	for _, p := range n.Params {
		pt := types.Parse(p.Type)
		if ctx.Flags.ARC && pt.IsARCEligible() {
			ctx.bindARCLocal(p.Name, pt)
			fmt.Fprintf(w, "%s%s_retain(%s);\n", ctx.indentStr(), pt.Mangle(), p.Name)
		} else {
			ctx.bindSymbol(p.Name, pt.Canonical())
		}
	}

	for _, st := range n.Body.Stmts {
		emitStmt(ctx, w, st)
	}
	if n.IsMain {
		fmt.Fprintf(w, "%sreturn 0;\n", ctx.indentStr())
	}

	ctx.popScope(w)
	ctx.popIndent()
	w.WriteString("}\n\n")
}

// emitAsyncFunc lowers an `async`-flavored (Future<T>-returning) function
// into the three artifacts spec.md §4.4.8 describes: an args struct
// carrying the parameters across the pthread boundary, a pthread-entry
// thread function running the body with ReturnStmt redirected through
// Context.asyncRetType, and a launcher with the function's original
// signature that starts the thread and hands back the Future immediately.
func emitAsyncFunc(ctx *Context, w *strings.Builder, n *ast.FuncDecl) {
	retType := types.Parse(n.ReturnType)
	innerType := retType.Elem
	if innerType == nil {
		innerType = types.Parse("void")
	}
	argsStruct := "_" + n.Name + "_args"
	threadFunc := "_" + n.Name + "_thread"

	w.WriteString("typedef struct {\n")
	for _, p := range n.Params {
		fmt.Fprintf(w, "    %s %s;\n", ctx.declType(types.Parse(p.Type)), p.Name)
	}
	fmt.Fprintf(w, "} %s;\n\n", argsStruct)

	fmt.Fprintf(w, "void *%s(void *arg) {\n", threadFunc)
	ctx.pushIndent()
	fmt.Fprintf(w, "%s%s *a = (%s *)arg;\n", ctx.indentStr(), argsStruct, argsStruct)
	ctx.pushScope()
	for _, p := range n.Params {
		pt := types.Parse(p.Type)
		fmt.Fprintf(w, "%s%s %s = a->%s;\n", ctx.indentStr(), ctx.declType(pt), p.Name, p.Name)
		ctx.bindSymbol(p.Name, pt.Canonical())
	}
	fmt.Fprintf(w, "%sfree(a);\n", ctx.indentStr())

	prevAsync := ctx.asyncRetType
	ctx.asyncRetType = innerType
	for _, st := range n.Body.Stmts {
		emitStmt(ctx, w, st)
	}
	ctx.asyncRetType = prevAsync
	if innerType.Canonical() == "void" {
		fmt.Fprintf(w, "%sreturn NULL;\n", ctx.indentStr())
	}
	ctx.popScope(w)
	ctx.popIndent()
	w.WriteString("}\n\n")

	cRet := retType.CType()
	fmt.Fprintf(w, "%s %s(%s) {\n", cRet, n.Name, paramListStr(ctx, n.Params))
	ctx.pushIndent()
	fmt.Fprintf(w, "%s%s *args = malloc(sizeof(%s));\n", ctx.indentStr(), argsStruct, argsStruct)
	for _, p := range n.Params {
		fmt.Fprintf(w, "%sargs->%s = %s;\n", ctx.indentStr(), p.Name, p.Name)
	}
	fmt.Fprintf(w, "%s%s fut;\n", ctx.indentStr(), cRet)
	fmt.Fprintf(w, "%spthread_create(&fut.thread, NULL, %s, args);\n", ctx.indentStr(), threadFunc)
	fmt.Fprintf(w, "%sfut.started = 1;\n", ctx.indentStr())
	fmt.Fprintf(w, "%sreturn fut;\n", ctx.indentStr())
	ctx.popIndent()
	w.WriteString("}\n\n")
}

// emitLambdas emits every hoisted lambda as a standalone function named
// `__moxy_lambda_<id>`, spec.md §4.4.2 step 7. Its return type is inferred
// from the body: the expression itself for an expression-bodied lambda,
// or the first return statement's value for a block-bodied one, falling
// back to `int` when neither gives an answer.
func emitLambdas(ctx *Context, w *strings.Builder) {
	for _, l := range ctx.lambdas {
		emitLambdaFunc(ctx, w, l)
	}
}

func inferLambdaReturnType(ctx *Context, l *ast.Lambda) *types.Type {
	switch body := l.Body.(type) {
	case *ast.ExprStmt:
		return inferType(ctx, body.X)
	case *ast.BlockStmt:
		for _, st := range body.Stmts {
			if r, ok := st.(*ast.ReturnStmt); ok && r.Value != nil {
				return inferType(ctx, r.Value)
			}
		}
	}
	return types.Parse("int")
}

func emitLambdaFunc(ctx *Context, w *strings.Builder, l *ast.Lambda) {
	ctx.pushScope()
	for _, p := range l.Params {
		ctx.bindSymbol(p.Name, types.Parse(p.Type).Canonical())
	}
	retType := inferLambdaReturnType(ctx, l)
	fmt.Fprintf(w, "%s __moxy_lambda_%d(%s) {\n", retType.CType(), l.Id, paramListStr(ctx, l.Params))
	ctx.pushIndent()
	switch body := l.Body.(type) {
	case *ast.BlockStmt:
		for _, st := range body.Stmts {
			emitStmt(ctx, w, st)
		}
	case *ast.ExprStmt:
		fmt.Fprintf(w, "%sreturn %s;\n", ctx.indentStr(), emitExpr(ctx, body.X))
	}
	ctx.popIndent()
	w.WriteString("}\n\n")
	ctx.popScope(w)
}
