package codegen

import (
	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/types"
)

// collect runs both pre-passes of spec.md §4.4.1 in a single AST walk:
// gathering every container instantiation and assigning each lambda its
// zero-based id, and registering every enum declaration along the way so
// later passes have the full registry before they need it.
func collect(ctx *Context, prog *ast.Program) {
	for _, decl := range prog.Decls {
		collectTopLevel(ctx, decl)
	}
}

func collectTopLevel(ctx *Context, decl ast.Stmt) {
	switch d := decl.(type) {
	case *ast.EnumDecl:
		ctx.registerEnum(d)
		for _, v := range d.Variants {
			for _, f := range v.Fields {
				ctx.registerInstantiation(types.Parse(f.Type))
			}
		}
	case *ast.VarDecl:
		ctx.registerInstantiation(types.Parse(d.Type))
		collectExpr(ctx, d.Init)
	case *ast.FuncDecl:
		ctx.funcReturns[d.Name] = types.Parse(d.ReturnType).Canonical()
		ctx.registerInstantiation(types.Parse(d.ReturnType))
		for _, p := range d.Params {
			ctx.registerInstantiation(types.Parse(p.Type))
		}
		collectStmt(ctx, d.Body)
	case *ast.Raw:
		// Raw text is never re-parsed; nothing to collect.
	}
}

func collectStmt(ctx *Context, s ast.Stmt) {
	switch n := s.(type) {
	case nil:
		return
	case *ast.BlockStmt:
		for _, st := range n.Stmts {
			collectStmt(ctx, st)
		}
	case *ast.PrintStmt:
		collectExpr(ctx, n.Arg)
	case *ast.AssertStmt:
		collectExpr(ctx, n.Arg)
	case *ast.MatchStmt:
		for _, arm := range n.Arms {
			collectStmt(ctx, arm.Body)
		}
	case *ast.IfStmt:
		collectExpr(ctx, n.Cond)
		collectStmt(ctx, n.Then)
		collectStmt(ctx, n.Else)
	case *ast.WhileStmt:
		collectExpr(ctx, n.Cond)
		collectStmt(ctx, n.Body)
	case *ast.ForStmt:
		collectStmt(ctx, n.Init)
		collectExpr(ctx, n.Cond)
		collectStmt(ctx, n.Step)
		collectStmt(ctx, n.Body)
	case *ast.ForInStmt:
		if n.Range != nil {
			collectExpr(ctx, n.Range.From)
			collectExpr(ctx, n.Range.To)
		}
		collectExpr(ctx, n.Iter)
		collectStmt(ctx, n.Body)
	case *ast.ReturnStmt:
		collectExpr(ctx, n.Value)
	case *ast.AssignStmt:
		collectExpr(ctx, n.Target)
		collectExpr(ctx, n.Value)
	case *ast.ExprStmt:
		collectExpr(ctx, n.X)
	case *ast.VarDecl:
		ctx.registerInstantiation(types.Parse(n.Type))
		collectExpr(ctx, n.Init)
	case *ast.Raw:
	}
}

func collectExpr(ctx *Context, e ast.Expr) {
	switch n := e.(type) {
	case nil:
		return
	case *ast.EnumInit:
		for _, a := range n.Args {
			collectExpr(ctx, a)
		}
	case *ast.ListLit:
		for _, it := range n.Items {
			collectExpr(ctx, it)
		}
	case *ast.OkExpr:
		collectExpr(ctx, n.Inner)
	case *ast.ErrExpr:
		collectExpr(ctx, n.Inner)
	case *ast.FieldAccess:
		collectExpr(ctx, n.Target)
	case *ast.MethodCall:
		collectExpr(ctx, n.Target)
		for _, a := range n.Args {
			collectExpr(ctx, a)
		}
	case *ast.IndexExpr:
		collectExpr(ctx, n.Target)
		collectExpr(ctx, n.Index)
	case *ast.CallExpr:
		collectExpr(ctx, n.Callee)
		for _, a := range n.Args {
			collectExpr(ctx, a)
		}
	case *ast.BinaryExpr:
		collectExpr(ctx, n.Left)
		collectExpr(ctx, n.Right)
	case *ast.UnaryExpr:
		collectExpr(ctx, n.Operand)
	case *ast.ParenExpr:
		collectExpr(ctx, n.Inner)
	case *ast.TernaryExpr:
		collectExpr(ctx, n.Cond)
		collectExpr(ctx, n.Then)
		collectExpr(ctx, n.Else)
	case *ast.CastExpr:
		ctx.registerInstantiation(types.Parse(n.Type))
		collectExpr(ctx, n.Inner)
	case *ast.AwaitExpr:
		collectExpr(ctx, n.Inner)
	case *ast.Lambda:
		ctx.registerLambda(n)
		for _, p := range n.Params {
			ctx.registerInstantiation(types.Parse(p.Type))
		}
		collectStmt(ctx, n.Body)
	case *ast.RangeExpr:
		collectExpr(ctx, n.From)
		collectExpr(ctx, n.To)
	}
}
