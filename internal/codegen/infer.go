package codegen

import (
	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/types"
)

// inferType implements the type-inference rules of spec.md §4.4.5, used
// for format selection, method dispatch, and ARC decisions. It is a local,
// best-effort inference (the core has no semantic type checker, per §1
// Non-goals) and always returns a non-nil *types.Type, falling back to an
// empty Atomic when nothing is known.
func inferType(ctx *Context, e ast.Expr) *types.Type {
	switch n := e.(type) {
	case nil:
		return unknownType()
	case *ast.IntLit:
		return types.Parse("int")
	case *ast.FloatLit:
		return types.Parse("float")
	case *ast.StringLit:
		return types.Parse("string")
	case *ast.CharLit:
		return types.Parse("char")
	case *ast.BoolLit:
		return types.Parse("bool")
	case *ast.NullLit:
		return unknownType()
	case *ast.Ident:
		if t, ok := ctx.lookupSymbol(n.Name); ok {
			return t
		}
		return unknownType()
	case *ast.FieldAccess:
		if n.Name == "len" {
			return types.Parse("int")
		}
		return unknownType()
	case *ast.IndexExpr:
		t := inferType(ctx, n.Target)
		if t.IsList() {
			return t.Elem
		}
		return unknownType()
	case *ast.MethodCall:
		recv := inferType(ctx, n.Target)
		switch n.Name {
		case "get":
			if recv.IsMap() {
				return recv.Val
			}
		case "has":
			return types.Parse("bool")
		}
		return unknownType()
	case *ast.CallExpr:
		if callee, ok := n.Callee.(*ast.Ident); ok {
			if raw, ok := ctx.funcReturns[callee.Name]; ok {
				return types.Parse(raw)
			}
		}
		return unknownType()
	case *ast.BinaryExpr:
		if isBoolOp(n.Op) {
			return types.Parse("bool")
		}
		return inferType(ctx, n.Left)
	case *ast.UnaryExpr:
		return inferType(ctx, n.Operand)
	case *ast.ParenExpr:
		return inferType(ctx, n.Inner)
	case *ast.TernaryExpr:
		return inferType(ctx, n.Then)
	case *ast.CastExpr:
		return types.Parse(n.Type)
	case *ast.AwaitExpr:
		inner := inferType(ctx, n.Inner)
		if inner.IsFuture() {
			return inner.Elem
		}
		return unknownType()
	case *ast.EnumInit:
		return types.Parse(n.EnumName)
	case *ast.OkExpr:
		return unknownType()
	case *ast.ErrExpr:
		return unknownType()
	case *ast.ListLit:
		if len(n.Items) > 0 {
			return &types.Type{Kind: types.List, Elem: inferType(ctx, n.Items[0])}
		}
		return &types.Type{Kind: types.List, Elem: types.Parse("void")}
	case *ast.RangeExpr:
		return types.Parse("int")
	}
	return unknownType()
}

func unknownType() *types.Type { return types.Parse("") }

func isBoolOp(op string) bool {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return true
	}
	return false
}
