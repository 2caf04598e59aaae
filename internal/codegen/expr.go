package codegen

import (
	"fmt"
	"strings"

	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/types"
)

// emitExpr renders e as a single C expression (spec.md §4.4.5). Await
// expressions are handled one level up, at statement emission, since
// joining a future expands to more than one C statement; reaching this
// function with a bare AwaitExpr means it appeared somewhere the
// statement-level rewrite didn't intercept it, and it falls back to
// emitting just the inner future expression.
func emitExpr(ctx *Context, e ast.Expr) string {
	switch n := e.(type) {
	case nil:
		return ""
	case *ast.Ident:
		return n.Name
	case *ast.IntLit:
		return n.Text
	case *ast.FloatLit:
		return n.Text
	case *ast.StringLit:
		return `"` + n.Value + `"`
	case *ast.CharLit:
		return `'` + n.Value + `'`
	case *ast.BoolLit:
		if n.Value {
			return "true"
		}
		return "false"
	case *ast.NullLit:
		return "NULL"
	case *ast.EnumInit:
		return emitEnumInit(ctx, n)
	case *ast.ListLit:
		return emitListLit(ctx, n, inferType(ctx, n))
	case *ast.OkExpr:
		// Open Question 2 (spec.md §9): undefined outside a Result<T>
		// initializer. Best-effort: emit the inner expression alone.
		return emitExpr(ctx, n.Inner)
	case *ast.ErrExpr:
		return emitExpr(ctx, n.Inner)
	case *ast.FieldAccess:
		sep := fieldSep(ctx, n.Target, n.Arrow)
		return emitExpr(ctx, n.Target) + sep + n.Name
	case *ast.MethodCall:
		return emitMethodCall(ctx, n)
	case *ast.IndexExpr:
		return emitIndex(ctx, n)
	case *ast.CallExpr:
		return emitExpr(ctx, n.Callee) + "(" + emitArgs(ctx, n.Args) + ")"
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", emitExpr(ctx, n.Left), n.Op, emitExpr(ctx, n.Right))
	case *ast.UnaryExpr:
		if n.Postfix {
			return emitExpr(ctx, n.Operand) + n.Op
		}
		return n.Op + emitExpr(ctx, n.Operand)
	case *ast.ParenExpr:
		return "(" + emitExpr(ctx, n.Inner) + ")"
	case *ast.TernaryExpr:
		return fmt.Sprintf("(%s ? %s : %s)", emitExpr(ctx, n.Cond), emitExpr(ctx, n.Then), emitExpr(ctx, n.Else))
	case *ast.CastExpr:
		return "(" + types.Parse(n.Type).CType() + ")" + emitExpr(ctx, n.Inner)
	case *ast.AwaitExpr:
		return emitExpr(ctx, n.Inner)
	case *ast.Lambda:
		return fmt.Sprintf("__moxy_lambda_%d", n.Id)
	case *ast.RangeExpr:
		return emitExpr(ctx, n.From) + ".." + emitExpr(ctx, n.To)
	}
	return ""
}

func emitArgs(ctx *Context, args []ast.Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = emitExpr(ctx, a)
	}
	return strings.Join(parts, ", ")
}

// emitListLit renders a list literal as the compound-literal array passed
// to `<list>_make` (spec.md §8 scenario 1): `(int[]){1, 2, 3}`.
func emitListLit(ctx *Context, n *ast.ListLit, t *types.Type) string {
	elemType := "void"
	if t.IsList() {
		elemType = t.Elem.CType()
	}
	return fmt.Sprintf("(%s[]){%s}", elemType, emitArgs(ctx, n.Items))
}

// fieldSep picks '.' or '->': an explicit arrow in the source is always
// preserved, otherwise the receiver's ARC-ness decides (spec.md §4.4.5).
func fieldSep(ctx *Context, target ast.Expr, explicitArrow bool) string {
	if explicitArrow {
		return "->"
	}
	t := inferType(ctx, target)
	if ctx.Flags.ARC && t.IsARCEligible() {
		return "->"
	}
	return "."
}

// receiverArg is the argument passed as a container method/function's
// receiver pointer: the value itself when it is already ARC-heap (a
// pointer), or its address otherwise, since every generated container
// function takes a pointer.
func receiverArg(ctx *Context, target ast.Expr, t *types.Type) string {
	if ctx.Flags.ARC && t.IsARCEligible() {
		return emitExpr(ctx, target)
	}
	return "&" + emitExpr(ctx, target)
}

func emitMethodCall(ctx *Context, n *ast.MethodCall) string {
	recvType := inferType(ctx, n.Target)
	if recvType.IsList() || recvType.IsMap() {
		fn := recvType.Mangle() + "_" + n.Name
		args := append([]string{receiverArg(ctx, n.Target, recvType)}, splitArgs(ctx, n.Args)...)
		return fn + "(" + strings.Join(args, ", ") + ")"
	}
	sep := fieldSep(ctx, n.Target, n.Arrow)
	return emitExpr(ctx, n.Target) + sep + n.Name + "(" + emitArgs(ctx, n.Args) + ")"
}

func splitArgs(ctx *Context, args []ast.Expr) []string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = emitExpr(ctx, a)
	}
	return parts
}

// emitIndex renders list indexing as `.data[idx]` / `->data[idx]` per
// ownership (spec.md §4.4.5). Anything whose inferred type is not a list
// (an ordinary C array surviving from a raw region, say) falls back to
// plain C subscripting.
func emitIndex(ctx *Context, n *ast.IndexExpr) string {
	t := inferType(ctx, n.Target)
	if t.IsList() {
		sep := fieldSep(ctx, n.Target, false)
		return emitExpr(ctx, n.Target) + sep + "data[" + emitExpr(ctx, n.Index) + "]"
	}
	return emitExpr(ctx, n.Target) + "[" + emitExpr(ctx, n.Index) + "]"
}
