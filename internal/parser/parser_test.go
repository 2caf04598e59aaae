package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/config"
	"github.com/moxy-lang/moxy/internal/lexer"
	"github.com/moxy-lang/moxy/internal/parser"
)

func parse(t *testing.T, src string, flags config.Flags) *ast.Program {
	t.Helper()
	return parseKnown(t, src, nil, flags)
}

// parseKnown parses with a preprocessor-style known-type registry, needed
// whenever the source names a user enum type in a type position (e.g. a
// function parameter), since tryParseBaseType only accepts an identifier
// as a type when it is registered (spec.md §4.1).
func parseKnown(t *testing.T, src string, knownTypes map[string]bool, flags config.Flags) *ast.Program {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	prog, err := parser.New(toks, "test.mxy", knownTypes, flags).Parse()
	require.NoError(t, err)
	return prog
}

func TestParseVarDecl(t *testing.T) {
	prog := parse(t, "int x = 5;", config.Flags{})
	require.Len(t, prog.Decls, 1)
	vd, ok := prog.Decls[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "int", vd.Type)
	assert.Equal(t, "x", vd.Name)
	_, isLit := vd.Init.(*ast.IntLit)
	assert.True(t, isLit)
}

func TestParseFuncDecl(t *testing.T) {
	prog := parse(t, "int add(int a, int b) { return a + b; }", config.Flags{})
	require.Len(t, prog.Decls, 1)
	fn, ok := prog.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, "int", fn.ReturnType)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	require.Len(t, fn.Body.Stmts, 1)
	ret, ok := fn.Body.Stmts[0].(*ast.ReturnStmt)
	require.True(t, ok)
	bin, ok := ret.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
}

func TestParseMainDetection(t *testing.T) {
	prog := parse(t, "int main() { return 0; }", config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	assert.True(t, fn.IsMain)
}

func TestParseAsyncFuncRequiresFlag(t *testing.T) {
	toks, err := lexer.Tokenize("Future<int> compute() { return 1; }")
	require.NoError(t, err)
	_, err = parser.New(toks, "test.mxy", nil, config.Flags{Async: false}).Parse()
	assert.Error(t, err, "Future<T> return type without the async flag must be rejected")
}

func TestParseAsyncFuncWithFlag(t *testing.T) {
	prog := parse(t, "Future<int> compute() { return 1; }", config.Flags{Async: true})
	fn := prog.Decls[0].(*ast.FuncDecl)
	assert.True(t, fn.IsAsync)
	assert.Equal(t, "Future<int>", fn.ReturnType)
}

func TestParseSimpleEnum(t *testing.T) {
	prog := parse(t, "enum Color { Red, Green, Blue }", config.Flags{})
	en, ok := prog.Decls[0].(*ast.EnumDecl)
	require.True(t, ok)
	assert.Equal(t, "Color", en.Name)
	require.Len(t, en.Variants, 3)
	assert.False(t, en.IsTagged())
}

func TestParseTaggedEnum(t *testing.T) {
	prog := parse(t, "enum Shape { Circle(int radius), Square(int side) }", config.Flags{})
	en := prog.Decls[0].(*ast.EnumDecl)
	assert.True(t, en.IsTagged())
	require.Len(t, en.Variants[0].Fields, 1)
	assert.Equal(t, "radius", en.Variants[0].Fields[0].Name)
}

func TestParsePlainCEnumFallsBackToRaw(t *testing.T) {
	prog := parse(t, "enum Color { RED, GREEN } c;", config.Flags{})
	_, ok := prog.Decls[0].(*ast.Raw)
	assert.True(t, ok, "a C enum followed by a variable declaration must not be parsed as a moxy enum")
}

func TestParseTaggedEnumParsesRegardlessOfTrailingToken(t *testing.T) {
	// A tagged enum (has a parenthesized variant) is unambiguously a moxy
	// construct; the after-'}' lookahead only disambiguates a plain,
	// untagged enum from a C enum declaration, so it must not demote a
	// tagged enum to raw passthrough just because a ';' or identifier
	// happens to follow its closing brace.
	withSemi := parse(t, "enum Shape { Circle(int r) };", config.Flags{})
	en, ok := withSemi.Decls[0].(*ast.EnumDecl)
	require.True(t, ok, "a trailing ';' must not demote a tagged enum to raw")
	assert.True(t, en.IsTagged())

	withIdent := parseKnown(t, "enum Shape { Circle(int r) } MyType foo() { return 0; }",
		map[string]bool{"MyType": true}, config.Flags{})
	en2, ok := withIdent.Decls[0].(*ast.EnumDecl)
	require.True(t, ok, "a following declaration must not demote a tagged enum to raw")
	assert.True(t, en2.IsTagged())
}

func TestParseMatchSimpleEnum(t *testing.T) {
	src := `int describe(Color c) {
		match c {
			Red => return 1;,
			Green => return 2;,
			Blue => return 3;,
		}
		return 0;
	}`
	prog := parseKnown(t, src, map[string]bool{"Color": true}, config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	m, ok := fn.Body.Stmts[0].(*ast.MatchStmt)
	require.True(t, ok)
	assert.Equal(t, "c", m.Target)
	require.Len(t, m.Arms, 3)
	assert.Equal(t, "Red", m.Arms[0].Pattern.Variant)
}

func TestParseMatchResultShorthand(t *testing.T) {
	src := `int unwrap(Result<int> r) {
		match r {
			Ok(v) => return v;,
			Err(e) => return -1;,
		}
	}`
	prog := parse(t, src, config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	m := fn.Body.Stmts[0].(*ast.MatchStmt)
	assert.Equal(t, "Ok", m.Arms[0].Pattern.Variant)
	assert.Equal(t, "v", m.Arms[0].Pattern.Binding)
}

func TestParseForInRange(t *testing.T) {
	src := "void loop() { for (i in 0..10) { print(i); } }"
	prog := parse(t, src, config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	fi, ok := fn.Body.Stmts[0].(*ast.ForInStmt)
	require.True(t, ok)
	assert.Equal(t, "i", fi.VarA)
	require.NotNil(t, fi.Range)
}

func TestParseForInList(t *testing.T) {
	src := "void loop(int[] xs) { for (x in xs) { print(x); } }"
	prog := parse(t, src, config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	fi := fn.Body.Stmts[0].(*ast.ForInStmt)
	assert.Equal(t, "x", fi.VarA)
	_, isIdent := fi.Iter.(*ast.Ident)
	assert.True(t, isIdent)
}

func TestParseClassicFor(t *testing.T) {
	src := "void loop() { for (int i = 0; i < 10; i++) { print(i); } }"
	prog := parse(t, src, config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	_, ok := fn.Body.Stmts[0].(*ast.ForStmt)
	assert.True(t, ok)
}

func TestParsePipeRewrite(t *testing.T) {
	src := "void run() { x = 5 |> f(1); }"
	prog := parse(t, src, config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	as := fn.Body.Stmts[0].(*ast.AssignStmt)
	call, ok := as.Value.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
	_, firstIsPiped := call.Args[0].(*ast.IntLit)
	assert.True(t, firstIsPiped, "the piped value must be prepended to the call's argument list")
}

func TestParsePipeRequiresCallOnRHS(t *testing.T) {
	toks, err := lexer.Tokenize("void run() { x = 5 |> y; }")
	require.NoError(t, err)
	_, err = parser.New(toks, "test.mxy", nil, config.Flags{}).Parse()
	assert.Error(t, err)
}

func TestParsePipeMethodCallRewrite(t *testing.T) {
	src := "void run() { acc = xs |> acc.push(2); }"
	prog := parse(t, src, config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	as := fn.Body.Stmts[0].(*ast.AssignStmt)
	call, ok := as.Value.(*ast.MethodCall)
	require.True(t, ok, "a pipe whose RHS is a method call must rewrite in place, not error")
	assert.Equal(t, "acc", call.Target.(*ast.Ident).Name)
	assert.Equal(t, "push", call.Name)
	require.Len(t, call.Args, 2)
	xsIdent, firstIsPiped := call.Args[0].(*ast.Ident)
	require.True(t, firstIsPiped, "the piped value must be prepended to the method call's argument list")
	assert.Equal(t, "xs", xsIdent.Name)
	_, secondIsOriginalArg := call.Args[1].(*ast.IntLit)
	assert.True(t, secondIsOriginalArg)
}

func TestParsePipeBarePrintRewrite(t *testing.T) {
	src := "void run() { x |> print; }"
	prog := parse(t, src, config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	ps, ok := fn.Body.Stmts[0].(*ast.PrintStmt)
	require.True(t, ok, "`x |> print;` must resolve to a real PrintStmt once it reaches statement position")
	_, argIsIdent := ps.Arg.(*ast.Ident)
	assert.True(t, argIsIdent)
}

func TestParseCastVsParenHeuristic(t *testing.T) {
	src := "void run() { int x = (int)(3.5); int y = (3 + 4); }"
	prog := parse(t, src, config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	vd0 := fn.Body.Stmts[0].(*ast.VarDecl)
	_, isCast := vd0.Init.(*ast.CastExpr)
	assert.True(t, isCast)
	vd1 := fn.Body.Stmts[1].(*ast.VarDecl)
	_, isParen := vd1.Init.(*ast.ParenExpr)
	assert.True(t, isParen)
}

func TestParseLambda(t *testing.T) {
	src := "void run() { f = |int x, int y| => x + y; }"
	prog := parse(t, src, config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	as := fn.Body.Stmts[0].(*ast.AssignStmt)
	lam, ok := as.Value.(*ast.Lambda)
	require.True(t, ok)
	require.Len(t, lam.Params, 2)
	assert.Equal(t, "x", lam.Params[0].Name)
}

func TestParseAwaitRequiresUnary(t *testing.T) {
	src := "void run() { int v = await compute(); }"
	prog := parse(t, src, config.Flags{Async: true})
	fn := prog.Decls[0].(*ast.FuncDecl)
	vd := fn.Body.Stmts[0].(*ast.VarDecl)
	aw, ok := vd.Init.(*ast.AwaitExpr)
	require.True(t, ok)
	_, isCall := aw.Inner.(*ast.CallExpr)
	assert.True(t, isCall)
}

func TestParseEnumConstruction(t *testing.T) {
	src := "void run() { s = Shape::Circle(5); }"
	prog := parse(t, src, config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	as := fn.Body.Stmts[0].(*ast.AssignStmt)
	ei, ok := as.Value.(*ast.EnumInit)
	require.True(t, ok)
	assert.Equal(t, "Shape", ei.EnumName)
	assert.Equal(t, "Circle", ei.Variant)
	require.Len(t, ei.Args, 1)
}

func TestParseRawPassthroughPreservesUnknownConstruct(t *testing.T) {
	prog := parse(t, "typedef struct { int x; int y; } Point;", config.Flags{})
	raw, ok := prog.Decls[0].(*ast.Raw)
	require.True(t, ok)
	assert.Contains(t, raw.Text, "typedef struct")
	assert.Contains(t, raw.Text, "Point")
}

func TestParseRawPreprocessorDirectiveLine(t *testing.T) {
	// A bare '#include' with no terminating ';' before it folds the rest of
	// the unit into one Raw fragment, since captureRaw only stops at a
	// depth-0 ';' or a depth-0 '}' not followed by a continuation token.
	prog := parse(t, "#include <stdio.h>\nint main() { return 0; }", config.Flags{})
	require.Len(t, prog.Decls, 1)
	raw, ok := prog.Decls[0].(*ast.Raw)
	require.True(t, ok)
	assert.Contains(t, raw.Text, "include")
	assert.Contains(t, raw.Text, "main")
}

func TestParseListLiteralAndIndex(t *testing.T) {
	src := "void run() { int[] xs = [1, 2, 3]; int first = xs[0]; }"
	prog := parse(t, src, config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	vd := fn.Body.Stmts[0].(*ast.VarDecl)
	list, ok := vd.Init.(*ast.ListLit)
	require.True(t, ok)
	assert.Len(t, list.Items, 3)

	idxDecl := fn.Body.Stmts[1].(*ast.VarDecl)
	idx, ok := idxDecl.Init.(*ast.IndexExpr)
	require.True(t, ok)
	_, isIdent := idx.Target.(*ast.Ident)
	assert.True(t, isIdent)
}

func TestParseMethodCallAndFieldAccess(t *testing.T) {
	src := "void run() { xs.append(1); int n = xs.len; }"
	prog := parse(t, src, config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	es := fn.Body.Stmts[0].(*ast.ExprStmt)
	mc, ok := es.X.(*ast.MethodCall)
	require.True(t, ok)
	assert.Equal(t, "append", mc.Name)

	vd := fn.Body.Stmts[1].(*ast.VarDecl)
	fa, ok := vd.Init.(*ast.FieldAccess)
	require.True(t, ok)
	assert.Equal(t, "len", fa.Name)
}

func TestParseResultConstructors(t *testing.T) {
	src := "Result<int> safeDiv(int a, int b) { return Err(\"div by zero\"); }"
	prog := parse(t, src, config.Flags{})
	fn := prog.Decls[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	_, ok := ret.Value.(*ast.ErrExpr)
	assert.True(t, ok)
}

func TestParseConsumesEntireTokenStream(t *testing.T) {
	prog := parse(t, "int a = 1; int b = 2; int c = 3;", config.Flags{})
	assert.Len(t, prog.Decls, 3)
}
