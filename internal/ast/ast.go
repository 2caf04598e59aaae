// Package ast defines the moxy abstract syntax tree.
//
// The original source (original_source/src/ast.h) represents every node
// as one tagged C union over fixed-size arrays. This rewrite uses the Go
// equivalent of a tagged variant: a closed set of concrete struct types
// implementing a small Node interface, dispatched with type switches in
// internal/codegen rather than a hand-rolled Visitor double-dispatch (see
// DESIGN.md, "internal/ast"). Every node carries its source position.
package ast

import "github.com/moxy-lang/moxy/internal/token"

// Node is implemented by every AST node, statement or expression alike.
type Node interface {
	Pos() token.Position
}

// Stmt is a Node that can appear in a statement position.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is a Node that can appear in an expression position.
type Expr interface {
	Node
	exprNode()
}

// Base carries the source position shared by every node. It is exported
// so that internal/parser, in a separate package, can populate it when
// constructing node literals.
type Base struct {
	Line, Column int
}

func (b Base) Pos() token.Position { return token.Position{Line: b.Line, Column: b.Column} }

// At returns the Base for t, the usual way a parser stamps a new node
// with the position of the token that introduced it.
func At(t token.Token) Base { return Base{Line: t.Line, Column: t.Column} }


// ---- top level -------------------------------------------------------

// Program is the root node: an ordered list of top-level declarations.
type Program struct {
	Base
	Decls []Stmt
}

// VarDecl is both a top-level global and a local `type name = expr;`
// declaration (spec.md §4.3.1 only accepts declarations with an
// initializer structurally; uninitialized ones fall through to Raw).
type VarDecl struct {
	Base
	Type string
	Name string
	Init Expr
}

func (*VarDecl) stmtNode() {}

// Field is one (type, name) pair in an enum variant's field list.
type Field struct {
	Type string
	Name string
}

// Variant is one arm of a tagged or simple enum declaration.
type Variant struct {
	Name   string
	Fields []Field
}

// HasFields reports whether this variant carries payload fields, i.e.
// whether the enclosing enum is tagged rather than simple.
func (v Variant) HasFields() bool { return len(v.Fields) > 0 }

// EnumDecl is a `enum Name { Variant, Variant(type name, ...), ... }`.
type EnumDecl struct {
	Base
	Name     string
	Variants []Variant
}

func (*EnumDecl) stmtNode() {}

// IsTagged reports whether any variant carries fields (spec.md §4.3.1:
// tagged iff any variant has a parenthesized field list).
func (e *EnumDecl) IsTagged() bool {
	for _, v := range e.Variants {
		if v.HasFields() {
			return true
		}
	}
	return false
}

// Param is one function or lambda parameter.
type Param struct {
	Type string
	Name string
}

// FuncDecl is a top-level `returnType name(params) { body }`.
type FuncDecl struct {
	Base
	ReturnType string
	Name       string
	Params     []Param
	Body       *BlockStmt
	IsMain     bool
	IsAsync    bool // return type is Future<T>
}

func (*FuncDecl) stmtNode() {}

// Raw is a verbatim reconstructed C fragment, spec.md §4.3.2. It can
// appear at top level or in statement position.
type Raw struct {
	Base
	Text string
}

func (*Raw) stmtNode() {}

// ---- statements --------------------------------------------------------

type BlockStmt struct {
	Base
	Stmts []Stmt
}

func (*BlockStmt) stmtNode() {}

type PrintStmt struct {
	Base
	Arg Expr
}

func (*PrintStmt) stmtNode() {}

type AssertStmt struct {
	Base
	Arg  Expr
	Line int // source line, duplicated for the generated assert message
}

func (*AssertStmt) stmtNode() {}

// Pattern is a match-arm selector: enum name (empty => Result shorthand),
// variant name, and an optional payload binding.
type Pattern struct {
	EnumName string
	Variant  string
	Binding  string
}

type MatchArm struct {
	Pattern Pattern
	Body    Stmt
}

type MatchStmt struct {
	Base
	Target string
	Arms   []MatchArm
}

func (*MatchStmt) stmtNode() {}

type IfStmt struct {
	Base
	Cond Expr
	Then *BlockStmt
	Else Stmt // *BlockStmt or *IfStmt (else if) or nil
}

func (*IfStmt) stmtNode() {}

type WhileStmt struct {
	Base
	Cond Expr
	Body *BlockStmt
}

func (*WhileStmt) stmtNode() {}

type ForStmt struct {
	Base
	Init Stmt // VarDecl, AssignStmt, ExprStmt or nil
	Cond Expr
	Step Stmt
	Body *BlockStmt
}

func (*ForStmt) stmtNode() {}

// ForInStmt covers `for v in a..b { }` and `for v in xs { }` /
// `for k, v in m { }`.
type ForInStmt struct {
	Base
	VarA  string
	VarB  string // second binding for map k,v form; empty otherwise
	Range *RangeExpr
	Iter  Expr // set instead of Range when iterating a list/map value
	Body  *BlockStmt
}

func (*ForInStmt) stmtNode() {}

type ReturnStmt struct {
	Base
	Value Expr // nil for bare `return;`
}

func (*ReturnStmt) stmtNode() {}

type AssignStmt struct {
	Base
	Target Expr
	Op     string // "=", "+=", "-=", ...
	Value  Expr
}

func (*AssignStmt) stmtNode() {}

type ExprStmt struct {
	Base
	X Expr
}

func (*ExprStmt) stmtNode() {}

// ---- expressions --------------------------------------------------------

type Ident struct {
	Base
	Name string
}

func (*Ident) exprNode() {}

type IntLit struct {
	Base
	Text  string // lexeme, including any preserved suffix
	Value int64
}

func (*IntLit) exprNode() {}

type FloatLit struct {
	Base
	Text string
}

func (*FloatLit) exprNode() {}

type StringLit struct {
	Base
	Value string // re-quotable payload, escapes preserved verbatim
}

func (*StringLit) exprNode() {}

type CharLit struct {
	Base
	Value string
}

func (*CharLit) exprNode() {}

type BoolLit struct {
	Base
	Value bool
}

func (*BoolLit) exprNode() {}

type NullLit struct{ Base }

func (*NullLit) exprNode() {}

// EnumInit is `Name::Variant(args...)`.
type EnumInit struct {
	Base
	EnumName string
	Variant  string
	Args     []Expr
}

func (*EnumInit) exprNode() {}

type ListLit struct {
	Base
	Items []Expr
}

func (*ListLit) exprNode() {}

// OkExpr / ErrExpr are Result<T> constructor shorthands whose concrete
// result type is inferred from context (spec.md §3, §9 Open Question 2).
type OkExpr struct {
	Base
	Inner Expr
}

func (*OkExpr) exprNode() {}

type ErrExpr struct {
	Base
	Inner Expr
}

func (*ErrExpr) exprNode() {}

// FieldAccess is `target.name`; Arrow records whether the source used
// `->` explicitly (otherwise codegen infers `.` vs `->` from ownership).
type FieldAccess struct {
	Base
	Target Expr
	Name   string
	Arrow  bool
}

func (*FieldAccess) exprNode() {}

type MethodCall struct {
	Base
	Target Expr
	Name   string
	Args   []Expr
	Arrow  bool
}

func (*MethodCall) exprNode() {}

type IndexExpr struct {
	Base
	Target Expr
	Index  Expr
}

func (*IndexExpr) exprNode() {}

type CallExpr struct {
	Base
	Callee Expr
	Args   []Expr
}

func (*CallExpr) exprNode() {}

type BinaryExpr struct {
	Base
	Op    string
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr covers both prefix (!x, -x, ++x) and postfix (x++, x--)
// operators; Postfix distinguishes the two, per spec.md §3.
type UnaryExpr struct {
	Base
	Op      string
	Operand Expr
	Postfix bool
}

func (*UnaryExpr) exprNode() {}

type ParenExpr struct {
	Base
	Inner Expr
}

func (*ParenExpr) exprNode() {}

type TernaryExpr struct {
	Base
	Cond Expr
	Then Expr
	Else Expr
}

func (*TernaryExpr) exprNode() {}

type CastExpr struct {
	Base
	Type   string
	Inner  Expr
}

func (*CastExpr) exprNode() {}

type AwaitExpr struct {
	Base
	Inner Expr
}

func (*AwaitExpr) exprNode() {}

// Lambda is a lambda expression; Id is assigned by codegen's lambda
// collection pre-pass (spec.md §4.4.1), not by the parser.
type Lambda struct {
	Base
	Params []Param
	Body   Stmt // *BlockStmt for a block body, an Expr-wrapping ExprStmt for an expression body
	Id     int
}

func (*Lambda) exprNode() {}

// RangeExpr is `a..b`, used only inside a ForInStmt's Range field.
type RangeExpr struct {
	Base
	From Expr
	To   Expr
}

func (*RangeExpr) exprNode() {}

// ---- constructors (keep position-plumbing out of the parser's hot path) -

func NewProgram(t token.Token) *Program          { return &Program{Base: At(t)} }
func NewIdent(t token.Token, name string) *Ident { return &Ident{Base: At(t), Name: name} }
func NewRaw(t token.Token, text string) *Raw     { return &Raw{Base: At(t), Text: text} }
func NewBlock(t token.Token) *BlockStmt          { return &BlockStmt{Base: At(t)} }
