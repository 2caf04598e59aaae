package parser

import (
	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/token"
)

// parseBlock parses `{ stmt* }`.
func (p *Parser) parseBlock() (*ast.BlockStmt, error) {
	lb, err := p.expect(token.LBrace)
	if err != nil {
		return nil, err
	}
	blk := ast.NewBlock(lb)
	for !p.at(token.RBrace) {
		if p.at(token.EOF) {
			return nil, p.errAt(p.cur(), "unterminated block: expected '}'", "")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, stmt)
	}
	p.advance() // '}'
	return blk, nil
}

// parseStmt dispatches one statement. Anything the structural grammar
// doesn't recognize — a label, a raw C declaration, a stray directive —
// falls back to captureRaw (spec.md §4.3.2 applies inside function bodies
// too, not just at top level).
func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.cur().Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwMatch:
		return p.parseMatch()
	case token.KwReturn:
		return p.parseReturn()
	case token.Ident:
		switch p.cur().Lexeme {
		case "print":
			if p.peekAt(1).Kind == token.LParen {
				return p.parsePrint()
			}
		case "assert":
			if p.peekAt(1).Kind == token.LParen {
				return p.parseAssert()
			}
		}
	}

	if p.startsType() {
		snap := p.snap()
		decl, matched, err := p.tryParseLocalVarDecl()
		if err != nil {
			return nil, err
		}
		if matched {
			return decl, nil
		}
		p.restore(snap)
	}

	if startsExprTok(p.cur()) {
		snap := p.snap()
		stmt, err := p.parseSimpleStmt()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			return stmt, nil
		}
		p.restore(snap)
	}

	return p.captureRaw(), nil
}

// tryParseLocalVarDecl is the statement-position half of the type-start
// heuristic: `type name = expr;`. Declarations without an initializer do
// not match structurally and fall through to raw (spec.md §4.3.1).
func (p *Parser) tryParseLocalVarDecl() (ast.Stmt, bool, error) {
	start := p.cur()
	typeStr, ok := p.tryParseType()
	if !ok {
		return nil, false, nil
	}
	if !p.at(token.Ident) {
		return nil, false, nil
	}
	nameTok := p.advance()
	if !p.at(token.Assign) {
		return nil, false, nil
	}
	p.advance()
	init, err := p.parseExpr(0)
	if err != nil {
		return nil, false, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, false, err
	}
	return &ast.VarDecl{Base: ast.At(start), Type: typeStr, Name: nameTok.Lexeme, Init: init}, true, nil
}

// parseSimpleStmt parses an assignment or bare expression statement,
// terminated by ';'. It assumes the caller already confirmed the current
// token can start an expression.
func (p *Parser) parseSimpleStmt() (ast.Stmt, error) {
	start := p.cur()
	stmt, err := p.parseSimpleStmtNoSemi()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	if stmt == nil {
		return &ast.ExprStmt{Base: ast.At(start)}, nil
	}
	return stmt, nil
}

// parseSimpleStmtNoSemi parses a local var decl, assignment, or bare
// expression without consuming a trailing terminator — used directly by
// classic for-loop init/step clauses, which are terminated by ';' or ')'
// rather than always ';'.
func (p *Parser) parseSimpleStmtNoSemi() (ast.Stmt, error) {
	start := p.cur()
	if p.startsType() {
		snap := p.snap()
		typeStr, ok := p.tryParseType()
		if ok && p.at(token.Ident) {
			nameTok := p.advance()
			if p.at(token.Assign) {
				p.advance()
				init, err := p.parseExpr(0)
				if err != nil {
					return nil, err
				}
				return &ast.VarDecl{Base: ast.At(start), Type: typeStr, Name: nameTok.Lexeme, Init: init}, nil
			}
		}
		p.restore(snap)
	}

	if !startsExprTok(p.cur()) {
		return nil, nil
	}
	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if op, ok := assignOp(p.cur().Kind); ok {
		p.advance()
		val, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{Base: ast.At(start), Target: expr, Op: op, Value: val}, nil
	}
	if printStmt, ok := asPipePrintStmt(expr); ok {
		return printStmt, nil
	}
	return &ast.ExprStmt{Base: ast.At(start), X: expr}, nil
}

// asPipePrintStmt recognizes the call expression `x |> print` produces
// (print(x), parser/expr.go's parsePipe) and resolves it to the real
// *ast.PrintStmt, since print has no callable expression form of its own
// (it is only ever a statement — spec.md §4.3.1).
func asPipePrintStmt(expr ast.Expr) (*ast.PrintStmt, bool) {
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return nil, false
	}
	id, ok := call.Callee.(*ast.Ident)
	if !ok || id.Name != "print" {
		return nil, false
	}
	return &ast.PrintStmt{Base: call.Base, Arg: call.Args[0]}, true
}

func assignOp(k token.Kind) (string, bool) {
	switch k {
	case token.Assign:
		return "=", true
	case token.PlusAssign:
		return "+=", true
	case token.MinusAssign:
		return "-=", true
	case token.StarAssign:
		return "*=", true
	case token.SlashAssign:
		return "/=", true
	case token.PercentAssign:
		return "%=", true
	case token.AndAssign:
		return "&=", true
	case token.OrAssign:
		return "|=", true
	case token.XorAssign:
		return "^=", true
	case token.ShlAssign:
		return "<<=", true
	case token.ShrAssign:
		return ">>=", true
	}
	return "", false
}

func (p *Parser) parsePrint() (ast.Stmt, error) {
	nameTok := p.advance() // 'print'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	arg, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return &ast.PrintStmt{Base: ast.At(nameTok), Arg: arg}, nil
}

func (p *Parser) parseAssert() (ast.Stmt, error) {
	nameTok := p.advance() // 'assert'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	arg, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return &ast.AssertStmt{Base: ast.At(nameTok), Arg: arg, Line: nameTok.Line}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	ifTok := p.advance() // 'if'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	thenBlk, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Base: ast.At(ifTok), Cond: cond, Then: thenBlk}
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			stmt.Else, err = p.parseIf()
		} else {
			stmt.Else, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	whileTok := p.advance()
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Base: ast.At(whileTok), Cond: cond, Body: body}, nil
}

// parseFor disambiguates `for (varA[, varB] in ...)` from a classic
// three-clause for loop by speculatively consuming the binding list and
// checking for 'in' (spec.md §4.3.1).
func (p *Parser) parseFor() (ast.Stmt, error) {
	forTok := p.advance() // 'for'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	if forIn, matched, err := p.tryParseForIn(forTok); err != nil {
		return nil, err
	} else if matched {
		return forIn, nil
	}

	var init ast.Stmt
	if !p.at(token.Semi) {
		var err error
		init, err = p.parseSimpleStmtNoSemi()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	var cond ast.Expr
	if !p.at(token.Semi) {
		var err error
		cond, err = p.parseExpr(0)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	var step ast.Stmt
	if !p.at(token.RParen) {
		var err error
		step, err = p.parseSimpleStmtNoSemi()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Base: ast.At(forTok), Init: init, Cond: cond, Step: step, Body: body}, nil
}

func (p *Parser) tryParseForIn(forTok token.Token) (ast.Stmt, bool, error) {
	snap := p.snap()
	if !p.at(token.Ident) {
		return nil, false, nil
	}
	varA := p.advance().Lexeme
	varB := ""
	if p.at(token.Comma) {
		p.advance()
		if !p.at(token.Ident) {
			p.restore(snap)
			return nil, false, nil
		}
		varB = p.advance().Lexeme
	}
	if !p.at(token.KwIn) {
		p.restore(snap)
		return nil, false, nil
	}
	inTok := p.advance()

	first, err := p.parseExpr(0)
	if err != nil {
		return nil, false, err
	}
	var rng *ast.RangeExpr
	var iter ast.Expr
	if p.at(token.DotDot) {
		p.advance()
		to, err := p.parseExpr(0)
		if err != nil {
			return nil, false, err
		}
		rng = &ast.RangeExpr{Base: ast.At(inTok), From: first, To: to}
	} else {
		iter = first
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, false, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, false, err
	}
	return &ast.ForInStmt{Base: ast.At(forTok), VarA: varA, VarB: varB, Range: rng, Iter: iter, Body: body}, true, nil
}

// parseMatch parses `match target { pattern => stmt, ... }` (spec.md
// §4.3.1, §4.4.6). The target is a bare identifier: match dispatches on a
// variable's tag, not on an arbitrary expression.
func (p *Parser) parseMatch() (ast.Stmt, error) {
	matchTok := p.advance() // 'match'
	targetTok, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var arms []ast.MatchArm
	for !p.at(token.RBrace) {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.FatArrow); err != nil {
			return nil, err
		}
		body, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.MatchArm{Pattern: pat, Body: body})
		if p.at(token.Comma) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return &ast.MatchStmt{Base: ast.At(matchTok), Target: targetTok.Lexeme, Arms: arms}, nil
}

// parsePattern parses one match-arm selector: `EnumName::Variant(binding)`,
// the unqualified `Variant(binding)` form (enum resolved from the match
// target's declared type by codegen), or the `Ok(binding)` / `Err(binding)`
// Result shorthand (spec.md §9, Open Question 3).
func (p *Parser) parsePattern() (ast.Pattern, error) {
	nameTok, err := p.expect(token.Ident)
	if err != nil {
		return ast.Pattern{}, err
	}
	pat := ast.Pattern{Variant: nameTok.Lexeme}
	if p.at(token.ColonColon) {
		p.advance()
		variantTok, err := p.expect(token.Ident)
		if err != nil {
			return ast.Pattern{}, err
		}
		pat.EnumName = nameTok.Lexeme
		pat.Variant = variantTok.Lexeme
	}
	if p.at(token.LParen) {
		p.advance()
		if p.at(token.Ident) {
			pat.Binding = p.advance().Lexeme
		}
		if _, err := p.expect(token.RParen); err != nil {
			return ast.Pattern{}, err
		}
	}
	return pat, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	retTok := p.advance()
	var val ast.Expr
	if !p.at(token.Semi) {
		var err error
		val, err = p.parseExpr(0)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Base: ast.At(retTok), Value: val}, nil
}
