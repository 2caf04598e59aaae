package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/token"
)

// parseExpr is the single expression entry point. minPrec is currently
// always 0 from every call site; it is kept so a future precedence-climbing
// caller (e.g. a generic-argument context that must stop before '>') has
// somewhere to plug in without changing every call site.
func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	_ = minPrec
	return p.parseTernary()
}

func (p *Parser) parseTernary() (ast.Expr, error) {
	cond, err := p.parsePipe()
	if err != nil {
		return nil, err
	}
	if p.at(token.Question) {
		qTok := p.advance()
		thenE, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		elseE, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		return &ast.TernaryExpr{Base: ast.At(qTok), Cond: cond, Then: thenE, Else: elseE}, nil
	}
	return cond, nil
}

// parsePipe implements `x |> f(args)` as a structural rewrite into
// `f(x, args)` (spec.md §4.3.1): the piped value is prepended to the
// right-hand side's argument list. Three RHS shapes are recognized: a
// plain call (`x |> f(args)` -> `f(x, args)`), a method call (`x |>
// target.m(args)` -> `target.m(x, args)`: the receiver stays as it is and
// `x` is prepended to `m`'s own args), and the bare `print` intrinsic (`x |>
// print` -> `print(x)`), which parseSimpleStmtNoSemi/parseSimpleStmt
// resolve into a real *ast.PrintStmt once the pipe reaches statement
// position, since print has no callable expression form of its own.
func (p *Parser) parsePipe() (ast.Expr, error) {
	left, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	for p.at(token.Pipe2) {
		opTok := p.advance()
		rhs, err := p.parseBinary(1)
		if err != nil {
			return nil, err
		}
		switch call := rhs.(type) {
		case *ast.CallExpr:
			call.Args = append([]ast.Expr{left}, call.Args...)
			left = call
		case *ast.MethodCall:
			call.Args = append([]ast.Expr{left}, call.Args...)
			left = call
		default:
			if id, ok := rhs.(*ast.Ident); ok && id.Name == "print" {
				left = &ast.CallExpr{Base: ast.At(opTok), Callee: id, Args: []ast.Expr{left}}
				continue
			}
			return nil, p.errAt(opTok, "right-hand side of '|>' must be a call expression", "write 'x |> f(args)', not 'x |> f'")
		}
	}
	return left, nil
}

var binPrec = map[token.Kind]int{
	token.OrOr:     1,
	token.AndAnd:   2,
	token.Pipe:     3,
	token.Caret:    4,
	token.Amp:      5,
	token.Eq:       6,
	token.Neq:      6,
	token.Lt:       7,
	token.Gt:       7,
	token.Le:       7,
	token.Ge:       7,
	token.Shl:      8,
	token.Shr:      8,
	token.Plus:     9,
	token.Minus:    9,
	token.Star:     10,
	token.Slash:    10,
	token.Percent:  10,
}

// parseBinary is a standard precedence-climbing binary-operator parser
// (spec.md §4.3.1's precedence table).
func (p *Parser) parseBinary(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := binPrec[p.cur().Kind]
		if !ok || prec < minPrec {
			break
		}
		opTok := p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.At(opTok), Op: opTok.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.cur().Kind {
	case token.Bang, token.Minus, token.Tilde, token.Amp, token.Star, token.PlusPlus, token.MinusMinus:
		opTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.At(opTok), Op: opTok.Lexeme, Operand: operand}, nil
	case token.KwAwait:
		awaitTok := p.advance()
		if !p.flags.Async {
			return nil, p.errAt(awaitTok, "'await' requires the async feature flag", "enable the async feature flag, or drop the 'await'")
		}
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.AwaitExpr{Base: ast.At(awaitTok), Inner: inner}, nil
	case token.LParen:
		if expr, matched, err := p.tryParseCast(); err != nil {
			return nil, err
		} else if matched {
			return expr, nil
		}
	}
	return p.parsePostfix()
}

// tryParseCast implements the cast-vs-parenthesized-expression heuristic
// of spec.md §4.3.3: `(type)` only commits to a cast if what follows could
// itself start an expression, otherwise it is an ordinary parenthesized
// expression.
func (p *Parser) tryParseCast() (ast.Expr, bool, error) {
	snap := p.snap()
	lp := p.cur()
	p.advance() // '('
	typeStr, ok := p.tryParseType()
	if !ok {
		p.restore(snap)
		return nil, false, nil
	}
	if !p.at(token.RParen) {
		p.restore(snap)
		return nil, false, nil
	}
	p.advance() // ')'
	if !startsExprTok(p.cur()) {
		p.restore(snap)
		return nil, false, nil
	}
	inner, err := p.parseUnary()
	if err != nil {
		return nil, false, err
	}
	return &ast.CastExpr{Base: ast.At(lp), Type: typeStr, Inner: inner}, true, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case token.Dot, token.Arrow:
			arrow := p.cur().Kind == token.Arrow
			dotTok := p.advance()
			nameTok, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			if p.at(token.LParen) {
				args, err := p.parseArgList()
				if err != nil {
					return nil, err
				}
				expr = &ast.MethodCall{Base: ast.At(dotTok), Target: expr, Name: nameTok.Lexeme, Args: args, Arrow: arrow}
			} else {
				expr = &ast.FieldAccess{Base: ast.At(dotTok), Target: expr, Name: nameTok.Lexeme, Arrow: arrow}
			}
		case token.LParen:
			lp := p.cur()
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpr{Base: ast.At(lp), Callee: expr, Args: args}
		case token.LBracket:
			lb := p.advance()
			idx, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBracket); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpr{Base: ast.At(lb), Target: expr, Index: idx}
		case token.PlusPlus, token.MinusMinus:
			opTok := p.advance()
			expr = &ast.UnaryExpr{Base: ast.At(opTok), Op: opTok.Lexeme, Operand: expr, Postfix: true}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgList() ([]ast.Expr, error) {
	p.advance() // '('
	var args []ast.Expr
	if p.at(token.RParen) {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	t := p.cur()
	switch t.Kind {
	case token.IntLit:
		p.advance()
		return &ast.IntLit{Base: ast.At(t), Text: t.Lexeme, Value: parseIntValue(t.Lexeme)}, nil
	case token.FloatLit:
		p.advance()
		return &ast.FloatLit{Base: ast.At(t), Text: t.Lexeme}, nil
	case token.StringLit:
		p.advance()
		return &ast.StringLit{Base: ast.At(t), Value: t.Lexeme}, nil
	case token.CharLit:
		p.advance()
		return &ast.CharLit{Base: ast.At(t), Value: t.Lexeme}, nil
	case token.KwTrue:
		p.advance()
		return &ast.BoolLit{Base: ast.At(t), Value: true}, nil
	case token.KwFalse:
		p.advance()
		return &ast.BoolLit{Base: ast.At(t), Value: false}, nil
	case token.KwNull:
		p.advance()
		return &ast.NullLit{Base: ast.At(t)}, nil
	case token.LBracket:
		return p.parseListLit()
	case token.LParen:
		lp := p.advance()
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return &ast.ParenExpr{Base: ast.At(lp), Inner: inner}, nil
	case token.Pipe:
		return p.parseLambda()
	case token.Ident:
		return p.parseIdentPrimary()
	}
	return nil, p.errAt(t, fmt.Sprintf("unexpected token %s in expression", describe(t)), "")
}

// parseIdentPrimary resolves an identifier into a plain Ident, the
// Ok(...)/Err(...) Result constructor shorthand, or an enum construction
// `Name::Variant(args...)` (spec.md §3, §4.3.1).
func (p *Parser) parseIdentPrimary() (ast.Expr, error) {
	nameTok := p.advance()

	if (nameTok.Lexeme == "Ok" || nameTok.Lexeme == "Err") && p.at(token.LParen) {
		p.advance()
		var inner ast.Expr
		if !p.at(token.RParen) {
			var err error
			inner, err = p.parseExpr(0)
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		if nameTok.Lexeme == "Ok" {
			return &ast.OkExpr{Base: ast.At(nameTok), Inner: inner}, nil
		}
		return &ast.ErrExpr{Base: ast.At(nameTok), Inner: inner}, nil
	}

	if p.at(token.ColonColon) {
		p.advance()
		variantTok, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		var args []ast.Expr
		if p.at(token.LParen) {
			args, err = p.parseArgList()
			if err != nil {
				return nil, err
			}
		}
		return &ast.EnumInit{Base: ast.At(nameTok), EnumName: nameTok.Lexeme, Variant: variantTok.Lexeme, Args: args}, nil
	}

	return ast.NewIdent(nameTok, nameTok.Lexeme), nil
}

func (p *Parser) parseListLit() (ast.Expr, error) {
	lb := p.advance() // '['
	var items []ast.Expr
	if p.at(token.RBracket) {
		p.advance()
		return &ast.ListLit{Base: ast.At(lb), Items: items}, nil
	}
	for {
		item, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBracket); err != nil {
		return nil, err
	}
	return &ast.ListLit{Base: ast.At(lb), Items: items}, nil
}

// parseLambda parses `|type name, ...| => body`, the closure literal
// (spec.md §4.4.1: lambdas are collected and hoisted to top-level
// functions during codegen, not here).
func (p *Parser) parseLambda() (ast.Expr, error) {
	pipeTok := p.advance() // '|'
	var params []ast.Param
	if !p.at(token.Pipe) {
		for {
			typeStr, ok := p.tryParseType()
			if !ok {
				return nil, p.errAt(p.cur(), "expected a parameter type in lambda parameter list", "")
			}
			nameTok, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Type: typeStr, Name: nameTok.Lexeme})
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.Pipe); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.FatArrow); err != nil {
		return nil, err
	}
	var body ast.Stmt
	if p.at(token.LBrace) {
		blk, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		body = blk
	} else {
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		body = &ast.ExprStmt{Base: ast.At(pipeTok), X: e}
	}
	return &ast.Lambda{Base: ast.At(pipeTok), Params: params, Body: body}, nil
}

// startsExprTok reports whether t could begin an expression, used both to
// gate statement-position expression attempts and to decide the
// cast-vs-paren heuristic.
func startsExprTok(t token.Token) bool {
	switch t.Kind {
	case token.Ident, token.IntLit, token.FloatLit, token.StringLit, token.CharLit,
		token.KwTrue, token.KwFalse, token.KwNull, token.LParen, token.LBracket,
		token.Minus, token.Bang, token.Tilde, token.Amp, token.Star,
		token.PlusPlus, token.MinusMinus, token.KwAwait, token.Pipe:
		return true
	}
	return false
}

func parseIntValue(lexeme string) int64 {
	trimmed := strings.TrimRight(lexeme, "LlUu")
	if v, err := strconv.ParseInt(trimmed, 0, 64); err == nil {
		return v
	}
	if uv, err := strconv.ParseUint(trimmed, 0, 64); err == nil {
		return int64(uv)
	}
	return 0
}
