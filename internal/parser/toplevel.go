package parser

import (
	"strings"

	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/token"
)

// parseTopLevel dispatches one top-level declaration: enum, function,
// global variable, or — on any mismatch — a raw passthrough fragment
// (spec.md §4.3.1, §4.3.2).
func (p *Parser) parseTopLevel() (ast.Stmt, error) {
	if p.at(token.KwEnum) {
		return p.parseEnumOrRaw()
	}
	if p.startsType() {
		snap := p.snap()
		decl, matched, err := p.tryParseFuncOrVarDecl()
		if err != nil {
			return nil, err
		}
		if matched {
			return decl, nil
		}
		p.restore(snap)
	}
	return p.captureRaw(), nil
}

// tryParseFuncOrVarDecl implements the type-start heuristic of spec.md
// §4.3.3: it speculatively parses `type name` and then decides between a
// function declaration (name followed by '('), a variable declaration
// (name followed by '=' ... ';'), or — on any other continuation —
// reports no match so the caller falls back to raw. Once the function
// form commits past its opening '{', failures inside the body are real
// parse errors, not further fallback material.
func (p *Parser) tryParseFuncOrVarDecl() (ast.Stmt, bool, error) {
	start := p.cur()
	typeStr, ok := p.tryParseType()
	if !ok {
		return nil, false, nil
	}
	if !p.at(token.Ident) {
		return nil, false, nil
	}
	nameTok := p.advance()

	switch {
	case p.at(token.LParen):
		params, ok := p.tryParseParamList()
		if !ok {
			return nil, false, nil
		}
		if !p.at(token.LBrace) {
			return nil, false, nil
		}
		isAsync := strings.HasPrefix(typeStr, "Future<")
		if isAsync && !p.flags.Async {
			return nil, false, p.errAt(nameTok, "Future<T> return type requires the async feature flag", "enable the async feature flag, or drop the Future<T> return type")
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, false, err
		}
		fn := &ast.FuncDecl{
			Base: ast.At(start), ReturnType: typeStr, Name: nameTok.Lexeme,
			Params: params, Body: body, IsMain: nameTok.Lexeme == "main", IsAsync: isAsync,
		}
		return fn, true, nil

	case p.at(token.Assign):
		p.advance()
		init, err := p.parseExpr(0)
		if err != nil {
			return nil, false, err
		}
		if _, err := p.expect(token.Semi); err != nil {
			return nil, false, err
		}
		return &ast.VarDecl{Base: ast.At(start), Type: typeStr, Name: nameTok.Lexeme, Init: init}, true, nil

	default:
		return nil, false, nil
	}
}

// tryParseParamList parses `(type name, type name, ...)`, assuming the
// current token is '('. It never errors: any mismatch just reports no
// match, leaving the raw-passthrough fallback to the caller (this covers
// C function pointer parameter lists like `int (*fp)(int, int)` which
// this grammar does not attempt to parse structurally).
func (p *Parser) tryParseParamList() ([]ast.Param, bool) {
	p.advance() // '('
	var params []ast.Param
	if p.at(token.RParen) {
		p.advance()
		return params, true
	}
	for {
		typeStr, ok := p.tryParseType()
		if !ok {
			return nil, false
		}
		if !p.at(token.Ident) {
			return nil, false
		}
		name := p.advance().Lexeme
		params = append(params, ast.Param{Type: typeStr, Name: name})
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if !p.at(token.RParen) {
		return nil, false
	}
	p.advance()
	return params, true
}

// parseEnumOrRaw implements spec.md §4.3.1/§4.3.3: an enum declaration is
// a moxy construct (simple or tagged) unless its brace body looks like a
// plain C enum — scanned once, without consuming input, for a '(' at
// depth 1 (tagged) and for what follows the matching '}' (';' or an
// identifier means a C enum type/variable declaration).
func (p *Parser) parseEnumOrRaw() (ast.Stmt, error) {
	snap := p.snap()
	start := p.advance() // 'enum'

	if !p.at(token.Ident) {
		p.restore(snap)
		return p.captureRaw(), nil
	}
	name := p.advance().Lexeme

	if !p.at(token.LBrace) {
		p.restore(snap)
		return p.captureRaw(), nil
	}

	tagged, closeIdx := p.scanEnumBody(p.pos)
	// The closing-brace lookahead only disambiguates a plain *simple* enum
	// from a C enum type/variable declaration; a tagged enum (has at least
	// one parenthesized variant) is unambiguously a moxy construct and
	// parses structurally no matter what follows its '}'.
	if !tagged {
		after := p.tokenAt(closeIdx + 1)
		if after.Kind == token.Semi || after.Kind == token.Ident {
			p.restore(snap)
			return p.captureRaw(), nil
		}
	}

	p.advance() // '{'
	variants, err := p.parseVariants(tagged)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return &ast.EnumDecl{Base: ast.At(start), Name: name, Variants: variants}, nil
}

func (p *Parser) tokenAt(idx int) token.Token {
	if idx < 0 || idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

// scanEnumBody scans the brace body starting at the '{' token index
// (inclusive) and returns whether a '(' appears at depth 1, and the index
// of the matching closing '}'.
func (p *Parser) scanEnumBody(braceIdx int) (tagged bool, closeIdx int) {
	depth := 0
	for i := braceIdx; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
			if p.tokens[i].Kind == token.LParen && depth == 2 {
				tagged = true
			}
		case token.RBrace:
			depth--
			if depth == 0 {
				return tagged, i
			}
		case token.RParen, token.RBracket:
			depth--
		}
	}
	return tagged, len(p.tokens) - 1
}

func (p *Parser) parseVariants(tagged bool) ([]ast.Variant, error) {
	var variants []ast.Variant
	for !p.at(token.RBrace) {
		nameTok, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		v := ast.Variant{Name: nameTok.Lexeme}
		if p.at(token.LParen) {
			p.advance()
			for !p.at(token.RParen) {
				ftype, ok := p.tryParseType()
				if !ok {
					return nil, p.errAt(p.cur(), "expected a field type in enum variant", "")
				}
				fname, err := p.expect(token.Ident)
				if err != nil {
					return nil, err
				}
				v.Fields = append(v.Fields, ast.Field{Type: ftype, Name: fname.Lexeme})
				if p.at(token.Comma) {
					p.advance()
					continue
				}
				break
			}
			if _, err := p.expect(token.RParen); err != nil {
				return nil, err
			}
		}
		variants = append(variants, v)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	return variants, nil
}
