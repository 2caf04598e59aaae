package parser

import "github.com/moxy-lang/moxy/internal/token"

// tryParseType speculatively parses a type expression starting at the
// current token. It returns (typeString, true) on success without
// consuming input on failure — callers that only want to probe should
// snapshot first themselves.
func (p *Parser) tryParseType() (string, bool) {
	base, ok := p.tryParseBaseType()
	if !ok {
		return "", false
	}
	for p.at(token.LBracket) && p.peekAt(1).Kind == token.RBracket {
		p.advance()
		p.advance()
		base += "[]"
	}
	return base, true
}

func (p *Parser) tryParseBaseType() (string, bool) {
	t := p.cur()
	switch t.Kind {
	case token.KwInt, token.KwFloat, token.KwDouble, token.KwChar, token.KwBool,
		token.KwLong, token.KwShort, token.KwVoid, token.KwString:
		p.advance()
		return t.Lexeme, true
	case token.KwResult:
		p.advance()
		if _, err := p.expect(token.Lt); err != nil {
			return "", false
		}
		inner, ok := p.tryParseType()
		if !ok {
			return "", false
		}
		if _, err := p.expect(token.Gt); err != nil {
			return "", false
		}
		return "Result<" + inner + ">", true
	case token.KwFuture:
		p.advance()
		if _, err := p.expect(token.Lt); err != nil {
			return "", false
		}
		inner, ok := p.tryParseType()
		if !ok {
			return "", false
		}
		if _, err := p.expect(token.Gt); err != nil {
			return "", false
		}
		return "Future<" + inner + ">", true
	case token.KwMap:
		p.advance()
		if _, err := p.expect(token.LBracket); err != nil {
			return "", false
		}
		key, ok := p.tryParseType()
		if !ok {
			return "", false
		}
		if _, err := p.expect(token.Comma); err != nil {
			return "", false
		}
		val, ok := p.tryParseType()
		if !ok {
			return "", false
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return "", false
		}
		return "map[" + key + "," + val + "]", true
	case token.Ident:
		if p.knownTypes[t.Lexeme] {
			p.advance()
			return t.Lexeme, true
		}
		return "", false
	}
	return "", false
}

// startsType reports whether the current token could plausibly begin a
// type, without consuming anything — used to decide whether the
// type-start heuristic of spec.md §4.3.3 is even worth attempting.
func (p *Parser) startsType() bool {
	switch p.cur().Kind {
	case token.KwInt, token.KwFloat, token.KwDouble, token.KwChar, token.KwBool,
		token.KwLong, token.KwShort, token.KwVoid, token.KwString,
		token.KwResult, token.KwFuture, token.KwMap:
		return true
	case token.Ident:
		return p.knownTypes[p.cur().Lexeme]
	}
	return false
}
