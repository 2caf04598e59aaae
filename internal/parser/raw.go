package parser

import (
	"strings"

	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/token"
)

// captureRaw implements spec.md §4.3.2: reconstruct a single Raw node
// from the token range starting at the current position. The range
// terminates at the first ';' at depth 0, or a '}' at depth 0 that is
// not immediately followed by another continuation token (identifier,
// '*', 'while', ';') — which lets `typedef struct {...} Point;`,
// `do {...} while (cond);` and similar forms survive as one Raw node
// instead of being split.
func (p *Parser) captureRaw() *ast.Raw {
	start := p.cur()
	var toks []token.Token
	depth := 0

	for {
		t := p.cur()
		if t.Kind == token.EOF {
			break
		}
		toks = append(toks, t)
		p.advance()

		switch t.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket:
			depth--
		case token.RBrace:
			depth--
			if depth == 0 {
				if isContinuation(p.cur()) {
					continue
				}
				return ast.NewRaw(start, reconstruct(toks))
			}
		case token.Semi:
			if depth == 0 {
				return ast.NewRaw(start, reconstruct(toks))
			}
		}
	}
	return ast.NewRaw(start, reconstruct(toks))
}

func isContinuation(t token.Token) bool {
	switch t.Kind {
	case token.Ident, token.Star, token.KwWhile, token.Semi:
		return true
	}
	return false
}

// tokenText renders a token's printable form, re-quoting string and char
// literals with their original delimiters (spec.md §4.3.2).
func tokenText(t token.Token) string {
	switch t.Kind {
	case token.StringLit:
		return `"` + t.Lexeme + `"`
	case token.CharLit:
		return `'` + t.Lexeme + `'`
	default:
		return t.Lexeme
	}
}

var noSpaceAfter = map[token.Kind]bool{
	token.LParen: true, token.LBracket: true, token.LBrace: true,
	token.Dot: true, token.Arrow: true, token.Tilde: true, token.Bang: true,
	token.Amp: true, token.Star: true,
}

var noSpaceBefore = map[token.Kind]bool{
	token.RParen: true, token.RBracket: true, token.RBrace: true,
	token.Dot: true, token.Comma: true, token.Semi: true, token.Arrow: true,
	token.PlusPlus: true, token.MinusMinus: true, token.Colon: true, token.LBracket: true,
}

// reconstruct re-emits toks with the fixed spacing policy of spec.md
// §4.3.2.
func reconstruct(toks []token.Token) string {
	var b strings.Builder
	for i, t := range toks {
		text := tokenText(t)
		if i > 0 {
			prev := toks[i-1]
			if !noSpaceAfter[prev.Kind] && !noSpaceBefore[t.Kind] {
				b.WriteByte(' ')
			}
		}
		b.WriteString(text)
	}
	return b.String()
}
