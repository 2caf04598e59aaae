// Package parser implements moxy's hybrid recursive-descent + Pratt
// parser, spec.md §4.3. The load-bearing idea is the raw-passthrough
// fallback (raw.go): any top-level or statement form the structural
// grammar does not recognize is captured verbatim and reconstructed from
// its tokens, which is how "any C code is valid moxy" holds.
//
// File split mirrors the teacher's convention of one file per grammar
// concern (funvibe-funxy/internal/parser: expressions_*.go,
// statements_*.go) — here: parser.go (driver + snapshot/restore),
// toplevel.go (top-level decl / enum / raw dispatch), types.go (the type
// DSL's token-level grammar), stmt.go (statement grammar), expr.go (Pratt
// expressions), raw.go (passthrough capture + reconstruction).
package parser

import (
	"fmt"

	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/config"
	"github.com/moxy-lang/moxy/internal/diag"
	"github.com/moxy-lang/moxy/internal/token"
)

// Parser walks a complete token stream (spec.md §3 invariant 4: positions
// are monotone non-decreasing; the parser never rewinds past a committed
// construct — only speculative lookahead snapshots and restores).
type Parser struct {
	tokens     []token.Token
	pos        int
	file       string
	knownTypes map[string]bool
	flags      config.Flags
}

// New builds a Parser over a complete token stream. knownTypes comes from
// the preprocessor's @type pragma registry (spec.md §4.1); flags gates
// acceptance of Future<T>/await (spec.md §6).
func New(tokens []token.Token, file string, knownTypes map[string]bool, flags config.Flags) *Parser {
	if knownTypes == nil {
		knownTypes = map[string]bool{}
	}
	return &Parser{tokens: tokens, file: file, knownTypes: knownTypes, flags: flags}
}

// Parse consumes the entire token stream into a Program (spec.md §8:
// "Parsing a token stream consumes every token up to EOF").
func (p *Parser) Parse() (*ast.Program, error) {
	prog := ast.NewProgram(p.cur())
	for !p.at(token.EOF) {
		decl, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, decl)
	}
	return prog, nil
}

// ---- token stream helpers ----------------------------------------------

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

// snapshot/restore implement the bounded speculation spec.md §4.3.3
// requires (type-start heuristic, cast-vs-paren, enum-vs-C-enum).
type snapshot struct{ pos int }

func (p *Parser) snap() snapshot   { return snapshot{pos: p.pos} }
func (p *Parser) restore(s snapshot) { p.pos = s.pos }

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.cur().Kind != k {
		return token.Token{}, p.errExpected(k)
	}
	return p.advance(), nil
}

func (p *Parser) errExpected(want token.Kind) error {
	got := p.cur()
	msg := fmt.Sprintf("expected %s, found %s", want, describe(got))
	hint := diag.Hint(want.String(), got.Lexeme)
	return &diag.Error{Category: diag.Parse, File: p.file, Line: got.Line, Column: got.Column,
		Span: len(got.Lexeme), Message: msg, Hint: hint}
}

func (p *Parser) errAt(t token.Token, msg, hint string) error {
	return &diag.Error{Category: diag.Parse, File: p.file, Line: t.Line, Column: t.Column,
		Span: len(t.Lexeme), Message: msg, Hint: hint}
}

func describe(t token.Token) string {
	if t.Kind == token.EOF {
		return "end of file"
	}
	return fmt.Sprintf("'%s'", t.Lexeme)
}
