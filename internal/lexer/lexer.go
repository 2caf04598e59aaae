// Package lexer turns moxy source text into a token stream, spec.md §4.2.
//
// Grounded closely on funvibe-funxy/internal/lexer/lexer.go: the same
// rune-aware readChar/peekChar cursor and the same switch-on-leading-byte
// structure for multi-character operators, generalized to moxy's token
// set, three-character operators (<<=, >>=, ...), and numeric literal
// suffixes.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/moxy-lang/moxy/internal/diag"
	"github.com/moxy-lang/moxy/internal/token"
)

// Lexer is a single-pass, non-backtracking scanner.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
}

// New creates a Lexer positioned at the start of input.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekChar2() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	_, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	pos := l.readPosition + w
	if pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return r
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') && l.ch != 0 {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
		default:
			return
		}
	}
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func (l *Lexer) tok(kind token.Kind, lexeme string, line, col int) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme, Line: line, Column: col}
}

// NextToken scans and returns the next token, including an EOF sentinel
// once the input is exhausted.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespaceAndComments()
	line, col := l.line, l.column

	switch {
	case l.ch == 0:
		return l.tok(token.EOF, "", line, col), nil
	case isLetter(l.ch):
		return l.readIdent(line, col), nil
	case isDigit(l.ch):
		return l.readNumber(line, col)
	case l.ch == '"':
		return l.readString(line, col)
	case l.ch == '\'':
		return l.readChar2(line, col)
	}

	// Three-character operators.
	if three, ok := l.peekThree(); ok {
		kind := map[string]token.Kind{"<<=": token.ShlAssign, ">>=": token.ShrAssign, "...": token.Ellipsis}[three]
		l.readChar()
		l.readChar()
		l.readChar()
		return l.tok(kind, three, line, col), nil
	}
	// Two-character operators.
	if two, ok := l.peekTwo(); ok {
		if kind, known := twoCharOps[two]; known {
			l.readChar()
			l.readChar()
			return l.tok(kind, two, line, col), nil
		}
	}

	ch := l.ch
	if kind, ok := oneCharOps[ch]; ok {
		l.readChar()
		return l.tok(kind, string(ch), line, col), nil
	}

	l.readChar()
	return l.tok(token.Unknown, string(ch), line, col), nil
}

func (l *Lexer) peekThree() (string, bool) {
	candidates := []string{"<<=", ">>=", "..."}
	for _, c := range candidates {
		if l.matchesAhead(c) {
			return c, true
		}
	}
	return "", false
}

func (l *Lexer) matchesAhead(s string) bool {
	runes := []rune(s)
	if l.ch != runes[0] {
		return false
	}
	pos := l.readPosition
	for i := 1; i < len(runes); i++ {
		if pos >= len(l.input) {
			return false
		}
		r, w := utf8.DecodeRuneInString(l.input[pos:])
		if r != runes[i] {
			return false
		}
		pos += w
	}
	return true
}

func (l *Lexer) peekTwo() (string, bool) {
	if l.ch == 0 {
		return "", false
	}
	p := l.peekChar()
	if p == 0 {
		return "", false
	}
	return string(l.ch) + string(p), true
}

var twoCharOps = map[string]token.Kind{
	"::": token.ColonColon, "=>": token.FatArrow, "==": token.Eq, "!=": token.Neq,
	"<=": token.Le, ">=": token.Ge, "<<": token.Shl, ">>": token.Shr,
	"&&": token.AndAnd, "||": token.OrOr, "|>": token.Pipe2, "->": token.Arrow,
	"..": token.DotDot, "+=": token.PlusAssign, "-=": token.MinusAssign,
	"*=": token.StarAssign, "/=": token.SlashAssign, "%=": token.PercentAssign,
	"&=": token.AndAssign, "|=": token.OrAssign, "^=": token.XorAssign,
	"++": token.PlusPlus, "--": token.MinusMinus,
}

var oneCharOps = map[rune]token.Kind{
	'{': token.LBrace, '}': token.RBrace, '(': token.LParen, ')': token.RParen,
	'[': token.LBracket, ']': token.RBracket,
	'.': token.Dot, ',': token.Comma, ';': token.Semi, ':': token.Colon, '?': token.Question,
	'=': token.Assign, '+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash,
	'%': token.Percent, '<': token.Lt, '>': token.Gt, '!': token.Bang,
	'&': token.Amp, '|': token.Pipe, '^': token.Caret, '~': token.Tilde,
}

func (l *Lexer) readIdent(line, col int) token.Token {
	var b strings.Builder
	for isLetter(l.ch) || isDigit(l.ch) {
		b.WriteRune(l.ch)
		l.readChar()
	}
	name := b.String()
	if kind, ok := token.Lookup(name); ok {
		return l.tok(kind, name, line, col)
	}
	return l.tok(token.Ident, name, line, col)
}

// intSuffixes and floatSuffixes are consumed and kept in the lexeme; f/F re-classify an
// integer-looking literal to a float (spec.md §4.2).
const intSuffixes = "LlUu"
const floatSuffixes = "fF"

func (l *Lexer) readNumber(line, col int) (token.Token, error) {
	var b strings.Builder
	isFloat := false

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		b.WriteRune(l.ch)
		l.readChar()
		b.WriteRune(l.ch)
		l.readChar()
		for isHexDigit(l.ch) {
			b.WriteRune(l.ch)
			l.readChar()
		}
		l.consumeSuffix(&b, &isFloat)
		kind := token.IntLit
		if isFloat {
			kind = token.FloatLit
		}
		return l.tok(kind, b.String(), line, col), nil
	}

	for isDigit(l.ch) {
		b.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		b.WriteRune(l.ch)
		l.readChar()
		for isDigit(l.ch) {
			b.WriteRune(l.ch)
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		if isDigit(l.peekChar()) || ((l.peekChar() == '+' || l.peekChar() == '-') && isDigit(l.peekChar2())) {
			isFloat = true
			b.WriteRune(l.ch)
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				b.WriteRune(l.ch)
				l.readChar()
			}
			for isDigit(l.ch) {
				b.WriteRune(l.ch)
				l.readChar()
			}
		}
	}
	l.consumeSuffix(&b, &isFloat)

	kind := token.IntLit
	if isFloat {
		kind = token.FloatLit
	}
	return l.tok(kind, b.String(), line, col), nil
}

func (l *Lexer) consumeSuffix(b *strings.Builder, isFloat *bool) {
	for strings.ContainsRune(intSuffixes, l.ch) || strings.ContainsRune(floatSuffixes, l.ch) {
		if strings.ContainsRune(floatSuffixes, l.ch) {
			*isFloat = true
		}
		b.WriteRune(l.ch)
		l.readChar()
	}
}

func (l *Lexer) readString(line, col int) (token.Token, error) {
	l.readChar() // consume opening quote
	var b strings.Builder
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			return token.Token{}, &diag.Error{Category: diag.Lex, Line: line, Column: col,
				Message: "unterminated string literal"}
		}
		if l.ch == '\\' {
			b.WriteRune(l.ch)
			l.readChar()
			if l.ch == 0 {
				return token.Token{}, &diag.Error{Category: diag.Lex, Line: line, Column: col,
					Message: "unterminated string literal"}
			}
			b.WriteRune(l.ch)
			l.readChar()
			continue
		}
		b.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote
	return l.tok(token.StringLit, b.String(), line, col), nil
}

func (l *Lexer) readChar2(line, col int) (token.Token, error) {
	l.readChar() // consume opening quote
	var b strings.Builder
	if l.ch == '\\' {
		b.WriteRune(l.ch)
		l.readChar()
		if l.ch == 0 {
			return token.Token{}, &diag.Error{Category: diag.Lex, Line: line, Column: col, Message: "unterminated character literal"}
		}
		b.WriteRune(l.ch)
		l.readChar()
	} else if l.ch != 0 && l.ch != '\'' {
		b.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch != '\'' {
		return token.Token{}, &diag.Error{Category: diag.Lex, Line: line, Column: col, Message: "unterminated character literal"}
	}
	l.readChar() // consume closing quote
	return l.tok(token.CharLit, b.String(), line, col), nil
}

// Tokenize scans the entire input, returning the full token stream
// (terminated by exactly one EOF) or the first lex error encountered
// (spec.md §7: lex failures are fatal).
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var out []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out, nil
		}
	}
}
