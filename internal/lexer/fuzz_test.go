package lexer_test

import (
	"testing"

	"github.com/moxy-lang/moxy/internal/lexer"
	"github.com/moxy-lang/moxy/internal/token"
)

// FuzzNext asserts the one invariant that must hold for every input,
// valid or not: a finite token stream ending in exactly one EOF, with
// line/column never moving backwards.
func FuzzNext(f *testing.F) {
	f.Add("int main() { return 0; }")
	f.Add("enum Shape { Circle(int r), Square(int s) }")
	f.Add(`"unterminated`)
	f.Add("`")
	f.Add("1_000u 0x1F 3.14")

	f.Fuzz(func(t *testing.T, src string) {
		toks, err := lexer.Tokenize(src)
		if err != nil {
			return
		}

		eofCount := 0
		lastLine, lastCol := 1, 0
		for i, tok := range toks {
			if tok.Line < lastLine || (tok.Line == lastLine && tok.Column < lastCol) {
				t.Fatalf("token %d position went backwards: %v after %d:%d", i, tok, lastLine, lastCol)
			}
			lastLine, lastCol = tok.Line, tok.Column
			if tok.Kind == token.EOF {
				eofCount++
				if i != len(toks)-1 {
					t.Fatalf("EOF token not last: %v at index %d of %d", tok, i, len(toks))
				}
			}
		}
		if eofCount != 1 {
			t.Fatalf("expected exactly one EOF, got %d", eofCount)
		}
	})
}
