package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moxy-lang/moxy/internal/token"
)

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	toks, err := Tokenize(src)
	require.NoError(t, err)
	var ks []token.Kind
	for _, tok := range toks {
		ks = append(ks, tok.Kind)
	}
	return ks
}

func TestTokenizeDeclaration(t *testing.T) {
	ks := kinds(t, "int x = 5;")
	assert.Equal(t, []token.Kind{
		token.KwInt, token.Ident, token.Assign, token.IntLit, token.Semi, token.EOF,
	}, ks)
}

func TestTokenizeMultiCharOperators(t *testing.T) {
	ks := kinds(t, "a |> b::c <<= d ... e..f => g->h")
	want := []token.Kind{
		token.Ident, token.Pipe2, token.Ident, token.ColonColon, token.Ident,
		token.ShlAssign, token.Ident, token.Ellipsis, token.Ident,
		token.DotDot, token.Ident, token.FatArrow, token.Ident, token.Arrow, token.Ident,
		token.EOF,
	}
	assert.Equal(t, want, ks)
}

func TestTokenizeComparisonAndLogical(t *testing.T) {
	ks := kinds(t, "a == b != c && d || !e")
	want := []token.Kind{
		token.Ident, token.Eq, token.Ident, token.Neq, token.Ident,
		token.AndAnd, token.Ident, token.OrOr, token.Bang, token.Ident,
		token.EOF,
	}
	assert.Equal(t, want, ks)
}

func TestTokenizeStringAndCharLiterals(t *testing.T) {
	toks, err := Tokenize(`"hello\n" 'a'`)
	require.NoError(t, err)
	require.Len(t, toks, 3) // string, char, EOF
	assert.Equal(t, token.StringLit, toks[0].Kind)
	assert.Equal(t, token.CharLit, toks[1].Kind)
}

func TestTokenizeIntegerSuffixes(t *testing.T) {
	toks, err := Tokenize("10 10u 10L 10UL")
	require.NoError(t, err)
	require.Len(t, toks, 5)
	for i := 0; i < 4; i++ {
		assert.Equal(t, token.IntLit, toks[i].Kind)
	}
}

func TestTokenizeSkipsComments(t *testing.T) {
	ks := kinds(t, "int a; // trailing comment\n/* block\ncomment */ int b;")
	assert.Equal(t, []token.Kind{
		token.KwInt, token.Ident, token.Semi,
		token.KwInt, token.Ident, token.Semi,
		token.EOF,
	}, ks)
}

func TestTokenizeKeywordVsIdentifier(t *testing.T) {
	toks, err := Tokenize("enum match_result")
	require.NoError(t, err)
	assert.Equal(t, token.KwEnum, toks[0].Kind)
	assert.Equal(t, token.Ident, toks[1].Kind)
}

func TestTokenizeUnknownByteSurfaces(t *testing.T) {
	toks, err := Tokenize("int a = `;")
	require.NoError(t, err)
	var sawUnknown bool
	for _, tok := range toks {
		if tok.Kind == token.Unknown {
			sawUnknown = true
		}
	}
	assert.True(t, sawUnknown, "an unrecognized byte should surface as Unknown, not abort the lex")
}
