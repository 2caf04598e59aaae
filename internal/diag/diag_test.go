package diag_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moxy-lang/moxy/internal/diag"
)

func TestErrorStringIncludesPosition(t *testing.T) {
	err := &diag.Error{File: "main.mxy", Line: 3, Column: 5, Message: "unexpected token"}
	assert.Equal(t, "main.mxy:3:5: unexpected token", err.Error())
}

func TestErrorStringWithoutFileIsBareMessage(t *testing.T) {
	err := &diag.Error{Message: "cannot find 'missing.mxy'"}
	assert.Equal(t, "cannot find 'missing.mxy'", err.Error())
}

func TestSinkReportPlainWriterHasNoEscapeCodes(t *testing.T) {
	var buf bytes.Buffer
	sink := diag.NewSink(&buf, "int main() {\n    retrn 0;\n}\n")
	sink.Report(&diag.Error{
		File: "main.mxy", Line: 2, Column: 5, Span: 5,
		Message: "unexpected token 'retrn'",
		Hint:    "did you mean 'return'?",
	})

	out := buf.String()
	assert.Contains(t, out, "error: unexpected token 'retrn'")
	assert.Contains(t, out, "--> main.mxy:2:5")
	assert.Contains(t, out, "retrn 0;")
	assert.Contains(t, out, "^^^^^")
	assert.Contains(t, out, "hint: did you mean 'return'?")
	assert.NotContains(t, out, "\033[")
}

func TestSinkReportWithoutSourceSkipsSnippet(t *testing.T) {
	var buf bytes.Buffer
	sink := diag.NewSink(&buf, "")
	sink.Report(&diag.Error{Message: "cannot find 'x.mxy'"})

	out := buf.String()
	assert.Contains(t, out, "error: cannot find 'x.mxy'")
	assert.NotContains(t, out, "-->")
	assert.NotContains(t, out, "^")
}

func TestSinkReportLineOutOfRangeSkipsSnippet(t *testing.T) {
	var buf bytes.Buffer
	sink := diag.NewSink(&buf, "int main() { return 0; }\n")
	sink.Report(&diag.Error{File: "main.mxy", Line: 99, Column: 1, Message: "boom"})

	out := buf.String()
	assert.Contains(t, out, "error: boom")
	assert.NotContains(t, out, "return 0;")
}

func TestHintKnownLookalikes(t *testing.T) {
	assert.Equal(t, "did you mean 'string'?", diag.Hint("type", "str"))
	assert.Equal(t, "moxy uses C-style function syntax: returnType name(params) { }", diag.Hint("type", "fn"))
	assert.Equal(t, "moxy declares variables as 'type name = value;'", diag.Hint("type", "let"))
	assert.Equal(t, "moxy's print intrinsic is spelled 'print'", diag.Hint("ident", "println"))
	assert.Equal(t, "'=>' is only valid inside match arms", diag.Hint("expr", "=>"))
}

func TestHintExpectedDescFallbacks(t *testing.T) {
	assert.Equal(t, "add ';' before 'x'", diag.Hint(";", "x"))
	assert.Equal(t, "function bodies must be wrapped in '{ }'", diag.Hint("{", "x"))
}

func TestHintNoMatchReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", diag.Hint("expr", "foo"))
}
