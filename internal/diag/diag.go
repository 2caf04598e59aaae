// Package diag implements moxy's diagnostic sink: the fatal, single-shot
// error reporting described in spec.md §4.3.4 and §7, formatted the way
// original_source/src/diag.c does — a bold "error:" line, a "-->"
// file:line:col pointer, and a two-line source snippet with a caret
// underline — gated on terminal-ness with github.com/mattn/go-isatty
// rather than emitting ANSI unconditionally the way the C original did.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// Category distinguishes the three fatal error classes of spec.md §7.
type Category int

const (
	Resolution Category = iota // preprocessor: include not found
	Lex                        // unterminated literal
	Parse                      // unexpected token
)

// Error is a fatal diagnostic. It implements error so pipeline stages can
// return it directly; the pipeline aborts on the first one (spec.md §7:
// "no error recovery").
type Error struct {
	Category Category
	File     string
	Line     int
	Column   int
	Span     int // caret width; 0 means 1
	Message  string
	Hint     string
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return e.Message
}

// Sink renders diagnostics for a single translation run. Each Sink is
// tagged with a run ID (github.com/google/uuid) so a host embedding the
// translator — an IDE, a package manager, any of the "external
// collaborators" named in spec.md §1 — can correlate the diagnostics of
// one Translate call across its own logs.
type Sink struct {
	RunID  uuid.UUID
	Out    io.Writer
	color  bool
	Source string // full preprocessed source, for snippet rendering
}

// NewSink builds a Sink writing to w. Color is enabled only when w is a
// *os.File attached to a real terminal (github.com/mattn/go-isatty),
// matching how the teacher's own CLI tooling decides whether to colorize.
func NewSink(w io.Writer, source string) *Sink {
	s := &Sink{RunID: uuid.New(), Out: w, Source: source}
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		s.color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return s
}

func (s *Sink) style(code, text string) string {
	if !s.color {
		return text
	}
	return "\033[" + code + "m" + text + "\033[0m"
}

// Report writes a fully formatted diagnostic for err to the sink's
// writer, including a source snippet when the sink has source text and
// err.Line is within range.
func (s *Sink) Report(err *Error) {
	fmt.Fprintf(s.Out, "%s%s %s\n",
		s.style("1;31", "error"), s.style("1", ":"), s.style("1", err.Message))
	if err.File != "" {
		fmt.Fprintf(s.Out, "  %s %s:%d:%d\n", s.style("1;34", "-->"), err.File, err.Line, err.Column)
	}
	s.showSource(err.Line, err.Column, err.Span)
	if err.Hint != "" {
		fmt.Fprintf(s.Out, "  %s %s\n", s.style("1;33", "hint:"), err.Hint)
	}
}

func (s *Sink) showSource(line, col, span int) {
	if s.Source == "" || line <= 0 {
		return
	}
	lines := strings.Split(s.Source, "\n")
	if line > len(lines) {
		return
	}
	text := lines[line-1]
	width := len(fmt.Sprintf("%d", line))

	fmt.Fprintf(s.Out, " %*s |\n", width, "")
	fmt.Fprintf(s.Out, " %*d | %s\n", width, line, text)
	fmt.Fprintf(s.Out, " %*s | ", width, "")

	caret := col - 1
	if caret < 0 {
		caret = 0
	}
	var b strings.Builder
	for i := 0; i < caret; i++ {
		if i < len(text) && text[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	if span <= 0 {
		span = 1
	}
	for i := 0; i < span && i < 40; i++ {
		b.WriteByte('^')
	}
	fmt.Fprintln(s.Out, s.style("1;32", b.String()))
}

// Hint returns the context-sensitive hint for a parser "expected X, found
// Y" mismatch, or "" if none of the known look-alikes apply (spec.md
// §4.3.4, §7).
func Hint(expectedDesc, gotLexeme string) string {
	switch gotLexeme {
	case "str":
		return "did you mean 'string'?"
	case "fn":
		return "moxy uses C-style function syntax: returnType name(params) { }"
	case "let", "var":
		return "moxy declares variables as 'type name = value;'"
	case "println":
		return "moxy's print intrinsic is spelled 'print'"
	case "=>":
		return "'=>' is only valid inside match arms"
	}
	switch expectedDesc {
	case ";":
		return "add ';' before '" + gotLexeme + "'"
	case "{":
		return "function bodies must be wrapped in '{ }'"
	}
	return ""
}
