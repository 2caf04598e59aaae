// Package pipeline wires moxy's four fixed stages — preprocess, lex,
// parse, generate — into the single fail-fast sequence spec.md §7
// describes: each stage fully consumes its predecessor's output before
// the next one runs, and the first stage to fail stops the whole run.
//
// Shaped after funvibe-funxy/internal/pipeline's Processor/Pipeline split
// (a Context threaded through an ordered list of single-purpose Process
// steps), adapted from that teacher's continue-on-error LSP-diagnostics
// model to the translator's fail-fast one (spec.md §7: "a stage does not
// run on output that failed to validate").
package pipeline

import (
	"github.com/moxy-lang/moxy/internal/ast"
	"github.com/moxy-lang/moxy/internal/codegen"
	"github.com/moxy-lang/moxy/internal/config"
	"github.com/moxy-lang/moxy/internal/lexer"
	"github.com/moxy-lang/moxy/internal/parser"
	"github.com/moxy-lang/moxy/internal/preprocess"
	"github.com/moxy-lang/moxy/internal/token"
)

// Context carries one translation's state from stage to stage.
type Context struct {
	Path  string
	Flags config.Flags

	Pre     *preprocess.Result
	Tokens  []token.Token
	Program *ast.Program
	Output  string
}

// NewContext starts a fresh translation of the file at path under flags.
func NewContext(path string, flags config.Flags) *Context {
	return &Context{Path: path, Flags: flags}
}

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *Context) error
}

// Pipeline runs an ordered list of Processors over one Context.
type Pipeline struct {
	processors []Processor
}

// New builds the default four-stage pipeline, in spec.md §2's order.
func New() *Pipeline {
	return &Pipeline{processors: []Processor{
		&PreprocessProcessor{},
		&LexerProcessor{},
		&ParserProcessor{},
		&CodegenProcessor{},
	}}
}

// NewWith builds a pipeline over an explicit processor list, for tests
// that want to run a prefix of the stages.
func NewWith(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order, stopping at the first error.
func (p *Pipeline) Run(ctx *Context) error {
	for _, proc := range p.processors {
		if err := proc.Process(ctx); err != nil {
			return err
		}
	}
	return nil
}

// PreprocessProcessor runs spec.md §4.1 over ctx.Path, splicing includes
// and collecting the user include/directive/type-pragma side tables.
type PreprocessProcessor struct{}

func (*PreprocessProcessor) Process(ctx *Context) error {
	pre, err := preprocess.Process(ctx.Path)
	if err != nil {
		return err
	}
	ctx.Pre = pre
	return nil
}

// LexerProcessor tokenizes the preprocessor's spliced source in full
// before the parser sees anything, per spec.md §2's "one stage at a
// time" invariant.
type LexerProcessor struct{}

func (*LexerProcessor) Process(ctx *Context) error {
	tokens, err := lexer.Tokenize(ctx.Pre.Source)
	if err != nil {
		return err
	}
	ctx.Tokens = tokens
	return nil
}

// ParserProcessor builds the full Program from the token stream.
type ParserProcessor struct{}

func (*ParserProcessor) Process(ctx *Context) error {
	prog, err := parser.New(ctx.Tokens, ctx.Path, ctx.Pre.KnownTypes, ctx.Flags).Parse()
	if err != nil {
		return err
	}
	ctx.Program = prog
	return nil
}

// CodegenProcessor lowers the Program to a C11 translation unit.
type CodegenProcessor struct{}

func (*CodegenProcessor) Process(ctx *Context) error {
	out, err := codegen.Generate(ctx.Program, ctx.Pre, ctx.Flags)
	if err != nil {
		return err
	}
	ctx.Output = out
	return nil
}
