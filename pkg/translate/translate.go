// Package translate is moxy's single public entry point (spec.md §6):
// given a `.mxy` file on disk, produce a C11 translation unit as a string.
// Every other collaborator spec.md §6 names — a CLI dispatcher, a package
// manager, a project/workspace builder, a future language-server front
// end — calls this function directly; there is no RPC boundary here
// (DESIGN.md, "dropped teacher dependencies").
//
// Shaped after funvibe-funxy/pkg/embed's functional-options constructor
// over an internal pipeline, generalized to a one-shot function instead
// of a persistent VM.
package translate

import (
	"github.com/moxy-lang/moxy/internal/config"
	"github.com/moxy-lang/moxy/internal/pipeline"
)

// Option configures a Translate call.
type Option func(*options)

type options struct {
	flags config.Flags
}

// WithAsync enables the Future<T>/await feature flag (spec.md §6).
func WithAsync() Option {
	return func(o *options) { o.flags.Async = true }
}

// WithARC enables reference-counted container lifetime management
// (spec.md §4.4.9).
func WithARC() Option {
	return func(o *options) { o.flags.ARC = true }
}

// WithFlags sets both feature flags at once, e.g. from a loaded
// moxy.yaml project file (config.Project.Flags).
func WithFlags(flags config.Flags) Option {
	return func(o *options) { o.flags = flags }
}

// Translate reads the `.mxy` file at path, runs it through the full
// preprocess/lex/parse/codegen pipeline, and returns the generated C11
// source. Any stage's error is returned as-is (spec.md §7: diagnostics
// carry their own file/line/column; nothing here wraps them further).
func Translate(path string, opts ...Option) (string, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ctx := pipeline.NewContext(path, o.flags)
	if err := pipeline.New().Run(ctx); err != nil {
		return "", err
	}
	return ctx.Output, nil
}
