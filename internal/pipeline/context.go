package pipeline

import (
	"github.com/skyrlang/skyr/internal/ast"
	"github.com/skyrlang/skyr/internal/interp"
	"github.com/skyrlang/skyr/internal/resolver"
)

// Context carries one module through the pipeline. Each stage fills
// in its output field and appends to Errors.
type Context struct {
	// Path identifies the module in diagnostics and in the frozen
	// module it produces.
	Path string
	// Src is the module source text.
	Src string

	Module  *ast.Module
	Program *resolver.Program
	Frozen  *interp.FrozenModule

	// Eval is the evaluator the evaluate stage ran the module on. It
	// stays alive so a caller can freeze additional values or inspect
	// the heap.
	Eval *interp.Eval

	Errors []error
}

// Failed reports whether any stage recorded an error.
func (ctx *Context) Failed() bool { return len(ctx.Errors) > 0 }

// FirstError returns the earliest recorded error, or nil.
func (ctx *Context) FirstError() error {
	if len(ctx.Errors) == 0 {
		return nil
	}
	return ctx.Errors[0]
}
