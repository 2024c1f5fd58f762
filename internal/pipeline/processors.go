package pipeline

import (
	"github.com/skyrlang/skyr/internal/interp"
	"github.com/skyrlang/skyr/internal/parser"
	"github.com/skyrlang/skyr/internal/resolver"
)

// ParseProcessor turns Src into Module.
type ParseProcessor struct{}

func (ParseProcessor) Process(ctx *Context) *Context {
	mod, errs := parser.Parse(ctx.Path, ctx.Src)
	ctx.Module = mod
	for _, e := range errs {
		ctx.Errors = append(ctx.Errors, e)
	}
	return ctx
}

// ResolveProcessor turns Module into Program. It runs even after
// parse errors so check mode reports both classes at once; the
// resulting program only executes if the context stayed clean.
type ResolveProcessor struct {
	Universe     func(name string) bool
	PriorGlobals []resolver.GlobalInfo
}

func (rp ResolveProcessor) Process(ctx *Context) *Context {
	if ctx.Module == nil {
		return ctx
	}
	prog, errs := resolver.Resolve(ctx.Module, resolver.Options{
		Universe:     rp.Universe,
		PriorGlobals: rp.PriorGlobals,
	})
	ctx.Program = prog
	for _, e := range errs {
		ctx.Errors = append(ctx.Errors, e)
	}
	return ctx
}

// EvalProcessor executes Program on a fresh evaluator and, when
// Freeze is set, publishes the module's exports as Frozen.
type EvalProcessor struct {
	Loader       interp.ModuleLoader
	Print        func(msg string)
	MaxCallDepth int
	MaxSteps     int64
	Freeze       bool
}

func (ep EvalProcessor) Process(ctx *Context) *Context {
	if ctx.Program == nil || ctx.Failed() {
		return ctx
	}
	ev := interp.New(interp.Options{
		Loader:       ep.Loader,
		Print:        ep.Print,
		MaxCallDepth: ep.MaxCallDepth,
		MaxSteps:     ep.MaxSteps,
	})
	ctx.Eval = ev
	if err := ev.ExecProgram(ctx.Program); err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	if ep.Freeze {
		frozen, err := ev.FreezeModule(ctx.Path)
		if err != nil {
			ctx.Errors = append(ctx.Errors, err)
			return ctx
		}
		ctx.Frozen = frozen
	}
	return ctx
}
