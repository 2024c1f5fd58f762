package interp

import (
	"github.com/skyrlang/skyr/internal/resolver"
	"github.com/skyrlang/skyr/internal/token"
)

// ModuleLoader resolves a load() path to an already-frozen module.
// Caching and path resolution live behind this boundary.
type ModuleLoader interface {
	Load(path string) (*FrozenModule, error)
}

// Options configures one evaluation.
type Options struct {
	// Loader serves load() statements; nil makes load() an error.
	Loader ModuleLoader
	// Print receives the output of print(); nil discards it.
	Print func(msg string)
	// EchoExpr, when set, receives the repr of every non-None
	// top-level expression statement. The REPL uses it to echo
	// results.
	EchoExpr func(repr string)
	// MaxCallDepth bounds the call stack; 0 uses DefaultMaxCallDepth.
	MaxCallDepth int
	// MaxSteps bounds executed statements as a defense-in-depth fuel
	// limit; 0 means no limit.
	MaxSteps int64
	// Universe adds or overrides predeclared builtins on top of the
	// standard ones.
	Universe map[string]BuiltinFunc
}

const DefaultMaxCallDepth = 1000

// Eval executes resolved programs against a private mutable heap.
// One Eval instance serves one top-level evaluation (or one REPL
// session); it is not safe for concurrent use, but independent Eval
// instances may run concurrently.
type Eval struct {
	heap *Heap
	opts Options

	universe map[string]BuiltinFunc

	// globals is the module global table, indexed by resolver slot.
	// It persists across REPL increments.
	globals    []ref
	globalInfo []resolver.GlobalInfo
	prog       *resolver.Program
	modulePath string

	frames []*frame

	// temps roots values held by the evaluator across potential
	// collection points, e.g. the iterable of an active for loop.
	temps []ref

	steps int64

	// loadedHeaps pins the frozen heaps of every load()ed dependency
	// and becomes the dep list of this module's own frozen heap.
	loadedHeaps []*FrozenHeap

	// localFrozen receives values frozen mid-evaluation by the
	// freeze() builtin.
	localFrozen *FrozenHeap
}

// frame is one call-stack entry, sized by the callee's resolved
// local-slot count.
type frame struct {
	fn   *resolver.FuncInfo
	prog *resolver.Program
	name string
	pos  token.Pos

	locals []ref
	free   []ref

	// ret carries the return value from a ctrlReturn unwind to the
	// call site.
	ret ref

	// frozenGlobals is set when running a function loaded from a
	// frozen module: global reads go here instead of ev.globals.
	frozenGlobals []FrozenValue
}

// New creates an evaluator with a fresh heap.
func New(opts Options) *Eval {
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	ev := &Eval{heap: NewHeap(), opts: opts}
	ev.universe = standardUniverse()
	for name, fn := range opts.Universe {
		ev.universe[name] = fn
	}
	ev.heap.AddRoot(ev.visitRoots)
	return ev
}

// Heap exposes the evaluation's mutable heap, mainly to builtins and
// tests.
func (ev *Eval) Heap() *Heap { return ev.heap }

// HasUniversal reports whether a name is predeclared; the resolver
// uses it as its Universe predicate.
func (ev *Eval) HasUniversal(name string) bool {
	_, ok := ev.universe[name]
	return ok
}

// GlobalInfo returns the global table descriptors accumulated so
// far, for incremental (REPL) resolution.
func (ev *Eval) GlobalInfo() []resolver.GlobalInfo {
	return ev.globalInfo
}

// Global returns the current value of a module global, if assigned.
func (ev *Eval) Global(name string) (Value, bool) {
	for i, g := range ev.globalInfo {
		if g.Name == name && ev.globals[i] != nilRef {
			return ev.heap.value(ev.globals[i]), true
		}
	}
	return Value{}, false
}

// Repr renders a value the way the repr() builtin does.
func (ev *Eval) Repr(v Value) (string, error) { return ev.repr(v) }

func (ev *Eval) visitRoots(visit func(*ref)) {
	for i := range ev.globals {
		if ev.globals[i] != nilRef {
			visit(&ev.globals[i])
		}
	}
	for _, fr := range ev.frames {
		for i := range fr.locals {
			if fr.locals[i] != nilRef {
				visit(&fr.locals[i])
			}
		}
		for i := range fr.free {
			visit(&fr.free[i])
		}
		if fr.ret != nilRef {
			visit(&fr.ret)
		}
	}
	for i := range ev.temps {
		visit(&ev.temps[i])
	}
}

// pushTemp pins a value for the duration of a loop or similar region
// that spans statement boundaries.
func (ev *Eval) pushTemp(v Value) {
	ev.temps = append(ev.temps, v.r)
}

func (ev *Eval) popTemp() {
	ev.temps = ev.temps[:len(ev.temps)-1]
}

// ExecProgram runs a resolved module's top level against the current
// heap and global table. For a REPL the program must have been
// resolved with PriorGlobals = GlobalInfo() so slots line up.
func (ev *Eval) ExecProgram(prog *resolver.Program) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ee, ok := r.(*EvalError); ok && ee.Kind == HeapInvariantError {
				err = ee
				return
			}
			panic(r)
		}
	}()

	ev.prog = prog
	if prog.Module.Path != "" {
		ev.modulePath = prog.Module.Path
	}
	for len(ev.globals) < len(prog.Globals) {
		ev.globals = append(ev.globals, nilRef)
	}
	ev.globalInfo = prog.Globals

	fr := &frame{
		fn:     prog.TopLevel,
		prog:   prog,
		name:   "<module>",
		locals: make([]ref, prog.TopLevel.NumLocals),
	}
	ev.frames = append(ev.frames, fr)
	defer func() { ev.frames = ev.frames[:len(ev.frames)-1] }()

	_, err = ev.execStmts(fr, prog.TopLevel.Body)
	if err != nil {
		return ev.annotate(err, fr)
	}
	return nil
}

// FreezeModule converts the module's exported globals into a
// FrozenModule backed by a fresh FrozenHeap. load()-introduced names
// are not exported; names starting with "_" are frozen but private
// by convention only.
func (ev *Eval) FreezeModule(path string) (*FrozenModule, error) {
	fh := NewFrozenHeap()
	for _, dep := range ev.loadedHeaps {
		fh.AddDep(dep)
	}
	if ev.localFrozen != nil {
		fh.AddDep(ev.localFrozen)
	}

	fz := newFreezer(ev.heap, fh, ev.globals)
	mod := &FrozenModule{Heap: fh, Path: path}
	for i, g := range ev.globalInfo {
		if g.Loaded {
			continue
		}
		fv, err := fz.freeze(ev.globals[i])
		if err != nil {
			return nil, err
		}
		if fv == nil {
			continue // declared but never assigned
		}
		mod.Names = append(mod.Names, g.Name)
		mod.Values = append(mod.Values, fv)
	}
	return mod, nil
}

// FreezeValue freezes a single value into the evaluation's local
// frozen heap and returns the immutable view. This backs the
// freeze() builtin.
func (ev *Eval) FreezeValue(v Value) (Value, error) {
	if ev.localFrozen == nil {
		ev.localFrozen = NewFrozenHeap()
	}
	fz := newFreezer(ev.heap, ev.localFrozen, ev.globals)
	fv, err := fz.freeze(v.r)
	if err != nil {
		return Value{}, err
	}
	return ev.heap.fromFrozen(fv), nil
}

// safePoint is called between statements. The fuel guard ticks on
// every statement; the collector may only run at statement
// boundaries of the outermost frame, because any deeper boundary is
// mid-expression of some caller, whose intermediate handles are not
// rooted.
func (ev *Eval) safePoint() error {
	ev.steps++
	if ev.opts.MaxSteps > 0 && ev.steps > ev.opts.MaxSteps {
		return overflowErrf("step budget exceeded (%d statements)", ev.opts.MaxSteps)
	}
	if len(ev.frames) == 1 {
		ev.heap.maybeCollect()
	}
	return nil
}

// annotate adds the module frame as the outermost traceback entry as
// the error crosses the evaluation entry point. Inner entries were
// appended by callFrame during unwinding.
func (ev *Eval) annotate(err error, fr *frame) error {
	ee := asEvalError(err)
	ee.Frames = append(ee.Frames, FrameInfo{
		Name: fr.name,
		Path: ev.framePath(fr),
		Pos:  fr.pos,
	})
	return ee
}

func (ev *Eval) framePath(f *frame) string {
	if f.prog != nil && f.prog.Module != nil && f.prog.Module.Path != "" {
		return f.prog.Module.Path
	}
	return ev.modulePath
}

// printLine forwards print() output to the configured sink.
func (ev *Eval) printLine(s string) {
	if ev.opts.Print != nil {
		ev.opts.Print(s)
	}
}
