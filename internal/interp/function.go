package interp

import "github.com/skyrlang/skyr/internal/resolver"

// functionPayload is a user-defined function: the resolved body, the
// default values captured at definition time, and the cells captured
// from enclosing frames.
type functionPayload struct {
	name     string
	info     *resolver.FuncInfo
	prog     *resolver.Program
	defaults []ref
	free     []ref
}

func (*functionPayload) kind() Kind { return KindFunction }

func (f *functionPayload) trace(visit func(*ref)) {
	for i := range f.defaults {
		if f.defaults[i] != nilRef {
			visit(&f.defaults[i])
		}
	}
	for i := range f.free {
		visit(&f.free[i])
	}
}

// NamedArg is one keyword argument at a call site.
type NamedArg struct {
	Name  string
	Value Value
}

// BuiltinFunc is the native-function boundary: it receives the
// evaluator (for heap access and nested calls), an optional bound
// receiver, and the call arguments. It must not retain Values past
// its own invocation.
type BuiltinFunc func(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error)

type builtinPayload struct {
	name string
	fn   BuiltinFunc
	// recv is set when the builtin is a method bound to a receiver,
	// e.g. the result of evaluating l.append.
	recv ref
}

func (*builtinPayload) kind() Kind { return KindBuiltin }

func (b *builtinPayload) trace(visit func(*ref)) {
	if b.recv != nilRef {
		visit(&b.recv)
	}
}

// Builtin allocates a native function value.
func (h *Heap) Builtin(name string, fn BuiltinFunc) Value {
	return h.value(h.alloc(&builtinPayload{name: name, fn: fn}))
}

func (h *Heap) boundBuiltin(name string, recv Value, fn BuiltinFunc) Value {
	h.checkOwns(recv)
	return h.value(h.alloc(&builtinPayload{name: name, fn: fn, recv: recv.r}))
}
