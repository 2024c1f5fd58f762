package interp_test

import (
	"testing"

	"github.com/skyrlang/skyr/internal/interp"
	"github.com/skyrlang/skyr/internal/parser"
	"github.com/skyrlang/skyr/internal/resolver"
)

// exec parses, resolves and runs src on ev, mirroring the REPL's
// incremental flow so tests can execute several chunks on one heap.
func exec(t *testing.T, ev *interp.Eval, src string) error {
	t.Helper()
	m, perrs := parser.Parse("test.skyr", src)
	if len(perrs) > 0 {
		t.Fatalf("parse errors: %v", perrs)
	}
	prog, rerrs := resolver.Resolve(m, resolver.Options{
		Universe:     ev.HasUniversal,
		PriorGlobals: ev.GlobalInfo(),
	})
	if len(rerrs) > 0 {
		t.Fatalf("resolve errors: %v", rerrs)
	}
	return ev.ExecProgram(prog)
}

func run(t *testing.T, src string) *interp.Eval {
	t.Helper()
	ev := interp.New(interp.Options{})
	if err := exec(t, ev, src); err != nil {
		t.Fatalf("eval: %v", err)
	}
	return ev
}

// runErr runs src expecting a runtime error.
func runErr(t *testing.T, src string) *interp.EvalError {
	t.Helper()
	ev := interp.New(interp.Options{})
	err := exec(t, ev, src)
	if err == nil {
		t.Fatalf("expected error running %q", src)
	}
	ee, ok := err.(*interp.EvalError)
	if !ok {
		t.Fatalf("error type: got %T (%v)", err, err)
	}
	return ee
}

func globalRepr(t *testing.T, ev *interp.Eval, name string) string {
	t.Helper()
	v, ok := ev.Global(name)
	if !ok {
		t.Fatalf("global %q not assigned", name)
	}
	s, err := ev.Repr(v)
	if err != nil {
		t.Fatalf("repr %q: %v", name, err)
	}
	return s
}
