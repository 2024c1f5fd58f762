package resolver_test

import (
	"strings"
	"testing"

	"github.com/skyrlang/skyr/internal/ast"
	"github.com/skyrlang/skyr/internal/parser"
	"github.com/skyrlang/skyr/internal/resolver"
)

var universe = map[string]bool{
	"len": true, "print": true, "range": true, "freeze": true,
}

func resolve(t *testing.T, src string) (*resolver.Program, []*resolver.Error) {
	t.Helper()
	m, perrs := parser.Parse("test.skyr", src)
	if len(perrs) > 0 {
		t.Fatalf("parse errors: %v", perrs)
	}
	return resolver.Resolve(m, resolver.Options{
		Universe: func(name string) bool { return universe[name] },
	})
}

func mustResolve(t *testing.T, src string) *resolver.Program {
	t.Helper()
	prog, errs := resolve(t, src)
	if len(errs) > 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}
	return prog
}

func wantError(t *testing.T, src, fragment string) {
	t.Helper()
	_, errs := resolve(t, src)
	for _, e := range errs {
		if strings.Contains(e.Msg, fragment) {
			return
		}
	}
	t.Fatalf("no error containing %q, got %v", fragment, errs)
}

func TestStaticErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"undefined", "x = y\n", `undefined name "y"`},
		{"use_before_assign_toplevel", "x = x + 1\n", `referenced before assignment`},
		{"use_before_assign_local", "def f():\n    a = b\n    b = 1\n", `referenced before assignment`},
		{"return_at_toplevel", "return 1\n", "return outside function"},
		{"break_outside_loop", "break\n", "break outside loop"},
		{"continue_outside_loop", "continue\n", "continue outside loop"},
		{"load_in_function", "def f():\n    load(\"m\", \"a\")\n", "only allowed at module top level"},
		{"reassign_loaded", `load("m", "a")` + "\na = 1\n", `cannot reassign name "a" bound by load()`},
		{"load_rebinds", `load("m", "a")` + "\n" + `load("n", "a")` + "\n", "bound more than once"},
		{"duplicate_param", "def f(x, x):\n    pass\n", `duplicate parameter "x"`},
		{"param_after_kwargs", "def f(**kw, x):\n    pass\n", "may not follow"},
		{"duplicate_kwarg", "def f(a):\n    pass\nf(a=1, a=2)\n", `duplicate keyword argument "a"`},
		{"assign_to_literal", "1 = x\n", "cannot assign"},
		{"augmented_tuple", "a, b = 1, 2\na, b += 1\n", "augmented assignment"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wantError(t, tc.src, tc.want)
		})
	}
}

func TestGlobalSlots(t *testing.T) {
	prog := mustResolve(t, "a = 1\nb = 2\na = 3\n")
	if len(prog.Globals) != 2 {
		t.Fatalf("globals: got %d, want 2", len(prog.Globals))
	}
	if prog.Globals[0].Name != "a" || prog.Globals[1].Name != "b" {
		t.Fatalf("global order: %v", prog.Globals)
	}
	if prog.GlobalIndex["a"] != 0 || prog.GlobalIndex["b"] != 1 {
		t.Fatalf("global index: %v", prog.GlobalIndex)
	}
}

func TestForwardGlobalReference(t *testing.T) {
	// A function body may read a global assigned later in the module.
	mustResolve(t, "def f():\n    return g()\ndef g():\n    return 1\nr = f()\n")
}

func TestLocalSlots(t *testing.T) {
	prog := mustResolve(t, "def f(x, y):\n    z = x + y\n    return z\n")
	var fn *resolver.FuncInfo
	for _, info := range prog.Functions {
		fn = info
	}
	if fn == nil {
		t.Fatal("no function resolved")
	}
	if fn.NumLocals != 3 {
		t.Fatalf("NumLocals: got %d, want 3", fn.NumLocals)
	}
	if len(fn.Params) != 2 || fn.Params[0].Slot != 0 || fn.Params[1].Slot != 1 {
		t.Fatalf("param slots: %+v", fn.Params)
	}
}

func TestClosureCapture(t *testing.T) {
	src := "def outer():\n    n = 1\n    def inner():\n        return n\n    return inner\n"
	prog := mustResolve(t, src)

	var outer, inner *resolver.FuncInfo
	for node, info := range prog.Functions {
		def := node.(*ast.DefStatement)
		switch def.Name.Name {
		case "outer":
			outer = info
		case "inner":
			inner = info
		}
	}
	if len(outer.CellSlots) != 1 {
		t.Fatalf("outer cell slots: got %v, want one boxed local", outer.CellSlots)
	}
	if len(inner.FreeVars) != 1 || inner.FreeVars[0].Name != "n" || inner.FreeVars[0].FromFree {
		t.Fatalf("inner free vars: %+v", inner.FreeVars)
	}
}

func TestTransitiveCapture(t *testing.T) {
	src := "def a():\n    n = 1\n    def b():\n        def c():\n            return n\n        return c\n    return b\n"
	prog := mustResolve(t, src)
	var b, c *resolver.FuncInfo
	for node, info := range prog.Functions {
		switch node.(*ast.DefStatement).Name.Name {
		case "b":
			b = info
		case "c":
			c = info
		}
	}
	// b forwards the cell it does not use itself; c reads from b's
	// free list.
	if len(b.FreeVars) != 1 || b.FreeVars[0].FromFree {
		t.Fatalf("b free vars: %+v", b.FreeVars)
	}
	if len(c.FreeVars) != 1 || !c.FreeVars[0].FromFree {
		t.Fatalf("c free vars: %+v", c.FreeVars)
	}
}

func TestUniverseBinding(t *testing.T) {
	prog := mustResolve(t, "n = len([1, 2])\n")
	found := false
	for id, b := range prog.Bindings {
		if id.Name == "len" {
			found = true
			if b.Scope != resolver.Universal {
				t.Fatalf("len scope: got %s, want universal", b.Scope)
			}
		}
	}
	if !found {
		t.Fatal("len not bound")
	}
}

func TestGlobalShadowsUniverse(t *testing.T) {
	prog := mustResolve(t, "len = 3\nx = len\n")
	for id, b := range prog.Bindings {
		if id.Name == "len" && b.Scope != resolver.Global {
			t.Fatalf("len should resolve global after assignment, got %s", b.Scope)
		}
	}
	_ = prog
}

func TestPriorGlobals(t *testing.T) {
	first := mustResolve(t, "a = 1\n")
	m, perrs := parser.Parse("<stdin>", "b = a + 1\n")
	if len(perrs) > 0 {
		t.Fatalf("parse errors: %v", perrs)
	}
	prog, errs := resolver.Resolve(m, resolver.Options{
		Universe:     func(string) bool { return false },
		PriorGlobals: first.Globals,
	})
	if len(errs) > 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	if prog.GlobalIndex["a"] != 0 {
		t.Fatalf("a slot: got %d, want 0 (carried over)", prog.GlobalIndex["a"])
	}
	if prog.GlobalIndex["b"] != 1 {
		t.Fatalf("b slot: got %d, want 1", prog.GlobalIndex["b"])
	}
}

func TestComprehensionVariable(t *testing.T) {
	// Clause variables bind in the enclosing scope.
	mustResolve(t, "xs = [i * i for i in range(3)]\nlast = i\n")
}

func TestLoadedNotExportedMark(t *testing.T) {
	prog := mustResolve(t, `load("m", "a")`+"\nb = a\n")
	idx := prog.GlobalIndex["a"]
	if !prog.Globals[idx].Loaded {
		t.Fatal("load()-introduced global should carry the Loaded mark")
	}
	if prog.Globals[prog.GlobalIndex["b"]].Loaded {
		t.Fatal("assigned global must not carry the Loaded mark")
	}
}
