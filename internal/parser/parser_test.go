package parser_test

import (
	"strings"
	"testing"

	"github.com/skyrlang/skyr/internal/ast"
	"github.com/skyrlang/skyr/internal/parser"
	"github.com/skyrlang/skyr/internal/token"
)

func mustParse(t *testing.T, src string) *ast.Module {
	t.Helper()
	m, errs := parser.Parse("test.skyr", src)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return m
}

func parseErr(t *testing.T, src string) []*parser.Error {
	t.Helper()
	_, errs := parser.Parse("test.skyr", src)
	if len(errs) == 0 {
		t.Fatalf("expected parse errors for %q", src)
	}
	return errs
}

func TestValidStatements(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"assignment", "a = 5\n"},
		{"augmented", "a += 1\nb -= 2\nc *= 3\nd /= 4\ne //= 5\nf %= 6\n"},
		{"tuple_assignment", "a, b = 1, 2\n"},
		{"nested_unpack", "(a, (b, c)) = x\n"},
		{"index_target", "d[k] = v\n"},
		{"field_target", "s.x = 1\n"},
		{"def", "def f(x, y=1, *args, **kwargs):\n    return x\n"},
		{"inline_suite", "def f(x): return x\n"},
		{"if_elif_else", "if a:\n    pass\nelif b:\n    pass\nelse:\n    pass\n"},
		{"for_tuple", "for k, v in items:\n    pass\n"},
		{"load", `load("lib/colors", "red", blue="azure")` + "\n"},
		{"lambda", "f = lambda x, y=2: x + y\n"},
		{"conditional", "x = a if c else b\n"},
		{"comprehension", "xs = [x * 2 for x in ys if x > 0]\n"},
		{"dict_comprehension", "m = {k: v for k, v in pairs}\n"},
		{"slice", "s = xs[1:5:2]\n"},
		{"not_in", "ok = x not in ys\n"},
		{"chained_calls", "y = f(1, k=2)(3)[0].attr\n"},
		{"multiline_list", "xs = [\n    1,\n    2,\n]\n"},
		{"triple_string", "s = \"\"\"a\nb\"\"\"\n"},
		{"semicolons", "a = 1; b = 2\n"},
		{"star_call", "f(*args, **kwargs)\n"},
		{"empty_containers", "a = []\nb = {}\nc = ()\n"},
		{"no_trailing_newline", "a = 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mustParse(t, tc.src)
		})
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"while_rejected", "while True:\n    pass\n", "while loops are not supported"},
		{"bad_load_first_arg", "load(mod, \"a\")\n", "module string"},
		{"load_no_bindings", `load("m")` + "\n", "at least one symbol"},
		{"positional_after_keyword", "f(a=1, 2)\n", "positional argument follows keyword"},
		{"starred_default", "def f(*args=1):\n    pass\n", "starred parameter cannot have a default"},
		{"empty_index", "x[]\n", "unexpected"},
		{"missing_colon", "if x\n    pass\n", "expected"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := parseErr(t, tc.src)
			for _, e := range errs {
				if strings.Contains(e.Msg, tc.want) {
					return
				}
			}
			t.Fatalf("no error containing %q in %v", tc.want, errs)
		})
	}
}

func TestErrorRecovery(t *testing.T) {
	// A bad line must not swallow the rest of the module.
	src := "a = $\nb = 2\nc = ?\nd = 4\n"
	m, errs := parser.Parse("test.skyr", src)
	if len(errs) < 2 {
		t.Fatalf("expected at least 2 errors, got %v", errs)
	}
	ok := 0
	for _, st := range m.Statements {
		if as, isAssign := st.(*ast.AssignStatement); isAssign {
			name := as.LHS.(*ast.Ident).Name
			if name == "b" || name == "d" {
				ok++
			}
		}
	}
	if ok != 2 {
		t.Fatalf("recovered statements: got %d, want 2", ok)
	}
}

func TestPrecedence(t *testing.T) {
	m := mustParse(t, "x = 1 + 2 * 3\n")
	as := m.Statements[0].(*ast.AssignStatement)
	add := as.RHS.(*ast.BinaryExpr)
	if add.Op != token.PLUS {
		t.Fatalf("top op: got %s, want +", add.Op)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok || mul.Op != token.STAR {
		t.Fatalf("right of + should be *, got %T", add.Right)
	}
}

func TestComparisonDoesNotChain(t *testing.T) {
	// a < b < c parses as (a < b) < c, which the evaluator rejects;
	// the grammar must not build a chained comparison node.
	m := mustParse(t, "x = a < b < c\n")
	as := m.Statements[0].(*ast.AssignStatement)
	outer := as.RHS.(*ast.BinaryExpr)
	if _, ok := outer.Left.(*ast.BinaryExpr); !ok {
		t.Fatalf("left should be a comparison, got %T", outer.Left)
	}
}

func TestBigIntLiteral(t *testing.T) {
	m := mustParse(t, "x = 123456789012345678901234567890\n")
	as := m.Statements[0].(*ast.AssignStatement)
	lit := as.RHS.(*ast.IntLit)
	if lit.Big == nil {
		t.Fatal("expected big literal")
	}
	if lit.Big.String() != "123456789012345678901234567890" {
		t.Fatalf("big value: got %s", lit.Big)
	}
}

func TestElifNesting(t *testing.T) {
	m := mustParse(t, "if a:\n    pass\nelif b:\n    pass\nelse:\n    pass\n")
	top := m.Statements[0].(*ast.IfStatement)
	if len(top.False) != 1 {
		t.Fatalf("elif arm: got %d statements, want 1", len(top.False))
	}
	elif, ok := top.False[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("elif should nest an IfStatement, got %T", top.False[0])
	}
	if elif.False == nil {
		t.Fatal("else body missing from elif")
	}
}

func TestLoadBindings(t *testing.T) {
	m := mustParse(t, `load("pkg/util", "helper", h2="helper2")`+"\n")
	ld := m.Statements[0].(*ast.LoadStatement)
	if ld.Module != "pkg/util" {
		t.Fatalf("module: got %q", ld.Module)
	}
	if len(ld.Bindings) != 2 {
		t.Fatalf("bindings: got %d, want 2", len(ld.Bindings))
	}
	if ld.Bindings[0].Local.Name != "helper" || ld.Bindings[0].Orig != "helper" {
		t.Fatalf("binding 0: %+v", ld.Bindings[0])
	}
	if ld.Bindings[1].Local.Name != "h2" || ld.Bindings[1].Orig != "helper2" {
		t.Fatalf("binding 1: %+v", ld.Bindings[1])
	}
}
