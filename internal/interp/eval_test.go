package interp_test

import (
	"strings"
	"testing"

	"github.com/skyrlang/skyr/internal/interp"
)

// TestEval drives the evaluator over source snippets and checks the
// repr of the globals each one leaves behind.
func TestEval(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want map[string]string
	}{
		{"arithmetic", "x = 3 + 4 * 2\ny = (3 + 4) * 2", map[string]string{"x": "11", "y": "14"}},
		{"true_division", "x = 7 / 2", map[string]string{"x": "3.5"}},
		{"floor_division", "a = 7 // 2\nb = -7 // 2", map[string]string{"a": "3", "b": "-4"}},
		{"modulo_floors", "a = -7 % 3\nb = 7 % -3", map[string]string{"a": "2", "b": "-2"}},
		{"big_promotion", "x = 2 ** 100", map[string]string{"x": "1267650600228229401496703205376"}},
		{"big_arith", "x = 9223372036854775807 + 1", map[string]string{"x": "9223372036854775808"}},
		{"unary", "a = -5\nb = not True\nc = ~0", map[string]string{"a": "-5", "b": "False", "c": "-1"}},
		{"bitwise", "a = 6 & 3\nb = 6 | 3\nc = 6 ^ 3\nd = 1 << 4\ne = 16 >> 2",
			map[string]string{"a": "2", "b": "7", "c": "5", "d": "16", "e": "4"}},
		{"float_repr", "a = 1.0\nb = 2.5\nc = 1e100", map[string]string{"a": "1.0", "b": "2.5", "c": "1e+100"}},

		{"string_concat", `x = "foo" + "bar"`, map[string]string{"x": `"foobar"`}},
		{"string_repeat", `x = "ab" * 3`, map[string]string{"x": `"ababab"`}},
		{"string_repeat_negative_bigint", `x = "ab" * (0 - 10 ** 30)`, map[string]string{"x": `""`}},
		{"list_repeat", "x = [1, 2] * 3", map[string]string{"x": "[1, 2, 1, 2, 1, 2]"}},
		{"empty_list_repeat", "x = [] * 9223372036854775807", map[string]string{"x": "[]"}},
		{"string_format", `x = "%d-%s" % (1, "a")`, map[string]string{"x": `"1-a"`}},
		{"string_index", `x = "hello"[1]`, map[string]string{"x": `"e"`}},
		{"string_slice", `x = "hello"[1:4]`, map[string]string{"x": `"ell"`}},
		{"string_methods", `a = "Hi There".upper()` + "\n" + `b = "a,b,c".split(",")` + "\n" + `c = "-".join(["x", "y"])`,
			map[string]string{"a": `"HI THERE"`, "b": `["a", "b", "c"]`, "c": `"x-y"`}},
		{"string_strip", `x = "  pad  ".strip()`, map[string]string{"x": `"pad"`}},

		{"list_literal", "x = [1, 2, 3]", map[string]string{"x": "[1, 2, 3]"}},
		{"list_concat", "x = [1] + [2, 3]", map[string]string{"x": "[1, 2, 3]"}},
		{"list_append", "x = [1]\nx.append(2)\nx.extend([3, 4])", map[string]string{"x": "[1, 2, 3, 4]"}},
		{"list_negative_index", "x = [1, 2, 3][-1]", map[string]string{"x": "3"}},
		{"list_slice_step", "a = [1, 2, 3, 4, 5][::2]\nb = [1, 2, 3][::-1]",
			map[string]string{"a": "[1, 3, 5]", "b": "[3, 2, 1]"}},
		{"list_set_index", "x = [1, 2, 3]\nx[1] = 9", map[string]string{"x": "[1, 9, 3]"}},
		{"list_insert_pop", "x = [1, 3]\nx.insert(1, 2)\np = x.pop()", map[string]string{"x": "[1, 2]", "p": "3"}},
		{"list_augmented", "x = [1]\nx += [2]", map[string]string{"x": "[1, 2]"}},

		{"tuple_repr", "a = (1, 2)\nb = (1,)\nc = ()", map[string]string{"a": "(1, 2)", "b": "(1,)", "c": "()"}},
		{"tuple_unpack", "a, b = 1, 2\na, b = b, a", map[string]string{"a": "2", "b": "1"}},
		{"nested_unpack", "(a, (b, c)) = (1, (2, 3))", map[string]string{"a": "1", "b": "2", "c": "3"}},

		{"dict_order", `x = {"b": 1, "a": 2}`, map[string]string{"x": `{"b": 1, "a": 2}`}},
		{"dict_index", `d = {"k": 7}` + "\nx = d[\"k\"]\nd[\"k2\"] = 8",
			map[string]string{"x": "7", "d": `{"k": 7, "k2": 8}`}},
		{"dict_get", `d = {"k": 1}` + "\n" + `a = d.get("k")` + "\n" + `b = d.get("missing", 9)`,
			map[string]string{"a": "1", "b": "9"}},
		{"dict_methods", `d = {"a": 1, "b": 2}` + "\nks = d.keys()\nvs = d.values()\nit = d.items()",
			map[string]string{"ks": `["a", "b"]`, "vs": "[1, 2]", "it": `[("a", 1), ("b", 2)]`}},
		{"dict_update", `d = {"a": 1}` + "\n" + `d.update({"b": 2, "a": 3})`,
			map[string]string{"d": `{"a": 3, "b": 2}`}},
		{"dict_int_float_keys", "d = {1: \"a\"}\nx = d[1.0]", map[string]string{"x": `"a"`}},
		{"dict_pop", `d = {"a": 1, "b": 2}` + "\n" + `x = d.pop("a")`,
			map[string]string{"x": "1", "d": `{"b": 2}`}},
		{"dict_truth_after_pop", `d = {"a": 1}` + "\n" + `d.pop("a")` + "\nx = bool(d)\ny = len(d)",
			map[string]string{"x": "False", "y": "0"}},

		{"membership", "a = 2 in [1, 2]\nb = 5 not in [1, 2]\nc = \"k\" in {\"k\": 1}\nd = \"ell\" in \"hello\"",
			map[string]string{"a": "True", "b": "True", "c": "True", "d": "True"}},
		{"and_or_operands", "a = 0 or \"x\"\nb = 1 and 2\nc = None or []",
			map[string]string{"a": `"x"`, "b": "2", "c": "[]"}},
		{"conditional_expr", "x = \"yes\" if 1 > 0 else \"no\"", map[string]string{"x": `"yes"`}},
		{"comparisons", "a = 1 < 2\nb = (1, 2) < (1, 3)\nc = \"a\" < \"b\"\nd = [1, 2] == [1, 2]",
			map[string]string{"a": "True", "b": "True", "c": "True", "d": "True"}},
		{"numeric_equality", "a = 1 == 1.0\nb = 1 < 1.5", map[string]string{"a": "True", "b": "True"}},

		{"if_elif_else", "def pick(n):\n    if n < 0:\n        return \"neg\"\n    elif n == 0:\n        return \"zero\"\n    else:\n        return \"pos\"\nx = pick(-1)\ny = pick(0)\nz = pick(5)",
			map[string]string{"x": `"neg"`, "y": `"zero"`, "z": `"pos"`}},
		{"for_accumulate", "total = 0\nfor i in range(5):\n    total += i", map[string]string{"total": "10"}},
		{"for_break_continue", "hits = []\nfor i in range(10):\n    if i % 2 == 0:\n        continue\n    if i > 5:\n        break\n    hits.append(i)",
			map[string]string{"hits": "[1, 3, 5]"}},
		{"for_tuple_vars", "acc = []\nfor k, v in {\"a\": 1, \"b\": 2}.items():\n    acc.append(k + str(v))",
			map[string]string{"acc": `["a1", "b2"]`}},
		{"comprehension", "xs = [i * i for i in range(4)]", map[string]string{"xs": "[0, 1, 4, 9]"}},
		{"comprehension_filter", "xs = [i for i in range(10) if i % 3 == 0]", map[string]string{"xs": "[0, 3, 6, 9]"}},
		{"comprehension_nested", "xs = [(i, j) for i in range(2) for j in range(2)]",
			map[string]string{"xs": "[(0, 0), (0, 1), (1, 0), (1, 1)]"}},
		{"dict_comprehension", "m = {k: k * k for k in range(3)}", map[string]string{"m": "{0: 0, 1: 1, 2: 4}"}},

		{"builtin_len", "a = len([1, 2])\nb = len(\"abc\")\nc = len({1: 2})", map[string]string{"a": "2", "b": "3", "c": "1"}},
		{"builtin_type", "a = type(1)\nb = type([])\nc = type(None)",
			map[string]string{"a": `"int"`, "b": `"list"`, "c": `"NoneType"`}},
		{"builtin_conversions", "a = int(\"42\")\nb = int(3.9)\nc = float(2)\nd = str(3)\ne = int(\"ff\", 16)",
			map[string]string{"a": "42", "b": "3", "c": "2.0", "d": `"3"`, "e": "255"}},
		{"builtin_range", "a = range(3)\nb = range(1, 4)\nc = range(6, 0, -2)",
			map[string]string{"a": "[0, 1, 2]", "b": "[1, 2, 3]", "c": "[6, 4, 2]"}},
		{"builtin_sorted", "a = sorted([3, 1, 2])\nb = sorted([1, 2, 3], reverse=True)\nc = sorted([\"bb\", \"a\"], key=len)",
			map[string]string{"a": "[1, 2, 3]", "b": "[3, 2, 1]", "c": `["a", "bb"]`}},
		{"builtin_minmax", "a = min([3, 1, 2])\nb = max(1, 5, 3)", map[string]string{"a": "1", "b": "5"}},
		{"builtin_any_all", "a = any([0, \"\", 3])\nb = all([1, 2, 0])", map[string]string{"a": "True", "b": "False"}},
		{"builtin_enumerate_zip", "a = enumerate([\"x\", \"y\"])\nb = zip([1, 2], [\"a\", \"b\"])",
			map[string]string{"a": `[(0, "x"), (1, "y")]`, "b": `[(1, "a"), (2, "b")]`}},
		{"builtin_reversed_abs", "a = reversed([1, 2, 3])\nb = abs(-4)", map[string]string{"a": "[3, 2, 1]", "b": "4"}},
		{"builtin_module", `m = module("geo", pi=3, origin=(0, 0))` + "\na = m.pi\nb = repr(m)\nc = m.origin[1]",
			map[string]string{"a": "3", "b": `"<module geo>"`, "c": "0"}},
		{"builtin_struct", "s = struct(x=1, y=2)\na = s.x\nb = hasattr(s, \"y\")\nc = getattr(s, \"z\", 9)",
			map[string]string{"a": "1", "b": "True", "c": "9"}},

		{"def_and_call", "def add(x, y):\n    return x + y\nr = add(2, 3)", map[string]string{"r": "5"}},
		{"defaults", "def f(x, y=10):\n    return x + y\na = f(1)\nb = f(1, 2)", map[string]string{"a": "11", "b": "3"}},
		{"keyword_args", "def f(a, b, c):\n    return (a, b, c)\nr = f(1, c=3, b=2)", map[string]string{"r": "(1, 2, 3)"}},
		{"star_args", "def f(*args):\n    return args\nr = f(1, 2, 3)", map[string]string{"r": "(1, 2, 3)"}},
		{"kwargs", "def f(**kw):\n    return kw\nr = f(a=1, b=2)", map[string]string{"r": `{"a": 1, "b": 2}`}},
		{"splat_call", "def f(a, b, c):\n    return a + b + c\nargs = [1, 2]\nr = f(*args, c=3)", map[string]string{"r": "6"}},
		{"kwargs_splat", "def f(a, b):\n    return a - b\nd = {\"b\": 1}\nr = f(5, **d)", map[string]string{"r": "4"}},
		{"recursion", "def fib(n):\n    if n < 2:\n        return n\n    return fib(n - 1) + fib(n - 2)\nr = fib(12)",
			map[string]string{"r": "144"}},
		{"closure_counter", "def counter():\n    n = [0]\n    def bump():\n        n[0] += 1\n        return n[0]\n    return bump\nc = counter()\nc()\nc()\nr = c()",
			map[string]string{"r": "3"}},
		{"cell_capture", "def outer():\n    x = 1\n    def set(v):\n        pass\n    def get():\n        return x\n    return get()\nr = outer()",
			map[string]string{"r": "1"}},
		{"lambda", "f = lambda x, y=1: x * y\na = f(3)\nb = f(3, 4)", map[string]string{"a": "3", "b": "12"}},
		{"function_as_value", "def twice(f, x):\n    return f(f(x))\nr = twice(lambda n: n + 1, 0)", map[string]string{"r": "2"}},
		{"bare_return", "def f():\n    return\nr = f()", map[string]string{"r": "None"}},

		{"cyclic_repr", "l = [1]\nl.append(l)\nr = repr(l)", map[string]string{"r": `"[1, [...]]"`}},
		{"str_vs_repr", `a = str("x")` + "\n" + `b = repr("x")`, map[string]string{"a": `"x"`, "b": `"\"x\""`}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev := run(t, tc.src)
			for name, want := range tc.want {
				if got := globalRepr(t, ev, name); got != want {
					t.Errorf("%s = %s, want %s", name, got, want)
				}
			}
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind interp.ErrKind
		want string
	}{
		{"bad_operands", `x = 1 + "a"`, interp.TypeError, "unsupported operand"},
		{"division_by_zero", "x = 1 / 0", interp.ValueError, "division by zero"},
		{"floor_div_zero", "x = 1 // 0", interp.ValueError, "floor division by zero"},
		{"index_range", "x = [1, 2][5]", interp.ValueError, "out of range"},
		{"missing_key", `x = {}["k"]`, interp.ValueError, ""},
		{"unhashable_key", "d = {[1]: 2}", interp.TypeError, "unhashable"},
		{"call_non_callable", "x = 3(1)", interp.TypeError, "not callable"},
		{"missing_attr", "x = [].nope", interp.TypeError, "no attribute"},
		{"too_many_args", "def f(x):\n    return x\nf(1, 2)", interp.TypeError, ""},
		{"missing_arg", "def f(x, y):\n    return x\nf(1)", interp.TypeError, `"y"`},
		{"unexpected_kwarg", "def f(x):\n    return x\nf(x=1, z=2)", interp.TypeError, `"z"`},
		{"duplicate_arg", "def f(x):\n    return x\nf(1, x=2)", interp.TypeError, `"x"`},
		{"fail_builtin", `fail("boom")`, interp.ValueError, "boom"},
		{"string_immutable", `s = "ab"` + "\ns[0] = \"c\"", interp.TypeError, ""},
		{"tuple_immutable", "t = (1, 2)\nt[0] = 3", interp.TypeError, ""},
		{"string_repeat_overflow", `x = "abcd" * 4611686018427387904`, interp.ValueError, "too long"},
		{"string_repeat_bigint", `x = "a" * 10 ** 30`, interp.ValueError, "too long"},
		{"list_repeat_overflow", "x = [1, 2] * 4611686018427387904", interp.ValueError, "too long"},
		{"tuple_repeat_overflow", "x = (1,) * 9223372036854775807", interp.ValueError, "too long"},
		{"range_too_long", "x = range(100000000)", interp.ValueError, "too long"},
		{"range_too_long_negative", "x = range(0, -100000000, -1)", interp.ValueError, "too long"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ee := runErr(t, tc.src)
			if ee.Kind != tc.kind {
				t.Fatalf("kind: got %s, want %s (%v)", ee.Kind, tc.kind, ee)
			}
			if tc.want != "" && !strings.Contains(ee.Msg, tc.want) {
				t.Fatalf("message %q does not contain %q", ee.Msg, tc.want)
			}
		})
	}
}

func TestCallDepthGuard(t *testing.T) {
	ev := interp.New(interp.Options{MaxCallDepth: 30})
	err := exec(t, ev, "def f(n):\n    return f(n + 1)\nf(0)")
	ee, ok := err.(*interp.EvalError)
	if !ok || ee.Kind != interp.StackOverflowError {
		t.Fatalf("got %v, want stack overflow", err)
	}
}

func TestStepBudget(t *testing.T) {
	ev := interp.New(interp.Options{MaxSteps: 100})
	err := exec(t, ev, "x = 0\nfor i in range(100000):\n    x += 1")
	ee, ok := err.(*interp.EvalError)
	if !ok || ee.Kind != interp.StackOverflowError {
		t.Fatalf("got %v, want step budget error", err)
	}
}

func TestTraceback(t *testing.T) {
	src := "def inner():\n    return 1 // 0\ndef outer():\n    return inner()\nouter()\n"
	ee := runErr(t, src)
	if len(ee.Frames) < 3 {
		t.Fatalf("frames: got %d, want >= 3 (%v)", len(ee.Frames), ee.Frames)
	}
	tb := ee.Traceback()
	for _, name := range []string{"inner", "outer", "<module>"} {
		if !strings.Contains(tb, name) {
			t.Errorf("traceback missing %q:\n%s", name, tb)
		}
	}
}

func TestPrintSink(t *testing.T) {
	var lines []string
	ev := interp.New(interp.Options{Print: func(msg string) { lines = append(lines, msg) }})
	if err := exec(t, ev, `print("a", 1, sep="-")`+"\nprint([1, 2])"); err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[0] != "a-1" || lines[1] != "[1, 2]" {
		t.Fatalf("print output: %q", lines)
	}
}

func TestIterationInvalidation(t *testing.T) {
	ee := runErr(t, "xs = [1, 2, 3]\nfor x in xs:\n    xs.append(x)")
	if ee.Kind != interp.ValueError && ee.Kind != interp.TypeError {
		t.Fatalf("kind: %s", ee.Kind)
	}
	if !strings.Contains(ee.Msg, "during iteration") {
		t.Fatalf("message: %q", ee.Msg)
	}
}

func TestReplIncrements(t *testing.T) {
	ev := interp.New(interp.Options{})
	if err := exec(t, ev, "a = 1"); err != nil {
		t.Fatal(err)
	}
	if err := exec(t, ev, "b = a + 1"); err != nil {
		t.Fatal(err)
	}
	if err := exec(t, ev, "def f():\n    return a + b"); err != nil {
		t.Fatal(err)
	}
	if err := exec(t, ev, "c = f()"); err != nil {
		t.Fatal(err)
	}
	if got := globalRepr(t, ev, "c"); got != "3" {
		t.Fatalf("c = %s, want 3", got)
	}
}
