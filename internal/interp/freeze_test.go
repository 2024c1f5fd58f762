package interp_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/skyrlang/skyr/internal/interp"
)

func TestFreezeSnapshot(t *testing.T) {
	ev := run(t, `
l = [1, [2]]
f = freeze(l)
l.append(3)
x = f[1][0]
`)
	if got := globalRepr(t, ev, "f"); got != "[1, [2]]" {
		t.Fatalf("frozen list = %s, original mutation leaked", got)
	}
	if got := globalRepr(t, ev, "l"); got != "[1, [2], 3]" {
		t.Fatalf("original list = %s", got)
	}
	if got := globalRepr(t, ev, "x"); got != "2" {
		t.Fatalf("read through frozen value = %s", got)
	}
}

func TestFrozenMutationErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"list_append", "f = freeze([1])\nf.append(2)", "cannot append frozen list"},
		{"list_setitem", "f = freeze([1])\nf[0] = 2", "cannot assign to element of frozen list"},
		{"dict_setitem", `f = freeze({"a": 1})` + "\n" + `f["b"] = 2`, "frozen dict"},
		{"dict_pop", `f = freeze({"a": 1})` + "\n" + `f.pop("a")`, "cannot pop from frozen dict"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ee := runErr(t, tc.src)
			if !strings.Contains(ee.Msg, tc.want) {
				t.Fatalf("error = %q, want %q", ee.Msg, tc.want)
			}
		})
	}
}

func TestFreezeCycle(t *testing.T) {
	ev := run(t, `
l = [1]
l.append(l)
f = freeze(l)
x = f[1][1][0]
`)
	if got := globalRepr(t, ev, "f"); got != "[1, [...]]" {
		t.Fatalf("frozen cycle repr = %s", got)
	}
	if got := globalRepr(t, ev, "x"); got != "1" {
		t.Fatalf("walk around frozen cycle = %s", got)
	}
}

func TestFreezeIdempotent(t *testing.T) {
	ev := run(t, `
f = freeze([1, {"a": 2}])
g = freeze(f)
`)
	if a, b := globalRepr(t, ev, "f"), globalRepr(t, ev, "g"); a != b {
		t.Fatalf("refreezing changed the value: %s vs %s", a, b)
	}
}

func TestFreezeClosure(t *testing.T) {
	ev := run(t, `
def make(n):
    def get():
        return n
    return get

g = freeze(make(7))
r = g()
`)
	if got := globalRepr(t, ev, "r"); got != "7" {
		t.Fatalf("frozen closure returned %s", got)
	}
}

func TestFreezeModuleSharing(t *testing.T) {
	ev := run(t, `
a = [1]
b = [a, a]
l = [0]
l.append(l)
`)
	mod, err := ev.FreezeModule("m")
	if err != nil {
		t.Fatalf("freeze module: %v", err)
	}

	bv, ok := mod.Lookup("b")
	if !ok {
		t.Fatal("b not exported")
	}
	fb := bv.(*interp.FrozenList)
	if fb.Elems[0] != fb.Elems[1] {
		t.Fatal("shared sublist split into two frozen copies")
	}

	lv, _ := mod.Lookup("l")
	fl := lv.(*interp.FrozenList)
	if fl.Elems[1] != interp.FrozenValue(fl) {
		t.Fatal("self reference broken in frozen list")
	}
}

// mapLoader serves load() from an in-memory table of frozen modules.
type mapLoader map[string]*interp.FrozenModule

func (m mapLoader) Load(path string) (*interp.FrozenModule, error) {
	mod, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("module %q not found", path)
	}
	return mod, nil
}

func TestLoadFrozenModule(t *testing.T) {
	lib := run(t, `
offset = 5
def shift(x):
    return x + offset

nums = [1, 2, 3]
`)
	mod, err := lib.FreezeModule("lib")
	if err != nil {
		t.Fatalf("freeze module: %v", err)
	}

	ev := interp.New(interp.Options{Loader: mapLoader{"lib": mod}})
	if err := exec(t, ev, `
load("lib", "shift", "nums")
y = shift(10)
z = nums[1]
`); err != nil {
		t.Fatalf("eval with loaded module: %v", err)
	}
	if got := globalRepr(t, ev, "y"); got != "15" {
		t.Fatalf("y = %s", got)
	}
	if got := globalRepr(t, ev, "z"); got != "2" {
		t.Fatalf("z = %s", got)
	}

	// Loaded values are immutable views.
	err = exec(t, ev, "nums.append(4)")
	if err == nil || !strings.Contains(err.Error(), "frozen") {
		t.Fatalf("mutating loaded value: %v", err)
	}
}

func TestLoadMissingExport(t *testing.T) {
	lib := run(t, "x = 1")
	mod, err := lib.FreezeModule("lib")
	if err != nil {
		t.Fatalf("freeze module: %v", err)
	}
	ev := interp.New(interp.Options{Loader: mapLoader{"lib": mod}})
	err = exec(t, ev, `load("lib", "missing")`)
	if err == nil || !strings.Contains(err.Error(), "does not export") {
		t.Fatalf("missing export: %v", err)
	}
}

func TestLoadWithoutLoader(t *testing.T) {
	ev := interp.New(interp.Options{})
	err := exec(t, ev, `load("lib", "x")`)
	if err == nil || !strings.Contains(err.Error(), "no module loader") {
		t.Fatalf("load without loader: %v", err)
	}
}
