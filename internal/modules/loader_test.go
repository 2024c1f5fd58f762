package modules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skyrlang/skyr/internal/interp"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadChain(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.skyr": "load(\"lib/a\", \"double\")\nprint(double(21))\n",
		"lib/a.skyr": `
load("lib/b", "base")

def double(x):
    return x * base
`,
		"lib/b.skyr": "base = 2\n",
	})

	var out []string
	l := NewLoader(Options{Roots: []string{dir}, Print: func(s string) { out = append(out, s) }})
	src, _ := os.ReadFile(filepath.Join(dir, "main.skyr"))
	ctx := l.Run(filepath.Join(dir, "main.skyr"), string(src), false)
	if ctx.Failed() {
		t.Fatalf("run: %v", ctx.Errors)
	}
	if len(out) != 1 || out[0] != "42" {
		t.Fatalf("output = %v", out)
	}
}

func TestModuleEvaluatedOnce(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.skyr": `
load("a", "x")
load("b", "y")
print(x + y)
`,
		"a.skyr": "load(\"shared\", \"n\")\nx = n\n",
		"b.skyr": "load(\"shared\", \"n\")\ny = n\n",
		"shared.skyr": `
print("shared init")
n = 10
`,
	})

	var out []string
	l := NewLoader(Options{Roots: []string{dir}, Print: func(s string) { out = append(out, s) }})
	src, _ := os.ReadFile(filepath.Join(dir, "main.skyr"))
	ctx := l.Run(filepath.Join(dir, "main.skyr"), string(src), false)
	if ctx.Failed() {
		t.Fatalf("run: %v", ctx.Errors)
	}
	inits := 0
	for _, line := range out {
		if line == "shared init" {
			inits++
		}
	}
	if inits != 1 {
		t.Fatalf("shared module evaluated %d times, output %v", inits, out)
	}
	if out[len(out)-1] != "20" {
		t.Fatalf("output = %v", out)
	}
}

func TestLoadCycle(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.skyr": "load(\"b\", \"y\")\nx = 1\n",
		"b.skyr": "load(\"a\", \"x\")\ny = 1\n",
	})
	l := NewLoader(Options{Roots: []string{dir}})
	_, err := l.Load("a")
	if err == nil || !strings.Contains(err.Error(), "load cycle") {
		t.Fatalf("cycle error: %v", err)
	}
}

func TestResolveErrors(t *testing.T) {
	dir := writeTree(t, map[string]string{"ok.skyr": "x = 1\n"})
	l := NewLoader(Options{Roots: []string{dir}})

	cases := []struct {
		path string
		want string
	}{
		{"missing", "not found"},
		{"../outside", "escapes"},
		{"/etc/passwd", "absolute"},
		{"", "empty module path"},
		{"sub/../../up", "escapes"},
	}
	for _, tc := range cases {
		_, err := l.Load(tc.path)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("Load(%q) = %v, want %q", tc.path, err, tc.want)
		}
	}
}

func TestRootSearchOrder(t *testing.T) {
	first := writeTree(t, map[string]string{"m.skyr": "v = \"first\"\n"})
	second := writeTree(t, map[string]string{"m.skyr": "v = \"second\"\n"})

	l := NewLoader(Options{Roots: []string{first, second}})
	mod, err := l.Load("m")
	if err != nil {
		t.Fatal(err)
	}
	fv, ok := mod.Lookup("v")
	if !ok {
		t.Fatal("v not exported")
	}
	s, ok := fv.(interp.FrozenString)
	if !ok {
		t.Fatalf("v froze to %T", fv)
	}
	if string(s) != "first" {
		t.Fatalf("v = %q, want value from the first root", s)
	}
}
