package fingerprint

import (
	"path/filepath"
	"testing"

	"github.com/skyrlang/skyr/internal/interp"
	"github.com/skyrlang/skyr/internal/parser"
	"github.com/skyrlang/skyr/internal/resolver"
)

func freezeSource(t *testing.T, src string) *interp.FrozenModule {
	t.Helper()
	m, perrs := parser.Parse("test.skyr", src)
	if len(perrs) > 0 {
		t.Fatalf("parse: %v", perrs)
	}
	ev := interp.New(interp.Options{})
	prog, rerrs := resolver.Resolve(m, resolver.Options{Universe: ev.HasUniversal})
	if len(rerrs) > 0 {
		t.Fatalf("resolve: %v", rerrs)
	}
	if err := ev.ExecProgram(prog); err != nil {
		t.Fatalf("eval: %v", err)
	}
	mod, err := ev.FreezeModule("test")
	if err != nil {
		t.Fatalf("freeze: %v", err)
	}
	return mod
}

const sample = `
nums = [3, 1, 2]
table = {"a": sorted(nums), "b": 2.5}
pair = (True, None)
`

func TestModuleDeterministic(t *testing.T) {
	a := Module(freezeSource(t, sample))
	b := Module(freezeSource(t, sample))
	if a != b {
		t.Fatalf("same source fingerprinted differently:\n%s\n%s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("fingerprint length %d, want sha256 hex", len(a))
	}
}

func TestModuleSensitiveToValues(t *testing.T) {
	a := Module(freezeSource(t, "x = 1"))
	b := Module(freezeSource(t, "x = 2"))
	c := Module(freezeSource(t, "y = 1"))
	if a == b {
		t.Fatal("different values share a fingerprint")
	}
	if a == c {
		t.Fatal("different export names share a fingerprint")
	}
}

func TestModuleDistinguishesFloatAndInt(t *testing.T) {
	a := Module(freezeSource(t, "x = 1"))
	b := Module(freezeSource(t, "x = 1.0"))
	if a == b {
		t.Fatal("int and float exports share a fingerprint")
	}
}

func TestModuleCycleStable(t *testing.T) {
	src := "l = [1]\nl.append(l)\n"
	a := Module(freezeSource(t, src))
	b := Module(freezeSource(t, src))
	if a != b {
		t.Fatal("cyclic export fingerprint not stable")
	}
}

func TestSource(t *testing.T) {
	a := Source("x = 1\n")
	if a != Source("x = 1\n") {
		t.Fatal("source hash not deterministic")
	}
	if a == Source("x = 2\n") {
		t.Fatal("different sources share a hash")
	}
}

func TestStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, ok, err := s.Get("m", "h"); err != nil || ok {
		t.Fatalf("empty store Get = ok %v err %v", ok, err)
	}
	if err := s.Put("m", "h", "fp1", "id1"); err != nil {
		t.Fatal(err)
	}
	fp, ok, err := s.Get("m", "h")
	if err != nil || !ok || fp != "fp1" {
		t.Fatalf("Get = %q ok %v err %v", fp, ok, err)
	}

	// Upsert replaces the recorded fingerprint.
	if err := s.Put("m", "h", "fp2", "id2"); err != nil {
		t.Fatal(err)
	}
	fp, ok, _ = s.Get("m", "h")
	if !ok || fp != "fp2" {
		t.Fatalf("after upsert Get = %q ok %v", fp, ok)
	}

	// A different source hash is a separate row.
	if _, ok, _ := s.Get("m", "other"); ok {
		t.Fatal("unexpected hit for a different source hash")
	}
}
