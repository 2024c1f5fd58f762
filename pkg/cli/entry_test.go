package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/skyrlang/skyr/internal/fingerprint"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "skyr.yaml", "ledger: ledger.db\n")
	good := writeFile(t, dir, "good.skyr", "x = [i * i for i in range(4)]\nprint(x)\n")
	bad := writeFile(t, dir, "bad.skyr", "x = 1 // 0\n")

	if code := Run([]string{"--config", cfg, "run", good}); code != 0 {
		t.Fatalf("run good = %d", code)
	}
	if code := Run([]string{"--config", cfg, "run", bad}); code != 1 {
		t.Fatalf("run bad = %d", code)
	}
	if code := Run([]string{"--config", cfg, "run", filepath.Join(dir, "missing.skyr")}); code != 1 {
		t.Fatalf("run missing = %d", code)
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "skyr.yaml", "")
	clean := writeFile(t, dir, "clean.skyr", "def f(x):\n    return x + 1\n")
	broken := writeFile(t, dir, "broken.skyr", "y = undefined_name\n")

	if code := Run([]string{"--config", cfg, "check", clean}); code != 0 {
		t.Fatalf("check clean = %d", code)
	}
	if code := Run([]string{"--config", cfg, "check", clean, broken}); code != 1 {
		t.Fatalf("check mixed = %d", code)
	}
}

func TestVerifyCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "skyr.yaml", "ledger: ledger.db\n")
	mod := writeFile(t, dir, "m.skyr", "vals = sorted([3, 1, 2])\n")

	// First run records, second run matches.
	if code := Run([]string{"--config", cfg, "verify", mod}); code != 0 {
		t.Fatalf("verify record = %d", code)
	}
	if code := Run([]string{"--config", cfg, "verify", mod}); code != 0 {
		t.Fatalf("verify recheck = %d", code)
	}

	// Poison the ledger entry; the next verify must flag a mismatch.
	store, err := fingerprint.Open(filepath.Join(dir, "ledger.db"))
	if err != nil {
		t.Fatal(err)
	}
	src, _ := os.ReadFile(mod)
	if err := store.Put(mod, fingerprint.Source(string(src)), "bogus", "id"); err != nil {
		t.Fatal(err)
	}
	store.Close()

	if code := Run([]string{"--config", cfg, "verify", mod}); code != 1 {
		t.Fatalf("verify mismatch = %d", code)
	}
}

func TestUsageErrors(t *testing.T) {
	if code := Run(nil); code != 2 {
		t.Fatalf("no args = %d", code)
	}
	if code := Run([]string{"frobnicate"}); code != 2 {
		t.Fatalf("unknown command = %d", code)
	}
	if code := Run([]string{"--config"}); code != 2 {
		t.Fatalf("dangling --config = %d", code)
	}
	if code := Run([]string{"help"}); code != 0 {
		t.Fatalf("help = %d", code)
	}
}
