package modules

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

// TestScripts runs each testdata archive as a self-contained module
// tree. Every .skyr file in the archive is written to a temp root and
// main.skyr is executed; a file named "output" gives the expected
// print lines and a file named "error" a fragment of the expected
// failure.
func TestScripts(t *testing.T) {
	archives, err := filepath.Glob("testdata/*.txtar")
	if err != nil {
		t.Fatal(err)
	}
	if len(archives) == 0 {
		t.Fatal("no testdata archives")
	}

	for _, path := range archives {
		name := strings.TrimSuffix(filepath.Base(path), ".txtar")
		t.Run(name, func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatal(err)
			}
			dir := t.TempDir()
			var wantOut, wantErr string
			var entry string
			for _, f := range ar.Files {
				switch f.Name {
				case "output":
					wantOut = string(f.Data)
				case "error":
					wantErr = strings.TrimSpace(string(f.Data))
				default:
					dst := filepath.Join(dir, filepath.FromSlash(f.Name))
					if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
						t.Fatal(err)
					}
					if err := os.WriteFile(dst, f.Data, 0o644); err != nil {
						t.Fatal(err)
					}
					if f.Name == "main.skyr" {
						entry = dst
					}
				}
			}
			if entry == "" {
				t.Fatal("archive has no main.skyr")
			}

			var out strings.Builder
			l := NewLoader(Options{
				Roots: []string{dir},
				Print: func(s string) { out.WriteString(s + "\n") },
			})
			src, err := os.ReadFile(entry)
			if err != nil {
				t.Fatal(err)
			}
			ctx := l.Run(entry, string(src), false)

			if wantErr != "" {
				err := errors.Join(ctx.Errors...)
				if err == nil || !strings.Contains(err.Error(), wantErr) {
					t.Fatalf("error = %v, want fragment %q", err, wantErr)
				}
				return
			}
			if ctx.Failed() {
				t.Fatalf("run: %v", ctx.Errors)
			}
			if got := out.String(); got != wantOut {
				t.Fatalf("output mismatch\n--- got ---\n%s--- want ---\n%s", got, wantOut)
			}
		})
	}
}
