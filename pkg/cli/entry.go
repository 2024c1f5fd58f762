package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skyrlang/skyr/internal/config"
	"github.com/skyrlang/skyr/internal/fingerprint"
	"github.com/skyrlang/skyr/internal/interp"
	"github.com/skyrlang/skyr/internal/modules"
	"github.com/skyrlang/skyr/internal/pipeline"
)

const usage = `skyr - hermetic, deterministic configuration language

Usage:
  skyr run FILE       evaluate a module and print its output
  skyr check FILE     parse and resolve only, report all diagnostics
  skyr repl           interactive session
  skyr verify FILE    evaluate and compare against the fingerprint ledger
  skyr help           show this message

Options:
  --config PATH       project file (default: nearest skyr.yaml)
`

// Run is the CLI entry point. It returns the process exit code.
func Run(args []string) int {
	var configPath string
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "skyr: --config requires a path")
				return 2
			}
			i++
			configPath = args[i]
		case strings.HasPrefix(args[i], "--config="):
			configPath = strings.TrimPrefix(args[i], "--config=")
		default:
			rest = append(rest, args[i])
		}
	}

	if len(rest) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	proj, err := loadProject(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "skyr: %v\n", err)
		return 2
	}

	switch rest[0] {
	case "run":
		return handleRun(proj, rest[1:])
	case "check":
		return handleCheck(proj, rest[1:])
	case "repl":
		return handleRepl(proj, rest[1:])
	case "verify":
		return handleVerify(proj, rest[1:])
	case "help", "-help", "--help":
		fmt.Print(usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "skyr: unknown command %q\n", rest[0])
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
}

func loadProject(configPath string) (*config.Project, error) {
	if configPath != "" {
		return config.LoadProject(configPath)
	}
	return config.FindProject(".")
}

func newLoader(proj *config.Project, entryDir string) *modules.Loader {
	roots := proj.Roots
	if entryDir != "" {
		// The entry module's own directory is always a root, so a
		// script can load() its siblings without project setup.
		roots = append([]string{entryDir}, roots...)
	}
	return modules.NewLoader(modules.Options{
		Roots:        roots,
		MaxCallDepth: proj.MaxCallDepth,
		MaxSteps:     proj.MaxSteps,
		Print:        func(msg string) { fmt.Println(msg) },
	})
}

func handleRun(proj *config.Project, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: skyr run FILE")
		return 2
	}
	file := args[0]
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "skyr: %v\n", err)
		return 1
	}
	loader := newLoader(proj, filepath.Dir(file))
	ctx := loader.Run(file, string(src), false)
	if ctx.Failed() {
		reportErrors(ctx)
		return 1
	}
	return 0
}

func handleCheck(proj *config.Project, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: skyr check FILE [FILE...]")
		return 2
	}
	code := 0
	for _, file := range args {
		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skyr: %v\n", err)
			code = 1
			continue
		}
		p := pipeline.New(
			pipeline.ParseProcessor{},
			pipeline.ResolveProcessor{Universe: interp.IsUniversal},
		)
		ctx := p.Run(&pipeline.Context{Path: file, Src: string(src)})
		if ctx.Failed() {
			reportErrors(ctx)
			code = 1
		}
	}
	return code
}

func handleVerify(proj *config.Project, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: skyr verify FILE")
		return 2
	}
	file := args[0]
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "skyr: %v\n", err)
		return 1
	}

	loader := newLoader(proj, filepath.Dir(file))
	ctx := loader.Run(file, string(src), true)
	if ctx.Failed() {
		reportErrors(ctx)
		return 1
	}

	srcHash := fingerprint.Source(string(src))
	fp := fingerprint.Module(ctx.Frozen)

	store, err := fingerprint.Open(proj.Ledger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "skyr: ledger: %v\n", err)
		return 1
	}
	defer store.Close()

	prev, ok, err := store.Get(file, srcHash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "skyr: ledger: %v\n", err)
		return 1
	}
	if !ok {
		if err := store.Put(file, srcHash, fp, ctx.Frozen.Heap.ID.String()); err != nil {
			fmt.Fprintf(os.Stderr, "skyr: ledger: %v\n", err)
			return 1
		}
		fmt.Printf("%s: recorded %s\n", file, short(fp))
		return 0
	}
	if prev != fp {
		fmt.Fprintf(os.Stderr, "%s: FINGERPRINT MISMATCH\n  recorded: %s\n  got:      %s\n", file, prev, fp)
		return 1
	}
	fmt.Printf("%s: ok %s\n", file, short(fp))
	return 0
}

func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

// reportErrors renders every diagnostic, with a traceback when the
// error carries one.
func reportErrors(ctx *pipeline.Context) {
	for _, err := range ctx.Errors {
		var ee *interp.EvalError
		if errors.As(err, &ee) && len(ee.Frames) > 0 {
			fmt.Fprintln(os.Stderr, ee.Traceback())
			continue
		}
		fmt.Fprintf(os.Stderr, "%s\n", err)
	}
}
