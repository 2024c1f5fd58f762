package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/skyrlang/skyr/internal/config"
	"github.com/skyrlang/skyr/internal/interp"
	"github.com/skyrlang/skyr/internal/modules"
	"github.com/skyrlang/skyr/internal/parser"
	"github.com/skyrlang/skyr/internal/resolver"
)

func handleRepl(proj *config.Project, args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "usage: skyr repl")
		return 2
	}

	tty := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if tty {
		fmt.Println("skyr repl (ctrl-D to exit)")
	}

	loader := modules.NewLoader(modules.Options{
		Roots:        proj.Roots,
		MaxCallDepth: proj.MaxCallDepth,
		MaxSteps:     proj.MaxSteps,
		Print:        func(msg string) { fmt.Println(msg) },
	})

	// One evaluator for the whole session: globals persist across
	// inputs, and each input resolves against the table built so far.
	ev := interp.New(interp.Options{
		Loader:       loader,
		Print:        func(msg string) { fmt.Println(msg) },
		EchoExpr:     func(repr string) { fmt.Println(repr) },
		MaxCallDepth: proj.MaxCallDepth,
		MaxSteps:     proj.MaxSteps,
	})

	in := bufio.NewScanner(os.Stdin)
	for {
		src, eof := readInput(in, tty)
		if eof && src == "" {
			if tty {
				fmt.Println()
			}
			return 0
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		replExec(ev, src)
		if eof {
			return 0
		}
	}
}

// readInput reads one logical input: a single line, or a block when
// the first line opens a suite (ends with ":"). Blocks end at the
// first blank line, matching how the grammar closes an indented body.
func readInput(in *bufio.Scanner, tty bool) (src string, eof bool) {
	if tty {
		fmt.Print(">>> ")
	}
	if !in.Scan() {
		return "", true
	}
	line := in.Text()
	if !strings.HasSuffix(strings.TrimSpace(line), ":") {
		return line + "\n", false
	}
	var b strings.Builder
	b.WriteString(line)
	b.WriteByte('\n')
	for {
		if tty {
			fmt.Print("... ")
		}
		if !in.Scan() {
			return b.String(), true
		}
		next := in.Text()
		if strings.TrimSpace(next) == "" {
			return b.String(), false
		}
		b.WriteString(next)
		b.WriteByte('\n')
	}
}

func replExec(ev *interp.Eval, src string) {
	mod, perrs := parser.Parse("<stdin>", src)
	if len(perrs) > 0 {
		for _, e := range perrs {
			fmt.Fprintln(os.Stderr, e)
		}
		return
	}
	prog, rerrs := resolver.Resolve(mod, resolver.Options{
		Universe:     ev.HasUniversal,
		PriorGlobals: ev.GlobalInfo(),
	})
	if len(rerrs) > 0 {
		for _, e := range rerrs {
			fmt.Fprintln(os.Stderr, e)
		}
		return
	}
	if err := ev.ExecProgram(prog); err != nil {
		var ee *interp.EvalError
		if errors.As(err, &ee) && len(ee.Frames) > 0 {
			fmt.Fprintln(os.Stderr, ee.Traceback())
			return
		}
		fmt.Fprintln(os.Stderr, err)
	}
}
