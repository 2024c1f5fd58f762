package pipeline

import (
	"strings"
	"testing"

	"github.com/skyrlang/skyr/internal/interp"
)

func runSrc(src string, freeze bool) *Context {
	p := New(
		ParseProcessor{},
		ResolveProcessor{Universe: interp.IsUniversal},
		EvalProcessor{Freeze: freeze},
	)
	return p.Run(&Context{Path: "test.skyr", Src: src})
}

func TestPipelineSuccess(t *testing.T) {
	ctx := runSrc("x = 1 + 2\n", true)
	if ctx.Failed() {
		t.Fatalf("errors: %v", ctx.Errors)
	}
	if ctx.Module == nil || ctx.Program == nil || ctx.Eval == nil {
		t.Fatal("stage outputs missing")
	}
	fv, ok := ctx.Frozen.Lookup("x")
	if !ok {
		t.Fatal("x not frozen")
	}
	if n, _ := fv.(interp.FrozenInt).Int64(); n != 3 {
		t.Fatalf("x = %d", n)
	}
}

func TestPipelineCollectsBothStages(t *testing.T) {
	// One parse error and one resolve error in the same source: check
	// mode reports both in one run.
	ctx := runSrc("a = $\nb = undefined_name\n", false)
	if len(ctx.Errors) < 2 {
		t.Fatalf("errors = %v, want parse and resolve diagnostics", ctx.Errors)
	}
	if ctx.Eval != nil {
		t.Fatal("evaluation ran despite front-end errors")
	}
}

func TestPipelineRuntimeError(t *testing.T) {
	ctx := runSrc("x = 1 // 0\n", false)
	if !ctx.Failed() {
		t.Fatal("division by zero not reported")
	}
	if !strings.Contains(ctx.FirstError().Error(), "division by zero") {
		t.Fatalf("error = %v", ctx.FirstError())
	}
}
