package modules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skyrlang/skyr/internal/config"
	"github.com/skyrlang/skyr/internal/interp"
	"github.com/skyrlang/skyr/internal/pipeline"
)

// Options configures a Loader. Roots are searched in order; limits
// apply per loaded module.
type Options struct {
	Roots        []string
	MaxCallDepth int
	MaxSteps     int64
	// Print receives print() output from loaded modules.
	Print func(msg string)
}

// Loader resolves load() paths against the configured roots, runs
// each module through the pipeline once, and serves the frozen result
// from cache afterwards. A module is evaluated at most once per
// Loader regardless of how many modules load it.
type Loader struct {
	opts Options

	// cache maps the canonical file path to its frozen exports.
	cache map[string]*interp.FrozenModule

	// loading is the chain of modules currently being evaluated,
	// outermost first. A path already on the chain is a load cycle.
	loading []string
	active  map[string]bool
}

func NewLoader(opts Options) *Loader {
	if len(opts.Roots) == 0 {
		opts.Roots = []string{"."}
	}
	return &Loader{
		opts:   opts,
		cache:  make(map[string]*interp.FrozenModule),
		active: make(map[string]bool),
	}
}

// Load implements interp.ModuleLoader.
func (l *Loader) Load(path string) (*interp.FrozenModule, error) {
	file, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	if mod, ok := l.cache[file]; ok {
		return mod, nil
	}
	if l.active[file] {
		return nil, fmt.Errorf("load cycle: %s", strings.Join(append(l.loading, file), " -> "))
	}

	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("load(%q): %w", path, err)
	}

	l.loading = append(l.loading, file)
	l.active[file] = true
	defer func() {
		l.loading = l.loading[:len(l.loading)-1]
		delete(l.active, file)
	}()

	ctx := l.Run(file, string(src), true)
	if ctx.Failed() {
		return nil, errors.Join(ctx.Errors...)
	}
	l.cache[file] = ctx.Frozen
	return ctx.Frozen, nil
}

// Run executes one module's source through the full pipeline with
// this loader serving its load() statements. The CLI uses it for the
// entry module; Load uses it for dependencies.
func (l *Loader) Run(path, src string, freeze bool) *pipeline.Context {
	p := pipeline.New(
		pipeline.ParseProcessor{},
		pipeline.ResolveProcessor{Universe: interp.IsUniversal},
		pipeline.EvalProcessor{
			Loader:       l,
			Print:        l.opts.Print,
			MaxCallDepth: l.opts.MaxCallDepth,
			MaxSteps:     l.opts.MaxSteps,
			Freeze:       freeze,
		},
	)
	return p.Run(&pipeline.Context{Path: path, Src: src})
}

// resolve maps a load() path to a file under one of the roots. Paths
// are root-relative; absolute paths and paths escaping a root are
// rejected so evaluation stays hermetic.
func (l *Loader) resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("load(): empty module path")
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("load(%q): absolute paths are not allowed", path)
	}
	rel := path
	if !strings.HasSuffix(rel, config.SourceFileExt) {
		rel += config.SourceFileExt
	}
	if escapes(rel) {
		return "", fmt.Errorf("load(%q): path escapes module roots", path)
	}
	for _, root := range l.opts.Roots {
		file := filepath.Join(root, filepath.FromSlash(rel))
		if st, err := os.Stat(file); err == nil && !st.IsDir() {
			abs, err := filepath.Abs(file)
			if err != nil {
				return "", err
			}
			return filepath.Clean(abs), nil
		}
	}
	return "", fmt.Errorf("load(%q): module not found under roots %v", path, l.opts.Roots)
}

// escapes reports whether a slash-separated relative path reaches
// outside its anchor through ".." segments.
func escapes(rel string) bool {
	depth := 0
	for _, seg := range strings.Split(rel, "/") {
		switch seg {
		case "", ".":
		case "..":
			depth--
			if depth < 0 {
				return true
			}
		default:
			depth++
		}
	}
	return false
}
