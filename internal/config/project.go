package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Project is the skyr.yaml project file. All fields are optional;
// zero values fall back to the engine defaults.
type Project struct {
	// Roots are directories searched, in order, when resolving
	// load() paths. Relative roots are anchored at the project file's
	// directory.
	Roots []string `yaml:"roots"`

	// MaxCallDepth bounds the evaluator call stack.
	MaxCallDepth int `yaml:"max_call_depth"`

	// MaxSteps bounds the number of executed statements per module.
	MaxSteps int64 `yaml:"max_steps"`

	// Ledger is the path of the sqlite reproducibility ledger used by
	// `skyr verify`. Empty selects ".skyr-ledger.db" next to the
	// project file.
	Ledger string `yaml:"ledger"`

	// dir is where the file was found; roots resolve against it.
	dir string
}

// DefaultProject is the configuration used when no skyr.yaml exists:
// a single root at the working directory and default limits.
func DefaultProject() *Project {
	p := &Project{dir: "."}
	p.fill()
	return p
}

// LoadProject reads and validates a project file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := &Project{dir: filepath.Dir(path)}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.MaxCallDepth < 0 {
		return nil, fmt.Errorf("%s: max_call_depth must be >= 0", path)
	}
	if p.MaxSteps < 0 {
		return nil, fmt.Errorf("%s: max_steps must be >= 0", path)
	}
	p.fill()
	return p, nil
}

// FindProject walks from dir upward looking for skyr.yaml. A missing
// file is not an error; the defaults apply.
func FindProject(dir string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(abs, ProjectFileName)
		if _, err := os.Stat(path); err == nil {
			return LoadProject(path)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return DefaultProject(), nil
		}
		abs = parent
	}
}

func (p *Project) fill() {
	if len(p.Roots) == 0 {
		p.Roots = []string{"."}
	}
	for i, r := range p.Roots {
		if !filepath.IsAbs(r) {
			p.Roots[i] = filepath.Join(p.dir, r)
		}
	}
	if p.MaxCallDepth == 0 {
		p.MaxCallDepth = DefaultMaxCallDepth
	}
	if p.MaxSteps == 0 {
		p.MaxSteps = DefaultMaxSteps
	}
	if p.Ledger == "" {
		p.Ledger = filepath.Join(p.dir, ".skyr-ledger.db")
	} else if !filepath.IsAbs(p.Ledger) {
		p.Ledger = filepath.Join(p.dir, p.Ledger)
	}
}

// Dir returns the directory the configuration is anchored at.
func (p *Project) Dir() string { return p.dir }
