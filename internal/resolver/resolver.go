// Package resolver performs the static binding pass: every name in a parsed
// module is rewritten to a slot-indexed binding (local, cell, free, global or
// universal) before any code runs. It also computes frame sizes so the
// evaluator can preallocate locals, and reports misuse of names as errors
// carrying source positions.
package resolver

import (
	"fmt"

	"github.com/skyrlang/skyr/internal/ast"
	"github.com/skyrlang/skyr/internal/token"
)

// Scope classifies how a resolved name is stored.
type Scope uint8

const (
	Undefined Scope = iota
	Local           // plain local slot in the current frame
	CellLocal       // local slot holding a shared cell box (captured by an inner function)
	Free            // index into the closure's captured cell list
	Global          // module global slot
	Universal       // predeclared builtin, addressed by name
)

func (s Scope) String() string {
	switch s {
	case Local:
		return "local"
	case CellLocal:
		return "cell"
	case Free:
		return "free"
	case Global:
		return "global"
	case Universal:
		return "universal"
	default:
		return "undefined"
	}
}

// Binding is the resolved form of one identifier occurrence.
type Binding struct {
	Scope Scope
	Slot  int    // meaning depends on Scope; unused for Universal
	Name  string // kept for diagnostics and Universal lookup
}

// ParamInfo is one parameter of a resolved function.
type ParamInfo struct {
	Name     string
	Slot     int
	Default  ast.Expression // nil when the parameter has no default
	Star     bool
	StarStar bool
}

// FreeVar tells the evaluator where to fetch one captured cell when a
// closure is constructed: either an enclosing local cell slot, or an entry
// of the enclosing function's own free list (transitive capture).
type FreeVar struct {
	Name     string
	Slot     int
	FromFree bool
}

// FuncInfo is the resolved body of a function (or lambda, or module top
// level). NumLocals is the exact frame size the evaluator preallocates.
type FuncInfo struct {
	Name      string
	Pos       token.Pos
	Params    []ParamInfo
	Body      []ast.Statement // nil for lambdas
	BodyExpr  ast.Expression  // lambda body
	NumLocals int
	CellSlots []int // local slots that must be boxed at frame setup
	FreeVars  []FreeVar
	TopLevel  bool
}

// NumNamed reports how many parameters can be bound by name or position
// (everything before *args/**kwargs).
func (f *FuncInfo) NumNamed() int {
	n := 0
	for _, p := range f.Params {
		if !p.Star && !p.StarStar {
			n++
		}
	}
	return n
}

// GlobalInfo describes one module-level slot.
type GlobalInfo struct {
	Name   string
	Loaded bool // bound by load(), not assignable and not exported
}

// Program is a resolved module, ready for the evaluator.
type Program struct {
	Module      *ast.Module
	TopLevel    *FuncInfo
	Globals     []GlobalInfo
	GlobalIndex map[string]int
	Bindings    map[*ast.Ident]Binding
	Functions   map[ast.Node]*FuncInfo // DefStatement / LambdaExpr / Comprehension owner
}

// Error is a static resolution error.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: resolve error: %s", e.Pos, e.Msg)
}

// Options configures one resolution run. PriorGlobals lets a REPL extend an
// existing module's global table instead of starting fresh.
type Options struct {
	Universe     func(name string) bool
	PriorGlobals []GlobalInfo
}

// Resolve statically resolves a module. All errors are reported before any
// execution; a non-empty error list means the module must not run.
func Resolve(m *ast.Module, opts Options) (*Program, []*Error) {
	r := &resolver{
		prog: &Program{
			Module:      m,
			Globals:     append([]GlobalInfo(nil), opts.PriorGlobals...),
			GlobalIndex: make(map[string]int),
			Bindings:    make(map[*ast.Ident]Binding),
			Functions:   make(map[ast.Node]*FuncInfo),
		},
		universe: opts.Universe,
	}
	for i, g := range r.prog.Globals {
		r.prog.GlobalIndex[g.Name] = i
	}

	top := &FuncInfo{Name: "<module>", Body: m.Statements, TopLevel: true}
	r.prog.TopLevel = top
	r.pushScope(top, true)
	r.collectAssigned(m.Statements)
	r.resolveStmts(m.Statements)
	r.popScope()

	// A local becomes a cell only once some later nested function captures
	// it, so local bindings are committed after the whole walk.
	for _, d := range r.deferred {
		r.prog.Bindings[d.id] = Binding{Scope: d.b.scope, Slot: d.b.slot, Name: d.id.Name}
	}

	return r.prog, r.errors
}

type bindInfo struct {
	scope Scope
	slot  int
}

type scopeBlock struct {
	fn       *FuncInfo
	isModule bool
	bindings map[string]*bindInfo
	freeIdx  map[string]int  // name -> index in fn.FreeVars
	defined  map[string]bool // flow: assigned by some earlier statement
	loopN    int
}

type deferredUse struct {
	id *ast.Ident
	b  *bindInfo
}

type resolver struct {
	prog     *Program
	errors   []*Error
	universe func(string) bool
	scopes   []*scopeBlock
	deferred []deferredUse
}

func (r *resolver) errorf(pos token.Pos, format string, args ...interface{}) {
	r.errors = append(r.errors, &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (r *resolver) pushScope(fn *FuncInfo, isModule bool) {
	r.scopes = append(r.scopes, &scopeBlock{
		fn:       fn,
		isModule: isModule,
		bindings: make(map[string]*bindInfo),
		freeIdx:  make(map[string]int),
		defined:  make(map[string]bool),
	})
}

func (r *resolver) popScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) scope() *scopeBlock {
	return r.scopes[len(r.scopes)-1]
}

// bindName creates (or returns) the binding for an assigned name in the
// current scope.
func (r *resolver) bindName(name string, pos token.Pos, loaded bool) *bindInfo {
	s := r.scope()
	if b, ok := s.bindings[name]; ok {
		return b
	}
	var b *bindInfo
	if s.isModule {
		idx, ok := r.prog.GlobalIndex[name]
		if !ok {
			idx = len(r.prog.Globals)
			r.prog.Globals = append(r.prog.Globals, GlobalInfo{Name: name, Loaded: loaded})
			r.prog.GlobalIndex[name] = idx
		}
		b = &bindInfo{scope: Global, slot: idx}
	} else {
		b = &bindInfo{scope: Local, slot: s.fn.NumLocals}
		s.fn.NumLocals++
	}
	s.bindings[name] = b
	return b
}

// collectAssigned pre-binds every name assigned anywhere in the body, in
// textual order, so slot numbering is deterministic and inner scopes can see
// names bound later in the enclosing body.
func (r *resolver) collectAssigned(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch st := stmt.(type) {
		case *ast.AssignStatement:
			if st.Op == token.ASSIGN {
				r.collectTargets(st.LHS)
			}
			// augmented assignment never introduces a binding on its
			// own; the plain form elsewhere in the body does
		case *ast.DefStatement:
			r.bindName(st.Name.Name, st.Name.Token.Pos, false)
		case *ast.ForStatement:
			r.collectTargets(st.Vars)
			r.collectAssigned(st.Body)
		case *ast.IfStatement:
			r.collectAssigned(st.True)
			r.collectAssigned(st.False)
		case *ast.LoadStatement:
			s := r.scope()
			if !s.isModule {
				continue // reported during the resolve walk
			}
			for _, b := range st.Bindings {
				if _, ok := s.bindings[b.Local.Name]; ok {
					r.errorf(b.Local.Token.Pos, "name %q is bound more than once", b.Local.Name)
					continue
				}
				r.bindName(b.Local.Name, b.Local.Token.Pos, true)
			}
		}
	}
}

func (r *resolver) collectTargets(e ast.Expression) {
	switch t := e.(type) {
	case *ast.Ident:
		r.bindName(t.Name, t.Token.Pos, false)
	case *ast.TupleExpr:
		for _, el := range t.Elems {
			r.collectTargets(el)
		}
	case *ast.ListExpr:
		for _, el := range t.Elems {
			r.collectTargets(el)
		}
	}
	// index/dot targets do not bind names
}

// lookupUse resolves a name read (or the read half of an augmented
// assignment) at the given scope depth.
func (r *resolver) lookupUse(id *ast.Ident) {
	name := id.Name
	n := len(r.scopes)

	// current scope
	cur := r.scopes[n-1]
	if b, ok := cur.bindings[name]; ok {
		if !cur.defined[name] {
			r.errorf(id.Token.Pos, "variable %q referenced before assignment", name)
			// keep going so one mistake yields one error
		}
		r.recordUse(id, cur, b)
		return
	}

	// enclosing function scopes, innermost first
	for i := n - 2; i >= 0; i-- {
		enc := r.scopes[i]
		if enc.isModule {
			break
		}
		if _, ok := enc.bindings[name]; ok {
			idx := r.ensureFree(i+1, name, n-1)
			r.prog.Bindings[id] = Binding{Scope: Free, Slot: idx, Name: name}
			return
		}
	}

	// module scope
	mod := r.scopes[0]
	if b, ok := mod.bindings[name]; ok {
		if len(r.scopes) == 1 && !mod.defined[name] {
			r.errorf(id.Token.Pos, "variable %q referenced before assignment", name)
		}
		r.prog.Bindings[id] = Binding{Scope: Global, Slot: b.slot, Name: name}
		return
	}

	if r.universe != nil && r.universe(name) {
		r.prog.Bindings[id] = Binding{Scope: Universal, Name: name}
		return
	}

	r.errorf(id.Token.Pos, "undefined name %q", name)
	r.prog.Bindings[id] = Binding{Scope: Undefined, Name: name}
}

func (r *resolver) recordUse(id *ast.Ident, s *scopeBlock, b *bindInfo) {
	r.deferred = append(r.deferred, deferredUse{id: id, b: b})
}

// ensureFree threads a captured name from the scope that owns it up to (and
// including) the using scope at depth `upto`, boxing the owning local and
// adding a FreeVar link at every level in between. startDepth is the first
// scope above the owner. Returns the free index in the scope at `upto`.
func (r *resolver) ensureFree(startDepth int, name string, upto int) int {
	// find the owner just below startDepth
	owner := r.scopes[startDepth-1]
	ob := owner.bindings[name]
	if ob.scope == Local {
		ob.scope = CellLocal
		owner.fn.CellSlots = append(owner.fn.CellSlots, ob.slot)
	}

	idx := -1
	for d := startDepth; d <= upto; d++ {
		s := r.scopes[d]
		if existing, ok := s.freeIdx[name]; ok {
			idx = existing
			continue
		}
		var fv FreeVar
		if d == startDepth {
			fv = FreeVar{Name: name, Slot: ob.slot, FromFree: ob.scope == Free}
			if ob.scope == Free {
				fv.Slot = r.scopes[d-1].freeIdx[name]
			}
		} else {
			fv = FreeVar{Name: name, Slot: r.scopes[d-1].freeIdx[name], FromFree: true}
		}
		idx = len(s.fn.FreeVars)
		s.fn.FreeVars = append(s.fn.FreeVars, fv)
		s.freeIdx[name] = idx
		if _, ok := s.bindings[name]; !ok {
			s.bindings[name] = &bindInfo{scope: Free, slot: idx}
			s.defined[name] = true
		}
	}
	return idx
}

// markAssigned resolves an assignment target and records flow state.
func (r *resolver) markAssigned(id *ast.Ident) {
	s := r.scope()
	b, ok := s.bindings[id.Name]
	if !ok {
		// can happen for comprehension variables introduced mid-walk
		b = r.bindName(id.Name, id.Token.Pos, false)
	}
	if s.isModule {
		if gi := r.prog.Globals[b.slot]; gi.Loaded {
			r.errorf(id.Token.Pos, "cannot reassign name %q bound by load()", id.Name)
		}
	}
	s.defined[id.Name] = true
	r.recordUse(id, s, b)
}
