package interp

import (
	"github.com/skyrlang/skyr/internal/ast"
	"github.com/skyrlang/skyr/internal/resolver"
	"github.com/skyrlang/skyr/internal/token"
)

// ctrl is the structured non-local-exit signal statements return.
// Return/break/continue unwind through the statement-execution
// contract, not through Go panics.
type ctrl int

const (
	ctrlNext ctrl = iota
	ctrlBreak
	ctrlContinue
	ctrlReturn
)

// Internal iteration signals for mapping ctrl through the iterate
// callback boundary.
var (
	errLoopBreak  = &EvalError{Kind: ValueError, Msg: "break"}
	errLoopReturn = &EvalError{Kind: ValueError, Msg: "return"}
)

func (ev *Eval) execStmts(fr *frame, stmts []ast.Statement) (ctrl, error) {
	for _, st := range stmts {
		c, err := ev.execStmt(fr, st)
		if err != nil {
			return ctrlNext, err
		}
		if c != ctrlNext {
			return c, nil
		}
	}
	return ctrlNext, nil
}

func (ev *Eval) execStmt(fr *frame, st ast.Statement) (ctrl, error) {
	// Statement boundaries are the collector's safe points: every
	// live value is reachable from a registered root here.
	if err := ev.safePoint(); err != nil {
		return ctrlNext, err
	}
	fr.pos = st.GetToken().Pos

	switch st := st.(type) {
	case *ast.ExprStatement:
		v, err := ev.eval(fr, st.Expr)
		if err != nil {
			return ctrlNext, err
		}
		if ev.opts.EchoExpr != nil && len(ev.frames) == 1 && v.Kind() != KindNone {
			s, err := ev.repr(v)
			if err != nil {
				return ctrlNext, err
			}
			ev.opts.EchoExpr(s)
		}
		return ctrlNext, nil

	case *ast.AssignStatement:
		if st.Op == token.ASSIGN {
			v, err := ev.eval(fr, st.RHS)
			if err != nil {
				return ctrlNext, err
			}
			return ctrlNext, ev.assign(fr, st.LHS, v)
		}
		return ctrlNext, ev.execAugmented(fr, st)

	case *ast.DefStatement:
		fn, err := ev.makeFunction(fr, ev.funcInfo(fr, st), st.Name.Name, st.Params)
		if err != nil {
			return ctrlNext, err
		}
		return ctrlNext, ev.assign(fr, st.Name, fn)

	case *ast.IfStatement:
		cond, err := ev.eval(fr, st.Cond)
		if err != nil {
			return ctrlNext, err
		}
		if cond.Truth() {
			return ev.execStmts(fr, st.True)
		}
		return ev.execStmts(fr, st.False)

	case *ast.ForStatement:
		return ev.execFor(fr, st)

	case *ast.ReturnStatement:
		if st.Result == nil {
			fr.ret = noneRef
			return ctrlReturn, nil
		}
		v, err := ev.eval(fr, st.Result)
		if err != nil {
			return ctrlNext, err
		}
		fr.ret = v.r
		return ctrlReturn, nil

	case *ast.BreakStatement:
		return ctrlBreak, nil

	case *ast.ContinueStatement:
		return ctrlContinue, nil

	case *ast.PassStatement:
		return ctrlNext, nil

	case *ast.LoadStatement:
		return ctrlNext, ev.execLoad(fr, st)
	}

	return ctrlNext, heapErrf("unknown statement %T", st)
}

// execAugmented handles `x += e` and friends: the target is read
// once, combined, and written back.
func (ev *Eval) execAugmented(fr *frame, st *ast.AssignStatement) error {
	op, ok := augmentedOp(st.Op)
	if !ok {
		return heapErrf("unknown augmented assignment %s", st.Op)
	}

	switch lhs := st.LHS.(type) {
	case *ast.Ident:
		old, err := ev.eval(fr, lhs)
		if err != nil {
			return err
		}
		rhs, err := ev.eval(fr, st.RHS)
		if err != nil {
			return err
		}
		v, err := ev.augBinary(op, old, rhs)
		if err != nil {
			return err
		}
		return ev.assign(fr, lhs, v)

	case *ast.IndexExpr:
		obj, err := ev.eval(fr, lhs.X)
		if err != nil {
			return err
		}
		key, err := ev.eval(fr, lhs.Index)
		if err != nil {
			return err
		}
		old, err := ev.index(obj, key)
		if err != nil {
			return err
		}
		rhs, err := ev.eval(fr, st.RHS)
		if err != nil {
			return err
		}
		v, err := ev.augBinary(op, old, rhs)
		if err != nil {
			return err
		}
		return ev.setIndex(obj, key, v)
	}

	return typeErrf("cannot use augmented assignment on this expression")
}

// augBinary is binary() plus the one augmented special case: l += x
// extends the list in place instead of concatenating a copy.
func (ev *Eval) augBinary(op token.Type, old, rhs Value) (Value, error) {
	if op == token.PLUS && old.Kind() == KindList && !old.Frozen() {
		p, err := old.mutList("extend")
		if err != nil {
			return Value{}, err
		}
		elems, err := ev.collect(rhs)
		if err != nil {
			return Value{}, err
		}
		for _, e := range elems {
			old.h.checkOwns(e)
			p.elems = append(p.elems, e.r)
		}
		return old, nil
	}
	return ev.binary(op, old, rhs)
}

func augmentedOp(t token.Type) (token.Type, bool) {
	switch t {
	case token.PLUS_ASSIGN:
		return token.PLUS, true
	case token.MINUS_ASSIGN:
		return token.MINUS, true
	case token.STAR_ASSIGN:
		return token.STAR, true
	case token.SLASH_ASSIGN:
		return token.SLASH, true
	case token.SLASH2_ASSIGN:
		return token.SLASH_SLASH, true
	case token.PERCENT_ASSIGN:
		return token.PERCENT, true
	}
	return token.ILLEGAL, false
}

func (ev *Eval) execFor(fr *frame, st *ast.ForStatement) (ctrl, error) {
	it, err := ev.eval(fr, st.X)
	if err != nil {
		return ctrlNext, err
	}
	// The iterable is pinned for the whole loop: the body hits safe
	// points, and a temporary (like a fresh list from a call) has no
	// other root.
	ev.pushTemp(it)
	defer ev.popTemp()

	outer := ctrlNext
	err = ev.iterate(it, func(elem Value) error {
		if err := ev.assign(fr, st.Vars, elem); err != nil {
			return err
		}
		c, err := ev.execStmts(fr, st.Body)
		if err != nil {
			return err
		}
		switch c {
		case ctrlBreak:
			return errLoopBreak
		case ctrlReturn:
			outer = ctrlReturn
			return errLoopReturn
		}
		return nil
	})
	switch err {
	case nil:
		return ctrlNext, nil
	case errLoopBreak:
		return ctrlNext, nil
	case errLoopReturn:
		return outer, nil
	default:
		return ctrlNext, err
	}
}

func (ev *Eval) execLoad(fr *frame, st *ast.LoadStatement) error {
	if ev.opts.Loader == nil {
		return valueErrf("load(%q): no module loader configured", st.Module)
	}
	mod, err := ev.opts.Loader.Load(st.Module)
	if err != nil {
		return asEvalError(err)
	}
	ev.loadedHeaps = append(ev.loadedHeaps, mod.Heap)

	for _, b := range st.Bindings {
		fv, ok := mod.Lookup(b.Orig)
		if !ok {
			return valueErrf("load(%q): module does not export %q", st.Module, b.Orig)
		}
		if err := ev.assign(fr, b.Local, ev.heap.fromFrozen(fv)); err != nil {
			return err
		}
	}
	return nil
}

// assign writes a value through an assignment target: a name, an
// element, a field, or a tuple/list of targets (unpacking).
func (ev *Eval) assign(fr *frame, target ast.Expression, v Value) error {
	switch t := target.(type) {
	case *ast.Ident:
		return ev.assignIdent(fr, t, v)

	case *ast.IndexExpr:
		obj, err := ev.eval(fr, t.X)
		if err != nil {
			return err
		}
		key, err := ev.eval(fr, t.Index)
		if err != nil {
			return err
		}
		return ev.setIndex(obj, key, v)

	case *ast.DotExpr:
		obj, err := ev.eval(fr, t.X)
		if err != nil {
			return err
		}
		return typeErrf("%s value does not support field assignment", obj.Kind())

	case *ast.TupleExpr:
		return ev.assignUnpack(fr, t.Elems, v)
	case *ast.ListExpr:
		return ev.assignUnpack(fr, t.Elems, v)
	}
	return typeErrf("cannot assign to this expression")
}

func (ev *Eval) assignUnpack(fr *frame, targets []ast.Expression, v Value) error {
	elems, err := ev.collect(v)
	if err != nil {
		return typeErrf("cannot unpack %s value", v.Kind())
	}
	if len(elems) != len(targets) {
		return valueErrf("cannot unpack %d values into %d targets", len(elems), len(targets))
	}
	for i, t := range targets {
		if err := ev.assign(fr, t, elems[i]); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Eval) assignIdent(fr *frame, id *ast.Ident, v Value) error {
	b, ok := fr.prog.Bindings[id]
	if !ok {
		return heapErrf("unresolved identifier %q", id.Name)
	}
	switch b.Scope {
	case resolver.Local:
		fr.locals[b.Slot] = v.r
		return nil
	case resolver.CellLocal:
		return ev.setCell(fr.locals[b.Slot], b.Name, v)
	case resolver.Free:
		return ev.setCell(fr.free[b.Slot], b.Name, v)
	case resolver.Global:
		if fr.frozenGlobals != nil {
			return valueErrf("cannot assign to global %q of a frozen module", b.Name)
		}
		ev.globals[b.Slot] = v.r
		return nil
	}
	return heapErrf("cannot assign to %s name %q", b.Scope, id.Name)
}

func (ev *Eval) setCell(cellRef ref, name string, v Value) error {
	switch c := ev.heap.load(cellRef).(type) {
	case *cellPayload:
		ev.heap.checkOwns(v)
		c.v = v.r
		return nil
	case *frozenPayload:
		return valueErrf("cannot assign to %q: captured from a frozen function", name)
	}
	return heapErrf("captured slot for %q does not hold a cell", name)
}

// funcInfo fetches the resolved body for a def/lambda node from the
// frame's program.
func (ev *Eval) funcInfo(fr *frame, node ast.Node) *resolver.FuncInfo {
	return fr.prog.Functions[node]
}

// makeFunction builds a closure: default values are evaluated now in
// the defining frame, captured cells are plucked from the defining
// frame's slots per the resolved free-variable table.
func (ev *Eval) makeFunction(fr *frame, info *resolver.FuncInfo, name string, params []ast.Param) (Value, error) {
	if info == nil {
		return Value{}, heapErrf("function %q was not resolved", name)
	}
	p := &functionPayload{name: name, info: info, prog: fr.prog}

	for _, param := range params {
		if param.Default == nil {
			p.defaults = append(p.defaults, nilRef)
			continue
		}
		d, err := ev.eval(fr, param.Default)
		if err != nil {
			return Value{}, err
		}
		p.defaults = append(p.defaults, d.r)
	}

	for _, fv := range info.FreeVars {
		if fv.FromFree {
			p.free = append(p.free, fr.free[fv.Slot])
		} else {
			p.free = append(p.free, fr.locals[fv.Slot])
		}
	}

	return ev.heap.value(ev.heap.alloc(p)), nil
}
