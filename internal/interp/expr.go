package interp

import (
	"github.com/skyrlang/skyr/internal/ast"
	"github.com/skyrlang/skyr/internal/resolver"
	"github.com/skyrlang/skyr/internal/token"
)

// eval computes one expression in a frame. It never suspends: any
// collection happens between outer statements, so intermediate
// handles stay valid for the whole expression.
func (ev *Eval) eval(fr *frame, e ast.Expression) (Value, error) {
	h := ev.heap
	switch e := e.(type) {
	case *ast.Ident:
		return ev.evalIdent(fr, e)

	case *ast.IntLit:
		if e.Big != nil {
			return h.BigInt(e.Big), nil
		}
		return h.Int(e.Value), nil

	case *ast.FloatLit:
		return h.Float(e.Value), nil

	case *ast.StringLit:
		return h.String(e.Value), nil

	case *ast.BoolLit:
		return h.Bool(e.Value), nil

	case *ast.NoneLit:
		return h.None(), nil

	case *ast.ListExpr:
		elems, err := ev.evalExprs(fr, e.Elems)
		if err != nil {
			return Value{}, err
		}
		return h.List(elems), nil

	case *ast.TupleExpr:
		elems, err := ev.evalExprs(fr, e.Elems)
		if err != nil {
			return Value{}, err
		}
		return h.Tuple(elems), nil

	case *ast.DictExpr:
		d := h.newDict()
		for _, ent := range e.Entries {
			k, err := ev.eval(fr, ent.Key)
			if err != nil {
				return Value{}, err
			}
			v, err := ev.eval(fr, ent.Value)
			if err != nil {
				return Value{}, err
			}
			if err := ev.dictSet(d, k, v); err != nil {
				return Value{}, err
			}
		}
		return d, nil

	case *ast.UnaryExpr:
		x, err := ev.eval(fr, e.X)
		if err != nil {
			return Value{}, err
		}
		return ev.unary(e.Op, x)

	case *ast.BinaryExpr:
		return ev.evalBinary(fr, e)

	case *ast.CondExpr:
		cond, err := ev.eval(fr, e.Cond)
		if err != nil {
			return Value{}, err
		}
		if cond.Truth() {
			return ev.eval(fr, e.True)
		}
		return ev.eval(fr, e.False)

	case *ast.IndexExpr:
		x, err := ev.eval(fr, e.X)
		if err != nil {
			return Value{}, err
		}
		i, err := ev.eval(fr, e.Index)
		if err != nil {
			return Value{}, err
		}
		return ev.index(x, i)

	case *ast.SliceExpr:
		return ev.evalSlice(fr, e)

	case *ast.DotExpr:
		x, err := ev.eval(fr, e.X)
		if err != nil {
			return Value{}, err
		}
		return ev.attr(x, e.Name.Name)

	case *ast.CallExpr:
		return ev.evalCall(fr, e)

	case *ast.LambdaExpr:
		return ev.makeFunction(fr, ev.funcInfo(fr, e), "lambda", e.Params)

	case *ast.Comprehension:
		return ev.evalComprehension(fr, e)
	}
	return Value{}, heapErrf("unknown expression %T", e)
}

func (ev *Eval) evalExprs(fr *frame, exprs []ast.Expression) ([]Value, error) {
	out := make([]Value, len(exprs))
	for i, e := range exprs {
		v, err := ev.eval(fr, e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (ev *Eval) evalIdent(fr *frame, id *ast.Ident) (Value, error) {
	b, ok := fr.prog.Bindings[id]
	if !ok {
		return Value{}, heapErrf("unresolved identifier %q", id.Name)
	}
	switch b.Scope {
	case resolver.Local:
		r := fr.locals[b.Slot]
		if r == nilRef {
			return Value{}, valueErrf("local variable %q referenced before assignment", b.Name)
		}
		return ev.heap.value(r), nil

	case resolver.CellLocal:
		return ev.readCell(fr.locals[b.Slot], b.Name)

	case resolver.Free:
		return ev.readCell(fr.free[b.Slot], b.Name)

	case resolver.Global:
		if fr.frozenGlobals != nil {
			fv := fr.frozenGlobals[b.Slot]
			if fv == nil {
				return Value{}, valueErrf("global variable %q referenced before assignment", b.Name)
			}
			return ev.heap.fromFrozen(fv), nil
		}
		r := ev.globals[b.Slot]
		if r == nilRef {
			return Value{}, valueErrf("global variable %q referenced before assignment", b.Name)
		}
		return ev.heap.value(r), nil

	case resolver.Universal:
		fn, ok := ev.universe[b.Name]
		if !ok {
			return Value{}, heapErrf("universal name %q has no implementation", b.Name)
		}
		return ev.heap.Builtin(b.Name, fn), nil
	}
	return Value{}, heapErrf("identifier %q resolved to %s", id.Name, b.Scope)
}

func (ev *Eval) readCell(cellRef ref, name string) (Value, error) {
	switch c := ev.heap.load(cellRef).(type) {
	case *cellPayload:
		if c.v == nilRef {
			return Value{}, valueErrf("local variable %q referenced before assignment", name)
		}
		return ev.heap.value(c.v), nil
	case *frozenPayload:
		if fc, ok := c.fv.(*FrozenCell); ok {
			if fc.V == nil {
				return Value{}, valueErrf("local variable %q referenced before assignment", name)
			}
			return ev.heap.fromFrozen(fc.V), nil
		}
	}
	return Value{}, heapErrf("captured slot for %q does not hold a cell", name)
}

func (ev *Eval) evalBinary(fr *frame, e *ast.BinaryExpr) (Value, error) {
	h := ev.heap

	// and/or short-circuit and yield an operand, not a bool.
	switch e.Op {
	case token.AND:
		left, err := ev.eval(fr, e.Left)
		if err != nil || !left.Truth() {
			return left, err
		}
		return ev.eval(fr, e.Right)
	case token.OR:
		left, err := ev.eval(fr, e.Left)
		if err != nil || left.Truth() {
			return left, err
		}
		return ev.eval(fr, e.Right)
	}

	left, err := ev.eval(fr, e.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := ev.eval(fr, e.Right)
	if err != nil {
		return Value{}, err
	}

	switch e.Op {
	case token.EQ, token.NEQ:
		eq, err := ev.equals(left, right)
		if err != nil {
			return Value{}, err
		}
		return h.Bool(eq == (e.Op == token.EQ)), nil

	case token.LT, token.LE, token.GT, token.GE:
		c, err := ev.compare(left, right)
		if err != nil {
			return Value{}, err
		}
		switch e.Op {
		case token.LT:
			return h.Bool(c < 0), nil
		case token.LE:
			return h.Bool(c <= 0), nil
		case token.GT:
			return h.Bool(c > 0), nil
		default:
			return h.Bool(c >= 0), nil
		}

	case token.IN:
		found, err := ev.contains(right, left)
		if err != nil {
			return Value{}, err
		}
		return h.Bool(found != e.NotIn), nil
	}

	return ev.binary(e.Op, left, right)
}

func (ev *Eval) evalSlice(fr *frame, e *ast.SliceExpr) (Value, error) {
	x, err := ev.eval(fr, e.X)
	if err != nil {
		return Value{}, err
	}
	part := func(expr ast.Expression) (Value, error) {
		if expr == nil {
			return Value{}, nil
		}
		return ev.eval(fr, expr)
	}
	lo, err := part(e.Lo)
	if err != nil {
		return Value{}, err
	}
	hi, err := part(e.Hi)
	if err != nil {
		return Value{}, err
	}
	step, err := part(e.Step)
	if err != nil {
		return Value{}, err
	}
	return ev.slice(x, lo, hi, step)
}

// evalComprehension runs the clause chain as nested loops. Clause
// variables live in the enclosing frame, matching how they were
// resolved.
func (ev *Eval) evalComprehension(fr *frame, comp *ast.Comprehension) (Value, error) {
	var list []Value
	var dict Value
	if comp.IsDict {
		dict = ev.heap.newDict()
	}

	var run func(ci int) error
	run = func(ci int) error {
		if ci == len(comp.Clauses) {
			if comp.IsDict {
				k, err := ev.eval(fr, comp.Key)
				if err != nil {
					return err
				}
				v, err := ev.eval(fr, comp.Body)
				if err != nil {
					return err
				}
				return ev.dictSet(dict, k, v)
			}
			v, err := ev.eval(fr, comp.Body)
			if err != nil {
				return err
			}
			list = append(list, v)
			return nil
		}

		cl := comp.Clauses[ci]
		it, err := ev.eval(fr, cl.X)
		if err != nil {
			return err
		}
		return ev.iterate(it, func(elem Value) error {
			if err := ev.assign(fr, cl.Vars, elem); err != nil {
				return err
			}
			for _, cond := range cl.Ifs {
				c, err := ev.eval(fr, cond)
				if err != nil {
					return err
				}
				if !c.Truth() {
					return nil
				}
			}
			return run(ci + 1)
		})
	}

	if err := run(0); err != nil {
		return Value{}, err
	}
	if comp.IsDict {
		return dict, nil
	}
	return ev.heap.List(list), nil
}
