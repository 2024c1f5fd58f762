package interp

import (
	"github.com/skyrlang/skyr/internal/ast"
	"github.com/skyrlang/skyr/internal/resolver"
)

func (ev *Eval) evalCall(fr *frame, e *ast.CallExpr) (Value, error) {
	fn, err := ev.eval(fr, e.Fn)
	if err != nil {
		return Value{}, err
	}

	var pos []Value
	var named []NamedArg
	for _, arg := range e.Args {
		v, err := ev.eval(fr, arg.Value)
		if err != nil {
			return Value{}, err
		}
		switch {
		case arg.Star:
			extra, err := ev.collect(v)
			if err != nil {
				return Value{}, typeErrf("argument after * must be iterable, not %s", v.Kind())
			}
			pos = append(pos, extra...)
		case arg.StarStar:
			items, n, err := ev.dictItems(v)
			if err != nil {
				return Value{}, typeErrf("argument after ** must be a dict, not %s", v.Kind())
			}
			for i := 0; i < n; i++ {
				k, val := items(i)
				name, ok := k.Str()
				if !ok {
					return Value{}, typeErrf("keywords must be strings, not %s", k.Kind())
				}
				named = append(named, NamedArg{Name: name, Value: val})
			}
		case arg.Name != nil:
			named = append(named, NamedArg{Name: arg.Name.Name, Value: v})
		default:
			pos = append(pos, v)
		}
	}

	return ev.Call(fn, pos, named)
}

// Call invokes a callable value: a user function, a native function,
// or their frozen forms. Builtins may re-enter here (sorted with a
// key function, for example).
func (ev *Eval) Call(fn Value, pos []Value, named []NamedArg) (Value, error) {
	if len(ev.frames) >= ev.opts.MaxCallDepth {
		return Value{}, overflowErrf("maximum call depth %d exceeded", ev.opts.MaxCallDepth)
	}

	switch p := fn.payload().(type) {
	case *builtinPayload:
		var recv Value
		if p.recv != nilRef {
			recv = ev.heap.value(p.recv)
		}
		v, err := p.fn(ev, recv, pos, named)
		if err != nil {
			return Value{}, asEvalError(err)
		}
		return v, nil

	case *functionPayload:
		defaults := func(i int) (Value, bool) {
			if p.defaults[i] == nilRef {
				return Value{}, false
			}
			return ev.heap.value(p.defaults[i]), true
		}
		fr := &frame{
			fn:     p.info,
			prog:   p.prog,
			name:   p.name,
			locals: make([]ref, p.info.NumLocals),
			// Copied, not aliased: the frame is a GC root and the
			// payload traces its own slice, so sharing the backing
			// array would relocate the same slot twice.
			free: append([]ref(nil), p.free...),
		}
		return ev.callFrame(fr, defaults, pos, named)

	case *frozenPayload:
		switch fv := p.fv.(type) {
		case *FrozenFunction:
			defaults := func(i int) (Value, bool) {
				if fv.Defaults[i] == nil {
					return Value{}, false
				}
				return ev.heap.fromFrozen(fv.Defaults[i]), true
			}
			free := make([]ref, len(fv.Free))
			for i, fc := range fv.Free {
				free[i] = ev.heap.fromFrozen(fc).r
			}
			fr := &frame{
				fn:            fv.Info,
				prog:          fv.Prog,
				name:          fv.Name,
				locals:        make([]ref, fv.Info.NumLocals),
				free:          free,
				frozenGlobals: fv.Globals,
			}
			return ev.callFrame(fr, defaults, pos, named)

		case *FrozenBuiltin:
			var recv Value
			if fv.Recv != nil {
				recv = ev.heap.fromFrozen(fv.Recv)
			}
			v, err := fv.Fn(ev, recv, pos, named)
			if err != nil {
				return Value{}, asEvalError(err)
			}
			return v, nil
		}
	}

	return Value{}, typeErrf("%s value is not callable", fn.Kind())
}

// callFrame binds arguments, pushes the frame, runs the body and
// pops. Errors pick up a traceback entry on the way out.
func (ev *Eval) callFrame(fr *frame, defaults func(int) (Value, bool), pos []Value, named []NamedArg) (Value, error) {
	// Boxed locals get their cell upfront; parameter binding and
	// assignment then flow through the cell.
	cellSlot := make(map[int]bool, len(fr.fn.CellSlots))
	for _, slot := range fr.fn.CellSlots {
		fr.locals[slot] = ev.heap.alloc(&cellPayload{})
		cellSlot[slot] = true
	}

	setLocal := func(slot int, v Value) {
		ev.heap.checkOwns(v)
		if cellSlot[slot] {
			ev.heap.load(fr.locals[slot]).(*cellPayload).v = v.r
			return
		}
		fr.locals[slot] = v.r
	}

	if err := ev.bindArgs(fr.fn, fr.name, defaults, pos, named, setLocal); err != nil {
		return Value{}, err
	}

	ev.frames = append(ev.frames, fr)
	defer func() { ev.frames = ev.frames[:len(ev.frames)-1] }()

	if fr.fn.BodyExpr != nil { // lambda
		v, err := ev.eval(fr, fr.fn.BodyExpr)
		if err != nil {
			return Value{}, ev.frameError(err, fr)
		}
		return v, nil
	}

	c, err := ev.execStmts(fr, fr.fn.Body)
	if err != nil {
		return Value{}, ev.frameError(err, fr)
	}
	if c == ctrlReturn {
		return ev.heap.value(fr.ret), nil
	}
	return ev.heap.None(), nil
}

// frameError appends this call site to the error's traceback as the
// stack unwinds.
func (ev *Eval) frameError(err error, fr *frame) error {
	ee := asEvalError(err)
	ee.Frames = append(ee.Frames, FrameInfo{
		Name: fr.name,
		Path: ev.framePath(fr),
		Pos:  fr.pos,
	})
	return ee
}

// bindArgs validates a call against the declared signature and
// writes argument values into parameter slots: positionals first,
// then keywords, then defaults, with *args and **kwargs collecting
// the surplus.
func (ev *Eval) bindArgs(info *resolver.FuncInfo, name string, defaults func(int) (Value, bool), pos []Value, named []NamedArg, setLocal func(int, Value)) error {
	var starParam, starStarParam *resolver.ParamInfo
	numNamed := 0
	for i := range info.Params {
		p := &info.Params[i]
		switch {
		case p.Star:
			starParam = p
		case p.StarStar:
			starStarParam = p
		default:
			numNamed++
		}
	}

	bound := make([]bool, numNamed)

	// Positional arguments fill the named parameters left to right.
	n := len(pos)
	if n > numNamed {
		if starParam == nil {
			return typeErrf("%s() takes at most %d positional arguments (%d given)", name, numNamed, len(pos))
		}
		n = numNamed
	}
	idx := 0
	for i := range info.Params {
		p := &info.Params[i]
		if p.Star || p.StarStar {
			continue
		}
		if idx < n {
			setLocal(p.Slot, pos[idx])
			bound[idx] = true
		}
		idx++
	}

	// Surplus positionals go to *args.
	if starParam != nil {
		setLocal(starParam.Slot, ev.heap.Tuple(pos[n:]))
	}

	// Keyword arguments bind by parameter name; unknown names go to
	// **kwargs or fail naming the offending parameter.
	var kwargs Value
	if starStarParam != nil {
		kwargs = ev.heap.newDict()
	}
	for _, arg := range named {
		found := false
		idx = 0
		for i := range info.Params {
			p := &info.Params[i]
			if p.Star || p.StarStar {
				continue
			}
			if p.Name == arg.Name {
				if bound[idx] {
					return typeErrf("%s() got multiple values for argument %q", name, arg.Name)
				}
				setLocal(p.Slot, arg.Value)
				bound[idx] = true
				found = true
				break
			}
			idx++
		}
		if found {
			continue
		}
		if starStarParam == nil {
			return typeErrf("%s() got an unexpected keyword argument %q", name, arg.Name)
		}
		if err := ev.dictSet(kwargs, ev.heap.String(arg.Name), arg.Value); err != nil {
			return err
		}
	}
	if starStarParam != nil {
		setLocal(starStarParam.Slot, kwargs)
	}

	// Unbound parameters fall back to defaults.
	idx = 0
	for i := range info.Params {
		p := &info.Params[i]
		if p.Star || p.StarStar {
			continue
		}
		if !bound[idx] {
			d, ok := defaults(i)
			if !ok {
				return typeErrf("%s() missing required argument %q", name, p.Name)
			}
			setLocal(p.Slot, d)
		}
		idx++
	}
	return nil
}
