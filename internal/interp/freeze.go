package interp

import "math/big"

// freezer copies a reachable value graph out of a mutable heap into
// a FrozenHeap. The visited map is keyed by arena ref, so cycles and
// shared sub-objects are frozen exactly once and keep their aliasing
// in the frozen graph.
type freezer struct {
	h       *Heap
	fh      *FrozenHeap
	visited map[ref]FrozenValue

	// globals is the defining module's global table, frozen lazily
	// and shared by every function frozen in this walk.
	globalRefs    []ref
	globals       []FrozenValue
	globalsFilled bool
}

func newFreezer(h *Heap, fh *FrozenHeap, globalRefs []ref) *freezer {
	return &freezer{
		h:          h,
		fh:         fh,
		visited:    make(map[ref]FrozenValue),
		globalRefs: globalRefs,
	}
}

func (fz *freezer) freeze(r ref) (FrozenValue, error) {
	if r == nilRef {
		return nil, nil
	}
	if fv, ok := fz.visited[r]; ok {
		return fv, nil
	}

	switch p := fz.h.load(r).(type) {
	case nonePayload:
		return fz.done(r, FrozenNone{}), nil

	case boolPayload:
		return fz.done(r, FrozenBool(p)), nil

	case *intPayload:
		fi := FrozenInt{Small: p.small}
		if p.big != nil {
			fi.Big = new(big.Int).Set(p.big)
		}
		return fz.done(r, fi), nil

	case floatPayload:
		return fz.done(r, FrozenFloat(p)), nil

	case stringPayload:
		return fz.done(r, FrozenString(p)), nil

	case *listPayload:
		fl := &FrozenList{}
		fz.done(r, fl)
		fl.Elems = make([]FrozenValue, len(p.elems))
		for i, er := range p.elems {
			fv, err := fz.freeze(er)
			if err != nil {
				return nil, err
			}
			fl.Elems[i] = fv
		}
		return fl, nil

	case *tuplePayload:
		ft := &FrozenTuple{}
		fz.done(r, ft)
		ft.Elems = make([]FrozenValue, len(p.elems))
		for i, er := range p.elems {
			fv, err := fz.freeze(er)
			if err != nil {
				return nil, err
			}
			ft.Elems[i] = fv
		}
		return ft, nil

	case *dictPayload:
		fd := &FrozenDict{}
		fz.done(r, fd)
		err := p.each(func(k, v ref) error {
			fk, err := fz.freeze(k)
			if err != nil {
				return err
			}
			fv, err := fz.freeze(v)
			if err != nil {
				return err
			}
			fd.Keys = append(fd.Keys, fk)
			fd.Vals = append(fd.Vals, fv)
			return nil
		})
		if err != nil {
			return nil, err
		}
		// Entry hashes are recomputed over the frozen keys so frozen
		// lookups are self-contained.
		fd.Hashes = make([]uint64, len(fd.Keys))
		for i, fk := range fd.Keys {
			h, err := frozenHash(fk)
			if err != nil {
				return nil, err
			}
			fd.Hashes[i] = h
		}
		return fd, nil

	case *structPayload:
		fs := &FrozenStruct{Names: append([]string(nil), p.names...)}
		fz.done(r, fs)
		fs.Vals = make([]FrozenValue, len(p.vals))
		for i, vr := range p.vals {
			fv, err := fz.freeze(vr)
			if err != nil {
				return nil, err
			}
			fs.Vals[i] = fv
		}
		return fs, nil

	case *cellPayload:
		fc := &FrozenCell{}
		fz.done(r, fc)
		fv, err := fz.freeze(p.v)
		if err != nil {
			return nil, err
		}
		fc.V = fv
		return fc, nil

	case *functionPayload:
		ff := &FrozenFunction{Name: p.name, Info: p.info, Prog: p.prog}
		fz.done(r, ff)
		ff.Defaults = make([]FrozenValue, len(p.defaults))
		for i, dr := range p.defaults {
			fv, err := fz.freeze(dr)
			if err != nil {
				return nil, err
			}
			ff.Defaults[i] = fv
		}
		ff.Free = make([]*FrozenCell, len(p.free))
		for i, cr := range p.free {
			fv, err := fz.freeze(cr)
			if err != nil {
				return nil, err
			}
			// Free slots hold either live cells or already-frozen
			// cells behind a wrapper; both freeze to *FrozenCell.
			fc, ok := fv.(*FrozenCell)
			if !ok {
				return nil, heapErrf("captured slot froze to %s, want cell", fv.Kind())
			}
			ff.Free[i] = fc
		}
		g, err := fz.frozenGlobals()
		if err != nil {
			return nil, err
		}
		ff.Globals = g
		return ff, nil

	case *builtinPayload:
		fb := &FrozenBuiltin{Name: p.name, Fn: p.fn}
		fz.done(r, fb)
		if p.recv != nilRef {
			fv, err := fz.freeze(p.recv)
			if err != nil {
				return nil, err
			}
			fb.Recv = fv
		}
		return fb, nil

	case *modulePayload:
		fm := &FrozenModuleValue{Name: p.name, Names: append([]string(nil), p.names...)}
		fz.done(r, fm)
		fm.Vals = make([]FrozenValue, len(p.vals))
		for i, vr := range p.vals {
			fv, err := fz.freeze(vr)
			if err != nil {
				return nil, err
			}
			fm.Vals[i] = fv
		}
		return fm, nil

	case *frozenPayload:
		// Already immutable; reference it in place rather than
		// copying into the new heap.
		return p.fv, nil
	}

	return nil, heapErrf("cannot freeze value of kind %s", fz.h.load(r).kind())
}

// done records a finished (or cycle-anchoring) frozen value for a
// source ref and counts it against the frozen heap.
func (fz *freezer) done(r ref, fv FrozenValue) FrozenValue {
	fz.visited[r] = fv
	fz.fh.count++
	return fv
}

// frozenGlobals freezes the defining module's global table once; all
// functions frozen by this walk share the returned slice. The slice
// is allocated before filling so functions reachable from the
// globals themselves see the shared backing array.
func (fz *freezer) frozenGlobals() ([]FrozenValue, error) {
	if fz.globals == nil {
		fz.globals = make([]FrozenValue, len(fz.globalRefs))
	}
	if fz.globalsFilled {
		return fz.globals, nil
	}
	fz.globalsFilled = true
	for i, gr := range fz.globalRefs {
		fv, err := fz.freeze(gr)
		if err != nil {
			return nil, err
		}
		fz.globals[i] = fv
	}
	return fz.globals, nil
}
