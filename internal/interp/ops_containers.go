package interp

import "strings"

// dictItems returns an indexed accessor over a dict's entries in
// insertion order, plus the live entry count. Works for mutable and
// frozen dicts alike.
func (ev *Eval) dictItems(v Value) (func(i int) (Value, Value), int, error) {
	switch p := v.payload().(type) {
	case *dictPayload:
		keys := make([]ref, 0, p.len())
		vals := make([]ref, 0, p.len())
		p.each(func(k, val ref) error {
			keys = append(keys, k)
			vals = append(vals, val)
			return nil
		})
		return func(i int) (Value, Value) {
			return v.h.value(keys[i]), v.h.value(vals[i])
		}, len(keys), nil
	case *frozenPayload:
		if fd, ok := p.fv.(*FrozenDict); ok {
			return func(i int) (Value, Value) {
				return v.h.fromFrozen(fd.Keys[i]), v.h.fromFrozen(fd.Vals[i])
			}, len(fd.Keys), nil
		}
	}
	return nil, 0, typeErrf("not a dict (got %s)", v.Kind())
}

// dictGet looks a key up in a mutable or frozen dict.
func (ev *Eval) dictGet(d, key Value) (Value, bool, error) {
	hash, err := ev.hashValue(key)
	if err != nil {
		return Value{}, false, err
	}
	switch p := d.payload().(type) {
	case *dictPayload:
		idx, err := p.lookup(hash, func(kr ref) (bool, error) {
			return ev.equals(d.h.value(kr), key)
		})
		if err != nil || idx < 0 {
			return Value{}, false, err
		}
		return d.h.value(p.entries[idx].val), true, nil
	case *frozenPayload:
		if fd, ok := p.fv.(*FrozenDict); ok {
			for i, h := range fd.Hashes {
				if h != hash {
					continue
				}
				eq, err := ev.equals(d.h.fromFrozen(fd.Keys[i]), key)
				if err != nil {
					return Value{}, false, err
				}
				if eq {
					return d.h.fromFrozen(fd.Vals[i]), true, nil
				}
			}
			return Value{}, false, nil
		}
	}
	return Value{}, false, typeErrf("not a dict (got %s)", d.Kind())
}

// dictSet inserts or updates a key in a mutable dict.
func (ev *Eval) dictSet(d, key, val Value) error {
	p, err := d.mutDict("update")
	if err != nil {
		return err
	}
	hash, err := ev.hashValue(key)
	if err != nil {
		return err
	}
	d.h.checkOwns(key)
	d.h.checkOwns(val)
	return p.insert(hash, key.r, val.r, func(kr ref) (bool, error) {
		return ev.equals(d.h.value(kr), key)
	})
}

// Length implements len(). ok is false for kinds without a length.
func (ev *Eval) length(v Value) (int, bool) {
	if s, ok := v.Str(); ok {
		return len(s), true
	}
	if sq, ok := v.seq(); ok {
		return sq.len(), true
	}
	if _, n, err := ev.dictItems(v); err == nil {
		return n, true
	}
	return 0, false
}

// index implements v[key] for strings, sequences and dicts.
func (ev *Eval) index(v, key Value) (Value, error) {
	if s, ok := v.Str(); ok {
		i, err := seqIndex(key, len(s), "string")
		if err != nil {
			return Value{}, err
		}
		return v.h.String(s[i : i+1]), nil
	}
	if sq, ok := v.seq(); ok {
		i, err := seqIndex(key, sq.len(), v.Kind().String())
		if err != nil {
			return Value{}, err
		}
		return sq.at(i), nil
	}
	if v.Kind() == KindDict {
		val, found, err := ev.dictGet(v, key)
		if err != nil {
			return Value{}, err
		}
		if !found {
			s, _ := ev.repr(key)
			return Value{}, valueErrf("key %s not found in dict", s)
		}
		return val, nil
	}
	return Value{}, typeErrf("%s value is not indexable", v.Kind())
}

// setIndex implements v[key] = val for lists and dicts.
func (ev *Eval) setIndex(v, key, val Value) error {
	switch v.Kind() {
	case KindList:
		p, err := v.mutList("assign to element of")
		if err != nil {
			return err
		}
		i, err := seqIndex(key, len(p.elems), "list")
		if err != nil {
			return err
		}
		v.h.checkOwns(val)
		p.elems[i] = val.r
		return nil
	case KindDict:
		return ev.dictSet(v, key, val)
	}
	return typeErrf("%s value does not support item assignment", v.Kind())
}

// seqIndex validates an index against a length, applying negative
// index wrap-around.
func seqIndex(key Value, n int, what string) (int, error) {
	i64, ok := key.Int64()
	if !ok {
		return 0, typeErrf("%s index must be int, not %s", what, key.Kind())
	}
	i := int(i64)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, valueErrf("%s index %d out of range (length %d)", what, i64, n)
	}
	return i, nil
}

// slice implements v[lo:hi:step] for strings, lists and tuples.
// Slicing copies: the result is a fresh value on v's heap.
func (ev *Eval) slice(v Value, lo, hi, step Value) (Value, error) {
	stepN := 1
	if !step.IsNil() && step.Kind() != KindNone {
		s64, ok := step.Int64()
		if !ok {
			return Value{}, typeErrf("slice step must be int, not %s", step.Kind())
		}
		if s64 == 0 {
			return Value{}, valueErrf("slice step cannot be zero")
		}
		stepN = int(s64)
	}

	if s, ok := v.Str(); ok {
		start, stop := sliceBounds(lo, hi, len(s), stepN)
		var out []byte
		for i := start; (stepN > 0 && i < stop) || (stepN < 0 && i > stop); i += stepN {
			out = append(out, s[i])
		}
		return v.h.String(string(out)), nil
	}
	sq, ok := v.seq()
	if !ok {
		return Value{}, typeErrf("%s value is not sliceable", v.Kind())
	}
	start, stop := sliceBounds(lo, hi, sq.len(), stepN)
	var out []Value
	for i := start; (stepN > 0 && i < stop) || (stepN < 0 && i > stop); i += stepN {
		out = append(out, sq.at(i))
	}
	if v.Kind() == KindTuple {
		return v.h.Tuple(out), nil
	}
	return v.h.List(out), nil
}

// sliceBounds clamps optional lo/hi to [0,n] with Python semantics,
// honoring negative indexes and the step direction defaults.
func sliceBounds(lo, hi Value, n, step int) (int, int) {
	clamp := func(i, min, max int) int {
		if i < min {
			return min
		}
		if i > max {
			return max
		}
		return i
	}
	resolve := func(v Value, def int) int {
		if v.IsNil() || v.Kind() == KindNone {
			return def
		}
		i64, ok := v.Int64()
		if !ok {
			return def
		}
		i := int(i64)
		if i < 0 {
			i += n
		}
		return i
	}
	if step > 0 {
		start := clamp(resolve(lo, 0), 0, n)
		stop := clamp(resolve(hi, n), 0, n)
		return start, stop
	}
	start := clamp(resolve(lo, n-1), -1, n-1)
	stop := clamp(resolve(hi, -1), -1, n-1)
	return start, stop
}

// iterate walks an iterable, calling fn per element. Lists are
// locked against structural mutation for the duration. Dicts iterate
// over keys. stop errors from fn propagate unchanged.
func (ev *Eval) iterate(v Value, fn func(elem Value) error) error {
	switch p := v.payload().(type) {
	case *listPayload:
		p.itercount++
		defer func() { p.itercount-- }()
		for i := 0; i < len(p.elems); i++ {
			if err := fn(v.h.value(p.elems[i])); err != nil {
				return err
			}
		}
		return nil
	case *tuplePayload:
		for _, er := range p.elems {
			if err := fn(v.h.value(er)); err != nil {
				return err
			}
		}
		return nil
	case *dictPayload:
		p.itercount++
		defer func() { p.itercount-- }()
		return p.each(func(k, _ ref) error {
			return fn(v.h.value(k))
		})
	case stringPayload:
		for i := 0; i < len(p); i++ {
			if err := fn(v.h.String(string(p[i : i+1]))); err != nil {
				return err
			}
		}
		return nil
	case *frozenPayload:
		switch fv := p.fv.(type) {
		case *FrozenList:
			for _, e := range fv.Elems {
				if err := fn(v.h.fromFrozen(e)); err != nil {
					return err
				}
			}
			return nil
		case *FrozenTuple:
			for _, e := range fv.Elems {
				if err := fn(v.h.fromFrozen(e)); err != nil {
					return err
				}
			}
			return nil
		case *FrozenDict:
			for _, k := range fv.Keys {
				if err := fn(v.h.fromFrozen(k)); err != nil {
					return err
				}
			}
			return nil
		case FrozenString:
			s := string(fv)
			for i := 0; i < len(s); i++ {
				if err := fn(v.h.String(s[i : i+1])); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return typeErrf("%s value is not iterable", v.Kind())
}

// collect materializes an iterable into a Value slice.
func (ev *Eval) collect(v Value) ([]Value, error) {
	var out []Value
	err := ev.iterate(v, func(e Value) error {
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// contains implements the `in` operator: substring for strings, key
// membership for dicts, element membership for sequences.
func (ev *Eval) contains(container, x Value) (bool, error) {
	if s, ok := container.Str(); ok {
		sub, ok := x.Str()
		if !ok {
			return false, typeErrf("'in <string>' requires string operand, not %s", x.Kind())
		}
		return strings.Contains(s, sub), nil
	}
	if container.Kind() == KindDict {
		_, found, err := ev.dictGet(container, x)
		return found, err
	}
	found := false
	err := ev.iterate(container, func(e Value) error {
		eq, err := ev.equals(e, x)
		if err != nil {
			return err
		}
		if eq {
			found = true
			return errStopIteration
		}
		return nil
	})
	if err == errStopIteration {
		err = nil
	}
	return found, err
}

// errStopIteration is an internal signal for early iteration exit.
var errStopIteration = &EvalError{Kind: ValueError, Msg: "stop"}
