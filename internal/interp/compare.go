package interp

import "math/big"

// maxCompareDepth bounds deep equality and ordering so cyclic
// containers fail with an error instead of recursing forever.
const maxCompareDepth = 100

// equals implements the == capability. Cross-kind comparison is
// false, except numerically equal Int/Float pairs. Containers
// compare element-wise; functions and modules compare by identity.
func (ev *Eval) equals(a, b Value) (bool, error) {
	return ev.equalsDepth(a, b, maxCompareDepth)
}

func (ev *Eval) equalsDepth(a, b Value, depth int) (bool, error) {
	if depth <= 0 {
		return false, valueErrf("comparison exceeded maximum recursion depth")
	}
	ka, kb := a.Kind(), b.Kind()

	// Numeric cross-kind equality.
	if (ka == KindInt || ka == KindFloat) && (kb == KindInt || kb == KindFloat) {
		c, err := numCompare(a, b)
		if err != nil {
			return false, err
		}
		return c == 0, nil
	}
	if ka != kb {
		return false, nil
	}

	switch ka {
	case KindNone:
		return true, nil
	case KindBool:
		return a.Truth() == b.Truth(), nil
	case KindString:
		sa, _ := a.Str()
		sb, _ := b.Str()
		return sa == sb, nil
	case KindList, KindTuple:
		sqa, _ := a.seq()
		sqb, _ := b.seq()
		if sqa.len() != sqb.len() {
			return false, nil
		}
		for i := 0; i < sqa.len(); i++ {
			eq, err := ev.equalsDepth(sqa.at(i), sqb.at(i), depth-1)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case KindDict:
		return ev.dictEquals(a, b, depth)
	case KindStruct:
		na, va := structFields(a)
		nb, vb := structFields(b)
		if len(na) != len(nb) {
			return false, nil
		}
		for i := range na {
			if na[i] != nb[i] {
				return false, nil
			}
			eq, err := ev.equalsDepth(va[i], vb[i], depth-1)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case KindFunction, KindBuiltin, KindModule:
		return sameIdentity(a, b), nil
	}
	return false, nil
}

// sameIdentity reports reference identity: same arena slot, or same
// frozen instance.
func sameIdentity(a, b Value) bool {
	if a.h == b.h && a.r == b.r {
		return true
	}
	pa, aok := a.payload().(*frozenPayload)
	pb, bok := b.payload().(*frozenPayload)
	return aok && bok && pa.fv == pb.fv
}

func (ev *Eval) dictEquals(a, b Value, depth int) (bool, error) {
	ia, na, err := ev.dictItems(a)
	if err != nil {
		return false, err
	}
	_, nb, err := ev.dictItems(b)
	if err != nil {
		return false, err
	}
	if na != nb {
		return false, nil
	}
	for i := 0; i < na; i++ {
		k, va := ia(i)
		vb, found, err := ev.dictGet(b, k)
		if err != nil {
			return false, err
		}
		if !found {
			return false, nil
		}
		eq, err := ev.equalsDepth(va, vb, depth-1)
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

// structFields flattens a struct (mutable or frozen) into parallel
// name/value slices.
func structFields(v Value) ([]string, []Value) {
	switch p := v.payload().(type) {
	case *structPayload:
		vals := make([]Value, len(p.vals))
		for i, r := range p.vals {
			vals[i] = v.h.value(r)
		}
		return p.names, vals
	case *frozenPayload:
		if fs, ok := p.fv.(*FrozenStruct); ok {
			vals := make([]Value, len(fs.Vals))
			for i, fv := range fs.Vals {
				vals[i] = v.h.fromFrozen(fv)
			}
			return fs.Names, vals
		}
	}
	return nil, nil
}

// compare implements ordering (<, <=, >, >=). Ordering is defined
// within one kind, plus the Int/Float pairing; any other cross-kind
// order is a type error.
func (ev *Eval) compare(a, b Value) (int, error) {
	return ev.compareDepth(a, b, maxCompareDepth)
}

func (ev *Eval) compareDepth(a, b Value, depth int) (int, error) {
	if depth <= 0 {
		return 0, valueErrf("comparison exceeded maximum recursion depth")
	}
	ka, kb := a.Kind(), b.Kind()
	if (ka == KindInt || ka == KindFloat) && (kb == KindInt || kb == KindFloat) {
		return numCompare(a, b)
	}
	if ka != kb {
		return 0, typeErrf("unsupported comparison: %s <=> %s", ka, kb)
	}
	switch ka {
	case KindBool:
		ta, tb := a.Truth(), b.Truth()
		switch {
		case ta == tb:
			return 0, nil
		case tb:
			return -1, nil
		default:
			return 1, nil
		}
	case KindString:
		sa, _ := a.Str()
		sb, _ := b.Str()
		switch {
		case sa < sb:
			return -1, nil
		case sa > sb:
			return 1, nil
		default:
			return 0, nil
		}
	case KindList, KindTuple:
		sqa, _ := a.seq()
		sqb, _ := b.seq()
		n := sqa.len()
		if sqb.len() < n {
			n = sqb.len()
		}
		for i := 0; i < n; i++ {
			c, err := ev.compareDepth(sqa.at(i), sqb.at(i), depth-1)
			if err != nil || c != 0 {
				return c, err
			}
		}
		switch {
		case sqa.len() < sqb.len():
			return -1, nil
		case sqa.len() > sqb.len():
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, typeErrf("unsupported comparison: %s values are not ordered", ka)
}

// numCompare orders two numeric values exactly, promoting through
// big.Int or big.Float so no precision is lost on the way.
func numCompare(a, b Value) (int, error) {
	if ai, ok := a.bigInt(); ok {
		if bi, ok := b.bigInt(); ok {
			return ai.Cmp(bi), nil
		}
		if bf, ok := b.Float64(); ok {
			return cmpBigIntFloat(ai, bf), nil
		}
	}
	if af, ok := a.Float64(); ok {
		if bf, ok := b.Float64(); ok {
			switch {
			case af < bf:
				return -1, nil
			case af > bf:
				return 1, nil
			default:
				return 0, nil
			}
		}
		if bi, ok := b.bigInt(); ok {
			return -cmpBigIntFloat(bi, af), nil
		}
	}
	return 0, typeErrf("unsupported comparison: %s <=> %s", a.Kind(), b.Kind())
}

func cmpBigIntFloat(i *big.Int, f float64) int {
	bf := new(big.Float).SetInt(i)
	return bf.Cmp(big.NewFloat(f))
}
