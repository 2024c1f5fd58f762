package interp

import "math/big"

// Value is a handle to a runtime value. It is valid only for the
// lifetime of the heap that issued it, and only until the next
// collection unless it is reachable from a registered root.
type Value struct {
	h *Heap
	r ref
}

// IsNil reports whether the handle refers to nothing at all (distinct
// from the None value).
func (v Value) IsNil() bool { return v.r == nilRef }

func (v Value) payload() payload { return v.h.load(v.r) }

// Kind reports the value's kind. Frozen wrappers report the kind of
// the value they wrap.
func (v Value) Kind() Kind {
	p := v.payload()
	if fp, ok := p.(*frozenPayload); ok {
		return fp.fv.Kind()
	}
	return p.kind()
}

// Frozen reports whether the value is an immutable view from a
// FrozenHeap.
func (v Value) Frozen() bool {
	_, ok := v.payload().(*frozenPayload)
	return ok
}

// Truth reports the value's truthiness. Every kind has one; this
// capability cannot fail.
func (v Value) Truth() bool {
	switch p := v.payload().(type) {
	case nonePayload:
		return false
	case boolPayload:
		return bool(p)
	case *intPayload:
		if p.big != nil {
			return p.big.Sign() != 0
		}
		return p.small != 0
	case floatPayload:
		return p != 0
	case stringPayload:
		return len(p) > 0
	case *listPayload:
		return len(p.elems) > 0
	case *tuplePayload:
		return len(p.elems) > 0
	case *dictPayload:
		// Live count: entries may carry tombstones from pop() until
		// the next squeeze.
		return p.len() > 0
	case *structPayload:
		return true
	case *functionPayload, *builtinPayload, *modulePayload:
		return true
	case *frozenPayload:
		return p.fv.Truth()
	}
	return true
}

// Int64 returns the fixed-width integer form. ok is false when the
// value is not an Int or does not fit in 64 bits.
func (v Value) Int64() (int64, bool) {
	switch p := v.payload().(type) {
	case *intPayload:
		if p.big != nil {
			if p.big.IsInt64() {
				return p.big.Int64(), true
			}
			return 0, false
		}
		return p.small, true
	case *frozenPayload:
		if fi, ok := p.fv.(FrozenInt); ok {
			return fi.Int64()
		}
	}
	return 0, false
}

// bigInt returns the arbitrary-precision form of an Int, promoting
// the fixed-width representation as needed. ok is false for non-Ints.
func (v Value) bigInt() (*big.Int, bool) {
	switch p := v.payload().(type) {
	case *intPayload:
		if p.big != nil {
			return p.big, true
		}
		return big.NewInt(p.small), true
	case *frozenPayload:
		if fi, ok := p.fv.(FrozenInt); ok {
			return fi.big(), true
		}
	}
	return nil, false
}

// Float64 returns the float form of a Float. ok is false otherwise.
func (v Value) Float64() (float64, bool) {
	switch p := v.payload().(type) {
	case floatPayload:
		return float64(p), true
	case *frozenPayload:
		if ff, ok := p.fv.(FrozenFloat); ok {
			return float64(ff), true
		}
	}
	return 0, false
}

// Str returns the underlying string of a String value. ok is false
// otherwise.
func (v Value) Str() (string, bool) {
	switch p := v.payload().(type) {
	case stringPayload:
		return string(p), true
	case *frozenPayload:
		if fs, ok := p.fv.(FrozenString); ok {
			return string(fs), true
		}
	}
	return "", false
}

// seq exposes a uniform read surface over List, Tuple and frozen
// forms of both. ok is false for non-sequences.
func (v Value) seq() (seqView, bool) {
	switch p := v.payload().(type) {
	case *listPayload:
		return heapSeq{h: v.h, elems: p.elems}, true
	case *tuplePayload:
		return heapSeq{h: v.h, elems: p.elems}, true
	case *frozenPayload:
		switch fv := p.fv.(type) {
		case *FrozenList:
			return frozenSeq{h: v.h, elems: fv.Elems}, true
		case *FrozenTuple:
			return frozenSeq{h: v.h, elems: fv.Elems}, true
		}
	}
	return nil, false
}

// seqView is a read-only window over an ordered sequence.
type seqView interface {
	len() int
	at(i int) Value
}

type heapSeq struct {
	h     *Heap
	elems []ref
}

func (s heapSeq) len() int       { return len(s.elems) }
func (s heapSeq) at(i int) Value { return s.h.value(s.elems[i]) }

type frozenSeq struct {
	h     *Heap
	elems []FrozenValue
}

func (s frozenSeq) len() int       { return len(s.elems) }
func (s frozenSeq) at(i int) Value { return s.h.fromFrozen(s.elems[i]) }

// mutList returns the mutable list payload, or a type error when the
// value is not a list or is frozen.
func (v Value) mutList(op string) (*listPayload, error) {
	switch p := v.payload().(type) {
	case *listPayload:
		if p.itercount > 0 {
			return nil, valueErrf("cannot %s list during iteration", op)
		}
		return p, nil
	case *frozenPayload:
		if _, ok := p.fv.(*FrozenList); ok {
			return nil, valueErrf("cannot %s frozen list", op)
		}
	}
	return nil, typeErrf("%s: not a list (got %s)", op, v.Kind())
}

// mutDict returns the mutable dict payload, or a type error when the
// value is not a dict or is frozen.
func (v Value) mutDict(op string) (*dictPayload, error) {
	switch p := v.payload().(type) {
	case *dictPayload:
		if p.itercount > 0 {
			return nil, valueErrf("cannot %s dict during iteration", op)
		}
		return p, nil
	case *frozenPayload:
		if _, ok := p.fv.(*FrozenDict); ok {
			return nil, valueErrf("cannot %s frozen dict", op)
		}
	}
	return nil, typeErrf("%s: not a dict (got %s)", op, v.Kind())
}

// fromFrozen turns a FrozenValue into a handle on this heap. Scalars
// materialize as ordinary payloads; containers, structs, functions
// and modules stay behind an immutable wrapper.
func (h *Heap) fromFrozen(fv FrozenValue) Value {
	switch f := fv.(type) {
	case FrozenNone:
		return h.None()
	case FrozenBool:
		return h.Bool(bool(f))
	case FrozenInt:
		if f.Big != nil {
			return h.BigInt(f.Big)
		}
		return h.Int(f.Small)
	case FrozenFloat:
		return h.Float(float64(f))
	case FrozenString:
		return h.String(string(f))
	}
	return h.value(h.alloc(&frozenPayload{fv: fv}))
}
