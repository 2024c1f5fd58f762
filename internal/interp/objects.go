package interp

import "math/big"

type nonePayload struct{}

func (nonePayload) kind() Kind             { return KindNone }
func (nonePayload) trace(visit func(*ref)) {}

type boolPayload bool

func (boolPayload) kind() Kind             { return KindBool }
func (boolPayload) trace(visit func(*ref)) {}

// intPayload is fixed-width until an operation overflows, at which
// point big carries the arbitrary-precision result and small is
// ignored.
type intPayload struct {
	small int64
	big   *big.Int
}

func (*intPayload) kind() Kind             { return KindInt }
func (*intPayload) trace(visit func(*ref)) {}

type floatPayload float64

func (floatPayload) kind() Kind             { return KindFloat }
func (floatPayload) trace(visit func(*ref)) {}

type stringPayload string

func (stringPayload) kind() Kind             { return KindString }
func (stringPayload) trace(visit func(*ref)) {}

// listPayload is mutable and growable. itercount guards against
// structural mutation while a loop walks the list.
type listPayload struct {
	elems     []ref
	itercount int
}

func (*listPayload) kind() Kind { return KindList }

func (l *listPayload) trace(visit func(*ref)) {
	for i := range l.elems {
		visit(&l.elems[i])
	}
}

type tuplePayload struct {
	elems []ref
}

func (*tuplePayload) kind() Kind { return KindTuple }

func (t *tuplePayload) trace(visit func(*ref)) {
	for i := range t.elems {
		visit(&t.elems[i])
	}
}

// structPayload is an immutable named field bag. Fields keep their
// construction order.
type structPayload struct {
	names []string
	vals  []ref
}

func (*structPayload) kind() Kind { return KindStruct }

func (s *structPayload) trace(visit func(*ref)) {
	for i := range s.vals {
		visit(&s.vals[i])
	}
}

func (s *structPayload) field(name string) (ref, bool) {
	for i, n := range s.names {
		if n == name {
			return s.vals[i], true
		}
	}
	return nilRef, false
}

// cellPayload boxes a captured variable so an enclosing and a nested
// function observe each other's writes.
type cellPayload struct {
	v ref
}

func (*cellPayload) kind() Kind { return kindCell }

func (c *cellPayload) trace(visit func(*ref)) {
	if c.v != nilRef {
		visit(&c.v)
	}
}

// modulePayload is a namespace of exported bindings, in declaration
// order.
type modulePayload struct {
	name  string
	names []string
	vals  []ref
}

func (*modulePayload) kind() Kind { return KindModule }

func (m *modulePayload) trace(visit func(*ref)) {
	for i := range m.vals {
		visit(&m.vals[i])
	}
}

// frozenPayload views an immutable value from a FrozenHeap. It owns
// no mutable children, so it traces nothing.
type frozenPayload struct {
	fv FrozenValue
}

func (*frozenPayload) kind() Kind             { return kindFrozen }
func (*frozenPayload) trace(visit func(*ref)) {}
