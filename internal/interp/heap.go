package interp

import "math/big"

// Kind tags the closed set of runtime value kinds.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindTuple
	KindDict
	KindStruct
	KindFunction
	KindBuiltin
	KindModule
	// kindCell boxes a variable captured by a nested function. Cells
	// never escape to user programs.
	kindCell
	// kindFrozen wraps an immutable value from a FrozenHeap so it can
	// participate in operations on a mutable heap.
	kindFrozen
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NoneType"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindDict:
		return "dict"
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	case KindBuiltin:
		return "builtin_function_or_method"
	case KindModule:
		return "module"
	case kindCell:
		return "cell"
	case kindFrozen:
		return "frozen"
	}
	return "unknown"
}

// ref is a slot index into a Heap's cell arena. Refs are stable
// between collections; a compacting collection rewrites every live
// ref through the registered root visitors and payload traces.
type ref uint32

const nilRef ref = 0

// Well-known singleton slots, seeded at heap creation and kept at
// fixed indexes across collections.
const (
	noneRef  ref = 1
	falseRef ref = 2
	trueRef  ref = 3
)

// payload is the capability anchor every value kind implements. The
// concrete payload structs carry the kind-specific state; operations
// dispatch on the payload type.
type payload interface {
	kind() Kind
	// trace calls visit on every child ref the payload owns. The
	// collector uses it both to mark and to rewrite refs after
	// compaction, so implementations must pass pointers to the
	// stored refs themselves.
	trace(visit func(*ref))
}

// rootVisitor enumerates the refs a root holder keeps alive. The
// visitor receives pointers so compaction can relocate in place.
type rootVisitor func(visit func(*ref))

// Heap is a per-evaluation arena of mutable values. Allocation is an
// append; values are reclaimed only by a compacting collection or by
// dropping the heap wholesale.
type Heap struct {
	cells []payload

	// allocVolume counts allocations since the last collection;
	// crossing gcThreshold arms a collection at the next safe point.
	allocVolume int
	gcThreshold int

	// gen increments on every compaction. Debug checks use it to
	// detect handles cached across a collection.
	gen uint32

	roots []rootVisitor

	// interned short strings and small ints, dropped on collection
	// (re-interning is cheaper than treating the tables as roots).
	strings   map[string]ref
	smallInts map[int64]ref

	collections int
}

const (
	defaultGCThreshold = 32 * 1024
	maxInternedString  = 64
)

// NewHeap creates an empty heap with the None/False/True singletons
// seeded at their fixed slots.
func NewHeap() *Heap {
	h := &Heap{
		gcThreshold: defaultGCThreshold,
		strings:     make(map[string]ref),
		smallInts:   make(map[int64]ref),
	}
	h.cells = append(h.cells,
		nil, // slot 0 is the nil ref
		nonePayload{},
		boolPayload(false),
		boolPayload(true),
	)
	return h
}

// AddRoot registers a visitor enumerating refs that must survive
// collection. Frames, module globals and freeze pins all register
// here.
func (h *Heap) AddRoot(v rootVisitor) {
	h.roots = append(h.roots, v)
}

func (h *Heap) alloc(p payload) ref {
	h.cells = append(h.cells, p)
	h.allocVolume++
	return ref(len(h.cells) - 1)
}

func (h *Heap) load(r ref) payload {
	if r == nilRef || int(r) >= len(h.cells) {
		panic(heapErrf("dangling ref %d (heap has %d cells)", r, len(h.cells)))
	}
	return h.cells[r]
}

// value wraps a ref as a handle tied to this heap.
func (h *Heap) value(r ref) Value {
	return Value{h: h, r: r}
}

func (h *Heap) None() Value  { return h.value(noneRef) }
func (h *Heap) True() Value  { return h.value(trueRef) }
func (h *Heap) False() Value { return h.value(falseRef) }

func (h *Heap) Bool(b bool) Value {
	if b {
		return h.True()
	}
	return h.False()
}

func (h *Heap) Int(i int64) Value {
	if r, ok := h.smallInts[i]; ok {
		return h.value(r)
	}
	r := h.alloc(&intPayload{small: i})
	if i >= -128 && i <= 256 {
		h.smallInts[i] = r
	}
	return h.value(r)
}

// BigInt allocates an arbitrary-precision integer, demoting to the
// fixed-width representation when the value fits.
func (h *Heap) BigInt(b *big.Int) Value {
	if b.IsInt64() {
		return h.Int(b.Int64())
	}
	return h.value(h.alloc(&intPayload{big: new(big.Int).Set(b)}))
}

func (h *Heap) Float(f float64) Value {
	return h.value(h.alloc(floatPayload(f)))
}

func (h *Heap) String(s string) Value {
	if len(s) <= maxInternedString {
		if r, ok := h.strings[s]; ok {
			return h.value(r)
		}
		r := h.alloc(stringPayload(s))
		h.strings[s] = r
		return h.value(r)
	}
	return h.value(h.alloc(stringPayload(s)))
}

func (h *Heap) List(elems []Value) Value {
	refs := h.refsOf(elems)
	return h.value(h.alloc(&listPayload{elems: refs}))
}

func (h *Heap) Tuple(elems []Value) Value {
	refs := h.refsOf(elems)
	return h.value(h.alloc(&tuplePayload{elems: refs}))
}

func (h *Heap) newDict() Value {
	return h.value(h.alloc(newDictPayload()))
}

func (h *Heap) refsOf(vals []Value) []ref {
	refs := make([]ref, len(vals))
	for i, v := range vals {
		h.checkOwns(v)
		refs[i] = v.r
	}
	return refs
}

// checkOwns panics with a HeapInvariantError when a handle from a
// different mutable heap is about to be stored. Sharing across heaps
// is only legal through a frozen intermediary.
func (h *Heap) checkOwns(v Value) {
	if v.h != nil && v.h != h {
		panic(heapErrf("value of kind %s crossed from another mutable heap", v.Kind()))
	}
}

// maybeCollect runs a collection if allocation volume crossed the
// threshold. Callers must be at a safe point: every live ref
// reachable only through a registered root.
func (h *Heap) maybeCollect() {
	if h.allocVolume >= h.gcThreshold {
		h.Collect()
	}
}

// Collections reports how many compacting collections have run.
func (h *Heap) Collections() int { return h.collections }

// Size reports the number of live arena slots.
func (h *Heap) Size() int { return len(h.cells) }
