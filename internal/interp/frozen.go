package interp

import (
	"math/big"

	"github.com/google/uuid"
	"github.com/skyrlang/skyr/internal/resolver"
)

// FrozenValue is the immutable counterpart of Value. A frozen
// subgraph may reference values in the same or an earlier FrozenHeap,
// never a mutable heap. Frozen values are safe for concurrent reads
// without locking.
type FrozenValue interface {
	Kind() Kind
	Truth() bool
}

// FrozenHeap owns the immutable values produced by freezing one
// module. It is shared by every later evaluation that loads the
// module; deps pins the heaps of transitively loaded modules so a
// dependency is never dropped while a dependent is alive.
type FrozenHeap struct {
	ID   uuid.UUID
	deps []*FrozenHeap

	count int
}

// NewFrozenHeap creates an empty frozen heap with a fresh identity.
func NewFrozenHeap() *FrozenHeap {
	return &FrozenHeap{ID: uuid.New()}
}

// AddDep records another frozen heap this one references into.
func (fh *FrozenHeap) AddDep(dep *FrozenHeap) {
	for _, d := range fh.deps {
		if d == dep {
			return
		}
	}
	fh.deps = append(fh.deps, dep)
}

// Deps returns the frozen heaps this heap references into.
func (fh *FrozenHeap) Deps() []*FrozenHeap { return fh.deps }

// Count reports how many values were frozen into this heap.
func (fh *FrozenHeap) Count() int { return fh.count }

// FrozenModule is the result of a successful evaluation: the frozen
// heap plus the exported top-level bindings in declaration order.
type FrozenModule struct {
	Heap   *FrozenHeap
	Path   string
	Names  []string
	Values []FrozenValue

	index map[string]int
}

// Lookup returns the exported binding for name.
func (m *FrozenModule) Lookup(name string) (FrozenValue, bool) {
	if m.index == nil {
		m.index = make(map[string]int, len(m.Names))
		for i, n := range m.Names {
			m.index[n] = i
		}
	}
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.Values[i], true
}

type FrozenNone struct{}

func (FrozenNone) Kind() Kind  { return KindNone }
func (FrozenNone) Truth() bool { return false }

type FrozenBool bool

func (FrozenBool) Kind() Kind    { return KindBool }
func (b FrozenBool) Truth() bool { return bool(b) }

// FrozenInt mirrors the mutable representation: Big is non-nil only
// when the value exceeds 64 bits.
type FrozenInt struct {
	Small int64
	Big   *big.Int
}

func (FrozenInt) Kind() Kind { return KindInt }

func (i FrozenInt) Truth() bool {
	if i.Big != nil {
		return i.Big.Sign() != 0
	}
	return i.Small != 0
}

func (i FrozenInt) Int64() (int64, bool) {
	if i.Big != nil {
		if i.Big.IsInt64() {
			return i.Big.Int64(), true
		}
		return 0, false
	}
	return i.Small, true
}

func (i FrozenInt) big() *big.Int {
	if i.Big != nil {
		return i.Big
	}
	return big.NewInt(i.Small)
}

type FrozenFloat float64

func (FrozenFloat) Kind() Kind    { return KindFloat }
func (f FrozenFloat) Truth() bool { return f != 0 }

type FrozenString string

func (FrozenString) Kind() Kind    { return KindString }
func (s FrozenString) Truth() bool { return len(s) > 0 }

// FrozenList is a pointer type so a self-referential list freezes to
// a cycle through the same instance.
type FrozenList struct {
	Elems []FrozenValue
}

func (*FrozenList) Kind() Kind    { return KindList }
func (l *FrozenList) Truth() bool { return len(l.Elems) > 0 }

// FrozenTuple is a pointer type for the same reason as FrozenList: a
// tuple can sit on a cycle through a mutable container.
type FrozenTuple struct {
	Elems []FrozenValue
}

func (*FrozenTuple) Kind() Kind    { return KindTuple }
func (t *FrozenTuple) Truth() bool { return len(t.Elems) > 0 }

// FrozenDict keeps insertion order; Hashes carries the key hashes
// computed before freezing so lookups need no mutable heap.
type FrozenDict struct {
	Keys   []FrozenValue
	Vals   []FrozenValue
	Hashes []uint64
}

func (*FrozenDict) Kind() Kind    { return KindDict }
func (d *FrozenDict) Truth() bool { return len(d.Keys) > 0 }

type FrozenStruct struct {
	Names []string
	Vals  []FrozenValue
}

func (*FrozenStruct) Kind() Kind  { return KindStruct }
func (*FrozenStruct) Truth() bool { return true }

func (s *FrozenStruct) Field(name string) (FrozenValue, bool) {
	for i, n := range s.Names {
		if n == name {
			return s.Vals[i], true
		}
	}
	return nil, false
}

// FrozenCell is the immutable form of a captured-variable box.
type FrozenCell struct {
	V FrozenValue
}

func (*FrozenCell) Kind() Kind  { return kindCell }
func (*FrozenCell) Truth() bool { return true }

// FrozenFunction carries everything needed to call the function from
// a later evaluation: the resolved body, the frozen defaults and
// captured cells, and the defining module's frozen globals.
type FrozenFunction struct {
	Name     string
	Info     *resolver.FuncInfo
	Prog     *resolver.Program
	Defaults []FrozenValue
	Free     []*FrozenCell
	Globals  []FrozenValue
}

func (*FrozenFunction) Kind() Kind  { return KindFunction }
func (*FrozenFunction) Truth() bool { return true }

// FrozenBuiltin freezes a native function as an opaque handle; its
// behavior lives at the native boundary, not in heap contents. Recv
// is set when a bound method was frozen.
type FrozenBuiltin struct {
	Name string
	Fn   BuiltinFunc
	Recv FrozenValue
}

func (*FrozenBuiltin) Kind() Kind  { return KindBuiltin }
func (*FrozenBuiltin) Truth() bool { return true }

// FrozenModuleValue is a module namespace seen as a value, e.g. a
// struct-like handle bound by load().
type FrozenModuleValue struct {
	Name  string
	Names []string
	Vals  []FrozenValue
}

func (*FrozenModuleValue) Kind() Kind  { return KindModule }
func (*FrozenModuleValue) Truth() bool { return true }

func (m *FrozenModuleValue) Field(name string) (FrozenValue, bool) {
	for i, n := range m.Names {
		if n == name {
			return m.Vals[i], true
		}
	}
	return nil, false
}
