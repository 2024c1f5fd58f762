// Package fingerprint makes the engine's determinism guarantee
// checkable: it digests a frozen module's exported value graph into a
// stable hex string and keeps past digests in a sqlite ledger, so
// re-evaluating the same source must reproduce the same digest.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"math"
	"sort"

	"github.com/skyrlang/skyr/internal/interp"
)

// Source digests module source text; the ledger keys on it so a
// changed file never compares against stale fingerprints.
func Source(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Module digests a frozen module's exports. The walk is deterministic:
// export names sorted, container elements in their frozen order, and
// shared or cyclic nodes encoded as backreferences to the step at
// which they were first seen.
func Module(mod *interp.FrozenModule) string {
	w := &walker{h: sha256.New(), seen: make(map[interp.FrozenValue]int)}
	names := append([]string(nil), mod.Names...)
	sort.Strings(names)
	for _, name := range names {
		fv, _ := mod.Lookup(name)
		fmt.Fprintf(w.h, "export %s\n", name)
		w.walk(fv)
	}
	return hex.EncodeToString(w.h.Sum(nil))
}

type walker struct {
	h    hash.Hash
	seen map[interp.FrozenValue]int
	step int
}

func (w *walker) walk(fv interp.FrozenValue) {
	switch v := fv.(type) {
	case interp.FrozenNone:
		w.emit("none")
	case interp.FrozenBool:
		w.emit("bool %v", bool(v))
	case interp.FrozenInt:
		if v.Big != nil {
			w.emit("int %s", v.Big.String())
		} else {
			w.emit("int %d", v.Small)
		}
	case interp.FrozenFloat:
		// Bit pattern, not formatting: distinguishes -0.0 and keeps
		// every NaN payload stable.
		w.emit("float %016x", math.Float64bits(float64(v)))
	case interp.FrozenString:
		w.emit("str %d %s", len(v), string(v))

	case *interp.FrozenList:
		if w.mark(v) {
			return
		}
		w.emit("list %d", len(v.Elems))
		for _, e := range v.Elems {
			w.walk(e)
		}
	case *interp.FrozenTuple:
		if w.mark(v) {
			return
		}
		w.emit("tuple %d", len(v.Elems))
		for _, e := range v.Elems {
			w.walk(e)
		}
	case *interp.FrozenDict:
		if w.mark(v) {
			return
		}
		w.emit("dict %d", len(v.Keys))
		for i := range v.Keys {
			w.walk(v.Keys[i])
			w.walk(v.Vals[i])
		}
	case *interp.FrozenStruct:
		if w.mark(v) {
			return
		}
		w.emit("struct %d", len(v.Names))
		for i, n := range v.Names {
			w.emit("field %s", n)
			w.walk(v.Vals[i])
		}
	case *interp.FrozenCell:
		if w.mark(v) {
			return
		}
		w.emit("cell")
		w.walk(v.V)
	case *interp.FrozenFunction:
		if w.mark(v) {
			return
		}
		// Identity is the signature plus the captured state. Body
		// behavior is covered by the source digest the ledger pairs
		// this fingerprint with.
		w.emit("function %s params %d", v.Name, len(v.Info.Params))
		w.emit("defaults %d", len(v.Defaults))
		for _, d := range v.Defaults {
			w.walk(d)
		}
		w.emit("free %d", len(v.Free))
		for _, c := range v.Free {
			w.walk(c)
		}
	case *interp.FrozenBuiltin:
		w.emit("builtin %s", v.Name)
		if v.Recv != nil {
			w.walk(v.Recv)
		}
	case *interp.FrozenModuleValue:
		if w.mark(v) {
			return
		}
		w.emit("module %s %d", v.Name, len(v.Names))
		for i, n := range v.Names {
			w.emit("name %s", n)
			w.walk(v.Vals[i])
		}
	default:
		w.emit("opaque %s", fv.Kind())
	}
}

// mark registers a container node; if it was already walked, a
// backreference to its step number is emitted instead and the caller
// must not descend again.
func (w *walker) mark(fv interp.FrozenValue) bool {
	if n, ok := w.seen[fv]; ok {
		w.emit("backref %d", n)
		return true
	}
	w.step++
	w.seen[fv] = w.step
	return false
}

func (w *walker) emit(format string, args ...interface{}) {
	fmt.Fprintf(w.h, format, args...)
	w.h.Write([]byte{'\n'})
}
