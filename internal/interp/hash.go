package interp

import (
	"hash/fnv"
	"math"
	"math/big"
)

// Hash positions for the singleton kinds. Arbitrary but fixed, so
// hashes are stable across runs and across heaps.
const (
	hashNone  uint64 = 0x7266da2589022c12
	hashFalse uint64 = 0x30958ed3d2e84f4d
	hashTrue  uint64 = 0xd43c6a4f2f871c9e
)

// hashValue computes the key hash for a value, failing with a typed
// error for unhashable kinds. Numerically equal Ints and Floats hash
// alike so they collapse to one dict key.
func (ev *Eval) hashValue(v Value) (uint64, error) {
	switch p := v.payload().(type) {
	case nonePayload:
		return hashNone, nil
	case boolPayload:
		if p {
			return hashTrue, nil
		}
		return hashFalse, nil
	case *intPayload:
		if p.big != nil {
			return hashBig(p.big), nil
		}
		return hashInt64(p.small), nil
	case floatPayload:
		return hashFloat(float64(p)), nil
	case stringPayload:
		return hashString(string(p)), nil
	case *tuplePayload:
		h := uint64(0x345678)
		for _, er := range p.elems {
			eh, err := ev.hashValue(v.h.value(er))
			if err != nil {
				return 0, err
			}
			h = mixHash(h, eh)
		}
		return h, nil
	case *structPayload:
		h := uint64(0x5847)
		for i, name := range p.names {
			vh, err := ev.hashValue(v.h.value(p.vals[i]))
			if err != nil {
				return 0, err
			}
			h = mixHash(mixHash(h, hashString(name)), vh)
		}
		return h, nil
	case *frozenPayload:
		return frozenHash(p.fv)
	}
	return 0, typeErrf("unhashable type: %s", v.Kind())
}

// frozenHash is the frozen counterpart; it needs no heap, so frozen
// dict lookups are self-contained.
func frozenHash(fv FrozenValue) (uint64, error) {
	switch f := fv.(type) {
	case FrozenNone:
		return hashNone, nil
	case FrozenBool:
		if f {
			return hashTrue, nil
		}
		return hashFalse, nil
	case FrozenInt:
		if f.Big != nil {
			return hashBig(f.Big), nil
		}
		return hashInt64(f.Small), nil
	case FrozenFloat:
		return hashFloat(float64(f)), nil
	case FrozenString:
		return hashString(string(f)), nil
	case *FrozenTuple:
		h := uint64(0x345678)
		for _, e := range f.Elems {
			eh, err := frozenHash(e)
			if err != nil {
				return 0, err
			}
			h = mixHash(h, eh)
		}
		return h, nil
	case *FrozenStruct:
		h := uint64(0x5847)
		for i, name := range f.Names {
			vh, err := frozenHash(f.Vals[i])
			if err != nil {
				return 0, err
			}
			h = mixHash(mixHash(h, hashString(name)), vh)
		}
		return h, nil
	}
	return 0, typeErrf("unhashable type: %s", fv.Kind())
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func hashInt64(i int64) uint64 {
	x := uint64(i)
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return x | 1 // never zero, zero marks empty buckets in tests
}

func hashBig(b *big.Int) uint64 {
	if b.IsInt64() {
		return hashInt64(b.Int64())
	}
	h := fnv.New64a()
	if b.Sign() < 0 {
		h.Write([]byte{'-'})
	}
	h.Write(b.Bytes())
	return h.Sum64()
}

// hashFloat hashes integral floats as the equivalent int so that
// 1 and 1.0 land in the same bucket.
func hashFloat(f float64) uint64 {
	if f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64 {
		return hashInt64(int64(f))
	}
	return hashInt64(int64(math.Float64bits(f)))
}

func mixHash(h, x uint64) uint64 {
	return (h^x)*1000003 + 0x9e3779b97f4a7c15
}
