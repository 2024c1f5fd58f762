package interp

import (
	"math"
	"math/big"
	"strings"

	"github.com/skyrlang/skyr/internal/token"
)

// binary dispatches an arithmetic/logical operator over two operands
// by kind. Undefined kind pairs fail with a typed error, never a
// silent coercion.
func (ev *Eval) binary(op token.Type, x, y Value) (Value, error) {
	h := ev.heap
	kx, ky := x.Kind(), y.Kind()

	switch op {
	case token.PLUS:
		switch {
		case kx == KindInt && ky == KindInt:
			return ev.intAdd(x, y)
		case isNum(kx) && isNum(ky):
			fx, fy, _ := floatPair(x, y)
			return h.Float(fx + fy), nil
		case kx == KindString && ky == KindString:
			sx, _ := x.Str()
			sy, _ := y.Str()
			return h.String(sx + sy), nil
		case kx == KindList && ky == KindList:
			return ev.concatSeq(x, y, false)
		case kx == KindTuple && ky == KindTuple:
			return ev.concatSeq(x, y, true)
		}

	case token.MINUS:
		switch {
		case kx == KindInt && ky == KindInt:
			return ev.intSub(x, y)
		case isNum(kx) && isNum(ky):
			fx, fy, _ := floatPair(x, y)
			return h.Float(fx - fy), nil
		}

	case token.STAR:
		switch {
		case kx == KindInt && ky == KindInt:
			return ev.intMul(x, y)
		case isNum(kx) && isNum(ky):
			fx, fy, _ := floatPair(x, y)
			return h.Float(fx * fy), nil
		case kx == KindString && ky == KindInt:
			return ev.repeatString(x, y)
		case kx == KindInt && ky == KindString:
			return ev.repeatString(y, x)
		case (kx == KindList || kx == KindTuple) && ky == KindInt:
			return ev.repeatSeq(x, y)
		case kx == KindInt && (ky == KindList || ky == KindTuple):
			return ev.repeatSeq(y, x)
		}

	case token.SLASH:
		if isNum(kx) && isNum(ky) {
			fx, fy, _ := floatPair(x, y)
			if fy == 0 {
				return Value{}, valueErrf("division by zero")
			}
			return h.Float(fx / fy), nil
		}

	case token.SLASH_SLASH:
		switch {
		case kx == KindInt && ky == KindInt:
			return ev.intFloorDiv(x, y)
		case isNum(kx) && isNum(ky):
			fx, fy, _ := floatPair(x, y)
			if fy == 0 {
				return Value{}, valueErrf("floor division by zero")
			}
			return h.Float(math.Floor(fx / fy)), nil
		}

	case token.PERCENT:
		switch {
		case kx == KindInt && ky == KindInt:
			return ev.intMod(x, y)
		case isNum(kx) && isNum(ky):
			fx, fy, _ := floatPair(x, y)
			if fy == 0 {
				return Value{}, valueErrf("modulo by zero")
			}
			r := math.Mod(fx, fy)
			if r != 0 && (r < 0) != (fy < 0) {
				r += fy
			}
			return h.Float(r), nil
		case kx == KindString:
			return ev.formatPercent(x, y)
		}

	case token.STARSTAR:
		switch {
		case kx == KindInt && ky == KindInt:
			return ev.intPow(x, y)
		case isNum(kx) && isNum(ky):
			fx, fy, _ := floatPair(x, y)
			return h.Float(math.Pow(fx, fy)), nil
		}

	case token.AMP:
		if kx == KindInt && ky == KindInt {
			return ev.intBitwise(x, y, func(a, b *big.Int) *big.Int { return new(big.Int).And(a, b) })
		}
	case token.PIPE:
		if kx == KindInt && ky == KindInt {
			return ev.intBitwise(x, y, func(a, b *big.Int) *big.Int { return new(big.Int).Or(a, b) })
		}
	case token.CARET:
		if kx == KindInt && ky == KindInt {
			return ev.intBitwise(x, y, func(a, b *big.Int) *big.Int { return new(big.Int).Xor(a, b) })
		}
	case token.LSHIFT:
		if kx == KindInt && ky == KindInt {
			return ev.intShift(x, y, true)
		}
	case token.RSHIFT:
		if kx == KindInt && ky == KindInt {
			return ev.intShift(x, y, false)
		}
	}

	return Value{}, typeErrf("unsupported operand kinds for %s: %s and %s", op, kx, ky)
}

// unary dispatches -x, +x, ~x and `not x`.
func (ev *Eval) unary(op token.Type, x Value) (Value, error) {
	h := ev.heap
	switch op {
	case token.NOT:
		return h.Bool(!x.Truth()), nil
	case token.MINUS:
		if i, ok := x.Int64(); ok {
			if i == math.MinInt64 {
				return h.BigInt(new(big.Int).Neg(big.NewInt(i))), nil
			}
			return h.Int(-i), nil
		}
		if b, ok := x.bigInt(); ok {
			return h.BigInt(new(big.Int).Neg(b)), nil
		}
		if f, ok := x.Float64(); ok {
			return h.Float(-f), nil
		}
	case token.PLUS:
		if isNum(x.Kind()) {
			return x, nil
		}
	case token.TILDE:
		if b, ok := x.bigInt(); ok {
			return h.BigInt(new(big.Int).Not(b)), nil
		}
	}
	return Value{}, typeErrf("unsupported operand kind for unary %s: %s", op, x.Kind())
}

func isNum(k Kind) bool { return k == KindInt || k == KindFloat }

func floatPair(x, y Value) (float64, float64, bool) {
	fx, ok := numFloat(x)
	if !ok {
		return 0, 0, false
	}
	fy, ok := numFloat(y)
	if !ok {
		return 0, 0, false
	}
	return fx, fy, true
}

func numFloat(v Value) (float64, bool) {
	if f, ok := v.Float64(); ok {
		return f, true
	}
	if i, ok := v.Int64(); ok {
		return float64(i), true
	}
	if b, ok := v.bigInt(); ok {
		f, _ := new(big.Float).SetInt(b).Float64()
		return f, true
	}
	return 0, false
}

// Int arithmetic stays fixed-width while results fit; overflow
// promotes the result (not the operands) to the big representation.

func (ev *Eval) intAdd(x, y Value) (Value, error) {
	if a, ok := x.Int64(); ok {
		if b, ok := y.Int64(); ok {
			if s := a + b; (s >= a) == (b >= 0) {
				return ev.heap.Int(s), nil
			}
		}
	}
	return ev.bigOp(x, y, func(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) })
}

func (ev *Eval) intSub(x, y Value) (Value, error) {
	if a, ok := x.Int64(); ok {
		if b, ok := y.Int64(); ok {
			if d := a - b; (d <= a) == (b >= 0) {
				return ev.heap.Int(d), nil
			}
		}
	}
	return ev.bigOp(x, y, func(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) })
}

func (ev *Eval) intMul(x, y Value) (Value, error) {
	if a, ok := x.Int64(); ok {
		if b, ok := y.Int64(); ok {
			if a == 0 || b == 0 {
				return ev.heap.Int(0), nil
			}
			if p := a * b; p/b == a && !(a == -1 && b == math.MinInt64) && !(b == -1 && a == math.MinInt64) {
				return ev.heap.Int(p), nil
			}
		}
	}
	return ev.bigOp(x, y, func(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) })
}

// intFloorDiv rounds toward negative infinity, matching the source
// language rather than Go's truncated division.
func (ev *Eval) intFloorDiv(x, y Value) (Value, error) {
	b, _ := y.bigInt()
	if b.Sign() == 0 {
		return Value{}, valueErrf("floor division by zero")
	}
	a, _ := x.bigInt()
	q := new(big.Int)
	m := new(big.Int)
	q.QuoRem(a, b, m)
	if m.Sign() != 0 && (m.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return ev.heap.BigInt(q), nil
}

// intMod yields a result with the divisor's sign.
func (ev *Eval) intMod(x, y Value) (Value, error) {
	b, _ := y.bigInt()
	if b.Sign() == 0 {
		return Value{}, valueErrf("modulo by zero")
	}
	a, _ := x.bigInt()
	m := new(big.Int).Mod(a, b) // Euclidean, always >= 0
	if m.Sign() != 0 && b.Sign() < 0 {
		m.Add(m, b)
	}
	return ev.heap.BigInt(m), nil
}

const maxIntExponent = 1 << 20

func (ev *Eval) intPow(x, y Value) (Value, error) {
	e, ok := y.Int64()
	if !ok || e > maxIntExponent {
		return Value{}, valueErrf("exponent too large")
	}
	if e < 0 {
		fx, fy, _ := floatPair(x, y)
		return ev.heap.Float(math.Pow(fx, fy)), nil
	}
	a, _ := x.bigInt()
	return ev.heap.BigInt(new(big.Int).Exp(a, big.NewInt(e), nil)), nil
}

func (ev *Eval) intBitwise(x, y Value, op func(a, b *big.Int) *big.Int) (Value, error) {
	a, _ := x.bigInt()
	b, _ := y.bigInt()
	return ev.heap.BigInt(op(a, b)), nil
}

const maxShift = 512

func (ev *Eval) intShift(x, y Value, left bool) (Value, error) {
	n, ok := y.Int64()
	if !ok || n < 0 {
		return Value{}, valueErrf("negative shift count")
	}
	if n > maxShift {
		return Value{}, valueErrf("shift count too large")
	}
	a, _ := x.bigInt()
	if left {
		return ev.heap.BigInt(new(big.Int).Lsh(a, uint(n))), nil
	}
	return ev.heap.BigInt(new(big.Int).Rsh(a, uint(n))), nil
}

func (ev *Eval) bigOp(x, y Value, op func(a, b *big.Int) *big.Int) (Value, error) {
	a, aok := x.bigInt()
	b, bok := y.bigInt()
	if !aok || !bok {
		return Value{}, typeErrf("unsupported operand kinds: %s and %s", x.Kind(), y.Kind())
	}
	return ev.heap.BigInt(op(a, b)), nil
}

func (ev *Eval) concatSeq(x, y Value, tuple bool) (Value, error) {
	sx, _ := x.seq()
	sy, _ := y.seq()
	out := make([]Value, 0, sx.len()+sy.len())
	for i := 0; i < sx.len(); i++ {
		out = append(out, sx.at(i))
	}
	for i := 0; i < sy.len(); i++ {
		out = append(out, sy.at(i))
	}
	if tuple {
		return ev.heap.Tuple(out), nil
	}
	return ev.heap.List(out), nil
}

const maxRepeat = 1 << 24

// repeatCount validates a repetition count. Negative counts clamp to
// zero; counts that could overflow size arithmetic are rejected up
// front, before any allocation.
func repeatCount(n Value, unit int, what string) (int64, error) {
	cnt, ok := n.Int64()
	if !ok {
		b, _ := n.bigInt()
		if b != nil && b.Sign() < 0 {
			return 0, nil
		}
		return 0, valueErrf("repeated %s is too long", what)
	}
	if cnt <= 0 {
		return 0, nil
	}
	if unit > 0 && cnt > maxRepeat/int64(unit) {
		return 0, valueErrf("repeated %s is too long", what)
	}
	return cnt, nil
}

func (ev *Eval) repeatString(s, n Value) (Value, error) {
	str, _ := s.Str()
	cnt, err := repeatCount(n, len(str), "string")
	if err != nil {
		return Value{}, err
	}
	if cnt == 0 {
		return ev.heap.String(""), nil
	}
	return ev.heap.String(strings.Repeat(str, int(cnt))), nil
}

func (ev *Eval) repeatSeq(v, n Value) (Value, error) {
	sq, _ := v.seq()
	cnt, err := repeatCount(n, sq.len(), "sequence")
	if err != nil {
		return Value{}, err
	}
	if sq.len() == 0 {
		cnt = 0
	}
	out := make([]Value, 0, int(cnt)*sq.len())
	for i := int64(0); i < cnt; i++ {
		for j := 0; j < sq.len(); j++ {
			out = append(out, sq.at(j))
		}
	}
	if v.Kind() == KindTuple {
		return ev.heap.Tuple(out), nil
	}
	return ev.heap.List(out), nil
}
