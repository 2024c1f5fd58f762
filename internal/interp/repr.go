package interp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// str renders the human-readable form: strings are unquoted, all
// other kinds render as repr.
func (ev *Eval) str(v Value) (string, error) {
	if s, ok := v.Str(); ok {
		return s, nil
	}
	return ev.repr(v)
}

// repr renders the quoted, re-readable form. Cyclic containers print
// an ellipsis at the point of recursion instead of looping.
func (ev *Eval) repr(v Value) (string, error) {
	var b strings.Builder
	if err := ev.writeRepr(&b, v, make(map[interface{}]bool)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// reprKey is the identity used for cycle detection: the arena ref for
// mutable values, the frozen instance for frozen ones.
func reprKey(v Value) interface{} {
	if fp, ok := v.payload().(*frozenPayload); ok {
		return fp.fv
	}
	return v.r
}

func (ev *Eval) writeRepr(b *strings.Builder, v Value, seen map[interface{}]bool) error {
	switch v.Kind() {
	case KindNone:
		b.WriteString("None")
	case KindBool:
		if v.Truth() {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case KindInt:
		if i, ok := v.Int64(); ok {
			b.WriteString(strconv.FormatInt(i, 10))
		} else if bi, ok := v.bigInt(); ok {
			b.WriteString(bi.String())
		}
	case KindFloat:
		f, _ := v.Float64()
		b.WriteString(formatFloat(f))
	case KindString:
		s, _ := v.Str()
		b.WriteString(strconv.Quote(s))
	case KindList:
		return ev.writeSeqRepr(b, v, "[", "]", seen)
	case KindTuple:
		return ev.writeTupleRepr(b, v, seen)
	case KindDict:
		return ev.writeDictRepr(b, v, seen)
	case KindStruct:
		return ev.writeStructRepr(b, v, seen)
	case KindFunction:
		fmt.Fprintf(b, "<function %s>", ev.funcName(v))
	case KindBuiltin:
		fmt.Fprintf(b, "<built-in function %s>", ev.funcName(v))
	case KindModule:
		fmt.Fprintf(b, "<module %s>", ev.funcName(v))
	default:
		fmt.Fprintf(b, "<%s>", v.Kind())
	}
	return nil
}

func (ev *Eval) funcName(v Value) string {
	switch p := v.payload().(type) {
	case *functionPayload:
		return p.name
	case *builtinPayload:
		return p.name
	case *modulePayload:
		return p.name
	case *frozenPayload:
		switch fv := p.fv.(type) {
		case *FrozenFunction:
			return fv.Name
		case *FrozenBuiltin:
			return fv.Name
		case *FrozenModuleValue:
			return fv.Name
		}
	}
	return "?"
}

func (ev *Eval) writeSeqRepr(b *strings.Builder, v Value, open, close string, seen map[interface{}]bool) error {
	key := reprKey(v)
	if seen[key] {
		b.WriteString(open + "..." + close)
		return nil
	}
	seen[key] = true
	defer delete(seen, key)

	sq, _ := v.seq()
	b.WriteString(open)
	for i := 0; i < sq.len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		if err := ev.writeRepr(b, sq.at(i), seen); err != nil {
			return err
		}
	}
	b.WriteString(close)
	return nil
}

func (ev *Eval) writeTupleRepr(b *strings.Builder, v Value, seen map[interface{}]bool) error {
	key := reprKey(v)
	if seen[key] {
		b.WriteString("(...)")
		return nil
	}
	seen[key] = true
	defer delete(seen, key)

	sq, _ := v.seq()
	b.WriteString("(")
	for i := 0; i < sq.len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		if err := ev.writeRepr(b, sq.at(i), seen); err != nil {
			return err
		}
	}
	if sq.len() == 1 {
		b.WriteString(",")
	}
	b.WriteString(")")
	return nil
}

func (ev *Eval) writeDictRepr(b *strings.Builder, v Value, seen map[interface{}]bool) error {
	key := reprKey(v)
	if seen[key] {
		b.WriteString("{...}")
		return nil
	}
	seen[key] = true
	defer delete(seen, key)

	items, n, err := ev.dictItems(v)
	if err != nil {
		return err
	}
	b.WriteString("{")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		k, val := items(i)
		if err := ev.writeRepr(b, k, seen); err != nil {
			return err
		}
		b.WriteString(": ")
		if err := ev.writeRepr(b, val, seen); err != nil {
			return err
		}
	}
	b.WriteString("}")
	return nil
}

func (ev *Eval) writeStructRepr(b *strings.Builder, v Value, seen map[interface{}]bool) error {
	key := reprKey(v)
	if seen[key] {
		b.WriteString("struct(...)")
		return nil
	}
	seen[key] = true
	defer delete(seen, key)

	names, vals := structFields(v)
	b.WriteString("struct(")
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(" = ")
		if err := ev.writeRepr(b, vals[i], seen); err != nil {
			return err
		}
	}
	b.WriteString(")")
	return nil
}

// formatFloat renders floats so that integral values keep a trailing
// ".0", keeping output deterministic and re-parseable.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "+inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// formatPercent implements the string % operator with the %s, %r,
// %d, %f, %x and %% verbs. A tuple right operand supplies one value
// per verb; any other value is treated as a single argument.
func (ev *Eval) formatPercent(format, args Value) (Value, error) {
	f, _ := format.Str()
	var list []Value
	if args.Kind() == KindTuple {
		sq, _ := args.seq()
		for i := 0; i < sq.len(); i++ {
			list = append(list, sq.at(i))
		}
	} else {
		list = []Value{args}
	}

	var b strings.Builder
	next := 0
	take := func() (Value, error) {
		if next >= len(list) {
			return Value{}, typeErrf("not enough arguments for format string")
		}
		v := list[next]
		next++
		return v, nil
	}

	for i := 0; i < len(f); i++ {
		if f[i] != '%' {
			b.WriteByte(f[i])
			continue
		}
		i++
		if i >= len(f) {
			return Value{}, valueErrf("incomplete format verb at end of string")
		}
		switch f[i] {
		case '%':
			b.WriteByte('%')
		case 's':
			v, err := take()
			if err != nil {
				return Value{}, err
			}
			s, err := ev.str(v)
			if err != nil {
				return Value{}, err
			}
			b.WriteString(s)
		case 'r':
			v, err := take()
			if err != nil {
				return Value{}, err
			}
			s, err := ev.repr(v)
			if err != nil {
				return Value{}, err
			}
			b.WriteString(s)
		case 'd':
			v, err := take()
			if err != nil {
				return Value{}, err
			}
			if bi, ok := v.bigInt(); ok {
				b.WriteString(bi.String())
			} else if fl, ok := v.Float64(); ok {
				b.WriteString(strconv.FormatInt(int64(fl), 10))
			} else {
				return Value{}, typeErrf("%%d format requires a number, not %s", v.Kind())
			}
		case 'f':
			v, err := take()
			if err != nil {
				return Value{}, err
			}
			fl, ok := numFloat(v)
			if !ok {
				return Value{}, typeErrf("%%f format requires a number, not %s", v.Kind())
			}
			b.WriteString(strconv.FormatFloat(fl, 'f', 6, 64))
		case 'x':
			v, err := take()
			if err != nil {
				return Value{}, err
			}
			bi, ok := v.bigInt()
			if !ok {
				return Value{}, typeErrf("%%x format requires an int, not %s", v.Kind())
			}
			b.WriteString(bi.Text(16))
		default:
			return Value{}, valueErrf("unsupported format verb %%%c", f[i])
		}
	}
	if next < len(list) {
		return Value{}, typeErrf("too many arguments for format string")
	}
	return ev.heap.String(b.String()), nil
}
