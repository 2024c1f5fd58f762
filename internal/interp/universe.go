package interp

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// standardUniverse builds the predeclared builtin set. Every
// evaluation gets its own copy so option overrides stay private.
func standardUniverse() map[string]BuiltinFunc {
	return map[string]BuiltinFunc{
		"len":       builtinLen,
		"type":      builtinType,
		"bool":      builtinBool,
		"int":       builtinInt,
		"float":     builtinFloat,
		"str":       builtinStr,
		"repr":      builtinRepr,
		"list":      builtinList,
		"tuple":     builtinTuple,
		"dict":      builtinDict,
		"range":     builtinRange,
		"enumerate": builtinEnumerate,
		"zip":       builtinZip,
		"reversed":  builtinReversed,
		"sorted":    builtinSorted,
		"min":       builtinMin,
		"module":    builtinModule,
		"max":       builtinMax,
		"any":       builtinAny,
		"all":       builtinAll,
		"abs":       builtinAbs,
		"hash":      builtinHash,
		"struct":    builtinStruct,
		"dir":       builtinDir,
		"getattr":   builtinGetattr,
		"hasattr":   builtinHasattr,
		"print":     builtinPrint,
		"fail":      builtinFail,
		"freeze":    builtinFreeze,
	}
}

var universeNames = standardUniverse()

// IsUniversal reports whether name is predeclared in the standard
// universe. The resolver uses it as its Universe predicate when no
// option overrides are in play.
func IsUniversal(name string) bool {
	_, ok := universeNames[name]
	return ok
}

// fixedArgs validates a builtin call that takes min..max positional
// arguments and no keywords.
func fixedArgs(name string, pos []Value, named []NamedArg, min, max int) error {
	if len(named) > 0 {
		return typeErrf("%s() got an unexpected keyword argument %q", name, named[0].Name)
	}
	if len(pos) < min || len(pos) > max {
		if min == max {
			return typeErrf("%s() takes exactly %d arguments (%d given)", name, min, len(pos))
		}
		return typeErrf("%s() takes %d to %d arguments (%d given)", name, min, max, len(pos))
	}
	return nil
}

func builtinLen(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("len", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	n, ok := ev.length(pos[0])
	if !ok {
		return Value{}, typeErrf("len: %s value has no length", pos[0].Kind())
	}
	return ev.heap.Int(int64(n)), nil
}

func builtinType(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("type", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	return ev.heap.String(pos[0].Kind().String()), nil
}

func builtinBool(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("bool", pos, named, 0, 1); err != nil {
		return Value{}, err
	}
	if len(pos) == 0 {
		return ev.heap.False(), nil
	}
	return ev.heap.Bool(pos[0].Truth()), nil
}

func builtinInt(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("int", pos, named, 0, 2); err != nil {
		return Value{}, err
	}
	if len(pos) == 0 {
		return ev.heap.Int(0), nil
	}
	v := pos[0]
	if len(pos) == 2 {
		s, ok := v.Str()
		if !ok {
			return Value{}, typeErrf("int: base given for non-string value")
		}
		base64, ok := pos[1].Int64()
		if !ok || base64 < 2 || base64 > 36 {
			return Value{}, valueErrf("int: invalid base")
		}
		b, ok := new(big.Int).SetString(strings.TrimSpace(s), int(base64))
		if !ok {
			return Value{}, valueErrf("int: invalid literal %q for base %d", s, base64)
		}
		return ev.heap.BigInt(b), nil
	}
	switch v.Kind() {
	case KindBool:
		if v.Truth() {
			return ev.heap.Int(1), nil
		}
		return ev.heap.Int(0), nil
	case KindInt:
		return v, nil
	case KindFloat:
		f, _ := v.Float64()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return Value{}, valueErrf("int: cannot convert %s", formatFloat(f))
		}
		bf := new(big.Float).SetFloat64(math.Trunc(f))
		b, _ := bf.Int(nil)
		return ev.heap.BigInt(b), nil
	case KindString:
		s, _ := v.Str()
		b, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
		if !ok {
			return Value{}, valueErrf("int: invalid literal %q", s)
		}
		return ev.heap.BigInt(b), nil
	}
	return Value{}, typeErrf("int: cannot convert %s", v.Kind())
}

func builtinFloat(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("float", pos, named, 0, 1); err != nil {
		return Value{}, err
	}
	if len(pos) == 0 {
		return ev.heap.Float(0), nil
	}
	v := pos[0]
	switch v.Kind() {
	case KindBool:
		if v.Truth() {
			return ev.heap.Float(1), nil
		}
		return ev.heap.Float(0), nil
	case KindInt, KindFloat:
		f, _ := numFloat(v)
		return ev.heap.Float(f), nil
	case KindString:
		s, _ := v.Str()
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, valueErrf("float: invalid literal %q", s)
		}
		return ev.heap.Float(f), nil
	}
	return Value{}, typeErrf("float: cannot convert %s", v.Kind())
}

func builtinStr(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("str", pos, named, 0, 1); err != nil {
		return Value{}, err
	}
	if len(pos) == 0 {
		return ev.heap.String(""), nil
	}
	s, err := ev.str(pos[0])
	if err != nil {
		return Value{}, err
	}
	return ev.heap.String(s), nil
}

func builtinRepr(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("repr", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	s, err := ev.repr(pos[0])
	if err != nil {
		return Value{}, err
	}
	return ev.heap.String(s), nil
}

func builtinList(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("list", pos, named, 0, 1); err != nil {
		return Value{}, err
	}
	if len(pos) == 0 {
		return ev.heap.List(nil), nil
	}
	elems, err := ev.collect(pos[0])
	if err != nil {
		return Value{}, err
	}
	return ev.heap.List(elems), nil
}

func builtinTuple(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("tuple", pos, named, 0, 1); err != nil {
		return Value{}, err
	}
	if len(pos) == 0 {
		return ev.heap.Tuple(nil), nil
	}
	elems, err := ev.collect(pos[0])
	if err != nil {
		return Value{}, err
	}
	return ev.heap.Tuple(elems), nil
}

func builtinDict(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if len(pos) > 1 {
		return Value{}, typeErrf("dict() takes at most 1 positional argument (%d given)", len(pos))
	}
	d := ev.heap.newDict()
	if len(pos) == 1 {
		// Either a dict or an iterable of key/value pairs.
		if pos[0].Kind() == KindDict {
			items, n, err := ev.dictItems(pos[0])
			if err != nil {
				return Value{}, err
			}
			for i := 0; i < n; i++ {
				k, v := items(i)
				if err := ev.dictSet(d, k, v); err != nil {
					return Value{}, err
				}
			}
		} else {
			err := ev.iterate(pos[0], func(pair Value) error {
				kv, err := ev.collect(pair)
				if err != nil || len(kv) != 2 {
					return typeErrf("dict: entries must be pairs")
				}
				return ev.dictSet(d, kv[0], kv[1])
			})
			if err != nil {
				return Value{}, err
			}
		}
	}
	for _, arg := range named {
		if err := ev.dictSet(d, ev.heap.String(arg.Name), arg.Value); err != nil {
			return Value{}, err
		}
	}
	return d, nil
}

// builtinRange yields an eager list: the kind set is closed and has
// no lazy range, and hermetic programs keep ranges small by
// construction, bounded by the same budget as any other list.
func builtinRange(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("range", pos, named, 1, 3); err != nil {
		return Value{}, err
	}
	nums := make([]int64, len(pos))
	for i, v := range pos {
		n, ok := v.Int64()
		if !ok {
			return Value{}, typeErrf("range: argument must be int, not %s", v.Kind())
		}
		nums[i] = n
	}
	start, stop, step := int64(0), int64(0), int64(1)
	switch len(nums) {
	case 1:
		stop = nums[0]
	case 2:
		start, stop = nums[0], nums[1]
	case 3:
		start, stop, step = nums[0], nums[1], nums[2]
	}
	if step == 0 {
		return Value{}, valueErrf("range: step cannot be zero")
	}
	// The result is materialized, so its length is bounded the same
	// way repeated sequences are; the fuel guard ticks per statement
	// and cannot interrupt a single giant range.
	n := rangeLen(start, stop, step)
	if n > maxRepeat {
		return Value{}, valueErrf("range: result is too long (%d elements)", n)
	}
	out := make([]Value, 0, int(n))
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, ev.heap.Int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, ev.heap.Int(i))
		}
	}
	return ev.heap.List(out), nil
}

// rangeLen computes the element count in uint64 space so extreme
// bounds cannot overflow the arithmetic.
func rangeLen(start, stop, step int64) uint64 {
	if step > 0 {
		if start >= stop {
			return 0
		}
		return (uint64(stop)-uint64(start)-1)/uint64(step) + 1
	}
	if start <= stop {
		return 0
	}
	return (uint64(start)-uint64(stop)-1)/(-uint64(step)) + 1
}

func builtinEnumerate(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("enumerate", pos, named, 1, 2); err != nil {
		return Value{}, err
	}
	start := int64(0)
	if len(pos) == 2 {
		s, ok := pos[1].Int64()
		if !ok {
			return Value{}, typeErrf("enumerate: start must be int, not %s", pos[1].Kind())
		}
		start = s
	}
	var out []Value
	i := start
	err := ev.iterate(pos[0], func(e Value) error {
		out = append(out, ev.heap.Tuple([]Value{ev.heap.Int(i), e}))
		i++
		return nil
	})
	if err != nil {
		return Value{}, err
	}
	return ev.heap.List(out), nil
}

func builtinZip(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if len(named) > 0 {
		return Value{}, typeErrf("zip() got an unexpected keyword argument %q", named[0].Name)
	}
	cols := make([][]Value, len(pos))
	shortest := -1
	for i, v := range pos {
		col, err := ev.collect(v)
		if err != nil {
			return Value{}, err
		}
		cols[i] = col
		if shortest < 0 || len(col) < shortest {
			shortest = len(col)
		}
	}
	if shortest < 0 {
		shortest = 0
	}
	out := make([]Value, shortest)
	for i := 0; i < shortest; i++ {
		row := make([]Value, len(cols))
		for j := range cols {
			row[j] = cols[j][i]
		}
		out[i] = ev.heap.Tuple(row)
	}
	return ev.heap.List(out), nil
}

func builtinReversed(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("reversed", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	elems, err := ev.collect(pos[0])
	if err != nil {
		return Value{}, err
	}
	for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
		elems[i], elems[j] = elems[j], elems[i]
	}
	return ev.heap.List(elems), nil
}

func builtinSorted(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if len(pos) != 1 {
		return Value{}, typeErrf("sorted() takes exactly 1 positional argument (%d given)", len(pos))
	}
	var keyFn Value
	reverse := false
	for _, arg := range named {
		switch arg.Name {
		case "key":
			keyFn = arg.Value
		case "reverse":
			reverse = arg.Value.Truth()
		default:
			return Value{}, typeErrf("sorted() got an unexpected keyword argument %q", arg.Name)
		}
	}

	elems, err := ev.collect(pos[0])
	if err != nil {
		return Value{}, err
	}
	keys := elems
	if !keyFn.IsNil() {
		keys = make([]Value, len(elems))
		for i, e := range elems {
			k, err := ev.Call(keyFn, []Value{e}, nil)
			if err != nil {
				return Value{}, err
			}
			keys[i] = k
		}
	}

	// Insertion sort keeps the implementation free of sort.Slice
	// panics on failed comparisons and is stable.
	var sortErr error
	for i := 1; i < len(elems); i++ {
		for j := i; j > 0; j-- {
			c, err := ev.compare(keys[j], keys[j-1])
			if err != nil {
				sortErr = err
				break
			}
			if reverse {
				c = -c
			}
			if c >= 0 {
				break
			}
			keys[j], keys[j-1] = keys[j-1], keys[j]
			if !keyFn.IsNil() {
				elems[j], elems[j-1] = elems[j-1], elems[j]
			}
		}
		if sortErr != nil {
			return Value{}, sortErr
		}
	}
	if keyFn.IsNil() {
		elems = keys
	}
	return ev.heap.List(elems), nil
}

func builtinMin(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	return ev.minMax(pos, named, "min", -1)
}

func builtinMax(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	return ev.minMax(pos, named, "max", 1)
}

func (ev *Eval) minMax(pos []Value, named []NamedArg, name string, want int) (Value, error) {
	if len(named) > 0 {
		return Value{}, typeErrf("%s() got an unexpected keyword argument %q", name, named[0].Name)
	}
	var elems []Value
	var err error
	switch len(pos) {
	case 0:
		return Value{}, typeErrf("%s() expected at least 1 argument", name)
	case 1:
		elems, err = ev.collect(pos[0])
		if err != nil {
			return Value{}, err
		}
	default:
		elems = pos
	}
	if len(elems) == 0 {
		return Value{}, valueErrf("%s: empty sequence", name)
	}
	best := elems[0]
	for _, e := range elems[1:] {
		c, err := ev.compare(e, best)
		if err != nil {
			return Value{}, err
		}
		if (want > 0 && c > 0) || (want < 0 && c < 0) {
			best = e
		}
	}
	return best, nil
}

func builtinAny(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("any", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	found := false
	err := ev.iterate(pos[0], func(e Value) error {
		if e.Truth() {
			found = true
			return errStopIteration
		}
		return nil
	})
	if err != nil && err != errStopIteration {
		return Value{}, err
	}
	return ev.heap.Bool(found), nil
}

func builtinAll(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("all", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	ok := true
	err := ev.iterate(pos[0], func(e Value) error {
		if !e.Truth() {
			ok = false
			return errStopIteration
		}
		return nil
	})
	if err != nil && err != errStopIteration {
		return Value{}, err
	}
	return ev.heap.Bool(ok), nil
}

func builtinAbs(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("abs", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	v := pos[0]
	if b, ok := v.bigInt(); ok {
		if b.Sign() >= 0 {
			return v, nil
		}
		return ev.heap.BigInt(new(big.Int).Neg(b)), nil
	}
	if f, ok := v.Float64(); ok {
		return ev.heap.Float(math.Abs(f)), nil
	}
	return Value{}, typeErrf("abs: %s value is not a number", v.Kind())
}

func builtinHash(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("hash", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	h, err := ev.hashValue(pos[0])
	if err != nil {
		return Value{}, err
	}
	return ev.heap.Int(int64(h)), nil
}

func builtinStruct(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if len(pos) > 0 {
		return Value{}, typeErrf("struct() takes no positional arguments (%d given)", len(pos))
	}
	p := &structPayload{}
	for _, arg := range named {
		ev.heap.checkOwns(arg.Value)
		p.names = append(p.names, arg.Name)
		p.vals = append(p.vals, arg.Value.r)
	}
	return ev.heap.value(ev.heap.alloc(p)), nil
}

func builtinModule(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if len(pos) != 1 {
		return Value{}, typeErrf("module() takes exactly 1 positional argument (%d given)", len(pos))
	}
	name, ok := pos[0].Str()
	if !ok {
		return Value{}, typeErrf("module() name must be String, got %s", pos[0].Kind())
	}
	p := &modulePayload{name: name}
	for _, arg := range named {
		ev.heap.checkOwns(arg.Value)
		p.names = append(p.names, arg.Name)
		p.vals = append(p.vals, arg.Value.r)
	}
	return ev.heap.value(ev.heap.alloc(p)), nil
}

func builtinDir(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("dir", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	names := ev.attrNames(pos[0])
	out := make([]Value, len(names))
	for i, n := range names {
		out[i] = ev.heap.String(n)
	}
	return ev.heap.List(out), nil
}

func builtinGetattr(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("getattr", pos, named, 2, 3); err != nil {
		return Value{}, err
	}
	name, ok := pos[1].Str()
	if !ok {
		return Value{}, typeErrf("getattr: name must be string, not %s", pos[1].Kind())
	}
	v, err := ev.attr(pos[0], name)
	if err != nil {
		if len(pos) == 3 {
			return pos[2], nil
		}
		return Value{}, err
	}
	return v, nil
}

func builtinHasattr(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("hasattr", pos, named, 2, 2); err != nil {
		return Value{}, err
	}
	name, ok := pos[1].Str()
	if !ok {
		return Value{}, typeErrf("hasattr: name must be string, not %s", pos[1].Kind())
	}
	return ev.heap.Bool(ev.hasAttr(pos[0], name)), nil
}

func builtinPrint(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	sep := " "
	for _, arg := range named {
		if arg.Name != "sep" {
			return Value{}, typeErrf("print() got an unexpected keyword argument %q", arg.Name)
		}
		s, ok := arg.Value.Str()
		if !ok {
			return Value{}, typeErrf("print: sep must be string, not %s", arg.Value.Kind())
		}
		sep = s
	}
	parts := make([]string, len(pos))
	for i, v := range pos {
		s, err := ev.str(v)
		if err != nil {
			return Value{}, err
		}
		parts[i] = s
	}
	ev.printLine(strings.Join(parts, sep))
	return ev.heap.None(), nil
}

func builtinFail(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if len(named) > 0 {
		return Value{}, typeErrf("fail() got an unexpected keyword argument %q", named[0].Name)
	}
	parts := make([]string, len(pos))
	for i, v := range pos {
		s, err := ev.str(v)
		if err != nil {
			return Value{}, err
		}
		parts[i] = s
	}
	msg := strings.Join(parts, " ")
	if msg == "" {
		msg = "fail() was called"
	}
	return Value{}, valueErrf("%s", msg)
}

func builtinFreeze(ev *Eval, _ Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("freeze", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	return ev.FreezeValue(pos[0])
}
