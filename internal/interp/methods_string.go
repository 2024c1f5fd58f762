package interp

import "strings"

var stringMethods = map[string]BuiltinFunc{
	"upper":      stringUpper,
	"lower":      stringLower,
	"strip":      stringStrip,
	"lstrip":     stringLstrip,
	"rstrip":     stringRstrip,
	"split":      stringSplit,
	"join":       stringJoin,
	"startswith": stringStartswith,
	"endswith":   stringEndswith,
	"find":       stringFind,
	"replace":    stringReplace,
	"count":      stringCount,
	"format":     stringFormat,
}

func recvStr(recv Value) string {
	s, _ := recv.Str()
	return s
}

func oneStrArg(name string, pos []Value, named []NamedArg) (string, error) {
	if err := fixedArgs(name, pos, named, 1, 1); err != nil {
		return "", err
	}
	s, ok := pos[0].Str()
	if !ok {
		return "", typeErrf("%s: argument must be string, not %s", name, pos[0].Kind())
	}
	return s, nil
}

func stringUpper(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("upper", pos, named, 0, 0); err != nil {
		return Value{}, err
	}
	return ev.heap.String(strings.ToUpper(recvStr(recv))), nil
}

func stringLower(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("lower", pos, named, 0, 0); err != nil {
		return Value{}, err
	}
	return ev.heap.String(strings.ToLower(recvStr(recv))), nil
}

func stripArgs(name string, pos []Value, named []NamedArg) (string, error) {
	if err := fixedArgs(name, pos, named, 0, 1); err != nil {
		return "", err
	}
	if len(pos) == 0 {
		return " \t\n\r", nil
	}
	cut, ok := pos[0].Str()
	if !ok {
		return "", typeErrf("%s: argument must be string, not %s", name, pos[0].Kind())
	}
	return cut, nil
}

func stringStrip(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	cut, err := stripArgs("strip", pos, named)
	if err != nil {
		return Value{}, err
	}
	return ev.heap.String(strings.Trim(recvStr(recv), cut)), nil
}

func stringLstrip(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	cut, err := stripArgs("lstrip", pos, named)
	if err != nil {
		return Value{}, err
	}
	return ev.heap.String(strings.TrimLeft(recvStr(recv), cut)), nil
}

func stringRstrip(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	cut, err := stripArgs("rstrip", pos, named)
	if err != nil {
		return Value{}, err
	}
	return ev.heap.String(strings.TrimRight(recvStr(recv), cut)), nil
}

func stringSplit(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("split", pos, named, 0, 2); err != nil {
		return Value{}, err
	}
	s := recvStr(recv)
	var parts []string
	if len(pos) == 0 {
		parts = strings.Fields(s)
	} else {
		sep, ok := pos[0].Str()
		if !ok {
			return Value{}, typeErrf("split: separator must be string, not %s", pos[0].Kind())
		}
		if sep == "" {
			return Value{}, valueErrf("split: empty separator")
		}
		max := -1
		if len(pos) == 2 {
			m, ok := pos[1].Int64()
			if !ok {
				return Value{}, typeErrf("split: maxsplit must be int, not %s", pos[1].Kind())
			}
			max = int(m) + 1
		}
		parts = strings.SplitN(s, sep, max)
	}
	out := make([]Value, len(parts))
	for i, p := range parts {
		out[i] = ev.heap.String(p)
	}
	return ev.heap.List(out), nil
}

func stringJoin(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("join", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	sep := recvStr(recv)
	var parts []string
	err := ev.iterate(pos[0], func(e Value) error {
		s, ok := e.Str()
		if !ok {
			return typeErrf("join: sequence element must be string, not %s", e.Kind())
		}
		parts = append(parts, s)
		return nil
	})
	if err != nil {
		return Value{}, err
	}
	return ev.heap.String(strings.Join(parts, sep)), nil
}

func stringStartswith(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	prefix, err := oneStrArg("startswith", pos, named)
	if err != nil {
		return Value{}, err
	}
	return ev.heap.Bool(strings.HasPrefix(recvStr(recv), prefix)), nil
}

func stringEndswith(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	suffix, err := oneStrArg("endswith", pos, named)
	if err != nil {
		return Value{}, err
	}
	return ev.heap.Bool(strings.HasSuffix(recvStr(recv), suffix)), nil
}

func stringFind(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	sub, err := oneStrArg("find", pos, named)
	if err != nil {
		return Value{}, err
	}
	return ev.heap.Int(int64(strings.Index(recvStr(recv), sub))), nil
}

func stringReplace(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("replace", pos, named, 2, 2); err != nil {
		return Value{}, err
	}
	old, ok := pos[0].Str()
	if !ok {
		return Value{}, typeErrf("replace: argument must be string, not %s", pos[0].Kind())
	}
	new_, ok := pos[1].Str()
	if !ok {
		return Value{}, typeErrf("replace: argument must be string, not %s", pos[1].Kind())
	}
	return ev.heap.String(strings.ReplaceAll(recvStr(recv), old, new_)), nil
}

func stringCount(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	sub, err := oneStrArg("count", pos, named)
	if err != nil {
		return Value{}, err
	}
	return ev.heap.Int(int64(strings.Count(recvStr(recv), sub))), nil
}

// stringFormat implements the brace style: "{}" consumes the next
// positional argument, "{name}" a keyword argument, "{{" and "}}"
// are literal braces.
func stringFormat(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	f := recvStr(recv)
	byName := make(map[string]Value, len(named))
	for _, arg := range named {
		byName[arg.Name] = arg.Value
	}

	var b strings.Builder
	next := 0
	for i := 0; i < len(f); i++ {
		switch {
		case f[i] == '{' && i+1 < len(f) && f[i+1] == '{':
			b.WriteByte('{')
			i++
		case f[i] == '}' && i+1 < len(f) && f[i+1] == '}':
			b.WriteByte('}')
			i++
		case f[i] == '{':
			end := strings.IndexByte(f[i:], '}')
			if end < 0 {
				return Value{}, valueErrf("format: unmatched '{'")
			}
			name := f[i+1 : i+end]
			var v Value
			if name == "" {
				if next >= len(pos) {
					return Value{}, typeErrf("format: not enough positional arguments")
				}
				v = pos[next]
				next++
			} else {
				var ok bool
				v, ok = byName[name]
				if !ok {
					return Value{}, typeErrf("format: no argument named %q", name)
				}
			}
			s, err := ev.str(v)
			if err != nil {
				return Value{}, err
			}
			b.WriteString(s)
			i += end
		case f[i] == '}':
			return Value{}, valueErrf("format: unmatched '}'")
		default:
			b.WriteByte(f[i])
		}
	}
	return ev.heap.String(b.String()), nil
}
