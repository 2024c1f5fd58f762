package interp

var dictMethods = map[string]BuiltinFunc{
	"get":        dictMethodGet,
	"keys":       dictMethodKeys,
	"values":     dictMethodValues,
	"items":      dictMethodItems,
	"setdefault": dictMethodSetdefault,
	"update":     dictMethodUpdate,
	"pop":        dictMethodPop,
	"popitem":    dictMethodPopitem,
	"clear":      dictMethodClear,
}

func dictMethodGet(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("get", pos, named, 1, 2); err != nil {
		return Value{}, err
	}
	v, found, err := ev.dictGet(recv, pos[0])
	if err != nil {
		return Value{}, err
	}
	if found {
		return v, nil
	}
	if len(pos) == 2 {
		return pos[1], nil
	}
	return ev.heap.None(), nil
}

func dictMethodKeys(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("keys", pos, named, 0, 0); err != nil {
		return Value{}, err
	}
	items, n, err := ev.dictItems(recv)
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		out[i], _ = items(i)
	}
	return ev.heap.List(out), nil
}

func dictMethodValues(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("values", pos, named, 0, 0); err != nil {
		return Value{}, err
	}
	items, n, err := ev.dictItems(recv)
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		_, out[i] = items(i)
	}
	return ev.heap.List(out), nil
}

func dictMethodItems(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("items", pos, named, 0, 0); err != nil {
		return Value{}, err
	}
	items, n, err := ev.dictItems(recv)
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		k, v := items(i)
		out[i] = ev.heap.Tuple([]Value{k, v})
	}
	return ev.heap.List(out), nil
}

func dictMethodSetdefault(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("setdefault", pos, named, 1, 2); err != nil {
		return Value{}, err
	}
	v, found, err := ev.dictGet(recv, pos[0])
	if err != nil {
		return Value{}, err
	}
	if found {
		return v, nil
	}
	def := ev.heap.None()
	if len(pos) == 2 {
		def = pos[1]
	}
	if err := ev.dictSet(recv, pos[0], def); err != nil {
		return Value{}, err
	}
	return def, nil
}

func dictMethodUpdate(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if len(pos) > 1 {
		return Value{}, typeErrf("update() takes at most 1 positional argument (%d given)", len(pos))
	}
	if len(pos) == 1 {
		items, n, err := ev.dictItems(pos[0])
		if err != nil {
			return Value{}, err
		}
		for i := 0; i < n; i++ {
			k, v := items(i)
			if err := ev.dictSet(recv, k, v); err != nil {
				return Value{}, err
			}
		}
	}
	for _, arg := range named {
		if err := ev.dictSet(recv, ev.heap.String(arg.Name), arg.Value); err != nil {
			return Value{}, err
		}
	}
	return ev.heap.None(), nil
}

func dictMethodPop(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("pop", pos, named, 1, 2); err != nil {
		return Value{}, err
	}
	p, err := recv.mutDict("pop from")
	if err != nil {
		return Value{}, err
	}
	hash, err := ev.hashValue(pos[0])
	if err != nil {
		return Value{}, err
	}
	val, found, err := p.remove(hash, func(kr ref) (bool, error) {
		return ev.equals(recv.h.value(kr), pos[0])
	})
	if err != nil {
		return Value{}, err
	}
	if found {
		return recv.h.value(val), nil
	}
	if len(pos) == 2 {
		return pos[1], nil
	}
	s, _ := ev.repr(pos[0])
	return Value{}, valueErrf("pop: key %s not found in dict", s)
}

func dictMethodPopitem(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("popitem", pos, named, 0, 0); err != nil {
		return Value{}, err
	}
	p, err := recv.mutDict("pop from")
	if err != nil {
		return Value{}, err
	}
	// Remove the most recently inserted live entry.
	for i := len(p.entries) - 1; i >= 0; i-- {
		if p.entries[i].dead {
			continue
		}
		k := recv.h.value(p.entries[i].key)
		v := recv.h.value(p.entries[i].val)
		p.entries[i].dead = true
		p.entries[i].key = nilRef
		p.entries[i].val = nilRef
		p.deleted++
		p.maybeSqueeze()
		return ev.heap.Tuple([]Value{k, v}), nil
	}
	return Value{}, valueErrf("popitem: dict is empty")
}

func dictMethodClear(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("clear", pos, named, 0, 0); err != nil {
		return Value{}, err
	}
	p, err := recv.mutDict("clear")
	if err != nil {
		return Value{}, err
	}
	p.clear()
	return ev.heap.None(), nil
}
