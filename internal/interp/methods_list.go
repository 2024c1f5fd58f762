package interp

var listMethods = map[string]BuiltinFunc{
	"append": listAppend,
	"extend": listExtend,
	"insert": listInsert,
	"remove": listRemove,
	"pop":    listPop,
	"index":  listIndex,
	"clear":  listClear,
}

func listAppend(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("append", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	p, err := recv.mutList("append to")
	if err != nil {
		return Value{}, err
	}
	recv.h.checkOwns(pos[0])
	p.elems = append(p.elems, pos[0].r)
	return ev.heap.None(), nil
}

func listExtend(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("extend", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	p, err := recv.mutList("extend")
	if err != nil {
		return Value{}, err
	}
	elems, err := ev.collect(pos[0])
	if err != nil {
		return Value{}, err
	}
	for _, e := range elems {
		recv.h.checkOwns(e)
		p.elems = append(p.elems, e.r)
	}
	return ev.heap.None(), nil
}

func listInsert(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("insert", pos, named, 2, 2); err != nil {
		return Value{}, err
	}
	p, err := recv.mutList("insert into")
	if err != nil {
		return Value{}, err
	}
	i64, ok := pos[0].Int64()
	if !ok {
		return Value{}, typeErrf("insert: index must be int, not %s", pos[0].Kind())
	}
	i := int(i64)
	if i < 0 {
		i += len(p.elems)
	}
	if i < 0 {
		i = 0
	}
	if i > len(p.elems) {
		i = len(p.elems)
	}
	recv.h.checkOwns(pos[1])
	p.elems = append(p.elems, nilRef)
	copy(p.elems[i+1:], p.elems[i:])
	p.elems[i] = pos[1].r
	return ev.heap.None(), nil
}

func listRemove(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("remove", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	p, err := recv.mutList("remove from")
	if err != nil {
		return Value{}, err
	}
	for i := range p.elems {
		eq, err := ev.equals(recv.h.value(p.elems[i]), pos[0])
		if err != nil {
			return Value{}, err
		}
		if eq {
			p.elems = append(p.elems[:i], p.elems[i+1:]...)
			return ev.heap.None(), nil
		}
	}
	s, _ := ev.repr(pos[0])
	return Value{}, valueErrf("remove: %s not in list", s)
}

func listPop(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("pop", pos, named, 0, 1); err != nil {
		return Value{}, err
	}
	p, err := recv.mutList("pop from")
	if err != nil {
		return Value{}, err
	}
	if len(p.elems) == 0 {
		return Value{}, valueErrf("pop from empty list")
	}
	i := len(p.elems) - 1
	if len(pos) == 1 {
		i64, ok := pos[0].Int64()
		if !ok {
			return Value{}, typeErrf("pop: index must be int, not %s", pos[0].Kind())
		}
		i = int(i64)
		if i < 0 {
			i += len(p.elems)
		}
		if i < 0 || i >= len(p.elems) {
			return Value{}, valueErrf("pop: index %d out of range (length %d)", i64, len(p.elems))
		}
	}
	out := recv.h.value(p.elems[i])
	p.elems = append(p.elems[:i], p.elems[i+1:]...)
	return out, nil
}

func listIndex(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("index", pos, named, 1, 1); err != nil {
		return Value{}, err
	}
	sq, _ := recv.seq()
	for i := 0; i < sq.len(); i++ {
		eq, err := ev.equals(sq.at(i), pos[0])
		if err != nil {
			return Value{}, err
		}
		if eq {
			return ev.heap.Int(int64(i)), nil
		}
	}
	s, _ := ev.repr(pos[0])
	return Value{}, valueErrf("index: %s not in list", s)
}

func listClear(ev *Eval, recv Value, pos []Value, named []NamedArg) (Value, error) {
	if err := fixedArgs("clear", pos, named, 0, 0); err != nil {
		return Value{}, err
	}
	p, err := recv.mutList("clear")
	if err != nil {
		return Value{}, err
	}
	p.elems = p.elems[:0]
	return ev.heap.None(), nil
}
