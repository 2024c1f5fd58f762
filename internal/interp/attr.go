package interp

import "sort"

// attr implements x.name: struct and module fields, and the built-in
// methods of lists, dicts and strings (returned bound to their
// receiver).
func (ev *Eval) attr(v Value, name string) (Value, error) {
	switch p := v.payload().(type) {
	case *structPayload:
		if r, ok := p.field(name); ok {
			return v.h.value(r), nil
		}
	case *modulePayload:
		for i, n := range p.names {
			if n == name {
				return v.h.value(p.vals[i]), nil
			}
		}
	case *frozenPayload:
		switch fv := p.fv.(type) {
		case *FrozenStruct:
			if f, ok := fv.Field(name); ok {
				return v.h.fromFrozen(f), nil
			}
		case *FrozenModuleValue:
			if f, ok := fv.Field(name); ok {
				return v.h.fromFrozen(f), nil
			}
		}
	}

	if m, ok := ev.methodTable(v)[name]; ok {
		return v.h.boundBuiltin(name, v, m), nil
	}
	return Value{}, typeErrf("%s value has no attribute %q", v.Kind(), name)
}

// hasAttr backs hasattr()/getattr() without raising.
func (ev *Eval) hasAttr(v Value, name string) bool {
	_, err := ev.attr(v, name)
	return err == nil
}

// attrNames backs dir(): field names plus method names, sorted.
func (ev *Eval) attrNames(v Value) []string {
	var names []string
	switch p := v.payload().(type) {
	case *structPayload:
		names = append(names, p.names...)
	case *modulePayload:
		names = append(names, p.names...)
	case *frozenPayload:
		switch fv := p.fv.(type) {
		case *FrozenStruct:
			names = append(names, fv.Names...)
		case *FrozenModuleValue:
			names = append(names, fv.Names...)
		}
	}
	for name := range ev.methodTable(v) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (ev *Eval) methodTable(v Value) map[string]BuiltinFunc {
	switch v.Kind() {
	case KindList:
		return listMethods
	case KindDict:
		return dictMethods
	case KindString:
		return stringMethods
	}
	return nil
}
