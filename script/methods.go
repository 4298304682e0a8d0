package script

import "strings"

// callMethod dispatches the fixed method table of built-in values.
func (in *interp) callMethod(pos Pos, recv Value, name string, args []Value) Value {
	switch r := recv.(type) {
	case *List:
		return in.listMethod(pos, r, name, args)
	case *Dict:
		return in.dictMethod(pos, r, name, args)
	case Str:
		switch name {
		case "upper":
			in.arity(pos, name, args, 0, 0)
			return Str(strings.ToUpper(string(r)))
		case "lower":
			in.arity(pos, name, args, 0, 0)
			return Str(strings.ToLower(string(r)))
		}
	}
	in.fail(pos, "'%s' object has no attribute '%s'", recv.Type(), name)
	return nil
}

func (in *interp) listMethod(pos Pos, l *List, name string, args []Value) Value {
	switch name {
	case "append":
		in.arity(pos, name, args, 1, 1)
		in.checkLen(pos, len(l.Elems)+1)
		l.Elems = append(l.Elems, args[0])
		return None
	case "pop":
		in.arity(pos, name, args, 0, 1)
		if len(l.Elems) == 0 {
			in.fail(pos, "pop from empty list")
		}
		i := len(l.Elems) - 1
		if len(args) == 1 {
			n := in.intArg(pos, name, args[0])
			if n < 0 {
				n += int64(len(l.Elems))
			}
			if n < 0 || n >= int64(len(l.Elems)) {
				in.fail(pos, "pop index out of range")
			}
			i = int(n)
		}
		v := l.Elems[i]
		l.Elems = append(l.Elems[:i], l.Elems[i+1:]...)
		return v
	case "insert":
		in.arity(pos, name, args, 2, 2)
		in.checkLen(pos, len(l.Elems)+1)
		n := in.intArg(pos, name, args[0])
		size := int64(len(l.Elems))
		if n < 0 {
			n += size
			if n < 0 {
				n = 0
			}
		}
		if n > size {
			n = size
		}
		l.Elems = append(l.Elems, nil)
		copy(l.Elems[n+1:], l.Elems[n:])
		l.Elems[n] = args[1]
		return None
	case "index":
		in.arity(pos, name, args, 1, 1)
		i := in.indexOf(pos, l.Elems, args[0])
		if i < 0 {
			in.fail(pos, "%s is not in list", in.repr(pos, args[0]))
		}
		return Int(i)
	case "count":
		in.arity(pos, name, args, 1, 1)
		n := 0
		w := in.walk(pos)
		for _, el := range l.Elems {
			if w.equal(el, args[0], 0) {
				n++
			}
		}
		return Int(n)
	}
	in.fail(pos, "'list' object has no attribute '%s'", name)
	return nil
}

func (in *interp) dictMethod(pos Pos, d *Dict, name string, args []Value) Value {
	switch name {
	case "get":
		in.arity(pos, name, args, 1, 2)
		hk, ok := in.hashKey(pos, args[0])
		if !ok {
			in.fail(pos, "unhashable type: '%s'", args[0].Type())
		}
		if v, found := d.lookup(hk); found {
			return v
		}
		if len(args) == 2 {
			return args[1]
		}
		return None
	case "keys":
		in.arity(pos, name, args, 0, 0)
		return &List{Elems: d.Keys()}
	case "values":
		in.arity(pos, name, args, 0, 0)
		return &List{Elems: d.Values()}
	case "items":
		in.arity(pos, name, args, 0, 0)
		out := make([]Value, d.Len())
		for i := range d.keys {
			out[i] = Tuple{d.keys[i], d.vals[i]}
		}
		return &List{Elems: out}
	}
	in.fail(pos, "'dict' object has no attribute '%s'", name)
	return nil
}
