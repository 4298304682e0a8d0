package script

import (
	"math"
	"strings"
)

func (in *interp) unary(pos Pos, op string, v Value) Value {
	switch op {
	case "not":
		return Bool(!Truthy(v))
	case "-":
		if n, ok := intOf(v); ok {
			if n == math.MinInt64 {
				in.fail(pos, "integer overflow")
			}
			return Int(-n)
		}
		if f, ok := v.(Float); ok {
			return -f
		}
	case "+":
		if n, ok := intOf(v); ok {
			return Int(n)
		}
		if f, ok := v.(Float); ok {
			return f
		}
	}
	in.fail(pos, "bad operand type for unary %s: '%s'", op, v.Type())
	return nil
}

func (in *interp) binop(pos Pos, op string, x, y Value) Value {
	switch op {
	case "+":
		switch a := x.(type) {
		case Str:
			if b, ok := y.(Str); ok {
				in.checkLen(pos, len(a)+len(b))
				return a + b
			}
		case *List:
			if b, ok := y.(*List); ok {
				in.checkLen(pos, len(a.Elems)+len(b.Elems))
				out := make([]Value, 0, len(a.Elems)+len(b.Elems))
				return &List{Elems: append(append(out, a.Elems...), b.Elems...)}
			}
		case Tuple:
			if b, ok := y.(Tuple); ok {
				in.checkLen(pos, len(a)+len(b))
				out := make(Tuple, 0, len(a)+len(b))
				return append(append(out, a...), b...)
			}
		}
	case "*":
		if n, ok := intOf(y); ok && !isNumber(x) {
			if v, ok := in.repeat(pos, x, n); ok {
				return v
			}
		}
		if n, ok := intOf(x); ok && !isNumber(y) {
			if v, ok := in.repeat(pos, y, n); ok {
				return v
			}
		}
	}
	if isNumber(x) && isNumber(y) {
		return in.arith(pos, op, x, y)
	}
	in.fail(pos, "unsupported operand type(s) for %s: '%s' and '%s'", op, x.Type(), y.Type())
	return nil
}

func (in *interp) repeat(pos Pos, seq Value, n int64) (Value, bool) {
	if n < 0 {
		n = 0
	}
	if l, ok := seqLen(seq); ok && (l == 0 || n == 0) {
		n = 0
	}
	switch s := seq.(type) {
	case Str:
		if len(s) > 0 && n > int64(in.cfg.limits.MaxCollection) {
			in.checkLen(pos, in.cfg.limits.MaxCollection+1)
		}
		in.checkLen(pos, len(s)*int(n))
		return Str(strings.Repeat(string(s), int(n))), true
	case *List:
		if len(s.Elems) > 0 && n > int64(in.cfg.limits.MaxCollection) {
			in.checkLen(pos, in.cfg.limits.MaxCollection+1)
		}
		in.checkLen(pos, len(s.Elems)*int(n))
		out := make([]Value, 0, len(s.Elems)*int(n))
		for i := int64(0); i < n; i++ {
			out = append(out, s.Elems...)
		}
		return &List{Elems: out}, true
	case Tuple:
		if len(s) > 0 && n > int64(in.cfg.limits.MaxCollection) {
			in.checkLen(pos, in.cfg.limits.MaxCollection+1)
		}
		in.checkLen(pos, len(s)*int(n))
		out := make(Tuple, 0, len(s)*int(n))
		for i := int64(0); i < n; i++ {
			out = append(out, s...)
		}
		return out, true
	}
	return nil, false
}

func seqLen(v Value) (int, bool) {
	switch s := v.(type) {
	case Str:
		return len(s), true
	case *List:
		return len(s.Elems), true
	case Tuple:
		return len(s), true
	}
	return 0, false
}

func (in *interp) arith(pos Pos, op string, x, y Value) Value {
	a, aInt := intOf(x)
	b, bInt := intOf(y)
	if aInt && bInt {
		switch op {
		case "+":
			r := a + b
			if (r > a) != (b > 0) {
				in.fail(pos, "integer overflow")
			}
			return Int(r)
		case "-":
			r := a - b
			if (r < a) != (b > 0) {
				in.fail(pos, "integer overflow")
			}
			return Int(r)
		case "*":
			return Int(in.mulInt(pos, a, b))
		case "/":
			if b == 0 {
				in.fail(pos, "division by zero")
			}
			return Float(float64(a) / float64(b))
		case "//":
			if b == 0 {
				in.fail(pos, "integer division or modulo by zero")
			}
			if a == math.MinInt64 && b == -1 {
				in.fail(pos, "integer overflow")
			}
			q := a / b
			if a%b != 0 && (a < 0) != (b < 0) {
				q--
			}
			return Int(q)
		case "%":
			if b == 0 {
				in.fail(pos, "integer division or modulo by zero")
			}
			r := a % b
			if r != 0 && (r < 0) != (b < 0) {
				r += b
			}
			return Int(r)
		case "**":
			if b < 0 {
				if a == 0 {
					in.fail(pos, "zero cannot be raised to a negative power")
				}
				return Float(math.Pow(float64(a), float64(b)))
			}
			return Int(in.powInt(pos, a, b))
		}
	}

	af, _ := floatOf(x)
	bf, _ := floatOf(y)
	switch op {
	case "+":
		return Float(af + bf)
	case "-":
		return Float(af - bf)
	case "*":
		return Float(af * bf)
	case "/":
		if bf == 0 {
			in.fail(pos, "float division by zero")
		}
		return Float(af / bf)
	case "//":
		if bf == 0 {
			in.fail(pos, "float floor division by zero")
		}
		return Float(math.Floor(af / bf))
	case "%":
		if bf == 0 {
			in.fail(pos, "float modulo")
		}
		r := math.Mod(af, bf)
		if r != 0 && (r < 0) != (bf < 0) {
			r += bf
		}
		return Float(r)
	case "**":
		if af == 0 && bf < 0 {
			in.fail(pos, "zero cannot be raised to a negative power")
		}
		if af < 0 && bf != math.Trunc(bf) {
			in.fail(pos, "negative number cannot be raised to a fractional power")
		}
		return Float(math.Pow(af, bf))
	}
	in.fail(pos, "unsupported operator %s", op)
	return nil
}

func (in *interp) mulInt(pos Pos, a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	r := a * b
	if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		in.fail(pos, "integer overflow")
	}
	return r
}

func (in *interp) powInt(pos Pos, base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result = in.mulInt(pos, result, base)
		}
		exp >>= 1
		if exp > 0 {
			base = in.mulInt(pos, base, base)
		}
	}
	return result
}

func (in *interp) compare(pos Pos, op string, x, y Value) bool {
	switch op {
	case "==":
		return in.equal(pos, x, y)
	case "!=":
		return !in.equal(pos, x, y)
	case "is":
		return identical(x, y)
	case "is not":
		return !identical(x, y)
	case "in":
		return in.contains(pos, y, x)
	case "not in":
		return !in.contains(pos, y, x)
	}

	if isNumber(x) && isNumber(y) {
		af, _ := floatOf(x)
		bf, _ := floatOf(y)
		if math.IsNaN(af) || math.IsNaN(bf) {
			return false
		}
	}
	c := in.order(pos, op, x, y, 0)
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	default:
		return c >= 0
	}
}

// order returns -1, 0 or 1. Unorderable pairs are a runtime fault.
func (in *interp) order(pos Pos, op string, x, y Value, depth int) int {
	if depth > maxCompareDepth {
		in.fail(pos, "maximum recursion depth exceeded in comparison")
	}
	if isNumber(x) && isNumber(y) {
		a, aInt := intOf(x)
		b, bInt := intOf(y)
		if aInt && bInt {
			return cmp3(a < b, a > b)
		}
		af, _ := floatOf(x)
		bf, _ := floatOf(y)
		return cmp3(af < bf, af > bf)
	}
	switch a := x.(type) {
	case Str:
		if b, ok := y.(Str); ok {
			return strings.Compare(string(a), string(b))
		}
	case *List:
		if b, ok := y.(*List); ok {
			return in.orderSeq(pos, op, a.Elems, b.Elems, depth)
		}
	case Tuple:
		if b, ok := y.(Tuple); ok {
			return in.orderSeq(pos, op, a, b, depth)
		}
	}
	in.fail(pos, "'%s' not supported between instances of '%s' and '%s'", op, x.Type(), y.Type())
	return 0
}

func (in *interp) orderSeq(pos Pos, op string, a, b []Value, depth int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if !in.equal(pos, a[i], b[i]) {
			return in.order(pos, op, a[i], b[i], depth+1)
		}
	}
	return cmp3(len(a) < len(b), len(a) > len(b))
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	default:
		return 0
	}
}

func (in *interp) contains(pos Pos, container, item Value) bool {
	switch c := container.(type) {
	case *List:
		return in.indexOf(pos, c.Elems, item) >= 0
	case Tuple:
		return in.indexOf(pos, c, item) >= 0
	case Str:
		s, ok := item.(Str)
		if !ok {
			in.fail(pos, "'in <string>' requires string as left operand, not %s", item.Type())
		}
		return strings.Contains(string(c), string(s))
	case *Dict:
		hk, ok := in.hashKey(pos, item)
		if !ok {
			in.fail(pos, "unhashable type: '%s'", item.Type())
		}
		_, found := c.lookup(hk)
		return found
	case *Range:
		n, ok := intOf(item)
		if !ok {
			if f, isFloat := item.(Float); isFloat && float64(f) == math.Trunc(float64(f)) {
				n, ok = int64(f), true
			}
		}
		if !ok {
			return false
		}
		if c.Step > 0 && (n < c.Start || n >= c.Stop) || c.Step < 0 && (n > c.Start || n <= c.Stop) {
			return false
		}
		return (n-c.Start)%c.Step == 0
	}
	in.fail(pos, "argument of type '%s' is not iterable", container.Type())
	return false
}

func (in *interp) seqIndex(pos Pos, kind string, n int, key Value) int {
	i, ok := intOf(key)
	if !ok {
		in.fail(pos, "%s indices must be integers, not %s", kind, key.Type())
	}
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		in.fail(pos, "%s index out of range", kind)
	}
	return int(i)
}

func (in *interp) index(pos Pos, container, key Value) Value {
	switch c := container.(type) {
	case *List:
		return c.Elems[in.seqIndex(pos, "list", len(c.Elems), key)]
	case Tuple:
		return c[in.seqIndex(pos, "tuple", len(c), key)]
	case Str:
		rs := []rune(string(c))
		return Str(string(rs[in.seqIndex(pos, "string", len(rs), key)]))
	case *Range:
		n := c.Len()
		i := in.seqIndex(pos, "range object", int(n), key)
		return Int(c.Start + int64(i)*c.Step)
	case *Dict:
		hk, ok := in.hashKey(pos, key)
		if !ok {
			in.fail(pos, "unhashable type: '%s'", key.Type())
		}
		v, found := c.lookup(hk)
		if !found {
			in.fail(pos, "key %s not found", in.repr(pos, key))
		}
		return v
	}
	in.fail(pos, "'%s' object is not subscriptable", container.Type())
	return nil
}

func (in *interp) setIndex(pos Pos, container, key, v Value) {
	switch c := container.(type) {
	case *List:
		c.Elems[in.seqIndex(pos, "list", len(c.Elems), key)] = v
	case *Dict:
		in.dictSet(pos, c, key, v)
	default:
		in.fail(pos, "'%s' object does not support item assignment", container.Type())
	}
}

func (in *interp) dictSet(pos Pos, d *Dict, k, v Value) {
	hk, ok := in.hashKey(pos, k)
	if !ok {
		in.fail(pos, "unhashable type: '%s'", k.Type())
	}
	if _, exists := d.lookup(hk); !exists {
		in.checkLen(pos, d.Len()+1)
	}
	d.put(hk, k, v)
}

func (in *interp) slice(pos Pos, container Value, s *Slice, e *env) Value {
	bound := func(x Expr) (int64, bool) {
		if x == nil {
			return 0, false
		}
		v := in.eval(x, e)
		if _, isNone := v.(NoneType); isNone {
			return 0, false
		}
		n, ok := intOf(v)
		if !ok {
			in.fail(x.Position(), "slice indices must be integers or None")
		}
		return n, true
	}
	lo, hasLo := bound(s.Lo)
	hi, hasHi := bound(s.Hi)
	step, hasStep := bound(s.Step)
	if !hasStep {
		step = 1
	}
	if step == 0 {
		in.fail(pos, "slice step cannot be zero")
	}

	pick := func(n int) []int {
		start, stop := adjust(lo, hasLo, n, step, true), adjust(hi, hasHi, n, step, false)
		var idx []int
		for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
			idx = append(idx, int(i))
		}
		return idx
	}

	switch c := container.(type) {
	case *List:
		idx := pick(len(c.Elems))
		out := make([]Value, len(idx))
		for k, i := range idx {
			out[k] = c.Elems[i]
		}
		return &List{Elems: out}
	case Tuple:
		idx := pick(len(c))
		out := make(Tuple, len(idx))
		for k, i := range idx {
			out[k] = c[i]
		}
		return out
	case Str:
		rs := []rune(string(c))
		idx := pick(len(rs))
		out := make([]rune, len(idx))
		for k, i := range idx {
			out[k] = rs[i]
		}
		return Str(string(out))
	}
	in.fail(pos, "'%s' object is not subscriptable", container.Type())
	return nil
}

// adjust clamps a slice bound the way sequence slicing does.
func adjust(v int64, present bool, n int, step int64, isStart bool) int64 {
	size := int64(n)
	if !present {
		switch {
		case step > 0 && isStart:
			return 0
		case step > 0:
			return size
		case isStart:
			return size - 1
		default:
			return -1
		}
	}
	if v < 0 {
		v += size
		if v < 0 {
			if step < 0 {
				return -1
			}
			return 0
		}
	}
	if v >= size {
		if step < 0 {
			return size - 1
		}
		return size
	}
	return v
}

// iterate calls fn for each element of v until fn returns false.
func (in *interp) iterate(pos Pos, v Value, fn func(Value) bool) {
	switch c := v.(type) {
	case *List:
		snapshot := make([]Value, len(c.Elems))
		copy(snapshot, c.Elems)
		for _, el := range snapshot {
			if !fn(el) {
				return
			}
		}
	case Tuple:
		for _, el := range c {
			if !fn(el) {
				return
			}
		}
	case Str:
		for _, r := range string(c) {
			if !fn(Str(string(r))) {
				return
			}
		}
	case *Dict:
		for _, k := range c.Keys() {
			if !fn(k) {
				return
			}
		}
	case *Range:
		n := c.Len()
		for i := int64(0); i < n; i++ {
			if !fn(Int(c.Start + i*c.Step)) {
				return
			}
		}
	default:
		in.fail(pos, "'%s' object is not iterable", v.Type())
	}
}

// collect materializes an iterable, enforcing the collection limit.
func (in *interp) collect(pos Pos, v Value) []Value {
	if r, ok := v.(*Range); ok && r.Len() > int64(in.cfg.limits.MaxCollection) {
		in.checkLen(pos, in.cfg.limits.MaxCollection+1)
	}
	var out []Value
	in.iterate(pos, v, func(el Value) bool {
		out = append(out, el)
		in.checkLen(pos, len(out))
		return true
	})
	return out
}
