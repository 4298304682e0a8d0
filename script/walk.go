package script

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxCompareDepth bounds structural recursion into nested containers.
const maxCompareDepth = 512

const (
	// maxWalkNodes bounds the elements one comparison, rendering or
	// hashing may visit.
	maxWalkNodes = 1 << 20

	// walkBatch is how many visited elements cost one step.
	walkBatch = 256

	// maxKeyLen bounds the canonical form of a dict key.
	maxKeyLen = 64 << 10
)

// walk meters a traversal of nested values. Tuples and lists may share
// elements, so a value built in a few steps can unfold into an
// exponentially large tree; every visited element is counted.
type walk struct {
	pos    Pos
	nodes  int
	limit  int
	size   int
	charge func()
}

func newWalk(pos Pos) *walk {
	return &walk{pos: pos, limit: maxWalkNodes}
}

func (w *walk) visit() {
	w.nodes++
	if w.nodes > w.limit {
		panic(errorf(BudgetError, w.pos, "value too large: more than %d nested elements", w.limit))
	}
	if w.charge != nil && w.nodes%walkBatch == 0 {
		w.charge()
	}
}

// hashKey returns a canonical key for hashable values. Numbers that compare
// equal share a key, so 1, 1.0 and True address the same entry.
func (w *walk) hashKey(v Value) (string, bool) {
	var b strings.Builder
	if !w.writeKey(&b, v, 0) {
		return "", false
	}
	return b.String(), true
}

func (w *walk) writeKey(b *strings.Builder, v Value, depth int) bool {
	w.visit()
	switch v := v.(type) {
	case NoneType:
		b.WriteByte('n')
	case Bool:
		if v {
			b.WriteString("i1")
		} else {
			b.WriteString("i0")
		}
	case Int:
		b.WriteByte('i')
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case Float:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<62 {
			b.WriteByte('i')
			b.WriteString(strconv.FormatInt(int64(f), 10))
		} else {
			b.WriteByte('f')
			b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		}
	case Str:
		b.WriteByte('s')
		b.WriteString(strconv.Quote(string(v)))
	case Tuple:
		if depth >= maxCompareDepth {
			panic(errorf(RuntimeError, w.pos, "maximum recursion depth exceeded while hashing"))
		}
		b.WriteString("t(")
		for i, el := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			if !w.writeKey(b, el, depth+1) {
				return false
			}
		}
		b.WriteByte(')')
	default:
		return false
	}
	if b.Len() > maxKeyLen {
		panic(errorf(BudgetError, w.pos, "dict key longer than %d bytes", maxKeyLen))
	}
	return true
}

// equal reports structural equality with numeric cross-type comparison.
// Containers compare equal to themselves without a traversal.
func (w *walk) equal(a, b Value, depth int) bool {
	if depth > maxCompareDepth {
		panic(errorf(RuntimeError, w.pos, "maximum recursion depth exceeded in comparison"))
	}
	w.visit()
	if isNumber(a) && isNumber(b) {
		ai, aInt := intOf(a)
		bi, bInt := intOf(b)
		if aInt && bInt {
			return ai == bi
		}
		af, _ := floatOf(a)
		bf, _ := floatOf(b)
		return af == bf
	}
	switch a := a.(type) {
	case NoneType:
		_, ok := b.(NoneType)
		return ok
	case Str:
		bs, ok := b.(Str)
		return ok && a == bs
	case Tuple:
		bt, ok := b.(Tuple)
		return ok && (sameTuple(a, bt) || w.equalSeq(a, bt, depth))
	case *List:
		bl, ok := b.(*List)
		return ok && (a == bl || w.equalSeq(a.Elems, bl.Elems, depth))
	case *Dict:
		bd, ok := b.(*Dict)
		if !ok || a.Len() != bd.Len() {
			return false
		}
		if a == bd {
			return true
		}
		for hk, i := range a.index {
			v, ok := bd.lookup(hk)
			if !ok || !w.equal(a.vals[i], v, depth+1) {
				return false
			}
		}
		return true
	case *Range:
		br, ok := b.(*Range)
		return ok && *a == *br
	case *Function:
		bf, ok := b.(*Function)
		return ok && a == bf
	case *Builtin:
		bb, ok := b.(*Builtin)
		return ok && a == bb
	default:
		return false
	}
}

func (w *walk) equalSeq(a, b []Value, depth int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !w.equal(a[i], b[i], depth+1) {
			return false
		}
	}
	return true
}

func sameTuple(a, b Tuple) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}

// identical implements "is": value identity for scalars, pointer identity
// for containers.
func identical(a, b Value) bool {
	switch a := a.(type) {
	case NoneType, Bool, Int, Float, Str:
		if a.Type() != b.Type() {
			return false
		}
		return newWalk(Pos{}).equal(a, b, 0)
	case Tuple:
		bt, ok := b.(Tuple)
		return ok && sameTuple(a, bt)
	case *List:
		bl, ok := b.(*List)
		return ok && a == bl
	case *Dict:
		bd, ok := b.(*Dict)
		return ok && a == bd
	case *Range:
		br, ok := b.(*Range)
		return ok && a == br
	case *Function:
		bf, ok := b.(*Function)
		return ok && a == bf
	case *Builtin:
		bb, ok := b.(*Builtin)
		return ok && a == bb
	default:
		return false
	}
}

// reprFull stops a rendering that reached its size budget.
type reprFull struct{}

// repr returns the literal form of v. Output past the size budget is cut
// and marked with "...".
func (w *walk) repr(v Value) (s string) {
	var b strings.Builder
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(reprFull); !ok {
				panic(r)
			}
			s = b.String()
			if len(s) > w.size {
				s = s[:w.size]
			}
			s += "..."
		}
	}()
	w.writeRepr(&b, v, make(map[any]bool), 0)
	return b.String()
}

// str returns the print form of v.
func (w *walk) str(v Value) string {
	if s, ok := v.(Str); ok {
		return string(s)
	}
	return w.repr(v)
}

func (w *walk) writeRepr(b *strings.Builder, v Value, seen map[any]bool, depth int) {
	w.visit()
	if w.size > 0 && b.Len() > w.size {
		panic(reprFull{})
	}
	switch v := v.(type) {
	case NoneType:
		b.WriteString("None")
	case Bool:
		if v {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case Int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case Float:
		b.WriteString(formatFloat(float64(v)))
	case Str:
		b.WriteString(quote(string(v)))
	case Tuple:
		if depth > maxCompareDepth {
			b.WriteString("(...)")
			return
		}
		b.WriteByte('(')
		for i, el := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			w.writeRepr(b, el, seen, depth+1)
		}
		if len(v) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case *List:
		if seen[v] || depth > maxCompareDepth {
			b.WriteString("[...]")
			return
		}
		seen[v] = true
		defer delete(seen, v)
		b.WriteByte('[')
		for i, el := range v.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			w.writeRepr(b, el, seen, depth+1)
		}
		b.WriteByte(']')
	case *Dict:
		if seen[v] || depth > maxCompareDepth {
			b.WriteString("{...}")
			return
		}
		seen[v] = true
		defer delete(seen, v)
		b.WriteByte('{')
		for i := range v.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			w.writeRepr(b, v.keys[i], seen, depth+1)
			b.WriteString(": ")
			w.writeRepr(b, v.vals[i], seen, depth+1)
		}
		b.WriteByte('}')
	case *Range:
		if v.Step == 1 {
			fmt.Fprintf(b, "range(%d, %d)", v.Start, v.Stop)
		} else {
			fmt.Fprintf(b, "range(%d, %d, %d)", v.Start, v.Stop, v.Step)
		}
	case *Function:
		fmt.Fprintf(b, "<function %s>", v.Def.Name)
	case *Builtin:
		fmt.Fprintf(b, "<built-in function %s>", v.Name)
	default:
		fmt.Fprintf(b, "<%T>", v)
	}
}

// walk returns a traversal charged to the run's step and time budgets.
// Renderings are cut at the output limit.
func (in *interp) walk(pos Pos) *walk {
	w := newWalk(pos)
	w.size = in.cfg.limits.MaxOutput
	w.charge = func() { in.tick(pos) }
	return w
}

func (in *interp) equal(pos Pos, a, b Value) bool {
	return in.walk(pos).equal(a, b, 0)
}

func (in *interp) hashKey(pos Pos, v Value) (string, bool) {
	return in.walk(pos).hashKey(v)
}

func (in *interp) repr(pos Pos, v Value) string {
	return in.walk(pos).repr(v)
}

func (in *interp) str(pos Pos, v Value) string {
	return in.walk(pos).str(v)
}

func (in *interp) indexOf(pos Pos, elems []Value, item Value) int {
	w := in.walk(pos)
	for i, el := range elems {
		if w.equal(el, item, 0) {
			return i
		}
	}
	return -1
}
