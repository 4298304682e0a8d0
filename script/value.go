package script

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a script value. The concrete types are NoneType, Bool, Int,
// Float, Str, Tuple, *List, *Dict, *Range, *Function and *Builtin.
type Value interface {
	Type() string
}

type (
	NoneType struct{}
	Bool     bool
	Int      int64
	Float    float64
	Str      string
	// Tuple is immutable once built.
	Tuple []Value
)

// List is a mutable sequence.
type List struct {
	Elems []Value
}

// Range is a lazy arithmetic progression.
type Range struct {
	Start, Stop, Step int64
}

// Function is a script-defined function closed over its defining scope.
type Function struct {
	Def      *FuncDef
	Defaults []Value
	env      *env
}

// Builtin is a host-provided function.
type Builtin struct {
	Name string
	fn   builtinFunc
}

var (
	None  Value = NoneType{}
	True  Value = Bool(true)
	False Value = Bool(false)
)

func (NoneType) Type() string  { return "NoneType" }
func (Bool) Type() string      { return "bool" }
func (Int) Type() string       { return "int" }
func (Float) Type() string     { return "float" }
func (Str) Type() string       { return "str" }
func (Tuple) Type() string     { return "tuple" }
func (*List) Type() string     { return "list" }
func (*Dict) Type() string     { return "dict" }
func (*Range) Type() string    { return "range" }
func (*Function) Type() string { return "function" }
func (*Builtin) Type() string  { return "builtin_function_or_method" }

// Len returns the number of elements in the range.
func (r *Range) Len() int64 {
	switch {
	case r.Step > 0 && r.Start < r.Stop:
		return (r.Stop - r.Start + r.Step - 1) / r.Step
	case r.Step < 0 && r.Start > r.Stop:
		return (r.Start - r.Stop - r.Step - 1) / -r.Step
	default:
		return 0
	}
}

// Dict is an insertion-ordered mapping with hashable keys.
type Dict struct {
	keys  []Value
	vals  []Value
	index map[string]int
}

// NewDict returns an empty dict.
func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []Value {
	out := make([]Value, len(d.keys))
	copy(out, d.keys)
	return out
}

// Values returns the values in insertion order.
func (d *Dict) Values() []Value {
	out := make([]Value, len(d.vals))
	copy(out, d.vals)
	return out
}

func (d *Dict) lookup(hk string) (Value, bool) {
	i, ok := d.index[hk]
	if !ok {
		return nil, false
	}
	return d.vals[i], true
}

func (d *Dict) put(hk string, k, v Value) {
	if i, ok := d.index[hk]; ok {
		d.vals[i] = v
		return
	}
	d.index[hk] = len(d.keys)
	d.keys = append(d.keys, k)
	d.vals = append(d.vals, v)
}

// Truthy reports the truth value of v.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case NoneType:
		return false
	case Bool:
		return bool(v)
	case Int:
		return v != 0
	case Float:
		return v != 0
	case Str:
		return v != ""
	case Tuple:
		return len(v) > 0
	case *List:
		return len(v.Elems) > 0
	case *Dict:
		return v.Len() > 0
	case *Range:
		return v.Len() > 0
	default:
		return true
	}
}

func intOf(v Value) (int64, bool) {
	switch v := v.(type) {
	case Int:
		return int64(v), true
	case Bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func floatOf(v Value) (float64, bool) {
	switch v := v.(type) {
	case Float:
		return float64(v), true
	case Int, Bool:
		n, _ := intOf(v)
		return float64(n), true
	default:
		return 0, false
	}
}

func isNumber(v Value) bool {
	_, ok := floatOf(v)
	return ok
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	case f == math.Trunc(f) && math.Abs(f) < 1e16:
		return strconv.FormatFloat(f, 'f', 1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

func quote(s string) string {
	q := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.WriteRune(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == q:
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(q)
	return b.String()
}
