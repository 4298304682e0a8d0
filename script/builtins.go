package script

import (
	"math"
	"strings"

	"github.com/jonwraymond/botexec/capability"
)

type builtinFunc func(in *interp, pos Pos, args []Value, kws []kwArg) Value

// Utilities lists the non-capability functions callable from scripts.
var Utilities = []string{"print", "len", "range", "enumerate", "zip", "min", "max", "sum", "abs", "round"}

var utilityFuncs = map[string]builtinFunc{
	"print":     builtinPrint,
	"len":       builtinLen,
	"range":     builtinRange,
	"enumerate": builtinEnumerate,
	"zip":       builtinZip,
	"min": func(in *interp, pos Pos, args []Value, kws []kwArg) Value {
		return in.extreme(pos, "min", args, kws, -1)
	},
	"max": func(in *interp, pos Pos, args []Value, kws []kwArg) Value {
		return in.extreme(pos, "max", args, kws, 1)
	},
	"sum":   builtinSum,
	"abs":   builtinAbs,
	"round": builtinRound,
}

func (in *interp) builtinEnv() *env {
	e := newEnv(nil)
	for name, fn := range utilityFuncs {
		e.set(name, &Builtin{Name: name, fn: fn})
	}
	for _, op := range capability.All() {
		op := op
		e.set(op.String(), &Builtin{
			Name: op.String(),
			fn: func(in *interp, pos Pos, args []Value, kws []kwArg) Value {
				return in.invoke(pos, op, args, kws)
			},
		})
	}
	return e
}

func (in *interp) arity(pos Pos, name string, args []Value, lo, hi int) {
	switch {
	case len(args) < lo && lo == hi:
		in.fail(pos, "%s() takes exactly %d argument(s) (%d given)", name, lo, len(args))
	case len(args) < lo:
		in.fail(pos, "%s() takes at least %d argument(s) (%d given)", name, lo, len(args))
	case hi >= 0 && len(args) > hi:
		in.fail(pos, "%s() takes at most %d argument(s) (%d given)", name, hi, len(args))
	}
}

func (in *interp) noKeywords(pos Pos, name string, kws []kwArg) {
	if len(kws) > 0 {
		in.fail(pos, "%s() got an unexpected keyword argument '%s'", name, kws[0].name)
	}
}

// keyword extracts the named keyword argument, rejecting any other.
func (in *interp) keyword(pos Pos, fn string, kws []kwArg, allowed ...string) map[string]Value {
	out := make(map[string]Value, len(kws))
	for _, kw := range kws {
		ok := false
		for _, a := range allowed {
			if kw.name == a {
				ok = true
				break
			}
		}
		if !ok {
			in.fail(pos, "%s() got an unexpected keyword argument '%s'", fn, kw.name)
		}
		out[kw.name] = kw.value
	}
	return out
}

func (in *interp) intArg(pos Pos, fn string, v Value) int64 {
	n, ok := intOf(v)
	if !ok {
		in.fail(pos, "%s() argument must be an integer, not '%s'", fn, v.Type())
	}
	return n
}

func builtinPrint(in *interp, pos Pos, args []Value, kws []kwArg) Value {
	opts := in.keyword(pos, "print", kws, "sep", "end")
	sep, end := " ", "\n"
	if v, ok := opts["sep"]; ok {
		sep = in.optStr(pos, "sep", v, sep)
	}
	if v, ok := opts["end"]; ok {
		end = in.optStr(pos, "end", v, end)
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = in.str(pos, a)
	}
	in.out.write(strings.Join(parts, sep) + end)
	return None
}

func (in *interp) optStr(pos Pos, name string, v Value, def string) string {
	switch s := v.(type) {
	case NoneType:
		return def
	case Str:
		return string(s)
	}
	in.fail(pos, "%s must be None or a string, not %s", name, v.Type())
	return ""
}

func builtinLen(in *interp, pos Pos, args []Value, kws []kwArg) Value {
	in.noKeywords(pos, "len", kws)
	in.arity(pos, "len", args, 1, 1)
	switch v := args[0].(type) {
	case Str:
		return Int(len([]rune(string(v))))
	case *List:
		return Int(len(v.Elems))
	case Tuple:
		return Int(len(v))
	case *Dict:
		return Int(v.Len())
	case *Range:
		return Int(v.Len())
	}
	in.fail(pos, "object of type '%s' has no len()", args[0].Type())
	return nil
}

func builtinRange(in *interp, pos Pos, args []Value, kws []kwArg) Value {
	in.noKeywords(pos, "range", kws)
	in.arity(pos, "range", args, 1, 3)
	r := &Range{Step: 1}
	switch len(args) {
	case 1:
		r.Stop = in.intArg(pos, "range", args[0])
	default:
		r.Start = in.intArg(pos, "range", args[0])
		r.Stop = in.intArg(pos, "range", args[1])
		if len(args) == 3 {
			r.Step = in.intArg(pos, "range", args[2])
		}
	}
	if r.Step == 0 {
		in.fail(pos, "range() arg 3 must not be zero")
	}
	if r.Len() > int64(in.cfg.limits.MaxCollection) {
		in.checkLen(pos, in.cfg.limits.MaxCollection+1)
	}
	return r
}

func builtinEnumerate(in *interp, pos Pos, args []Value, kws []kwArg) Value {
	opts := in.keyword(pos, "enumerate", kws, "start")
	in.arity(pos, "enumerate", args, 1, 2)
	start := int64(0)
	if len(args) == 2 {
		start = in.intArg(pos, "enumerate", args[1])
	} else if v, ok := opts["start"]; ok {
		start = in.intArg(pos, "enumerate", v)
	}
	items := in.collect(pos, args[0])
	out := make([]Value, len(items))
	for i, v := range items {
		out[i] = Tuple{Int(start + int64(i)), v}
	}
	return &List{Elems: out}
}

func builtinZip(in *interp, pos Pos, args []Value, kws []kwArg) Value {
	in.noKeywords(pos, "zip", kws)
	if len(args) == 0 {
		return &List{}
	}
	cols := make([][]Value, len(args))
	n := -1
	for i, a := range args {
		cols[i] = in.collect(pos, a)
		if n < 0 || len(cols[i]) < n {
			n = len(cols[i])
		}
	}
	out := make([]Value, n)
	for r := 0; r < n; r++ {
		row := make(Tuple, len(cols))
		for c := range cols {
			row[c] = cols[c][r]
		}
		out[r] = row
	}
	return &List{Elems: out}
}

func (in *interp) extreme(pos Pos, name string, args []Value, kws []kwArg, sign int) Value {
	opts := in.keyword(pos, name, kws, "default")
	in.arity(pos, name, args, 1, -1)
	items := args
	if len(args) == 1 {
		items = in.collect(pos, args[0])
	}
	if len(items) == 0 {
		if d, ok := opts["default"]; ok {
			return d
		}
		in.fail(pos, "%s() arg is an empty sequence", name)
	}
	best := items[0]
	for _, v := range items[1:] {
		if in.order(pos, "<", v, best, 0)*sign > 0 {
			best = v
		}
	}
	return best
}

func builtinSum(in *interp, pos Pos, args []Value, kws []kwArg) Value {
	opts := in.keyword(pos, "sum", kws, "start")
	in.arity(pos, "sum", args, 1, 2)
	var total Value = Int(0)
	if len(args) == 2 {
		total = args[1]
	} else if v, ok := opts["start"]; ok {
		total = v
	}
	if _, isStr := total.(Str); isStr {
		in.fail(pos, "sum() can't sum strings")
	}
	for _, v := range in.collect(pos, args[0]) {
		total = in.binop(pos, "+", total, v)
	}
	return total
}

func builtinAbs(in *interp, pos Pos, args []Value, kws []kwArg) Value {
	in.noKeywords(pos, "abs", kws)
	in.arity(pos, "abs", args, 1, 1)
	switch v := args[0].(type) {
	case Float:
		return Float(math.Abs(float64(v)))
	case Int, Bool:
		n, _ := intOf(v)
		if n < 0 {
			return in.unary(pos, "-", Int(n))
		}
		return Int(n)
	}
	in.fail(pos, "bad operand type for abs(): '%s'", args[0].Type())
	return nil
}

func builtinRound(in *interp, pos Pos, args []Value, kws []kwArg) Value {
	opts := in.keyword(pos, "round", kws, "ndigits")
	in.arity(pos, "round", args, 1, 2)
	var nd Value = None
	if len(args) == 2 {
		nd = args[1]
	} else if v, ok := opts["ndigits"]; ok {
		nd = v
	}

	if n, ok := intOf(args[0]); ok {
		return Int(n)
	}
	f, ok := args[0].(Float)
	if !ok {
		in.fail(pos, "type %s doesn't define __round__ method", args[0].Type())
	}
	if _, isNone := nd.(NoneType); isNone {
		r := math.RoundToEven(float64(f))
		if math.IsNaN(r) || math.IsInf(r, 0) || math.Abs(r) >= 1<<63 {
			in.fail(pos, "cannot convert float %s to integer", formatFloat(float64(f)))
		}
		return Int(int64(r))
	}
	digits := in.intArg(pos, "round", nd)
	p := math.Pow(10, float64(digits))
	return Float(math.RoundToEven(float64(f)*p) / p)
}
