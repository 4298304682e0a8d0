package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonwraymond/botexec/capability"
)

// Host performs capability calls on behalf of a running script.
// *capability.Surface satisfies it.
type Host interface {
	Invoke(ctx context.Context, op capability.Op) (capability.Result, error)
}

// Outcome summarizes a run, including one that failed part way.
type Outcome struct {
	Stdout    string
	Truncated bool
	Steps     int
	Actions   int
}

// Run executes prog against host. The namespace holds exactly the
// capabilities and the utility functions; nothing else is reachable.
//
// Contract:
//   - Context: ctx is checked at every step and passed to host.
//   - Errors: failures are *Error of kind RuntimeError or BudgetError.
//     The Outcome is populated even when err is non-nil.
//   - Panics: a panic inside the interpreter is reported as a RuntimeError.
func Run(ctx context.Context, prog *Program, host Host, opts ...Option) (out Outcome, err error) {
	cfg := newRunConfig(opts)
	in := &interp{
		ctx:  ctx,
		host: host,
		cfg:  cfg,
		out:  &output{limit: cfg.limits.MaxOutput, tee: cfg.stdout},
	}
	in.deadline = cfg.now().Add(cfg.limits.Timeout)
	in.globals = newEnv(in.builtinEnv())

	defer func() {
		if r := recover(); r != nil {
			out = in.outcome()
			if e, ok := r.(*Error); ok {
				err = e
				return
			}
			err = &Error{Kind: RuntimeError, Msg: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	if prog == nil {
		return in.outcome(), nil
	}
	in.tick(Pos{})
	in.execBlock(prog.Body, in.globals)
	return in.outcome(), nil
}

type interp struct {
	ctx      context.Context
	host     Host
	cfg      runConfig
	deadline time.Time
	globals  *env
	out      *output
	steps    int
	depth    int
	actions  int
}

type env struct {
	vars   map[string]Value
	parent *env
}

func newEnv(parent *env) *env {
	return &env{vars: make(map[string]Value), parent: parent}
}

func (e *env) lookup(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *env) set(name string, v Value) {
	e.vars[name] = v
}

type output struct {
	buf       strings.Builder
	limit     int
	truncated bool
	tee       io.Writer
}

func (o *output) write(s string) {
	if o.tee != nil {
		_, _ = io.WriteString(o.tee, s)
	}
	if room := o.limit - o.buf.Len(); len(s) > room {
		if room > 0 {
			o.buf.WriteString(s[:room])
		}
		o.truncated = true
		return
	}
	o.buf.WriteString(s)
}

func (in *interp) outcome() Outcome {
	return Outcome{
		Stdout:    in.out.buf.String(),
		Truncated: in.out.truncated,
		Steps:     in.steps,
		Actions:   in.actions,
	}
}

func (in *interp) fail(pos Pos, format string, args ...any) {
	panic(errorf(RuntimeError, pos, format, args...))
}

func (in *interp) exceed(pos Pos, cause error, format string, args ...any) {
	e := errorf(BudgetError, pos, format, args...)
	e.Err = cause
	panic(e)
}

// tick charges one step and checks every preemptive budget.
func (in *interp) tick(pos Pos) {
	in.steps++
	if in.steps > in.cfg.limits.MaxSteps {
		in.exceed(pos, nil, "step limit of %d exceeded", in.cfg.limits.MaxSteps)
	}
	if err := in.ctx.Err(); err != nil {
		in.exceed(pos, err, "run cancelled: %v", err)
	}
	if in.cfg.now().After(in.deadline) {
		in.exceed(pos, context.DeadlineExceeded, "time limit of %s exceeded", in.cfg.limits.Timeout)
	}
}

func (in *interp) checkLen(pos Pos, n int) {
	if n > in.cfg.limits.MaxCollection {
		in.exceed(pos, nil, "collection size limit of %d exceeded", in.cfg.limits.MaxCollection)
	}
}

type flow uint8

const (
	flowNormal flow = iota
	flowBreak
	flowContinue
	flowReturn
)

func (in *interp) execBlock(body []Stmt, e *env) (flow, Value) {
	for _, s := range body {
		if f, v := in.exec(s, e); f != flowNormal {
			return f, v
		}
	}
	return flowNormal, nil
}

func (in *interp) exec(s Stmt, e *env) (flow, Value) {
	switch s := s.(type) {
	case *ExprStmt:
		in.eval(s.X, e)
	case *Assign:
		v := in.eval(s.Value, e)
		for _, t := range s.Targets {
			in.assign(t, v, e)
		}
	case *AugAssign:
		in.augAssign(s, e)
	case *If:
		if Truthy(in.eval(s.Test, e)) {
			return in.execBlock(s.Body, e)
		}
		return in.execBlock(s.Else, e)
	case *While:
		for {
			in.tick(s.Pos)
			if !Truthy(in.eval(s.Test, e)) {
				break
			}
			f, v := in.execBlock(s.Body, e)
			if f == flowBreak {
				break
			}
			if f == flowReturn {
				return f, v
			}
		}
	case *For:
		return in.forLoop(s, e)
	case *FuncDef:
		fn := &Function{Def: s, env: e}
		for _, p := range s.Params {
			if p.Default != nil {
				fn.Defaults = append(fn.Defaults, in.eval(p.Default, e))
			} else {
				fn.Defaults = append(fn.Defaults, nil)
			}
		}
		e.set(s.Name, fn)
	case *Return:
		if s.Value == nil {
			return flowReturn, None
		}
		return flowReturn, in.eval(s.Value, e)
	case *Break:
		return flowBreak, nil
	case *Continue:
		return flowContinue, nil
	case *Pass:
	case *Raise:
		if s.Exc == nil {
			in.fail(s.Pos, "exception raised")
		}
		in.fail(s.Pos, "%s", in.str(s.Pos, in.eval(s.Exc, e)))
	case *Assert:
		if !Truthy(in.eval(s.Test, e)) {
			if s.Msg != nil {
				in.fail(s.Pos, "assertion failed: %s", in.str(s.Pos, in.eval(s.Msg, e)))
			}
			in.fail(s.Pos, "assertion failed")
		}
	case *Import, *ImportFrom:
		in.fail(s.Position(), "import is not allowed")
	default:
		in.fail(s.Position(), "unsupported statement %T", s)
	}
	return flowNormal, nil
}

func (in *interp) forLoop(s *For, e *env) (flow, Value) {
	var (
		result flow
		ret    Value
	)
	in.iterate(s.Iter.Position(), in.eval(s.Iter, e), func(v Value) bool {
		in.tick(s.Pos)
		in.assign(s.Target, v, e)
		f, rv := in.execBlock(s.Body, e)
		switch f {
		case flowBreak:
			return false
		case flowReturn:
			result, ret = flowReturn, rv
			return false
		}
		return true
	})
	return result, ret
}

func (in *interp) assign(target Expr, v Value, e *env) {
	switch t := target.(type) {
	case *Name:
		e.set(t.ID, v)
	case *Index:
		if _, ok := t.Index.(*Slice); ok {
			in.fail(t.Pos, "slice assignment is not supported")
		}
		in.setIndex(t.Pos, in.eval(t.X, e), in.eval(t.Index, e), v)
	case *TupleExpr:
		in.unpackInto(t.Pos, t.Elts, v, e)
	case *ListExpr:
		in.unpackInto(t.Pos, t.Elts, v, e)
	default:
		in.fail(target.Position(), "cannot assign to expression")
	}
}

func (in *interp) unpackInto(pos Pos, targets []Expr, v Value, e *env) {
	items := in.collect(pos, v)
	if len(items) > len(targets) {
		in.fail(pos, "too many values to unpack (expected %d)", len(targets))
	}
	if len(items) < len(targets) {
		in.fail(pos, "not enough values to unpack (expected %d, got %d)", len(targets), len(items))
	}
	for i, t := range targets {
		in.assign(t, items[i], e)
	}
}

func (in *interp) augAssign(s *AugAssign, e *env) {
	switch t := s.Target.(type) {
	case *Name:
		cur, ok := e.lookup(t.ID)
		if !ok {
			in.fail(t.Pos, "name '%s' is not defined", t.ID)
		}
		rhs := in.eval(s.Value, e)
		if l, ok := cur.(*List); ok && s.Op == "+" {
			// In-place extend keeps aliases in sync.
			items := in.collect(s.Pos, rhs)
			in.checkLen(s.Pos, len(l.Elems)+len(items))
			l.Elems = append(l.Elems, items...)
			e.set(t.ID, l)
			return
		}
		e.set(t.ID, in.binop(s.Pos, s.Op, cur, rhs))
	case *Index:
		container := in.eval(t.X, e)
		key := in.eval(t.Index, e)
		cur := in.index(t.Pos, container, key)
		in.setIndex(t.Pos, container, key, in.binop(s.Pos, s.Op, cur, in.eval(s.Value, e)))
	default:
		in.fail(s.Pos, "illegal target for augmented assignment")
	}
}

func (in *interp) eval(x Expr, e *env) Value {
	switch x := x.(type) {
	case *Name:
		v, ok := e.lookup(x.ID)
		if !ok {
			in.fail(x.Pos, "name '%s' is not defined", x.ID)
		}
		return v
	case *Const:
		return x.Value
	case *ListExpr:
		in.checkLen(x.Pos, len(x.Elts))
		return &List{Elems: in.evalAll(x.Elts, e)}
	case *TupleExpr:
		in.checkLen(x.Pos, len(x.Elts))
		return Tuple(in.evalAll(x.Elts, e))
	case *DictExpr:
		in.checkLen(x.Pos, len(x.Keys))
		d := NewDict()
		for i := range x.Keys {
			k := in.eval(x.Keys[i], e)
			v := in.eval(x.Values[i], e)
			in.dictSet(x.Keys[i].Position(), d, k, v)
		}
		return d
	case *Call:
		return in.call(x, e)
	case *Attribute:
		in.fail(x.Pos, "attribute '%s' can only be used as a method call", x.Attr)
	case *Index:
		container := in.eval(x.X, e)
		if sl, ok := x.Index.(*Slice); ok {
			return in.slice(x.Pos, container, sl, e)
		}
		return in.index(x.Pos, container, in.eval(x.Index, e))
	case *Slice:
		in.fail(x.Pos, "slice outside of subscript")
	case *BoolOp:
		l := in.eval(x.X, e)
		if (x.Op == "and") != Truthy(l) {
			return l
		}
		return in.eval(x.Y, e)
	case *Unary:
		return in.unary(x.Pos, x.Op, in.eval(x.X, e))
	case *Binary:
		l := in.eval(x.X, e)
		r := in.eval(x.Y, e)
		return in.binop(x.Pos, x.Op, l, r)
	case *Compare:
		l := in.eval(x.X, e)
		for i, op := range x.Ops {
			r := in.eval(x.Rest[i], e)
			if !in.compare(x.Pos, op, l, r) {
				return False
			}
			l = r
		}
		return True
	case *CondExpr:
		if Truthy(in.eval(x.Test, e)) {
			return in.eval(x.Body, e)
		}
		return in.eval(x.Else, e)
	}
	in.fail(x.Position(), "unsupported expression %T", x)
	return nil
}

func (in *interp) evalAll(xs []Expr, e *env) []Value {
	out := make([]Value, len(xs))
	for i, x := range xs {
		out[i] = in.eval(x, e)
	}
	return out
}

type kwArg struct {
	name  string
	value Value
}

func (in *interp) call(c *Call, e *env) Value {
	in.tick(c.Pos)

	if attr, ok := c.Func.(*Attribute); ok {
		recv := in.eval(attr.X, e)
		args := in.evalAll(c.Args, e)
		if len(c.Keywords) > 0 {
			in.fail(c.Keywords[0].Pos, "%s.%s() takes no keyword arguments", recv.Type(), attr.Attr)
		}
		return in.callMethod(attr.Pos, recv, attr.Attr, args)
	}

	fn := in.eval(c.Func, e)
	args := in.evalAll(c.Args, e)
	var kws []kwArg
	for _, kw := range c.Keywords {
		kws = append(kws, kwArg{name: kw.Name, value: in.eval(kw.Value, e)})
	}

	switch f := fn.(type) {
	case *Builtin:
		return f.fn(in, c.Pos, args, kws)
	case *Function:
		return in.callFunction(c.Pos, f, args, kws)
	default:
		in.fail(c.Pos, "'%s' object is not callable", fn.Type())
		return nil
	}
}

func (in *interp) callFunction(pos Pos, f *Function, args []Value, kws []kwArg) Value {
	in.depth++
	defer func() { in.depth-- }()
	if in.depth > in.cfg.limits.MaxDepth {
		in.exceed(pos, nil, "maximum call depth of %d exceeded", in.cfg.limits.MaxDepth)
	}

	params := f.Def.Params
	if len(args) > len(params) {
		in.fail(pos, "%s() takes %d positional arguments but %d were given", f.Def.Name, len(params), len(args))
	}
	local := newEnv(f.env)
	bound := make([]bool, len(params))
	for i, a := range args {
		local.set(params[i].Name, a)
		bound[i] = true
	}
	for _, kw := range kws {
		idx := -1
		for i, p := range params {
			if p.Name == kw.name {
				idx = i
				break
			}
		}
		if idx < 0 {
			in.fail(pos, "%s() got an unexpected keyword argument '%s'", f.Def.Name, kw.name)
		}
		if bound[idx] {
			in.fail(pos, "%s() got multiple values for argument '%s'", f.Def.Name, kw.name)
		}
		local.set(kw.name, kw.value)
		bound[idx] = true
	}
	for i, p := range params {
		if bound[i] {
			continue
		}
		if f.Defaults[i] == nil {
			in.fail(pos, "%s() missing required argument '%s'", f.Def.Name, p.Name)
		}
		local.set(p.Name, f.Defaults[i])
	}

	if fl, v := in.execBlock(f.Def.Body, local); fl == flowReturn {
		return v
	}
	return None
}

func (in *interp) invoke(pos Pos, op capability.Op, args []Value, kws []kwArg) Value {
	if len(args) > 0 || len(kws) > 0 {
		in.fail(pos, "%s() takes no arguments (%d given)", op, len(args)+len(kws))
	}
	if in.host == nil {
		in.fail(pos, "%s() is unavailable: no capability host", op)
	}
	if in.actions >= in.cfg.limits.MaxActions {
		in.exceed(pos, nil, "capability call limit of %d exceeded", in.cfg.limits.MaxActions)
	}
	in.actions++

	res, err := in.host.Invoke(in.ctx, op)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			in.exceed(pos, err, "run cancelled: %v", err)
		}
		panic(&Error{Kind: RuntimeError, Pos: pos, Msg: fmt.Sprintf("%s(): %v", op, err), Err: err})
	}
	return fromResult(res)
}

func fromResult(r capability.Result) Value {
	switch r.Kind {
	case capability.ResultBool:
		return Bool(r.Bool)
	case capability.ResultInt:
		return Int(r.Int)
	case capability.ResultString:
		return Str(r.Str)
	case capability.ResultPosition:
		return Tuple{Int(r.Pos.X), Int(r.Pos.Y)}
	default:
		return None
	}
}
