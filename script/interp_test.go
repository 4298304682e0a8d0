package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/botexec/capability"
	"github.com/jonwraymond/botexec/world"
)

// fakeHost records invocations and returns canned results.
type fakeHost struct {
	calls   []capability.Op
	results map[capability.Op]capability.Result
	err     error
	panics  bool
}

func (h *fakeHost) Invoke(_ context.Context, op capability.Op) (capability.Result, error) {
	if h.panics {
		panic("host exploded")
	}
	h.calls = append(h.calls, op)
	if h.err != nil {
		return capability.Result{}, h.err
	}
	return h.results[op], nil
}

func runSrc(t *testing.T, src string, host Host, opts ...Option) (Outcome, error) {
	t.Helper()
	prog, err := Parse(src)
	require.NoError(t, err)
	return Run(context.Background(), prog, host, opts...)
}

func stdout(t *testing.T, src string) string {
	t.Helper()
	out, err := runSrc(t, src, nil)
	require.NoError(t, err)
	return out.Stdout
}

func TestRun_Output(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "integer arithmetic",
			src:  "print(7 // 2, -7 // 2, 7 % -3, 2 ** 10, 7 / 2, 1 + 2.5)\n",
			want: "3 -4 -2 1024 3.5 3.5\n",
		},
		{
			name: "float formatting",
			src:  "print(2.0, 0.1 + 0.2, 1e20, -0.5)\n",
			want: "2.0 0.30000000000000004 1e+20 -0.5\n",
		},
		{
			name: "strings",
			src:  "s = 'ab' * 3\nprint(s, len(s), s[-1], s[1:3], s.upper(), 'AB'.lower())\n",
			want: "ababab 6 b ba ABABAB ab\n",
		},
		{
			name: "list methods",
			src: "xs = [3, 1, 2]\nxs.append(5)\nxs.insert(0, 9)\nprint(xs)\nprint(xs.pop())\n" +
				"print(xs.index(1), xs.count(3), min(xs), max(xs), sum(xs))\nprint(xs[1:], xs[::-1])\n",
			want: "[9, 3, 1, 2, 5]\n5\n2 1 1 9 15\n[3, 1, 2] [2, 1, 3, 9]\n",
		},
		{
			name: "dicts",
			src: "d = {'a': 1}\nd['b'] = 2\nd['a'] += 10\nprint(d, d.get('c', 0), d.get('a'), 'b' in d, len(d))\n" +
				"print(d.keys(), d.items())\n",
			want: "{'a': 11, 'b': 2} 0 11 True 2\n['a', 'b'] [('a', 11), ('b', 2)]\n",
		},
		{
			name: "tuples and unpacking",
			src:  "a, b = (1, 2)\na, b = b, a\nprint(a, b, (1,), ())\n",
			want: "2 1 (1,) ()\n",
		},
		{
			name: "for loops",
			src: "total = 0\nfor i in range(1, 10, 2):\n    total += i\nprint(total)\n" +
				"for i, c in enumerate('ab', 1):\n    print(i, c)\nprint(zip([1, 2, 3], 'xy'))\n",
			want: "25\n1 a\n2 b\n[(1, 'x'), (2, 'y')]\n",
		},
		{
			name: "while with break and continue",
			src: "n = 0\nout = []\nwhile True:\n    n += 1\n    if n % 2 == 0:\n        continue\n" +
				"    if n > 7:\n        break\n    out.append(n)\nprint(out)\n",
			want: "[1, 3, 5, 7]\n",
		},
		{
			name: "functions",
			src: "def fib(n):\n    if n < 2:\n        return n\n    return fib(n - 1) + fib(n - 2)\n" +
				"def greet(name, punct='!'):\n    return 'hi ' + name + punct\n" +
				"print(fib(10), greet('bot'), greet('bot', punct='?'))\n",
			want: "55 hi bot! hi bot?\n",
		},
		{
			name: "closures",
			src:  "def outer():\n    k = 3\n    def inner(x):\n        return x * k\n    return inner(2)\nprint(outer())\n",
			want: "6\n",
		},
		{
			name: "return from inside a loop",
			src:  "def first_even(xs):\n    for x in xs:\n        if x % 2 == 0:\n            return x\n    return None\nprint(first_even([1, 3, 4, 6]), first_even([1]))\n",
			want: "4 None\n",
		},
		{
			name: "boolean logic",
			src:  "print(1 if 2 > 1 else 0, 1 < 2 < 3, 3 > 2 > 2, 0 or 'x', 1 and 0, not [])\n",
			want: "1 True False x 0 True\n",
		},
		{
			name: "identity",
			src:  "x = None\nprint(x is None, x is not None, 1 == 1.0, 2 in range(0, 10, 2))\n",
			want: "True False True True\n",
		},
		{
			name: "print keywords",
			src:  "print(1, 2, sep='-', end='!')\n",
			want: "1-2!",
		},
		{
			name: "abs and round",
			src:  "print(abs(-3), abs(-2.5), round(2.5), round(3.5), round(2.675, 2), round(7))\n",
			want: "3 2.5 2 4 2.67 7\n",
		},
		{
			name: "nested containers repr",
			src:  "xs = [1, 'a', (2, 'b'), {'k': [None, True]}]\nprint(xs)\nys = []\nys.append(ys)\nprint(ys)\n",
			want: "[1, 'a', (2, 'b'), {'k': [None, True]}]\n[[...]]\n",
		},
		{
			name: "list aliasing",
			src:  "a = [1]\nb = a\nb += [2]\nb.append(3)\nprint(a)\n",
			want: "[1, 2, 3]\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stdout(t, tt.src))
		})
	}
}

func TestRun_RuntimeFaults(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"division by zero", "x = 1 / 0\n", "division by zero"},
		{"undefined name", "print(nope)\n", "name 'nope' is not defined"},
		{"index out of range", "xs = [1]\nprint(xs[5])\n", "list index out of range"},
		{"missing key", "d = {}\nprint(d['k'])\n", "key 'k' not found"},
		{"raise", "raise 'custom failure'\n", "custom failure"},
		{"assert", "assert 1 == 2, 'nope'\n", "assertion failed: nope"},
		{"bad operands", "x = 1 + 'a'\n", "unsupported operand type(s) for +: 'int' and 'str'"},
		{"not callable", "x = 5\nx()\n", "'int' object is not callable"},
		{"no len", "print(len(5))\n", "object of type 'int' has no len()"},
		{"capability with args", "move_forward(1)\n", "move_forward() takes no arguments (1 given)"},
		{"unknown method", "xs = []\nxs.foo()\n", "'list' object has no attribute 'foo'"},
		{"unpack count", "a, b = [1, 2, 3]\n", "too many values to unpack (expected 2)"},
		{"overflow", "x = 2 ** 64\n", "integer overflow"},
		{"unhashable", "d = {[1]: 2}\n", "unhashable type: 'list'"},
		{"unorderable", "print(1 < 'a')\n", "'<' not supported between instances of 'int' and 'str'"},
		{"tuple assignment", "t = (1, 2)\nt[0] = 3\n", "'tuple' object does not support item assignment"},
		{"bare attribute", "xs = []\nf = xs.append\n", "attribute 'append' can only be used as a method call"},
		{"missing argument", "def f(a):\n    return a\nf()\n", "f() missing required argument 'a'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runSrc(t, tt.src, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRuntime)

			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, RuntimeError, se.Kind)
			assert.Equal(t, tt.msg, se.Msg)
		})
	}
}

func TestRun_Budgets(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts []Option
		msg  string
	}{
		{"steps", "while True:\n    pass\n", []Option{WithMaxSteps(1000)}, "step limit of 1000 exceeded"},
		{"depth", "def f():\n    return f()\nf()\n", nil, "maximum call depth of 64 exceeded"},
		{"list growth", "xs = []\nwhile True:\n    xs.append(1)\n", []Option{WithMaxCollection(100)}, "collection size limit of 100 exceeded"},
		{"huge range", "for i in range(10 ** 9):\n    pass\n", nil, "collection size limit of 10000 exceeded"},
		{"string repetition", "s = 'a' * 100000\n", nil, "collection size limit of 10000 exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runSrc(t, tt.src, nil, tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBudget)

			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.msg, se.Msg)
		})
	}
}

func TestRun_StepCountIsReported(t *testing.T) {
	out, err := runSrc(t, "while True:\n    pass\n", nil, WithMaxSteps(50))
	require.ErrorIs(t, err, ErrBudget)
	assert.Equal(t, 51, out.Steps)
}

func TestRun_Deadline(t *testing.T) {
	base := time.Unix(0, 0)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}

	_, err := runSrc(t, "while True:\n    pass\n", nil, WithClock(clock), WithTimeout(3*time.Second))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBudget)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_CancelledContext(t *testing.T) {
	prog, err := Parse("turn_left()\n")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	host := &fakeHost{}
	_, err = Run(ctx, prog, host)
	assert.ErrorIs(t, err, ErrBudget)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, host.calls)
}

func TestRun_MaxActions(t *testing.T) {
	host := &fakeHost{}
	out, err := runSrc(t, "while True:\n    turn_left()\n", host, WithMaxActions(5))
	require.ErrorIs(t, err, ErrBudget)
	assert.Len(t, host.calls, 5)
	assert.Equal(t, 5, out.Actions)
}

func TestRun_HostResults(t *testing.T) {
	host := &fakeHost{results: map[capability.Op]capability.Result{
		capability.OpGetPosition:  {Kind: capability.ResultPosition, Pos: world.C(2, 3)},
		capability.OpIsClear:      {Kind: capability.ResultBool, Bool: true},
		capability.OpGetDirection: {Kind: capability.ResultString, Str: "east"},
		capability.OpGetGemCount:  {Kind: capability.ResultInt, Int: 4},
	}}

	out, err := runSrc(t, "x, y = get_position()\nprint(x, y)\nprint(is_clear(), get_direction(), get_gem_count(), turn_left())\n", host)
	require.NoError(t, err)
	assert.Equal(t, "2 3\nTrue east 4 None\n", out.Stdout)
	assert.Equal(t, []capability.Op{
		capability.OpGetPosition, capability.OpIsClear, capability.OpGetDirection,
		capability.OpGetGemCount, capability.OpTurnLeft,
	}, host.calls)
}

func TestRun_HostError(t *testing.T) {
	boom := errors.New("boom")
	_, err := runSrc(t, "turn_left()\n", &fakeHost{err: boom})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRuntime)
	assert.ErrorIs(t, err, boom)
}

func TestRun_PanicIsRecovered(t *testing.T) {
	_, err := runSrc(t, "turn_left()\n", &fakeHost{panics: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRuntime)
	assert.Contains(t, err.Error(), "host exploded")
}

func TestRun_OutputSurvivesFailure(t *testing.T) {
	out, err := runSrc(t, "print('before')\nx = 1 / 0\nprint('after')\n", nil)
	require.ErrorIs(t, err, ErrRuntime)
	assert.Equal(t, "before\n", out.Stdout)
}

func TestRun_OutputLimitAndTee(t *testing.T) {
	var tee bytes.Buffer
	out, err := runSrc(t, "print('123456789')\n", nil, WithMaxOutput(5), WithStdout(&tee))
	require.NoError(t, err)
	assert.Equal(t, "12345", out.Stdout)
	assert.True(t, out.Truncated)
	assert.Equal(t, "123456789\n", tee.String())
}

func TestRun_DrivesSurface(t *testing.T) {
	g, err := world.NewGrid(5, 5)
	require.NoError(t, err)
	g.Set(3, 0, world.Wall)
	a := world.NewAgent(world.C(0, 0), world.East)
	surface := capability.NewSurface(g, a)

	src := "while is_clear():\n    move_forward()\nturn_right()\nmove_forward()\n"
	prog, err := Check(src, DefaultPolicy())
	require.NoError(t, err)

	_, err = Run(context.Background(), prog, surface)
	require.NoError(t, err)
	assert.Equal(t, world.C(2, 1), a.Position())
	assert.Equal(t, []string{"move_forward", "move_forward", "turn_right", "move_forward"}, surface.Actions())
}

func TestRun_NilProgram(t *testing.T) {
	out, err := Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, out.Steps)
}

// doubling returns statements that rebind name to (name, name) n times.
// The value is built in n steps but unfolds into 2**n leaves.
func doubling(name, leaf string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s\n", name, leaf)
	for range n {
		fmt.Fprintf(&b, "%s = (%s, %s)\n", name, name, name)
	}
	return b.String()
}

func TestRun_SharedStructureIsMetered(t *testing.T) {
	lists := "a = [0]\nb = [0]\n" + strings.Repeat("a = [a, a]\nb = [b, b]\n", 40)
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"tuple equality", doubling("t", "(0,)", 40) + doubling("u", "(0,)", 40) + "print(t == u)\n", "value too large"},
		{"list equality", lists + "print(a == b)\n", "value too large"},
		{"ordering", doubling("t", "(0,)", 40) + doubling("u", "(0,)", 40) + "print(t < u + (0,))\n", "value too large"},
		{"list count", doubling("t", "(0,)", 40) + doubling("u", "(0,)", 40) + "print([t].count(u))\n", "value too large"},
		{"dict key", doubling("t", "(0,)", 24) + "d = {}\nd[t] = 1\n", "dict key longer than"},
		{"dict membership", doubling("t", "(0,)", 24) + "d = {0: 1}\nprint(t in d)\n", "dict key longer than"},
		{"dict literal", doubling("t", "(0,)", 24) + "d = {t: 1}\n", "dict key longer than"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runSrc(t, tt.src, nil, WithTimeout(time.Minute))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBudget)
			assert.NotErrorIs(t, err, context.DeadlineExceeded, "the walk should stop long before the deadline")

			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Contains(t, se.Msg, tt.msg)
		})
	}
}

func TestRun_WalksChargeSteps(t *testing.T) {
	src := doubling("t", "(0,)", 40) + doubling("u", "(0,)", 40) + "print(t == u)\n"
	out, err := runSrc(t, src, nil, WithMaxSteps(100))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBudget)
	assert.Equal(t, 101, out.Steps)
}

func TestRun_WalksHonourDeadline(t *testing.T) {
	base := time.Unix(0, 0)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Millisecond)
	}

	src := doubling("t", "(0,)", 40) + doubling("u", "(0,)", 40) + "print(t == u)\n"
	_, err := runSrc(t, src, nil, WithClock(clock), WithTimeout(100*time.Millisecond))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_SharedStructureRendering(t *testing.T) {
	src := doubling("t", "(0,)", 40) + "print(t == t, t is t)\nprint(t)\n"
	out, err := runSrc(t, src, nil, WithMaxOutput(1000))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.Stdout, "True True\n(((("))
	assert.Len(t, out.Stdout, 1000)
	assert.True(t, out.Truncated)
}

func TestRun_ErrorMessagesAreBounded(t *testing.T) {
	src := doubling("t", "(0,)", 30) + "x = [].index(t)\n"
	_, err := runSrc(t, src, nil, WithMaxOutput(200))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRuntime)
	assert.Less(t, len(err.Error()), 400)
}
