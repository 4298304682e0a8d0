package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVet_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"import", "import os\n"},
		{"import from", "from os import path\n"},
		{"nested import", "if True:\n    import os\n"},
		{"eval call", "eval('1')\n"},
		{"exec call", "exec('x = 1')\n"},
		{"open call", "open('/etc/passwd')\n"},
		{"alias of open", "f = open\n"},
		{"getattr", "getattr(1, 'real')\n"},
		{"type", "type(1)\n"},
		{"dir", "dir()\n"},
		{"dunder import", "__import__('os')\n"},
		{"dunder name", "x = __name__\n"},
		{"dunder attribute", "x = [].__class__\n"},
		{"unknown function", "launch_missiles()\n"},
		{"denied method", "xs = []\nxs.eval()\n"},
		{"call through index", "[print][0]('x')\n"},
		{"shadow capability", "def move_forward():\n    pass\n"},
		{"shadow utility", "def print(x):\n    pass\n"},
		{"shadow denied", "def open():\n    pass\n"},
		{"dunder param", "def f(__x):\n    pass\n"},
		{"denied param", "def f(eval):\n    pass\n"},
		{"dunder keyword", "print(__x=1)\n"},
		{"eval inside def", "def f():\n    return eval('1')\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Check(tt.src, DefaultPolicy())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPolicy)

			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, PolicyError, se.Kind)
			assert.Positive(t, se.Pos.Line)
		})
	}
}

func TestVet_Allows(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"capabilities", "while not at_goal():\n    if is_clear():\n        move_forward()\n    else:\n        turn_right()\n"},
		{"utilities", "xs = list_of = [1, 2]\nprint(len(xs), sum(xs), min(xs), max(xs), abs(-1), round(1.5))\nfor i, v in enumerate(zip(xs, xs)):\n    pass\nfor i in range(3):\n    pass\n"},
		{"methods", "xs = []\nxs.append(1)\nd = {}\nd.get('k')\n'a'.upper()\n"},
		{"own function", "def step():\n    move_forward()\nstep()\n"},
		{"call before def", "step()\ndef step():\n    pass\n"},
		{"single underscore", "_x = 1\nprint(_x)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Check(tt.src, DefaultPolicy())
			require.NoError(t, err)
			assert.NotNil(t, prog)
		})
	}
}

func TestVet_StrictCalls(t *testing.T) {
	src := "def step():\n    move_forward()\nstep()\n"
	policy := DefaultPolicy()
	policy.StrictCalls = true

	_, err := Check(src, policy)
	assert.ErrorIs(t, err, ErrPolicy)
}

func TestVet_CustomCapabilities(t *testing.T) {
	policy := Policy{Capabilities: []string{"turn_left"}}

	_, err := Check("turn_left()\n", policy)
	require.NoError(t, err)

	_, err = Check("move_forward()\n", policy)
	assert.ErrorIs(t, err, ErrPolicy)
}

func TestVet_ReportsFirstViolation(t *testing.T) {
	_, err := Check("x = 1\nimport os\neval('1')\n", DefaultPolicy())

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Pos.Line)
	assert.Contains(t, se.Msg, "import")
}

func TestCheck_SyntaxErrorIsNotPolicy(t *testing.T) {
	_, err := Check("if True\n    pass\n", DefaultPolicy())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyntax)
	assert.NotErrorIs(t, err, ErrPolicy)
}

func TestVet_NilProgram(t *testing.T) {
	assert.NoError(t, Vet(nil, DefaultPolicy()))
}
