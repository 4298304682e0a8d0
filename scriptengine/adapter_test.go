package scriptengine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/botexec/capability"
	"github.com/jonwraymond/botexec/code"
	"github.com/jonwraymond/botexec/script"
)

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return engine
}

// mockTools implements code.Tools for testing.
type mockTools struct {
	results map[capability.Op]capability.Result
	err     error
	calls   []capability.Op
}

func (m *mockTools) Invoke(_ context.Context, op capability.Op) (capability.Result, error) {
	m.calls = append(m.calls, op)
	return m.results[op], m.err
}

func TestEngine_Interface(t *testing.T) {
	t.Helper()
	var _ code.Engine = (*Engine)(nil)
}

func TestNew_RejectsUnknownPolicyNames(t *testing.T) {
	_, err := New(Config{Policy: script.Policy{
		Capabilities: []string{"move_forward", "teleport"},
		Utilities:    []string{"print", "eval"},
	}})
	if !errors.Is(err, code.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if !strings.Contains(err.Error(), "teleport") || !strings.Contains(err.Error(), "eval") {
		t.Errorf("error should name the unknown functions: %v", err)
	}
}

func TestVet(t *testing.T) {
	engine := newEngine(t, Config{})
	tests := []struct {
		name    string
		src     string
		wantErr error
		line    int
	}{
		{name: "ok", src: "for i in range(3):\n    move_forward()\n"},
		{name: "import", src: "import os\n", wantErr: code.ErrPolicy, line: 1},
		{name: "denied call", src: "move_forward()\nopen('x')\n", wantErr: code.ErrPolicy, line: 2},
		{name: "dunder", src: "y = len.__doc__\n", wantErr: code.ErrPolicy, line: 1},
		{name: "syntax", src: "if True\n    pass\n", wantErr: code.ErrSyntax, line: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.Vet(context.Background(), code.ExecuteParams{Code: tt.src})
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Vet() = %v, want %v", err, tt.wantErr)
			}
			var ce *code.CodeError
			if !errors.As(err, &ce) || ce.Line != tt.line {
				t.Errorf("expected CodeError at line %d, got %+v", tt.line, ce)
			}
		})
	}
}

func TestVet_SourceSize(t *testing.T) {
	engine := newEngine(t, Config{})
	src := "move_forward()\n"

	if err := engine.Vet(context.Background(), code.ExecuteParams{Code: src, Limits: code.Limits{MaxSource: len(src)}}); err != nil {
		t.Fatalf("Vet() at the limit = %v", err)
	}
	err := engine.Vet(context.Background(), code.ExecuteParams{Code: src, Limits: code.Limits{MaxSource: len(src) - 1}})
	if !errors.Is(err, code.ErrPolicy) {
		t.Fatalf("Vet() = %v, want ErrPolicy", err)
	}
	if !strings.HasPrefix(err.Error(), "forbidden: script is 15 bytes") {
		t.Errorf("error = %q", err)
	}

	tools := &mockTools{}
	_, err = engine.Execute(context.Background(), code.ExecuteParams{Code: src, Limits: code.Limits{MaxSource: 4}}, tools)
	if !errors.Is(err, code.ErrPolicy) || len(tools.calls) != 0 {
		t.Errorf("Execute() = %v with calls %v, want ErrPolicy and no calls", err, tools.calls)
	}
}

func TestVet_DeepNestingIsSyntaxError(t *testing.T) {
	engine := newEngine(t, Config{})
	src := "x = " + strings.Repeat("(", 5000) + "1" + strings.Repeat(")", 5000) + "\n"
	err := engine.Vet(context.Background(), code.ExecuteParams{Code: src})
	if !errors.Is(err, code.ErrSyntax) {
		t.Fatalf("Vet() = %v, want ErrSyntax", err)
	}
}

func TestExecute_SharedStructureIsBudgeted(t *testing.T) {
	engine := newEngine(t, Config{})
	src := "t = (0,)\nu = (0,)\n" + strings.Repeat("t = (t, t)\nu = (u, u)\n", 40) + "print(t == u)\n"

	_, err := engine.Execute(context.Background(), code.ExecuteParams{Code: src, Limits: code.Limits{Timeout: time.Minute}}, &mockTools{})
	var ce *code.CodeError
	if !errors.As(err, &ce) || ce.Kind != code.KindBudget {
		t.Fatalf("Execute() = %v, want a budget error", err)
	}
}

func TestVet_CanceledContext(t *testing.T) {
	engine := newEngine(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := engine.Vet(ctx, code.ExecuteParams{Code: "pass"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Vet() = %v, want context.Canceled", err)
	}
}

func TestVet_StrictPolicy(t *testing.T) {
	engine := newEngine(t, Config{Policy: script.Policy{StrictCalls: true}})
	src := "def step():\n    move_forward()\nstep()\n"
	if err := engine.Vet(context.Background(), code.ExecuteParams{Code: src}); !errors.Is(err, code.ErrPolicy) {
		t.Errorf("strict policy should refuse user function calls, got %v", err)
	}
}

func TestExecute_MapsOutcome(t *testing.T) {
	engine := newEngine(t, Config{})
	tools := &mockTools{results: map[capability.Op]capability.Result{
		capability.OpIsClear: {Kind: capability.ResultBool, Bool: true},
	}}
	src := "if is_clear():\n    move_forward()\nprint('done')\n"

	result, err := engine.Execute(context.Background(), code.ExecuteParams{Code: src}, tools)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Stdout != "done\n" {
		t.Errorf("Stdout = %q", result.Stdout)
	}
	if result.Steps == 0 {
		t.Error("expected steps to be counted")
	}
	if len(tools.calls) != 2 || tools.calls[1] != capability.OpMoveForward {
		t.Errorf("calls = %v", tools.calls)
	}
}

func TestExecute_RevetsScript(t *testing.T) {
	engine := newEngine(t, Config{})
	tools := &mockTools{}
	_, err := engine.Execute(context.Background(), code.ExecuteParams{Code: "from os import path\n"}, tools)
	if !errors.Is(err, code.ErrPolicy) {
		t.Fatalf("Execute() = %v, want ErrPolicy", err)
	}
	if len(tools.calls) != 0 {
		t.Error("refused script must not run")
	}
}

func TestExecute_ErrorKinds(t *testing.T) {
	tick := time.Unix(0, 0)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	engine := newEngine(t, Config{Clock: clock})

	tests := []struct {
		name   string
		src    string
		limits code.Limits
		kind   code.ErrorKind
		prefix string
	}{
		{name: "runtime", src: "x = 1\ny = x / 0\n", kind: code.KindRuntime, prefix: "runtime fault: "},
		{name: "raise", src: "raise 'stop'\n", kind: code.KindRuntime, prefix: "runtime fault: "},
		{name: "steps", src: "while True:\n    pass\n", limits: code.Limits{MaxSteps: 50, Timeout: time.Hour}, kind: code.KindBudget, prefix: "budget exceeded: "},
		{name: "actions", src: "while True:\n    turn_left()\n", limits: code.Limits{MaxActions: 3, Timeout: time.Hour}, kind: code.KindBudget, prefix: "budget exceeded: "},
		{name: "deadline", src: "while True:\n    pass\n", limits: code.Limits{Timeout: 5 * time.Second}, kind: code.KindTimeout, prefix: "timeout: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Execute(context.Background(), code.ExecuteParams{Code: tt.src, Limits: tt.limits}, &mockTools{})
			var ce *code.CodeError
			if !errors.As(err, &ce) {
				t.Fatalf("expected CodeError, got %v", err)
			}
			if ce.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q (%v)", ce.Kind, tt.kind, err)
			}
			if !strings.HasPrefix(ce.Message, tt.prefix) {
				t.Errorf("Message = %q, want prefix %q", ce.Message, tt.prefix)
			}
			if ce.Line == 0 {
				t.Error("expected a source line")
			}
		})
	}
}

func TestExecute_ToolErrorIsRuntimeFault(t *testing.T) {
	engine := newEngine(t, Config{})
	tools := &mockTools{err: errors.New("grid detached")}

	_, err := engine.Execute(context.Background(), code.ExecuteParams{Code: "move_forward()\n"}, tools)
	if !errors.Is(err, code.ErrCodeExecution) {
		t.Fatalf("Execute() = %v, want ErrCodeExecution", err)
	}
	if !strings.Contains(err.Error(), "grid detached") {
		t.Errorf("error should carry the cause: %v", err)
	}
}

func TestExecute_Tee(t *testing.T) {
	var sb strings.Builder
	engine := newEngine(t, Config{Stdout: &sb})
	_, err := engine.Execute(context.Background(), code.ExecuteParams{Code: "print(1, 2)\n"}, &mockTools{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if sb.String() != "1 2\n" {
		t.Errorf("tee got %q", sb.String())
	}
}

func TestMapError(t *testing.T) {
	if mapError(nil) != nil {
		t.Error("nil must map to nil")
	}

	plain := errors.New("boom")
	err := mapError(plain)
	if !errors.Is(err, code.ErrCodeExecution) || !errors.Is(err, plain) {
		t.Errorf("plain error mapped to %v", err)
	}

	err = mapError(&script.Error{Kind: script.BudgetError, Msg: "run cancelled", Err: context.Canceled})
	var ce *code.CodeError
	if !errors.As(err, &ce) || ce.Kind != code.KindBudget {
		t.Fatalf("cancellation mapped to %+v", ce)
	}
	if !errors.Is(err, context.Canceled) || !errors.Is(err, script.ErrBudget) {
		t.Error("mapped error must keep the script error and its cause in the chain")
	}
}
