package scriptengine

import (
	"context"
	"reflect"
	"testing"

	"github.com/jonwraymond/botexec/capability"
	"github.com/jonwraymond/botexec/code"
	"github.com/jonwraymond/botexec/level"
	"github.com/jonwraymond/botexec/world"
)

// Integration tests drive a real level through the executor and engine.

func newLevelRun(t *testing.T, idx int) (*level.Level, *world.Agent, *capability.Surface, *code.DefaultExecutor) {
	t.Helper()
	lvl, err := level.New(level.Builtin()[idx])
	if err != nil {
		t.Fatalf("level.New: %v", err)
	}
	agent := lvl.NewAgent()
	engine := newEngine(t, Config{})
	exec, err := code.NewDefaultExecutor(code.Config{Engine: engine})
	if err != nil {
		t.Fatalf("NewDefaultExecutor: %v", err)
	}
	return lvl, agent, capability.NewSurface(lvl.Grid(), agent), exec
}

func TestIntegration_CollectGemsLevel(t *testing.T) {
	lvl, agent, surface, exec := newLevelRun(t, 2)

	src := `
move_forward()
turn_right()
move_forward()
if is_gem():
    print("gem at", get_position())
move_forward()
turn_left()
move_forward()
`
	result, err := exec.ExecuteCode(context.Background(), code.ExecuteParams{Code: src, Surface: surface})
	if err != nil {
		t.Fatalf("ExecuteCode: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	want := []string{"move_forward", "turn_right", "move_forward", "move_forward", "turn_left", "move_forward"}
	if !reflect.DeepEqual(result.Actions, want) {
		t.Errorf("Actions = %v, want %v", result.Actions, want)
	}
	if result.Stdout != "gem at (1, 1)\n" {
		t.Errorf("Stdout = %q", result.Stdout)
	}
	if agent.Position() != world.C(2, 2) {
		t.Errorf("agent at %v", agent.Position())
	}
	if !lvl.IsComplete(agent) {
		t.Error("level should be complete after collecting the gem and reaching the goal")
	}
}

func TestIntegration_SkippingGemIsIncomplete(t *testing.T) {
	lvl, agent, surface, exec := newLevelRun(t, 2)

	src := "for d in [0, 1]:\n    move_forward()\nturn_right()\nmove_forward()\nmove_forward()\n"
	result, err := exec.ExecuteCode(context.Background(), code.ExecuteParams{Code: src, Surface: surface})
	if err != nil || !result.Success {
		t.Fatalf("ExecuteCode: %v %+v", err, result)
	}
	if agent.Position() != world.C(2, 2) {
		t.Fatalf("agent at %v", agent.Position())
	}
	if lvl.IsComplete(agent) {
		t.Error("level must not be complete without the gem")
	}
}

func TestIntegration_LoopLevel(t *testing.T) {
	lvl, agent, surface, exec := newLevelRun(t, 3)

	src := "def go(n):\n    for _ in range(n):\n        move_forward()\ngo(4)\n"
	result, err := exec.ExecuteCode(context.Background(), code.ExecuteParams{Code: src, Surface: surface})
	if err != nil || !result.Success {
		t.Fatalf("ExecuteCode: %v %+v", err, result)
	}
	if len(result.Actions) != 4 || len(result.Calls) != 4 {
		t.Errorf("Actions/Calls = %d/%d", len(result.Actions), len(result.Calls))
	}
	if !lvl.IsComplete(agent) {
		t.Error("level should be complete")
	}
}

func TestIntegration_RejectedScriptLeavesWorldUntouched(t *testing.T) {
	_, agent, surface, exec := newLevelRun(t, 0)

	result, err := exec.ExecuteCode(context.Background(), code.ExecuteParams{
		Code:    "move_forward()\nimport os\n",
		Surface: surface,
	})
	if err != nil {
		t.Fatalf("ExecuteCode: %v", err)
	}
	if result.State != code.StateRejected || result.ErrorKind != code.KindPolicy {
		t.Errorf("unexpected result %+v", result)
	}
	if agent.Position() != world.C(0, 0) || agent.Steps() != 0 {
		t.Error("rejected script must not move the agent")
	}
}

func TestIntegration_FaultReportsPartialActions(t *testing.T) {
	_, agent, surface, exec := newLevelRun(t, 0)

	result, err := exec.ExecuteCode(context.Background(), code.ExecuteParams{
		Code:    "move_forward()\nturn_left()\nitems = []\nitems[3]\n",
		Surface: surface,
	})
	if err != nil {
		t.Fatalf("ExecuteCode: %v", err)
	}
	if result.State != code.StateFailed || result.ErrorKind != code.KindRuntime {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Actions) != 0 {
		t.Errorf("Actions = %v, want empty", result.Actions)
	}
	if want := []string{"move_forward", "turn_left"}; !reflect.DeepEqual(result.Partial, want) {
		t.Errorf("Partial = %v, want %v", result.Partial, want)
	}
	if agent.Position() != world.C(1, 0) {
		t.Errorf("agent at %v", agent.Position())
	}
}

func TestIntegration_InfiniteLoopIsStopped(t *testing.T) {
	_, _, surface, exec := newLevelRun(t, 0)

	result, err := exec.ExecuteCode(context.Background(), code.ExecuteParams{
		Code:    "while True:\n    turn_left()\n",
		Surface: surface,
		Limits:  code.Limits{MaxSteps: 1000},
	})
	if err != nil {
		t.Fatalf("ExecuteCode: %v", err)
	}
	if result.Success || result.ErrorKind != code.KindBudget {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Partial) == 0 || len(result.Partial) > 1000 {
		t.Errorf("Partial has %d actions", len(result.Partial))
	}
}
