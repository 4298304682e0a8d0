package code

import (
	"context"
	"time"

	"github.com/jonwraymond/botexec/capability"
)

// State is the terminal state of one evaluation.
type State string

const (
	// StateCompleted means the script ran to the end within every budget.
	StateCompleted State = "completed"

	// StateRejected means the script failed to parse or was refused by the
	// vetter. Nothing ran.
	StateRejected State = "rejected"

	// StateFailed means the script raised a runtime fault or exhausted a
	// non-time budget.
	StateFailed State = "failed"

	// StateTimedOut means the wall-clock budget was exhausted, either while
	// running or when the elapsed time was checked afterwards.
	StateTimedOut State = "timed_out"
)

// Surface is the world-bound capability set a run drives.
// *capability.Surface satisfies it.
type Surface interface {
	// Invoke performs one capability call.
	Invoke(ctx context.Context, op capability.Op) (capability.Result, error)

	// Actions returns the mutator names recorded so far, in order.
	Actions() []string

	// Settle applies the end-of-run world rules (collecting at the final cell).
	Settle()
}

// CallRecord captures a single capability invocation made by a script.
type CallRecord struct {
	// Op is the capability name.
	Op string `json:"op"`

	// Kind is "mutator" or "sensor".
	Kind string `json:"kind"`

	// Result is the observation returned to the script. Mutators return nothing.
	Result any `json:"result,omitempty"`

	// Error contains the error message if the call failed.
	Error string `json:"error,omitempty"`

	// DurationUs is the time spent in the surface, in microseconds.
	DurationUs int64 `json:"durationUs"`
}

// Limits are the per-run budgets handed to the Engine.
type Limits struct {
	Timeout       time.Duration `json:"timeout"`
	MaxSteps      int           `json:"maxSteps"`
	MaxDepth      int           `json:"maxDepth"`
	MaxCollection int           `json:"maxCollection"`
	MaxActions    int           `json:"maxActions"`
	MaxOutput     int           `json:"maxOutput"`
	MaxSource     int           `json:"maxSource"`
}

// ExecuteParams specifies one evaluation.
type ExecuteParams struct {
	// Code is the robot script source.
	Code string `json:"code"`

	// Surface is the capability set bound to the world and agent.
	// Required by ExecuteCode, ignored by Vet.
	Surface Surface `json:"-"`

	// Limits tightens the executor's configured budgets. Zero fields use
	// the configured value; larger values are capped by it.
	Limits Limits `json:"limits"`
}

// ExecuteResult contains the outcome of one evaluation.
//
// Actions is empty unless Success is true; the mutators executed before a
// failure are reported in Partial.
type ExecuteResult struct {
	// RunID identifies the evaluation in results and logs.
	RunID string `json:"runId,omitempty"`

	// Success is true only when the script completed.
	Success bool `json:"success"`

	// Actions lists the mutators performed, in order.
	Actions []string `json:"actions"`

	// ElapsedSeconds is the wall-clock time of the evaluation.
	ElapsedSeconds float64 `json:"elapsedSeconds"`

	// Error is the human-readable failure message, empty on success.
	Error string `json:"error,omitempty"`

	// State is the terminal state.
	State State `json:"state"`

	// ErrorKind classifies Error: syntax, policy, runtime, budget or timeout.
	ErrorKind ErrorKind `json:"errorKind,omitempty"`

	// Partial lists the mutators performed before a failure.
	Partial []string `json:"partial,omitempty"`

	// Stdout is the output printed by the script.
	Stdout string `json:"stdout,omitempty"`

	// Truncated reports that Stdout hit the output limit.
	Truncated bool `json:"truncated,omitempty"`

	// Steps is the number of budget steps consumed.
	Steps int `json:"steps"`

	// Calls records every capability invocation.
	Calls []CallRecord `json:"calls,omitempty"`
}
