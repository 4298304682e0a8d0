package capability

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/botexec/world"
)

// ErrUnknownOp is returned when Invoke receives an op outside the surface.
var ErrUnknownOp = errors.New("unknown capability")

// ResultKind tags the value carried by a Result.
type ResultKind uint8

const (
	// ResultNone is returned by turns.
	ResultNone ResultKind = iota
	ResultBool
	ResultInt
	ResultString
	ResultPosition
)

// Result is the value an op hands back to the script.
type Result struct {
	Kind ResultKind
	Bool bool
	Int  int
	Str  string
	Pos  world.Coord
}

// Any returns the result as nil, bool, int, string or world.Coord.
func (r Result) Any() any {
	switch r.Kind {
	case ResultBool:
		return r.Bool
	case ResultInt:
		return r.Int
	case ResultString:
		return r.Str
	case ResultPosition:
		return r.Pos
	default:
		return nil
	}
}

// String renders the result the way a script would print it.
func (r Result) String() string {
	switch r.Kind {
	case ResultBool:
		if r.Bool {
			return "True"
		}
		return "False"
	case ResultInt:
		return fmt.Sprintf("%d", r.Int)
	case ResultString:
		return r.Str
	case ResultPosition:
		return fmt.Sprintf("(%d, %d)", r.Pos.X, r.Pos.Y)
	default:
		return "None"
	}
}

// Surface binds the op set to one grid and agent for the length of a run.
//
// Contract:
// - Concurrency: not safe for concurrent use; one run owns one Surface.
// - Context: Invoke checks ctx before dispatching and returns ctx.Err().
// - Ownership: the grid and agent are never handed out.
type Surface struct {
	grid    *world.Grid
	agent   *world.Agent
	actions []string
}

// NewSurface returns a surface over grid and agent.
func NewSurface(grid *world.Grid, agent *world.Agent) *Surface {
	return &Surface{grid: grid, agent: agent}
}

// Invoke runs op and returns its result.
func (s *Surface) Invoke(ctx context.Context, op Op) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	var res Result
	switch op {
	case OpMoveForward:
		s.pickUp()
		res = Result{Kind: ResultPosition, Pos: s.agent.Move()}
	case OpTurnLeft:
		s.agent.TurnLeft()
	case OpTurnRight:
		s.agent.TurnRight()
	case OpTurnAround:
		s.agent.TurnAround()
	case OpIsClear:
		ahead := s.agent.PeekAhead()
		res = boolResult(s.grid.Get(ahead.X, ahead.Y) != world.Wall)
	case OpIsGem:
		res = boolResult(s.here() == world.Collectible)
	case OpIsGoal, OpAtGoal:
		res = boolResult(s.here() == world.Goal)
	case OpGetPosition:
		res = Result{Kind: ResultPosition, Pos: s.agent.Position()}
	case OpGetDirection:
		res = Result{Kind: ResultString, Str: s.agent.Facing().String()}
	case OpGetGemCount:
		res = Result{Kind: ResultInt, Int: s.grid.CollectibleCount()}
	default:
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownOp, op)
	}

	if op.Kind() == Mutator {
		s.actions = append(s.actions, op.String())
	}
	return res, nil
}

// Settle picks up a gem under the agent. The evaluator calls it once after a
// run completes so a gem the agent ends on counts.
func (s *Surface) Settle() {
	s.pickUp()
}

// Actions returns a copy of the mutator log in invocation order.
func (s *Surface) Actions() []string {
	out := make([]string, len(s.actions))
	copy(out, s.actions)
	return out
}

// ActionCount returns the length of the mutator log.
func (s *Surface) ActionCount() int { return len(s.actions) }

func (s *Surface) here() world.Tile {
	p := s.agent.Position()
	return s.grid.Get(p.X, p.Y)
}

func (s *Surface) pickUp() {
	p := s.agent.Position()
	if s.grid.Collect(p.X, p.Y) {
		s.agent.Collect(p)
	}
}

func boolResult(b bool) Result {
	return Result{Kind: ResultBool, Bool: b}
}
