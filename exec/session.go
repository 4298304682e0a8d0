package exec

import (
	"context"
	"sync"

	"github.com/jonwraymond/botexec/capability"
	"github.com/jonwraymond/botexec/code"
	"github.com/jonwraymond/botexec/level"
	"github.com/jonwraymond/botexec/world"
)

// Session binds one level to one agent. Runs on a session are serialized:
// two scripts never drive the same world at once.
type Session struct {
	exec  *Exec
	level *level.Level

	mu    sync.Mutex
	agent *world.Agent
	last  *Result
}

func newSession(e *Exec, l *level.Level) *Session {
	return &Session{exec: e, level: l, agent: l.NewAgent()}
}

// Level returns the session's level.
func (s *Session) Level() *level.Level {
	return s.level
}

// Run restarts the level and executes src against it. The error is
// non-nil only for configuration problems or cancellation of ctx; script
// failures are reported in the Result.
func (s *Session) Run(ctx context.Context, src string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.level.Restart(s.agent)
	surface := capability.NewSurface(s.level.Grid(), s.agent)

	res, err := s.exec.executor.ExecuteCode(ctx, code.ExecuteParams{Code: src, Surface: surface})
	if err != nil && res.State == "" {
		return Result{}, err
	}

	result := s.snapshot(res)
	result.Complete = result.Complete && res.Success
	s.last = &result
	if result.Complete && s.exec.opts.Logger != nil {
		s.exec.opts.Logger.Info("level complete", "run_id", res.RunID, "level", result.Level,
			"actions", len(res.Actions))
	}
	return result, err
}

// Reset puts the level and the agent back to their initial state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level.Restart(s.agent)
	s.last = nil
}

// State reports the agent's current state without running anything.
func (s *Session) State() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(code.ExecuteResult{})
}

// Last returns the result of the most recent run, if any.
func (s *Session) Last() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Result{}, false
	}
	return *s.last, true
}

// snapshot must be called with mu held.
func (s *Session) snapshot(res code.ExecuteResult) Result {
	return Result{
		ExecuteResult: res,
		Level:         s.level.Name(),
		Complete:      s.level.IsComplete(s.agent),
		Position:      level.PointOf(s.agent.Position()),
		Facing:        s.agent.Facing().String(),
		Collected:     s.agent.CollectedCount(),
		Remaining:     s.level.Remaining(s.agent),
		Moves:         s.agent.Steps(),
	}
}
