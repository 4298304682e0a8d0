package code

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Executor is the main entry point for evaluating robot scripts.
// It orchestrates vetting, limits, tracing and result classification.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use; runs sharing a Surface must be serialized.
// - Context: must honor cancellation/deadlines; a canceled caller context is returned as an error.
// - Errors: configuration failures return ErrConfiguration; script failures are outcomes with a nil error.
// - Ownership: params are read-only; returned ExecuteResult is caller-owned.
type Executor interface {
	// ExecuteCode vets then runs a script against params.Surface.
	ExecuteCode(ctx context.Context, params ExecuteParams) (ExecuteResult, error)

	// Vet parses and checks a script without running it. It returns a
	// CodeError matching ErrSyntax or ErrPolicy on rejection.
	Vet(ctx context.Context, params ExecuteParams) error
}

// DefaultExecutor is the standard implementation of Executor.
type DefaultExecutor struct {
	cfg Config
	now func() time.Time
}

// NewDefaultExecutor creates a new DefaultExecutor with the given configuration.
// Returns ErrConfiguration if any required field is missing.
func NewDefaultExecutor(cfg Config) (*DefaultExecutor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &DefaultExecutor{cfg: cfg, now: time.Now}, nil
}

// Limits returns the configured budgets after defaults.
func (e *DefaultExecutor) Limits() Limits {
	return e.cfg.limits()
}

// Vet parses and checks a script without running it.
func (e *DefaultExecutor) Vet(ctx context.Context, params ExecuteParams) error {
	params.Limits = e.cfg.limits().resolve(params.Limits)
	return e.cfg.Engine.Vet(ctx, params)
}

// ExecuteCode vets then runs a script against params.Surface.
func (e *DefaultExecutor) ExecuteCode(ctx context.Context, params ExecuteParams) (ExecuteResult, error) {
	if params.Surface == nil {
		return ExecuteResult{}, fmt.Errorf("%w: missing required fields: Surface", ErrConfiguration)
	}
	if err := ctx.Err(); err != nil {
		return ExecuteResult{}, callerError(err)
	}

	params.Limits = e.cfg.limits().resolve(params.Limits)
	runID := uuid.NewString()
	log := e.cfg.Logger
	start := e.now()

	if err := e.cfg.Engine.Vet(ctx, params); err != nil {
		result := failure(err, nil)
		result.RunID = runID
		result.ElapsedSeconds = e.now().Sub(start).Seconds()
		log.Warn("script rejected", "run_id", runID, "kind", result.ErrorKind, "error", err)
		return result, nil
	}

	tools := newTools(params.Surface, log)
	result, err := e.execute(ctx, params, tools)
	elapsed := e.now().Sub(start)

	outcome := ExecuteResult{
		RunID:          runID,
		Stdout:         result.Stdout,
		Truncated:      result.Truncated,
		Steps:          result.Steps,
		Calls:          tools.Calls(),
		ElapsedSeconds: elapsed.Seconds(),
	}
	actions := params.Surface.Actions()

	switch {
	case err != nil:
		outcome = merge(outcome, failure(err, actions))
	case elapsed > params.Limits.Timeout:
		outcome = merge(outcome, failure(&CodeError{
			Kind:    KindTimeout,
			Message: fmt.Sprintf("code execution timeout (%gs)", params.Limits.Timeout.Seconds()),
			Err:     context.DeadlineExceeded,
		}, actions))
	default:
		params.Surface.Settle()
		outcome.Success = true
		outcome.State = StateCompleted
		outcome.Actions = actions
		if outcome.Actions == nil {
			outcome.Actions = []string{}
		}
	}

	if outcome.Success {
		log.Info("script completed", "run_id", runID, "actions", len(outcome.Actions),
			"steps", outcome.Steps, "elapsed", elapsed)
	} else {
		log.Warn("script failed", "run_id", runID, "state", outcome.State,
			"kind", outcome.ErrorKind, "error", outcome.Error, "partial", len(outcome.Partial))
	}

	if cerr := ctx.Err(); cerr != nil {
		return outcome, callerError(cerr)
	}
	return outcome, nil
}

// execute calls the engine and turns an escaped panic into a runtime fault.
func (e *DefaultExecutor) execute(ctx context.Context, params ExecuteParams, tools Tools) (result ExecuteResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.cfg.Logger.Error("engine panic", "panic", r)
			err = &CodeError{Kind: KindRuntime, Message: fmt.Sprintf("internal error: %v", r)}
		}
	}()
	return e.cfg.Engine.Execute(ctx, params, tools)
}

// failure builds the result of a rejected, failed or timed-out run.
func failure(err error, partial []string) ExecuteResult {
	kind := kindOf(err)
	r := ExecuteResult{
		Actions:   []string{},
		Error:     err.Error(),
		ErrorKind: kind,
		Partial:   partial,
	}
	switch kind {
	case KindSyntax, KindPolicy:
		r.State = StateRejected
	case KindTimeout:
		r.State = StateTimedOut
	default:
		r.State = StateFailed
	}
	return r
}

func merge(base, f ExecuteResult) ExecuteResult {
	base.Success = false
	base.Actions = f.Actions
	base.Error = f.Error
	base.ErrorKind = f.ErrorKind
	base.State = f.State
	base.Partial = f.Partial
	return base
}

// callerError reports cancellation of the caller's own context.
func callerError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrLimitExceeded, err)
	}
	return fmt.Errorf("execution canceled: %w", err)
}
