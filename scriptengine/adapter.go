// Package scriptengine provides an adapter that implements code.Engine
// using the script interpreter.
package scriptengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/jonwraymond/botexec/capability"
	"github.com/jonwraymond/botexec/code"
	"github.com/jonwraymond/botexec/script"
)

// Config configures an Engine.
type Config struct {
	// Policy decides which scripts are accepted. A zero Policy uses
	// script.DefaultPolicy.
	Policy script.Policy

	// Stdout, if set, also receives everything scripts print.
	Stdout io.Writer

	// Clock overrides time.Now for the interpreter deadline.
	Clock func() time.Time
}

// Engine implements code.Engine with the restricted script interpreter.
type Engine struct {
	policy script.Policy
	stdout io.Writer
	clock  func() time.Time
}

// New creates a new Engine with the given configuration.
// Returns code.ErrConfiguration if the policy names an unknown capability
// or utility.
func New(cfg Config) (*Engine, error) {
	if err := validatePolicy(cfg.Policy); err != nil {
		return nil, err
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Engine{policy: cfg.Policy, stdout: cfg.Stdout, clock: clock}, nil
}

func validatePolicy(p script.Policy) error {
	var unknown []string
	for _, name := range p.Capabilities {
		if _, ok := capability.Lookup(name); !ok {
			unknown = append(unknown, name)
		}
	}
	for _, name := range p.Utilities {
		if !slices.Contains(script.Utilities, name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: policy names unknown functions: %v", code.ErrConfiguration, unknown)
	}
	return nil
}

// Vet implements code.Engine by parsing and vetting the script.
func (e *Engine) Vet(ctx context.Context, params code.ExecuteParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := script.CheckSize(params.Code, params.Limits.MaxSource); err != nil {
		return mapError(err)
	}
	_, err := script.Check(params.Code, e.policy)
	return mapError(err)
}

// Execute implements code.Engine by running the script against tools.
// The script is vetted again so Execute is safe to call on its own.
func (e *Engine) Execute(ctx context.Context, params code.ExecuteParams, tools code.Tools) (code.ExecuteResult, error) {
	if err := script.CheckSize(params.Code, params.Limits.MaxSource); err != nil {
		return code.ExecuteResult{}, mapError(err)
	}
	prog, err := script.Check(params.Code, e.policy)
	if err != nil {
		return code.ExecuteResult{}, mapError(err)
	}

	opts := []script.Option{
		script.WithLimits(mapLimits(params.Limits)),
		script.WithClock(e.clock),
	}
	if e.stdout != nil {
		opts = append(opts, script.WithStdout(e.stdout))
	}

	out, err := script.Run(ctx, prog, WrapTools(tools), opts...)
	return mapResult(out), mapError(err)
}

// mapLimits converts code.Limits to script.Limits.
func mapLimits(l code.Limits) script.Limits {
	return script.Limits{
		Timeout:       l.Timeout,
		MaxSteps:      l.MaxSteps,
		MaxDepth:      l.MaxDepth,
		MaxCollection: l.MaxCollection,
		MaxActions:    l.MaxActions,
		MaxOutput:     l.MaxOutput,
	}
}

// mapResult converts script.Outcome to code.ExecuteResult.
func mapResult(o script.Outcome) code.ExecuteResult {
	return code.ExecuteResult{
		Stdout:    o.Stdout,
		Truncated: o.Truncated,
		Steps:     o.Steps,
	}
}

var prefixes = map[code.ErrorKind]string{
	code.KindSyntax:  "syntax error",
	code.KindPolicy:  "forbidden",
	code.KindRuntime: "runtime fault",
	code.KindBudget:  "budget exceeded",
	code.KindTimeout: "timeout",
}

// mapError converts script errors to code errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var se *script.Error
	if !errors.As(err, &se) {
		return &code.CodeError{Kind: code.KindRuntime, Message: err.Error(), Err: err}
	}

	var kind code.ErrorKind
	switch se.Kind {
	case script.SyntaxError:
		kind = code.KindSyntax
	case script.PolicyError:
		kind = code.KindPolicy
	case script.BudgetError:
		kind = code.KindBudget
		if errors.Is(se, context.DeadlineExceeded) {
			kind = code.KindTimeout
		}
	default:
		kind = code.KindRuntime
	}

	return &code.CodeError{
		Kind:    kind,
		Message: prefixes[kind] + ": " + se.Msg,
		Line:    se.Pos.Line,
		Column:  se.Pos.Col,
		Err:     se,
	}
}
