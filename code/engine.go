package code

import "context"

// Engine is the pluggable script engine. Implementations parse, vet and run
// robot scripts against the Tools gateway.
//
// The Engine should:
//   - Refuse scripts that fail to parse or violate its policy in Vet
//   - Drive the world only through the provided Tools
//   - Enforce the Limits carried in ExecuteParams preemptively
//   - Return any output printed by the script
//   - Wrap script failures in CodeError with a Kind and line/column info
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines; a canceled run is a KindBudget CodeError wrapping ctx.Err().
// - Errors: script failures return CodeError; callers classify with errors.Is.
// - Panics: must not escape; a panic inside the engine is reported as a runtime fault.
// - Ownership: params and Tools are read-only; returned ExecuteResult is caller-owned.
type Engine interface {
	// Vet parses and checks the script without running it.
	Vet(ctx context.Context, params ExecuteParams) error

	// Execute runs a vetted script with access to the tools gateway.
	// It fills Stdout, Truncated and Steps of the result.
	Execute(ctx context.Context, params ExecuteParams, tools Tools) (ExecuteResult, error)
}
