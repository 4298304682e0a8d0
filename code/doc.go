// Package code is the evaluator facade for robot scripts.
//
// A script is untrusted source that drives one agent through a grid world
// using a fixed set of capabilities. The facade vets it, runs it under
// preemptive budgets and reports a single classified outcome.
//
// # Architecture
//
// The package defines three main interfaces:
//
//   - [Tools]: The capability gateway handed to the engine. Every call is
//     forwarded to the run's [Surface] and recorded in a [CallRecord].
//
//   - [Engine]: The pluggable script engine that vets and runs scripts.
//     The scriptengine package provides the standard one.
//
//   - [Executor]: The main entry point that applies limits, runs the engine
//     and classifies the outcome.
//
// # Outcomes
//
// Every evaluation ends in one [State]:
//
//   - completed: Success is true and Actions lists the mutators performed
//   - rejected: the script did not parse ([ErrSyntax]) or was refused ([ErrPolicy])
//   - failed: a runtime fault ([ErrCodeExecution]) or a non-time budget ([ErrLimitExceeded])
//   - timed_out: the wall-clock budget ran out during or after the run
//
// Failed runs report an empty Actions list; the mutators executed before the
// failure are in Partial. Rejections and failures are outcomes, not Go
// errors: ExecuteCode returns a non-nil error only for configuration
// problems and cancellation of the caller's context.
//
// # Execution Limits
//
// [Config] carries the budgets: Timeout, MaxSteps, MaxDepth, MaxCollection,
// MaxActions, MaxOutput and MaxSource. [ExecuteParams].Limits may tighten
// them for one run but never loosen them.
package code
