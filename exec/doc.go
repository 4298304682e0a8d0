// Package exec provides a unified facade for running robot scripts on levels.
//
// The exec package combines the level set, the sandboxed evaluator and the
// capability catalog into a single API. Callers never touch grids, agents or
// engines directly.
//
// # Basic Usage
//
//	executor, err := exec.New(exec.Options{})
//	if err != nil {
//	    return err
//	}
//
//	result, err := executor.Run(ctx, "1", "move_forward()\nmove_forward()\n")
//	if err != nil {
//	    return err // configuration problem or ctx canceled
//	}
//	fmt.Println(result.Success, result.Complete, result.Actions)
//
// # Sessions
//
// A [Session] keeps one level and one agent alive across runs. Every run
// restarts the level first, and runs on the same session are serialized:
//
//	s, _ := executor.NewSession("Level 3: Collect Gems")
//	r1, _ := s.Run(ctx, script1)
//	r2, _ := s.Run(ctx, script2) // starts from the level start again
//
// # Discovery
//
// The capability catalog is searchable and documented:
//
//	hits, _ := executor.SearchCapabilities(ctx, "gem", 3)
//	doc, _ := executor.DescribeCapability(ctx, "is_gem", tooldoc.DetailFull)
//
// # Integration
//
// The exec package integrates with:
//
//   - [github.com/jonwraymond/botexec/code] for the evaluator facade
//   - [github.com/jonwraymond/botexec/scriptengine] for the script engine
//   - [github.com/jonwraymond/botexec/level] for level descriptors
//   - [github.com/jonwraymond/tooldiscovery/tooldoc] for capability documentation
package exec
