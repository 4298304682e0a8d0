// Package script implements the restricted, Python-shaped language robot
// programs are written in.
//
// A script goes through three stages:
//
//	prog, err := script.Parse(src)                 // SyntaxError
//	err = script.Vet(prog, script.DefaultPolicy()) // PolicyError
//	out, err := script.Run(ctx, prog, host)        // RuntimeError or BudgetError
//
// [Check] combines the first two. Vetting never runs code; it walks the tree
// and rejects imports, calls outside the capability and utility sets,
// references to denied names and any dunder identifier.
//
// The interpreter has no objects, modules or reflection. Its namespace holds
// exactly the capabilities and the utility functions, and attribute access
// only resolves a small fixed method table on lists, dicts and strings.
// Step, time, depth, size and action budgets are checked while the program
// runs, so a non-terminating script is stopped rather than waited on.
// Comparing, hashing and printing nested values spend the same budgets, and
// the parser caps nesting depth and source size.
package script
