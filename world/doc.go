// Package world provides the grid world a robot script observes and mutates.
//
// The model is pure data with invariant-preserving mutators and no scripting
// knowledge:
//
//   - [Grid]: a fixed-size rectangle of [Tile] values. Coordinates outside the
//     rectangle read as [Wall] (closed world) and writes to them are ignored.
//     The grid keeps index sets of collectible and goal cells in sync with
//     every mutation so counts are O(1).
//
//   - [Agent]: position, facing, the set of collected cells and a step
//     counter. Movement performs no collision check; callers sense first.
//
// # Coordinates
//
// Coordinates are zero-based. X grows to the right and Y grows downward, so
// [North] decreases Y. Level descriptors use the same convention.
//
// # Concurrency
//
// Neither type is safe for concurrent use. A run owns its grid and agent
// exclusively; the exec package serializes runs that share them.
package world
