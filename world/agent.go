package world

import "github.com/zyedidia/generic/mapset"

// Agent is the robot a script drives.
//
// Every movement or turn increments the step counter; sensing never does.
// A 180° turn is a single step.
type Agent struct {
	pos       Coord
	facing    Direction
	collected mapset.Set[Coord]
	steps     int
}

// NewAgent returns an agent at start facing the given direction.
func NewAgent(start Coord, facing Direction) *Agent {
	return &Agent{
		pos:       start,
		facing:    facing,
		collected: mapset.New[Coord](),
	}
}

// Reset restores the agent to a fresh state at start.
func (a *Agent) Reset(start Coord, facing Direction) {
	a.pos = start
	a.facing = facing
	a.collected.Clear()
	a.steps = 0
}

// Position returns the current cell.
func (a *Agent) Position() Coord { return a.pos }

// Facing returns the current direction.
func (a *Agent) Facing() Direction { return a.facing }

// Steps returns the number of movements and turns performed since reset.
func (a *Agent) Steps() int { return a.steps }

// PeekAhead returns the cell Move would enter, without moving.
func (a *Agent) PeekAhead() Coord {
	return a.pos.Step(a.facing)
}

// Move advances one cell along the facing and returns the new position.
// There is no collision check.
func (a *Agent) Move() Coord {
	a.pos = a.PeekAhead()
	a.steps++
	return a.pos
}

// TurnLeft rotates 90° counter-clockwise.
func (a *Agent) TurnLeft() {
	a.facing = a.facing.Left()
	a.steps++
}

// TurnRight rotates 90° clockwise.
func (a *Agent) TurnRight() {
	a.facing = a.facing.Right()
	a.steps++
}

// TurnAround rotates 180°.
func (a *Agent) TurnAround() {
	a.facing = a.facing.Opposite()
	a.steps++
}

// Collect records c as collected. Duplicate adds are ignored;
// it reports whether c was newly added.
func (a *Agent) Collect(c Coord) bool {
	if a.collected.Has(c) {
		return false
	}
	a.collected.Put(c)
	return true
}

// HasCollected reports whether c has been collected.
func (a *Agent) HasCollected(c Coord) bool {
	return a.collected.Has(c)
}

// CollectedCount returns the number of distinct collected cells.
func (a *Agent) CollectedCount() int {
	return a.collected.Size()
}

// Collected returns the collected cells in row-major order.
func (a *Agent) Collected() []Coord {
	return snapshot(a.collected)
}
