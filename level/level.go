// Package level describes the static layout of a puzzle and decides when it
// has been solved.
//
// A [Level] is built once per activation from a [Descriptor]. It owns a
// [world.Grid] stamped in the order obstacles, collectibles, goal: a goal that
// coincides with a collectible overwrites it. The authored coordinate lists
// never change, while the owned grid mutates as collectibles are picked up.
package level

import (
	"fmt"

	"github.com/jonwraymond/botexec/world"
)

// Level is an immutable descriptor plus the grid it seeds.
type Level struct {
	desc   Descriptor
	facing world.Direction
	grid   *world.Grid
	total  int
}

// New validates d and stamps a fresh grid.
func New(d Descriptor) (*Level, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	facing, _ := world.ParseDirection(d.Facing)
	grid, err := world.NewGrid(d.GridSize, d.GridSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}

	l := &Level{
		desc:   d.clone(),
		facing: facing,
		grid:   grid,
	}
	if l.desc.Name == "" {
		l.desc.Name = fmt.Sprintf("Level %dx%d", d.GridSize, d.GridSize)
	}
	l.stamp()
	l.total = grid.CollectibleCount()
	return l, nil
}

// stamp writes obstacles, then collectibles, then the goal.
// Out-of-bounds entries are skipped by the grid.
func (l *Level) stamp() {
	for _, p := range l.desc.Obstacles {
		l.grid.Set(p[0], p[1], world.Wall)
	}
	for _, p := range l.desc.Collectibles {
		l.grid.Set(p[0], p[1], world.Collectible)
	}
	l.grid.Set(l.desc.Goal[0], l.desc.Goal[1], world.Goal)
}

// Name returns the level name.
func (l *Level) Name() string { return l.desc.Name }

// Hint returns the authored hint.
func (l *Level) Hint() string { return l.desc.Hint }

// Size returns the grid edge length.
func (l *Level) Size() int { return l.desc.GridSize }

// Start returns the agent's start cell.
func (l *Level) Start() world.Coord { return l.desc.Start.Coord() }

// Goal returns the goal cell.
func (l *Level) Goal() world.Coord { return l.desc.Goal.Coord() }

// Facing returns the agent's initial direction.
func (l *Level) Facing() world.Direction { return l.facing }

// Grid returns the level's live grid.
func (l *Level) Grid() *world.Grid { return l.grid }

// Descriptor returns a copy of the authored descriptor.
func (l *Level) Descriptor() Descriptor { return l.desc.clone() }

// TotalCollectibles returns the number of collectibles the level was
// stamped with. Collectibles hidden under the goal, duplicated, or outside
// the grid are not counted since they can never be picked up.
func (l *Level) TotalCollectibles() int { return l.total }

// NewAgent returns an agent placed at the level start.
func (l *Level) NewAgent() *world.Agent {
	return world.NewAgent(l.Start(), l.facing)
}

// Restart re-stamps the grid and resets the agent to the start.
func (l *Level) Restart(a *world.Agent) {
	l.grid.Clear()
	l.stamp()
	a.Reset(l.Start(), l.facing)
}

// IsComplete reports whether the agent stands on the goal having collected
// at least as many collectibles as the level holds. It compares against the
// static count, not the live grid, because picked-up items vanish from the
// grid. A level whose goal is its start and which has no collectibles is
// complete as soon as the agent is reset.
func (l *Level) IsComplete(a *world.Agent) bool {
	if a.Position() != l.Goal() {
		return false
	}
	if l.total == 0 {
		return true
	}
	return a.CollectedCount() >= l.total
}

// Remaining returns how many collectibles the agent still has to pick up.
func (l *Level) Remaining(a *world.Agent) int {
	n := l.total - a.CollectedCount()
	if n < 0 {
		return 0
	}
	return n
}

// IsValidStart reports whether c is an in-bounds, empty cell.
func (l *Level) IsValidStart(c world.Coord) bool {
	return l.grid.InBounds(c.X, c.Y) && l.grid.At(c) == world.Empty
}

func (d Descriptor) clone() Descriptor {
	out := d
	out.Obstacles = append([]Point(nil), d.Obstacles...)
	out.Collectibles = append([]Point(nil), d.Collectibles...)
	return out
}
