package world

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// ErrInvalidSize is returned when a grid would have no cells.
var ErrInvalidSize = errors.New("grid dimensions must be positive")

// Grid is a rectangular array of tiles addressed by (x, y).
//
// Contract:
// - Closed world: every query outside the bounds behaves as Wall.
// - Index sets of collectible and goal cells are kept in sync by every mutator.
// - Not safe for concurrent use.
type Grid struct {
	width        int
	height       int
	tiles        []Tile
	collectibles mapset.Set[Coord]
	goals        mapset.Set[Coord]
}

// NewGrid returns a grid of the given size with every cell Empty.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Grid{
		width:        width,
		height:       height,
		tiles:        make([]Tile, width*height),
		collectibles: mapset.New[Coord](),
		goals:        mapset.New[Coord](),
	}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) addresses a cell of the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Get returns the tile at (x, y), or Wall when out of bounds.
func (g *Grid) Get(x, y int) Tile {
	if !g.InBounds(x, y) {
		return Wall
	}
	return g.tiles[y*g.width+x]
}

// At is Get for a Coord.
func (g *Grid) At(c Coord) Tile {
	return g.Get(c.X, c.Y)
}

// Set stores tile at (x, y). Out-of-bounds writes are ignored.
func (g *Grid) Set(x, y int, tile Tile) {
	if !g.InBounds(x, y) {
		return
	}
	c := Coord{X: x, Y: y}
	g.tiles[y*g.width+x] = tile

	// Drop the cell from both indexes, then re-add per the new type.
	g.collectibles.Remove(c)
	g.goals.Remove(c)
	switch tile {
	case Collectible:
		g.collectibles.Put(c)
	case Goal:
		g.goals.Put(c)
	}
}

// CollectibleCount returns the number of collectibles left on the grid.
func (g *Grid) CollectibleCount() int {
	return g.collectibles.Size()
}

// GoalCount returns the number of goal cells.
func (g *Grid) GoalCount() int {
	return g.goals.Size()
}

// Collect turns a Collectible cell into Empty.
// It reports whether (x, y) held a collectible.
func (g *Grid) Collect(x, y int) bool {
	if g.Get(x, y) != Collectible {
		return false
	}
	g.Set(x, y, Empty)
	return true
}

// Neighbors4 returns the in-bounds cardinal neighbours of (x, y)
// in south, east, north, west order. Diagonals are never included.
func (g *Grid) Neighbors4(x, y int) []Coord {
	out := make([]Coord, 0, 4)
	for _, d := range [...]Direction{South, East, North, West} {
		n := Coord{X: x, Y: y}.Step(d)
		if g.InBounds(n.X, n.Y) {
			out = append(out, n)
		}
	}
	return out
}

// Collectibles returns the collectible cells in row-major order.
func (g *Grid) Collectibles() []Coord {
	return snapshot(g.collectibles)
}

// Goals returns the goal cells in row-major order.
func (g *Grid) Goals() []Coord {
	return snapshot(g.goals)
}

// Clear resets every cell to Empty.
func (g *Grid) Clear() {
	for i := range g.tiles {
		g.tiles[i] = Empty
	}
	g.collectibles.Clear()
	g.goals.Clear()
}

func snapshot(s mapset.Set[Coord]) []Coord {
	out := make([]Coord, 0, s.Size())
	s.Each(func(c Coord) {
		out = append(out, c)
	})
	SortCoords(out)
	return out
}
