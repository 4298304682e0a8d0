package world

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Coord is a zero-based grid coordinate.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// C is a convenience constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// String returns the coordinate as "(x, y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Step returns the coordinate one cell away in direction d.
func (c Coord) Step(d Direction) Coord {
	dx, dy := d.Delta()
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// SortCoords orders coordinates row-major (by Y, then X).
func SortCoords(cs []Coord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Y != cs[j].Y {
			return cs[i].Y < cs[j].Y
		}
		return cs[i].X < cs[j].X
	})
}

// Direction is one of the four cardinal facings.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

var directionNames = [...]string{
	North: "north",
	East:  "east",
	South: "south",
	West:  "west",
}

// Turn tables. Each turn is a single lookup.
var (
	leftOf     = [...]Direction{North: West, East: North, South: East, West: South}
	rightOf    = [...]Direction{North: East, East: South, South: West, West: North}
	oppositeOf = [...]Direction{North: South, East: West, South: North, West: East}
	deltaOf    = [...][2]int{North: {0, -1}, East: {1, 0}, South: {0, 1}, West: {-1, 0}}
)

// Left returns the facing after a 90° counter-clockwise turn.
func (d Direction) Left() Direction { return leftOf[d&3] }

// Right returns the facing after a 90° clockwise turn.
func (d Direction) Right() Direction { return rightOf[d&3] }

// Opposite returns the facing after a 180° turn.
func (d Direction) Opposite() Direction { return oppositeOf[d&3] }

// Delta returns the unit offset of one step in direction d.
func (d Direction) Delta() (dx, dy int) {
	v := deltaOf[d&3]
	return v[0], v[1]
}

// String returns the lower-case direction name, e.g. "north".
func (d Direction) String() string {
	return directionNames[d&3]
}

// Title returns the display form of the direction, e.g. "North".
func (d Direction) Title() string {
	return cases.Title(language.English).String(d.String())
}

// ParseDirection parses a direction name case-insensitively.
// The empty string parses as North, the default facing.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return North, nil
	}
	for i, name := range directionNames {
		if name == s {
			return Direction(i), nil
		}
	}
	return North, fmt.Errorf("unknown direction %q", s)
}
