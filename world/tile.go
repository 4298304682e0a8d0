package world

// Tile is the content of a single grid cell.
type Tile uint8

const (
	// Empty is walkable open floor.
	Empty Tile = iota
	// Wall blocks movement. Out-of-bounds cells read as Wall.
	Wall
	// Collectible is a gem the agent can pick up.
	Collectible
	// Goal is the level objective.
	Goal
)

var tileNames = [...]string{
	Empty:       "empty",
	Wall:        "wall",
	Collectible: "gem",
	Goal:        "goal",
}

// String returns the lower-case tile name.
func (t Tile) String() string {
	if int(t) < len(tileNames) {
		return tileNames[t]
	}
	return "unknown"
}

// Walkable reports whether an agent may stand on the tile.
func (t Tile) Walkable() bool {
	return t != Wall
}
