package level

import "strconv"

// Builtin returns the default level set, in play order.
func Builtin() []Descriptor {
	return []Descriptor{
		{
			Name:     "Level 1: First Steps",
			Start:    Point{0, 0},
			Goal:     Point{2, 0},
			GridSize: 3,
			Facing:   "east",
			Hint:     "Use move_forward() to reach the green goal!",
		},
		{
			Name:     "Level 2: Turn Right",
			Start:    Point{0, 0},
			Goal:     Point{1, 1},
			GridSize: 3,
			Facing:   "east",
			Hint:     "Move forward, then turn right, then move forward again!",
		},
		{
			Name:         "Level 3: Collect Gems",
			Start:        Point{0, 0},
			Goal:         Point{2, 2},
			Collectibles: []Point{{1, 1}},
			GridSize:     3,
			Facing:       "east",
			Hint:         "Collect the yellow gem before reaching the goal!",
		},
		{
			Name:     "Level 4: Simple Loop",
			Start:    Point{0, 0},
			Goal:     Point{4, 0},
			GridSize: 5,
			Facing:   "east",
			Hint:     "Use a for loop to move forward 4 times!",
		},
		{
			Name:     "Level 5: Square Path",
			Start:    Point{0, 0},
			Goal:     Point{0, 0},
			GridSize: 3,
			Facing:   "east",
			Hint:     "Make a complete square: forward, right, forward, right, forward, right, forward, right!",
		},
	}
}

// Find returns the descriptor whose name equals key, or whose 1-based
// position in levels does.
func Find(levels []Descriptor, key string) (Descriptor, bool) {
	for i, d := range levels {
		if d.Name == key || strconv.Itoa(i+1) == key {
			return d, true
		}
	}
	return Descriptor{}, false
}
