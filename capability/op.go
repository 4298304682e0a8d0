// Package capability defines the fixed set of functions a robot script may
// call, and binds them to one grid and agent.
//
// The surface is a closed operation set: every exposed name maps to exactly
// one [Op], and [Lookup] is the only place a name becomes an op. The script
// vetter and the interpreter both resolve names through it, so an unknown name
// can never reach dispatch.
//
// Two kinds of ops exist:
//
//   - Mutators (move_forward, turn_left, turn_right, turn_around) change the
//     agent and append their name to the action log.
//   - Sensors (is_clear, is_gem, is_goal, at_goal, get_position,
//     get_direction, get_gem_count) are read-only and never logged.
//
// No op takes arguments. The set is a versioned ABI: adding an op changes what
// scripts may legally invoke and must bump [ABIVersion].
package capability

// ABIVersion identifies the set of ops exposed to scripts.
const ABIVersion = 1

// Op is a single capability.
type Op uint8

const (
	OpInvalid Op = iota
	OpMoveForward
	OpTurnLeft
	OpTurnRight
	OpTurnAround
	OpIsClear
	OpIsGem
	OpIsGoal
	OpAtGoal
	OpGetPosition
	OpGetDirection
	OpGetGemCount

	numOps
)

// Kind classifies an op.
type Kind uint8

const (
	// Mutator ops change the agent and are logged.
	Mutator Kind = iota + 1
	// Sensor ops are read-only and are not logged.
	Sensor
)

// String returns "mutator" or "sensor".
func (k Kind) String() string {
	switch k {
	case Mutator:
		return "mutator"
	case Sensor:
		return "sensor"
	default:
		return "unknown"
	}
}

type opInfo struct {
	name    string
	title   string
	kind    Kind
	summary string
	returns string
	notes   string
	example string
}

var ops = [numOps]opInfo{
	OpMoveForward: {
		name:    "move_forward",
		title:   "Move forward",
		kind:    Mutator,
		summary: "Advance the robot one cell in the direction it is facing",
		returns: "the new (x, y) position",
		notes:   "There is no collision check. Call is_clear() first: walking into a wall or off the grid is allowed and leaves the robot stuck there. A gem is picked up when the robot steps off its cell.",
		example: "if is_clear():\n    move_forward()",
	},
	OpTurnLeft: {
		name:    "turn_left",
		title:   "Turn left",
		kind:    Mutator,
		summary: "Rotate the robot 90 degrees counter-clockwise",
		returns: "nothing",
		example: "turn_left()",
	},
	OpTurnRight: {
		name:    "turn_right",
		title:   "Turn right",
		kind:    Mutator,
		summary: "Rotate the robot 90 degrees clockwise",
		returns: "nothing",
		example: "turn_right()",
	},
	OpTurnAround: {
		name:    "turn_around",
		title:   "Turn around",
		kind:    Mutator,
		summary: "Rotate the robot 180 degrees",
		returns: "nothing",
		notes:   "Counts as a single step.",
		example: "turn_around()",
	},
	OpIsClear: {
		name:    "is_clear",
		title:   "Is the path clear",
		kind:    Sensor,
		summary: "Check whether the cell ahead is not a wall",
		returns: "True or False",
		notes:   "Cells outside the grid count as walls.",
		example: "while is_clear():\n    move_forward()",
	},
	OpIsGem: {
		name:    "is_gem",
		title:   "Is there a gem",
		kind:    Sensor,
		summary: "Check whether the robot is standing on a gem",
		returns: "True or False",
		example: "if is_gem():\n    print(\"found one\")",
	},
	OpIsGoal: {
		name:    "is_goal",
		title:   "Is this the goal",
		kind:    Sensor,
		summary: "Check whether the robot is standing on the goal",
		returns: "True or False",
		example: "if is_goal():\n    print(\"done\")",
	},
	OpAtGoal: {
		name:    "at_goal",
		title:   "At the goal",
		kind:    Sensor,
		summary: "Alias of is_goal",
		returns: "True or False",
		example: "while not at_goal():\n    move_forward()",
	},
	OpGetPosition: {
		name:    "get_position",
		title:   "Get position",
		kind:    Sensor,
		summary: "Get the robot's current cell",
		returns: "an (x, y) tuple; x grows right, y grows down",
		example: "x, y = get_position()",
	},
	OpGetDirection: {
		name:    "get_direction",
		title:   "Get direction",
		kind:    Sensor,
		summary: "Get the direction the robot is facing",
		returns: "one of \"north\", \"east\", \"south\", \"west\"",
		example: "while get_direction() != \"north\":\n    turn_left()",
	},
	OpGetGemCount: {
		name:    "get_gem_count",
		title:   "Get gem count",
		kind:    Sensor,
		summary: "Get the number of gems still lying on the grid",
		returns: "an integer",
		example: "print(get_gem_count())",
	},
}

var byName = func() map[string]Op {
	m := make(map[string]Op, numOps)
	for op := OpMoveForward; op < numOps; op++ {
		m[ops[op].name] = op
	}
	return m
}()

// Lookup resolves a script-visible name to its op.
func Lookup(name string) (Op, bool) {
	op, ok := byName[name]
	return op, ok
}

// All returns every op in declaration order.
func All() []Op {
	out := make([]Op, 0, numOps-1)
	for op := OpMoveForward; op < numOps; op++ {
		out = append(out, op)
	}
	return out
}

// Names returns every exposed name in declaration order.
func Names() []string {
	out := make([]string, 0, numOps-1)
	for _, op := range All() {
		out = append(out, op.String())
	}
	return out
}

// Valid reports whether op is a member of the surface.
func (o Op) Valid() bool {
	return o > OpInvalid && o < numOps
}

// String returns the script-visible name.
func (o Op) String() string {
	if !o.Valid() {
		return "invalid"
	}
	return ops[o].name
}

// Kind returns whether the op mutates or senses.
func (o Op) Kind() Kind {
	if !o.Valid() {
		return 0
	}
	return ops[o].kind
}

// Summary returns a one-line description of the op.
func (o Op) Summary() string {
	if !o.Valid() {
		return ""
	}
	return ops[o].summary
}
