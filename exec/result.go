package exec

import (
	"github.com/jonwraymond/botexec/capability"
	"github.com/jonwraymond/botexec/code"
	"github.com/jonwraymond/botexec/level"
)

// Result is the outcome of one run on a level: the evaluator's verdict
// plus the agent's final state.
type Result struct {
	code.ExecuteResult

	// Level is the name of the level the script ran on.
	Level string `json:"level"`

	// Complete reports whether the agent ended on the goal holding every
	// collectible.
	Complete bool `json:"complete"`

	// Position is the agent's final cell.
	Position level.Point `json:"position"`

	// Facing is the agent's final direction.
	Facing string `json:"facing"`

	// Collected is the number of collectibles picked up.
	Collected int `json:"collected"`

	// Remaining is the number of collectibles still to pick up.
	Remaining int `json:"remaining"`

	// Moves counts the agent's movements and turns.
	Moves int `json:"moves"`
}

// OK returns true if the script completed and solved the level.
func (r Result) OK() bool {
	return r.Success && r.Complete
}

// LevelInfo summarizes a playable level.
type LevelInfo struct {
	Number       int         `json:"number"`
	Name         string      `json:"name"`
	GridSize     int         `json:"gridSize"`
	Start        level.Point `json:"start"`
	Goal         level.Point `json:"goal"`
	Facing       string      `json:"facing"`
	Obstacles    int         `json:"obstacles"`
	Collectibles int         `json:"collectibles"`
	Hint         string      `json:"hint,omitempty"`
}

// CapabilitySummary is an alias to capability.Summary for search results.
type CapabilitySummary = capability.Summary
