package level

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/botexec/world"
)

// ErrInvalidDescriptor is returned when a descriptor cannot seed a level.
var ErrInvalidDescriptor = errors.New("invalid level descriptor")

// Point is a persisted (x, y) pair, encoded as a two-element list.
type Point [2]int

// Coord converts the point to a world coordinate.
func (p Point) Coord() world.Coord {
	return world.Coord{X: p[0], Y: p[1]}
}

// PointOf converts a world coordinate to its persisted form.
func PointOf(c world.Coord) Point {
	return Point{c.X, c.Y}
}

// Descriptor is the persisted form of a level.
type Descriptor struct {
	Name         string  `json:"name" yaml:"name"`
	Start        Point   `json:"start" yaml:"start"`
	Goal         Point   `json:"goal" yaml:"goal"`
	Obstacles    []Point `json:"obstacles" yaml:"obstacles"`
	Collectibles []Point `json:"collectibles" yaml:"collectibles"`
	GridSize     int     `json:"gridSize" yaml:"gridSize"`
	Hint         string  `json:"hint,omitempty" yaml:"hint,omitempty"`

	// Facing is the agent's initial direction. Empty means north.
	Facing string `json:"facing,omitempty" yaml:"facing,omitempty"`
}

// legacyDescriptor accepts the older snake_case field names as well.
type legacyDescriptor struct {
	Name         string  `yaml:"name"`
	Start        *Point  `yaml:"start"`
	StartPos     *Point  `yaml:"start_pos"`
	Goal         *Point  `yaml:"goal"`
	GoalPos      *Point  `yaml:"goal_pos"`
	Obstacles    []Point `yaml:"obstacles"`
	Collectibles []Point `yaml:"collectibles"`
	Gems         []Point `yaml:"gems"`
	GridSize     int     `yaml:"gridSize"`
	GridSizeOld  int     `yaml:"grid_size"`
	Hint         string  `yaml:"hint"`
	Facing       string  `yaml:"facing"`
}

// Parse decodes a descriptor from JSON or YAML.
func Parse(data []byte) (Descriptor, error) {
	var raw legacyDescriptor
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}

	d := Descriptor{
		Name:         raw.Name,
		Obstacles:    raw.Obstacles,
		Collectibles: raw.Collectibles,
		GridSize:     raw.GridSize,
		Hint:         raw.Hint,
		Facing:       raw.Facing,
	}
	switch {
	case raw.Start != nil:
		d.Start = *raw.Start
	case raw.StartPos != nil:
		d.Start = *raw.StartPos
	}
	switch {
	case raw.Goal != nil:
		d.Goal = *raw.Goal
	case raw.GoalPos != nil:
		d.Goal = *raw.GoalPos
	default:
		return Descriptor{}, fmt.Errorf("%w: goal is required", ErrInvalidDescriptor)
	}
	if d.Collectibles == nil {
		d.Collectibles = raw.Gems
	}
	if d.GridSize == 0 {
		d.GridSize = raw.GridSizeOld
	}
	return d, d.Validate()
}

// Validate checks the descriptor can seed a level.
func (d Descriptor) Validate() error {
	var problems []string
	if d.GridSize <= 0 {
		problems = append(problems, fmt.Sprintf("gridSize must be positive (got %d)", d.GridSize))
	} else {
		if !inside(d.Start, d.GridSize) {
			problems = append(problems, fmt.Sprintf("start %v outside grid", d.Start.Coord()))
		}
		if !inside(d.Goal, d.GridSize) {
			problems = append(problems, fmt.Sprintf("goal %v outside grid", d.Goal.Coord()))
		}
		for _, o := range d.Obstacles {
			if o == d.Start {
				problems = append(problems, fmt.Sprintf("start %v is an obstacle", d.Start.Coord()))
				break
			}
		}
	}
	if _, err := world.ParseDirection(d.Facing); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDescriptor, strings.Join(problems, "; "))
	}
	return nil
}

// LoadFile reads a descriptor from a .json, .yaml or .yml file.
func LoadFile(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("read level file: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return d, nil
}

// LoadDir reads every descriptor file in dir, ordered by file name.
func LoadDir(dir string) ([]Descriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read levels dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]Descriptor, 0, len(names))
	for _, name := range names {
		d, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func inside(p Point, size int) bool {
	return p[0] >= 0 && p[0] < size && p[1] >= 0 && p[1] < size
}
