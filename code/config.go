package code

import (
	"fmt"
	"strings"
	"time"
)

// Default budgets applied when a Config field is zero.
const (
	DefaultTimeout       = 5 * time.Second
	DefaultMaxSteps      = 100_000
	DefaultMaxDepth      = 64
	DefaultMaxCollection = 10_000
	DefaultMaxActions    = 10_000
	DefaultMaxOutput     = 64 << 10
	DefaultMaxSource     = 64 << 10
)

// Config holds the configuration for a script executor.
type Config struct {
	// Engine is the pluggable script engine.
	// Required.
	Engine Engine

	// Timeout is the wall-clock budget of one run. Defaults to 5s.
	Timeout time.Duration

	// MaxSteps bounds loop iterations plus calls. Defaults to 100000.
	MaxSteps int

	// MaxDepth bounds nested script function calls. Defaults to 64.
	MaxDepth int

	// MaxCollection bounds the size of any list, dict, range or string.
	// Defaults to 10000.
	MaxCollection int

	// MaxActions bounds mutator calls per run. Defaults to 10000.
	MaxActions int

	// MaxOutput bounds printed output in bytes. Defaults to 64KiB.
	MaxOutput int

	// MaxSource bounds the script source in bytes. Defaults to 64KiB.
	MaxSource int

	// Logger is an optional logger for observability.
	Logger Logger
}

// Validate checks that all required fields are set and limits are sane.
// Returns ErrConfiguration if not.
func (c *Config) Validate() error {
	var missing []string

	if c.Engine == nil {
		missing = append(missing, "Engine")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s",
			ErrConfiguration, strings.Join(missing, ", "))
	}

	var negative []string
	for _, f := range []struct {
		name string
		v    int64
	}{
		{"Timeout", int64(c.Timeout)},
		{"MaxSteps", int64(c.MaxSteps)},
		{"MaxDepth", int64(c.MaxDepth)},
		{"MaxCollection", int64(c.MaxCollection)},
		{"MaxActions", int64(c.MaxActions)},
		{"MaxOutput", int64(c.MaxOutput)},
		{"MaxSource", int64(c.MaxSource)},
	} {
		if f.v < 0 {
			negative = append(negative, f.name)
		}
	}
	if len(negative) > 0 {
		return fmt.Errorf("%w: negative limits: %s",
			ErrConfiguration, strings.Join(negative, ", "))
	}
	return nil
}

// applyDefaults sets default values for optional fields.
func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.MaxCollection == 0 {
		c.MaxCollection = DefaultMaxCollection
	}
	if c.MaxActions == 0 {
		c.MaxActions = DefaultMaxActions
	}
	if c.MaxOutput == 0 {
		c.MaxOutput = DefaultMaxOutput
	}
	if c.MaxSource == 0 {
		c.MaxSource = DefaultMaxSource
	}
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
}

// limits returns the configured budgets.
func (c *Config) limits() Limits {
	return Limits{
		Timeout:       c.Timeout,
		MaxSteps:      c.MaxSteps,
		MaxDepth:      c.MaxDepth,
		MaxCollection: c.MaxCollection,
		MaxActions:    c.MaxActions,
		MaxOutput:     c.MaxOutput,
		MaxSource:     c.MaxSource,
	}
}

// resolve narrows the configured budgets by the per-call ones.
// Per-call values can only tighten a budget.
func (l Limits) resolve(req Limits) Limits {
	pick := func(cfg, want int) int {
		if want > 0 && want < cfg {
			return want
		}
		return cfg
	}
	out := Limits{
		Timeout:       l.Timeout,
		MaxSteps:      pick(l.MaxSteps, req.MaxSteps),
		MaxDepth:      pick(l.MaxDepth, req.MaxDepth),
		MaxCollection: pick(l.MaxCollection, req.MaxCollection),
		MaxActions:    pick(l.MaxActions, req.MaxActions),
		MaxOutput:     pick(l.MaxOutput, req.MaxOutput),
		MaxSource:     pick(l.MaxSource, req.MaxSource),
	}
	if req.Timeout > 0 && req.Timeout < l.Timeout {
		out.Timeout = req.Timeout
	}
	return out
}
