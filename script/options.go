package script

import (
	"io"
	"time"
)

// Default limits applied when a limit is zero or negative.
const (
	DefaultTimeout       = 5 * time.Second
	DefaultMaxSteps      = 100_000
	DefaultMaxDepth      = 64
	DefaultMaxCollection = 10_000
	DefaultMaxActions    = 10_000
	DefaultMaxOutput     = 64 << 10
)

// Limits bound a single run. Every limit is always enforced; zero selects
// the default.
type Limits struct {
	// Timeout is the wall-clock budget, checked at every step.
	Timeout time.Duration

	// MaxSteps bounds loop iterations plus calls.
	MaxSteps int

	// MaxDepth bounds nested script function calls.
	MaxDepth int

	// MaxCollection bounds list, tuple, dict, range and string sizes.
	MaxCollection int

	// MaxActions bounds capability invocations.
	MaxActions int

	// MaxOutput bounds captured print output in bytes. Excess is dropped.
	MaxOutput int
}

func (l *Limits) applyDefaults() {
	if l.Timeout <= 0 {
		l.Timeout = DefaultTimeout
	}
	if l.MaxSteps <= 0 {
		l.MaxSteps = DefaultMaxSteps
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	if l.MaxCollection <= 0 {
		l.MaxCollection = DefaultMaxCollection
	}
	if l.MaxActions <= 0 {
		l.MaxActions = DefaultMaxActions
	}
	if l.MaxOutput <= 0 {
		l.MaxOutput = DefaultMaxOutput
	}
}

type runConfig struct {
	limits Limits
	stdout io.Writer
	now    func() time.Time
}

// Option configures a run.
type Option func(*runConfig)

func newRunConfig(opts []Option) runConfig {
	cfg := runConfig{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg.limits.applyDefaults()
	return cfg
}

// WithLimits replaces all limits at once.
func WithLimits(l Limits) Option {
	return func(c *runConfig) {
		c.limits = l
	}
}

// WithTimeout sets the wall-clock budget.
func WithTimeout(d time.Duration) Option {
	return func(c *runConfig) {
		c.limits.Timeout = d
	}
}

// WithMaxSteps sets the step budget.
func WithMaxSteps(n int) Option {
	return func(c *runConfig) {
		c.limits.MaxSteps = n
	}
}

// WithMaxDepth sets the call depth limit.
func WithMaxDepth(n int) Option {
	return func(c *runConfig) {
		c.limits.MaxDepth = n
	}
}

// WithMaxCollection sets the collection size limit.
func WithMaxCollection(n int) Option {
	return func(c *runConfig) {
		c.limits.MaxCollection = n
	}
}

// WithMaxActions sets the capability call limit.
func WithMaxActions(n int) Option {
	return func(c *runConfig) {
		c.limits.MaxActions = n
	}
}

// WithMaxOutput sets the captured output limit in bytes.
func WithMaxOutput(n int) Option {
	return func(c *runConfig) {
		c.limits.MaxOutput = n
	}
}

// WithStdout mirrors print output to w as it is produced.
func WithStdout(w io.Writer) Option {
	return func(c *runConfig) {
		c.stdout = w
	}
}

// WithClock overrides the time source used for the deadline.
func WithClock(now func() time.Time) Option {
	return func(c *runConfig) {
		if now != nil {
			c.now = now
		}
	}
}
