package exec

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jonwraymond/botexec/capability"
	"github.com/jonwraymond/botexec/code"
	"github.com/jonwraymond/botexec/level"
	"github.com/jonwraymond/botexec/script"
)

// Errors returned by Options validation and level lookup.
var (
	ErrNoLevels       = errors.New("exec: at least one level is required")
	ErrDuplicateLevel = errors.New("exec: duplicate level name")
	ErrLevelNotFound  = errors.New("exec: level not found")
)

// Options configures an Exec instance.
type Options struct {
	// Levels is the playable level set, in order.
	// Default: level.Builtin()
	Levels []level.Descriptor

	// Catalog documents the capabilities.
	// Default: capability.NewCatalog()
	Catalog *capability.Catalog

	// Policy decides which scripts are accepted.
	// Default: script.DefaultPolicy()
	Policy script.Policy

	// Timeout is the wall-clock budget of one run.
	// Default: 5s
	Timeout time.Duration

	// MaxSteps bounds loop iterations plus calls.
	// Default: 100000
	MaxSteps int

	// MaxDepth bounds nested script function calls.
	// Default: 64
	MaxDepth int

	// MaxCollection bounds list, dict, range and string sizes.
	// Default: 10000
	MaxCollection int

	// MaxActions bounds capability calls per run.
	// Default: 10000
	MaxActions int

	// MaxOutput bounds printed output in bytes.
	// Default: 64KiB
	MaxOutput int

	// MaxSource bounds the script source in bytes.
	// Default: 64KiB
	MaxSource int

	// Stdout, if set, also receives everything scripts print.
	Stdout io.Writer

	// Logger receives run summaries. *slog.Logger satisfies it.
	// Default: silent
	Logger code.Logger
}

// validate checks that the level set is usable.
func (o *Options) validate() error {
	if o.Levels == nil {
		return nil
	}
	if len(o.Levels) == 0 {
		return ErrNoLevels
	}
	seen := make(map[string]bool, len(o.Levels))
	for i, d := range o.Levels {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("level %d: %w", i+1, err)
		}
		if d.Name == "" {
			continue
		}
		if seen[d.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateLevel, d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

// applyDefaults sets default values for unset optional fields.
func (o *Options) applyDefaults() error {
	if o.Levels == nil {
		o.Levels = level.Builtin()
	}
	if o.Catalog == nil {
		cat, err := capability.NewCatalog()
		if err != nil {
			return err
		}
		o.Catalog = cat
	}
	return nil
}

func (o *Options) codeConfig(engine code.Engine) code.Config {
	return code.Config{
		Engine:        engine,
		Timeout:       o.Timeout,
		MaxSteps:      o.MaxSteps,
		MaxDepth:      o.MaxDepth,
		MaxCollection: o.MaxCollection,
		MaxActions:    o.MaxActions,
		MaxOutput:     o.MaxOutput,
		MaxSource:     o.MaxSource,
		Logger:        o.Logger,
	}
}
