package exec

import (
	"context"
	"fmt"

	"github.com/jonwraymond/tooldiscovery/tooldoc"

	"github.com/jonwraymond/botexec/capability"
	"github.com/jonwraymond/botexec/code"
	"github.com/jonwraymond/botexec/level"
	"github.com/jonwraymond/botexec/scriptengine"
)

// Exec is the unified facade for running robot scripts on levels.
// It combines the level set, the evaluator and the capability catalog.
type Exec struct {
	levels   []level.Descriptor
	catalog  *capability.Catalog
	executor *code.DefaultExecutor
	opts     Options
}

// New creates a new Exec instance with the given options.
func New(opts Options) (*Exec, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := opts.applyDefaults(); err != nil {
		return nil, err
	}

	engine, err := scriptengine.New(scriptengine.Config{
		Policy: opts.Policy,
		Stdout: opts.Stdout,
	})
	if err != nil {
		return nil, err
	}
	executor, err := code.NewDefaultExecutor(opts.codeConfig(engine))
	if err != nil {
		return nil, err
	}

	return &Exec{
		levels:   opts.Levels,
		catalog:  opts.Catalog,
		executor: executor,
		opts:     opts,
	}, nil
}

// Levels lists the playable levels in order.
func (e *Exec) Levels() []LevelInfo {
	out := make([]LevelInfo, 0, len(e.levels))
	for i, d := range e.levels {
		l, err := level.New(d)
		if err != nil {
			// validated in New
			continue
		}
		out = append(out, LevelInfo{
			Number:       i + 1,
			Name:         l.Name(),
			GridSize:     l.Size(),
			Start:        d.Start,
			Goal:         d.Goal,
			Facing:       l.Facing().String(),
			Obstacles:    len(d.Obstacles),
			Collectibles: l.TotalCollectibles(),
			Hint:         l.Hint(),
		})
	}
	return out
}

// Level builds a fresh level by name or 1-based number.
func (e *Exec) Level(key string) (*level.Level, error) {
	d, ok := level.Find(e.levels, key)
	if !ok {
		for _, info := range e.Levels() {
			if info.Name == key {
				d, ok = e.levels[info.Number-1], true
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLevelNotFound, key)
	}
	return level.New(d)
}

// NewSession starts a session on the level named by key.
func (e *Exec) NewSession(key string) (*Session, error) {
	l, err := e.Level(key)
	if err != nil {
		return nil, err
	}
	return newSession(e, l), nil
}

// Run executes src once on a fresh copy of the level named by key.
func (e *Exec) Run(ctx context.Context, key, src string) (Result, error) {
	s, err := e.NewSession(key)
	if err != nil {
		return Result{}, err
	}
	return s.Run(ctx, src)
}

// Vet parses and checks src without running it.
func (e *Exec) Vet(ctx context.Context, src string) error {
	return e.executor.Vet(ctx, code.ExecuteParams{Code: src})
}

// SearchCapabilities finds capabilities matching a query.
func (e *Exec) SearchCapabilities(ctx context.Context, query string, limit int) ([]CapabilitySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.catalog.Search(query, limit)
}

// DescribeCapability retrieves capability documentation at the given detail level.
func (e *Exec) DescribeCapability(ctx context.Context, name string, detail tooldoc.DetailLevel) (tooldoc.ToolDoc, error) {
	if err := ctx.Err(); err != nil {
		return tooldoc.ToolDoc{}, err
	}
	return e.catalog.Describe(name, detail)
}

// Catalog returns the capability catalog.
func (e *Exec) Catalog() *capability.Catalog {
	return e.catalog
}

// Limits returns the effective run budgets.
func (e *Exec) Limits() code.Limits {
	return e.executor.Limits()
}
