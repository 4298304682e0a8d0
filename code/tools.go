package code

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/botexec/capability"
)

// Tools is the capability gateway exposed to scripts during execution.
// Every invocation is forwarded to the run's Surface and traced.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Invoke must return ctx.Err() without touching the world when canceled.
// - Errors: unknown operations propagate capability.ErrUnknownOp.
// - Ownership: returned results are caller-owned values.
type Tools interface {
	// Invoke performs one capability call and records it in the trace.
	Invoke(ctx context.Context, op capability.Op) (capability.Result, error)
}

// toolsImpl is the internal implementation of Tools that traces calls.
type toolsImpl struct {
	surface Surface
	logger  Logger
	now     func() time.Time

	mu    sync.Mutex
	calls []CallRecord
}

func newTools(surface Surface, logger Logger) *toolsImpl {
	return &toolsImpl{surface: surface, logger: logger, now: time.Now}
}

// Invoke implements Tools.
func (t *toolsImpl) Invoke(ctx context.Context, op capability.Op) (capability.Result, error) {
	if err := ctx.Err(); err != nil {
		return capability.Result{}, err
	}

	start := t.now()
	res, err := t.surface.Invoke(ctx, op)

	rec := CallRecord{
		Op:         op.String(),
		DurationUs: t.now().Sub(start).Microseconds(),
	}
	if op.Valid() {
		rec.Kind = op.Kind().String()
	}
	if err != nil {
		rec.Error = err.Error()
		t.logger.Warn("capability call failed", "op", rec.Op, "error", err)
	} else {
		rec.Result = res.Any()
	}

	t.mu.Lock()
	t.calls = append(t.calls, rec)
	t.mu.Unlock()
	return res, err
}

// Calls returns a snapshot of the trace.
func (t *toolsImpl) Calls() []CallRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.calls) == 0 {
		return nil
	}
	out := make([]CallRecord, len(t.calls))
	copy(out, t.calls)
	return out
}
