package code

import (
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/botexec/capability"
)

func TestTools_CanceledContextSkipsSurface(t *testing.T) {
	surface := &mockSurface{}
	tools := newTools(surface, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tools.Invoke(ctx, capability.OpMoveForward)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Invoke error = %v, want context.Canceled", err)
	}
	if len(surface.invoked) != 0 || tools.Calls() != nil {
		t.Error("canceled call must not reach the surface or the trace")
	}
}

func TestTools_UnknownOpRecorded(t *testing.T) {
	surface := &mockSurface{err: capability.ErrUnknownOp}
	tools := newTools(surface, nopLogger{})

	_, err := tools.Invoke(context.Background(), capability.OpInvalid)
	if !errors.Is(err, capability.ErrUnknownOp) {
		t.Fatalf("Invoke error = %v", err)
	}
	calls := tools.Calls()
	if len(calls) != 1 || calls[0].Op != "invalid" || calls[0].Kind != "" || calls[0].Error == "" {
		t.Errorf("Calls = %+v", calls)
	}
}

func TestTools_CallsReturnsSnapshot(t *testing.T) {
	tools := newTools(&mockSurface{}, nopLogger{})
	_, _ = tools.Invoke(context.Background(), capability.OpTurnAround)

	calls := tools.Calls()
	calls[0].Op = "mutated"
	if tools.Calls()[0].Op != "turn_around" {
		t.Error("Calls must return a copy")
	}
}
