package scriptengine

import (
	"context"
	"errors"

	"github.com/jonwraymond/botexec/capability"
	"github.com/jonwraymond/botexec/code"
	"github.com/jonwraymond/botexec/script"
)

// errNoTools is reported by every call through a nil gateway.
var errNoTools = errors.New("no capability gateway attached")

// toolsHost adapts code.Tools to script.Host.
type toolsHost struct {
	tools code.Tools
}

// WrapTools adapts a code.Tools gateway to the interpreter's host interface.
// A nil gateway yields a host whose every call fails.
func WrapTools(tools code.Tools) script.Host {
	return &toolsHost{tools: tools}
}

// Invoke implements script.Host.
func (h *toolsHost) Invoke(ctx context.Context, op capability.Op) (capability.Result, error) {
	if h.tools == nil {
		return capability.Result{}, errNoTools
	}
	return h.tools.Invoke(ctx, op)
}
