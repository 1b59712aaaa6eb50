// ABOUTME: Handler capability interface and in-process function adapter
// ABOUTME: The contract is ordering, timeout, and isolation - not the execution mechanism

package hooks

import "context"

// Handler executes one hook. Implementations may shell out, call in-process
// code, or call a remote function; the runner enforces ordering, per-handler
// timeouts, and failure isolation regardless of mechanism.
type Handler interface {
	Execute(ctx context.Context, payload Payload) (Result, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, payload Payload) (Result, error)

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, payload Payload) (Result, error) {
	return f(ctx, payload)
}
