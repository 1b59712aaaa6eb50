// ABOUTME: Fires lifecycle hooks in registration order with per-handler timeouts
// ABOUTME: Handler failures are logged and isolated; Fire never fails the caller

package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTimeout bounds a handler that does not configure its own timeout.
const DefaultTimeout = 30 * time.Second

// Registration binds one handler to a lifecycle event.
type Registration struct {
	Event   Event
	Name    string
	Handler Handler
	Timeout time.Duration // zero uses DefaultTimeout

	// StopOnError aborts the remaining handlers for this event when this
	// handler fails. The default (false) continues to the next handler.
	StopOnError bool
}

// Runner dispatches lifecycle events to their registered handlers.
// The registration table is replaced wholesale by Register and is read-only
// during dispatch, so Fire is safe for concurrent use.
type Runner struct {
	table       map[Event][]Registration
	projectRoot string
	logger      *slog.Logger
}

// NewRunner creates a Runner with an empty registration table.
// Pass nil logger for the default.
func NewRunner(projectRoot string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		table:       make(map[Event][]Registration),
		projectRoot: projectRoot,
		logger:      logger.With("component", "hooks"),
	}
}

// Register installs the full hook table, grouping entries by event and
// preserving list order within each event. Calling Register again replaces
// the prior table entirely rather than merging.
func (r *Runner) Register(regs []Registration) error {
	table := make(map[Event][]Registration)
	for i, reg := range regs {
		if !reg.Event.Valid() {
			return fmt.Errorf("hook %d (%s): invalid event %q", i, reg.Name, reg.Event)
		}
		if reg.Handler == nil {
			return fmt.Errorf("hook %d (%s): handler is required", i, reg.Name)
		}
		if reg.Name == "" {
			reg.Name = fmt.Sprintf("%s-%d", reg.Event, i)
		}
		table[reg.Event] = append(table[reg.Event], reg)
	}
	r.table = table
	return nil
}

// Registered returns how many handlers are installed for event.
func (r *Runner) Registered(event Event) int {
	return len(r.table[event])
}

// Fire runs every handler registered for event, strictly in registration
// order, each bounded by its own timeout. A handler that times out, errors,
// or returns a malformed result is logged and skipped; the remaining
// handlers still run unless that handler set StopOnError. Firing an event
// with no registrations returns an empty slice.
//
// Fire never returns an error: handler-level failures surface only as
// Results with a populated Err field.
func (r *Runner) Fire(ctx context.Context, event Event, payload Payload) []Result {
	regs := r.table[event]
	results := make([]Result, 0, len(regs))
	if len(regs) == 0 {
		return results
	}

	enriched := make(Payload, len(payload)+2)
	for k, v := range payload {
		enriched[k] = v
	}
	enriched["hook_event_name"] = string(event)
	enriched["project_root"] = r.projectRoot

	for _, reg := range regs {
		res := r.runOne(ctx, reg, enriched)
		results = append(results, res)
		if res.Failed() && reg.StopOnError {
			r.logger.Warn("hook aborted remaining handlers",
				"event", event,
				"handler", reg.Name,
			)
			break
		}
	}
	return results
}

// runOne executes a single handler with its timeout. A handler that exceeds
// its deadline is abandoned, not awaited; handlers must be safe to abandon.
func (r *Runner) runOne(ctx context.Context, reg Registration, payload Payload) Result {
	timeout := reg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	r.logger.Debug("hook start", "event", reg.Event, "handler", reg.Name, "timeout", timeout)

	hctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	start := time.Now()

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("hook panicked: %v", rec)}
			}
		}()
		res, err := reg.Handler.Execute(hctx, payload)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		elapsed := time.Since(start)
		if out.err != nil {
			r.logger.Error("hook failed",
				"event", reg.Event,
				"handler", reg.Name,
				"elapsed", elapsed,
				"error", out.err,
			)
			return Result{Handler: reg.Name, Err: out.err.Error(), Elapsed: elapsed}
		}
		out.res.Handler = reg.Name
		out.res.Elapsed = elapsed
		r.logger.Debug("hook done", "event", reg.Event, "handler", reg.Name, "elapsed", elapsed)
		return out.res

	case <-hctx.Done():
		elapsed := time.Since(start)
		r.logger.Error("hook timed out",
			"event", reg.Event,
			"handler", reg.Name,
			"elapsed", elapsed,
			"timeout", timeout,
		)
		return Result{
			Handler: reg.Name,
			Err:     fmt.Sprintf("timed out after %s", timeout),
			Elapsed: elapsed,
		}
	}
}
