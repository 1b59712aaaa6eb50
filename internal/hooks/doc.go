// Package hooks fires configurable handlers at conversation lifecycle
// boundaries.
//
// # Overview
//
// Five events exist: SessionStart, UserPromptSubmit, PreToolUse, PostToolUse,
// and Stop. Handlers are registered once at startup and fired by the
// orchestrator and the tool-execution path:
//
//	runner := hooks.NewRunner(projectRoot, logger)
//	runner.Register(regs)
//	results := runner.Fire(ctx, hooks.PreToolUse, hooks.Payload{
//	    "session_id": sessionID,
//	    "tool_name":  "get_emails",
//	})
//
// # Contract
//
// Three properties are guaranteed regardless of handler mechanism:
//
//   - Ordering: handlers for an event run in registration order, and the
//     returned result slice is in that same order.
//   - Timeouts: each handler is bounded by its own configured timeout
//     (DefaultTimeout when unset). A handler past its deadline is abandoned,
//     so handlers must be idempotent or otherwise safe to abandon.
//   - Isolation: one handler's timeout, error, or panic never aborts its
//     siblings or the caller. Fire never returns an error; failures appear
//     as Results carrying an Err field.
//
// # Handlers
//
// Handler is a capability interface. CommandHandler shells out with a JSON
// payload on stdin and parses structured JSON from stdout (exit 2 maps to a
// deny decision with stderr as the message). HandlerFunc adapts in-process
// functions, which is what tests and built-in hooks use.
package hooks
