// ABOUTME: Lifecycle event enumeration and hook payload/result types
// ABOUTME: Events are a fixed set; firing anything else is a documented no-op

package hooks

import "time"

// Event names a lifecycle boundary hooks can attach to.
type Event string

const (
	SessionStart     Event = "SessionStart"
	UserPromptSubmit Event = "UserPromptSubmit"
	PreToolUse       Event = "PreToolUse"
	PostToolUse      Event = "PostToolUse"
	Stop             Event = "Stop"
)

// ValidEvents lists every lifecycle event in the order they occur in a turn.
var ValidEvents = []Event{SessionStart, UserPromptSubmit, PreToolUse, PostToolUse, Stop}

// Valid reports whether e is one of the five lifecycle events.
func (e Event) Valid() bool {
	switch e {
	case SessionStart, UserPromptSubmit, PreToolUse, PostToolUse, Stop:
		return true
	}
	return false
}

// Payload carries event-specific context values handed to each handler.
// The runner adds the standard derived fields (event name, project root)
// before dispatch; callers supply the rest (session id, tool name, message).
type Payload map[string]any

// Permission decisions a PreToolUse handler may return.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
	DecisionAsk   = "ask"
)

// Result is one handler's contribution to a fired event.
// A failed handler carries only Handler, Err, and Elapsed.
type Result struct {
	Handler            string        // registration name
	PermissionDecision string        // allow, deny, ask, or empty
	AdditionalContext  string        // extra context to inject into the prompt
	Message            string        // human-readable note from the handler
	Err                string        // non-empty when the handler failed
	Elapsed            time.Duration // wall time the handler ran
}

// Failed reports whether the handler errored or timed out.
func (r Result) Failed() bool {
	return r.Err != ""
}
