// Package agent defines the agent identities in the household roster and the
// executor every tool call flows through.
//
// # Identities
//
// ID names an agent. Butler is the orchestrating agent; Scheduler,
// Correspondent, Librarian, and Concierge are the delegation targets.
// Parse validates free-form input against the roster.
//
// # Results
//
// Result is the uniform envelope a sub-agent returns from an invocation:
// success flag, human-readable summary, optional follow-up, and the tools it
// used. Failure constructs the envelope for an invocation that could not
// complete, keeping the summary safe to show a user.
//
// # Tool execution
//
// ToolExecutor is the single path from an agent to a tool implementation.
// Every call is checked against the permission gate, confirmed with the
// approver when the tier requires it, surrounded by PreToolUse and
// PostToolUse hooks, and recorded in the audit log:
//
//	exec := agent.NewToolExecutor(gate, runner, approver, impls, logger)
//	out, err := exec.Execute(ctx, sessionID, "send_email", args)
//
// A denial, whether from the approver or from a PreToolUse hook, surfaces as
// ErrNotPermitted so callers can distinguish policy from failure.
package agent
