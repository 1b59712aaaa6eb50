// Package orchestrator owns the butler's per-turn control flow.
//
// # Turn lifecycle
//
// A user turn moves through: received, classified, delegating,
// subagent_running, subagent_complete, synthesizing, responded. The terminal
// state is responded; nothing is retried automatically. A failed sub-agent
// invocation transitions straight to synthesis with a Success=false result.
//
// # Routing
//
// The Classifier (an external model call) either answers directly or names
// one or two delegation targets with confidence scores. Low-confidence
// intents are discarded: answering directly beats guessing a target. A turn
// with two confident intents ("schedule a meeting and draft the email")
// sequences both delegations and synthesizes one combined reply.
//
// # Failure policy
//
// Hook failures, sub-agent errors, panics, and timeouts are all recovered
// inside this package and converted into graceful, context-preserving
// replies. The only errors HandleUserMessage returns are persistence
// failures. Raw error text never reaches the user.
package orchestrator
