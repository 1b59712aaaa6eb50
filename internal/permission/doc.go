// Package permission gates state-changing tool calls behind a tiered policy
// with session grants and a durable audit trail.
//
// # Tiers
//
// Every tool carries one of three catalog tiers:
//
//   - read: allowed immediately, never prompted (GrantedBy=auto)
//   - write: allowed with confirmation, unless the user previously chose
//     "always allow" for that tool this session (GrantedBy=session)
//   - destructive: never allowed on prior state alone; each call demands a
//     fresh explicit approval and carries the catalog's warning text
//
// The destructive rule is the load-bearing one: a session grant for a
// destructive tool is ignored even if one somehow exists, so the calling
// surface is forced through the two-step warning flow on every call.
//
// # State
//
// SessionRegistry holds grants for the lifetime of one process run. It is
// mutated only through Gate.RecordDecision and cleared by Reset or restart;
// it never touches durable storage. Audit records go the other way: every
// recorded decision is appended to the store and never mutated.
package permission
