// ABOUTME: Sub-agent invocation result consumed immediately by the orchestrator
// ABOUTME: Failures become Success=false results, never exceptions crossing the boundary

package agent

// Result is what a sub-agent invocation produces. It is consumed by the
// orchestrator for synthesis and not independently persisted.
type Result struct {
	Agent     ID             // who produced this result
	Success   bool           // false converts to an apologetic synthesized reply
	Payload   map[string]any // opaque structured output
	Summary   string         // human-readable summary used for synthesis
	FollowUp  string         // optional suggested follow-up
	ToolsUsed []string       // tool names invoked during the run
	TokenCost int            // tokens spent by the invocation
}

// Failure builds a failed result for an agent. The raw error text stays out
// of Summary so it never leaks verbatim into a user-visible reply.
func Failure(id ID, summary string) Result {
	return Result{
		Agent:   id,
		Success: false,
		Summary: summary,
	}
}
