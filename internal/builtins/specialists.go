// ABOUTME: Rule-based specialist sub-agents used when no model backend is configured
// ABOUTME: Each runs its tools through the executor, so the full permission path applies

package builtins

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/valet-labs/valet/internal/agent"
	"github.com/valet-labs/valet/internal/delegation"
	"github.com/valet-labs/valet/internal/orchestrator"
)

// specialist is a deterministic sub-agent: it runs a fixed tool plan derived
// from the delegation context. Real deployments swap these for model-backed
// implementations behind the same interface.
type specialist struct {
	id   agent.ID
	exec *agent.ToolExecutor
	plan func(dctx delegation.Context) []plannedCall
}

type plannedCall struct {
	tool string
	args map[string]any
}

// Invoke runs the plan. A permission denial on one call is reported in the
// summary rather than failing the whole invocation; other errors fail it.
func (s *specialist) Invoke(ctx context.Context, dctx delegation.Context) (agent.Result, error) {
	var (
		used    []string
		outputs []string
		denied  []string
	)
	for _, call := range s.plan(dctx) {
		out, err := s.exec.Execute(ctx, sessionKey(dctx), call.tool, call.args)
		if err != nil {
			if errors.Is(err, agent.ErrNotPermitted) {
				denied = append(denied, call.tool)
				continue
			}
			return agent.Result{}, fmt.Errorf("%s: %w", call.tool, err)
		}
		used = append(used, call.tool)
		outputs = append(outputs, fmt.Sprintf("%v", out))
	}

	summary := strings.Join(outputs, "; ")
	if len(denied) > 0 {
		if summary != "" {
			summary += ". "
		}
		summary += fmt.Sprintf("skipped %s (not permitted)", strings.Join(denied, ", "))
	}
	if summary == "" {
		summary = "nothing to do"
	}

	return agent.Result{
		Agent:     s.id,
		Success:   true,
		Summary:   summary,
		ToolsUsed: used,
	}, nil
}

// sessionKey pulls a stable session identifier out of the context history.
// The stub specialists have no session plumbing of their own.
func sessionKey(dctx delegation.Context) string {
	return string(dctx.Origin) + ">" + string(dctx.Target)
}

// Specialists binds a rule-based implementation for every delegation target.
func Specialists(exec *agent.ToolExecutor, reg *orchestrator.Registry) error {
	plans := map[agent.ID]func(dctx delegation.Context) []plannedCall{
		agent.Scheduler: func(dctx delegation.Context) []plannedCall {
			title := dctx.Message
			if dctx.TimeConstraint != "" {
				title += " (" + dctx.TimeConstraint + ")"
			}
			return []plannedCall{
				{tool: "get_calendar"},
				{tool: "create_event", args: map[string]any{"title": title}},
			}
		},
		agent.Correspondent: func(dctx delegation.Context) []plannedCall {
			to := "them"
			for _, e := range dctx.Entities {
				if e.Kind == delegation.EntityContact {
					to = e.Text
					break
				}
			}
			return []plannedCall{
				{tool: "send_email", args: map[string]any{"to": to, "body": dctx.Message}},
			}
		},
		agent.Librarian: func(dctx delegation.Context) []plannedCall {
			return []plannedCall{
				{tool: "search_notes", args: map[string]any{"query": dctx.Message}},
			}
		},
		agent.Concierge: func(dctx delegation.Context) []plannedCall {
			return []plannedCall{
				{tool: "get_contacts"},
			}
		},
	}

	for id, plan := range plans {
		if err := reg.Bind(id, &specialist{id: id, exec: exec, plan: plan}); err != nil {
			return fmt.Errorf("binding %s: %w", id, err)
		}
	}
	return nil
}
