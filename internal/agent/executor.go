// ABOUTME: The single path a tool call takes: gate decision, approval, hooks, execution
// ABOUTME: Unknown tools fail loud; denials are normal audited outcomes, not errors

package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/valet-labs/valet/internal/hooks"
	"github.com/valet-labs/valet/internal/permission"
	"github.com/valet-labs/valet/internal/store"
)

// ErrNotPermitted indicates the user or tier policy refused a tool call.
// It is a normal outcome: recorded in the audit trail and surfaced to the
// calling agent, never propagated as a crash.
var ErrNotPermitted = errors.New("tool use not permitted")

// ToolFunc is the implementation behind one catalog entry.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// Gate is what the executor needs from the permission layer.
type Gate interface {
	CanUseTool(name string) (permission.Decision, error)
	RecordDecision(ctx context.Context, req permission.DecisionRequest) error
}

// HookRunner is what the executor needs from the hook layer.
type HookRunner interface {
	Fire(ctx context.Context, event hooks.Event, payload hooks.Payload) []hooks.Result
}

// Approver is the user-facing confirmation boundary. ConfirmWrite asks a
// yes/no/always question; ConfirmDestructive must present the warning and a
// second explicit confirmation step before returning true.
type Approver interface {
	ConfirmWrite(ctx context.Context, tool string, args map[string]any) (approved, alwaysAllow bool, err error)
	ConfirmDestructive(ctx context.Context, tool, warning string, args map[string]any) (bool, error)
}

// ToolExecutor runs tool calls on behalf of sub-agents. Every call passes
// the permission gate and the PreToolUse/PostToolUse hook boundaries.
type ToolExecutor struct {
	gate     Gate
	runner   HookRunner
	approver Approver
	impls    map[string]ToolFunc
	logger   *slog.Logger
}

// NewToolExecutor creates a ToolExecutor. Pass nil logger for the default.
func NewToolExecutor(gate Gate, runner HookRunner, approver Approver, impls map[string]ToolFunc, logger *slog.Logger) *ToolExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolExecutor{
		gate:     gate,
		runner:   runner,
		approver: approver,
		impls:    impls,
		logger:   logger.With("component", "executor"),
	}
}

// Execute runs one tool call end to end for a session.
// Returns ErrNotPermitted when policy or the user refuses; any other error
// is a configuration or execution failure.
func (e *ToolExecutor) Execute(ctx context.Context, sessionID, name string, args map[string]any) (any, error) {
	decision, err := e.gate.CanUseTool(name)
	if err != nil {
		// Unknown tool: a configuration error, distinct from a denial.
		return nil, err
	}

	// Resolve the implementation before prompting anyone. A cataloged tool
	// with no implementation is a configuration error, and the user must
	// not be asked to approve a call that cannot run.
	impl, ok := e.impls[name]
	if !ok {
		return nil, fmt.Errorf("tool %q has no implementation", name)
	}

	auditCtx := map[string]any{
		"session_id": sessionID,
		"args":       summarizeArgs(args),
	}

	switch {
	case decision.RequiresExplicitApproval:
		approved, err := e.approver.ConfirmDestructive(ctx, name, decision.Warning, args)
		if err != nil {
			return nil, fmt.Errorf("confirming destructive tool %q: %w", name, err)
		}
		outcome := store.DecisionDenied
		if approved {
			outcome = store.DecisionApproved
		}
		// Destructive approvals are per-call only; AlwaysAllow is never set.
		if err := e.gate.RecordDecision(ctx, permission.DecisionRequest{
			Tool: name, Decision: outcome, Context: auditCtx,
		}); err != nil {
			return nil, err
		}
		if !approved {
			return nil, fmt.Errorf("%w: %s", ErrNotPermitted, name)
		}

	case decision.RequiresConfirmation:
		approved, alwaysAllow, err := e.approver.ConfirmWrite(ctx, name, args)
		if err != nil {
			return nil, fmt.Errorf("confirming tool %q: %w", name, err)
		}
		outcome := store.DecisionDenied
		if approved {
			outcome = store.DecisionApproved
		}
		if err := e.gate.RecordDecision(ctx, permission.DecisionRequest{
			Tool: name, Decision: outcome, AlwaysAllow: approved && alwaysAllow, Context: auditCtx,
		}); err != nil {
			return nil, err
		}
		if !approved {
			return nil, fmt.Errorf("%w: %s", ErrNotPermitted, name)
		}

	default:
		// Auto or session allow: still audited.
		auditCtx["granted_by"] = string(decision.GrantedBy)
		if err := e.gate.RecordDecision(ctx, permission.DecisionRequest{
			Tool: name, Decision: store.DecisionAutoAllowed, Context: auditCtx,
		}); err != nil {
			return nil, err
		}
	}

	payload := hooks.Payload{
		"session_id": sessionID,
		"tool_name":  name,
		"tool_args":  args,
	}
	for _, res := range e.runner.Fire(ctx, hooks.PreToolUse, payload) {
		if res.PermissionDecision == hooks.DecisionDeny {
			e.logger.Info("tool blocked by hook",
				"tool", name,
				"handler", res.Handler,
				"message", res.Message,
			)
			hookCtx := map[string]any{
				"session_id": sessionID,
				"denied_by":  res.Handler,
				"reason":     res.Message,
			}
			if err := e.gate.RecordDecision(ctx, permission.DecisionRequest{
				Tool: name, Decision: store.DecisionDenied, Context: hookCtx,
			}); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s blocked by hook %s", ErrNotPermitted, name, res.Handler)
		}
	}

	start := time.Now()
	out, execErr := impl(ctx, args)
	elapsed := time.Since(start)

	post := hooks.Payload{
		"session_id": sessionID,
		"tool_name":  name,
		"elapsed_ms": elapsed.Milliseconds(),
		"success":    execErr == nil,
	}
	e.runner.Fire(ctx, hooks.PostToolUse, post)

	if execErr != nil {
		return nil, fmt.Errorf("executing tool %q: %w", name, execErr)
	}
	e.logger.Debug("tool executed", "tool", name, "session_id", sessionID, "elapsed", elapsed)
	return out, nil
}

// summarizeArgs produces a compact argument summary for the audit trail.
// Values are stringified and truncated so the context map stays small.
func summarizeArgs(args map[string]any) map[string]string {
	const maxLen = 120
	out := make(map[string]string, len(args))
	for k, v := range args {
		s := fmt.Sprintf("%v", v)
		if len(s) > maxLen {
			s = s[:maxLen] + "..."
		}
		out[k] = s
	}
	return out
}
