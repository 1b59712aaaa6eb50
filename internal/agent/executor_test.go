// ABOUTME: Tests for the tool execution path: gate, approval, hooks, execution
// ABOUTME: Covers auto-allow, confirmation flows, hook denials, and unknown tools

package agent

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valet-labs/valet/internal/catalog"
	"github.com/valet-labs/valet/internal/hooks"
	"github.com/valet-labs/valet/internal/permission"
	"github.com/valet-labs/valet/internal/store"
)

// scriptedApprover answers confirmation prompts with canned decisions.
type scriptedApprover struct {
	approveWrite     bool
	alwaysAllow      bool
	approveDestruct  bool
	writeAsked       int
	destructiveAsked int
}

func (a *scriptedApprover) ConfirmWrite(ctx context.Context, tool string, args map[string]any) (bool, bool, error) {
	a.writeAsked++
	return a.approveWrite, a.alwaysAllow, nil
}

func (a *scriptedApprover) ConfirmDestructive(ctx context.Context, tool, warning string, args map[string]any) (bool, error) {
	a.destructiveAsked++
	return a.approveDestruct, nil
}

type executorFixture struct {
	exec     *ToolExecutor
	gate     *permission.Gate
	store    *store.SQLiteStore
	approver *scriptedApprover
	runner   *hooks.Runner
	calls    []string
}

func setupExecutor(t *testing.T, approver *scriptedApprover) *executorFixture {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "valet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	gate := permission.NewGate(catalog.Default(), permission.NewSessionRegistry(), s, nil)
	runner := hooks.NewRunner(t.TempDir(), nil)

	f := &executorFixture{gate: gate, store: s, approver: approver, runner: runner}
	impls := map[string]ToolFunc{
		"get_emails": func(ctx context.Context, args map[string]any) (any, error) {
			f.calls = append(f.calls, "get_emails")
			return []string{"inbox is empty"}, nil
		},
		"send_email": func(ctx context.Context, args map[string]any) (any, error) {
			f.calls = append(f.calls, "send_email")
			return "sent", nil
		},
		"delete_contact": func(ctx context.Context, args map[string]any) (any, error) {
			f.calls = append(f.calls, "delete_contact")
			return "deleted", nil
		},
	}
	f.exec = NewToolExecutor(gate, runner, approver, impls, nil)
	return f
}

func TestExecute_ReadTierAutoAllowed(t *testing.T) {
	f := setupExecutor(t, &scriptedApprover{})
	ctx := context.Background()

	out, err := f.exec.Execute(ctx, "s-1", "get_emails", nil)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Zero(t, f.approver.writeAsked)

	records, err := f.store.QueryAuditByTool(ctx, "get_emails", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, store.DecisionAutoAllowed, records[0].Decision)
}

func TestExecute_WriteTierApproved(t *testing.T) {
	f := setupExecutor(t, &scriptedApprover{approveWrite: true})
	ctx := context.Background()

	_, err := f.exec.Execute(ctx, "s-1", "send_email", map[string]any{"to": "dana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.approver.writeAsked)
	assert.Equal(t, []string{"send_email"}, f.calls)

	records, err := f.store.QueryAuditByTool(ctx, "send_email", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, store.DecisionApproved, records[0].Decision)
}

func TestExecute_WriteTierDenied(t *testing.T) {
	f := setupExecutor(t, &scriptedApprover{approveWrite: false})
	ctx := context.Background()

	_, err := f.exec.Execute(ctx, "s-1", "send_email", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotPermitted))
	assert.Empty(t, f.calls)

	records, err := f.store.QueryAuditByTool(ctx, "send_email", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, store.DecisionDenied, records[0].Decision)
}

func TestExecute_AlwaysAllowSkipsSecondPrompt(t *testing.T) {
	f := setupExecutor(t, &scriptedApprover{approveWrite: true, alwaysAllow: true})
	ctx := context.Background()

	_, err := f.exec.Execute(ctx, "s-1", "send_email", nil)
	require.NoError(t, err)
	require.Equal(t, 1, f.approver.writeAsked)

	// Second call: session grant applies, no prompt.
	_, err = f.exec.Execute(ctx, "s-1", "send_email", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.approver.writeAsked)

	records, err := f.store.QueryAuditByTool(ctx, "send_email", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Newest first: the session-granted call is audited as auto_allowed.
	assert.Equal(t, store.DecisionAutoAllowed, records[0].Decision)
	assert.Equal(t, "session", records[0].Context["granted_by"])
}

func TestExecute_DestructiveAlwaysPrompts(t *testing.T) {
	f := setupExecutor(t, &scriptedApprover{approveDestruct: true})
	ctx := context.Background()

	_, err := f.exec.Execute(ctx, "s-1", "delete_contact", nil)
	require.NoError(t, err)
	_, err = f.exec.Execute(ctx, "s-1", "delete_contact", nil)
	require.NoError(t, err)

	// Prompted both times: destructive approvals never persist for a session.
	assert.Equal(t, 2, f.approver.destructiveAsked)
}

func TestExecute_DestructiveDenied(t *testing.T) {
	f := setupExecutor(t, &scriptedApprover{approveDestruct: false})
	ctx := context.Background()

	_, err := f.exec.Execute(ctx, "s-1", "delete_contact", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotPermitted))
	assert.Empty(t, f.calls)
}

func TestExecute_UnknownToolFailsLoud(t *testing.T) {
	f := setupExecutor(t, &scriptedApprover{})

	_, err := f.exec.Execute(context.Background(), "s-1", "format_disk", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrUnknownTool))
	assert.False(t, errors.Is(err, ErrNotPermitted))
}

func TestExecute_UnimplementedToolFailsBeforePrompting(t *testing.T) {
	f := setupExecutor(t, &scriptedApprover{approveWrite: true})
	ctx := context.Background()

	// create_event is cataloged (write tier) but has no implementation in
	// the fixture. The call must fail before the user is asked to approve
	// it, and nothing gets audited for a call that never ran.
	_, err := f.exec.Execute(ctx, "s-1", "create_event", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no implementation")
	assert.False(t, errors.Is(err, ErrNotPermitted))
	assert.Zero(t, f.approver.writeAsked)

	records, err := f.store.QueryAuditByTool(ctx, "create_event", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExecute_PreToolUseHookDenies(t *testing.T) {
	f := setupExecutor(t, &scriptedApprover{})
	require.NoError(t, f.runner.Register([]hooks.Registration{{
		Event: hooks.PreToolUse,
		Name:  "policy",
		Handler: hooks.HandlerFunc(func(ctx context.Context, p hooks.Payload) (hooks.Result, error) {
			return hooks.Result{PermissionDecision: hooks.DecisionDeny, Message: "quiet hours"}, nil
		}),
	}}))

	_, err := f.exec.Execute(context.Background(), "s-1", "get_emails", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotPermitted))
	assert.Empty(t, f.calls)
}

func TestExecute_PostToolUseHookFires(t *testing.T) {
	f := setupExecutor(t, &scriptedApprover{})

	var fired []string
	require.NoError(t, f.runner.Register([]hooks.Registration{{
		Event: hooks.PostToolUse,
		Name:  "tracker",
		Handler: hooks.HandlerFunc(func(ctx context.Context, p hooks.Payload) (hooks.Result, error) {
			fired = append(fired, p["tool_name"].(string))
			return hooks.Result{}, nil
		}),
	}}))

	_, err := f.exec.Execute(context.Background(), "s-1", "get_emails", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"get_emails"}, fired)
}

func TestExecute_HookFailureDoesNotBlockTool(t *testing.T) {
	f := setupExecutor(t, &scriptedApprover{})
	require.NoError(t, f.runner.Register([]hooks.Registration{{
		Event: hooks.PreToolUse,
		Name:  "flaky",
		Handler: hooks.HandlerFunc(func(ctx context.Context, p hooks.Payload) (hooks.Result, error) {
			return hooks.Result{}, errors.New("hook infrastructure down")
		}),
	}}))

	_, err := f.exec.Execute(context.Background(), "s-1", "get_emails", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"get_emails"}, f.calls)
}
