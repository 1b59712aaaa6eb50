// ABOUTME: Tests for the permission gate's tier policy and grant lifecycle
// ABOUTME: Covers auto-allow, session always-allow, destructive refusal, and audit flow

package permission

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valet-labs/valet/internal/catalog"
	"github.com/valet-labs/valet/internal/store"
)

func setupGate(t *testing.T) (*Gate, *SessionRegistry) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "valet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	sessions := NewSessionRegistry()
	return NewGate(catalog.Default(), sessions, s, nil), sessions
}

func TestCanUseTool_ReadTier(t *testing.T) {
	g, _ := setupGate(t)

	d, err := g.CanUseTool("get_emails")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.False(t, d.RequiresConfirmation)
	assert.False(t, d.RequiresExplicitApproval)
	assert.Equal(t, GrantedByAuto, d.GrantedBy)
	assert.Equal(t, catalog.TierRead, d.Tier)
}

func TestCanUseTool_WriteTierWithoutGrant(t *testing.T) {
	g, _ := setupGate(t)

	d, err := g.CanUseTool("send_email")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.True(t, d.RequiresConfirmation)
	assert.Equal(t, GrantedByNone, d.GrantedBy)
}

func TestCanUseTool_WriteTierAlwaysAllow(t *testing.T) {
	g, _ := setupGate(t)
	ctx := context.Background()

	// First request: confirmation required, user approves with always-allow.
	d, err := g.CanUseTool("send_email")
	require.NoError(t, err)
	require.True(t, d.RequiresConfirmation)

	require.NoError(t, g.RecordDecision(ctx, DecisionRequest{
		Tool:        "send_email",
		Decision:    store.DecisionApproved,
		AlwaysAllow: true,
		Context:     map[string]any{"session_id": "s-1"},
	}))

	// Second request: allowed by session, no confirmation.
	d, err = g.CanUseTool("send_email")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.False(t, d.RequiresConfirmation)
	assert.Equal(t, GrantedBySession, d.GrantedBy)
}

func TestCanUseTool_DestructiveIgnoresSessionGrant(t *testing.T) {
	g, sessions := setupGate(t)

	// Force a grant into the registry directly; the gate must still refuse.
	sessions.grant("delete_contact", SessionGrant{Allowed: true, AlwaysAllow: true})

	d, err := g.CanUseTool("delete_contact")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.True(t, d.RequiresExplicitApproval)
	assert.Equal(t, GrantedByNone, d.GrantedBy)
	assert.NotEmpty(t, d.Warning)
}

func TestCanUseTool_UnknownToolIsHardError(t *testing.T) {
	g, _ := setupGate(t)

	_, err := g.CanUseTool("format_disk")
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrUnknownTool))
}

func TestRecordDecision_DestructiveNeverCreatesGrant(t *testing.T) {
	g, sessions := setupGate(t)
	ctx := context.Background()

	require.NoError(t, g.RecordDecision(ctx, DecisionRequest{
		Tool:        "delete_contact",
		Decision:    store.DecisionApproved,
		AlwaysAllow: true,
	}))

	_, ok := sessions.Lookup("delete_contact")
	assert.False(t, ok)

	// And the decision must still refuse on the next call.
	d, err := g.CanUseTool("delete_contact")
	require.NoError(t, err)
	assert.True(t, d.RequiresExplicitApproval)
}

func TestRecordDecision_DeniedDoesNotGrant(t *testing.T) {
	g, sessions := setupGate(t)

	require.NoError(t, g.RecordDecision(context.Background(), DecisionRequest{
		Tool:        "send_email",
		Decision:    store.DecisionDenied,
		AlwaysAllow: true,
	}))
	assert.Zero(t, sessions.Len())
}

func TestRecordDecision_UnknownTool(t *testing.T) {
	g, _ := setupGate(t)

	err := g.RecordDecision(context.Background(), DecisionRequest{
		Tool:     "format_disk",
		Decision: store.DecisionApproved,
	})
	assert.True(t, errors.Is(err, catalog.ErrUnknownTool))
}

func TestQueries_ReturnRecordedDecisions(t *testing.T) {
	g, _ := setupGate(t)
	ctx := context.Background()

	require.NoError(t, g.RecordDecision(ctx, DecisionRequest{Tool: "send_email", Decision: store.DecisionApproved}))
	require.NoError(t, g.RecordDecision(ctx, DecisionRequest{Tool: "send_email", Decision: store.DecisionDenied}))
	require.NoError(t, g.RecordDecision(ctx, DecisionRequest{Tool: "get_emails", Decision: store.DecisionAutoAllowed}))

	byTool, err := g.QueryByTool(ctx, "send_email", 0)
	require.NoError(t, err)
	assert.Len(t, byTool, 2)

	byDecision, err := g.QueryByDecision(ctx, store.DecisionAutoAllowed, 0)
	require.NoError(t, err)
	require.Len(t, byDecision, 1)
	assert.Equal(t, "get_emails", byDecision[0].Tool)
}

func TestSessionReset_RevertsToConfirmation(t *testing.T) {
	g, sessions := setupGate(t)
	ctx := context.Background()

	require.NoError(t, g.RecordDecision(ctx, DecisionRequest{
		Tool:        "send_email",
		Decision:    store.DecisionApproved,
		AlwaysAllow: true,
	}))

	d, err := g.CanUseTool("send_email")
	require.NoError(t, err)
	require.Equal(t, GrantedBySession, d.GrantedBy)

	sessions.Reset()

	d, err = g.CanUseTool("send_email")
	require.NoError(t, err)
	assert.True(t, d.RequiresConfirmation)
	assert.Equal(t, GrantedByNone, d.GrantedBy)
}
