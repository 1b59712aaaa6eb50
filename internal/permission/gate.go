// ABOUTME: Permission gate combining tool risk tier with session grants
// ABOUTME: Pure decision function plus the single write path for grants and audit

package permission

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valet-labs/valet/internal/catalog"
	"github.com/valet-labs/valet/internal/store"
)

// GrantedBy identifies what authorized an allowed decision.
type GrantedBy string

const (
	GrantedByAuto    GrantedBy = "auto"    // read tier, never prompted
	GrantedBySession GrantedBy = "session" // prior always-allow grant
	GrantedByUser    GrantedBy = "user"    // fresh per-call approval
	GrantedByNone    GrantedBy = "none"    // not allowed yet
)

// Decision is the gate's verdict for one tool call. It is computed, never
// stored: a pure function of the catalog entry and session state.
type Decision struct {
	Allowed                  bool
	RequiresConfirmation     bool
	RequiresExplicitApproval bool
	Tier                     catalog.Tier
	GrantedBy                GrantedBy
	Warning                  string // catalog warning text, destructive only
}

// AuditStore is what the gate needs from persistence.
type AuditStore interface {
	AppendAudit(ctx context.Context, rec *store.AuditRecord) error
	QueryAuditByTool(ctx context.Context, tool string, limit int) ([]store.AuditRecord, error)
	QueryAuditByDecision(ctx context.Context, decision store.AuditDecision, limit int) ([]store.AuditRecord, error)
}

// Gate decides whether a tool call executes immediately, requires a user
// prompt, or is blocked pending explicit approval.
type Gate struct {
	catalog  *catalog.Catalog
	sessions *SessionRegistry
	audit    AuditStore
	logger   *slog.Logger
}

// NewGate creates a Gate. Pass nil logger for the default.
func NewGate(cat *catalog.Catalog, sessions *SessionRegistry, audit AuditStore, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		catalog:  cat,
		sessions: sessions,
		audit:    audit,
		logger:   logger.With("component", "permission"),
	}
}

// CanUseTool evaluates the permission decision for a tool call.
// Unknown tool names are a hard error: the caller must not proceed.
// The call has no side effects; the eventual human decision is recorded
// separately via RecordDecision.
func (g *Gate) CanUseTool(name string) (Decision, error) {
	tool, err := g.catalog.Lookup(name)
	if err != nil {
		return Decision{}, err
	}

	switch tool.Tier {
	case catalog.TierRead:
		return Decision{
			Allowed:   true,
			Tier:      tool.Tier,
			GrantedBy: GrantedByAuto,
		}, nil

	case catalog.TierWrite:
		if grant, ok := g.sessions.Lookup(name); ok && grant.Allowed && grant.AlwaysAllow {
			return Decision{
				Allowed:   true,
				Tier:      tool.Tier,
				GrantedBy: GrantedBySession,
			}, nil
		}
		return Decision{
			Allowed:              true,
			RequiresConfirmation: true,
			Tier:                 tool.Tier,
			GrantedBy:            GrantedByNone,
		}, nil

	case catalog.TierDestructive:
		// Session grants are ignored entirely: destructive tools demand a
		// fresh, per-call explicit approval with the warning shown.
		return Decision{
			Allowed:                  false,
			RequiresExplicitApproval: true,
			Tier:                     tool.Tier,
			GrantedBy:                GrantedByNone,
			Warning:                  tool.Warning,
		}, nil
	}

	return Decision{}, fmt.Errorf("tool %q: unhandled tier %q", name, tool.Tier)
}

// DecisionRequest describes one human (or policy) decision to record.
type DecisionRequest struct {
	Tool        string
	Decision    store.AuditDecision
	AlwaysAllow bool
	Context     map[string]any
}

// RecordDecision writes one immutable audit record and, for an approved
// always-allow on a non-destructive tool, upserts the session grant.
// This is the only way session grants are created.
func (g *Gate) RecordDecision(ctx context.Context, req DecisionRequest) error {
	tool, err := g.catalog.Lookup(req.Tool)
	if err != nil {
		return err
	}

	rec := &store.AuditRecord{
		Tool:        req.Tool,
		Decision:    req.Decision,
		AlwaysAllow: req.AlwaysAllow,
		Context:     req.Context,
	}
	if err := g.audit.AppendAudit(ctx, rec); err != nil {
		return fmt.Errorf("recording decision: %w", err)
	}

	if req.Decision == store.DecisionApproved && req.AlwaysAllow && tool.Tier != catalog.TierDestructive {
		g.sessions.grant(req.Tool, SessionGrant{Allowed: true, AlwaysAllow: true})
		g.logger.Info("session grant recorded", "tool", req.Tool)
	}
	return nil
}

// QueryByTool returns the audit records for a tool, newest first.
func (g *Gate) QueryByTool(ctx context.Context, tool string, limit int) ([]store.AuditRecord, error) {
	return g.audit.QueryAuditByTool(ctx, tool, limit)
}

// QueryByDecision returns the audit records with a decision kind, newest first.
func (g *Gate) QueryByDecision(ctx context.Context, decision store.AuditDecision, limit int) ([]store.AuditRecord, error) {
	return g.audit.QueryAuditByDecision(ctx, decision, limit)
}
