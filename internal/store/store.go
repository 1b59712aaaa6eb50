// ABOUTME: Store data types and errors for valet persistence
// ABOUTME: Defines audit records, conversation turns, and preference rows

package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// AuditDecision is the outcome recorded for one permission evaluation.
type AuditDecision string

const (
	DecisionApproved    AuditDecision = "approved"
	DecisionDenied      AuditDecision = "denied"
	DecisionAutoAllowed AuditDecision = "auto_allowed"
)

// ValidAuditDecisions lists all valid audit decisions.
var ValidAuditDecisions = []AuditDecision{DecisionApproved, DecisionDenied, DecisionAutoAllowed}

// AuditRecord is one immutable entry in the permission audit trail.
// Records are append-only: never mutated or deleted.
type AuditRecord struct {
	ID          string         // UUID v4
	Tool        string         // tool the decision was about
	Decision    AuditDecision  // approved, denied, auto_allowed
	AlwaysAllow bool           // whether the grant extends for the session
	Context     map[string]any // free-form context (session id, argument summary)
	Timestamp   time.Time      // when the decision was recorded
}

// Turn roles stored in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single conversation history entry.
// Insertion order is conversational order.
type Turn struct {
	ID          string
	SessionID   string
	Role        string // "user" or "assistant"
	Content     string
	DelegatedTo string // specialist that produced this turn, if any
	CreatedAt   time.Time
}

// Preference is one learned user preference consulted at delegation time.
type Preference struct {
	Key        string
	Value      string
	Confidence float64 // in [0,1]
	UpdatedAt  time.Time
}
