// ABOUTME: Delegation context value object handed from the butler to a specialist
// ABOUTME: Owned by the orchestrator for one invocation, discarded after synthesis

package delegation

import (
	"fmt"

	"github.com/valet-labs/valet/internal/agent"
	"github.com/valet-labs/valet/internal/store"
)

// Entity kinds the builder extracts from a message.
const (
	EntityContact = "contact"
	EntityProject = "project"
)

// Entity is one extracted free-text token with its kind.
type Entity struct {
	Kind string
	Text string
}

// HistoryTurn is one prior conversation turn included in the context.
// Slice order is conversational order.
type HistoryTurn struct {
	Role    string
	Content string
}

// Context is the package of information handed to a sub-agent.
// It is created per delegation and never persisted beyond the turn.
type Context struct {
	Origin         agent.ID
	Target         agent.ID
	Message        string // verbatim originating user message
	Entities       []Entity
	TimeConstraint string // free-text, empty when none
	History        []HistoryTurn
	Preferences    []store.Preference
	Rationale      string // why the butler chose this specialist
}

// Validate checks the context invariants.
func (c *Context) Validate() error {
	if !c.Origin.Valid() {
		return fmt.Errorf("invalid origin agent %q", c.Origin)
	}
	if !c.Target.Valid() {
		return fmt.Errorf("invalid target agent %q", c.Target)
	}
	if c.Origin == c.Target {
		return fmt.Errorf("agent %q cannot delegate to itself", c.Origin)
	}
	if c.Message == "" {
		return fmt.Errorf("originating message is required")
	}
	return nil
}
