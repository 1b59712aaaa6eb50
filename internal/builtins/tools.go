// ABOUTME: In-memory stub implementations for the default tool catalog
// ABOUTME: Back the chat REPL and tests when no real integrations are wired

package builtins

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/valet-labs/valet/internal/agent"
)

// Workspace holds the in-memory state the stub tools operate on.
// It stands in for real calendar, mail, notes, and contact integrations.
type Workspace struct {
	mu       sync.Mutex
	emails   []string
	events   []string
	notes    []string
	contacts []string
}

// NewWorkspace seeds a workspace with a little plausible data.
func NewWorkspace() *Workspace {
	return &Workspace{
		emails:   []string{"Dana: Q3 numbers attached", "Gym: your membership renews Friday"},
		contacts: []string{"Dana Whitmore <dana@example.com>", "Marcus Lee <marcus@example.com>"},
		notes:    []string{"Packing list for Denver trip"},
	}
}

// Tools returns ToolFunc implementations for every entry in the default
// catalog, operating on the workspace.
func (w *Workspace) Tools() map[string]agent.ToolFunc {
	return map[string]agent.ToolFunc{
		"get_emails": func(ctx context.Context, args map[string]any) (any, error) {
			w.mu.Lock()
			defer w.mu.Unlock()
			return append([]string(nil), w.emails...), nil
		},
		"get_calendar": func(ctx context.Context, args map[string]any) (any, error) {
			w.mu.Lock()
			defer w.mu.Unlock()
			return append([]string(nil), w.events...), nil
		},
		"get_contacts": func(ctx context.Context, args map[string]any) (any, error) {
			w.mu.Lock()
			defer w.mu.Unlock()
			return append([]string(nil), w.contacts...), nil
		},
		"search_notes": func(ctx context.Context, args map[string]any) (any, error) {
			w.mu.Lock()
			defer w.mu.Unlock()
			return append([]string(nil), w.notes...), nil
		},
		"send_email": func(ctx context.Context, args map[string]any) (any, error) {
			w.mu.Lock()
			defer w.mu.Unlock()
			w.emails = append(w.emails, fmt.Sprintf("sent %s: %v", time.Now().Format("15:04"), args["to"]))
			return "email queued", nil
		},
		"create_event": func(ctx context.Context, args map[string]any) (any, error) {
			w.mu.Lock()
			defer w.mu.Unlock()
			w.events = append(w.events, fmt.Sprintf("%v", args["title"]))
			return "event created", nil
		},
		"update_event": func(ctx context.Context, args map[string]any) (any, error) {
			return "event updated", nil
		},
		"create_note": func(ctx context.Context, args map[string]any) (any, error) {
			w.mu.Lock()
			defer w.mu.Unlock()
			w.notes = append(w.notes, fmt.Sprintf("%v", args["content"]))
			return "note saved", nil
		},
		"add_contact": func(ctx context.Context, args map[string]any) (any, error) {
			w.mu.Lock()
			defer w.mu.Unlock()
			w.contacts = append(w.contacts, fmt.Sprintf("%v", args["name"]))
			return "contact added", nil
		},
		"delete_event": func(ctx context.Context, args map[string]any) (any, error) {
			return "event deleted", nil
		},
		"delete_contact": func(ctx context.Context, args map[string]any) (any, error) {
			return "contact deleted", nil
		},
		"delete_note": func(ctx context.Context, args map[string]any) (any, error) {
			return "note deleted", nil
		},
	}
}
