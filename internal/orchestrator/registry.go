// ABOUTME: Binds agent identities to their sub-agent implementations
// ABOUTME: The roster is fixed at startup; lookups for unbound agents fail loud

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/valet-labs/valet/internal/agent"
	"github.com/valet-labs/valet/internal/delegation"
)

// ErrNoSuchAgent indicates a delegation target with no bound implementation.
var ErrNoSuchAgent = errors.New("no such agent")

// SubAgent is the uniform invocation boundary for every specialist.
// Internal prompt construction and model calls are the implementation's
// concern; the orchestrator sees only the context in and the result out.
type SubAgent interface {
	Invoke(ctx context.Context, dctx delegation.Context) (agent.Result, error)
}

// Registry holds the sub-agent roster.
type Registry struct {
	mu     sync.RWMutex
	agents map[agent.ID]SubAgent
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[agent.ID]SubAgent)}
}

// Bind associates an agent identity with its implementation.
// The butler itself cannot be bound: it is never a delegation target.
func (r *Registry) Bind(id agent.ID, sa SubAgent) error {
	if !id.Valid() {
		return fmt.Errorf("invalid agent %q", id)
	}
	if id == agent.Butler {
		return fmt.Errorf("agent %q cannot be a delegation target", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[id] = sa
	return nil
}

// Get returns the implementation for an agent identity.
func (r *Registry) Get(id agent.ID) (SubAgent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sa, ok := r.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchAgent, id)
	}
	return sa, nil
}
