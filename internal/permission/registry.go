// ABOUTME: In-memory, process-lifetime table of user-granted tool permissions
// ABOUTME: Mutated only through the Gate; cleared on restart or explicit reset

package permission

import (
	"sync"
	"time"
)

// SessionGrant records one user-granted permission for a tool.
type SessionGrant struct {
	Allowed     bool
	AlwaysAllow bool
	GrantedAt   time.Time
}

// SessionRegistry holds permission grants for the lifetime of one process.
// It is never persisted; a restart clears all grants. Instantiate one per
// test case for isolation rather than sharing a package-level instance.
type SessionRegistry struct {
	mu     sync.RWMutex
	grants map[string]SessionGrant
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		grants: make(map[string]SessionGrant),
	}
}

// Lookup returns the grant for a tool, if any.
func (r *SessionRegistry) Lookup(tool string) (SessionGrant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.grants[tool]
	return g, ok
}

// grant upserts a grant for a tool. Only the Gate calls this.
func (r *SessionRegistry) grant(tool string, g SessionGrant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g.GrantedAt.IsZero() {
		g.GrantedAt = time.Now().UTC()
	}
	r.grants[tool] = g
}

// Reset removes every grant.
func (r *SessionRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grants = make(map[string]SessionGrant)
}

// Len returns the number of grants held.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.grants)
}
