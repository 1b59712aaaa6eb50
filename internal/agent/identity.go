// ABOUTME: Closed set of agent identities - the butler and its specialists
// ABOUTME: The set is fixed at configuration time; dispatch is by tagged value

package agent

import "fmt"

// ID identifies one agent in the fixed roster.
type ID string

const (
	// Butler is the primary conversational agent that owns every turn.
	Butler ID = "butler"

	// Specialist sub-agents the butler delegates to.
	Scheduler     ID = "scheduler"     // calendar and meetings
	Correspondent ID = "correspondent" // email drafting and sending
	Librarian     ID = "librarian"     // notes and document lookup
	Concierge     ID = "concierge"     // contacts and errands
)

// Specialists lists every delegation target, in no particular order of
// preference. Butler is deliberately absent: it never delegates to itself.
var Specialists = []ID{Scheduler, Correspondent, Librarian, Concierge}

// Valid reports whether id names a known agent.
func (id ID) Valid() bool {
	if id == Butler {
		return true
	}
	for _, s := range Specialists {
		if id == s {
			return true
		}
	}
	return false
}

// Parse converts a string to an agent ID, rejecting unknown names.
func Parse(s string) (ID, error) {
	id := ID(s)
	if !id.Valid() {
		return "", fmt.Errorf("unknown agent %q", s)
	}
	return id, nil
}
