// ABOUTME: Pure assembly of delegation contexts with history and entity caps
// ABOUTME: No I/O - all inputs are resolved in memory by the orchestrator

package delegation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/valet-labs/valet/internal/agent"
	"github.com/valet-labs/valet/internal/store"
)

// Caps bounding prompt size. Long free text overmatches badly without them.
const (
	MaxContactEntities = 3
	MaxProjectEntities = 2
	DefaultHistoryCap  = 10
)

// Intent is the classification outcome that triggers a delegation.
type Intent struct {
	Target         agent.ID
	Confidence     float64 // in [0,1]; low confidence falls back to a direct answer
	Entities       []string
	TimeConstraint string
	Rationale      string
}

// Builder assembles delegation contexts.
type Builder struct {
	historyCap int
}

// NewBuilder creates a Builder. historyCap <= 0 uses DefaultHistoryCap.
func NewBuilder(historyCap int) *Builder {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &Builder{historyCap: historyCap}
}

// Build assembles the context handed to intent.Target. History is capped to
// the most recent N turns; entities are merged from the intent and the
// message itself, then capped per kind.
func (b *Builder) Build(intent Intent, message string, history []store.Turn, prefs []store.Preference) (Context, error) {
	ctx := Context{
		Origin:         agent.Butler,
		Target:         intent.Target,
		Message:        message,
		Entities:       extractEntities(message, intent.Entities),
		TimeConstraint: intent.TimeConstraint,
		History:        capHistory(history, b.historyCap),
		Preferences:    prefs,
		Rationale:      intent.Rationale,
	}
	if err := ctx.Validate(); err != nil {
		return Context{}, err
	}
	return ctx, nil
}

// capHistory keeps the most recent n turns, preserving conversational order.
func capHistory(history []store.Turn, n int) []HistoryTurn {
	if len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]HistoryTurn, 0, len(history))
	for _, t := range history {
		out = append(out, HistoryTurn{Role: t.Role, Content: t.Content})
	}
	return out
}

// projectPhrase matches "<Name> project" and "project <Name>" phrasings.
var projectPhrase = regexp.MustCompile(`(?i)(?:the\s+)?([\w-]+)\s+project|project\s+([\w-]+)`)

// quoted matches double-quoted phrases, which read as project or task names.
var quoted = regexp.MustCompile(`"([^"]{1,60})"`)

// extractEntities merges classifier-provided entities with heuristics over
// the message text, deduplicates, and applies the per-kind caps.
func extractEntities(message string, hinted []string) []Entity {
	var contacts, projects []string

	for _, h := range hinted {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		// Hinted entities are trusted as contact-like unless they look like
		// a project reference.
		if strings.Contains(strings.ToLower(h), "project") {
			projects = append(projects, h)
		} else {
			contacts = append(contacts, h)
		}
	}

	contacts = append(contacts, personNames(message)...)

	for _, m := range projectPhrase.FindAllStringSubmatch(message, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		projects = append(projects, name)
	}
	for _, m := range quoted.FindAllStringSubmatch(message, -1) {
		projects = append(projects, m[1])
	}

	var out []Entity
	for _, c := range dedupe(contacts, MaxContactEntities) {
		out = append(out, Entity{Kind: EntityContact, Text: c})
	}
	for _, p := range dedupe(projects, MaxProjectEntities) {
		out = append(out, Entity{Kind: EntityProject, Text: p})
	}
	return out
}

// sentence-position words that capitalize without naming anyone
var commonWords = map[string]struct{}{
	"i": {}, "the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"please": {}, "can": {}, "could": {}, "would": {}, "email": {}, "send": {},
	"schedule": {}, "meeting": {}, "monday": {}, "tuesday": {}, "wednesday": {},
	"thursday": {}, "friday": {}, "saturday": {}, "sunday": {}, "tomorrow": {},
	"today": {}, "next": {}, "this": {}, "project": {}, "update": {},
	"find": {}, "draft": {}, "remind": {}, "invite": {}, "book": {},
	"cancel": {}, "check": {}, "add": {}, "delete": {}, "create": {},
}

// personNames finds title-cased runs in the message that read as names.
// Consecutive capitalized words join into a single entity ("Alice Smith");
// punctuation ends a run so comma-separated names stay distinct.
func personNames(message string) []string {
	var names []string
	var run []string
	flush := func() {
		if len(run) > 0 {
			names = append(names, strings.Join(run, " "))
			run = nil
		}
	}

	for _, token := range strings.Fields(message) {
		word := strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && r != '\''
		})
		punctuated := len(word) < len(token) && strings.IndexFunc(token, unicode.IsPunct) >= 0

		if word != "" && isTitleCased(word) {
			if _, common := commonWords[strings.ToLower(word)]; !common {
				run = append(run, word)
				if punctuated {
					flush()
				}
				continue
			}
		}
		flush()
	}
	flush()
	return names
}

func isTitleCased(w string) bool {
	runes := []rune(w)
	if len(runes) < 2 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// dedupe removes duplicates case-insensitively and caps the result.
func dedupe(items []string, limit int) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(item))
		if len(out) == limit {
			break
		}
	}
	return out
}
