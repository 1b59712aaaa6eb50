// ABOUTME: Keyword-scoring intent classifier standing in for a model call
// ABOUTME: Scoring weights are tunable reference values, not a contract

package builtins

import (
	"context"
	"strings"

	"github.com/valet-labs/valet/internal/agent"
	"github.com/valet-labs/valet/internal/delegation"
	"github.com/valet-labs/valet/internal/orchestrator"
	"github.com/valet-labs/valet/internal/store"
)

// specialist keyword tables. Each hit adds weight; two strong specialists in
// one message yield a multi-intent classification.
var intentKeywords = map[agent.ID][]string{
	agent.Scheduler:     {"schedule", "meeting", "calendar", "appointment", "reschedule", "book"},
	agent.Correspondent: {"email", "reply", "draft", "send", "write to", "message"},
	agent.Librarian:     {"note", "notes", "find", "search", "document", "remember"},
	agent.Concierge:     {"contact", "phone", "address", "reservation", "errand"},
}

// KeywordClassifier routes turns by keyword scoring. It exists so the
// binary works without a model backend; deployments replace it with a
// model-backed Classifier behind the same interface.
type KeywordClassifier struct {
	// HitWeight is the confidence contributed per keyword hit, capped at 1.
	HitWeight float64
}

// NewKeywordClassifier returns a classifier with reference weights.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{HitWeight: 0.45}
}

// Classify scores each specialist's keywords against the message. With no
// hits it answers directly; otherwise it emits intents strongest first.
func (c *KeywordClassifier) Classify(ctx context.Context, message string, history []store.Turn) (orchestrator.Classification, error) {
	lowered := strings.ToLower(message)

	var intents []delegation.Intent
	for _, id := range agent.Specialists {
		hits := 0
		var matched []string
		for _, kw := range intentKeywords[id] {
			if strings.Contains(lowered, kw) {
				hits++
				matched = append(matched, kw)
			}
		}
		if hits == 0 {
			continue
		}
		confidence := c.HitWeight * float64(hits)
		if confidence > 1 {
			confidence = 1
		}
		intents = append(intents, delegation.Intent{
			Target:     id,
			Confidence: confidence,
			Rationale:  "matched: " + strings.Join(matched, ", "),
		})
	}

	if len(intents) == 0 {
		return orchestrator.Classification{
			Direct: "I can help with your calendar, email, notes, and contacts. What would you like me to do?",
		}, nil
	}

	// Strongest first so the orchestrator's delegation cap keeps the best.
	for i := 0; i < len(intents); i++ {
		for j := i + 1; j < len(intents); j++ {
			if intents[j].Confidence > intents[i].Confidence {
				intents[i], intents[j] = intents[j], intents[i]
			}
		}
	}

	return orchestrator.Classification{Intents: intents}, nil
}
