// ABOUTME: Template-based reply synthesizer standing in for a model call
// ABOUTME: Combines sub-agent summaries into one reply in the butler's voice

package builtins

import (
	"context"
	"fmt"
	"strings"

	"github.com/valet-labs/valet/internal/agent"
)

// TemplateSynthesizer builds the final reply from sub-agent summaries
// without a model backend. Summaries are rewrapped rather than echoed so
// the reply reads as the butler's own words.
type TemplateSynthesizer struct{}

// NewTemplateSynthesizer returns a ready synthesizer.
func NewTemplateSynthesizer() *TemplateSynthesizer {
	return &TemplateSynthesizer{}
}

// Synthesize combines per-agent summaries into one reply. Failed results
// are reported alongside successes instead of hiding them.
func (s *TemplateSynthesizer) Synthesize(ctx context.Context, message string, results []agent.Result, extraContext []string) (string, error) {
	if len(results) == 0 {
		return "", nil
	}

	var done, failed []string
	for _, r := range results {
		summary := strings.TrimSpace(r.Summary)
		if summary == "" {
			summary = "no details were reported"
		}
		line := fmt.Sprintf("%s: %s", r.Agent, summary)
		if r.Success {
			done = append(done, line)
		} else {
			failed = append(failed, line)
		}
	}

	var b strings.Builder
	switch {
	case len(failed) == 0:
		b.WriteString("All taken care of. ")
	case len(done) == 0:
		b.WriteString("I ran into trouble with that. ")
	default:
		b.WriteString("Partly done, with one snag. ")
	}
	if len(done) > 0 {
		b.WriteString(strings.Join(done, "; "))
		b.WriteString(".")
	}
	if len(failed) > 0 {
		if len(done) > 0 {
			b.WriteString(" Not completed, ")
		} else {
			b.WriteString("Not completed, ")
		}
		b.WriteString(strings.Join(failed, "; "))
		b.WriteString(".")
	}

	for _, r := range results {
		if f := strings.TrimSpace(r.FollowUp); f != "" {
			b.WriteString(" ")
			b.WriteString(f)
		}
	}

	return b.String(), nil
}
