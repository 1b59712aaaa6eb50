// ABOUTME: Per-turn control flow: classify, optionally delegate, synthesize
// ABOUTME: Hook and sub-agent failures are recovered here and never crash a turn

package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valet-labs/valet/internal/agent"
	"github.com/valet-labs/valet/internal/delegation"
	"github.com/valet-labs/valet/internal/hooks"
	"github.com/valet-labs/valet/internal/store"
)

// TurnState tracks where a turn is in its lifecycle. Terminal state is
// StateResponded; no state is retried automatically.
type TurnState string

const (
	StateReceived         TurnState = "received"
	StateClassified       TurnState = "classified"
	StateDelegating       TurnState = "delegating"
	StateSubAgentRunning  TurnState = "subagent_running"
	StateSubAgentComplete TurnState = "subagent_complete"
	StateSynthesizing     TurnState = "synthesizing"
	StateResponded        TurnState = "responded"
)

// Classification is the intent-classifier's verdict for one user turn.
// Either Direct carries a ready answer, or Intents names one or two
// delegation targets.
type Classification struct {
	Direct  string
	Intents []delegation.Intent
}

// Classifier decides how to route a user turn. The implementation is an
// external model call.
type Classifier interface {
	Classify(ctx context.Context, message string, history []store.Turn) (Classification, error)
}

// Synthesizer produces the final user-facing reply from sub-agent results.
// The implementation is an external model call.
type Synthesizer interface {
	Synthesize(ctx context.Context, message string, results []agent.Result, extraContext []string) (string, error)
}

// History is what the orchestrator needs from conversation persistence.
type History interface {
	AppendTurn(ctx context.Context, turn *store.Turn) error
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]store.Turn, error)
	ListPreferences(ctx context.Context) ([]store.Preference, error)
}

// HookRunner is what the orchestrator needs from the hook layer.
type HookRunner interface {
	Fire(ctx context.Context, event hooks.Event, payload hooks.Payload) []hooks.Result
}

// Options tune per-turn behavior.
type Options struct {
	// ConfidenceThreshold below which a delegation intent is discarded in
	// favor of a direct answer. Tunable, not a contract.
	ConfidenceThreshold float64

	// DelegationTimeout bounds each sub-agent invocation.
	DelegationTimeout time.Duration

	// MaxDelegations caps how many intents one turn may sequence.
	MaxDelegations int

	// HistoryLimit is how many recent turns feed classification and context.
	HistoryLimit int
}

// Reply is the outcome of one handled user turn.
type Reply struct {
	Text        string
	DelegatedTo []agent.ID
	Results     []agent.Result
}

// Orchestrator owns the per-turn control flow for the butler.
type Orchestrator struct {
	history    History
	runner     HookRunner
	builder    *delegation.Builder
	registry   *Registry
	classifier Classifier
	synth      Synthesizer
	opts       Options
	logger     *slog.Logger
}

// New creates an Orchestrator. Pass nil logger for the default.
func New(history History, runner HookRunner, registry *Registry, classifier Classifier, synth Synthesizer, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = 0.5
	}
	if opts.DelegationTimeout <= 0 {
		opts.DelegationTimeout = 2 * time.Minute
	}
	if opts.MaxDelegations <= 0 {
		opts.MaxDelegations = 2
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = delegation.DefaultHistoryCap
	}
	return &Orchestrator{
		history:    history,
		runner:     runner,
		builder:    delegation.NewBuilder(opts.HistoryLimit),
		registry:   registry,
		classifier: classifier,
		synth:      synth,
		opts:       opts,
		logger:     logger.With("component", "orchestrator"),
	}
}

// StartSession fires the SessionStart hooks.
func (o *Orchestrator) StartSession(ctx context.Context, sessionID string) {
	o.runner.Fire(ctx, hooks.SessionStart, hooks.Payload{"session_id": sessionID})
}

// EndSession fires the Stop hooks.
func (o *Orchestrator) EndSession(ctx context.Context, sessionID string) {
	o.runner.Fire(ctx, hooks.Stop, hooks.Payload{"session_id": sessionID})
}

// HandleUserMessage runs one full turn: persist the user message, fire the
// prompt hooks, classify, delegate to at most MaxDelegations specialists,
// synthesize, and persist the reply. Recovered failures produce a graceful
// reply; the only errors returned are persistence failures.
func (o *Orchestrator) HandleUserMessage(ctx context.Context, sessionID, text string) (*Reply, error) {
	state := StateReceived
	o.logger.Debug("turn state", "state", state, "session_id", sessionID)

	if err := o.history.AppendTurn(ctx, &store.Turn{
		SessionID: sessionID,
		Role:      store.RoleUser,
		Content:   text,
	}); err != nil {
		return nil, fmt.Errorf("recording user turn: %w", err)
	}

	// UserPromptSubmit hooks may enrich the prompt context. Their output is
	// appended to context, never to visible history.
	var extraContext []string
	for _, res := range o.runner.Fire(ctx, hooks.UserPromptSubmit, hooks.Payload{
		"session_id": sessionID,
		"message":    text,
	}) {
		if res.AdditionalContext != "" {
			extraContext = append(extraContext, res.AdditionalContext)
		}
	}

	history, err := o.history.RecentTurns(ctx, sessionID, o.opts.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	classification, classifyErr := o.classifier.Classify(ctx, text, history)
	if classifyErr != nil {
		// Classification failure is recovered like a sub-agent failure:
		// graceful reply, original input preserved for retry.
		o.logger.Error("classification failed", "session_id", sessionID, "error", classifyErr)
		return o.respond(ctx, sessionID, apologeticReply(text), nil, nil)
	}
	state = StateClassified
	o.logger.Debug("turn state", "state", state, "intents", len(classification.Intents))

	intents := o.confidentIntents(classification.Intents)
	if len(intents) == 0 {
		direct := classification.Direct
		if direct == "" {
			direct = apologeticReply(text)
		}
		return o.respond(ctx, sessionID, direct, nil, nil)
	}

	prefs, err := o.history.ListPreferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}

	state = StateDelegating
	o.logger.Debug("turn state", "state", state)

	var (
		results     []agent.Result
		delegatedTo []agent.ID
	)
	for _, intent := range intents {
		results = append(results, o.delegate(ctx, sessionID, intent, text, history, prefs))
		delegatedTo = append(delegatedTo, intent.Target)
	}
	state = StateSubAgentComplete
	o.logger.Debug("turn state", "state", state)

	state = StateSynthesizing
	o.logger.Debug("turn state", "state", state)
	reply := o.synthesize(ctx, text, results, extraContext)

	return o.respond(ctx, sessionID, reply, delegatedTo, results)
}

// confidentIntents keeps intents above the confidence threshold, capped at
// MaxDelegations. Low or ambiguous classification falls back to a direct
// answer rather than guessing a delegation target.
func (o *Orchestrator) confidentIntents(intents []delegation.Intent) []delegation.Intent {
	var out []delegation.Intent
	for _, intent := range intents {
		if intent.Confidence < o.opts.ConfidenceThreshold {
			o.logger.Info("discarding low-confidence intent",
				"target", intent.Target,
				"confidence", intent.Confidence,
			)
			continue
		}
		out = append(out, intent)
		if len(out) == o.opts.MaxDelegations {
			break
		}
	}
	return out
}

// delegate runs one sub-agent invocation, converting every failure mode -
// build error, missing agent, invocation error, panic, timeout - into a
// Success=false result that synthesis can absorb.
func (o *Orchestrator) delegate(ctx context.Context, sessionID string, intent delegation.Intent, text string, history []store.Turn, prefs []store.Preference) (result agent.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error("sub-agent panicked", "target", intent.Target, "panic", rec)
			result = agent.Failure(intent.Target, "the specialist ran into trouble")
		}
	}()

	dctx, err := o.builder.Build(intent, text, history, prefs)
	if err != nil {
		o.logger.Error("building delegation context failed", "target", intent.Target, "error", err)
		return agent.Failure(intent.Target, "the request could not be handed off")
	}

	sa, err := o.registry.Get(intent.Target)
	if err != nil {
		o.logger.Error("delegation target unbound", "target", intent.Target, "error", err)
		return agent.Failure(intent.Target, "no specialist was available")
	}

	o.logger.Info("delegating",
		"session_id", sessionID,
		"target", intent.Target,
		"rationale", intent.Rationale,
		"state", StateSubAgentRunning,
	)

	dctxTimeout, cancel := context.WithTimeout(ctx, o.opts.DelegationTimeout)
	defer cancel()

	res, err := sa.Invoke(dctxTimeout, dctx)
	if err != nil {
		o.logger.Error("sub-agent failed", "target", intent.Target, "error", err)
		return agent.Failure(intent.Target, "the specialist could not finish")
	}
	res.Agent = intent.Target
	return res
}

// synthesize produces the final reply. The reply incorporates sub-agent
// summaries but is never a verbatim echo of them.
func (o *Orchestrator) synthesize(ctx context.Context, text string, results []agent.Result, extraContext []string) string {
	anyFailed := false
	for _, r := range results {
		if !r.Success {
			anyFailed = true
		}
	}

	reply, err := o.synth.Synthesize(ctx, text, results, extraContext)
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			o.logger.Error("synthesis failed", "error", err)
		}
		if anyFailed {
			return apologeticReply(text)
		}
		reply = fallbackSynthesis(results)
	}

	// Guard the non-echo property even against a lazy synthesizer.
	for _, r := range results {
		if r.Summary != "" && reply == r.Summary {
			reply = "Here's where things landed: " + reply
			break
		}
	}
	return reply
}

// respond persists the assistant turn and assembles the Reply.
func (o *Orchestrator) respond(ctx context.Context, sessionID, text string, delegatedTo []agent.ID, results []agent.Result) (*Reply, error) {
	turn := &store.Turn{
		SessionID: sessionID,
		Role:      store.RoleAssistant,
		Content:   text,
	}
	if len(delegatedTo) > 0 {
		names := make([]string, 0, len(delegatedTo))
		for _, id := range delegatedTo {
			names = append(names, string(id))
		}
		turn.DelegatedTo = strings.Join(names, ",")
	}
	if err := o.history.AppendTurn(ctx, turn); err != nil {
		return nil, fmt.Errorf("recording assistant turn: %w", err)
	}

	o.logger.Debug("turn state", "state", StateResponded, "session_id", sessionID)
	return &Reply{Text: text, DelegatedTo: delegatedTo, Results: results}, nil
}

// apologeticReply is the graceful, context-preserving fallback. It never
// contains raw error text, and it restates the user's request so nothing
// is lost for a retry.
func apologeticReply(original string) string {
	return fmt.Sprintf("I'm sorry, I wasn't able to finish that just now. You asked: %q - want me to try again?", original)
}

// fallbackSynthesis builds a minimal combined reply when the synthesizer
// returns nothing usable but every sub-agent succeeded.
func fallbackSynthesis(results []agent.Result) string {
	var parts []string
	for _, r := range results {
		if r.Summary != "" {
			parts = append(parts, fmt.Sprintf("The %s reports: %s", r.Agent, r.Summary))
		}
	}
	if len(parts) == 0 {
		return "All done."
	}
	return strings.Join(parts, " ")
}
