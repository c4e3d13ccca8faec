package routing

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"janus-llm/janus/pkg/config"
)

// Snapshot is the immutable routing table consulted by the resolver. A new
// snapshot is built on startup and on every taxonomy or configuration
// reload, then swapped in atomically; in-flight requests keep the snapshot
// they started with.
type Snapshot struct {
	// Default is the chain used when every phase falls through.
	Default TargetChain

	// Background, Image, LongContext, CostOptimized, and LowLatency are
	// the scenario chains. A nil chain disables its phase.
	Background    TargetChain
	Image         TargetChain
	LongContext   TargetChain
	CostOptimized TargetChain
	LowLatency    TargetChain

	// LongContextThreshold is the token count at which long-context
	// routing triggers without an explicit hint.
	LongContextThreshold int

	// CostTokenThreshold is the token count at which the default chain is
	// considered uneconomical. 0 disables the token trigger.
	CostTokenThreshold int

	// ModelMappings maps raw model fields to pre-parsed chains.
	ModelMappings map[string]TargetChain

	// Index is the compiled taxonomy index, nil when no taxonomy is
	// loaded.
	Index PatternIndex
}

// BuildSnapshot parses a validated router configuration into a snapshot.
// Chain expressions have already passed configuration validation, so parse
// failures here indicate the configuration was not validated.
func BuildSnapshot(cfg *config.RouterConfig, index PatternIndex) (*Snapshot, error) {
	snap := &Snapshot{
		LongContextThreshold: cfg.LongContextThreshold,
		CostTokenThreshold:   cfg.CostTokenThreshold,
		Index:                index,
	}

	chains := []struct {
		expr string
		dst  *TargetChain
	}{
		{cfg.Default, &snap.Default},
		{cfg.Background, &snap.Background},
		{cfg.Image, &snap.Image},
		{cfg.LongContext, &snap.LongContext},
		{cfg.CostOptimized, &snap.CostOptimized},
		{cfg.LowLatency, &snap.LowLatency},
	}
	for _, c := range chains {
		if c.expr == "" {
			continue
		}
		chain, err := ParseChain(c.expr)
		if err != nil {
			return nil, fmt.Errorf("invalid chain %q: %w", c.expr, err)
		}
		*c.dst = chain
	}
	if len(snap.Default) == 0 {
		return nil, fmt.Errorf("default chain is required")
	}

	if len(cfg.ModelMappings) > 0 {
		snap.ModelMappings = make(map[string]TargetChain, len(cfg.ModelMappings))
		for model, expr := range cfg.ModelMappings {
			chain, err := ParseChain(expr)
			if err != nil {
				return nil, fmt.Errorf("invalid mapping for model %q: %w", model, err)
			}
			snap.ModelMappings[model] = chain
		}
	}

	return snap, nil
}

// Resolver runs the six-phase decision procedure. It is safe for concurrent
// use; the snapshot is read atomically and sessions have their own locking.
type Resolver struct {
	snapshot atomic.Pointer[Snapshot]
	sessions *SessionCache
	logger   *slog.Logger
}

// NewResolver creates a resolver over an initial snapshot. The session cache
// is optional; nil disables the session phase entirely.
func NewResolver(snap *Snapshot, sessions *SessionCache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		sessions: sessions,
		logger:   logger,
	}
	r.snapshot.Store(snap)
	return r
}

// Swap replaces the routing snapshot atomically. In-flight resolutions keep
// the snapshot they loaded.
func (r *Resolver) Swap(snap *Snapshot) {
	r.snapshot.Store(snap)
	r.logger.Info("routing snapshot swapped",
		"default_chain", snap.Default.String(),
		"model_mappings", len(snap.ModelMappings),
		"taxonomy", snap.Index != nil,
	)
}

// Current returns the active snapshot.
func (r *Resolver) Current() *Snapshot {
	return r.snapshot.Load()
}

// Resolve runs the phases in order and returns the first decision produced.
// It never fails: a malformed explicit model field falls through to the next
// phase, and the default chain catches everything else.
func (r *Resolver) Resolve(req *Request) Decision {
	snap := r.snapshot.Load()

	decision := r.resolve(snap, req)

	// Pin the outcome so the rest of the session sticks to it. Session
	// decisions refresh their own TTL through Get.
	if r.sessions != nil && req.SessionID != "" && decision.Tag.Kind != TagSession {
		r.sessions.Set(req.SessionID, decision.Chain)
	}

	r.logger.Debug("request resolved",
		"tag", decision.Tag.String(),
		"chain", decision.Chain.String(),
		"session_id", req.SessionID,
		"estimated_tokens", req.EstimatedTokens,
	)

	return decision
}

func (r *Resolver) resolve(snap *Snapshot, req *Request) Decision {
	// Phase 0: explicit chain syntax in the model field, or a configured
	// model mapping. Malformed syntax is recovered by falling through.
	if strings.Contains(req.Model, ",") {
		chain, err := ParseChain(req.Model)
		if err == nil {
			return Decision{Tag: ScenarioTag{Kind: TagExplicit}, Chain: chain}
		}
		r.logger.Debug("malformed explicit route, falling through",
			"model", req.Model, "error", err)
	}
	if chain, ok := snap.ModelMappings[req.Model]; ok {
		return Decision{Tag: ScenarioTag{Kind: TagMapped}, Chain: chain}
	}

	// Phase 1: taxonomy pattern match over user message content.
	if snap.Index != nil && req.UserText != "" {
		if match, ok := snap.Index.Match(req.UserText); ok {
			r.logger.Debug("pattern phase matched",
				"rule", match.Rule, "phrase", match.Phrase)
			return Decision{
				Tag:   ScenarioTag{Kind: TagPattern, Rule: match.Rule},
				Chain: match.Chain,
			}
		}
	}

	// Phase 2: session pin.
	if r.sessions != nil && req.SessionID != "" {
		if chain, ok := r.sessions.Get(req.SessionID); ok {
			return Decision{Tag: ScenarioTag{Kind: TagSession}, Chain: chain}
		}
	}

	// Phase 3: cost. A budget constraint, or a request large enough to
	// make the default chain uneconomical, selects the cost chain.
	if len(snap.CostOptimized) > 0 {
		overBudgetSize := snap.CostTokenThreshold > 0 && req.EstimatedTokens >= snap.CostTokenThreshold
		if req.MaxBudget > 0 || overBudgetSize {
			return Decision{Tag: ScenarioTag{Kind: TagCost}, Chain: snap.CostOptimized}
		}
	}

	// Phase 4: performance.
	if req.LowLatency && len(snap.LowLatency) > 0 {
		return Decision{Tag: ScenarioTag{Kind: TagPerformance}, Chain: snap.LowLatency}
	}

	// Phase 5: metadata hints. Image wins over long-context wins over
	// background; long-context also triggers on token count alone.
	if req.Hints.Image && len(snap.Image) > 0 {
		return Decision{Tag: ScenarioTag{Kind: TagHint, Hint: HintImage}, Chain: snap.Image}
	}
	longContext := req.Hints.LongContext ||
		(snap.LongContextThreshold > 0 && req.EstimatedTokens >= snap.LongContextThreshold)
	if longContext && len(snap.LongContext) > 0 {
		return Decision{Tag: ScenarioTag{Kind: TagHint, Hint: HintLongContext}, Chain: snap.LongContext}
	}
	if req.Hints.Background && len(snap.Background) > 0 {
		return Decision{Tag: ScenarioTag{Kind: TagHint, Hint: HintBackground}, Chain: snap.Background}
	}

	return Decision{Tag: ScenarioTag{Kind: TagDefault}, Chain: snap.Default}
}
