// Package tokens implements character-based prompt token estimation.
//
// Routing only needs token counts accurate enough to compare against
// thresholds (long-context, cost), so a characters-per-token ratio per model
// family is sufficient and keeps estimation well under a millisecond.
package tokens

import (
	"strings"

	"janus-llm/janus/pkg/config"
	"janus-llm/janus/pkg/providers"
)

// Per-message and per-conversation formatting overhead, in tokens.
const (
	messageOverhead      = 4
	conversationOverhead = 3
)

// Estimator estimates prompt token counts from message content. It is
// immutable and safe for concurrent use.
type Estimator struct {
	// ratios maps model name prefixes to characters-per-token ratios.
	ratios map[string]float64

	// fallback is the ratio for models with no prefix entry.
	fallback float64
}

// NewEstimator creates an estimator from token configuration. The "default"
// ratio entry is the fallback; it is guaranteed present after configuration
// defaulting.
func NewEstimator(cfg *config.TokensConfig) *Estimator {
	fallback := config.DefaultCharsPerToken
	ratios := make(map[string]float64, len(cfg.CharsPerToken))
	for prefix, ratio := range cfg.CharsPerToken {
		if prefix == "default" {
			fallback = ratio
			continue
		}
		ratios[prefix] = ratio
	}
	return &Estimator{ratios: ratios, fallback: fallback}
}

// EstimateText estimates tokens for a single text string. Non-empty text is
// at least one token.
func (e *Estimator) EstimateText(text, model string) int {
	if text == "" {
		return 0
	}

	tokens := float64(len(text)) / e.charsPerToken(model)
	if tokens < 1.0 {
		tokens = 1.0
	}
	return int(tokens + 0.5)
}

// EstimateMessages estimates total prompt tokens for a conversation,
// including per-message formatting overhead.
func (e *Estimator) EstimateMessages(messages []providers.Message, model string) int {
	if len(messages) == 0 {
		return 0
	}

	total := conversationOverhead
	for _, msg := range messages {
		total += messageOverhead
		total += e.EstimateText(msg.Text(), model)
		if msg.Name != "" {
			total += e.EstimateText(msg.Name, model)
		}
	}
	return total
}

// charsPerToken returns the ratio for a model by longest matching prefix.
func (e *Estimator) charsPerToken(model string) float64 {
	best := e.fallback
	bestLen := -1
	for prefix, ratio := range e.ratios {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			best = ratio
			bestLen = len(prefix)
		}
	}
	return best
}
