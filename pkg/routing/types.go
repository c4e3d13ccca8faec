package routing

import (
	"fmt"
	"time"
)

// TagKind identifies which resolution phase produced a decision.
type TagKind int

const (
	// TagExplicit means the model field itself was chain syntax.
	TagExplicit TagKind = iota

	// TagMapped means the model field matched a configured model mapping.
	TagMapped

	// TagPattern means a taxonomy rule matched the message content.
	TagPattern

	// TagSession means the decision was pinned from a prior request in the
	// same session.
	TagSession

	// TagCost means a budget constraint or token count selected the
	// cost-optimized chain.
	TagCost

	// TagPerformance means the client asked for the low-latency chain.
	TagPerformance

	// TagHint means a metadata hint (background, image, long-context)
	// selected a scenario chain.
	TagHint

	// TagDefault means every phase fell through.
	TagDefault
)

// Hint is a closed set of request metadata hints. Free-form hint strings are
// converted to this type at the ingestion boundary; unknown hints are
// rejected there and never reach the resolver.
type Hint int

const (
	// HintBackground marks a request that can trade latency for cost.
	HintBackground Hint = iota

	// HintImage marks a request carrying image content.
	HintImage

	// HintLongContext marks a request that needs a large context window.
	HintLongContext
)

// String returns the hint's wire name.
func (h Hint) String() string {
	switch h {
	case HintBackground:
		return "background"
	case HintImage:
		return "image"
	case HintLongContext:
		return "long_context"
	default:
		return "unknown"
	}
}

// ScenarioTag records which phase decided a request and, where applicable,
// which rule or hint inside that phase.
type ScenarioTag struct {
	// Kind is the deciding phase.
	Kind TagKind

	// Rule is the taxonomy rule name for TagPattern decisions.
	Rule string

	// Hint is the deciding hint for TagHint decisions.
	Hint Hint
}

// String returns the tag in log form, e.g. "explicit", "pattern(think_routing)",
// "hint(image)".
func (t ScenarioTag) String() string {
	switch t.Kind {
	case TagExplicit:
		return "explicit"
	case TagMapped:
		return "mapped"
	case TagPattern:
		return fmt.Sprintf("pattern(%s)", t.Rule)
	case TagSession:
		return "session"
	case TagCost:
		return "cost"
	case TagPerformance:
		return "performance"
	case TagHint:
		return fmt.Sprintf("hint(%s)", t.Hint)
	case TagDefault:
		return "default"
	default:
		return "unknown"
	}
}

// RequestHints is the set of metadata hints attached to a request.
type RequestHints struct {
	// Background marks a request that can trade latency for cost.
	Background bool

	// Image marks a request carrying image content.
	Image bool

	// LongContext marks a request that needs a large context window.
	LongContext bool
}

// Request is the resolver's view of an inbound request. It is immutable
// once built.
type Request struct {
	// Model is the raw model field as sent by the client.
	Model string

	// UserText is the concatenated text of user-role messages, scanned by
	// the pattern phase.
	UserText string

	// SessionID identifies the conversation for session pinning. Empty
	// disables the session phase.
	SessionID string

	// MaxBudget is the client's spend constraint. 0 means unconstrained.
	MaxBudget float64

	// LowLatency is set when the client asked for the fastest response.
	LowLatency bool

	// Hints holds the metadata hints extracted at ingestion.
	Hints RequestHints

	// EstimatedTokens is the estimated prompt token count.
	EstimatedTokens int
}

// Decision is the output of resolution: the chain to execute and the tag
// explaining why.
type Decision struct {
	// Tag records the deciding phase.
	Tag ScenarioTag

	// Chain is the resolved target chain, never empty.
	Chain TargetChain
}

// RuleMatch is the winning taxonomy rule for a piece of text.
type RuleMatch struct {
	// Rule is the rule name.
	Rule string

	// Chain is the rule's target chain.
	Chain TargetChain

	// Phrase is the matched phrase, lower-cased.
	Phrase string

	// Priority is the rule's configured priority.
	Priority int
}

// PatternIndex is the taxonomy matching interface consumed by the pattern
// phase. Implementations must be safe for concurrent use.
type PatternIndex interface {
	// Match scans text and returns the winning rule, if any phrase matched.
	Match(text string) (RuleMatch, bool)
}

// Outcome describes a completed fallback execution.
type Outcome struct {
	// Target is the target that served the request.
	Target Target

	// Attempted lists every target tried, in order, including Target.
	Attempted []Target

	// Latency is the total execution time across all attempts.
	Latency time.Duration
}
