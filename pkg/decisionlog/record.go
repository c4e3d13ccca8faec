package decisionlog

import "time"

// Record is one routing decision and its dispatch outcome.
type Record struct {
	// ID is a unique identifier for this record.
	ID string

	// RequestID correlates the record with server logs for the same request.
	RequestID string

	// Timestamp is when the decision was made.
	Timestamp time.Time

	// Model is the model name from the incoming request, verbatim.
	Model string

	// Tag is the scenario tag of the routing decision, e.g. "pattern(think_routing)".
	Tag string

	// Chain is the resolved fallback chain in wire syntax.
	Chain string

	// Provider and ServedModel identify the target that answered, when any did.
	Provider    string
	ServedModel string

	// Attempts is the number of targets tried.
	Attempts int

	// LatencyMS is the end-to-end execution latency in milliseconds.
	LatencyMS int64

	// Success reports whether any target served the request.
	Success bool

	// ErrorType and ErrorMessage describe the final failure when Success is false.
	ErrorType    string
	ErrorMessage string

	// EstimatedTokens is the prompt token estimate used by the cost and
	// long-context phases.
	EstimatedTokens int

	// SessionID is the session the decision was pinned under, if any.
	SessionID string
}
