// Package providers defines the shared types for talking to upstream LLM
// providers: chat request and response shapes, the dispatch error taxonomy
// that drives fallback decisions, and the passive health tracker fed by
// dispatch outcomes.
//
// The error taxonomy is the contract between dispatch and routing. Timeouts,
// connection failures, 5xx responses, and 429 responses are retryable and let
// fallback advance to the next target. 4xx responses other than 429 indicate a
// request the provider understood and rejected; retrying them elsewhere would
// waste quota, so they abort the chain.
package providers
