// Package dispatch implements the dispatch collaborator: HTTP clients for
// OpenAI-compatible upstream providers, registered by name and addressed by
// routing targets.
//
// Dispatch failures are classified into the providers error taxonomy so the
// fallback executor can tell provider faults (retryable) from request faults
// (chain-aborting).
package dispatch
