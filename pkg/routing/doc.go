// Package routing implements the decision core of the proxy: the phase
// engine that maps an inbound request to an ordered chain of provider/model
// targets, the session pin cache that keeps conversations on a stable
// target, and the fallback executor that walks a chain until one target
// succeeds.
//
// Resolution runs six strictly ordered phases; the first phase that yields a
// chain wins and later phases are never evaluated:
//
//	0. Explicit   - the model field itself is chain syntax, or maps to one
//	1. Pattern    - taxonomy phrase match over user message content
//	2. Session    - a prior decision for the same session is still pinned
//	3. Cost       - budget constraint or token count favors the cheap chain
//	4. Performance - the client asked for the fastest chain
//	5. Hint       - image, long-context, or background metadata hints
//
// Falling through every phase yields the configured default chain.
//
// The routing tables (chains, thresholds, pattern index) live in an
// immutable Snapshot swapped atomically on reload, so steady-state
// resolution never takes a lock.
package routing
