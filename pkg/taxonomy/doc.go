// Package taxonomy compiles routing rule sources into the pattern index
// consumed by the routing engine.
//
// Rule sources are markdown files. Each file defines one scenario rule:
//
//	# Think Routing
//	route:: deepseek, deepseek-reasoner
//	priority:: 80
//	synonyms:: think step by step, reason carefully, chain of thought
//
// The rule name comes from the first heading (lower-cased, spaces become
// underscores) or the file name when no heading is present. route:: carries
// the target chain ("provider,model" segments joined by "|"; routing:: is an
// accepted alias). synonyms:: lists trigger phrases. priority:: (0-100,
// default 50) breaks ties between overlapping matches.
//
// Compilation is fail-closed: one malformed rule rejects the whole set, so
// the process never serves a partially built index. The compiled Index is
// immutable; the watcher recompiles on file changes and swaps the routing
// snapshot only when compilation succeeds.
package taxonomy
