// Package matcher implements a multi-pattern string-matching index based on
// the Aho-Corasick automaton.
//
// The index is built once from the full phrase set and scans input text in a
// single pass whose cost depends on the text length and the number of matches,
// not on the number of registered phrases. Matching is ASCII-case-insensitive
// and reports every occurrence of every phrase, including overlapping
// occurrences from different phrases.
//
// A built Matcher is immutable and safe for concurrent use without locking.
package matcher
