package matcher

import (
	"fmt"
)

// Match represents a single phrase occurrence found in scanned text.
type Match struct {
	// Pattern is the index of the matched phrase in the slice passed to New.
	Pattern int

	// Start is the byte offset of the first byte of the match.
	Start int

	// End is the byte offset one past the last byte of the match.
	End int
}

// Length returns the length of the matched phrase in bytes.
func (m Match) Length() int {
	return m.End - m.Start
}

// node is a single state in the automaton trie.
type node struct {
	// next maps an input byte to the child state index.
	next map[byte]int32

	// fail is the longest proper suffix state (Aho-Corasick failure link).
	fail int32

	// output lists the pattern indices whose phrase ends at this state,
	// including phrases inherited through failure links.
	output []int32
}

// Matcher is an immutable Aho-Corasick automaton over a fixed phrase set.
type Matcher struct {
	nodes    []node
	patterns []string
}

// New builds a matcher over the given phrases. Phrases are lower-cased before
// indexing, so matching is ASCII-case-insensitive. Duplicate phrases are
// permitted and reported as separate matches at the same offsets.
//
// Returns an error if any phrase is empty.
func New(patterns []string) (*Matcher, error) {
	m := &Matcher{
		// State 0 is the root.
		nodes:    []node{{next: make(map[byte]int32), fail: 0}},
		patterns: make([]string, len(patterns)),
	}

	for i, p := range patterns {
		if p == "" {
			return nil, fmt.Errorf("pattern %d is empty", i)
		}
		lowered := toLowerASCII(p)
		m.patterns[i] = lowered
		m.insert(lowered, int32(i))
	}

	m.buildFailureLinks()
	return m, nil
}

// PatternCount returns the number of phrases in the index.
func (m *Matcher) PatternCount() int {
	return len(m.patterns)
}

// Pattern returns the lower-cased phrase at the given index.
func (m *Matcher) Pattern(i int) string {
	return m.patterns[i]
}

// FindAll scans text once and returns every phrase occurrence, in increasing
// end-offset order. Offsets refer to byte positions in the input text. The
// scan lower-cases bytes on the fly, so offsets always line up with the
// caller's original text.
func (m *Matcher) FindAll(text string) []Match {
	var matches []Match

	state := int32(0)
	for i := 0; i < len(text); i++ {
		b := lowerByte(text[i])

		// Follow failure links until a transition exists or we are at root.
		for {
			if next, ok := m.nodes[state].next[b]; ok {
				state = next
				break
			}
			if state == 0 {
				break
			}
			state = m.nodes[state].fail
		}

		for _, pid := range m.nodes[state].output {
			length := len(m.patterns[pid])
			matches = append(matches, Match{
				Pattern: int(pid),
				Start:   i + 1 - length,
				End:     i + 1,
			})
		}
	}

	return matches
}

// insert adds a single phrase to the trie.
func (m *Matcher) insert(pattern string, id int32) {
	state := int32(0)
	for i := 0; i < len(pattern); i++ {
		b := pattern[i]
		next, ok := m.nodes[state].next[b]
		if !ok {
			next = int32(len(m.nodes))
			m.nodes = append(m.nodes, node{next: make(map[byte]int32)})
			m.nodes[state].next[b] = next
		}
		state = next
	}
	m.nodes[state].output = append(m.nodes[state].output, id)
}

// buildFailureLinks computes failure links breadth-first and merges the
// output sets along them, so FindAll emits every phrase ending at a position
// without chasing links at scan time.
func (m *Matcher) buildFailureLinks() {
	queue := make([]int32, 0, len(m.nodes))

	// Depth-1 states fail to the root.
	for _, child := range m.nodes[0].next {
		m.nodes[child].fail = 0
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]

		for b, child := range m.nodes[state].next {
			queue = append(queue, child)

			// Walk failure links of the parent to find the longest
			// proper suffix with a transition on b.
			f := m.nodes[state].fail
			for {
				if next, ok := m.nodes[f].next[b]; ok && next != child {
					m.nodes[child].fail = next
					break
				}
				if f == 0 {
					if next, ok := m.nodes[0].next[b]; ok && next != child {
						m.nodes[child].fail = next
					} else {
						m.nodes[child].fail = 0
					}
					break
				}
				f = m.nodes[f].fail
			}

			fail := m.nodes[child].fail
			if len(m.nodes[fail].output) > 0 {
				m.nodes[child].output = append(m.nodes[child].output, m.nodes[fail].output...)
			}
		}
	}
}

// toLowerASCII lower-cases A-Z only, leaving other bytes untouched so byte
// offsets never shift.
func toLowerASCII(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}

	b := []byte(s)
	for i := range b {
		b[i] = lowerByte(b[i])
	}
	return string(b)
}

func lowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
