package taxonomy

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"janus-llm/janus/pkg/routing"
)

// DefaultPriority is used when a rule carries no priority:: directive.
const DefaultPriority = 50

// Rule is one parsed scenario rule.
type Rule struct {
	// Name is the normalized rule name (lower-cased, spaces replaced by
	// underscores).
	Name string

	// Chain is the rule's target chain.
	Chain routing.TargetChain

	// Phrases are the trigger phrases, lower-cased. The rule's heading
	// text is always included; synonyms:: adds more. Empty beyond the
	// heading is fine for rules meant to be threshold-triggered.
	Phrases []string

	// Priority (0-100) breaks ties between overlapping matches.
	Priority int

	// Source is the file the rule came from.
	Source string
}

// ParseRuleFile reads and parses one rule source.
func ParseRuleFile(path string) (*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CompileError{File: path, Reason: "cannot read rule source", Err: err}
	}
	return parseRule(path, string(data))
}

func parseRule(path, content string) (*Rule, error) {
	lines := strings.Split(content, "\n")

	heading := findHeading(lines)
	name := heading
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	if name == "" {
		return nil, &CompileError{File: path, Reason: "rule has no name"}
	}

	chain, err := parseRouteDirective(path, lines)
	if err != nil {
		return nil, err
	}

	priority, err := parsePriorityDirective(path, lines)
	if err != nil {
		return nil, err
	}

	phrases := []string{strings.ToLower(strings.TrimSpace(heading))}
	if heading == "" {
		phrases = []string{strings.ReplaceAll(name, "_", " ")}
	}
	phrases = append(phrases, parseSynonyms(lines)...)

	return &Rule{
		Name:     name,
		Chain:    chain,
		Phrases:  dedupe(phrases),
		Priority: priority,
		Source:   path,
	}, nil
}

// findHeading returns the text of the first "# " heading, or "".
func findHeading(lines []string) string {
	for _, line := range lines {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

// parseRouteDirective finds the first route:: (or routing::) line and parses
// its chain. A rule without a route, or with an unparsable chain, rejects
// the whole compile.
func parseRouteDirective(path string, lines []string) (routing.TargetChain, error) {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		var rest string
		switch {
		case strings.HasPrefix(trimmed, "route::"):
			rest = strings.TrimPrefix(trimmed, "route::")
		case strings.HasPrefix(trimmed, "routing::"):
			rest = strings.TrimPrefix(trimmed, "routing::")
		default:
			continue
		}

		chain, err := routing.ParseChain(rest)
		if err != nil {
			return nil, &CompileError{File: path, Reason: "invalid route directive", Err: err}
		}
		// Provider names are case-insensitive in rule sources.
		for i := range chain {
			chain[i].Provider = strings.ToLower(chain[i].Provider)
		}
		return chain, nil
	}
	return nil, &CompileError{File: path, Reason: "no route:: directive found"}
}

// parsePriorityDirective finds the first priority:: line. Absent means
// DefaultPriority; a value that is not an integer in 0-100 rejects the rule.
func parsePriorityDirective(path string, lines []string) (int, error) {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "priority::") {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(trimmed, "priority::"))
		priority, err := strconv.Atoi(value)
		if err != nil {
			return 0, &CompileError{File: path, Reason: fmt.Sprintf("invalid priority %q", value), Err: err}
		}
		if priority < 0 || priority > 100 {
			return 0, &CompileError{File: path, Reason: fmt.Sprintf("priority %d out of range 0-100", priority)}
		}
		return priority, nil
	}
	return DefaultPriority, nil
}

// parseSynonyms returns the phrases of the first synonyms:: line,
// lower-cased, empty entries dropped.
func parseSynonyms(lines []string) []string {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "synonyms::") {
			continue
		}
		var phrases []string
		for _, s := range strings.Split(strings.TrimPrefix(trimmed, "synonyms::"), ",") {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				phrases = append(phrases, s)
			}
		}
		return phrases
	}
	return nil
}

func dedupe(phrases []string) []string {
	seen := make(map[string]bool, len(phrases))
	out := phrases[:0]
	for _, p := range phrases {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
