package taxonomy

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"janus-llm/janus/pkg/matcher"
	"janus-llm/janus/pkg/routing"
)

// Index is a compiled taxonomy: one shared matching automaton over every
// phrase from every rule, with ownership back-references for tie-breaking.
// An Index is immutable and safe for concurrent use.
type Index struct {
	matcher *matcher.Matcher
	rules   []*Rule

	// owner maps a pattern id in the automaton to the owning rule's index.
	owner []int
}

// Compile builds an index from parsed rules. Duplicate phrases across rules
// are permitted; ownership is resolved at match time. Duplicate rule names
// are rejected.
func Compile(rules []*Rule) (*Index, error) {
	byName := make(map[string]string, len(rules))
	var patterns []string
	var owner []int

	for i, rule := range rules {
		if prev, ok := byName[rule.Name]; ok {
			return nil, &CompileError{
				File:   rule.Source,
				Reason: fmt.Sprintf("duplicate rule name %q, already defined in %q", rule.Name, prev),
			}
		}
		byName[rule.Name] = rule.Source

		for _, phrase := range rule.Phrases {
			patterns = append(patterns, phrase)
			owner = append(owner, i)
		}
	}

	m, err := matcher.New(patterns)
	if err != nil {
		return nil, &CompileError{File: "", Reason: "failed to build matcher", Err: err}
	}

	return &Index{matcher: m, rules: rules, owner: owner}, nil
}

// CompileDir parses every .md file under dir (recursively, hidden entries
// skipped) and compiles the result. Any malformed rule fails the whole
// compile.
func CompileDir(dir string) (*Index, error) {
	files, err := ruleFiles(dir)
	if err != nil {
		return nil, &CompileError{File: dir, Reason: "cannot list rule sources", Err: err}
	}

	rules := make([]*Rule, 0, len(files))
	for _, file := range files {
		rule, err := ParseRuleFile(file)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return Compile(rules)
}

// ruleFiles lists .md files under dir in deterministic order.
func ruleFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Rules returns the compiled rules.
func (ix *Index) Rules() []*Rule {
	return ix.rules
}

// RuleCount returns the number of compiled rules.
func (ix *Index) RuleCount() int {
	return len(ix.rules)
}

// PhraseCount returns the number of indexed phrases.
func (ix *Index) PhraseCount() int {
	return ix.matcher.PatternCount()
}

// Match scans text and returns the winning rule, if any phrase matched.
// When matches overlap, the winner is chosen by greatest phrase length, then
// earliest start offset, then higher rule priority, then rule name.
func (ix *Index) Match(text string) (routing.RuleMatch, bool) {
	matches := ix.matcher.FindAll(text)
	if len(matches) == 0 {
		return routing.RuleMatch{}, false
	}

	best := matches[0]
	bestRule := ix.rules[ix.owner[best.Pattern]]
	for _, m := range matches[1:] {
		rule := ix.rules[ix.owner[m.Pattern]]
		if better(m, rule, best, bestRule) {
			best, bestRule = m, rule
		}
	}

	return routing.RuleMatch{
		Rule:     bestRule.Name,
		Chain:    bestRule.Chain,
		Phrase:   ix.matcher.Pattern(best.Pattern),
		Priority: bestRule.Priority,
	}, true
}

// better reports whether candidate c beats the current best b.
func better(c matcher.Match, cRule *Rule, b matcher.Match, bRule *Rule) bool {
	if c.Length() != b.Length() {
		return c.Length() > b.Length()
	}
	if c.Start != b.Start {
		return c.Start < b.Start
	}
	if cRule.Priority != bRule.Priority {
		return cRule.Priority > bRule.Priority
	}
	return cRule.Name < bRule.Name
}
