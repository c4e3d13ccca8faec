package taxonomy

import (
	"errors"
	"testing"

	"janus-llm/janus/pkg/routing"
)

func mustRule(t *testing.T, name, chain string, priority int, phrases ...string) *Rule {
	t.Helper()
	parsed, err := routing.ParseChain(chain)
	if err != nil {
		t.Fatalf("bad chain %q: %v", chain, err)
	}
	return &Rule{
		Name:     name,
		Chain:    parsed,
		Phrases:  append([]string{name}, phrases...),
		Priority: priority,
		Source:   name + ".md",
	}
}

func TestCompile_MatchSingleRule(t *testing.T) {
	ix, err := Compile([]*Rule{
		mustRule(t, "think_routing", "deepseek,deepseek-reasoner", 50, "think step by step"),
		mustRule(t, "code_generation", "groq,llama-3.3-70b-versatile", 50, "write a function"),
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	match, ok := ix.Match("please think step by step about this")
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Rule != "think_routing" {
		t.Errorf("unexpected rule: %q", match.Rule)
	}
	if match.Chain[0].Model != "deepseek-reasoner" {
		t.Errorf("unexpected chain: %v", match.Chain)
	}
	if match.Phrase != "think step by step" {
		t.Errorf("unexpected phrase: %q", match.Phrase)
	}
}

func TestCompile_NoMatch(t *testing.T) {
	ix, err := Compile([]*Rule{
		mustRule(t, "think_routing", "deepseek,deepseek-reasoner", 50, "think step by step"),
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if _, ok := ix.Match("hello there"); ok {
		t.Error("expected no match")
	}
}

func TestCompile_TieBreakLongestPhraseWins(t *testing.T) {
	// "think step by step" contains "think"; the longer phrase's rule wins
	// even though the shorter phrase has higher priority.
	ix, err := Compile([]*Rule{
		mustRule(t, "shallow", "groq,llama-3.1-8b-instant", 90, "think"),
		mustRule(t, "deep", "deepseek,deepseek-reasoner", 10, "think step by step"),
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	match, ok := ix.Match("think step by step")
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Rule != "deep" {
		t.Errorf("longest phrase should win, got %q", match.Rule)
	}
}

func TestCompile_TieBreakEarliestOffset(t *testing.T) {
	ix, err := Compile([]*Rule{
		mustRule(t, "first", "groq,llama-3.1-8b-instant", 10, "alpha beta"),
		mustRule(t, "second", "deepseek,deepseek-chat", 90, "gamma delta"),
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	// Equal phrase lengths; the earlier occurrence wins despite priority.
	match, ok := ix.Match("alpha beta then gamma delta")
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Rule != "first" {
		t.Errorf("earliest offset should win, got %q", match.Rule)
	}
}

func TestCompile_TieBreakPriority(t *testing.T) {
	// The same phrase registered by two rules: same length, same offset,
	// priority decides.
	ix, err := Compile([]*Rule{
		mustRule(t, "low", "groq,llama-3.1-8b-instant", 20, "deploy the service"),
		mustRule(t, "high", "deepseek,deepseek-chat", 80, "deploy the service"),
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	match, ok := ix.Match("deploy the service now")
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Rule != "high" {
		t.Errorf("higher priority should win, got %q", match.Rule)
	}
	if match.Priority != 80 {
		t.Errorf("unexpected priority: %d", match.Priority)
	}
}

func TestCompile_DuplicateRuleName(t *testing.T) {
	_, err := Compile([]*Rule{
		mustRule(t, "think_routing", "deepseek,deepseek-reasoner", 50),
		mustRule(t, "think_routing", "groq,llama-3.3-70b-versatile", 50),
	})
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompileError for duplicate rule name, got %v", err)
	}
}

func TestCompile_Deterministic(t *testing.T) {
	rules := func() []*Rule {
		return []*Rule{
			mustRule(t, "a", "groq,llama-3.1-8b-instant", 50, "analyze deeply", "think"),
			mustRule(t, "b", "deepseek,deepseek-chat", 70, "step by step", "plan"),
		}
	}

	ix1, err := Compile(rules())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	ix2, err := Compile(rules())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	for _, text := range []string{
		"think about it",
		"analyze deeply and plan step by step",
		"nothing matches here",
	} {
		m1, ok1 := ix1.Match(text)
		m2, ok2 := ix2.Match(text)
		if ok1 != ok2 || m1.Rule != m2.Rule {
			t.Errorf("compiles disagree on %q: %v/%v vs %v/%v", text, m1.Rule, ok1, m2.Rule, ok2)
		}
	}
}

func TestCompileDir(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "think.md", `# Think Routing
route:: deepseek, deepseek-reasoner
synonyms:: think step by step
`)
	writeRuleFile(t, dir, "code.md", `# Code Generation
route:: groq, llama-3.3-70b-versatile
synonyms:: write a function
`)
	// Non-rule files are ignored.
	writeRuleFile(t, dir, "notes.txt", "route:: not, parsed")

	ix, err := CompileDir(dir)
	if err != nil {
		t.Fatalf("CompileDir failed: %v", err)
	}
	if ix.RuleCount() != 2 {
		t.Errorf("expected 2 rules, got %d", ix.RuleCount())
	}

	match, ok := ix.Match("could you write a function for me")
	if !ok || match.Rule != "code_generation" {
		t.Errorf("unexpected match: %+v ok=%v", match, ok)
	}
}

func TestCompileDir_MalformedRuleFailsWholeCompile(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "good.md", `# Good
route:: groq, llama-3.1-8b-instant
synonyms:: fine
`)
	writeRuleFile(t, dir, "bad.md", `# Bad
route:: groq
`)

	ix, err := CompileDir(dir)
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompileError, got %v", err)
	}
	if ix != nil {
		t.Error("no partial index may be returned")
	}
}

func TestCompileDir_EmptyDirectory(t *testing.T) {
	ix, err := CompileDir(t.TempDir())
	if err != nil {
		t.Fatalf("CompileDir failed: %v", err)
	}
	if ix.RuleCount() != 0 {
		t.Errorf("expected empty index, got %d rules", ix.RuleCount())
	}
	if _, ok := ix.Match("anything at all"); ok {
		t.Error("empty index must not match")
	}
}
